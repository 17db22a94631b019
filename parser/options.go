package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/arr-ai/frozen"
)

// OptionMode selects the character set and error tolerance of the option-list
// sub-grammar.
type OptionMode int

const (
	// FieldMode parses the term/definition fields of a card line. Bare atoms
	// exclude ',', '-', '#' and blanks, so the card separator and comments
	// stay structural; malformed quoting is a diagnostic.
	FieldMode OptionMode = iota
	// GuessMode parses a learner's typed answer. Bare atoms exclude only ','
	// and whitespace, and any malformed input still yields an option list.
	GuessMode
)

// Option is one parsed option with the span it was read from.
type Option struct {
	Text string
	Span Scanner
}

// ParseOptions parses `option (',' option)*` from the start of s. It always
// makes progress and never fails; in FieldMode grammar violations are
// reported as diagnostics. consumed is the byte offset within s at which
// parsing stopped (anything after it is not part of an option list).
func ParseOptions(s Scanner, mode OptionMode) (opts []Option, diags []Diagnostic, consumed int) {
	c := &cursor{span: s, text: s.String()}
	seen := frozen.NewMap[string, Scanner]()

	add := func(text string, span Scanner) {
		if text == "" {
			if mode == FieldMode {
				diags = append(diags, diag(EmptyOptionList, span, "empty option"))
			}
			return
		}
		if orig, ok := seen.Get(text); ok {
			if mode == FieldMode {
				d := diag(DuplicateOption, span, "duplicate option %q", text)
				d.Related = orig
				diags = append(diags, d)
			}
			return
		}
		seen = seen.With(text, span)
		opts = append(opts, Option{Text: text, Span: span})
	}

	first := true
	for {
		c.skipBlanks(mode)
		start := c.pos
		text, ok, ds := parseOption(c, mode)
		diags = append(diags, ds...)
		if ok {
			add(text, c.slice(start))
			c.skipBlanks(mode)
		} else if mode == FieldMode && (!first || c.peek() == ',') {
			// A delimited slot with nothing in it, as in "a,,b" or "a,".
			span := c.slice(start)
			if span.Len() == 0 {
				span = c.span.Slice(start, min(start+1, len(c.text)))
			}
			diags = append(diags, diag(EmptyOptionList, span, "empty option"))
		}
		if !c.eat(',') {
			break
		}
		first = false
	}

	return opts, diags, c.pos
}

// ParseGuess parses free-text learner input as a guess-mode option list. It
// is total: any input, including unterminated quotes and trailing
// backslashes, parses to some (possibly empty) list of distinct options.
func ParseGuess(input string) []string {
	opts, _, _ := ParseOptions(NewScanner(input), GuessMode)
	texts := make([]string, len(opts))
	for i, o := range opts {
		texts[i] = o.Text
	}
	return texts
}

// parseOption parses a single quoted or bare option. ok is false when the
// cursor does not sit at the start of any option.
func parseOption(c *cursor, mode OptionMode) (string, bool, []Diagnostic) {
	var b strings.Builder
	var diags []Diagnostic

	quoted := false
	if c.peek() == '"' {
		text, ds := parseQuoted(c, mode)
		b.WriteString(text)
		diags = ds
		quoted = true
	} else {
		r := c.peek()
		if !isAtom(r, mode) {
			return "", false, nil
		}
		b.WriteRune(c.next())
	}

	// Bare atoms may continue across runs of hyphens (field mode) or blanks,
	// but only when another atom follows; otherwise the run belongs to the
	// surrounding list syntax.
	trailingStart := c.pos
	trailing := false
	for {
		mark := c.pos
		var sep strings.Builder
		if mode == FieldMode && c.peek() == '-' {
			for c.peek() == '-' {
				sep.WriteRune(c.next())
			}
		} else {
			for optionBlank(c.peek(), mode) {
				sep.WriteRune(c.next())
			}
		}
		if !isAtom(c.peek(), mode) {
			c.pos = mark
			break
		}
		b.WriteString(sep.String())
		b.WriteRune(c.next())
		trailing = true
	}

	if quoted && trailing && mode == FieldMode {
		diags = append(diags, diag(TrailingContent, c.slice(trailingStart),
			"unexpected characters after closing quote"))
	}

	return b.String(), true, diags
}

// parseQuoted parses a '"'-delimited option body with '\"' and '\\' escapes.
// In GuessMode every escape is taken literally and a missing closing quote
// ends the option at end of input; in FieldMode both are diagnostics.
func parseQuoted(c *cursor, mode OptionMode) (string, []Diagnostic) {
	var b strings.Builder
	var diags []Diagnostic

	quoteStart := c.pos
	c.next() // the opening quote

	for {
		if c.done() {
			if mode == FieldMode {
				diags = append(diags, diag(UnterminatedQuote, c.slice(quoteStart),
					"unterminated quoted option"))
			}
			break
		}
		r := c.next()
		if r == '"' {
			break
		}
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		if c.done() {
			// Trailing backslash; the unterminated-quote diagnostic will
			// cover it on the next pass through the loop.
			continue
		}
		escStart := c.pos
		e := c.next()
		if mode == GuessMode || e == '"' || e == '\\' {
			b.WriteRune(e)
		} else {
			diags = append(diags, diag(UnknownEscape, c.slice(escStart),
				"unknown escape %q in quoted option", e))
		}
	}

	return b.String(), diags
}

func isAtom(r rune, mode OptionMode) bool {
	if r == utf8.RuneError || r == ',' {
		return false
	}
	if mode == GuessMode {
		return !isBlank(r) && !isNewline(r)
	}
	return r != '-' && r != '#' && !isBlank(r) && !isNewline(r)
}

// optionBlank reports whether r may join two atoms inside one option.
func optionBlank(r rune, mode OptionMode) bool {
	if mode == GuessMode {
		return isBlank(r) || isNewline(r)
	}
	return isBlank(r)
}

// - cursor

// cursor is a mutable rune-level position within a Scanner's text.
type cursor struct {
	span Scanner
	text string
	pos  int
}

func (c *cursor) done() bool {
	return c.pos >= len(c.text)
}

// peek returns the rune at the cursor, or utf8.RuneError at end of input.
func (c *cursor) peek() rune {
	if c.done() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(c.text[c.pos:])
	return r
}

func (c *cursor) next() rune {
	r, size := utf8.DecodeRuneInString(c.text[c.pos:])
	c.pos += size
	return r
}

func (c *cursor) eat(r rune) bool {
	if c.peek() != r {
		return false
	}
	c.next()
	return true
}

func (c *cursor) skipBlanks(mode OptionMode) {
	for optionBlank(c.peek(), mode) {
		c.next()
	}
}

// slice returns the span from the given start offset to the cursor.
func (c *cursor) slice(from int) Scanner {
	return c.span.Slice(from, c.pos)
}

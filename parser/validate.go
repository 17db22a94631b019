package parser

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/arr-ai/frozen"

	"github.com/Kestrer/revise/pattern"
)

// ValidateString runs the strict grammar over text. See Validate.
func ValidateString(text, filename string) (*SetDocument, []Diagnostic) {
	return Validate(NewScannerWithFilename(text, filename))
}

// Validate runs the strict grammar over the permissive scan's regions. Each
// malformed region contributes exactly one diagnostic, positioned at the
// first byte where the region departs from the well-formed grammar; later
// regions are still checked, so one pass reports one problem per region
// without cascading noise. If any diagnostic is produced, no document is
// returned: loading is all-or-nothing.
func Validate(src Scanner) (*SetDocument, []Diagnostic) {
	sk := Segment(src)
	var diags []Diagnostic

	doc := &SetDocument{}
	cardSpans := frozen.NewMap[string, Scanner]() // canonical card content → span of first occurrence
	attemptedCard := false

	if sk.Title < 0 {
		at := src.Slice(0, 0)
		if len(sk.Lines) > 0 {
			at = sk.Lines[0].Span
		}
		diags = append(diags, diag(EmptyTitle, at, "set has no title"))
	}

	for _, region := range sk.Lines {
		var candidates []Diagnostic

		switch region.Kind {
		case RegionBlank:
		case RegionTitle:
			doc.Title = strings.TrimSpace(region.Content.String())
		case RegionCard:
			attemptedCard = true
			card, ds := validateCard(region)
			candidates = ds
			if card != nil && len(candidates) == 0 {
				key := cardContentKey(card)
				if orig, ok := cardSpans.Get(key); ok {
					d := diag(DuplicateCard, region.Content, "duplicate card")
					d.Related = orig
					candidates = append(candidates, d)
				} else {
					cardSpans = cardSpans.With(key, region.Content)
					doc.Cards = append(doc.Cards, card)
				}
			}
		}

		if d, ok := controlDiagnostic(region.Content); ok {
			candidates = append(candidates, d)
		}
		if d, ok := commentDiagnostic(region.Comment); ok {
			candidates = append(candidates, d)
		}

		if d, ok := firstDivergence(candidates); ok {
			diags = append(diags, d)
		}
	}

	if len(doc.Cards) == 0 && !attemptedCard {
		diags = append(diags, diag(EmptySet, src, "expected one or more cards in the set"))
	}

	if len(diags) > 0 {
		return nil, diags
	}
	return doc, nil
}

// validateCard checks one card region against the strict grammar and builds
// the card. All grammar violations found are returned; the caller keeps only
// the first divergence.
func validateCard(region Region) (*Card, []Diagnostic) {
	var candidates []Diagnostic

	if region.Dash.IsNil() {
		candidates = append(candidates, diag(MissingSeparator, region.Content,
			"expected ' - ' separator between terms and definitions"))
		return nil, candidates
	}

	if !blanksAroundDash(region) {
		candidates = append(candidates, diag(MissingSeparator, region.Dash,
			"separator must have a space on both sides"))
	}

	terms, ds := validateOptions(region.Term, "term", region.Content)
	candidates = append(candidates, ds...)

	defs, ds := validateOptions(region.Def, "definition", region.Content)
	candidates = append(candidates, ds...)

	if len(candidates) > 0 {
		return nil, candidates
	}
	return &Card{Terms: terms, Definitions: defs, Span: region.Content}, nil
}

// validateOptions parses one side of a card as a field-mode option list and
// compiles every option's pattern.
func validateOptions(side Scanner, what string, card Scanner) ([]*Variant, []Diagnostic) {
	opts, candidates, consumed := ParseOptions(side, FieldMode)

	if rest := strings.TrimFunc(side.Skip(consumed).String(), isBlank); rest != "" {
		candidates = append(candidates, diag(TrailingContent, side.Skip(consumed),
			"unexpected content after %s list", what))
	}

	if len(opts) == 0 && len(candidates) == 0 {
		candidates = append(candidates, diag(EmptyOptionList, card,
			"expected at least one %s", what))
	}

	variants := make([]*Variant, 0, len(opts))
	for _, opt := range opts {
		p, err := pattern.Compile(opt.Text)
		if err != nil {
			candidates = append(candidates, diag(InvalidPattern, opt.Span,
				"invalid %s pattern: %v", what, err))
			continue
		}
		variants = append(variants, &Variant{Text: opt.Text, Pattern: p, Span: opt.Span})
	}

	return variants, candidates
}

// blanksAroundDash reports whether the separator has a blank immediately on
// each side.
func blanksAroundDash(region Region) bool {
	term := region.Term.String()
	def := region.Def.String()
	if term == "" || def == "" {
		return false
	}
	before, _ := utf8.DecodeLastRuneInString(term)
	after, _ := utf8.DecodeRuneInString(def)
	return isBlank(before) && isBlank(after)
}

// controlDiagnostic flags the first control character anywhere in a line's
// content. Content spans never include the line terminator, so '\r'/'\n'
// need no exemption. The permissive scan still treats a tab as a blank when
// fixing boundaries; the strict grammar rejects it here.
func controlDiagnostic(content Scanner) (Diagnostic, bool) {
	return firstControl(content, "control character %q")
}

// commentDiagnostic flags control characters inside a comment.
func commentDiagnostic(comment Scanner) (Diagnostic, bool) {
	if comment.IsNil() {
		return Diagnostic{}, false
	}
	if d, ok := firstControl(comment, "control character %q in comment"); ok {
		d.Kind = MalformedComment
		return d, true
	}
	return Diagnostic{}, false
}

func firstControl(span Scanner, format string) (Diagnostic, bool) {
	for i, r := range span.String() {
		if unicode.IsControl(r) {
			return diag(ControlCharacter, span.Slice(i, i+len(string(r))),
				format, r), true
		}
	}
	return Diagnostic{}, false
}

// firstDivergence picks the candidate whose span starts earliest, so the
// reported position is the first byte at which the strict grammar fails.
func firstDivergence(candidates []Diagnostic) (Diagnostic, bool) {
	if len(candidates) == 0 {
		return Diagnostic{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].At.Offset() < candidates[j].At.Offset()
	})
	return candidates[0], true
}

// cardContentKey canonicalizes a card's option texts for duplicate detection:
// order-insensitive, with unambiguous separators.
func cardContentKey(card *Card) string {
	canon := func(texts []string) string {
		sorted := append([]string(nil), texts...)
		sort.Strings(sorted)
		return strings.Join(sorted, "\x1f")
	}
	return canon(card.TermTexts()) + "\x1e" + canon(card.DefinitionTexts())
}

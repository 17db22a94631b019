// Package pattern compiles the regular-expression variants found in set
// files. A compiled Pattern answers two questions: does a candidate string
// contain a match anywhere (unanchored), and what does one random string
// drawn from the pattern's language look like.
package pattern

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"regexp/syntax"
	"strings"
)

// ErrAnchor is returned by Compile for patterns using anchors or word
// boundaries. Matching is defined to be unanchored, and a generated string
// could not honor position assertions, so they are rejected outright rather
// than silently reinterpreted.
var ErrAnchor = errors.New("anchors are not supported")

// maxExtraReps bounds how many repetitions beyond the required minimum
// Generate produces for *, + and {n,} operators.
const maxExtraReps = 3

// Pattern is one compiled variant: a matcher and a generator over the same
// pattern text.
type Pattern struct {
	text string
	re   *regexp.Regexp
	tree *syntax.Regexp
}

// Compile parses text as a regular expression, rejecting anchors.
func Compile(text string) (*Pattern, error) {
	tree, err := syntax.Parse(text, syntax.Perl)
	if err != nil {
		return nil, err
	}
	if err := rejectAnchors(tree); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(text)
	if err != nil {
		return nil, err
	}
	return &Pattern{text: text, re: re, tree: tree}, nil
}

func rejectAnchors(re *syntax.Regexp) error {
	switch re.Op {
	case syntax.OpBeginLine, syntax.OpEndLine, syntax.OpBeginText, syntax.OpEndText:
		return fmt.Errorf("%w: %q", ErrAnchor, re.String())
	case syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return fmt.Errorf("%w: %q", ErrAnchor, re.String())
	}
	for _, sub := range re.Sub {
		if err := rejectAnchors(sub); err != nil {
			return err
		}
	}
	return nil
}

// String returns the original pattern text.
func (p *Pattern) String() string {
	return p.text
}

// Accepts reports whether candidate contains a match of the pattern anywhere.
func (p *Pattern) Accepts(candidate string) bool {
	return p.re.MatchString(candidate)
}

// Generate produces one string from the pattern's language, drawing choices
// from rng. Output is random, not exhaustive; the only guarantee is that
// Accepts(Generate(rng)) holds.
func (p *Pattern) Generate(rng *rand.Rand) string {
	var b strings.Builder
	generate(&b, p.tree, rng)
	return b.String()
}

func generate(b *strings.Builder, re *syntax.Regexp, rng *rand.Rand) {
	switch re.Op {
	case syntax.OpEmptyMatch, syntax.OpNoMatch:
		// nothing

	case syntax.OpLiteral:
		for _, r := range re.Rune {
			b.WriteRune(r)
		}

	case syntax.OpCharClass:
		b.WriteRune(randClassRune(re.Rune, rng))

	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		// Printable ASCII keeps probes readable.
		b.WriteRune(rune(' ' + rng.Intn('~'-' '+1)))

	case syntax.OpCapture:
		generate(b, re.Sub[0], rng)

	case syntax.OpConcat:
		for _, sub := range re.Sub {
			generate(b, sub, rng)
		}

	case syntax.OpAlternate:
		generate(b, re.Sub[rng.Intn(len(re.Sub))], rng)

	case syntax.OpStar:
		repeat(b, re.Sub[0], 0, -1, rng)

	case syntax.OpPlus:
		repeat(b, re.Sub[0], 1, -1, rng)

	case syntax.OpQuest:
		repeat(b, re.Sub[0], 0, 1, rng)

	case syntax.OpRepeat:
		repeat(b, re.Sub[0], re.Min, re.Max, rng)
	}
}

// repeat emits between min and max copies of sub; max < 0 means unbounded,
// capped at min+maxExtraReps.
func repeat(b *strings.Builder, sub *syntax.Regexp, min, max int, rng *rand.Rand) {
	if max < 0 || max > min+maxExtraReps {
		max = min + maxExtraReps
	}
	n := min + rng.Intn(max-min+1)
	for i := 0; i < n; i++ {
		generate(b, sub, rng)
	}
}

// randClassRune picks a rune uniformly from the class's [lo, hi] rune pairs.
func randClassRune(pairs []rune, rng *rand.Rand) rune {
	total := 0
	for i := 0; i < len(pairs); i += 2 {
		total += int(pairs[i+1]-pairs[i]) + 1
	}
	n := rng.Intn(total)
	for i := 0; i < len(pairs); i += 2 {
		size := int(pairs[i+1]-pairs[i]) + 1
		if n < size {
			return pairs[i] + rune(n)
		}
		n -= size
	}
	panic("unreachable")
}

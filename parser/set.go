package parser

import (
	"github.com/Kestrer/revise/pattern"
)

// SetDocument is the validated, immutable form of one set file. It is built
// from scratch on every load; edits to the file require re-parsing.
type SetDocument struct {
	Title string
	Cards []*Card
}

// Card pairs a non-empty list of term variants with a non-empty list of
// definition variants. Span locates the card's source line, for diagnostics
// only.
type Card struct {
	Terms       []*Variant
	Definitions []*Variant
	Span        Scanner
}

// Variant is one regular-expression alternative for a term or definition.
// Two variants are the same variant iff their pattern text is equal.
type Variant struct {
	Text    string
	Pattern *pattern.Pattern
	Span    Scanner
}

// TermTexts returns the card's term pattern texts in source order.
func (c *Card) TermTexts() []string {
	return variantTexts(c.Terms)
}

// DefinitionTexts returns the card's definition pattern texts in source order.
func (c *Card) DefinitionTexts() []string {
	return variantTexts(c.Definitions)
}

// Invert returns the card with terms and definitions swapped.
func (c *Card) Invert() *Card {
	return &Card{Terms: c.Definitions, Definitions: c.Terms, Span: c.Span}
}

func variantTexts(vs []*Variant) []string {
	texts := make([]string, len(vs))
	for i, v := range vs {
		texts[i] = v.Text
	}
	return texts
}

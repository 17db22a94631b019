package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validateString(t *testing.T, s string) (*SetDocument, []Diagnostic) {
	t.Helper()
	return ValidateString(s, "test.set")
}

func requireOnly(t *testing.T, diags []Diagnostic, kind Kind) Diagnostic {
	t.Helper()
	require.Len(t, diags, 1)
	assert.Equal(t, kind, diags[0].Kind)
	return diags[0]
}

func TestValidateWellFormed(t *testing.T) {
	t.Parallel()

	doc, diags := validateString(t, "Example Set\n\nmi - me, my, myself\nmoku - food, to eat\n")
	require.Empty(t, diags)
	require.NotNil(t, doc)

	assert.Equal(t, "Example Set", doc.Title)
	require.Len(t, doc.Cards, 2)
	assert.Equal(t, []string{"mi"}, doc.Cards[0].TermTexts())
	assert.Equal(t, []string{"me", "my", "myself"}, doc.Cards[0].DefinitionTexts())
	assert.Equal(t, []string{"moku"}, doc.Cards[1].TermTexts())
	assert.Equal(t, []string{"food", "to eat"}, doc.Cards[1].DefinitionTexts())
}

func TestValidateAllOrNothing(t *testing.T) {
	t.Parallel()

	// One bad card voids the whole document, valid cards included.
	doc, diags := validateString(t, "T\ngood - card\nbad line\n")
	assert.Nil(t, doc)
	requireOnly(t, diags, MissingSeparator)
}

func TestValidateOneDiagnosticPerLine(t *testing.T) {
	t.Parallel()

	// A line with several problems reports only the earliest one.
	doc, diags := validateString(t, "T\n\"a - \"b\n")
	assert.Nil(t, doc)
	require.Len(t, diags, 1)
}

func TestValidateEmptyDefinitions(t *testing.T) {
	t.Parallel()

	doc, diags := validateString(t, "T\nterm - \n")
	assert.Nil(t, doc)
	d := requireOnly(t, diags, EmptyOptionList)

	// The diagnostic points at the start of the card line.
	line, col := d.Position()
	assert.Equal(t, 2, line)
	assert.Equal(t, 1, col)
}

func TestValidateMissingSeparator(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"no separator here", "a-b", "-"} {
		doc, diags := validateString(t, "T\n"+line+"\n")
		assert.Nil(t, doc, line)
		requireOnly(t, diags, MissingSeparator)
	}
}

func TestValidateSeparatorNeedsBothBlanks(t *testing.T) {
	t.Parallel()

	doc, diags := validateString(t, "T\na -b\n")
	assert.Nil(t, doc)
	d := requireOnly(t, diags, MissingSeparator)

	// Points at the dash itself, not the line start.
	assert.Equal(t, "-", d.At.String())
}

func TestValidateEmptyTitle(t *testing.T) {
	t.Parallel()

	// Blanks and comments never become a title, so this set has none and
	// also no cards.
	doc, diags := validateString(t, "\n# only a comment\n")
	assert.Nil(t, doc)
	require.Len(t, diags, 2)
	assert.Equal(t, EmptyTitle, diags[0].Kind)
	assert.Equal(t, EmptySet, diags[1].Kind)
}

func TestValidateEmptySet(t *testing.T) {
	t.Parallel()

	doc, diags := validateString(t, "Just A Title\n\n# nothing else\n")
	assert.Nil(t, doc)
	requireOnly(t, diags, EmptySet)

	// A malformed card still counts as an attempt, so only the card's own
	// diagnostic is reported.
	_, diags = validateString(t, "T\nbroken\n")
	requireOnly(t, diags, MissingSeparator)
}

func TestValidateDuplicateCard(t *testing.T) {
	t.Parallel()

	// Duplicate detection is order-insensitive over option texts.
	doc, diags := validateString(t, "T\na, b - c\nb, a - c\n")
	assert.Nil(t, doc)
	d := requireOnly(t, diags, DuplicateCard)
	assert.False(t, d.Related.IsNil())

	// Inverted sides are distinct cards.
	doc, diags = validateString(t, "T\na - b\nb - a\n")
	require.Empty(t, diags)
	require.Len(t, doc.Cards, 2)
}

func TestValidateUnterminatedQuote(t *testing.T) {
	t.Parallel()

	doc, diags := validateString(t, "T\na - \"oops\n")
	assert.Nil(t, doc)
	requireOnly(t, diags, UnterminatedQuote)
}

func TestValidateTrailingContent(t *testing.T) {
	t.Parallel()

	doc, diags := validateString(t, "T\n\"a\"b - c\n")
	assert.Nil(t, doc)
	requireOnly(t, diags, TrailingContent)
}

func TestValidateInvalidPattern(t *testing.T) {
	t.Parallel()

	doc, diags := validateString(t, "T\na - b(\n")
	assert.Nil(t, doc)
	requireOnly(t, diags, InvalidPattern)

	// Anchors are rejected even though the regexp syntax is valid.
	for _, def := range []string{"^b", "b$", `\bb`} {
		_, diags := validateString(t, "T\na - "+def+"\n")
		requireOnly(t, diags, InvalidPattern)
	}
}

func TestValidateComments(t *testing.T) {
	t.Parallel()

	doc, diags := validateString(t, "Title # about the set\n\na - b # about the card\n")
	require.Empty(t, diags)
	require.Len(t, doc.Cards, 1)

	_, diags = validateString(t, "T\na - b # bad \x07 comment\n")
	requireOnly(t, diags, MalformedComment)
}

func TestValidateControlCharacters(t *testing.T) {
	t.Parallel()

	// Control characters are rejected anywhere on a line, not just in
	// comments; they would otherwise end up inside pattern text.
	doc, diags := validateString(t, "T\na - b\x00c\n")
	assert.Nil(t, doc)
	requireOnly(t, diags, ControlCharacter)

	_, diags = validateString(t, "Ti\x01tle\n\na - b\n")
	requireOnly(t, diags, ControlCharacter)

	// A tab is printable whitespace to the permissive scan but not to the
	// strict grammar.
	_, diags = validateString(t, "T\na\t- b\n")
	requireOnly(t, diags, ControlCharacter)
}

func TestValidatePatternsCompiled(t *testing.T) {
	t.Parallel()

	doc, diags := validateString(t, "T\ncolou?r - colour\n")
	require.Empty(t, diags)
	card := doc.Cards[0]
	assert.True(t, card.Terms[0].Pattern.Accepts("color"))
	assert.True(t, card.Terms[0].Pattern.Accepts("colour"))
}

func TestValidateInvert(t *testing.T) {
	t.Parallel()

	doc, diags := validateString(t, "T\na - b, c\n")
	require.Empty(t, diags)
	inv := doc.Cards[0].Invert()
	assert.Equal(t, []string{"b", "c"}, inv.TermTexts())
	assert.Equal(t, []string{"a"}, inv.DefinitionTexts())
}

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segmentString(s string) Skeleton {
	return Segment(NewScanner(s))
}

func TestSegmentClassifiesLines(t *testing.T) {
	t.Parallel()

	sk := segmentString("People\n\nmi - me, my\n# just a comment\ntoki - talk\n")
	require.Len(t, sk.Lines, 5)

	assert.Equal(t, RegionTitle, sk.Lines[0].Kind)
	assert.Equal(t, 0, sk.Title)
	assert.Equal(t, RegionBlank, sk.Lines[1].Kind)
	assert.Equal(t, RegionCard, sk.Lines[2].Kind)
	assert.Equal(t, RegionBlank, sk.Lines[3].Kind)
	assert.Equal(t, RegionCard, sk.Lines[4].Kind)
}

func TestSegmentNoTitle(t *testing.T) {
	t.Parallel()

	sk := segmentString("\n# only comments\n\n")
	assert.Equal(t, -1, sk.Title)
	for _, region := range sk.Lines {
		assert.Equal(t, RegionBlank, region.Kind)
	}
}

func TestSegmentTrailingNewline(t *testing.T) {
	t.Parallel()

	// A final newline terminates the last line rather than opening an empty
	// one.
	assert.Len(t, segmentString("a\nb\n").Lines, 2)
	assert.Len(t, segmentString("a\nb").Lines, 2)
	assert.Len(t, segmentString("").Lines, 1)
	assert.Len(t, segmentString("\n").Lines, 1)
}

func TestSegmentCRLF(t *testing.T) {
	t.Parallel()

	sk := segmentString("Title\r\na - b\r\n")
	require.Len(t, sk.Lines, 2)
	assert.Equal(t, "Title", sk.Lines[0].Content.String())
	assert.Equal(t, "a - b", sk.Lines[1].Content.String())
}

func TestSegmentSeparator(t *testing.T) {
	t.Parallel()

	cases := []struct {
		line            string
		term, dash, def string
	}{
		// the first dash blanked on both sides wins
		{"foo-bar - baz-quux", "foo-bar ", "-", " baz-quux"},
		{"a - b - c", "a ", "-", " b - c"},
		// one-sided dashes are kept as fallback so the validator can point
		// at them
		{"a -b", "a ", "-", "b"},
		{"a- b", "a", "-", " b"},
	}
	for _, c := range cases {
		sk := segmentString("T\n" + c.line + "\n")
		require.Len(t, sk.Lines, 2, c.line)
		region := sk.Lines[1]
		require.False(t, region.Dash.IsNil(), c.line)
		assert.Equal(t, c.term, region.Term.String(), c.line)
		assert.Equal(t, c.dash, region.Dash.String(), c.line)
		assert.Equal(t, c.def, region.Def.String(), c.line)
	}
}

func TestSegmentNoSeparator(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"a-b", "-", "abc", "a\"x - y\"b"} {
		sk := segmentString("T\n" + line + "\n")
		region := sk.Lines[1]
		assert.True(t, region.Dash.IsNil(), line)
		assert.Equal(t, line, region.Term.String(), line)
	}
}

func TestSegmentComment(t *testing.T) {
	t.Parallel()

	sk := segmentString("T\na - b # note\n")
	region := sk.Lines[1]
	assert.Equal(t, "a - b ", region.Content.String())
	assert.Equal(t, "# note", region.Comment.String())

	// a '#' inside quotes is not a comment
	sk = segmentString("T\na - \"b # c\"\n")
	region = sk.Lines[1]
	assert.True(t, region.Comment.IsNil())
	assert.Equal(t, `a - "b # c"`, region.Content.String())
}

func TestSegmentTotality(t *testing.T) {
	t.Parallel()

	// Garbage in, a skeleton out: Segment never rejects input.
	corpus := []string{
		"",
		"\x00\x01\x02",
		"\"\"\"\"",
		"\\\\\\",
		"\" unterminated - everywhere",
		"----",
		"#",
		"a#b#c",
		"\r\r\n\r",
		"日本語 - にほんご # コメント",
	}
	for _, s := range corpus {
		sk := segmentString(s)
		for _, region := range sk.Lines {
			assert.True(t, sk.Source.Contains(region.Span), "%q", s)
			assert.True(t, region.Span.Contains(region.Content), "%q", s)
		}
	}
}

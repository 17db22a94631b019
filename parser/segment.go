package parser

import (
	"strings"
	"unicode/utf8"
)

// RegionKind is the provisional classification the permissive scan gives a
// line. It is purely syntactic; the strict validator decides whether the
// region actually conforms.
type RegionKind int

const (
	// RegionBlank is a line holding only blanks and an optional comment.
	RegionBlank RegionKind = iota
	// RegionTitle is the first line with non-comment content.
	RegionTitle
	// RegionCard is any later line with non-comment content.
	RegionCard
)

// Region is one line of the source, segmented around its structural
// characters. Spans never include the line terminator.
type Region struct {
	Kind RegionKind
	// Span covers the whole line.
	Span Scanner
	// Content covers the line up to the comment.
	Content Scanner
	// Term covers the text left of the separator. For a line with no
	// separator it covers everything up to the comment.
	Term Scanner
	// Dash covers the separator hyphen. Nil when the line has none.
	Dash Scanner
	// Def covers the text between the separator and the comment. Nil when
	// the line has no separator.
	Def Scanner
	// Comment covers the '#' and everything after it. Nil when the line has
	// no comment.
	Comment Scanner
}

// Skeleton is the total structural segmentation of a source. Segment produces
// one for any input whatsoever.
type Skeleton struct {
	Source Scanner
	// Lines holds one region per physical line, in order.
	Lines []Region
	// Title indexes the RegionTitle line within Lines, or is -1 when the
	// source has no content line at all.
	Title int
}

// Segment performs the permissive scan: a single eager left-to-right pass
// that classifies every line and fixes each region's boundaries. Boundaries
// are final once chosen; the strict validator reports where they diverge from
// the well-formed grammar rather than re-splitting.
func Segment(src Scanner) Skeleton {
	sk := Skeleton{Source: src, Title: -1}

	text := src.String()
	lineStart := 0
	for lineStart <= len(text) {
		lineEnd := strings.IndexByte(text[lineStart:], '\n')
		nextStart := 0
		if lineEnd < 0 {
			lineEnd = len(text)
			nextStart = lineEnd + 1 // past the end; terminates the loop
		} else {
			lineEnd += lineStart
			nextStart = lineEnd + 1
		}
		content := lineEnd
		if content > lineStart && text[content-1] == '\r' {
			content--
		}
		// A trailing newline does not introduce a final empty region.
		if lineStart == len(text) && lineStart > 0 {
			break
		}

		region := segmentLine(src, text, lineStart, content)
		if region.Kind != RegionBlank {
			if sk.Title < 0 {
				region.Kind = RegionTitle
				sk.Title = len(sk.Lines)
			} else {
				region.Kind = RegionCard
			}
		}
		sk.Lines = append(sk.Lines, region)

		lineStart = nextStart
	}

	return sk
}

// segmentLine classifies text[start:end) and fixes its comment and separator
// boundaries. The separator is the first unquoted hyphen with blanks on both
// sides; failing that, the first with a blank on one side, so that the strict
// pass can point at the dash itself when the surrounding blanks are missing.
func segmentLine(src Scanner, text string, start, end int) Region {
	region := Region{Kind: RegionBlank, Span: src.Slice(start, end)}

	content := end // start of the comment, or end of line
	bestBoth := -1
	bestOne := -1

	inQuote := false
	sawContent := false
	prevBlank := false

scan:
	for i := start; i < content; {
		r, size := utf8.DecodeRuneInString(text[i:end])

		if inQuote {
			switch r {
			case '\\':
				// The escaped character is part of the quoted text.
				_, esc := utf8.DecodeRuneInString(text[i+size : end])
				size += esc
			case '"':
				inQuote = false
			}
			sawContent = true
			prevBlank = false
			i += size
			continue
		}

		switch {
		case r == '"':
			inQuote = true
			sawContent = true
		case r == '#':
			content = i
			region.Comment = src.Slice(i, end)
			break scan
		case r == '-' && bestBoth < 0:
			after := false
			if i+size < end {
				nr, _ := utf8.DecodeRuneInString(text[i+size : end])
				after = isBlank(nr)
			}
			before := prevBlank
			switch {
			case before && after:
				bestBoth = i
			case (before || after) && bestOne < 0:
				bestOne = i
			}
			sawContent = true
		case isBlank(r):
		default:
			sawContent = true
		}

		prevBlank = isBlank(r)
		i += size
	}

	region.Content = src.Slice(start, content)

	if !sawContent {
		region.Term = region.Content
		return region
	}

	region.Kind = RegionCard // provisional; Segment promotes the first to title
	dash := bestBoth
	if dash < 0 {
		dash = bestOne
	}
	if dash < 0 {
		region.Term = region.Content
		return region
	}

	region.Term = src.Slice(start, dash)
	region.Dash = src.Slice(dash, dash+1)
	region.Def = src.Slice(dash+1, content)
	return region
}

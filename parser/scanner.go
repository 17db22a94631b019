package parser

import (
	"fmt"
	"strings"
	"unicode"
)

// Scanner is an immutable view of a byte range within a source string. Every
// region, option and diagnostic produced by this package carries one, so
// positions can always be reported exactly.
type Scanner struct {
	src         *source
	sliceStart  int // the start of the slice visible to the scanner, based on the original src
	sliceLength int // the length of the slice visible to the scanner, based on the original src
}

type source struct {
	origin   string // the entire source string
	filename string // the name of the file from which the source is derived (or empty if none)
}

func NewScanner(str string) Scanner {
	return Scanner{&source{origin: str}, 0, len(str)}
}

func NewScannerWithFilename(str, filename string) Scanner {
	return Scanner{&source{str, filename}, 0, len(str)}
}

// The name of the file from which the source is derived (or empty if none).
func (s Scanner) Filename() string {
	if s.src == nil {
		return ""
	}
	return s.src.filename
}

func (s Scanner) String() string {
	if s.src == nil {
		return ""
	}
	return s.src.origin[s.sliceStart : s.sliceStart+s.sliceLength]
}

func (s Scanner) IsNil() bool {
	return s.src == nil
}

func (s Scanner) Len() int {
	return s.sliceLength
}

func (s Scanner) Format(state fmt.State, c rune) {
	if c == 'q' {
		_, _ = fmt.Fprintf(state, "%q", s.String())
	} else {
		_, _ = state.Write([]byte(s.String()))
	}
}

// The position of the start of the scanner within the original source.
func (s Scanner) Offset() int {
	return s.sliceStart
}

// The 1-indexed line and column number of the start of the scanner within the
// original source.
func (s Scanner) Position() (int, int) {
	return lineColumn(s.src.origin, s.sliceStart)
}

// Slice returns the sub-scanner covering bytes [a, b) of this scanner.
func (s Scanner) Slice(a, b int) Scanner {
	return Scanner{s.src, s.sliceStart + a, b - a}
}

// Skip returns this scanner advanced past its first i bytes.
func (s Scanner) Skip(i int) Scanner {
	return Scanner{s.src, s.sliceStart + i, s.sliceLength - i}
}

// Contains reports whether sn lies entirely within s.
func (s Scanner) Contains(sn Scanner) bool {
	if s.src != sn.src {
		return false
	}
	return s.sliceStart <= sn.sliceStart &&
		s.sliceStart+s.sliceLength >= sn.sliceStart+sn.sliceLength
}

var (
	NoLimit      = -1
	DefaultLimit = 1
)

// Context renders the scanner's span within its surrounding source, with the
// span highlighted, limited to limitLines of context either side.
func (s Scanner) Context(limitLines int) string {
	end := s.sliceStart + s.sliceLength
	lineno, colno := s.Position()

	aboveCxt := s.src.origin[:s.sliceStart]
	belowCxt := s.src.origin[end:]
	if limitLines != NoLimit {
		a := strings.Split(aboveCxt, "\n")
		if len(a) > limitLines {
			aboveCxt = strings.Join(a[len(a)-limitLines-1:], "\n")
		}
		b := strings.Split(belowCxt, "\n")
		if len(b) > limitLines {
			belowCxt = strings.Join(b[:limitLines], "\n")
		}
	}

	return fmt.Sprintf("\n\033[1;37m%s:%d:%d:\033[0m\n%s\033[1;31m%s\033[0m%s",
		s.Filename(),
		lineno,
		colno,
		aboveCxt,
		s.String(),
		belowCxt,
	)
}

// The 1-indexed line and column number of the given position within the given
// string.
func lineColumn(str string, pos int) (line, col int) {
	prefix := str[:pos]
	line = strings.Count(prefix, "\n") + 1
	col = pos - strings.LastIndex(prefix, "\n")
	return
}

// - character classification

// isBlank reports whether r is horizontal whitespace: any Unicode whitespace
// except the newline characters, which are structural in the set grammar.
func isBlank(r rune) bool {
	return unicode.IsSpace(r) && r != '\r' && r != '\n'
}

func isNewline(r rune) bool {
	return r == '\r' || r == '\n'
}

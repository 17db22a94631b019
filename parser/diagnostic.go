package parser

import (
	"fmt"

	"github.com/iancoleman/strcase"
)

// Kind classifies a Diagnostic.
type Kind int

const (
	EmptyTitle Kind = iota
	EmptyOptionList
	UnterminatedQuote
	UnknownEscape
	MissingSeparator
	TrailingContent
	MalformedComment
	InvalidPattern
	EmptySet
	DuplicateCard
	DuplicateOption
	ControlCharacter
)

var kindNames = [...]string{
	EmptyTitle:        "EmptyTitle",
	EmptyOptionList:   "EmptyOptionList",
	UnterminatedQuote: "UnterminatedQuote",
	UnknownEscape:     "UnknownEscape",
	MissingSeparator:  "MissingSeparator",
	TrailingContent:   "TrailingContent",
	MalformedComment:  "MalformedComment",
	InvalidPattern:    "InvalidPattern",
	EmptySet:          "EmptySet",
	DuplicateCard:     "DuplicateCard",
	DuplicateOption:   "DuplicateOption",
	ControlCharacter:  "ControlCharacter",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Code is the stable machine-readable form of the kind, e.g. "empty_title".
func (k Kind) Code() string {
	return strcase.ToSnake(k.String())
}

// Diagnostic is a positioned description of a grammar violation. It is a
// value, never mutated after creation; the strict validator is the only
// producer.
type Diagnostic struct {
	Kind    Kind
	Message string
	// At is the primary span the diagnostic refers to.
	At Scanner
	// Related is a secondary span (the original of a duplicate). Nil unless
	// the kind involves two locations.
	Related Scanner
}

func diag(kind Kind, at Scanner, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), At: at}
}

// Position returns the diagnostic's 1-indexed line and column.
func (d Diagnostic) Position() (line, col int) {
	return d.At.Position()
}

func (d Diagnostic) String() string {
	line, col := d.Position()
	if f := d.At.Filename(); f != "" {
		return fmt.Sprintf("%s:%d:%d: %s", f, line, col, d.Message)
	}
	return fmt.Sprintf("%d:%d: %s", line, col, d.Message)
}

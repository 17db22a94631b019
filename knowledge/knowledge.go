// Package knowledge tracks how well each card is known across sessions: a
// level from 0 to 3 per card, a pure transition function over answers, and
// the scheduler that chooses what to ask next.
package knowledge

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Level is how well a card is known, 0 (unseen) to MaxLevel (mastered).
type Level uint8

// MaxLevel is the mastered level; cards at it are excluded from selection.
const MaxLevel Level = 3

// Record is the persisted knowledge of one card. The zero value is an unseen
// card; stores treat storing the zero value as deletion.
type Record struct {
	Level Level
	// Failures counts consecutive incorrect answers since the last correct
	// one. Two misses in a row demote; one isolated miss does not.
	Failures uint8
}

// Correct returns the record after a correct answer: one level up, capped at
// MaxLevel, with the failure streak cleared.
func (r Record) Correct() Record {
	r.Failures = 0
	if r.Level < MaxLevel {
		r.Level++
	}
	return r
}

// Incorrect returns the record after an incorrect answer. The second
// consecutive miss moves the card down a level (not below 0) and restarts
// the streak.
func (r Record) Incorrect() Record {
	r.Failures++
	if r.Failures >= 2 {
		r.Failures = 0
		if r.Level > 0 {
			r.Level--
		}
	}
	return r
}

// Mastered reports whether the card is at the top level.
func (r Record) Mastered() bool {
	return r.Level == MaxLevel
}

// IsZero reports whether the record carries no knowledge worth persisting.
func (r Record) IsZero() bool {
	return r == Record{}
}

// Key identifies a card across sessions. It is derived from the card's
// content, so editing a card's wording resets its knowledge.
type Key string

// KeyFor computes the key for a card's term and definition pattern texts.
// The texts are sorted and separated unambiguously before hashing, so option
// order in the file does not affect identity.
func KeyFor(terms, definitions []string) Key {
	canon := func(texts []string) string {
		sorted := append([]string(nil), texts...)
		sort.Strings(sorted)
		return strings.Join(sorted, "\x1f")
	}
	sum := sha256.Sum256([]byte(canon(terms) + "\x1e" + canon(definitions)))
	return Key(hex.EncodeToString(sum[:]))
}

// Package symbol manages the private-use code points the engine feeds to
// the sequence-diff primitive.
//
// Three alphabets are carved out of Unicode's private-use areas:
//
//   - structural symbols, one per distinct element signature, in the Basic
//     Multilingual Plane area U+E000..U+F8FE;
//   - the Marker, U+F8FF, standing in for an element inside text;
//   - word codes, one per distinct text chunk, in the supplementary
//     private-use planes U+F0000..U+10FFFD.
//
// Document text never carries private-use runes: Sanitize removes them on
// ingestion, so none of these alphabets can collide with real content.
package symbol

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Symbol is one opaque structural token.
type Symbol rune

const (
	// StructuralFirst is the first structural symbol.
	StructuralFirst Symbol = 0xE000

	// Marker delimits where an element sat inside a text-level diff.
	Marker rune = 0xF8FF

	// StructuralBudget is the number of distinct element signatures one
	// diff call can represent.
	StructuralBudget = int(Marker - rune(StructuralFirst))
)

const (
	planeFifteen = 0xF0000
	planeSixteen = 0x100000
	// planeSize excludes the two noncharacters at the end of each plane.
	planeSize = 0xFFFE

	// WordBudget is the total number of word codes available to one word
	// diff, shared by the old and new vocabularies.
	WordBudget = 2 * planeSize
)

// ErrExhausted is returned when a table runs out of symbols.
var ErrExhausted = errors.New("private-use symbol budget exhausted")

// WordCode maps a dense index in [0, WordBudget) onto the word alphabet.
func WordCode(i int) rune {
	if i < planeSize {
		return rune(planeFifteen + i)
	}
	return rune(planeSixteen + i - planeSize)
}

// IsReserved reports whether r belongs to any private-use area.
func IsReserved(r rune) bool {
	return unicode.Is(unicode.Co, r)
}

// HasReserved reports whether s contains any private-use rune.
func HasReserved(s string) bool {
	for _, r := range s {
		if IsReserved(r) {
			return true
		}
	}
	return false
}

// Sanitize strips private-use runes from document text.
func Sanitize(s string) string {
	if !HasReserved(s) {
		return s
	}
	out, _, err := transform.String(runes.Remove(runes.In(unicode.Co)), s)
	if err != nil {
		return stripReserved(s)
	}
	return out
}

func stripReserved(s string) string {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		if !IsReserved(r) {
			buf = utf8.AppendRune(buf, r)
		}
	}
	return string(buf)
}

// Table assigns structural symbols to element signatures. It is
// content-addressed: the same signature always gets the same symbol for
// the lifetime of the table, which is one diff call.
type Table struct {
	bySignature map[string]Symbol
	budget      int
}

// NewTable creates a table holding at most budget symbols. A budget that is
// zero or larger than StructuralBudget is clamped to StructuralBudget.
func NewTable(budget int) *Table {
	if budget <= 0 || budget > StructuralBudget {
		budget = StructuralBudget
	}
	return &Table{
		bySignature: make(map[string]Symbol),
		budget:      budget,
	}
}

// Intern returns the symbol for signature, assigning a fresh one on first
// sight. It fails with ErrExhausted rather than aliasing two signatures.
func (t *Table) Intern(signature string) (Symbol, error) {
	if s, ok := t.bySignature[signature]; ok {
		return s, nil
	}
	if len(t.bySignature) >= t.budget {
		return 0, ErrExhausted
	}
	s := StructuralFirst + Symbol(len(t.bySignature))
	t.bySignature[signature] = s
	return s, nil
}

// Len is the number of symbols assigned so far.
func (t *Table) Len() int {
	return len(t.bySignature)
}

// Budget is the table's capacity.
func (t *Table) Budget() int {
	return t.budget
}

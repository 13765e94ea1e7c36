// Package textdiff is the word-mode text differ.
//
// Each whitespace-delimited chunk of text is replaced by one opaque code,
// the sequence-diff primitive runs over the codes, and the result is
// expanded back into literal chunks by position. Element-boundary markers
// survive the munging as themselves so cleanup can respect them.
package textdiff

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/livefir/docdiff/internal/marker"
	"github.com/livefir/docdiff/internal/seqdiff"
	"github.com/livefir/docdiff/internal/symbol"
)

// oldShareNum/oldShareDen is the part of the word budget the old text may
// claim before the new text gets its turn.
const (
	oldShareNum = 5
	oldShareDen = 8
)

// Chunks splits s into words, each carrying its trailing whitespace.
// Leading whitespace is a chunk of its own and every marker is a
// standalone chunk. Joining the result yields s.
func Chunks(s string) []string {
	var (
		out     []string
		start   int
		inSpace bool
	)
	for i, r := range s {
		switch {
		case r == marker.Rune:
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + utf8.RuneLen(r)
			out = append(out, s[i:start])
			inSpace = false
		case unicode.IsSpace(r):
			inSpace = true
		default:
			if inSpace && i > start {
				out = append(out, s[start:i])
				start = i
			}
			inSpace = false
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// Differ diffs text at word granularity.
type Differ struct {
	// Budget caps the number of distinct word codes one call may use. Zero
	// means symbol.WordBudget; values below 2 are raised to 2. Chunks past
	// the budget share an overflow code, which only costs match quality.
	Budget int
}

// DiffWords diffs two texts with the full word budget.
func DiffWords(oldText, newText string) []diffmatchpatch.Diff {
	return Differ{}.Diff(oldText, newText)
}

// Diff returns marker-free Equal, Delete and Insert spans. Concatenating
// the Equal and Delete spans yields oldText without markers; Equal and
// Insert spans likewise yield newText.
func (d Differ) Diff(oldText, newText string) []diffmatchpatch.Diff {
	budget := d.Budget
	if budget <= 0 || budget > symbol.WordBudget {
		budget = symbol.WordBudget
	}
	if budget < 2 {
		budget = 2
	}
	oldLimit := budget * oldShareNum / oldShareDen
	if oldLimit < 1 {
		oldLimit = 1
	}

	oldChunks, newChunks := Chunks(oldText), Chunks(newText)

	dict := newDictionary()
	oldCodes := dict.munge(oldChunks, oldLimit)
	if dict.overflowed {
		// The old overflow code stays reserved for old-only chunks.
		dict.next = oldLimit
	}
	newCodes := dict.munge(newChunks, budget)

	codes := seqdiff.Runes(oldCodes, newCodes)
	codes = Cleanup(codes)
	return expand(codes, withoutMarkers(oldChunks), withoutMarkers(newChunks))
}

// dictionary assigns word codes to chunks, fresh on first sight and shared
// by both texts of one call.
type dictionary struct {
	codes      map[string]rune
	next       int
	overflowed bool
}

func newDictionary() *dictionary {
	return &dictionary{codes: make(map[string]rune)}
}

// munge encodes chunks, handing out codes below limit. The last code under
// limit is the overflow code shared by every chunk that found no room.
func (d *dictionary) munge(chunks []string, limit int) []rune {
	out := make([]rune, 0, len(chunks))
	for _, c := range chunks {
		if c == string(marker.Rune) {
			out = append(out, marker.Rune)
			continue
		}
		if code, ok := d.codes[c]; ok {
			out = append(out, code)
			continue
		}
		if d.next >= limit-1 {
			d.overflowed = true
			out = append(out, symbol.WordCode(limit-1))
			continue
		}
		code := symbol.WordCode(d.next)
		d.next++
		d.codes[c] = code
		out = append(out, code)
	}
	return out
}

func withoutMarkers(chunks []string) []string {
	out := chunks[:0:0]
	for _, c := range chunks {
		if c != string(marker.Rune) {
			out = append(out, c)
		}
	}
	return out
}

// expand maps code runs back onto the literal chunks. Codes are only
// counted, never looked up, so a shared overflow code cannot swap text
// between positions: an Equal code whose two chunks differ becomes a
// Delete and an Insert.
func expand(codes []diffmatchpatch.Diff, oldChunks, newChunks []string) []diffmatchpatch.Diff {
	var (
		b      builder
		oi, ni int
	)
	for _, d := range codes {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			for k := 0; k < n; k++ {
				oc, nc := oldChunks[oi], newChunks[ni]
				if oc == nc {
					b.equal(oc)
				} else {
					b.delete(oc)
					b.insert(nc)
				}
				oi++
				ni++
			}
		case diffmatchpatch.DiffDelete:
			for k := 0; k < n; k++ {
				b.delete(oldChunks[oi])
				oi++
			}
		case diffmatchpatch.DiffInsert:
			for k := 0; k < n; k++ {
				b.insert(newChunks[ni])
				ni++
			}
		}
	}
	return b.finish()
}

// builder accumulates literal spans. Pending deletions are emitted before
// pending insertions and adjacent spans of one kind are merged.
type builder struct {
	out      []diffmatchpatch.Diff
	del, ins strings.Builder
}

func (b *builder) equal(s string) {
	b.flush()
	b.push(diffmatchpatch.DiffEqual, s)
}

func (b *builder) delete(s string) { b.del.WriteString(s) }
func (b *builder) insert(s string) { b.ins.WriteString(s) }

func (b *builder) flush() {
	if b.del.Len() > 0 {
		b.push(diffmatchpatch.DiffDelete, b.del.String())
		b.del.Reset()
	}
	if b.ins.Len() > 0 {
		b.push(diffmatchpatch.DiffInsert, b.ins.String())
		b.ins.Reset()
	}
}

func (b *builder) push(op diffmatchpatch.Operation, s string) {
	if s == "" {
		return
	}
	if n := len(b.out); n > 0 && b.out[n-1].Type == op {
		b.out[n-1].Text += s
		return
	}
	b.out = append(b.out, diffmatchpatch.Diff{Type: op, Text: s})
}

func (b *builder) finish() []diffmatchpatch.Diff {
	b.flush()
	return b.out
}

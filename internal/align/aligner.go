// Package align is the structural aligner: it runs the sequence-diff
// primitive over two encoded streams and splits the result into matched
// element pairs and the unmatched regions between them.
package align

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/livefir/docdiff/internal/encode"
	"github.com/livefir/docdiff/internal/seqdiff"
)

// RunKind is the kind of a raw alignment run.
type RunKind int

const (
	Equal RunKind = iota
	Inserted
	Deleted
)

func (k RunKind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Inserted:
		return "inserted"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Run is a contiguous stretch of the primitive's output, in rune
// positions of the two streams. Inserted runs have an empty old range and
// deleted runs an empty new range.
type Run struct {
	Kind             RunKind
	OldStart, OldEnd int
	NewStart, NewEnd int
}

// Runs returns the primitive's edit script over the two streams.
// Concatenating the old ranges of Equal and Deleted runs covers the old
// stream exactly once, in order; likewise Equal and Inserted for the new.
func Runs(old, new *encode.Stream) []Run {
	diffs := seqdiff.Runes(old.Runes, new.Runes)
	runs := make([]Run, 0, len(diffs))
	oi, ni := 0, 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		if n == 0 {
			continue
		}
		r := Run{OldStart: oi, OldEnd: oi, NewStart: ni, NewEnd: ni}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			r.Kind = Equal
			oi += n
			ni += n
		case diffmatchpatch.DiffDelete:
			r.Kind = Deleted
			oi += n
		case diffmatchpatch.DiffInsert:
			r.Kind = Inserted
			ni += n
		}
		r.OldEnd, r.NewEnd = oi, ni
		runs = append(runs, r)
	}
	return runs
}

// SpanKind distinguishes anchors from regions.
type SpanKind int

const (
	// Anchor is an element token matched on both sides.
	Anchor SpanKind = iota
	// Region is everything between two anchors: text on either side plus
	// any element that found no partner.
	Region
)

// Span is one unit of the alignment. An Anchor holds exactly one token on
// each side; a Region holds zero or more on each side, in stream order.
type Span struct {
	Kind SpanKind
	Old  []encode.Token
	New  []encode.Token
}

// Align matches the two streams. Element tokens that fall inside an Equal
// run become anchors; the primitive only reports equal runes for identical
// symbols and text never uses the symbol range, so every anchor pairs two
// elements with the same signature. Anchors are in order on both sides.
func Align(old, new *encode.Stream) []Span {
	var (
		spans  []Span
		region regionBuilder
	)
	for _, run := range Runs(old, new) {
		switch run.Kind {
		case Equal:
			for k := 0; k < run.OldEnd-run.OldStart; k++ {
				oi := old.Owner[run.OldStart+k]
				ni := new.Owner[run.NewStart+k]
				if old.Tokens[oi].Kind == encode.ElementToken {
					spans = region.flush(spans)
					spans = append(spans, Span{
						Kind: Anchor,
						Old:  []encode.Token{old.Tokens[oi]},
						New:  []encode.Token{new.Tokens[ni]},
					})
					continue
				}
				region.addOld(old, oi)
				region.addNew(new, ni)
			}
		case Deleted:
			for pos := run.OldStart; pos < run.OldEnd; pos++ {
				region.addOld(old, old.Owner[pos])
			}
		case Inserted:
			for pos := run.NewStart; pos < run.NewEnd; pos++ {
				region.addNew(new, new.Owner[pos])
			}
		}
	}
	return region.flush(spans)
}

// regionBuilder collects the tokens touched between anchors. A text token
// spans many runes, so consecutive runes of one token are added once.
type regionBuilder struct {
	span             Span
	lastOld, lastNew int
	open             bool
}

func (b *regionBuilder) start() {
	if !b.open {
		b.span = Span{Kind: Region}
		b.lastOld, b.lastNew = -1, -1
		b.open = true
	}
}

func (b *regionBuilder) addOld(s *encode.Stream, idx int) {
	b.start()
	if idx != b.lastOld {
		b.span.Old = append(b.span.Old, s.Tokens[idx])
		b.lastOld = idx
	}
}

func (b *regionBuilder) addNew(s *encode.Stream, idx int) {
	b.start()
	if idx != b.lastNew {
		b.span.New = append(b.span.New, s.Tokens[idx])
		b.lastNew = idx
	}
}

func (b *regionBuilder) flush(spans []Span) []Span {
	if !b.open {
		return spans
	}
	b.open = false
	return append(spans, b.span)
}

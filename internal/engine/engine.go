// Package engine runs the structural diff: it encodes matching containers
// of the two trees, aligns them, word-diffs the text between matched
// elements and recurses into matched elements.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/livefir/docdiff/internal/align"
	"github.com/livefir/docdiff/internal/encode"
	"github.com/livefir/docdiff/internal/marker"
	"github.com/livefir/docdiff/internal/symbol"
	"github.com/livefir/docdiff/internal/textdiff"
	"github.com/livefir/docdiff/internal/tree"
)

// ErrInvalidTextDiff is returned when a text differ's output does not
// rebuild the texts it was given.
var ErrInvalidTextDiff = errors.New("text diff does not reconstruct its inputs")

// ExhaustedError reports which document ran the structural symbol table
// dry.
type ExhaustedError struct {
	Side   string
	Budget int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s document exceeds %d distinct element signatures", e.Side, e.Budget)
}

func (e *ExhaustedError) Unwrap() error {
	return symbol.ErrExhausted
}

// TextDiffFunc diffs two texts. Inputs may contain symbol.Marker where an
// element sits; markers in the output are removed before use.
type TextDiffFunc func(oldText, newText string) []diffmatchpatch.Diff

// Options configures one run.
type Options struct {
	Classifier      *tree.Classifier
	MatchAttributes []string
	// DiffText replaces the word differ when set.
	DiffText TextDiffFunc
	// StructuralBudget caps distinct element signatures; zero means
	// symbol.StructuralBudget.
	StructuralBudget int
	Logger           *slog.Logger
}

// Stats describes a completed run.
type Stats struct {
	Containers int
	Anchors    int
	Regions    int
	TextDiffs  int
	Symbols    int
	Duration   time.Duration
}

type engine struct {
	ctx      context.Context
	encoder  *encode.Encoder
	table    *symbol.Table
	diffText TextDiffFunc
	stats    Stats
}

// SharedRoot reports whether two roots are diffed as one container pair,
// their children compared and the roots themselves taken as given. That
// holds when both are Normal elements with the same signature; a nil root
// is an empty container. Any other pair is compared as two one-node
// documents, so differing, Atomic or text roots show up in the result.
func SharedRoot(oldRoot, newRoot tree.Node, opts Options) bool {
	enc := encode.New(opts.Classifier, nil, opts.MatchAttributes)
	container := func(n tree.Node) bool {
		return n == nil || (n.Type() == tree.ElementNode && opts.Classifier.Classify(n) == tree.Normal)
	}
	if !container(oldRoot) || !container(newRoot) {
		return false
	}
	if oldRoot == nil || newRoot == nil {
		return true
	}
	return enc.Signature(oldRoot, tree.Normal) == enc.Signature(newRoot, tree.Normal)
}

// wrapRoot holds root in a nameless element so it is encoded as content.
func wrapRoot(root tree.Node) tree.Node {
	if root == nil {
		return nil
	}
	return &tree.Element{Nodes: []tree.Node{root}}
}

// Run diffs two documents. When the roots form a shared container (see
// SharedRoot) the operations describe their children; otherwise they
// describe the roots themselves. Either root may be nil, which diffs
// against an empty document.
func Run(ctx context.Context, oldRoot, newRoot tree.Node, opts Options) ([]Operation, Stats, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	table := symbol.NewTable(opts.StructuralBudget)
	e := &engine{
		ctx:      ctx,
		encoder:  encode.New(opts.Classifier, table, opts.MatchAttributes),
		table:    table,
		diffText: opts.DiffText,
	}
	if e.diffText == nil {
		e.diffText = textdiff.DiffWords
	}

	if !SharedRoot(oldRoot, newRoot, opts) {
		oldRoot, newRoot = wrapRoot(oldRoot), wrapRoot(newRoot)
	}

	ops, err := e.container(oldRoot, newRoot)
	e.stats.Symbols = table.Len()
	e.stats.Duration = time.Since(start)
	if err != nil {
		logger.Debug("diff failed", "error", err, "containers", e.stats.Containers, "symbols", e.stats.Symbols)
		return nil, e.stats, err
	}
	logger.Debug("diff complete",
		"containers", e.stats.Containers,
		"anchors", e.stats.Anchors,
		"regions", e.stats.Regions,
		"symbols", e.stats.Symbols,
		"duration", e.stats.Duration)
	return ops, e.stats, nil
}

func (e *engine) container(oldC, newC tree.Node) ([]Operation, error) {
	if err := e.ctx.Err(); err != nil {
		return nil, err
	}
	e.stats.Containers++

	oldS, err := e.encoder.Encode(oldC)
	if err != nil {
		return nil, e.wrapEncode("old", err)
	}
	newS, err := e.encoder.Encode(newC)
	if err != nil {
		return nil, e.wrapEncode("new", err)
	}

	var ops []Operation
	for _, span := range align.Align(oldS, newS) {
		if span.Kind == align.Region {
			e.stats.Regions++
			region, err := e.region(span)
			if err != nil {
				return nil, err
			}
			ops = append(ops, region...)
			continue
		}

		e.stats.Anchors++
		o, n := span.Old[0], span.New[0]
		op := Operation{Kind: Equal, Node: n.Node, Old: o.Node, Chain: n.Chain}
		if n.Class != tree.Atomic {
			children, err := e.container(o.Node, n.Node)
			if err != nil {
				return nil, err
			}
			op.Children, op.Recursed = children, true
			if textChanged(children) {
				op.Kind = Modified
			}
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// textChanged reports whether the ops of a matched pair change its text.
// Inserted or deleted elements count only when they carry text, so purely
// structural edits such as a removed image leave the pair Equal.
func textChanged(ops []Operation) bool {
	for _, op := range ops {
		switch {
		case op.Kind == Modified:
			return true
		case op.Kind == Equal:
			continue
		case op.IsText() || hasText(op.Node):
			return true
		}
	}
	return false
}

func hasText(n tree.Node) bool {
	if n.Type() == tree.TextNode {
		return symbol.Sanitize(n.Text()) != ""
	}
	for _, child := range n.Children() {
		if hasText(child) {
			return true
		}
	}
	return false
}

func (e *engine) wrapEncode(side string, err error) error {
	if errors.Is(err, symbol.ErrExhausted) {
		return &ExhaustedError{Side: side, Budget: e.table.Budget()}
	}
	return fmt.Errorf("failed to encode %s document: %w", side, err)
}

// regionSide is one side of a region laid out as text: the marked form
// handed to the text differ, plus where its elements and text runs sit in
// the marker-free form.
type regionSide struct {
	marked strings.Builder
	plain  strings.Builder
	length int
	elems  []placedElement
	runs   []textRun
	cursor int
}

type placedElement struct {
	pos int
	tok encode.Token
}

type textRun struct {
	end   int
	chain []tree.Node
}

func newRegionSide(tokens []encode.Token) *regionSide {
	s := &regionSide{}
	for _, tok := range tokens {
		if tok.Kind == encode.ElementToken {
			s.elems = append(s.elems, placedElement{pos: s.length, tok: tok})
			s.marked.WriteRune(marker.Rune)
			continue
		}
		s.marked.WriteString(tok.Text)
		s.plain.WriteString(tok.Text)
		s.length += tok.Len()
		s.runs = append(s.runs, textRun{end: s.length, chain: tok.Chain})
	}
	return s
}

// chainAt returns the formatting chain of the text rune at pos. Positions
// must be asked for in increasing order.
func (s *regionSide) chainAt(pos int) []tree.Node {
	for s.cursor < len(s.runs) && s.runs[s.cursor].end <= pos {
		s.cursor++
	}
	if s.cursor < len(s.runs) {
		return s.runs[s.cursor].chain
	}
	return nil
}

// region word-diffs the text of an unmatched stretch and places its
// unmatched elements where they sat in that text.
func (e *engine) region(span align.Span) ([]Operation, error) {
	oldSide, newSide := newRegionSide(span.Old), newRegionSide(span.New)

	var diffs []diffmatchpatch.Diff
	if oldSide.length > 0 || newSide.length > 0 {
		e.stats.TextDiffs++
		diffs = marker.Strip(e.diffText(oldSide.marked.String(), newSide.marked.String()))
	}
	if !rebuilds(diffs, oldSide.plain.String(), newSide.plain.String()) {
		return nil, ErrInvalidTextDiff
	}

	var (
		b       opBuilder
		oi, ni  int
		nextOld int
		nextNew int
	)
	flushOld := func(upto int) {
		for ; nextOld < len(oldSide.elems) && oldSide.elems[nextOld].pos <= upto; nextOld++ {
			tok := oldSide.elems[nextOld].tok
			b.element(Operation{Kind: Deleted, Node: tok.Node, Chain: tok.Chain})
		}
	}
	flushNew := func(upto int) {
		for ; nextNew < len(newSide.elems) && newSide.elems[nextNew].pos <= upto; nextNew++ {
			tok := newSide.elems[nextNew].tok
			b.element(Operation{Kind: Inserted, Node: tok.Node, Chain: tok.Chain})
		}
	}

	for _, d := range diffs {
		for _, r := range d.Text {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				flushOld(oi)
				flushNew(ni)
				b.text(Equal, r, newSide.chainAt(ni))
				oi++
				ni++
			case diffmatchpatch.DiffDelete:
				flushOld(oi)
				b.text(Deleted, r, oldSide.chainAt(oi))
				oi++
			case diffmatchpatch.DiffInsert:
				flushOld(oi)
				flushNew(ni)
				b.text(Inserted, r, newSide.chainAt(ni))
				ni++
			}
		}
	}
	flushOld(oldSide.length)
	flushNew(newSide.length)
	return b.finish(), nil
}

// rebuilds reports whether diffs are a valid edit script from old to new.
func rebuilds(diffs []diffmatchpatch.Diff, old, new string) bool {
	var o, n strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			o.WriteString(d.Text)
			n.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			o.WriteString(d.Text)
		case diffmatchpatch.DiffInsert:
			n.WriteString(d.Text)
		}
	}
	return o.String() == old && n.String() == new
}

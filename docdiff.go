// Package docdiff computes visual diffs between two document trees.
//
// The two trees are flattened container by container into sequences of
// opaque symbols, aligned with a generic sequence-diff primitive, and the
// text between matched elements is diffed word by word. The result is a
// new tree in which inserted and deleted content is marked with classes:
//
//	out, err := docdiff.DiffHTML(`<p>The quick fox</p>`, `<p>The slow fox</p>`)
//	// <p class="vdd-modified">The <del class="vdd-removed">quick </del>
//	// <ins class="vdd-added">slow </ins>fox</p>
//
// Any tree can be diffed as long as it implements Node. Inputs are never
// modified.
package docdiff

import (
	"context"
	"errors"
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/livefir/docdiff/internal/engine"
	"github.com/livefir/docdiff/internal/htmldom"
	"github.com/livefir/docdiff/internal/render"
	"github.com/livefir/docdiff/internal/textdiff"
	"github.com/livefir/docdiff/internal/tree"
)

type (
	// Node is the read-only view of a document node the engine accepts.
	Node = tree.Node
	// Element and Text are the concrete node types of annotated output.
	Element = tree.Element
	Text    = tree.Text
	Attr    = tree.Attr

	// Predicate overrides element classification; see WithSkipChildren.
	Predicate = tree.Predicate
	Decision  = tree.Decision

	// TextDiff is one span of a text-level diff.
	TextDiff = diffmatchpatch.Diff

	// Operation is one entry of the structural result.
	Operation = engine.Operation
	OpKind    = engine.Kind
)

const (
	Defer = tree.Defer
	Yes   = tree.Yes
	No    = tree.No
)

const (
	OpEqual    = engine.Equal
	OpInserted = engine.Inserted
	OpDeleted  = engine.Deleted
	OpModified = engine.Modified
)

// TagPredicate answers Yes for the given tags and Defer otherwise.
func TagPredicate(tags ...string) Predicate {
	return tree.TagPredicate(tags...)
}

// Stats summarizes one diff.
type Stats struct {
	engine.Stats
	Equal    int
	Inserted int
	Deleted  int
	Modified int
}

// Result is a completed diff.
type Result struct {
	Tree  *Element
	Ops   []Operation
	Stats Stats
}

// HasChanges reports whether anything was inserted, deleted or modified.
func (r *Result) HasChanges() bool {
	return r.Stats.Inserted+r.Stats.Deleted+r.Stats.Modified > 0
}

// Diff compares two trees and returns the annotated tree. Roots that are
// Normal elements with the same tag are compared by content and the new
// root is copied to the output; any other pair of roots (text, Atomic
// elements, different tags) is compared as a whole and the output is a
// nameless element holding the result. A nil root is treated as an empty
// document.
func Diff(oldRoot, newRoot Node, opts ...Option) (Node, error) {
	result, err := DiffContext(context.Background(), oldRoot, newRoot, opts...)
	if err != nil {
		return nil, err
	}
	return result.Tree, nil
}

// DiffContext is Diff with cancellation, returning the operations and
// statistics along with the tree.
func DiffContext(ctx context.Context, oldRoot, newRoot Node, opts ...Option) (*Result, error) {
	config := newConfig(opts)
	engineOpts := config.engineOptions()

	ops, engineStats, err := engine.Run(ctx, oldRoot, newRoot, engineOpts)
	if err != nil {
		var exhausted *engine.ExhaustedError
		switch {
		case errors.As(err, &exhausted):
			return nil, &ComplexityError{Side: exhausted.Side, Signatures: exhausted.Budget}
		case errors.Is(err, engine.ErrInvalidTextDiff):
			return nil, ErrInvalidTextDiff
		}
		return nil, fmt.Errorf("comparison failed: %w", err)
	}

	stats := Stats{Stats: engineStats}
	countOps(&stats, ops)
	config.Logger.Debug("diff rendered",
		"equal", stats.Equal,
		"inserted", stats.Inserted,
		"deleted", stats.Deleted,
		"modified", stats.Modified)

	var out *Element
	if engine.SharedRoot(oldRoot, newRoot, engineOpts) {
		out = render.Render(oldRoot, newRoot, ops, config.classes())
	} else {
		out = render.Fragment(ops, config.classes())
	}

	return &Result{
		Tree:  out,
		Ops:   ops,
		Stats: stats,
	}, nil
}

func countOps(stats *Stats, ops []Operation) {
	for _, op := range ops {
		switch op.Kind {
		case engine.Equal:
			stats.Equal++
		case engine.Inserted:
			stats.Inserted++
		case engine.Deleted:
			stats.Deleted++
		case engine.Modified:
			stats.Modified++
		}
		countOps(stats, op.Children)
	}
}

// DiffHTML parses two HTML fragments, diffs them and serializes the
// annotated result.
func DiffHTML(oldHTML, newHTML string, opts ...Option) (string, error) {
	result, err := DiffHTMLContext(context.Background(), oldHTML, newHTML, opts...)
	if err != nil {
		return "", err
	}
	return htmldom.Render(result.Tree)
}

// DiffHTMLContext is DiffHTML returning the full Result.
func DiffHTMLContext(ctx context.Context, oldHTML, newHTML string, opts ...Option) (*Result, error) {
	config := newConfig(opts)
	oldRoot, err := htmldom.Parse(oldHTML, config.parseOptions())
	if err != nil {
		return nil, fmt.Errorf("old document: %w", err)
	}
	newRoot, err := htmldom.Parse(newHTML, config.parseOptions())
	if err != nil {
		return nil, fmt.Errorf("new document: %w", err)
	}
	return DiffContext(ctx, oldRoot, newRoot, opts...)
}

// RenderHTML serializes the children of an annotated tree.
func RenderHTML(root Node) (string, error) {
	return htmldom.Render(root)
}

// DiffWords diffs two texts word by word. Each span holds whole
// whitespace-delimited words with their trailing whitespace.
func DiffWords(oldText, newText string) []TextDiff {
	return textdiff.DiffWords(oldText, newText)
}

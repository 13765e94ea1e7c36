// Package render turns an operation list into an annotated tree.
package render

import (
	"github.com/livefir/docdiff/internal/engine"
	"github.com/livefir/docdiff/internal/tree"
)

const (
	insertedTag = "ins"
	deletedTag  = "del"
)

// Classes names the markers applied to changed content.
type Classes struct {
	Added    string
	Removed  string
	Modified string
	// SkipModified leaves matched elements whose text changed unmarked.
	// Their inserted and deleted content is still marked.
	SkipModified bool
}

// Render builds the annotated tree. The root is a copy of newRoot without
// its children (oldRoot when newRoot is nil), holding the rendered ops.
// Inputs are never modified.
func Render(oldRoot, newRoot tree.Node, ops []engine.Operation, c Classes) *tree.Element {
	var root *tree.Element
	switch {
	case newRoot != nil:
		root = tree.ShallowClone(newRoot)
	case oldRoot != nil:
		root = tree.ShallowClone(oldRoot)
	default:
		root = &tree.Element{}
	}
	renderInto(root, ops, c)
	return root
}

// Fragment renders ops that describe the roots themselves into a nameless
// element, for roots that were not diffed as a shared container.
func Fragment(ops []engine.Operation, c Classes) *tree.Element {
	root := &tree.Element{}
	renderInto(root, ops, c)
	return root
}

func renderInto(parent *tree.Element, ops []engine.Operation, c Classes) {
	w := writer{parent: parent}
	for _, op := range ops {
		w.append(op.Chain, node(op, c))
	}
}

func node(op engine.Operation, c Classes) tree.Node {
	if op.IsText() {
		text := tree.NewText(op.Text)
		switch op.Kind {
		case engine.Inserted:
			return tree.NewElement(insertedTag, classAttr(c.Added), text)
		case engine.Deleted:
			return tree.NewElement(deletedTag, classAttr(c.Removed), text)
		default:
			return text
		}
	}

	switch {
	case op.Kind == engine.Inserted:
		return marked(op.Node, c.Added)
	case op.Kind == engine.Deleted:
		return marked(op.Node, c.Removed)
	case op.Recursed:
		e := tree.ShallowClone(op.Node)
		if op.Kind == engine.Modified && !c.SkipModified {
			e.AddClass(c.Modified)
		}
		renderInto(e, op.Children, c)
		return e
	default:
		return tree.Clone(op.Node)
	}
}

func marked(n tree.Node, class string) tree.Node {
	clone := tree.Clone(n)
	if e, ok := clone.(*tree.Element); ok {
		e.AddClass(class)
	}
	return clone
}

func classAttr(class string) []tree.Attr {
	if class == "" {
		return nil
	}
	return []tree.Attr{{Key: "class", Val: class}}
}

// writer appends rendered nodes to a parent, reopening the Transparent
// wrappers each node sat in. Consecutive nodes under equivalent wrappers
// share one wrapper copy.
type writer struct {
	parent *tree.Element
	open   []openWrapper
}

type openWrapper struct {
	source tree.Node
	clone  *tree.Element
}

func (w *writer) append(chain []tree.Node, n tree.Node) {
	keep := 0
	for keep < len(w.open) && keep < len(chain) && sameWrapper(w.open[keep].source, chain[keep]) {
		keep++
	}
	w.open = w.open[:keep]

	for _, wrapper := range chain[keep:] {
		clone := tree.ShallowClone(wrapper)
		w.top().Append(clone)
		w.open = append(w.open, openWrapper{source: wrapper, clone: clone})
	}
	w.top().Append(n)
}

func (w *writer) top() *tree.Element {
	if len(w.open) == 0 {
		return w.parent
	}
	return w.open[len(w.open)-1].clone
}

func sameWrapper(a, b tree.Node) bool {
	if a == b {
		return true
	}
	if a.Tag() != b.Tag() {
		return false
	}
	aa, ba := tree.SortedAttrs(a), tree.SortedAttrs(b)
	if len(aa) != len(ba) {
		return false
	}
	for i := range aa {
		if aa[i] != ba[i] {
			return false
		}
	}
	return true
}

package engine

import (
	"strings"

	"github.com/livefir/docdiff/internal/tree"
)

// Kind classifies an operation.
type Kind int

const (
	Equal Kind = iota
	Inserted
	Deleted
	Modified
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Inserted:
		return "inserted"
	case Deleted:
		return "deleted"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// Operation is one entry of the annotated result. Text operations carry
// Text and no Node. Element operations carry the element: the new-side
// node for Equal, Modified and Inserted, the old-side node for Deleted.
type Operation struct {
	Kind Kind
	Text string
	Node tree.Node
	// Old is the matched old-side element of an Equal or Modified pair.
	Old tree.Node
	// Chain is the run of Transparent wrappers the content sat in, taken
	// from the new side for Equal and Inserted content and from the old
	// side for Deleted content.
	Chain []tree.Node
	// Children holds the diff of a matched Normal element's content.
	// Atomic pairs and unmatched elements have none.
	Children []Operation
	// Recursed reports that Children is the diff of the element's content
	// rather than absent.
	Recursed bool
}

// IsText reports whether op is a text span.
func (op Operation) IsText() bool {
	return op.Node == nil
}

// Sides rebuilds the marker-free text of both documents from ops,
// descending into matched elements and taking unmatched elements whole.
func Sides(ops []Operation) (old, new string) {
	var o, n strings.Builder
	writeSides(&o, &n, ops)
	return o.String(), n.String()
}

func writeSides(o, n *strings.Builder, ops []Operation) {
	for _, op := range ops {
		if op.IsText() {
			switch op.Kind {
			case Equal:
				o.WriteString(op.Text)
				n.WriteString(op.Text)
			case Deleted:
				o.WriteString(op.Text)
			case Inserted:
				n.WriteString(op.Text)
			}
			continue
		}
		switch {
		case op.Kind == Deleted:
			o.WriteString(tree.TextContent(op.Node))
		case op.Kind == Inserted:
			n.WriteString(tree.TextContent(op.Node))
		case op.Recursed:
			writeSides(o, n, op.Children)
		default:
			o.WriteString(tree.TextContent(op.Old))
			n.WriteString(tree.TextContent(op.Node))
		}
	}
}

// sameChain reports whether two chains name the same wrapper nodes.
func sameChain(a, b []tree.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// opBuilder collects a region's operations rune by rune, merging text of
// the same kind and formatting chain into one span.
type opBuilder struct {
	ops   []Operation
	kind  Kind
	chain []tree.Node
	buf   strings.Builder
	open  bool
}

func (b *opBuilder) text(kind Kind, r rune, chain []tree.Node) {
	if b.open && (b.kind != kind || !sameChain(b.chain, chain)) {
		b.flush()
	}
	if !b.open {
		b.kind, b.chain, b.open = kind, chain, true
	}
	b.buf.WriteRune(r)
}

func (b *opBuilder) element(op Operation) {
	b.flush()
	b.ops = append(b.ops, op)
}

func (b *opBuilder) flush() {
	if !b.open {
		return
	}
	b.ops = append(b.ops, Operation{Kind: b.kind, Text: b.buf.String(), Chain: b.chain})
	b.buf.Reset()
	b.open = false
}

func (b *opBuilder) finish() []Operation {
	b.flush()
	return b.ops
}

// Package tree defines the document model the diff engine works on.
//
// Any host tree can be diffed as long as it exposes tag identity, ordered
// children and text through the Node interface. The engine never mutates
// its inputs; annotated output is built from the concrete Element and Text
// types of this package.
package tree

import (
	"sort"
	"strings"
)

// NodeType distinguishes elements from text.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	default:
		return "unknown"
	}
}

// Attr is a single element attribute.
type Attr struct {
	Key string
	Val string
}

// Node is the read-only view of a document node.
//
// Implementations must be comparable (pointer types in practice): the
// engine uses node identity to group text under the same formatting
// wrapper.
type Node interface {
	Type() NodeType
	// Tag is the element name. Empty for text nodes.
	Tag() string
	Attrs() []Attr
	Children() []Node
	// Text is the literal content of a text node. Empty for elements.
	Text() string
}

// Element is the concrete element type produced by the HTML front-end and
// by the renderer.
type Element struct {
	Name       string
	Attributes []Attr
	Nodes      []Node
}

// NewElement creates an element with a copy of attrs and the given children.
func NewElement(name string, attrs []Attr, children ...Node) *Element {
	e := &Element{Name: name}
	if len(attrs) > 0 {
		e.Attributes = append([]Attr(nil), attrs...)
	}
	e.Nodes = append(e.Nodes, children...)
	return e
}

func (e *Element) Type() NodeType   { return ElementNode }
func (e *Element) Tag() string      { return e.Name }
func (e *Element) Attrs() []Attr    { return e.Attributes }
func (e *Element) Children() []Node { return e.Nodes }
func (e *Element) Text() string     { return "" }

// Append adds children at the end.
func (e *Element) Append(children ...Node) {
	e.Nodes = append(e.Nodes, children...)
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(key, val string) {
	for i := range e.Attributes {
		if e.Attributes[i].Key == key {
			e.Attributes[i].Val = val
			return
		}
	}
	e.Attributes = append(e.Attributes, Attr{Key: key, Val: val})
}

// AddClass appends class to the element's class attribute unless it is
// already present.
func (e *Element) AddClass(class string) {
	if class == "" {
		return
	}
	current, ok := GetAttr(e, "class")
	if !ok || strings.TrimSpace(current) == "" {
		e.SetAttr("class", class)
		return
	}
	for _, c := range strings.Fields(current) {
		if c == class {
			return
		}
	}
	e.SetAttr("class", current+" "+class)
}

// Text is the concrete text node type.
type Text struct {
	Data string
}

// NewText creates a text node.
func NewText(data string) *Text {
	return &Text{Data: data}
}

func (t *Text) Type() NodeType   { return TextNode }
func (t *Text) Tag() string      { return "" }
func (t *Text) Attrs() []Attr    { return nil }
func (t *Text) Children() []Node { return nil }
func (t *Text) Text() string     { return t.Data }

// GetAttr returns the value of the named attribute.
func GetAttr(n Node, key string) (string, bool) {
	for _, a := range n.Attrs() {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SortedAttrs returns a copy of the node's attributes ordered by key.
func SortedAttrs(n Node) []Attr {
	attrs := append([]Attr(nil), n.Attrs()...)
	sort.SliceStable(attrs, func(i, j int) bool {
		return attrs[i].Key < attrs[j].Key
	})
	return attrs
}

// TextContent returns the concatenated text of n and all its descendants.
func TextContent(n Node) string {
	if n == nil {
		return ""
	}
	if n.Type() == TextNode {
		return n.Text()
	}
	var b strings.Builder
	writeText(&b, n)
	return b.String()
}

func writeText(b *strings.Builder, n Node) {
	for _, child := range n.Children() {
		if child.Type() == TextNode {
			b.WriteString(child.Text())
			continue
		}
		writeText(b, child)
	}
}

// ShallowClone copies an element's name and attributes without children.
func ShallowClone(n Node) *Element {
	return NewElement(n.Tag(), n.Attrs())
}

// Clone deep-copies any Node into the concrete types of this package.
func Clone(n Node) Node {
	if n.Type() == TextNode {
		return NewText(n.Text())
	}
	e := ShallowClone(n)
	for _, child := range n.Children() {
		e.Append(Clone(child))
	}
	return e
}

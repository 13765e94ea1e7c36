// Package htmldom converts between HTML source and the diff engine's tree.
package htmldom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/livefir/docdiff/internal/tree"
)

// RootTag names the element Parse returns as the fragment's container.
const RootTag = "body"

// ParseOptions controls how HTML source is turned into a tree.
type ParseOptions struct {
	// Minify runs the source through the HTML minifier first.
	Minify bool
	// KeepWhitespace keeps whitespace-only text between block elements.
	KeepWhitespace bool
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "dd": true, "details": true, "div": true, "dl": true,
	"dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"li": true, "main": true, "nav": true, "ol": true, "p": true,
	"section": true, "summary": true, "table": true, "tbody": true,
	"td": true, "tfoot": true, "th": true, "thead": true, "tr": true,
	"ul": true,
}

// Parse reads an HTML fragment into a tree rooted at a <body> element.
// Comments and doctypes are dropped and text is NFC-normalized so that
// canonically equivalent text compares equal.
func Parse(src string, opts ParseOptions) (*tree.Element, error) {
	if opts.Minify {
		src = minifyHTML(src)
	}

	context := &html.Node{Type: html.ElementNode, Data: RootTag, DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	root := tree.NewElement(RootTag, nil)
	for _, n := range nodes {
		if converted := convertNode(n); converted != nil {
			root.Append(converted)
		}
	}
	if opts.Minify {
		collapseWhitespace(root)
	}
	if !opts.KeepWhitespace {
		dropBlockWhitespace(root)
	}
	return root, nil
}

// convertNode recursively converts an html.Node. Nodes that carry no
// document content return nil.
func convertNode(n *html.Node) tree.Node {
	switch n.Type {
	case html.TextNode:
		return tree.NewText(norm.NFC.String(n.Data))
	case html.ElementNode:
		attrs := make([]tree.Attr, 0, len(n.Attr))
		for _, a := range n.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			attrs = append(attrs, tree.Attr{Key: key, Val: a.Val})
		}
		e := tree.NewElement(n.Data, attrs)
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if converted := convertNode(child); converted != nil {
				e.Append(converted)
			}
		}
		return e
	default:
		return nil
	}
}

// dropBlockWhitespace removes whitespace-only text that only separates
// block elements, which is source formatting rather than content.
func dropBlockWhitespace(e *tree.Element) {
	if e.Name == "pre" || e.Name == "textarea" {
		return
	}
	last := len(e.Nodes) - 1
	kept := make([]tree.Node, 0, len(e.Nodes))
	for i, child := range e.Nodes {
		if child.Type() == tree.TextNode && strings.TrimSpace(child.Text()) == "" {
			prevBlock := (i == 0 && blockTags[e.Name]) || (i > 0 && isBlock(e.Nodes[i-1]))
			nextBlock := (i == last && blockTags[e.Name]) || (i < last && isBlock(e.Nodes[i+1]))
			if prevBlock || nextBlock {
				continue
			}
		}
		if c, ok := child.(*tree.Element); ok {
			dropBlockWhitespace(c)
		}
		kept = append(kept, child)
	}
	e.Nodes = kept
}

func isBlock(n tree.Node) bool {
	return n.Type() == tree.ElementNode && blockTags[strings.ToLower(n.Tag())]
}

// Render serializes the children of root as HTML.
func Render(root tree.Node) (string, error) {
	if root == nil {
		return "", nil
	}
	var buf bytes.Buffer
	for _, child := range root.Children() {
		if err := html.Render(&buf, toHTML(child)); err != nil {
			return "", fmt.Errorf("failed to render HTML: %w", err)
		}
	}
	return buf.String(), nil
}

// RenderNode serializes n itself, including its own tag.
func RenderNode(n tree.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, toHTML(n)); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.String(), nil
}

func toHTML(n tree.Node) *html.Node {
	if n.Type() == tree.TextNode {
		return &html.Node{Type: html.TextNode, Data: n.Text()}
	}
	out := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag(),
		DataAtom: atom.Lookup([]byte(n.Tag())),
	}
	for _, a := range n.Attrs() {
		out.Attr = append(out.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, child := range n.Children() {
		out.AppendChild(toHTML(child))
	}
	return out
}

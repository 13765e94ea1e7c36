// Package encode flattens one container's content into a token stream for
// the sequence-diff primitive.
package encode

import (
	"strings"
	"unicode/utf8"

	"github.com/livefir/docdiff/internal/symbol"
	"github.com/livefir/docdiff/internal/tree"
)

// Kind distinguishes element tokens from text tokens.
type Kind int

const (
	ElementToken Kind = iota
	TextToken
)

// Token is one entry of a Stream.
type Token struct {
	Kind Kind
	Node tree.Node
	// Class is Normal or Atomic for element tokens.
	Class  tree.Class
	Symbol symbol.Symbol
	// Text is the sanitized content of a text token.
	Text string
	// Offset is the token's position in the stream's text with elements
	// removed, counted in runes.
	Offset int
	// Chain lists the Transparent wrappers between the container and the
	// token, outermost first. Chains are never mutated once recorded.
	Chain []tree.Node
}

// Len is the number of text runes the token contributes.
func (t Token) Len() int {
	if t.Kind == TextToken {
		return utf8.RuneCountInString(t.Text)
	}
	return 0
}

// Stream is the encoded content of one container.
type Stream struct {
	Tokens []Token
	// Runes is what the primitive sees: one symbol per element token,
	// the literal characters of each text token.
	Runes []rune
	// Owner maps each index of Runes back to its token, which makes the
	// token list the decode table for the stream.
	Owner []int

	textLen int
}

// TextLen is the total number of text runes in the stream.
func (s *Stream) TextLen() int {
	return s.textLen
}

func (s *Stream) addElement(n tree.Node, class tree.Class, sym symbol.Symbol, chain []tree.Node) {
	idx := len(s.Tokens)
	s.Tokens = append(s.Tokens, Token{
		Kind:   ElementToken,
		Node:   n,
		Class:  class,
		Symbol: sym,
		Offset: s.textLen,
		Chain:  chain,
	})
	s.Runes = append(s.Runes, rune(sym))
	s.Owner = append(s.Owner, idx)
}

func (s *Stream) addText(n tree.Node, text string, chain []tree.Node) {
	idx := len(s.Tokens)
	s.Tokens = append(s.Tokens, Token{
		Kind:   TextToken,
		Node:   n,
		Text:   text,
		Offset: s.textLen,
		Chain:  chain,
	})
	for _, r := range text {
		s.Runes = append(s.Runes, r)
		s.Owner = append(s.Owner, idx)
		s.textLen++
	}
}

// Encoder turns containers into streams, interning element signatures in
// a table shared by both sides of one diff call.
type Encoder struct {
	classifier      *tree.Classifier
	table           *symbol.Table
	matchAttributes []string
}

// New creates an encoder. matchAttributes widens Normal element
// signatures with the named attribute values.
func New(c *tree.Classifier, table *symbol.Table, matchAttributes []string) *Encoder {
	return &Encoder{
		classifier:      c,
		table:           table,
		matchAttributes: matchAttributes,
	}
}

// Encode flattens the content of container: text through any number of
// Transparent wrappers, and one token per Normal or Atomic element, which
// is not descended into. A nil container encodes to an empty stream.
func (e *Encoder) Encode(container tree.Node) (*Stream, error) {
	s := &Stream{}
	if container == nil {
		return s, nil
	}

	var (
		chain  []tree.Node
		failed error
	)
	visit := func(n tree.Node, class tree.Class) tree.Action {
		if failed != nil {
			return tree.SkipChildren
		}
		if n.Type() == tree.TextNode {
			if text := symbol.Sanitize(n.Text()); text != "" {
				s.addText(n, text, chain)
			}
			return tree.Continue
		}
		if class == tree.Transparent {
			chain = append(chain[:len(chain):len(chain)], n)
			return tree.Continue
		}
		sym, err := e.table.Intern(e.Signature(n, class))
		if err != nil {
			failed = err
			return tree.SkipChildren
		}
		s.addElement(n, class, sym, chain)
		return tree.SkipChildren
	}
	leave := func(n tree.Node, class tree.Class) {
		if failed == nil && n.Type() == tree.ElementNode && class == tree.Transparent {
			chain = chain[:len(chain)-1]
		}
	}

	for _, child := range container.Children() {
		tree.WalkLeave(child, e.classifier, visit, leave)
		if failed != nil {
			return nil, failed
		}
	}
	return s, nil
}

// Signature is the identity an element token is interned under. Normal
// elements are identified by tag (plus any match attributes) so that
// matched pairs can be compared recursively; Atomic elements by their
// whole content, so two differing media embeds never match.
func (e *Encoder) Signature(n tree.Node, class tree.Class) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(n.Tag()))
	if class == tree.Atomic {
		b.WriteString("\x00atomic")
		writeSubtree(&b, n, true)
		return b.String()
	}
	for _, name := range e.matchAttributes {
		if val, ok := tree.GetAttr(n, name); ok {
			b.WriteByte(0)
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(val)
		}
	}
	return b.String()
}

func writeSubtree(b *strings.Builder, n tree.Node, root bool) {
	if n.Type() == tree.TextNode {
		b.WriteString("\x00#")
		b.WriteString(n.Text())
		return
	}
	if !root {
		b.WriteString("\x00<")
		b.WriteString(strings.ToLower(n.Tag()))
	}
	for _, a := range tree.SortedAttrs(n) {
		b.WriteByte(0)
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(a.Val)
	}
	for _, child := range n.Children() {
		writeSubtree(b, child, false)
	}
	if !root {
		b.WriteString("\x00>")
	}
}

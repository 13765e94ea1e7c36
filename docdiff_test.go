package docdiff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/livefir/docdiff/internal/htmldom"
)

func TestDiffWords_ReplacedWord(t *testing.T) {
	got := DiffWords("The quick fox", "The slow fox")
	want := []TextDiff{
		{Type: diffmatchpatch.DiffEqual, Text: "The "},
		{Type: diffmatchpatch.DiffDelete, Text: "quick "},
		{Type: diffmatchpatch.DiffInsert, Text: "slow "},
		{Type: diffmatchpatch.DiffEqual, Text: "fox"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiffWords() = %q, want %q", got, want)
	}
}

func TestDiffHTML(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		opts     []Option
		want     string
	}{
		{
			name: "appended paragraph",
			old:  "<p>Hello</p>",
			new:  "<p>Hello</p><p>World</p>",
			want: `<p>Hello</p><p class="vdd-added">World</p>`,
		},
		{
			name: "bold removed",
			old:  "<b>Hi</b>",
			new:  "Hi",
			want: "Hi",
		},
		{
			name: "image replaced",
			old:  `<img src="a">`,
			new:  `<img src="b">`,
			want: `<img src="a" class="vdd-removed"/><img src="b" class="vdd-added"/>`,
		},
		{
			name: "word changed in paragraph",
			old:  "<p>The quick fox</p>",
			new:  "<p>The slow fox</p>",
			want: `<p class="vdd-modified">The <del class="vdd-removed">quick </del><ins class="vdd-added">slow </ins>fox</p>`,
		},
		{
			name: "custom classes",
			old:  "<p>a b</p>",
			new:  "<p>a c</p>",
			opts: []Option{WithAddedClass("plus"), WithRemovedClass("minus"), WithModifiedClass("changed")},
			want: `<p class="changed">a <del class="minus">b</del><ins class="plus">c</ins></p>`,
		},
		{
			name: "modified class skipped",
			old:  "<p>a b</p>",
			new:  "<p>a c</p>",
			opts: []Option{WithSkipModified(true)},
			want: `<p>a <del class="vdd-removed">b</del><ins class="vdd-added">c</ins></p>`,
		},
		{
			name: "wrapper made structural",
			old:  "<p><b>Hi</b></p>",
			new:  "<p>Hi</p>",
			opts: []Option{WithSkipSelf(func(n Node) Decision {
				if n.Tag() == "b" {
					return No
				}
				return Defer
			})},
			want: `<p><b class="vdd-removed">Hi</b><ins class="vdd-added">Hi</ins></p>`,
		},
		{
			name: "list item added",
			old:  "<ul>\n  <li>one</li>\n  <li>two</li>\n</ul>",
			new:  "<ul>\n  <li>one</li>\n  <li>two</li>\n  <li>three</li>\n</ul>",
			want: `<ul class="vdd-modified"><li>one</li><li>two</li><li class="vdd-added">three</li></ul>`,
		},
		{
			name: "unchanged",
			old:  "<h1>Title</h1><p>Body <em>text</em></p>",
			new:  "<h1>Title</h1><p>Body <em>text</em></p>",
			want: "<h1>Title</h1><p>Body <em>text</em></p>",
		},
		{
			name: "from empty",
			old:  "",
			new:  "<p>new</p>",
			want: `<p class="vdd-added">new</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiffHTML(tt.old, tt.new, tt.opts...)
			if err != nil {
				t.Fatalf("DiffHTML() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DiffHTML() = %s\nwant          %s", got, tt.want)
			}
		})
	}
}

func TestDiffHTML_AtomicOverride(t *testing.T) {
	old := "<table><tr><td>1</td></tr></table>"
	new := "<table><tr><td>2</td></tr></table>"

	got, err := DiffHTML(old, new, WithSkipChildren(TagPredicate("table")))
	if err != nil {
		t.Fatalf("DiffHTML() error = %v", err)
	}
	if !strings.Contains(got, `<table class="vdd-removed">`) || !strings.Contains(got, `<table class="vdd-added">`) {
		t.Errorf("DiffHTML() = %s, want the tables replaced whole", got)
	}
	if strings.Contains(got, "<ins") || strings.Contains(got, "<del") {
		t.Errorf("DiffHTML() = %s, atomic content was diffed", got)
	}
}

func TestDiffHTML_MatchAttributes(t *testing.T) {
	old := `<a href="/x">link</a>`
	new := `<a href="/y">link</a>`

	loose, err := DiffHTML(old, new)
	if err != nil {
		t.Fatalf("DiffHTML() error = %v", err)
	}
	if loose != `<a href="/y">link</a>` {
		t.Errorf("without match attributes = %s", loose)
	}

	strict, err := DiffHTML(old, new, WithMatchAttributes("href"))
	if err != nil {
		t.Fatalf("DiffHTML() error = %v", err)
	}
	if strict != `<a href="/x" class="vdd-removed">link</a><a href="/y" class="vdd-added">link</a>` {
		t.Errorf("with match attributes = %s", strict)
	}
}

func TestDiff_TooComplex(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 6400; i++ {
		fmt.Fprintf(&b, `<img src="%d.png">`, i)
	}

	_, err := DiffHTML(b.String(), "<p>small</p>")
	if !errors.Is(err, ErrTooComplex) {
		t.Fatalf("DiffHTML() error = %v, want ErrTooComplex", err)
	}
	var complexity *ComplexityError
	if !errors.As(err, &complexity) || complexity.Side != "old" {
		t.Errorf("error = %v, want a ComplexityError for the old side", err)
	}

	_, err = DiffHTML("<p>small</p>", `<img src="1"><img src="2"><img src="3">`, WithStructuralBudget(2))
	if !errors.As(err, &complexity) || complexity.Side != "new" || complexity.Signatures != 2 {
		t.Errorf("error = %v, want a ComplexityError for the new side with budget 2", err)
	}
}

func TestDiff_CustomTextDiffer(t *testing.T) {
	chars := func(old, new string) []TextDiff {
		return diffmatchpatch.New().DiffMain(old, new, false)
	}

	got, err := DiffHTML("<p>color</p>", "<p>colour</p>", WithDiffText(chars))
	if err != nil {
		t.Fatalf("DiffHTML() error = %v", err)
	}
	if want := `<p class="vdd-modified">colo<ins class="vdd-added">u</ins>r</p>`; got != want {
		t.Errorf("DiffHTML() = %s, want %s", got, want)
	}

	broken := func(old, new string) []TextDiff { return nil }
	if _, err := DiffHTML("<p>a</p>", "<p>b</p>", WithDiffText(broken)); !errors.Is(err, ErrInvalidTextDiff) {
		t.Errorf("DiffHTML() error = %v, want ErrInvalidTextDiff", err)
	}
}

func TestDiffContext(t *testing.T) {
	old := parseDoc(t, "<h1>Title</h1><p>one two</p>")
	new := parseDoc(t, "<h1>Title</h1><p>one three</p><p>extra</p>")

	result, err := DiffContext(context.Background(), old, new)
	if err != nil {
		t.Fatalf("DiffContext() error = %v", err)
	}
	if !result.HasChanges() {
		t.Error("HasChanges() = false")
	}
	if result.Stats.Modified != 1 || result.Stats.Inserted < 2 || result.Stats.Deleted < 1 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.Stats.Containers != 3 {
		t.Errorf("containers = %d, want 3", result.Stats.Containers)
	}

	same, err := DiffContext(context.Background(), old, old)
	if err != nil {
		t.Fatalf("DiffContext() error = %v", err)
	}
	if same.HasChanges() {
		t.Errorf("diff of a document with itself has changes: %+v", same.Stats)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := DiffContext(ctx, old, new); !errors.Is(err, context.Canceled) {
		t.Errorf("DiffContext() error = %v, want context.Canceled", err)
	}
}

func TestDiffContext_Roots(t *testing.T) {
	img := func(src string) Node {
		return &Element{Name: "img", Attributes: []Attr{{Key: "src", Val: src}}}
	}
	para := func(tag, text string) Node {
		return &Element{Name: tag, Nodes: []Node{&Text{Data: text}}}
	}

	tests := []struct {
		name        string
		old, new    Node
		want        string
		wantChanges bool
	}{
		{
			name:        "text roots",
			old:         &Text{Data: "The quick fox"},
			new:         &Text{Data: "The slow fox"},
			want:        `The <del class="vdd-removed">quick </del><ins class="vdd-added">slow </ins>fox`,
			wantChanges: true,
		},
		{
			name: "identical text roots",
			old:  &Text{Data: "The quick fox"},
			new:  &Text{Data: "The quick fox"},
			want: "The quick fox",
		},
		{
			name:        "atomic roots",
			old:         img("a"),
			new:         img("b"),
			want:        `<img src="a" class="vdd-removed"/><img src="b" class="vdd-added"/>`,
			wantChanges: true,
		},
		{
			name: "identical atomic roots",
			old:  img("a"),
			new:  img("a"),
			want: `<img src="a"/>`,
		},
		{
			name:        "root tags differ",
			old:         para("p", "x"),
			new:         para("h1", "x"),
			want:        `<p class="vdd-removed">x</p><h1 class="vdd-added">x</h1>`,
			wantChanges: true,
		},
		{
			name:        "text root removed",
			old:         &Text{Data: "gone"},
			new:         nil,
			want:        `<del class="vdd-removed">gone</del>`,
			wantChanges: true,
		},
		{
			name:        "same root tag",
			old:         para("p", "a b"),
			new:         para("p", "a c"),
			want:        `a <del class="vdd-removed">b</del><ins class="vdd-added">c</ins>`,
			wantChanges: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DiffContext(context.Background(), tt.old, tt.new)
			if err != nil {
				t.Fatalf("DiffContext() error = %v", err)
			}
			if result.HasChanges() != tt.wantChanges {
				t.Errorf("HasChanges() = %v, want %v (stats %+v)", result.HasChanges(), tt.wantChanges, result.Stats)
			}
			got, err := RenderHTML(result.Tree)
			if err != nil {
				t.Fatalf("RenderHTML() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RenderHTML() = %s\nwant           %s", got, tt.want)
			}
		})
	}
}

func TestDiff_SameRootTagKeepsRoot(t *testing.T) {
	old := &Element{Name: "p", Attributes: []Attr{{Key: "id", Val: "old"}}, Nodes: []Node{&Text{Data: "a"}}}
	new := &Element{Name: "p", Attributes: []Attr{{Key: "id", Val: "new"}}, Nodes: []Node{&Text{Data: "a"}}}

	out, err := Diff(old, new)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if out.Tag() != "p" {
		t.Fatalf("root tag = %q, want p", out.Tag())
	}
	if id := out.Attrs(); len(id) != 1 || id[0].Val != "new" {
		t.Errorf("root attrs = %v, want the new root's", id)
	}
}

func TestDiff_NilRoots(t *testing.T) {
	out, err := Diff(nil, nil)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if len(out.Children()) != 0 {
		t.Errorf("Diff(nil, nil) has %d children", len(out.Children()))
	}
}

func TestDiff_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if _, err := DiffHTML("<p>a</p>", "<p>b</p>", WithLogger(logger)); err != nil {
		t.Fatalf("DiffHTML() error = %v", err)
	}
	if !strings.Contains(buf.String(), "diff complete") {
		t.Errorf("log output = %q, want stage logging", buf.String())
	}
}

func parseDoc(t *testing.T, src string) Node {
	t.Helper()
	root, err := htmldom.Parse(src, htmldom.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return root
}

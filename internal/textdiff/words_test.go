package textdiff

import (
	"reflect"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/livefir/docdiff/internal/marker"
)

const m = string(marker.Rune)

func eq(s string) diffmatchpatch.Diff  { return diffmatchpatch.Diff{Type: diffmatchpatch.DiffEqual, Text: s} }
func del(s string) diffmatchpatch.Diff { return diffmatchpatch.Diff{Type: diffmatchpatch.DiffDelete, Text: s} }
func ins(s string) diffmatchpatch.Diff { return diffmatchpatch.Diff{Type: diffmatchpatch.DiffInsert, Text: s} }

// sides rebuilds the two texts a diff was computed from.
func sides(diffs []diffmatchpatch.Diff) (string, string) {
	var old, new strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			old.WriteString(d.Text)
			new.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			old.WriteString(d.Text)
		case diffmatchpatch.DiffInsert:
			new.WriteString(d.Text)
		}
	}
	return old.String(), new.String()
}

func TestChunks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single word", "fox", []string{"fox"}},
		{"trailing whitespace kept", "The quick fox ", []string{"The ", "quick ", "fox "}},
		{"leading whitespace", "  lead word", []string{"  ", "lead ", "word"}},
		{"mixed whitespace", "a\t\nb", []string{"a\t\n", "b"}},
		{"markers standalone", "end" + m + " start" + m + m, []string{"end", m, " ", "start", m, m}},
		{"only whitespace", " \n ", []string{" \n "}},
		{"non-ascii", "naïve café", []string{"naïve ", "café"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunks(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Chunks(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if joined := strings.Join(got, ""); joined != tt.in {
				t.Errorf("joined chunks = %q, want %q", joined, tt.in)
			}
		})
	}
}

func TestDiffWords(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		want     []diffmatchpatch.Diff
	}{
		{
			name: "replaced word",
			old:  "The quick fox",
			new:  "The slow fox",
			want: []diffmatchpatch.Diff{eq("The "), del("quick "), ins("slow "), eq("fox")},
		},
		{
			name: "identical",
			old:  "same text here",
			new:  "same text here",
			want: []diffmatchpatch.Diff{eq("same text here")},
		},
		{
			name: "appended words",
			old:  "one two",
			new:  "one two three",
			want: []diffmatchpatch.Diff{eq("one "), del("two"), ins("two three")},
		},
		{
			name: "all new",
			old:  "",
			new:  "fresh text",
			want: []diffmatchpatch.Diff{ins("fresh text")},
		},
		{
			name: "all gone",
			old:  "old text",
			new:  "",
			want: []diffmatchpatch.Diff{del("old text")},
		},
		{
			name: "both empty",
			old:  "",
			new:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffWords(tt.old, tt.new)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DiffWords(%q, %q) = %q, want %q", tt.old, tt.new, got, tt.want)
			}
		})
	}
}

func TestDiffWords_MarkersNeverLeak(t *testing.T) {
	old := "intro" + m + " shared words" + m + "tail"
	new := "intro" + m + " shared phrase" + m + m + "tail end"

	got := DiffWords(old, new)
	if marker.Leaks(got) {
		t.Fatalf("diff %q leaks a marker", got)
	}
	o, n := sides(got)
	if o != strings.ReplaceAll(old, m, "") || n != strings.ReplaceAll(new, m, "") {
		t.Errorf("diff %q does not rebuild the marker-free inputs", got)
	}
}

func TestDiffWords_BudgetOverflow(t *testing.T) {
	old := "alpha beta gamma delta epsilon zeta eta theta"
	new := "alpha beta iota kappa epsilon lambda eta mu nu"

	for _, budget := range []int{1, 2, 3, 4, 8} {
		got := Differ{Budget: budget}.Diff(old, new)
		o, n := sides(got)
		if o != old || n != new {
			t.Errorf("budget %d: diff %q rebuilds %q / %q", budget, got, o, n)
		}
		if marker.Leaks(got) {
			t.Errorf("budget %d: reserved rune in output", budget)
		}
	}
}

func TestDiffWords_RandomText(t *testing.T) {
	f := gofakeit.New(42)
	sentence := func(words int) string {
		parts := make([]string, words)
		for i := range parts {
			parts[i] = f.Word()
		}
		return strings.Join(parts, " ")
	}

	for i := 0; i < 200; i++ {
		old := sentence(f.IntRange(0, 30))
		words := strings.Fields(old)
		for j := range words {
			if f.IntRange(0, 4) == 0 {
				words[j] = f.Word()
			}
		}
		if f.IntRange(0, 2) == 0 {
			words = append(words, sentence(f.IntRange(1, 5)))
		}
		new := strings.Join(words, " ")

		got := DiffWords(old, new)
		o, n := sides(got)
		if o != old || n != new {
			t.Fatalf("case %d: diff of %q and %q rebuilds %q / %q", i, old, new, o, n)
		}
		if marker.Leaks(got) {
			t.Fatalf("case %d: reserved rune in output", i)
		}
		for k := 1; k < len(got); k++ {
			if got[k].Type == got[k-1].Type {
				t.Fatalf("case %d: adjacent spans of one kind in %q", i, got)
			}
		}
	}
}

func TestChunks_RandomLossless(t *testing.T) {
	f := gofakeit.New(7)
	seps := []string{" ", "  ", "\t", "\n", m, " " + m + " "}
	for i := 0; i < 200; i++ {
		var b strings.Builder
		for j := f.IntRange(0, 20); j > 0; j-- {
			b.WriteString(seps[f.IntRange(0, len(seps)-1)])
			b.WriteString(f.Word())
		}
		s := b.String()
		if got := strings.Join(Chunks(s), ""); got != s {
			t.Fatalf("Chunks(%q) rejoined to %q", s, got)
		}
	}
}

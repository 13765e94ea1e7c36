package seqdiff

import (
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

func sides(diffs []diffmatchpatch.Diff) (string, string) {
	var a, b strings.Builder
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffInsert {
			a.WriteString(d.Text)
		}
		if d.Type != diffmatchpatch.DiffDelete {
			b.WriteString(d.Text)
		}
	}
	return a.String(), b.String()
}

func TestRunes(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"identical", "abc", "abc"},
		{"insert", "ac", "abc"},
		{"delete", "abc", "ac"},
		{"replace", "abc", "xyz"},
		{"empty old", "", "abc"},
		{"empty new", "abc", ""},
		{"private use", "\uE000\uE001\uE002", "\uE000\uE002\uE003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diffs := Runes([]rune(tt.a), []rune(tt.b))
			a, b := sides(diffs)
			if a != tt.a || b != tt.b {
				t.Errorf("Runes() rebuilds (%q, %q), want (%q, %q)", a, b, tt.a, tt.b)
			}
		})
	}
}

func TestRunes_Deterministic(t *testing.T) {
	a := []rune(strings.Repeat("abcde", 200))
	b := []rune(strings.Repeat("abxde", 200))

	first := Runes(a, b)
	for i := 0; i < 5; i++ {
		again := Runes(a, b)
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d spans, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d differs at span %d: %v vs %v", i, j, again[j], first[j])
			}
		}
	}
}

func TestNew_NoTimeout(t *testing.T) {
	if New().DiffTimeout != 0 {
		t.Error("New() should disable the diff timeout")
	}
}

package marker

import (
	"reflect"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const m = string(Rune)

func eq(s string) diffmatchpatch.Diff  { return diffmatchpatch.Diff{Type: diffmatchpatch.DiffEqual, Text: s} }
func del(s string) diffmatchpatch.Diff { return diffmatchpatch.Diff{Type: diffmatchpatch.DiffDelete, Text: s} }
func ins(s string) diffmatchpatch.Diff { return diffmatchpatch.Diff{Type: diffmatchpatch.DiffInsert, Text: s} }

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   []diffmatchpatch.Diff
		want []diffmatchpatch.Diff
	}{
		{
			name: "no markers",
			in:   []diffmatchpatch.Diff{eq("a "), del("b"), ins("c")},
			want: []diffmatchpatch.Diff{eq("a "), del("b"), ins("c")},
		},
		{
			name: "equal split around marker",
			in:   []diffmatchpatch.Diff{eq("pre " + m + " post")},
			want: []diffmatchpatch.Diff{eq("pre "), eq(" post")},
		},
		{
			name: "several markers in one equal",
			in:   []diffmatchpatch.Diff{eq(m + "a" + m + m + "b" + m)},
			want: []diffmatchpatch.Diff{eq("a"), eq("b")},
		},
		{
			name: "deleted marker dropped, kind kept",
			in:   []diffmatchpatch.Diff{del("x" + m + "y"), ins(m)},
			want: []diffmatchpatch.Diff{del("xy")},
		},
		{
			name: "empty spans dropped",
			in:   []diffmatchpatch.Diff{eq(""), eq(m), ins("z")},
			want: []diffmatchpatch.Diff{ins("z")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Strip(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Strip() = %q, want %q", got, tt.want)
			}
			if Leaks(got) {
				t.Error("Strip() output still carries a reserved rune")
			}
			if again := Strip(got); !reflect.DeepEqual(again, got) {
				t.Errorf("Strip() is not idempotent: %q then %q", got, again)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	in := []diffmatchpatch.Diff{
		eq("one "),
		del("two"),
		eq(" three" + m + "four "),
		ins("five" + m),
		eq(m + "six"),
	}
	want := [][]diffmatchpatch.Diff{
		{eq("one "), del("two"), eq(" three")},
		{eq("four "), ins("five")},
		{eq("six")},
	}

	got := Split(in)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split() = %q, want %q", got, want)
	}
	for _, g := range got {
		if Leaks(g) {
			t.Errorf("group %q carries a marker", g)
		}
	}
}

func TestSplit_NoMarkers(t *testing.T) {
	in := []diffmatchpatch.Diff{eq("a"), del("b")}
	got := Split(in)
	if len(got) != 1 || !reflect.DeepEqual(got[0], in) {
		t.Errorf("Split() = %q, want a single group", got)
	}
	if got := Split(nil); len(got) != 0 {
		t.Errorf("Split(nil) = %q, want no groups", got)
	}
}

// Package marker removes element-boundary markers from text-level diffs.
//
// The engine puts symbol.Marker wherever an element sat inside the text it
// hands to the word differ, so cleanup heuristics can see real element
// edges. Markers must never reach rendered output; Strip guarantees that.
package marker

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/livefir/docdiff/internal/symbol"
)

// Rune is the boundary marker.
const Rune = symbol.Marker

var markerString = string(Rune)

// Contains reports whether s holds at least one marker.
func Contains(s string) bool {
	return strings.ContainsRune(s, Rune)
}

// Strip removes every marker. Equal spans are split around their markers
// into separate Equal spans; other spans just lose the marker runes. Kinds
// are never changed and spans left empty are dropped. Strip is idempotent.
func Strip(diffs []diffmatchpatch.Diff) []diffmatchpatch.Diff {
	out := make([]diffmatchpatch.Diff, 0, len(diffs))
	for _, d := range diffs {
		if !Contains(d.Text) {
			if d.Text != "" {
				out = append(out, d)
			}
			continue
		}
		if d.Type == diffmatchpatch.DiffEqual {
			for _, piece := range strings.Split(d.Text, markerString) {
				if piece != "" {
					out = append(out, diffmatchpatch.Diff{Type: diffmatchpatch.DiffEqual, Text: piece})
				}
			}
			continue
		}
		if text := strings.ReplaceAll(d.Text, markerString, ""); text != "" {
			out = append(out, diffmatchpatch.Diff{Type: d.Type, Text: text})
		}
	}
	return out
}

// Split cuts diffs into groups at every marker found inside an Equal span:
// a marker both sides agree on is an element edge that cleanup must not
// cross. The returned groups are marker-free and never empty.
func Split(diffs []diffmatchpatch.Diff) [][]diffmatchpatch.Diff {
	var (
		groups  [][]diffmatchpatch.Diff
		current []diffmatchpatch.Diff
	)
	cut := func() {
		if len(current) > 0 {
			groups = append(groups, current)
		}
		current = nil
	}

	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffEqual || !Contains(d.Text) {
			current = append(current, Strip([]diffmatchpatch.Diff{d})...)
			continue
		}
		for i, piece := range strings.Split(d.Text, markerString) {
			if i > 0 {
				cut()
			}
			if piece != "" {
				current = append(current, diffmatchpatch.Diff{Type: diffmatchpatch.DiffEqual, Text: piece})
			}
		}
	}
	cut()
	return groups
}

// Leaks reports whether any span still carries a private-use rune.
func Leaks(diffs []diffmatchpatch.Diff) bool {
	for _, d := range diffs {
		if symbol.HasReserved(d.Text) {
			return true
		}
	}
	return false
}

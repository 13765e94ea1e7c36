package textdiff

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/livefir/docdiff/internal/marker"
	"github.com/livefir/docdiff/internal/seqdiff"
)

// Cleanup applies semantic cleanup without ever merging across an element
// boundary. The list is cut at every marker both sides agree on, each
// piece is cleaned on its own, and the pieces are joined again merging
// only neighbours of the same kind. The result is marker-free.
func Cleanup(diffs []diffmatchpatch.Diff) []diffmatchpatch.Diff {
	dmp := seqdiff.New()

	var joined []diffmatchpatch.Diff
	for _, group := range marker.Split(diffs) {
		joined = append(joined, dmp.DiffCleanupSemantic(group)...)
	}
	return marker.Strip(coalesce(joined))
}

func coalesce(diffs []diffmatchpatch.Diff) []diffmatchpatch.Diff {
	out := make([]diffmatchpatch.Diff, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Type == d.Type {
			out[n-1].Text += d.Text
			continue
		}
		out = append(out, d)
	}
	return out
}

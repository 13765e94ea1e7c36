// Package seqdiff configures the generic sequence-diff primitive shared by
// the structural aligner and the word differ.
package seqdiff

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// New returns a diff-match-patch instance with the timeout disabled, so
// the same inputs always produce the same alignment. The half-match
// speedup is also off without a timeout, which keeps results minimal.
func New() *diffmatchpatch.DiffMatchPatch {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return dmp
}

// Runes diffs two symbol sequences. Every rune is treated as an opaque
// token; runs come back as strings of the input runes.
func Runes(a, b []rune) []diffmatchpatch.Diff {
	return New().DiffMainRunes(a, b, false)
}

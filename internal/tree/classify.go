package tree

import (
	"strings"
)

// Class is how the diff engine treats an element.
type Class int

const (
	// Normal elements produce one structural token and are compared
	// recursively when matched.
	Normal Class = iota
	// Atomic elements are compared as a single unit; their children are
	// never visited.
	Atomic
	// Transparent elements are formatting wrappers: they produce no token
	// and only their descendants are compared.
	Transparent
)

func (c Class) String() string {
	switch c {
	case Normal:
		return "normal"
	case Atomic:
		return "atomic"
	case Transparent:
		return "transparent"
	default:
		return "unknown"
	}
}

// Decision is the answer of a classification override.
type Decision int

const (
	// Defer falls back to the built-in tag table.
	Defer Decision = iota
	Yes
	No
)

// Predicate overrides one half of the classification for a node.
type Predicate func(n Node) Decision

// DefaultAtomicTags are media and embed elements never descended into.
var DefaultAtomicTags = []string{
	"img", "picture", "video", "audio", "iframe", "object", "embed",
	"svg", "math", "canvas",
}

// DefaultTransparentTags are inline formatting wrappers.
var DefaultTransparentTags = []string{
	"b", "strong", "i", "em", "u", "s", "strike", "mark", "small", "big",
	"code", "tt", "kbd", "samp", "var", "sub", "sup", "q", "cite", "abbr",
	"acronym", "dfn", "font",
}

var (
	defaultAtomic      = tagSet(DefaultAtomicTags)
	defaultTransparent = tagSet(DefaultTransparentTags)
)

func tagSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = true
	}
	return set
}

// Classifier combines the optional overrides with the default tables.
// A nil *Classifier classifies by the default tables alone.
type Classifier struct {
	SkipChildren Predicate
	SkipSelf     Predicate
}

// NewClassifier creates a classifier with the given overrides; either may
// be nil.
func NewClassifier(skipChildren, skipSelf Predicate) *Classifier {
	return &Classifier{SkipChildren: skipChildren, SkipSelf: skipSelf}
}

// Classify returns the class of n. Text nodes are always Normal. The
// result depends only on the node itself, so it is stable across the two
// trees being compared.
func (c *Classifier) Classify(n Node) Class {
	if n.Type() != ElementNode {
		return Normal
	}
	if c.skipChildren(n) {
		return Atomic
	}
	if c.skipSelf(n) {
		return Transparent
	}
	return Normal
}

func (c *Classifier) skipChildren(n Node) bool {
	if c != nil && c.SkipChildren != nil {
		switch c.SkipChildren(n) {
		case Yes:
			return true
		case No:
			return false
		}
	}
	return defaultAtomic[strings.ToLower(n.Tag())]
}

func (c *Classifier) skipSelf(n Node) bool {
	if c != nil && c.SkipSelf != nil {
		switch c.SkipSelf(n) {
		case Yes:
			return true
		case No:
			return false
		}
	}
	return defaultTransparent[strings.ToLower(n.Tag())]
}

// TagPredicate answers Yes for elements whose tag is in tags and defers
// for everything else.
func TagPredicate(tags ...string) Predicate {
	set := tagSet(tags)
	return func(n Node) Decision {
		if n.Type() == ElementNode && set[strings.ToLower(n.Tag())] {
			return Yes
		}
		return Defer
	}
}

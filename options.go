package docdiff

import (
	"io"
	"log/slog"

	"github.com/livefir/docdiff/internal/engine"
	"github.com/livefir/docdiff/internal/htmldom"
	"github.com/livefir/docdiff/internal/render"
	"github.com/livefir/docdiff/internal/tree"
)

// Default class names applied to changed content.
const (
	DefaultAddedClass    = "vdd-added"
	DefaultRemovedClass  = "vdd-removed"
	DefaultModifiedClass = "vdd-modified"
)

// Config holds diff configuration options
type Config struct {
	AddedClass    string
	RemovedClass  string
	ModifiedClass string
	SkipModified  bool // Leave matched elements with changed text unmarked

	SkipChildren Predicate // Overrides the atomic tag table; Defer keeps it
	SkipSelf     Predicate // Overrides the transparent tag table; Defer keeps it

	DiffText         func(oldText, newText string) []TextDiff // Replaces the word differ
	MatchAttributes  []string                                 // Attributes that must match for elements to pair
	StructuralBudget int                                      // Distinct element signatures per call; 0 means the maximum

	Minify         bool // DiffHTML: minify sources before parsing
	KeepWhitespace bool // DiffHTML: keep whitespace between block elements

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		AddedClass:    DefaultAddedClass,
		RemovedClass:  DefaultRemovedClass,
		ModifiedClass: DefaultModifiedClass,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option is a functional option for configuring a diff
type Option func(*Config)

// WithAddedClass sets the class applied to inserted content
func WithAddedClass(class string) Option {
	return func(c *Config) {
		c.AddedClass = class
	}
}

// WithRemovedClass sets the class applied to deleted content
func WithRemovedClass(class string) Option {
	return func(c *Config) {
		c.RemovedClass = class
	}
}

// WithModifiedClass sets the class applied to matched elements whose text changed
func WithModifiedClass(class string) Option {
	return func(c *Config) {
		c.ModifiedClass = class
	}
}

// WithSkipModified suppresses the modified class
func WithSkipModified(enabled bool) Option {
	return func(c *Config) {
		c.SkipModified = enabled
	}
}

// WithSkipChildren overrides which elements are compared as one unit
func WithSkipChildren(p Predicate) Option {
	return func(c *Config) {
		c.SkipChildren = p
	}
}

// WithSkipSelf overrides which elements are treated as formatting wrappers
func WithSkipSelf(p Predicate) Option {
	return func(c *Config) {
		c.SkipSelf = p
	}
}

// WithDiffText replaces the word-mode text differ. The texts passed in may
// contain U+F8FF where an element sits between them; such markers are
// removed from the result. The result must rebuild both texts.
func WithDiffText(fn func(oldText, newText string) []TextDiff) Option {
	return func(c *Config) {
		c.DiffText = fn
	}
}

// WithMatchAttributes requires the named attributes to be equal for two
// elements to be paired
func WithMatchAttributes(names ...string) Option {
	return func(c *Config) {
		c.MatchAttributes = names
	}
}

// WithStructuralBudget lowers the number of distinct element signatures
// one call may use
func WithStructuralBudget(n int) Option {
	return func(c *Config) {
		c.StructuralBudget = n
	}
}

// WithMinify minifies HTML sources before parsing
func WithMinify(enabled bool) Option {
	return func(c *Config) {
		c.Minify = enabled
	}
}

// WithKeepWhitespace keeps whitespace-only text between block elements
func WithKeepWhitespace(enabled bool) Option {
	return func(c *Config) {
		c.KeepWhitespace = enabled
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

func newConfig(opts []Option) Config {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return config
}

func (c Config) engineOptions() engine.Options {
	opts := engine.Options{
		MatchAttributes:  c.MatchAttributes,
		StructuralBudget: c.StructuralBudget,
		Logger:           c.Logger,
	}
	if c.SkipChildren != nil || c.SkipSelf != nil {
		opts.Classifier = tree.NewClassifier(c.SkipChildren, c.SkipSelf)
	}
	if c.DiffText != nil {
		opts.DiffText = c.DiffText
	}
	return opts
}

func (c Config) classes() render.Classes {
	return render.Classes{
		Added:        c.AddedClass,
		Removed:      c.RemovedClass,
		Modified:     c.ModifiedClass,
		SkipModified: c.SkipModified,
	}
}

func (c Config) parseOptions() htmldom.ParseOptions {
	return htmldom.ParseOptions{
		Minify:         c.Minify,
		KeepWhitespace: c.KeepWhitespace,
	}
}

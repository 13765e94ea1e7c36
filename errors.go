package docdiff

import (
	"errors"
	"fmt"

	"github.com/livefir/docdiff/internal/engine"
)

var (
	// ErrTooComplex is returned when a document has more distinct element
	// signatures than the structural alphabet can represent. The diff
	// fails rather than risk pairing unrelated elements.
	ErrTooComplex = errors.New("document too structurally complex to diff")

	// ErrInvalidTextDiff is returned when a WithDiffText function returns
	// spans that do not rebuild the texts it was given.
	ErrInvalidTextDiff = engine.ErrInvalidTextDiff
)

// ComplexityError reports which document exhausted the structural budget.
type ComplexityError struct {
	Side       string // "old" or "new"
	Signatures int    // the budget that was exceeded
}

func (e *ComplexityError) Error() string {
	return fmt.Sprintf("%s: %s document has more than %d distinct element signatures", ErrTooComplex, e.Side, e.Signatures)
}

func (e *ComplexityError) Unwrap() error {
	return ErrTooComplex
}

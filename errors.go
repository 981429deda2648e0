package neighborhood

import (
	"errors"
	"fmt"

	"github.com/hupe1980/neighborhood/internal/registry"
)

var (
	// ErrClosed is returned when using a closed neighborhood.
	ErrClosed = errors.New("neighborhood: closed")
	// ErrInvalidN is returned when the requested result count is negative.
	ErrInvalidN = errors.New("neighborhood: n must not be negative")
	// ErrDuplicateIdentifier is returned when an id column repeats an
	// identifier under the Reject duplicate policy.
	ErrDuplicateIdentifier = errors.New("neighborhood: duplicate identifier")
	// ErrMissingNorms is returned when a self corpus has no norm column.
	ErrMissingNorms = errors.New("neighborhood: corpus has no norm column")
)

// ErrDimensionMismatch indicates that source and target vectors differ in length.
type ErrDimensionMismatch struct {
	Source int
	Target int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: source %d, target %d", e.Source, e.Target)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, registry.ErrDuplicate) {
		return fmt.Errorf("%w: %w", ErrDuplicateIdentifier, err)
	}
	return err
}

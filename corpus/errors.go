package corpus

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a path holds no corpus.
	ErrNotFound = errors.New("corpus: not found")
	// ErrExists is returned by Create when the target directory is not empty.
	ErrExists = errors.New("corpus: already exists")
	// ErrCorrupted is returned when a column does not match its manifest or checksum.
	ErrCorrupted = errors.New("corpus: corrupted")
	// ErrClosed is returned when using a closed handle.
	ErrClosed = errors.New("corpus: closed")
	// ErrInvalidDimension is returned when creating a corpus with dim <= 0.
	ErrInvalidDimension = errors.New("corpus: dimension must be positive")
	// ErrUnsupportedFormat is returned for manifests written by a newer format.
	ErrUnsupportedFormat = errors.New("corpus: unsupported format version")
)

// ErrWrongDimension is returned when a row does not match the corpus dimension.
type ErrWrongDimension struct {
	Expected int
	Actual   int
}

func (e *ErrWrongDimension) Error() string {
	return fmt.Sprintf("corpus: wrong vector dimension: expected %d, got %d", e.Expected, e.Actual)
}

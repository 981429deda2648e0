package mmap

import "errors"

// AccessPattern provides hints to the kernel about how the data will be accessed.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects full scans, e.g. scoring every row of a corpus.
	AccessSequential
	// AccessRandom expects point reads, e.g. fetching a single query row.
	AccessRandom
	// AccessWillNeed asks the kernel to prefetch the whole mapping.
	AccessWillNeed
)

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the requested size is negative or too large.
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrShortFile is returned when the file is smaller than the requested size.
	ErrShortFile = errors.New("mmap: file shorter than requested size")
)

// Package mmap maps corpus column files read-only into memory.
//
// A Mapping covers a fixed prefix of a file: the committed length at the time
// it was opened. Bytes appended to the file later are never visible through an
// existing Mapping, which is what lets a corpus read handle act as an
// immutable snapshot. Growth publishes a fresh Mapping instead.
//
// # Usage
//
//	m, err := mmap.Open("vector.col", committed)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	_ = m.Advise(mmap.AccessSequential)
//
// # Platform Support
//
// Unix platforms use mmap(2) and madvise(2). Other platforms fall back to
// reading the prefix into heap memory.
//
// # Thread Safety
//
// Bytes may be read concurrently. Close is idempotent; callers must make sure
// no goroutine touches Bytes after Close returns.
package mmap

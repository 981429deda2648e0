// Package corpus implements the columnar vector store a neighborhood reads from.
//
// # Layout
//
// A corpus is a directory:
//
//	meta.json   manifest; rewritten atomically, its rename commits an append
//	id.col      identifier frames (header + optionally compressed payload)
//	vector.col  little-endian float32 rows, Dim values per row
//	norm.col    little-endian float32 L2 norm per row (optional)
//
// Every column is row-aligned by index. Bytes past the committed lengths
// recorded in meta.json belong to an interrupted append and are ignored by
// readers and truncated by writers.
//
// # Handles
//
// Open returns a Snapshot: an immutable, memory-mapped view of the rows that
// were committed when it was opened. Appends made afterwards through a Table
// are never visible through an existing Snapshot; open a new one to observe
// them. Snapshots are reference counted so a caller can swap in a fresh handle
// while readers finish with the old one.
//
// OpenTable returns the single writer handle of a corpus. Append is durable:
// it returns only after data and manifest are fsynced.
package corpus

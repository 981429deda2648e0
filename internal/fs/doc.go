// Package fs provides the file abstraction corpus writers use, so tests can
// inject I/O failures.
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// Production code should use fs.Default (which is [LocalFS]). Tests wrap it:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("vector.col", fs.Fault{FailAfterBytes: 0})
//	// inject ffs into component under test
//
// This package intentionally does NOT include context.Context parameters.
// Local file operations are not interruptible at the syscall level.
package fs

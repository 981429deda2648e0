// Package blobstore provides the storage abstraction corpus backups are
// written to.
//
// BlobStore is the interface for streaming named blobs in and out.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem, atomic rename on commit
//   - MemoryStore: In-memory, for tests
//   - s3.Store: Amazon S3 with multipart streaming uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Create(ctx, name) (WritableBlob, error)  // Stream a new blob; Close commits
//	    Open(ctx, name) (io.ReadCloser, error)   // Stream an existing blob
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore

// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("neighborhood/backups/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	info, err := archive.Backup(ctx, "./items", store, "items.tar.zst")
//
// # Features
//
//   - Streaming multipart uploads with CRC32C checksums
//   - Aborted uploads leave no object behind
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3

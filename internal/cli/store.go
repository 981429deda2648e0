package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/neighborhood/blobstore"
	minioblob "github.com/hupe1980/neighborhood/blobstore/minio"
	s3blob "github.com/hupe1980/neighborhood/blobstore/s3"
)

// registerStoreFlags adds the blob store selection flags. Values land in
// Config.Store through viper.
func registerStoreFlags(cmd *cobra.Command) {
	d := NewDefaultConfig().Store
	cmd.Flags().String(flagStore, d.Kind, "Blob store kind (local, s3, minio)")
	cmd.Flags().String(flagStorePath, d.Path, "Root directory of the local store")
	cmd.Flags().String(flagBucket, d.Bucket, "Bucket of the s3 or minio store")
	cmd.Flags().String(flagPrefix, d.Prefix, "Key prefix inside the bucket")
	cmd.Flags().String(flagRegion, d.Region, "AWS region of the s3 store")
	cmd.Flags().String(flagEndpoint, d.Endpoint, "Endpoint of the minio store or a custom s3 endpoint")
}

func openStore(ctx context.Context, cfg StoreConfig) (blobstore.BlobStore, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", "local":
		if cfg.Path == "" {
			return nil, fmt.Errorf("local store needs --%s or store.path", flagStorePath)
		}
		return blobstore.NewLocalStore(cfg.Path), nil
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 store needs --%s or store.bucket", flagBucket)
		}
		opts := []s3blob.Option{s3blob.WithPrefix(cfg.Prefix)}
		if cfg.Region != "" {
			opts = append(opts, s3blob.WithRegion(cfg.Region))
		}
		if cfg.Endpoint != "" {
			opts = append(opts, s3blob.WithEndpoint(cfg.Endpoint, cfg.PathStyle))
		}
		return s3blob.New(ctx, cfg.Bucket, opts...)
	case "minio":
		if cfg.Bucket == "" || cfg.Endpoint == "" {
			return nil, fmt.Errorf("minio store needs --%s and --%s", flagBucket, flagEndpoint)
		}
		return minioblob.Dial(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Secure, cfg.Bucket, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown store kind %q (want local, s3 or minio)", cfg.Kind)
	}
}

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/gtfsreview/backend/internal/application/media"
	infraconfig "github.com/gtfsreview/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New creates the object storage selected by cfg.Type. For S3 with
// AutoCreateBucket set, the bucket is created when missing.
func New(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (media.ObjectStorage, error) {
	switch cfg.Type {
	case "memory", "":
		logger.Warn("Using in-memory object storage; uploaded images are lost on restart")
		return NewMemoryObjectStorage(), nil
	case "s3":
		s3Storage, err := NewS3ObjectStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if cfg.AutoCreateBucket {
			ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := s3Storage.EnsureBucket(ctx); err != nil {
				return nil, err
			}
		}
		logger.Info("Using S3 object storage", zap.String("bucket", s3Storage.Bucket()))
		return s3Storage, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// Package media holds the object storage port used for visual examples,
// result images and archived feed uploads.
package media

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ObjectStorage is implemented by the infrastructure layer (S3 or memory)
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	// GenerateDownloadURL returns a presigned URL and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// Key prefixes
const (
	PrefixVisualExamples = "visual-examples"
	PrefixResultImages   = "result-images"
	PrefixFeeds          = "feeds"
)

// MaxImageSize bounds uploaded images
const MaxImageSize = 10 << 20

// AllowedImageTypes is the whitelist of image content types. SVG is
// excluded because it can carry script.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// ErrInvalidImage is returned for empty, oversized or non-image uploads
var ErrInvalidImage = shared.NewDomainError("INVALID_INPUT", "Image must be a JPEG, PNG, GIF, WebP or BMP file.")

// DetectImageType sniffs the content type of data and checks it against
// the whitelist. The declared type from the client is ignored.
func DetectImageType(data []byte) (string, error) {
	if len(data) == 0 || len(data) > MaxImageSize {
		return "", ErrInvalidImage
	}
	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if _, ok := AllowedImageTypes[contentType]; !ok {
		return "", ErrInvalidImage
	}
	return contentType, nil
}

// NewKey builds a unique object key under prefix/owner. The extension is
// taken from the content type when known, else from the file name.
func NewKey(prefix string, owner uuid.UUID, fileName, contentType string) string {
	ext, ok := AllowedImageTypes[contentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(fileName))
	}
	return fmt.Sprintf("%s/%s/%s%s", prefix, owner, uuid.New(), ext)
}

// Images uploads validated images and resolves download URLs
type Images struct {
	storage   ObjectStorage
	urlExpiry time.Duration
	logger    *zap.Logger
}

// NewImages creates an image helper over storage
func NewImages(storage ObjectStorage, urlExpiry time.Duration, logger *zap.Logger) *Images {
	if logger == nil {
		logger = zap.NewNop()
	}
	if urlExpiry <= 0 {
		urlExpiry = time.Hour
	}
	return &Images{storage: storage, urlExpiry: urlExpiry, logger: logger}
}

// Store validates data as an image and uploads it, returning the key
func (i *Images) Store(ctx context.Context, prefix string, owner uuid.UUID, fileName string, data []byte) (string, error) {
	contentType, err := DetectImageType(data)
	if err != nil {
		return "", err
	}
	key := NewKey(prefix, owner, fileName, contentType)
	if err := i.storage.Upload(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return key, nil
}

// URL returns a download URL for key, or "" when key is empty or signing
// fails. Failures are logged.
func (i *Images) URL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	url, _, err := i.storage.GenerateDownloadURL(ctx, key, i.urlExpiry)
	if err != nil {
		i.logger.Warn("Failed to generate download URL", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}

// Delete removes key, logging instead of failing
func (i *Images) Delete(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := i.storage.DeleteObject(ctx, key); err != nil {
		i.logger.Warn("Failed to delete object", zap.String("key", key), zap.Error(err))
	}
}

// Storage returns the underlying object storage
func (i *Images) Storage() ObjectStorage {
	return i.storage
}

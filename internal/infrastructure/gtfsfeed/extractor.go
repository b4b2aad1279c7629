package gtfsfeed

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// feedDirPattern names the temporary directories created for uploads
const feedDirPattern = "gtfs-feed-*"

// ExtractorConfig bounds what an upload may unpack to
type ExtractorConfig struct {
	BaseDir      string // parent of the per-upload directories, os.TempDir() when empty
	MaxEntrySize int64  // maximum uncompressed size of one table
	MaxTotalSize int64  // maximum uncompressed size of the feed
}

// DefaultExtractorConfig returns limits suitable for large regional feeds
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxEntrySize: 1 << 30,
		MaxTotalSize: 2 << 30,
	}
}

// Extractor unpacks GTFS zip archives into temporary directories
type Extractor struct {
	config ExtractorConfig
	logger *zap.Logger
}

// NewExtractor creates a new extractor
func NewExtractor(cfg ExtractorConfig, logger *zap.Logger) *Extractor {
	defaults := DefaultExtractorConfig()
	if cfg.MaxEntrySize <= 0 {
		cfg.MaxEntrySize = defaults.MaxEntrySize
	}
	if cfg.MaxTotalSize <= 0 {
		cfg.MaxTotalSize = defaults.MaxTotalSize
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{config: cfg, logger: logger}
}

// BaseDir returns the directory holding extracted feeds
func (e *Extractor) BaseDir() string {
	return e.config.BaseDir
}

// Extract writes the .txt tables of the archive into a new temporary
// directory and returns its path. Entries are flattened to their base name.
func (e *Extractor) Extract(ctx context.Context, r io.ReaderAt, size int64) (dir string, err error) {
	archive, err := zip.NewReader(r, size)
	// entry names are flattened below, so non-local paths are harmless
	if errors.Is(err, zip.ErrInsecurePath) {
		err = nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	if err := os.MkdirAll(e.config.BaseDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create feed base directory: %w", err)
	}
	dir, err = os.MkdirTemp(e.config.BaseDir, feedDirPattern)
	if err != nil {
		return "", fmt.Errorf("failed to create feed directory: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dir)
		}
	}()

	var total int64
	written := make(map[string]bool)
	for _, f := range archive.File {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		name, ok := tableFileName(f)
		if !ok {
			continue
		}
		if written[name] {
			e.logger.Warn("Skipping duplicate table in archive", zap.String("entry", f.Name))
			continue
		}
		if f.UncompressedSize64 > uint64(e.config.MaxEntrySize) {
			return "", fmt.Errorf("%w: %s", ErrArchiveTooLarge, f.Name)
		}
		n, err := e.extractEntry(f, filepath.Join(dir, name))
		if err != nil {
			return "", err
		}
		total += n
		if total > e.config.MaxTotalSize {
			return "", ErrArchiveTooLarge
		}
		written[name] = true
	}

	if len(written) == 0 {
		return "", ErrNoFeedFiles
	}

	e.logger.Debug("Extracted GTFS archive",
		zap.String("dir", dir),
		zap.Int("tables", len(written)),
		zap.Int64("bytes", total),
	)
	return dir, nil
}

// tableFileName returns the flattened name of a table entry
func tableFileName(f *zip.File) (string, bool) {
	if f.FileInfo().IsDir() {
		return "", false
	}
	if strings.HasPrefix(f.Name, "__MACOSX/") {
		return "", false
	}
	name := path.Base(strings.ReplaceAll(f.Name, `\`, "/"))
	if name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return "", false
	}
	if !strings.EqualFold(path.Ext(name), ".txt") {
		return "", false
	}
	return strings.ToLower(name), true
}

func (e *Extractor) extractEntry(f *zip.File, target string) (int64, error) {
	src, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o640)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", filepath.Base(target), err)
	}
	defer dst.Close()

	// the declared size can lie, so cap the copy as well
	n, err := io.Copy(dst, io.LimitReader(src, e.config.MaxEntrySize+1))
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	if n > e.config.MaxEntrySize {
		return n, fmt.Errorf("%w: %s", ErrArchiveTooLarge, f.Name)
	}
	return n, nil
}

// Remove deletes an extracted feed directory. Paths outside the base
// directory are refused.
func (e *Extractor) Remove(dir string) error {
	if !isFeedDir(e.config.BaseDir, dir) {
		return fmt.Errorf("refusing to remove %s: not a feed directory", dir)
	}
	return os.RemoveAll(dir)
}

func isFeedDir(baseDir, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(baseDir), filepath.Clean(dir))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || strings.ContainsRune(rel, filepath.Separator) {
		return false
	}
	matched, _ := filepath.Match(feedDirPattern, rel)
	return matched
}

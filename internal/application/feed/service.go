// Package feed handles GTFS feed uploads and the read-only views of an
// uploaded feed.
package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/application/media"
	"github.com/gtfsreview/backend/internal/domain/evaluation"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/gtfsreview/backend/internal/infrastructure/gtfsfeed"
	"github.com/gtfsreview/backend/internal/infrastructure/logger"
	"github.com/gtfsreview/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Extractor unpacks uploaded archives into feed directories
type Extractor interface {
	Extract(ctx context.Context, r io.ReaderAt, size int64) (string, error)
	Remove(dir string) error
}

// Errors returned to the upload form
var (
	ErrNoFile       = shared.NewDomainError("INVALID_INPUT", "You must submit a .zip file")
	ErrInvalidFeed  = shared.NewDomainError("INVALID_INPUT", "There was an error uploading your GTFS feed.  Please be sure you submitted a valid .zip GTFS file and try again.")
	ErrFeedNotFound = shared.NewDomainError("NOT_FOUND", "No GTFS feed has been uploaded in this session, or it has expired. Please upload it again.")
)

// Service implements feed upload and inspection
type Service struct {
	extractor Extractor
	storage   media.ObjectStorage
	modes     evaluation.ModeRepository
	metrics   *telemetry.ReviewMetrics
	logger    *zap.Logger
}

// NewService creates a feed service. storage may be nil, in which case
// uploads are not archived.
func NewService(extractor Extractor, storage media.ObjectStorage, modes evaluation.ModeRepository, logger *zap.Logger) *Service {
	return &Service{
		extractor: extractor,
		storage:   storage,
		modes:     modes,
		logger:    logger.Named("feed"),
	}
}

// SetReviewMetrics enables upload metrics
func (s *Service) SetReviewMetrics(metrics *telemetry.ReviewMetrics) {
	s.metrics = metrics
}

// Upload extracts and validates a feed archive, then archives the zip in
// object storage. The returned directory belongs to the caller's session.
func (s *Service) Upload(ctx context.Context, fileName string, data []byte) (result *UploadResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "FeedService", "Upload",
		attribute.String("feed.name", fileName), attribute.Int("feed.size", len(data)))
	defer func() { telemetry.EndSpan(span, err) }()

	log := logger.WithTraceContext(ctx, s.logger)
	if len(data) == 0 {
		s.metrics.RecordFeedUpload(ctx, telemetry.UploadRejected)
		return nil, ErrNoFile
	}

	dir, err := s.extractor.Extract(ctx, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, s.rejectUpload(ctx, log, fileName, err)
	}

	var (
		feed    *gtfsfeed.Feed
		summary *gtfsfeed.Summary
		loadErr error
	)
	started := time.Now()
	telemetry.ProfileRegion(ctx, "feed_parse", func(context.Context) {
		feed, loadErr = gtfsfeed.Load(dir)
		if loadErr == nil {
			summary, loadErr = feed.Summary()
		}
	})
	s.metrics.RecordFeedParse(ctx, time.Since(started))
	if loadErr != nil {
		if rmErr := s.extractor.Remove(dir); rmErr != nil {
			log.Warn("Failed to remove rejected feed", zap.String("dir", dir), zap.Error(rmErr))
		}
		return nil, s.rejectUpload(ctx, log, fileName, loadErr)
	}

	archiveKey := s.archive(ctx, log, fileName, data)

	s.metrics.RecordFeedUpload(ctx, telemetry.UploadAccepted)
	log.Info("Feed uploaded",
		zap.String("file", fileName),
		zap.String("dir", dir),
		zap.Int("total_rows", summary.TotalRows))
	return &UploadResult{
		Dir:        dir,
		FeedName:   fileName,
		ArchiveKey: archiveKey,
		Summary:    ToSummaryResponse(summary),
	}, nil
}

func (s *Service) rejectUpload(ctx context.Context, log *zap.Logger, fileName string, cause error) error {
	if isFeedError(cause) {
		s.metrics.RecordFeedUpload(ctx, telemetry.UploadRejected)
		log.Info("Feed rejected", zap.String("file", fileName), zap.Error(cause))
		return shared.WrapDomainError(ErrInvalidFeed.Code, ErrInvalidFeed.Message, cause)
	}
	s.metrics.RecordFeedUpload(ctx, telemetry.UploadFailed)
	log.Error("Feed upload failed", zap.String("file", fileName), zap.Error(cause))
	return fmt.Errorf("failed to process feed upload: %w", cause)
}

func isFeedError(err error) bool {
	var missing *gtfsfeed.MissingTablesError
	var tableErr *gtfsfeed.TableError
	return errors.Is(err, gtfsfeed.ErrInvalidArchive) ||
		errors.Is(err, gtfsfeed.ErrNoFeedFiles) ||
		errors.Is(err, gtfsfeed.ErrArchiveTooLarge) ||
		errors.As(err, &missing) ||
		errors.As(err, &tableErr)
}

// archive stores the original zip. Failures only lose the archive copy.
func (s *Service) archive(ctx context.Context, log *zap.Logger, fileName string, data []byte) string {
	if s.storage == nil {
		return ""
	}
	key := fmt.Sprintf("%s/%s/%s", media.PrefixFeeds, uuid.New(), filepath.Base(fileName))
	if err := s.storage.Upload(ctx, key, data, "application/zip"); err != nil {
		log.Warn("Failed to archive feed upload", zap.String("key", key), zap.Error(err))
		return ""
	}
	return key
}

// Discard removes a feed directory, typically when a session is replaced
func (s *Service) Discard(ctx context.Context, dir string) {
	if dir == "" {
		return
	}
	if err := s.extractor.Remove(dir); err != nil {
		logger.WithTraceContext(ctx, s.logger).Warn("Failed to remove feed", zap.String("dir", dir), zap.Error(err))
	}
}

// Open loads the feed stored in dir
func (s *Service) Open(dir string) (*gtfsfeed.Feed, error) {
	if dir == "" {
		return nil, ErrFeedNotFound
	}
	feed, err := gtfsfeed.Load(dir)
	if err != nil {
		return nil, shared.WrapDomainError(ErrFeedNotFound.Code, ErrFeedNotFound.Message, err)
	}
	return feed, nil
}

// Summary describes the feed stored in dir
func (s *Service) Summary(ctx context.Context, dir string) (*SummaryResponse, error) {
	feed, err := s.Open(dir)
	if err != nil {
		return nil, err
	}
	summary, err := feed.Summary()
	if err != nil {
		return nil, fmt.Errorf("failed to summarize feed: %w", err)
	}
	return ToSummaryResponse(summary), nil
}

// NewReviewOptions lists the agencies and modes a review can be started for
func (s *Service) NewReviewOptions(ctx context.Context, dir string) (*ReviewOptionsResponse, error) {
	feed, err := s.Open(dir)
	if err != nil {
		return nil, err
	}
	agencies, err := feed.Agencies()
	if err != nil {
		return nil, fmt.Errorf("failed to read agencies: %w", err)
	}
	modeIDs, err := feed.Modes()
	if err != nil {
		return nil, fmt.Errorf("failed to read modes: %w", err)
	}
	modes, err := s.modes.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := &ReviewOptionsResponse{
		Agencies: make([]Choice, 0, len(agencies)),
		Modes:    make([]ModeChoice, 0, len(modeIDs)),
	}
	for _, a := range agencies {
		label := a.Name
		if label == "" {
			label = a.ID
		}
		resp.Agencies = append(resp.Agencies, Choice{Value: a.ID, Label: label})
	}
	for _, m := range evaluation.NewModeTable(modes).DropDown(modeIDs) {
		resp.Modes = append(resp.Modes, ModeChoice{ID: m.ID, Name: m.Name})
	}
	return resp, nil
}

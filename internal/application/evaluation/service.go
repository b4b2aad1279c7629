// Package evaluation runs reviews: sampling feed rows per category, walking
// reviewers through them and recording their grades.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/application/media"
	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/gtfsreview/backend/internal/domain/evaluation"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/gtfsreview/backend/internal/infrastructure/gtfsfeed"
	"github.com/gtfsreview/backend/internal/infrastructure/logger"
	"github.com/gtfsreview/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// FeedOpener loads the feed uploaded in a session
type FeedOpener interface {
	Open(dir string) (*gtfsfeed.Feed, error)
}

// Service implements the review workflow
type Service struct {
	reviews    evaluation.ReviewRepository
	results    evaluation.ResultRepository
	categories category.ReviewCategoryRepository
	modes      evaluation.ModeRepository
	feeds      FeedOpener
	images     *media.Images
	events     shared.EventPublisher
	metrics    *telemetry.ReviewMetrics
	newRand    func() *rand.Rand
	logger     *zap.Logger
}

// NewService creates a new evaluation Service
func NewService(
	reviews evaluation.ReviewRepository,
	results evaluation.ResultRepository,
	categories category.ReviewCategoryRepository,
	modes evaluation.ModeRepository,
	feeds FeedOpener,
	images *media.Images,
	logger *zap.Logger,
) *Service {
	return &Service{
		reviews:    reviews,
		results:    results,
		categories: categories,
		modes:      modes,
		feeds:      feeds,
		images:     images,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		logger: logger.Named("evaluation"),
	}
}

// SetEventPublisher sets the publisher for review lifecycle events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// SetReviewMetrics enables result metrics
func (s *Service) SetReviewMetrics(metrics *telemetry.ReviewMetrics) {
	s.metrics = metrics
}

func (s *Service) publish(ctx context.Context, r *evaluation.Review) {
	events := r.GetDomainEvents()
	r.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		logger.WithTraceContext(ctx, s.logger).Warn("Failed to publish review events", zap.Error(err))
	}
}

// StartReview samples the rows of every category for an agency and mode
// and stores them as unrecorded results
func (s *Service) StartReview(ctx context.Context, in StartReviewInput) (resp *StartReviewResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "EvaluationService", "StartReview",
		attribute.String("review.agency", in.Agency))
	defer func() { telemetry.EndSpan(span, err) }()

	if in.Mode == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Mode is required")
	}
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, shared.NewDomainError("INVALID_STATE", "No review categories have been configured")
	}
	feed, err := s.feeds.Open(in.FeedDir)
	if err != nil {
		return nil, err
	}

	review, err := evaluation.NewReview(in.Agency, *in.Mode, in.FeedName, in.FeedArchiveKey)
	if err != nil {
		return nil, err
	}
	ctx, log := logger.WithReviewID(ctx, logger.WithTraceContext(ctx, s.logger), review.ID.String())

	var results []*evaluation.Result
	telemetry.ProfileRegion(ctx, "review_sampling", func(ctx context.Context) {
		results, err = s.sample(feed.NewScope(review.Agency, review.Mode), review.ID, categories, log)
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, shared.NewDomainError("INVALID_STATE", "The feed has no data to review for this agency and mode")
	}

	review.Started(len(results))
	if err := s.reviews.SaveWithResults(ctx, review, results); err != nil {
		return nil, err
	}
	s.publish(ctx, review)

	progress := progressFromResults(categories, results)
	log.Info("Review started",
		zap.String("agency", review.Agency),
		zap.Int("mode", review.Mode),
		zap.Int("results", len(results)))

	modes, err := s.modeTable(ctx)
	if err != nil {
		return nil, err
	}
	return &StartReviewResponse{
		Review:  s.toReviewResponse(ctx, review, modes),
		Results: len(results),
		First:   toPosition(evaluation.FirstItem(progress), progress),
	}, nil
}

// sample draws the rows of each category's table with its data selector
func (s *Service) sample(scope *gtfsfeed.Scope, reviewID uuid.UUID, categories []category.ReviewCategory, log *zap.Logger) ([]*evaluation.Result, error) {
	rng := s.newRand()
	var results []*evaluation.Result
	for i := range categories {
		c := &categories[i]
		table := c.GtfsField.Table

		population, err := scope.Count(table)
		if errors.Is(err, gtfsfeed.ErrTableNotPresent) {
			log.Debug("Category table not in feed", zap.String("table", table))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}

		rows, err := scope.RowsAt(table, category.Sample(c.Selector(), population, rng))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", table, err)
		}
		for n, row := range rows {
			result, err := evaluation.NewResult(reviewID, c.ID, n+1, row.Get(c.GtfsField.Name), row.Data)
			if err != nil {
				return nil, err
			}
			results = append(results, result)
		}
	}
	return results, nil
}

func progressFromResults(categories []category.ReviewCategory, results []*evaluation.Result) []evaluation.CategoryProgress {
	counts := make(map[uuid.UUID]int, len(categories))
	for _, r := range results {
		counts[r.ReviewCategoryID]++
	}
	return progressFromCounts(categories, counts)
}

func progressFromCounts(categories []category.ReviewCategory, counts map[uuid.UUID]int) []evaluation.CategoryProgress {
	progress := make([]evaluation.CategoryProgress, len(categories))
	for i, c := range categories {
		progress[i] = evaluation.CategoryProgress{CategoryID: c.ID, Count: counts[c.ID]}
	}
	return progress
}

// reviewContext loads what every step of a review needs
type reviewContext struct {
	review     *evaluation.Review
	categories []category.ReviewCategory
	progress   []evaluation.CategoryProgress
	modes      *evaluation.ModeTable
}

func (rc *reviewContext) category(id uuid.UUID) (*category.ReviewCategory, bool) {
	for i := range rc.categories {
		if rc.categories[i].ID == id {
			return &rc.categories[i], true
		}
	}
	return nil, false
}

func (s *Service) loadReview(ctx context.Context, reviewID uuid.UUID) (*reviewContext, error) {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Review not found")
		}
		return nil, err
	}
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.results.CountByCategory(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	modes, err := s.modeTable(ctx)
	if err != nil {
		return nil, err
	}
	return &reviewContext{
		review:     review,
		categories: categories,
		progress:   progressFromCounts(categories, counts),
		modes:      modes,
	}, nil
}

func (s *Service) modeTable(ctx context.Context) (*evaluation.ModeTable, error) {
	modes, err := s.modes.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return evaluation.NewModeTable(modes), nil
}

func (s *Service) toReviewResponse(ctx context.Context, r *evaluation.Review, modes *evaluation.ModeTable) ReviewResponse {
	return ReviewResponse{
		ID:          r.ID,
		Agency:      r.Agency,
		Mode:        r.Mode,
		ModeName:    modes.Name(r.Mode),
		FeedName:    r.FeedName,
		FeedURL:     s.images.URL(ctx, r.FeedArchiveKey),
		Completed:   r.Completed,
		CompletedAt: r.CompletedAt,
		CreatedAt:   r.CreatedAt,
	}
}

// Progress returns the first item of a review and how much is recorded
func (s *Service) Progress(ctx context.Context, reviewID uuid.UUID) (*ReviewProgressResponse, error) {
	rc, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	results, err := s.results.FindByReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	recorded := 0
	for i := range results {
		if results[i].IsRecorded() {
			recorded++
		}
	}
	return &ReviewProgressResponse{
		Review:   s.toReviewResponse(ctx, rc.review, rc.modes),
		Total:    len(results),
		Recorded: recorded,
		First:    toPosition(evaluation.FirstItem(rc.progress), rc.progress),
	}, nil
}

// EvaluateItem returns everything needed to grade the n-th result of a
// category
func (s *Service) EvaluateItem(ctx context.Context, reviewID, categoryID uuid.UUID, number int) (*EvaluationItemResponse, error) {
	rc, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	c, ok := rc.category(categoryID)
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "Review category not found")
	}
	pos := evaluation.Position{CategoryID: categoryID, Number: number}
	result, err := s.results.FindByPosition(ctx, reviewID, pos)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Item not found in this review")
		}
		return nil, err
	}

	reviewWidget, err := category.NewWidget(c, category.WidgetTypeReview)
	if err != nil {
		return nil, err
	}
	consistencyWidget, err := category.NewWidget(c, category.WidgetTypeConsistency)
	if err != nil {
		return nil, err
	}
	captureWidget, err := category.NewWidget(c, category.WidgetTypeResultsCapture)
	if err != nil {
		return nil, err
	}

	resp := &EvaluationItemResponse{
		Review:       s.toReviewResponse(ctx, rc.review, rc.modes),
		CategoryID:   c.ID,
		CategoryName: c.Name(),
		Result:       toResultResponse(ctx, s.images, c, result),
		ReviewWidget: ReviewWidgetItem{
			Template:      reviewWidget.Template(),
			RelatedFields: make([]category.RenderedField, 0, len(c.ReviewWidget.RelatedFields)),
		},
		Consistency: ConsistencyItem{
			Template:       consistencyWidget.Template(),
			VisualExamples: []VisualExampleItem{},
			Links:          []LinkItem{},
		},
		ResultsCapture: ResultsCaptureItem{
			Template: captureWidget.Template(),
			Scores:   []ScoreResponse{},
		},
		Position: *toPosition(&pos, rc.progress),
		Next:     toPosition(evaluation.NextItem(pos, rc.progress), rc.progress),
		Previous: toPosition(evaluation.PreviousItem(pos, rc.progress), rc.progress),
	}

	rw := c.ReviewWidget
	if rw.HasRelatedFieldSameTable {
		for _, f := range rw.RelatedFields {
			resp.ReviewWidget.RelatedFields = append(resp.ReviewWidget.RelatedFields,
				category.NewReviewField(f).Render(result.RowData[f.Name], result.RowData))
		}
	}
	if rw.HasRelatedFieldOtherTable {
		resp.ReviewWidget.RelatedFieldOtherTable = rw.RelatedFieldOtherTable
	}

	cw := c.ConsistencyWidget
	if cw.HasVisualExample {
		for _, e := range cw.VisualExamples {
			resp.Consistency.VisualExamples = append(resp.Consistency.VisualExamples, VisualExampleItem{
				Name: e.Name, Description: e.Description, ImageURL: s.images.URL(ctx, e.ImageKey),
			})
		}
	}
	if cw.HasLink {
		for _, l := range cw.Links {
			resp.Consistency.Links = append(resp.Consistency.Links, LinkItem{URL: l.URL, URLDisplayText: l.URLDisplayText})
		}
	}
	if cw.HasOtherText {
		resp.Consistency.OtherText = cw.OtherText
	}

	capture := c.ResultsCaptureWidget
	flags := capture.Flags()
	resp.ResultsCapture.HasScore = flags.HasScore
	resp.ResultsCapture.HasScoreImage = flags.HasScoreImage
	resp.ResultsCapture.HasScoreReason = flags.HasScoreReason
	resp.ResultsCapture.HasReferenceLink = flags.HasReferenceLink
	resp.ResultsCapture.HasReferenceDate = flags.HasReferenceDate
	if flags.HasScore {
		for _, sc := range capture.Scores {
			resp.ResultsCapture.Scores = append(resp.ResultsCapture.Scores, ScoreResponse{ID: sc.ID, Score: sc.Value, HelpText: sc.HelpText})
		}
	}
	return resp, nil
}

// RecordResult applies a reviewer's submission to a result of an open review
func (s *Service) RecordResult(ctx context.Context, reviewID, resultID uuid.UUID, in RecordResultInput) (resp *RecordResultResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "EvaluationService", "RecordResult",
		attribute.String("review.id", reviewID.String()), attribute.String("result.id", resultID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	rc, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := rc.review.EnsureOpen(); err != nil {
		return nil, err
	}
	result, err := s.findResult(ctx, reviewID, resultID)
	if err != nil {
		return nil, err
	}
	c, ok := rc.category(result.ReviewCategoryID)
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "Review category not found")
	}
	capture := c.ResultsCaptureWidget

	var imageKey string
	if capture.HasScoreImage && len(in.Image) > 0 {
		if imageKey, err = s.images.Store(ctx, media.PrefixResultImages, result.ID, in.ImageFileName, in.Image); err != nil {
			return nil, err
		}
	}
	if err := result.Record(capture, evaluation.ResultInput{
		ScoreID:       in.ScoreID,
		ScoreReason:   in.ScoreReason,
		ImageKey:      imageKey,
		ReferenceName: in.ReferenceName,
		ReferenceURL:  in.ReferenceURL,
		PublishedDate: in.PublishedDate,
	}); err != nil {
		s.images.Delete(ctx, imageKey)
		return nil, err
	}
	if err := s.results.Save(ctx, result); err != nil {
		s.images.Delete(ctx, imageKey)
		return nil, err
	}
	s.metrics.RecordResult(ctx, c.Name())

	pos := evaluation.Position{CategoryID: result.ReviewCategoryID, Number: result.Number}
	logger.WithTraceContext(ctx, s.logger).Info("Result recorded",
		zap.String("review_id", reviewID.String()),
		zap.String("result_id", resultID.String()),
		zap.String("position", c.ID.String()+"/"+strconv.Itoa(result.Number)))
	return &RecordResultResponse{
		Result: toResultResponse(ctx, s.images, c, result),
		Next:   toPosition(evaluation.NextItem(pos, rc.progress), rc.progress),
	}, nil
}

func (s *Service) findResult(ctx context.Context, reviewID, resultID uuid.UUID) (*evaluation.Result, error) {
	result, err := s.results.FindByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Result not found")
		}
		return nil, err
	}
	if result.ReviewID != reviewID {
		return nil, shared.NewDomainError("NOT_FOUND", "Result not found")
	}
	return result, nil
}

package evaluation

import (
	"context"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/evaluation"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/gtfsreview/backend/internal/infrastructure/logger"
	"github.com/gtfsreview/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ReviewResults lists every result of a review grouped by category
func (s *Service) ReviewResults(ctx context.Context, reviewID uuid.UUID) (*ReviewResultsResponse, error) {
	rc, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return s.reviewResults(ctx, rc)
}

func (s *Service) reviewResults(ctx context.Context, rc *reviewContext) (*ReviewResultsResponse, error) {
	results, err := s.results.FindByReview(ctx, rc.review.ID)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID][]*evaluation.Result, len(rc.categories))
	recorded := 0
	for i := range results {
		r := &results[i]
		byCategory[r.ReviewCategoryID] = append(byCategory[r.ReviewCategoryID], r)
		if r.IsRecorded() {
			recorded++
		}
	}

	resp := &ReviewResultsResponse{
		Review:     s.toReviewResponse(ctx, rc.review, rc.modes),
		Total:      len(results),
		Recorded:   recorded,
		Categories: make([]CategoryResults, 0, len(rc.categories)),
	}
	for i := range rc.categories {
		c := &rc.categories[i]
		group := byCategory[c.ID]
		if len(group) == 0 {
			continue
		}
		entry := CategoryResults{
			CategoryID:   c.ID,
			CategoryName: c.Name(),
			Results:      make([]ResultResponse, 0, len(group)),
		}
		for _, r := range group {
			entry.Results = append(entry.Results, toResultResponse(ctx, s.images, c, r))
		}
		resp.Categories = append(resp.Categories, entry)
	}
	return resp, nil
}

// GetResult returns one result of a review
func (s *Service) GetResult(ctx context.Context, reviewID, resultID uuid.UUID) (*ResultDetailResponse, error) {
	rc, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return s.resultDetail(ctx, rc, resultID)
}

func (s *Service) resultDetail(ctx context.Context, rc *reviewContext, resultID uuid.UUID) (*ResultDetailResponse, error) {
	result, err := s.findResult(ctx, rc.review.ID, resultID)
	if err != nil {
		return nil, err
	}
	c, ok := rc.category(result.ReviewCategoryID)
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "Review category not found")
	}
	return &ResultDetailResponse{
		Review:       s.toReviewResponse(ctx, rc.review, rc.modes),
		CategoryName: c.Name(),
		Result:       toResultResponse(ctx, s.images, c, result),
	}, nil
}

// MarkReviewComplete closes a review once all its results are recorded
func (s *Service) MarkReviewComplete(ctx context.Context, reviewID uuid.UUID) (resp *ReviewResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "EvaluationService", "MarkReviewComplete",
		attribute.String("review.id", reviewID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	rc, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	results, err := s.results.FindByReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := rc.review.MarkComplete(results); err != nil {
		return nil, err
	}
	if err := s.reviews.Save(ctx, rc.review); err != nil {
		rc.review.ClearDomainEvents()
		return nil, err
	}
	s.publish(ctx, rc.review)

	logger.WithTraceContext(ctx, s.logger).Info("Review completed",
		zap.String("review_id", reviewID.String()),
		zap.Int("results", len(results)))
	review := s.toReviewResponse(ctx, rc.review, rc.modes)
	return &review, nil
}

// SearchCompletedReviews pages through completed reviews, newest first
func (s *Service) SearchCompletedReviews(ctx context.Context, req SearchReviewsRequest) (*shared.Paginated[ReviewResponse], error) {
	completed := true
	filter := evaluation.ReviewFilter{Filter: shared.DefaultFilter(), Completed: &completed, Mode: req.Mode}
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	filter.Search = req.Search
	if req.Agency != "" {
		filter.Agency = &req.Agency
	}

	reviews, total, err := s.reviews.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	modes, err := s.modeTable(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		items[i] = s.toReviewResponse(ctx, &reviews[i], modes)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *Service) loadCompleted(ctx context.Context, reviewID uuid.UUID) (*reviewContext, error) {
	rc, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !rc.review.Completed {
		return nil, shared.NewDomainError("NOT_FOUND", "Review not found")
	}
	return rc, nil
}

// ViewCompletedReview shows the results of a completed review
func (s *Service) ViewCompletedReview(ctx context.Context, reviewID uuid.UUID) (*ReviewResultsResponse, error) {
	rc, err := s.loadCompleted(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return s.reviewResults(ctx, rc)
}

// ViewCompletedResult shows one result of a completed review
func (s *Service) ViewCompletedResult(ctx context.Context, reviewID, resultID uuid.UUID) (*ResultDetailResponse, error) {
	rc, err := s.loadCompleted(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return s.resultDetail(ctx, rc, resultID)
}

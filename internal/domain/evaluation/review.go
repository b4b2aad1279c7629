package evaluation

import (
	"fmt"
	"strings"
	"time"

	"github.com/gtfsreview/backend/internal/domain/shared"
)

// Review is one reviewer's pass over a feed for a single agency and mode
type Review struct {
	shared.BaseAggregateRoot
	Agency         string
	Mode           int
	FeedName       string
	FeedArchiveKey string
	Completed      bool
	CompletedAt    *time.Time
}

// NewReview starts a review of the given agency and GTFS route type
func NewReview(agency string, mode int, feedName, feedArchiveKey string) (*Review, error) {
	if mode < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Mode must be a GTFS route type")
	}
	if len(agency) > 255 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Agency cannot exceed 255 characters")
	}
	r := &Review{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Agency:            strings.TrimSpace(agency),
		Mode:              mode,
		FeedName:          feedName,
		FeedArchiveKey:    feedArchiveKey,
	}
	return r, nil
}

// Started records the ReviewStarted event once the sampled results are known
func (r *Review) Started(resultCount int) {
	r.AddDomainEvent(NewReviewStartedEvent(r, resultCount))
}

// EnsureOpen fails if the review has been completed
func (r *Review) EnsureOpen() error {
	if r.Completed {
		return shared.NewDomainError("INVALID_STATE", "Review has already been completed")
	}
	return nil
}

// MarkComplete closes the review. Every result must have been recorded.
func (r *Review) MarkComplete(results []Result) error {
	if err := r.EnsureOpen(); err != nil {
		return err
	}
	pending := 0
	for _, result := range results {
		if result.ReviewID != r.ID {
			continue
		}
		if !result.IsRecorded() {
			pending++
		}
	}
	if pending > 0 {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("%d result(s) have not been recorded yet", pending))
	}
	now := time.Now()
	r.Completed = true
	r.CompletedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()
	r.AddDomainEvent(NewReviewCompletedEvent(r))
	return nil
}

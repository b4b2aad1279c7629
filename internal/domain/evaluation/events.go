package evaluation

import "github.com/gtfsreview/backend/internal/domain/shared"

// AggregateTypeReview is the aggregate type for reviews
const AggregateTypeReview = "Review"

// Event types
const (
	EventTypeReviewStarted   = "ReviewStarted"
	EventTypeReviewCompleted = "ReviewCompleted"
)

// ReviewStartedEvent is raised when a review has been sampled and saved
type ReviewStartedEvent struct {
	shared.BaseDomainEvent
	Agency      string `json:"agency"`
	Mode        int    `json:"mode"`
	ResultCount int    `json:"result_count"`
}

// NewReviewStartedEvent creates a new ReviewStartedEvent
func NewReviewStartedEvent(r *Review, resultCount int) *ReviewStartedEvent {
	return &ReviewStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewStarted, AggregateTypeReview, r.ID),
		Agency:          r.Agency,
		Mode:            r.Mode,
		ResultCount:     resultCount,
	}
}

// ReviewCompletedEvent is raised when a review is marked complete
type ReviewCompletedEvent struct {
	shared.BaseDomainEvent
	Agency string `json:"agency"`
	Mode   int    `json:"mode"`
}

// NewReviewCompletedEvent creates a new ReviewCompletedEvent
func NewReviewCompletedEvent(r *Review) *ReviewCompletedEvent {
	return &ReviewCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewCompleted, AggregateTypeReview, r.ID),
		Agency:          r.Agency,
		Mode:            r.Mode,
	}
}

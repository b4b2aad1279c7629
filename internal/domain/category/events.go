package category

import (
	"github.com/gtfsreview/backend/internal/domain/shared"
)

// AggregateTypeReviewCategory is the aggregate type for review categories
const AggregateTypeReviewCategory = "ReviewCategory"

// Event types
const (
	EventTypeReviewCategoryCreated = "ReviewCategoryCreated"
	EventTypeReviewCategoryDeleted = "ReviewCategoryDeleted"
)

// ReviewCategoryCreatedEvent is raised when a category is added
type ReviewCategoryCreatedEvent struct {
	shared.BaseDomainEvent
	Table string `json:"table"`
	Field string `json:"field"`
}

// NewReviewCategoryCreatedEvent creates a new ReviewCategoryCreatedEvent
func NewReviewCategoryCreatedEvent(c *ReviewCategory) *ReviewCategoryCreatedEvent {
	return &ReviewCategoryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewCategoryCreated, AggregateTypeReviewCategory, c.ID),
		Table:           c.GtfsField.Table,
		Field:           c.GtfsField.Name,
	}
}

// ReviewCategoryDeletedEvent is raised when a category is removed
type ReviewCategoryDeletedEvent struct {
	shared.BaseDomainEvent
	Table string `json:"table"`
	Field string `json:"field"`
}

// NewReviewCategoryDeletedEvent creates a new ReviewCategoryDeletedEvent
func NewReviewCategoryDeletedEvent(c *ReviewCategory) *ReviewCategoryDeletedEvent {
	return &ReviewCategoryDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewCategoryDeleted, AggregateTypeReviewCategory, c.ID),
		Table:           c.GtfsField.Table,
		Field:           c.GtfsField.Name,
	}
}

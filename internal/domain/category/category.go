package category

import (
	"time"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/shared"
)

// ReviewCategory is the unit of review configuration: one GTFS field and the
// three widgets that drive how reviewers grade it.
type ReviewCategory struct {
	shared.BaseAggregateRoot
	GtfsField            GtfsField
	ReviewWidget         ReviewWidget
	ConsistencyWidget    ConsistencyWidget
	ResultsCaptureWidget ResultsCaptureWidget
	DataSelector         *DataSelector
}

// NewReviewCategory creates a category for a persisted GTFS field with three
// unconfigured widgets
func NewReviewCategory(field GtfsField) (*ReviewCategory, error) {
	if field.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "GTFS field must be saved before creating a category")
	}
	c := &ReviewCategory{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		GtfsField:            field,
		ReviewWidget:         newReviewWidget(),
		ConsistencyWidget:    newConsistencyWidget(),
		ResultsCaptureWidget: newResultsCaptureWidget(),
	}
	c.AddDomainEvent(NewReviewCategoryCreatedEvent(c))
	return c, nil
}

// SetDataSelector attaches a (shared) data selector
func (c *ReviewCategory) SetDataSelector(selector *DataSelector) {
	c.DataSelector = selector
	c.Touch()
}

// Selector returns the sampling strategy, defaulting to the log selector
func (c *ReviewCategory) Selector() Selector {
	return c.DataSelector.Selector()
}

// MarkDeleted records the deletion event before the repository removes it
func (c *ReviewCategory) MarkDeleted() {
	c.AddDomainEvent(NewReviewCategoryDeletedEvent(c))
}

// Touch bumps the version after a change to any part of the aggregate
func (c *ReviewCategory) Touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// WidgetID returns the ID of the widget of the given type
func (c *ReviewCategory) WidgetID(t WidgetType) uuid.UUID {
	switch t {
	case WidgetTypeReview:
		return c.ReviewWidget.ID
	case WidgetTypeConsistency:
		return c.ConsistencyWidget.ID
	case WidgetTypeResultsCapture:
		return c.ResultsCaptureWidget.ID
	default:
		return uuid.Nil
	}
}

// AddRelatedField attaches a related field from the reviewed table
func (c *ReviewCategory) AddRelatedField(field GtfsField) error {
	if err := c.ReviewWidget.AddRelatedField(c.GtfsField, field); err != nil {
		return err
	}
	c.Touch()
	return nil
}

// Name returns a display name for the category
func (c *ReviewCategory) Name() string {
	return c.GtfsField.Label() + " (" + c.GtfsField.Table + ")"
}

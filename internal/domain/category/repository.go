package category

import (
	"context"

	"github.com/google/uuid"
)

// ReviewCategoryRepository persists review categories together with their
// widgets and widget items
type ReviewCategoryRepository interface {
	// FindByID loads the full aggregate
	FindByID(ctx context.Context, id uuid.UUID) (*ReviewCategory, error)
	// FindByWidgetID loads the category owning the widget of the given type
	FindByWidgetID(ctx context.Context, widgetType WidgetType, widgetID uuid.UUID) (*ReviewCategory, error)
	// FindAll returns every category in creation order
	FindAll(ctx context.Context) ([]ReviewCategory, error)
	// Save inserts or updates the aggregate, replacing its child collections
	Save(ctx context.Context, c *ReviewCategory) error
	// Delete removes the category and its widgets
	Delete(ctx context.Context, id uuid.UUID) error
}

// GtfsFieldRepository persists GTFS field references
type GtfsFieldRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*GtfsField, error)
	FindByTableAndName(ctx context.Context, table, name string) (*GtfsField, error)
	Save(ctx context.Context, field *GtfsField) error
}

// DataSelectorRepository persists shared data selectors
type DataSelectorRepository interface {
	FindByNameAndNumber(ctx context.Context, name DataSelectorName, number *int) (*DataSelector, error)
	Save(ctx context.Context, selector *DataSelector) error
}

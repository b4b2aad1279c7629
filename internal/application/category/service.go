// Package category implements the administration of review categories and
// their widgets.
package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/application/media"
	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/gtfsreview/backend/internal/domain/evaluation"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/gtfsreview/backend/internal/infrastructure/gtfsschema"
	"github.com/gtfsreview/backend/internal/infrastructure/logger"
	"github.com/gtfsreview/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Service handles review category administration
type Service struct {
	categories category.ReviewCategoryRepository
	fields     category.GtfsFieldRepository
	selectors  category.DataSelectorRepository
	results    evaluation.ResultRepository
	schema     *gtfsschema.Schema
	images     *media.Images
	events     shared.EventPublisher
	logger     *zap.Logger
}

// NewService creates a new category Service
func NewService(
	categories category.ReviewCategoryRepository,
	fields category.GtfsFieldRepository,
	selectors category.DataSelectorRepository,
	results evaluation.ResultRepository,
	schema *gtfsschema.Schema,
	images *media.Images,
	logger *zap.Logger,
) *Service {
	return &Service{
		categories: categories,
		fields:     fields,
		selectors:  selectors,
		results:    results,
		schema:     schema,
		images:     images,
		logger:     logger.Named("category"),
	}
}

// SetEventPublisher sets the publisher for category lifecycle events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

func (s *Service) publish(ctx context.Context, c *category.ReviewCategory) {
	events := c.GetDomainEvents()
	c.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		logger.WithTraceContext(ctx, s.logger).Warn("Failed to publish category events", zap.Error(err))
	}
}

// ListCategories returns every category in creation order
func (s *Service) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out, nil
}

// GetCategory returns a category with its widgets and the selector choices
func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDetailResponse, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &CategoryDetailResponse{
		CategoryResponse:    ToCategoryResponse(c),
		DataSelectorChoices: category.ValidDataSelectorChoices(),
	}
	if resp.ReviewWidget, err = s.widgetResponse(ctx, c, category.WidgetTypeReview); err != nil {
		return nil, err
	}
	if resp.ConsistencyWidget, err = s.widgetResponse(ctx, c, category.WidgetTypeConsistency); err != nil {
		return nil, err
	}
	if resp.ResultsCapture, err = s.widgetResponse(ctx, c, category.WidgetTypeResultsCapture); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateCategory adds a category for a field of the GTFS reference
func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (resp *CategoryResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "CategoryService", "CreateCategory",
		attribute.String("gtfs.table", req.Table), attribute.String("gtfs.field", req.Field))
	defer func() { telemetry.EndSpan(span, err) }()

	field, err := s.getOrCreateField(ctx, req.Table, req.Field)
	if err != nil {
		return nil, err
	}
	c, err := category.NewReviewCategory(*field)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, c)

	logger.WithTraceContext(ctx, s.logger).Info("Review category created",
		zap.String("category_id", c.ID.String()), zap.String("field", field.String()))
	out := ToCategoryResponse(c)
	return &out, nil
}

// DeleteCategory removes a category that no review has used yet
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}
	c.MarkDeleted()
	if err := s.categories.Delete(ctx, id); err != nil {
		c.ClearDomainEvents()
		return err
	}
	for _, example := range c.ConsistencyWidget.VisualExamples {
		s.images.Delete(ctx, example.ImageKey)
	}
	s.publish(ctx, c)

	logger.WithTraceContext(ctx, s.logger).Info("Review category deleted", zap.String("category_id", id.String()))
	return nil
}

// ChooseDataSelector attaches a (shared) sampling strategy to a category
func (s *Service) ChooseDataSelector(ctx context.Context, id uuid.UUID, req ChooseDataSelectorRequest) (*CategoryResponse, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name := category.DataSelectorName(req.Name)
	number, err := category.NormalizeDataSelector(name, req.NumberToReview)
	if err != nil {
		return nil, err
	}

	selector, err := s.selectors.FindByNameAndNumber(ctx, name, number)
	if errors.Is(err, shared.ErrNotFound) {
		if selector, err = category.NewDataSelector(name, number); err != nil {
			return nil, err
		}
		if err = s.selectors.Save(ctx, selector); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	c.SetDataSelector(selector)
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	out := ToCategoryResponse(c)
	return &out, nil
}

// DataSelectorChoices lists the sampling strategies
func (s *Service) DataSelectorChoices() []category.DataSelectorChoice {
	return category.ValidDataSelectorChoices()
}

// getOrCreateField returns the stored field, creating it from the GTFS
// reference on first use
func (s *Service) getOrCreateField(ctx context.Context, table, name string) (*category.GtfsField, error) {
	fieldType, err := s.schema.FieldType(name, table)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return nil, shared.WrapDomainError("INVALID_INPUT", domainErr.Message, err)
		}
		return nil, err
	}

	field, err := s.fields.FindByTableAndName(ctx, table, name)
	if err == nil {
		return field, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if field, err = category.NewGtfsField(name, table, fieldType); err != nil {
		return nil, err
	}
	if err := s.fields.Save(ctx, field); err != nil {
		return nil, fmt.Errorf("failed to save GTFS field: %w", err)
	}
	return field, nil
}

// Tables lists the tables of the GTFS reference
func (s *Service) Tables() []gtfsschema.Choice {
	return s.schema.TableChoices()
}

// FieldChoices lists the fields of a table of the GTFS reference
func (s *Service) FieldChoices(table string) ([]gtfsschema.Choice, error) {
	return s.schema.FieldChoices(table)
}

// CascadingDropDown maps every table to its fields
func (s *Service) CascadingDropDown() map[string][]string {
	return s.schema.CascadingDropDown()
}

// FieldType returns the GTFS data type of a field
func (s *Service) FieldType(table, field string) (string, error) {
	return s.schema.FieldType(field, table)
}

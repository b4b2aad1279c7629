package category

import (
	"context"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/gtfsreview/backend/internal/domain/evaluation"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// ============================================================================
// Mocks
// ============================================================================

// MockReviewCategoryRepository is a mock implementation of ReviewCategoryRepository
type MockReviewCategoryRepository struct {
	mock.Mock
}

func (m *MockReviewCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*category.ReviewCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.ReviewCategory), args.Error(1)
}

func (m *MockReviewCategoryRepository) FindByWidgetID(ctx context.Context, widgetType category.WidgetType, widgetID uuid.UUID) (*category.ReviewCategory, error) {
	args := m.Called(ctx, widgetType, widgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.ReviewCategory), args.Error(1)
}

func (m *MockReviewCategoryRepository) FindAll(ctx context.Context) ([]category.ReviewCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]category.ReviewCategory), args.Error(1)
}

func (m *MockReviewCategoryRepository) Save(ctx context.Context, c *category.ReviewCategory) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockReviewCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGtfsFieldRepository is a mock implementation of GtfsFieldRepository
type MockGtfsFieldRepository struct {
	mock.Mock
}

func (m *MockGtfsFieldRepository) FindByID(ctx context.Context, id uuid.UUID) (*category.GtfsField, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.GtfsField), args.Error(1)
}

func (m *MockGtfsFieldRepository) FindByTableAndName(ctx context.Context, table, name string) (*category.GtfsField, error) {
	args := m.Called(ctx, table, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.GtfsField), args.Error(1)
}

func (m *MockGtfsFieldRepository) Save(ctx context.Context, field *category.GtfsField) error {
	args := m.Called(ctx, field)
	return args.Error(0)
}

// MockDataSelectorRepository is a mock implementation of DataSelectorRepository
type MockDataSelectorRepository struct {
	mock.Mock
}

func (m *MockDataSelectorRepository) FindByNameAndNumber(ctx context.Context, name category.DataSelectorName, number *int) (*category.DataSelector, error) {
	args := m.Called(ctx, name, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.DataSelector), args.Error(1)
}

func (m *MockDataSelectorRepository) Save(ctx context.Context, selector *category.DataSelector) error {
	args := m.Called(ctx, selector)
	return args.Error(0)
}

// MockResultRepository is a mock implementation of ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) FindByID(ctx context.Context, id uuid.UUID) (*evaluation.Result, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*evaluation.Result), args.Error(1)
}

func (m *MockResultRepository) FindByReview(ctx context.Context, reviewID uuid.UUID) ([]evaluation.Result, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]evaluation.Result), args.Error(1)
}

func (m *MockResultRepository) FindByPosition(ctx context.Context, reviewID uuid.UUID, pos evaluation.Position) (*evaluation.Result, error) {
	args := m.Called(ctx, reviewID, pos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*evaluation.Result), args.Error(1)
}

func (m *MockResultRepository) CountByCategory(ctx context.Context, reviewID uuid.UUID) (map[uuid.UUID]int, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int), args.Error(1)
}

func (m *MockResultRepository) CountByScore(ctx context.Context, scoreID uuid.UUID) (int64, error) {
	args := m.Called(ctx, scoreID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResultRepository) Save(ctx context.Context, result *evaluation.Result) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

var (
	_ category.ReviewCategoryRepository = (*MockReviewCategoryRepository)(nil)
	_ category.GtfsFieldRepository      = (*MockGtfsFieldRepository)(nil)
	_ category.DataSelectorRepository   = (*MockDataSelectorRepository)(nil)
	_ evaluation.ResultRepository       = (*MockResultRepository)(nil)
	_ shared.EventPublisher             = (*MockEventPublisher)(nil)
)

package evaluation

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

// MockReviewRepository is a mock implementation of ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*evaluation.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*evaluation.Review), args.Error(1)
}

func (m *MockReviewRepository) Search(ctx context.Context, filter evaluation.ReviewFilter) ([]evaluation.Review, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]evaluation.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) Save(ctx context.Context, review *evaluation.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) SaveWithResults(ctx context.Context, review *evaluation.Review, results []*evaluation.Result) error {
	args := m.Called(ctx, review, results)
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

// MockModeRepository is a mock implementation of ModeRepository
type MockModeRepository struct {
	mock.Mock
}

func (m *MockModeRepository) FindAll(ctx context.Context) ([]evaluation.Mode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]evaluation.Mode), args.Error(1)
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
	_ evaluation.ReviewRepository       = (*MockReviewRepository)(nil)
	_ evaluation.ResultRepository       = (*MockResultRepository)(nil)
	_ category.ReviewCategoryRepository = (*MockReviewCategoryRepository)(nil)
	_ evaluation.ModeRepository         = (*MockModeRepository)(nil)
	_ shared.EventPublisher             = (*MockEventPublisher)(nil)
)

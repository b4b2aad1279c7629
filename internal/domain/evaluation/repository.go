package evaluation

import (
	"context"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/shared"
)

// ReviewFilter narrows review searches
type ReviewFilter struct {
	shared.Filter
	Agency    *string
	Mode      *int
	Completed *bool
}

// ReviewRepository persists reviews
type ReviewRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	Search(ctx context.Context, filter ReviewFilter) ([]Review, int64, error)
	Save(ctx context.Context, review *Review) error
	// SaveWithResults stores a new review and its sampled results atomically
	SaveWithResults(ctx context.Context, review *Review, results []*Result) error
}

// ResultRepository persists results with their images and references
type ResultRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Result, error)
	FindByReview(ctx context.Context, reviewID uuid.UUID) ([]Result, error)
	FindByPosition(ctx context.Context, reviewID uuid.UUID, pos Position) (*Result, error)
	// CountByCategory returns the number of results per category of a review
	CountByCategory(ctx context.Context, reviewID uuid.UUID) (map[uuid.UUID]int, error)
	// CountByScore returns how many results reference a score
	CountByScore(ctx context.Context, scoreID uuid.UUID) (int64, error)
	Save(ctx context.Context, result *Result) error
}

// ModeRepository reads the route type lookup table
type ModeRepository interface {
	FindAll(ctx context.Context) ([]Mode, error)
}

package persistence

import (
	"context"
	"errors"

	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/gtfsreview/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDataSelectorRepository implements DataSelectorRepository using GORM
type GormDataSelectorRepository struct {
	db *gorm.DB
}

// NewGormDataSelectorRepository creates a new GormDataSelectorRepository
func NewGormDataSelectorRepository(db *gorm.DB) *GormDataSelectorRepository {
	return &GormDataSelectorRepository{db: db}
}

// FindByNameAndNumber finds the selector for a (name, number) pair. A nil
// number matches selectors without a number.
func (r *GormDataSelectorRepository) FindByNameAndNumber(ctx context.Context, name category.DataSelectorName, number *int) (*category.DataSelector, error) {
	query := r.db.WithContext(ctx).Where("name = ?", string(name))
	if number == nil {
		query = query.Where("number_to_review IS NULL")
	} else {
		query = query.Where("number_to_review = ?", *number)
	}

	var model models.DataSelectorModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a data selector
func (r *GormDataSelectorRepository) Save(ctx context.Context, selector *category.DataSelector) error {
	return r.db.WithContext(ctx).Save(models.DataSelectorModelFromDomain(selector)).Error
}

var _ category.DataSelectorRepository = (*GormDataSelectorRepository)(nil)

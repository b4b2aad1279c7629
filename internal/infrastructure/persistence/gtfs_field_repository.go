package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/gtfsreview/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormGtfsFieldRepository implements GtfsFieldRepository using GORM
type GormGtfsFieldRepository struct {
	db *gorm.DB
}

// NewGormGtfsFieldRepository creates a new GormGtfsFieldRepository
func NewGormGtfsFieldRepository(db *gorm.DB) *GormGtfsFieldRepository {
	return &GormGtfsFieldRepository{db: db}
}

// FindByID finds a GTFS field by ID
func (r *GormGtfsFieldRepository) FindByID(ctx context.Context, id uuid.UUID) (*category.GtfsField, error) {
	var model models.GtfsFieldModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	field := model.ToDomain()
	return &field, nil
}

// FindByTableAndName finds a GTFS field by its table and field name
func (r *GormGtfsFieldRepository) FindByTableAndName(ctx context.Context, table, name string) (*category.GtfsField, error) {
	var model models.GtfsFieldModel
	if err := r.db.WithContext(ctx).
		Where("table_name = ? AND name = ?", table, name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	field := model.ToDomain()
	return &field, nil
}

// Save creates or updates a GTFS field
func (r *GormGtfsFieldRepository) Save(ctx context.Context, field *category.GtfsField) error {
	return r.db.WithContext(ctx).Save(models.GtfsFieldModelFromDomain(*field)).Error
}

var _ category.GtfsFieldRepository = (*GormGtfsFieldRepository)(nil)

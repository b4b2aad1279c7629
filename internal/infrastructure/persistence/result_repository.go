package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/evaluation"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/gtfsreview/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormResultRepository implements ResultRepository using GORM
type GormResultRepository struct {
	db *gorm.DB
}

// NewGormResultRepository creates a new GormResultRepository
func NewGormResultRepository(db *gorm.DB) *GormResultRepository {
	return &GormResultRepository{db: db}
}

func withEvidence(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Images", byCreation).
		Preload("References", byCreation)
}

// FindByID finds a result with its images and references
func (r *GormResultRepository) FindByID(ctx context.Context, id uuid.UUID) (*evaluation.Result, error) {
	var model models.ResultModel
	if err := withEvidence(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReview returns the results of a review in category order, then by number
func (r *GormResultRepository) FindByReview(ctx context.Context, reviewID uuid.UUID) ([]evaluation.Result, error) {
	var rows []models.ResultModel
	if err := withEvidence(r.db.WithContext(ctx)).
		Joins("JOIN review_categories ON review_categories.id = results.review_category_id").
		Where("results.review_id = ?", reviewID).
		Order("review_categories.created_at ASC, review_categories.id ASC, results.number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	results := make([]evaluation.Result, len(rows))
	for i := range rows {
		results[i] = *rows[i].ToDomain()
	}
	return results, nil
}

// FindByPosition finds the n-th result of a category within a review
func (r *GormResultRepository) FindByPosition(ctx context.Context, reviewID uuid.UUID, pos evaluation.Position) (*evaluation.Result, error) {
	var model models.ResultModel
	if err := withEvidence(r.db.WithContext(ctx)).
		Where("review_id = ? AND review_category_id = ? AND number = ?", reviewID, pos.CategoryID, pos.Number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountByCategory returns the number of results per category of a review
func (r *GormResultRepository) CountByCategory(ctx context.Context, reviewID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []struct {
		ReviewCategoryID uuid.UUID
		Count            int
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ResultModel{}).
		Select("review_category_id, COUNT(*) AS count").
		Where("review_id = ?", reviewID).
		Group("review_category_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.ReviewCategoryID] = row.Count
	}
	return counts, nil
}

// CountByScore returns how many results reference a score
func (r *GormResultRepository) CountByScore(ctx context.Context, scoreID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ResultModel{}).
		Where("score_id = ?", scoreID).
		Count(&count).Error
	return count, err
}

// Save updates a result and replaces its images and references
func (r *GormResultRepository) Save(ctx context.Context, result *evaluation.Result) error {
	m := models.ResultModelFromDomain(result)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(m).Error; err != nil {
			return err
		}

		imageIDs := make([]uuid.UUID, len(m.Images))
		for i := range m.Images {
			imageIDs[i] = m.Images[i].ID
		}
		if err := replaceChildren(tx, &models.ResultImageModel{}, "result_id", m.ID, imageIDs); err != nil {
			return err
		}
		for i := range m.Images {
			if err := tx.Save(&m.Images[i]).Error; err != nil {
				return err
			}
		}

		refIDs := make([]uuid.UUID, len(m.References))
		for i := range m.References {
			refIDs[i] = m.References[i].ID
		}
		if err := replaceChildren(tx, &models.ResultReferenceModel{}, "result_id", m.ID, refIDs); err != nil {
			return err
		}
		for i := range m.References {
			if err := tx.Save(&m.References[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ evaluation.ResultRepository = (*GormResultRepository)(nil)

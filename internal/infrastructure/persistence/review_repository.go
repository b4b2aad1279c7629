package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/evaluation"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/gtfsreview/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// resultBatchSize bounds the rows per INSERT when a review is started
const resultBatchSize = 200

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByID finds a review by ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*evaluation.Review, error) {
	var model models.ReviewModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Search finds reviews matching the filter and returns the total count
func (r *GormReviewRepository) Search(ctx context.Context, filter evaluation.ReviewFilter) ([]evaluation.Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ReviewModel{})

	if filter.Agency != nil {
		query = query.Where("agency = ?", *filter.Agency)
	}
	if filter.Mode != nil {
		query = query.Where("mode = ?", *filter.Mode)
	}
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("agency LIKE ? OR feed_name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ReviewModel
	if err := r.applyFilter(query, filter.Filter).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	reviews := make([]evaluation.Review, len(rows))
	for i := range rows {
		reviews[i] = *rows[i].ToDomain()
	}
	return reviews, total, nil
}

// Save creates or updates a review
func (r *GormReviewRepository) Save(ctx context.Context, review *evaluation.Review) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(models.ReviewModelFromDomain(review)).Error
}

// SaveWithResults stores a new review and its sampled results atomically
func (r *GormReviewRepository) SaveWithResults(ctx context.Context, review *evaluation.Review, results []*evaluation.Result) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(models.ReviewModelFromDomain(review)).Error; err != nil {
			return err
		}
		if len(results) == 0 {
			return nil
		}
		rows := make([]*models.ResultModel, len(results))
		for i, result := range results {
			rows[i] = models.ResultModelFromDomain(result)
		}
		return tx.Omit(clause.Associations).CreateInBatches(rows, resultBatchSize).Error
	})
}

func (r *GormReviewRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	return query.
		Order(reviewOrder(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit())
}

var _ evaluation.ReviewRepository = (*GormReviewRepository)(nil)

package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/gtfsreview/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReviewCategoryRepository implements ReviewCategoryRepository using GORM
type GormReviewCategoryRepository struct {
	db *gorm.DB
}

// NewGormReviewCategoryRepository creates a new GormReviewCategoryRepository
func NewGormReviewCategoryRepository(db *gorm.DB) *GormReviewCategoryRepository {
	return &GormReviewCategoryRepository{db: db}
}

func byCreation(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// withAggregate preloads every part of the category aggregate
func withAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("GtfsField").
		Preload("DataSelector").
		Preload("ReviewWidget").
		Preload("ReviewWidget.RelatedFields", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("ReviewWidget.RelatedFields.GtfsField").
		Preload("ConsistencyWidget").
		Preload("ConsistencyWidget.VisualExamples", byCreation).
		Preload("ConsistencyWidget.Links", byCreation).
		Preload("ResultsCaptureWidget").
		Preload("ResultsCaptureWidget.Scores", func(db *gorm.DB) *gorm.DB {
			return db.Order("value ASC")
		})
}

// FindByID loads the full aggregate
func (r *GormReviewCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*category.ReviewCategory, error) {
	var model models.ReviewCategoryModel
	if err := withAggregate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByWidgetID loads the category owning the widget of the given type
func (r *GormReviewCategoryRepository) FindByWidgetID(ctx context.Context, widgetType category.WidgetType, widgetID uuid.UUID) (*category.ReviewCategory, error) {
	table, err := widgetTable(widgetType)
	if err != nil {
		return nil, err
	}

	owner := r.db.Table(table).Select("review_category_id").Where("id = ?", widgetID)

	var model models.ReviewCategoryModel
	if err := withAggregate(r.db.WithContext(ctx)).
		Where("id = (?)", owner).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every category in creation order
func (r *GormReviewCategoryRepository) FindAll(ctx context.Context) ([]category.ReviewCategory, error) {
	var rows []models.ReviewCategoryModel
	if err := withAggregate(r.db.WithContext(ctx)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	categories := make([]category.ReviewCategory, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories, nil
}

// Save inserts or updates the aggregate. Child collections are replaced:
// rows no longer in the aggregate are deleted.
func (r *GormReviewCategoryRepository) Save(ctx context.Context, c *category.ReviewCategory) error {
	m := models.ReviewCategoryModelFromDomain(c)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(m).Error; err != nil {
			return err
		}

		// Review widget and its related fields
		if err := tx.Omit(clause.Associations).Save(&m.ReviewWidget).Error; err != nil {
			return err
		}
		if err := tx.Where("review_widget_id = ?", m.ReviewWidget.ID).
			Delete(&models.ReviewWidgetRelatedFieldModel{}).Error; err != nil {
			return err
		}
		if len(m.ReviewWidget.RelatedFields) > 0 {
			if err := tx.Omit(clause.Associations).Create(&m.ReviewWidget.RelatedFields).Error; err != nil {
				return err
			}
		}

		// Consistency widget with visual examples and links
		if err := tx.Omit(clause.Associations).Save(&m.ConsistencyWidget).Error; err != nil {
			return err
		}
		exampleIDs := make([]uuid.UUID, len(m.ConsistencyWidget.VisualExamples))
		for i := range m.ConsistencyWidget.VisualExamples {
			exampleIDs[i] = m.ConsistencyWidget.VisualExamples[i].ID
		}
		if err := replaceChildren(tx, &models.VisualExampleModel{}, "consistency_widget_id", m.ConsistencyWidget.ID, exampleIDs); err != nil {
			return err
		}
		for i := range m.ConsistencyWidget.VisualExamples {
			if err := tx.Save(&m.ConsistencyWidget.VisualExamples[i]).Error; err != nil {
				return err
			}
		}
		linkIDs := make([]uuid.UUID, len(m.ConsistencyWidget.Links))
		for i := range m.ConsistencyWidget.Links {
			linkIDs[i] = m.ConsistencyWidget.Links[i].ID
		}
		if err := replaceChildren(tx, &models.LinkModel{}, "consistency_widget_id", m.ConsistencyWidget.ID, linkIDs); err != nil {
			return err
		}
		for i := range m.ConsistencyWidget.Links {
			if err := tx.Save(&m.ConsistencyWidget.Links[i]).Error; err != nil {
				return err
			}
		}

		// Results capture widget with scores
		if err := tx.Omit(clause.Associations).Save(&m.ResultsCaptureWidget).Error; err != nil {
			return err
		}
		scoreIDs := make([]uuid.UUID, len(m.ResultsCaptureWidget.Scores))
		for i := range m.ResultsCaptureWidget.Scores {
			scoreIDs[i] = m.ResultsCaptureWidget.Scores[i].ID
		}
		if err := replaceChildren(tx, &models.ScoreModel{}, "results_capture_widget_id", m.ResultsCaptureWidget.ID, scoreIDs); err != nil {
			return err
		}
		for i := range m.ResultsCaptureWidget.Scores {
			if err := tx.Save(&m.ResultsCaptureWidget.Scores[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes the category and its widgets. Categories with recorded
// review results are kept.
func (r *GormReviewCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var results int64
		if err := tx.Model(&models.ResultModel{}).
			Where("review_category_id = ?", id).
			Count(&results).Error; err != nil {
			return err
		}
		if results > 0 {
			return shared.NewDomainError("INVALID_STATE", "Category is referenced by review results and cannot be deleted")
		}

		reviewWidgets := tx.Model(&models.ReviewWidgetModel{}).Select("id").Where("review_category_id = ?", id)
		consistencyWidgets := tx.Model(&models.ConsistencyWidgetModel{}).Select("id").Where("review_category_id = ?", id)
		captureWidgets := tx.Model(&models.ResultsCaptureWidgetModel{}).Select("id").Where("review_category_id = ?", id)

		steps := []struct {
			model any
			query string
			arg   any
		}{
			{&models.ReviewWidgetRelatedFieldModel{}, "review_widget_id IN (?)", reviewWidgets},
			{&models.VisualExampleModel{}, "consistency_widget_id IN (?)", consistencyWidgets},
			{&models.LinkModel{}, "consistency_widget_id IN (?)", consistencyWidgets},
			{&models.ScoreModel{}, "results_capture_widget_id IN (?)", captureWidgets},
			{&models.ReviewWidgetModel{}, "review_category_id = ?", id},
			{&models.ConsistencyWidgetModel{}, "review_category_id = ?", id},
			{&models.ResultsCaptureWidgetModel{}, "review_category_id = ?", id},
		}
		for _, s := range steps {
			if err := tx.Where(s.query, s.arg).Delete(s.model).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&models.ReviewCategoryModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// replaceChildren deletes the rows of a child table owned by parentID that
// are not in keep
func replaceChildren(tx *gorm.DB, model any, parentColumn string, parentID uuid.UUID, keep []uuid.UUID) error {
	query := tx.Where(parentColumn+" = ?", parentID)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	return query.Delete(model).Error
}

func widgetTable(t category.WidgetType) (string, error) {
	switch t {
	case category.WidgetTypeReview:
		return models.ReviewWidgetModel{}.TableName(), nil
	case category.WidgetTypeConsistency:
		return models.ConsistencyWidgetModel{}.TableName(), nil
	case category.WidgetTypeResultsCapture:
		return models.ResultsCaptureWidgetModel{}.TableName(), nil
	default:
		return "", shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown widget type %q", t))
	}
}

var _ category.ReviewCategoryRepository = (*GormReviewCategoryRepository)(nil)

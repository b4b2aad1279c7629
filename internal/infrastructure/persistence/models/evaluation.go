package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/evaluation"
)

// ModeModel is a row of the GTFS route_type lookup table
type ModeModel struct {
	ID   int    `gorm:"column:mode_id;primaryKey;autoIncrement:false"`
	Name string `gorm:"column:mode_name;type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (ModeModel) TableName() string {
	return "mode_lookup_table"
}

// ToDomain converts the persistence model to a domain value
func (m *ModeModel) ToDomain() evaluation.Mode {
	return evaluation.Mode{ID: m.ID, Name: m.Name}
}

// ReviewModel is the persistence model for the Review aggregate root
type ReviewModel struct {
	AggregateModel
	Agency         string     `gorm:"type:varchar(255);not null;default:'';index"`
	Mode           int        `gorm:"not null;index"`
	FeedName       string     `gorm:"type:varchar(255);not null;default:''"`
	FeedArchiveKey string     `gorm:"type:varchar(500)"`
	Completed      bool       `gorm:"not null;default:false;index"`
	CompletedAt    *time.Time `gorm:"type:timestamp"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// ToDomain converts the persistence model to a domain aggregate
func (m *ReviewModel) ToDomain() *evaluation.Review {
	return &evaluation.Review{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Agency:            m.Agency,
		Mode:              m.Mode,
		FeedName:          m.FeedName,
		FeedArchiveKey:    m.FeedArchiveKey,
		Completed:         m.Completed,
		CompletedAt:       m.CompletedAt,
	}
}

// ReviewModelFromDomain creates a persistence model from a domain aggregate
func ReviewModelFromDomain(r *evaluation.Review) *ReviewModel {
	m := &ReviewModel{
		Agency:         r.Agency,
		Mode:           r.Mode,
		FeedName:       r.FeedName,
		FeedArchiveKey: r.FeedArchiveKey,
		Completed:      r.Completed,
		CompletedAt:    r.CompletedAt,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// ResultModel is the persistence model for a graded row. RowData keeps a
// snapshot of the sampled GTFS row as JSON.
type ResultModel struct {
	BaseModel
	ReviewID         uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_result_position,priority:1"`
	ReviewCategoryID uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_result_position,priority:2"`
	Number           int                    `gorm:"not null;uniqueIndex:idx_result_position,priority:3"`
	ReviewedData     string                 `gorm:"type:text;not null;default:''"`
	RowData          map[string]string      `gorm:"type:text;serializer:json"`
	ScoreID          *uuid.UUID             `gorm:"type:uuid;index"`
	ScoreReason      string                 `gorm:"type:text"`
	RecordedAt       *time.Time             `gorm:"type:timestamp"`
	Images           []ResultImageModel     `gorm:"foreignKey:ResultID;references:ID"`
	References       []ResultReferenceModel `gorm:"foreignKey:ResultID;references:ID"`
}

// TableName returns the table name for GORM
func (ResultModel) TableName() string {
	return "results"
}

// ToDomain converts the persistence model to a domain entity
func (m *ResultModel) ToDomain() *evaluation.Result {
	r := &evaluation.Result{
		BaseEntity:       m.BaseModel.ToDomain(),
		ReviewID:         m.ReviewID,
		ReviewCategoryID: m.ReviewCategoryID,
		Number:           m.Number,
		ReviewedData:     m.ReviewedData,
		RowData:          m.RowData,
		ScoreID:          m.ScoreID,
		ScoreReason:      m.ScoreReason,
		RecordedAt:       m.RecordedAt,
		Images:           make([]evaluation.ResultImage, 0, len(m.Images)),
		References:       make([]evaluation.ResultReference, 0, len(m.References)),
	}
	for i := range m.Images {
		r.Images = append(r.Images, evaluation.ResultImage{
			BaseEntity: m.Images[i].BaseModel.ToDomain(),
			ImageKey:   m.Images[i].ImageKey,
		})
	}
	for i := range m.References {
		ref := m.References[i]
		r.References = append(r.References, evaluation.ResultReference{
			BaseEntity:    ref.BaseModel.ToDomain(),
			Name:          ref.Name,
			URL:           ref.URL,
			PublishedDate: ref.PublishedDate,
		})
	}
	return r
}

// ResultModelFromDomain creates a persistence model from a domain entity
func ResultModelFromDomain(r *evaluation.Result) *ResultModel {
	m := &ResultModel{
		ReviewID:         r.ReviewID,
		ReviewCategoryID: r.ReviewCategoryID,
		Number:           r.Number,
		ReviewedData:     r.ReviewedData,
		RowData:          r.RowData,
		ScoreID:          r.ScoreID,
		ScoreReason:      r.ScoreReason,
		RecordedAt:       r.RecordedAt,
		Images:           make([]ResultImageModel, 0, len(r.Images)),
		References:       make([]ResultReferenceModel, 0, len(r.References)),
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	for _, img := range r.Images {
		im := ResultImageModel{ResultID: r.ID, ImageKey: img.ImageKey}
		im.FromDomainBaseEntity(img.BaseEntity)
		m.Images = append(m.Images, im)
	}
	for _, ref := range r.References {
		rm := ResultReferenceModel{
			ResultID:      r.ID,
			Name:          ref.Name,
			URL:           ref.URL,
			PublishedDate: ref.PublishedDate,
		}
		rm.FromDomainBaseEntity(ref.BaseEntity)
		m.References = append(m.References, rm)
	}
	return m
}

// ResultImageModel is the persistence model for evidence attached to a result
type ResultImageModel struct {
	BaseModel
	ResultID uuid.UUID `gorm:"type:uuid;not null;index"`
	ImageKey string    `gorm:"type:varchar(500);not null"`
}

// TableName returns the table name for GORM
func (ResultImageModel) TableName() string {
	return "result_images"
}

// ResultReferenceModel is the persistence model for a cited source
type ResultReferenceModel struct {
	BaseModel
	ResultID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name          string     `gorm:"type:varchar(255)"`
	URL           string     `gorm:"column:url;type:varchar(2048)"`
	PublishedDate *time.Time `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (ResultReferenceModel) TableName() string {
	return "result_references"
}

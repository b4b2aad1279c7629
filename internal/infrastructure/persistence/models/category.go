package models

import (
	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/shopspring/decimal"
)

// GtfsFieldModel is the persistence model for a GTFS (table, field) pair
type GtfsFieldModel struct {
	BaseModel
	Name      string `gorm:"type:varchar(100);not null;uniqueIndex:idx_gtfs_field_table_name,priority:2"`
	GtfsTable string `gorm:"column:table_name;type:varchar(100);not null;uniqueIndex:idx_gtfs_field_table_name,priority:1"`
	Type      string `gorm:"type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (GtfsFieldModel) TableName() string {
	return "gtfs_fields"
}

// ToDomain converts the persistence model to a domain entity
func (m *GtfsFieldModel) ToDomain() category.GtfsField {
	return category.GtfsField{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Table:      m.GtfsTable,
		Type:       m.Type,
	}
}

// GtfsFieldModelFromDomain creates a persistence model from a domain entity
func GtfsFieldModelFromDomain(f category.GtfsField) *GtfsFieldModel {
	m := &GtfsFieldModel{
		Name:      f.Name,
		GtfsTable: f.Table,
		Type:      f.Type,
	}
	m.FromDomainBaseEntity(f.BaseEntity)
	return m
}

// DataSelectorModel is the persistence model for a shared data selector
type DataSelectorModel struct {
	BaseModel
	Name           string `gorm:"type:varchar(50);not null;uniqueIndex:idx_data_selector_name_number"`
	NumberToReview *int   `gorm:"uniqueIndex:idx_data_selector_name_number"`
}

// TableName returns the table name for GORM
func (DataSelectorModel) TableName() string {
	return "data_selectors"
}

// ToDomain converts the persistence model to a domain entity
func (m *DataSelectorModel) ToDomain() *category.DataSelector {
	return &category.DataSelector{
		BaseEntity:     m.BaseModel.ToDomain(),
		Name:           category.DataSelectorName(m.Name),
		NumberToReview: m.NumberToReview,
	}
}

// DataSelectorModelFromDomain creates a persistence model from a domain entity
func DataSelectorModelFromDomain(s *category.DataSelector) *DataSelectorModel {
	m := &DataSelectorModel{
		Name:           string(s.Name),
		NumberToReview: s.NumberToReview,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// ReviewCategoryModel is the persistence model for the ReviewCategory aggregate root
type ReviewCategoryModel struct {
	AggregateModel
	GtfsFieldID          uuid.UUID                 `gorm:"type:uuid;not null;index"`
	GtfsField            GtfsFieldModel            `gorm:"foreignKey:GtfsFieldID;references:ID"`
	DataSelectorID       *uuid.UUID                `gorm:"type:uuid;index"`
	DataSelector         *DataSelectorModel        `gorm:"foreignKey:DataSelectorID;references:ID"`
	ReviewWidget         ReviewWidgetModel         `gorm:"foreignKey:ReviewCategoryID;references:ID"`
	ConsistencyWidget    ConsistencyWidgetModel    `gorm:"foreignKey:ReviewCategoryID;references:ID"`
	ResultsCaptureWidget ResultsCaptureWidgetModel `gorm:"foreignKey:ReviewCategoryID;references:ID"`
}

// TableName returns the table name for GORM
func (ReviewCategoryModel) TableName() string {
	return "review_categories"
}

// ToDomain converts the persistence model to a domain aggregate
func (m *ReviewCategoryModel) ToDomain() *category.ReviewCategory {
	c := &category.ReviewCategory{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		GtfsField:            m.GtfsField.ToDomain(),
		ReviewWidget:         m.ReviewWidget.ToDomain(),
		ConsistencyWidget:    m.ConsistencyWidget.ToDomain(),
		ResultsCaptureWidget: m.ResultsCaptureWidget.ToDomain(),
	}
	if m.DataSelector != nil {
		c.DataSelector = m.DataSelector.ToDomain()
	}
	return c
}

// ReviewCategoryModelFromDomain creates a persistence model from a domain
// aggregate. Widgets get their owning category ID set.
func ReviewCategoryModelFromDomain(c *category.ReviewCategory) *ReviewCategoryModel {
	m := &ReviewCategoryModel{
		GtfsFieldID:          c.GtfsField.ID,
		ReviewWidget:         *ReviewWidgetModelFromDomain(c.ID, c.ReviewWidget),
		ConsistencyWidget:    *ConsistencyWidgetModelFromDomain(c.ID, c.ConsistencyWidget),
		ResultsCaptureWidget: *ResultsCaptureWidgetModelFromDomain(c.ID, c.ResultsCaptureWidget),
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	if c.DataSelector != nil {
		id := c.DataSelector.ID
		m.DataSelectorID = &id
	}
	return m
}

// ReviewWidgetModel is the persistence model for a review widget
type ReviewWidgetModel struct {
	BaseModel
	ReviewCategoryID          uuid.UUID                       `gorm:"type:uuid;not null;uniqueIndex"`
	HasRelatedFieldSameTable  bool                            `gorm:"not null;default:false"`
	HasRelatedFieldOtherTable bool                            `gorm:"not null;default:false"`
	RelatedFieldOtherTable    string                          `gorm:"type:varchar(100)"`
	RelatedFields             []ReviewWidgetRelatedFieldModel `gorm:"foreignKey:ReviewWidgetID;references:ID"`
}

// TableName returns the table name for GORM
func (ReviewWidgetModel) TableName() string {
	return "review_widgets"
}

// ToDomain converts the persistence model to a domain entity
func (m *ReviewWidgetModel) ToDomain() category.ReviewWidget {
	w := category.ReviewWidget{
		BaseEntity:                m.BaseModel.ToDomain(),
		HasRelatedFieldSameTable:  m.HasRelatedFieldSameTable,
		HasRelatedFieldOtherTable: m.HasRelatedFieldOtherTable,
		RelatedFieldOtherTable:    m.RelatedFieldOtherTable,
		RelatedFields:             make([]category.GtfsField, 0, len(m.RelatedFields)),
	}
	for i := range m.RelatedFields {
		w.RelatedFields = append(w.RelatedFields, m.RelatedFields[i].GtfsField.ToDomain())
	}
	return w
}

// ReviewWidgetModelFromDomain creates a persistence model from a domain entity
func ReviewWidgetModelFromDomain(categoryID uuid.UUID, w category.ReviewWidget) *ReviewWidgetModel {
	m := &ReviewWidgetModel{
		ReviewCategoryID:          categoryID,
		HasRelatedFieldSameTable:  w.HasRelatedFieldSameTable,
		HasRelatedFieldOtherTable: w.HasRelatedFieldOtherTable,
		RelatedFieldOtherTable:    w.RelatedFieldOtherTable,
		RelatedFields:             make([]ReviewWidgetRelatedFieldModel, 0, len(w.RelatedFields)),
	}
	m.FromDomainBaseEntity(w.BaseEntity)
	for i, f := range w.RelatedFields {
		m.RelatedFields = append(m.RelatedFields, ReviewWidgetRelatedFieldModel{
			ReviewWidgetID: w.ID,
			GtfsFieldID:    f.ID,
			Position:       i,
		})
	}
	return m
}

// ReviewWidgetRelatedFieldModel joins a review widget to the GTFS fields
// shown alongside the reviewed value
type ReviewWidgetRelatedFieldModel struct {
	ReviewWidgetID uuid.UUID      `gorm:"type:uuid;primaryKey"`
	GtfsFieldID    uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Position       int            `gorm:"not null;default:0"`
	GtfsField      GtfsFieldModel `gorm:"foreignKey:GtfsFieldID;references:ID"`
}

// TableName returns the table name for GORM
func (ReviewWidgetRelatedFieldModel) TableName() string {
	return "review_widget_related_fields"
}

// ConsistencyWidgetModel is the persistence model for a consistency widget
type ConsistencyWidgetModel struct {
	BaseModel
	ReviewCategoryID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex"`
	HasVisualExample bool                 `gorm:"not null;default:false"`
	HasLink          bool                 `gorm:"not null;default:false"`
	HasOtherText     bool                 `gorm:"not null;default:false"`
	OtherText        string               `gorm:"type:text"`
	VisualExamples   []VisualExampleModel `gorm:"foreignKey:ConsistencyWidgetID;references:ID"`
	Links            []LinkModel          `gorm:"foreignKey:ConsistencyWidgetID;references:ID"`
}

// TableName returns the table name for GORM
func (ConsistencyWidgetModel) TableName() string {
	return "consistency_widgets"
}

// ToDomain converts the persistence model to a domain entity
func (m *ConsistencyWidgetModel) ToDomain() category.ConsistencyWidget {
	w := category.ConsistencyWidget{
		BaseEntity:       m.BaseModel.ToDomain(),
		HasVisualExample: m.HasVisualExample,
		HasLink:          m.HasLink,
		HasOtherText:     m.HasOtherText,
		OtherText:        m.OtherText,
		VisualExamples:   make([]category.VisualExample, 0, len(m.VisualExamples)),
		Links:            make([]category.Link, 0, len(m.Links)),
	}
	for i := range m.VisualExamples {
		w.VisualExamples = append(w.VisualExamples, m.VisualExamples[i].ToDomain())
	}
	for i := range m.Links {
		w.Links = append(w.Links, m.Links[i].ToDomain())
	}
	return w
}

// ConsistencyWidgetModelFromDomain creates a persistence model from a domain entity
func ConsistencyWidgetModelFromDomain(categoryID uuid.UUID, w category.ConsistencyWidget) *ConsistencyWidgetModel {
	m := &ConsistencyWidgetModel{
		ReviewCategoryID: categoryID,
		HasVisualExample: w.HasVisualExample,
		HasLink:          w.HasLink,
		HasOtherText:     w.HasOtherText,
		OtherText:        w.OtherText,
		VisualExamples:   make([]VisualExampleModel, 0, len(w.VisualExamples)),
		Links:            make([]LinkModel, 0, len(w.Links)),
	}
	m.FromDomainBaseEntity(w.BaseEntity)
	for _, v := range w.VisualExamples {
		vm := VisualExampleModel{
			ConsistencyWidgetID: w.ID,
			Name:                v.Name,
			Description:         v.Description,
			ImageKey:            v.ImageKey,
		}
		vm.FromDomainBaseEntity(v.BaseEntity)
		m.VisualExamples = append(m.VisualExamples, vm)
	}
	for _, l := range w.Links {
		lm := LinkModel{
			ConsistencyWidgetID: w.ID,
			URL:                 l.URL,
			URLDisplayText:      l.URLDisplayText,
		}
		lm.FromDomainBaseEntity(l.BaseEntity)
		m.Links = append(m.Links, lm)
	}
	return m
}

// VisualExampleModel is the persistence model for a visual example image
type VisualExampleModel struct {
	BaseModel
	ConsistencyWidgetID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name                string    `gorm:"type:varchar(100);not null"`
	Description         string    `gorm:"type:varchar(500)"`
	ImageKey            string    `gorm:"type:varchar(500);not null"`
}

// TableName returns the table name for GORM
func (VisualExampleModel) TableName() string {
	return "visual_examples"
}

// ToDomain converts the persistence model to a domain entity
func (m *VisualExampleModel) ToDomain() category.VisualExample {
	return category.VisualExample{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Description: m.Description,
		ImageKey:    m.ImageKey,
	}
}

// LinkModel is the persistence model for a reference link
type LinkModel struct {
	BaseModel
	ConsistencyWidgetID uuid.UUID `gorm:"type:uuid;not null;index"`
	URL                 string    `gorm:"column:url;type:varchar(2048);not null"`
	URLDisplayText      string    `gorm:"column:url_display_text;type:varchar(255)"`
}

// TableName returns the table name for GORM
func (LinkModel) TableName() string {
	return "links"
}

// ToDomain converts the persistence model to a domain entity
func (m *LinkModel) ToDomain() category.Link {
	return category.Link{
		BaseEntity:     m.BaseModel.ToDomain(),
		URL:            m.URL,
		URLDisplayText: m.URLDisplayText,
	}
}

// ResultsCaptureWidgetModel is the persistence model for a results capture widget
type ResultsCaptureWidgetModel struct {
	BaseModel
	ReviewCategoryID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex"`
	HasScore         bool         `gorm:"not null;default:false"`
	HasScoreImage    bool         `gorm:"not null;default:false"`
	HasScoreReason   bool         `gorm:"not null;default:false"`
	HasReferenceLink bool         `gorm:"not null;default:false"`
	HasReferenceDate bool         `gorm:"not null;default:false"`
	Scores           []ScoreModel `gorm:"foreignKey:ResultsCaptureWidgetID;references:ID"`
}

// TableName returns the table name for GORM
func (ResultsCaptureWidgetModel) TableName() string {
	return "results_capture_widgets"
}

// ToDomain converts the persistence model to a domain entity
func (m *ResultsCaptureWidgetModel) ToDomain() category.ResultsCaptureWidget {
	w := category.ResultsCaptureWidget{
		BaseEntity:       m.BaseModel.ToDomain(),
		HasScore:         m.HasScore,
		HasScoreImage:    m.HasScoreImage,
		HasScoreReason:   m.HasScoreReason,
		HasReferenceLink: m.HasReferenceLink,
		HasReferenceDate: m.HasReferenceDate,
		Scores:           make([]category.Score, 0, len(m.Scores)),
	}
	for i := range m.Scores {
		w.Scores = append(w.Scores, m.Scores[i].ToDomain())
	}
	return w
}

// ResultsCaptureWidgetModelFromDomain creates a persistence model from a domain entity
func ResultsCaptureWidgetModelFromDomain(categoryID uuid.UUID, w category.ResultsCaptureWidget) *ResultsCaptureWidgetModel {
	m := &ResultsCaptureWidgetModel{
		ReviewCategoryID: categoryID,
		HasScore:         w.HasScore,
		HasScoreImage:    w.HasScoreImage,
		HasScoreReason:   w.HasScoreReason,
		HasReferenceLink: w.HasReferenceLink,
		HasReferenceDate: w.HasReferenceDate,
		Scores:           make([]ScoreModel, 0, len(w.Scores)),
	}
	m.FromDomainBaseEntity(w.BaseEntity)
	for _, s := range w.Scores {
		sm := ScoreModel{
			ResultsCaptureWidgetID: w.ID,
			Value:                  s.Value,
			HelpText:               s.HelpText,
		}
		sm.FromDomainBaseEntity(s.BaseEntity)
		m.Scores = append(m.Scores, sm)
	}
	return m
}

// ScoreModel is the persistence model for a selectable score
type ScoreModel struct {
	BaseModel
	ResultsCaptureWidgetID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Value                  decimal.Decimal `gorm:"type:decimal(4,2);not null"`
	HelpText               string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (ScoreModel) TableName() string {
	return "scores"
}

// ToDomain converts the persistence model to a domain entity
func (m *ScoreModel) ToDomain() category.Score {
	return category.Score{
		BaseEntity: m.BaseModel.ToDomain(),
		Value:      m.Value,
		HelpText:   m.HelpText,
	}
}

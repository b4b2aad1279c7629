package category

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/application/media"
	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest is the add_review_category form
type CreateCategoryRequest struct {
	Table string `json:"table" binding:"required,max=200,gtfs_name"`
	Field string `json:"field" binding:"required,max=200,gtfs_name"`
}

// ChooseDataSelectorRequest picks the sampling strategy of a category
type ChooseDataSelectorRequest struct {
	Name           string `json:"name" binding:"required"`
	NumberToReview *int   `json:"number_to_review" binding:"omitempty,min=1"`
}

// ConfigureWidgetRequest carries the flags of a widget. Only the flags of
// the targeted widget type are read.
type ConfigureWidgetRequest struct {
	HasRelatedFieldSameTable  bool `json:"has_related_field_same_table"`
	HasRelatedFieldOtherTable bool `json:"has_related_field_other_table"`

	HasVisualExample bool `json:"has_visual_example"`
	HasLink          bool `json:"has_link"`
	HasOtherText     bool `json:"has_other_text"`

	HasScore         bool `json:"has_score"`
	HasScoreImage    bool `json:"has_score_image"`
	HasScoreReason   bool `json:"has_score_reason"`
	HasReferenceLink bool `json:"has_reference_link"`
	HasReferenceDate bool `json:"has_reference_date"`
}

// AddRelatedFieldRequest attaches a field of the reviewed table
type AddRelatedFieldRequest struct {
	Table string `json:"table" binding:"required,gtfs_name"`
	Field string `json:"field" binding:"required,gtfs_name"`
}

// SetOtherTableRequest records a related field from another table
type SetOtherTableRequest struct {
	RelatedFieldOtherTable string `json:"related_field_other_table" binding:"max=200"`
}

// AddVisualExampleInput is a visual example with its uploaded image
type AddVisualExampleInput struct {
	Name        string
	Description string
	FileName    string
	Image       []byte
}

// AddLinkRequest attaches an external reference
type AddLinkRequest struct {
	URL         string `json:"url" binding:"required,url,max=200"`
	DisplayText string `json:"url_display_text" binding:"max=200"`
}

// SetOtherTextRequest sets the free text guidance
type SetOtherTextRequest struct {
	OtherText string `json:"other_text" binding:"max=500"`
}

// AddScoreRequest adds a selectable score
type AddScoreRequest struct {
	Score    decimal.Decimal `json:"score"`
	HelpText string          `json:"help_text" binding:"max=500"`
}

// FieldResponse is a GTFS field reference
type FieldResponse struct {
	ID    uuid.UUID `json:"id"`
	Table string    `json:"table"`
	Name  string    `json:"name"`
	Label string    `json:"label"`
	Type  string    `json:"type"`
}

// ToFieldResponse converts a GtfsField
func ToFieldResponse(f category.GtfsField) FieldResponse {
	return FieldResponse{ID: f.ID, Table: f.Table, Name: f.Name, Label: f.Label(), Type: f.Type}
}

// DataSelectorResponse is the sampling strategy of a category
type DataSelectorResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	NumberToReview *int      `json:"number_to_review"`
}

// WidgetRefResponse points at a widget
type WidgetRefResponse struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

func toWidgetRef(ref *category.WidgetRef) *WidgetRefResponse {
	if ref == nil {
		return nil
	}
	return &WidgetRefResponse{Type: string(ref.Type), ID: ref.ID}
}

// CategoryResponse is a review category in lists
type CategoryResponse struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Field        FieldResponse         `json:"field"`
	DataSelector *DataSelectorResponse `json:"data_selector"`
	Widgets      []WidgetRefResponse   `json:"widgets"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// ToCategoryResponse converts a ReviewCategory
func ToCategoryResponse(c *category.ReviewCategory) CategoryResponse {
	resp := CategoryResponse{
		ID:    c.ID,
		Name:  c.Name(),
		Field: ToFieldResponse(c.GtfsField),
		Widgets: []WidgetRefResponse{
			{Type: string(category.WidgetTypeReview), ID: c.ReviewWidget.ID},
			{Type: string(category.WidgetTypeConsistency), ID: c.ConsistencyWidget.ID},
			{Type: string(category.WidgetTypeResultsCapture), ID: c.ResultsCaptureWidget.ID},
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.DataSelector != nil {
		resp.DataSelector = &DataSelectorResponse{
			ID:             c.DataSelector.ID,
			Name:           string(c.DataSelector.Name),
			NumberToReview: c.DataSelector.NumberToReview,
		}
	}
	return resp
}

// CategoryDetailResponse is the admin details page of a category
type CategoryDetailResponse struct {
	CategoryResponse
	DataSelectorChoices []category.DataSelectorChoice `json:"data_selector_choices"`
	ReviewWidget        *WidgetResponse               `json:"review_widget"`
	ConsistencyWidget   *WidgetResponse               `json:"consistency_widget"`
	ResultsCapture      *WidgetResponse               `json:"results_capture_widget"`
}

// VisualExampleResponse is a visual example with a download URL
type VisualExampleResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
}

// LinkResponse is an external reference
type LinkResponse struct {
	ID             uuid.UUID `json:"id"`
	URL            string    `json:"url"`
	URLDisplayText string    `json:"url_display_text"`
}

// ScoreResponse is a selectable score
type ScoreResponse struct {
	ID       uuid.UUID       `json:"id"`
	Score    decimal.Decimal `json:"score"`
	HelpText string          `json:"help_text"`
}

// ToScoreResponses converts scores
func ToScoreResponses(scores []category.Score) []ScoreResponse {
	out := make([]ScoreResponse, len(scores))
	for i, s := range scores {
		out[i] = ScoreResponse{ID: s.ID, Score: s.Value, HelpText: s.HelpText}
	}
	return out
}

// ToLinkResponses converts links
func ToLinkResponses(links []category.Link) []LinkResponse {
	out := make([]LinkResponse, len(links))
	for i, l := range links {
		out[i] = LinkResponse{ID: l.ID, URL: l.URL, URLDisplayText: l.URLDisplayText}
	}
	return out
}

// ToVisualExampleResponses converts visual examples, resolving image URLs
func ToVisualExampleResponses(ctx context.Context, images *media.Images, examples []category.VisualExample) []VisualExampleResponse {
	out := make([]VisualExampleResponse, len(examples))
	for i, e := range examples {
		out[i] = VisualExampleResponse{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			ImageURL:    images.URL(ctx, e.ImageKey),
		}
	}
	return out
}

// ConfigSectionResponse is one editable part of a widget
type ConfigSectionResponse struct {
	Name                   string                  `json:"name"`
	Table                  string                  `json:"table,omitempty"`
	FieldChoices           []string                `json:"field_choices,omitempty"`
	RelatedFields          []FieldResponse         `json:"related_fields,omitempty"`
	RelatedFieldOtherTable string                  `json:"related_field_other_table,omitempty"`
	VisualExamples         []VisualExampleResponse `json:"visual_examples,omitempty"`
	Links                  []LinkResponse          `json:"links,omitempty"`
	OtherText              string                  `json:"other_text,omitempty"`
	Scores                 []ScoreResponse         `json:"scores,omitempty"`
}

// WidgetResponse is the configure_widget page
type WidgetResponse struct {
	Type              string                  `json:"type"`
	ID                uuid.UUID               `json:"id"`
	CategoryID        uuid.UUID               `json:"category_id"`
	CategoryName      string                  `json:"category_name"`
	Template          string                  `json:"template"`
	ConfigureTemplate string                  `json:"configure_template"`
	Flags             map[string]bool         `json:"flags"`
	Configuration     []ConfigSectionResponse `json:"configuration"`
	Next              *WidgetRefResponse      `json:"next"`
	Previous          *WidgetRefResponse      `json:"previous"`
}

func widgetFlags(c *category.ReviewCategory, t category.WidgetType) map[string]bool {
	switch t {
	case category.WidgetTypeReview:
		w := c.ReviewWidget
		return map[string]bool{
			"has_related_field_same_table":  w.HasRelatedFieldSameTable,
			"has_related_field_other_table": w.HasRelatedFieldOtherTable,
		}
	case category.WidgetTypeConsistency:
		w := c.ConsistencyWidget
		return map[string]bool{
			"has_visual_example": w.HasVisualExample,
			"has_link":           w.HasLink,
			"has_other_text":     w.HasOtherText,
		}
	default:
		f := c.ResultsCaptureWidget.Flags()
		return map[string]bool{
			"has_score":          f.HasScore,
			"has_score_image":    f.HasScoreImage,
			"has_score_reason":   f.HasScoreReason,
			"has_reference_link": f.HasReferenceLink,
			"has_reference_date": f.HasReferenceDate,
		}
	}
}

// ReviewWidgetView is how a reviewer sees the review widget of a category
type ReviewWidgetView struct {
	WidgetID               uuid.UUID       `json:"widget_id"`
	CategoryID             uuid.UUID       `json:"category_id"`
	CategoryName           string          `json:"category_name"`
	Template               string          `json:"template"`
	FieldKind              string          `json:"field_kind"`
	Field                  FieldResponse   `json:"field"`
	RelatedFields          []FieldResponse `json:"related_fields"`
	RelatedFieldOtherTable string          `json:"related_field_other_table,omitempty"`
}

package evaluation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/application/media"
	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/gtfsreview/backend/internal/domain/evaluation"
	"github.com/shopspring/decimal"
)

// StartReviewRequest is the start_new_evaluation form
type StartReviewRequest struct {
	Agency string `json:"agency" binding:"max=255"`
	Mode   *int   `json:"mode" binding:"required,min=0"`
}

// StartReviewInput adds the session's feed to the request
type StartReviewInput struct {
	StartReviewRequest
	FeedDir        string
	FeedName       string
	FeedArchiveKey string
}

// RecordResultInput is a reviewer's submission for one result
type RecordResultInput struct {
	ScoreID       *uuid.UUID
	ScoreReason   string
	ReferenceName string
	ReferenceURL  string
	PublishedDate *time.Time
	ImageFileName string
	Image         []byte
}

// SearchReviewsRequest filters completed reviews
type SearchReviewsRequest struct {
	Agency   string `form:"agency"`
	Mode     *int   `form:"mode" binding:"omitempty,min=0"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PositionResponse addresses a result and where it sits in its category
type PositionResponse struct {
	CategoryID uuid.UUID `json:"category_id"`
	Number     int       `json:"number"`
	Of         int       `json:"of"`
}

func toPosition(pos *evaluation.Position, progress []evaluation.CategoryProgress) *PositionResponse {
	if pos == nil {
		return nil
	}
	return &PositionResponse{
		CategoryID: pos.CategoryID,
		Number:     pos.Number,
		Of:         evaluation.CountFor(progress, pos.CategoryID),
	}
}

// ReviewResponse is a review summary
type ReviewResponse struct {
	ID          uuid.UUID  `json:"id"`
	Agency      string     `json:"agency"`
	Mode        int        `json:"mode"`
	ModeName    string     `json:"mode_name"`
	FeedName    string     `json:"feed_name"`
	FeedURL     string     `json:"feed_url,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// StartReviewResponse points at the first item to evaluate
type StartReviewResponse struct {
	Review  ReviewResponse    `json:"review"`
	Results int               `json:"results"`
	First   *PositionResponse `json:"first"`
}

// ReviewProgressResponse is where a reviewer resumes a review
type ReviewProgressResponse struct {
	Review   ReviewResponse    `json:"review"`
	Total    int               `json:"total"`
	Recorded int               `json:"recorded"`
	First    *PositionResponse `json:"first"`
}

// ScoreResponse is a selectable score
type ScoreResponse struct {
	ID       uuid.UUID       `json:"id"`
	Score    decimal.Decimal `json:"score"`
	HelpText string          `json:"help_text"`
}

// ReferenceResponse is a cited source
type ReferenceResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"reference_name"`
	URL           string     `json:"url"`
	PublishedDate *time.Time `json:"published_reference_date,omitempty"`
}

// ResultResponse is a result with its rendered value and evidence
type ResultResponse struct {
	ID           uuid.UUID              `json:"id"`
	CategoryID   uuid.UUID              `json:"category_id"`
	Number       int                    `json:"number"`
	ReviewedData string                 `json:"reviewed_data"`
	Field        category.RenderedField `json:"field"`
	Score        *ScoreResponse         `json:"score,omitempty"`
	ScoreReason  string                 `json:"score_reason,omitempty"`
	ImageURLs    []string               `json:"image_urls,omitempty"`
	References   []ReferenceResponse    `json:"references,omitempty"`
	Recorded     bool                   `json:"recorded"`
	RecordedAt   *time.Time             `json:"recorded_at,omitempty"`
}

func toResultResponse(ctx context.Context, images *media.Images, c *category.ReviewCategory, r *evaluation.Result) ResultResponse {
	resp := ResultResponse{
		ID:           r.ID,
		CategoryID:   r.ReviewCategoryID,
		Number:       r.Number,
		ReviewedData: r.ReviewedData,
		Field:        category.NewReviewField(c.GtfsField).Render(r.ReviewedData, r.RowData),
		ScoreReason:  r.ScoreReason,
		Recorded:     r.IsRecorded(),
		RecordedAt:   r.RecordedAt,
	}
	if r.ScoreID != nil {
		if score, ok := c.ResultsCaptureWidget.FindScore(*r.ScoreID); ok {
			resp.Score = &ScoreResponse{ID: score.ID, Score: score.Value, HelpText: score.HelpText}
		}
	}
	for _, img := range r.Images {
		if url := images.URL(ctx, img.ImageKey); url != "" {
			resp.ImageURLs = append(resp.ImageURLs, url)
		}
	}
	for _, ref := range r.References {
		resp.References = append(resp.References, ReferenceResponse{
			ID: ref.ID, Name: ref.Name, URL: ref.URL, PublishedDate: ref.PublishedDate,
		})
	}
	return resp
}

// ReviewWidgetItem is the review widget of an item: the rendered value
// and its related fields
type ReviewWidgetItem struct {
	Template               string                   `json:"template"`
	RelatedFields          []category.RenderedField `json:"related_fields"`
	RelatedFieldOtherTable string                   `json:"related_field_other_table,omitempty"`
}

// VisualExampleItem is a visual example with a download URL
type VisualExampleItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// LinkItem is an external reference
type LinkItem struct {
	URL            string `json:"url"`
	URLDisplayText string `json:"url_display_text"`
}

// ConsistencyItem is the reference material of an item
type ConsistencyItem struct {
	Template       string              `json:"template"`
	VisualExamples []VisualExampleItem `json:"visual_examples"`
	Links          []LinkItem          `json:"links"`
	OtherText      string              `json:"other_text,omitempty"`
}

// ResultsCaptureItem describes the form a reviewer fills in
type ResultsCaptureItem struct {
	Template         string          `json:"template"`
	HasScore         bool            `json:"has_score"`
	HasScoreImage    bool            `json:"has_score_image"`
	HasScoreReason   bool            `json:"has_score_reason"`
	HasReferenceLink bool            `json:"has_reference_link"`
	HasReferenceDate bool            `json:"has_reference_date"`
	Scores           []ScoreResponse `json:"scores"`
}

// EvaluationItemResponse is the evaluate_feed page of one item
type EvaluationItemResponse struct {
	Review         ReviewResponse     `json:"review"`
	CategoryID     uuid.UUID          `json:"category_id"`
	CategoryName   string             `json:"category_name"`
	Result         ResultResponse     `json:"result"`
	ReviewWidget   ReviewWidgetItem   `json:"review_widget"`
	Consistency    ConsistencyItem    `json:"consistency_widget"`
	ResultsCapture ResultsCaptureItem `json:"results_capture_widget"`
	Position       PositionResponse   `json:"position"`
	Next           *PositionResponse  `json:"next"`
	Previous       *PositionResponse  `json:"previous"`
}

// RecordResultResponse is the recorded result and the item to go to next
type RecordResultResponse struct {
	Result ResultResponse    `json:"result"`
	Next   *PositionResponse `json:"next"`
}

// CategoryResults groups the results of one category
type CategoryResults struct {
	CategoryID   uuid.UUID        `json:"category_id"`
	CategoryName string           `json:"category_name"`
	Results      []ResultResponse `json:"results"`
}

// ReviewResultsResponse is the review_evaluation_results page
type ReviewResultsResponse struct {
	Review     ReviewResponse    `json:"review"`
	Total      int               `json:"total"`
	Recorded   int               `json:"recorded"`
	Categories []CategoryResults `json:"categories"`
}

// ResultDetailResponse is a single result with its category
type ResultDetailResponse struct {
	Review       ReviewResponse `json:"review"`
	CategoryName string         `json:"category_name"`
	Result       ResultResponse `json:"result"`
}

package evaluation

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/gtfsreview/backend/internal/domain/shared"
)

// Result is the grade of one sampled row for one category
type Result struct {
	shared.BaseEntity
	ReviewID         uuid.UUID
	ReviewCategoryID uuid.UUID
	Number           int
	ReviewedData     string
	RowData          map[string]string
	ScoreID          *uuid.UUID
	ScoreReason      string
	RecordedAt       *time.Time
	Images           []ResultImage
	References       []ResultReference
}

// ResultImage is evidence uploaded while recording a result
type ResultImage struct {
	shared.BaseEntity
	ImageKey string
}

// ResultReference cites an external source supporting a result
type ResultReference struct {
	shared.BaseEntity
	Name          string
	URL           string
	PublishedDate *time.Time
}

// ResultInput is what a reviewer submits for a result. Fields not enabled
// on the results capture widget are ignored.
type ResultInput struct {
	ScoreID       *uuid.UUID
	ScoreReason   string
	ImageKey      string
	ReferenceName string
	ReferenceURL  string
	PublishedDate *time.Time
}

// NewResult creates an unrecorded result for a sampled row
func NewResult(reviewID, categoryID uuid.UUID, number int, reviewedData string, row map[string]string) (*Result, error) {
	if number < 1 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Result number must start at 1")
	}
	return &Result{
		BaseEntity:       shared.NewBaseEntity(),
		ReviewID:         reviewID,
		ReviewCategoryID: categoryID,
		Number:           number,
		ReviewedData:     reviewedData,
		RowData:          row,
	}, nil
}

// IsRecorded reports whether a reviewer has submitted this result
func (r *Result) IsRecorded() bool {
	return r.RecordedAt != nil
}

// Record applies a reviewer's submission according to the capture flags
func (r *Result) Record(capture category.ResultsCaptureWidget, in ResultInput) error {
	if capture.HasScore {
		if in.ScoreID == nil {
			return shared.NewDomainError("INVALID_INPUT", "A score is required")
		}
		if _, ok := capture.FindScore(*in.ScoreID); !ok {
			return shared.NewDomainError("INVALID_INPUT", "Score does not belong to this category")
		}
	}

	var reference *ResultReference
	if capture.HasReferenceLink && (in.ReferenceURL != "" || in.ReferenceName != "") {
		ref, err := newResultReference(in.ReferenceName, in.ReferenceURL)
		if err != nil {
			return err
		}
		if capture.HasReferenceDate {
			ref.PublishedDate = in.PublishedDate
		}
		reference = ref
	}

	if capture.HasScore {
		id := *in.ScoreID
		r.ScoreID = &id
	}
	if capture.HasScoreReason {
		r.ScoreReason = strings.TrimSpace(in.ScoreReason)
	}
	if capture.HasScoreImage && in.ImageKey != "" {
		r.Images = append(r.Images, ResultImage{BaseEntity: shared.NewBaseEntity(), ImageKey: in.ImageKey})
	}
	if reference != nil {
		r.References = append(r.References, *reference)
	}

	now := time.Now()
	r.RecordedAt = &now
	r.UpdatedAt = now
	return nil
}

func newResultReference(name, rawURL string) (*ResultReference, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Reference link must be an absolute http or https URL")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = parsed.Host
	}
	return &ResultReference{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		URL:        parsed.String(),
	}, nil
}

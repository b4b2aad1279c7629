package category

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var maxScoreValue = decimal.RequireFromString("99.99")

// ResultsCaptureWidget decides which inputs a reviewer fills in when
// recording a result.
type ResultsCaptureWidget struct {
	shared.BaseEntity
	HasScore         bool
	HasScoreImage    bool
	HasScoreReason   bool
	HasReferenceLink bool
	HasReferenceDate bool
	Scores           []Score
}

// Score is one selectable grade of a results capture widget
type Score struct {
	shared.BaseEntity
	Value    decimal.Decimal
	HelpText string
}

// CaptureFlags groups the toggles of a results capture widget
type CaptureFlags struct {
	HasScore         bool
	HasScoreImage    bool
	HasScoreReason   bool
	HasReferenceLink bool
	HasReferenceDate bool
}

func newResultsCaptureWidget() ResultsCaptureWidget {
	return ResultsCaptureWidget{BaseEntity: shared.NewBaseEntity()}
}

// Configure sets the capture flags
func (w *ResultsCaptureWidget) Configure(flags CaptureFlags) {
	w.HasScore = flags.HasScore
	w.HasScoreImage = flags.HasScoreImage
	w.HasScoreReason = flags.HasScoreReason
	w.HasReferenceLink = flags.HasReferenceLink
	w.HasReferenceDate = flags.HasReferenceDate
	w.UpdatedAt = time.Now()
}

// Flags returns the current capture flags
func (w *ResultsCaptureWidget) Flags() CaptureFlags {
	return CaptureFlags{
		HasScore:         w.HasScore,
		HasScoreImage:    w.HasScoreImage,
		HasScoreReason:   w.HasScoreReason,
		HasReferenceLink: w.HasReferenceLink,
		HasReferenceDate: w.HasReferenceDate,
	}
}

// AddScore adds a selectable score. Values fit decimal(4,2) and are unique
// within the widget.
func (w *ResultsCaptureWidget) AddScore(value decimal.Decimal, helpText string) (*Score, error) {
	if !w.HasScore {
		return nil, shared.NewDomainError("INVALID_STATE", "Scores are not enabled for this widget")
	}
	if err := validateScoreValue(value); err != nil {
		return nil, err
	}
	for _, existing := range w.Scores {
		if existing.Value.Equal(value) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A score with this value already exists")
		}
	}
	score := Score{
		BaseEntity: shared.NewBaseEntity(),
		Value:      value,
		HelpText:   strings.TrimSpace(helpText),
	}
	w.Scores = append(w.Scores, score)
	w.UpdatedAt = time.Now()
	return &score, nil
}

// RemoveScore removes a score by ID
func (w *ResultsCaptureWidget) RemoveScore(id uuid.UUID) error {
	for i, score := range w.Scores {
		if score.ID == id {
			w.Scores = append(w.Scores[:i], w.Scores[i+1:]...)
			w.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Score not found")
}

// FindScore returns the score with the given ID
func (w *ResultsCaptureWidget) FindScore(id uuid.UUID) (*Score, bool) {
	for i := range w.Scores {
		if w.Scores[i].ID == id {
			return &w.Scores[i], true
		}
	}
	return nil, false
}

func validateScoreValue(value decimal.Decimal) error {
	if value.Abs().GreaterThan(maxScoreValue) {
		return shared.NewDomainError("INVALID_INPUT", "Score must be between -99.99 and 99.99")
	}
	if !value.Equal(value.Round(2)) {
		return shared.NewDomainError("INVALID_INPUT", "Score cannot have more than 2 decimal places")
	}
	return nil
}

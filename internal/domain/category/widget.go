package category

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/shared"
)

// WidgetType identifies one of the three widgets of a category
type WidgetType string

const (
	WidgetTypeReview         WidgetType = "review"
	WidgetTypeConsistency    WidgetType = "consistency"
	WidgetTypeResultsCapture WidgetType = "results_capture"
)

// widgetOrder is the order in which widgets are configured and displayed
var widgetOrder = []WidgetType{WidgetTypeReview, WidgetTypeConsistency, WidgetTypeResultsCapture}

// ParseWidgetType converts a string to a WidgetType
func ParseWidgetType(s string) (WidgetType, error) {
	for _, t := range widgetOrder {
		if string(t) == s {
			return t, nil
		}
	}
	return "", shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown widget type: %s", s))
}

// Next returns the widget type that follows t
func (t WidgetType) Next() (WidgetType, bool) {
	for i, w := range widgetOrder {
		if w == t && i+1 < len(widgetOrder) {
			return widgetOrder[i+1], true
		}
	}
	return "", false
}

// Previous returns the widget type that precedes t
func (t WidgetType) Previous() (WidgetType, bool) {
	for i, w := range widgetOrder {
		if w == t && i > 0 {
			return widgetOrder[i-1], true
		}
	}
	return "", false
}

// Configuration section names
const (
	SectionRelatedFieldSameTable  = "related_field_same_table"
	SectionRelatedFieldOtherTable = "related_field_other_table"
	SectionVisualExample          = "visual_example"
	SectionLink                   = "link"
	SectionOtherText              = "other_text"
	SectionScore                  = "score"
)

// ConfigSection is one editable part of a widget's configuration page.
// Only the fields relevant to Name are populated.
type ConfigSection struct {
	Name                   string
	Table                  string
	RelatedFields          []GtfsField
	RelatedFieldOtherTable string
	VisualExamples         []VisualExample
	Links                  []Link
	OtherText              string
	Scores                 []Score
}

// WidgetRef points at a widget of a category
type WidgetRef struct {
	Type WidgetType
	ID   uuid.UUID
}

// Widget is the presentation strategy of one widget of a category
type Widget interface {
	Type() WidgetType
	ID() uuid.UUID
	Category() *ReviewCategory
	// Template names the variant used to display the widget to reviewers
	Template() string
	// ConfigureTemplate names the administration page of the widget
	ConfigureTemplate() string
	Next() *WidgetRef
	Previous() *WidgetRef
	// Configuration returns the enabled sections, or nil if there is
	// nothing to configure
	Configuration() []ConfigSection
}

type baseWidget struct {
	category   *ReviewCategory
	widgetType WidgetType
}

func (b baseWidget) Type() WidgetType          { return b.widgetType }
func (b baseWidget) ID() uuid.UUID             { return b.category.WidgetID(b.widgetType) }
func (b baseWidget) Category() *ReviewCategory { return b.category }

func (b baseWidget) ConfigureTemplate() string {
	return fmt.Sprintf("default_%s_configure", b.widgetType)
}

func (b baseWidget) Next() *WidgetRef {
	t, ok := b.widgetType.Next()
	if !ok {
		return nil
	}
	return &WidgetRef{Type: t, ID: b.category.WidgetID(t)}
}

func (b baseWidget) Previous() *WidgetRef {
	t, ok := b.widgetType.Previous()
	if !ok {
		return nil
	}
	return &WidgetRef{Type: t, ID: b.category.WidgetID(t)}
}

// SingleFieldReviewWidget shows the reviewed value on its own
type SingleFieldReviewWidget struct{ baseWidget }

// Template implements Widget
func (SingleFieldReviewWidget) Template() string { return "single_field_review" }

// Configuration implements Widget
func (w SingleFieldReviewWidget) Configuration() []ConfigSection {
	return reviewConfiguration(w.category)
}

// DefaultReviewWidget shows the reviewed value with its related fields
type DefaultReviewWidget struct{ baseWidget }

// Template implements Widget
func (DefaultReviewWidget) Template() string { return "default_review" }

// Configuration implements Widget
func (w DefaultReviewWidget) Configuration() []ConfigSection {
	return reviewConfiguration(w.category)
}

func reviewConfiguration(c *ReviewCategory) []ConfigSection {
	var sections []ConfigSection
	rw := c.ReviewWidget
	if rw.HasRelatedFieldSameTable {
		sections = append(sections, ConfigSection{
			Name:          SectionRelatedFieldSameTable,
			Table:         c.GtfsField.Table,
			RelatedFields: rw.RelatedFields,
		})
	}
	if rw.HasRelatedFieldOtherTable {
		sections = append(sections, ConfigSection{
			Name:                   SectionRelatedFieldOtherTable,
			RelatedFieldOtherTable: rw.RelatedFieldOtherTable,
		})
	}
	return sections
}

// DefaultConsistencyWidget shows visual examples, links and guidance text
type DefaultConsistencyWidget struct{ baseWidget }

// Template implements Widget
func (DefaultConsistencyWidget) Template() string { return "default_consistency" }

// Configuration implements Widget
func (w DefaultConsistencyWidget) Configuration() []ConfigSection {
	var sections []ConfigSection
	cw := w.category.ConsistencyWidget
	if cw.HasVisualExample {
		sections = append(sections, ConfigSection{Name: SectionVisualExample, VisualExamples: cw.VisualExamples})
	}
	if cw.HasLink {
		sections = append(sections, ConfigSection{Name: SectionLink, Links: cw.Links})
	}
	if cw.HasOtherText {
		sections = append(sections, ConfigSection{Name: SectionOtherText, OtherText: cw.OtherText})
	}
	return sections
}

// DefaultResultsCaptureWidget captures a score and supporting evidence
type DefaultResultsCaptureWidget struct{ baseWidget }

// Template implements Widget
func (DefaultResultsCaptureWidget) Template() string { return "default_results_capture" }

// Configuration implements Widget
func (w DefaultResultsCaptureWidget) Configuration() []ConfigSection {
	if !w.category.ResultsCaptureWidget.HasScore {
		return nil
	}
	return []ConfigSection{{Name: SectionScore, Scores: w.category.ResultsCaptureWidget.Scores}}
}

// NewWidget selects the widget variant for a category and widget type
func NewWidget(c *ReviewCategory, t WidgetType) (Widget, error) {
	if c == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Category is required")
	}
	base := baseWidget{category: c, widgetType: t}
	switch t {
	case WidgetTypeReview:
		if !c.ReviewWidget.HasRelatedFieldSameTable && !c.ReviewWidget.HasRelatedFieldOtherTable {
			return SingleFieldReviewWidget{base}, nil
		}
		return DefaultReviewWidget{base}, nil
	case WidgetTypeConsistency:
		return DefaultConsistencyWidget{base}, nil
	case WidgetTypeResultsCapture:
		return DefaultResultsCaptureWidget{base}, nil
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown widget type: %s", t))
	}
}

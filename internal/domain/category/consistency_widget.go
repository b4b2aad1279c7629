package category

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/shared"
)

// MaxOtherTextLength is the maximum number of characters of free text guidance
const MaxOtherTextLength = 500

// ConsistencyWidget holds the reference material a reviewer consults to
// judge whether a value is consistent.
type ConsistencyWidget struct {
	shared.BaseEntity
	HasVisualExample bool
	HasLink          bool
	HasOtherText     bool
	OtherText        string
	VisualExamples   []VisualExample
	Links            []Link
}

// VisualExample is an illustrative image stored in object storage
type VisualExample struct {
	shared.BaseEntity
	Name        string
	Description string
	ImageKey    string
}

// Link points to external reference material
type Link struct {
	shared.BaseEntity
	URL            string
	URLDisplayText string
}

func newConsistencyWidget() ConsistencyWidget {
	return ConsistencyWidget{BaseEntity: shared.NewBaseEntity()}
}

// Configure sets which kinds of reference material the widget shows
func (w *ConsistencyWidget) Configure(visualExample, link, otherText bool) {
	w.HasVisualExample = visualExample
	w.HasLink = link
	w.HasOtherText = otherText
	w.UpdatedAt = time.Now()
}

// SetOtherText updates the free text guidance
func (w *ConsistencyWidget) SetOtherText(text string) error {
	if !w.HasOtherText {
		return shared.NewDomainError("INVALID_STATE", "Other text is not enabled for this widget")
	}
	if utf8.RuneCountInString(text) > MaxOtherTextLength {
		return shared.NewDomainError("INVALID_INPUT", "Other text cannot exceed 500 characters")
	}
	w.OtherText = text
	w.UpdatedAt = time.Now()
	return nil
}

// AddVisualExample attaches an image that has already been uploaded
func (w *ConsistencyWidget) AddVisualExample(name, description, imageKey string) (*VisualExample, error) {
	if !w.HasVisualExample {
		return nil, shared.NewDomainError("INVALID_STATE", "Visual examples are not enabled for this widget")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Visual example name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Visual example name cannot exceed 200 characters")
	}
	if imageKey == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Visual example image is required")
	}
	example := VisualExample{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Description: description,
		ImageKey:    imageKey,
	}
	w.VisualExamples = append(w.VisualExamples, example)
	w.UpdatedAt = time.Now()
	return &example, nil
}

// RemoveVisualExample detaches a visual example and returns it so the
// caller can clean up the stored image
func (w *ConsistencyWidget) RemoveVisualExample(id uuid.UUID) (*VisualExample, error) {
	for i, example := range w.VisualExamples {
		if example.ID == id {
			w.VisualExamples = append(w.VisualExamples[:i], w.VisualExamples[i+1:]...)
			w.UpdatedAt = time.Now()
			return &example, nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Visual example not found")
}

// AddLink attaches an external reference
func (w *ConsistencyWidget) AddLink(rawURL, displayText string) (*Link, error) {
	if !w.HasLink {
		return nil, shared.NewDomainError("INVALID_STATE", "Links are not enabled for this widget")
	}
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Link must be an absolute http or https URL")
	}
	displayText = strings.TrimSpace(displayText)
	if displayText == "" {
		displayText = parsed.String()
	}
	link := Link{
		BaseEntity:     shared.NewBaseEntity(),
		URL:            parsed.String(),
		URLDisplayText: displayText,
	}
	w.Links = append(w.Links, link)
	w.UpdatedAt = time.Now()
	return &link, nil
}

// RemoveLink detaches a link
func (w *ConsistencyWidget) RemoveLink(id uuid.UUID) error {
	for i, link := range w.Links {
		if link.ID == id {
			w.Links = append(w.Links[:i], w.Links[i+1:]...)
			w.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Link not found")
}

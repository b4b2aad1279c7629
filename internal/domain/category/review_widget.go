package category

import (
	"time"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/shared"
)

// ReviewWidget controls how the reviewed value is presented and which
// neighbouring values are shown alongside it.
type ReviewWidget struct {
	shared.BaseEntity
	HasRelatedFieldSameTable  bool
	HasRelatedFieldOtherTable bool
	RelatedFieldOtherTable    string
	RelatedFields             []GtfsField
}

func newReviewWidget() ReviewWidget {
	return ReviewWidget{BaseEntity: shared.NewBaseEntity()}
}

// Configure sets the presentation flags of the widget
func (w *ReviewWidget) Configure(sameTable, otherTable bool) {
	w.HasRelatedFieldSameTable = sameTable
	w.HasRelatedFieldOtherTable = otherTable
	w.UpdatedAt = time.Now()
}

// AddRelatedField attaches another column of the reviewed table. The review
// field itself and duplicates are rejected.
func (w *ReviewWidget) AddRelatedField(reviewField GtfsField, related GtfsField) error {
	if !w.HasRelatedFieldSameTable {
		return shared.NewDomainError("INVALID_STATE", "Related fields are not enabled for this widget")
	}
	if related.Table != reviewField.Table {
		return shared.NewDomainError("INVALID_INPUT", "Related field must be in the same table.")
	}
	if related.Name == reviewField.Name {
		return shared.NewDomainError("INVALID_INPUT", "Related field cannot be the review field itself")
	}
	for _, existing := range w.RelatedFields {
		if existing.ID == related.ID || existing.Name == related.Name {
			return shared.NewDomainError("INVALID_INPUT", "Related field is already attached to this widget")
		}
	}
	w.RelatedFields = append(w.RelatedFields, related)
	w.UpdatedAt = time.Now()
	return nil
}

// RemoveRelatedField detaches a related field by its GTFS field ID
func (w *ReviewWidget) RemoveRelatedField(fieldID uuid.UUID) error {
	for i, existing := range w.RelatedFields {
		if existing.ID == fieldID {
			w.RelatedFields = append(w.RelatedFields[:i], w.RelatedFields[i+1:]...)
			w.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Related field not found")
}

// SetRelatedFieldOtherTable records the free-text reference to a field of
// another table
func (w *ReviewWidget) SetRelatedFieldOtherTable(ref string) error {
	if !w.HasRelatedFieldOtherTable {
		return shared.NewDomainError("INVALID_STATE", "Related fields from other tables are not enabled for this widget")
	}
	if len(ref) > 200 {
		return shared.NewDomainError("INVALID_INPUT", "Related field reference cannot exceed 200 characters")
	}
	w.RelatedFieldOtherTable = ref
	w.UpdatedAt = time.Now()
	return nil
}

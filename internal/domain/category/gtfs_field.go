package category

import (
	"strings"

	"github.com/gtfsreview/backend/internal/domain/shared"
)

// GtfsField identifies a single column of a GTFS table together with its
// GTFS data type (e.g. "Text", "Color", "Latitude").
type GtfsField struct {
	shared.BaseEntity
	Name  string
	Table string
	Type  string
}

// NewGtfsField creates a new GTFS field reference
func NewGtfsField(name, table, fieldType string) (*GtfsField, error) {
	name = strings.TrimSpace(name)
	table = strings.TrimSpace(table)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Field name cannot be empty")
	}
	if table == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Table name cannot be empty")
	}
	return &GtfsField{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Table:      table,
		Type:       strings.TrimSpace(fieldType),
	}, nil
}

// Label returns the human readable label of the field
func (f GtfsField) Label() string {
	return shared.FieldLabel(f.Name)
}

// String renders the field as table.field
func (f GtfsField) String() string {
	return f.Table + "." + f.Name
}

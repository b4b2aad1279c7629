// Package gtfsschema exposes the GTFS table and field reference used to
// build review categories. The reference is a Frictionless data package.
package gtfsschema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gtfsreview/backend/internal/domain/shared"
)

//go:embed gtfs_schema.json
var defaultPackage []byte

// Errors returned by lookups
var (
	ErrTableNotFound = shared.NewDomainError("TABLE_NOT_FOUND", "Table name not found in GTFS reference.")
	ErrFieldNotFound = shared.NewDomainError("FIELD_NOT_FOUND", "Field not found in GTFS reference.")
)

// Choice is a value/label pair for drop-downs
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type dataPackage struct {
	Resources []resource `json:"resources"`
}

type resource struct {
	Name   string `json:"name"`
	Schema struct {
		Fields []field `json:"fields"`
	} `json:"schema"`
}

type field struct {
	Name     string `json:"name"`
	GtfsType string `json:"gtfs_type"`
}

// Schema is a parsed GTFS reference. It is read-only after construction.
type Schema struct {
	tables []string
	fields map[string][]field
}

// Default returns the embedded GTFS reference
func Default() (*Schema, error) {
	return Parse(defaultPackage)
}

// Load reads a reference from path, falling back to the embedded one when
// path is empty
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read GTFS reference %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a Frictionless data package
func Parse(data []byte) (*Schema, error) {
	var pkg dataPackage
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse GTFS reference: %w", err)
	}
	if len(pkg.Resources) == 0 {
		return nil, fmt.Errorf("GTFS reference has no resources")
	}
	s := &Schema{fields: make(map[string][]field, len(pkg.Resources))}
	for _, r := range pkg.Resources {
		if r.Name == "" {
			continue
		}
		if _, dup := s.fields[r.Name]; !dup {
			s.tables = append(s.tables, r.Name)
		}
		s.fields[r.Name] = r.Schema.Fields
	}
	return s, nil
}

// Tables returns the table names in reference order
func (s *Schema) Tables() []string {
	return append([]string(nil), s.tables...)
}

// TableChoices returns the tables for a drop-down, led by an empty choice
func (s *Schema) TableChoices() []Choice {
	choices := make([]Choice, 0, len(s.tables)+1)
	choices = append(choices, Choice{})
	for _, t := range s.tables {
		choices = append(choices, Choice{Value: t, Label: t})
	}
	return choices
}

// Fields returns the field names of a table
func (s *Schema) Fields(table string) ([]string, error) {
	fields, ok := s.fields[table]
	if !ok {
		return nil, ErrTableNotFound
	}
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names, nil
}

// FieldChoices returns the fields of a table for a drop-down, led by an
// empty choice
func (s *Schema) FieldChoices(table string) ([]Choice, error) {
	names, err := s.Fields(table)
	if err != nil {
		return nil, err
	}
	choices := make([]Choice, 0, len(names)+1)
	choices = append(choices, Choice{})
	for _, n := range names {
		choices = append(choices, Choice{Value: n, Label: shared.FieldLabel(n)})
	}
	return choices, nil
}

// FieldType returns the GTFS data type of table.field
func (s *Schema) FieldType(fieldName, table string) (string, error) {
	fields, ok := s.fields[table]
	if !ok {
		return "", ErrFieldNotFound
	}
	for _, f := range fields {
		if f.Name == fieldName {
			return f.GtfsType, nil
		}
	}
	return "", ErrFieldNotFound
}

// CascadingDropDown maps every table to its field names
func (s *Schema) CascadingDropDown() map[string][]string {
	out := make(map[string][]string, len(s.tables))
	for _, t := range s.tables {
		out[t], _ = s.Fields(t)
	}
	return out
}

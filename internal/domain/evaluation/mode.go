package evaluation

import (
	"fmt"
	"slices"
)

// Mode maps a GTFS route_type to a display name
type Mode struct {
	ID   int
	Name string
}

// ModeTable resolves route types to names
type ModeTable struct {
	names map[int]string
}

// NewModeTable builds a lookup from the stored modes
func NewModeTable(modes []Mode) *ModeTable {
	names := make(map[int]string, len(modes))
	for _, m := range modes {
		names[m.ID] = m.Name
	}
	return &ModeTable{names: names}
}

// Name returns the display name of a route type
func (t *ModeTable) Name(id int) string {
	if name, ok := t.names[id]; ok {
		return name
	}
	return fmt.Sprintf("%d - Mode id not found", id)
}

// DropDown returns the given route types with their names, sorted by ID
func (t *ModeTable) DropDown(ids []int) []Mode {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	modes := make([]Mode, 0, len(sorted))
	for _, id := range sorted {
		modes = append(modes, Mode{ID: id, Name: t.Name(id)})
	}
	return modes
}

package shared

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// FieldLabel converts a snake_case GTFS column name into a display label,
// e.g. "route_short_name" becomes "Route Short Name".
func FieldLabel(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

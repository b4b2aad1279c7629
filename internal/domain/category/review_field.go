package category

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Review field kinds
const (
	FieldKindText    = "text"
	FieldKindColor   = "color"
	FieldKindLatLong = "lat_long"
)

// GTFS data types with a dedicated rendering
const (
	GtfsTypeColor     = "Color"
	GtfsTypeLatitude  = "Latitude"
	GtfsTypeLongitude = "Longitude"
)

var hexColorPattern = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// RenderedField is a value prepared for display to a reviewer
type RenderedField struct {
	Kind      string   `json:"kind"`
	Field     string   `json:"field"`
	Label     string   `json:"label"`
	Raw       string   `json:"raw"`
	Display   string   `json:"display"`
	Valid     bool     `json:"valid"`
	Empty     bool     `json:"empty"`
	TextColor string   `json:"text_color,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	MapURL    string   `json:"map_url,omitempty"`
}

// ReviewField renders a raw GTFS value. row holds the other values of the
// same record, used e.g. to pair a latitude with its longitude.
type ReviewField interface {
	Kind() string
	Render(value string, row map[string]string) RenderedField
}

// NewReviewField picks the renderer for a GTFS field type
func NewReviewField(field GtfsField) ReviewField {
	switch field.Type {
	case GtfsTypeColor:
		return ColorReviewField{field: field}
	case GtfsTypeLatitude, GtfsTypeLongitude:
		return LatLongReviewField{field: field}
	default:
		return TextReviewField{field: field}
	}
}

func newRendered(kind string, field GtfsField, value string) RenderedField {
	trimmed := strings.TrimSpace(value)
	return RenderedField{
		Kind:    kind,
		Field:   field.Name,
		Label:   field.Label(),
		Raw:     value,
		Display: trimmed,
		Valid:   true,
		Empty:   trimmed == "",
	}
}

// TextReviewField shows the value as is
type TextReviewField struct {
	field GtfsField
}

// Kind implements ReviewField
func (TextReviewField) Kind() string { return FieldKindText }

// Render implements ReviewField
func (f TextReviewField) Render(value string, _ map[string]string) RenderedField {
	return newRendered(FieldKindText, f.field, value)
}

// ColorReviewField shows a hex color as a swatch with a readable text color
type ColorReviewField struct {
	field GtfsField
}

// Kind implements ReviewField
func (ColorReviewField) Kind() string { return FieldKindColor }

// Render implements ReviewField
func (f ColorReviewField) Render(value string, _ map[string]string) RenderedField {
	r := newRendered(FieldKindColor, f.field, value)
	if r.Empty {
		return r
	}
	if !hexColorPattern.MatchString(r.Display) {
		r.Valid = false
		return r
	}
	hex := strings.ToUpper(strings.TrimPrefix(r.Display, "#"))
	r.Display = "#" + hex
	r.TextColor = contrastTextColor(hex)
	return r
}

// contrastTextColor picks black or white text using perceived luminance
func contrastTextColor(hex string) string {
	red, _ := strconv.ParseUint(hex[0:2], 16, 8)
	green, _ := strconv.ParseUint(hex[2:4], 16, 8)
	blue, _ := strconv.ParseUint(hex[4:6], 16, 8)
	luminance := 0.299*float64(red) + 0.587*float64(green) + 0.114*float64(blue)
	if luminance >= 128 {
		return "#000000"
	}
	return "#FFFFFF"
}

// LatLongReviewField shows a coordinate axis and, when the record carries
// the counterpart axis, a map link
type LatLongReviewField struct {
	field GtfsField
}

// Kind implements ReviewField
func (LatLongReviewField) Kind() string { return FieldKindLatLong }

// Render implements ReviewField
func (f LatLongReviewField) Render(value string, row map[string]string) RenderedField {
	r := newRendered(FieldKindLatLong, f.field, value)
	if r.Empty {
		return r
	}
	isLat := f.field.Type == GtfsTypeLatitude
	v, ok := parseAxis(r.Display, isLat)
	if !ok {
		r.Valid = false
		return r
	}
	r.Display = strconv.FormatFloat(v, 'f', 6, 64)

	var other *float64
	if counterpart := counterpartField(f.field.Name, isLat); counterpart != "" {
		if raw, found := row[counterpart]; found {
			if o, ok := parseAxis(strings.TrimSpace(raw), !isLat); ok {
				other = &o
			}
		}
	}
	if isLat {
		r.Latitude = &v
		r.Longitude = other
	} else {
		r.Longitude = &v
		r.Latitude = other
	}
	if r.Latitude != nil && r.Longitude != nil {
		r.MapURL = fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.6f&mlon=%.6f#map=17/%.6f/%.6f",
			*r.Latitude, *r.Longitude, *r.Latitude, *r.Longitude)
	}
	return r
}

func parseAxis(s string, isLat bool) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	limit := 180.0
	if isLat {
		limit = 90.0
	}
	if v < -limit || v > limit {
		return 0, false
	}
	return v, true
}

// counterpartField maps stop_lat to stop_lon, shape_pt_lon to shape_pt_lat...
func counterpartField(name string, isLat bool) string {
	if isLat && strings.HasSuffix(name, "_lat") {
		return strings.TrimSuffix(name, "_lat") + "_lon"
	}
	if !isLat && strings.HasSuffix(name, "_lon") {
		return strings.TrimSuffix(name, "_lon") + "_lat"
	}
	return ""
}

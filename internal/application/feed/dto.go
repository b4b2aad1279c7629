package feed

import (
	"maps"
	"slices"

	"github.com/gtfsreview/backend/internal/infrastructure/gtfsfeed"
)

// UploadResult is what the session keeps after a successful upload
type UploadResult struct {
	Dir        string           `json:"-"`
	FeedName   string           `json:"feed_name"`
	ArchiveKey string           `json:"-"`
	Summary    *SummaryResponse `json:"summary"`
}

// TableCount is the number of rows of one table
type TableCount struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// SummaryResponse describes a loaded feed
type SummaryResponse struct {
	Tables    []TableCount      `json:"tables"`
	Agencies  []gtfsfeed.Agency `json:"agencies"`
	Modes     []int             `json:"modes"`
	TotalRows int               `json:"total_rows"`
}

// ToSummaryResponse orders the table counts by table name
func ToSummaryResponse(s *gtfsfeed.Summary) *SummaryResponse {
	resp := &SummaryResponse{
		Tables:    make([]TableCount, 0, len(s.Tables)),
		Agencies:  s.Agencies,
		Modes:     s.Modes,
		TotalRows: s.TotalRows,
	}
	for _, table := range slices.Sorted(maps.Keys(s.Tables)) {
		resp.Tables = append(resp.Tables, TableCount{Table: table, Rows: s.Tables[table]})
	}
	return resp
}

// Choice is a value/label pair for drop-downs
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ModeChoice is a GTFS route type and its name
type ModeChoice struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ReviewOptionsResponse holds the choices of the new review form
type ReviewOptionsResponse struct {
	Agencies []Choice     `json:"agencies"`
	Modes    []ModeChoice `json:"modes"`
}

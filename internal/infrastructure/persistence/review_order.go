package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// reviewOrderColumns are the review columns a search may sort on
var reviewOrderColumns = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"agency":       true,
	"mode":         true,
	"feed_name":    true,
	"completed_at": true,
}

// reviewOrder maps a requested sort to an ORDER BY clause. Unknown columns
// fall back to created_at and anything other than asc sorts descending.
func reviewOrder(orderBy, orderDir string) clause.OrderByColumn {
	column := strings.TrimSpace(orderBy)
	if !reviewOrderColumns[column] {
		column = "created_at"
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   !strings.EqualFold(strings.TrimSpace(orderDir), "asc"),
	}
}

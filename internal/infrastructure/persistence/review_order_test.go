package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewOrder(t *testing.T) {
	tests := []struct {
		orderBy, orderDir string
		column            string
		desc              bool
	}{
		{"agency", "asc", "agency", false},
		{" completed_at ", " ASC ", "completed_at", false},
		{"", "", "created_at", true},
		{"row_data", "asc", "created_at", false},
		{"agency; DROP TABLE review", "desc", "created_at", true},
		{"mode", "ASC; --", "mode", true},
	}
	for _, tt := range tests {
		t.Run(tt.orderBy+"/"+tt.orderDir, func(t *testing.T) {
			got := reviewOrder(tt.orderBy, tt.orderDir)
			assert.Equal(t, tt.column, got.Column.Name)
			assert.Equal(t, tt.desc, got.Desc)
		})
	}
}

package category

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWidgetType(t *testing.T) {
	wt, err := ParseWidgetType("results_capture")
	require.NoError(t, err)
	assert.Equal(t, WidgetTypeResultsCapture, wt)

	_, err = ParseWidgetType("bogus")
	assert.Error(t, err)
}

func TestWidgetType_Chain(t *testing.T) {
	next, ok := WidgetTypeReview.Next()
	assert.True(t, ok)
	assert.Equal(t, WidgetTypeConsistency, next)

	next, ok = WidgetTypeConsistency.Next()
	assert.True(t, ok)
	assert.Equal(t, WidgetTypeResultsCapture, next)

	_, ok = WidgetTypeResultsCapture.Next()
	assert.False(t, ok)

	prev, ok := WidgetTypeResultsCapture.Previous()
	assert.True(t, ok)
	assert.Equal(t, WidgetTypeConsistency, prev)

	_, ok = WidgetTypeReview.Previous()
	assert.False(t, ok)
}

func TestNewWidget(t *testing.T) {
	c := newTestCategory(t)

	t.Run("single field review widget without related fields", func(t *testing.T) {
		w, err := NewWidget(c, WidgetTypeReview)
		require.NoError(t, err)
		assert.IsType(t, SingleFieldReviewWidget{}, w)
		assert.Equal(t, "single_field_review", w.Template())
		assert.Equal(t, "default_review_configure", w.ConfigureTemplate())
		assert.Equal(t, c.ReviewWidget.ID, w.ID())
		assert.Nil(t, w.Previous())
		require.NotNil(t, w.Next())
		assert.Equal(t, WidgetRef{Type: WidgetTypeConsistency, ID: c.ConsistencyWidget.ID}, *w.Next())
		assert.Nil(t, w.Configuration())
	})

	t.Run("default review widget with related fields", func(t *testing.T) {
		c.ReviewWidget.Configure(true, true)
		w, err := NewWidget(c, WidgetTypeReview)
		require.NoError(t, err)
		assert.IsType(t, DefaultReviewWidget{}, w)

		sections := w.Configuration()
		require.Len(t, sections, 2)
		assert.Equal(t, SectionRelatedFieldSameTable, sections[0].Name)
		assert.Equal(t, "routes", sections[0].Table)
		assert.Equal(t, SectionRelatedFieldOtherTable, sections[1].Name)
	})

	t.Run("consistency sections follow flags", func(t *testing.T) {
		w, err := NewWidget(c, WidgetTypeConsistency)
		require.NoError(t, err)
		assert.Equal(t, "default_consistency", w.Template())
		assert.Nil(t, w.Configuration())

		c.ConsistencyWidget.Configure(true, false, true)
		sections := w.Configuration()
		require.Len(t, sections, 2)
		assert.Equal(t, SectionVisualExample, sections[0].Name)
		assert.Equal(t, SectionOtherText, sections[1].Name)
		assert.Equal(t, WidgetTypeReview, w.Previous().Type)
		assert.Equal(t, WidgetTypeResultsCapture, w.Next().Type)
	})

	t.Run("results capture exposes scores", func(t *testing.T) {
		w, err := NewWidget(c, WidgetTypeResultsCapture)
		require.NoError(t, err)
		assert.Nil(t, w.Configuration())
		assert.Nil(t, w.Next())

		c.ResultsCaptureWidget.Configure(CaptureFlags{HasScore: true})
		_, err = c.ResultsCaptureWidget.AddScore(decimal.NewFromInt(1), "Poor")
		require.NoError(t, err)

		sections := w.Configuration()
		require.Len(t, sections, 1)
		assert.Equal(t, SectionScore, sections[0].Name)
		assert.Len(t, sections[0].Scores, 1)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewWidget(c, "mystery")
		assert.Error(t, err)
	})
}

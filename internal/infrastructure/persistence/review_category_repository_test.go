package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/gtfsreview/backend/internal/domain/evaluation"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveField(t *testing.T, repo *GormGtfsFieldRepository, name, table, fieldType string) category.GtfsField {
	t.Helper()
	field, err := category.NewGtfsField(name, table, fieldType)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), field))
	return *field
}

func newSavedCategory(t *testing.T, db *Database, name, table string) *category.ReviewCategory {
	t.Helper()
	field := saveField(t, NewGormGtfsFieldRepository(db.DB), name, table, "Text")
	c, err := category.NewReviewCategory(field)
	require.NoError(t, err)
	require.NoError(t, NewGormReviewCategoryRepository(db.DB).Save(context.Background(), c))
	return c
}

func TestGormGtfsFieldRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormGtfsFieldRepository(db.DB)
	ctx := context.Background()

	field := saveField(t, repo, "route_color", "routes", "Color")

	byID, err := repo.FindByID(ctx, field.ID)
	require.NoError(t, err)
	assert.Equal(t, "route_color", byID.Name)
	assert.Equal(t, "routes", byID.Table)
	assert.Equal(t, "Color", byID.Type)

	byName, err := repo.FindByTableAndName(ctx, "routes", "route_color")
	require.NoError(t, err)
	assert.Equal(t, field.ID, byName.ID)

	_, err = repo.FindByTableAndName(ctx, "stops", "route_color")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// (table, name) is unique
	dup, err := category.NewGtfsField("route_color", "routes", "Color")
	require.NoError(t, err)
	assert.Error(t, repo.Save(ctx, dup))
}

func TestGormDataSelectorRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormDataSelectorRepository(db.DB)
	ctx := context.Background()

	logSelector, err := category.NewDataSelector(category.DataSelectorLog, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, logSelector))

	five := 5
	numberSelector, err := category.NewDataSelector(category.DataSelectorNumber, &five)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, numberSelector))

	found, err := repo.FindByNameAndNumber(ctx, category.DataSelectorLog, nil)
	require.NoError(t, err)
	assert.Equal(t, logSelector.ID, found.ID)
	assert.Nil(t, found.NumberToReview)

	found, err = repo.FindByNameAndNumber(ctx, category.DataSelectorNumber, &five)
	require.NoError(t, err)
	assert.Equal(t, numberSelector.ID, found.ID)
	require.NotNil(t, found.NumberToReview)
	assert.Equal(t, 5, *found.NumberToReview)

	six := 6
	_, err = repo.FindByNameAndNumber(ctx, category.DataSelectorNumber, &six)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormReviewCategoryRepository_SaveAndLoadAggregate(t *testing.T) {
	db := newTestDatabase(t)
	fields := NewGormGtfsFieldRepository(db.DB)
	selectors := NewGormDataSelectorRepository(db.DB)
	repo := NewGormReviewCategoryRepository(db.DB)
	ctx := context.Background()

	reviewField := saveField(t, fields, "stop_name", "stops", "Text")
	related := saveField(t, fields, "stop_code", "stops", "Text")

	c, err := category.NewReviewCategory(reviewField)
	require.NoError(t, err)

	c.ReviewWidget.Configure(true, true)
	require.NoError(t, c.AddRelatedField(related))
	require.NoError(t, c.ReviewWidget.SetRelatedFieldOtherTable("routes.route_long_name"))

	c.ConsistencyWidget.Configure(true, true, true)
	_, err = c.ConsistencyWidget.AddVisualExample("Sign", "Stop sign photo", "visual-examples/w/sign.png")
	require.NoError(t, err)
	_, err = c.ConsistencyWidget.AddLink("https://example.com/guide", "Guide")
	require.NoError(t, err)
	require.NoError(t, c.ConsistencyWidget.SetOtherText("Compare with signage"))

	c.ResultsCaptureWidget.Configure(category.CaptureFlags{HasScore: true, HasScoreReason: true})
	_, err = c.ResultsCaptureWidget.AddScore(decimal.RequireFromString("1.5"), "Good")
	require.NoError(t, err)
	_, err = c.ResultsCaptureWidget.AddScore(decimal.RequireFromString("-2"), "Bad")
	require.NoError(t, err)

	three := 3
	selector, err := category.NewDataSelector(category.DataSelectorNumber, &three)
	require.NoError(t, err)
	require.NoError(t, selectors.Save(ctx, selector))
	c.SetDataSelector(selector)

	require.NoError(t, repo.Save(ctx, c))

	loaded, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)

	assert.Equal(t, "stop_name", loaded.GtfsField.Name)
	assert.Equal(t, c.Version, loaded.Version)
	assert.Empty(t, loaded.GetDomainEvents())

	assert.Equal(t, c.ReviewWidget.ID, loaded.ReviewWidget.ID)
	assert.True(t, loaded.ReviewWidget.HasRelatedFieldSameTable)
	require.Len(t, loaded.ReviewWidget.RelatedFields, 1)
	assert.Equal(t, related.ID, loaded.ReviewWidget.RelatedFields[0].ID)
	assert.Equal(t, "routes.route_long_name", loaded.ReviewWidget.RelatedFieldOtherTable)

	require.Len(t, loaded.ConsistencyWidget.VisualExamples, 1)
	assert.Equal(t, "visual-examples/w/sign.png", loaded.ConsistencyWidget.VisualExamples[0].ImageKey)
	require.Len(t, loaded.ConsistencyWidget.Links, 1)
	assert.Equal(t, "Guide", loaded.ConsistencyWidget.Links[0].URLDisplayText)
	assert.Equal(t, "Compare with signage", loaded.ConsistencyWidget.OtherText)

	require.Len(t, loaded.ResultsCaptureWidget.Scores, 2)
	assert.True(t, loaded.ResultsCaptureWidget.Scores[0].Value.Equal(decimal.NewFromInt(-2)))
	assert.True(t, loaded.ResultsCaptureWidget.Scores[1].Value.Equal(decimal.RequireFromString("1.5")))

	require.NotNil(t, loaded.DataSelector)
	assert.Equal(t, selector.ID, loaded.DataSelector.ID)
	assert.Equal(t, 3, *loaded.DataSelector.NumberToReview)
}

func TestGormReviewCategoryRepository_SaveReplacesChildren(t *testing.T) {
	db := newTestDatabase(t)
	fields := NewGormGtfsFieldRepository(db.DB)
	repo := NewGormReviewCategoryRepository(db.DB)
	ctx := context.Background()

	reviewField := saveField(t, fields, "stop_name", "stops", "Text")
	related := saveField(t, fields, "stop_desc", "stops", "Text")

	c, err := category.NewReviewCategory(reviewField)
	require.NoError(t, err)
	c.ReviewWidget.Configure(true, false)
	require.NoError(t, c.AddRelatedField(related))
	c.ConsistencyWidget.Configure(false, true, false)
	first, err := c.ConsistencyWidget.AddLink("https://example.com/a", "A")
	require.NoError(t, err)
	_, err = c.ConsistencyWidget.AddLink("https://example.com/b", "B")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	require.NoError(t, c.ReviewWidget.RemoveRelatedField(related.ID))
	require.NoError(t, c.ConsistencyWidget.RemoveLink(first.ID))
	require.NoError(t, repo.Save(ctx, c))

	loaded, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.ReviewWidget.RelatedFields)
	require.Len(t, loaded.ConsistencyWidget.Links, 1)
	assert.Equal(t, "B", loaded.ConsistencyWidget.Links[0].URLDisplayText)
}

func TestGormReviewCategoryRepository_FindByWidgetID(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormReviewCategoryRepository(db.DB)
	ctx := context.Background()

	c := newSavedCategory(t, db, "route_short_name", "routes")
	newSavedCategory(t, db, "stop_name", "stops")

	for _, wt := range []category.WidgetType{
		category.WidgetTypeReview,
		category.WidgetTypeConsistency,
		category.WidgetTypeResultsCapture,
	} {
		found, err := repo.FindByWidgetID(ctx, wt, c.WidgetID(wt))
		require.NoError(t, err, wt)
		assert.Equal(t, c.ID, found.ID, wt)
	}

	_, err := repo.FindByWidgetID(ctx, category.WidgetTypeReview, c.WidgetID(category.WidgetTypeConsistency))
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByWidgetID(ctx, category.WidgetType("bogus"), uuid.New())
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestGormReviewCategoryRepository_FindAllInCreationOrder(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormReviewCategoryRepository(db.DB)

	first := newSavedCategory(t, db, "agency_name", "agency")
	second := newSavedCategory(t, db, "route_color", "routes")
	third := newSavedCategory(t, db, "stop_lat", "stops")

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID, third.ID},
		[]uuid.UUID{all[0].ID, all[1].ID, all[2].ID})
}

func TestGormReviewCategoryRepository_Delete(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormReviewCategoryRepository(db.DB)
	ctx := context.Background()

	t.Run("removes category and widgets", func(t *testing.T) {
		c := newSavedCategory(t, db, "trip_headsign", "trips")
		require.NoError(t, repo.Delete(ctx, c.ID))

		_, err := repo.FindByID(ctx, c.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindByWidgetID(ctx, category.WidgetTypeReview, c.ReviewWidget.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown category", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
	})

	t.Run("categories with results are kept", func(t *testing.T) {
		c := newSavedCategory(t, db, "route_long_name", "routes")
		review, err := evaluation.NewReview("", 3, "feed.zip", "")
		require.NoError(t, err)
		result, err := evaluation.NewResult(review.ID, c.ID, 1, "Main St", nil)
		require.NoError(t, err)
		require.NoError(t, NewGormReviewRepository(db.DB).SaveWithResults(ctx, review, []*evaluation.Result{result}))

		err = repo.Delete(ctx, c.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		_, err = repo.FindByID(ctx, c.ID)
		assert.NoError(t, err)
	})
}

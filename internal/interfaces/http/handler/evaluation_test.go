package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	categoryapp "github.com/gtfsreview/backend/internal/application/category"
	evaluationapp "github.com/gtfsreview/backend/internal/application/evaluation"
	feedapp "github.com/gtfsreview/backend/internal/application/feed"
	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/gtfsreview/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reviewFixture is a route color category sampling one route, scored with
// a single score, and the uploaded sample feed
type reviewFixture struct {
	srv      *testServer
	cl       *client
	category categoryapp.CategoryResponse
	scoreID  uuid.UUID
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	srv := newTestServer(t)
	cl := srv.client(t)
	created := createCategory(t, cl, "routes", "route_color")

	one := 1
	w := cl.send(http.MethodPut, "/admin/categories/"+created.ID.String()+"/data-selector",
		categoryapp.ChooseDataSelectorRequest{Name: string(category.DataSelectorNumber), NumberToReview: &one})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	path := widgetPath(category.WidgetTypeResultsCapture, widgetID(t, created, category.WidgetTypeResultsCapture))
	w = cl.send(http.MethodPut, path, categoryapp.ConfigureWidgetRequest{HasScore: true, HasScoreReason: true, HasReferenceLink: true, HasReferenceDate: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = cl.send(http.MethodPost, path+"/scores", categoryapp.AddScoreRequest{Score: decimal.NewFromInt(1), HelpText: "Matches"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var widget categoryapp.WidgetResponse
	decode(t, w, &widget)
	scores := section(widget, category.SectionScore)
	require.NotNil(t, scores)
	require.Len(t, scores.Scores, 1)

	uploadSample(t, cl)
	return &reviewFixture{srv: srv, cl: cl, category: created, scoreID: scores.Scores[0].ID}
}

func (f *reviewFixture) start(t *testing.T) evaluationapp.StartReviewResponse {
	t.Helper()
	mode := 3
	w := f.cl.send(http.MethodPost, "/evaluations", evaluationapp.StartReviewRequest{Agency: "DTA", Mode: &mode})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var started evaluationapp.StartReviewResponse
	decode(t, w, &started)
	return started
}

func itemPath(reviewID, categoryID uuid.UUID, number int) string {
	return fmt.Sprintf("/evaluations/%s/categories/%s/items/%d", reviewID, categoryID, number)
}

func TestEvaluationHandler_Workflow(t *testing.T) {
	f := newReviewFixture(t)
	cl := f.cl

	var options feedapp.ReviewOptionsResponse
	w := cl.get("/evaluations/new")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &options)
	assert.Contains(t, options.Agencies, feedapp.Choice{Value: "DTA", Label: "Demo Transit"})
	assert.NotEmpty(t, options.Modes)

	started := f.start(t)
	reviewID := started.Review.ID
	assert.Equal(t, "DTA", started.Review.Agency)
	assert.Equal(t, "sample.zip", started.Review.FeedName)
	assert.Equal(t, 1, started.Results)
	require.NotNil(t, started.First)
	assert.Equal(t, f.category.ID, started.First.CategoryID)
	assert.Equal(t, 1, started.First.Number)

	var progress evaluationapp.ReviewProgressResponse
	decode(t, cl.get("/evaluations/"+reviewID.String()), &progress)
	assert.Equal(t, 1, progress.Total)
	assert.Equal(t, 0, progress.Recorded)

	var item evaluationapp.EvaluationItemResponse
	w = cl.get(itemPath(reviewID, f.category.ID, 1))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &item)
	assert.Contains(t, []string{"FF0000", "00FF00"}, item.Result.ReviewedData)
	assert.Equal(t, category.FieldKindColor, item.Result.Field.Kind)
	assert.True(t, item.ResultsCapture.HasScore)
	require.Len(t, item.ResultsCapture.Scores, 1)
	assert.Nil(t, item.Next)
	assert.Nil(t, item.Previous)

	// completing with a pending result is refused
	w = cl.send(http.MethodPost, "/reviews/"+reviewID.String()+"/complete", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var recorded evaluationapp.RecordResultResponse
	w = cl.postForm("/evaluations/"+reviewID.String()+"/results/"+item.Result.ID.String(), map[string]string{
		ResultScoreField:         f.scoreID.String(),
		ResultReasonField:        " agency palette ",
		ResultReferenceNameField: "Style guide",
		ResultReferenceURLField:  "https://dta.example.com/brand",
		ResultPublishedDateField: "2024-03-01",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &recorded)
	assert.True(t, recorded.Result.Recorded)
	require.NotNil(t, recorded.Result.Score)
	assert.Equal(t, f.scoreID, recorded.Result.Score.ID)
	assert.Equal(t, "agency palette", recorded.Result.ScoreReason)
	require.Len(t, recorded.Result.References, 1)
	require.NotNil(t, recorded.Result.References[0].PublishedDate)
	assert.Equal(t, "2024-03-01", recorded.Result.References[0].PublishedDate.Format("2006-01-02"))
	assert.Nil(t, recorded.Next)

	// the review is not searchable before it is completed
	var found []evaluationapp.ReviewResponse
	resp := decode(t, cl.get("/reviews/completed"), &found)
	assert.Empty(t, found)

	w = cl.get("/reviews/completed/" + reviewID.String())
	assert.Equal(t, http.StatusNotFound, w.Code)

	var results evaluationapp.ReviewResultsResponse
	decode(t, cl.get("/reviews/"+reviewID.String()+"/results"), &results)
	assert.Equal(t, 1, results.Recorded)
	require.Len(t, results.Categories, 1)

	var completed evaluationapp.ReviewResponse
	w = cl.send(http.MethodPost, "/reviews/"+reviewID.String()+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &completed)
	assert.True(t, completed.Completed)
	assert.NotNil(t, completed.CompletedAt)

	resp = decode(t, cl.get("/reviews/completed?agency=DTA&mode=3"), &found)
	require.Len(t, found, 1)
	assert.Equal(t, reviewID, found[0].ID)
	require.NotNil(t, resp.Meta)
	assert.EqualValues(t, 1, resp.Meta.Total)

	decode(t, cl.get("/reviews/completed?agency=MTA"), &found)
	assert.Empty(t, found)

	results = evaluationapp.ReviewResultsResponse{}
	w = cl.get("/reviews/completed/" + reviewID.String())
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &results)
	assert.True(t, results.Review.Completed)

	var detail evaluationapp.ResultDetailResponse
	w = cl.get("/reviews/completed/" + reviewID.String() + "/results/" + item.Result.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &detail)
	assert.Equal(t, item.Result.ID, detail.Result.ID)

	// completed reviews are read only
	w = cl.postForm("/evaluations/"+reviewID.String()+"/results/"+item.Result.ID.String(), map[string]string{
		ResultScoreField: f.scoreID.String(),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestEvaluationHandler_NoFeed(t *testing.T) {
	srv := newTestServer(t)
	cl := srv.client(t)
	mode := 3

	w := cl.send(http.MethodPost, "/evaluations", evaluationapp.StartReviewRequest{Agency: "DTA", Mode: &mode})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = cl.get("/evaluations/new")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode(t, w, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeNoFeed, resp.Error.Code)
	assert.Equal(t, NoFeedMessage, resp.Error.Message)
}

func TestEvaluationHandler_StartRejected(t *testing.T) {
	t.Run("no categories", func(t *testing.T) {
		srv := newTestServer(t)
		cl := srv.client(t)
		uploadSample(t, cl)

		mode := 3
		w := cl.send(http.MethodPost, "/evaluations", evaluationapp.StartReviewRequest{Agency: "DTA", Mode: &mode})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
	})

	t.Run("mode is required", func(t *testing.T) {
		f := newReviewFixture(t)
		w := f.cl.send(http.MethodPost, "/evaluations", map[string]string{"agency": "DTA"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("nothing to review", func(t *testing.T) {
		f := newReviewFixture(t)
		mode := 7
		w := f.cl.send(http.MethodPost, "/evaluations", evaluationapp.StartReviewRequest{Agency: "DTA", Mode: &mode})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestEvaluationHandler_RecordRejected(t *testing.T) {
	f := newReviewFixture(t)
	started := f.start(t)
	reviewID := started.Review.ID

	var item evaluationapp.EvaluationItemResponse
	decode(t, f.cl.get(itemPath(reviewID, f.category.ID, 1)), &item)
	path := "/evaluations/" + reviewID.String() + "/results/" + item.Result.ID.String()

	tests := []struct {
		name   string
		values map[string]string
		status int
		field  string
	}{
		{"malformed score", map[string]string{ResultScoreField: "abc"}, http.StatusBadRequest, ResultScoreField},
		{"malformed date", map[string]string{ResultScoreField: f.scoreID.String(), ResultPublishedDateField: "03/01/2024"}, http.StatusBadRequest, ResultPublishedDateField},
		{"missing score", map[string]string{ResultReasonField: "no score"}, http.StatusBadRequest, ""},
		{"foreign score", map[string]string{ResultScoreField: uuid.NewString()}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.cl.postForm(path, tt.values)
			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w, nil)
			require.NotNil(t, resp.Error)
			if tt.field != "" {
				assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
				require.Len(t, resp.Error.Details, 1)
				assert.Equal(t, tt.field, resp.Error.Details[0].Field)
			} else {
				assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
			}
		})
	}

	t.Run("result of another review", func(t *testing.T) {
		w := f.cl.postForm("/evaluations/"+uuid.NewString()+"/results/"+item.Result.ID.String(),
			map[string]string{ResultScoreField: f.scoreID.String()})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestEvaluationHandler_EvaluateItemRejected(t *testing.T) {
	f := newReviewFixture(t)
	started := f.start(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"zero", itemPath(started.Review.ID, f.category.ID, 0), http.StatusBadRequest},
		{"not a number", "/evaluations/" + started.Review.ID.String() + "/categories/" + f.category.ID.String() + "/items/first", http.StatusBadRequest},
		{"past the end", itemPath(started.Review.ID, f.category.ID, 2), http.StatusNotFound},
		{"unknown review", itemPath(uuid.New(), f.category.ID, 1), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.cl.get(tt.path)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

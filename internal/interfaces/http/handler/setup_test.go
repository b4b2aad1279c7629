package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	categoryapp "github.com/gtfsreview/backend/internal/application/category"
	evaluationapp "github.com/gtfsreview/backend/internal/application/evaluation"
	feedapp "github.com/gtfsreview/backend/internal/application/feed"
	"github.com/gtfsreview/backend/internal/application/media"
	"github.com/gtfsreview/backend/internal/infrastructure/config"
	"github.com/gtfsreview/backend/internal/infrastructure/gtfsfeed"
	"github.com/gtfsreview/backend/internal/infrastructure/gtfsschema"
	"github.com/gtfsreview/backend/internal/infrastructure/persistence"
	"github.com/gtfsreview/backend/internal/infrastructure/session"
	"github.com/gtfsreview/backend/internal/infrastructure/storage"
	"github.com/gtfsreview/backend/internal/interfaces/http/dto"
	"github.com/gtfsreview/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// pngImage is enough for content sniffing
var pngImage = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

const testCookieName = "gtfsreview_session"

// testServer wires the handlers over an in-memory SQLite database the way
// the router does, without admin authentication
type testServer struct {
	engine      *gin.Engine
	db          *persistence.Database
	sessions    *session.InMemoryStore
	objects     *storage.MemoryObjectStorage
	feedsDir    string
	feeds       *feedapp.Service
	categories  *categoryapp.Service
	evaluations *evaluationapp.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: persistence.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	schema, err := gtfsschema.Default()
	require.NoError(t, err)

	log := zap.NewNop()
	objects := storage.NewMemoryObjectStorage()
	images := media.NewImages(objects, time.Hour, log)
	feedsDir := t.TempDir()

	reviewCategories := persistence.NewGormReviewCategoryRepository(db.DB)
	results := persistence.NewGormResultRepository(db.DB)
	modes := persistence.NewGormModeRepository(db.DB)

	feeds := feedapp.NewService(gtfsfeed.NewExtractor(gtfsfeed.ExtractorConfig{BaseDir: feedsDir}, log), objects, modes, log)
	categories := categoryapp.NewService(reviewCategories,
		persistence.NewGormGtfsFieldRepository(db.DB),
		persistence.NewGormDataSelectorRepository(db.DB),
		results, schema, images, log)
	evaluations := evaluationapp.NewService(persistence.NewGormReviewRepository(db.DB), results,
		reviewCategories, modes, feeds, images, log)

	sessions := session.NewInMemoryStore(time.Hour)
	t.Cleanup(func() { _ = sessions.Close() })

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Session(sessions, middleware.SessionOptions{
		CookieName: testCookieName,
		Path:       "/",
		MaxAge:     time.Hour,
		SameSite:   http.SameSiteLaxMode,
	}))

	feedHandler := NewFeedHandler(feeds)
	engine.GET("/home", feedHandler.Home)
	engine.GET("/about", feedHandler.About)
	engine.POST("/feed", feedHandler.Upload)
	engine.GET("/messages", feedHandler.Messages)

	categoryHandler := NewCategoryHandler(categories)
	engine.GET("/admin/categories", categoryHandler.ListCategories)
	engine.POST("/admin/categories", categoryHandler.CreateCategory)
	engine.GET("/admin/categories/:id", categoryHandler.GetCategory)
	engine.DELETE("/admin/categories/:id", categoryHandler.DeleteCategory)
	engine.PUT("/admin/categories/:id/data-selector", categoryHandler.ChooseDataSelector)
	engine.GET("/admin/data-selectors", categoryHandler.DataSelectorChoices)
	engine.GET("/admin/gtfs/tables", categoryHandler.Tables)
	engine.GET("/admin/gtfs/tables/:table/fields", categoryHandler.FieldChoices)
	engine.GET("/admin/gtfs/dropdown", categoryHandler.CascadingDropDown)

	widgetHandler := NewWidgetHandler(categories)
	engine.GET("/admin/widgets/:type/:id", widgetHandler.GetWidget)
	engine.PUT("/admin/widgets/:type/:id", widgetHandler.ConfigureWidget)
	engine.GET("/admin/review-widgets/:id", widgetHandler.ViewReviewWidget)
	engine.POST("/admin/widgets/review/:id/related-fields", widgetHandler.AddRelatedField)
	engine.DELETE("/admin/widgets/review/:id/related-fields/:field_id", widgetHandler.DeleteRelatedField)
	engine.PUT("/admin/widgets/review/:id/other-table", widgetHandler.SetRelatedFieldOtherTable)
	engine.POST("/admin/widgets/consistency/:id/visual-examples", widgetHandler.AddVisualExample)
	engine.DELETE("/admin/widgets/consistency/:id/visual-examples/:example_id", widgetHandler.DeleteVisualExample)
	engine.POST("/admin/widgets/consistency/:id/links", widgetHandler.AddLink)
	engine.DELETE("/admin/widgets/consistency/:id/links/:link_id", widgetHandler.DeleteLink)
	engine.PUT("/admin/widgets/consistency/:id/other-text", widgetHandler.SetOtherText)
	engine.POST("/admin/widgets/results_capture/:id/scores", widgetHandler.AddScore)
	engine.DELETE("/admin/widgets/results_capture/:id/scores/:score_id", widgetHandler.DeleteScore)

	evaluationHandler := NewEvaluationHandler(evaluations, feeds)
	engine.GET("/evaluations/new", evaluationHandler.NewReviewOptions)
	engine.POST("/evaluations", evaluationHandler.StartReview)
	engine.GET("/evaluations/:review_id", evaluationHandler.Progress)
	engine.GET("/evaluations/:review_id/categories/:category_id/items/:number", evaluationHandler.EvaluateItem)
	engine.POST("/evaluations/:review_id/results/:result_id", evaluationHandler.RecordResult)

	reviewHandler := NewReviewHandler(evaluations)
	engine.GET("/reviews/completed", reviewHandler.SearchCompleted)
	engine.GET("/reviews/completed/:review_id", reviewHandler.ViewCompleted)
	engine.GET("/reviews/completed/:review_id/results/:result_id", reviewHandler.ViewCompletedResult)
	engine.GET("/reviews/:review_id/results", reviewHandler.ReviewResults)
	engine.GET("/reviews/:review_id/results/:result_id", reviewHandler.GetResult)
	engine.POST("/reviews/:review_id/complete", reviewHandler.MarkComplete)

	return &testServer{
		engine:      engine,
		db:          db,
		sessions:    sessions,
		objects:     objects,
		feedsDir:    feedsDir,
		feeds:       feeds,
		categories:  categories,
		evaluations: evaluations,
	}
}

// client sends requests carrying the session cookie of earlier responses
type client struct {
	t      *testing.T
	server *testServer
	cookie *http.Cookie
}

func (s *testServer) client(t *testing.T) *client {
	return &client{t: t, server: s}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	cl.t.Helper()
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	w := httptest.NewRecorder()
	cl.server.engine.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookieName {
			cl.cookie = c
		}
	}
	return w
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	cl.t.Helper()
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (cl *client) send(method, path string, body any) *httptest.ResponseRecorder {
	cl.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(cl.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return cl.do(req)
}

// upload is a file of a multipart request
type upload struct {
	field, name string
	data        []byte
}

func (cl *client) postForm(path string, values map[string]string, files ...upload) *httptest.ResponseRecorder {
	cl.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(cl.t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(cl.t, err)
		_, err = fw.Write(f.data)
		require.NoError(cl.t, err)
	}
	require.NoError(cl.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return cl.do(req)
}

// decode unmarshals the envelope, decoding data into out when given
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if out != nil {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return resp
}

package handler

import (
	"net/http"
	"os"
	"testing"

	feedapp "github.com/gtfsreview/backend/internal/application/feed"
	"github.com/gtfsreview/backend/internal/infrastructure/gtfsfeed/gtfsfeedtest"
	"github.com/gtfsreview/backend/internal/infrastructure/session"
	"github.com/gtfsreview/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadSample(t *testing.T, cl *client) {
	t.Helper()
	w := cl.postForm("/feed", nil, upload{
		field: FeedFormField,
		name:  "sample.zip",
		data:  gtfsfeedtest.BuildZip(t, gtfsfeedtest.SampleFeed()),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestFeedHandler_Upload(t *testing.T) {
	srv := newTestServer(t)
	cl := srv.client(t)

	w := cl.postForm("/feed", nil, upload{
		field: FeedFormField,
		name:  "sample.zip",
		data:  gtfsfeedtest.BuildZip(t, gtfsfeedtest.SampleFeed()),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, cl.cookie)

	var home HomeResponse
	resp := decode(t, w, &home)
	assert.True(t, resp.Success)
	assert.Equal(t, []session.Flash{{Level: session.FlashSuccess, Message: FlashUploadSuccess}}, resp.Messages)
	assert.True(t, home.HasFeed)
	assert.Equal(t, "sample.zip", home.FeedName)
	require.NotNil(t, home.Summary)
	assert.Equal(t, 1, srv.objects.Len(), "zip is archived")

	stored, err := srv.sessions.Load(t.Context(), cl.cookie.Value)
	require.NoError(t, err)
	assert.True(t, stored.HasFeed())
	assert.Empty(t, stored.Flashes, "flash was delivered with the upload")

	// home reads the summary back from the session
	w = cl.get("/home")
	require.Equal(t, http.StatusOK, w.Code)
	home = HomeResponse{}
	resp = decode(t, w, &home)
	assert.True(t, home.HasFeed)
	assert.Equal(t, "sample.zip", home.FeedName)
	assert.Empty(t, resp.Messages)
}

func TestFeedHandler_UploadReplacesPreviousFeed(t *testing.T) {
	srv := newTestServer(t)
	cl := srv.client(t)

	uploadSample(t, cl)
	first, err := srv.sessions.Load(t.Context(), cl.cookie.Value)
	require.NoError(t, err)
	firstDir := first.FeedDir

	uploadSample(t, cl)
	second, err := srv.sessions.Load(t.Context(), cl.cookie.Value)
	require.NoError(t, err)
	assert.NotEqual(t, firstDir, second.FeedDir)

	_, err = os.Stat(firstDir)
	assert.True(t, os.IsNotExist(err), "previous feed directory is removed")
	_, err = os.Stat(second.FeedDir)
	assert.NoError(t, err)
}

func TestFeedHandler_UploadRejected(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		srv := newTestServer(t)
		w := srv.client(t).postForm("/feed", map[string]string{"note": "no file"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
		assert.Equal(t, feedapp.ErrNoFile.Message, resp.Error.Message)
	})

	t.Run("body is not multipart", func(t *testing.T) {
		srv := newTestServer(t)
		w := srv.client(t).send(http.MethodPost, "/feed", map[string]string{"gtfs_zip": "feed.zip"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
		assert.Equal(t, feedapp.ErrNoFile.Message, resp.Error.Message)
	})

	t.Run("invalid route_type is rejected", func(t *testing.T) {
		srv := newTestServer(t)
		w := srv.client(t).postForm("/feed", nil, upload{
			field: FeedFormField,
			name:  "routes.zip",
			data: gtfsfeedtest.BuildZip(t, gtfsfeedtest.With(gtfsfeedtest.SampleFeed(), "routes.txt",
				"route_id,agency_id,route_short_name,route_type\nR1,DTA,1,bus\n")),
		})

		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		resp := decode(t, w, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, feedapp.ErrInvalidFeed.Message, resp.Error.Message)
	})

	t.Run("invalid feed keeps the previous one", func(t *testing.T) {
		srv := newTestServer(t)
		cl := srv.client(t)
		uploadSample(t, cl)

		w := cl.postForm("/feed", nil, upload{
			field: FeedFormField,
			name:  "broken.zip",
			data:  gtfsfeedtest.BuildZip(t, gtfsfeedtest.Without(gtfsfeedtest.SampleFeed(), "stops.txt")),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, feedapp.ErrInvalidFeed.Message, resp.Error.Message)
		assert.Equal(t, []session.Flash{{Level: session.FlashError, Message: feedapp.ErrInvalidFeed.Message}}, resp.Messages)

		var home HomeResponse
		decode(t, cl.get("/home"), &home)
		assert.True(t, home.HasFeed)
		assert.Equal(t, "sample.zip", home.FeedName)
	})

	t.Run("not a zip", func(t *testing.T) {
		srv := newTestServer(t)
		w := srv.client(t).postForm("/feed", nil, upload{field: FeedFormField, name: "feed.zip", data: []byte("plain text")})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w, nil)
		assert.Len(t, resp.Messages, 1)
	})
}

func TestFeedHandler_Home(t *testing.T) {
	t.Run("no feed", func(t *testing.T) {
		srv := newTestServer(t)
		w := srv.client(t).get("/home")

		require.Equal(t, http.StatusOK, w.Code)
		var home HomeResponse
		decode(t, w, &home)
		assert.False(t, home.HasFeed)
		assert.Nil(t, home.Summary)
	})

	t.Run("swept feed is forgotten", func(t *testing.T) {
		srv := newTestServer(t)
		cl := srv.client(t)
		uploadSample(t, cl)

		data, err := srv.sessions.Load(t.Context(), cl.cookie.Value)
		require.NoError(t, err)
		require.NoError(t, os.RemoveAll(data.FeedDir))

		var home HomeResponse
		decode(t, cl.get("/home"), &home)
		assert.False(t, home.HasFeed)

		data, err = srv.sessions.Load(t.Context(), cl.cookie.Value)
		require.NoError(t, err)
		assert.False(t, data.HasFeed())
	})
}

func TestFeedHandler_Messages(t *testing.T) {
	srv := newTestServer(t)
	cl := srv.client(t)

	// a failed upload leaves nothing queued once delivered
	cl.postForm("/feed", nil, upload{field: FeedFormField, name: "feed.zip", data: []byte("nope")})

	var flashes []session.Flash
	w := cl.get("/messages")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &flashes)
	assert.Empty(t, flashes)

	data, err := srv.sessions.Load(t.Context(), cl.cookie.Value)
	require.NoError(t, err)
	data.AddFlash(session.FlashSuccess, "queued")
	require.NoError(t, srv.sessions.Save(t.Context(), cl.cookie.Value, data))

	decode(t, cl.get("/messages"), &flashes)
	assert.Equal(t, []session.Flash{{Level: session.FlashSuccess, Message: "queued"}}, flashes)

	decode(t, cl.get("/messages"), &flashes)
	assert.Empty(t, flashes)
}

func TestFeedHandler_About(t *testing.T) {
	srv := newTestServer(t)
	w := srv.client(t).get("/about")

	require.Equal(t, http.StatusOK, w.Code)
	var about AboutResponse
	decode(t, w, &about)
	assert.NotEmpty(t, about.Name)
	assert.NotEmpty(t, about.Description)
}

package session

import (
	"context"
	"testing"
	"time"

	"github.com/gtfsreview/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestData_Flashes(t *testing.T) {
	var d Data
	d.AddFlash(FlashSuccess, "uploaded")
	d.AddFlash(FlashError, "oops")

	flashes := d.PopFlashes()
	require.Len(t, flashes, 2)
	assert.Equal(t, Flash{Level: FlashSuccess, Message: "uploaded"}, flashes[0])
	assert.Empty(t, d.PopFlashes())
}

func TestData_Feed(t *testing.T) {
	var d Data
	assert.False(t, d.HasFeed())
	d.SetFeed("/tmp/gtfs-feed-1", "feed.zip", "feeds/1.zip")
	assert.True(t, d.HasFeed())
	d.ClearFeed()
	assert.False(t, d.HasFeed())
}

func TestNewID(t *testing.T) {
	a, err := NewID()
	require.NoError(t, err)
	b, err := NewID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
}

func TestInMemoryStore(t *testing.T) {
	store := NewInMemoryStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	t.Run("unknown session", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("round trip is isolated from caller mutations", func(t *testing.T) {
		data := &Data{FeedDir: "/tmp/x"}
		data.AddFlash(FlashSuccess, "hello")
		require.NoError(t, store.Save(ctx, "s1", data))

		data.AddFlash(FlashError, "not saved")

		loaded, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/x", loaded.FeedDir)
		assert.Len(t, loaded.Flashes, 1)

		loaded.PopFlashes()
		again, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Len(t, again.Flashes, 1)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "s2", &Data{}))
		require.NoError(t, store.Delete(ctx, "s2"))
		_, err := store.Load(ctx, "s2")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestInMemoryStore_Expiry(t *testing.T) {
	store := NewInMemoryStore(10 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s", &Data{}))
	time.Sleep(20 * time.Millisecond)

	_, err := store.Load(ctx, "s")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	store.removeExpired()
	assert.Equal(t, 0, store.Len())
}

func TestStoreFactory(t *testing.T) {
	t.Run("disabled redis uses memory", func(t *testing.T) {
		f := NewStoreFactory(config.RedisConfig{Enabled: false}, time.Hour)
		store, err := f.CreateStore()
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryStore{}, store)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		f := NewStoreFactory(config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, time.Hour)
		store, err := f.CreateStore()
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryStore{}, store)
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		f := NewStoreFactory(config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, time.Hour,
			WithInMemoryFallback(false))
		_, err := f.CreateStore()
		assert.Error(t, err)
	})
}

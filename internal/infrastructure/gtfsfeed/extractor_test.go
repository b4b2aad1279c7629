package gtfsfeed

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, e *Extractor, data []byte) (string, error) {
	t.Helper()
	return e.Extract(context.Background(), bytes.NewReader(data), int64(len(data)))
}

func TestExtractor_Extract(t *testing.T) {
	base := t.TempDir()
	e := NewExtractor(ExtractorConfig{BaseDir: base}, nil)

	t.Run("extracts and flattens tables", func(t *testing.T) {
		files := map[string]string{
			"feed/agency.txt":       "agency_id\nA\n",
			"feed/Stops.TXT":        "stop_id\nS\n",
			"feed/readme.md":        "ignored",
			"__MACOSX/._agency.txt": "junk",
			"../../escape.txt":      "stop_id\nX\n",
		}
		dir, err := extract(t, e, buildZip(t, files))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(filepath.Base(dir), "gtfs-feed-"))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		var names []string
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		assert.ElementsMatch(t, []string{"agency.txt", "stops.txt", "escape.txt"}, names)

		_, err = os.Stat(filepath.Join(base, "escape.txt"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("rejects non zip data", func(t *testing.T) {
		_, err := extract(t, e, []byte("definitely not a zip"))
		assert.ErrorIs(t, err, ErrInvalidArchive)
	})

	t.Run("rejects archives without tables and cleans up", func(t *testing.T) {
		before, _ := filepath.Glob(filepath.Join(base, feedDirPattern))
		_, err := extract(t, e, buildZip(t, map[string]string{"notes.md": "hi"}))
		assert.ErrorIs(t, err, ErrNoFeedFiles)
		after, _ := filepath.Glob(filepath.Join(base, feedDirPattern))
		assert.Equal(t, len(before), len(after))
	})

	t.Run("enforces size limits", func(t *testing.T) {
		small := NewExtractor(ExtractorConfig{BaseDir: base, MaxEntrySize: 10, MaxTotalSize: 100}, nil)
		_, err := extract(t, small, buildZip(t, map[string]string{"stops.txt": strings.Repeat("x", 50)}))
		assert.ErrorIs(t, err, ErrArchiveTooLarge)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		data := buildZip(t, sampleFeed())
		_, err := e.Extract(ctx, bytes.NewReader(data), int64(len(data)))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestExtractor_Remove(t *testing.T) {
	base := t.TempDir()
	e := NewExtractor(ExtractorConfig{BaseDir: base}, nil)

	dir, err := extract(t, e, buildZip(t, sampleFeed()))
	require.NoError(t, err)
	require.NoError(t, e.Remove(dir))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, e.Remove(base))
	assert.Error(t, e.Remove(filepath.Join(base, "..", "gtfs-feed-x")))
	assert.Error(t, e.Remove(t.TempDir()))
}

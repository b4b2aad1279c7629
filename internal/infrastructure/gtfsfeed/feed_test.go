package gtfsfeed

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSample(t *testing.T, files map[string]string) (*Feed, error) {
	t.Helper()
	e := NewExtractor(ExtractorConfig{BaseDir: t.TempDir()}, nil)
	data := buildZip(t, files)
	dir, err := e.Extract(context.Background(), bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return Load(dir)
}

func TestLoad(t *testing.T) {
	t.Run("loads a valid feed", func(t *testing.T) {
		feed, err := loadSample(t, sampleFeed())
		require.NoError(t, err)
		assert.Equal(t, []string{"agency", "calendar", "routes", "stop_times", "stops", "trips"}, feed.Tables())
		assert.Contains(t, feed.Headers(TableRoutes), "route_color")
	})

	t.Run("calendar_dates can replace calendar", func(t *testing.T) {
		files := sampleFeed()
		delete(files, "calendar.txt")
		files["calendar_dates.txt"] = "service_id,date,exception_type\nWK,20240101,1\n"
		_, err := loadSample(t, files)
		assert.NoError(t, err)
	})

	t.Run("reports missing tables", func(t *testing.T) {
		files := sampleFeed()
		delete(files, "stops.txt")
		delete(files, "calendar.txt")
		_, err := loadSample(t, files)

		var missing *MissingTablesError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"stops", "calendar or calendar_dates"}, missing.Tables)
	})

	t.Run("rejects empty table", func(t *testing.T) {
		files := sampleFeed()
		files["shapes.txt"] = ""
		_, err := loadSample(t, files)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("rejects invalid encoding", func(t *testing.T) {
		files := sampleFeed()
		files["stops.txt"] = "stop_id,stop_name\nS1,\xff\xfe\n"
		_, err := loadSample(t, files)
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})
}

func TestFeed_Queries(t *testing.T) {
	feed, err := loadSample(t, sampleFeed())
	require.NoError(t, err)

	t.Run("agencies", func(t *testing.T) {
		agencies, err := feed.Agencies()
		require.NoError(t, err)
		assert.Equal(t, []Agency{{ID: "DTA", Name: "Demo Transit"}, {ID: "MTA", Name: "Metro Transit"}}, agencies)
	})

	t.Run("modes", func(t *testing.T) {
		modes, err := feed.Modes()
		require.NoError(t, err)
		assert.Equal(t, []int{3, 4}, modes)
	})

	t.Run("summary", func(t *testing.T) {
		summary, err := feed.Summary()
		require.NoError(t, err)
		assert.Equal(t, 4, summary.Tables[TableRoutes])
		assert.Equal(t, 5, summary.Tables[TableStopTimes])
		assert.Equal(t, 20, summary.TotalRows)
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := feed.Rows("shapes")
		assert.ErrorIs(t, err, ErrTableNotPresent)
	})

	t.Run("rows keep line numbers", func(t *testing.T) {
		rows, err := feed.Rows(TableStops)
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, 2, rows[0].LineNumber)
		assert.Equal(t, "First St", rows[0].Get("stop_name"))
	})
}

func TestFeed_InvalidRouteType(t *testing.T) {
	files := sampleFeed()
	files["routes.txt"] = "route_id,agency_id,route_short_name,route_type\nR1,DTA,1,bus\n"
	feed, err := loadSample(t, files)
	require.NoError(t, err)

	_, err = feed.Summary()
	var tableErr *TableError
	require.ErrorAs(t, err, &tableErr)
	assert.Equal(t, TableRoutes, tableErr.Table)
	assert.Contains(t, err.Error(), `line 2: invalid route_type "bus"`)
}

func TestScope(t *testing.T) {
	feed, err := loadSample(t, sampleFeed())
	require.NoError(t, err)

	ids := func(t *testing.T, s *Scope, table, column string) []string {
		t.Helper()
		var out []string
		require.NoError(t, s.Each(table, func(r *Row) error {
			out = append(out, r.Get(column))
			return nil
		}))
		return out
	}

	bus := feed.NewScope("DTA", 3)

	t.Run("routes by agency and mode", func(t *testing.T) {
		assert.Equal(t, []string{"R1", "R2"}, ids(t, bus, TableRoutes, "route_id"))
	})

	t.Run("trips by route", func(t *testing.T) {
		assert.Equal(t, []string{"T1", "T2"}, ids(t, bus, TableTrips, "trip_id"))
	})

	t.Run("stop_times by trip", func(t *testing.T) {
		n, err := bus.Count(TableStopTimes)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("stops by stop_times", func(t *testing.T) {
		assert.Equal(t, []string{"S1", "S2"}, ids(t, bus, TableStops, "stop_id"))
	})

	t.Run("agency by id", func(t *testing.T) {
		assert.Equal(t, []string{"DTA"}, ids(t, bus, TableAgency, "agency_id"))
	})

	t.Run("other tables unfiltered", func(t *testing.T) {
		n, err := bus.Count(TableCalendar)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("ferry scope", func(t *testing.T) {
		ferry := feed.NewScope("DTA", 4)
		assert.Equal(t, []string{"S3"}, ids(t, ferry, TableStops, "stop_id"))
	})

	t.Run("empty agency matches all agencies", func(t *testing.T) {
		all := feed.NewScope("", 3)
		assert.Equal(t, []string{"R1", "R2", "M1"}, ids(t, all, TableRoutes, "route_id"))
	})

	t.Run("rows at positions", func(t *testing.T) {
		rows, err := bus.RowsAt(TableStopTimes, []int{2, 0})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "S1", rows[0].Get("stop_id"))
		assert.Equal(t, "T2", rows[1].Get("trip_id"))

		rows, err = bus.RowsAt(TableStopTimes, []int{1, 99})
		require.NoError(t, err)
		assert.Len(t, rows, 1)

		rows, err = bus.RowsAt(TableStopTimes, nil)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestTableReader(t *testing.T) {
	t.Run("strips BOM and trims values", func(t *testing.T) {
		r, err := NewTableReader(strings.NewReader("\xEF\xBB\xBFstop_id, stop_name\nS1,  Main  \n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"stop_id", "stop_name"}, r.Headers())
		assert.True(t, r.HasHeader("stop_name"))

		row, err := r.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "Main", row.Get("stop_name"))
	})

	t.Run("pads short rows", func(t *testing.T) {
		r, err := NewTableReader(strings.NewReader("a,b,c\n1\n"))
		require.NoError(t, err)
		row, err := r.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "", row.Get("c"))
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := NewTableReader(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestSweeper_SweepOnce(t *testing.T) {
	base := t.TempDir()
	old := filepath.Join(base, "gtfs-feed-old")
	fresh := filepath.Join(base, "gtfs-feed-fresh")
	other := filepath.Join(base, "unrelated")
	for _, d := range []string{old, fresh, other} {
		require.NoError(t, os.Mkdir(d, 0o750))
	}

	s := NewSweeper(SweeperConfig{BaseDir: base, Retention: time.Hour}, nil)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(other, past, past))

	assert.Equal(t, 1, s.SweepOnce())
	assert.NoDirExists(t, old)
	assert.DirExists(t, fresh)
	assert.DirExists(t, other)
}

func TestSweeper_StartStop(t *testing.T) {
	s := NewSweeper(SweeperConfig{BaseDir: t.TempDir(), Interval: 10 * time.Millisecond}, nil)
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

// Package gtfsfeedtest provides small GTFS feeds for tests.
package gtfsfeedtest

import (
	"archive/zip"
	"bytes"
	"maps"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleFeed is a two-agency feed: DTA runs a bus (route_type 3) and a
// ferry (4), MTA runs a bus.
func SampleFeed() map[string]string {
	return map[string]string{
		"agency.txt": "agency_id,agency_name,agency_url,agency_timezone\n" +
			"DTA,Demo Transit,https://dta.example.com,America/Los_Angeles\n" +
			"MTA,Metro Transit,https://mta.example.com,America/Los_Angeles\n",
		"routes.txt": "route_id,agency_id,route_short_name,route_type,route_color\n" +
			"R1,DTA,1,3,FF0000\n" +
			"R2,DTA,2,3,00FF00\n" +
			"F1,DTA,Ferry,4,0000FF\n" +
			"M1,MTA,M1,3,FFFFFF\n",
		"trips.txt": "route_id,service_id,trip_id\n" +
			"R1,WK,T1\n" +
			"R2,WK,T2\n" +
			"F1,WK,T3\n" +
			"M1,WK,T4\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"T1,08:00:00,08:00:00,S1,1\n" +
			"T1,08:10:00,08:10:00,S2,2\n" +
			"T2,09:00:00,09:00:00,S2,1\n" +
			"T3,10:00:00,10:00:00,S3,1\n" +
			"T4,11:00:00,11:00:00,S4,1\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon\n" +
			"S1,First St,47.60,-122.33\n" +
			"S2,Second St,47.61,-122.34\n" +
			"S3,Ferry Dock,47.62,-122.35\n" +
			"S4,Metro Plaza,47.63,-122.36\n",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"WK,1,1,1,1,1,0,0,20240101,20241231\n",
	}
}

// Without returns a copy of files lacking the named entries
func Without(files map[string]string, names ...string) map[string]string {
	out := maps.Clone(files)
	for _, name := range names {
		delete(out, name)
	}
	return out
}

// With returns a copy of files with name set to content
func With(files map[string]string, name, content string) map[string]string {
	out := maps.Clone(files)
	out[name] = content
	return out
}

// BuildZip packs files into an in-memory zip archive
func BuildZip(t testing.TB, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// WriteDir writes files into a fresh temporary directory, as an extracted
// feed
func WriteDir(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

// Package gtfsfeed reads uploaded GTFS feeds: it unpacks the zip archive,
// validates the required tables and answers the row queries used to sample
// data for review.
package gtfsfeed

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Table names
const (
	TableAgency        = "agency"
	TableStops         = "stops"
	TableRoutes        = "routes"
	TableTrips         = "trips"
	TableStopTimes     = "stop_times"
	TableCalendar      = "calendar"
	TableCalendarDates = "calendar_dates"
)

// requiredTables must all be present in a feed
var requiredTables = []string{TableAgency, TableStops, TableRoutes, TableTrips, TableStopTimes}

// Agency is an operator listed in agency.txt
type Agency struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Summary describes a loaded feed
type Summary struct {
	Tables    map[string]int `json:"tables"`
	Agencies  []Agency       `json:"agencies"`
	Modes     []int          `json:"modes"`
	TotalRows int            `json:"total_rows"`
}

// Feed is an extracted GTFS feed on disk
type Feed struct {
	dir     string
	tables  map[string]string
	headers map[string][]string
}

// Load validates the feed in dir: the required tables must be present and
// every table must start with a readable header.
func Load(dir string) (*Feed, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed directory: %w", err)
	}

	f := &Feed{dir: dir, tables: make(map[string]string), headers: make(map[string][]string)}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".txt")
		f.tables[name] = filepath.Join(dir, entry.Name())
	}

	var missing []string
	for _, t := range requiredTables {
		if _, ok := f.tables[t]; !ok {
			missing = append(missing, t)
		}
	}
	if !f.HasTable(TableCalendar) && !f.HasTable(TableCalendarDates) {
		missing = append(missing, TableCalendar+" or "+TableCalendarDates)
	}
	if len(missing) > 0 {
		return nil, &MissingTablesError{Tables: missing}
	}

	for name, path := range f.tables {
		headers, err := readHeaders(path)
		if err != nil {
			return nil, &TableError{Table: name, Err: err}
		}
		f.headers[name] = headers
	}
	return f, nil
}

func readHeaders(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	reader, err := NewTableReader(file)
	if err != nil {
		return nil, err
	}
	return reader.Headers(), nil
}

// Dir returns the directory the feed was loaded from
func (f *Feed) Dir() string {
	return f.dir
}

// HasTable reports whether the feed contains the table
func (f *Feed) HasTable(name string) bool {
	_, ok := f.tables[name]
	return ok
}

// Tables returns the table names present, sorted
func (f *Feed) Tables() []string {
	names := make([]string, 0, len(f.tables))
	for name := range f.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Headers returns the columns of a table
func (f *Feed) Headers(table string) []string {
	return f.headers[table]
}

// Each streams the non-empty rows of a table
func (f *Feed) Each(table string, fn func(*Row) error) error {
	path, ok := f.tables[table]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotPresent, table)
	}
	file, err := os.Open(path)
	if err != nil {
		return &TableError{Table: table, Err: err}
	}
	defer file.Close()

	reader, err := NewTableReader(file)
	if err != nil {
		return &TableError{Table: table, Err: err}
	}
	for {
		row, err := reader.ReadRow()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &TableError{Table: table, Err: err}
		}
		if row.IsEmpty() {
			continue
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

// Rows reads a whole table into memory
func (f *Feed) Rows(table string) ([]*Row, error) {
	var rows []*Row
	err := f.Each(table, func(r *Row) error {
		rows = append(rows, r)
		return nil
	})
	return rows, err
}

// Count returns the number of non-empty rows of a table
func (f *Feed) Count(table string) (int, error) {
	n := 0
	err := f.Each(table, func(*Row) error {
		n++
		return nil
	})
	return n, err
}

// Agencies lists the operators of the feed
func (f *Feed) Agencies() ([]Agency, error) {
	var agencies []Agency
	err := f.Each(TableAgency, func(r *Row) error {
		agencies = append(agencies, Agency{ID: r.Get("agency_id"), Name: r.Get("agency_name")})
		return nil
	})
	return agencies, err
}

// Modes returns the distinct route types of the feed, sorted
func (f *Feed) Modes() ([]int, error) {
	seen := make(map[int]struct{})
	err := f.Each(TableRoutes, func(r *Row) error {
		mode, err := strconv.Atoi(r.Get("route_type"))
		if err != nil {
			return &TableError{
				Table: TableRoutes,
				Err:   fmt.Errorf("line %d: invalid route_type %q", r.LineNumber, r.Get("route_type")),
			}
		}
		seen[mode] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	modes := make([]int, 0, len(seen))
	for m := range seen {
		modes = append(modes, m)
	}
	slices.Sort(modes)
	return modes, nil
}

// Summary counts the rows of every table and lists agencies and modes
func (f *Feed) Summary() (*Summary, error) {
	s := &Summary{Tables: make(map[string]int, len(f.tables))}
	for _, table := range f.Tables() {
		n, err := f.Count(table)
		if err != nil {
			return nil, err
		}
		s.Tables[table] = n
		s.TotalRows += n
	}
	var err error
	if s.Agencies, err = f.Agencies(); err != nil {
		return nil, err
	}
	if s.Modes, err = f.Modes(); err != nil {
		return nil, err
	}
	return s, nil
}

package gtfsfeed

import (
	"errors"
	"slices"
	"strconv"
)

type idSet map[string]struct{}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// Scope restricts table queries to the records serving one agency and mode.
// Routes are filtered by agency and route_type, trips by route, stop_times
// by trip, stops by the stop_times that reference them and agency by ID.
// Other tables are not filtered.
type Scope struct {
	feed   *Feed
	agency string
	mode   int

	routes idSet
	trips  idSet
	stops  idSet
}

// NewScope prepares a scope for an agency and GTFS route type. An empty
// agency matches every agency.
func (f *Feed) NewScope(agency string, mode int) *Scope {
	return &Scope{feed: f, agency: agency, mode: mode}
}

// Each streams the scoped rows of a table
func (s *Scope) Each(table string, fn func(*Row) error) error {
	match, err := s.matcher(table)
	if err != nil {
		return err
	}
	return s.feed.Each(table, func(r *Row) error {
		if match(r) {
			return fn(r)
		}
		return nil
	})
}

// Count returns the number of scoped rows of a table
func (s *Scope) Count(table string) (int, error) {
	n := 0
	err := s.Each(table, func(*Row) error {
		n++
		return nil
	})
	return n, err
}

// RowsAt returns the scoped rows at the given zero-based positions.
// Positions must be sorted ascending; positions past the end are ignored.
func (s *Scope) RowsAt(table string, positions []int) ([]*Row, error) {
	if len(positions) == 0 {
		return nil, nil
	}
	if !slices.IsSorted(positions) {
		positions = slices.Clone(positions)
		slices.Sort(positions)
	}
	rows := make([]*Row, 0, len(positions))
	pos, next := 0, 0
	err := s.Each(table, func(r *Row) error {
		for next < len(positions) && positions[next] == pos {
			rows = append(rows, r)
			next++
		}
		pos++
		if next == len(positions) {
			return errStop
		}
		return nil
	})
	if errors.Is(err, errStop) {
		err = nil
	}
	return rows, err
}

// errStop ends a scan once every requested row has been collected
var errStop = errors.New("stop iteration")

func (s *Scope) matcher(table string) (func(*Row) bool, error) {
	switch table {
	case TableAgency:
		return func(r *Row) bool {
			return s.agency == "" || r.Get("agency_id") == "" || r.Get("agency_id") == s.agency
		}, nil
	case TableRoutes:
		return s.routeMatches, nil
	case TableTrips:
		routes, err := s.routeIDs()
		if err != nil {
			return nil, err
		}
		return func(r *Row) bool { return routes.has(r.Get("route_id")) }, nil
	case TableStopTimes:
		trips, err := s.tripIDs()
		if err != nil {
			return nil, err
		}
		return func(r *Row) bool { return trips.has(r.Get("trip_id")) }, nil
	case TableStops:
		stops, err := s.stopIDs()
		if err != nil {
			return nil, err
		}
		return func(r *Row) bool { return stops.has(r.Get("stop_id")) }, nil
	default:
		return func(*Row) bool { return true }, nil
	}
}

func (s *Scope) routeMatches(r *Row) bool {
	mode, err := strconv.Atoi(r.Get("route_type"))
	if err != nil || mode != s.mode {
		return false
	}
	agencyID := r.Get("agency_id")
	return s.agency == "" || agencyID == "" || agencyID == s.agency
}

func (s *Scope) routeIDs() (idSet, error) {
	if s.routes != nil {
		return s.routes, nil
	}
	ids := make(idSet)
	err := s.feed.Each(TableRoutes, func(r *Row) error {
		if s.routeMatches(r) {
			ids[r.Get("route_id")] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.routes = ids
	return ids, nil
}

func (s *Scope) tripIDs() (idSet, error) {
	if s.trips != nil {
		return s.trips, nil
	}
	routes, err := s.routeIDs()
	if err != nil {
		return nil, err
	}
	ids := make(idSet)
	err = s.feed.Each(TableTrips, func(r *Row) error {
		if routes.has(r.Get("route_id")) {
			ids[r.Get("trip_id")] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.trips = ids
	return ids, nil
}

func (s *Scope) stopIDs() (idSet, error) {
	if s.stops != nil {
		return s.stops, nil
	}
	trips, err := s.tripIDs()
	if err != nil {
		return nil, err
	}
	ids := make(idSet)
	err = s.feed.Each(TableStopTimes, func(r *Row) error {
		if trips.has(r.Get("trip_id")) {
			ids[r.Get("stop_id")] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.stops = ids
	return ids, nil
}

package core

import (
	"errors"
	"fmt"
	"time"
)

// QueryInputError is returned when a query constraint cannot be used.
type QueryInputError struct {
	Index int    // Position of the query in its batch (0 for single queries)
	Field string // Offending field name
	Value string
	Err   error
}

func (e *QueryInputError) Error() string {
	return fmt.Sprintf("query %d: invalid %s %q: %v", e.Index, e.Field, e.Value, e.Err)
}

func (e *QueryInputError) Unwrap() error {
	return e.Err
}

// matcher is a Query with its datetime bounds already parsed.
type matcher struct {
	q        Query
	depFrom  time.Time
	arrUntil time.Time
}

func compile(q Query) (matcher, error) {
	m := matcher{q: q}

	if q.DepartureDatetime != nil {
		t, err := ParseTimestamp(*q.DepartureDatetime)
		if err != nil {
			return matcher{}, &QueryInputError{Field: "departure_datetime", Value: *q.DepartureDatetime, Err: err}
		}
		m.depFrom = t
	}
	if q.ArrivalDatetime != nil {
		t, err := ParseTimestamp(*q.ArrivalDatetime)
		if err != nil {
			return matcher{}, &QueryInputError{Field: "arrival_datetime", Value: *q.ArrivalDatetime, Err: err}
		}
		m.arrUntil = t
	}

	return m, nil
}

// matches reports whether rec satisfies every constraint present in the query.
// A record whose own datetime does not parse cannot satisfy a datetime bound.
func (m matcher) matches(rec FlightRecord) bool {
	q := m.q

	if q.FlightID != nil && rec.FlightID != *q.FlightID {
		return false
	}
	if q.Origin != nil && rec.Origin != *q.Origin {
		return false
	}
	if q.Destination != nil && rec.Destination != *q.Destination {
		return false
	}

	if q.DepartureDatetime != nil {
		dep, err := ParseTimestamp(rec.DepartureDatetime)
		if err != nil || dep.Before(m.depFrom) {
			return false
		}
	}
	if q.ArrivalDatetime != nil {
		arr, err := ParseTimestamp(rec.ArrivalDatetime)
		if err != nil || arr.After(m.arrUntil) {
			return false
		}
	}

	if q.Price != nil && rec.Price > *q.Price {
		return false
	}

	return true
}

// Match returns the records of dataset that satisfy q, in dataset order.
// An empty query matches every record.
func Match(dataset []FlightRecord, q Query) ([]FlightRecord, error) {
	m, err := compile(q)
	if err != nil {
		return nil, err
	}

	matches := make([]FlightRecord, 0)
	for _, rec := range dataset {
		if m.matches(rec) {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

// Execute runs every query against dataset and returns one QueryResult per
// query, in input order. A query that fails keeps its slot with the error
// recorded and no matches; the failures are also returned joined together.
func Execute(dataset []FlightRecord, queries []Query) ([]QueryResult, error) {
	results := make([]QueryResult, len(queries))
	var errs []error

	for i, q := range queries {
		results[i].Query = q

		matches, err := Match(dataset, q)
		if err != nil {
			var qerr *QueryInputError
			if errors.As(err, &qerr) {
				qerr.Index = i
			}
			results[i].Matches = []FlightRecord{}
			results[i].Error = err.Error()
			errs = append(errs, err)
			continue
		}
		results[i].Matches = matches
	}

	return results, errors.Join(errs...)
}

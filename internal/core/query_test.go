package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleDataset() []FlightRecord {
	return []FlightRecord{
		{"AA100", "JFK", "LAX", "2024-05-01 08:00", "2024-05-01 11:00", 250},
		{"BA200", "LHR", "JFK", "2024-05-02 09:30", "2024-05-02 12:45", 99.5},
		{"AA101", "JFK", "SFO", "2024-05-03 14:00", "2024-05-03 17:30", 100},
		{"DL300", "ATL", "LAX", "2024-04-30 22:00", "2024-05-01 00:30", 180},
	}
}

func TestMatch_EmptyQueryReturnsAll(t *testing.T) {
	data := sampleDataset()
	got, err := Match(data, Query{})
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestMatch_EmptyDataset(t *testing.T) {
	got, err := Match(nil, Query{Origin: ptr("JFK")})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestMatch_PriceUpperBound(t *testing.T) {
	got, err := Match(sampleDataset(), Query{Price: ptr(100.0)})
	require.NoError(t, err)

	ids := flightIDs(got)
	assert.Equal(t, []string{"BA200", "AA101"}, ids)
	for _, rec := range got {
		assert.LessOrEqual(t, rec.Price, 100.0)
	}
}

func TestMatch_Constraints(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"flight id", Query{FlightID: ptr("AA101")}, []string{"AA101"}},
		{"origin", Query{Origin: ptr("JFK")}, []string{"AA100", "AA101"}},
		{"destination", Query{Destination: ptr("LAX")}, []string{"AA100", "DL300"}},
		{"origin is case sensitive", Query{Origin: ptr("jfk")}, []string{}},
		{"departure lower bound inclusive", Query{DepartureDatetime: ptr("2024-05-02 09:30")}, []string{"BA200", "AA101"}},
		{"arrival upper bound inclusive", Query{ArrivalDatetime: ptr("2024-05-01 11:00")}, []string{"AA100", "DL300"}},
		{
			"combined constraints",
			Query{Origin: ptr("JFK"), DepartureDatetime: ptr("2024-05-01 00:00"), Price: ptr(200.0)},
			[]string{"AA101"},
		},
		{"no match", Query{FlightID: ptr("ZZ999")}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(sampleDataset(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, flightIDs(got))
		})
	}
}

func TestMatch_InvalidDatetimeConstraint(t *testing.T) {
	_, err := Match(sampleDataset(), Query{ArrivalDatetime: ptr("2024/05/01")})
	require.Error(t, err)

	var qerr *QueryInputError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, "arrival_datetime", qerr.Field)
	assert.Equal(t, "2024/05/01", qerr.Value)
}

func TestExecute_PreservesOrderAndIsolatesFailures(t *testing.T) {
	queries := []Query{
		{Destination: ptr("LAX")},
		{DepartureDatetime: ptr("not a date")},
		{},
	}

	results, err := Execute(sampleDataset(), queries)
	require.Error(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, []string{"AA100", "DL300"}, flightIDs(results[0].Matches))
	assert.Empty(t, results[0].Error)

	assert.Empty(t, results[1].Matches)
	assert.Contains(t, results[1].Error, "query 1")
	assert.Contains(t, results[1].Error, "departure_datetime")

	assert.Len(t, results[2].Matches, 4)
	assert.Equal(t, queries[2], results[2].Query)

	var qerr *QueryInputError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, 1, qerr.Index)
}

func TestExecute_NoQueries(t *testing.T) {
	results, err := Execute(sampleDataset(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func flightIDs(recs []FlightRecord) []string {
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.FlightID)
	}
	return ids
}

package core

import (
	"fmt"
	"strings"
)

// FieldCount is the number of delimited fields in a flight schedule line.
const FieldCount = 6

// FlightRecord is a validated flight schedule entry.
// Records are produced once by ValidateRow and never mutated afterwards.
type FlightRecord struct {
	FlightID          string  `json:"flight_id"`
	Origin            string  `json:"origin"`
	Destination       string  `json:"destination"`
	DepartureDatetime string  `json:"departure_datetime"`
	ArrivalDatetime   string  `json:"arrival_datetime"`
	Price             float64 `json:"price"`
}

// IssueKind distinguishes rejected lines from informational skips.
type IssueKind string

const (
	IssueDefect  IssueKind = "defect"
	IssueComment IssueKind = "comment"
)

// CommentReason is recorded for comment lines, which are skipped rather than rejected.
const CommentReason = "comment line, ignored for data parsing"

// ParseDefect describes a line that produced no FlightRecord.
type ParseDefect struct {
	File    string    `json:"file,omitempty"`
	Line    int       `json:"line"` // 1-based source line number
	Raw     string    `json:"raw"`
	Kind    IssueKind `json:"kind"`
	Reasons []string  `json:"reasons"`
}

// IsError reports whether the issue is a rejected line rather than a comment.
func (d ParseDefect) IsError() bool {
	return d.Kind != IssueComment
}

// String renders the defect as a report line:
//
//	Line 3: A,NY,LAX,... → invalid flight_id, invalid origin code
func (d ParseDefect) String() string {
	return fmt.Sprintf("Line %d: %s → %s", d.Line, d.Raw, strings.Join(d.Reasons, ", "))
}

// Query is a sparse filter over FlightRecords. Nil fields impose no constraint.
type Query struct {
	FlightID          *string  `json:"flight_id,omitempty" yaml:"flight_id,omitempty"`
	Origin            *string  `json:"origin,omitempty" yaml:"origin,omitempty"`
	Destination       *string  `json:"destination,omitempty" yaml:"destination,omitempty"`
	DepartureDatetime *string  `json:"departure_datetime,omitempty" yaml:"departure_datetime,omitempty"` // lower bound, inclusive
	ArrivalDatetime   *string  `json:"arrival_datetime,omitempty" yaml:"arrival_datetime,omitempty"`     // upper bound, inclusive
	Price             *float64 `json:"price,omitempty" yaml:"price,omitempty"`                           // upper bound, inclusive
}

// QueryResult pairs a query with its matches in dataset order.
type QueryResult struct {
	Query   Query          `json:"query"`
	Matches []FlightRecord `json:"matches"`
	Error   string         `json:"error,omitempty"`
}

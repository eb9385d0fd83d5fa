// Package core provides the business logic for flight schedule ingestion.
//
// This package is the heart of the flight parser, containing all domain logic
// independent of any file, CLI, or transport layer. It can be used by the
// command line tool, the HTTP server, or tests without modification.
//
// # Architecture
//
// The package is organized around two pure components:
//
//   - Validator: [ValidateRow] turns one split, trimmed line into a
//     [FlightRecord] or a [ValidationError] carrying every defect found.
//   - QueryEngine: [Match] and [Execute] filter a dataset of records with
//     sparse [Query] constraints, preserving dataset order.
//
// Both components share [ParseTimestamp], so timestamps are parsed with the
// same fixed layout everywhere.
//
// # Row Validation
//
// Every rule is evaluated, so a malformed row reports all of its problems:
//
//	rec, err := core.ValidateRow([]string{"AB12", "NYC", "LAX", "2024-01-01 08:00", "2024-01-01 10:00", "100"})
//	var verr *core.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Println(strings.Join(verr.Reasons, ", "))
//	}
//
// # Querying
//
// Equality constraints apply to flight_id, origin and destination. The
// departure constraint is an inclusive lower bound, the arrival and price
// constraints are inclusive upper bounds. A query whose datetime constraint
// cannot be parsed fails with a [QueryInputError]; in a batch the failure is
// recorded on that query's [QueryResult] and the other queries still run.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - ROW001-ROW006: Row defects (field count, codes, datetimes, price)
//   - QRY001-QRY002: Query errors (datetime constraint, malformed document)
//   - FILE001-FILE003: File errors (not found, unreadable, too large)
//   - RATE001: Request throttling
package core

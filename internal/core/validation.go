package core

// validation.go provides row-level validation for flight schedule lines.
//
// ValidateRow evaluates every rule independently and collects all defects in
// rule order, so a single bad line reports everything that is wrong with it.
// The only exception is the field count: a row without exactly six fields is
// rejected with a single defect and no other rule runs.

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Defect reasons, in the order the rules are evaluated.
const (
	ReasonMissingFields      = "missing required fields"
	ReasonInvalidFlightID    = "invalid flight_id"
	ReasonInvalidOrigin      = "invalid origin code"
	ReasonInvalidDestination = "invalid destination code"
	ReasonInvalidDeparture   = "invalid departure datetime"
	ReasonInvalidArrival     = "invalid arrival datetime"
	ReasonArrivalBeforeDep   = "arrival before departure"
	ReasonInvalidPrice       = "invalid price"
	ReasonNonPositivePrice   = "negative price value"
)

// ValidationError carries every defect found in a rejected row.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Reasons, ", ")
}

// ValidateRow validates one row of already split and trimmed fields.
// It returns the FlightRecord on success, or a *ValidationError listing the defects.
// ValidateRow performs no I/O and keeps no state.
func ValidateRow(fields []string) (FlightRecord, error) {
	if len(fields) != FieldCount {
		return FlightRecord{}, &ValidationError{Reasons: []string{ReasonMissingFields}}
	}

	flightID, origin, destination := fields[0], fields[1], fields[2]
	depRaw, arrRaw, priceRaw := fields[3], fields[4], fields[5]

	var reasons []string

	if !validFlightID(flightID) {
		reasons = append(reasons, ReasonInvalidFlightID)
	}
	if !validAirportCode(origin) {
		reasons = append(reasons, ReasonInvalidOrigin)
	}
	if !validAirportCode(destination) {
		reasons = append(reasons, ReasonInvalidDestination)
	}

	dep, depErr := ParseTimestamp(depRaw)
	if depErr != nil {
		reasons = append(reasons, ReasonInvalidDeparture)
	}
	arr, arrErr := ParseTimestamp(arrRaw)
	if arrErr != nil {
		reasons = append(reasons, ReasonInvalidArrival)
	}
	// Ordering is only checked when both sides parsed.
	if depErr == nil && arrErr == nil && !arr.After(dep) {
		reasons = append(reasons, ReasonArrivalBeforeDep)
	}

	price, err := ParsePrice(priceRaw)
	if err != nil {
		reasons = append(reasons, ReasonInvalidPrice)
	} else if price <= 0 {
		reasons = append(reasons, ReasonNonPositivePrice)
	}

	if len(reasons) > 0 {
		return FlightRecord{}, &ValidationError{Reasons: reasons}
	}

	return FlightRecord{
		FlightID:          flightID,
		Origin:            origin,
		Destination:       destination,
		DepartureDatetime: depRaw,
		ArrivalDatetime:   arrRaw,
		Price:             price,
	}, nil
}

// validFlightID checks length 2-8 with letters and digits only.
func validFlightID(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 2 || n > 8 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// validAirportCode checks for exactly three uppercase letters.
func validAirportCode(s string) bool {
	if utf8.RuneCountInString(s) != 3 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) || !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

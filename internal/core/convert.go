package core

// convert.go provides the parsing primitives shared by validation and querying.
//
// Timestamps use one fixed layout, minute precision and no timezone. Plain
// decimal prices go through pgtype.Numeric so the text is parsed exactly before
// being converted to a float for storage. Exponent forms such as 1e3 are
// parsed with strconv.

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// TimestampLayout is the fixed textual layout of every flight datetime (YYYY-MM-DD HH:MM).
const TimestampLayout = "2006-01-02 15:04"

// decimalRegex validates a plain decimal literal before it is scanned.
// Currency symbols and thousands separators are rejected.
var decimalRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// exponentRegex matches a decimal literal with an exponent, as in 2.5E2.
var exponentRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)[eE][+-]?\d+$`)

// ErrInvalidNumber is returned by ParsePrice for text that is not a decimal number.
var ErrInvalidNumber = errors.New("invalid number format")

// ParseTimestamp parses s with TimestampLayout.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid datetime %q (use YYYY-MM-DD HH:MM): %w", s, err)
	}
	return t, nil
}

// ToPgNumeric converts a decimal string to pgtype.Numeric.
// Returns invalid if the string is empty or not a plain decimal literal.
func ToPgNumeric(s string) pgtype.Numeric {
	s = strings.TrimSpace(s)
	if s == "" || !decimalRegex.MatchString(s) {
		return pgtype.Numeric{Valid: false}
	}

	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return n
}

// ParsePrice parses a price field into a float64. Plain decimals and
// exponent forms are accepted; NaN and infinities are not, since they cannot
// be stored as JSON numbers.
// The sign is not checked here; callers decide whether zero or negative values are allowed.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if exponentRegex.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) {
			return 0, ErrInvalidNumber
		}
		return f, nil
	}

	n := ToPgNumeric(s)
	if !n.Valid {
		return 0, ErrInvalidNumber
	}

	f, err := n.Float64Value()
	if err != nil || !f.Valid || math.IsInf(f.Float64, 0) || math.IsNaN(f.Float64) {
		return 0, ErrInvalidNumber
	}
	return f.Float64, nil
}

package core

// error_messages.go maps technical errors to user-friendly messages with codes
// for support reference.
//
// # Row Errors (ROW001-ROW099)
//
//	ROW001 - Missing fields: the line does not have exactly six fields
//	         Patterns: "missing required fields"
//	ROW002 - Flight id: not 2-8 letters and digits
//	         Patterns: "invalid flight_id"
//	ROW003 - Airport code: origin or destination is not three uppercase letters
//	         Patterns: "code"
//	ROW004 - Datetime: value does not match YYYY-MM-DD HH:MM
//	         Patterns: "datetime"
//	ROW005 - Ordering: arrival is not after departure
//	         Patterns: "arrival before departure"
//	ROW006 - Price: not a number, or not positive
//	         Patterns: "price"
//
// # Query Errors (QRY001-QRY099)
//
//	QRY001 - Query constraint: a datetime constraint could not be parsed
//	         *QueryInputError, pattern "query "
//	QRY002 - Query document: the query file is not a query object or list
//	         ErrQueryDocument, pattern "query document"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Not found:  ErrNotFound, fs.ErrNotExist, "no such file"
//	FILE002 - Unreadable: ErrFileAccess, "file access"
//	FILE003 - Too large:  ErrTooLarge, "too large"
//
// # Rate Limiting
//
//	RATE001 - "rate limit"
//
// MapError looks at typed errors and sentinels first. A *ValidationError is
// mapped by its first reason. Anything else falls back to the pattern table,
// matched case-insensitively with strings.Contains where the first match wins.
// File and rate patterns come first because row keywords such as "price" can
// appear in file paths.

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "File not found",
			Action:  "Check the path and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "file access",
		msg: UserMessage{
			Message: "File could not be read",
			Action:  "Check file permissions",
			Code:    "FILE002",
		},
	},
	{
		pattern: "too large",
		msg: UserMessage{
			Message: "Input exceeds the size limit",
			Action:  "Split the file into smaller chunks or shorten long lines",
			Code:    "FILE003",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	// Row defects
	{
		pattern: ReasonMissingFields,
		msg: UserMessage{
			Message: "Line does not have exactly six fields",
			Action:  "Use flight_id,origin,destination,departure,arrival,price",
			Code:    "ROW001",
		},
	},
	{
		pattern: ReasonInvalidFlightID,
		msg: UserMessage{
			Message: "Flight id must be 2-8 letters or digits",
			Action:  "Remove spaces and punctuation from the flight id",
			Code:    "ROW002",
		},
	},
	{
		pattern: ReasonArrivalBeforeDep,
		msg: UserMessage{
			Message: "Arrival must be after departure",
			Action:  "Check the order of the datetime columns",
			Code:    "ROW005",
		},
	},
	// Query errors come before the generic datetime pattern.
	{
		pattern: "query document",
		msg: UserMessage{
			Message: "Query document is not a query object or a list of queries",
			Action:  "Provide a JSON or YAML object, or a list of objects",
			Code:    "QRY002",
		},
	},
	{
		pattern: "query ",
		msg: UserMessage{
			Message: "A query constraint could not be parsed",
			Action:  "Use YYYY-MM-DD HH:MM for departure_datetime and arrival_datetime",
			Code:    "QRY001",
		},
	},
	{
		pattern: "datetime",
		msg: UserMessage{
			Message: "Invalid datetime detected",
			Action:  "Use YYYY-MM-DD HH:MM, for example 2024-01-15 08:30",
			Code:    "ROW004",
		},
	},
	{
		pattern: " code",
		msg: UserMessage{
			Message: "Airport codes must be three uppercase letters",
			Action:  "Use IATA codes such as JFK or LAX",
			Code:    "ROW003",
		},
	},
	{
		pattern: "price",
		msg: UserMessage{
			Message: "Price must be a positive number",
			Action:  "Use a plain decimal such as 129.99",
			Code:    "ROW006",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the logs",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns the ERR000 fallback when nothing matches and an empty message for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var verr *ValidationError
	var qerr *QueryInputError
	switch {
	case errors.As(err, &verr) && len(verr.Reasons) > 0:
		return matchPattern(verr.Reasons[0])
	case errors.As(err, &qerr):
		return messageFor("QRY001")
	case errors.Is(err, ErrTooLarge):
		return messageFor("FILE003")
	case errors.Is(err, ErrQueryDocument):
		return messageFor("QRY002")
	case errors.Is(err, ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return messageFor("FILE001")
	case errors.Is(err, ErrFileAccess):
		return messageFor("FILE002")
	}

	return matchPattern(err.Error())
}

func matchPattern(text string) UserMessage {
	text = strings.ToLower(text)
	for _, ep := range errorPatterns {
		if strings.Contains(text, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

func messageFor(code string) UserMessage {
	for _, ep := range errorPatterns {
		if ep.msg.Code == code {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

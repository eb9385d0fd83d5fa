package web

// errors.go provides unified error responses for the API.
//
// Every error is logged server-side with the request ID and returned to the
// client as an ErrorResponse whose Message, Action and Code come from
// core.MapError.

import (
	"net/http"

	"github.com/JonMunkholm/flightparser/internal/core"
	"github.com/JonMunkholm/flightparser/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Error carries the technical detail, Message and Action the user-facing text.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// newErrorResponse maps err to its user message.
func newErrorResponse(err error) ErrorResponse {
	msg := core.MapError(err)
	return ErrorResponse{
		Error:   err.Error(),
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
}

// respondError logs err and writes it as an ErrorResponse.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	resp := newErrorResponse(err)

	logger := logging.FromContext(r.Context())
	level := logger.Warn
	if statusCode >= http.StatusInternalServerError {
		level = logger.Error
	}
	level("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", resp.Code,
	)

	writeJSON(w, r, statusCode, resp)
}

package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/JonMunkholm/flightparser/internal/core"
	"github.com/JonMunkholm/flightparser/internal/logging"
	"github.com/JonMunkholm/flightparser/internal/store"
)

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

// ValidateResponse is returned by POST /api/validate.
type ValidateResponse struct {
	Records []core.FlightRecord `json:"records"`
	Issues  []core.ParseDefect  `json:"issues"`
	Lines   int                 `json:"lines"`
}

// QueryResponse is returned by POST /api/query. Error and Code are set when
// at least one query could not be run.
type QueryResponse struct {
	Results []core.QueryResult `json:"results"`
	Error   string             `json:"error,omitempty"`
	Code    string             `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Records: len(s.dataset)})
}

// handleListFlights returns the dataset, optionally filtered by query-string
// constraints that use the same names as a query document.
func (s *Server) handleListFlights(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromParams(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	matches, err := core.Match(s.dataset, q)
	s.metrics.ObserveQuery(err != nil, len(matches))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, r, http.StatusOK, matches)
}

// handleValidate parses a CSV body and returns accepted records and issues.
// Nothing is added to the served dataset.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)

	result, err := s.parser.ParseReader(r.Context(), "", body)
	if err != nil {
		respondBodyError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("validated request body",
		"lines", result.Lines,
		"records", len(result.Records),
		"rejected", result.Rejected(),
	)

	writeJSON(w, r, http.StatusOK, ValidateResponse{
		Records: result.Records,
		Issues:  result.Issues,
		Lines:   result.Lines,
	})
}

// handleQuery runs a JSON (or YAML, by Content-Type) query document against
// the dataset. Any failed query turns the response into a 422 that still
// carries every result.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)

	queries, err := decodeQueryBody(r, body)
	if err != nil {
		respondBodyError(w, r, err)
		return
	}

	results, err := core.Execute(s.dataset, queries)
	for _, res := range results {
		s.metrics.ObserveQuery(res.Error != "", len(res.Matches))
	}

	resp := QueryResponse{Results: results}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		resp.Code = core.MapError(err).Code
		status = http.StatusUnprocessableEntity
		logging.FromContext(r.Context()).Warn("query batch had failures", "queries", len(queries), "error", err)
	}

	writeJSON(w, r, status, resp)
}

func decodeQueryBody(r *http.Request, body io.Reader) ([]core.Query, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		return store.DecodeQueriesYAML(data)
	default:
		return store.DecodeQueriesJSON(body)
	}
}

// queryFromParams builds a Query from URL parameters. Only parameters that
// are present become constraints.
func queryFromParams(r *http.Request) (core.Query, error) {
	var q core.Query
	params := r.URL.Query()

	str := func(name string) *string {
		if !params.Has(name) {
			return nil
		}
		v := params.Get(name)
		return &v
	}

	q.FlightID = str("flight_id")
	q.Origin = str("origin")
	q.Destination = str("destination")
	q.DepartureDatetime = str("departure_datetime")
	q.ArrivalDatetime = str("arrival_datetime")

	if params.Has("price") {
		v := params.Get("price")
		price, err := core.ParsePrice(v)
		if err != nil {
			return core.Query{}, &core.QueryInputError{Field: "price", Value: v, Err: err}
		}
		q.Price = &price
	}

	return q, nil
}

// respondBodyError reports a failure while reading a request body. Size
// limit failures are tagged with core.ErrTooLarge so they map to FILE003.
func respondBodyError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	status := http.StatusBadRequest
	switch {
	case errors.As(err, &tooLarge):
		err = fmt.Errorf("%w: %w", core.ErrTooLarge, err)
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	respondError(w, r, err, status)
}

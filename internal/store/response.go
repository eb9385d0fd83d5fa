package store

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/flightparser/internal/core"
)

// responseTimeLayout formats the timestamp embedded in response file names.
const responseTimeLayout = "20060102_1504"

// Identity names the owner of a query response file.
type Identity struct {
	ID        string
	FirstName string
	LastName  string
}

// ResponseFileName returns response_<id>_<first>_<last>_<YYYYMMDD_HHMM>.json.
func ResponseFileName(id Identity, now time.Time) string {
	return fmt.Sprintf("response_%s_%s_%s_%s.json", id.ID, id.FirstName, id.LastName, now.Format(responseTimeLayout))
}

// WriteResponse writes results into dir under ResponseFileName and returns the path.
func WriteResponse(dir string, id Identity, now time.Time, results []core.QueryResult) (string, error) {
	if results == nil {
		results = []core.QueryResult{}
	}

	path := filepath.Join(dir, ResponseFileName(id, now))
	if err := writeJSON(path, results); err != nil {
		return "", err
	}
	return path, nil
}

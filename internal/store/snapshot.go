// Package store reads and writes the flat files around the core: dataset
// snapshots, defect reports, query documents and query responses.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/flightparser/internal/core"
)

// ErrNotFound is returned when a snapshot or query file does not exist.
// It wraps core.ErrFileAccess.
var ErrNotFound = core.ErrNotFound

// SaveSnapshot writes records to path as an indented JSON array, creating
// parent directories as needed. An empty dataset is written as [].
func SaveSnapshot(path string, records []core.FlightRecord) error {
	if records == nil {
		records = []core.FlightRecord{}
	}
	return writeJSON(path, records)
}

// LoadSnapshot reads a dataset written by SaveSnapshot.
func LoadSnapshot(path string) ([]core.FlightRecord, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var records []core.FlightRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if records == nil {
		records = []core.FlightRecord{}
	}
	return records, nil
}

func writeJSON(path string, v any) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrFileAccess, path, err)
	}
	return data, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

package store

import (
	"bufio"
	"fmt"
	"os"

	"github.com/JonMunkholm/flightparser/internal/core"
)

// WriteReport writes one line per issue in the form
//
//	Line <n>: <raw line> → <reasons joined by ", ">
//
// Comment lines are included with their informational reason. The file is
// always created, so an empty report means a clean run.
func WriteReport(path string, issues []core.ParseDefect) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, issue := range issues {
		if _, err := fmt.Fprintln(w, issue.String()); err != nil {
			return fmt.Errorf("write report %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return f.Close()
}

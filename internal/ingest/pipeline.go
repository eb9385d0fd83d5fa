// Package ingest turns flight schedule files into validated records and
// per-line diagnostics.
//
// Lines are split on commas without any quoting rules: a comma can never be
// part of a field. Blank lines are ignored, comment lines (first non-space
// character '#') are recorded as informational issues, and every other line
// goes through core.ValidateRow.
package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/JonMunkholm/flightparser/internal/core"
	"github.com/JonMunkholm/flightparser/internal/metrics"
)

// Delimiter separates fields on a line.
const Delimiter = ","

// CommentMarker starts a comment line.
const CommentMarker = "#"

// ContextCheckInterval is how often (in lines) to check for context cancellation.
var ContextCheckInterval = 100

// ErrFileAccess marks a file that does not exist or cannot be read.
var ErrFileAccess = core.ErrFileAccess

// LineKind classifies a raw line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineData
)

// FileResult holds the outcome of parsing one file, in line order.
type FileResult struct {
	File    string              `json:"file"`
	Records []core.FlightRecord `json:"records"`
	Issues  []core.ParseDefect  `json:"issues"`
	Lines   int                 `json:"lines"`
	Bytes   int64               `json:"bytes"` // raw bytes read, BOM included
}

// Rejected returns the number of issues that are real defects.
func (r FileResult) Rejected() int {
	n := 0
	for _, d := range r.Issues {
		if d.IsError() {
			n++
		}
	}
	return n
}

// FileFailure records a file in a batch that could not be processed.
type FileFailure struct {
	File string
	Err  error
}

// BatchResult aggregates a directory: records and issues concatenated in file order.
type BatchResult struct {
	Files    []string
	Records  []core.FlightRecord
	Issues   []core.ParseDefect
	Failures []FileFailure
}

// SplitLine classifies line and, for data lines, splits and trims its fields.
func SplitLine(line string) ([]string, LineKind) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, LineBlank
	}
	if strings.HasPrefix(trimmed, CommentMarker) {
		return nil, LineComment
	}

	parts := strings.Split(trimmed, Delimiter)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts, LineData
}

// Parser reads flight schedule files. The zero value is usable; Metrics and
// Logger are optional.
type Parser struct {
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// MaxLineBytes overrides the package default when positive.
	MaxLineBytes int
}

// NewParser creates a parser that reports to m.
func NewParser(m *metrics.Metrics, logger *slog.Logger) *Parser {
	return &Parser{Metrics: m, Logger: logger}
}

func (p *Parser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// ParseReader parses every line of r. name labels issues and errors and may
// be empty for unnamed input.
// Row defects never fail the parse; only read errors and cancellation do.
func (p *Parser) ParseReader(ctx context.Context, name string, r io.Reader) (FileResult, error) {
	result := FileResult{
		File:    name,
		Records: []core.FlightRecord{},
		Issues:  []core.ParseDefect{},
	}

	label := name
	if label == "" {
		label = "input"
	}

	lines := newLineReader(r, p.MaxLineBytes)
	lineNum := 0

	for {
		line, ok := lines.Next()
		if !ok {
			break
		}
		lineNum++

		if lineNum%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return result, fmt.Errorf("parse %s cancelled at line %d: %w", label, lineNum, err)
			}
		}

		trimmed := strings.TrimSpace(line)
		fields, kind := SplitLine(line)

		switch kind {
		case LineBlank:
			continue
		case LineComment:
			result.Issues = append(result.Issues, core.ParseDefect{
				File:    name,
				Line:    lineNum,
				Raw:     trimmed,
				Kind:    core.IssueComment,
				Reasons: []string{core.CommentReason},
			})
			p.Metrics.ObserveRow(metrics.RowComment)
			continue
		}

		rec, err := core.ValidateRow(fields)
		if err != nil {
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				return result, fmt.Errorf("line %d: %w", lineNum, err)
			}
			result.Issues = append(result.Issues, core.ParseDefect{
				File:    name,
				Line:    lineNum,
				Raw:     trimmed,
				Kind:    core.IssueDefect,
				Reasons: verr.Reasons,
			})
			p.Metrics.ObserveRow(metrics.RowRejected)
			continue
		}

		result.Records = append(result.Records, rec)
		p.Metrics.ObserveRow(metrics.RowValid)
	}

	result.Lines = lineNum
	result.Bytes = lines.BytesRead()
	if err := lines.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return result, fmt.Errorf("reading %s: %w: %w", label, core.ErrTooLarge, err)
		}
		return result, fmt.Errorf("reading %s: %w", label, err)
	}
	return result, nil
}

// ParseFile opens and parses one file. A missing, unreadable or directory
// path returns an error wrapping ErrFileAccess.
func (p *Parser) ParseFile(ctx context.Context, path string) (FileResult, error) {
	start := time.Now()

	info, err := os.Stat(path)
	if err != nil {
		p.Metrics.ObserveFile(metrics.StatusFailed, 0, time.Since(start))
		return FileResult{}, fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	if info.IsDir() {
		p.Metrics.ObserveFile(metrics.StatusFailed, 0, time.Since(start))
		return FileResult{}, fmt.Errorf("%w: %s is a directory", ErrFileAccess, path)
	}

	f, err := os.Open(path)
	if err != nil {
		p.Metrics.ObserveFile(metrics.StatusFailed, 0, time.Since(start))
		return FileResult{}, fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	defer f.Close()

	result, err := p.ParseReader(ctx, path, f)
	if err != nil {
		p.Metrics.ObserveFile(metrics.StatusFailed, info.Size(), time.Since(start))
		return FileResult{}, err
	}

	p.Metrics.ObserveFile(metrics.StatusOK, result.Bytes, time.Since(start))
	p.logger().Debug("file parsed",
		"file", path,
		"lines", result.Lines,
		"records", len(result.Records),
		"rejected", result.Rejected(),
	)
	return result, nil
}

// ParseDir parses every *.csv file directly inside dir (extension matched
// case-insensitively, sorted by name). A file that fails is recorded in
// Failures and the remaining files are still parsed. Only a failure to list
// dir, or cancellation, is returned as an error.
func (p *Parser) ParseDir(ctx context.Context, dir string) (BatchResult, error) {
	batch := BatchResult{
		Records: []core.FlightRecord{},
		Issues:  []core.ParseDefect{},
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return batch, fmt.Errorf("%w: reading directory %s: %w", ErrFileAccess, dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return batch, fmt.Errorf("operation cancelled: %w", err)
		}

		path := filepath.Join(dir, name)
		p.logger().Info("parsing file", "file", path)

		res, err := p.ParseFile(ctx, path)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return batch, err
			}
			p.logger().Warn("file skipped", "file", path, "error", err)
			batch.Failures = append(batch.Failures, FileFailure{File: path, Err: err})
			continue
		}

		batch.Files = append(batch.Files, path)
		batch.Records = append(batch.Records, res.Records...)
		batch.Issues = append(batch.Issues, res.Issues...)
	}

	return batch, nil
}

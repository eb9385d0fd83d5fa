package cmd

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/flightparser/internal/core"
	"github.com/JonMunkholm/flightparser/internal/logging"
	"github.com/JonMunkholm/flightparser/internal/store"
)

func runRoot(cmd *cobra.Command, opts *options) error {
	ctx, a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	logger := logging.FromContext(ctx)

	var records []core.FlightRecord
	switch {
	case opts.jsonDB != "":
		records, err = store.LoadSnapshot(opts.jsonDB)
		if err != nil {
			return fmt.Errorf("load database: %w", err)
		}
		fmt.Fprintln(a.out, "Loaded existing JSON database:", opts.jsonDB)
		logger.Info("database loaded", "path", opts.jsonDB, "records", len(records))

	case opts.input != "":
		fmt.Fprintln(a.out, "Parsing CSV file:", opts.input)
		res, err := a.parser.ParseFile(ctx, opts.input)
		if err != nil {
			return err
		}
		records = res.Records
		if err := a.save(ctx, opts.output, res.Records, res.Issues); err != nil {
			return err
		}

	case opts.dir != "":
		fmt.Fprintln(a.out, "Parsing CSV files in folder:", opts.dir)
		batch, err := a.parser.ParseDir(ctx, opts.dir)
		if err != nil {
			return err
		}
		for _, f := range batch.Failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %s: %s\n", f.File, core.FormatUserError(f.Err))
		}
		records = batch.Records
		if err := a.save(ctx, opts.output, batch.Records, batch.Issues); err != nil {
			return err
		}

	default:
		return errNoInput
	}

	if opts.query != "" {
		err = a.runQueries(ctx, records, opts.query)
	}

	if opts.metricsFile != "" {
		if werr := prometheus.WriteToTextfile(opts.metricsFile, a.metrics.Registry()); werr != nil {
			logger.Warn("metrics file not written", "path", opts.metricsFile, "error", werr)
		}
	}
	return err
}

// save writes the database and the error report.
func (a *app) save(ctx context.Context, dbOverride string, records []core.FlightRecord, issues []core.ParseDefect) error {
	dbPath := a.cfg.Output.DBPath
	if dbOverride != "" {
		dbPath = dbOverride
	}
	errorsPath := a.cfg.Output.ErrorsPath

	if err := store.SaveSnapshot(dbPath, records); err != nil {
		return fmt.Errorf("save database: %w", err)
	}
	if err := store.WriteReport(errorsPath, issues); err != nil {
		return fmt.Errorf("save error report: %w", err)
	}

	rejected := 0
	for _, issue := range issues {
		if issue.IsError() {
			rejected++
		}
	}
	logging.FromContext(ctx).Info("ingest complete",
		"records", len(records),
		"rejected", rejected,
		"comments", len(issues)-rejected,
		"db", dbPath,
		"errors", errorsPath,
	)

	fmt.Fprintln(a.out, "Saved valid flights to:", dbPath)
	fmt.Fprintln(a.out, "Saved errors to", errorsPath)
	return nil
}

// runQueries executes the query file against records and writes the
// response document. The response is written even when some queries fail;
// the failures are then returned.
func (a *app) runQueries(ctx context.Context, records []core.FlightRecord, path string) error {
	queries, err := store.LoadQueries(path)
	if err != nil {
		return fmt.Errorf("load queries: %w", err)
	}

	results, execErr := core.Execute(records, queries)
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
		a.metrics.ObserveQuery(r.Error != "", len(r.Matches))
	}

	id := store.Identity{
		ID:        a.cfg.Identity.ID,
		FirstName: a.cfg.Identity.FirstName,
		LastName:  a.cfg.Identity.LastName,
	}
	out, err := store.WriteResponse(a.cfg.Output.ResponseDir, id, a.now(), results)
	if err != nil {
		return fmt.Errorf("save query response: %w", err)
	}

	logging.FromContext(ctx).Info("queries executed",
		"queries", len(queries),
		"failed", failed,
		"response", out,
	)
	fmt.Fprintln(a.out, "Saved query response to:", out)

	if execErr != nil {
		return fmt.Errorf("%d of %d queries failed: %w", failed, len(results), execErr)
	}
	return nil
}

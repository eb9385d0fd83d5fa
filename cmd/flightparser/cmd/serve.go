package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/flightparser/internal/core"
	"github.com/JonMunkholm/flightparser/internal/logging"
	"github.com/JonMunkholm/flightparser/internal/store"
	"github.com/JonMunkholm/flightparser/internal/web"
)

func newServeCmd(opts *options) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API over a saved JSON database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = a.cfg.Output.DBPath
			}
			return a.serve(ctx, dbPath)
		},
	}

	cmd.Flags().StringVarP(&dbPath, "jsondb", "j", "", "database to serve (default: output.db_path)")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured timeout.
func (a *app) serve(ctx context.Context, dbPath string) error {
	logger := logging.FromContext(ctx)

	records, err := store.LoadSnapshot(dbPath)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("load database: %w", err)
		}
		logger.Warn("database not found, serving an empty dataset", "path", dbPath)
		records = []core.FlightRecord{}
	}

	logger.Info("configuration loaded",
		"addr", a.cfg.Server.Addr(),
		"records", len(records),
		"rate_limit_enabled", a.cfg.Rate.Enabled,
		"api_key_required", a.cfg.Security.RequireAPIKey,
	)

	server := web.NewServer(records, a.parser, a.metrics, a.cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info("server stopped")
	return nil
}

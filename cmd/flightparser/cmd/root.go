package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/flightparser/internal/config"
	"github.com/JonMunkholm/flightparser/internal/core"
	"github.com/JonMunkholm/flightparser/internal/ingest"
	"github.com/JonMunkholm/flightparser/internal/logging"
	"github.com/JonMunkholm/flightparser/internal/metrics"
)

var errNoInput = errors.New("no input provided: use -i FILE, -d DIR or -j DB")

// options holds every flag value of one command tree.
type options struct {
	cfgFile     string
	verbose     bool
	input       string
	dir         string
	output      string
	jsonDB      string
	query       string
	metricsFile string
}

// NewRootCmd builds the flightparser command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "flightparser",
		Short: "Validate flight schedule CSV files and query the results",
		Long: `flightparser validates flight schedule CSV files, saves the accepted
flights as a JSON database with a per-line error report, and runs
queries against a database.

Modes (first match wins):
  -j DB [-q FILE]   load a saved database, optionally run queries
  -i FILE           parse one CSV file
  -d DIR            parse every .csv file in a directory`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "TOML config file")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	f := root.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "parse a single CSV file")
	f.StringVarP(&opts.dir, "dir", "d", "", "parse all .csv files in a directory")
	f.StringVarP(&opts.output, "output", "o", "", "database output path (default: output.db_path)")
	f.StringVarP(&opts.jsonDB, "jsondb", "j", "", "load an existing JSON database")
	f.StringVarP(&opts.query, "query", "q", "", "JSON or YAML query file to run")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format")

	root.AddCommand(newServeCmd(opts))
	return root
}

// Execute runs the command tree with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if msg := core.MapError(err); msg.Code != "ERR000" {
		fmt.Fprintf(w, "  %s\n", core.FormatUserError(err))
	}
}

// app is the wiring shared by every command.
type app struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	parser  *ingest.Parser
	out     io.Writer
	now     func() time.Time
}

// newApp loads configuration, sets up logging and tags ctx with a fresh run ID.
func newApp(cmd *cobra.Command, opts *options) (context.Context, *app, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Logging.Level
	if opts.verbose {
		level = "debug"
	}
	logging.Setup(level, cfg.Logging.Format)

	ctx := logging.WithRunID(cmd.Context(), uuid.NewString())
	logger := logging.FromContext(ctx)
	logger.Debug("configuration loaded", "config", cfg.String())

	m := metrics.New(cfg.Metrics.Namespace)
	parser := ingest.NewParser(m, logger)
	parser.MaxLineBytes = cfg.Ingest.MaxLineBytes

	return ctx, &app{
		cfg:     cfg,
		metrics: m,
		parser:  parser,
		out:     cmd.OutOrStdout(),
		now:     time.Now,
	}, nil
}

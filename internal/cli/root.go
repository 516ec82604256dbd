package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/teamcutter/xtract/internal/cache"
	"github.com/teamcutter/xtract/internal/config"
	"github.com/teamcutter/xtract/internal/domain"
	"github.com/teamcutter/xtract/internal/extractor"
	"github.com/teamcutter/xtract/internal/fetcher"
	"github.com/teamcutter/xtract/internal/logging"
	"github.com/teamcutter/xtract/internal/manager"
	"github.com/teamcutter/xtract/internal/state"
)

type globalOptions struct {
	configPath string
	verbose    bool
	logJSON    bool
	noHistory  bool
}

var opts globalOptions

func Execute() error {
	rootCmd := &cobra.Command{
		Use:          "xtract",
		Short:        "Detect, extract and normalize zip and tar archives",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default ~/.xtract/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print progress messages")
	rootCmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Report progress as structured JSON logs on stderr")
	rootCmd.PersistentFlags().BoolVar(&opts.noHistory, "no-history", false, "Do not record extractions")

	rootCmd.AddCommand(
		newExtractCmd(),
		newBatchCmd(),
		newDetectCmd(),
		newHistoryCmd(),
		newClearCmd(),
		newVersionCmd(),
	)
	return rootCmd.Execute()
}

type app struct {
	cfg       *config.Config
	mgr       *manager.Manager
	extractor *extractor.Extractor
	cache     *cache.DiskCache
	history   *state.SQLiteHistory
	logger    *logging.Logger
}

func newApp() (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	fs := afero.NewOsFs()

	a := &app{cfg: cfg}

	var reporter domain.Reporter
	if opts.logJSON {
		a.logger, err = logging.NewLogger(cfg.LogLevel, true)
		if err != nil {
			return nil, err
		}
		reporter = logging.NewReporter(a.logger)
	} else {
		reporter = newConsoleReporter(os.Stderr, opts.verbose)
	}

	a.cache, err = cache.New(fs, cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	a.extractor = extractor.New(fs, reporter, cfg.StagingDir)

	var history domain.History
	if !opts.noHistory {
		a.history, err = state.NewSQLite(cfg.HistoryFile)
		if err != nil {
			return nil, err
		}
		history = a.history
	}

	a.mgr = manager.New(
		fetcher.New(fs, cfg.CacheDir, cfg.FetchTimeout(), opts.logJSON),
		a.cache,
		a.extractor,
		history,
		reporter,
	)

	return a, nil
}

func (a *app) Close() {
	if a.history != nil {
		a.history.Close()
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}

// spinner is disabled while progress messages are printed.
func (a *app) spinner(ctx context.Context, desc string) func() {
	if opts.verbose || opts.logJSON {
		return func() {}
	}
	return withSpinner(ctx, desc)
}

func elapsed(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

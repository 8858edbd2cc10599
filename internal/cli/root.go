package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MarketAnalyst/internal/calculator"
	"MarketAnalyst/internal/collector"
	"MarketAnalyst/internal/config"
	"MarketAnalyst/internal/logger"
	"MarketAnalyst/internal/recorder"
)

// Version is set at build time with -ldflags "-X MarketAnalyst/internal/cli.Version=...".
var Version = "dev"

// app carries state shared by every subcommand after flag parsing.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "analyst",
		Short:         "MarketAnalyst: technical indicators, reports and an LLM analyst",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "configs/config.yaml", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if v := os.Getenv("CONFIG_PATH"); v != "" && !cmd.Flags().Changed("config") {
			a.configPath = v
		}
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		if a.logLevel != "" {
			cfg.Log.Level = a.logLevel
		}
		if !isConfigCmd(cmd) {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
		}
		l, err := logger.New(cfg.Log.Level)
		if err != nil {
			return err
		}
		a.cfg = cfg
		a.logger = l
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a.logger != nil {
			_ = a.logger.Sync()
		}
	}

	cmd.AddCommand(
		newCalcCmd(a),
		newFetchCmd(a),
		newReportCmd(a),
		newAnalyzeCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
		newConfigCmd(a),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "analyst %s\n", Version)
		},
	})

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// isConfigCmd reports whether cmd is "config" or one of its children, which
// must run even when the loaded file does not validate.
func isConfigCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

func (a *app) calculator() *calculator.Calculator {
	return calculator.New(calculator.Options{
		TailRows: a.cfg.Indicators.TailRows,
		Extended: a.cfg.Indicators.Extended,
	})
}

func (a *app) fetcher() collector.Fetcher {
	var f collector.Fetcher
	switch strings.ToLower(a.cfg.DataSource.Provider) {
	case "rest":
		f = collector.NewRESTFetcher(a.cfg.DataSource.BaseURL, a.cfg.DataSource.APIKey, a.cfg.Proxy)
	case "mock":
		f = &collector.MockFetcher{Price: 100}
	default:
		f = collector.NewYahooFetcher(a.cfg.Proxy)
	}
	a.logger.Info("data source selected", zap.String("provider", f.Name()))
	return f
}

func (a *app) collector() *collector.Collector {
	return collector.NewCollector(a.fetcher(), a.calculator(),
		a.cfg.DataSource.LookbackDays, a.cfg.DataSource.Interval, a.logger)
}

// recorder opens SQLite, falling back to the no-op recorder on failure.
func (a *app) recorder() recorder.Recorder {
	if a.cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath, a.logger)
	if err != nil {
		a.logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		return recorder.NewNoopRecorder()
	}
	return sr
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iwvelando/mortgage-calc/internal/config"
	"github.com/iwvelando/mortgage-calc/internal/report"
	"github.com/iwvelando/mortgage-calc/internal/server"
	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/output"
	"github.com/iwvelando/mortgage-calc/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

type rootOptions struct {
	configPath   string
	logLevel     string
	outputFormat string
}

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "mortgage-calc",
		Short:         "Fixed-rate annuity loan calculator",
		Long:          "Computes monthly payments, amortization schedules and payoff dates for a single loan or a purchase financed by a subsidized loan and a bank loan.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv")

	root.AddCommand(newStandardCommand(opts))
	root.AddCommand(newCombinedCommand(opts))
	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newVersionCommand())
	return root
}

func newStandardCommand(opts *rootOptions) *cobra.Command {
	var principal, rate float64
	var months int

	cmd := &cobra.Command{
		Use:   "standard",
		Short: "Compute the payment and schedule of a single loan",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, outputFormat, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			flags := cmd.Flags()
			if flags.Changed("principal") {
				conf.Standard.Principal = principal
			}
			if flags.Changed("rate") {
				conf.Standard.AnnualRate = rate
			}
			if flags.Changed("months") {
				conf.Standard.TermMonths = months
			}
			logWarnings(logger, conf.ValidateConfiguration())

			result, err := report.Standard(logger, conf.Standard)
			if err != nil {
				return fmt.Errorf("failed to compute standard loan: %w", err)
			}
			return output.WriteStandard(cmd.OutOrStdout(), outputFormat, result)
		},
	}

	cmd.Flags().Float64Var(&principal, "principal", constants.DefaultPrincipal, "loan amount")
	cmd.Flags().Float64Var(&rate, "rate", constants.DefaultAnnualRatePercent, "nominal annual interest rate in percent")
	cmd.Flags().IntVar(&months, "months", constants.DefaultTermMonths, "loan term in months")
	return cmd
}

func newCombinedCommand(opts *rootOptions) *cobra.Command {
	var propertyValue, liquidity, subsidizedAmount float64
	var startYear int
	var dateStrategy string

	cmd := &cobra.Command{
		Use:   "combined",
		Short: "Compute a purchase financed by a subsidized loan and a bank loan",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, outputFormat, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			flags := cmd.Flags()
			if flags.Changed("property-value") {
				conf.Combined.PropertyValue = propertyValue
			}
			if flags.Changed("liquidity") {
				conf.Combined.Liquidity = liquidity
			}
			if flags.Changed("subsidized-amount") {
				conf.Combined.Subsidized.Amount = subsidizedAmount
			}
			if flags.Changed("start-year") {
				conf.Combined.StartYear = startYear
			}
			if flags.Changed("date-strategy") {
				conf.Output.DateStrategy = dateStrategy
			}
			logWarnings(logger, conf.ValidateConfiguration())

			strategy, err := conf.DateStrategy()
			if err != nil {
				return err
			}

			result, err := report.Combined(logger, conf.Combined, time.Now(), strategy)
			if err != nil {
				return fmt.Errorf("failed to compute combined loans: %w", err)
			}
			return output.WriteCombined(cmd.OutOrStdout(), outputFormat, result)
		},
	}

	cmd.Flags().Float64Var(&propertyValue, "property-value", constants.DefaultPropertyValue, "purchase price of the property")
	cmd.Flags().Float64Var(&liquidity, "liquidity", constants.DefaultLiquidity, "own funds used as down payment")
	cmd.Flags().Float64Var(&subsidizedAmount, "subsidized-amount", constants.DefaultSubsidizedAmount, "subsidized loan amount")
	cmd.Flags().IntVar(&startYear, "start-year", 0, "year the loans start (default: current year)")
	cmd.Flags().StringVar(&dateStrategy, "date-strategy", "", "payoff date arithmetic: approximate, calendar")
	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var serverConfigPath, address, maxUploadSize string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}
			if maxUploadSize != "" {
				size, err := server.ParseSize(maxUploadSize)
				if err != nil {
					return err
				}
				cfg.SetUploadSizeBytes(size)
			}

			logger, err := initializeLogger(cfg.Logging, opts.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, logger, cfg)
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	cmd.Flags().StringVar(&maxUploadSize, "max-upload-size", "", "maximum request body size override (e.g. 256K)")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mortgage-calc %s (commit %s)\n", version, commit)
		},
	}
}

// serve runs the API until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, logger *zap.Logger, cfg *server.Config) error {
	httpServer := &http.Server{
		Addr:         cfg.Address,
		Handler:      server.NewHandler(logger, cfg.UploadSizeBytes(), version),
		ReadTimeout:  cfg.ReadTimeoutDuration(),
		WriteTimeout: cfg.WriteTimeoutDuration(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			zap.String("op", "main.serve"),
			zap.String("address", cfg.Address),
			zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server", zap.String("op", "main.serve"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return <-errCh
}

// setup loads the configuration, builds the logger and resolves the output
// format shared by the calculator commands. A missing default config file
// falls back to the built-in defaults.
func setup(cmd *cobra.Command, opts *rootOptions) (*config.Configuration, *zap.Logger, string, error) {
	conf, err := loadConfiguration(opts.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, nil, "", err
	}

	logger, err := initializeLogger(conf.Logging, opts.logLevel)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to initialize logger: %w", err)
	}

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return nil, nil, "", err
	}

	return conf, logger, outputFormat, nil
}

func loadConfiguration(path string, explicit bool) (*config.Configuration, error) {
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.Defaults(), nil
		}
	}

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", path, err)
	}
	return conf, nil
}

func logWarnings(logger *zap.Logger, warnings []string) {
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

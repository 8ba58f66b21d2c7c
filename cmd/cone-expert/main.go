package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iwvelando/cone-expert/internal/calculator"
	"github.com/iwvelando/cone-expert/internal/config"
	"github.com/iwvelando/cone-expert/pkg/constants"
	"github.com/iwvelando/cone-expert/pkg/i18n"
	"github.com/iwvelando/cone-expert/pkg/units"
	"github.com/iwvelando/cone-expert/pkg/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries what every subcommand needs once the root command has loaded
// the configuration.
type app struct {
	v            *viper.Viper
	configPath   string
	logLevel     string
	conf         *config.Configuration
	logger       *zap.Logger
	calc         *calculator.Calculator
	loc          *i18n.Localizer
	outputFormat string
	out          io.Writer
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
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
	if err := validation.ValidateLogFormat(format); err != nil {
		return nil, err
	}

	var zapConfig zap.Config
	if format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// setup loads the configuration and builds the logger, calculator and
// localizer. It runs before every subcommand.
func (a *app) setup(cmd *cobra.Command) error {
	conf, err := config.LoadConfiguration(a.v, a.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", a.configPath, err)
		return err
	}
	a.conf = conf

	logger, err := initializeLogger(conf.Logging, a.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return err
	}
	a.logger = logger

	a.outputFormat = conf.Output.Format
	if a.outputFormat == "" {
		a.outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(a.outputFormat); err != nil {
		logger.Error(err.Error(), zap.String("op", "main"))
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	// A unit given on the command line must be valid; a bad configured unit
	// only warns and falls back to millimeters.
	if cmd.Flags().Changed("unit") {
		if _, err := units.Parse(conf.Units.Default); err != nil {
			return err
		}
	}

	a.calc = calculator.New(logger, nil, conf.DefaultUnit())
	a.loc = i18n.Lookup(conf.Language)
	return nil
}

func (a *app) teardown() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cone-expert",
		Short:         "Cone and taper calculator for lathe work",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.String("output-format", "", "type of output override: pretty, csv, json")
	flags.String("lang", "", "language for labels and messages (en, fa)")
	flags.String("unit", "", "unit of the entered dimensions: mm or in")
	_ = a.v.BindPFlag("output.format", flags.Lookup("output-format"))
	_ = a.v.BindPFlag("language", flags.Lookup("lang"))
	_ = a.v.BindPFlag("units.default", flags.Lookup("unit"))

	rootCmd.AddCommand(angleCmd(a))
	rootCmd.AddCommand(dimensionCmd(a))
	rootCmd.AddCommand(batchCmd(a))
	rootCmd.AddCommand(supportCmd(a))
	rootCmd.AddCommand(cuttingCmd(a))
	rootCmd.AddCommand(profileCmd(a))
	rootCmd.AddCommand(serveCmd(a))

	return rootCmd
}

func main() {
	a := &app{v: config.NewViper(), out: os.Stdout}
	rootCmd := newRootCmd(a)

	if err := rootCmd.Execute(); err != nil {
		if a.logger != nil {
			a.logger.Error("command failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
			a.teardown()
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

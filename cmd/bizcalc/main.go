package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/rgehrsitz/bizcalc/internal/config"
	"github.com/rgehrsitz/bizcalc/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries what the persistent pre-run resolves for every command
type app struct {
	settings *config.Settings
	logger   *zap.SugaredLogger
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bizcalc %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

// fileExists checks if a file exists
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "bizcalc",
		Short: "Small-business financial planning calculator",
		Long: `Break-even, pricing, scenario, subscription, cash-flow, ratio and
valuation models over a single YAML input document.

Examples:
  bizcalc analyze business.yaml
  bizcalc pricing business.yaml --count 20 --format csv
  bizcalc cash-flow business.yaml --months 36 --format json
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("settings", "", "Path to a settings file (default: bizcalc.yaml if it exists)")
	flags.String("env-file", ".env", "Dotenv file with BIZCALC_* overrides")
	flags.StringP("format", "f", "", "Output format (console, table, csv, json, prompt)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (console, json)")

	rootCmd.AddCommand(analyzeCmd(a))
	for _, c := range calculatorCommands {
		rootCmd.AddCommand(c.command(a))
	}
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// setup loads settings, applies flag overrides and builds the logger
func (a *app) setup(cmd *cobra.Command) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	settingsFile, _ := cmd.Flags().GetString("settings")
	if settingsFile == "" && fileExists("bizcalc.yaml") {
		settingsFile = "bizcalc.yaml"
	}
	settings, err := config.LoadSettings(settingsFile)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("format"); v != "" {
		settings.Output.Format = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		settings.Logging.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		settings.Logging.Format = v
	}

	logger, err := logging.NewSugared(logging.Options{
		Level:      settings.Logging.Level,
		Format:     settings.Logging.Format,
		OutputFile: settings.Logging.OutputFile,
	})
	if err != nil {
		return err
	}
	a.settings = settings
	a.logger = logger
	if settingsFile != "" {
		logger.Debugf("loaded settings from %s", settingsFile)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

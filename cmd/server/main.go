// Command server runs the FX monitor API and its command-line tools.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/damon-houk/fx-monitor/internal/config"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
)

// Build-time variables (set via -ldflags)
var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfg *config.Config
	log logger.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "fxmonitor",
	Short:         "FX rate aggregation and analysis service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			loaded.Logging.Level = override
		}
		level, err := logger.ParseLevel(loaded.Logging.Level)
		if err != nil {
			return err
		}

		cfg = loaded
		log = logger.NewJSONLogger(logOutput(cmd), level)
		logger.SetDefaultLogger(log)
		return nil
	},
}

// logOutput keeps stdout free for the printed result of one-shot commands.
// Only the server logs to stdout.
func logOutput(cmd *cobra.Command) io.Writer {
	if cmd == serveCmd {
		return cmd.OutOrStdout()
	}
	return cmd.ErrOrStderr()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/fxmonitor.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	historyCmd.Flags().Int("days", 90, "window in calendar days")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fxmonitor %s (commit %s)\n", version, commit)
	},
}

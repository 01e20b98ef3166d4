package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/sstent/garminnotion/internal/config"
	"github.com/sstent/garminnotion/internal/logging"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "garminnotion",
	Short: "garminnotion copies Garmin Connect sleep data into a Notion database",
	Long: `garminnotion is a CLI application that:
1. Authenticates with Garmin Connect
2. Fetches nightly sleep summaries for the last N days
3. Skips days already present in the target database
4. Creates one Notion page (or SQLite row) per new day

body-battery and vo2max show (and optionally record) one day's wellness data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var envFile string

// flagBindings maps config keys to the flags that override them
var flagBindings = map[string]string{
	"lookback_days": "days",
	"sink":          "sink",
	"log_level":     "log-level",
	"log_format":    "log-format",
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with settings (environment variables take precedence)")
	rootCmd.PersistentFlags().String("sink", config.SinkNotion, "target database: notion or sqlite")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")

	rootCmd.AddCommand(sleepCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(bodyBatteryCmd)
	rootCmd.AddCommand(vo2MaxCmd)
}

// loadConfig builds the Config from environment, env file and the flags of cmd
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v, err := config.NewViper(envFile)
	if err != nil {
		return nil, err
	}
	for key, name := range flagBindings {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

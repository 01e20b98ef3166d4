package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/sstent/garminnotion/internal/garmin"
	"github.com/sstent/garminnotion/internal/sleepsync"
	"go.uber.org/zap"
)

var includeZeroSleep bool
var dryRun bool

// sleepCmd represents the sleep sync command
var sleepCmd = &cobra.Command{
	Use:   "sleep",
	Short: "Sync nightly sleep summaries to the target database",
	Long: `Fetches one sleep summary per day for the lookback window ending
yesterday and creates a record for every day not yet in the target database.
Days with no recorded sleep are skipped unless --include-zero-sleep is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Load configuration
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if includeZeroSleep {
			cfg.SkipZeroSleep = false
		}
		if err := cfg.RequireGarmin(); err != nil {
			return err
		}
		if err := cfg.RequireSink(); err != nil {
			return err
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		// Initialize target database
		sink, closeSink, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer closeSink()

		// Initialize Garmin client
		client, err := garmin.NewClient(*cfg, logger)
		if err != nil {
			logger.Error("Garmin Connect login failed", zap.Error(err))
			return fmt.Errorf("failed to create Garmin client: %w", err)
		}

		fetcher := sleepsync.NewFetcher(client, cfg.Location, time.Now, logger)
		transformer := sleepsync.Transformer{
			SkipZeroSleep: cfg.SkipZeroSleep,
			Location:      cfg.Location,
		}
		syncer := sleepsync.NewSyncer(fetcher, transformer, sink, logger, sleepsync.WithDryRun(dryRun))

		fmt.Printf("Syncing the last %d days of sleep data from Garmin Connect...\n", cfg.LookbackDays)
		summary, err := syncer.Run(ctx, cfg.LookbackDays)
		if err != nil {
			logger.Error("Sleep sync aborted", zap.Error(err))
			return fmt.Errorf("sleep sync failed: %w", err)
		}

		verb := "created"
		if dryRun {
			verb = "would be created"
		}
		fmt.Printf("\n📊 Sleep sync summary: %d/%d days %s, %d already present, %d skipped, %d failed\n",
			summary.Written, summary.Fetched, verb, summary.Existing, summary.Skipped, summary.Failed)

		if summary.Failed > 0 {
			return fmt.Errorf("%d sleep entries could not be created", summary.Failed)
		}
		return nil
	},
}

func init() {
	sleepCmd.Flags().Int("days", sleepsync.DefaultLookbackDays, "number of days before today to sync")
	sleepCmd.Flags().BoolVar(&includeZeroSleep, "include-zero-sleep", false, "also create records for days with zero total sleep")
	sleepCmd.Flags().BoolVar(&dryRun, "dry-run", false, "check and transform but do not create records")
}

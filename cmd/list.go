package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var listFrom string
var listTo string

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sleep records in the target database",
	Long: `List sleep records, oldest first. --from and --to (YYYY-MM-DD)
bound the dates; either may be omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, d := range []string{listFrom, listTo} {
			if d == "" {
				continue
			}
			if _, err := time.Parse(time.DateOnly, d); err != nil {
				return fmt.Errorf("invalid date %q, want YYYY-MM-DD", d)
			}
		}

		// Initialize config
		cfg, err := loadConfig(cmd)
		if err != nil {
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

		// Initialize database
		target, closeTarget, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer closeTarget()

		records, err := target.List(cmd.Context(), listFrom, listTo)
		if err != nil {
			return fmt.Errorf("failed to list sleep records: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No sleep records found matching the criteria")
			return nil
		}

		for _, r := range records {
			fmt.Printf("%s | %s | total %s | deep %s | light %s | REM %s | awake %s | RHR %d\n",
				r.LongDate,
				r.Times,
				r.TotalSleep,
				r.DeepSleep,
				r.LightSleep,
				r.REMSleep,
				r.AwakeTime,
				r.RestingHR)
		}
		fmt.Printf("\nTotal: %d records shown\n", len(records))

		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listFrom, "from", "", "first date to list (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listTo, "to", "", "last date to list (YYYY-MM-DD)")
}

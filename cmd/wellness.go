package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/sstent/garminnotion/internal/config"
	"github.com/sstent/garminnotion/internal/garmin"
	"github.com/sstent/garminnotion/internal/notion"
	"github.com/sstent/garminnotion/internal/wellness"
	"go.uber.org/zap"
)

var wellnessDate string
var wellnessWrite bool

// bodyBatteryCmd represents the body-battery command
var bodyBatteryCmd = &cobra.Command{
	Use:   "body-battery",
	Short: "Show a day's body battery summary",
	Long: `Fetches the body battery series of one day (today by default) and prints
the latest reading, charge, drain and the day's range. With --write the
summary is also added to the Notion body battery database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := newWellnessRun(cmd, "NOTION_BODY_BATTERY_DB_ID", func(c *config.Config) string { return c.BodyBatteryDatabaseID })
		if err != nil {
			return err
		}
		defer w.logger.Sync()

		summary, err := wellness.FetchBodyBattery(cmd.Context(), w.source, w.date)
		if errors.Is(err, garmin.ErrNoData) {
			fmt.Fprintf(cmd.OutOrStdout(), "No body battery data available for %s.\n", w.day())
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to fetch body battery data: %w", err)
		}
		printBodyBattery(cmd.OutOrStdout(), summary, w.cfg.Location)

		if !wellnessWrite {
			return nil
		}
		table := notion.NewBodyBatteryTable(w.notionClient(), w.cfg.BodyBatteryDatabaseID)
		return w.report(cmd.OutOrStdout(), "body battery")(wellness.WriteOnce[wellness.BodyBattery](cmd.Context(), table, summary.Date, summary))
	},
}

// vo2MaxCmd represents the vo2max command
var vo2MaxCmd = &cobra.Command{
	Use:   "vo2max",
	Short: "Show a day's VO2 max estimate",
	Long: `Fetches the max-metrics of one day (today by default) and prints the
running and cycling VO2 max estimates. With --write the estimate is also
added to the Notion VO2 max database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := newWellnessRun(cmd, "NOTION_VO2MAX_DB_ID", func(c *config.Config) string { return c.VO2MaxDatabaseID })
		if err != nil {
			return err
		}
		defer w.logger.Sync()

		vo2, err := wellness.FetchVO2Max(cmd.Context(), w.source, w.date)
		if errors.Is(err, garmin.ErrNoData) {
			fmt.Fprintf(cmd.OutOrStdout(), "No VO2 max estimate available for %s.\n", w.day())
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to fetch max metrics: %w", err)
		}
		printVO2Max(cmd.OutOrStdout(), vo2)

		if !wellnessWrite {
			return nil
		}
		table := notion.NewVO2MaxTable(w.notionClient(), w.cfg.VO2MaxDatabaseID)
		return w.report(cmd.OutOrStdout(), "VO2 max")(wellness.WriteOnce[wellness.VO2Max](cmd.Context(), table, vo2.Date, vo2))
	},
}

func init() {
	for _, c := range []*cobra.Command{bodyBatteryCmd, vo2MaxCmd} {
		c.Flags().StringVar(&wellnessDate, "date", "", "day to fetch (YYYY-MM-DD, default today)")
		c.Flags().BoolVar(&wellnessWrite, "write", false, "also add the day to its Notion database")
	}
}

// wellnessRun is the state shared by the body-battery and vo2max commands
type wellnessRun struct {
	cfg    *config.Config
	logger *zap.Logger
	source wellness.Source
	date   time.Time
}

func newWellnessRun(cmd *cobra.Command, dbSetting string, databaseID func(*config.Config) string) (*wellnessRun, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	date, err := parseDay(wellnessDate, cfg.Location)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireGarmin(); err != nil {
		return nil, err
	}
	if wellnessWrite {
		if err := cfg.RequireNotionDatabase(dbSetting, databaseID(cfg)); err != nil {
			return nil, err
		}
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	client, err := garmin.NewClient(*cfg, logger)
	if err != nil {
		logger.Error("Garmin Connect login failed", zap.Error(err))
		return nil, fmt.Errorf("failed to create Garmin client: %w", err)
	}

	return &wellnessRun{cfg: cfg, logger: logger, source: client, date: date}, nil
}

func (w *wellnessRun) day() string {
	return w.date.Format(time.DateOnly)
}

func (w *wellnessRun) notionClient() *notion.Client {
	return notion.NewClient(w.cfg.NotionBaseURL, w.cfg.NotionToken, w.logger)
}

// report prints the outcome of a WriteOnce call and passes its error on
func (w *wellnessRun) report(out io.Writer, what string) func(bool, error) error {
	return func(written bool, err error) error {
		if err != nil {
			w.logger.Error("Failed to write entry", zap.String("kind", what), zap.String("date", w.day()), zap.Error(err))
			return fmt.Errorf("failed to write %s entry: %w", what, err)
		}
		if written {
			fmt.Fprintf(out, "\n✅ Created %s entry for %s\n", what, w.day())
		} else {
			fmt.Fprintf(out, "\n%s entry for %s already exists\n", what, w.day())
		}
		return nil
	}
}

// parseDay parses a YYYY-MM-DD flag value in loc. Empty means today.
func parseDay(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if value == "" {
		y, m, d := time.Now().In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	date, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return date, nil
}

func printBodyBattery(out io.Writer, s wellness.BodyBattery, loc *time.Location) {
	fmt.Fprintln(out, "\nBody Battery Data:")
	fmt.Fprintln(out, "==================")
	fmt.Fprintf(out, "Date: %s\n", s.Date)

	if !s.HasReadings() {
		fmt.Fprintf(out, "\nCharged: %d%%\nDrained: %d%%\nNo body battery readings recorded.\n", s.Charged, s.Drained)
		return
	}
	if loc == nil {
		loc = time.Local
	}

	fmt.Fprintln(out, "\nLatest Body Battery Reading:")
	fmt.Fprintf(out, "Timestamp: %s\n", s.Latest.Timestamp.In(loc).Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "Battery Level: %d%%\n", s.Latest.Level)
	fmt.Fprintf(out, "Charged: %d%%\n", s.Charged)
	fmt.Fprintf(out, "Drained: %d%%\n", s.Drained)

	fmt.Fprintln(out, "\nDaily Summary:")
	fmt.Fprintf(out, "Max Battery: %d%%\n", s.Max)
	fmt.Fprintf(out, "Min Battery: %d%%\n", s.Min)
	fmt.Fprintf(out, "Range: %d%%\n", s.Range())
}

func printVO2Max(out io.Writer, v wellness.VO2Max) {
	fmt.Fprintln(out, "\nVO2 Max:")
	fmt.Fprintln(out, "========")
	fmt.Fprintf(out, "Date: %s\n", v.Date)
	if v.VO2Max > 0 {
		fmt.Fprintf(out, "Running: %.1f\n", v.VO2Max)
	}
	if v.CyclingVO2Max > 0 {
		fmt.Fprintf(out, "Cycling: %.1f\n", v.CyclingVO2Max)
	}
	if v.FitnessAge > 0 {
		fmt.Fprintf(out, "Fitness Age: %d\n", v.FitnessAge)
	}
}

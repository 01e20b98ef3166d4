package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/sstent/garminnotion/internal/config"
	"github.com/sstent/garminnotion/internal/db"
	"github.com/sstent/garminnotion/internal/garmin"
	"github.com/sstent/garminnotion/internal/notion"
	"github.com/sstent/garminnotion/internal/sleepsync"
	"github.com/sstent/garminnotion/internal/wellness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// resetFlags restores every flag of c and its subcommands to its default
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	rootCmd.SetOut(nil)
	return out.String(), err
}

func TestSleepCommand_RequiresGarminCredentials(t *testing.T) {
	t.Setenv("GARMIN_EMAIL", "")
	t.Setenv("GARMIN_PASSWORD", "")

	_, err := runRoot(t, "sleep", "--env-file", "", "--sink", "sqlite")
	assert.ErrorIs(t, err, config.ErrMissingSetting)
}

func TestSleepCommand_RejectsNegativeDays(t *testing.T) {
	_, err := runRoot(t, "sleep", "--env-file", "", "--days", "-2")
	assert.ErrorContains(t, err, "LOOKBACK_DAYS")
}

func TestListCommand_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sleep.db")
	t.Setenv("DATABASE_PATH", path)

	database, err := db.NewDatabase(path)
	require.NoError(t, err)
	require.NoError(t, database.Create(context.Background(), sleepsync.Record{
		LongDate: "2024-10-19",
		Title:    "19.10.2024",
	}))
	require.NoError(t, database.Close())

	_, err = runRoot(t, "list", "--env-file", "", "--sink", "sqlite", "--from", "2024-10-01", "--to", "2024-10-31")
	assert.NoError(t, err)
}

func TestListCommand_InvalidDate(t *testing.T) {
	_, err := runRoot(t, "list", "--env-file", "", "--from", "19.10.2024")
	assert.ErrorContains(t, err, "invalid date")
}

func TestOpenStore(t *testing.T) {
	cfg := &config.Config{Sink: config.SinkSQLite, DatabasePath: filepath.Join(t.TempDir(), "sleep.db")}
	s, closeFn, err := openStore(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &db.SQLiteDatabase{}, s)
	assert.NoError(t, closeFn())

	cfg = &config.Config{Sink: config.SinkNotion, NotionToken: "token", SleepDatabaseID: "sleep-db"}
	s, closeFn, err = openStore(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &notion.SleepTable{}, s)
	assert.NoError(t, closeFn())
}

func TestRunRoot_FlagsDoNotLeakBetweenRuns(t *testing.T) {
	_, err := runRoot(t, "sleep", "--env-file", "", "--days", "-2", "--dry-run", "--include-zero-sleep", "--sink", "sqlite")
	require.Error(t, err)

	t.Setenv("GARMIN_EMAIL", "")
	_, err = runRoot(t, "sleep", "--env-file", "")
	assert.ErrorIs(t, err, config.ErrMissingSetting)
	assert.False(t, dryRun)
	assert.False(t, includeZeroSleep)

	sink := sleepCmd.Flags().Lookup("sink")
	require.NotNil(t, sink)
	assert.Equal(t, config.SinkNotion, sink.Value.String())
	assert.False(t, sink.Changed)
}

func TestBodyBatteryCommand_Validation(t *testing.T) {
	t.Setenv("GARMIN_EMAIL", "")
	t.Setenv("GARMIN_PASSWORD", "")

	_, err := runRoot(t, "body-battery", "--env-file", "", "--date", "19.10.2024")
	assert.ErrorContains(t, err, "invalid date")

	_, err = runRoot(t, "body-battery", "--env-file", "")
	assert.ErrorIs(t, err, config.ErrMissingSetting)
	assert.ErrorContains(t, err, "GARMIN_EMAIL")
}

func TestVO2MaxCommand_WriteRequiresDatabase(t *testing.T) {
	t.Setenv("GARMIN_EMAIL", "me@example.com")
	t.Setenv("GARMIN_PASSWORD", "secret")
	t.Setenv("NOTION_TOKEN", "token")
	t.Setenv("NOTION_VO2MAX_DB_ID", "")

	_, err := runRoot(t, "vo2max", "--env-file", "", "--write")
	assert.ErrorIs(t, err, config.ErrMissingSetting)
	assert.ErrorContains(t, err, "NOTION_VO2MAX_DB_ID")
}

func TestParseDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	d, err := parseDay("2024-10-19", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 10, 19, 0, 0, 0, 0, loc), d)

	today, err := parseDay("", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Now().In(loc).Format(time.DateOnly), today.Format(time.DateOnly))

	_, err = parseDay("2024-13-01", loc)
	assert.Error(t, err)
}

func TestPrintBodyBattery(t *testing.T) {
	var out bytes.Buffer
	printBodyBattery(&out, wellness.BodyBattery{
		Date:    "2024-10-19",
		Charged: 62,
		Drained: 55,
		Latest:  garmin.BodyBatteryReading{Timestamp: time.Date(2024, 10, 19, 21, 5, 0, 0, time.UTC), Level: 45},
		Max:     95,
		Min:     30,
	}, time.UTC)

	text := out.String()
	for _, line := range []string{
		"Date: 2024-10-19",
		"Timestamp: 2024-10-19 21:05",
		"Battery Level: 45%",
		"Charged: 62%",
		"Drained: 55%",
		"Max Battery: 95%",
		"Min Battery: 30%",
		"Range: 65%",
	} {
		assert.Contains(t, text, line)
	}

	out.Reset()
	printBodyBattery(&out, wellness.BodyBattery{Date: "2024-10-19"}, time.UTC)
	assert.Contains(t, out.String(), "No body battery readings recorded.")
	assert.NotContains(t, out.String(), "Range:")
}

func TestPrintVO2Max(t *testing.T) {
	var out bytes.Buffer
	printVO2Max(&out, wellness.VO2Max{Date: "2024-10-19", VO2Max: 48.3, FitnessAge: 35})

	assert.Contains(t, out.String(), "Running: 48.3")
	assert.Contains(t, out.String(), "Fitness Age: 35")
	assert.NotContains(t, out.String(), "Cycling")
}

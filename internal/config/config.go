package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Sink names accepted by the SINK setting
const (
	SinkNotion = "notion"
	SinkSQLite = "sqlite"
)

// ErrMissingSetting is returned when a required setting is empty
var ErrMissingSetting = errors.New("missing required setting")

// Config holds application configuration. It is built once at startup
// and passed by value to the components that need it.
type Config struct {
	GarminEmail    string
	GarminPassword string
	GarminBaseURL  string
	SessionTimeout time.Duration
	RateLimit      time.Duration

	NotionToken           string
	NotionBaseURL         string
	SleepDatabaseID       string
	BodyBatteryDatabaseID string
	VO2MaxDatabaseID      string

	Sink         string
	DatabasePath string

	LookbackDays  int
	SkipZeroSleep bool
	Location      *time.Location

	LogLevel  string
	LogFormat string
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("lookback_days", 100)
	v.SetDefault("skip_zero_sleep", true)
	v.SetDefault("timezone", "Local")
	v.SetDefault("rate_limit", "0s")
	v.SetDefault("session_timeout", "30m")
	v.SetDefault("sink", SinkNotion)
	v.SetDefault("database_path", "garmin.db")
	v.SetDefault("garmin_base_url", "https://connect.garmin.com/modern/proxy")
	v.SetDefault("notion_base_url", "https://api.notion.com")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// NewViper returns a viper instance reading the process environment and,
// when envFile exists, a dotenv file. Environment variables win over the file.
func NewViper(envFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if envFile == "" {
		return v, nil
	}
	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to stat env file: %w", err)
	}

	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}
	return v, nil
}

// Load builds a Config from v
func Load(v *viper.Viper) (*Config, error) {
	lookback := v.GetInt("lookback_days")
	if lookback < 0 {
		return nil, fmt.Errorf("LOOKBACK_DAYS must be >= 0, got %d", lookback)
	}

	loc, err := loadLocation(v.GetString("timezone"))
	if err != nil {
		return nil, err
	}

	sink := v.GetString("sink")
	if sink != SinkNotion && sink != SinkSQLite {
		return nil, fmt.Errorf("unknown sink %q (want %s or %s)", sink, SinkNotion, SinkSQLite)
	}

	return &Config{
		GarminEmail:    v.GetString("garmin_email"),
		GarminPassword: v.GetString("garmin_password"),
		GarminBaseURL:  v.GetString("garmin_base_url"),
		SessionTimeout: parseDuration(v.GetString("session_timeout"), 30*time.Minute),
		RateLimit:      parseDuration(v.GetString("rate_limit"), 0),

		NotionToken:           v.GetString("notion_token"),
		NotionBaseURL:         v.GetString("notion_base_url"),
		SleepDatabaseID:       v.GetString("notion_sleep_db_id"),
		BodyBatteryDatabaseID: v.GetString("notion_body_battery_db_id"),
		VO2MaxDatabaseID:      v.GetString("notion_vo2max_db_id"),

		Sink:         sink,
		DatabasePath: v.GetString("database_path"),

		LookbackDays:  lookback,
		SkipZeroSleep: v.GetBool("skip_zero_sleep"),
		Location:      loc,

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
	}, nil
}

// RequireGarmin checks the Garmin Connect credentials are set
func (c *Config) RequireGarmin() error {
	if c.GarminEmail == "" || c.GarminPassword == "" {
		return fmt.Errorf("%w: GARMIN_EMAIL and GARMIN_PASSWORD environment variables are required", ErrMissingSetting)
	}
	return nil
}

// RequireSink checks the settings of the selected sink are set
func (c *Config) RequireSink() error {
	switch c.Sink {
	case SinkNotion:
		if c.NotionToken == "" || c.SleepDatabaseID == "" {
			return fmt.Errorf("%w: NOTION_TOKEN and NOTION_SLEEP_DB_ID environment variables are required", ErrMissingSetting)
		}
	case SinkSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("%w: DATABASE_PATH is required for the sqlite sink", ErrMissingSetting)
		}
	}
	return nil
}

// RequireNotionDatabase checks the Notion token and the database id held
// by the setting name are set
func (c *Config) RequireNotionDatabase(name, databaseID string) error {
	if c.NotionToken == "" || databaseID == "" {
		return fmt.Errorf("%w: NOTION_TOKEN and %s environment variables are required", ErrMissingSetting, name)
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// parseDuration parses a duration string with a default
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return d
}

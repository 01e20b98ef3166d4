package garmin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	connect "github.com/abrander/garmin-connect"
	"github.com/sstent/garminnotion/internal/config"
	"go.uber.org/zap"
)

var (
	// ErrNoData is returned when Garmin Connect has nothing recorded for a date
	ErrNoData = errors.New("no data for date")

	ErrAuthentication = errors.New("garmin connect authentication error")
	ErrRateLimited    = errors.New("garmin connect rate limit exceeded")
	ErrConnection     = errors.New("garmin connect connection error")
)

const (
	defaultSessionTimeout = 30 * time.Minute
)

// api is the subset of Garmin Connect the client needs
type api interface {
	Authenticate() error
	SleepSummary(date time.Time) (*SleepSummary, error)
	RestingHeartRate(date time.Time) (int, error)
	BodyBattery(date time.Time) ([]byte, error)
	MaxMetrics(date time.Time) ([]byte, error)
}

// connectAPI adapts garmin-connect to api. The empty display name
// selects the authenticated user.
type connectAPI struct {
	client *connect.Client
	*wellnessAPI
}

func (a connectAPI) Authenticate() error {
	return a.client.Authenticate()
}

func (a connectAPI) SleepSummary(date time.Time) (*SleepSummary, error) {
	s, _, _, err := a.client.SleepData("", date)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}

	return &SleepSummary{
		CalendarDate: date.Format(time.DateOnly),
		StartGMT:     Timestamp{time.Time(s.StartGMT).UTC()},
		EndGMT:       Timestamp{time.Time(s.EndGMT).UTC()},
		DeepSeconds:  seconds(s.Deep),
		LightSeconds: seconds(s.Light),
		REMSeconds:   seconds(s.REM),
		AwakeSeconds: seconds(s.Awake),
	}, nil
}

func (a connectAPI) RestingHeartRate(date time.Time) (int, error) {
	summary, err := a.client.DailySummary("", date)
	if err != nil {
		return 0, err
	}
	if summary == nil {
		return 0, nil
	}
	return int(summary.RestingHeartRate), nil
}

// Client represents a Garmin Connect API client
type Client struct {
	api      api
	cfg      config.Config
	logger   *zap.Logger
	lastAuth time.Time
	lastCall time.Time
	now      func() time.Time
}

// NewClient creates a new Garmin Connect client and authenticates it
func NewClient(cfg config.Config, logger *zap.Logger) (*Client, error) {
	client := connect.NewClient(connect.Credentials(cfg.GarminEmail, cfg.GarminPassword))
	wellness := newWellnessAPI(cfg.GarminBaseURL, func() string { return client.SessionID })
	return newClient(connectAPI{client: client, wellnessAPI: wellness}, cfg, logger)
}

func newClient(a api, cfg config.Config, logger *zap.Logger) (*Client, error) {
	c := &Client{
		api:    a,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}

	if err := c.api.Authenticate(); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", classify(err))
	}
	c.lastAuth = c.now()
	c.logger.Info("Authenticated with Garmin Connect", zap.String("email", cfg.GarminEmail))

	return c, nil
}

// checkSession checks if session is still valid, refreshes if expired
func (c *Client) checkSession() error {
	timeout := c.cfg.SessionTimeout
	if timeout == 0 {
		timeout = defaultSessionTimeout
	}

	if c.now().Sub(c.lastAuth) > timeout {
		c.logger.Debug("Refreshing Garmin Connect session")
		if err := c.api.Authenticate(); err != nil {
			return fmt.Errorf("session refresh failed: %w", classify(err))
		}
		c.lastAuth = c.now()
	}
	return nil
}

// throttle spaces consecutive requests by the configured rate limit
func (c *Client) throttle(ctx context.Context) error {
	if c.cfg.RateLimit <= 0 || c.lastCall.IsZero() {
		c.lastCall = c.now()
		return nil
	}

	wait := c.cfg.RateLimit - c.now().Sub(c.lastCall)
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.lastCall = c.now()
	return nil
}

// prepare runs before every request: it honors ctx, refreshes an
// expired session and applies the rate limit
func (c *Client) prepare(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.checkSession(); err != nil {
		return err
	}
	return c.throttle(ctx)
}

// SleepDay retrieves the sleep summary and resting heart rate for date.
// It returns ErrNoData when Garmin Connect has no sleep record for it.
func (c *Client) SleepDay(ctx context.Context, date time.Time) (*SleepDay, error) {
	if err := c.prepare(ctx); err != nil {
		return nil, err
	}

	day := date.Format(time.DateOnly)
	summary, err := c.api.SleepSummary(date)
	if err != nil {
		if errors.Is(err, connect.ErrNotFound) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("failed to get sleep data for %s: %w", day, classify(err))
	}
	if summary == nil {
		return nil, ErrNoData
	}
	if summary.CalendarDate == "" {
		summary.CalendarDate = day
	}

	restingHR, err := c.restingHeartRate(ctx, date)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched sleep data",
		zap.String("date", day),
		zap.Int("total_sleep_seconds", summary.TotalSleepSeconds()),
	)
	return &SleepDay{Summary: summary, RestingHeartRate: restingHR}, nil
}

// restingHeartRate is best effort: a failed daily summary yields 0.
// Only a canceled ctx is returned as an error.
func (c *Client) restingHeartRate(ctx context.Context, date time.Time) (Int, error) {
	if err := c.throttle(ctx); err != nil {
		return 0, err
	}

	hr, err := c.api.RestingHeartRate(date)
	if err != nil {
		c.logger.Warn("Failed to get daily summary",
			zap.String("date", date.Format(time.DateOnly)),
			zap.Error(err),
		)
		return 0, nil
	}
	if hr < 0 {
		return 0, nil
	}
	return Int(hr), nil
}

// BodyBattery retrieves the body battery series for date. It returns
// ErrNoData when Garmin Connect has no report for it.
func (c *Client) BodyBattery(ctx context.Context, date time.Time) (*BodyBatteryReport, error) {
	day := date.Format(time.DateOnly)
	raw, err := c.fetch(ctx, date, "body battery", c.api.BodyBattery)
	if err != nil {
		return nil, err
	}

	reports, err := DecodeBodyBattery(raw)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if reports[i].Date == day || reports[i].Date == "" {
			reports[i].Date = day
			c.logger.Debug("Fetched body battery data",
				zap.String("date", day),
				zap.Int("readings", len(reports[i].Readings)),
			)
			return &reports[i], nil
		}
	}
	return nil, ErrNoData
}

// MaxMetrics retrieves the VO2max estimate for date. It returns ErrNoData
// when Garmin Connect has no estimate for it.
func (c *Client) MaxMetrics(ctx context.Context, date time.Time) (*MaxMetrics, error) {
	day := date.Format(time.DateOnly)
	raw, err := c.fetch(ctx, date, "max metrics", c.api.MaxMetrics)
	if err != nil {
		return nil, err
	}

	metrics, err := DecodeMaxMetrics(raw)
	if err != nil {
		return nil, err
	}
	for i := range metrics {
		if metrics[i].CalendarDate == day || metrics[i].CalendarDate == "" {
			metrics[i].CalendarDate = day
			return &metrics[i], nil
		}
	}
	return nil, ErrNoData
}

// fetch runs one raw request for date. Not found and empty bodies are ErrNoData.
func (c *Client) fetch(ctx context.Context, date time.Time, what string, call func(time.Time) ([]byte, error)) ([]byte, error) {
	if err := c.prepare(ctx); err != nil {
		return nil, err
	}

	raw, err := call(date)
	if err != nil {
		if errors.Is(err, connect.ErrNotFound) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("failed to get %s data for %s: %w", what, date.Format(time.DateOnly), classify(err))
	}
	if len(raw) == 0 {
		return nil, ErrNoData
	}
	return raw, nil
}

// classify maps a garmin-connect error onto ErrAuthentication,
// ErrRateLimited or ErrConnection, keeping the original in the chain
func classify(err error) error {
	switch {
	case errors.Is(err, connect.ErrWrongCredentials),
		errors.Is(err, connect.ErrNotAuthenticated),
		errors.Is(err, connect.ErrForbidden):
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	case isRateLimit(err):
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	default:
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
}

func isRateLimit(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

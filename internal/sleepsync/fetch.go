package sleepsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sstent/garminnotion/internal/garmin"
	"go.uber.org/zap"
)

// DefaultLookbackDays is the window used when none is configured
const DefaultLookbackDays = 100

// Source provides one day's sleep payload. It returns garmin.ErrNoData
// when there is nothing recorded for the date.
type Source interface {
	SleepDay(ctx context.Context, date time.Time) (*garmin.SleepDay, error)
}

// Fetcher collects sleep payloads over a window of days ending yesterday
type Fetcher struct {
	source   Source
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewFetcher creates a Fetcher. "Today" is taken from now in loc.
func NewFetcher(source Source, loc *time.Location, now func() time.Time, logger *zap.Logger) *Fetcher {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Fetcher{
		source:   source,
		location: loc,
		now:      now,
		logger:   logger,
	}
}

// Dates returns the days today-n ... today-1 in ascending order
func Dates(today time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	y, m, d := today.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, today.Location())

	dates := make([]time.Time, 0, n)
	for i := n; i >= 1; i-- {
		dates = append(dates, midnight.AddDate(0, 0, -i))
	}
	return dates
}

// Fetch requests one payload per day of the last n days. Days without data
// contribute nothing. Any other error aborts the fetch.
func (f *Fetcher) Fetch(ctx context.Context, n int) ([]garmin.SleepDay, error) {
	if n < 0 {
		return nil, fmt.Errorf("lookback window must be >= 0, got %d", n)
	}

	dates := Dates(f.now().In(f.location), n)
	days := make([]garmin.SleepDay, 0, len(dates))
	for _, date := range dates {
		day, err := f.source.SleepDay(ctx, date)
		if errors.Is(err, garmin.ErrNoData) || (err == nil && day == nil) {
			f.logger.Debug("No sleep data", zap.String("date", date.Format(time.DateOnly)))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch sleep data for %s: %w", date.Format(time.DateOnly), err)
		}
		days = append(days, *day)
	}

	f.logger.Info("Fetched sleep data",
		zap.Int("days_requested", len(dates)),
		zap.Int("days_with_data", len(days)),
	)
	return days, nil
}

// Package wellness summarizes daily body battery and VO2max readings
// and records them in their notes databases, one row per calendar date.
package wellness

import (
	"context"
	"fmt"
	"time"

	"github.com/sstent/garminnotion/internal/garmin"
)

// BodyBattery is the summary of one day's body battery series
type BodyBattery struct {
	Date    string
	Charged int
	Drained int
	// Latest is the last reading; zero when the series is empty.
	Latest garmin.BodyBatteryReading
	Max    int
	Min    int
}

// HasReadings reports whether the series had any samples
func (b BodyBattery) HasReadings() bool {
	return !b.Latest.Timestamp.IsZero()
}

// Range is Max - Min
func (b BodyBattery) Range() int {
	return b.Max - b.Min
}

// SummarizeBodyBattery reduces a report to its latest reading and extremes
func SummarizeBodyBattery(report garmin.BodyBatteryReport) BodyBattery {
	summary := BodyBattery{
		Date:    report.Date,
		Charged: report.Charged,
		Drained: report.Drained,
	}
	for i, r := range report.Readings {
		if i == 0 || r.Level > summary.Max {
			summary.Max = r.Level
		}
		if i == 0 || r.Level < summary.Min {
			summary.Min = r.Level
		}
		if !r.Timestamp.Before(summary.Latest.Timestamp) {
			summary.Latest = r
		}
	}
	return summary
}

// VO2Max is one day's VO2max estimate
type VO2Max struct {
	Date          string
	VO2Max        float64
	CyclingVO2Max float64
	FitnessAge    int
}

// FromMaxMetrics converts a Garmin max-metrics entry
func FromMaxMetrics(m garmin.MaxMetrics) VO2Max {
	return VO2Max{
		Date:          m.CalendarDate,
		VO2Max:        m.VO2Max,
		CyclingVO2Max: m.CyclingVO2Max,
		FitnessAge:    m.FitnessAge,
	}
}

// Source provides the daily wellness readings
type Source interface {
	BodyBattery(ctx context.Context, date time.Time) (*garmin.BodyBatteryReport, error)
	MaxMetrics(ctx context.Context, date time.Time) (*garmin.MaxMetrics, error)
}

// Table is a notes database holding at most one row per calendar date
type Table[T any] interface {
	Exists(ctx context.Context, date string) (bool, error)
	Create(ctx context.Context, row T) error
}

// WriteOnce creates row unless the table already has one for date.
// It reports whether a row was created.
func WriteOnce[T any](ctx context.Context, table Table[T], date string, row T) (bool, error) {
	if date == "" {
		return false, fmt.Errorf("row has no date")
	}

	exists, err := table.Exists(ctx, date)
	if err != nil {
		return false, fmt.Errorf("failed to check existing entry for %s: %w", date, err)
	}
	if exists {
		return false, nil
	}
	if err := table.Create(ctx, row); err != nil {
		return false, err
	}
	return true, nil
}

// FetchBodyBattery fetches and summarizes the body battery of date
func FetchBodyBattery(ctx context.Context, source Source, date time.Time) (BodyBattery, error) {
	report, err := source.BodyBattery(ctx, date)
	if err != nil {
		return BodyBattery{}, err
	}
	return SummarizeBodyBattery(*report), nil
}

// FetchVO2Max fetches the VO2max estimate of date
func FetchVO2Max(ctx context.Context, source Source, date time.Time) (VO2Max, error) {
	m, err := source.MaxMetrics(ctx, date)
	if err != nil {
		return VO2Max{}, err
	}
	return FromMaxMetrics(*m), nil
}

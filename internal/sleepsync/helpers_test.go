package sleepsync

import (
	"context"
	"errors"
	"time"

	"github.com/sstent/garminnotion/internal/garmin"
)

// memSink is an in-memory Sink keyed by LongDate
type memSink struct {
	records   []Record
	createErr error
	findErr   error
	finds     int
	creates   int
}

func (m *memSink) FindByDate(_ context.Context, date string) (*Record, error) {
	m.finds++
	if m.findErr != nil {
		return nil, m.findErr
	}
	for i := range m.records {
		if m.records[i].LongDate == date {
			r := m.records[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memSink) Create(_ context.Context, record Record) error {
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	m.records = append(m.records, record)
	return nil
}

// fakeSource serves SleepDays keyed by YYYY-MM-DD
type fakeSource struct {
	days     map[string]garmin.SleepDay
	errs     map[string]error
	requests []string
}

func (f *fakeSource) SleepDay(_ context.Context, date time.Time) (*garmin.SleepDay, error) {
	key := date.Format(time.DateOnly)
	f.requests = append(f.requests, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	day, ok := f.days[key]
	if !ok {
		return nil, garmin.ErrNoData
	}
	return &day, nil
}

var errBoom = errors.New("boom")

func sleepDay(date string, deep, light, rem, awake, restingHR int) garmin.SleepDay {
	start := time.Date(2024, 10, 18, 22, 0, 0, 0, time.UTC)
	return garmin.SleepDay{
		Summary: &garmin.SleepSummary{
			CalendarDate: date,
			StartGMT:     garmin.Timestamp{Time: start},
			EndGMT:       garmin.Timestamp{Time: start.Add(8 * time.Hour)},
			DeepSeconds:  garmin.Int(deep),
			LightSeconds: garmin.Int(light),
			REMSeconds:   garmin.Int(rem),
			AwakeSeconds: garmin.Int(awake),
		},
		RestingHeartRate: garmin.Int(restingHR),
	}
}

// fixedNow returns a clock stuck at the given local date, noon
func fixedNow(y int, m time.Month, d int) func() time.Time {
	return func() time.Time {
		return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	}
}

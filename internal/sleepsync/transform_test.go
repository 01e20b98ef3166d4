package sleepsync

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sstent/garminnotion/internal/garmin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform_FullRecord(t *testing.T) {
	tr := Transformer{SkipZeroSleep: true, Location: time.UTC}

	got, ok := tr.Transform(sleepDay("2024-10-19", 5400, 16200, 5400, 1800, 52))
	require.True(t, ok)

	start := time.Date(2024, 10, 18, 22, 0, 0, 0, time.UTC)
	want := Record{
		Title:      "19.10.2024",
		Times:      "22:00 → 06:00",
		LongDate:   "2024-10-19",
		Start:      start,
		End:        start.Add(8 * time.Hour),
		TotalSleep: "7h 30m",
		LightSleep: "4h 30m",
		DeepSleep:  "1h 30m",
		REMSleep:   "1h 30m",
		AwakeTime:  "0h 30m",
		RestingHR:  52,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Transform() mismatch (-want +got):\n%s", diff)
	}
}

func TestTransform_ZeroSleep(t *testing.T) {
	day := sleepDay("2024-10-19", 0, 0, 0, 600, 50)

	_, ok := Transformer{SkipZeroSleep: true}.Transform(day)
	assert.False(t, ok, "zero sleep must be skipped when SkipZeroSleep is on")

	record, ok := Transformer{SkipZeroSleep: false, Location: time.UTC}.Transform(day)
	require.True(t, ok, "zero sleep must be kept when SkipZeroSleep is off")
	assert.Equal(t, "0h 0m", record.TotalSleep)
	assert.Equal(t, "0h 10m", record.AwakeTime)
}

func TestTransform_AwakeTimeIsNotSleep(t *testing.T) {
	// Only awake seconds: total sleep is still zero
	_, ok := Transformer{SkipZeroSleep: true}.Transform(sleepDay("2024-10-19", 0, 0, 0, 3600, 0))
	assert.False(t, ok)
}

func TestTransform_NoSummary(t *testing.T) {
	for _, skip := range []bool{true, false} {
		_, ok := Transformer{SkipZeroSleep: skip}.Transform(garmin.SleepDay{RestingHeartRate: 50})
		assert.False(t, ok)
	}
}

func TestTransform_MissingFieldsUseDefaults(t *testing.T) {
	day := garmin.SleepDay{Summary: &garmin.SleepSummary{CalendarDate: "2024-10-19", LightSeconds: 60}}

	record, ok := Transformer{SkipZeroSleep: true, Location: time.UTC}.Transform(day)
	require.True(t, ok)

	assert.Equal(t, "0h 0m", record.DeepSleep)
	assert.Equal(t, "0h 0m", record.REMSleep)
	assert.Equal(t, "0h 0m", record.AwakeTime)
	assert.Equal(t, "0h 1m", record.LightSleep)
	assert.Equal(t, "Unknown → Unknown", record.Times)
	assert.True(t, record.Start.IsZero())
	assert.Equal(t, 0, record.RestingHR)
}

func TestTransform_UnknownDate(t *testing.T) {
	day := sleepDay("", 60, 0, 0, 0, 0)

	record, ok := Transformer{Location: time.UTC}.Transform(day)
	require.True(t, ok)
	assert.Equal(t, "Unknown Date", record.Title)
	assert.Empty(t, record.LongDate)
}

func TestTransform_RendersLocalClock(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)

	record, ok := Transformer{Location: tokyo}.Transform(sleepDay("2024-10-19", 60, 0, 0, 0, 0))
	require.True(t, ok)
	assert.Equal(t, "07:00 → 15:00", record.Times)
	// canonical instants are unaffected by the display zone
	assert.Equal(t, time.Date(2024, 10, 18, 22, 0, 0, 0, time.UTC), record.Start)
}

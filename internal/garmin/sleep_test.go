package garmin

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleepSummary_Totals(t *testing.T) {
	s := &SleepSummary{
		CalendarDate: "2024-10-19",
		DeepSeconds:  5400,
		LightSeconds: 16200,
		REMSeconds:   5400,
		AwakeSeconds: 1800,
	}
	assert.Equal(t, 27000, s.TotalSleepSeconds())

	date, ok := s.Date()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 10, 19, 0, 0, 0, 0, time.UTC), date)
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, Int(5400), seconds(90*time.Minute))
	assert.Equal(t, Int(59), seconds(59*time.Second+900*time.Millisecond))
	assert.Equal(t, Int(0), seconds(-time.Second))
}

func TestSleepSummary_DateMissing(t *testing.T) {
	s := &SleepSummary{}
	_, ok := s.Date()
	assert.False(t, ok)

	s.CalendarDate = "19/10/2024"
	_, ok = s.Date()
	assert.False(t, ok)
}

func TestInt_Lenient(t *testing.T) {
	tests := []struct {
		raw  string
		want Int
	}{
		{`120`, 120},
		{`120.9`, 120},
		{`"300"`, 300},
		{`null`, 0},
		{`"abc"`, 0},
		{`-5`, 0},
		{`true`, 0},
	}
	for _, tt := range tests {
		var v Int
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &v), tt.raw)
		assert.Equal(t, tt.want, v, tt.raw)
	}
}

func TestTimestamp_Forms(t *testing.T) {
	want := time.Date(2024, 10, 18, 22, 0, 0, 0, time.UTC)
	tests := []string{
		`1729288800000`,
		`"1729288800000"`,
		`"2024-10-18T22:00:00Z"`,
		`"2024-10-19T00:00:00+02:00"`,
		`"2024-10-18T22:00:00.0"`,
	}
	for _, raw := range tests {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(raw), &ts), raw)
		assert.True(t, want.Equal(ts.Time), raw)
	}

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"not a time"`), &ts))
	assert.True(t, ts.IsZero())
}

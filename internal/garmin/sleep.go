package garmin

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// SleepDay is one calendar day's sleep data from Garmin Connect
type SleepDay struct {
	// Summary is nil when Garmin Connect reported no sleep window.
	Summary          *SleepSummary
	RestingHeartRate Int
}

// SleepSummary is the nightly sleep summary of one calendar day
type SleepSummary struct {
	CalendarDate string
	StartGMT     Timestamp
	EndGMT       Timestamp
	DeepSeconds  Int
	LightSeconds Int
	REMSeconds   Int
	AwakeSeconds Int
}

// TotalSleepSeconds sums deep, light and REM sleep. Awake time is not sleep.
func (s *SleepSummary) TotalSleepSeconds() int {
	return int(s.DeepSeconds) + int(s.LightSeconds) + int(s.REMSeconds)
}

// Date parses CalendarDate. ok is false when it is missing or malformed.
func (s *SleepSummary) Date() (date time.Time, ok bool) {
	d, err := time.Parse(time.DateOnly, s.CalendarDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// seconds converts a garmin-connect duration to whole seconds
func seconds(d time.Duration) Int {
	if d < 0 {
		return 0
	}
	return Int(d / time.Second)
}

// Int is a non-negative integer field that decodes null, absent,
// fractional or malformed values leniently. Anything unusable is 0.
type Int int

// UnmarshalJSON implements json.Unmarshaler
func (i *Int) UnmarshalJSON(b []byte) error {
	*i = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		b = []byte(s)
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}
	*i = Int(f)
	return nil
}

// Timestamp is an instant sent by Garmin as epoch milliseconds. String
// forms (RFC 3339, or Garmin's zone-less GMT layout) are accepted too.
// A zero Timestamp means the field was absent.
type Timestamp struct {
	time.Time
}

const garminGMTLayout = "2006-01-02T15:04:05.0"

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	t.Time = time.Time{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil || s == "" {
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, garminGMTLayout, "2006-01-02T15:04:05"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time = parsed.UTC()
				return nil
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
			t.Time = time.UnixMilli(ms).UTC()
		}
		return nil
	}

	ms, err := strconv.ParseFloat(string(b), 64)
	if err != nil || ms <= 0 {
		return nil
	}
	t.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}

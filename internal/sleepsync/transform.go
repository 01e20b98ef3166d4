package sleepsync

import (
	"time"

	"github.com/sstent/garminnotion/internal/garmin"
)

// Transformer maps Garmin sleep payloads to Records
type Transformer struct {
	// SkipZeroSleep drops days whose deep, light and REM sleep sum to
	// zero. Such days mean "no data", not "no sleep".
	SkipZeroSleep bool
	// Location renders the display clock times. Nil means time.Local.
	Location *time.Location
}

// Transform returns the Record for day, or ok=false when the day should
// be skipped.
func (t Transformer) Transform(day garmin.SleepDay) (record Record, ok bool) {
	s := day.Summary
	if s == nil {
		return Record{}, false
	}

	total := s.TotalSleepSeconds()
	if t.SkipZeroSleep && total == 0 {
		return Record{}, false
	}

	longDate := s.CalendarDate
	if _, valid := s.Date(); !valid {
		longDate = ""
	}

	return Record{
		Title:      FormatTitle(s.CalendarDate),
		Times:      FormatTimeRange(s.StartGMT.Time, s.EndGMT.Time, t.Location),
		LongDate:   longDate,
		Start:      s.StartGMT.Time,
		End:        s.EndGMT.Time,
		TotalSleep: FormatDuration(total),
		LightSleep: FormatDuration(int(s.LightSeconds)),
		DeepSleep:  FormatDuration(int(s.DeepSeconds)),
		REMSleep:   FormatDuration(int(s.REMSeconds)),
		AwakeTime:  FormatDuration(int(s.AwakeSeconds)),
		RestingHR:  int(day.RestingHeartRate),
	}, true
}

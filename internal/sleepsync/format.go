package sleepsync

import (
	"fmt"
	"time"
)

const (
	unknownDate = "Unknown Date"
	unknownTime = "Unknown"
	titleLayout = "02.01.2006"
	clockLayout = "15:04"
)

// FormatDuration renders seconds as "Hh Mm", flooring to whole minutes.
// Negative input renders as zero.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := seconds / 60
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatTitle renders a YYYY-MM-DD calendar date as DD.MM.YYYY
func FormatTitle(calendarDate string) string {
	d, err := time.Parse(time.DateOnly, calendarDate)
	if err != nil {
		return unknownDate
	}
	return d.Format(titleLayout)
}

// FormatClock renders t as HH:MM in loc, or "Unknown" for a zero time
func FormatClock(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return unknownTime
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(clockLayout)
}

// FormatTimeRange renders "HH:MM → HH:MM"
func FormatTimeRange(start, end time.Time, loc *time.Location) string {
	return FormatClock(start, loc) + " → " + FormatClock(end, loc)
}

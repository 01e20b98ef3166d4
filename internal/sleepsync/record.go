// Package sleepsync copies nightly sleep summaries from Garmin Connect
// into a notes database, one record per calendar date.
package sleepsync

import (
	"context"
	"time"
)

// Record is a sleep summary in the notes database schema
type Record struct {
	Title    string
	Times    string
	LongDate string
	// Start and End are zero when Garmin did not report them.
	Start time.Time
	End   time.Time

	TotalSleep string
	LightSleep string
	DeepSleep  string
	REMSleep   string
	AwakeTime  string
	RestingHR  int
}

// Sink is a target database holding at most one Record per calendar date
type Sink interface {
	// FindByDate returns the record whose LongDate equals date
	// (YYYY-MM-DD), or nil when there is none.
	FindByDate(ctx context.Context, date string) (*Record, error)
	// Create inserts a new record. It never updates an existing one.
	Create(ctx context.Context, record Record) error
}

// Lister lists records with from <= LongDate <= to, oldest first
type Lister interface {
	List(ctx context.Context, from, to string) ([]Record, error)
}

package sleepsync

import (
	"context"
	"fmt"

	"github.com/sstent/garminnotion/internal/garmin"
	"go.uber.org/zap"
)

// Outcome is what happened to one fetched day
type Outcome int

const (
	OutcomeExisting Outcome = iota
	OutcomeSkipped
	OutcomeWritten
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExisting:
		return "existing"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeWritten:
		return "written"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Summary counts the outcomes of one run
type Summary struct {
	Fetched  int
	Existing int
	Skipped  int
	Written  int
	Failed   int
}

func (s *Summary) add(o Outcome) {
	switch o {
	case OutcomeExisting:
		s.Existing++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeWritten:
		s.Written++
	case OutcomeFailed:
		s.Failed++
	}
}

// Syncer runs the fetch, dedupe, transform and write pipeline
type Syncer struct {
	fetcher     *Fetcher
	transformer Transformer
	sink        Sink
	dryRun      bool
	logger      *zap.Logger
}

// Option configures a Syncer
type Option func(*Syncer)

// WithDryRun makes the Syncer stop short of writing records
func WithDryRun(dryRun bool) Option {
	return func(s *Syncer) { s.dryRun = dryRun }
}

// NewSyncer creates a Syncer writing into sink
func NewSyncer(fetcher *Fetcher, transformer Transformer, sink Sink, logger *zap.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		fetcher:     fetcher,
		transformer: transformer,
		sink:        sink,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run syncs the last n days. Fetch and existence-check errors end the
// run; write errors are counted in Summary.Failed and the run continues.
func (s *Syncer) Run(ctx context.Context, n int) (Summary, error) {
	var summary Summary

	days, err := s.fetcher.Fetch(ctx, n)
	if err != nil {
		return summary, err
	}
	summary.Fetched = len(days)

	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		outcome, err := s.SyncDay(ctx, day)
		if err != nil {
			return summary, err
		}
		summary.add(outcome)
	}

	s.logger.Info("Sleep sync finished",
		zap.Int("fetched", summary.Fetched),
		zap.Int("existing", summary.Existing),
		zap.Int("skipped", summary.Skipped),
		zap.Int("written", summary.Written),
		zap.Int("failed", summary.Failed),
		zap.Bool("dry_run", s.dryRun),
	)
	return summary, nil
}

// SyncDay checks the sink for day's date and writes a new record if
// there is none and the day is not skipped.
func (s *Syncer) SyncDay(ctx context.Context, day garmin.SleepDay) (Outcome, error) {
	if day.Summary == nil {
		return OutcomeSkipped, nil
	}
	if _, ok := day.Summary.Date(); !ok {
		s.logger.Warn("Skipping sleep data without calendar date")
		return OutcomeSkipped, nil
	}
	date := day.Summary.CalendarDate

	existing, err := s.sink.FindByDate(ctx, date)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to check existing sleep entry for %s: %w", date, err)
	}
	if existing != nil {
		s.logger.Debug("Sleep entry already exists", zap.String("date", date))
		return OutcomeExisting, nil
	}

	record, ok := s.transformer.Transform(day)
	if !ok {
		s.logger.Info("Skipping sleep data as total sleep is 0", zap.String("date", date))
		return OutcomeSkipped, nil
	}

	if s.dryRun {
		s.logger.Info("Dry run: would create sleep entry",
			zap.String("date", date),
			zap.String("times", record.Times),
			zap.String("total_sleep", record.TotalSleep),
		)
		return OutcomeWritten, nil
	}

	if !s.write(ctx, record) {
		return OutcomeFailed, nil
	}
	return OutcomeWritten, nil
}

// write reports whether the record was created
func (s *Syncer) write(ctx context.Context, record Record) bool {
	if err := s.sink.Create(ctx, record); err != nil {
		s.logger.Error("Failed to create sleep entry",
			zap.String("date", record.LongDate),
			zap.Error(err),
		)
		return false
	}
	s.logger.Info("Created sleep entry", zap.String("date", record.LongDate))
	return true
}

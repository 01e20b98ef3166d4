package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/sstent/garminnotion/internal/sleepsync"
)

// ErrDuplicate is returned by Create when a record for the date exists
var ErrDuplicate = errors.New("sleep record already exists for date")

const timeLayout = time.RFC3339

// SQLiteDatabase stores sleep records in SQLite. It implements
// sleepsync.Sink and sleepsync.Lister.
type SQLiteDatabase struct {
	db  *sql.DB
	now func() time.Time
}

// NewDatabase creates a new SQLite database connection
func NewDatabase(path string) (*SQLiteDatabase, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create table if it doesn't exist
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return New(db), nil
}

// New wraps an open database whose schema already exists
func New(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db, now: time.Now}
}

// Close closes the database connection
func (d *SQLiteDatabase) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sleep_records (
		id TEXT PRIMARY KEY,
		long_date TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		times TEXT NOT NULL,
		sleep_start TEXT,
		sleep_end TEXT,
		total_sleep TEXT NOT NULL,
		light_sleep TEXT NOT NULL,
		deep_sleep TEXT NOT NULL,
		rem_sleep TEXT NOT NULL,
		awake_time TEXT NOT NULL,
		resting_hr INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const selectColumns = "SELECT long_date, title, times, sleep_start, sleep_end, total_sleep, light_sleep, deep_sleep, rem_sleep, awake_time, resting_hr FROM sleep_records"

// FindByDate returns the record for date, or nil
func (d *SQLiteDatabase) FindByDate(ctx context.Context, date string) (*sleepsync.Record, error) {
	rows, err := d.db.QueryContext(ctx, selectColumns+" WHERE long_date = ? ORDER BY created_at LIMIT 1", date)
	if err != nil {
		return nil, fmt.Errorf("failed to find sleep record for %s: %w", date, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// Create inserts record under a new UUID
func (d *SQLiteDatabase) Create(ctx context.Context, record sleepsync.Record) error {
	if record.LongDate == "" {
		return fmt.Errorf("sleep record has no date")
	}

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO sleep_records (id, long_date, title, times, sleep_start, sleep_end,
			total_sleep, light_sleep, deep_sleep, rem_sleep, awake_time, resting_hr, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		record.LongDate,
		record.Title,
		record.Times,
		nullableTime(record.Start),
		nullableTime(record.End),
		record.TotalSleep,
		record.LightSleep,
		record.DeepSleep,
		record.REMSleep,
		record.AwakeTime,
		record.RestingHR,
		d.now().UTC().Format(timeLayout),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %s", ErrDuplicate, record.LongDate)
		}
		return fmt.Errorf("failed to insert sleep record %s: %w", record.LongDate, err)
	}

	return nil
}

// List returns records with from <= long_date <= to, oldest first.
// Empty bounds are open.
func (d *SQLiteDatabase) List(ctx context.Context, from, to string) ([]sleepsync.Record, error) {
	query := selectColumns + " WHERE 1 = 1"
	var args []any
	if from != "" {
		query += " AND long_date >= ?"
		args = append(args, from)
	}
	if to != "" {
		query += " AND long_date <= ?"
		args = append(args, to)
	}
	query += " ORDER BY long_date"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sleep records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// scanRecords converts database rows to Records
func scanRecords(rows *sql.Rows) ([]sleepsync.Record, error) {
	var records []sleepsync.Record

	for rows.Next() {
		var r sleepsync.Record
		var start, end sql.NullString

		if err := rows.Scan(&r.LongDate, &r.Title, &r.Times, &start, &end,
			&r.TotalSleep, &r.LightSleep, &r.DeepSleep, &r.REMSleep, &r.AwakeTime, &r.RestingHR); err != nil {
			return nil, fmt.Errorf("failed to scan sleep record: %w", err)
		}

		r.Start = parseTime(start)
		r.End = parseTime(end)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sleep records: %w", err)
	}

	return records, nil
}

func nullableTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, _ := time.Parse(timeLayout, s.String)
	return t
}

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"plutoshell/internal/backend"
)

// DBFileName is the history database under the data root.
const DBFileName = "history.db"

const defaultRecentLimit = 20

// Launch status values.
const (
	StatusRunning = "running"
	StatusStopped = "stopped"
	StatusFailed  = "failed"
)

// ErrUnknownLaunch is returned when a stop refers to a launch never recorded.
var ErrUnknownLaunch = errors.New("unknown launch id")

// Entry is one row of launch history.
type Entry struct {
	LaunchID     string    `json:"launch_id"`
	Status       string    `json:"status"`
	PID          int       `json:"pid,omitempty"`
	Binary       string    `json:"binary,omitempty"`
	DataRoot     string    `json:"data_root,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	StoppedAt    time.Time `json:"stopped_at,omitzero"`
	Trigger      string    `json:"trigger,omitempty"`
	Exit         string    `json:"exit,omitempty"`
	Forced       bool      `json:"forced"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Store persists launch history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database under dataRoot.
func Open(dataRoot string) (*Store, error) {
	if err := os.MkdirAll(dataRoot, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data root: %w", err)
	}

	dbPath := filepath.Join(dataRoot, DBFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordLaunch inserts a running launch.
func (s *Store) RecordLaunch(ctx context.Context, rec backend.LaunchRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO launches (launch_id, status, pid, binary_path, data_root, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		rec.LaunchID,
		StatusRunning,
		rec.PID,
		nullableString(rec.Binary),
		nullableString(rec.DataRoot),
		formatTime(rec.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert launch: %w", err)
	}
	return nil
}

// RecordStop marks a running launch as stopped.
func (s *Store) RecordStop(ctx context.Context, rec backend.StopRecord) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE launches
            SET status = ?, stopped_at = ?, stop_trigger = ?, exit_detail = ?, forced = ?
          WHERE launch_id = ?`,
		StatusStopped,
		formatTime(rec.StoppedAt),
		nullableString(rec.Trigger),
		nullableString(rec.Exit),
		boolToInt(rec.Forced),
		rec.LaunchID,
	)
	if err != nil {
		return fmt.Errorf("update launch: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLaunch, rec.LaunchID)
	}
	return nil
}

// RecordFailure inserts a launch that never started.
func (s *Store) RecordFailure(ctx context.Context, rec backend.FailureRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO launches (launch_id, status, binary_path, data_root, started_at, error_kind, error_message)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.LaunchID,
		StatusFailed,
		nullableString(rec.Binary),
		nullableString(rec.DataRoot),
		formatTime(rec.At),
		nullableString(rec.Kind),
		nullableString(rec.Message),
	)
	if err != nil {
		return fmt.Errorf("insert launch failure: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit
// uses the default.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT launch_id, status, pid, binary_path, data_root, started_at, stopped_at,
                stop_trigger, exit_detail, forced, error_kind, error_message
           FROM launches
          ORDER BY started_at DESC, id DESC
          LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query launches: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan launch: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate launches: %w", err)
	}
	return entries, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		launchID     string
		status       string
		pid          sql.NullInt64
		binary       sql.NullString
		dataRoot     sql.NullString
		startedRaw   string
		stoppedRaw   sql.NullString
		trigger      sql.NullString
		exit         sql.NullString
		forced       int64
		errorKind    sql.NullString
		errorMessage sql.NullString
	)
	if err := scanner.Scan(
		&launchID,
		&status,
		&pid,
		&binary,
		&dataRoot,
		&startedRaw,
		&stoppedRaw,
		&trigger,
		&exit,
		&forced,
		&errorKind,
		&errorMessage,
	); err != nil {
		return Entry{}, err
	}

	entry := Entry{
		LaunchID:     launchID,
		Status:       status,
		PID:          int(pid.Int64),
		Binary:       binary.String,
		DataRoot:     dataRoot.String,
		StartedAt:    parseTime(startedRaw),
		Trigger:      trigger.String,
		Exit:         exit.String,
		Forced:       forced != 0,
		ErrorKind:    errorKind.String,
		ErrorMessage: errorMessage.String,
	}
	if stoppedRaw.Valid {
		entry.StoppedAt = parseTime(stoppedRaw.String)
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

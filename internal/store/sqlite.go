package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/neurosim/internal/pathutil"
)

// SQLiteJournal implements Journal on a SQLite database file.
type SQLiteJournal struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	seq    int64
	closed bool
}

// NewSQLiteJournal opens (creating if needed) the journal database at path.
func NewSQLiteJournal(ctx context.Context, path string) (*SQLiteJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory for %s: %w", pathutil.RedactPath(path), err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", pathutil.RedactPath(path), err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	j := &SQLiteJournal{db: db, path: path}
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&j.seq); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read event sequence: %w", err)
	}
	return j, nil
}

// Path returns the database file path.
func (j *SQLiteJournal) Path() string { return j.path }

// StartRun implements Journal.
func (j *SQLiteJournal) StartRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, seed, neurons, started_at, ticks) VALUES (?, ?, ?, ?, ?)`,
		run.ID, int64(run.Seed), run.Neurons, formatTime(run.StartedAt), int64(run.Ticks))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// FinishRun implements Journal.
func (j *SQLiteJournal) FinishRun(ctx context.Context, runID string, ticks uint64, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	res, err := j.db.ExecContext(ctx,
		`UPDATE runs SET ended_at = ?, ticks = ? WHERE id = ?`,
		formatTime(at), int64(ticks), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// Record implements Journal.
func (j *SQLiteJournal) Record(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	var exists int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, event.RunID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to look up run: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("record event for %s: %w", event.RunID, ErrRunNotFound)
	}

	j.seq++
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (id, run_id, seq, kind, concept_id, label, points, spread, score, tick, elapsed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.RunID, j.seq, event.Kind, event.ConceptID, event.Label,
		event.Points, event.Spread, event.Score, int64(event.Tick), event.Elapsed,
		formatTime(event.CreatedAt))
	if err != nil {
		j.seq--
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Events implements Journal.
func (j *SQLiteJournal) Events(ctx context.Context, q Query) ([]Event, error) {
	query := `SELECT id, run_id, kind, concept_id, COALESCE(label, ''), points, spread, score, tick, elapsed, created_at
		FROM events WHERE 1=1`
	var args []any
	if q.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, q.RunID)
	}
	if q.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, q.Kind)
	}
	query += ` ORDER BY seq DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e       Event
			tick    int64
			created string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Kind, &e.ConceptID, &e.Label,
			&e.Points, &e.Spread, &e.Score, &tick, &e.Elapsed, &created); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Tick = uint64(tick)
		e.CreatedAt = parseTime(created)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Runs implements Journal.
func (j *SQLiteJournal) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, seed, neurons, started_at, ended_at, ticks FROM runs ORDER BY rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r           Run
			seed, ticks int64
			started     string
			ended       sql.NullString
		)
		if err := rows.Scan(&r.ID, &seed, &r.Neurons, &started, &ended, &ticks); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Seed = uint64(seed)
		r.Ticks = uint64(ticks)
		r.StartedAt = parseTime(started)
		if ended.Valid {
			t := parseTime(ended.String)
			r.EndedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Counts implements Journal.
func (j *SQLiteJournal) Counts(ctx context.Context, runID string) (map[string]int, error) {
	query := `SELECT kind, COUNT(*) FROM events`
	var args []any
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` GROUP BY kind`

	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// Close closes the database. Safe to call more than once.
func (j *SQLiteJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Package store keeps a SQLite catalog of analysis runs and the series they
// produced, so results can be listed and reloaded without rerunning.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chrissnell/oceanlab/internal/dataset"
)

// timeLayout sorts lexically for UTC times
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a run or series is not in the catalog
var ErrNotFound = errors.New("not found in catalog")

// Run is one recorded analysis invocation
type Run struct {
	ID      uuid.UUID
	Kind    string
	Params  json.RawMessage
	Created time.Time
}

// Store is a catalog database handle
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog at dbPath and brings its schema up to date
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	migrator, err := NewMigrator(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := migrator.MigrateUp(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores a new run of kind with its parameters encoded as JSON
func (s *Store) RecordRun(ctx context.Context, kind string, params any) (uuid.UUID, error) {
	encoded, err := json.Marshal(params)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode %s parameters: %w", kind, err)
	}
	id := uuid.New()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO runs (id, kind, params, created_at) VALUES (?, ?, ?, ?)",
		id.String(), kind, string(encoded), time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record run: %w", err)
	}
	return id, nil
}

// Runs lists recorded runs, newest first. An empty kind lists every run.
func (s *Store) Runs(ctx context.Context, kind string) ([]Run, error) {
	query := "SELECT id, kind, params, created_at FROM runs"
	var args []any
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var id, params, created string
		var run Run
		if err := rows.Scan(&id, &run.Kind, &params, &created); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		if run.Created, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("run %s created_at %q: %w", id, created, err)
		}
		run.Params = json.RawMessage(params)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveSeries stores values against times under name for a run, replacing
// any series of the same name. NaN values are stored as NULL.
func (s *Store) SaveSeries(ctx context.Context, runID uuid.UUID, name string, times []time.Time, values []float64) error {
	if len(times) != len(values) {
		return fmt.Errorf("series %q has %d times and %d values", name, len(times), len(values))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE id = ?", runID.String()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to look up run: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM series WHERE run_id = ? AND name = ?", runID.String(), name); err != nil {
		return fmt.Errorf("failed to clear series %q: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO series (run_id, name, idx, time, value) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare series insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range times {
		value := sql.NullFloat64{Float64: values[i], Valid: !math.IsNaN(values[i])}
		if _, err := stmt.ExecContext(ctx, runID.String(), name, i, t.UTC().Format(timeLayout), value); err != nil {
			return fmt.Errorf("failed to insert sample %d of %q: %w", i, name, err)
		}
	}
	return tx.Commit()
}

// LoadSeries reads back a series saved by SaveSeries
func (s *Store) LoadSeries(ctx context.Context, runID uuid.UUID, name string) (*dataset.Series, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT time, value FROM series WHERE run_id = ? AND name = ? ORDER BY idx",
		runID.String(), name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer rows.Close()

	series := &dataset.Series{Name: name}
	for rows.Next() {
		var stamp string
		var value sql.NullFloat64
		if err := rows.Scan(&stamp, &value); err != nil {
			return nil, fmt.Errorf("failed to scan series row: %w", err)
		}
		t, err := time.Parse(timeLayout, stamp)
		if err != nil {
			return nil, fmt.Errorf("series %q time %q: %w", name, stamp, err)
		}
		v := math.NaN()
		if value.Valid {
			v = value.Float64
		}
		series.Time = append(series.Time, t)
		series.Values = append(series.Values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(series.Time) == 0 {
		return nil, fmt.Errorf("series %q of run %s: %w", name, runID, ErrNotFound)
	}
	return series, nil
}

// SeriesNames lists the series stored for a run
func (s *Store) SeriesNames(ctx context.Context, runID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT name FROM series WHERE run_id = ? ORDER BY name", runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query series names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan series name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

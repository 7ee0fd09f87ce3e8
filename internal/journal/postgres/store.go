// Package postgres persists the run journal to PostgreSQL as JSON payloads,
// one row per run. The schema is ensured at startup so deployments need no
// migration step.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"aemcore/internal/journal"
)

var (
	openMu  sync.Mutex
	sqlOpen = sql.Open
)

// OverrideSQLOpen swaps the database opener, returning a restore func.
// Tests use it to inject failures or substitute drivers.
func OverrideSQLOpen(fn func(driver, dsn string) (*sql.DB, error)) func() {
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = fn
	openMu.Unlock()
	return func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	}
}

// Store keeps the working set in memory and mirrors every write to the
// database, reloading the full journal at startup.
type Store struct {
	*journal.Memory
	db *sql.DB
}

// NewStore connects, ensures the runs table, and loads existing entries.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}
	openMu.Lock()
	open := sqlOpen
	openMu.Unlock()
	db, err := open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS compute_runs (
		id TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create compute_runs table: %w", err)
	}
	s := &Store{Memory: journal.NewMemory(), db: db}
	if err := s.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM compute_runs`)
	if err != nil {
		return fmt.Errorf("select compute_runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return fmt.Errorf("scan run: %w", err)
		}
		var run journal.Run
		if err := json.Unmarshal(payload, &run); err != nil {
			return fmt.Errorf("decode run: %w", err)
		}
		if err := s.Memory.Record(ctx, run); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Record upserts the run in memory and in the database.
func (s *Store) Record(ctx context.Context, run journal.Run) error {
	if err := s.Memory.Record(ctx, run); err != nil {
		return err
	}
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.ID, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO compute_runs (id, payload) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`,
		run.ID, payload); err != nil {
		return fmt.Errorf("upsert run %s: %w", run.ID, err)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Package history persists solved dispatch results to Postgres, so a
// caller (the HTTP API served by cmd/dcdispatchd) can review how a site's plan evolved
// across re-solves. A Store is optional everywhere it is held — adapting
// the teacher's nil-checked s.db field — callers construct one only if a
// DSN was configured.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/devskill-org/dcdispatch/dispatch"
)

// Store wraps a *sql.DB bound to the lib/pq driver.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres at dsn and ensures the results table exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS dispatch_results (
			id SERIAL PRIMARY KEY,
			solved_at TIMESTAMPTZ NOT NULL,
			scenario_hash TEXT NOT NULL,
			reliability_target DOUBLE PRECISION,
			objective DOUBLE PRECISION NOT NULL,
			reliability DOUBLE PRECISION NOT NULL,
			eue DOUBLE PRECISION NOT NULL,
			lole INTEGER NOT NULL,
			sizing_mw DOUBLE PRECISION NOT NULL,
			sizing_mwh DOUBLE PRECISION NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

// SaveResult inserts one row summarizing a solved Result. scenarioHash lets
// a caller correlate rows produced from the same input scenario (e.g. a
// sweep) without persisting the full scenario body.
func (s *Store) SaveResult(ctx context.Context, scenarioHash string, res *dispatch.Result) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("history: store not available")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dispatch_results (
			solved_at, scenario_hash, reliability_target, objective,
			reliability, eue, lole, sizing_mw, sizing_mwh
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		time.Now().UTC(),
		scenarioHash,
		res.ReliabilityTarget,
		res.Objective,
		res.Reliability,
		res.EUE,
		res.LOLE,
		res.SizingMW,
		res.SizingMWh,
	)
	if err != nil {
		return fmt.Errorf("history: save result: %w", err)
	}
	return nil
}

// Row is one persisted result, as read back by Recent.
type Row struct {
	SolvedAt           time.Time
	ScenarioHash       string
	ReliabilityTarget  *float64
	Objective          float64
	Reliability        float64
	EUE                float64
	LOLE               int
	SizingMW           float64
	SizingMWh          float64
}

// Recent returns the most recently solved rows for a scenario hash, newest
// first, capped at limit.
func (s *Store) Recent(ctx context.Context, scenarioHash string, limit int) ([]Row, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("history: store not available")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT solved_at, scenario_hash, reliability_target, objective,
		       reliability, eue, lole, sizing_mw, sizing_mwh
		FROM dispatch_results
		WHERE scenario_hash = $1
		ORDER BY solved_at DESC
		LIMIT $2
	`, scenarioHash, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var target sql.NullFloat64
		if err := rows.Scan(&r.SolvedAt, &r.ScenarioHash, &target, &r.Objective,
			&r.Reliability, &r.EUE, &r.LOLE, &r.SizingMW, &r.SizingMWh); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		if target.Valid {
			r.ReliabilityTarget = &target.Float64
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate rows: %w", err)
	}
	return out, nil
}

// Package sqlite persists weekly inflow snapshots to a SQLite database so
// downstream model stages can query them without re-reading raw mobility files.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flu-mobility-etl/internal/domain"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS inflow_runs (
	run_id       TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	generated_at TEXT NOT NULL,
	row_count    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS weekly_inflows (
	week         TEXT NOT NULL,
	dest_fips    TEXT NOT NULL,
	total_inflow REAL NOT NULL,
	run_id       TEXT NOT NULL REFERENCES inflow_runs(run_id),
	PRIMARY KEY (week, dest_fips)
);
`

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// Store writes inflow snapshots into SQLite. It implements pipeline.InflowLoader.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open inflow db: %w", err)
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply inflow schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Name identifies the sink in logs and metrics.
func (s *Store) Name() string { return "sqlite" }

// LoadInflows upserts every row of the snapshot in one transaction. A later run
// replaces the total for a (week, dest_fips) pair it also covers.
func (s *Store) LoadInflows(ctx context.Context, snapshot domain.InflowSnapshot) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin inflow tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO inflow_runs (run_id, source, generated_at, row_count) VALUES (?, ?, ?, ?)`,
		snapshot.RunID, snapshot.Source, snapshot.GeneratedAt.Format(time.RFC3339), len(snapshot.Rows),
	); err != nil {
		return fmt.Errorf("record inflow run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO weekly_inflows (week, dest_fips, total_inflow, run_id) VALUES (?, ?, ?, ?)
		ON CONFLICT (week, dest_fips) DO UPDATE SET total_inflow = excluded.total_inflow, run_id = excluded.run_id`)
	if err != nil {
		return fmt.Errorf("prepare inflow upsert: %w", err)
	}
	defer stmt.Close()

	for _, row := range snapshot.Rows {
		if _, err = stmt.ExecContext(ctx, row.Week, row.DestFIPS, row.TotalInflow, snapshot.RunID); err != nil {
			return fmt.Errorf("upsert inflow %s/%s: %w", row.Week, row.DestFIPS, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit inflow tx: %w", err)
	}
	s.logger.Info("stored weekly inflows", "rows", len(snapshot.Rows), "run_id", snapshot.RunID)
	return nil
}

// Inflows returns stored rows for one destination, ordered by week.
func (s *Store) Inflows(ctx context.Context, destFIPS string) ([]domain.InflowRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT week, dest_fips, total_inflow FROM weekly_inflows WHERE dest_fips = ? ORDER BY week`, destFIPS)
	if err != nil {
		return nil, fmt.Errorf("query inflows: %w", err)
	}
	defer rows.Close()

	var out []domain.InflowRow
	for rows.Next() {
		var row domain.InflowRow
		if err := rows.Scan(&row.Week, &row.DestFIPS, &row.TotalInflow); err != nil {
			return nil, fmt.Errorf("scan inflow: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

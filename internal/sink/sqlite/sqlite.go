package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spigell/job-router/internal/routing"
	"github.com/spigell/job-router/internal/sink"
)

const schemaVersion = 1

// Store keeps every destination in one table, partitioned by category.
type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*Store, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %q: %w", path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite %q: %w", path, err)
	}

	return &Store{db: db}, nil
}

// Prepare creates or upgrades the schema. Destinations share one table.
func (s *Store) Prepare(ctx context.Context, _ []routing.Category) error {
	return s.migrate(ctx)
}

func (s *Store) hasSchema(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'jobs'`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking schema: %w", err)
	}
	return n > 0, nil
}

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	if v >= schemaVersion {
		return tx.Commit()
	}

	stmts := []string{`
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  category TEXT NOT NULL,
  role TEXT NOT NULL,
  company TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  mode TEXT NOT NULL DEFAULT '',
  link TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  salary TEXT NOT NULL DEFAULT '',
  posted_date TEXT NOT NULL DEFAULT '',
  score INTEGER,
  summary TEXT NOT NULL DEFAULT '',
  priority TEXT NOT NULL DEFAULT '',
  seniority TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  run_id TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_category ON jobs(category);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_link ON jobs(link) WHERE link <> '';`,
		fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion),
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}

	return tx.Commit()
}

// ReadKeys returns nothing for a database that was never prepared.
func (s *Store) ReadKeys(ctx context.Context, dest routing.Category) ([]string, error) {
	ok, err := s.hasSchema(ctx)
	if err != nil || !ok {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT link FROM jobs WHERE category = ? AND link <> '' ORDER BY id`, string(dest))
	if err != nil {
		return nil, fmt.Errorf("querying %s keys: %w", dest, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning %s key: %w", dest, err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// Append ignores a link that is already stored anywhere.
func (s *Store) Append(ctx context.Context, dest routing.Category, row sink.Row) error {
	var score sql.NullInt64
	if row.Scored {
		score = sql.NullInt64{Int64: int64(row.Score), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO jobs (
  category, role, company, location, mode, link, source, salary, posted_date,
  score, summary, priority, seniority, description, run_id, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(dest), row.Role, row.Company, row.Location, row.Mode, row.Link, row.Source, row.Salary, row.PostedDate,
		score, row.Summary, row.Priority, row.Seniority, row.Description, row.RunID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting into %s: %w", dest, err)
	}
	return nil
}

// rows returns the stored rows of dest in insertion order.
func (s *Store) rows(ctx context.Context, dest routing.Category) ([]sink.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT role, company, location, mode, link, source, salary, posted_date, score, summary, priority, seniority, description, run_id
FROM jobs WHERE category = ? ORDER BY id`, string(dest))
	if err != nil {
		return nil, fmt.Errorf("querying %s rows: %w", dest, err)
	}
	defer rows.Close()

	var out []sink.Row
	for rows.Next() {
		var r sink.Row
		var score sql.NullInt64
		if err := rows.Scan(&r.Role, &r.Company, &r.Location, &r.Mode, &r.Link, &r.Source, &r.Salary, &r.PostedDate,
			&score, &r.Summary, &r.Priority, &r.Seniority, &r.Description, &r.RunID); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", dest, err)
		}
		if score.Valid {
			r.Score, r.Scored = int(score.Int64), true
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

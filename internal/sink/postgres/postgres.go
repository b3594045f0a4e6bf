package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spigell/job-router/internal/routing"
	"github.com/spigell/job-router/internal/sink"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
  id BIGSERIAL PRIMARY KEY,
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
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_jobs_category ON jobs(category);
CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_link ON jobs(link) WHERE link <> '';
`

type Store struct {
	pool *pgxpool.Pool
}

func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Prepare creates the jobs table. Destinations share it.
func (s *Store) Prepare(ctx context.Context, _ []routing.Category) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// ReadKeys returns nothing for a database that was never prepared.
func (s *Store) ReadKeys(ctx context.Context, dest routing.Category) ([]string, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT to_regclass('jobs') IS NOT NULL`).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking schema: %w", err)
	}
	if !exists {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT link FROM jobs WHERE category = $1 AND link <> '' ORDER BY id`, string(dest))
	if err != nil {
		return nil, fmt.Errorf("querying %s keys: %w", dest, err)
	}

	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collecting %s keys: %w", dest, err)
	}
	return keys, nil
}

func (s *Store) Append(ctx context.Context, dest routing.Category, row sink.Row) error {
	var score *int
	if row.Scored {
		v := row.Score
		score = &v
	}

	_, err := s.pool.Exec(ctx, `
INSERT INTO jobs (
  category, role, company, location, mode, link, source, salary, posted_date,
  score, summary, priority, seniority, description, run_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT DO NOTHING`,
		string(dest), row.Role, row.Company, row.Location, row.Mode, row.Link, row.Source, row.Salary, row.PostedDate,
		score, row.Summary, row.Priority, row.Seniority, row.Description, row.RunID,
	)
	if err != nil {
		return fmt.Errorf("inserting into %s: %w", dest, err)
	}
	return nil
}

func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

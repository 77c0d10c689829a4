package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultTableName = "default"

// PostgresStorage persists the encoded table as one jsonb row in PostgreSQL.
type PostgresStorage struct {
	pool *pgxpool.Pool
	name string
}

func NewPostgresStorage(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initPostgresSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{pool: pool, name: defaultTableName}, nil
}

func initPostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmt := `CREATE TABLE IF NOT EXISTS memory_tables (
		name TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("init schema failed on %q: %w", stmt, err)
	}
	return nil
}

func (s *PostgresStorage) Read(ctx context.Context) ([]byte, error) {
	var payload string
	err := s.pool.QueryRow(ctx,
		`SELECT payload::text FROM memory_tables WHERE name=$1`,
		s.name,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read memory table: %w", err)
	}
	return []byte(payload), nil
}

func (s *PostgresStorage) Write(ctx context.Context, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO memory_tables (name, payload, updated_at)
		 VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		s.name,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("write memory table: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}

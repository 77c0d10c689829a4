package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage persists the encoded table as one row in a local SQLite file.
type SQLiteStorage struct {
	db   *sql.DB
	name string
}

func NewSQLiteStorage(ctx context.Context, path string) (*SQLiteStorage, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	stmt := `CREATE TABLE IF NOT EXISTS memory_tables (
		name TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStorage{db: db, name: defaultTableName}, nil
}

func (s *SQLiteStorage) Read(ctx context.Context) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM memory_tables WHERE name = ?`, s.name,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read memory table: %w", err)
	}
	return []byte(payload), nil
}

func (s *SQLiteStorage) Write(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memory_tables (name, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		s.name, string(data),
	)
	if err != nil {
		return fmt.Errorf("write memory table: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

package memory

import (
	"context"
	"fmt"
	"strings"
)

// StorageConfig selects and configures a storage backend.
type StorageConfig struct {
	Backend     string
	FilePath    string
	DatabaseURL string
	SQLitePath  string
}

// NewStorage creates the configured backend; the JSON file backend is the default.
func NewStorage(ctx context.Context, cfg StorageConfig) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "file":
		return NewFileStorage(cfg.FilePath), nil
	case "postgres":
		return NewPostgresStorage(ctx, cfg.DatabaseURL)
	case "sqlite":
		return NewSQLiteStorage(ctx, cfg.SQLitePath)
	case "memory":
		return NewInMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported memory backend %q", cfg.Backend)
	}
}

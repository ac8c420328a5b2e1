package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"

	"student-manager-go/config"
	"student-manager-go/models"
)

// Backend persists the whole student collection under a single key.
// Load never fails: missing or unreadable data comes back as an empty list.
type Backend interface {
	Load(ctx context.Context) []models.Student
	Save(ctx context.Context, students []models.Student) error
	Close() error
}

// New creates a Backend from the storage configuration.
//
// Supported backends:
//
//	"redis"    - one string key in redis (default)
//	"sqlite"   - kv_entries table in a SQLite file at storage.path
//	"postgres" - kv_entries table in the database at storage.dsn
//	"json"     - a single JSON file at storage.path
//	"memory"   - in-process only, lost on exit
func New(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	switch cfg.Backend {
	case "redis", "":
		client, err := InitializeRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisPersistence(client, key), nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = filepath.Join("data", "students.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return OpenGormPersistence(sqlite.Open(path), key)
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("storage backend postgres requires a dsn")
		}
		return OpenGormPersistence(postgres.Open(cfg.DSN), key)
	case "json":
		path := cfg.Path
		if path == "" {
			path = filepath.Join("data", "students.json")
		}
		return NewFilePersistence(path)
	case "memory":
		return NewMemoryPersistence(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q (supported: redis, sqlite, postgres, json, memory)", cfg.Backend)
	}
}

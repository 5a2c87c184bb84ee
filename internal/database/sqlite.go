package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

type sqliteService struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (creating if needed) a single-file store at path.
func NewSQLite(ctx context.Context, path string) (Service, error) {
	if path == "" {
		path = "leaddesk.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer keeps whole-collection writes serialized at the file level too
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS collections (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create collections table: %w", err)
	}
	return &sqliteService{db: db, path: path}, nil
}

func (s *sqliteService) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM collections WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return payload, nil
}

func (s *sqliteService) Save(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *sqliteService) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE key = ?`, key); err != nil {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	return nil
}

func (s *sqliteService) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := map[string]string{"driver": DriverSQLite, "path": s.path}
	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections`).Scan(&n); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("count collections: %v", err)
		return stats
	}
	stats["status"] = "up"
	stats["message"] = "It's healthy"
	stats["collections"] = strconv.Itoa(n)
	return stats
}

func (s *sqliteService) Close() error {
	return s.db.Close()
}

// Package database persists the leaddesk collections. Each collection is a
// single JSON document stored under its own key and is always read and
// written whole.
package database

import (
	"context"
	"fmt"
)

// Service is the key-value store behind the collections.
type Service interface {
	// Load returns the payload stored under key, or nil if the key is absent.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the payload stored under key.
	Save(ctx context.Context, key string, payload []byte) error
	// Clear removes key. Clearing an absent key is not an error.
	Clear(ctx context.Context, key string) error
	// Health returns a map of health status information.
	Health() map[string]string
	// Close terminates the connection to the backing store.
	Close() error
}

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns the Service for driver. dsn is the file path for sqlite and
// the connection string for postgres; it is ignored for memory.
func Open(ctx context.Context, driver, dsn string) (Service, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(ctx, dsn)
	case DriverPostgres:
		return NewPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

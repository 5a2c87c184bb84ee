// Package storage keeps attachment bytes in a content-addressed blob store.
// Keys have the form attachments/<sha256>/<name>, so uploading the same file
// twice yields the same key and a single stored object.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("blob not found")

// Object describes a stored blob.
type Object struct {
	Key         string
	SHA256      string // hash of the original bytes
	Size        int64
	ContentType string
	UploadedAt  time.Time
}

// DownloadResult is a fetched blob.
type DownloadResult struct {
	Data        []byte
	FileHash    string
	FileSize    int64
	ContentType string
}

// BlobStore stores attachment content.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (Object, error)
	Get(ctx context.Context, key string) (*DownloadResult, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Drivers accepted by Open.
const (
	DriverFilesystem = "fs"
	DriverMemory     = "memory"
	DriverS3         = "s3"
)

// Config selects and configures a BlobStore.
type Config struct {
	Driver string
	FSRoot string
	S3     S3Config
}

// Durable reports whether blobs outlive the process.
func (c Config) Durable() bool {
	return c.Driver != DriverMemory
}

// Open returns the BlobStore for cfg.Driver. The filesystem store is the
// default.
func Open(ctx context.Context, cfg Config) (BlobStore, error) {
	switch cfg.Driver {
	case DriverFilesystem, "":
		return NewFilesystemStore(cfg.FSRoot)
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverS3:
		return NewS3Service(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

// Hash returns the hex sha256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ContentKey returns the key data is stored under.
func ContentKey(hash, name string) string {
	return fmt.Sprintf("attachments/%s/%s", hash, SafeName(name))
}

// SafeName strips directories and anything outside [A-Za-z0-9._-] from a
// client supplied file name.
func SafeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	clean = strings.TrimLeft(clean, ".")
	if clean == "" {
		return "file"
	}
	return clean
}

// ValidateFileIntegrity checks data against the hash it was stored with.
func ValidateFileIntegrity(data []byte, expectedHash string) error {
	if actual := Hash(data); actual != expectedHash {
		return fmt.Errorf("file integrity check failed: expected %s, got %s", expectedHash, actual)
	}
	return nil
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultFSRoot is used when no root directory is configured.
const DefaultFSRoot = "./blobdata"

// FilesystemStore keeps blobs as files under a root directory. Each blob has
// a <file>.meta sidecar holding its content type.
type FilesystemStore struct {
	root string
}

type fsMeta struct {
	ContentType string    `json:"contentType,omitempty"`
	SHA256      string    `json:"sha256"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewFilesystemStore returns a store rooted at root, creating it if needed.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if root == "" {
		root = DefaultFSRoot
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FilesystemStore{root: root}, nil
}

func (s *FilesystemStore) pathFor(key string) (string, error) {
	if strings.TrimSpace(key) == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// Put writes data under its content key. Content already stored under the
// same key is kept along with its original content type.
func (s *FilesystemStore) Put(_ context.Context, name, contentType string, data []byte) (Object, error) {
	hash := Hash(data)
	key := ContentKey(hash, name)
	dataPath, err := s.pathFor(key)
	if err != nil {
		return Object{}, err
	}

	if meta, err := readFSMeta(dataPath + ".meta"); err == nil {
		return Object{Key: key, SHA256: hash, Size: meta.Size, ContentType: meta.ContentType, UploadedAt: meta.CreatedAt}, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Object{}, err
	}

	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return Object{}, err
	}
	if err := writeFileAtomic(dataPath, data); err != nil {
		return Object{}, fmt.Errorf("write blob: %w", err)
	}
	meta := fsMeta{ContentType: contentType, SHA256: hash, Size: int64(len(data)), CreatedAt: time.Now().UTC()}
	raw, err := json.Marshal(meta)
	if err != nil {
		return Object{}, err
	}
	// the sidecar goes last so a half written blob is never reported as stored
	if err := writeFileAtomic(dataPath+".meta", raw); err != nil {
		return Object{}, fmt.Errorf("write blob metadata: %w", err)
	}
	return Object{Key: key, SHA256: hash, Size: meta.Size, ContentType: contentType, UploadedAt: meta.CreatedAt}, nil
}

func (s *FilesystemStore) Get(_ context.Context, key string) (*DownloadResult, error) {
	dataPath, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	meta, err := readFSMeta(dataPath + ".meta")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(dataPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return &DownloadResult{
		Data:        data,
		FileHash:    Hash(data),
		FileSize:    int64(len(data)),
		ContentType: meta.ContentType,
	}, nil
}

func (s *FilesystemStore) Delete(_ context.Context, key string) error {
	dataPath, err := s.pathFor(key)
	if err != nil {
		return err
	}
	for _, p := range []string{dataPath + ".meta", dataPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete blob: %w", err)
		}
	}
	return nil
}

func (s *FilesystemStore) Exists(_ context.Context, key string) (bool, error) {
	dataPath, err := s.pathFor(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(dataPath + ".meta")
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func readFSMeta(path string) (fsMeta, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fsMeta{}, err
	}
	var m fsMeta
	if err := json.Unmarshal(raw, &m); err != nil {
		return fsMeta{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return m, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Package storage persists uploaded audio. The orchestrator mirrors
// recordings through it in dev mode; failures are logged, never fatal.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store saves a named blob and returns a location usable for debugging
// (a filesystem path or a URL).
type Store interface {
	Save(ctx context.Context, name string, data io.Reader, contentType string) (string, error)
}

// LocalStore writes blobs into a directory on disk. This is the dev-mode
// default.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Save(_ context.Context, name string, data io.Reader, _ string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}

	dest := filepath.Join(s.dir, filepath.Base(name))
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("write file: %w", err)
	}

	return dest, nil
}

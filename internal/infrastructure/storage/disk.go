// Package storage keeps uploaded files on the local disk.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DiskStore writes files into a single directory served as static content.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if it does not exist.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes data under name, replacing any previous file. The write goes
// to a temp file first so readers never see a partial photo.
func (s *DiskStore) Save(_ context.Context, name string, data []byte) error {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid file name %q", name)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}

// Dir is the directory files are written to.
func (s *DiskStore) Dir() string {
	return s.dir
}

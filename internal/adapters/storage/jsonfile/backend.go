// Package jsonfile stores each collection as <dir>/<collection>.json.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/williskipsjr/SoulSync-Beta/internal/domain"
)

type Backend struct {
	dir string
}

// NewBackend creates dir if needed.
func NewBackend(dir string) (*Backend, error) {
	if dir == "" {
		return nil, fmt.Errorf("jsonfile: data directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("jsonfile: create data directory: %w", err)
	}
	return &Backend{dir: dir}, nil
}

func (b *Backend) Path(name domain.CollectionName) string {
	return filepath.Join(b.dir, string(name)+".json")
}

func (b *Backend) ReadCollection(_ context.Context, name domain.CollectionName) ([]byte, error) {
	data, err := os.ReadFile(b.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("jsonfile: read %s: %w", name, err)
	}
	return data, nil
}

// WriteCollection replaces the file atomically: temp file in the same
// directory, fsync, rename.
func (b *Backend) WriteCollection(_ context.Context, name domain.CollectionName, data []byte) error {
	if err := writeFileAtomic(b.Path(name), data, 0o600); err != nil {
		return fmt.Errorf("jsonfile: write %s: %w", name, err)
	}
	return nil
}

func (b *Backend) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".tmp_"+filepath.Base(path)+"_*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
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

	return os.Rename(tmpName, path)
}

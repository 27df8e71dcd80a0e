package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Backend persists one opaque document. Read returns nil, nil when nothing
// has been stored yet. Write replaces the whole document.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Compile-time interface checks.
var (
	_ Backend = (*FileBackend)(nil)
	_ Backend = (*PostgresBackend)(nil)
	_ Backend = (*PebbleBackend)(nil)
)

// FileBackend keeps the document in a single JSON file. Writes go to a
// sibling temp file which is then renamed over the target, so a reader never
// sees a partially written file.
type FileBackend struct {
	fs   afero.Fs
	path string
}

func NewFileBackend(fs afero.Fs, path string) *FileBackend {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileBackend{fs: fs, path: path}
}

func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Read(_ context.Context) ([]byte, error) {
	data, err := afero.ReadFile(b.fs, b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	return data, nil
}

func (b *FileBackend) Write(_ context.Context, data []byte) error {
	if dir := filepath.Dir(b.path); dir != "." {
		if err := b.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	tmp := b.path + ".tmp"
	if err := afero.WriteFile(b.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := b.fs.Rename(tmp, b.path); err != nil {
		_ = b.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}

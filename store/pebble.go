package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

var pebbleDocumentKey = []byte("document")

// PebbleBackend keeps the document under a single key of an embedded Pebble
// database. Every write is synced.
type PebbleBackend struct {
	db   *pebble.DB
	path string
}

// OpenPebbleBackend opens (or creates) a Pebble database in dir. opts may be
// nil; tests pass an in-memory vfs through it.
func OpenPebbleBackend(dir string, opts *pebble.Options) (*PebbleBackend, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble %s: %w", dir, err)
	}
	return &PebbleBackend{db: db, path: dir}, nil
}

func (b *PebbleBackend) Read(_ context.Context) ([]byte, error) {
	val, closer, err := b.db.Get(pebbleDocumentKey)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()

	// Copy: val is only valid until closer.Close().
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (b *PebbleBackend) Write(_ context.Context, data []byte) error {
	if err := b.db.Set(pebbleDocumentKey, data, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	return nil
}

func (b *PebbleBackend) Close() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("close pebble %s: %w", b.path, err)
	}
	return nil
}

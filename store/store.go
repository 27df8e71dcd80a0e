// Package store owns the persisted users/todos document.
//
// Every read-modify-write cycle runs through Store.WithDocument (or the
// generic Update helper), which holds an exclusive guard around load, mutate
// and save. Read-only access goes through View/Read and takes the same guard,
// so readers never observe a cycle half way through. The guard is scoped to
// the whole document: one save rewrites both collections.
//
// Where the bytes live is decided by a Backend (JSON file, Postgres row or a
// Pebble key); the Store only ever hands it complete, deterministically
// formatted JSON documents.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jsoncrud/pkg/apperror"
	"jsoncrud/pkg/logger"

	"golang.org/x/sync/semaphore"
)

const DefaultLockTimeout = 5 * time.Second

// Observer receives per-transaction measurements. See the metrics package.
type Observer interface {
	ObserveTransaction(op string, elapsed time.Duration, err error)
	ObserveBusy(op string)
}

type Store struct {
	backend  Backend
	guard    *semaphore.Weighted
	timeout  time.Duration
	now      func() time.Time
	newID    func() string
	observer Observer
}

type Option func(*Store)

// WithLockTimeout bounds how long an operation waits for the document guard.
// Zero or negative waits until the caller's context is done.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		guard:   semaphore.NewWeighted(1),
		timeout: DefaultLockTimeout,
		now:     time.Now,
		newID:   GenerateID,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GenerateID returns a fresh record identifier.
func (s *Store) GenerateID() string {
	return s.newID()
}

// Timestamp returns the current time in TimeFormat, in UTC.
func (s *Store) Timestamp() string {
	return s.now().UTC().Format(TimeFormat)
}

// Load returns the current document without taking the guard. A missing,
// empty, unreadable or unparsable backing document yields an empty document.
func (s *Store) Load(ctx context.Context) *Document {
	doc, err := s.read(ctx)
	if err != nil {
		logger.Sugar.Warnf("Failed to read database, using empty document: %v", err)
		return EmptyDocument()
	}
	return doc
}

// Save overwrites the backing document without taking the guard. On error
// the write must be treated as not having happened.
func (s *Store) Save(ctx context.Context, doc *Document) error {
	if doc == nil {
		doc = EmptyDocument()
	}
	doc.normalize()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperror.Persistence("Error encoding database", fmt.Errorf("store: encode: %w", err))
	}
	if err := s.backend.Write(ctx, data); err != nil {
		logger.Sugar.Errorf("Error writing to database: %v", err)
		return apperror.Persistence("Error writing to database", fmt.Errorf("store: save: %w", err))
	}
	return nil
}

// Init writes an empty document when the backend holds nothing yet.
func (s *Store) Init(ctx context.Context) error {
	return s.locked(ctx, "init", func() error {
		data, err := s.backend.Read(ctx)
		if err != nil {
			return apperror.Persistence("Error reading database", fmt.Errorf("store: init: %w", err))
		}
		if data != nil {
			logger.Sugar.Info("Database file exists")
			return nil
		}
		if err := s.Save(ctx, EmptyDocument()); err != nil {
			return err
		}
		logger.Sugar.Info("Database file created")
		return nil
	})
}

// WithDocument loads the document, hands it to fn and saves the result, as
// one unit with respect to every other caller. If fn returns an error nothing
// is saved and that error is returned.
func (s *Store) WithDocument(ctx context.Context, fn func(doc *Document) error) error {
	return s.locked(ctx, "update", func() error {
		doc, err := s.read(ctx)
		if err != nil {
			return apperror.Persistence("Error reading database", fmt.Errorf("store: load: %w", err))
		}
		if err := fn(doc); err != nil {
			return err
		}
		return s.Save(ctx, doc)
	})
}

// View loads the document under the guard and hands it to fn. Changes made by
// fn are discarded.
func (s *Store) View(ctx context.Context, fn func(doc *Document) error) error {
	return s.locked(ctx, "view", func() error {
		return fn(s.Load(ctx))
	})
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// Update runs fn inside WithDocument and returns its result.
func Update[T any](ctx context.Context, s *Store, fn func(doc *Document) (T, error)) (T, error) {
	var out T
	err := s.WithDocument(ctx, func(doc *Document) error {
		var err error
		out, err = fn(doc)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Read runs fn inside View and returns its result.
func Read[T any](ctx context.Context, s *Store, fn func(doc *Document) (T, error)) (T, error) {
	var out T
	err := s.View(ctx, func(doc *Document) error {
		var err error
		out, err = fn(doc)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (s *Store) locked(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	if err := s.acquire(ctx, op); err != nil {
		s.observe(op, start, err)
		return err
	}
	defer s.guard.Release(1)

	err := fn()
	s.observe(op, start, err)
	return err
}

func (s *Store) acquire(ctx context.Context, op string) error {
	waitCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.guard.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.observer != nil {
			s.observer.ObserveBusy(op)
		}
		logger.Sugar.Warnf("Timed out after %s waiting for database (%s)", s.timeout, op)
		return apperror.Busy("Store is busy, try again")
	}
	return nil
}

func (s *Store) observe(op string, start time.Time, err error) {
	if s.observer != nil {
		s.observer.ObserveTransaction(op, time.Since(start), err)
	}
}

// read returns an error only when the backend itself fails. Absent, empty or
// corrupt content decodes to an empty document.
func (s *Store) read(ctx context.Context) (*Document, error) {
	data, err := s.backend.Read(ctx)
	if err != nil {
		return nil, err
	}
	doc := EmptyDocument()
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		logger.Sugar.Warnf("Database content is not valid, using empty document: %v", err)
		return EmptyDocument(), nil
	}
	doc.normalize()
	return doc, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jsoncrud/pkg/logger"

	_ "github.com/lib/pq"
)

const (
	DefaultAttempts = 5
	DefaultBackoff  = 2 * time.Second
)

// Connect opens a Postgres pool for dsn and pings it, retrying on failure so
// a database that is still starting does not abort the service.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Sugar.Errorf("Failed to open database connection: %v", err)
		return nil, fmt.Errorf("database: open: %w", err)
	}
	if err := Ping(ctx, db, DefaultAttempts, DefaultBackoff); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Ping checks db up to attempts times, sleeping backoff between tries.
func Ping(ctx context.Context, db *sql.DB, attempts int, backoff time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			logger.Sugar.Info("Successfully connected to the database")
			return nil
		}
		logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", backoff, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	logger.Sugar.Errorf("Could not connect to database after %d attempts", attempts)
	return fmt.Errorf("database: ping: %w", err)
}

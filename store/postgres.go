package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jsoncrud/pkg/logger"
)

// DefaultDocumentKey is the documents.id row the Postgres backend uses.
const DefaultDocumentKey = "db"

// PostgresBackend stores the whole document as the content of one row in the
// documents table.
type PostgresBackend struct {
	DB  *sql.DB
	key string
}

func NewPostgresBackend(db *sql.DB, key string) *PostgresBackend {
	if key == "" {
		key = DefaultDocumentKey
	}
	return &PostgresBackend{DB: db, key: key}
}

// EnsureSchema creates the documents table if it does not exist.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := b.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		logger.Sugar.Errorf("Failed to create documents table: %v", err)
	}
	return err
}

func (b *PostgresBackend) Read(ctx context.Context) ([]byte, error) {
	var content string
	err := b.DB.QueryRowContext(ctx, "SELECT content FROM documents WHERE id = $1", b.key).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select document %s: %w", b.key, err)
	}
	return []byte(content), nil
}

func (b *PostgresBackend) Write(ctx context.Context, data []byte) error {
	_, err := b.DB.ExecContext(ctx, `INSERT INTO documents (id, content, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, updated_at = NOW()`, b.key, string(data))
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", b.key, err)
	}
	return nil
}

func (b *PostgresBackend) Close() error {
	return b.DB.Close()
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spendlog/internal/storage"

	_ "github.com/lib/pq"
)

// Repository stores key-value slots in a PostgreSQL table.
type Repository struct {
	db *sql.DB
}

var _ storage.KeyValue = (*Repository)(nil)

// NewRepository connects to connStr and creates the slot table if missing.
func NewRepository(ctx context.Context, connStr string) (*Repository, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &Repository{db: db}
	if err := r.createTableIfNotExists(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) createTableIfNotExists(ctx context.Context) error {
	query := `
    CREATE TABLE IF NOT EXISTS kv_slots (
        key        VARCHAR(255) PRIMARY KEY,
        value      TEXT NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
    );`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table kv_slots: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get implements storage.KeyValue.
func (r *Repository) Get(ctx context.Context, key string) (string, bool, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", false, err
	}
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_slots WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select slot %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements storage.KeyValue.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv_slots (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("upsert slot %s: %w", key, err)
	}
	return nil
}

// Ping implements storage.Pinger.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

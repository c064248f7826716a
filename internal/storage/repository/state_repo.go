// Package repository holds the SQL access objects behind the storage service.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so repositories can join a
// caller's transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Keys of the app_state table.
const (
	StateKeyDecks    = "decks"
	StateKeyKeywords = "keywords"
)

// StateValue is one stored blob.
type StateValue struct {
	Key           string
	Value         string
	SchemaVersion int
	UpdatedAt     time.Time
}

// StateRepository reads and writes the app_state blobs.
type StateRepository interface {
	// Get returns the blob stored under key, or found=false when none exists.
	Get(ctx context.Context, key string) (value *StateValue, found bool, err error)

	// Put inserts or replaces the blob stored under key.
	Put(ctx context.Context, key, value string, schemaVersion int) error

	// Keys lists every stored key.
	Keys(ctx context.Context) ([]string, error)

	// Delete removes a key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

type stateRepository struct {
	db DBTX
}

// NewStateRepository creates a state repository over db.
func NewStateRepository(db DBTX) StateRepository {
	return &stateRepository{db: db}
}

func (r *stateRepository) Get(ctx context.Context, key string) (*StateValue, bool, error) {
	v := &StateValue{Key: key}
	err := r.db.QueryRowContext(ctx,
		"SELECT value, schema_version, updated_at FROM app_state WHERE key = ?", key,
	).Scan(&v.Value, &v.SchemaVersion, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read state %s: %w", key, err)
	}
	return v, true, nil
}

func (r *stateRepository) Put(ctx context.Context, key, value string, schemaVersion int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value, schema_version, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			schema_version = excluded.schema_version,
			updated_at = excluded.updated_at
	`, key, value, schemaVersion, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write state %s: %w", key, err)
	}
	return nil
}

func (r *stateRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key FROM app_state ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list state keys: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan state key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating state keys: %w", err)
	}
	return keys, nil
}

func (r *stateRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM app_state WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete state %s: %w", key, err)
	}
	return nil
}

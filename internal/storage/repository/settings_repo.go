package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrSettingNotFound is returned when a setting key has never been stored.
var ErrSettingNotFound = errors.New("setting not found")

// Setting keys used by the desktop shell.
const (
	SettingTheme    = "theme"
	SettingLanguage = "language"
	SettingLastDeck = "lastDeck"
)

// SettingsRepository stores UI preferences as JSON values.
type SettingsRepository interface {
	// Get returns the raw JSON value of a setting.
	Get(ctx context.Context, key string) (string, error)

	// GetTyped unmarshals a setting into target.
	GetTyped(ctx context.Context, key string, target any) error

	// Set JSON-encodes value and stores it.
	Set(ctx context.Context, key string, value any) error

	// GetAll returns every setting, decoded where possible.
	GetAll(ctx context.Context) (map[string]any, error)

	// Delete removes a setting.
	Delete(ctx context.Context, key string) error
}

type settingsRepository struct {
	db DBTX
}

// NewSettingsRepository creates a settings repository over db.
func NewSettingsRepository(db DBTX) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", key, ErrSettingNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

func (r *settingsRepository) GetTyped(ctx context.Context, key string, target any) error {
	value, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), target); err != nil {
		return fmt.Errorf("failed to unmarshal setting %s: %w", key, err)
	}
	return nil
}

func (r *settingsRepository) Set(ctx context.Context, key string, value any) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting %s: %w", key, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(jsonValue), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

func (r *settingsRepository) GetAll(ctx context.Context) (map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	settings := make(map[string]any)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}

		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			settings[key] = value
		} else {
			settings[key] = parsed
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}
	return settings, nil
}

func (r *settingsRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

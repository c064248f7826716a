// Package storage persists flashcard state in SQLite.
//
// The database is a small blob store: the deck list and the keyword pool are
// saved whole as JSON values in the app_state table, next to a settings table
// for UI preferences. Schema changes go through embedded golang-migrate files.
package storage

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps the database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Config holds database configuration settings.
type Config struct {
	// Path is the SQLite file. MemoryPath opens an in-memory database.
	Path string

	// MaxOpenConns caps open connections. Default: 4.
	// In-memory databases always use a single connection.
	MaxOpenConns int

	// MaxIdleConns caps idle connections. Default: 2.
	MaxIdleConns int

	// ConnMaxLifetime bounds connection reuse. Default: 5 minutes.
	ConnMaxLifetime time.Duration

	// BusyTimeout is how long a writer waits on a locked database. Default: 5 seconds.
	BusyTimeout time.Duration

	// JournalMode is the SQLite journal mode. Default: WAL.
	JournalMode string

	// Synchronous is the SQLite synchronous mode. Default: NORMAL.
	Synchronous string

	// AutoMigrate applies pending migrations on Open.
	AutoMigrate bool
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig(path string) *Config {
	return &Config{
		Path:            path,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		BusyTimeout:     5 * time.Second,
		JournalMode:     "WAL",
		Synchronous:     "NORMAL",
	}
}

// DefaultDBPath returns ~/.flashdeck/flashdeck.db.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".flashdeck", "flashdeck.db")
	}
	return filepath.Join(home, ".flashdeck", "flashdeck.db")
}

// dsn builds a modernc DSN with one _pragma parameter per setting.
func (c *Config) dsn() string {
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	params.Add("_pragma", "foreign_keys(1)")
	if c.Path != MemoryPath {
		params.Add("_pragma", fmt.Sprintf("journal_mode(%s)", strings.ToUpper(c.JournalMode)))
	}
	params.Add("_pragma", fmt.Sprintf("synchronous(%s)", strings.ToUpper(c.Synchronous)))

	path := c.Path
	if path != MemoryPath {
		path = "file:" + filepath.ToSlash(path)
	}
	return path + "?" + params.Encode()
}

// Open connects to the database described by config, creating the parent
// directory when needed.
func Open(config *Config) (*DB, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	if config.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	if config.AutoMigrate {
		if config.Path == MemoryPath {
			return nil, fmt.Errorf("auto-migrate needs a database file")
		}
		if err := migrateUp(config.Path); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite", config.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.Path == MemoryPath {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
	} else {
		conn.SetMaxOpenConns(config.MaxOpenConns)
		conn.SetMaxIdleConns(config.MaxIdleConns)
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := conn.Ping(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to close database after ping error: %w (original error: %v)", closeErr, err)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn, path: config.Path}, nil
}

func migrateUp(path string) error {
	mgr, err := NewMigrationManager(path)
	if err != nil {
		return fmt.Errorf("failed to create migration manager: %w", err)
	}
	defer func() { _ = mgr.Close() }()

	if err := mgr.Up(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Ping verifies the database connection is alive.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

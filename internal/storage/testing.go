package storage

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// NewMemoryService opens an in-memory database with the schema applied.
// Other packages use it in tests.
func NewMemoryService() (*Service, error) {
	db, err := Open(DefaultConfig(MemoryPath))
	if err != nil {
		return nil, err
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewService(db), nil
}

// applySchema runs the embedded up migrations directly. golang-migrate opens its
// own connection, which cannot reach a private in-memory database.
func applySchema(db *DB) error {
	names, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := fs.ReadFile(migrationsFS, name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if _, err := db.Conn().Exec(string(body)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", strings.TrimPrefix(name, "migrations/"), err)
		}
	}
	return nil
}

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ramonehamilton/flashdeck/internal/config"
	"github.com/ramonehamilton/flashdeck/internal/storage"
)

func runMigrationCommand(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		printMigrationUsage()
		os.Exit(1)
	}

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	mgr, err := storage.NewMigrationManager(dbPath)
	if err != nil {
		return fmt.Errorf("creating migration manager: %w", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()

	switch args[0] {
	case "up":
		fmt.Println("Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}
		printMigrationVersion(mgr)
		fmt.Println("All migrations applied successfully!")

	case "down":
		fmt.Println("Rolling back last migration...")
		if err := mgr.Steps(-1); err != nil {
			return fmt.Errorf("rolling back migration: %w", err)
		}
		printMigrationVersion(mgr)
		fmt.Println("Migration rolled back successfully!")

	case "status", "version":
		printMigrationVersion(mgr)

	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force requires a version number")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version number: %w", err)
		}
		fmt.Printf("Forcing migration version to %d...\n", version)
		fmt.Println("WARNING: This does not run migrations, only sets the version.")
		if err := mgr.Force(version); err != nil {
			return fmt.Errorf("forcing version: %w", err)
		}
		fmt.Println("Version forced successfully!")

	default:
		fmt.Printf("Unknown migration command: %s\n\n", args[0])
		printMigrationUsage()
		os.Exit(1)
	}
	return nil
}

func printMigrationVersion(mgr *storage.MigrationManager) {
	version, dirty, err := mgr.Version()
	if err != nil {
		log.Fatalf("Error getting version: %v", err)
	}
	if dirty {
		fmt.Printf("Current version: %d (dirty - migration failed or interrupted)\n", version)
		fmt.Println("Use 'migrate force <version>' to recover")
		return
	}
	fmt.Printf("Current version: %d\n", version)
}

func printMigrationUsage() {
	fmt.Println("Flashdeck - Database Migration Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  flashdeck migrate <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up                Apply all pending migrations")
	fmt.Println("  down              Roll back the last migration")
	fmt.Println("  status            Show current migration version")
	fmt.Println("  version           Show current migration version (alias for status)")
	fmt.Println("  force <version>   Force set migration version (use with caution)")
	fmt.Println()
}

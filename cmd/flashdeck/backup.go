package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ramonehamilton/flashdeck/internal/config"
	"github.com/ramonehamilton/flashdeck/internal/storage"
)

func runBackupCommand(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		printBackupUsage()
		os.Exit(1)
	}

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return err
	}
	backupMgr := storage.NewBackupManager(dbPath)

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("create", flag.ExitOnError)
		dir := fs.String("dir", cfg.Storage.BackupDir, "Backup directory")
		name := fs.String("name", "", "Backup name without extension (default: timestamp)")
		encrypt := fs.Bool("encrypt", false, "Encrypt the backup")
		passwordEnv := fs.String("password-env", "FLASHDECK_BACKUP_PASSWORD", "Environment variable holding the backup password")
		verify := fs.Bool("verify", true, "Verify the backup after creating it")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		backupCfg := storage.DefaultBackupConfig()
		backupCfg.BackupDir = *dir
		backupCfg.BackupName = *name
		backupCfg.VerifyBackup = *verify
		if *encrypt {
			if backupCfg.Password, err = passwordFromEnv(*passwordEnv); err != nil {
				return err
			}
		}

		fmt.Println("Creating backup...")
		path, err := backupMgr.Backup(backupCfg)
		if err != nil {
			return fmt.Errorf("creating backup: %w", err)
		}
		fmt.Printf("Backup created: %s\n", path)

	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		dir := fs.String("dir", cfg.Storage.BackupDir, "Backup directory")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		backups, err := backupMgr.ListBackups(*dir)
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("No backups found")
			return nil
		}
		fmt.Printf("Found %d backups:\n\n", len(backups))
		for _, b := range backups {
			lock := ""
			if b.Encrypted {
				lock = " (encrypted)"
			}
			fmt.Printf("  %s%s\n", b.Name, lock)
			fmt.Printf("    Created: %s  Size: %d bytes\n", b.ModTime.Format("2006-01-02 15:04:05"), b.Size)
			fmt.Printf("    SHA256:  %s\n", b.Checksum)
		}

	case "restore":
		fs := flag.NewFlagSet("restore", flag.ExitOnError)
		passwordEnv := fs.String("password-env", "FLASHDECK_BACKUP_PASSWORD", "Environment variable holding the password of an encrypted backup")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("restore requires a backup path")
		}

		// Plain backups ignore the password; an unset variable is fine for them.
		password := os.Getenv(*passwordEnv)
		fmt.Printf("Restoring %s...\n", fs.Arg(0))
		fmt.Println("WARNING: This replaces the current database.")
		if err := backupMgr.Restore(fs.Arg(0), password); err != nil {
			return fmt.Errorf("restoring backup: %w", err)
		}
		fmt.Println("Backup restored successfully!")

	default:
		fmt.Printf("Unknown backup command: %s\n\n", args[0])
		printBackupUsage()
		os.Exit(1)
	}
	return nil
}

func printBackupUsage() {
	fmt.Println("Flashdeck - Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  flashdeck backup <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  create [-dir d] [-name n] [-encrypt] [-password-env VAR]   Create a backup")
	fmt.Println("  list [-dir d]                                              List backups, newest first")
	fmt.Println("  restore [-password-env VAR] <path>                         Restore a backup")
	fmt.Println()
}

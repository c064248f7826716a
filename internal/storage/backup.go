package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	backupExt          = ".db"
	encryptedBackupExt = ".db.enc"
)

// BackupManager copies the database file to and from backup snapshots.
type BackupManager struct {
	dbPath string
}

// NewBackupManager creates a backup manager for the database at dbPath.
func NewBackupManager(dbPath string) *BackupManager {
	return &BackupManager{dbPath: dbPath}
}

// BackupConfig holds configuration for backup operations.
type BackupConfig struct {
	// BackupDir defaults to a "backups" directory next to the database.
	BackupDir string

	// BackupName is the file name without extension. Defaults to a timestamp.
	BackupName string

	// VerifyBackup opens the backup after writing it.
	VerifyBackup bool

	// Password, when set, encrypts the backup with EncryptFile.
	Password string
}

// DefaultBackupConfig returns a BackupConfig with verification on.
func DefaultBackupConfig() *BackupConfig {
	return &BackupConfig{VerifyBackup: true}
}

// Backup writes a consistent snapshot of the database with VACUUM INTO and
// returns its path.
func (bm *BackupManager) Backup(config *BackupConfig) (string, error) {
	if config == nil {
		config = DefaultBackupConfig()
	}

	backupDir := config.BackupDir
	if backupDir == "" {
		backupDir = bm.GetBackupDir()
	}
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupName := config.BackupName
	if backupName == "" {
		backupName = "flashdeck_" + time.Now().Format("20060102_150405")
	}
	backupPath := filepath.Join(backupDir, backupName+backupExt)

	if err := bm.vacuumInto(backupPath); err != nil {
		return "", err
	}

	if config.VerifyBackup {
		if err := bm.VerifyBackup(backupPath); err != nil {
			_ = os.Remove(backupPath)
			return "", fmt.Errorf("backup verification failed: %w", err)
		}
	}

	if config.Password == "" {
		return backupPath, nil
	}

	encryptedPath := filepath.Join(backupDir, backupName+encryptedBackupExt)
	err := EncryptFile(backupPath, encryptedPath, DefaultEncryptionConfig(config.Password))
	_ = os.Remove(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt backup: %w", err)
	}
	return encryptedPath, nil
}

func (bm *BackupManager) vacuumInto(backupPath string) error {
	source, err := sql.Open("sqlite", bm.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer func() { _ = source.Close() }()

	if _, err := os.Stat(backupPath); err == nil {
		return fmt.Errorf("backup already exists: %s", backupPath)
	}
	if _, err := source.Exec("VACUUM INTO ?", backupPath); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}
	return nil
}

// Restore replaces the database with a backup. The current file is kept next to
// it with an ".old.<timestamp>" suffix. The caller must close its connections first.
func (bm *BackupManager) Restore(backupPath, password string) error {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	tempPath := bm.dbPath + ".restore.tmp"
	encrypted, err := IsEncrypted(backupPath)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if encrypted {
		if password == "" {
			return fmt.Errorf("backup is encrypted; password required")
		}
		err = DecryptFile(backupPath, tempPath, DefaultEncryptionConfig(password))
	} else {
		err = copyFile(backupPath, tempPath)
	}
	if err != nil {
		_ = os.Remove(tempPath)
		return err
	}

	if err := bm.VerifyBackup(tempPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("restored database verification failed: %w", err)
	}

	if _, err := os.Stat(bm.dbPath); err == nil {
		oldPath := bm.dbPath + ".old." + time.Now().Format("20060102_150405")
		if err := os.Rename(bm.dbPath, oldPath); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to move current database aside: %w", err)
		}
	}

	if err := os.Rename(tempPath, bm.dbPath); err != nil {
		return fmt.Errorf("failed to replace database with restored backup: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create temporary restore file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy backup file: %w", err)
	}
	return out.Close()
}

// VerifyBackup checks that path is a SQLite database holding the app_state table.
func (bm *BackupManager) VerifyBackup(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open backup as database: %w", err)
	}
	defer func() { _ = db.Close() }()

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'app_state'").Scan(&name)
	if err == sql.ErrNoRows {
		return fmt.Errorf("backup has no app_state table")
	}
	if err != nil {
		return fmt.Errorf("failed to query backup database: %w", err)
	}
	return nil
}

// BackupInfo describes one backup file.
type BackupInfo struct {
	Path      string
	Name      string
	Size      int64
	ModTime   time.Time
	Checksum  string
	Encrypted bool
}

// ListBackups returns the backups in backupDir, newest first. An empty
// backupDir means the default directory.
func (bm *BackupManager) ListBackups(backupDir string) ([]BackupInfo, error) {
	if backupDir == "" {
		backupDir = bm.GetBackupDir()
	}

	entries, err := os.ReadDir(backupDir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		name := entry.Name()
		encrypted := strings.HasSuffix(name, encryptedBackupExt)
		if entry.IsDir() || (!encrypted && filepath.Ext(name) != backupExt) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(backupDir, name)
		checksum, err := calculateChecksum(path)
		if err != nil {
			checksum = "unknown"
		}

		backups = append(backups, BackupInfo{
			Path:      path,
			Name:      name,
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Checksum:  checksum,
			Encrypted: encrypted,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

func calculateChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// GetBackupDir returns the default backup directory next to the database.
func (bm *BackupManager) GetBackupDir() string {
	return filepath.Join(filepath.Dir(bm.dbPath), "backups")
}

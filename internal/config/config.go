package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// Environment variables read by the config layer.
const (
	EnvConfigPath = "FLASHDECK_CONFIG"
	EnvDBPath     = "FLASHDECK_DB_PATH"
)

// DefaultExportFileName is the file name the first app release exported to.
const DefaultExportFileName = "flashcards_backup.json"

// Config represents the application configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Quiz    QuizConfig    `toml:"quiz"`
	Export  ExportConfig  `toml:"export"`
	Inbox   InboxConfig   `toml:"inbox"`
	App     AppConfig     `toml:"app"`
}

// StorageConfig locates the database and its backups.
type StorageConfig struct {
	DBPath     string `toml:"db_path"`     // Empty means ~/.flashdeck/flashdeck.db
	BackupDir  string `toml:"backup_dir"`  // Empty means <db dir>/backups
	AutoBackup bool   `toml:"auto_backup"` // Back up the database on startup
}

// QuizConfig holds quiz defaults.
type QuizConfig struct {
	DefaultMode         string `toml:"default_mode"`          // view or solve
	RetryWrongThreshold int    `toml:"retry_wrong_threshold"` // Prefill of the retry-wrong prompt
	ShuffleSeed         uint64 `toml:"shuffle_seed"`          // 0 shuffles randomly
}

// ExportConfig controls deck exports.
type ExportConfig struct {
	Dir        string `toml:"dir"`         // Empty means the working directory
	FileName   string `toml:"file_name"`   // Default export file name
	PrettyJSON bool   `toml:"pretty_json"` // Indent exported JSON
	Envelope   bool   `toml:"envelope"`    // Wrap decks in {version, exported_at, decks}
}

// InboxConfig controls the import inbox watcher.
type InboxConfig struct {
	Dir       string `toml:"dir"`        // Empty means ~/.flashdeck/inbox
	Enabled   bool   `toml:"enabled"`    // Start the watcher with the app
	Debounce  string `toml:"debounce"`   // Quiet period after a write (e.g., "500ms")
	RateLimit string `toml:"rate_limit"` // Minimum gap between imports (e.g., "2s")
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool   `toml:"debug_mode"` // Log every dispatched event
	Language  string `toml:"language"`   // kr or en
	Theme     string `toml:"theme"`      // light or dark
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			AutoBackup: false,
		},
		Quiz: QuizConfig{
			DefaultMode:         string(models.QuizModeView),
			RetryWrongThreshold: 1,
		},
		Export: ExportConfig{
			FileName:   DefaultExportFileName,
			PrettyJSON: true,
			Envelope:   false,
		},
		Inbox: InboxConfig{
			Enabled:   false,
			Debounce:  "500ms",
			RateLimit: "2s",
		},
		App: AppConfig{
			DebugMode: false,
			Language:  "kr",
			Theme:     "light",
		},
	}
}

// HomeDir returns ~/.flashdeck.
func HomeDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".flashdeck"), nil
}

// Path returns the configuration file path, honoring FLASHDECK_CONFIG.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from Path.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads a TOML file over the defaults, so missing keys keep their
// default values. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return config, nil
}

// Save saves the configuration to Path.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration as TOML, creating the directory if needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides file settings from the environment.
func (c *Config) ApplyEnv() {
	if p := os.Getenv(EnvDBPath); p != "" {
		c.Storage.DBPath = p
	}
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	switch models.QuizMode(c.Quiz.DefaultMode) {
	case models.QuizModeView, models.QuizModeSolve:
	default:
		return fmt.Errorf("invalid default quiz mode %q", c.Quiz.DefaultMode)
	}

	if c.Quiz.RetryWrongThreshold < 1 {
		return fmt.Errorf("retry wrong threshold must be at least 1: %d", c.Quiz.RetryWrongThreshold)
	}

	if c.Export.FileName == "" {
		return fmt.Errorf("export file name cannot be empty")
	}

	if _, err := time.ParseDuration(c.Inbox.Debounce); err != nil {
		return fmt.Errorf("invalid inbox debounce %q: %w", c.Inbox.Debounce, err)
	}
	if _, err := time.ParseDuration(c.Inbox.RateLimit); err != nil {
		return fmt.Errorf("invalid inbox rate limit %q: %w", c.Inbox.RateLimit, err)
	}

	switch c.App.Language {
	case "kr", "en":
	default:
		return fmt.Errorf("unsupported language %q", c.App.Language)
	}

	switch c.App.Theme {
	case "light", "dark":
	default:
		return fmt.Errorf("unsupported theme %q", c.App.Theme)
	}

	return nil
}

// GetInboxDebounce returns the inbox debounce as a duration.
func (c *Config) GetInboxDebounce() (time.Duration, error) {
	return time.ParseDuration(c.Inbox.Debounce)
}

// GetInboxRateLimit returns the minimum gap between inbox imports.
func (c *Config) GetInboxRateLimit() (time.Duration, error) {
	return time.ParseDuration(c.Inbox.RateLimit)
}

// ResolveDBPath returns the configured database path or the default one.
func (c *Config) ResolveDBPath() (string, error) {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath, nil
	}
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "flashdeck.db"), nil
}

// ResolveInboxDir returns the configured inbox directory or the default one.
func (c *Config) ResolveInboxDir() (string, error) {
	if c.Inbox.Dir != "" {
		return c.Inbox.Dir, nil
	}
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "inbox"), nil
}

// ExportPath returns the default export destination.
func (c *Config) ExportPath() string {
	return filepath.Join(c.Export.Dir, c.Export.FileName)
}

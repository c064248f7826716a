package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ramonehamilton/flashdeck/internal/storage"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// File extensions accepted by ReadDecks.
const (
	JSONExt      = ".json"
	EncryptedExt = ".fdenc"
)

// DefaultFileName is the export file name used when none is given.
const DefaultFileName = "flashcards_backup.json"

// EnvelopeVersion is the current envelope format version.
const EnvelopeVersion = 1

var (
	// ErrUnsupportedFile is returned for files that are neither .json nor .fdenc.
	ErrUnsupportedFile = errors.New("only .json or .fdenc files can be imported")

	// ErrPasswordRequired is returned when an encrypted file is read without a password.
	ErrPasswordRequired = errors.New("file is encrypted; password required")

	// ErrInvalidFormat is returned when the content is neither a deck array nor an envelope.
	ErrInvalidFormat = errors.New("file does not contain a deck list")
)

// Envelope wraps exported decks with format metadata.
type Envelope struct {
	Version    int           `json:"version"`
	ExportedAt time.Time     `json:"exported_at"`
	Decks      []models.Deck `json:"decks" validate:"dive"`
}

// DeckOptions controls ExportDecks.
type DeckOptions struct {
	// Compact disables indentation. Exports are pretty-printed by default.
	Compact bool

	// Envelope wraps the decks in {version, exported_at, decks}.
	Envelope bool

	// Password seals the file. The extension becomes .fdenc.
	Password string

	// Overwrite replaces an existing file.
	Overwrite bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ExportDecks writes decks to path and returns the path actually written.
// An empty path means DefaultFileName in the working directory.
func ExportDecks(decks []models.Deck, path string, opts DeckOptions) (string, error) {
	if path == "" {
		path = DefaultFileName
	}
	if opts.Password != "" && !strings.EqualFold(filepath.Ext(path), EncryptedExt) {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + EncryptedExt
	}
	if decks == nil {
		decks = []models.Deck{}
	}

	var payload any = decks
	if opts.Envelope {
		payload = Envelope{Version: EnvelopeVersion, ExportedAt: time.Now().UTC(), Decks: decks}
	}

	err := NewExportBuilder().
		WithFormat(FormatJSON).
		WithFilePath(path).
		WithPrettyJSON(!opts.Compact).
		WithOverwrite(opts.Overwrite).
		WithPassword(opts.Password).
		Export(payload)
	if err != nil {
		return "", err
	}
	return path, nil
}

// ReadDecks reads an exported deck file. Encrypted files need the password they
// were sealed with.
func ReadDecks(path, password string) ([]models.Deck, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != JSONExt && ext != EncryptedExt {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if storage.IsSealed(data) {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		data, err = storage.OpenSealed(data, storage.DefaultEncryptionConfig(password))
		if err != nil {
			return nil, err
		}
	}

	return ParseDecks(data)
}

// ParseDecks decodes either a bare deck array or an Envelope and validates
// every record.
func ParseDecks(data []byte) ([]models.Deck, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrInvalidFormat
	}

	var decks []models.Deck
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &decks); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	case '{':
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		if env.Decks == nil {
			return nil, ErrInvalidFormat
		}
		if env.Version > EnvelopeVersion {
			return nil, fmt.Errorf("unsupported export version %d", env.Version)
		}
		decks = env.Decks
	default:
		return nil, ErrInvalidFormat
	}

	for i := range decks {
		if err := validate.Struct(decks[i]); err != nil {
			return nil, fmt.Errorf("deck %d: %w", i+1, formatValidationError(err))
		}
	}
	return decks, nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatFieldError(e))
	}
	return errors.New(strings.Join(messages, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Namespace())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

const (
	// EncryptionMagicHeader is prepended to encrypted exports and backups.
	EncryptionMagicHeader = "FLDKENC1"

	// Argon2id parameters (RFC 9106 second recommendation).
	defaultArgon2Time    = 1
	defaultArgon2Memory  = 64 * 1024 // KiB
	defaultArgon2Threads = 4
	defaultArgon2KeyLen  = 32 // AES-256

	saltLength = 32
)

// ErrNotEncrypted is returned when data lacks the magic header.
var ErrNotEncrypted = errors.New("data is not encrypted or has wrong format")

// EncryptionConfig holds the password and key derivation cost.
type EncryptionConfig struct {
	Password string

	// Argon2Time is the number of passes. Default: 1.
	Argon2Time uint32

	// Argon2Memory is the memory cost in KiB. Default: 64 MiB.
	Argon2Memory uint32

	// Argon2Threads is the parallelism. Default: 4.
	Argon2Threads uint8
}

// DefaultEncryptionConfig returns encryption config with secure defaults.
func DefaultEncryptionConfig(password string) *EncryptionConfig {
	return &EncryptionConfig{
		Password:      password,
		Argon2Time:    defaultArgon2Time,
		Argon2Memory:  defaultArgon2Memory,
		Argon2Threads: defaultArgon2Threads,
	}
}

func deriveKey(salt []byte, config *EncryptionConfig) []byte {
	return argon2.IDKey(
		[]byte(config.Password),
		salt,
		config.Argon2Time,
		config.Argon2Memory,
		config.Argon2Threads,
		defaultArgon2KeyLen,
	)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// EncryptData encrypts plaintext with AES-256-GCM under an Argon2id key.
// The result is salt || nonce || ciphertext+tag.
func EncryptData(plaintext []byte, config *EncryptionConfig) ([]byte, error) {
	if config == nil || config.Password == "" {
		return nil, fmt.Errorf("encryption config with password required")
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := newGCM(deriveKey(salt, config))
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	result := make([]byte, 0, len(salt)+len(nonce)+len(plaintext)+gcm.Overhead())
	result = append(result, salt...)
	result = append(result, nonce...)
	return gcm.Seal(result, nonce, plaintext, nil), nil
}

// DecryptData reverses EncryptData.
func DecryptData(encrypted []byte, config *EncryptionConfig) ([]byte, error) {
	if config == nil || config.Password == "" {
		return nil, fmt.Errorf("encryption config with password required")
	}
	if len(encrypted) < saltLength {
		return nil, fmt.Errorf("encrypted data too short")
	}

	salt, rest := encrypted[:saltLength], encrypted[saltLength:]
	gcm, err := newGCM(deriveKey(salt, config))
	if err != nil {
		return nil, err
	}

	if len(rest) < gcm.NonceSize()+gcm.Overhead() {
		return nil, fmt.Errorf("encrypted data too short")
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong password or corrupted data): %w", err)
	}
	return plaintext, nil
}

// SealData encrypts plaintext and prefixes the magic header.
func SealData(plaintext []byte, config *EncryptionConfig) ([]byte, error) {
	encrypted, err := EncryptData(plaintext, config)
	if err != nil {
		return nil, err
	}
	return append([]byte(EncryptionMagicHeader), encrypted...), nil
}

// OpenSealed checks the magic header and decrypts the rest.
func OpenSealed(data []byte, config *EncryptionConfig) ([]byte, error) {
	if !IsSealed(data) {
		return nil, ErrNotEncrypted
	}
	return DecryptData(data[len(EncryptionMagicHeader):], config)
}

// IsSealed reports whether data starts with the magic header.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, []byte(EncryptionMagicHeader))
}

// EncryptFile writes the sealed contents of sourcePath to destPath.
func EncryptFile(sourcePath, destPath string, config *EncryptionConfig) error {
	plaintext, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}

	sealed, err := SealData(plaintext, config)
	if err != nil {
		return fmt.Errorf("encryption failed: %w", err)
	}

	if err := os.WriteFile(destPath, sealed, 0o600); err != nil {
		return fmt.Errorf("failed to write encrypted file: %w", err)
	}
	return nil
}

// DecryptFile writes the opened contents of sourcePath to destPath.
func DecryptFile(sourcePath, destPath string, config *EncryptionConfig) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read encrypted file: %w", err)
	}

	plaintext, err := OpenSealed(data, config)
	if err != nil {
		return fmt.Errorf("decryption failed: %w", err)
	}

	if err := os.WriteFile(destPath, plaintext, 0o600); err != nil {
		return fmt.Errorf("failed to write decrypted file: %w", err)
	}
	return nil
}

// IsEncrypted reports whether the file at filePath starts with the magic header.
func IsEncrypted(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer func() { _ = file.Close() }()

	header := make([]byte, len(EncryptionMagicHeader))
	n, err := io.ReadFull(file, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, err
	}
	return IsSealed(header[:n]), nil
}

package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// fastConfig keeps Argon2 cheap so the suite stays quick.
func fastConfig(password string) *EncryptionConfig {
	return &EncryptionConfig{Password: password, Argon2Time: 1, Argon2Memory: 8 * 1024, Argon2Threads: 1}
}

func TestEncryptDecryptData(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
		password  string
	}{
		{name: "simple text", plaintext: `[{"id":"1","title":"Deck"}]`, password: "test-password"},
		{name: "empty string", plaintext: "", password: "test-password"},
		{name: "long text", plaintext: string(make([]byte, 10000)), password: "secure-password-123"},
		{name: "korean text", plaintext: "단어장 카드 앞면", password: "비밀번호"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := fastConfig(tt.password)

			encrypted, err := EncryptData([]byte(tt.plaintext), config)
			if err != nil {
				t.Fatalf("EncryptData() error = %v", err)
			}
			if len(tt.plaintext) > 0 && bytes.Contains(encrypted, []byte(tt.plaintext)) {
				t.Error("Encrypted data should not contain the plaintext")
			}

			decrypted, err := DecryptData(encrypted, config)
			if err != nil {
				t.Fatalf("DecryptData() error = %v", err)
			}
			if string(decrypted) != tt.plaintext {
				t.Errorf("Decrypted data = %q, want %q", string(decrypted), tt.plaintext)
			}
		})
	}
}

func TestDecryptDataWrongPassword(t *testing.T) {
	encrypted, err := EncryptData([]byte("secret"), fastConfig("correct-password"))
	if err != nil {
		t.Fatalf("EncryptData() error = %v", err)
	}
	if _, err := DecryptData(encrypted, fastConfig("wrong-password")); err == nil {
		t.Error("Expected error with wrong password")
	}
}

func TestEncryptDataNoPassword(t *testing.T) {
	if _, err := EncryptData([]byte("x"), nil); err == nil {
		t.Error("Expected error with nil config")
	}
	if _, err := EncryptData([]byte("x"), fastConfig("")); err == nil {
		t.Error("Expected error with empty password")
	}
}

func TestDecryptDataCorrupted(t *testing.T) {
	config := fastConfig("pw")
	encrypted, err := EncryptData([]byte("secret message"), config)
	if err != nil {
		t.Fatalf("EncryptData() error = %v", err)
	}

	encrypted[len(encrypted)-1] ^= 0xFF
	if _, err := DecryptData(encrypted, config); err == nil {
		t.Error("Expected error for tampered data")
	}
	if _, err := DecryptData([]byte("short"), config); err == nil {
		t.Error("Expected error for truncated data")
	}
}

func TestSealOpen(t *testing.T) {
	config := fastConfig("pw")

	sealed, err := SealData([]byte("payload"), config)
	if err != nil {
		t.Fatalf("SealData() error = %v", err)
	}
	if !IsSealed(sealed) {
		t.Error("Sealed data should carry the magic header")
	}

	opened, err := OpenSealed(sealed, config)
	if err != nil {
		t.Fatalf("OpenSealed() error = %v", err)
	}
	if string(opened) != "payload" {
		t.Errorf("OpenSealed() = %q, want payload", opened)
	}

	if _, err := OpenSealed([]byte(`[{"id":"1"}]`), config); !errors.Is(err, ErrNotEncrypted) {
		t.Errorf("OpenSealed(plain) error = %v, want ErrNotEncrypted", err)
	}
}

func TestEncryptDecryptFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "decks.json")
	encrypted := filepath.Join(dir, "decks.fdenc")
	decrypted := filepath.Join(dir, "decks.out.json")
	content := []byte(`[{"id":"d","title":"Deck","cards":[]}]`)

	if err := os.WriteFile(source, content, 0o600); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}

	config := fastConfig("file-password")
	if err := EncryptFile(source, encrypted, config); err != nil {
		t.Fatalf("EncryptFile() error = %v", err)
	}

	isEnc, err := IsEncrypted(encrypted)
	if err != nil || !isEnc {
		t.Fatalf("IsEncrypted(encrypted) = %v, %v", isEnc, err)
	}
	isEnc, err = IsEncrypted(source)
	if err != nil || isEnc {
		t.Fatalf("IsEncrypted(source) = %v, %v", isEnc, err)
	}

	if err := DecryptFile(encrypted, decrypted, fastConfig("wrong")); err == nil {
		t.Error("Expected DecryptFile to fail with wrong password")
	}
	if err := DecryptFile(encrypted, decrypted, config); err != nil {
		t.Fatalf("DecryptFile() error = %v", err)
	}

	got, err := os.ReadFile(decrypted)
	if err != nil {
		t.Fatalf("Failed to read decrypted file: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("Decrypted content = %q, want %q", got, content)
	}
}

func TestIsEncryptedShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny")
	if err := os.WriteFile(path, []byte("FL"), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	isEnc, err := IsEncrypted(path)
	if err != nil {
		t.Fatalf("IsEncrypted() error = %v", err)
	}
	if isEnc {
		t.Error("Short file should not be reported as encrypted")
	}
}

func TestEncryptionNonDeterministic(t *testing.T) {
	config := fastConfig("pw")
	a, _ := EncryptData([]byte("same"), config)
	b, _ := EncryptData([]byte("same"), config)
	if bytes.Equal(a, b) {
		t.Error("Two encryptions of the same data should differ")
	}
}

package filestore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

// AgeSealer encrypts the session document to a local age X25519 identity.
type AgeSealer struct {
	identity *age.X25519Identity
}

var _ Sealer = (*AgeSealer)(nil)

// LoadOrCreateAgeSealer reads the identity at keyPath, generating and saving a
// new one (mode 0600) when the file does not exist yet.
func LoadOrCreateAgeSealer(keyPath string) (*AgeSealer, error) {
	data, err := os.ReadFile(keyPath)
	if errors.Is(err, fs.ErrNotExist) {
		identity, err := age.GenerateX25519Identity()
		if err != nil {
			return nil, fmt.Errorf("generating age identity: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(keyPath), 0o700); err != nil {
			return nil, fmt.Errorf("creating key directory: %w", err)
		}
		if err := os.WriteFile(keyPath, []byte(identity.String()+"\n"), 0o600); err != nil {
			return nil, fmt.Errorf("writing age identity: %w", err)
		}
		return &AgeSealer{identity: identity}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading age identity: %w", err)
	}

	identity, err := age.ParseX25519Identity(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parsing age identity %s: %w", keyPath, err)
	}
	return &AgeSealer{identity: identity}, nil
}

func NewAgeSealer(identity *age.X25519Identity) *AgeSealer {
	return &AgeSealer{identity: identity}
}

func (a *AgeSealer) Seal(plaintext []byte) ([]byte, error) {
	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, a.identity.Recipient())
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	return ciphertext.Bytes(), nil
}

func (a *AgeSealer) Open(ciphertext []byte) ([]byte, error) {
	reader, err := age.Decrypt(bytes.NewReader(ciphertext), a.identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted plaintext: %w", err)
	}
	return plaintext, nil
}

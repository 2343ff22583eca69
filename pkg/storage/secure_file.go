// Package storage persists small secrets to disk encrypted under a
// passphrase. Files carry their own salt and nonce; keys are derived
// with PBKDF2 and the payload is sealed with AES-256-GCM.
package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"

	"github.com/thresherlabs/thresher/pkg/crypto/bls"
	"github.com/thresherlabs/thresher/pkg/secure"
)

const (
	SaltSize   = 32
	NonceSize  = 12
	KeySize    = 32
	Iterations = 100000
)

// ErrEmptyPassword is returned when sealing or opening with no
// passphrase.
var ErrEmptyPassword = errors.New("storage: password cannot be empty")

// SecureFile seals arbitrary bytes to a single file.
type SecureFile struct {
	path string
}

type envelope struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// NewSecureFile binds a secure file to a path. Nothing is read or
// written until Save or Load.
func NewSecureFile(path string) *SecureFile {
	return &SecureFile{path: path}
}

// Save seals data under the password and writes it out, creating parent
// directories as needed.
func (s *SecureFile) Save(data, password []byte) error {
	if len(password) == 0 {
		return ErrEmptyPassword
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("storage: failed to generate salt: %w", err)
	}

	key := pbkdf2.Key(password, salt, Iterations, KeySize, sha256.New)
	defer secure.Zero(key)

	gcm, err := newGCM(key)
	if err != nil {
		return err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("storage: failed to generate nonce: %w", err)
	}

	env := envelope{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, data, nil),
	}
	out, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("storage: failed to marshal envelope: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("storage: failed to create directory: %w", err)
	}
	if err := os.WriteFile(s.path, out, 0600); err != nil {
		return fmt.Errorf("storage: failed to write file: %w", err)
	}
	return nil
}

// Load opens the file and unseals it with the password.
func (s *SecureFile) Load(password []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to read file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("storage: failed to unmarshal envelope: %w", err)
	}

	key := pbkdf2.Key(password, env.Salt, Iterations, KeySize, sha256.New)
	defer secure.Zero(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// Exists reports whether the file is present on disk.
func (s *SecureFile) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Delete overwrites the file with random bytes before removing it.
func (s *SecureFile) Delete() error {
	if !s.Exists() {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("storage: failed to read file for deletion: %w", err)
	}
	if _, err := rand.Read(data); err != nil {
		return fmt.Errorf("storage: failed to overwrite file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("storage: failed to overwrite file: %w", err)
	}
	return os.Remove(s.path)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create GCM: %w", err)
	}
	return gcm, nil
}

// KeyFile persists a BLS signing key sealed under a passphrase.
type KeyFile struct {
	file *SecureFile
}

// NewKeyFile binds a key file to a path.
func NewKeyFile(path string) *KeyFile {
	return &KeyFile{file: NewSecureFile(path)}
}

// Save seals the signing key.
func (k *KeyFile) Save(key *bls.PrivateKey, password []byte) error {
	data := key.Bytes()
	defer secure.Zero(data)
	return k.file.Save(data, password)
}

// Load unseals the signing key.
func (k *KeyFile) Load(password []byte) (*bls.PrivateKey, error) {
	data, err := k.file.Load(password)
	if err != nil {
		return nil, err
	}
	defer secure.Zero(data)
	return bls.PrivateKeyFromBytes(data)
}

// Exists reports whether the key file is present.
func (k *KeyFile) Exists() bool { return k.file.Exists() }

// Delete removes the key file after overwriting it.
func (k *KeyFile) Delete() error { return k.file.Delete() }

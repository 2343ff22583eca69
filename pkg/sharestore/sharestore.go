// Package sharestore manages bundles of access-structure shares on
// disk. A bundle records the formula a secret was distributed over, the
// field it was shared in and the per-party shares, so that a later
// combine needs nothing but the bundle and a satisfying coalition.
// Stores can be encrypted at rest under a passphrase.
package sharestore

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/thresherlabs/thresher/pkg/crypto/field"
	"github.com/thresherlabs/thresher/pkg/crypto/msp"
	"github.com/thresherlabs/thresher/pkg/formula"
	"github.com/thresherlabs/thresher/pkg/secure"
)

var (
	// ErrNotFound is returned when a bundle ID is not in the store.
	ErrNotFound = errors.New("sharestore: bundle not found")

	// ErrChecksum is returned when a bundle fails integrity checking.
	ErrChecksum = errors.New("sharestore: checksum mismatch")
)

// FieldSpec describes the field a secret was shared over, in a form
// that survives JSON.
type FieldSpec struct {
	Kind  string `json:"kind"`            // "prime" or "bn254"
	Prime string `json:"prime,omitempty"` // decimal, for Kind "prime"
}

// Field materializes the described field.
func (fs FieldSpec) Field() (field.Field, error) {
	switch fs.Kind {
	case "bn254":
		return field.NewBN254Scalar(), nil
	case "prime":
		p, ok := new(big.Int).SetString(fs.Prime, 10)
		if !ok {
			return nil, fmt.Errorf("sharestore: invalid prime %q", fs.Prime)
		}
		return field.NewPrime(p)
	default:
		return nil, fmt.Errorf("sharestore: unknown field kind %q", fs.Kind)
	}
}

// Bundle is one distributed secret: the formula, the field and every
// party's shares keyed by occurrence label.
type Bundle struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	Description string                    `json:"description,omitempty"`
	Formula     string                    `json:"formula"`
	Field       FieldSpec                 `json:"field"`
	Created     time.Time                 `json:"created"`
	Modified    time.Time                 `json:"modified"`
	Tags        []string                  `json:"tags,omitempty"`
	Parties     map[string]map[int][]byte `json:"parties"`
	Checksum    []byte                    `json:"checksum,omitempty"`
}

// Recoverable reports whether the named coalition satisfies the
// bundle's access structure.
func (b *Bundle) Recoverable(names []string) (bool, error) {
	root, err := formula.Parse(b.Formula, true)
	if err != nil {
		return false, err
	}
	program, err := msp.FromTree(root)
	if err != nil {
		return false, err
	}
	f, err := b.Field.Field()
	if err != nil {
		return false, err
	}
	return program.Satisfies(f, names), nil
}

// SharesFor collects the shares held by the named parties, in the shape
// the recombiner consumes.
func (b *Bundle) SharesFor(names []string) map[string]map[int][]byte {
	out := make(map[string]map[int][]byte, len(names))
	for _, name := range names {
		if shares, ok := b.Parties[name]; ok {
			out[name] = shares
		}
	}
	return out
}

// Store is a directory of bundles, one JSON file each.
type Store struct {
	path       string
	bundles    map[string]*Bundle
	passphrase []byte // nil means plaintext storage
}

// Option configures a Store.
type Option func(*Store)

// WithPassphrase encrypts bundles at rest with a key derived from the
// passphrase via Argon2id.
func WithPassphrase(passphrase []byte) Option {
	return func(s *Store) {
		s.passphrase = append([]byte(nil), passphrase...)
	}
}

// Open loads a store, creating the directory if needed.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:    path,
		bundles: make(map[string]*Bundle),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("sharestore: failed to create store directory: %w", err)
	}
	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

// Add persists a bundle, assigning an ID and timestamps if missing.
func (s *Store) Add(b *Bundle) error {
	if b.ID == "" {
		id, err := secure.Random(16)
		if err != nil {
			return err
		}
		b.ID = fmt.Sprintf("%x", id)
	}
	if b.Created.IsZero() {
		b.Created = time.Now().UTC()
	}
	b.Modified = time.Now().UTC()

	if err := stampChecksum(b); err != nil {
		return err
	}
	s.bundles[b.ID] = b
	return s.save(b)
}

// Get returns a bundle by ID after verifying its checksum.
func (s *Store) Get(id string) (*Bundle, error) {
	b, ok := s.bundles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err := verifyChecksum(b); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns all bundles, newest first, optionally filtered to those
// carrying every given tag.
func (s *Store) List(tags []string) []*Bundle {
	var out []*Bundle
	for _, b := range s.bundles {
		if hasAllTags(b, tags) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Created.After(out[j].Created)
	})
	return out
}

// Search matches bundles by name, description, formula or tag
// substring, case-insensitively.
func (s *Store) Search(query string) []*Bundle {
	query = strings.ToLower(query)
	var out []*Bundle
	for _, b := range s.bundles {
		if matches(b, query) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		iExact := strings.ToLower(out[i].Name) == query
		jExact := strings.ToLower(out[j].Name) == query
		if iExact != jExact {
			return iExact
		}
		return out[i].Created.After(out[j].Created)
	})
	return out
}

// Delete removes a bundle from memory and disk.
func (s *Store) Delete(id string) error {
	b, ok := s.bundles[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(s.bundles, id)

	if err := os.Remove(s.filename(b)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("sharestore: failed to delete bundle file: %w", err)
	}
	return nil
}

func (s *Store) loadAll() error {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return fmt.Errorf("sharestore: failed to read store directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := s.loadFile(filepath.Join(s.path, entry.Name())); err != nil {
			// A corrupted file must not take the whole store down.
			continue
		}
	}
	return nil
}

func (s *Store) loadFile(name string) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	if s.passphrase != nil {
		if data, err = s.decrypt(data); err != nil {
			return err
		}
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	if err := verifyChecksum(&b); err != nil {
		return err
	}
	s.bundles[b.ID] = &b
	return nil
}

func (s *Store) save(b *Bundle) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("sharestore: failed to marshal bundle: %w", err)
	}
	if s.passphrase != nil {
		if data, err = s.encrypt(data); err != nil {
			return err
		}
	}
	return os.WriteFile(s.filename(b), data, 0600)
}

func (s *Store) filename(b *Bundle) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, b.Name)
	if len(safe) > 50 {
		safe = safe[:50]
	}
	return filepath.Join(s.path, fmt.Sprintf("%s_%s.json", safe, b.ID[:8]))
}

const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
	saltSize     = 32
)

func (s *Store) encrypt(data []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("sharestore: failed to generate salt: %w", err)
	}

	key := argon2.IDKey(s.passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	defer secure.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("sharestore: failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, data, nil)
	out := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

func (s *Store) decrypt(data []byte) ([]byte, error) {
	if len(data) < saltSize+chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("sharestore: encrypted bundle too short")
	}
	salt := data[:saltSize]
	nonce := data[saltSize : saltSize+chacha20poly1305.NonceSize]
	sealed := data[saltSize+chacha20poly1305.NonceSize:]

	key := argon2.IDKey(s.passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	defer secure.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("sharestore: decryption failed: %w", err)
	}
	return plaintext, nil
}

func stampChecksum(b *Bundle) error {
	b.Checksum = nil
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("sharestore: failed to checksum bundle: %w", err)
	}
	sum := sha256.Sum256(data)
	b.Checksum = sum[:]
	return nil
}

func verifyChecksum(b *Bundle) error {
	if len(b.Checksum) == 0 {
		return nil
	}
	want := append([]byte(nil), b.Checksum...)
	if err := stampChecksum(b); err != nil {
		return err
	}
	if !secure.ConstantTimeCompare(want, b.Checksum) {
		return ErrChecksum
	}
	return nil
}

func hasAllTags(b *Bundle, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	have := make(map[string]bool, len(b.Tags))
	for _, tag := range b.Tags {
		have[strings.ToLower(tag)] = true
	}
	for _, tag := range tags {
		if !have[strings.ToLower(tag)] {
			return false
		}
	}
	return true
}

func matches(b *Bundle, query string) bool {
	if strings.Contains(strings.ToLower(b.Name), query) ||
		strings.Contains(strings.ToLower(b.Description), query) ||
		strings.Contains(strings.ToLower(b.Formula), query) {
		return true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

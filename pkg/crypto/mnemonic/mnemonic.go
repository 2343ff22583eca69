// Package mnemonic wraps BIP-39 phrases used as human-transcribable
// backups for signing-key seeds.
package mnemonic

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

const (
	MinEntropyBits = 128
	MaxEntropyBits = 256
)

// Mnemonic is a validated BIP-39 phrase.
type Mnemonic struct {
	words []string
}

// New draws fresh entropy and encodes it as a phrase.
func New(entropyBits int) (*Mnemonic, error) {
	if entropyBits < MinEntropyBits || entropyBits > MaxEntropyBits {
		return nil, fmt.Errorf("mnemonic: entropy bits must be between %d and %d", MinEntropyBits, MaxEntropyBits)
	}
	if entropyBits%32 != 0 {
		return nil, fmt.Errorf("mnemonic: entropy bits must be a multiple of 32")
	}

	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return nil, fmt.Errorf("mnemonic: failed to generate entropy: %w", err)
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("mnemonic: failed to encode entropy: %w", err)
	}
	return &Mnemonic{words: strings.Fields(phrase)}, nil
}

// FromEntropy encodes existing entropy as a phrase. The entropy must be
// 16 to 32 bytes and a multiple of 4, per BIP-39.
func FromEntropy(entropy []byte) (*Mnemonic, error) {
	bits := len(entropy) * 8
	if bits < MinEntropyBits || bits > MaxEntropyBits || bits%32 != 0 {
		return nil, fmt.Errorf("mnemonic: cannot encode %d bytes of entropy", len(entropy))
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("mnemonic: failed to encode entropy: %w", err)
	}
	return &Mnemonic{words: strings.Fields(phrase)}, nil
}

// FromWords parses and validates an existing phrase.
func FromWords(phrase string) (*Mnemonic, error) {
	phrase = strings.Join(strings.Fields(phrase), " ")
	if !bip39.IsMnemonicValid(phrase) {
		return nil, fmt.Errorf("mnemonic: invalid phrase")
	}
	return &Mnemonic{words: strings.Fields(phrase)}, nil
}

// Words returns the phrase as a single space-joined string.
func (m *Mnemonic) Words() string {
	return strings.Join(m.words, " ")
}

// WordCount returns the number of words in the phrase.
func (m *Mnemonic) WordCount() int {
	return len(m.words)
}

// Seed stretches the phrase into 64 bytes of key material.
func (m *Mnemonic) Seed(passphrase string) []byte {
	return bip39.NewSeed(m.Words(), passphrase)
}

// Entropy recovers the raw entropy the phrase encodes.
func (m *Mnemonic) Entropy() ([]byte, error) {
	entropy, err := bip39.EntropyFromMnemonic(m.Words())
	if err != nil {
		return nil, fmt.Errorf("mnemonic: failed to recover entropy: %w", err)
	}
	return entropy, nil
}

// Checksum returns a short hex fingerprint of the phrase's entropy,
// handy for labeling backups without revealing the phrase.
func Checksum(phrase string) (string, error) {
	entropy, err := bip39.EntropyFromMnemonic(phrase)
	if err != nil {
		return "", fmt.Errorf("mnemonic: invalid phrase: %w", err)
	}
	h := sha256.Sum256(entropy)
	return hex.EncodeToString(h[:4]), nil
}

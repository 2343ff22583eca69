// Package bytesplit splits raw byte secrets with GF(256) Shamir sharing.
// It complements the field-generic sharing in pkg/crypto/shamir for
// callers that hold an opaque blob (a key file, a seed) rather than a
// field element, at the cost of a fixed 2..255 threshold range.
package bytesplit

import (
	"errors"
	"fmt"

	"github.com/hashicorp/vault/shamir"
)

var (
	// ErrEmptySecret is returned when splitting a zero-length secret.
	ErrEmptySecret = errors.New("bytesplit: secret cannot be empty")

	// ErrTooFewShares is returned when combining fewer than two shares.
	ErrTooFewShares = errors.New("bytesplit: at least 2 shares are required")
)

// Share is one fragment of a split secret. The share index is embedded
// in the trailing byte of Data, so fragments carry everything needed to
// recombine.
type Share struct {
	Index byte
	Data  []byte
}

// Config holds the split parameters.
type Config struct {
	Parts     int
	Threshold int
}

// Validate checks the parameters against the GF(256) scheme limits.
func (c *Config) Validate() error {
	if c.Parts < 2 {
		return fmt.Errorf("bytesplit: parts must be at least 2, got %d", c.Parts)
	}
	if c.Threshold < 2 {
		return fmt.Errorf("bytesplit: threshold must be at least 2, got %d", c.Threshold)
	}
	if c.Threshold > c.Parts {
		return fmt.Errorf("bytesplit: threshold (%d) cannot be greater than parts (%d)", c.Threshold, c.Parts)
	}
	if c.Parts > 255 {
		return fmt.Errorf("bytesplit: parts cannot exceed 255, got %d", c.Parts)
	}
	return nil
}

// Split shares the secret threshold-of-parts.
func Split(secret []byte, config Config) ([]Share, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	raw, err := shamir.Split(secret, config.Parts, config.Threshold)
	if err != nil {
		return nil, fmt.Errorf("bytesplit: failed to split secret: %w", err)
	}

	shares := make([]Share, len(raw))
	for i, data := range raw {
		shares[i] = Share{Index: byte(i + 1), Data: data}
	}
	return shares, nil
}

// Combine reconstructs the secret from at least threshold shares. With
// fewer than threshold shares it returns garbage, not an error; the
// GF(256) scheme cannot detect an insufficient set.
func Combine(shares []Share) ([]byte, error) {
	if len(shares) < 2 {
		return nil, ErrTooFewShares
	}

	raw := make([][]byte, len(shares))
	for i, share := range shares {
		if len(share.Data) == 0 {
			return nil, fmt.Errorf("bytesplit: share %d has empty data", share.Index)
		}
		raw[i] = share.Data
	}

	secret, err := shamir.Combine(raw)
	if err != nil {
		return nil, fmt.Errorf("bytesplit: failed to combine shares: %w", err)
	}
	return secret, nil
}

// VerifyShare checks a share's shape before use.
func VerifyShare(share Share, expectedLen int) error {
	if len(share.Data) != expectedLen {
		return fmt.Errorf("bytesplit: invalid share length: expected %d, got %d", expectedLen, len(share.Data))
	}
	if share.Index == 0 {
		return fmt.Errorf("bytesplit: share index cannot be 0")
	}
	return nil
}

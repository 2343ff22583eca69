// Package bls implements BLS signatures over BN254 with signatures on
// G1 and public keys on G2, plus a threshold mode where the signing key
// is Shamir-shared and partial signatures are combined with Lagrange
// coefficients in the exponent.
package bls

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/thresherlabs/thresher/pkg/crypto/field"
	"github.com/thresherlabs/thresher/pkg/crypto/shamir"
)

// Domain separation tag for hashing messages onto G1.
const dst = "THRESHER-BLS-BN254G1-SHA256-SSWU"

var (
	// ErrInvalidSignature is returned when verification fails.
	ErrInvalidSignature = errors.New("bls: invalid signature")

	// ErrNoPartials is returned when combining an empty partial set.
	ErrNoPartials = errors.New("bls: no partial signatures")
)

// PublicKey is a BLS verification key on G2.
type PublicKey struct {
	P bn254.G2Affine
}

// PrivateKey is a BLS signing key.
type PrivateKey struct {
	PublicKey
	s fr.Element
}

// GenerateKey draws a fresh signing key.
func GenerateKey() (*PrivateKey, error) {
	var s fr.Element
	if _, err := s.SetRandom(); err != nil {
		return nil, fmt.Errorf("bls: failed to draw signing key: %w", err)
	}
	return keyFromScalar(s), nil
}

// KeyFromSeed derives a signing key deterministically from seed
// material, reducing it into the scalar field.
func KeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) < 32 {
		return nil, fmt.Errorf("bls: seed must be at least 32 bytes, got %d", len(seed))
	}
	var s fr.Element
	s.SetBigInt(new(big.Int).SetBytes(seed))
	return keyFromScalar(s), nil
}

// Bytes returns the canonical encoding of the signing key scalar.
func (k *PrivateKey) Bytes() []byte {
	b := k.s.Bytes()
	return b[:]
}

// PrivateKeyFromBytes rebuilds a signing key from its Bytes encoding.
func PrivateKeyFromBytes(data []byte) (*PrivateKey, error) {
	var s fr.Element
	if err := s.SetBytesCanonical(data); err != nil {
		return nil, fmt.Errorf("bls: invalid private key encoding: %w", err)
	}
	return keyFromScalar(s), nil
}

func keyFromScalar(s fr.Element) *PrivateKey {
	var sBig big.Int
	s.BigInt(&sBig)
	priv := &PrivateKey{s: s}
	priv.P.ScalarMultiplicationBase(&sBig)
	return priv
}

// Sign hashes the message onto G1 and multiplies by the signing key.
func (k *PrivateKey) Sign(message []byte) (bn254.G1Affine, error) {
	h, err := bn254.HashToG1(message, []byte(dst))
	if err != nil {
		return bn254.G1Affine{}, fmt.Errorf("bls: hash-to-curve failed: %w", err)
	}
	var sBig big.Int
	k.s.BigInt(&sBig)
	var sig bn254.G1Affine
	sig.ScalarMultiplication(&h, &sBig)
	return sig, nil
}

// Verify checks e(sig, G2) = e(H(m), pk).
func Verify(pk *PublicKey, message []byte, sig bn254.G1Affine) error {
	h, err := bn254.HashToG1(message, []byte(dst))
	if err != nil {
		return fmt.Errorf("bls: hash-to-curve failed: %w", err)
	}
	_, _, _, g2 := bn254.Generators()

	left, err := bn254.Pair([]bn254.G1Affine{sig}, []bn254.G2Affine{g2})
	if err != nil {
		return fmt.Errorf("bls: pairing failed: %w", err)
	}
	right, err := bn254.Pair([]bn254.G1Affine{h}, []bn254.G2Affine{pk.P})
	if err != nil {
		return fmt.Errorf("bls: pairing failed: %w", err)
	}
	if !left.Equal(&right) {
		return ErrInvalidSignature
	}
	return nil
}

// KeyShare is one participant's slice of a threshold signing key.
type KeyShare struct {
	Index uint64
	Value []byte // scalar share, canonical fr encoding
}

// PartialSignature is one participant's contribution to a threshold
// signature.
type PartialSignature struct {
	Index uint64
	Sig   bn254.G1Affine
}

// SplitKey shares the signing key t-of-n over the BN254 scalar field.
func SplitKey(k *PrivateKey, threshold, parts int) ([]KeyShare, error) {
	if parts < threshold {
		return nil, fmt.Errorf("bls: parts (%d) below threshold (%d)", parts, threshold)
	}
	f := field.NewBN254Scalar()
	inst, err := shamir.NewElement(f, f.FromElement(k.s), threshold)
	if err != nil {
		return nil, err
	}
	shares := make([]KeyShare, parts)
	for i := 1; i <= parts; i++ {
		v, err := inst.CreateShare(shamir.Index(i))
		if err != nil {
			return nil, err
		}
		shares[i-1] = KeyShare{Index: uint64(i), Value: v}
	}
	return shares, nil
}

// PartialSign signs with a key share.
func PartialSign(share KeyShare, message []byte) (PartialSignature, error) {
	var s fr.Element
	if err := s.SetBytesCanonical(share.Value); err != nil {
		return PartialSignature{}, fmt.Errorf("bls: invalid key share: %w", err)
	}
	sig, err := keyFromScalar(s).Sign(message)
	if err != nil {
		return PartialSignature{}, err
	}
	return PartialSignature{Index: share.Index, Sig: sig}, nil
}

// Combine aggregates at least threshold partial signatures into the
// group signature via Lagrange interpolation in the exponent.
func Combine(partials []PartialSignature, threshold int) (bn254.G1Affine, error) {
	if len(partials) == 0 {
		return bn254.G1Affine{}, ErrNoPartials
	}
	// Deduplicate by index before interpolating.
	unique := partials[:0:0]
	seen := make(map[uint64]struct{}, len(partials))
	for _, p := range partials {
		if _, dup := seen[p.Index]; dup {
			continue
		}
		seen[p.Index] = struct{}{}
		unique = append(unique, p)
	}
	if len(unique) < threshold {
		return bn254.G1Affine{}, fmt.Errorf("%w: need %d, got %d",
			shamir.ErrInsufficientShares, threshold, len(unique))
	}

	f := field.NewBN254Scalar()
	xs := make([]field.Element, len(unique))
	for i, p := range unique {
		xs[i] = f.FromUint64(p.Index)
	}
	basis, err := shamir.LagrangeBasisAt(f, xs, f.Zero())
	if err != nil {
		return bn254.G1Affine{}, err
	}

	var acc bn254.G1Jac
	var coeff big.Int
	for i, p := range unique {
		coeff.SetBytes(basis[i].Bytes())
		var term bn254.G1Affine
		term.ScalarMultiplication(&p.Sig, &coeff)
		var termJac bn254.G1Jac
		termJac.FromAffine(&term)
		if i == 0 {
			acc = termJac
		} else {
			acc.AddAssign(&termJac)
		}
	}
	var out bn254.G1Affine
	out.FromJacobian(&acc)
	return out, nil
}

// Package ste implements the tag-based encryption step of the
// silent-threshold encryption scheme of Garg, Kolonelos, Policharla and
// Wang (2024): ciphertexts are bound to a tag whose hash pairs against
// a BLS-style key. Only the single-key encryption/decryption round trip
// is provided; the full silent-setup protocol with aggregated committee
// keys is out of scope.
package ste

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Domain separation tag for hashing tags onto G1.
const dst = "THRESHER-STE-BN254G1-SHA256-SSWU"

// Ciphertext is an encryption of a GT element under a tag.
type Ciphertext struct {
	C1 bn254.G2Affine // r·G2
	C2 bn254.GT       // m · e(r·H(tag), pk)
}

// SecretKey decrypts ciphertexts made for its public key.
type SecretKey struct {
	PublicKey
	s fr.Element
}

// PublicKey is the encryption key on G2.
type PublicKey struct {
	P bn254.G2Affine
}

// GenerateKey draws a fresh key pair.
func GenerateKey() (*SecretKey, error) {
	var s fr.Element
	if _, err := s.SetRandom(); err != nil {
		return nil, fmt.Errorf("ste: failed to draw secret key: %w", err)
	}
	var sBig big.Int
	s.BigInt(&sBig)
	sk := &SecretKey{s: s}
	sk.P.ScalarMultiplicationBase(&sBig)
	return sk, nil
}

// Encrypt binds the GT message to the tag under the public key.
func Encrypt(pk *PublicKey, message bn254.GT, tag []byte) (*Ciphertext, error) {
	var r fr.Element
	if _, err := r.SetRandom(); err != nil {
		return nil, fmt.Errorf("ste: failed to draw encryption randomness: %w", err)
	}
	var rBig big.Int
	r.BigInt(&rBig)

	h, err := bn254.HashToG1(tag, []byte(dst))
	if err != nil {
		return nil, fmt.Errorf("ste: hash-to-curve failed: %w", err)
	}
	var rh bn254.G1Affine
	rh.ScalarMultiplication(&h, &rBig)

	mask, err := bn254.Pair([]bn254.G1Affine{rh}, []bn254.G2Affine{pk.P})
	if err != nil {
		return nil, fmt.Errorf("ste: pairing failed: %w", err)
	}

	ct := &Ciphertext{}
	ct.C1.ScalarMultiplicationBase(&rBig)
	ct.C2.Mul(&message, &mask)
	return ct, nil
}

// Decrypt strips the pairing mask using the secret key and the tag.
func Decrypt(sk *SecretKey, ct *Ciphertext, tag []byte) (bn254.GT, error) {
	h, err := bn254.HashToG1(tag, []byte(dst))
	if err != nil {
		return bn254.GT{}, fmt.Errorf("ste: hash-to-curve failed: %w", err)
	}
	factor, err := bn254.Pair([]bn254.G1Affine{h}, []bn254.G2Affine{ct.C1})
	if err != nil {
		return bn254.GT{}, fmt.Errorf("ste: pairing failed: %w", err)
	}
	var sBig big.Int
	sk.s.BigInt(&sBig)
	factor.Exp(factor, &sBig)

	var inv, message bn254.GT
	inv.Inverse(&factor)
	message.Mul(&ct.C2, &inv)
	return message, nil
}

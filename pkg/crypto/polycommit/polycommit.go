// Package polycommit implements polynomial commitments over the BN254
// pairing curve: a plain per-coefficient commitment and KZG commitments
// with constant-size opening proofs.
package polycommit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	// ErrEmptyPolynomial is returned when committing to a polynomial
	// with no coefficients.
	ErrEmptyPolynomial = errors.New("polycommit: polynomial has no coefficients")

	// ErrDegreeTooLarge is returned when the polynomial degree exceeds
	// the CRS size.
	ErrDegreeTooLarge = errors.New("polycommit: polynomial degree exceeds the CRS")

	// ErrInvalidCRS is returned when decoding a malformed serialized CRS.
	ErrInvalidCRS = errors.New("polycommit: invalid CRS encoding")
)

// Polynomial holds coefficients over the BN254 scalar field, constant
// term first.
type Polynomial []fr.Element

// RandomPolynomial draws a polynomial with the given number of
// coefficients.
func RandomPolynomial(coefficients int) (Polynomial, error) {
	p := make(Polynomial, coefficients)
	for i := range p {
		if _, err := p[i].SetRandom(); err != nil {
			return nil, fmt.Errorf("polycommit: failed to draw coefficient: %w", err)
		}
	}
	return p, nil
}

// Evaluate returns p(x) by Horner's rule.
func (p Polynomial) Evaluate(x fr.Element) fr.Element {
	var result fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		result.Mul(&result, &x)
		result.Add(&result, &p[i])
	}
	return result
}

// quotientAt returns (p(X) - p(z)) / (X - z) by synthetic division; the
// division is exact because z is a root of the numerator.
func (p Polynomial) quotientAt(z fr.Element) Polynomial {
	if len(p) < 2 {
		return Polynomial{}
	}
	q := make(Polynomial, len(p)-1)
	q[len(q)-1] = p[len(p)-1]
	for i := len(q) - 2; i >= 0; i-- {
		q[i].Mul(&q[i+1], &z)
		q[i].Add(&q[i], &p[i+1])
	}
	return q
}

// CoefficientCommitment commits to every coefficient individually:
// C_i = a_i·G1. Openings carry no proof; verification recomputes
// Σ x^i·C_i and compares it against y·G1.
type CoefficientCommitment struct {
	poly Polynomial
}

// NewCoefficientCommitment wraps a polynomial for committing.
func NewCoefficientCommitment(p Polynomial) (*CoefficientCommitment, error) {
	if len(p) == 0 {
		return nil, ErrEmptyPolynomial
	}
	return &CoefficientCommitment{poly: p}, nil
}

// Commit returns one G1 point per coefficient.
func (c *CoefficientCommitment) Commit() []bn254.G1Affine {
	out := make([]bn254.G1Affine, len(c.poly))
	var s big.Int
	for i := range c.poly {
		c.poly[i].BigInt(&s)
		out[i].ScalarMultiplicationBase(&s)
	}
	return out
}

// Open evaluates the polynomial; the value itself is the opening.
func (c *CoefficientCommitment) Open(x fr.Element) fr.Element {
	return c.poly.Evaluate(x)
}

// VerifyCoefficientOpening checks y·G1 = Σ x^i·C_i.
func VerifyCoefficientOpening(commitment []bn254.G1Affine, x, y fr.Element) bool {
	powers := make([]fr.Element, len(commitment))
	powers[0].SetOne()
	for i := 1; i < len(powers); i++ {
		powers[i].Mul(&powers[i-1], &x)
	}
	var expected bn254.G1Affine
	if _, err := expected.MultiExp(commitment, powers, ecc.MultiExpConfig{}); err != nil {
		return false
	}

	var yBig big.Int
	y.BigInt(&yBig)
	var found bn254.G1Affine
	found.ScalarMultiplicationBase(&yBig)

	return expected.Equal(&found)
}

// KZG holds a structured reference string of trapdoor powers on G1 and
// G2. The local trapdoor setup stands in for a proper ceremony.
type KZG struct {
	crsG1 []bn254.G1Affine
	crsG2 []bn254.G2Affine
}

// NewKZG samples a fresh trapdoor and builds a CRS supporting
// polynomials with up to size coefficients.
func NewKZG(size int) (*KZG, error) {
	if size < 2 {
		return nil, fmt.Errorf("polycommit: CRS size must be at least 2, got %d", size)
	}
	var tau fr.Element
	if _, err := tau.SetRandom(); err != nil {
		return nil, fmt.Errorf("polycommit: failed to draw trapdoor: %w", err)
	}

	k := &KZG{
		crsG1: make([]bn254.G1Affine, size),
		crsG2: make([]bn254.G2Affine, size),
	}
	power := fr.One()
	var s big.Int
	for i := 0; i < size; i++ {
		power.BigInt(&s)
		k.crsG1[i].ScalarMultiplicationBase(&s)
		k.crsG2[i].ScalarMultiplicationBase(&s)
		power.Mul(&power, &tau)
	}
	return k, nil
}

// Size returns the number of CRS powers.
func (k *KZG) Size() int { return len(k.crsG1) }

// MarshalBinary encodes the CRS as a big-endian power count followed by
// the compressed G1 and G2 powers.
func (k *KZG) MarshalBinary() ([]byte, error) {
	if len(k.crsG1) < 2 || len(k.crsG1) != len(k.crsG2) {
		return nil, ErrInvalidCRS
	}
	buf := make([]byte, 4, 4+len(k.crsG1)*(bn254.SizeOfG1AffineCompressed+bn254.SizeOfG2AffineCompressed))
	binary.BigEndian.PutUint32(buf, uint32(len(k.crsG1)))
	for i := range k.crsG1 {
		raw := k.crsG1[i].Bytes()
		buf = append(buf, raw[:]...)
	}
	for i := range k.crsG2 {
		raw := k.crsG2[i].Bytes()
		buf = append(buf, raw[:]...)
	}
	return buf, nil
}

// UnmarshalBinary restores a CRS produced by MarshalBinary.
func (k *KZG) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return ErrInvalidCRS
	}
	size := int(binary.BigEndian.Uint32(data))
	if size < 2 {
		return ErrInvalidCRS
	}
	want := 4 + size*(bn254.SizeOfG1AffineCompressed+bn254.SizeOfG2AffineCompressed)
	if len(data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidCRS, len(data), want)
	}
	g1 := make([]bn254.G1Affine, size)
	g2 := make([]bn254.G2Affine, size)
	off := 4
	for i := 0; i < size; i++ {
		if _, err := g1[i].SetBytes(data[off : off+bn254.SizeOfG1AffineCompressed]); err != nil {
			return fmt.Errorf("%w: G1 power %d: %v", ErrInvalidCRS, i, err)
		}
		off += bn254.SizeOfG1AffineCompressed
	}
	for i := 0; i < size; i++ {
		if _, err := g2[i].SetBytes(data[off : off+bn254.SizeOfG2AffineCompressed]); err != nil {
			return fmt.Errorf("%w: G2 power %d: %v", ErrInvalidCRS, i, err)
		}
		off += bn254.SizeOfG2AffineCompressed
	}
	k.crsG1, k.crsG2 = g1, g2
	return nil
}

func (k *KZG) commitG1(p Polynomial) (bn254.G1Affine, error) {
	var out bn254.G1Affine
	if len(p) == 0 {
		return out, ErrEmptyPolynomial
	}
	if len(p) > len(k.crsG1) {
		return out, fmt.Errorf("%w: %d coefficients, CRS %d", ErrDegreeTooLarge, len(p), len(k.crsG1))
	}
	if _, err := out.MultiExp(k.crsG1[:len(p)], p, ecc.MultiExpConfig{}); err != nil {
		return out, fmt.Errorf("polycommit: multi-exponentiation failed: %w", err)
	}
	return out, nil
}

// Commit returns the KZG commitment Σ a_i·[τ^i]G1.
func (k *KZG) Commit(p Polynomial) (bn254.G1Affine, error) {
	return k.commitG1(p)
}

// Open evaluates p at x and produces the quotient-polynomial proof.
func (k *KZG) Open(p Polynomial, x fr.Element) (fr.Element, bn254.G1Affine, error) {
	y := p.Evaluate(x)
	quotient := p.quotientAt(x)
	if len(quotient) == 0 {
		// Constant polynomial: the zero quotient commits to infinity.
		var inf bn254.G1Affine
		return y, inf, nil
	}
	proof, err := k.commitG1(quotient)
	if err != nil {
		return fr.Element{}, bn254.G1Affine{}, err
	}
	return y, proof, nil
}

// Verify checks the pairing equation
// e(proof, [τ]G2 - x·G2) = e(C - y·G1, G2).
func (k *KZG) Verify(commitment bn254.G1Affine, x, y fr.Element, proof bn254.G1Affine) (bool, error) {
	_, _, g1, g2 := bn254.Generators()

	var xBig, yBig big.Int
	x.BigInt(&xBig)
	y.BigInt(&yBig)

	// [τ - x]G2
	var xG2, tauMinusX bn254.G2Affine
	xG2.ScalarMultiplication(&g2, &xBig)
	var tauJac, xJac bn254.G2Jac
	tauJac.FromAffine(&k.crsG2[1])
	xJac.FromAffine(&xG2)
	tauJac.SubAssign(&xJac)
	tauMinusX.FromJacobian(&tauJac)

	// C - y·G1
	var yG1 bn254.G1Affine
	yG1.ScalarMultiplication(&g1, &yBig)
	var cJac, yJac bn254.G1Jac
	cJac.FromAffine(&commitment)
	yJac.FromAffine(&yG1)
	cJac.SubAssign(&yJac)
	var cMinusY bn254.G1Affine
	cMinusY.FromJacobian(&cJac)

	lhs, err := bn254.Pair([]bn254.G1Affine{proof}, []bn254.G2Affine{tauMinusX})
	if err != nil {
		return false, fmt.Errorf("polycommit: pairing failed: %w", err)
	}
	rhs, err := bn254.Pair([]bn254.G1Affine{cMinusY}, []bn254.G2Affine{g2})
	if err != nil {
		return false, fmt.Errorf("polycommit: pairing failed: %w", err)
	}
	return lhs.Equal(&rhs), nil
}

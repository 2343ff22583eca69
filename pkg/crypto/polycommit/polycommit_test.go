package polycommit

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frElem(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func TestPolynomialEvaluate(t *testing.T) {
	// p(x) = 4 + 11x + 13x^2 + x^3
	p := Polynomial{frElem(4), frElem(11), frElem(13), frElem(1)}

	// p(3) = 4 + 33 + 117 + 27 = 181
	got := p.Evaluate(frElem(3))
	want := frElem(181)
	assert.True(t, got.Equal(&want))
}

func TestQuotientDivisionIsExact(t *testing.T) {
	p, err := RandomPolynomial(8)
	require.NoError(t, err)

	var z fr.Element
	_, err = z.SetRandom()
	require.NoError(t, err)

	y := p.Evaluate(z)
	q := p.quotientAt(z)
	require.Len(t, q, len(p)-1)

	// q(x)·(x - z) + y must equal p(x) at a random point.
	var x fr.Element
	_, err = x.SetRandom()
	require.NoError(t, err)

	var lin fr.Element
	lin.Sub(&x, &z)
	qx := q.Evaluate(x)
	var got fr.Element
	got.Mul(&qx, &lin)
	got.Add(&got, &y)

	px := p.Evaluate(x)
	assert.True(t, got.Equal(&px))
}

func TestCoefficientCommitmentRoundTrip(t *testing.T) {
	p, err := RandomPolynomial(10)
	require.NoError(t, err)

	cc, err := NewCoefficientCommitment(p)
	require.NoError(t, err)
	commitment := cc.Commit()
	require.Len(t, commitment, 10)

	var x fr.Element
	_, err = x.SetRandom()
	require.NoError(t, err)

	y := cc.Open(x)
	assert.True(t, VerifyCoefficientOpening(commitment, x, y))

	one := frElem(1)
	var wrong fr.Element
	wrong.Add(&y, &one)
	assert.False(t, VerifyCoefficientOpening(commitment, x, wrong))
}

func TestEmptyPolynomialRejected(t *testing.T) {
	_, err := NewCoefficientCommitment(Polynomial{})
	assert.ErrorIs(t, err, ErrEmptyPolynomial)
}

func TestKZGRoundTrip(t *testing.T) {
	k, err := NewKZG(24)
	require.NoError(t, err)

	p, err := RandomPolynomial(10)
	require.NoError(t, err)

	commitment, err := k.Commit(p)
	require.NoError(t, err)

	var x fr.Element
	_, err = x.SetRandom()
	require.NoError(t, err)

	y, proof, err := k.Open(p, x)
	require.NoError(t, err)

	ok, err := k.Verify(commitment, x, y, proof)
	require.NoError(t, err)
	assert.True(t, ok)

	// A doctored evaluation must not verify.
	one := frElem(1)
	var wrong fr.Element
	wrong.Add(&y, &one)
	ok, err = k.Verify(commitment, x, wrong, proof)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKZGCRSSerialization(t *testing.T) {
	k, err := NewKZG(8)
	require.NoError(t, err)

	data, err := k.MarshalBinary()
	require.NoError(t, err)

	var restored KZG
	require.NoError(t, restored.UnmarshalBinary(data))
	require.Equal(t, k.Size(), restored.Size())

	// Proofs opened against the original CRS verify against the restored one.
	p, err := RandomPolynomial(5)
	require.NoError(t, err)
	commitment, err := k.Commit(p)
	require.NoError(t, err)

	var x fr.Element
	_, err = x.SetRandom()
	require.NoError(t, err)
	y, proof, err := k.Open(p, x)
	require.NoError(t, err)

	ok, err := restored.Verify(commitment, x, y, proof)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, restored.UnmarshalBinary(data[:len(data)-1]), ErrInvalidCRS)
	assert.ErrorIs(t, restored.UnmarshalBinary(nil), ErrInvalidCRS)
}

func TestKZGDegreeBound(t *testing.T) {
	k, err := NewKZG(4)
	require.NoError(t, err)

	p, err := RandomPolynomial(5)
	require.NoError(t, err)

	_, err = k.Commit(p)
	assert.ErrorIs(t, err, ErrDegreeTooLarge)
}

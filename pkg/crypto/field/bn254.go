package field

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// BN254Scalar is the scalar field of the BN254 pairing curve, backed by
// gnark-crypto's fr arithmetic. Secrets shared over this field can be
// consumed directly by the pairing-based packages (polycommit, bls, ste).
type BN254Scalar struct{}

// NewBN254Scalar returns the BN254 scalar field.
func NewBN254Scalar() *BN254Scalar { return &BN254Scalar{} }

func (f *BN254Scalar) Zero() Element { return bn254Element{} }

func (f *BN254Scalar) One() Element {
	var v fr.Element
	v.SetOne()
	return bn254Element{v: v}
}

func (f *BN254Scalar) FromUint64(v uint64) Element {
	var e fr.Element
	e.SetUint64(v)
	return bn254Element{v: e}
}

// FromElement wraps an fr element.
func (f *BN254Scalar) FromElement(v fr.Element) Element { return bn254Element{v: v} }

func (f *BN254Scalar) FromBytes(b []byte) (Element, error) {
	if len(b) != fr.Bytes {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrEncoding, fr.Bytes, len(b))
	}
	var v fr.Element
	if err := v.SetBytesCanonical(b); err != nil {
		return nil, fmt.Errorf("field: bn254 scalar decoding failed: %w", err)
	}
	return bn254Element{v: v}, nil
}

// Random ignores rng: fr sampling is bound to crypto/rand.
func (f *BN254Scalar) Random(_ io.Reader) (Element, error) {
	var v fr.Element
	if _, err := v.SetRandom(); err != nil {
		return nil, fmt.Errorf("field: failed to sample bn254 scalar: %w", err)
	}
	return bn254Element{v: v}, nil
}

func (f *BN254Scalar) Degree() int { return 1 }

func (f *BN254Scalar) ElementSize() int { return fr.Bytes }

type bn254Element struct {
	v fr.Element
}

// Fr returns the underlying fr element.
func (e bn254Element) Fr() fr.Element { return e.v }

func (e bn254Element) peer(other Element) bn254Element {
	o, ok := other.(bn254Element)
	if !ok {
		panic(ErrMixedFields)
	}
	return o
}

func (e bn254Element) Add(other Element) Element {
	o := e.peer(other)
	var out fr.Element
	out.Add(&e.v, &o.v)
	return bn254Element{v: out}
}

func (e bn254Element) Sub(other Element) Element {
	o := e.peer(other)
	var out fr.Element
	out.Sub(&e.v, &o.v)
	return bn254Element{v: out}
}

func (e bn254Element) Mul(other Element) Element {
	o := e.peer(other)
	var out fr.Element
	out.Mul(&e.v, &o.v)
	return bn254Element{v: out}
}

func (e bn254Element) Neg() Element {
	var out fr.Element
	out.Neg(&e.v)
	return bn254Element{v: out}
}

func (e bn254Element) Inverse() (Element, error) {
	if e.v.IsZero() {
		return nil, ErrDivisionByZero
	}
	var out fr.Element
	out.Inverse(&e.v)
	return bn254Element{v: out}, nil
}

func (e bn254Element) IsZero() bool { return e.v.IsZero() }

func (e bn254Element) Equal(other Element) bool {
	o, ok := other.(bn254Element)
	return ok && e.v.Equal(&o.v)
}

func (e bn254Element) Bytes() []byte {
	b := e.v.Bytes()
	return b[:]
}

func (e bn254Element) String() string { return e.v.String() }

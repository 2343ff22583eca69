// Package field provides finite-field arithmetic for the secret sharing
// and commitment schemes in this module. Three fields are available: a
// prime field GF(p), an extension field GF(p^d) over a caller-supplied
// irreducible modulus, and the scalar field of the BN254 pairing curve.
//
// All byte encodings are fixed-width and round-trip exactly:
// FromBytes(e.Bytes()) always recovers e.
package field

import (
	"errors"
	"io"
)

var (
	// ErrEncoding is returned when a byte string does not have the
	// field's canonical encoding length.
	ErrEncoding = errors.New("field: invalid encoding length")

	// ErrDivisionByZero is returned when inverting the zero element.
	ErrDivisionByZero = errors.New("field: inverse of zero element")

	// ErrMixedFields is returned when an operation combines elements
	// of different fields.
	ErrMixedFields = errors.New("field: elements belong to different fields")
)

// Element is a value in a finite field. Elements are immutable; every
// operation returns a fresh element of the same field.
type Element interface {
	Add(Element) Element
	Sub(Element) Element
	Mul(Element) Element
	Neg() Element
	Inverse() (Element, error)
	IsZero() bool
	Equal(Element) bool

	// Bytes returns the canonical fixed-width encoding.
	Bytes() []byte
	String() string
}

// Field describes a finite field and constructs its elements.
type Field interface {
	Zero() Element
	One() Element
	FromUint64(uint64) Element

	// FromBytes decodes the canonical fixed-width encoding.
	FromBytes([]byte) (Element, error)

	// Random draws a uniformly random element from rng.
	Random(rng io.Reader) (Element, error)

	// Degree is the extension degree over the prime subfield (1 for
	// prime fields).
	Degree() int

	// ElementSize is the byte length of the canonical encoding.
	ElementSize() int
}

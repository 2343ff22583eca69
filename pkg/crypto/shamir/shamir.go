// Package shamir implements Shamir's threshold secret sharing over an
// arbitrary finite field, including the degenerate 1-of-n case where the
// sharing polynomial is constant. The x-coordinate zero is reserved for
// the secret itself and never issued as a share.
package shamir

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/thresherlabs/thresher/pkg/crypto/field"
)

var (
	// ErrInvalidThreshold is returned for thresholds below 1.
	ErrInvalidThreshold = errors.New("shamir: threshold must be at least 1")

	// ErrReservedCoordinate is returned when an identity decodes to the
	// field's zero element.
	ErrReservedCoordinate = errors.New("shamir: x-coordinate zero is reserved for the secret")

	// ErrInsufficientShares is returned when reconstruction is attempted
	// with fewer distinct shares than the threshold.
	ErrInsufficientShares = errors.New("shamir: insufficient number of distinct shares")
)

// Identity selects the x-coordinate a share is evaluated at. An Index
// converts directly to a field element; a Raw identity is decoded via
// the field's canonical byte encoding.
type Identity interface {
	coordinate(f field.Field) (field.Element, error)
}

// Index is an integer identity.
type Index uint64

func (i Index) coordinate(f field.Field) (field.Element, error) {
	return f.FromUint64(uint64(i)), nil
}

// Raw is a byte-encoded identity.
type Raw []byte

func (r Raw) coordinate(f field.Field) (field.Element, error) {
	e, err := f.FromBytes(r)
	if err != nil {
		return nil, fmt.Errorf("shamir: failed to decode identity: %w", err)
	}
	return e, nil
}

// Share pairs an identity with its serialized share value.
type Share struct {
	ID    Identity
	Value []byte
}

// Scheme is a single immutable sharing instance: a secret and a random
// polynomial of degree threshold-1 whose constant term is the secret.
type Scheme struct {
	field     field.Field
	threshold int
	// coeffs[0] is the secret; with threshold 1 the polynomial is the
	// constant secret and every share equals it.
	coeffs []field.Element
}

// New creates a sharing instance for a byte-encoded secret.
func New(f field.Field, secret []byte, threshold int) (*Scheme, error) {
	el, err := f.FromBytes(secret)
	if err != nil {
		return nil, fmt.Errorf("shamir: failed to decode secret: %w", err)
	}
	return NewElement(f, el, threshold)
}

// NewElement creates a sharing instance for a field-element secret.
func NewElement(f field.Field, secret field.Element, threshold int) (*Scheme, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidThreshold, threshold)
	}
	coeffs := make([]field.Element, threshold)
	coeffs[0] = secret
	for i := 1; i < threshold; i++ {
		c, err := f.Random(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("shamir: failed to draw polynomial coefficient: %w", err)
		}
		coeffs[i] = c
	}
	return &Scheme{field: f, threshold: threshold, coeffs: coeffs}, nil
}

// Field returns the field the instance shares over.
func (s *Scheme) Field() field.Field { return s.field }

// Threshold returns the reconstruction threshold.
func (s *Scheme) Threshold() int { return s.threshold }

// SecretBytes returns the canonical encoding of the secret.
func (s *Scheme) SecretBytes() []byte { return s.coeffs[0].Bytes() }

// Secret returns the secret as a field element.
func (s *Scheme) Secret() field.Element { return s.coeffs[0] }

func (s *Scheme) evaluate(x field.Element) field.Element {
	// Horner, highest coefficient first.
	result := s.field.Zero()
	for i := len(s.coeffs) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(s.coeffs[i])
	}
	return result
}

// CreateShare evaluates the polynomial at the identity's coordinate and
// returns the serialized share value.
func (s *Scheme) CreateShare(id Identity) ([]byte, error) {
	x, err := id.coordinate(s.field)
	if err != nil {
		return nil, err
	}
	if x.IsZero() {
		return nil, ErrReservedCoordinate
	}
	return s.evaluate(x).Bytes(), nil
}

// Recombine reconstructs the secret from shares against this instance's
// field and threshold.
func (s *Scheme) Recombine(shares []Share) ([]byte, error) {
	return Recombine(s.field, s.threshold, shares)
}

// Recombine deduplicates the share identities, interpolates the
// polynomial through the remaining points at x=0 and returns the
// serialized constant term.
func Recombine(f field.Field, threshold int, shares []Share) ([]byte, error) {
	type point struct {
		x field.Element
		y field.Element
	}
	seen := make(map[string]struct{}, len(shares))
	points := make([]point, 0, len(shares))
	for _, sh := range shares {
		x, err := sh.ID.coordinate(f)
		if err != nil {
			return nil, err
		}
		key := string(x.Bytes())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		y, err := f.FromBytes(sh.Value)
		if err != nil {
			return nil, fmt.Errorf("shamir: failed to decode share value: %w", err)
		}
		points = append(points, point{x: x, y: y})
	}

	if len(points) < threshold {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrInsufficientShares, threshold, len(points))
	}

	xs := make([]field.Element, len(points))
	for i, pt := range points {
		xs[i] = pt.x
	}
	basis, err := LagrangeBasisAt(f, xs, f.Zero())
	if err != nil {
		return nil, err
	}

	result := f.Zero()
	for i, pt := range points {
		result = result.Add(pt.y.Mul(basis[i]))
	}
	return result.Bytes(), nil
}

package field

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// Prime is the field of integers modulo an odd prime p.
type Prime struct {
	p    *big.Int
	size int
}

// NewPrime creates GF(p). The primality of p is the caller's
// responsibility; composite moduli break inversion.
func NewPrime(p *big.Int) (*Prime, error) {
	if p == nil || p.Sign() <= 0 {
		return nil, fmt.Errorf("field: modulus must be a positive prime")
	}
	return &Prime{
		p:    new(big.Int).Set(p),
		size: (p.BitLen() + 7) / 8,
	}, nil
}

// Modulus returns a copy of p.
func (f *Prime) Modulus() *big.Int { return new(big.Int).Set(f.p) }

func (f *Prime) Zero() Element { return &primeElement{f: f, v: new(big.Int)} }

func (f *Prime) One() Element { return &primeElement{f: f, v: big.NewInt(1)} }

func (f *Prime) FromUint64(v uint64) Element {
	n := new(big.Int).SetUint64(v)
	n.Mod(n, f.p)
	return &primeElement{f: f, v: n}
}

func (f *Prime) FromBigInt(v *big.Int) Element {
	n := new(big.Int).Mod(v, f.p)
	return &primeElement{f: f, v: n}
}

func (f *Prime) FromBytes(b []byte) (Element, error) {
	if len(b) != f.size {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrEncoding, f.size, len(b))
	}
	n := new(big.Int).SetBytes(b)
	if n.Cmp(f.p) >= 0 {
		return nil, fmt.Errorf("field: encoded value exceeds modulus")
	}
	return &primeElement{f: f, v: n}, nil
}

func (f *Prime) Random(rng io.Reader) (Element, error) {
	if rng == nil {
		rng = rand.Reader
	}
	n, err := rand.Int(rng, f.p)
	if err != nil {
		return nil, fmt.Errorf("field: failed to sample random element: %w", err)
	}
	return &primeElement{f: f, v: n}, nil
}

func (f *Prime) Degree() int { return 1 }

func (f *Prime) ElementSize() int { return f.size }

type primeElement struct {
	f *Prime
	v *big.Int
}

func (e *primeElement) peer(other Element) *primeElement {
	o, ok := other.(*primeElement)
	if !ok || o.f.p.Cmp(e.f.p) != 0 {
		panic(ErrMixedFields)
	}
	return o
}

func (e *primeElement) Add(other Element) Element {
	o := e.peer(other)
	n := new(big.Int).Add(e.v, o.v)
	n.Mod(n, e.f.p)
	return &primeElement{f: e.f, v: n}
}

func (e *primeElement) Sub(other Element) Element {
	o := e.peer(other)
	n := new(big.Int).Sub(e.v, o.v)
	n.Mod(n, e.f.p)
	return &primeElement{f: e.f, v: n}
}

func (e *primeElement) Mul(other Element) Element {
	o := e.peer(other)
	n := new(big.Int).Mul(e.v, o.v)
	n.Mod(n, e.f.p)
	return &primeElement{f: e.f, v: n}
}

func (e *primeElement) Neg() Element {
	n := new(big.Int).Neg(e.v)
	n.Mod(n, e.f.p)
	return &primeElement{f: e.f, v: n}
}

func (e *primeElement) Inverse() (Element, error) {
	if e.v.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	n := new(big.Int).ModInverse(e.v, e.f.p)
	if n == nil {
		return nil, fmt.Errorf("field: %s is not invertible modulo %s", e.v, e.f.p)
	}
	return &primeElement{f: e.f, v: n}, nil
}

func (e *primeElement) IsZero() bool { return e.v.Sign() == 0 }

func (e *primeElement) Equal(other Element) bool {
	o, ok := other.(*primeElement)
	return ok && o.f.p.Cmp(e.f.p) == 0 && o.v.Cmp(e.v) == 0
}

func (e *primeElement) Bytes() []byte {
	out := make([]byte, e.f.size)
	e.v.FillBytes(out)
	return out
}

func (e *primeElement) String() string { return e.v.String() }

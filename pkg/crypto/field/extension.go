package field

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// Extension is the field GF(p^d), built over a prime subfield with a
// monic irreducible modulus polynomial of degree d. Elements are
// coefficient vectors in the power basis of the defining generator.
type Extension struct {
	base *Prime
	deg  int
	// modulus holds the d lower coefficients m_0..m_{d-1} of the monic
	// modulus polynomial X^d + m_{d-1}X^{d-1} + ... + m_0.
	modulus []*big.Int
}

// NewExtension creates GF(p^d) with the given modulus polynomial lower
// coefficients (constant term first, length d >= 2). Irreducibility of
// the modulus is the caller's responsibility.
func NewExtension(base *Prime, modulus []*big.Int) (*Extension, error) {
	if base == nil {
		return nil, fmt.Errorf("field: extension requires a base field")
	}
	if len(modulus) < 2 {
		return nil, fmt.Errorf("field: extension degree must be at least 2, got %d", len(modulus))
	}
	coeffs := make([]*big.Int, len(modulus))
	for i, m := range modulus {
		if m == nil {
			return nil, fmt.Errorf("field: modulus coefficient %d is nil", i)
		}
		coeffs[i] = new(big.Int).Mod(m, base.p)
	}
	return &Extension{base: base, deg: len(modulus), modulus: coeffs}, nil
}

// Base returns the prime subfield.
func (f *Extension) Base() *Prime { return f.base }

// Generator returns the defining generator, the class of X.
func (f *Extension) Generator() Element {
	e := f.zero()
	e.c[1].SetInt64(1)
	return e
}

func (f *Extension) zero() *extElement {
	c := make([]*big.Int, f.deg)
	for i := range c {
		c[i] = new(big.Int)
	}
	return &extElement{f: f, c: c}
}

func (f *Extension) Zero() Element { return f.zero() }

func (f *Extension) One() Element {
	e := f.zero()
	e.c[0].SetInt64(1)
	return e
}

func (f *Extension) FromUint64(v uint64) Element {
	e := f.zero()
	e.c[0].SetUint64(v)
	e.c[0].Mod(e.c[0], f.base.p)
	return e
}

func (f *Extension) FromBytes(b []byte) (Element, error) {
	if len(b) != f.ElementSize() {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrEncoding, f.ElementSize(), len(b))
	}
	e := f.zero()
	w := f.base.ElementSize()
	// Coefficients are stored highest degree first.
	for i := 0; i < f.deg; i++ {
		chunk := b[i*w : (i+1)*w]
		coeff, err := f.base.FromBytes(chunk)
		if err != nil {
			return nil, fmt.Errorf("field: coefficient %d: %w", f.deg-1-i, err)
		}
		e.c[f.deg-1-i].Set(coeff.(*primeElement).v)
	}
	return e, nil
}

// Random draws the coefficient vector as Degree independent base-field
// samples composed with the defining generator, result = ((r_0*X + r_1)*X + ...).
func (f *Extension) Random(rng io.Reader) (Element, error) {
	if rng == nil {
		rng = rand.Reader
	}
	gen := f.Generator()
	result := f.Zero()
	for i := 0; i < f.deg; i++ {
		coeff, err := f.base.Random(rng)
		if err != nil {
			return nil, err
		}
		result = result.Mul(gen).Add(f.lift(coeff))
	}
	return result, nil
}

// lift embeds a base-field element as a constant.
func (f *Extension) lift(e Element) Element {
	out := f.zero()
	out.c[0].Set(e.(*primeElement).v)
	return out
}

func (f *Extension) Degree() int { return f.deg }

func (f *Extension) ElementSize() int { return f.deg * f.base.ElementSize() }

type extElement struct {
	f *Extension
	c []*big.Int // c[i] multiplies generator^i
}

func (e *extElement) peer(other Element) *extElement {
	o, ok := other.(*extElement)
	if !ok || o.f != e.f {
		panic(ErrMixedFields)
	}
	return o
}

func (e *extElement) Add(other Element) Element {
	o := e.peer(other)
	out := e.f.zero()
	for i := range out.c {
		out.c[i].Add(e.c[i], o.c[i])
		out.c[i].Mod(out.c[i], e.f.base.p)
	}
	return out
}

func (e *extElement) Sub(other Element) Element {
	o := e.peer(other)
	out := e.f.zero()
	for i := range out.c {
		out.c[i].Sub(e.c[i], o.c[i])
		out.c[i].Mod(out.c[i], e.f.base.p)
	}
	return out
}

func (e *extElement) Neg() Element {
	out := e.f.zero()
	for i := range out.c {
		out.c[i].Neg(e.c[i])
		out.c[i].Mod(out.c[i], e.f.base.p)
	}
	return out
}

func (e *extElement) Mul(other Element) Element {
	o := e.peer(other)
	d := e.f.deg
	p := e.f.base.p

	// Schoolbook product, then reduce X^d terms through the modulus.
	prod := make([]*big.Int, 2*d-1)
	for i := range prod {
		prod[i] = new(big.Int)
	}
	tmp := new(big.Int)
	for i := 0; i < d; i++ {
		if e.c[i].Sign() == 0 {
			continue
		}
		for j := 0; j < d; j++ {
			tmp.Mul(e.c[i], o.c[j])
			prod[i+j].Add(prod[i+j], tmp)
		}
	}
	for i := 2*d - 2; i >= d; i-- {
		prod[i].Mod(prod[i], p)
		if prod[i].Sign() == 0 {
			continue
		}
		// X^i = X^(i-d) * X^d = -X^(i-d) * (m_{d-1}X^{d-1}+...+m_0)
		for j := 0; j < d; j++ {
			tmp.Mul(prod[i], e.f.modulus[j])
			prod[i-d+j].Sub(prod[i-d+j], tmp)
		}
		prod[i].SetInt64(0)
	}

	out := e.f.zero()
	for i := 0; i < d; i++ {
		out.c[i].Mod(prod[i], p)
	}
	return out
}

func (e *extElement) Inverse() (Element, error) {
	if e.IsZero() {
		return nil, ErrDivisionByZero
	}
	f := e.f
	p := f.base.p

	// Extended Euclid over Fp[X] between e and the modulus polynomial.
	modPoly := make([]*big.Int, f.deg+1)
	for i, m := range f.modulus {
		modPoly[i] = new(big.Int).Set(m)
	}
	modPoly[f.deg] = big.NewInt(1)

	r0, r1 := modPoly, trimPoly(e.c)
	s0 := []*big.Int{new(big.Int)}
	s1 := []*big.Int{big.NewInt(1)}

	for len(r1) > 1 || r1[0].Sign() != 0 {
		q, rem := polyDivMod(r0, r1, p)
		r0, r1 = r1, rem
		s0, s1 = s1, polySub(s0, polyMul(q, s1, p), p)
	}
	if len(r0) != 1 {
		return nil, fmt.Errorf("field: modulus polynomial is not irreducible")
	}
	lead := new(big.Int).ModInverse(r0[0], p)
	if lead == nil {
		return nil, ErrDivisionByZero
	}

	out := f.zero()
	for i := 0; i < len(s0) && i < f.deg; i++ {
		out.c[i].Mul(s0[i], lead)
		out.c[i].Mod(out.c[i], p)
	}
	return out, nil
}

func (e *extElement) IsZero() bool {
	for _, c := range e.c {
		if c.Sign() != 0 {
			return false
		}
	}
	return true
}

func (e *extElement) Equal(other Element) bool {
	o, ok := other.(*extElement)
	if !ok || o.f != e.f {
		return false
	}
	for i := range e.c {
		if e.c[i].Cmp(o.c[i]) != 0 {
			return false
		}
	}
	return true
}

func (e *extElement) Bytes() []byte {
	w := e.f.base.ElementSize()
	out := make([]byte, e.f.ElementSize())
	for i := 0; i < e.f.deg; i++ {
		e.c[e.f.deg-1-i].FillBytes(out[i*w : (i+1)*w])
	}
	return out
}

func (e *extElement) String() string {
	parts := make([]string, len(e.c))
	for i, c := range e.c {
		parts[len(e.c)-1-i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Polynomial helpers over Fp[X] for the inversion routine. Coefficient
// slices are constant-term first and trimmed of leading zeros.

func trimPoly(c []*big.Int) []*big.Int {
	n := len(c)
	for n > 1 && c[n-1].Sign() == 0 {
		n--
	}
	out := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		out[i] = new(big.Int).Set(c[i])
	}
	return out
}

func polyMul(a, b []*big.Int, p *big.Int) []*big.Int {
	out := make([]*big.Int, len(a)+len(b)-1)
	for i := range out {
		out[i] = new(big.Int)
	}
	tmp := new(big.Int)
	for i := range a {
		for j := range b {
			tmp.Mul(a[i], b[j])
			out[i+j].Add(out[i+j], tmp)
		}
	}
	for i := range out {
		out[i].Mod(out[i], p)
	}
	return trimPoly(out)
}

func polySub(a, b []*big.Int, p *big.Int) []*big.Int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = new(big.Int)
		if i < len(a) {
			out[i].Add(out[i], a[i])
		}
		if i < len(b) {
			out[i].Sub(out[i], b[i])
		}
		out[i].Mod(out[i], p)
	}
	return trimPoly(out)
}

func polyDivMod(num, den []*big.Int, p *big.Int) (quot, rem []*big.Int) {
	rem = trimPoly(num)
	den = trimPoly(den)
	if len(den) == 1 && den[0].Sign() == 0 {
		panic("field: polynomial division by zero")
	}
	quot = make([]*big.Int, len(rem))
	for i := range quot {
		quot[i] = new(big.Int)
	}
	leadInv := new(big.Int).ModInverse(den[len(den)-1], p)
	tmp := new(big.Int)
	for len(rem) >= len(den) && !(len(rem) == 1 && rem[0].Sign() == 0) {
		shift := len(rem) - len(den)
		factor := new(big.Int).Mul(rem[len(rem)-1], leadInv)
		factor.Mod(factor, p)
		quot[shift].Set(factor)
		for i := range den {
			tmp.Mul(factor, den[i])
			rem[shift+i].Sub(rem[shift+i], tmp)
			rem[shift+i].Mod(rem[shift+i], p)
		}
		rem = trimPoly(rem)
	}
	return trimPoly(quot), rem
}

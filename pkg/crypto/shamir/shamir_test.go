package shamir

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thresherlabs/thresher/pkg/crypto/field"
)

func gf(t *testing.T, p int64) *field.Prime {
	t.Helper()
	f, err := field.NewPrime(big.NewInt(p))
	require.NoError(t, err)
	return f
}

func TestInvalidThreshold(t *testing.T) {
	f := gf(t, 31)
	for _, th := range []int{0, -1, -100} {
		_, err := NewElement(f, f.FromUint64(7), th)
		assert.ErrorIs(t, err, ErrInvalidThreshold, "threshold %d", th)
	}
}

func TestThresholdOneIsConstant(t *testing.T) {
	f := gf(t, 31)
	s, err := NewElement(f, f.FromUint64(7), 1)
	require.NoError(t, err)

	for i := uint64(1); i <= 10; i++ {
		share, err := s.CreateShare(Index(i))
		require.NoError(t, err)
		assert.Equal(t, s.SecretBytes(), share)
	}
}

func TestReservedCoordinate(t *testing.T) {
	f := gf(t, 31)
	s, err := NewElement(f, f.FromUint64(7), 2)
	require.NoError(t, err)

	_, err = s.CreateShare(Index(0))
	assert.ErrorIs(t, err, ErrReservedCoordinate)

	// 31 = 0 mod 31 hits the reserved point through modular reduction.
	_, err = s.CreateShare(Index(31))
	assert.ErrorIs(t, err, ErrReservedCoordinate)
}

// Fixed scenario over GF(31): secret 7, threshold 3, five shares at
// x=1..5 from one polynomial. Any 3 reconstruct; any 2 fail.
func TestThreeOfFiveOverGF31(t *testing.T) {
	f := gf(t, 31)
	s, err := NewElement(f, f.FromUint64(7), 3)
	require.NoError(t, err)

	shares := make([]Share, 5)
	for i := 0; i < 5; i++ {
		v, err := s.CreateShare(Index(i + 1))
		require.NoError(t, err)
		shares[i] = Share{ID: Index(i + 1), Value: v}
	}

	secret := s.SecretBytes()

	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			for k := j + 1; k < 5; k++ {
				got, err := s.Recombine([]Share{shares[i], shares[j], shares[k]})
				require.NoError(t, err)
				assert.Equal(t, secret, got, "subset {%d,%d,%d}", i+1, j+1, k+1)
			}
			_, err := s.Recombine([]Share{shares[i], shares[j]})
			assert.ErrorIs(t, err, ErrInsufficientShares, "subset {%d,%d}", i+1, j+1)
		}
	}
}

func TestDuplicateIdentitiesCollapse(t *testing.T) {
	f := gf(t, 31)
	s, err := NewElement(f, f.FromUint64(7), 2)
	require.NoError(t, err)

	v, err := s.CreateShare(Index(3))
	require.NoError(t, err)

	_, err = s.Recombine([]Share{
		{ID: Index(3), Value: v},
		{ID: Index(3), Value: v},
	})
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestRoundTripAcrossFields(t *testing.T) {
	ext, err := field.NewExtension(gf(t, 31), []*big.Int{big.NewInt(-3), big.NewInt(0)})
	require.NoError(t, err)

	fields := map[string]field.Field{
		"prime":     gf(t, 50909),
		"extension": ext,
		"bn254":     field.NewBN254Scalar(),
	}

	for name, f := range fields {
		t.Run(name, func(t *testing.T) {
			for _, threshold := range []int{1, 2, 5} {
				secret, err := f.Random(rand.Reader)
				require.NoError(t, err)

				s, err := NewElement(f, secret, threshold)
				require.NoError(t, err)

				shares := make([]Share, 0, 2*threshold+3)
				for i := 1; i <= 2*threshold+3; i++ {
					v, err := s.CreateShare(Index(i))
					require.NoError(t, err)
					shares = append(shares, Share{ID: Index(i), Value: v})
				}

				got, err := s.Recombine(shares)
				require.NoError(t, err)
				assert.Equal(t, secret.Bytes(), got, "threshold %d", threshold)

				if threshold > 1 {
					_, err = s.Recombine(shares[:threshold-1])
					assert.ErrorIs(t, err, ErrInsufficientShares)
				}
			}
		})
	}
}

func TestRawIdentity(t *testing.T) {
	f := gf(t, 50909)
	s, err := NewElement(f, f.FromUint64(1234), 2)
	require.NoError(t, err)

	x := f.FromUint64(99)
	viaRaw, err := s.CreateShare(Raw(x.Bytes()))
	require.NoError(t, err)
	viaIndex, err := s.CreateShare(Index(99))
	require.NoError(t, err)
	assert.Equal(t, viaIndex, viaRaw)

	_, err = s.CreateShare(Raw(f.Zero().Bytes()))
	assert.ErrorIs(t, err, ErrReservedCoordinate)

	_, err = s.CreateShare(Raw([]byte{1}))
	assert.ErrorIs(t, err, field.ErrEncoding)
}

func TestNewFromBytes(t *testing.T) {
	f := gf(t, 50909)
	secret := f.FromUint64(4242)

	s, err := New(f, secret.Bytes(), 3)
	require.NoError(t, err)
	assert.Equal(t, secret.Bytes(), s.SecretBytes())
	assert.Equal(t, 3, s.Threshold())

	_, err = New(f, []byte{1, 2, 3, 4, 5}, 3)
	assert.Error(t, err)
}

func TestLagrangeBasisInterpolates(t *testing.T) {
	f := gf(t, 50909)

	// p(x) = x^3 + 13x^2 + 11x + 4
	poly := func(x field.Element) field.Element {
		c13 := f.FromUint64(13)
		c11 := f.FromUint64(11)
		c4 := f.FromUint64(4)
		return x.Mul(x).Mul(x).
			Add(c13.Mul(x).Mul(x)).
			Add(c11.Mul(x)).
			Add(c4)
	}

	xs := make([]field.Element, 0, 8)
	ys := make([]field.Element, 0, 8)
	for i := uint64(2); i < 10; i++ {
		x := f.FromUint64(i * 17)
		xs = append(xs, x)
		ys = append(ys, poly(x))
	}

	basis, err := LagrangeBasisAt(f, xs, f.Zero())
	require.NoError(t, err)

	result := f.Zero()
	for i := range xs {
		result = result.Add(ys[i].Mul(basis[i]))
	}
	assert.True(t, result.Equal(poly(f.Zero())))

	_, err = LagrangeBasisAt(f, []field.Element{f.One(), f.One()}, f.Zero())
	assert.Error(t, err)
}

package msp

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thresherlabs/thresher/pkg/crypto/field"
	"github.com/thresherlabs/thresher/pkg/formula"
)

func gf(t *testing.T, p int64) *field.Prime {
	t.Helper()
	f, err := field.NewPrime(big.NewInt(p))
	require.NoError(t, err)
	return f
}

func build(t *testing.T, input string) *MSP {
	t.Helper()
	root, err := formula.Parse(input, true)
	require.NoError(t, err)
	formula.Relabel(root)
	m, err := FromTree(root)
	require.NoError(t, err)
	return m
}

func TestSingleLiteral(t *testing.T) {
	m := build(t, "a")
	require.Len(t, m.Rows, 1)
	assert.Equal(t, 1, m.Cols)
	assert.Equal(t, []int{1}, m.Rows[0].Vector)
	assert.Equal(t, "a", m.Rows[0].Name)
}

func TestAndRowsSumToTarget(t *testing.T) {
	m := build(t, "a & b")
	require.Len(t, m.Rows, 2)
	require.Equal(t, 2, m.Cols)

	// The two rows must sum to (1, 0).
	sum := make([]int, m.Cols)
	for _, r := range m.Rows {
		for i, v := range r.Vector {
			sum[i] += v
		}
	}
	assert.Equal(t, []int{1, 0}, sum)
}

func TestOrDuplicatesVector(t *testing.T) {
	m := build(t, "a | b")
	require.Len(t, m.Rows, 2)
	assert.Equal(t, m.Rows[0].Vector, m.Rows[1].Vector)
	assert.Equal(t, []int{1}, m.Rows[0].Vector)
}

func TestRowsFollowOccurrenceLabels(t *testing.T) {
	m := build(t, "(a & b) | (a & c)")
	require.Len(t, m.Rows, 4)

	assert.Equal(t, "a", m.Rows[0].Name)
	assert.Equal(t, 0, m.Rows[0].Label)
	assert.Equal(t, "a", m.Rows[2].Name)
	assert.Equal(t, 1, m.Rows[2].Label)
}

func TestNonMonotoneRejected(t *testing.T) {
	root, err := formula.Parse("a & ~b", false)
	require.NoError(t, err)
	_, err = FromTree(root)
	assert.ErrorIs(t, err, formula.ErrNonMonotone)
}

func TestMajoritySatisfiability(t *testing.T) {
	f := gf(t, 50909)
	m := build(t, "(a & b) | (b & c) | (a & c)")

	authorized := [][]string{{"a", "b"}, {"b", "c"}, {"a", "c"}, {"a", "b", "c"}}
	for _, names := range authorized {
		assert.True(t, m.Satisfies(f, names), "coalition %v", names)
	}

	unauthorized := [][]string{{"a"}, {"b"}, {"c"}, {}}
	for _, names := range unauthorized {
		assert.False(t, m.Satisfies(f, names), "coalition %v", names)
	}
}

// The reconstruction coefficients must recombine row shares into the
// secret: with shares s_i = M_i · u for a random vector u with u_0 the
// secret, Σ w_i·s_i = u_0.
func TestReconstructionVector(t *testing.T) {
	f := gf(t, 50909)
	m := build(t, "(a & b) | (b & c) | (a & c)")

	// Random sharing vector u with the secret in the first slot.
	u := make([]field.Element, m.Cols)
	u[0] = f.FromUint64(7919)
	for i := 1; i < m.Cols; i++ {
		u[i] = f.FromUint64(uint64(31*i + 5))
	}

	shares := make([]field.Element, len(m.Rows))
	for i, r := range m.Rows {
		acc := f.Zero()
		for j, v := range r.Vector {
			acc = acc.Add(fromInt(f, v).Mul(u[j]))
		}
		shares[i] = acc
	}

	w, err := m.ReconstructionVector(f, []string{"b", "c"})
	require.NoError(t, err)
	require.NotEmpty(t, w)

	got := f.Zero()
	for idx, coeff := range w {
		got = got.Add(coeff.Mul(shares[idx]))
	}
	assert.True(t, got.Equal(u[0]))

	_, err = m.ReconstructionVector(f, []string{"c"})
	assert.ErrorIs(t, err, ErrUnsatisfied)

	_, err = m.ReconstructionVector(f, nil)
	assert.ErrorIs(t, err, ErrUnsatisfied)
}

func TestSpanRecordedOnLiterals(t *testing.T) {
	root, err := formula.Parse("(a & b) | c", true)
	require.NoError(t, err)
	formula.Relabel(root)
	m, err := FromTree(root)
	require.NoError(t, err)

	for i, l := range root.Literals() {
		assert.Equal(t, m.Rows[i].Vector, l.Span)
	}
}

// Package msp converts a monotone formula tree into a monotone span
// program: a matrix with one row per literal occurrence, over which a
// coalition is authorized exactly when the rows it owns span the target
// vector (1,0,...,0). It is an alternative, linear-algebra encoding of
// the same access structure the tree-based sharing uses, and keeps no
// distribution state.
package msp

import (
	"errors"
	"fmt"

	"github.com/thresherlabs/thresher/pkg/crypto/field"
	"github.com/thresherlabs/thresher/pkg/formula"
)

// ErrUnsatisfied is returned when the selected rows do not span the
// target vector.
var ErrUnsatisfied = errors.New("msp: selected attributes do not satisfy the span program")

// Row maps one literal occurrence to its share vector.
type Row struct {
	Name   string
	Label  int
	Vector []int
}

// MSP is the matrix form of a monotone access structure.
type MSP struct {
	Rows []Row
	Cols int
}

// FromTree builds the span program for a labeled monotone tree using
// the standard counter construction: the root starts with vector (1);
// an Or node hands its vector to both children; an And node extends the
// matrix by one column, handing one child the padded vector with a
// trailing 1 and the other the unit vector with a trailing -1. Vectors
// are also recorded on the nodes' Span field.
func FromTree(root *formula.Node) (*MSP, error) {
	m := &MSP{Cols: 1}
	var leaves []*formula.Node

	type item struct {
		node   *formula.Node
		vector []int
	}
	stack := []item{{node: root, vector: []int{1}}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch it.node.Type {
		case formula.Literal:
			leaves = append(leaves, it.node)
			m.Rows = append(m.Rows, Row{
				Name:   it.node.Name,
				Label:  it.node.Label,
				Vector: it.vector,
			})

		case formula.Or:
			it.node.Span = it.vector
			stack = append(stack,
				item{node: it.node.Right, vector: cloneVector(it.vector)},
				item{node: it.node.Left, vector: cloneVector(it.vector)},
			)

		case formula.And:
			it.node.Span = it.vector
			padded := make([]int, m.Cols+1)
			copy(padded, it.vector)
			padded[m.Cols] = 1
			unit := make([]int, m.Cols+1)
			unit[m.Cols] = -1
			m.Cols++
			stack = append(stack,
				item{node: it.node.Right, vector: unit},
				item{node: it.node.Left, vector: padded},
			)

		default:
			return nil, formula.ErrNonMonotone
		}
	}

	// Pad every row to the final width and record the vector on its
	// literal node. Literals were visited depth-first left-to-right,
	// so rows follow the occurrence-label order.
	for i := range m.Rows {
		if len(m.Rows[i].Vector) < m.Cols {
			padded := make([]int, m.Cols)
			copy(padded, m.Rows[i].Vector)
			m.Rows[i].Vector = padded
		}
		leaves[i].Span = m.Rows[i].Vector
	}
	return m, nil
}

func cloneVector(v []int) []int {
	out := make([]int, len(v))
	copy(out, v)
	return out
}

// RowsFor returns the indices of the rows owned by the given names.
func (m *MSP) RowsFor(names []string) []int {
	owned := make(map[string]bool, len(names))
	for _, n := range names {
		owned[n] = true
	}
	var idx []int
	for i, r := range m.Rows {
		if owned[r.Name] {
			idx = append(idx, i)
		}
	}
	return idx
}

// Satisfies reports whether the rows owned by names span the target
// vector over the given field.
func (m *MSP) Satisfies(f field.Field, names []string) bool {
	_, err := m.ReconstructionVector(f, names)
	return err == nil
}

// ReconstructionVector finds coefficients w, keyed by row index, with
// Σ w_i·M_i = (1,0,...,0) over the field, using only rows owned by the
// given names. Rows with zero coefficient are omitted.
func (m *MSP) ReconstructionVector(f field.Field, names []string) (map[int]field.Element, error) {
	rows := m.RowsFor(names)
	if len(rows) == 0 {
		return nil, ErrUnsatisfied
	}

	// Solve M_S^T · w = e1: one equation per matrix column, one
	// unknown per selected row.
	a := make([][]field.Element, m.Cols)
	for c := 0; c < m.Cols; c++ {
		a[c] = make([]field.Element, len(rows)+1)
		for j, ri := range rows {
			a[c][j] = fromInt(f, m.Rows[ri].Vector[c])
		}
		if c == 0 {
			a[c][len(rows)] = f.One()
		} else {
			a[c][len(rows)] = f.Zero()
		}
	}

	w, err := solve(f, a, len(rows))
	if err != nil {
		return nil, err
	}

	out := make(map[int]field.Element)
	for j, ri := range rows {
		if !w[j].IsZero() {
			out[ri] = w[j]
		}
	}
	return out, nil
}

func fromInt(f field.Field, v int) field.Element {
	if v >= 0 {
		return f.FromUint64(uint64(v))
	}
	return f.FromUint64(uint64(-v)).Neg()
}

// solve runs Gaussian elimination on the augmented matrix a (rows of
// n+1 entries, last entry the right-hand side) and returns a solution
// with free variables fixed to zero, or ErrUnsatisfied when the system
// is inconsistent.
func solve(f field.Field, a [][]field.Element, n int) ([]field.Element, error) {
	rows := len(a)
	pivotCol := make([]int, 0, rows)
	r := 0
	for c := 0; c < n && r < rows; c++ {
		pivot := -1
		for i := r; i < rows; i++ {
			if !a[i][c].IsZero() {
				pivot = i
				break
			}
		}
		if pivot == -1 {
			continue
		}
		a[r], a[pivot] = a[pivot], a[r]

		inv, err := a[r][c].Inverse()
		if err != nil {
			return nil, fmt.Errorf("msp: singular pivot: %w", err)
		}
		for j := c; j <= n; j++ {
			a[r][j] = a[r][j].Mul(inv)
		}
		for i := 0; i < rows; i++ {
			if i == r || a[i][c].IsZero() {
				continue
			}
			factor := a[i][c]
			for j := c; j <= n; j++ {
				a[i][j] = a[i][j].Sub(factor.Mul(a[r][j]))
			}
		}
		pivotCol = append(pivotCol, c)
		r++
	}

	// Inconsistent row: all-zero coefficients with a non-zero rhs.
	for i := r; i < rows; i++ {
		if !a[i][n].IsZero() {
			return nil, ErrUnsatisfied
		}
	}

	w := make([]field.Element, n)
	for i := range w {
		w[i] = f.Zero()
	}
	for i, c := range pivotCol {
		w[c] = a[i][n]
	}
	return w, nil
}

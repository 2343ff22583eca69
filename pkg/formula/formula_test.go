package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonotone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "majority",
			input: "(a & b) | (b & c) | (a & c)",
			want:  "((a & b) | (b & c)) | (a & c)",
		},
		{
			name:  "word operators",
			input: "a and (b or c)",
			want:  "a & (b | c)",
		},
		{
			name:  "single literal",
			input: "alice",
			want:  "alice",
		},
		{
			name:    "negation rejected",
			input:   "(a & b) | (b & ~c)",
			wantErr: ErrNonMonotone,
		},
		{
			name:    "not word rejected",
			input:   "a | not b",
			wantErr: ErrNonMonotone,
		},
		{
			name:    "xor rejected in monotone mode",
			input:   "a ^ b",
			wantErr: ErrMalformedFormula,
		},
		{
			name:    "implication rejected in monotone mode",
			input:   "a -> b",
			wantErr: ErrMalformedFormula,
		},
		{
			name:    "missing operand",
			input:   "a &",
			wantErr: ErrMalformedFormula,
		},
		{
			name:    "unbalanced parenthesis",
			input:   "(a & b",
			wantErr: ErrMalformedFormula,
		},
		{
			name:    "empty input",
			input:   "   ",
			wantErr: ErrMalformedFormula,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(tt.input, true)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, root.String())
		})
	}
}

func TestParseNonMonotoneNNF(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "negation kept on literal",
			input: "a & ~b",
			want:  "a & (~b)",
		},
		{
			name:  "de morgan and",
			input: "~(a & b)",
			want:  "(~a) | (~b)",
		},
		{
			name:  "de morgan or",
			input: "~(a | b)",
			want:  "(~a) & (~b)",
		},
		{
			name:  "double negation collapses",
			input: "~~a",
			want:  "a",
		},
		{
			name:  "implication eliminated",
			input: "a -> b",
			want:  "(~a) | b",
		},
		{
			name:  "xor eliminated",
			input: "a ^ b",
			want:  "(a & (~b)) | ((~a) & b)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(tt.input, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, root.String())

			// NNF: Not must only wrap literals.
			var walk func(n *Node)
			walk = func(n *Node) {
				if n == nil {
					return
				}
				if n.Type == Not {
					require.Equal(t, Literal, n.Left.Type)
				}
				walk(n.Left)
				walk(n.Right)
			}
			walk(root)
		})
	}
}

func TestReservedLiteralNames(t *testing.T) {
	for _, name := range []string{"and", "or", "not"} {
		_, err := FromList([]any{name}, true)
		assert.ErrorIs(t, err, ErrMalformedFormula, "name %q", name)
	}
}

func TestFromListShapes(t *testing.T) {
	tests := []struct {
		name    string
		lst     []any
		wantErr error
	}{
		{
			name: "literal singleton",
			lst:  []any{"a"},
		},
		{
			name: "and triple",
			lst:  []any{"&", []any{"a"}, []any{"b"}},
		},
		{
			name:    "and with missing operand",
			lst:     []any{"&", []any{"a"}, nil},
			wantErr: ErrMalformedFormula,
		},
		{
			name:    "two element list",
			lst:     []any{"&", []any{"a"}},
			wantErr: ErrMalformedFormula,
		},
		{
			name:    "unknown operator",
			lst:     []any{"nand", []any{"a"}, []any{"b"}},
			wantErr: ErrMalformedFormula,
		},
		{
			name:    "negation with no operand",
			lst:     []any{"~", nil, nil},
			wantErr: ErrMalformedFormula,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromList(tt.lst, false)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParentBackReferences(t *testing.T) {
	root, err := Parse("(a & b) | c", true)
	require.NoError(t, err)

	assert.Nil(t, root.Parent)
	assert.Same(t, root, root.Left.Parent)
	assert.Same(t, root, root.Right.Parent)
	assert.Same(t, root.Left, root.Left.Left.Parent)
	assert.Same(t, root.Left, root.Left.Right.Parent)
}

func TestRelabelDuplicateLiterals(t *testing.T) {
	root, err := Parse("(a & b) | (a & c) | (a & d)", true)
	require.NoError(t, err)
	Relabel(root)

	labels := make(map[string][]int)
	for _, l := range root.Literals() {
		labels[l.Name] = append(labels[l.Name], l.Label)
	}

	assert.Equal(t, []int{0, 1, 2}, labels["a"])
	assert.Equal(t, []int{0}, labels["b"])
	assert.Equal(t, []int{0}, labels["c"])
	assert.Equal(t, []int{0}, labels["d"])
}

func TestUniverse(t *testing.T) {
	root, err := Parse("(a & b) | (b & c)", true)
	require.NoError(t, err)

	universe := root.Universe()
	assert.Len(t, universe, 3)
	for _, name := range []string{"a", "b", "c"} {
		assert.Contains(t, universe, name)
	}
}

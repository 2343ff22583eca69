package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveField(t *testing.T) {
	f, spec, err := resolveField("", "")
	require.NoError(t, err)
	assert.Equal(t, "bn254", spec.Kind)
	assert.Equal(t, 32, f.ElementSize())

	f, spec, err = resolveField("prime", "50909")
	require.NoError(t, err)
	assert.Equal(t, "50909", spec.Prime)
	assert.Equal(t, 2, f.ElementSize())

	// Prime spec is dropped for non-prime fields.
	_, spec, err = resolveField("bn254", "50909")
	require.NoError(t, err)
	assert.Empty(t, spec.Prime)

	_, _, err = resolveField("prime", "four")
	assert.Error(t, err)
	_, _, err = resolveField("gf256", "")
	assert.Error(t, err)
}

func TestSplitNames(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitNames("a, b ,c"))
	assert.Equal(t, []string{"alice"}, splitNames("alice,"))
	assert.Nil(t, splitNames(" , "))
}

func TestJSONFileRoundTrip(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	path := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, writeJSONFile(path, payload{Name: "x", Count: 3}))

	var got payload
	require.NoError(t, readJSONFile(path, &got))
	assert.Equal(t, payload{Name: "x", Count: 3}, got)

	require.Error(t, readJSONFile(filepath.Join(t.TempDir(), "missing.json"), &got))
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, sortedKeys(map[string]int{"c": 1, "a": 2, "b": 3}))
	assert.Equal(t, []int{1, 2, 5}, sortedIntKeys(map[int]string{5: "x", 1: "y", 2: "z"}))
}

func TestParseScalar(t *testing.T) {
	x, err := parseScalar(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), x.Uint64())

	_, err = parseScalar("not-a-number")
	assert.Error(t, err)
}

func TestParsePolynomial(t *testing.T) {
	poly, err := parsePolynomial("4, 0, 2, 1")
	require.NoError(t, err)
	assert.Len(t, poly, 4)
	assert.True(t, poly[0].IsUint64())
	assert.Equal(t, uint64(4), poly[0].Uint64())

	_, err = parsePolynomial("1,two,3")
	assert.Error(t, err)
}

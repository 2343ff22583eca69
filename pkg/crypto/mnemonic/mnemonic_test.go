package mnemonic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndRoundTrip(t *testing.T) {
	tests := []struct {
		bits  int
		words int
	}{
		{128, 12},
		{192, 18},
		{256, 24},
	}
	for _, tt := range tests {
		m, err := New(tt.bits)
		require.NoError(t, err)
		assert.Equal(t, tt.words, m.WordCount())

		parsed, err := FromWords(m.Words())
		require.NoError(t, err)
		assert.Equal(t, m.Words(), parsed.Words())

		entropy, err := m.Entropy()
		require.NoError(t, err)
		assert.Len(t, entropy, tt.bits/8)
	}
}

func TestNewRejectsBadSizes(t *testing.T) {
	for _, bits := range []int{0, 96, 130, 288} {
		_, err := New(bits)
		assert.Error(t, err, "bits %d", bits)
	}
}

func TestFromEntropyRoundTrip(t *testing.T) {
	entropy := make([]byte, 32)
	for i := range entropy {
		entropy[i] = byte(i)
	}

	m, err := FromEntropy(entropy)
	require.NoError(t, err)
	assert.Equal(t, 24, m.WordCount())

	back, err := m.Entropy()
	require.NoError(t, err)
	assert.Equal(t, entropy, back)

	_, err = FromEntropy(make([]byte, 17))
	assert.Error(t, err)
	_, err = FromEntropy(nil)
	assert.Error(t, err)
}

func TestFromWordsRejectsInvalid(t *testing.T) {
	_, err := FromWords("not a real phrase at all")
	assert.Error(t, err)

	_, err = FromWords("")
	assert.Error(t, err)
}

func TestSeedIsDeterministic(t *testing.T) {
	m, err := New(128)
	require.NoError(t, err)

	assert.Equal(t, m.Seed("pass"), m.Seed("pass"))
	assert.NotEqual(t, m.Seed("pass"), m.Seed("other"))
	assert.Len(t, m.Seed(""), 64)
}

func TestChecksum(t *testing.T) {
	m, err := New(128)
	require.NoError(t, err)

	sum, err := Checksum(m.Words())
	require.NoError(t, err)
	assert.Len(t, sum, 8)

	_, err = Checksum("bogus phrase")
	assert.Error(t, err)
}

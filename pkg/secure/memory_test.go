package secure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {
	b := NewBuffer([]byte("secret"))
	assert.Equal(t, []byte("secret"), b.Bytes())
	assert.Equal(t, 6, b.Len())

	// Bytes returns a copy; mutating it leaves the buffer intact.
	got := b.Bytes()
	got[0] = 'x'
	assert.Equal(t, []byte("secret"), b.Bytes())

	b.Set([]byte("longer secret"))
	assert.Equal(t, []byte("longer secret"), b.Bytes())

	b.Destroy()
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Bytes())
}

func TestZero(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	Zero(data)
	assert.Equal(t, []byte{0, 0, 0, 0}, data)
}

func TestRandomOverwrite(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	require.NoError(t, RandomOverwrite(data))
	assert.Equal(t, []byte{0, 0, 0, 0}, data)
}

func TestConstantTimeCompare(t *testing.T) {
	assert.True(t, ConstantTimeCompare([]byte("abc"), []byte("abc")))
	assert.False(t, ConstantTimeCompare([]byte("abc"), []byte("abd")))
	assert.False(t, ConstantTimeCompare([]byte("abc"), []byte("abcd")))
	assert.True(t, ConstantTimeCompare(nil, []byte{}))
}

func TestRandom(t *testing.T) {
	a, err := Random(32)
	require.NoError(t, err)
	b, err := Random(32)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

package bls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thresherlabs/thresher/pkg/crypto/shamir"
)

func TestSignVerify(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	message := []byte("this is a test of wit and not of brawn")
	sig, err := key.Sign(message)
	require.NoError(t, err)

	assert.NoError(t, Verify(&key.PublicKey, message, sig))
	assert.ErrorIs(t, Verify(&key.PublicKey, []byte("another message"), sig), ErrInvalidSignature)

	other, err := GenerateKey()
	require.NoError(t, err)
	assert.ErrorIs(t, Verify(&other.PublicKey, message, sig), ErrInvalidSignature)
}

func TestThresholdSigning(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	const (
		threshold = 3
		parts     = 5
	)
	shares, err := SplitKey(key, threshold, parts)
	require.NoError(t, err)
	require.Len(t, shares, parts)

	message := []byte("threshold signed")
	partials := make([]PartialSignature, parts)
	for i, share := range shares {
		partials[i], err = PartialSign(share, message)
		require.NoError(t, err)
	}

	// Any 3 of 5 partials combine into a signature that verifies under
	// the group key.
	subsets := [][]int{{0, 1, 2}, {0, 2, 4}, {1, 3, 4}, {2, 3, 4}}
	for _, idx := range subsets {
		subset := make([]PartialSignature, 0, len(idx))
		for _, i := range idx {
			subset = append(subset, partials[i])
		}
		sig, err := Combine(subset, threshold)
		require.NoError(t, err)
		assert.NoError(t, Verify(&key.PublicKey, message, sig), "subset %v", idx)
	}

	_, err = Combine(partials[:threshold-1], threshold)
	assert.ErrorIs(t, err, shamir.ErrInsufficientShares)

	_, err = Combine(nil, threshold)
	assert.ErrorIs(t, err, ErrNoPartials)
}

func TestCombineDeduplicatesPartials(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	shares, err := SplitKey(key, 2, 3)
	require.NoError(t, err)

	message := []byte("dedup")
	p0, err := PartialSign(shares[0], message)
	require.NoError(t, err)

	_, err = Combine([]PartialSignature{p0, p0, p0}, 2)
	assert.ErrorIs(t, err, shamir.ErrInsufficientShares)
}

func TestSplitKeyValidation(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	_, err = SplitKey(key, 5, 3)
	assert.Error(t, err)

	_, err = SplitKey(key, 0, 3)
	assert.ErrorIs(t, err, shamir.ErrInvalidThreshold)
}

func TestKeySerialization(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	restored, err := PrivateKeyFromBytes(key.Bytes())
	require.NoError(t, err)
	assert.True(t, restored.P.Equal(&key.P))

	message := []byte("round trip")
	sig, err := restored.Sign(message)
	require.NoError(t, err)
	assert.NoError(t, Verify(&key.PublicKey, message, sig))

	_, err = PrivateKeyFromBytes([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestKeyFromSeed(t *testing.T) {
	seed := make([]byte, 64)
	for i := range seed {
		seed[i] = byte(i + 1)
	}

	a, err := KeyFromSeed(seed)
	require.NoError(t, err)
	b, err := KeyFromSeed(seed)
	require.NoError(t, err)
	assert.True(t, a.P.Equal(&b.P))
	assert.Equal(t, a.Bytes(), b.Bytes())

	_, err = KeyFromSeed(seed[:16])
	assert.Error(t, err)
}

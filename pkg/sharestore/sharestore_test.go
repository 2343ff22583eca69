package sharestore

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thresherlabs/thresher/pkg/crypto/benaloh"
)

const majority = "(a & b) | (b & c) | (a & c)"

func newBundle(t *testing.T, name string, tags ...string) *Bundle {
	t.Helper()

	spec := FieldSpec{Kind: "prime", Prime: "50909"}
	f, err := spec.Field()
	require.NoError(t, err)

	secret, err := f.Random(rand.Reader)
	require.NoError(t, err)

	scheme, err := benaloh.New(secret.Bytes(), majority, f)
	require.NoError(t, err)

	parties := make(map[string]map[int][]byte)
	for _, party := range scheme.Universe() {
		shares, err := scheme.CreateShare(party)
		require.NoError(t, err)
		parties[party] = shares
	}

	return &Bundle{
		Name:    name,
		Formula: majority,
		Field:   spec,
		Tags:    tags,
		Parties: parties,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	bundle := newBundle(t, "prod keys", "prod")
	require.NoError(t, store.Add(bundle))
	require.NotEmpty(t, bundle.ID)

	got, err := store.Get(bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, bundle.Formula, got.Formula)

	// A fresh store instance reads the same bundle back from disk.
	reopened, err := Open(dir)
	require.NoError(t, err)
	got, err = reopened.Get(bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, bundle.Parties, got.Parties)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEncryptedStore(t *testing.T) {
	dir := t.TempDir()
	passphrase := []byte("open sesame")

	store, err := Open(dir, WithPassphrase(passphrase))
	require.NoError(t, err)

	bundle := newBundle(t, "sealed")
	require.NoError(t, store.Add(bundle))

	// Correct passphrase loads the bundle.
	reopened, err := Open(dir, WithPassphrase(passphrase))
	require.NoError(t, err)
	_, err = reopened.Get(bundle.ID)
	require.NoError(t, err)

	// Wrong passphrase silently skips undecryptable files.
	locked, err := Open(dir, WithPassphrase([]byte("wrong")))
	require.NoError(t, err)
	_, err = locked.Get(bundle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndSearch(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Add(newBundle(t, "alpha", "prod", "eu")))
	require.NoError(t, store.Add(newBundle(t, "beta", "staging")))

	assert.Len(t, store.List(nil), 2)
	assert.Len(t, store.List([]string{"prod"}), 1)
	assert.Len(t, store.List([]string{"prod", "eu"}), 1)
	assert.Empty(t, store.List([]string{"prod", "us"}))

	results := store.Search("alpha")
	require.Len(t, results, 1)
	assert.Equal(t, "alpha", results[0].Name)
	assert.Len(t, store.Search("a & b"), 2)
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	bundle := newBundle(t, "doomed")
	require.NoError(t, store.Add(bundle))
	require.NoError(t, store.Delete(bundle.ID))

	_, err = store.Get(bundle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(bundle.ID), ErrNotFound)

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.Empty(t, reopened.List(nil))
}

func TestBundleRecoverable(t *testing.T) {
	bundle := newBundle(t, "majority")

	tests := []struct {
		coalition []string
		want      bool
	}{
		{[]string{"a", "b"}, true},
		{[]string{"b", "c"}, true},
		{[]string{"a", "b", "c"}, true},
		{[]string{"a"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		got, err := bundle.Recoverable(tt.coalition)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "coalition %v", tt.coalition)
	}
}

func TestBundleCombinesWithStoredShares(t *testing.T) {
	spec := FieldSpec{Kind: "prime", Prime: "50909"}
	f, err := spec.Field()
	require.NoError(t, err)

	secret := []byte{0x01, 0x2a}
	scheme, err := benaloh.New(secret, majority, f)
	require.NoError(t, err)

	parties := make(map[string]map[int][]byte)
	for _, party := range scheme.Universe() {
		shares, err := scheme.CreateShare(party)
		require.NoError(t, err)
		parties[party] = shares
	}
	bundle := &Bundle{Name: "combined", Formula: majority, Field: spec, Parties: parties}

	got, err := benaloh.Recombine(bundle.Formula, f, bundle.SharesFor([]string{"a", "c"}))
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestFieldSpec(t *testing.T) {
	f, err := FieldSpec{Kind: "bn254"}.Field()
	require.NoError(t, err)
	assert.Equal(t, 32, f.ElementSize())

	_, err = FieldSpec{Kind: "prime", Prime: "not a number"}.Field()
	assert.Error(t, err)

	_, err = FieldSpec{Kind: "gf256"}.Field()
	assert.Error(t, err)
}

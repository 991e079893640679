package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// memStore is a trivial in-memory Store used to test the interface
// contract without a real S3 bucket.
type memStore struct {
	data map[Digest][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[Digest][]byte)}
}

func (m *memStore) Get(ctx context.Context, key Digest) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Put(ctx context.Context, key Digest, program []byte) error {
	m.data[key] = program
	return nil
}

func TestDigestIsDeterministic(t *testing.T) {
	a := NewDigest([]byte{1, 2, 3}, 2, 1)
	b := NewDigest([]byte{1, 2, 3}, 2, 1)
	require.Equal(t, a, b)
	require.Equal(t, a.String(), b.String())
}

func TestDigestVariesWithInputs(t *testing.T) {
	base := NewDigest([]byte{1, 2, 3}, 2, 1)
	require.NotEqual(t, base, NewDigest([]byte{1, 2, 4}, 2, 1))
	require.NotEqual(t, base, NewDigest([]byte{1, 2, 3}, 3, 1))
	require.NotEqual(t, base, NewDigest([]byte{1, 2, 3}, 2, 2))
}

func TestStoreRoundTrip(t *testing.T) {
	var s Store = newMemStore()
	ctx := context.Background()
	key := NewDigest([]byte{9, 9}, 0, 0)

	_, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Put(ctx, key, []byte("payload")))

	got, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), got)
}

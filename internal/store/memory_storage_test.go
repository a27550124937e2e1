package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	TokenID   string `mapstructure:"token_id"`
	RevokedAt int64  `mapstructure:"revoked_at"`
}

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	in := testRecord{TokenID: "abc", RevokedAt: 1700000000}
	require.NoError(t, storage.Set(ctx, "k1", in, 0))

	var out testRecord
	require.NoError(t, storage.Get(ctx, "k1", &out))
	assert.Equal(t, in, out)
}

func TestMemoryStorageMissingKey(t *testing.T) {
	storage := NewMemoryStorage()

	var out testRecord
	assert.ErrorIs(t, storage.Get(context.Background(), "nope", &out), ErrNotFound)
}

func TestMemoryStorageExpiry(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	require.NoError(t, storage.Set(ctx, "k1", testRecord{TokenID: "abc"}, time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	var out testRecord
	assert.ErrorIs(t, storage.Get(ctx, "k1", &out), ErrNotFound)
}

func TestMemoryStorageDelete(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	require.NoError(t, storage.Set(ctx, "k1", testRecord{TokenID: "abc"}, 0))
	require.NoError(t, storage.Delete(ctx, "k1"))

	var out testRecord
	assert.ErrorIs(t, storage.Get(ctx, "k1", &out), ErrNotFound)
	assert.ErrorIs(t, storage.Delete(ctx, "k1"), ErrNotFound)
}

// The typed store prefixes keys, so two stores over one storage never
// collide as long as their prefixes differ.
func TestStorePrefixIsolation(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	first := New[testRecord](storage, "a:")
	second := New[testRecord](storage, "b:")

	require.NoError(t, first.Set(ctx, "k", testRecord{TokenID: "one"}, 0))

	_, err := second.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := first.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "one", got.TokenID)
}

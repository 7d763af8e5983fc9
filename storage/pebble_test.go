package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) *PebbleKV {
	kv, err := NewPebbleKV(DefaultPebbleConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestPebbleKVSetGet(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, []byte("k1"), []byte("v1")))

	got, err := kv.Get(ctx, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)
}

func TestPebbleKVGetMissing(t *testing.T) {
	kv := newTestKV(t)

	_, err := kv.Get(context.Background(), []byte("missing"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPebbleKVDelete(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, []byte("k1"), []byte("v1")))
	require.NoError(t, kv.Delete(ctx, []byte("k1")))

	_, err := kv.Get(ctx, []byte("k1"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPebbleKVScanPrefix(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, []byte("table/a"), []byte("1")))
	require.NoError(t, kv.Set(ctx, []byte("table/b"), []byte("2")))
	require.NoError(t, kv.Set(ctx, []byte("other/c"), []byte("3")))

	var keys []string
	err := kv.Scan(ctx, []byte("table/"), func(key, value []byte) bool {
		keys = append(keys, string(key))
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"table/a", "table/b"}, keys)
}

func TestPebbleKVScanStopsEarly(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, []byte("k/a"), []byte("1")))
	require.NoError(t, kv.Set(ctx, []byte("k/b"), []byte("2")))

	count := 0
	err := kv.Scan(ctx, []byte("k/"), func(key, value []byte) bool {
		count++
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPebbleKVClosed(t *testing.T) {
	kv := newTestKV(t)
	require.NoError(t, kv.Close())

	_, err := kv.Get(context.Background(), []byte("k"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, kv.Set(context.Background(), []byte("k"), nil), ErrClosed)

	// Closing twice is fine
	assert.NoError(t, kv.Close())
}

func TestPrefixUpperBound(t *testing.T) {
	assert.Equal(t, []byte("table0"), prefixUpperBound([]byte("table/")))
	assert.Equal(t, []byte{0x01}, prefixUpperBound([]byte{0x00}))
	assert.Nil(t, prefixUpperBound([]byte{0xff}))
}

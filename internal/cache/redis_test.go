package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, lifetime time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), RedisOptions{
		Address:  mr.Addr(),
		Lifetime: lifetime,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestRedisStore_SetGetWithLifetime(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "session:a:weather_1", []byte(`{"t":1}`)))

	val, ok, err := store.Get(ctx, "session:a:weather_1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"t":1}`, string(val))

	assert.True(t, mr.Exists(redisKeyPrefix+"session:a:weather_1"))
	assert.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+"session:a:weather_1"))

	mr.FastForward(time.Hour)
	_, ok, err = store.Get(ctx, "session:a:weather_1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_KeysAndDelete(t *testing.T) {
	store, _ := newTestRedisStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "session:a:weather_1", []byte("1")))
	require.NoError(t, store.Set(ctx, "session:a:weather_2", []byte("2")))
	require.NoError(t, store.Set(ctx, "session:b:weather_1", []byte("3")))

	keys, err := store.Keys(ctx, "session:a:")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"session:a:weather_1", "session:a:weather_2"}, keys)

	require.NoError(t, store.Delete(ctx, keys...))
	keys, err = store.Keys(ctx, "session:")
	require.NoError(t, err)
	assert.Equal(t, []string{"session:b:weather_1"}, keys)
}

func TestRedisStore_KeysPrefixIsLiteral(t *testing.T) {
	store, _ := newTestRedisStore(t, 0)
	ctx := context.Background()

	for _, key := range []string{
		"session:a*:weather_1",
		"session:ab:weather_1",
		"session:[a]:weather_1",
		"session:a?:weather_1",
		`session:a\b:weather_1`,
	} {
		require.NoError(t, store.Set(ctx, key, []byte("1")))
	}

	keys, err := store.Keys(ctx, "session:a*")
	require.NoError(t, err)
	assert.Equal(t, []string{"session:a*:weather_1"}, keys)

	keys, err = store.Keys(ctx, "session:[a]")
	require.NoError(t, err)
	assert.Equal(t, []string{"session:[a]:weather_1"}, keys)

	keys, err = store.Keys(ctx, "session:a?")
	require.NoError(t, err)
	assert.Equal(t, []string{"session:a?:weather_1"}, keys)

	keys, err = store.Keys(ctx, `session:a\b`)
	require.NoError(t, err)
	assert.Equal(t, []string{`session:a\b:weather_1`}, keys)
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `session:1:weather_`, escapeGlob("session:1:weather_"))
	assert.Equal(t, `a\*b\?c\[d\]e\\f`, escapeGlob(`a*b?c[d]e\f`))
}

func TestRedisStore_FailuresAreCacheFailures(t *testing.T) {
	store, mr := newTestRedisStore(t, 0)
	mr.Close()

	_, _, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCacheFailure)

	err = store.Set(context.Background(), "k", []byte("v"))
	assert.ErrorIs(t, err, ErrCacheFailure)
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisOptions{Address: "127.0.0.1:1"})
	assert.Error(t, err)
}

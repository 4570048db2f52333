package db

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/seamlessads/internal/models"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestRedisStoreJSONRoundTrip(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()

	in := models.CartSummary{ID: "c1", ItemCount: 2, Total: 9.98}
	require.NoError(t, store.SetJSON(ctx, "cart:c1", in, time.Minute))
	assert.True(t, mr.Exists("cart:c1"))

	var out models.CartSummary
	require.NoError(t, store.GetJSON(ctx, "cart:c1", &out))
	assert.Equal(t, in, out)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, store.GetJSON(ctx, "cart:c1", &out), models.ErrNotFound)
}

func TestRedisStoreDelete(t *testing.T) {
	_, store := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.SetJSON(ctx, "k", "v", 0))
	existed, err := store.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = store.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestRedisStoreNil(t *testing.T) {
	var store *RedisStore
	assert.ErrorIs(t, store.SetJSON(context.Background(), "k", 1, 0), ErrNilRedisStore)
	assert.ErrorIs(t, store.GetJSON(context.Background(), "k", new(int)), ErrNilRedisStore)
	_, err := store.Delete(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNilRedisStore)
}

func TestRedisStoreDecodeError(t *testing.T) {
	mr, store := setupTestRedis(t)
	require.NoError(t, mr.Set("bad", "{not json"))
	var out models.CartSummary
	err := store.GetJSON(context.Background(), "bad", &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}

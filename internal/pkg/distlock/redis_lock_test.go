package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisLock_MutualExclusion(t *testing.T) {
	_, client := setupRedis(t)
	ctx := context.Background()

	a := NewRedisLock(client, "catalog_import:job:1", time.Minute)
	b := NewRedisLock(client, "catalog_import:job:1", time.Minute)

	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not acquire")

	require.NoError(t, b.Release(ctx))
	ok, _ = b.Acquire(ctx)
	assert.False(t, ok, "release by non-owner must not free the lock")

	require.NoError(t, a.Release(ctx))
	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_ExpiryAndExtend(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()

	l := NewRedisLock(client, "job", 10*time.Second)
	ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Extend(ctx, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL(l.Key()))

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, l.Extend(ctx, time.Minute), ErrNotOwner)
}

func TestRedisLock_KeepAliveStops(t *testing.T) {
	mr, client := setupRedis(t)
	l := NewRedisLock(client, "job", 40*time.Millisecond)
	ok, err := l.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	stop := l.KeepAlive(context.Background())
	time.Sleep(60 * time.Millisecond)
	stop()

	assert.True(t, mr.Exists(l.Key()))
	assert.Greater(t, mr.TTL(l.Key()), time.Duration(0))

	var _ DistLock = l
}

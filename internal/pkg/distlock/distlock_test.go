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

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisLock_MutualExclusion(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	first := NewRedisLock(client, "scan", time.Minute)
	second := NewRedisLock(client, "scan", time.Minute)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "held lock must not be acquirable")

	require.NoError(t, first.Release(ctx))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "released lock must be acquirable")
}

func TestRedisLock_ReleaseOnlyOwn(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	holder := NewRedisLock(client, "scan", time.Minute)
	intruder := NewRedisLock(client, "scan", time.Minute)

	ok, err := holder.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// A non-owner release must leave the lock in place.
	require.NoError(t, intruder.Release(ctx))

	ok, err = intruder.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewLock_PrefersRedis(t *testing.T) {
	client := setupRedis(t)

	_, isRedis := NewLock(client, nil, "scan", time.Minute).(*RedisLock)
	assert.True(t, isRedis)

	_, isPG := NewLock(nil, nil, "scan", time.Minute).(*PGAdvisoryLock)
	assert.True(t, isPG)
}

package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrguard-lab/internal/config"
	"qrguard-lab/pkg/logger"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewFromClient(client, "test:", logger.NewNop()), mr
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	host := mr.Host()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	c, err := NewRedis(context.Background(), config.RedisConfig{Host: host, Port: port, KeyPrefix: "q:"}, logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.Ping(context.Background()))
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host := mr.Host()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	mr.Close()

	_, err = NewRedis(context.Background(), config.RedisConfig{Host: host, Port: port}, logger.NewNop())
	assert.Error(t, err)
}

func TestRedisCache_JSONRoundTripUsesPrefix(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	type verdict struct {
		Score float64 `json:"score"`
	}

	require.NoError(t, c.SetJSON(ctx, "assessment:abc", verdict{Score: 0.25}, time.Minute))
	assert.True(t, mr.Exists("test:assessment:abc"))
	assert.Equal(t, time.Minute, mr.TTL("test:assessment:abc"))

	var got verdict
	require.NoError(t, c.GetJSON(ctx, "assessment:abc", &got))
	assert.Equal(t, 0.25, got.Score)

	mr.FastForward(2 * time.Minute)
	err := c.GetJSON(ctx, "assessment:abc", &got)
	assert.True(t, IsMiss(err))
}

func TestRedisCache_MissVersusFailure(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var dest map[string]interface{}
	err := c.GetJSON(ctx, "never-set", &dest)
	require.Error(t, err)
	assert.True(t, IsMiss(err))

	mr.Set("test:garbled", "{not json")
	err = c.GetJSON(ctx, "garbled", &dest)
	require.Error(t, err)
	assert.False(t, IsMiss(err))

	mr.Close()
	err = c.GetJSON(ctx, "never-set", &dest)
	require.Error(t, err)
	assert.False(t, IsMiss(err))
}

func TestRedisCache_CheckRateLimit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		allowed, remaining, reset, err := c.CheckRateLimit(ctx, "client-a", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 3-i, remaining)
		assert.True(t, reset.After(time.Now().Add(-time.Second)))
	}

	allowed, remaining, _, err := c.CheckRateLimit(ctx, "client-a", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, int64(0), remaining)

	// other clients have their own window
	allowed, _, _, err = c.CheckRateLimit(ctx, "client-b", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"go.uber.org/zap/zaptest"

	"github.com/flarecast/flarecast-backend/internal/infrastructure/config"
	"github.com/flarecast/flarecast-backend/internal/testutil/containers"
)

func TestRedisRateLimiter_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx := context.Background()
	rc, err := containers.NewRedisContainer(ctx)
	testcontainers.CleanupContainer(t, rc)
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, config.RedisConfig{URL: rc.Addr, PoolSize: 5, DialTimeout: 5 * time.Second}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRedisRateLimiter(client, zaptest.NewLogger(t))
	key := "user:integration"

	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, key, 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := rl.Allow(ctx, key, 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	remaining, err := rl.Remaining(ctx, key, 2, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	require.NoError(t, rl.Reset(ctx, key))
	ok, err = rl.Allow(ctx, key, 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

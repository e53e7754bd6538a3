//go:build integration

package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskbot/internal/config"
	redisInfra "github.com/fastygo/taskbot/internal/infrastructure/redis"
	redisRepo "github.com/fastygo/taskbot/repository/redis"
)

func newClient(t *testing.T) *redislib.Client {
	t.Helper()
	url := os.Getenv("TASKBOT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("TASKBOT_TEST_REDIS_URL not set")
	}
	client, err := redisInfra.NewClient(context.Background(), config.RedisConfig{URL: url}, "taskbot-test", nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	limiter := redisRepo.NewRateLimiter(newClient(t), 3, 500*time.Millisecond)
	ctx := context.Background()
	key := "guild:" + uuid.NewString()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}
	ok, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := limiter.Allow(ctx, "guild:"+uuid.NewString())
	require.NoError(t, err)
	assert.True(t, other, "keys are independent")

	time.Sleep(600 * time.Millisecond)
	ok, err = limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok, "window elapsed")
}

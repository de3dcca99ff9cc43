package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachable returns a client whose every command fails fast.
func unreachable(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRatingsKey(t *testing.T) {
	assert.Equal(t, "ratings:2015", RatingsKey(2015))
}

func TestNewRedisCacheBadURL(t *testing.T) {
	_, err := NewRedisCache("not-a-url", time.Minute)
	assert.Error(t, err)
}

func TestRedisCacheErrors(t *testing.T) {
	ctx := context.Background()
	rc := NewRedisCacheFromClient(unreachable(t), time.Minute)

	_, hit, err := rc.GetRatings(ctx, 2015)
	require.Error(t, err)
	assert.False(t, hit)

	assert.Error(t, rc.SetRatings(ctx, 2015, nil))
	assert.Error(t, rc.HealthCheck(ctx))

	// No keys means no round trip.
	assert.NoError(t, rc.InvalidateSeasons(ctx))
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/drivescore/internal/store"
)

// RedisCache caches per-season team ratings
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisCacheFromClient(client, ttl), nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// RatingsKey is the cache key holding a season's ratings.
func RatingsKey(season int) string {
	return fmt.Sprintf("ratings:%d", season)
}

// GetRatings returns the cached ratings for a season. A miss returns
// (nil, false, nil).
func (rc *RedisCache) GetRatings(ctx context.Context, season int) ([]store.TeamRating, bool, error) {
	data, err := rc.client.Get(ctx, RatingsKey(season)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var ratings []store.TeamRating
	if err := json.Unmarshal(data, &ratings); err != nil {
		return nil, false, fmt.Errorf("decoding cached ratings for %d: %w", season, err)
	}
	return ratings, true, nil
}

// SetRatings caches a season's ratings with the configured TTL
func (rc *RedisCache) SetRatings(ctx context.Context, season int, ratings []store.TeamRating) error {
	data, err := json.Marshal(ratings)
	if err != nil {
		return err
	}
	return rc.client.Set(ctx, RatingsKey(season), data, rc.ttl).Err()
}

// InvalidateSeasons removes cached ratings for the given seasons
func (rc *RedisCache) InvalidateSeasons(ctx context.Context, seasons ...int) error {
	if len(seasons) == 0 {
		return nil
	}
	keys := make([]string, len(seasons))
	for i, season := range seasons {
		keys[i] = RatingsKey(season)
	}
	return rc.client.Del(ctx, keys...).Err()
}

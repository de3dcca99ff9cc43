package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/drivescore/internal/store"
)

// DefaultStream receives rating updates when no stream is configured.
const DefaultStream = "ratings.nfl"

// RedisPublisher publishes rating updates to a Redis stream
type RedisPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisPublisher creates a new Redis stream publisher
func NewRedisPublisher(redisURL, stream string) (*RedisPublisher, error) {
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

	return NewRedisStreamPublisher(client, stream), nil
}

// NewRedisStreamPublisher creates a publisher from an existing client
func NewRedisStreamPublisher(client *redis.Client, stream string) *RedisPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisPublisher{
		client: client,
		stream: stream,
	}
}

// Close closes the Redis connection
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}

// Stream returns the stream name
func (rp *RedisPublisher) Stream() string {
	return rp.stream
}

// PublishRatings publishes one season's ratings from a scoring run
func (rp *RedisPublisher) PublishRatings(ctx context.Context, runID string, season int, ratings []store.TeamRating) error {
	data, err := json.Marshal(ratings)
	if err != nil {
		return err
	}

	err = rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: rp.stream,
		Values: map[string]interface{}{
			"type":      "ratings",
			"run_id":    runID,
			"season":    season,
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publishing %d ratings to %s: %w", season, rp.stream, err)
	}
	return nil
}

// PublishRun publishes the outcome of a scoring run
func (rp *RedisPublisher) PublishRun(ctx context.Context, run *store.ScoringRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: rp.stream,
		Values: map[string]interface{}{
			"type":      "run",
			"run_id":    run.RunID,
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

package middleware

import (
	"context"
	"encoding/json"
	"slotter/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "slotter:idempotency:"

// RedisIdempotencyStore shares replayable responses between instances. Entries
// expire through Redis TTLs, so there is nothing to clean up.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl, log: log}
}

// Get treats an unreachable Redis as a miss; the request is then processed normally.
func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("Failed to read idempotency key", "error", err)
		}
		return nil, false
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		s.log.Warn("Discarding corrupt idempotency entry", "error", err)
		return nil, false
	}
	return &cached, true
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) {
	response.CreatedAt = time.Now()
	data, err := json.Marshal(response)
	if err != nil {
		s.log.Warn("Failed to encode idempotent response", "error", err)
		return
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, data, s.ttl).Err(); err != nil {
		s.log.Warn("Failed to store idempotency key", "error", err)
	}
}

func (s *RedisIdempotencyStore) Stop() {}

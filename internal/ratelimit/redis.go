package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pitwall:rate:"

// RedisStore implements Store on a Redis sorted set per client key, scored
// by request timestamp.
type RedisStore struct {
	client *redis.Client
}

// OpenRedis connects to the rate-limit backend and verifies it responds.
func OpenRedis(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping rate limit backend: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) CountInWindow(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error) {
	redisKey := keyPrefix + key
	nowNanos := now.UnixNano()
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", cutoff)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowNanos), Member: strconv.FormatInt(nowNanos, 10)})
	card := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("count window for %s: %w", key, err)
	}
	return card.Val(), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

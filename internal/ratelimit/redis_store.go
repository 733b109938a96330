package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "ratelimit:"

// RedisStore is a BucketStore backed by a shared redis instance. It also
// implements AtomicIncrementer, so the window survives across processes:
// every instance increments the same expiring counter.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStoreConfig contains options for creating a new RedisStore.
type NewRedisStoreConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisStore connects to redis and returns a RedisStore.
func NewRedisStore(cfg NewRedisStoreConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		return nil, err
	}
	return &RedisStore{client: rdb}, nil
}

// Incr atomically increments the counter for key. The first increment in a
// window arms the key's TTL; the reported expiry comes from the remaining TTL,
// so every process sees the same window end.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	rkey := redisKeyPrefix + key

	count, err := s.client.Incr(ctx, rkey).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	if count == 1 {
		if err := s.client.PExpire(ctx, rkey, window).Err(); err != nil {
			return 0, time.Time{}, err
		}
		return count, time.Now().Add(window), nil
	}

	ttl, err := s.client.PTTL(ctx, rkey).Result()
	if err != nil || ttl < 0 {
		// Key without a TTL would never reset; re-arm it.
		s.client.PExpire(ctx, rkey, window)
		ttl = window
	}
	return count, time.Now().Add(ttl), nil
}

// Get is part of BucketStore. The atomic path supersedes it; it exists so the
// RedisStore satisfies the same injection point as the memory store.
func (s *RedisStore) Get(key string) (Bucket, bool) {
	ctx := context.Background()
	count, err := s.client.Get(ctx, redisKeyPrefix+key).Int()
	if err != nil {
		return Bucket{}, false
	}
	ttl, err := s.client.PTTL(ctx, redisKeyPrefix+key).Result()
	if err != nil || ttl < 0 {
		return Bucket{}, false
	}
	return Bucket{Count: count, ExpiresAt: time.Now().Add(ttl)}, true
}

// Set is part of BucketStore.
func (s *RedisStore) Set(key string, b Bucket) {
	ctx := context.Background()
	ttl := time.Until(b.ExpiresAt)
	if ttl <= 0 {
		return
	}
	s.client.Set(ctx, redisKeyPrefix+key, b.Count, ttl)
}

// Delete is part of BucketStore.
func (s *RedisStore) Delete(key string) {
	s.client.Del(context.Background(), redisKeyPrefix+key)
}

// Close releases the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

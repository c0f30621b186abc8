package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// RedisStore keeps counters in redis so every instance shares them.
type RedisStore struct {
	client *rdb.Client
}

// NewRedisStore connects to addr. The connection is lazy.
func NewRedisStore(addr string, db int) *RedisStore {
	return &RedisStore{client: rdb.NewClient(&rdb.Options{Addr: addr, DB: db})}
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(c *rdb.Client) *RedisStore {
	return &RedisStore{client: c}
}

// Ping checks the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	// EXPIRE NX only arms a key without a TTL, so later hits keep the window
	// fixed and a counter can never be left without one.
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("throttle: incr %s: %w", key, err)
	}
	return incr.Val(), nil
}

func (r *RedisStore) Count(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Get(ctx, key).Int64()
	if errors.Is(err, rdb.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("throttle: get %s: %w", key, err)
	}
	return n, nil
}

func (r *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.client.Expire(ctx, key, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, rdb.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("throttle: get %s: %w", key, err)
	}
	return b, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

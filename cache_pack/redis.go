package cache_pack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KEYS[1] is incremented only when it exists; a nil reply means the key is absent.
var incrementExistingScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return redis.call('INCR', KEYS[1])
end
return false
`)

type RedisTier struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

type RedisOption func(*RedisTier)

// WithPrefix sets the key prefix (default "modulr-api:").
func WithPrefix(prefix string) RedisOption {
	return func(t *RedisTier) { t.prefix = prefix }
}

// WithTimeout bounds every Redis round trip (default 500ms).
func WithTimeout(timeout time.Duration) RedisOption {
	return func(t *RedisTier) {
		if timeout > 0 {
			t.timeout = timeout
		}
	}
}

func NewRedisTier(client *redis.Client, opts ...RedisOption) (*RedisTier, error) {

	if client == nil {
		return nil, errors.New("redis client is required")
	}

	tier := &RedisTier{
		client:  client,
		prefix:  "modulr-api:",
		timeout: 500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(tier)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if err := incrementExistingScript.Load(ctx, client).Err(); err != nil {
		return nil, fmt.Errorf("redis script load failed: %w", err)
	}

	return tier, nil
}

func (t *RedisTier) key(k string) string {
	return t.prefix + k
}

func (t *RedisTier) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, t.timeout)
}

func (t *RedisTier) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	value, err := t.client.Get(ctx, t.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (t *RedisTier) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	return t.client.SetNX(ctx, t.key(key), value, ttl).Result()
}

func (t *RedisTier) Increment(ctx context.Context, key string) (int64, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	// Script.Run uses EVALSHA and falls back to EVAL after a NOSCRIPT reply.
	value, err := incrementExistingScript.Run(ctx, t.client, []string{t.key(key)}).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	}
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (t *RedisTier) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	ctx, cancel := t.bound(ctx)
	defer cancel()

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = t.key(k)
	}

	values, err := t.client.MGet(ctx, prefixed...).Result()
	if err != nil {
		return nil, err
	}

	for i, raw := range values {
		if s, ok := raw.(string); ok {
			result[keys[i]] = s
		}
	}

	return result, nil
}

func (t *RedisTier) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	return t.client.Set(ctx, t.key(key), value, ttl).Err()
}

func (t *RedisTier) Add(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	pipe := t.client.TxPipeline()
	counter := pipe.IncrBy(ctx, t.key(key), delta)
	if ttl > 0 {
		pipe.Expire(ctx, t.key(key), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return counter.Val(), nil
}

func (t *RedisTier) Close() error {
	return t.client.Close()
}

package cache_pack

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisTierForTest(t *testing.T) *RedisTier {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping integration test: Redis not available (%v)", err)
	}

	tier, err := NewRedisTier(client, WithPrefix(fmt.Sprintf("modulr-api-test:%d:", time.Now().UnixNano())), WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("Failed to create RedisTier: %v", err)
	}
	t.Cleanup(func() { _ = tier.Close() })

	return tier
}

func TestRedisTierIncrementOnlyExistingKeys(t *testing.T) {
	tier := newRedisTierForTest(t)
	ctx := context.Background()

	_, err := tier.Increment(ctx, "nonce:x")
	require.ErrorIs(t, err, ErrMiss)

	_, found, err := tier.Get(ctx, "nonce:x")
	require.NoError(t, err)
	require.False(t, found)

	won, err := tier.SetIfAbsent(ctx, "nonce:x", "41", time.Minute)
	require.NoError(t, err)
	require.True(t, won)

	won, err = tier.SetIfAbsent(ctx, "nonce:x", "0", time.Minute)
	require.NoError(t, err)
	require.False(t, won)

	value, err := tier.Increment(ctx, "nonce:x")
	require.NoError(t, err)
	require.Equal(t, int64(42), value)
}

func TestRedisTierConcurrentIncrement(t *testing.T) {
	tier := newRedisTierForTest(t)
	ctx := context.Background()

	_, err := tier.SetIfAbsent(ctx, "nonce:y", "0", time.Minute)
	require.NoError(t, err)

	const workers = 50

	var mu sync.Mutex
	seen := map[int64]bool{}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := tier.Increment(ctx, "nonce:y")
			if err != nil {
				t.Errorf("increment: %v", err)
				return
			}
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers)
}

func TestRedisTierGetManyAndAdd(t *testing.T) {
	tier := newRedisTierForTest(t)
	ctx := context.Background()

	_, err := tier.Add(ctx, "bucket:10:100", 4, time.Minute)
	require.NoError(t, err)
	total, err := tier.Add(ctx, "bucket:10:100", 6, time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(10), total)

	values, err := tier.GetMany(ctx, []string{"bucket:10:100", "bucket:10:110"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"bucket:10:100": "10"}, values)

	empty, err := tier.GetMany(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

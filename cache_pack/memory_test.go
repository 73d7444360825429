package cache_pack

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryTierSetIfAbsentAndIncrement(t *testing.T) {
	ctx := context.Background()
	tier := NewMemoryTier()

	_, err := tier.Increment(ctx, "nonce:a")
	require.ErrorIs(t, err, ErrMiss)

	_, found, err := tier.Get(ctx, "nonce:a")
	require.NoError(t, err)
	require.False(t, found, "Increment must not create the key")

	won, err := tier.SetIfAbsent(ctx, "nonce:a", "7", time.Hour)
	require.NoError(t, err)
	require.True(t, won)

	won, err = tier.SetIfAbsent(ctx, "nonce:a", "100", time.Hour)
	require.NoError(t, err)
	require.False(t, won)

	value, err := tier.Increment(ctx, "nonce:a")
	require.NoError(t, err)
	require.Equal(t, int64(8), value)
}

func TestMemoryTierExpiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	tier := NewMemoryTier().WithClock(clock.Now)

	require.NoError(t, tier.Set(ctx, "tps:latest", "{}", 5*time.Second))
	require.NoError(t, tier.Set(ctx, "forever", "1", 0))

	clock.Advance(4 * time.Second)
	_, found, _ := tier.Get(ctx, "tps:latest")
	require.True(t, found)

	clock.Advance(time.Second)
	_, found, _ = tier.Get(ctx, "tps:latest")
	require.False(t, found)

	_, err := tier.Increment(ctx, "tps:latest")
	require.True(t, errors.Is(err, ErrMiss))

	clock.Advance(365 * 24 * time.Hour)
	_, found, _ = tier.Get(ctx, "forever")
	require.True(t, found)
}

func TestMemoryTierGetManyReturnsPresentKeysOnly(t *testing.T) {
	ctx := context.Background()
	tier := NewMemoryTier()

	require.NoError(t, tier.Set(ctx, "bucket:10:100", "5", 0))
	require.NoError(t, tier.Set(ctx, "bucket:10:120", "9", 0))

	values, err := tier.GetMany(ctx, []string{"bucket:10:100", "bucket:10:110", "bucket:10:120"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"bucket:10:100": "5", "bucket:10:120": "9"}, values)
}

func TestMemoryTierAddCreatesAndRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	tier := NewMemoryTier().WithClock(clock.Now)

	value, err := tier.Add(ctx, "shardTxCount:0", 3, 10*time.Second)
	require.NoError(t, err)
	require.Equal(t, int64(3), value)

	clock.Advance(8 * time.Second)
	value, err = tier.Add(ctx, "shardTxCount:0", 4, 10*time.Second)
	require.NoError(t, err)
	require.Equal(t, int64(7), value)

	clock.Advance(8 * time.Second)
	raw, found, err := tier.Get(ctx, "shardTxCount:0")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "7", raw)
}

func TestMemoryTierConcurrentIncrement(t *testing.T) {
	ctx := context.Background()
	tier := NewMemoryTier()

	_, err := tier.SetIfAbsent(ctx, "nonce:b", "0", 0)
	require.NoError(t, err)

	const workers = 64

	seen := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := tier.Increment(ctx, "nonce:b")
			if err != nil {
				t.Errorf("increment: %v", err)
				return
			}
			seen <- v
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[int64]bool{}
	for v := range seen {
		if unique[v] {
			t.Fatalf("value %d returned twice", v)
		}
		unique[v] = true
	}
	require.Len(t, unique, workers)
}

func TestMemoryTierHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewMemoryTier().Get(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
}

package faucet_pack

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/modulrcloud/modulr-api/cache_pack"
	"github.com/modulrcloud/modulr-api/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	nonce uint64
	err   error
	calls int32
	delay time.Duration
}

func (l *fakeLedger) GetAccount(ctx context.Context, address string) (*structures.Account, error) {
	atomic.AddInt32(&l.calls, 1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.err != nil {
		return nil, l.err
	}
	return &structures.Account{Nonce: l.nonce}, nil
}

// seedCountingTier counts the writes that actually seeded a counter.
type seedCountingTier struct {
	*cache_pack.MemoryTier
	seeds int32
}

func (t *seedCountingTier) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	won, err := t.MemoryTier.SetIfAbsent(ctx, key, value, ttl)
	if won {
		atomic.AddInt32(&t.seeds, 1)
	}
	return won, err
}

// failingTier fails every operation.
type failingTier struct{ *cache_pack.MemoryTier }

var errCacheDown = errors.New("dial tcp: connection refused")

func (failingTier) Get(context.Context, string) (string, bool, error) { return "", false, errCacheDown }

func TestAllocateColdThenWarm(t *testing.T) {
	ctx := context.Background()
	ledger := &fakeLedger{nonce: 42}
	allocator := NewNonceAllocator(cache_pack.NewMemoryTier(), ledger, nil)

	first, err := allocator.Allocate(ctx, "faucet")
	require.NoError(t, err)
	second, err := allocator.Allocate(ctx, "faucet")
	require.NoError(t, err)
	third, err := allocator.Allocate(ctx, "faucet")
	require.NoError(t, err)

	assert.Equal(t, []uint64{42, 43, 44}, []uint64{first, second, third})
	assert.Equal(t, int32(1), atomic.LoadInt32(&ledger.calls))
}

func TestAllocateConcurrentCallersGetDistinctContiguousNonces(t *testing.T) {
	ctx := context.Background()
	tier := &seedCountingTier{MemoryTier: cache_pack.NewMemoryTier()}
	// The delay widens the window in which every caller sees an absent counter.
	ledger := &fakeLedger{nonce: 100, delay: 5 * time.Millisecond}
	allocator := NewNonceAllocator(tier, ledger, nil)

	const callers = 50

	var (
		mu     sync.Mutex
		nonces []uint64
		wg     sync.WaitGroup
	)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			nonce, err := allocator.Allocate(ctx, "faucet")
			if err != nil {
				t.Errorf("allocate: %v", err)
				return
			}
			mu.Lock()
			nonces = append(nonces, nonce)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, nonces, callers)
	sort.Slice(nonces, func(i, j int) bool { return nonces[i] < nonces[j] })
	for i, nonce := range nonces {
		assert.Equal(t, uint64(100+i), nonce)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&tier.seeds), "exactly one seed write must win")
}

func TestAllocateReseedsAfterExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	tier := cache_pack.NewMemoryTier().WithClock(func() time.Time { return now })
	ledger := &fakeLedger{nonce: 10}
	allocator := NewNonceAllocator(tier, ledger, nil)

	nonce, err := allocator.Allocate(ctx, "faucet")
	require.NoError(t, err)
	require.Equal(t, uint64(10), nonce)

	now = now.Add(13 * 30 * 24 * time.Hour)
	ledger.nonce = 25

	nonce, err = allocator.Allocate(ctx, "faucet")
	require.NoError(t, err)
	assert.Equal(t, uint64(25), nonce)
}

func TestAllocateCacheFailureIsUpstreamUnavailable(t *testing.T) {
	allocator := NewNonceAllocator(failingTier{cache_pack.NewMemoryTier()}, &fakeLedger{}, nil)

	_, err := allocator.Allocate(context.Background(), "faucet")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
	require.ErrorIs(t, err, errCacheDown)
}

func TestAllocateLedgerFailureIsUpstreamUnavailable(t *testing.T) {
	tier := cache_pack.NewMemoryTier()
	allocator := NewNonceAllocator(tier, &fakeLedger{err: ErrAccountNotFound}, nil)

	_, err := allocator.Allocate(context.Background(), "faucet")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
	require.ErrorIs(t, err, ErrAccountNotFound)

	_, found, _ := tier.Get(context.Background(), NonceKey("faucet"))
	assert.False(t, found, "no estimated nonce may be written")
}

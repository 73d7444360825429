package faucet_pack

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/modulrcloud/modulr-api/cache_pack"
	"github.com/modulrcloud/modulr-api/constants"
	"github.com/modulrcloud/modulr-api/metrics"
	"github.com/modulrcloud/modulr-api/structures"
)

type LedgerAccountReader interface {
	// GetAccount returns ErrAccountNotFound when the ledger has no such account.
	GetAccount(ctx context.Context, address string) (*structures.Account, error)
}

// A seeded counter may expire between the read and the increment. Each attempt re-seeds it.
const maxAllocationAttempts = 3

// NonceAllocator hands out sender nonces from a counter kept in the cache tier.
//
// The first allocation for an identity seeds the counter with the ledger nonce N and returns N.
// Every later allocation returns the atomically incremented counter. Concurrent callers, in this
// or any other process sharing the tier, therefore receive N, N+1, ... without duplicates. When
// several callers race to seed, SetIfAbsent lets exactly one of them win; the others fall through
// to the increment.
type NonceAllocator struct {
	tier     cache_pack.Tier
	ledger   LedgerAccountReader
	recorder metrics.Recorder
	ttl      time.Duration
}

func NewNonceAllocator(tier cache_pack.Tier, ledger LedgerAccountReader, recorder metrics.Recorder) *NonceAllocator {
	if recorder == nil {
		recorder = metrics.NoOpRecorder{}
	}
	return &NonceAllocator{tier: tier, ledger: ledger, recorder: recorder, ttl: constants.NonceTTL}
}

func NonceKey(identity string) string {
	return constants.CacheKeyPrefixNonce + identity
}

func (n *NonceAllocator) Allocate(ctx context.Context, identity string) (uint64, error) {

	key := NonceKey(identity)

	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {

		_, found, err := n.tier.Get(ctx, key)
		if err != nil {
			return 0, upstream("read nonce counter", err)
		}

		if !found {

			account, err := n.ledger.GetAccount(ctx, identity)
			if err != nil {
				return 0, upstream("read ledger nonce", err)
			}

			won, err := n.tier.SetIfAbsent(ctx, key, strconv.FormatUint(account.Nonce, 10), n.ttl)
			if err != nil {
				return 0, upstream("seed nonce counter", err)
			}

			n.recorder.Add(metrics.NonceSeeds, 1, map[string]string{"won": strconv.FormatBool(won)})

			if won {
				return account.Nonce, nil
			}
		}

		value, err := n.tier.Increment(ctx, key)
		if errors.Is(err, cache_pack.ErrMiss) {
			continue
		}
		if err != nil {
			return 0, upstream("increment nonce counter", err)
		}
		if value < 0 {
			return 0, upstream("increment nonce counter", errors.New("negative counter"))
		}

		return uint64(value), nil
	}

	return 0, upstream("allocate nonce", errors.New("counter expired on every attempt"))
}

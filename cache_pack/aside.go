package cache_pack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modulrcloud/modulr-api/metrics"
	"github.com/modulrcloud/modulr-api/utils"

	"golang.org/x/sync/singleflight"
)

// Aside memoizes computed values in a Tier. Values are stored as JSON.
//
// A tier failure on read is treated as a miss and a failure on write is only logged, so an
// unavailable cache degrades to direct computation. Concurrent misses on the same key inside one
// process share a single computation. The shared computation does not inherit the cancellation of
// the caller that started it and is bounded by its own timeout instead.
type Aside struct {
	tier     Tier
	group    singleflight.Group
	recorder metrics.Recorder
}

const flightTimeout = 5 * time.Second

func NewAside(tier Tier, recorder metrics.Recorder) *Aside {
	if recorder == nil {
		recorder = metrics.NoOpRecorder{}
	}
	return &Aside{tier: tier, recorder: recorder}
}

func (a *Aside) Tier() Tier {
	return a.tier
}

func (a *Aside) record(key, result string) {
	a.recorder.Add(metrics.CacheLookups, 1, map[string]string{"key": key, "result": result})
}

// GetOrSet returns the cached value for key or computes it, stores it with ttl and returns it.
// Errors returned by compute are passed through and nothing is stored.
func GetOrSet[T any](ctx context.Context, aside *Aside, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {

	raw, found, err := aside.tier.Get(ctx, key)

	switch {

	case err != nil:
		aside.record(key, "error")
		utils.LogWithTimeThrottled("cache:get:"+key, 10*time.Second, fmt.Sprintf("Cache read of %s failed, computing directly: %v", key, err), utils.YELLOW_COLOR)

	case found:
		var cached T
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			aside.record(key, "hit")
			return cached, nil
		}
		aside.record(key, "corrupt")

	default:
		aside.record(key, "miss")
	}

	value, err, _ := aside.group.Do(key, func() (any, error) {

		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()

		computed, err := compute(flightCtx)
		if err != nil {
			return computed, err
		}

		encoded, err := json.Marshal(computed)
		if err != nil {
			return computed, fmt.Errorf("encode %s: %w", key, err)
		}

		if err := aside.tier.Set(flightCtx, key, string(encoded), ttl); err != nil {
			utils.LogWithTimeThrottled("cache:set:"+key, 10*time.Second, fmt.Sprintf("Cache write of %s failed: %v", key, err), utils.YELLOW_COLOR)
		}

		return computed, nil
	})

	if err != nil {
		var zero T
		return zero, err
	}

	return value.(T), nil
}

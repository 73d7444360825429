package tps_pack

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/modulrcloud/modulr-api/cache_pack"
	"github.com/modulrcloud/modulr-api/constants"
	"github.com/modulrcloud/modulr-api/metrics"
	"github.com/modulrcloud/modulr-api/structures"
	"github.com/modulrcloud/modulr-api/utils"
)

// Aggregator answers the TPS and transaction count queries.
//
// Queries never fail: a collaborator error is logged (throttled) and answered with a zero point,
// a zero-filled or empty series, or a zero count. Zero answers produced by a failure are not cached.
type Aggregator struct {
	aside    *cache_pack.Aside
	source   HistoricalBlockSource
	topology ShardTopology
	recorder metrics.Recorder
	now      func() time.Time
}

func NewAggregator(aside *cache_pack.Aside, source HistoricalBlockSource, topology ShardTopology, recorder metrics.Recorder) *Aggregator {
	if recorder == nil {
		recorder = metrics.NoOpRecorder{}
	}
	return &Aggregator{
		aside:    aside,
		source:   source,
		topology: topology,
		recorder: recorder,
		now:      time.Now,
	}
}

func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

func (a *Aggregator) degraded(query string, err error) {
	a.recorder.Add(metrics.DegradedQueries, 1, map[string]string{"query": query})
	utils.LogWithTimeThrottled("tps:"+query, 30*time.Second, fmt.Sprintf("TPS query %s degraded to zero: %v", query, err), utils.YELLOW_COLOR)
}

func (a *Aggregator) Latest(ctx context.Context) structures.TpsPoint {

	point, err := cache_pack.GetOrSet(ctx, a.aside, constants.CacheKeyTpsLatest, constants.TpsLatestTTL, func(ctx context.Context) (structures.TpsPoint, error) {
		blocks, err := a.source.LatestBlocks(ctx, constants.LatestBlocksPageSize)
		if err != nil {
			return structures.TpsPoint{}, err
		}
		return latestPoint(blocks), nil
	})

	if err != nil {
		a.degraded("latest", err)
		return structures.TpsPoint{}
	}
	return point
}

func (a *Aggregator) Max(ctx context.Context) structures.TpsPoint {

	point, err := cache_pack.GetOrSet(ctx, a.aside, constants.CacheKeyTpsMax, constants.TpsMaxTTL, func(ctx context.Context) (structures.TpsPoint, error) {
		blocks, err := a.source.LatestBlocks(ctx, constants.MaxBlocksScanSize)
		if err != nil {
			return structures.TpsPoint{}, err
		}
		return maxPoint(blocks), nil
	})

	if err != nil {
		a.degraded("max", err)
		return structures.TpsPoint{}
	}
	return point
}

// MaxByInterval reads the maximum maintained by the indexer. It never recomputes.
func (a *Aggregator) MaxByInterval(ctx context.Context, interval TpsInterval) structures.TpsPoint {

	raw, found, err := a.aside.Tier().Get(ctx, IntervalMaxKey(interval))
	if err != nil {
		a.degraded("max:"+interval.String(), err)
		return structures.TpsPoint{}
	}
	if !found {
		return structures.TpsPoint{}
	}

	var point structures.TpsPoint
	if err := json.Unmarshal([]byte(raw), &point); err != nil {
		a.degraded("max:"+interval.String(), err)
		return structures.TpsPoint{}
	}
	return point
}

// Current reports the last completed bucket of the given frequency.
func (a *Aggregator) Current(ctx context.Context, frequency TpsFrequency) structures.TpsPoint {

	f := frequency.Seconds()
	ts := Align(a.now().Unix()-f, f)

	raw, found, err := a.aside.Tier().Get(ctx, BucketKey(f, ts))
	if err != nil {
		a.degraded("current:"+frequency.String(), err)
		return structures.TpsPoint{Timestamp: ts}
	}

	var count int64
	if found {
		count = parseCount(raw)
	}

	return structures.TpsPoint{Timestamp: ts, Tps: float64(count) / float64(f)}
}

func (a *Aggregator) HistoryByInterval(ctx context.Context, interval TpsInterval) []structures.TpsPoint {

	f := interval.Frequency().Seconds()
	ttl := time.Duration(f) * time.Second

	series, err := cache_pack.GetOrSet(ctx, a.aside, IntervalHistoryKey(interval), ttl, func(ctx context.Context) ([]structures.TpsPoint, error) {
		return a.historyFromBuckets(ctx, interval)
	})

	if err != nil {
		a.degraded("history:"+interval.String(), err)
		return zeroSeries(BucketTimestamps(Align(a.now().Unix(), f), interval.WindowSeconds(), f))
	}
	return series
}

func (a *Aggregator) historyFromBuckets(ctx context.Context, interval TpsInterval) ([]structures.TpsPoint, error) {

	f := interval.Frequency().Seconds()
	end := Align(a.now().Unix(), f)
	timestamps := BucketTimestamps(end, interval.WindowSeconds(), f)

	keys := make([]string, len(timestamps))
	for i, ts := range timestamps {
		keys[i] = BucketKey(f, ts)
	}

	counts, err := a.aside.Tier().GetMany(ctx, keys)
	if err != nil {
		return nil, err
	}

	series := make([]structures.TpsPoint, len(timestamps))
	for i, ts := range timestamps {
		series[i] = structures.TpsPoint{Timestamp: ts, Tps: float64(parseCount(counts[keys[i]])) / float64(f)}
	}
	return series, nil
}

// HistoryRaw builds the last hour from block records: one point per second, then the max of
// each 10 second sub-window.
func (a *Aggregator) HistoryRaw(ctx context.Context) []structures.TpsPoint {

	series, err := cache_pack.GetOrSet(ctx, a.aside, constants.CacheKeyTpsHistory, constants.TpsHistoryTTL, func(ctx context.Context) ([]structures.TpsPoint, error) {
		blocks, err := a.source.LatestBlocks(ctx, constants.RawHistoryWindowSeconds)
		if err != nil {
			return nil, err
		}
		return rawHistory(blocks), nil
	})

	if err != nil {
		a.degraded("history:raw", err)
		return []structures.TpsPoint{}
	}
	return series
}

// TransactionCount sums the per-shard counters of every configured shard and the meta shard.
func (a *Aggregator) TransactionCount(ctx context.Context) int64 {

	shardCount, err := a.topology.ShardCount(ctx)
	if err != nil {
		a.degraded("count", err)
		return 0
	}

	shardIds := make([]int, 0, shardCount+1)
	for id := 0; id < shardCount; id++ {
		shardIds = append(shardIds, id)
	}
	shardIds = append(shardIds, a.topology.MetaShardId())

	keys := make([]string, len(shardIds))
	for i, id := range shardIds {
		keys[i] = ShardTxCountKey(id)
	}

	counts, err := a.aside.Tier().GetMany(ctx, keys)
	if err != nil {
		a.degraded("count", err)
		return 0
	}

	var total int64
	for _, key := range keys {
		total += parseCount(counts[key])
	}
	return total
}

func (a *Aggregator) TransactionCountFromSource(ctx context.Context) int64 {

	count, err := cache_pack.GetOrSet(ctx, a.aside, constants.CacheKeyTpsCount, constants.TpsCountTTL, func(ctx context.Context) (int64, error) {
		return a.source.CountRecords(ctx, constants.OperationsRecordKind)
	})

	if err != nil {
		a.degraded("count:raw", err)
		return 0
	}
	return count
}

func latestPoint(blocks []structures.BlockRecord) structures.TpsPoint {

	if len(blocks) == 0 {
		return structures.TpsPoint{}
	}

	var maxTx int64
	for _, block := range blocks {
		if block.TxCount > maxTx {
			maxTx = block.TxCount
		}
	}

	return structures.TpsPoint{Timestamp: blocks[0].Timestamp, Tps: float64(maxTx)}
}

func maxPoint(blocks []structures.BlockRecord) structures.TpsPoint {

	var best structures.TpsPoint

	for _, block := range blocks {
		if float64(block.TxCount) > best.Tps {
			best = structures.TpsPoint{Timestamp: block.Timestamp, Tps: float64(block.TxCount)}
		}
	}

	return best
}

// rawHistory expects blocks most recent first. Blocks sharing a second are summed.
func rawHistory(blocks []structures.BlockRecord) []structures.TpsPoint {

	if len(blocks) == 0 {
		return []structures.TpsPoint{}
	}

	perSecond := make(map[int64]int64, len(blocks))
	for _, block := range blocks {
		perSecond[block.Timestamp] += block.TxCount
	}

	last := blocks[0].Timestamp
	first := last - constants.RawHistoryWindowSeconds + 1

	out := make([]structures.TpsPoint, 0, constants.RawHistoryWindowSeconds/constants.RawHistoryBucketSeconds)

	for start := first; start <= last; start += constants.RawHistoryBucketSeconds {
		var windowMax int64
		for ts := start; ts < start+constants.RawHistoryBucketSeconds && ts <= last; ts++ {
			if perSecond[ts] > windowMax {
				windowMax = perSecond[ts]
			}
		}
		out = append(out, structures.TpsPoint{Timestamp: start, Tps: float64(windowMax)})
	}

	return out
}

func zeroSeries(timestamps []int64) []structures.TpsPoint {
	out := make([]structures.TpsPoint, len(timestamps))
	for i, ts := range timestamps {
		out[i] = structures.TpsPoint{Timestamp: ts}
	}
	return out
}

// Counters are written as decimal integers. Anything else counts as zero.
func parseCount(raw string) int64 {
	if raw == "" {
		return 0
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || count < 0 {
		return 0
	}
	return count
}

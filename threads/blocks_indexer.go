package threads

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/modulrcloud/modulr-api/cache_pack"
	"github.com/modulrcloud/modulr-api/constants"
	"github.com/modulrcloud/modulr-api/handlers"
	"github.com/modulrcloud/modulr-api/metrics"
	"github.com/modulrcloud/modulr-api/structures"
	"github.com/modulrcloud/modulr-api/tps_pack"
	"github.com/modulrcloud/modulr-api/utils"

	"github.com/syndtr/goleveldb/leveldb"
)

// BlocksIndexer follows the chain height by height and maintains everything the TPS aggregator
// reads: block records and operation keys in leveldb, and the bucket, shard and per-interval max
// counters in the cache tier.
//
// Only one indexer may run against a given cache tier. Max counters are updated with a plain
// read-then-write. A crash between a cache Add and its STATE marker can count that counter twice.
type BlocksIndexer struct {
	fetcher  BlockFetcher
	source   *tps_pack.LevelDBBlockSource
	state    *leveldb.DB
	tier     cache_pack.Tier
	recorder metrics.Recorder

	startHeight int64
}

func NewBlocksIndexer(fetcher BlockFetcher, source *tps_pack.LevelDBBlockSource, state *leveldb.DB, tier cache_pack.Tier, recorder metrics.Recorder, startHeight int64) *BlocksIndexer {
	if recorder == nil {
		recorder = metrics.NoOpRecorder{}
	}
	return &BlocksIndexer{
		fetcher:     fetcher,
		source:      source,
		state:       state,
		tier:        tier,
		recorder:    recorder,
		startHeight: startHeight,
	}
}

// Bucket counters outlive the longest history window so that a full window is always readable.
func bucketTTL() time.Duration {
	var longest int64
	for _, interval := range tps_pack.Intervals() {
		if interval.WindowSeconds() > longest {
			longest = interval.WindowSeconds()
		}
	}
	return 2 * time.Duration(longest) * time.Second
}

// LastIndexedHeight returns the persisted progress, or startHeight-1 before the first block.
func (ix *BlocksIndexer) LastIndexedHeight() (int64, error) {

	var height int64

	found, err := utils.GetJSONFromDb(ix.state, constants.DBKeyIndexerLastHeight, &height)
	if err != nil {
		return 0, err
	}
	if !found {
		return ix.startHeight - 1, nil
	}
	return height, nil
}

// IndexNext processes the block right after the persisted height. It reports whether a block
// was processed.
func (ix *BlocksIndexer) IndexNext(ctx context.Context) (bool, error) {

	last, err := ix.LastIndexedHeight()
	if err != nil {
		return false, fmt.Errorf("read indexer progress: %w", err)
	}

	height := last + 1

	block, err := ix.fetcher.BlockByHeight(ctx, height)
	if err != nil {
		return false, fmt.Errorf("fetch block at height %d: %w", height, err)
	}
	if block == nil {
		return false, nil
	}

	if _, err := ix.source.StoreBlock(block); err != nil {
		return false, fmt.Errorf("store block at height %d: %w", height, err)
	}

	if err := ix.ApplyCounters(ctx, block); err != nil {
		return false, fmt.Errorf("update counters at height %d: %w", height, err)
	}

	if err := utils.PutJSONToDb(ix.state, constants.DBKeyIndexerLastHeight, height); err != nil {
		return false, fmt.Errorf("persist indexer progress: %w", err)
	}

	ix.recorder.Add(metrics.IndexedBlocks, 1, nil)

	handlers.INDEXER_METADATA.RWMutex.Lock()
	stats := &handlers.INDEXER_METADATA.Statistics
	stats.LastHeight = height
	stats.BlocksIndexed++
	stats.LastBlockHash = block.GetHash()
	stats.LastBlockTime = block.Time
	stats.TotalTransactions += uint64(len(block.Transactions))
	handlers.INDEXER_METADATA.RWMutex.Unlock()

	return true, nil
}

// ApplyCounters adds the block's transactions to every frequency bucket and to its shard counter,
// then raises the per-interval max where the updated bucket exceeds it.
//
// Progress is tracked in STATE per block and per counter, so a retry after a failed cache call
// only adds what is still missing. Counters of a block are applied once.
func (ix *BlocksIndexer) ApplyCounters(ctx context.Context, block *structures.Block) error {

	blockHash := block.GetHash()
	doneKey := constants.DBKeyPrefixCounted + blockHash

	done, err := ix.state.Has([]byte(doneKey), nil)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	var stepKeys []string

	if txCount := int64(len(block.Transactions)); txCount > 0 {

		ts := block.Time / 1000
		ttl := bucketTTL()

		bucketKeys := make(map[tps_pack.TpsFrequency]string)

		for _, frequency := range tps_pack.Frequencies() {
			key := tps_pack.BucketKey(frequency.Seconds(), tps_pack.Align(ts, frequency.Seconds()))
			bucketKeys[frequency] = key
			stepKeys = append(stepKeys, key)

			if err := ix.addOnce(ctx, doneKey+":"+key, key, txCount, ttl); err != nil {
				return err
			}
		}

		shardKey := tps_pack.ShardTxCountKey(block.ShardId)
		stepKeys = append(stepKeys, shardKey)

		// Shard totals never expire.
		if err := ix.addOnce(ctx, doneKey+":"+shardKey, shardKey, txCount, 0); err != nil {
			return err
		}

		for _, interval := range tps_pack.Intervals() {

			frequency := interval.Frequency()

			raw, _, err := ix.tier.Get(ctx, bucketKeys[frequency])
			if err != nil {
				return err
			}
			total, _ := strconv.ParseInt(raw, 10, 64)

			candidate := structures.TpsPoint{
				Timestamp: tps_pack.Align(ts, frequency.Seconds()),
				Tps:       float64(total) / float64(frequency.Seconds()),
			}

			if err := ix.raiseIntervalMax(ctx, interval, candidate); err != nil {
				return err
			}
		}
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(doneKey), []byte("1"))
	for _, key := range stepKeys {
		batch.Delete([]byte(doneKey + ":" + key))
	}

	return ix.state.Write(batch, nil)
}

// addOnce adds delta to key unless marker says it was already added for this block.
func (ix *BlocksIndexer) addOnce(ctx context.Context, marker, key string, delta int64, ttl time.Duration) error {

	added, err := ix.state.Has([]byte(marker), nil)
	if err != nil || added {
		return err
	}

	if _, err := ix.tier.Add(ctx, key, delta, ttl); err != nil {
		return err
	}

	return ix.state.Put([]byte(marker), []byte("1"), nil)
}

func (ix *BlocksIndexer) raiseIntervalMax(ctx context.Context, interval tps_pack.TpsInterval, candidate structures.TpsPoint) error {

	key := tps_pack.IntervalMaxKey(interval)

	raw, found, err := ix.tier.Get(ctx, key)
	if err != nil {
		return err
	}

	if found {
		var current structures.TpsPoint
		if json.Unmarshal([]byte(raw), &current) == nil && current.Tps >= candidate.Tps {
			return nil
		}
	}

	encoded, err := json.Marshal(candidate)
	if err != nil {
		return err
	}

	return ix.tier.Set(ctx, key, string(encoded), time.Duration(interval.WindowSeconds())*time.Second)
}

// BlocksIndexerThread runs the indexer until ctx is cancelled.
func BlocksIndexerThread(ctx context.Context, indexer *BlocksIndexer) {

	handlers.INDEXER_METADATA.RWMutex.Lock()
	handlers.INDEXER_METADATA.Running = true
	if last, err := indexer.LastIndexedHeight(); err == nil {
		handlers.INDEXER_METADATA.Statistics.LastHeight = last
	}
	handlers.INDEXER_METADATA.RWMutex.Unlock()

	defer func() {
		handlers.INDEXER_METADATA.RWMutex.Lock()
		handlers.INDEXER_METADATA.Running = false
		handlers.INDEXER_METADATA.RWMutex.Unlock()
	}()

	utils.LogWithTime("Blocks indexer thread started", utils.CYAN_COLOR)

	for {

		if ctx.Err() != nil {
			return
		}

		progressed, err := indexer.IndexNext(ctx)

		switch {

		case err != nil:
			utils.LogWithTimeThrottled("indexer:error", 10*time.Second, fmt.Sprintf("Indexer: %v", err), utils.YELLOW_COLOR)
			sleepOrDone(ctx, constants.IndexerErrorSleep)

		case !progressed:
			sleepOrDone(ctx, constants.IndexerIdleSleep)
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

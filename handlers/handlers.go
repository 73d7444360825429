package handlers

import (
	"sync"

	"github.com/modulrcloud/modulr-api/faucet_pack"
	"github.com/modulrcloud/modulr-api/structures"
	"github.com/modulrcloud/modulr-api/tps_pack"
)

// Set once by the entrypoint before any server starts.
var FAUCET *faucet_pack.Dispenser

var TPS *tps_pack.Aggregator

var INDEXER_METADATA = struct {
	RWMutex    sync.RWMutex
	Statistics structures.IndexerStatistics
	Running    bool
}{
	Statistics: structures.IndexerStatistics{LastHeight: -1},
}

// IndexerSnapshot returns a copy of the indexer progress.
func IndexerSnapshot() (structures.IndexerStatistics, bool) {
	INDEXER_METADATA.RWMutex.RLock()
	defer INDEXER_METADATA.RWMutex.RUnlock()
	return INDEXER_METADATA.Statistics, INDEXER_METADATA.Running
}

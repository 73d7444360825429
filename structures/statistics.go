package structures

// IndexerStatistics is the progress of the blocks indexer that maintains TPS counters.
type IndexerStatistics struct {
	LastHeight int64 `json:"lastHeight"`
	// BlocksIndexed counts blocks processed since process start.
	BlocksIndexed     uint64 `json:"blocksIndexed"`
	LastBlockHash     string `json:"lastBlockHash"`
	LastBlockTime     int64  `json:"lastBlockTime"`
	TotalTransactions uint64 `json:"totalTransactions"`
}

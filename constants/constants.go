package constants

import "time"

// Websocket routes served by websocket_pack.
const (
	WsRouteGetTpsLatest        = "get_tps_latest"
	WsRouteGetTpsMax           = "get_tps_max"
	WsRouteGetTpsCurrent       = "get_tps_current"
	WsRouteGetTpsHistory       = "get_tps_history"
	WsRouteGetTransactionCount = "get_transaction_count"
	WsRouteGetBlockByHeight    = "get_block_by_height" // PoD route used by the indexer
)

// Cache keys and key prefixes.
const (
	CacheKeyPrefixNonce        = "nonce:"
	CacheKeyTpsLatest          = "tps:latest"
	CacheKeyTpsMax             = "tps:max"
	CacheKeyTpsHistory         = "tps:history"
	CacheKeyPrefixTpsHistory   = "tps:history:"
	CacheKeyTpsCount           = "tps:count"
	CacheKeyPrefixBucket       = "bucket:"
	CacheKeyPrefixShardTxCount = "shardTxCount:"
	CacheKeyPrefixTpsMax       = "tpsMax:"
)

// Cache TTLs.
const (
	NonceTTL      = 12 * 30 * 24 * time.Hour
	TpsLatestTTL  = 5 * time.Second
	TpsMaxTTL     = 10 * time.Second
	TpsHistoryTTL = 10 * time.Second
	TpsCountTTL   = 5 * time.Second
)

// Historical source page sizes and raw history shape.
const (
	LatestBlocksPageSize    = 10
	MaxBlocksScanSize       = 10_000
	RawHistoryWindowSeconds = 3600
	RawHistoryBucketSeconds = 10
	OperationsRecordKind    = "operations"
	BlocksRecordKind        = "blocks"
)

// Faucet transfer parameters.
const (
	FaucetAmount   uint64 = 5_000_000_000_000_000_000 // 5 units, 18 decimals
	FaucetGasLimit uint64 = 1_500_000
	TxVersion      uint   = 1
)

// Common DB key fragments/prefixes.
const (
	DBKeyPrefixBlockRecord = "BLOCK_RECORD:"
	DBKeyPrefixOperation   = "OPERATION:"
	DBKeyIndexerLastHeight = "INDEXER:LAST_HEIGHT"
	DBKeyPrefixCounted     = "COUNTED:"
)

// Indexer pacing.
const (
	IndexerIdleSleep  = 500 * time.Millisecond
	IndexerErrorSleep = 2 * time.Second
)

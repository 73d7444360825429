package structures

// TpsPoint is a throughput sample: transactions per second at a unix timestamp (seconds).
type TpsPoint struct {
	Timestamp int64   `json:"timestamp"`
	Tps       float64 `json:"tps"`
}

// BlockRecord is the per-block row kept by the historical block source.
type BlockRecord struct {
	Hash      string `json:"hash"`
	ShardId   int    `json:"shardId"`
	TxCount   int64  `json:"txCount"`
	Timestamp int64  `json:"timestamp"`
}

package structures

type ApiConfig struct {
	ChainId            string `json:"CHAIN_ID"`
	Interface          string `json:"INTERFACE"`
	Port               int    `json:"PORT"`
	WebSocketInterface string `json:"WEBSOCKET_INTERFACE"`
	WebSocketPort      int    `json:"WEBSOCKET_PORT"`

	// Faucet wallet. Either PRIVATE_KEY+PUBLIC_KEY or a BIP-39 mnemonic must be provided.
	FaucetPublicKey        string   `json:"FAUCET_PUBLIC_KEY"`
	FaucetPrivateKey       string   `json:"FAUCET_PRIVATE_KEY"`
	FaucetMnemonic         string   `json:"FAUCET_MNEMONIC"`
	FaucetMnemonicPassword string   `json:"FAUCET_MNEMONIC_PASSWORD"`
	FaucetBip44Path        []uint32 `json:"FAUCET_BIP44_PATH"`

	// Node used as ledger (accounts), submitter (transactions) and block source.
	NodeURL               string `json:"NODE_URL"`
	PointOfDistributionWS string `json:"POINT_OF_DISTRIBUTION_WS"`
	BlocksSource          string `json:"BLOCKS_SOURCE"` // "http" | "pod"
	IndexerEnabled        bool   `json:"INDEXER_ENABLED"`
	IndexerStartHeight    int64  `json:"INDEXER_START_HEIGHT"`

	CacheBackend  string `json:"CACHE_BACKEND"` // "redis" | "memory"
	RedisAddr     string `json:"REDIS_ADDR"`
	RedisPassword string `json:"REDIS_PASSWORD"`
	RedisDB       int    `json:"REDIS_DB"`
	RedisPrefix   string `json:"REDIS_PREFIX"`

	CacheTimeoutMs    int `json:"CACHE_TIMEOUT_MS"`
	UpstreamTimeoutMs int `json:"UPSTREAM_TIMEOUT_MS"`

	ShardCount  int `json:"SHARD_COUNT"`
	MetaShardId int `json:"META_SHARD_ID"`
}

package globals

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/modulrcloud/modulr-api/structures"

	"github.com/joho/godotenv"
)

var CHAINDATA_PATH = "./CHAINDATA"

var CONFIGURATION structures.ApiConfig

var START_TIME = time.Now()

// LoadConfiguration reads CHAINDATA_PATH/configs.json, then applies environment overrides
// (a .env file in the working directory is honoured) and defaults.
func LoadConfiguration() error {

	_ = godotenv.Load()

	if path := envStr("CHAINDATA_PATH", ""); path != "" {
		CHAINDATA_PATH = path
	}

	cfg, err := ReadConfiguration(filepath.Join(CHAINDATA_PATH, "configs.json"))
	if err != nil {
		return err
	}

	ApplyEnvOverrides(&cfg)
	ApplyDefaults(&cfg)

	if err := ValidateConfiguration(cfg); err != nil {
		return err
	}

	CONFIGURATION = cfg

	return nil
}

func ReadConfiguration(path string) (structures.ApiConfig, error) {

	var cfg structures.ApiConfig

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Env-only deployments are allowed.
			return cfg, nil
		}
		return cfg, fmt.Errorf("read configs: %w", err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse configs %s: %w", path, err)
	}

	return cfg, nil
}

func ApplyEnvOverrides(cfg *structures.ApiConfig) {
	cfg.ChainId = envStr("CHAIN_ID", cfg.ChainId)
	cfg.NodeURL = envStr("NODE_URL", cfg.NodeURL)
	cfg.PointOfDistributionWS = envStr("POINT_OF_DISTRIBUTION_WS", cfg.PointOfDistributionWS)
	cfg.CacheBackend = envStr("CACHE_BACKEND", cfg.CacheBackend)
	cfg.RedisAddr = envStr("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = envStr("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = envInt("REDIS_DB", cfg.RedisDB)
	cfg.FaucetPublicKey = envStr("FAUCET_PUBLIC_KEY", cfg.FaucetPublicKey)
	cfg.FaucetPrivateKey = envStr("FAUCET_PRIVATE_KEY", cfg.FaucetPrivateKey)
	cfg.FaucetMnemonic = envStr("FAUCET_MNEMONIC", cfg.FaucetMnemonic)
	cfg.FaucetMnemonicPassword = envStr("FAUCET_MNEMONIC_PASSWORD", cfg.FaucetMnemonicPassword)
	cfg.Port = envInt("PORT", cfg.Port)
	cfg.WebSocketPort = envInt("WEBSOCKET_PORT", cfg.WebSocketPort)
}

func ApplyDefaults(cfg *structures.ApiConfig) {
	if cfg.Interface == "" {
		cfg.Interface = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 7332
	}
	if cfg.WebSocketInterface == "" {
		cfg.WebSocketInterface = cfg.Interface
	}
	if cfg.WebSocketPort == 0 {
		cfg.WebSocketPort = 9332
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "redis"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.RedisPrefix == "" {
		cfg.RedisPrefix = "modulr-api:"
	}
	if cfg.BlocksSource == "" {
		cfg.BlocksSource = "http"
	}
	if cfg.CacheTimeoutMs <= 0 {
		cfg.CacheTimeoutMs = 500
	}
	if cfg.UpstreamTimeoutMs <= 0 {
		cfg.UpstreamTimeoutMs = 5000
	}
	if cfg.ShardCount <= 0 {
		cfg.ShardCount = 1
	}
}

func ValidateConfiguration(cfg structures.ApiConfig) error {
	if cfg.ChainId == "" {
		return errors.New("CHAIN_ID is required")
	}
	if cfg.NodeURL == "" {
		return errors.New("NODE_URL is required")
	}
	if cfg.FaucetPrivateKey == "" && cfg.FaucetMnemonic == "" {
		return errors.New("either FAUCET_PRIVATE_KEY or FAUCET_MNEMONIC is required")
	}
	if cfg.FaucetPrivateKey != "" && cfg.FaucetPublicKey == "" {
		return errors.New("FAUCET_PUBLIC_KEY is required together with FAUCET_PRIVATE_KEY")
	}
	switch cfg.CacheBackend {
	case "redis", "memory":
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND: %s", cfg.CacheBackend)
	}
	switch cfg.BlocksSource {
	case "http":
	case "pod":
		if cfg.IndexerEnabled && cfg.PointOfDistributionWS == "" {
			return errors.New("POINT_OF_DISTRIBUTION_WS is required when BLOCKS_SOURCE=pod")
		}
	default:
		return fmt.Errorf("unsupported BLOCKS_SOURCE: %s", cfg.BlocksSource)
	}
	return nil
}

func envStr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

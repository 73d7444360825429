package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/modulrcloud/modulr-api/cache_pack"
	"github.com/modulrcloud/modulr-api/databases"
	"github.com/modulrcloud/modulr-api/faucet_pack"
	"github.com/modulrcloud/modulr-api/globals"
	"github.com/modulrcloud/modulr-api/handlers"
	"github.com/modulrcloud/modulr-api/http_pack"
	"github.com/modulrcloud/modulr-api/metrics"
	"github.com/modulrcloud/modulr-api/structures"
	"github.com/modulrcloud/modulr-api/threads"
	"github.com/modulrcloud/modulr-api/tps_pack"
	"github.com/modulrcloud/modulr-api/utils"
	"github.com/modulrcloud/modulr-api/websocket_pack"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func RunApi() error {

	if err := globals.LoadConfiguration(); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	cfg := globals.CONFIGURATION

	if err := prepareChaindata(); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	recorder, err := metrics.NewPrometheusRecorder(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	tier, err := openCacheTier(cfg)
	if err != nil {
		return err
	}

	utils.OnShutdown(tier.Close)

	aside := cache_pack.NewAside(tier, recorder)
	source := tps_pack.NewLevelDBBlockSource(databases.BLOCKS_INDEX)

	handlers.TPS = tps_pack.NewAggregator(aside, source, tps_pack.StaticTopology{
		Shards:    cfg.ShardCount,
		MetaShard: cfg.MetaShardId,
	}, recorder)

	signer, err := loadFaucetSigner(cfg)
	if err != nil {
		return fmt.Errorf("load faucet wallet: %w", err)
	}

	upstreamTimeout := time.Duration(cfg.UpstreamTimeoutMs) * time.Millisecond

	handlers.FAUCET = faucet_pack.NewDispenser(
		faucet_pack.NewNonceAllocator(tier, faucet_pack.NewNodeLedgerReader(cfg.NodeURL, utils.NODE_HTTP_CLIENT, upstreamTimeout), recorder),
		signer,
		faucet_pack.NewNodeSubmitter(cfg.NodeURL, utils.NODE_HTTP_CLIENT, upstreamTimeout),
		cfg.ChainId,
		recorder,
	)

	utils.LogWithTime(fmt.Sprintf("Faucet wallet is %s (chain %s)", signer.PublicKey(), cfg.ChainId), utils.GREEN_COLOR)

	//_________________________ RUN THE INDEXER _________________________

	if cfg.IndexerEnabled {

		var fetcher threads.BlockFetcher = threads.NewHTTPBlockFetcher(cfg.NodeURL, utils.NODE_HTTP_CLIENT, upstreamTimeout)

		if cfg.BlocksSource == "pod" {
			fetcher = threads.PoDBlockFetcher{}
			utils.OnShutdown(utils.ClosePoDConnection)
		}

		indexerCtx, stopIndexer := context.WithCancel(context.Background())

		utils.OnShutdown(func() error {
			stopIndexer()
			return nil
		})

		indexer := threads.NewBlocksIndexer(fetcher, source, databases.STATE, tier, recorder, cfg.IndexerStartHeight)

		go threads.BlocksIndexerThread(indexerCtx, indexer)

	} else {

		utils.LogWithTime("Indexer is disabled, TPS counters are expected to be maintained elsewhere", utils.YELLOW_COLOR)

	}

	//___________________ RUN SERVERS - WEBSOCKET AND HTTP __________________

	go websocket_pack.CreateWebsocketServer()

	http_pack.CreateHTTPServer(registry)

	return nil
}

func prepareChaindata() error {

	if info, err := os.Stat(globals.CHAINDATA_PATH); err != nil {

		if !os.IsNotExist(err) {
			return fmt.Errorf("check chaindata directory: %w", err)
		}

		if err := os.MkdirAll(globals.CHAINDATA_PATH, 0755); err != nil {
			return fmt.Errorf("create chaindata directory: %w", err)
		}

	} else if !info.IsDir() {

		return fmt.Errorf("chaindata path %s exists and is not a directory", globals.CHAINDATA_PATH)

	}

	var err error

	if databases.BLOCKS_INDEX, err = utils.OpenDb("BLOCKS_INDEX"); err != nil {
		return err
	}

	if databases.STATE, err = utils.OpenDb("STATE"); err != nil {
		return err
	}

	return nil
}

func openCacheTier(cfg structures.ApiConfig) (cache_pack.Tier, error) {

	if cfg.CacheBackend == "memory" {
		utils.LogWithTime("Using in-memory cache tier, nonce counters will not be shared between instances", utils.YELLOW_COLOR)
		return cache_pack.NewMemoryTier(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	tier, err := cache_pack.NewRedisTier(client,
		cache_pack.WithPrefix(cfg.RedisPrefix),
		cache_pack.WithTimeout(time.Duration(cfg.CacheTimeoutMs)*time.Millisecond),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	utils.LogWithTime(fmt.Sprintf("Connected to redis at %s", cfg.RedisAddr), utils.GREEN_COLOR)

	return tier, nil
}

func loadFaucetSigner(cfg structures.ApiConfig) (*faucet_pack.Ed25519Signer, error) {

	if cfg.FaucetPrivateKey != "" {
		return faucet_pack.NewEd25519Signer(cfg.FaucetPrivateKey, cfg.FaucetPublicKey)
	}

	return faucet_pack.NewEd25519SignerFromMnemonic(cfg.FaucetMnemonic, cfg.FaucetMnemonicPassword, cfg.FaucetBip44Path)
}

package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modulrcloud/modulr-api/globals"
	"github.com/modulrcloud/modulr-api/handlers"
	"github.com/modulrcloud/modulr-api/structures"
	"github.com/modulrcloud/modulr-api/tps_pack"

	"github.com/valyala/fasthttp"
)

func ServeDashboard(ctx *fasthttp.RequestCtx) {
	data, err := ReadDashboardHTML()
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.WriteString("failed to load dashboard")
		return
	}
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.Write(data)
}

type OverviewResponse struct {
	FaucetAddress string        `json:"faucetAddress"`
	ChainId       string        `json:"chainId"`
	Uptime        string        `json:"uptime"`
	CacheBackend  string        `json:"cacheBackend"`
	BlocksSource  string        `json:"blocksSource"`
	ApiConfig     ApiConfigSafe `json:"apiConfig"`
}

// ApiConfigSafe is the part of the configuration that may be shown publicly.
type ApiConfigSafe struct {
	Interface   string `json:"interface"`
	Port        int    `json:"port"`
	WsInterface string `json:"wsInterface"`
	WsPort      int    `json:"wsPort"`
	ShardCount  int    `json:"shardCount"`
	MetaShardId int    `json:"metaShardId"`
}

func ServeOverview(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.SetContentType("application/json")

	resp := OverviewResponse{
		ChainId:      globals.CONFIGURATION.ChainId,
		Uptime:       time.Since(globals.START_TIME).Truncate(time.Second).String(),
		CacheBackend: globals.CONFIGURATION.CacheBackend,
		BlocksSource: globals.CONFIGURATION.BlocksSource,
		ApiConfig: ApiConfigSafe{
			Interface:   globals.CONFIGURATION.Interface,
			Port:        globals.CONFIGURATION.Port,
			WsInterface: globals.CONFIGURATION.WebSocketInterface,
			WsPort:      globals.CONFIGURATION.WebSocketPort,
			ShardCount:  globals.CONFIGURATION.ShardCount,
			MetaShardId: globals.CONFIGURATION.MetaShardId,
		},
	}

	if handlers.FAUCET != nil {
		resp.FaucetAddress = handlers.FAUCET.FaucetAddress()
	}

	writeJSON(ctx, resp)
}

type IndexerResponse struct {
	Enabled    bool                         `json:"enabled"`
	Running    bool                         `json:"running"`
	Statistics structures.IndexerStatistics `json:"statistics"`
}

func ServeIndexer(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.SetContentType("application/json")

	statistics, running := handlers.IndexerSnapshot()

	writeJSON(ctx, IndexerResponse{
		Enabled:    globals.CONFIGURATION.IndexerEnabled,
		Running:    running,
		Statistics: statistics,
	})
}

type TpsSummaryResponse struct {
	Latest           structures.TpsPoint            `json:"latest"`
	Max              structures.TpsPoint            `json:"max"`
	MaxByInterval    map[string]structures.TpsPoint `json:"maxByInterval"`
	Current          map[string]structures.TpsPoint `json:"current"`
	TransactionCount int64                          `json:"transactionCount"`
}

// ServeTpsSummary gathers every single-point TPS query for the dashboard in one request.
func ServeTpsSummary(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.SetContentType("application/json")

	if handlers.TPS == nil {
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		ctx.WriteString(`{"err":"TPS aggregator is not ready"}`)
		return
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp := TpsSummaryResponse{
		Latest:           handlers.TPS.Latest(reqCtx),
		Max:              handlers.TPS.Max(reqCtx),
		MaxByInterval:    make(map[string]structures.TpsPoint),
		Current:          make(map[string]structures.TpsPoint),
		TransactionCount: handlers.TPS.TransactionCount(reqCtx),
	}

	for _, interval := range tps_pack.Intervals() {
		resp.MaxByInterval[interval.String()] = handlers.TPS.MaxByInterval(reqCtx, interval)
	}
	for _, frequency := range tps_pack.Frequencies() {
		resp.Current[frequency.String()] = handlers.TPS.Current(reqCtx, frequency)
	}

	writeJSON(ctx, resp)
}

func writeJSON(ctx *fasthttp.RequestCtx, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.WriteString(`{"err":"marshal failed"}`)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.Write(data)
}

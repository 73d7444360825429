package http_pack

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modulrcloud/modulr-api/cache_pack"
	"github.com/modulrcloud/modulr-api/cryptography"
	"github.com/modulrcloud/modulr-api/faucet_pack"
	"github.com/modulrcloud/modulr-api/handlers"
	"github.com/modulrcloud/modulr-api/structures"
	"github.com/modulrcloud/modulr-api/tps_pack"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/valyala/fasthttp"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art"

type staticLedger struct{ nonce uint64 }

func (l staticLedger) GetAccount(context.Context, string) (*structures.Account, error) {
	return &structures.Account{Nonce: l.nonce}, nil
}

type scriptedSubmitter struct{ reject string }

func (s scriptedSubmitter) Submit(_ context.Context, tx structures.Transaction) (structures.SubmissionResult, error) {
	if s.reject != "" {
		return structures.SubmissionRejected(s.reject), nil
	}
	return structures.SubmissionAccepted(tx.Hash()), nil
}

func serve(t *testing.T, handler fasthttp.RequestHandler, method, uri, body string) (int, []byte) {
	t.Helper()

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}

	handler(&ctx)

	return ctx.Response.StatusCode(), append([]byte(nil), ctx.Response.Body()...)
}

func errOf(t *testing.T, body []byte) string {
	t.Helper()

	var reply struct {
		Err string `json:"err"`
	}
	require.NoError(t, json.Unmarshal(body, &reply))
	return reply.Err
}

func installFaucet(t *testing.T, submitter faucet_pack.Submitter) {
	t.Helper()

	signer, err := faucet_pack.NewEd25519SignerFromMnemonic(testMnemonic, "", nil)
	require.NoError(t, err)

	previous := handlers.FAUCET
	handlers.FAUCET = faucet_pack.NewDispenser(
		faucet_pack.NewNonceAllocator(cache_pack.NewMemoryTier(), staticLedger{nonce: 7}, nil),
		signer,
		submitter,
		"test-chain",
		nil,
	)
	t.Cleanup(func() { handlers.FAUCET = previous })
}

func installAggregator(t *testing.T) {
	t.Helper()

	db, err := leveldb.OpenFile(filepath.Join(t.TempDir(), "BLOCKS_INDEX"), nil)
	if err != nil {
		t.Fatalf("open leveldb: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	previous := handlers.TPS
	handlers.TPS = tps_pack.NewAggregator(
		cache_pack.NewAside(cache_pack.NewMemoryTier(), nil),
		tps_pack.NewLevelDBBlockSource(db),
		tps_pack.StaticTopology{Shards: 1},
		nil,
	).WithClock(func() time.Time { return time.Unix(1_700_000_125, 0) })
	t.Cleanup(func() { handlers.TPS = previous })
}

func recipient(t *testing.T) string {
	t.Helper()

	box, err := cryptography.GenerateKeyPair(testMnemonic, "", []uint32{44, 7337, 1, 0})
	require.NoError(t, err)
	return box.Pub
}

func TestFaucetRoute(t *testing.T) {
	installFaucet(t, scriptedSubmitter{})
	handler := CreateRouter(nil)

	status, body := serve(t, handler, fasthttp.MethodPost, "/faucet", `{"address":"`+recipient(t)+`"}`)
	require.Equal(t, fasthttp.StatusOK, status, string(body))

	var reply struct {
		TxHash string `json:"txHash"`
	}
	require.NoError(t, json.Unmarshal(body, &reply))
	assert.Len(t, reply.TxHash, 64)

	status, body = serve(t, handler, fasthttp.MethodPost, "/faucet", `{"address":"not-a-key"}`)
	assert.Equal(t, fasthttp.StatusNotAcceptable, status)
	assert.Equal(t, "Invalid address", errOf(t, body))

	status, _ = serve(t, handler, fasthttp.MethodPost, "/faucet", `{`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
}

func TestFaucetRouteReturnsRejectionReason(t *testing.T) {
	installFaucet(t, scriptedSubmitter{reject: "Insufficient balance"})

	status, body := serve(t, CreateRouter(nil), fasthttp.MethodPost, "/faucet", `{"address":"`+recipient(t)+`"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Equal(t, "Insufficient balance", errOf(t, body))
}

func TestTpsRoutes(t *testing.T) {
	installAggregator(t)
	handler := CreateRouter(nil)

	status, body := serve(t, handler, fasthttp.MethodGet, "/tps/latest", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.JSONEq(t, `{"timestamp":0,"tps":0}`, string(body))

	status, body = serve(t, handler, fasthttp.MethodGet, "/tps/history/10m", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var series []structures.TpsPoint
	require.NoError(t, json.Unmarshal(body, &series))
	assert.Len(t, series, tps_pack.Interval10m.Points())

	status, body = serve(t, handler, fasthttp.MethodGet, "/tps/current/5s", "")
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Equal(t, "Unknown frequency", errOf(t, body))

	status, body = serve(t, handler, fasthttp.MethodGet, "/tps/max/forever", "")
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Equal(t, "Unknown interval", errOf(t, body))

	status, body = serve(t, handler, fasthttp.MethodGet, "/transactions/count", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, "0", strings.TrimSpace(string(body)))
}

func TestMetricsRoute(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "probe_total", Help: "probe"})
	registry.MustRegister(counter)
	counter.Inc()

	status, body := serve(t, CreateRouter(registry), fasthttp.MethodGet, "/metrics", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Contains(t, string(body), "probe_total 1")
}

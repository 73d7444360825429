// Package metrics provides the counters recorded by the faucet, the cache tier and the indexer.
//
// Components depend on the Recorder interface only. NoOpRecorder is the default so that hot
// paths never check for a nil recorder; PrometheusRecorder is wired by the server.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	CacheLookups    = "cache_lookups_total"
	FaucetDispenses = "faucet_dispenses_total"
	NonceSeeds      = "nonce_seeds_total"
	IndexedBlocks   = "indexer_blocks_total"
	DegradedQueries = "tps_degraded_queries_total"
)

type Recorder interface {
	Add(name string, value float64, tags map[string]string)
}

type NoOpRecorder struct{}

func (NoOpRecorder) Add(name string, value float64, tags map[string]string) {}

var catalogue = map[string]struct {
	help   string
	labels []string
}{
	CacheLookups:    {help: "Cache-aside lookups by key and result (hit, miss, error).", labels: []string{"key", "result"}},
	FaucetDispenses: {help: "Faucet dispense calls by outcome.", labels: []string{"outcome"}},
	NonceSeeds:      {help: "Nonce counters seeded from the ledger, by whether the seed write won.", labels: []string{"won"}},
	IndexedBlocks:   {help: "Blocks processed by the indexer.", labels: nil},
	DegradedQueries: {help: "TPS queries answered with a zero value after a collaborator failure.", labels: []string{"query"}},
}

// PrometheusRecorder maps the recorder catalogue onto prometheus counters.
type PrometheusRecorder struct {
	mu       sync.Mutex
	counters map[string]*prometheus.CounterVec
}

func NewPrometheusRecorder(registerer prometheus.Registerer) (*PrometheusRecorder, error) {

	recorder := &PrometheusRecorder{counters: make(map[string]*prometheus.CounterVec, len(catalogue))}

	for name, def := range catalogue {
		counter := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "modulr_api",
			Name:      name,
			Help:      def.help,
		}, def.labels)

		if err := registerer.Register(counter); err != nil {
			return nil, err
		}

		recorder.counters[name] = counter
	}

	return recorder, nil
}

func (r *PrometheusRecorder) Add(name string, value float64, tags map[string]string) {

	r.mu.Lock()
	counter, ok := r.counters[name]
	r.mu.Unlock()

	if !ok {
		return
	}

	labels := prometheus.Labels{}
	for _, label := range catalogue[name].labels {
		labels[label] = tags[label]
	}

	counter.With(labels).Add(value)
}

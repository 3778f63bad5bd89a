package metrics

import (
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/prometheus/client_golang/prometheus"
)

// Mining records the outcome of mining operations as prometheus metrics.
// It is handed to the worker as its recorder.
type Mining struct {
	blocks     prometheus.Counter
	trans      prometheus.Counter
	failures   *prometheus.CounterVec
	duration   prometheus.Histogram
	difficulty prometheus.Gauge
	height     prometheus.Gauge
	mempool    prometheus.Gauge
}

// NewMining constructs the mining metrics and registers them with the
// specified registerer.
func NewMining(reg prometheus.Registerer) (*Mining, error) {
	m := Mining{
		blocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "node",
			Subsystem: "mining",
			Name:      "blocks_total",
			Help:      "Number of blocks mined and added to the chain.",
		}),
		trans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "node",
			Subsystem: "mining",
			Name:      "transactions_total",
			Help:      "Number of transactions included in mined blocks.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "node",
			Subsystem: "mining",
			Name:      "failures_total",
			Help:      "Number of mining operations that did not produce a block.",
		}, []string{"reason"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "node",
			Subsystem: "mining",
			Name:      "duration_seconds",
			Help:      "Time spent mining a block.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		difficulty: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "node",
			Subsystem: "mining",
			Name:      "difficulty",
			Help:      "Difficulty of the last mined block.",
		}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "node",
			Subsystem: "chain",
			Name:      "height",
			Help:      "Number of blocks in the chain including genesis.",
		}),
		mempool: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "node",
			Subsystem: "mempool",
			Name:      "transactions",
			Help:      "Number of transactions waiting to be mined.",
		}),
	}

	collectors := []prometheus.Collector{m.blocks, m.trans, m.failures, m.duration, m.difficulty, m.height, m.mempool}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &m, nil
}

// BlockMined records a block that was mined and added to the chain.
func (m *Mining) BlockMined(block database.Block, duration time.Duration) {
	m.blocks.Inc()
	m.trans.Add(float64(len(block.Values())))
	m.duration.Observe(duration.Seconds())
	m.difficulty.Set(float64(block.Header.Difficulty))
}

// MiningFailed records a mining operation that did not produce a block.
func (m *Mining) MiningFailed(reason string) {
	m.failures.WithLabelValues(reason).Inc()
}

// ChainUpdated records the chain height and mempool size.
func (m *Mining) ChainUpdated(height uint64, mempool int) {
	m.height.Set(float64(height))
	m.mempool.Set(float64(mempool))
}

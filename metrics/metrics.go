package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "rootchain"

	// Status label values
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds the collectors of a rootchain node. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	txs                *prometheus.CounterVec
	checkpoints        prometheus.Counter
	deposits           prometheus.Counter
	height             prometheus.Gauge
	commits            prometheus.Counter
	relayCounter       prometheus.Gauge
	outboxPublished    prometheus.Counter
	outboxErrors       prometheus.Counter
	outboxCursor       prometheus.Gauge
	rpcCalls           *prometheus.CounterVec
	checkpointCacheHit *prometheus.CounterVec
}

// New creates a new Metrics instance and registers all collectors with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		txs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ledger",
			Name:      "txs_total",
			Help:      "Executed transactions by type and status",
		}, []string{"type", "status"}),
		checkpoints: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ledger",
			Name:      "checkpoints_total",
			Help:      "Accepted checkpoints",
		}),
		deposits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ledger",
			Name:      "deposits_total",
			Help:      "Recorded deposits",
		}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "ledger",
			Name:      "height",
			Help:      "Last committed state height",
		}),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ledger",
			Name:      "commits_total",
			Help:      "State commits",
		}),
		relayCounter: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "relay",
			Name:      "counter",
			Help:      "Sequence id of the last relay message",
		}),
		outboxPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "outbox",
			Name:      "published_total",
			Help:      "Relay messages published off-system",
		}),
		outboxErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "outbox",
			Name:      "errors_total",
			Help:      "Failed publish attempts",
		}),
		outboxCursor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "outbox",
			Name:      "cursor",
			Help:      "Id of the last published relay message",
		}),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "RPC calls by method and status",
		}, []string{"method", "status"}),
		checkpointCacheHit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ledger",
			Name:      "checkpoint_cache_total",
			Help:      "Checkpoint cache lookups by result",
		}, []string{"result"}),
	}

	collectors := []prometheus.Collector{
		m.txs, m.checkpoints, m.deposits, m.height, m.commits, m.relayCounter,
		m.outboxPublished, m.outboxErrors, m.outboxCursor, m.rpcCalls, m.checkpointCacheHit,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func status(ok bool) string {
	if ok {
		return StatusSuccess
	}
	return StatusError
}

// IncTx counts an executed transaction
func (m *Metrics) IncTx(txType string, ok bool) {
	if m == nil {
		return
	}
	m.txs.WithLabelValues(txType, status(ok)).Inc()
}

func (m *Metrics) IncCheckpoints() {
	if m == nil {
		return
	}
	m.checkpoints.Inc()
}

func (m *Metrics) AddDeposits(n int) {
	if m == nil {
		return
	}
	m.deposits.Add(float64(n))
}

// SetCommitted records a commit at height
func (m *Metrics) SetCommitted(height uint64, relayCounter uint64) {
	if m == nil {
		return
	}
	m.commits.Inc()
	m.height.Set(float64(height))
	m.relayCounter.Set(float64(relayCounter))
}

func (m *Metrics) IncPublished(cursor uint64) {
	if m == nil {
		return
	}
	m.outboxPublished.Inc()
	m.outboxCursor.Set(float64(cursor))
}

func (m *Metrics) IncPublishErrors() {
	if m == nil {
		return
	}
	m.outboxErrors.Inc()
}

func (m *Metrics) IncRPCCall(method string, ok bool) {
	if m == nil {
		return
	}
	m.rpcCalls.WithLabelValues(method, status(ok)).Inc()
}

func (m *Metrics) IncCheckpointCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.checkpointCacheHit.WithLabelValues("hit").Inc()
	} else {
		m.checkpointCacheHit.WithLabelValues("miss").Inc()
	}
}

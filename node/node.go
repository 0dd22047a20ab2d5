package node

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/thetatoken/rootchain/common"
	ld "github.com/thetatoken/rootchain/ledger"
	"github.com/thetatoken/rootchain/metrics"
	"github.com/thetatoken/rootchain/outbox"
	"github.com/thetatoken/rootchain/rpc"
	"github.com/thetatoken/rootchain/store/database"
	"github.com/thetatoken/rootchain/store/database/backend"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "node"})

type Node struct {
	DB      database.Database
	Ledger  *ld.Ledger
	Metrics *metrics.Metrics
	RPC     *rpc.RootchainRPCServer
	Outbox  *outbox.Dispatcher

	registry       *prometheus.Registry
	publisher      outbox.Publisher
	commitInterval time.Duration

	// Life cycle
	wg     *sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type Params struct {
	Genesis  *ld.Genesis
	DB       database.Database
	Registry *prometheus.Registry

	// Publisher overrides the outbox publisher chosen from the config
	Publisher outbox.Publisher
}

// OpenDatabase opens the configured storage backend under dataPath. Leveldb
// gauges are registered with reg when it is not nil.
func OpenDatabase(backendName, dataPath string, cacheMB int, reg prometheus.Registerer) (database.Database, error) {
	switch backendName {
	case "leveldb":
		db, err := backend.NewLDBDatabase(path.Join(dataPath, "db", "main"), cacheMB, 0)
		if err != nil {
			return nil, err
		}
		if reg != nil {
			db.Meter(reg, metrics.Namespace)
		}
		return db, nil
	case "badger":
		return backend.NewBadgerDatabase(path.Join(dataPath, "db", "badger"))
	case "memdb":
		return backend.NewMemDatabase(), nil
	}
	return nil, errors.Errorf("unknown storage backend %q", backendName)
}

func NewNode(params *Params) (*Node, error) {
	var m *metrics.Metrics
	if params.Registry != nil {
		var err error
		if m, err = metrics.New(params.Registry); err != nil {
			return nil, errors.Wrap(err, "failed to register metrics")
		}
	}

	ledger, err := ld.NewLedger(params.Genesis, params.DB, m, viper.GetInt(common.CfgLedgerCheckpointCacheSize))
	if err != nil {
		return nil, err
	}

	node := &Node{
		DB:             params.DB,
		Ledger:         ledger,
		Metrics:        m,
		registry:       params.Registry,
		publisher:      params.Publisher,
		commitInterval: viper.GetDuration(common.CfgLedgerCommitIntervalMs) * time.Millisecond,
		wg:             &sync.WaitGroup{},
	}
	if node.commitInterval <= 0 {
		node.commitInterval = time.Second
	}

	if viper.GetBool(common.CfgRPCEnabled) {
		var gatherer prometheus.Gatherer
		if params.Registry != nil {
			gatherer = params.Registry
		}
		node.RPC = rpc.NewRootchainRPCServer(ledger, m, gatherer)
	}

	if viper.GetBool(common.CfgOutboxEnabled) {
		config := outbox.Config{
			Topic:        viper.GetString(common.CfgOutboxTopic),
			PollInterval: viper.GetDuration(common.CfgOutboxPollIntervalMs) * time.Millisecond,
			BatchSize:    viper.GetInt(common.CfgOutboxBatchSize),
		}
		node.Outbox = outbox.NewDispatcher(ledger, nil, params.DB, config, m)
	}

	return node, nil
}

// Start starts sub components and kick off the main loop.
func (n *Node) Start(ctx context.Context) error {
	c, cancel := context.WithCancel(ctx)
	n.ctx = c
	n.cancel = cancel

	if n.registry != nil {
		if err := metrics.Start(n.ctx, n.registry); err != nil {
			logger.Warnf("Failed to start process metrics: %v", err)
		}
	}

	if n.RPC != nil {
		if err := n.RPC.Start(n.ctx); err != nil {
			cancel()
			return errors.Wrap(err, "failed to start RPC server")
		}
	}

	if n.Outbox != nil {
		publisher, err := n.newPublisher()
		if err != nil {
			cancel()
			return err
		}
		n.Outbox.SetPublisher(publisher)
		if err := n.Outbox.Start(n.ctx); err != nil {
			cancel()
			return err
		}
	}

	n.wg.Add(1)
	go n.mainLoop()
	return nil
}

func (n *Node) newPublisher() (outbox.Publisher, error) {
	if n.publisher != nil {
		return n.publisher, nil
	}
	brokers := viper.GetString(common.CfgOutboxKafkaBrokers)
	if brokers == "" {
		logger.Info("No Kafka brokers configured, relay messages are logged only")
		return outbox.LogPublisher{}, nil
	}
	publisher, err := outbox.NewKafkaPublisher(n.ctx, outbox.KafkaConfig(brokers))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Kafka publisher")
	}
	return publisher, nil
}

// mainLoop persists executed transactions at the commit interval.
func (n *Node) mainLoop() {
	defer n.wg.Done()

	ticker := time.NewTicker(n.commitInterval)
	defer ticker.Stop()

	for {
		select {
		case <-n.ctx.Done():
			n.commit()
			return
		case <-ticker.C:
			n.commit()
		}
	}
}

func (n *Node) commit() {
	if !n.Ledger.HasPending() {
		return
	}
	hash := n.Ledger.Commit()
	logger.Debugf("Committed state %v", hash.Hex())
}

// Stop notifies all sub components to stop without blocking.
func (n *Node) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
}

// Wait blocks until all sub components stop.
func (n *Node) Wait() {
	n.wg.Wait()
	if n.RPC != nil {
		n.RPC.Wait()
	}
	if n.Outbox != nil {
		n.Outbox.Wait()
	}
}

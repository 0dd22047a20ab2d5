package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/metrics"
	"github.com/thetatoken/rootchain/store"
	"github.com/thetatoken/rootchain/store/database"
	"github.com/thetatoken/rootchain/store/database/backend"
	"github.com/thetatoken/rootchain/store/kvstore"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "outbox"})

const tablePrefix = "ob/"

var cursorKey = common.Bytes("cursor")

// Source supplies committed relay messages in id order
type Source interface {
	GetRelayMessages(after uint64, limit int) []*types.RelayMessage
}

// Config tunes the dispatcher
type Config struct {
	Topic        string
	PollInterval time.Duration
	BatchSize    int
}

//
// Dispatcher publishes committed relay messages. It keeps the id of the last
// published message in its own table, and moves it only after a successful
// publish, so every message is delivered at least once.
//
type Dispatcher struct {
	source    Source
	publisher Publisher
	cursor    store.Store
	config    Config
	metrics   *metrics.Metrics

	// Life cycle
	wg     *sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewDispatcher creates a dispatcher that keeps its cursor in db
func NewDispatcher(source Source, publisher Publisher, db database.Database, config Config, m *metrics.Metrics) *Dispatcher {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 500 * time.Millisecond
	}
	return &Dispatcher{
		source:    source,
		publisher: publisher,
		cursor:    kvstore.NewKVStore(backend.NewTable(db, tablePrefix)),
		config:    config,
		metrics:   m,
		wg:        &sync.WaitGroup{},
	}
}

// Cursor returns the id of the last published message
func (d *Dispatcher) Cursor() uint64 {
	var cursor uint64
	err := d.cursor.Get(cursorKey, &cursor)
	if err == store.ErrKeyNotFound {
		return 0
	}
	if err != nil {
		logger.Panicf("Failed to read outbox cursor: %v", err)
	}
	return cursor
}

func (d *Dispatcher) setCursor(cursor uint64) error {
	return d.cursor.Put(cursorKey, cursor)
}

// DispatchPending publishes up to one batch of messages after the cursor. It
// stops at the first failure and returns the number published.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	cursor := d.Cursor()
	msgs := d.source.GetRelayMessages(cursor, d.config.BatchSize)
	for i, m := range msgs {
		msg, err := NewMessage(d.config.Topic, m)
		if err != nil {
			return i, errors.Wrapf(err, "failed to encode relay message %v", m.ID)
		}
		if err := d.publisher.Publish(ctx, msg); err != nil {
			d.metrics.IncPublishErrors()
			return i, errors.Wrapf(err, "failed to publish relay message %v", m.ID)
		}
		if err := d.setCursor(m.ID); err != nil {
			return i, errors.Wrapf(err, "failed to store outbox cursor %v", m.ID)
		}
		d.metrics.IncPublished(m.ID)
	}
	return len(msgs), nil
}

// SetPublisher replaces the publisher. It must be called before Start.
func (d *Dispatcher) SetPublisher(publisher Publisher) {
	d.publisher = publisher
}

// Start starts the polling loop
func (d *Dispatcher) Start(ctx context.Context) error {
	if d.publisher == nil {
		return errors.New("outbox dispatcher has no publisher")
	}
	c, cancel := context.WithCancel(ctx)
	d.ctx = c
	d.cancel = cancel

	d.wg.Add(1)
	go d.mainLoop()
	return nil
}

// Stop is called when the dispatcher stops
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
}

// Wait suspends the caller goroutine
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) mainLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.ctx.Done():
			d.publisher.Close(context.Background())
			return
		case <-ticker.C:
			n, err := d.DispatchPending(d.ctx)
			if err != nil {
				logger.Warnf("Outbox dispatch stopped after %v messages: %v", n, err)
			} else if n > 0 {
				logger.Debugf("Published %v relay messages, cursor %v", n, d.Cursor())
			}
		}
	}
}

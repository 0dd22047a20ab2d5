package outbox

import (
	"context"
	"encoding/json"

	"github.com/thetatoken/rootchain/ledger/types"
)

// Message is one relay message ready for an off-system queue
type Message struct {
	Topic string
	Key   []byte
	Value []byte
}

// Publisher delivers messages to an off-system queue.
type Publisher interface {
	// Publish blocks until the message is delivered or fails.
	Publish(ctx context.Context, msg Message) error

	// Close flushes in-flight messages and releases resources.
	Close(ctx context.Context)
}

// NewMessage encodes a relay message for topic. The key is the receiver, so
// messages for one receiver stay in order on a partitioned queue.
func NewMessage(topic string, m *types.RelayMessage) (Message, error) {
	value, err := json.Marshal(types.NewRelayMessageJSON(m))
	if err != nil {
		return Message{}, err
	}
	return Message{
		Topic: topic,
		Key:   m.Receiver.Bytes(),
		Value: value,
	}, nil
}

// LogPublisher logs messages instead of publishing them
type LogPublisher struct{}

var _ Publisher = LogPublisher{}

func (LogPublisher) Publish(ctx context.Context, msg Message) error {
	logger.Infof("Relay message on %v: %s", msg.Topic, msg.Value)
	return nil
}

func (LogPublisher) Close(ctx context.Context) {}

package outbox

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/pkg/errors"
)

const flushTimeoutMs = 10000

// KafkaPublisher is a synchronous Kafka producer. Publish blocks until the
// delivery report arrives.
//
// Close must be called to stop the event loop and flush pending messages.
type KafkaPublisher struct {
	producer   *kafka.Producer
	errCh      chan error
	eventsDone chan struct{}
	closedCh   chan struct{}
	once       sync.Once
}

var _ Publisher = (*KafkaPublisher)(nil)

// KafkaConfig returns the producer config for the given bootstrap servers
func KafkaConfig(brokers string) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"acks":               "all",
		"enable.idempotence": true,
		"client.id":          "rootchain-outbox",
	}
}

// NewKafkaPublisher creates a Kafka producer. ctx bounds the lifetime of the
// event loop.
func NewKafkaPublisher(ctx context.Context, conf *kafka.ConfigMap) (*KafkaPublisher, error) {
	p, err := kafka.NewProducer(conf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create kafka producer")
	}
	kp := &KafkaPublisher{
		producer:   p,
		errCh:      make(chan error, 1),
		eventsDone: make(chan struct{}),
		closedCh:   make(chan struct{}),
	}
	go kp.monitorProducerEvents(ctx)
	return kp, nil
}

// Publish produces msg and waits for its delivery report or ctx. A message
// whose wait was cancelled may still be delivered.
func (kp *KafkaPublisher) Publish(ctx context.Context, msg Message) error {
	deliveryCh := make(chan kafka.Event, 1)

	topic := msg.Topic
	kMsg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: kafka.PartitionAny,
		},
		Key:   msg.Key,
		Value: msg.Value,
	}
	if err := kp.produceWithRetry(ctx, kMsg, deliveryCh); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-deliveryCh:
		return handleDeliveryEvent(kMsg, ev)
	}
}

// Errors returns a channel that receives at most one fatal producer error
func (kp *KafkaPublisher) Errors() <-chan error {
	return kp.errCh
}

// Close stops the event loop and flushes pending messages. Cancelling ctx
// aborts the flush.
func (kp *KafkaPublisher) Close(ctx context.Context) {
	kp.once.Do(func() {
		close(kp.closedCh)
		<-kp.eventsDone

		for kp.producer.Flush(flushTimeoutMs) > 0 {
			logger.Warn("Kafka producer queue not flushed, retrying")
			select {
			case <-ctx.Done():
				kp.producer.Close()
				return
			default:
			}
		}
		kp.producer.Close()
		logger.Info("Kafka publisher closed")
	})
}

func (kp *KafkaPublisher) produceWithRetry(ctx context.Context, msg *kafka.Message, deliveryCh chan kafka.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := kp.producer.Produce(msg, deliveryCh)
		if err == nil {
			return nil
		}
		kafkaErr, ok := err.(kafka.Error)
		if !ok || kafkaErr.Code() != kafka.ErrQueueFull {
			return errors.Wrap(err, "failed to produce")
		}
		logger.Warn("Kafka producer queue full, retrying")
		time.Sleep(time.Second)
	}
}

func (kp *KafkaPublisher) monitorProducerEvents(ctx context.Context) {
	defer close(kp.eventsDone)
	for {
		select {
		case <-ctx.Done():
			return
		case <-kp.closedCh:
			return
		case ev, ok := <-kp.producer.Events():
			if !ok {
				kp.reportFatal(errors.New("kafka producer event channel closed"))
				return
			}
			switch e := ev.(type) {
			case kafka.Error:
				if e.IsFatal() || e.Code() == kafka.ErrAllBrokersDown {
					kp.reportFatal(errors.Wrapf(e, "fatal kafka error %v", e.Code()))
					return
				}
				logger.Warnf("Ignoring kafka error %v: %v", e.Code(), e)
			default:
				logger.Debugf("Kafka event: %v", e)
			}
		}
	}
}

func (kp *KafkaPublisher) reportFatal(err error) {
	select {
	case kp.errCh <- err:
	default:
		logger.Warnf("Dropped kafka error: %v", err)
	}
}

func handleDeliveryEvent(msg *kafka.Message, ev kafka.Event) error {
	switch e := ev.(type) {
	case *kafka.Message:
		if err := e.TopicPartition.Error; err != nil {
			return errors.Wrap(err, "delivery failed")
		}
		if !bytes.Equal(e.Value, msg.Value) {
			return errors.New("delivery report does not match the published message")
		}
		logger.Debugf("Delivered to %v [%v] at offset %v",
			*msg.TopicPartition.Topic, e.TopicPartition.Partition, e.TopicPartition.Offset)
		return nil
	case kafka.Error:
		return errors.Wrapf(e, "kafka error %v", e.Code())
	default:
		return errors.Errorf("unexpected delivery event %T", ev)
	}
}

package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/tradepost/marketplace-automation/pkg/log"
)

// channelToTopicAndKey converts a "{stream}:{key}" channel to a Kafka topic
// and message key.
//
//	"payments:order_123" → topic: "payments", key: "order_123"
func channelToTopicAndKey(channel string) (topic, key string, err error) {
	parts := strings.SplitN(channel, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid channel format: %s", channel)
	}
	return parts[0], parts[1], nil
}

// producer is the part of *kafka.Producer the publisher drives.
type producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Events() chan kafka.Event
	Flush(timeoutMs int) int
	Close()
}

// KafkaPublisher implements Publisher using Apache Kafka. Publish returns
// only after the broker has acknowledged or rejected the message.
type KafkaPublisher struct {
	producer producer
	doneCh   chan struct{}
}

// NewKafkaPublisher creates a new Kafka-based publisher.
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"acks":              "all",
		"linger.ms":         5,
		"compression.type":  "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	kp := newKafkaPublisher(p)

	if err := ensureTopics(p, cfg.Partitions, StreamPayments); err != nil {
		l := log.L()
		l.Warn().Err(err).Msg("failed to ensure kafka topics (may already exist)")
	}

	return kp, nil
}

func newKafkaPublisher(p producer) *KafkaPublisher {
	kp := &KafkaPublisher{
		producer: p,
		doneCh:   make(chan struct{}),
	}
	go kp.eventHandler()
	return kp
}

// ensureTopics creates the given topics if they don't exist.
func ensureTopics(p *kafka.Producer, partitions int, topics ...string) error {
	admin, err := kafka.NewAdminClientFromProducer(p)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	if partitions <= 0 {
		partitions = 4
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	specs := make([]kafka.TopicSpecification, 0, len(topics))
	for _, t := range topics {
		specs = append(specs, kafka.TopicSpecification{
			Topic:             t,
			NumPartitions:     partitions,
			ReplicationFactor: 1,
		})
	}

	results, err := admin.CreateTopics(ctx, specs)
	if err != nil {
		return fmt.Errorf("failed to create topics: %w", err)
	}

	for _, r := range results {
		if r.Error.Code() != kafka.ErrNoError && r.Error.Code() != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %v", r.Topic, r.Error)
		}
	}

	return nil
}

// eventHandler logs client-level errors. Delivery reports normally go to
// the per-message channel in Publish and only reach here for messages
// produced without one.
func (k *KafkaPublisher) eventHandler() {
	l := log.L()
	for e := range k.producer.Events() {
		switch ev := e.(type) {
		case kafka.Error:
			l.Error().Err(ev).Msg("kafka client error")
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				l.Error().Err(ev.TopicPartition.Error).Str("key", string(ev.Key)).Msg("kafka delivery failed")
			}
		}
	}
	close(k.doneCh)
}

// Publish publishes an event to the topic derived from channel.
func (k *KafkaPublisher) Publish(ctx context.Context, channel string, event *Event) error {
	topic, key, err := channelToTopicAndKey(channel)
	if err != nil {
		return fmt.Errorf("failed to parse channel: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	delivery := make(chan kafka.Event, 1)
	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, delivery)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("waiting for kafka delivery: %w", ctx.Err())
	case e := <-delivery:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected kafka delivery event: %v", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("kafka delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	}
}

// Close flushes pending messages and closes the producer.
func (k *KafkaPublisher) Close() error {
	k.producer.Flush(5000)
	k.producer.Close()
	<-k.doneCh
	return nil
}

package pubsub

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// fakeProducer records produced messages and answers on the delivery
// channel with whatever report returns. A nil report never answers.
type fakeProducer struct {
	mu         sync.Mutex
	produced   []*kafka.Message
	produceErr error
	report     func(*kafka.Message) kafka.Event
	events     chan kafka.Event
}

func newFakeProducer() *fakeProducer {
	return &fakeProducer{events: make(chan kafka.Event)}
}

func (f *fakeProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	f.mu.Lock()
	f.produced = append(f.produced, msg)
	f.mu.Unlock()

	if f.produceErr != nil {
		return f.produceErr
	}
	if f.report != nil {
		go func() { deliveryChan <- f.report(msg) }()
	}
	return nil
}

func (f *fakeProducer) Events() chan kafka.Event { return f.events }
func (f *fakeProducer) Flush(int) int            { return 0 }
func (f *fakeProducer) Close()                   { close(f.events) }

func delivered(msg *kafka.Message) kafka.Event {
	out := *msg
	out.TopicPartition.Partition = 2
	out.TopicPartition.Offset = 41
	return &out
}

func rejected(msg *kafka.Message) kafka.Event {
	out := *msg
	out.TopicPartition.Error = kafka.NewError(kafka.ErrMsgTimedOut, "Local: Message timed out", false)
	return &out
}

func TestKafkaPublisher_Publish(t *testing.T) {
	event, err := NewEvent("payment.captured", "order_1", PaymentEventPayload{PaymentID: "pay_1"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		produceErr error
		report     func(*kafka.Message) kafka.Event
		timeout    time.Duration
		wantErr    string
		wantCtxErr bool
	}{
		{name: "acknowledged", report: delivered},
		{name: "broker rejects", report: rejected, wantErr: "kafka delivery failed"},
		{name: "queue full", produceErr: kafka.NewError(kafka.ErrQueueFull, "Local: Queue full", false), wantErr: "failed to produce message"},
		{name: "no report before deadline", timeout: 20 * time.Millisecond, wantCtxErr: true},
		{name: "unexpected event", report: func(*kafka.Message) kafka.Event {
			return kafka.NewError(kafka.ErrAllBrokersDown, "down", false)
		}, wantErr: "unexpected kafka delivery event"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := newFakeProducer()
			fp.produceErr = tt.produceErr
			fp.report = tt.report

			var pub Publisher = newKafkaPublisher(fp)
			defer pub.Close()

			ctx := context.Background()
			if tt.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tt.timeout)
				defer cancel()
			}

			err := pub.Publish(ctx, PaymentEventsChannel("order_1"), event)
			switch {
			case tt.wantCtxErr:
				if !errors.Is(err, context.DeadlineExceeded) {
					t.Fatalf("Publish() error = %v, want deadline exceeded", err)
				}
			case tt.wantErr != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Publish() error = %v, want %q", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Fatalf("Publish() error = %v", err)
				}
			}

			if len(fp.produced) != 1 {
				t.Fatalf("produced %d messages, want 1", len(fp.produced))
			}
			msg := fp.produced[0]
			if *msg.TopicPartition.Topic != StreamPayments || string(msg.Key) != "order_1" {
				t.Errorf("topic/key = %s/%s", *msg.TopicPartition.Topic, msg.Key)
			}
			if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != "payment.captured" {
				t.Errorf("headers = %v", msg.Headers)
			}
		})
	}
}

func TestKafkaPublisher_BadChannel(t *testing.T) {
	fp := newFakeProducer()
	pub := newKafkaPublisher(fp)
	defer pub.Close()

	ev, _ := NewEvent("payment.failed", "x", nil)
	if err := pub.Publish(context.Background(), "no-key", ev); err == nil {
		t.Fatal("Publish() expected error for channel without key")
	}
	if len(fp.produced) != 0 {
		t.Errorf("produced %d messages for an invalid channel", len(fp.produced))
	}
}

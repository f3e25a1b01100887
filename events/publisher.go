package events

import (
	"context"
	"encoding/json"
	"time"

	"hotel-reservation/logger"

	"github.com/segmentio/kafka-go"
)

// Publisher ships committed domain events. Publish must not block the caller
// on broker I/O.
type Publisher interface {
	Publish(ctx context.Context, e Envelope)
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) {}

// Fanout hands every envelope to each publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Envelope) {
	for _, p := range f {
		p.Publish(ctx, e)
	}
}

// KafkaPublisher buffers envelopes in memory and writes them from one
// goroutine, keyed by correlation id.
type KafkaPublisher struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewKafkaPublisher(brokers []string, topic string, buf int) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Run drains the buffer until ctx is cancelled, then flushes what is left.
func (p *KafkaPublisher) Run(ctx context.Context) error {
	defer close(p.closeCh)
	for {
		select {
		case <-ctx.Done():
			p.flush()
			return p.w.Close()
		case m := <-p.inbox:
			p.write(m)
		}
	}
}

func (p *KafkaPublisher) flush() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			return
		}
	}
}

func (p *KafkaPublisher) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		logger.Error("kafka write failed", err)
	}
}

// Publish enqueues e. A full buffer drops the event with a warning rather than
// stalling a request that already committed.
func (p *KafkaPublisher) Publish(_ context.Context, e Envelope) {
	value, err := json.Marshal(e)
	if err != nil {
		logger.Error("encode event envelope", err)
		return
	}
	m := kafka.Message{
		Key:   []byte(e.CorrelationID),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.EventType)},
		},
	}
	select {
	case p.inbox <- m:
	default:
		logger.WithFields(logger.Fields{"event_type": e.EventType, "event_id": e.EventID}).
			Warn("event buffer full, dropping event")
	}
}

// WaitClosed blocks until Run has flushed and returned.
func (p *KafkaPublisher) WaitClosed() { <-p.closeCh }

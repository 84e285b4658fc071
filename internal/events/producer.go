package events

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes ledger events to Kafka asynchronously. Publishing never
// blocks the request path; messages are buffered and flushed by a background
// goroutine, with a final drain on shutdown.
type Producer struct {
	w         *kafka.Writer
	inbox     chan kafka.Message
	closeCh   chan struct{}
	closeOnce sync.Once
	logger    *zap.Logger
}

// NewProducer creates a producer for the given brokers. Topics are set per
// message so one producer serves all ledger topics.
func NewProducer(brokers []string, buf int, logger *zap.Logger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		logger:  logger,
	}
}

// Start launches the background write loop
func (p *Producer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				p.Close()
				for m := range p.inbox {
					p.write(m)
				}
				_ = p.w.Close()
				close(p.closeCh)
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					close(p.closeCh)
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("topic", m.Topic),
			zap.Error(err),
		)
	}
}

// Publish enqueues a message without blocking the caller. Events are dropped
// with a log line when the buffer is full; the ledger write has already
// committed at this point and must not fail on event backpressure.
func (p *Producer) Publish(topic string, key, value []byte) {
	m := kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
		Time:  time.Now(),
	}

	select {
	case p.inbox <- m:
	default:
		p.logger.Warn("Event buffer full, dropping event", zap.String("topic", topic))
	}
}

// Close stops accepting new events and lets the loop drain the buffer
func (p *Producer) Close() {
	p.closeOnce.Do(func() { close(p.inbox) })
}

// WaitClosed blocks until the write loop has flushed and exited
func (p *Producer) WaitClosed() { <-p.closeCh }

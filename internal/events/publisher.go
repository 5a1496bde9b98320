// Package events publishes session lifecycle events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/abhisek/faultdrill/internal/history"
)

const (
	// DefaultExchange is the topic exchange events are published to.
	DefaultExchange = "faultdrill.events"

	// SessionCompleted is published with the SessionRecord of every closed
	// session.
	SessionCompleted = "session.completed"

	// HistoryCleared is published when the stored history is removed.
	HistoryCleared = "history.cleared"
)

// Envelope is the JSON body of every published message.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// Publisher sends events to a broker.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error                               { return nil }

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes JSON envelopes to a topic exchange, using the
// event type as routing key.
type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string
	now      func() time.Time

	mu sync.Mutex
	ch channel
}

// NewAMQPPublisher dials url and declares a durable topic exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange, now: time.Now}, nil
}

// Publish implements Publisher. The context is checked before sending only;
// the amqp client has no cancellable publish.
func (p *AMQPPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(Envelope{Type: eventType, OccurredAt: p.now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return fmt.Errorf("publish %s: publisher closed", eventType)
	}
	err = p.ch.Publish(
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    p.now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

// Open returns an AMQPPublisher for url, or Noop when url is empty.
func Open(url, exchange string) (Publisher, error) {
	if url == "" {
		return Noop{}, nil
	}
	return NewAMQPPublisher(url, exchange)
}

// SessionHook returns a callback that publishes SessionCompleted for each
// closed session. Failures are logged and dropped.
func SessionHook(p Publisher, logger *zap.Logger) func(history.SessionRecord) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(rec history.SessionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, SessionCompleted, rec); err != nil {
			logger.Warn("event not published", zap.String("type", SessionCompleted), zap.Error(err))
		}
	}
}

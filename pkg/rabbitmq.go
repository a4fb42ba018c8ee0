package pkg

import (
	"context"
	"fmt"
	"sync"

	"github.com/aquamarinepk/aqm"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher publishes events to RabbitMQ. Each topic maps to a durable
// fanout exchange of the same name, declared on first use.
type AMQPPublisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger aqm.Logger

	mu       sync.Mutex
	declared map[string]struct{}
}

func NewAMQPPublisher(url string, logger aqm.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	return &AMQPPublisher{
		conn:     conn,
		ch:       ch,
		logger:   logger,
		declared: make(map[string]struct{}),
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}

	if _, ok := p.declared[topic]; !ok {
		if err := p.ch.ExchangeDeclare(topic, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", topic, err)
		}
		p.declared[topic] = struct{}{}
	}

	err := p.ch.PublishWithContext(ctx, topic, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         msg,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	p.logger.Debug("published amqp message", "exchange", topic, "bytes", len(msg))
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil && !p.ch.IsClosed() {
		if err := p.ch.Close(); err != nil {
			return fmt.Errorf("close rabbitmq channel: %w", err)
		}
	}
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	return nil
}

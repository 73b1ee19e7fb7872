// Package messaging publishes application lifecycle events to RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"application-builder/internal/common/logger"
	"application-builder/internal/models"

	"github.com/streadway/amqp"
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends ApplicationSubmitted events to a durable topic
// exchange. The channel is shared, so publishes are serialized.
type AMQPPublisher struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	ch         Channel
	exchange   string
	routingKey string
	logger     logger.Logger
}

func Dial(url, exchange, routingKey string, log logger.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	p, err := NewAMQPPublisher(ch, exchange, routingKey, log)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewAMQPPublisher declares the exchange on ch and returns a publisher.
func NewAMQPPublisher(ch Channel, exchange, routingKey string, log logger.Logger) (*AMQPPublisher, error) {
	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     log.WithFields(map[string]interface{}{"exchange": exchange}),
	}, nil
}

func (p *AMQPPublisher) Name() string { return "amqp" }

func (p *AMQPPublisher) Publish(ctx context.Context, event models.ApplicationSubmittedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.Publish(p.exchange, p.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ApplicationID,
		Timestamp:    time.Now().UTC(),
		Type:         p.routingKey,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", p.routingKey, err)
	}

	p.logger.Debug("event published", map[string]interface{}{
		"routingKey":    p.routingKey,
		"applicationId": event.ApplicationID,
	})
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	if p.ch != nil {
		firstErr = p.ch.Close()
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

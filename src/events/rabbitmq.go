package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/theleywin/friendlynk/src/models"
)

// RabbitMQ publishes events to a topic exchange, routed by event type.
type RabbitMQ struct {
	conn     *amqp.Connection
	exchange string

	mu sync.Mutex
	ch *amqp.Channel
}

// NewRabbitMQ declares the exchange, the queues and their bindings.
func NewRabbitMQ(conn *amqp.Connection, exchange string) (*RabbitMQ, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, exchange); err != nil {
		_ = ch.Close()
		return nil, err
	}

	return &RabbitMQ{conn: conn, exchange: exchange, ch: ch}, nil
}

func declareTopology(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	for queue, types := range bindings {
		q, err := ch.QueueDeclare(
			queue, // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", queue, err)
		}
		for _, t := range types {
			if err := ch.QueueBind(q.Name, string(t), exchange, false, nil); err != nil {
				return fmt.Errorf("failed to bind queue %s: %w", queue, err)
			}
		}
	}
	return nil
}

func (p *RabbitMQ) Publish(ctx context.Context, event models.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		if p.conn == nil || p.conn.IsClosed() {
			return fmt.Errorf("rabbitmq connection is not available")
		}
		ch, err := p.conn.Channel()
		if err != nil {
			return fmt.Errorf("failed to reopen channel: %w", err)
		}
		p.ch = ch
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange,         // exchange
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.Id,
			Timestamp:    event.CreatedAt,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *RabbitMQ) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn.Close()
	}
	return nil
}

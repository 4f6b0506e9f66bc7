// Package events publishes domain events to RabbitMQ.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/streadway/amqp"
)

const (
	Exchange = "thumbnails"

	ThumbnailUploaded = "thumbnail.uploaded"
	ThumbnailAnalyzed = "thumbnail.analyzed"
	MixCreated        = "mix.created"
)

// Publisher sends an event under a routing key.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewClient connects and declares the topic exchange.
func NewClient(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", Exchange, err)
	}

	return &Client{conn: conn, channel: ch}, nil
}

func (c *Client) Publish(routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", routingKey, err)
	}
	err = c.channel.Publish(
		Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", routingKey, err)
	}
	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Notify publishes through p when one is configured and logs failures.
// Events never fail the caller.
func Notify(log *slog.Logger, p Publisher, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(routingKey, payload); err != nil {
		log.Warn("failed to publish event", "routing_key", routingKey, "error", err)
	}
}

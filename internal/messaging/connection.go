package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	ReceiptsExchange   = "receipts_direct"
	ReceiptEmailKey    = "receipt.email"
	ReceiptEmailQueue  = "receipts.email"
	connectMaxAttempts = 5
)

// Connection wraps a RabbitMQ connection and the single channel used for
// publishing. Publishes are serialized since amqp channels are not safe for
// concurrent use.
type Connection struct {
	url string
	log logrus.FieldLogger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func Dial(url string, log logrus.FieldLogger) (*Connection, error) {
	c := &Connection{url: url, log: log}
	if err := c.connect(); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}
	return c, nil
}

// connect establishes the connection with linear backoff.
func (c *Connection) connect() error {
	var err error
	for i := 0; i < connectMaxAttempts; i++ {
		if err = c.open(); err == nil {
			return nil
		}
		if i < connectMaxAttempts-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			c.log.WithError(err).Warnf("Failed to connect to RabbitMQ, retrying in %v", wait)
			time.Sleep(wait)
		}
	}
	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", connectMaxAttempts, err)
}

func (c *Connection) open() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return err
	}
	c.conn, c.channel = conn, ch
	return nil
}

func setupTopology(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		ReceiptsExchange, // name
		"direct",         // type
		true,             // durable
		false,            // auto-deleted
		false,            // internal
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", ReceiptsExchange, err)
	}

	_, err = ch.QueueDeclare(
		ReceiptEmailQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", ReceiptEmailQueue, err)
	}

	if err := ch.QueueBind(ReceiptEmailQueue, ReceiptEmailKey, ReceiptsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", ReceiptEmailQueue, err)
	}
	return nil
}

// PublishPersistent publishes a JSON body with persistent delivery,
// reconnecting once if the connection has dropped.
func (c *Connection) PublishPersistent(ctx context.Context, exchange, routingKey string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() || c.channel == nil || c.channel.IsClosed() {
		c.closeLocked()
		if err := c.open(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	return c.channel.PublishWithContext(ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Connection) closeLocked() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

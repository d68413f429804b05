package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ImageJobsQueue = "image-jobs"
	AIJobsQueue    = "ai-jobs"
)

var ErrPublishNacked = errors.New("queue: broker refused the message")

// Client owns one AMQP connection. Publishing goes through a single
// confirm-mode channel; every consumer opens its own channel.
type Client struct {
	conn *amqp.Connection

	mu    sync.Mutex
	pubCh *amqp.Channel
}

// compile-time check: *Client must satisfy port.JobPublisher
var _ port.JobPublisher = (*Client)(nil)

func New(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	return &Client{conn: conn, pubCh: ch}, nil
}

// SetupTopology declares the durable stage queues. Idempotent.
func (c *Client) SetupTopology() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, q := range []string{ImageJobsQueue, AIJobsQueue} {
		if _, err := c.pubCh.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %q: %w", q, err)
		}
	}
	return nil
}

func (c *Client) PublishImageJob(ctx context.Context, msg port.ImageJobMessage) error {
	return c.publish(ctx, ImageJobsQueue, msg.JobID, msg)
}

func (c *Client) PublishAIJob(ctx context.Context, msg port.AIJobMessage) error {
	return c.publish(ctx, AIJobsQueue, msg.JobID, msg)
}

func (c *Client) publish(ctx context.Context, queue, messageID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", queue, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	confirm, err := c.pubCh.PublishWithDeferredConfirmWithContext(ctx,
		"",    // default exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	if confirm == nil {
		return nil
	}
	ok, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	if !ok {
		return fmt.Errorf("publish to %s: %w", queue, ErrPublishNacked)
	}
	logger.Debug(ctx, "message published", "queue", queue, "jobId", messageID)
	return nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.pubCh.Close()
	_ = c.conn.Close()
}

var ErrConnectionClosed = errors.New("queue: connection closed")

// Ping reports whether the broker connection is still open.
func (c *Client) Ping(ctx context.Context) error {
	if c.conn.IsClosed() {
		return ErrConnectionClosed
	}
	return nil
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Outcome tells the consumer loop how to settle a delivery.
type Outcome int

const (
	// Ack removes the message from the queue.
	Ack Outcome = iota
	// Reject negatively acknowledges without requeue.
	Reject
	// Abandon leaves the message unacknowledged so the broker redelivers it
	// once the channel closes.
	Abandon
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Reject:
		return "reject"
	case Abandon:
		return "abandon"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Handler processes one message body.
type Handler func(ctx context.Context, body []byte) Outcome

var ErrDeliveriesClosed = errors.New("queue: delivery channel closed by broker")

// ConsumeOptions bounds a consumer loop.
type ConsumeOptions struct {
	// Concurrency caps in-flight messages and doubles as the prefetch count.
	Concurrency int
	// DrainTimeout is how long in-flight messages may run after ctx is done
	// before their context is cancelled.
	DrainTimeout time.Duration
}

// Consume blocks until ctx is done or the broker closes the channel.
func (c *Client) Consume(ctx context.Context, queue string, opts ConsumeOptions, h Handler) error {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(opts.Concurrency, 0, false); err != nil {
		return fmt.Errorf("failed to set qos on %s: %w", queue, err)
	}

	deliveries, err := ch.Consume(
		queue,
		"",    // consumer
		false, // auto-ack is false. We will manually ack.
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", queue, err)
	}

	logger.Info(ctx, "consumer started", "queue", queue, "concurrency", opts.Concurrency)
	return dispatch(ctx, queue, deliveries, opts, h)
}

func dispatch(ctx context.Context, queue string, deliveries <-chan amqp.Delivery, opts ConsumeOptions, h Handler) error {
	workCtx, cancelWork := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWork()

	sem := make(chan struct{}, opts.Concurrency)
	var wg sync.WaitGroup
	closed := false

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case d, ok := <-deliveries:
			if !ok {
				closed = true
				break loop
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				// never started; the broker redelivers it
				break loop
			}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				settle(workCtx, queue, d, h)
			}(d)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(opts.DrainTimeout):
		logger.Warn(ctx, "drain timeout reached, cancelling in-flight messages", "queue", queue)
		cancelWork()
		<-done
	}

	logger.Info(ctx, "consumer stopped", "queue", queue)
	if closed && ctx.Err() == nil {
		return ErrDeliveriesClosed
	}
	return nil
}

func settle(ctx context.Context, queue string, d amqp.Delivery, h Handler) {
	outcome := Reject
	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ctx, "handler panicked", "queue", queue, "panic", fmt.Sprint(r))
			}
		}()
		outcome = h(ctx, d.Body)
	}()

	var err error
	switch outcome {
	case Ack:
		err = d.Ack(false)
	case Reject:
		err = d.Nack(false, false)
	case Abandon:
		logger.Info(ctx, "message abandoned for redelivery", "queue", queue, "deliveryTag", d.DeliveryTag)
		return
	}
	if err != nil {
		logger.Error(ctx, "failed to settle message", "queue", queue, "outcome", outcome.String(), "error", err)
	}
}

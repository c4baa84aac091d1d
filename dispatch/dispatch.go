// Package dispatch publishes submissions to the external execution queue.
// Nothing in this core consumes the queue: execution happens out of process
// and results come back through the service layer's execution recorder.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageTTL is how long an unconsumed dispatch message survives in the
// queue before the broker drops it.
const MessageTTL = time.Hour

// Publisher sends dispatch messages to a durable RabbitMQ queue with
// persistent delivery mode. Connections are lazy and re-established with a
// bounded number of fixed-delay attempts; exhaustion surfaces to the caller
// instead of blocking the request forever.
type Publisher struct {
	URL   string
	Queue string

	// ConnectRetries counts attempts, so 1 means a single try.
	ConnectRetries int
	RetryDelay     time.Duration

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url, queue string) *Publisher {
	return &Publisher{
		URL:   url,
		Queue: queue,

		ConnectRetries: 5,
		RetryDelay:     2 * time.Second,
	}
}

// MessageBody formats the dispatch payload: the submission id and the
// language (with version) separated by a single space, nothing else.
func MessageBody(submissionID int, language string) string {
	return fmt.Sprintf("%d %s", submissionID, language)
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	_, err = ch.QueueDeclare(
		p.Queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		amqp.Table{"x-message-ttl": MessageTTL.Milliseconds()},
	)
	if err != nil {
		conn.Close()
		return err
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) ensureChannel() error {
	if p.ch != nil && !p.conn.IsClosed() {
		return nil
	}

	var err error
	for i := 0; i < p.ConnectRetries; i++ {
		if i > 0 {
			time.Sleep(p.RetryDelay)
		}
		if err = p.connect(); err == nil {
			return nil
		}
		slog.Warn("Couldn't connect to dispatch queue", slog.Int("attempt", i+1), slog.Any("err", err))
	}
	return fmt.Errorf("dispatch queue unreachable after %d attempts: %w", p.ConnectRetries, err)
}

// Dispatch enqueues one submission for execution. Success means the broker
// accepted the publish; no further acknowledgment is awaited.
func (p *Publisher) Dispatch(ctx context.Context, submissionID int, language string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureChannel(); err != nil {
		return err
	}

	err := p.ch.PublishWithContext(
		ctx,
		"",      // default exchange
		p.Queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "text/plain",
			DeliveryMode: amqp.Persistent,
			Body:         []byte(MessageBody(submissionID, language)),
		})
	if err != nil {
		// Drop the channel so the next call redials instead of
		// republishing into a broken connection.
		p.closeLocked()
		return err
	}
	return nil
}

func (p *Publisher) closeLocked() {
	if p.conn != nil {
		p.conn.Close()
	}
	p.conn = nil
	p.ch = nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

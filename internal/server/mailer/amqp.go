package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophcrm/internal/logging"
	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// dialChannel is a seam returning an open channel and the connection that
// owns it.
var dialChannel = func(url string) (amqpChannel, io.Closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, conn, nil
}

// QueueSender publishes each email as a persistent JSON message to a durable
// queue, for a separate delivery worker to pick up. One connection is shared
// by all sends and reopened on the next send after a failure.
type QueueSender struct {
	url    string
	queue  string
	logger logging.Logger

	mu   sync.Mutex
	ch   amqpChannel
	conn io.Closer
}

func NewQueueSender(url, queue string, logger logging.Logger) *QueueSender {
	return &QueueSender{url: url, queue: queue, logger: logger.With("module", "mailer", "transport", "amqp")}
}

// channel returns the open channel, dialing and declaring the queue when
// there is none. Callers hold s.mu.
func (s *QueueSender) channel() (amqpChannel, error) {
	if s.ch != nil {
		return s.ch, nil
	}

	ch, conn, err := dialChannel(s.url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}

	s.ch, s.conn = ch, conn
	return ch, nil
}

// reset drops the current connection. Callers hold s.mu.
func (s *QueueSender) reset() {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.ch, s.conn = nil, nil
}

func (s *QueueSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.channel()
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", s.queue, false, false, pub); err != nil {
		s.reset()
		return fmt.Errorf("publish: %w", err)
	}

	s.logger.Info(ctx, "email queued", "queue", s.queue, "to", msg.To, "email_log_id", msg.EmailLogID)
	return nil
}

// Close releases the connection. A later Send dials again.
func (s *QueueSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher delivers catalog events.
type Publisher interface {
	Publish(ctx context.Context, ev CatalogEvent) error
}

// NopPublisher drops every event.  It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, CatalogEvent) error { return nil }

// AMQPPublisher publishes events to a durable RabbitMQ queue through the
// default exchange.  Each publish opens its own connection so a broker
// restart never leaves the publisher holding a dead channel.
type AMQPPublisher struct {
	url     string
	queue   string
	timeout time.Duration
	log     *zap.Logger
}

// DefaultDialTimeout bounds connecting to the broker and the AMQP
// handshake.
const DefaultDialTimeout = 2 * time.Second

// NewAMQPPublisher returns a publisher for queue on the broker at url.
// timeout bounds the dial of every publish; zero means DefaultDialTimeout.
func NewAMQPPublisher(url, queue string, timeout time.Duration, log *zap.Logger) *AMQPPublisher {
	if queue == "" {
		queue = DefaultQueue
	}
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	return &AMQPPublisher{url: url, queue: queue, timeout: timeout, log: log.Named("publisher")}
}

// dial connects with the handshake bounded by timeout.  The other
// settings match amqp.Dial.
func dial(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// Publish sends ev as a persistent JSON message.  Errors are logged and
// returned; callers are free to ignore them.
func (p *AMQPPublisher) Publish(ctx context.Context, ev CatalogEvent) error {
	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return context.DeadlineExceeded
		}
		timeout = min(timeout, left)
	}
	conn, err := dial(p.url, timeout)
	if err != nil {
		p.log.Warn("dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		p.log.Warn("queue declare failed", zap.Error(err))
		return err
	}

	msg, err := encode(ev)
	if err != nil {
		p.log.Warn("marshal event failed", zap.Error(err))
		return err
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		msg,
	); err != nil {
		p.log.Warn("publish failed", zap.String("type", string(ev.Type)), zap.Error(err))
		return err
	}
	return nil
}

func encode(ev CatalogEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(ev.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}

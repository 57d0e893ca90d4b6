package rabbit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/zlog"
)

const (
	KindDirect  = "direct"
	KindDelayed = "x-delayed-message"

	// MessageType tags every publication so other consumers of the exchange
	// can filter.
	MessageType = "elysion.pass.issued"

	publishTimeout = 5 * time.Second
)

type Publisher interface {
	Publish(message []byte, delaySeconds int) error
}

type Consumer interface {
	Consume(handler func([]byte) error) error
}

// Topology names the exchange and the single queue bound to it.
type Topology struct {
	Exchange string
	Kind     string
	Queue    string
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	topo    Topology
}

// NewRabbit connects and declares the pass notification topology. An empty
// kind means a direct exchange; the delayed kind needs the
// rabbitmq_delayed_message_exchange plugin on the broker.
func NewRabbit(url, exchange, kind, queue string) (*Client, error) {
	topo := Topology{Exchange: exchange, Kind: kind, Queue: queue}
	if topo.Kind == "" {
		topo.Kind = KindDirect
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{conn: conn, channel: ch, topo: topo}
	if err := declare(ch, topo); err != nil {
		client.Close()
		return nil, err
	}

	zlog.Logger.Info().
		Str("exchange", topo.Exchange).
		Str("kind", topo.Kind).
		Str("queue", topo.Queue).
		Msg("RabbitMQ topology ready")
	return client, nil
}

func declare(ch *amqp.Channel, t Topology) error {
	if err := ch.ExchangeDeclare(t.Exchange, t.Kind, true, false, false, false, exchangeArgs(t.Kind)); err != nil {
		return fmt.Errorf("declare exchange %s: %w", t.Exchange, err)
	}
	if _, err := ch.QueueDeclare(t.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", t.Queue, err)
	}
	if err := ch.QueueBind(t.Queue, "", t.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", t.Queue, err)
	}
	return nil
}

func exchangeArgs(kind string) amqp.Table {
	if kind != KindDelayed {
		return nil
	}
	return amqp.Table{"x-delayed-type": KindDirect}
}

func (c *Client) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	zlog.Logger.Info().Msg("RabbitMQ connection closed")
}

// Publish sends one persistent JSON message. delaySeconds is ignored unless
// the exchange is delayed.
func (c *Client) Publish(message []byte, delaySeconds int) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	msg := publishing(message, c.topo.Kind, delaySeconds, time.Now())
	if err := c.channel.PublishWithContext(ctx, c.topo.Exchange, "", false, false, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", c.topo.Exchange, err)
	}
	zlog.Logger.Debug().Str("message_id", msg.MessageId).Str("exchange", c.topo.Exchange).Msg("message published")
	return nil
}

func publishing(body []byte, kind string, delaySeconds int, now time.Time) amqp.Publishing {
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         MessageType,
		AppId:        "elysion",
		Timestamp:    now,
		Body:         body,
	}
	if delaySeconds > 0 && kind == KindDelayed {
		msg.Headers = amqp.Table{"x-delay": int32(delaySeconds * 1000)}
	}
	return msg
}

// Consume delivers one message at a time. A handler error requeues the
// message once; a second failure drops it.
func (c *Client) Consume(handler func([]byte) error) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}
	msgs, err := c.channel.Consume(c.topo.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.topo.Queue, err)
	}

	go func() {
		for d := range msgs {
			if err := handler(d.Body); err != nil {
				zlog.Logger.Warn().Err(err).Str("message_id", d.MessageId).Bool("redelivered", d.Redelivered).Msg("failed to process message")
				_ = d.Nack(false, !d.Redelivered)
				continue
			}
			_ = d.Ack(false)
		}
	}()

	zlog.Logger.Info().Str("queue", c.topo.Queue).Msg("consuming pass notifications")
	return nil
}

package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	amqp "github.com/streadway/amqp"
)

// DefaultQueue carries the spot domain events.
const DefaultQueue = "spot_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string

	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// Event is the JSON envelope of every published message.
type Event struct {
	Type       string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// NewClient connects to RabbitMQ, opens a channel and declares the event
// queue.
func NewClient(cfg Config) (*Client, error) {
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declare(ch, queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info().Str("queue", queue).Msg("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   queue,
	}, nil
}

func declare(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return q, fmt.Errorf("failed to declare %s: %w", queue, err)
	}
	return q, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// EncodeEvent builds the message body for an event.
func EncodeEvent(eventType string, payload map[string]interface{}, at time.Time) ([]byte, error) {
	body, err := json.Marshal(Event{Type: eventType, Payload: payload, OccurredAt: at.UTC()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return body, nil
}

// DecodeEvent parses a message body produced by EncodeEvent.
func DecodeEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("failed to decode event: %w", err)
	}
	if ev.Type == "" {
		return ev, fmt.Errorf("event without type")
	}
	return ev, nil
}

// PublishEvent publishes a persistent JSON event to the queue.
func (c *Client) PublishEvent(eventType string, payload map[string]interface{}) error {
	if c == nil || c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	now := time.Now()
	body, err := EncodeEvent(eventType, payload, now)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         eventType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    now,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().Str("event", eventType).Msg("event published")
	return nil
}

// ConsumeEvents starts a goroutine that passes every event on the queue to
// handler. Messages are acked on success. Undecodable messages are dropped,
// handler failures are requeued once and dropped when redelivered.
func (c *Client) ConsumeEvents(handler func(Event) error) error {
	if c == nil || c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := declare(c.channel, c.queue)
	if err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Info().Str("queue", queue.Name).Msg("waiting for events")

	go func() {
		for msg := range msgs {
			handleDelivery(msg, handler)
		}
		log.Info().Str("queue", queue.Name).Msg("event consumer stopped")
	}()
	return nil
}

func handleDelivery(msg amqp.Delivery, handler func(Event) error) {
	ev, err := DecodeEvent(msg.Body)
	if err != nil {
		log.Warn().Err(err).Uint64("tag", msg.DeliveryTag).Msg("dropping malformed event")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			log.Error().Err(nackErr).Uint64("tag", msg.DeliveryTag).Msg("error nacking message")
		}
		return
	}

	if err := handler(ev); err != nil {
		requeue := !msg.Redelivered
		log.Error().Err(err).Str("event", ev.Type).Bool("requeue", requeue).Msg("error processing event")
		if nackErr := msg.Nack(false, requeue); nackErr != nil {
			log.Error().Err(nackErr).Uint64("tag", msg.DeliveryTag).Msg("error nacking message")
		}
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		log.Error().Err(ackErr).Uint64("tag", msg.DeliveryTag).Msg("error acking message")
	}
}

// LogEvent is a consumer handler that records each event in the log.
func LogEvent(ev Event) error {
	log.Info().
		Str("event", ev.Type).
		Time("occurred_at", ev.OccurredAt).
		Interface("payload", ev.Payload).
		Msg("event received")
	return nil
}

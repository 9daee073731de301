package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/realtime"
)

type rabbitMQBus struct {
	log       *logger.Logger
	conn      *amqp.Connection
	channels  chan *amqp.Channel
	queueName string

	mu     sync.Mutex
	closed bool
}

// NewRabbitMQBus publishes events to a durable queue through a fixed pool of
// channels.
func NewRabbitMQBus(log *logger.Logger, url, queueName string, poolSize int) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	queueName = strings.TrimSpace(queueName)
	if queueName == "" {
		return nil, fmt.Errorf("missing RABBITMQ_QUEUE")
	}
	if poolSize <= 0 {
		poolSize = 1
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	b := &rabbitMQBus{
		log:       log.With("service", "RabbitMQEventBus", "queue", queueName),
		conn:      conn,
		channels:  make(chan *amqp.Channel, poolSize),
		queueName: queueName,
	}
	for i := 0; i < poolSize; i++ {
		ch, err := b.createChannel()
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("failed to create channel %d: %w", i, err)
		}
		b.channels <- ch
	}
	b.log.Info("RabbitMQ channel pool ready", "size", poolSize)
	return b, nil
}

func (b *rabbitMQBus) createChannel() (*amqp.Channel, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(b.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	return ch, nil
}

func (b *rabbitMQBus) getChannel(ctx context.Context) (*amqp.Channel, error) {
	select {
	case ch, ok := <-b.channels:
		if !ok {
			return nil, errors.New("rabbitmq event bus closed")
		}
		if ch.IsClosed() {
			return b.createChannel()
		}
		return ch, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *rabbitMQBus) returnChannel(ch *amqp.Channel) {
	if ch == nil || ch.IsClosed() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		_ = ch.Close()
		return
	}
	select {
	case b.channels <- ch:
	default:
		_ = ch.Close()
	}
}

func (b *rabbitMQBus) Publish(ctx context.Context, evt realtime.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ch, err := b.getChannel(ctx)
	if err != nil {
		return fmt.Errorf("get channel: %w", err)
	}
	defer b.returnChannel(ch)

	err = ch.PublishWithContext(ctx,
		"",          // default exchange
		b.queueName, // routing key
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    evt.ID.String(),
			Type:         evt.Type,
			Timestamp:    evt.OccurredAt,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

func (b *rabbitMQBus) Subscribe(ctx context.Context, onEvent func(evt realtime.Event)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	ch, err := b.createChannel()
	if err != nil {
		return err
	}
	deliveries, err := ch.Consume(b.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume: %w", err)
	}
	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				var evt realtime.Event
				if err := json.Unmarshal(d.Body, &evt); err != nil {
					b.log.Warn("bad rabbitmq event payload", "error", err)
					_ = d.Nack(false, false)
					continue
				}
				onEvent(evt)
				_ = d.Ack(false)
			}
		}
	}()
	return nil
}

func (b *rabbitMQBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.channels)
	b.mu.Unlock()

	for ch := range b.channels {
		_ = ch.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultReconnectDelay = 5 * time.Second

type consumer struct {
	conn           Connection
	prefetch       int
	logger         logger.Logger
	reconnectDelay time.Duration
}

func NewConsumer(conn Connection, prefetch int, logger logger.Logger) interfaces.MessageConsumer {
	return &consumer{
		conn:           conn,
		prefetch:       prefetch,
		logger:         logger,
		reconnectDelay: defaultReconnectDelay,
	}
}

func (c *consumer) ConsumeOrders(ctx context.Context, handler interfaces.OrderMessageHandler) error {
	return c.consumeLoop(ctx, "orders", func(ctx context.Context) error {
		return c.consumeOrders(ctx, handler)
	})
}

func (c *consumer) ConsumeEvents(ctx context.Context, handler interfaces.EventHandler) error {
	return c.consumeLoop(ctx, "events", func(ctx context.Context) error {
		return c.consumeEvents(ctx, handler)
	})
}

// consumeLoop restarts a consumer after the channel or connection drops,
// until ctx is cancelled.
func (c *consumer) consumeLoop(ctx context.Context, name string, consume func(context.Context) error) error {
	for {
		err := consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		c.logger.Error("rabbitmq_consumer_disconnected",
			fmt.Sprintf("%s consumer disconnected, reconnecting in %s", name, c.reconnectDelay), "", nil, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconnectDelay):
		}

		if c.conn.IsClosed() {
			if err := c.conn.Reconnect(); err != nil {
				c.logger.Error("rabbitmq_reconnect_failed", "Failed to reconnect to RabbitMQ", "", nil, err)
			}
		}
	}
}

func (c *consumer) consumeOrders(ctx context.Context, handler interfaces.OrderMessageHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	if err := setupOrdersInfrastructure(ch); err != nil {
		return err
	}

	msgs, err := ch.Consume(KitchenQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}

			err := handler(ctx, msg.Body)
			switch {
			case err == nil:
				_ = msg.Ack(false)
			case errors.Is(err, interfaces.ErrRetryLater):
				_ = msg.Nack(false, true)
			default:
				c.logger.Error("order_rejected", "Order message sent to dead letter queue", msg.MessageId, nil, err)
				_ = msg.Nack(false, false)
			}
		}
	}
}

func (c *consumer) consumeEvents(ctx context.Context, handler interfaces.EventHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.ExchangeDeclare(ShelfEventsExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", ShelfEventsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}
			if err := handler(ctx, msg.Body); err != nil {
				c.logger.Debug("event_skipped", "Unreadable shelf event", msg.MessageId, map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

func setupOrdersInfrastructure(ch Channel) error {
	if err := ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare orders exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(OrdersDLQExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(KitchenDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}
	if err := ch.QueueBind(KitchenDLQ, "#", OrdersDLQExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange": OrdersDLQExchange,
	}
	q, err := ch.QueueDeclare(KitchenQueue, true, false, false, false, args)
	if err != nil {
		return fmt.Errorf("failed to declare kitchen queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "kitchen.#", OrdersExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind kitchen queue: %w", err)
	}
	return nil
}

package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	OrdersExchange      = "orders_topic"
	OrdersDLQExchange   = "orders_dlq"
	KitchenQueue        = "kitchen_queue"
	KitchenDLQ          = "kitchen_queue_dlq"
	ShelfEventsExchange = "shelf_events_fanout"
)

type publisher struct {
	conn Connection
}

// Publisher sends order definitions and shelf events
type Publisher interface {
	interfaces.OrderPublisher
	interfaces.EventPublisher
}

func NewPublisher(conn Connection) Publisher {
	return &publisher{conn: conn}
}

// OrderRoutingKey routes an order by temperature, e.g. kitchen.hot
func OrderRoutingKey(temp string) string {
	return "kitchen." + strings.ToLower(strings.TrimSpace(temp))
}

func (p *publisher) PublishOrder(ctx context.Context, msg interfaces.OrderMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return p.publish(ctx, OrdersExchange, "topic", OrderRoutingKey(msg.Temp), amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    msg.ID,
		Body:         body,
	})
}

func (p *publisher) PublishShelfEvent(ctx context.Context, event domain.ShelfEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.publish(ctx, ShelfEventsExchange, "fanout", "", amqp.Publishing{
		ContentType: "application/json",
		MessageId:   event.ID.String(),
		Timestamp:   event.OccurredAt,
		Type:        string(event.Action),
		Body:        body,
	})
}

func (p *publisher) publish(ctx context.Context, exchange, kind, key string, msg amqp.Publishing) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, kind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := ch.PublishWithContext(ctx, exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

package interfaces

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/google/uuid"
)

// OrderMessage is an order definition as it travels over RabbitMQ and in
// order files
type OrderMessage struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Temp      string  `json:"temp"`
	ShelfLife int     `json:"shelfLife"`
	DecayRate float64 `json:"decayRate"`
}

// ToOrder validates the definition. A missing id gets a fresh UUID.
func (m OrderMessage) ToOrder() (*domain.Order, error) {
	id := uuid.New()
	if raw := strings.TrimSpace(m.ID); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidOrderID, m.ID)
		}
		id = parsed
	}

	temp, err := domain.ParseTemperature(m.Temp)
	if err != nil {
		return nil, err
	}
	return domain.NewOrder(id, m.Name, temp, m.ShelfLife, m.DecayRate)
}

// NewOrderMessage is the inverse of ToOrder
func NewOrderMessage(o *domain.Order) OrderMessage {
	return OrderMessage{
		ID:        o.ID.String(),
		Name:      o.Name,
		Temp:      string(o.Temp),
		ShelfLife: o.ShelfLife,
		DecayRate: o.DecayRate,
	}
}

// ErrRetryLater asks the consumer to requeue a message instead of
// dead-lettering it
var ErrRetryLater = errors.New("retry later")

// Messaging interfaces (Adapter/RabbitMQ)
type OrderPublisher interface {
	PublishOrder(ctx context.Context, msg OrderMessage) error
}

type EventPublisher interface {
	PublishShelfEvent(ctx context.Context, event domain.ShelfEvent) error
}

type MessageConsumer interface {
	ConsumeOrders(ctx context.Context, handler OrderMessageHandler) error
	ConsumeEvents(ctx context.Context, handler EventHandler) error
}

type (
	OrderMessageHandler func(ctx context.Context, body []byte) error
	EventHandler        func(ctx context.Context, body []byte) error
)

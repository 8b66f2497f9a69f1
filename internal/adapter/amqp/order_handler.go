package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/app/kitchen"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
)

type OrderHandler struct {
	kitchen interfaces.KitchenService
	logger  logger.Logger
}

func NewOrderHandler(kitchen interfaces.KitchenService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		kitchen: kitchen,
		logger:  logger,
	}
}

// HandleOrder turns one message into one order. Malformed or invalid
// definitions are returned as plain errors so they are dead-lettered; a
// kitchen that is shutting down asks for a requeue.
func (h *OrderHandler) HandleOrder(ctx context.Context, body []byte) error {
	var msg interfaces.OrderMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse order message", "", nil, err)
		return err
	}

	o, err := msg.ToOrder()
	if err != nil {
		h.logger.Error("validation_failed", "Order definition rejected", msg.ID, map[string]interface{}{"name": msg.Name}, err)
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := h.kitchen.Submit(ctx, o); err != nil {
		if errors.Is(err, kitchen.ErrClosed) || ctx.Err() != nil {
			return fmt.Errorf("%w: %v", interfaces.ErrRetryLater, err)
		}
		return err
	}
	return nil
}

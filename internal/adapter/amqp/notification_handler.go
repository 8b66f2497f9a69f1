package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/domain"
)

type NotificationHandler struct {
	logger logger.Logger
	out    io.Writer
}

func NewNotificationHandler(logger logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		logger: logger,
		out:    os.Stdout,
	}
}

func (h *NotificationHandler) HandleEvent(ctx context.Context, body []byte) error {
	var event domain.ShelfEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse shelf event", "", nil, err)
		return err
	}

	h.logger.Debug("notification_received", fmt.Sprintf("Received %s event for order %s", event.Action, event.OrderID),
		event.OrderID.String(), map[string]interface{}{
			"action": event.Action,
			"shelf":  event.Shelf,
		})

	fmt.Fprintln(h.out, formatEvent(event))
	return nil
}

func formatEvent(e domain.ShelfEvent) string {
	at := e.OccurredAt.Format("15:04:05.000")
	switch e.Action {
	case domain.ActionDropped, domain.ActionMissed:
		return fmt.Sprintf("%s %-9s %s (%s, %s)", at, e.Action, e.OrderName, e.Temperature, e.OrderID)
	default:
		return fmt.Sprintf("%s %-9s %s (%s, %s) on %s shelf, value %.3f", at, e.Action, e.OrderName, e.Temperature, e.OrderID, e.Shelf, e.Value)
	}
}

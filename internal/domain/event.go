package domain

import (
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionPlaced    Action = "placed"
	ActionRelocated Action = "relocated"
	ActionDiscarded Action = "discarded"
	ActionExpired   Action = "expired"
	ActionDelivered Action = "delivered"
	ActionDropped   Action = "dropped"
	ActionMissed    Action = "missed"
)

// ShelfEvent is one entry of the kitchen's action ledger
type ShelfEvent struct {
	ID          uuid.UUID   `json:"id"`
	OrderID     uuid.UUID   `json:"order_id"`
	OrderName   string      `json:"order_name"`
	Temperature Temperature `json:"temperature"`
	Action      Action      `json:"action"`
	Shelf       ShelfKind   `json:"shelf"`
	Value       float64     `json:"value"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// NewShelfEvent creates an event for an order at the given instant
func NewShelfEvent(o *Order, action Action, shelf ShelfKind, value float64, at time.Time) ShelfEvent {
	return ShelfEvent{
		ID:          uuid.New(),
		OrderID:     o.ID,
		OrderName:   o.Name,
		Temperature: o.Temp,
		Action:      action,
		Shelf:       shelf,
		Value:       value,
		OccurredAt:  at,
	}
}

package interfaces

import (
	"context"

	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/YelzhanWeb/ckitchens/internal/shelf"
	"github.com/google/uuid"
)

// ShelfManager is the core the collaborators drive
type ShelfManager interface {
	PlaceOrder(o *domain.Order) shelf.Placement
	DeliverOrder(o *domain.Order) shelf.Delivery
	SweepExpired() []shelf.Sweep
	Snapshot() shelf.Snapshot
}

// OrderSource yields order definitions; io.EOF ends the stream
type OrderSource interface {
	Next(ctx context.Context) (*domain.Order, error)
}

// Service interfaces (Business Logic)
type KitchenService interface {
	Submit(ctx context.Context, o *domain.Order) error
	Close()
}

type CourierService interface {
	Dispatch(ctx context.Context, o *domain.Order)
}

type Journal interface {
	RecordPlacement(ctx context.Context, p shelf.Placement)
	RecordDelivery(ctx context.Context, d shelf.Delivery)
	RecordSweeps(ctx context.Context, sweeps []shelf.Sweep)
	Counts() map[domain.Action]int
}

type TrackingService interface {
	GetShelves(ctx context.Context) (*ShelvesResponse, error)
	GetOrderHistory(ctx context.Context, orderID uuid.UUID) ([]domain.ShelfEvent, error)
	GetStats(ctx context.Context) (map[domain.Action]int, error)
	GetLedgerStats(ctx context.Context) (map[domain.Action]int, error)
}

// Tracking responses
type ShelvesResponse struct {
	TakenAt string          `json:"taken_at"`
	Shelves []ShelfResponse `json:"shelves"`
}

type ShelfResponse struct {
	Name     domain.ShelfKind `json:"name"`
	Capacity int              `json:"capacity"`
	Free     int              `json:"free"`
	Orders   []ShelfOrder     `json:"orders"`
}

type ShelfOrder struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Temperature domain.Temperature `json:"temperature"`
	Slot        int                `json:"slot"`
	Value       float64            `json:"value"`
}

package journal

import (
	"context"
	"fmt"
	"sync"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
	"github.com/YelzhanWeb/ckitchens/internal/shelf"
)

// Service turns shelf outcomes into ShelfEvents. Every event is logged; the
// ledger and the publisher are optional and their failures never reach the
// caller.
type Service struct {
	repo      interfaces.EventRepository
	publisher interfaces.EventPublisher
	logger    logger.Logger

	mu     sync.Mutex
	counts map[domain.Action]int
}

func NewService(repo interfaces.EventRepository, publisher interfaces.EventPublisher, logger logger.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		counts:    make(map[domain.Action]int),
	}
}

func (s *Service) RecordPlacement(ctx context.Context, p shelf.Placement) {
	if p.Relocated != nil {
		value := 0.0
		if p.RelocatedLife > 0 {
			value = 1
		}
		s.record(ctx, domain.NewShelfEvent(p.Relocated, domain.ActionRelocated, p.RelocatedTo, value, p.At))
	}
	if p.Discarded != nil {
		s.record(ctx, domain.NewShelfEvent(p.Discarded, domain.ActionDiscarded, domain.ShelfOverflow, p.DiscardedValue, p.At))
	}
	if p.Dropped {
		s.record(ctx, domain.NewShelfEvent(p.Order, domain.ActionDropped, domain.ShelfNone, 0, p.At))
		return
	}
	s.record(ctx, domain.NewShelfEvent(p.Order, domain.ActionPlaced, p.Shelf, 1, p.At))
}

func (s *Service) RecordDelivery(ctx context.Context, d shelf.Delivery) {
	if !d.Found {
		s.record(ctx, domain.NewShelfEvent(d.Order, domain.ActionMissed, domain.ShelfNone, 0, d.At))
		return
	}
	s.record(ctx, domain.NewShelfEvent(d.Order, domain.ActionDelivered, d.Shelf, d.Value, d.At))
}

func (s *Service) RecordSweeps(ctx context.Context, sweeps []shelf.Sweep) {
	for _, sw := range sweeps {
		for _, o := range sw.Orders {
			s.record(ctx, domain.NewShelfEvent(o, domain.ActionExpired, sw.Shelf, 0, sw.At))
		}
	}
}

// Counts returns the number of events recorded per action since start
func (s *Service) Counts() map[domain.Action]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[domain.Action]int, len(s.counts))
	for a, n := range s.counts {
		out[a] = n
	}
	return out
}

func (s *Service) record(ctx context.Context, event domain.ShelfEvent) {
	s.mu.Lock()
	s.counts[event.Action]++
	s.mu.Unlock()

	details := map[string]interface{}{
		"order_id":    event.OrderID.String(),
		"order_name":  event.OrderName,
		"temperature": event.Temperature,
		"shelf":       event.Shelf,
		"value":       event.Value,
	}
	s.logger.Info(actionName(event.Action), describe(event), event.OrderID.String(), details)

	if s.repo != nil {
		if err := s.repo.Save(ctx, event); err != nil {
			s.logger.Error("ledger_save_failed", "Failed to save shelf event", event.OrderID.String(), details, err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishShelfEvent(ctx, event); err != nil {
			s.logger.Error("rabbitmq_publish_failed", "Failed to publish shelf event", event.OrderID.String(), details, err)
		}
	}
}

func actionName(a domain.Action) string {
	if a == domain.ActionMissed {
		return "delivery_missed"
	}
	return "order_" + string(a)
}

func describe(e domain.ShelfEvent) string {
	switch e.Action {
	case domain.ActionPlaced:
		return fmt.Sprintf("Order %s placed on %s shelf", e.OrderName, e.Shelf)
	case domain.ActionRelocated:
		return fmt.Sprintf("Order %s moved from overflow to %s shelf", e.OrderName, e.Shelf)
	case domain.ActionDiscarded:
		return fmt.Sprintf("Order %s discarded from overflow shelf", e.OrderName)
	case domain.ActionExpired:
		return fmt.Sprintf("Order %s expired on %s shelf", e.OrderName, e.Shelf)
	case domain.ActionDelivered:
		return fmt.Sprintf("Order %s picked up from %s shelf with value %.3f", e.OrderName, e.Shelf, e.Value)
	case domain.ActionDropped:
		return fmt.Sprintf("Order %s dropped, no shelf space", e.OrderName)
	case domain.ActionMissed:
		return fmt.Sprintf("Order %s was gone at pickup", e.OrderName)
	default:
		return fmt.Sprintf("Order %s %s", e.OrderName, e.Action)
	}
}

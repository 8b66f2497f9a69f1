package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
	"github.com/google/uuid"
)

var ErrLedgerDisabled = errors.New("event ledger is disabled")

var allActions = []domain.Action{
	domain.ActionPlaced,
	domain.ActionRelocated,
	domain.ActionDiscarded,
	domain.ActionExpired,
	domain.ActionDelivered,
	domain.ActionDropped,
	domain.ActionMissed,
}

type Service struct {
	manager interfaces.ShelfManager
	repo    interfaces.EventRepository
	journal interfaces.Journal
	logger  logger.Logger
}

// NewService builds the diagnostics queries. repo may be nil when the ledger
// is disabled.
func NewService(manager interfaces.ShelfManager, repo interfaces.EventRepository, journal interfaces.Journal, logger logger.Logger) *Service {
	return &Service{
		manager: manager,
		repo:    repo,
		journal: journal,
		logger:  logger,
	}
}

func (s *Service) GetShelves(ctx context.Context) (*interfaces.ShelvesResponse, error) {
	snap := s.manager.Snapshot()

	resp := &interfaces.ShelvesResponse{
		TakenAt: snap.TakenAt.UTC().Format(time.RFC3339Nano),
		Shelves: make([]interfaces.ShelfResponse, 0, len(snap.Shelves)),
	}
	for _, sh := range snap.Shelves {
		orders := make([]interfaces.ShelfOrder, 0, len(sh.Entries))
		for _, e := range sh.Entries {
			orders = append(orders, interfaces.ShelfOrder{
				ID:          e.OrderID,
				Name:        e.OrderName,
				Temperature: e.Temperature,
				Slot:        e.Slot,
				Value:       e.Value,
			})
		}
		resp.Shelves = append(resp.Shelves, interfaces.ShelfResponse{
			Name:     sh.Shelf,
			Capacity: sh.Capacity,
			Free:     sh.Free,
			Orders:   orders,
		})
	}
	return resp, nil
}

// GetOrderHistory returns ErrOrderNotFound when the ledger is disabled or
// holds no events for the order.
func (s *Service) GetOrderHistory(ctx context.Context, orderID uuid.UUID) ([]domain.ShelfEvent, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOrderNotFound, ErrLedgerDisabled)
	}

	events, err := s.repo.HistoryByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.ErrOrderNotFound
	}
	return events, nil
}

// GetStats reports in-process event counts since start, with every action
// present.
func (s *Service) GetStats(ctx context.Context) (map[domain.Action]int, error) {
	return withAllActions(s.journal.Counts()), nil
}

// GetLedgerStats counts the events stored in the ledger, across runs
func (s *Service) GetLedgerStats(ctx context.Context) (map[domain.Action]int, error) {
	if s.repo == nil {
		return nil, ErrLedgerDisabled
	}

	counts, err := s.repo.CountByAction(ctx)
	if err != nil {
		s.logger.Error("ledger_query_failed", "Failed to count ledger events", "", nil, err)
		return nil, err
	}
	return withAllActions(counts), nil
}

func withAllActions(counts map[domain.Action]int) map[domain.Action]int {
	stats := make(map[domain.Action]int, len(allActions))
	for _, a := range allActions {
		stats[a] = counts[a]
	}
	return stats
}

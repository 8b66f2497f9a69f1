package postgres

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
	"github.com/google/uuid"
)

type eventRepository struct {
	db DB
}

func NewEventRepository(db DB) interfaces.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Save(ctx context.Context, e domain.ShelfEvent) error {
	query := `
		INSERT INTO shelf_events (id, order_id, order_name, temperature, action, shelf, value, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		e.ID, e.OrderID, e.OrderName, string(e.Temperature), string(e.Action), string(e.Shelf), e.Value, e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert shelf event: %w", err)
	}
	return nil
}

func (r *eventRepository) HistoryByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.ShelfEvent, error) {
	query := `
		SELECT id, order_id, order_name, temperature, action, shelf, value, occurred_at
		FROM shelf_events
		WHERE order_id = $1
		ORDER BY occurred_at ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var events []domain.ShelfEvent
	for rows.Next() {
		var (
			e                          domain.ShelfEvent
			temperature, action, shelf string
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &e.OrderName, &temperature, &action, &shelf, &e.Value, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan shelf event: %w", err)
		}
		e.Temperature = domain.Temperature(temperature)
		e.Action = domain.Action(action)
		e.Shelf = domain.ShelfKind(shelf)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return events, nil
}

func (r *eventRepository) CountByAction(ctx context.Context) (map[domain.Action]int, error) {
	rows, err := r.db.Query(ctx, `SELECT action, COUNT(*) FROM shelf_events GROUP BY action`)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Action]int)
	for rows.Next() {
		var (
			action string
			n      int
		)
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		counts[domain.Action(action)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event counts: %w", err)
	}

	return counts, nil
}

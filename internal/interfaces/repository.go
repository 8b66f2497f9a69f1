package interfaces

import (
	"context"

	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/google/uuid"
)

// Ledger repository (Adapter/Postgres). Append-only audit of shelf events;
// shelf state is never rebuilt from it.
type EventRepository interface {
	Save(ctx context.Context, event domain.ShelfEvent) error
	HistoryByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.ShelfEvent, error)
	CountByAction(ctx context.Context) (map[domain.Action]int, error)
}

package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
)

type orderReader struct {
	mu     sync.Mutex
	orders []*domain.Order
	next   int
}

// LoadOrders reads a JSON array of order definitions
func LoadOrders(path string) ([]*domain.Order, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open orders file: %w", err)
	}
	defer f.Close()

	return DecodeOrders(f)
}

func DecodeOrders(r io.Reader) ([]*domain.Order, error) {
	var msgs []interfaces.OrderMessage
	if err := json.NewDecoder(r).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]*domain.Order, 0, len(msgs))
	seen := make(map[string]int, len(msgs))
	for i, msg := range msgs {
		o, err := msg.ToOrder()
		if err != nil {
			return nil, fmt.Errorf("invalid order at index %d: %w", i, err)
		}
		if j, dup := seen[o.ID.String()]; dup {
			return nil, fmt.Errorf("invalid order at index %d: id %s already used at index %d", i, o.ID, j)
		}
		seen[o.ID.String()] = i
		orders = append(orders, o)
	}
	return orders, nil
}

// NewOrderSource serves the loaded orders in file order
func NewOrderSource(orders []*domain.Order) interfaces.OrderSource {
	return &orderReader{orders: orders}
}

func (r *orderReader) Next(ctx context.Context) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.next >= len(r.orders) {
		return nil, io.EOF
	}
	o := r.orders[r.next]
	r.next++
	return o, nil
}

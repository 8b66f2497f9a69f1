package intake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/file"
	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kitchenRecorder struct {
	mu     sync.Mutex
	orders []*domain.Order
	closed bool
	err    error
}

func (k *kitchenRecorder) Submit(_ context.Context, o *domain.Order) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.err != nil {
		return k.err
	}
	k.orders = append(k.orders, o)
	return nil
}

func (k *kitchenRecorder) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.closed = true
}

func orders(t *testing.T, n int) []*domain.Order {
	t.Helper()
	out := make([]*domain.Order, 0, n)
	for i := 0; i < n; i++ {
		o, err := domain.NewOrder(uuid.New(), "Order", domain.TemperatureCold, 100, 0.1)
		require.NoError(t, err)
		out = append(out, o)
	}
	return out
}

func TestRun_SubmitsAllInOrderThenCloses(t *testing.T) {
	defs := orders(t, 5)
	k := &kitchenRecorder{}
	svc := NewService(file.NewOrderSource(defs), k, logger.Nop(), time.Millisecond)

	require.NoError(t, svc.Run(context.Background()))

	assert.Equal(t, defs, k.orders)
	assert.True(t, k.closed)
}

func TestRun_StopsOnCancel(t *testing.T) {
	k := &kitchenRecorder{}
	svc := NewService(file.NewOrderSource(orders(t, 100)), k, logger.Nop(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool {
		k.mu.Lock()
		defer k.mu.Unlock()
		return len(k.orders) == 1
	}, 5*time.Second, time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	assert.Len(t, k.orders, 1)
	assert.True(t, k.closed)
}

func TestRun_PropagatesSubmitFailure(t *testing.T) {
	k := &kitchenRecorder{err: errors.New("kitchen is closed")}
	svc := NewService(file.NewOrderSource(orders(t, 1)), k, logger.Nop(), time.Millisecond)

	err := svc.Run(context.Background())
	assert.ErrorContains(t, err, "failed to submit order")
	assert.True(t, k.closed)
}

package amqp

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/app/kitchen"
	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kitchenStub struct {
	orders []*domain.Order
	err    error
}

func (k *kitchenStub) Submit(_ context.Context, o *domain.Order) error {
	if k.err != nil {
		return k.err
	}
	k.orders = append(k.orders, o)
	return nil
}

func (k *kitchenStub) Close() {}

func TestHandleOrder(t *testing.T) {
	id := uuid.New()
	body, err := json.Marshal(interfaces.OrderMessage{ID: id.String(), Name: "Ramen", Temp: "hot", ShelfLife: 120, DecayRate: 0.3})
	require.NoError(t, err)

	k := &kitchenStub{}
	h := NewOrderHandler(k, logger.Nop())
	require.NoError(t, h.HandleOrder(context.Background(), body))

	require.Len(t, k.orders, 1)
	assert.Equal(t, id, k.orders[0].ID)
	assert.Equal(t, domain.TemperatureHot, k.orders[0].Temp)
}

func TestHandleOrder_Rejections(t *testing.T) {
	h := NewOrderHandler(&kitchenStub{}, logger.Nop())
	ctx := context.Background()

	err := h.HandleOrder(ctx, []byte("{not json"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, interfaces.ErrRetryLater)

	err = h.HandleOrder(ctx, []byte(`{"name":"x","temp":"warm","shelfLife":10}`))
	assert.ErrorIs(t, err, domain.ErrInvalidTemperature)
	assert.NotErrorIs(t, err, interfaces.ErrRetryLater)
}

func TestHandleOrder_ClosedKitchenRequeues(t *testing.T) {
	h := NewOrderHandler(&kitchenStub{err: kitchen.ErrClosed}, logger.Nop())

	err := h.HandleOrder(context.Background(), []byte(`{"name":"x","temp":"cold","shelfLife":10}`))
	assert.ErrorIs(t, err, interfaces.ErrRetryLater)
}

func TestHandleEvent_PrintsLine(t *testing.T) {
	o, err := domain.NewOrder(uuid.New(), "Gelato", domain.TemperatureFrozen, 100, 0.1)
	require.NoError(t, err)
	at := time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC)
	body, err := json.Marshal(domain.NewShelfEvent(o, domain.ActionDelivered, domain.ShelfFrozen, 0.75, at))
	require.NoError(t, err)

	var out bytes.Buffer
	h := NewNotificationHandler(logger.Nop())
	h.out = &out

	require.NoError(t, h.HandleEvent(context.Background(), body))
	assert.Contains(t, out.String(), "09:30:15.000 delivered")
	assert.Contains(t, out.String(), "Gelato (frozen, "+o.ID.String()+") on frozen shelf, value 0.750")

	assert.Error(t, h.HandleEvent(context.Background(), []byte("nope")))
}

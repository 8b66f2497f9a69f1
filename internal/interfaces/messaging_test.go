package interfaces

import (
	"testing"

	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderMessage_ToOrder(t *testing.T) {
	id := uuid.New()
	o, err := OrderMessage{ID: id.String(), Name: "Banana Split", Temp: "Frozen", ShelfLife: 20, DecayRate: 0.63}.ToOrder()
	require.NoError(t, err)
	assert.Equal(t, id, o.ID)
	assert.Equal(t, domain.TemperatureFrozen, o.Temp)
	assert.Equal(t, 20, o.ShelfLife)

	back := NewOrderMessage(o)
	assert.Equal(t, "frozen", back.Temp)
	assert.Equal(t, id.String(), back.ID)
}

func TestOrderMessage_ToOrderErrors(t *testing.T) {
	cases := []struct {
		name string
		msg  OrderMessage
		want error
	}{
		{name: "bad_id", msg: OrderMessage{ID: "nope", Temp: "hot", ShelfLife: 1}, want: domain.ErrInvalidOrderID},
		{name: "bad_temp", msg: OrderMessage{Temp: "warm", ShelfLife: 1}, want: domain.ErrInvalidTemperature},
		{name: "bad_life", msg: OrderMessage{Temp: "cold", ShelfLife: 0}, want: domain.ErrInvalidShelfLife},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.msg.ToOrder()
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestOrderMessage_GeneratesMissingID(t *testing.T) {
	o, err := OrderMessage{Name: "Soup", Temp: "hot", ShelfLife: 30}.ToOrder()
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, o.ID)
}

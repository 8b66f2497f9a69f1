package shelf

import (
	"fmt"
	"testing"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShelf_PlaceUntilFull(t *testing.T) {
	clock := newFakeClock()
	s := NewShelf(domain.TemperatureHot, 3, clock.Now)

	for i := 0; i < 3; i++ {
		require.True(t, s.HasFreeSlot())
		require.True(t, s.TryPlace(newOrder(t, fmt.Sprintf("hot-%d", i), domain.TemperatureHot)))
		require.NoError(t, s.Validate())
	}

	assert.False(t, s.HasFreeSlot())
	extra := newOrder(t, "extra", domain.TemperatureHot)
	assert.False(t, s.TryPlace(extra))
	assert.False(t, s.Contains(extra.ID))
	assert.Equal(t, 3, s.Len())
	require.NoError(t, s.Validate())
}

func TestShelf_TryPlaceStampsFirstPlacement(t *testing.T) {
	clock := newFakeClock()
	s := NewShelf(domain.TemperatureCold, 1, clock.Now)
	o := newOrder(t, "salad", domain.TemperatureCold)

	require.True(t, s.TryPlace(o))
	assert.Equal(t, clock.Now(), o.PlacedAt())
}

func TestShelf_RemoveForDelivery(t *testing.T) {
	s := NewShelf(domain.TemperatureFrozen, 2, nil)
	a := newOrder(t, "a", domain.TemperatureFrozen)
	b := newOrder(t, "b", domain.TemperatureFrozen)
	require.True(t, s.TryPlace(a))
	require.True(t, s.TryPlace(b))

	assert.True(t, s.RemoveForDelivery(a.ID))
	assert.False(t, s.RemoveForDelivery(a.ID), "second removal must miss")
	assert.False(t, s.RemoveForDelivery(uuid.New()))
	assert.True(t, s.Contains(b.ID))
	assert.Equal(t, 1, s.Len())
	require.NoError(t, s.Validate())

	// freed slot is reusable
	assert.True(t, s.TryPlace(newOrder(t, "c", domain.TemperatureFrozen)))
	require.NoError(t, s.Validate())
}

func TestShelf_Take_ReportsSlotAndValue(t *testing.T) {
	clock := newFakeClock()
	s := NewShelf(domain.TemperatureHot, 2, clock.Now)
	o := newOrderLife(t, "pizza", domain.TemperatureHot, 100, 0.5)
	require.True(t, s.TryPlace(o))

	clock.Advance(10 * time.Second)
	e, ok := s.Take(o.ID)
	require.True(t, ok)
	assert.Equal(t, o.ID, e.OrderID)
	assert.Equal(t, domain.ShelfHot, e.Shelf)
	assert.Equal(t, 0, e.Slot)
	assert.InDelta(t, 0.85, e.Value, 1e-9)
}

func TestShelf_SweepRemovesOnlyExpired(t *testing.T) {
	clock := newFakeClock()
	s := NewShelf(domain.TemperatureHot, 4, clock.Now)
	short := newOrderLife(t, "short", domain.TemperatureHot, 2, 0.01)
	long := newOrderLife(t, "long", domain.TemperatureHot, 300, 0.01)
	require.True(t, s.TryPlace(short))
	require.True(t, s.TryPlace(long))

	assert.Empty(t, s.Sweep())

	clock.Advance(3 * time.Second)
	removed := s.Sweep()
	require.Len(t, removed, 1)
	assert.Equal(t, short.ID, removed[0].ID)
	assert.False(t, s.Contains(short.ID))
	assert.True(t, s.Contains(long.ID))
	require.NoError(t, s.Validate())
}

func TestShelf_RejectsForeignTemperature(t *testing.T) {
	s := NewShelf(domain.TemperatureHot, 1, nil)
	err := recoverError(func() {
		s.TryPlace(newOrder(t, "ice", domain.TemperatureCold))
	})
	assert.ErrorIs(t, err, domain.ErrContractViolation)
	assert.Equal(t, 0, s.Len())
}

func TestShelf_ZeroCapacity(t *testing.T) {
	s := NewShelf(domain.TemperatureCold, 0, nil)
	assert.False(t, s.HasFreeSlot())
	assert.False(t, s.TryPlace(newOrder(t, "x", domain.TemperatureCold)))
	require.NoError(t, s.Validate())
}

func TestStore_ValidateDetectsCorruption(t *testing.T) {
	s := NewShelf(domain.TemperatureHot, 2, nil)
	o := newOrder(t, "x", domain.TemperatureHot)
	require.True(t, s.TryPlace(o))

	// Simulate a lost free slot.
	s.store.free = s.store.free[:0]
	assert.ErrorIs(t, s.Validate(), domain.ErrInvariantViolation)
}

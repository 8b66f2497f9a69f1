package shelf

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverflow_PopOldestIsFIFO(t *testing.T) {
	s := NewOverflowShelf(5, nil, nil)
	a := newOrder(t, "A", domain.TemperatureHot)
	cold := newOrder(t, "cold", domain.TemperatureCold)
	b := newOrder(t, "B", domain.TemperatureHot)
	c := newOrder(t, "C", domain.TemperatureHot)
	for _, o := range []*domain.Order{a, cold, b, c} {
		require.True(t, s.TryPlace(o))
	}

	assert.Equal(t, a.ID, s.PopOldestOfTemperature(domain.TemperatureHot).ID)
	assert.Equal(t, b.ID, s.PopOldestOfTemperature(domain.TemperatureHot).ID)
	assert.Equal(t, c.ID, s.PopOldestOfTemperature(domain.TemperatureHot).ID)
	assert.False(t, s.HasAnyOfTemperature(domain.TemperatureHot))
	assert.True(t, s.HasAnyOfTemperature(domain.TemperatureCold))
	assert.False(t, s.HasAnyOfTemperature(domain.TemperatureFrozen))
	require.NoError(t, s.Validate())
}

func TestOverflow_FIFOSurvivesMiddleRemoval(t *testing.T) {
	s := NewOverflowShelf(4, nil, nil)
	a := newOrder(t, "A", domain.TemperatureFrozen)
	b := newOrder(t, "B", domain.TemperatureFrozen)
	c := newOrder(t, "C", domain.TemperatureFrozen)
	for _, o := range []*domain.Order{a, b, c} {
		require.True(t, s.TryPlace(o))
	}

	require.True(t, s.RemoveForDelivery(b.ID))
	d := newOrder(t, "D", domain.TemperatureFrozen)
	require.True(t, s.TryPlace(d))

	var got []string
	for _, o := range s.Oldest(domain.TemperatureFrozen) {
		got = append(got, o.Name)
	}
	assert.Equal(t, []string{"A", "C", "D"}, got)
	require.NoError(t, s.Validate())
}

func TestOverflow_PopOldestOnEmptyPanics(t *testing.T) {
	s := NewOverflowShelf(2, nil, nil)
	require.True(t, s.TryPlace(newOrder(t, "cold", domain.TemperatureCold)))

	err := recoverError(func() { s.PopOldestOfTemperature(domain.TemperatureHot) })
	assert.ErrorIs(t, err, domain.ErrContractViolation)
	assert.Equal(t, 1, s.Len())
	require.NoError(t, s.Validate())
}

func TestOverflow_DiscardRandomRequiresFullShelf(t *testing.T) {
	s := NewOverflowShelf(2, nil, nil)
	require.True(t, s.TryPlace(newOrder(t, "a", domain.TemperatureHot)))

	err := recoverError(func() { s.DiscardRandom() })
	assert.ErrorIs(t, err, domain.ErrContractViolation)
	assert.Equal(t, 1, s.Len())
}

func TestOverflow_DiscardRandomZeroCapacity(t *testing.T) {
	s := NewOverflowShelf(0, nil, nil)
	assert.Nil(t, s.DiscardRandom())
	assert.False(t, s.TryPlace(newOrder(t, "a", domain.TemperatureHot)))
	require.NoError(t, s.Validate())
}

func TestOverflow_DiscardRandomUnlinksFIFO(t *testing.T) {
	s := NewOverflowShelf(3, nil, rand.New(rand.NewSource(7)))
	orders := []*domain.Order{
		newOrder(t, "h", domain.TemperatureHot),
		newOrder(t, "c", domain.TemperatureCold),
		newOrder(t, "f", domain.TemperatureFrozen),
	}
	for _, o := range orders {
		require.True(t, s.TryPlace(o))
	}

	discarded := s.DiscardRandom()
	require.NotNil(t, discarded)
	assert.False(t, s.Contains(discarded.ID))
	assert.False(t, s.HasAnyOfTemperature(discarded.Temp))
	assert.True(t, s.HasFreeSlot())
	require.NoError(t, s.Validate())
}

func TestOverflow_DiscardRandomIsUniform(t *testing.T) {
	const capacity, rounds = 4, 4000
	rnd := rand.New(rand.NewSource(42))
	counts := make(map[string]int)

	for i := 0; i < rounds; i++ {
		s := NewOverflowShelf(capacity, nil, rnd)
		for j := 0; j < capacity; j++ {
			require.True(t, s.TryPlace(newOrder(t, fmt.Sprintf("o%d", j), domain.TemperatureCold)))
		}
		counts[s.DiscardRandom().Name]++
	}

	require.Len(t, counts, capacity)
	for name, n := range counts {
		assert.InDelta(t, rounds/capacity, n, rounds/capacity*0.2, "order %s", name)
	}
}

func TestOverflow_SweepUsesDoubleDecay(t *testing.T) {
	clock := newFakeClock()
	s := NewOverflowShelf(3, clock.Now, nil)
	// life 10, rate 1: after 4s the value is -0.2 at modifier 2 and 0.2 at modifier 1
	o := newOrderLife(t, "soup", domain.TemperatureHot, 10, 1)
	keep := newOrderLife(t, "ice", domain.TemperatureFrozen, 300, 0)
	require.True(t, s.TryPlace(o))
	require.True(t, s.TryPlace(keep))

	clock.Advance(4 * time.Second)
	assert.False(t, o.Expired(domain.RegularDecayModifier, clock.Now()))

	removed := s.Sweep()
	require.Len(t, removed, 1)
	assert.Equal(t, o.ID, removed[0].ID)
	assert.False(t, s.HasAnyOfTemperature(domain.TemperatureHot))
	assert.True(t, s.HasAnyOfTemperature(domain.TemperatureFrozen))
	require.NoError(t, s.Validate())
}

func TestOverflow_RandomOperationsKeepInvariants(t *testing.T) {
	clock := newFakeClock()
	rnd := rand.New(rand.NewSource(1))
	s := NewOverflowShelf(6, clock.Now, rand.New(rand.NewSource(2)))
	var present []*domain.Order

	for step := 0; step < 2000; step++ {
		temp := domain.Temperatures[rnd.Intn(len(domain.Temperatures))]
		switch op := rnd.Intn(5); {
		case op == 0:
			o := newOrderLife(t, "o", temp, 1+rnd.Intn(30), rnd.Float64())
			if s.TryPlace(o) {
				present = append(present, o)
			}
		case op == 1 && len(present) > 0:
			i := rnd.Intn(len(present))
			s.RemoveForDelivery(present[i].ID)
		case op == 2 && s.HasAnyOfTemperature(temp):
			s.PopOldestOfTemperature(temp)
		case op == 3 && !s.HasFreeSlot():
			s.DiscardRandom()
		case op == 4:
			clock.Advance(time.Second)
			s.Sweep()
		}
		require.NoError(t, s.Validate(), "step %d", step)
	}

	s.RemoveForDelivery(uuid.New())
	require.NoError(t, s.Validate())
}

package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Decay modifiers applied to an order's decay rate depending on where it sits.
const (
	RegularDecayModifier  = 1.0
	OverflowDecayModifier = 2.0
)

// Order represents a cooked order waiting on a shelf for pickup
type Order struct {
	ID        uuid.UUID
	Name      string
	Temp      Temperature
	ShelfLife int
	DecayRate float64

	// Mutated only while the owning shelf's lock is held.
	placedAt            time.Time
	relocated           bool
	lifeAfterRelocation float64
}

// NewOrder creates a new order with validation applied
func NewOrder(id uuid.UUID, name string, temp Temperature, shelfLife int, decayRate float64) (*Order, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidOrderID
	}
	if !temp.Valid() {
		return nil, ErrInvalidTemperature
	}
	if shelfLife <= 0 {
		return nil, ErrInvalidShelfLife
	}
	if decayRate < 0 || math.IsNaN(decayRate) || math.IsInf(decayRate, 0) {
		return nil, ErrInvalidDecayRate
	}

	return &Order{
		ID:                  id,
		Name:                strings.TrimSpace(name),
		Temp:                temp,
		ShelfLife:           shelfLife,
		DecayRate:           decayRate,
		lifeAfterRelocation: math.Inf(1),
	}, nil
}

// PlacedAt returns the time of the last placement or relocation
func (o *Order) PlacedAt() time.Time {
	return o.placedAt
}

// Relocated reports whether the order was moved off the overflow shelf
func (o *Order) Relocated() bool {
	return o.relocated
}

// LifeAfterRelocation returns the recomputed lifetime in seconds.
// It is +Inf until the order is relocated.
func (o *Order) LifeAfterRelocation() float64 {
	return o.lifeAfterRelocation
}

// MarkPlaced stamps the placement time on the first placement only.
// Relocated orders keep the timestamp set by ApplyRelocation.
func (o *Order) MarkPlaced(now time.Time) {
	if o.relocated {
		return
	}
	o.placedAt = now
}

// ApplyRelocation recomputes the effective lifetime at the moment the order
// leaves the overflow shelf. The result may be non-positive; the order is then
// already expired and is left for the next sweep or delivery lookup.
func (o *Order) ApplyRelocation(now time.Time) {
	timeOnOverflow := now.Sub(o.placedAt).Seconds()
	o.lifeAfterRelocation = float64(o.ShelfLife) - timeOnOverflow - o.DecayRate*timeOnOverflow*OverflowDecayModifier
	o.placedAt = now
	o.relocated = true
}

// EffectiveLife is the lifetime the freshness value is normalized against
func (o *Order) EffectiveLife() float64 {
	if o.relocated {
		return o.lifeAfterRelocation
	}
	return float64(o.ShelfLife)
}

// RemainingLifeValue returns the normalized freshness of the order.
// 1 means fresh, values <= 0 mean expired.
func (o *Order) RemainingLifeValue(decayModifier float64, now time.Time) float64 {
	life := o.EffectiveLife()
	if life <= 0 {
		return 0
	}

	age := now.Sub(o.placedAt).Seconds()
	return (life - age - o.DecayRate*age*decayModifier) / life
}

// Expired reports whether the freshness value has reached zero
func (o *Order) Expired(decayModifier float64, now time.Time) bool {
	return o.RemainingLifeValue(decayModifier, now) <= 0
}

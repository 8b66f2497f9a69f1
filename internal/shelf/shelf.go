package shelf

import (
	"sync"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/google/uuid"
)

// Entry describes one occupied slot at the time of a read
type Entry struct {
	OrderID     uuid.UUID
	OrderName   string
	Temperature domain.Temperature
	Shelf       domain.ShelfKind
	Slot        int
	Value       float64
}

// Shelf is a fixed-capacity store for orders of a single temperature
type Shelf struct {
	mu    sync.Mutex
	kind  domain.ShelfKind
	temp  domain.Temperature
	store store
	now   func() time.Time
}

// NewShelf creates a regular shelf. A nil clock means time.Now.
func NewShelf(temp domain.Temperature, capacity int, now func() time.Time) *Shelf {
	if now == nil {
		now = time.Now
	}
	return &Shelf{
		kind:  domain.ShelfFor(temp),
		temp:  temp,
		store: newStore(capacity),
		now:   now,
	}
}

func (s *Shelf) Kind() domain.ShelfKind {
	return s.kind
}

func (s *Shelf) Temperature() domain.Temperature {
	return s.temp
}

func (s *Shelf) Capacity() int {
	return s.store.capacity
}

// Len returns the number of orders on the shelf
func (s *Shelf) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.occupied()
}

// TryPlace puts the order into a free slot. It reports false, with no side
// effect, when the shelf is full.
func (s *Shelf) TryPlace(o *domain.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tryPlaceLocked(o)
}

func (s *Shelf) tryPlaceLocked(o *domain.Order) bool {
	if o.Temp != s.temp {
		panic(wrongTemperature(s.kind, o))
	}
	if _, ok := s.store.occupy(o); !ok {
		return false
	}
	o.MarkPlaced(s.now())
	return true
}

func (s *Shelf) HasFreeSlot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.hasFree()
}

// Contains reports whether the order currently occupies a slot
func (s *Shelf) Contains(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.store.lookup(id)
	return ok
}

// RemoveForDelivery frees the order's slot. It reports false when the order
// is not on this shelf.
func (s *Shelf) RemoveForDelivery(id uuid.UUID) bool {
	_, ok := s.Take(id)
	return ok
}

// Take removes the order and returns it together with its freshness value at
// the moment of removal.
func (s *Shelf) Take(id uuid.UUID) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.takeLocked(id)
}

func (s *Shelf) takeLocked(id uuid.UUID) (Entry, bool) {
	pos, ok := s.store.lookup(id)
	if !ok {
		return Entry{}, false
	}

	o := s.store.release(pos)
	return Entry{
		OrderID:     o.ID,
		OrderName:   o.Name,
		Temperature: o.Temp,
		Shelf:       s.kind,
		Slot:        pos,
		Value:       o.RemainingLifeValue(domain.RegularDecayModifier, s.now()),
	}, true
}

// Sweep removes every order whose freshness has run out
func (s *Shelf) Sweep() []*domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *Shelf) sweepLocked() []*domain.Order {
	var removed []*domain.Order
	for _, pos := range s.store.expiredSlots(domain.RegularDecayModifier, s.now()) {
		removed = append(removed, s.store.release(pos))
	}
	return removed
}

// Entries lists the occupied slots
func (s *Shelf) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entriesLocked()
}

func (s *Shelf) entriesLocked() []Entry {
	return s.store.entries(s.kind, domain.RegularDecayModifier, s.now())
}

// Validate checks the slot bookkeeping invariants
func (s *Shelf) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateLocked()
}

func (s *Shelf) validateLocked() error {
	if err := s.store.validate(); err != nil {
		return err
	}
	for _, o := range s.store.slots {
		if o != nil && o.Temp != s.temp {
			return wrongTemperature(s.kind, o)
		}
	}
	return nil
}

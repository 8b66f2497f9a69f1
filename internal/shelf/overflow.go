package shelf

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/google/uuid"
)

// OverflowShelf holds orders of any temperature when their regular shelf is
// full. Orders decay twice as fast here.
type OverflowShelf struct {
	mu    sync.Mutex
	store store
	order fifo
	rnd   *rand.Rand
	now   func() time.Time
}

// NewOverflowShelf creates the overflow shelf. A nil clock means time.Now and
// a nil rnd is seeded from the clock.
func NewOverflowShelf(capacity int, now func() time.Time, rnd *rand.Rand) *OverflowShelf {
	if now == nil {
		now = time.Now
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	st := newStore(capacity)
	return &OverflowShelf{
		store: st,
		order: newFIFO(st.capacity),
		rnd:   rnd,
		now:   now,
	}
}

func (s *OverflowShelf) Kind() domain.ShelfKind {
	return domain.ShelfOverflow
}

func (s *OverflowShelf) Capacity() int {
	return s.store.capacity
}

func (s *OverflowShelf) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.occupied()
}

func (s *OverflowShelf) TryPlace(o *domain.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tryPlaceLocked(o)
}

func (s *OverflowShelf) tryPlaceLocked(o *domain.Order) bool {
	list := o.Temp.Index()
	if list < 0 {
		panic(fmt.Errorf("%w: order %s has temperature %q", domain.ErrContractViolation, o.ID, o.Temp))
	}

	pos, ok := s.store.occupy(o)
	if !ok {
		return false
	}
	s.order.pushBack(list, pos)
	o.MarkPlaced(s.now())
	return true
}

func (s *OverflowShelf) HasFreeSlot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.hasFree()
}

func (s *OverflowShelf) Contains(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.store.lookup(id)
	return ok
}

// HasAnyOfTemperature reports whether any order of the temperature sits here
func (s *OverflowShelf) HasAnyOfTemperature(t domain.Temperature) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasAnyLocked(t)
}

func (s *OverflowShelf) hasAnyLocked(t domain.Temperature) bool {
	list := t.Index()
	return list >= 0 && !s.order.empty(list)
}

// PopOldestOfTemperature removes the longest-waiting order of the
// temperature. Calling it when HasAnyOfTemperature is false panics.
func (s *OverflowShelf) PopOldestOfTemperature(t domain.Temperature) *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popOldestLocked(t)
}

func (s *OverflowShelf) popOldestLocked(t domain.Temperature) *domain.Order {
	if !s.hasAnyLocked(t) {
		panic(fmt.Errorf("%w: no %s order on overflow shelf", domain.ErrContractViolation, t))
	}
	return s.removeLocked(s.order.front(t.Index()))
}

// DiscardRandom removes a uniformly random order from a full shelf. It
// returns nil only for a zero-capacity shelf and panics if the shelf has a
// free slot.
func (s *OverflowShelf) DiscardRandom() *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discardRandomLocked()
}

func (s *OverflowShelf) discardRandomLocked() *domain.Order {
	if s.store.capacity == 0 {
		return nil
	}
	if !s.store.full() {
		panic(fmt.Errorf("%w: random discard with %d free slots", domain.ErrContractViolation, len(s.store.free)))
	}
	// Full shelf: every slot is occupied, so a uniform slot is a uniform order.
	return s.removeLocked(s.rnd.Intn(s.store.capacity))
}

func (s *OverflowShelf) removeLocked(pos int) *domain.Order {
	o := s.store.slots[pos]
	if o == nil {
		panic(fmt.Errorf("%w: remove of empty slot %d", domain.ErrContractViolation, pos))
	}
	s.order.unlink(o.Temp.Index(), pos)
	return s.store.release(pos)
}

func (s *OverflowShelf) RemoveForDelivery(id uuid.UUID) bool {
	_, ok := s.Take(id)
	return ok
}

// Take removes the order and returns its freshness at the moment of removal
func (s *OverflowShelf) Take(id uuid.UUID) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.store.lookup(id)
	if !ok {
		return Entry{}, false
	}

	o := s.removeLocked(pos)
	return Entry{
		OrderID:     o.ID,
		OrderName:   o.Name,
		Temperature: o.Temp,
		Shelf:       domain.ShelfOverflow,
		Slot:        pos,
		Value:       o.RemainingLifeValue(domain.OverflowDecayModifier, s.now()),
	}, true
}

// Sweep removes every order whose freshness has run out
func (s *OverflowShelf) Sweep() []*domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []*domain.Order
	for _, pos := range s.store.expiredSlots(domain.OverflowDecayModifier, s.now()) {
		removed = append(removed, s.removeLocked(pos))
	}
	return removed
}

// Oldest lists the orders of a temperature from oldest to newest
func (s *OverflowShelf) Oldest(t domain.Temperature) []*domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := t.Index()
	if list < 0 {
		return nil
	}
	var out []*domain.Order
	for _, pos := range s.order.walk(list) {
		out = append(out, s.store.slots[pos])
	}
	return out
}

func (s *OverflowShelf) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entriesLocked()
}

func (s *OverflowShelf) entriesLocked() []Entry {
	return s.store.entries(domain.ShelfOverflow, domain.OverflowDecayModifier, s.now())
}

func (s *OverflowShelf) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateLocked()
}

func (s *OverflowShelf) validateLocked() error {
	if err := s.store.validate(); err != nil {
		return err
	}

	linked := 0
	for _, t := range domain.Temperatures {
		list := t.Index()
		slots := s.order.walk(list)
		if len(slots) != s.order.size[list] {
			return fmt.Errorf("%w: %s list walks %d slots, size says %d",
				domain.ErrInvariantViolation, t, len(slots), s.order.size[list])
		}
		for _, pos := range slots {
			o := s.store.slots[pos]
			if o == nil {
				return fmt.Errorf("%w: %s list links empty slot %d", domain.ErrInvariantViolation, t, pos)
			}
			if o.Temp != t {
				return fmt.Errorf("%w: %s list links %s order in slot %d", domain.ErrInvariantViolation, t, o.Temp, pos)
			}
		}
		linked += len(slots)
	}

	if linked != s.store.occupied() {
		return fmt.Errorf("%w: %d slots linked, %d occupied", domain.ErrInvariantViolation, linked, s.store.occupied())
	}
	return nil
}

package shelf

import (
	"fmt"
	"sort"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/google/uuid"
)

// store is the slot bookkeeping shared by regular and overflow shelves.
// None of its methods lock; the owning shelf's mutex must be held.
type store struct {
	capacity int
	slots    []*domain.Order
	free     []int
	location map[uuid.UUID]int
}

func newStore(capacity int) store {
	if capacity < 0 {
		capacity = 0
	}

	s := store{
		capacity: capacity,
		slots:    make([]*domain.Order, capacity),
		free:     make([]int, 0, capacity),
		location: make(map[uuid.UUID]int, capacity),
	}
	// Highest index first so slot 0 is handed out first.
	for pos := capacity - 1; pos >= 0; pos-- {
		s.free = append(s.free, pos)
	}
	return s
}

func (s *store) hasFree() bool {
	return len(s.free) > 0
}

func (s *store) full() bool {
	return len(s.free) == 0
}

func (s *store) occupied() int {
	return len(s.location)
}

// occupy puts the order into a free slot and returns the slot index
func (s *store) occupy(o *domain.Order) (int, bool) {
	if len(s.free) == 0 {
		return -1, false
	}
	if _, dup := s.location[o.ID]; dup {
		panic(fmt.Errorf("%w: order %s already on shelf", domain.ErrContractViolation, o.ID))
	}

	pos := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	s.slots[pos] = o
	s.location[o.ID] = pos
	return pos, true
}

// release frees an occupied slot and returns the order that held it
func (s *store) release(pos int) *domain.Order {
	o := s.slots[pos]
	if o == nil {
		panic(fmt.Errorf("%w: release of empty slot %d", domain.ErrContractViolation, pos))
	}

	s.slots[pos] = nil
	delete(s.location, o.ID)
	s.free = append(s.free, pos)
	return o
}

func (s *store) lookup(id uuid.UUID) (int, bool) {
	pos, ok := s.location[id]
	return pos, ok
}

// expiredSlots lists occupied slots whose order has no freshness left
func (s *store) expiredSlots(modifier float64, now time.Time) []int {
	var expired []int
	for _, pos := range s.location {
		if s.slots[pos].Expired(modifier, now) {
			expired = append(expired, pos)
		}
	}
	sort.Ints(expired)
	return expired
}

// entries lists occupied slots in slot order
func (s *store) entries(kind domain.ShelfKind, modifier float64, now time.Time) []Entry {
	out := make([]Entry, 0, len(s.location))
	for pos, o := range s.slots {
		if o == nil {
			continue
		}
		out = append(out, Entry{
			OrderID:     o.ID,
			OrderName:   o.Name,
			Temperature: o.Temp,
			Slot:        pos,
			Value:       o.RemainingLifeValue(modifier, now),
			Shelf:       kind,
		})
	}
	return out
}

func (s *store) validate() error {
	if len(s.location)+len(s.free) != s.capacity {
		return fmt.Errorf("%w: %d placed + %d free != capacity %d",
			domain.ErrInvariantViolation, len(s.location), len(s.free), s.capacity)
	}

	for id, pos := range s.location {
		if pos < 0 || pos >= s.capacity {
			return fmt.Errorf("%w: order %s mapped to slot %d out of range", domain.ErrInvariantViolation, id, pos)
		}
		if s.slots[pos] == nil || s.slots[pos].ID != id {
			return fmt.Errorf("%w: slot %d does not hold order %s", domain.ErrInvariantViolation, pos, id)
		}
	}

	seen := make(map[int]struct{}, len(s.free))
	for _, pos := range s.free {
		if _, dup := seen[pos]; dup {
			return fmt.Errorf("%w: slot %d freed twice", domain.ErrInvariantViolation, pos)
		}
		seen[pos] = struct{}{}
		if s.slots[pos] != nil {
			return fmt.Errorf("%w: free slot %d is occupied", domain.ErrInvariantViolation, pos)
		}
	}
	return nil
}

func wrongTemperature(kind domain.ShelfKind, o *domain.Order) error {
	return fmt.Errorf("%w: %s order %s on %s shelf", domain.ErrContractViolation, o.Temp, o.ID, kind)
}

package shelf

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/domain"
)

// Capacities sizes the four shelves. They are fixed for the Manager's lifetime.
type Capacities struct {
	Hot      int
	Cold     int
	Frozen   int
	Overflow int
}

type options struct {
	now    func() time.Time
	rnd    *rand.Rand
	checks bool
}

type Option func(*options)

// WithClock replaces time.Now for placement and freshness computations.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRand sets the source used for random discards.
func WithRand(rnd *rand.Rand) Option {
	return func(o *options) { o.rnd = rnd }
}

// WithSeed seeds the random discard source. Zero keeps a time-based seed.
func WithSeed(seed int64) Option {
	return func(o *options) {
		if seed != 0 {
			o.rnd = rand.New(rand.NewSource(seed))
		}
	}
}

// WithInvariantChecks validates every touched shelf after each mutation and
// panics on the first inconsistency.
func WithInvariantChecks(enabled bool) Option {
	return func(o *options) { o.checks = enabled }
}

// Manager owns the hot, cold, frozen and overflow shelves and is the only
// entry point for placing, delivering and sweeping orders.
//
// Lock order is overflow, then a regular shelf (hot, cold, frozen when more
// than one is needed), then the consistency mutex. The consistency mutex is
// always innermost.
type Manager struct {
	hot      *Shelf
	cold     *Shelf
	frozen   *Shelf
	overflow *OverflowShelf

	consistency sync.Mutex
	now         func() time.Time
	checks      bool
}

func NewManager(caps Capacities, opts ...Option) *Manager {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Manager{
		hot:      NewShelf(domain.TemperatureHot, caps.Hot, o.now),
		cold:     NewShelf(domain.TemperatureCold, caps.Cold, o.now),
		frozen:   NewShelf(domain.TemperatureFrozen, caps.Frozen, o.now),
		overflow: NewOverflowShelf(caps.Overflow, o.now, o.rnd),
		now:      o.now,
		checks:   o.checks,
	}
}

// Placement is the outcome of PlaceOrder. Shelf is where the order landed,
// ShelfNone when it was dropped. Relocated is the overflow order moved to
// RelocatedTo to make room, with its recomputed lifetime in RelocatedLife;
// Discarded is the overflow order thrown away, valued at DiscardedValue.
type Placement struct {
	Order          *domain.Order
	Shelf          domain.ShelfKind
	Relocated      *domain.Order
	RelocatedTo    domain.ShelfKind
	RelocatedLife  float64
	Discarded      *domain.Order
	DiscardedValue float64
	Dropped        bool
	At             time.Time
}

// Delivery is the outcome of DeliverOrder. Value is the freshness at pickup;
// a found order with Value <= 0 was picked up already expired.
type Delivery struct {
	Order *domain.Order
	Found bool
	Shelf domain.ShelfKind
	Value float64
	At    time.Time
}

// Sweep lists the expired orders removed from one shelf
type Sweep struct {
	Shelf  domain.ShelfKind
	Orders []*domain.Order
	At     time.Time
}

// ShelfSnapshot is a point-in-time listing of one shelf
type ShelfSnapshot struct {
	Shelf    domain.ShelfKind
	Capacity int
	Free     int
	Entries  []Entry
}

// Snapshot is a consistent view of all four shelves
type Snapshot struct {
	TakenAt time.Time
	Shelves []ShelfSnapshot
}

// Shelf returns the regular shelf for a temperature
func (m *Manager) Shelf(t domain.Temperature) *Shelf {
	switch t {
	case domain.TemperatureHot:
		return m.hot
	case domain.TemperatureCold:
		return m.cold
	case domain.TemperatureFrozen:
		return m.frozen
	default:
		panic(fmt.Errorf("%w: no shelf for temperature %q", domain.ErrContractViolation, t))
	}
}

func (m *Manager) Overflow() *OverflowShelf {
	return m.overflow
}

// PlaceOrder stores a freshly cooked order. It tries the order's own shelf,
// then overflow; when overflow is full it relocates the oldest overflow order
// of the first temperature (hot, cold, frozen) whose shelf has room, and
// failing that discards a random overflow order. With a zero-capacity
// overflow shelf the order is dropped.
func (m *Manager) PlaceOrder(o *domain.Order) Placement {
	p := Placement{Order: o}

	regular := m.Shelf(o.Temp)
	placed := func() bool {
		regular.mu.Lock()
		defer regular.mu.Unlock()
		if !regular.tryPlaceLocked(o) {
			return false
		}
		m.assert(regular.validateLocked)
		return true
	}()
	if placed {
		p.Shelf = regular.kind
		p.At = o.PlacedAt()
		return p
	}

	m.overflow.mu.Lock()
	defer m.overflow.mu.Unlock()

	if m.overflow.tryPlaceLocked(o) {
		m.assert(m.overflow.validateLocked)
		p.Shelf = domain.ShelfOverflow
		p.At = o.PlacedAt()
		return p
	}

	for _, t := range domain.Temperatures {
		if m.relocateLocked(t, o, &p) {
			return p
		}
	}

	p.At = m.now()
	p.Discarded = m.overflow.discardRandomLocked()
	if p.Discarded == nil {
		p.Dropped = true
		return p
	}
	p.DiscardedValue = p.Discarded.RemainingLifeValue(domain.OverflowDecayModifier, p.At)
	if !m.overflow.tryPlaceLocked(o) {
		panic(fmt.Errorf("%w: overflow slot freed by discard was not available", domain.ErrInvariantViolation))
	}
	m.assert(m.overflow.validateLocked)
	p.Shelf = domain.ShelfOverflow
	return p
}

// relocateLocked moves the oldest overflow order of temperature t to its own
// shelf and puts incoming into the freed overflow slot. The overflow lock must
// be held.
func (m *Manager) relocateLocked(t domain.Temperature, incoming *domain.Order, p *Placement) bool {
	target := m.Shelf(t)
	target.mu.Lock()
	defer target.mu.Unlock()

	if !m.overflow.hasAnyLocked(t) || !target.store.hasFree() {
		return false
	}

	m.consistency.Lock()
	defer m.consistency.Unlock()

	now := m.now()
	moved := m.overflow.popOldestLocked(t)
	moved.ApplyRelocation(now)
	if !target.tryPlaceLocked(moved) {
		panic(fmt.Errorf("%w: %s shelf lost its free slot during relocation", domain.ErrInvariantViolation, t))
	}
	if !m.overflow.tryPlaceLocked(incoming) {
		panic(fmt.Errorf("%w: overflow slot freed by relocation was not available", domain.ErrInvariantViolation))
	}
	m.assert(target.validateLocked)
	m.assert(m.overflow.validateLocked)

	p.Shelf = domain.ShelfOverflow
	p.Relocated = moved
	p.RelocatedTo = target.kind
	p.RelocatedLife = moved.LifeAfterRelocation()
	p.At = now
	return true
}

// DeliverOrder removes the order for pickup. Overflow is searched first since
// a relocation may have moved the order at any time; then its own shelf. An
// order that is no longer present is reported as not found.
func (m *Manager) DeliverOrder(o *domain.Order) Delivery {
	d := Delivery{Order: o}

	if e, ok := m.overflow.Take(o.ID); ok {
		m.assert(m.overflow.Validate)
		d.Found, d.Shelf, d.Value = true, domain.ShelfOverflow, e.Value
		d.At = m.now()
		return d
	}

	regular := m.Shelf(o.Temp)
	if e, ok := regular.Take(o.ID); ok {
		m.assert(regular.Validate)
		d.Found, d.Shelf, d.Value = true, regular.kind, e.Value
	}
	d.At = m.now()
	return d
}

// SweepExpired removes expired orders from every shelf. Each shelf is swept
// under its own lock; the sweep as a whole is not atomic.
func (m *Manager) SweepExpired() []Sweep {
	sweeps := make([]Sweep, 0, 4)

	removed := m.overflow.Sweep()
	m.assert(m.overflow.Validate)
	sweeps = append(sweeps, Sweep{Shelf: domain.ShelfOverflow, Orders: removed, At: m.now()})

	for _, s := range []*Shelf{m.hot, m.cold, m.frozen} {
		removed := s.Sweep()
		m.assert(s.Validate)
		sweeps = append(sweeps, Sweep{Shelf: s.kind, Orders: removed, At: m.now()})
	}
	return sweeps
}

// Snapshot reads all four shelves under their locks and the consistency
// mutex, so no relocation can be observed half done.
func (m *Manager) Snapshot() Snapshot {
	m.overflow.mu.Lock()
	defer m.overflow.mu.Unlock()
	m.hot.mu.Lock()
	defer m.hot.mu.Unlock()
	m.cold.mu.Lock()
	defer m.cold.mu.Unlock()
	m.frozen.mu.Lock()
	defer m.frozen.mu.Unlock()
	m.consistency.Lock()
	defer m.consistency.Unlock()

	snap := Snapshot{TakenAt: m.now()}
	snap.Shelves = append(snap.Shelves, ShelfSnapshot{
		Shelf:    domain.ShelfOverflow,
		Capacity: m.overflow.store.capacity,
		Free:     len(m.overflow.store.free),
		Entries:  m.overflow.entriesLocked(),
	})
	for _, s := range []*Shelf{m.hot, m.cold, m.frozen} {
		snap.Shelves = append(snap.Shelves, ShelfSnapshot{
			Shelf:    s.kind,
			Capacity: s.store.capacity,
			Free:     len(s.store.free),
			Entries:  s.entriesLocked(),
		})
	}
	return snap
}

// Validate checks the invariants of all four shelves under the same locks as
// Snapshot.
func (m *Manager) Validate() error {
	m.overflow.mu.Lock()
	defer m.overflow.mu.Unlock()
	m.hot.mu.Lock()
	defer m.hot.mu.Unlock()
	m.cold.mu.Lock()
	defer m.cold.mu.Unlock()
	m.frozen.mu.Lock()
	defer m.frozen.mu.Unlock()
	m.consistency.Lock()
	defer m.consistency.Unlock()

	if err := m.overflow.validateLocked(); err != nil {
		return err
	}
	for _, s := range []*Shelf{m.hot, m.cold, m.frozen} {
		if err := s.validateLocked(); err != nil {
			return fmt.Errorf("%s shelf: %w", s.kind, err)
		}
	}
	return nil
}

func (m *Manager) assert(validate func() error) {
	if !m.checks {
		return
	}
	if err := validate(); err != nil {
		panic(err)
	}
}

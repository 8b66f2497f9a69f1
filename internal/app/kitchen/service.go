package kitchen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
	"golang.org/x/sync/errgroup"
)

var (
	ErrClosed         = errors.New("kitchen is closed")
	ErrDuplicateOrder = errors.New("order already submitted")
)

// Service cooks submitted orders on a pool of chefs, puts them on the
// shelves and hands them to the couriers.
type Service struct {
	manager  interfaces.ShelfManager
	journal  interfaces.Journal
	couriers interfaces.CourierService
	logger   logger.Logger
	chefs    int
	cookTime time.Duration

	mu     sync.RWMutex
	closed bool
	orders chan *domain.Order

	// quit is closed first by Close so blocked senders release mu
	quit     chan struct{}
	quitOnce sync.Once
	// stopped is closed when Run returns
	stopped  chan struct{}
	stopOnce sync.Once

	// ids accepted during this run; an id is never cooked twice
	seen sync.Map
}

func NewService(
	manager interfaces.ShelfManager,
	journal interfaces.Journal,
	couriers interfaces.CourierService,
	logger logger.Logger,
	chefs int,
	cookTime time.Duration,
) *Service {
	if chefs < 1 {
		chefs = 1
	}
	return &Service{
		manager:  manager,
		journal:  journal,
		couriers: couriers,
		logger:   logger,
		chefs:    chefs,
		cookTime: cookTime,
		orders:   make(chan *domain.Order, chefs),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Submit queues an order for cooking. It blocks while every chef is busy and
// rejects an id that was already accepted. Once the kitchen is closed or its
// chefs have stopped it returns ErrClosed.
func (s *Service) Submit(ctx context.Context, o *domain.Order) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-s.quit:
		return ErrClosed
	case <-s.stopped:
		return ErrClosed
	default:
	}

	if _, loaded := s.seen.LoadOrStore(o.ID, struct{}{}); loaded {
		return fmt.Errorf("%w: %s", ErrDuplicateOrder, o.ID)
	}

	select {
	case <-ctx.Done():
		s.seen.Delete(o.ID)
		return ctx.Err()
	case <-s.quit:
		s.seen.Delete(o.ID)
		return ErrClosed
	case <-s.stopped:
		s.seen.Delete(o.ID)
		return ErrClosed
	case s.orders <- o:
		s.logger.Debug("order_received", fmt.Sprintf("Order %s received", o.Name), o.ID.String(),
			map[string]interface{}{"temperature": o.Temp, "shelf_life": o.ShelfLife, "decay_rate": o.DecayRate})
		return nil
	}
}

// Close stops accepting orders. Run returns once the queued ones are cooked.
func (s *Service) Close() {
	s.quitOnce.Do(func() { close(s.quit) })

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.orders)
	}
}

// Run starts the chefs and blocks until the kitchen is closed and drained or
// ctx is cancelled. Couriers are dispatched with ctx itself, so pickups
// scheduled before the kitchen drains outlive Run.
func (s *Service) Run(ctx context.Context) error {
	defer s.stopOnce.Do(func() { close(s.stopped) })

	g, gctx := errgroup.WithContext(ctx)
	for i := 1; i <= s.chefs; i++ {
		chef := i
		g.Go(func() error {
			return s.chefLoop(gctx, ctx, chef)
		})
	}
	return g.Wait()
}

func (s *Service) chefLoop(ctx, dispatchCtx context.Context, chef int) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case o, ok := <-s.orders:
			if !ok {
				return nil
			}
			if !s.cook(ctx, dispatchCtx, chef, o) {
				return nil
			}
		}
	}
}

func (s *Service) cook(ctx, dispatchCtx context.Context, chef int, o *domain.Order) bool {
	if s.cookTime > 0 {
		timer := time.NewTimer(s.cookTime)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			s.logger.Debug("cooking_cancelled", fmt.Sprintf("Order %s was not finished", o.Name), o.ID.String(), nil)
			return false
		case <-timer.C:
		}
	}

	p := s.manager.PlaceOrder(o)
	s.journal.RecordPlacement(ctx, p)
	s.logger.Debug("order_cooked", fmt.Sprintf("Chef %d finished order %s", chef, o.Name), o.ID.String(),
		map[string]interface{}{"chef": chef, "shelf": p.Shelf, "dropped": p.Dropped})

	s.couriers.Dispatch(dispatchCtx, o)
	return true
}

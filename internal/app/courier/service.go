package courier

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
)

// Service sends a courier for every dispatched order. Each pickup waits a
// random delay in [minDelay, maxDelay]; at most `couriers` deliveries run at
// once.
type Service struct {
	manager  interfaces.ShelfManager
	journal  interfaces.Journal
	logger   logger.Logger
	minDelay time.Duration
	maxDelay time.Duration
	slots    chan struct{}

	rndMu sync.Mutex
	rnd   *rand.Rand

	pending sync.WaitGroup
}

func NewService(
	manager interfaces.ShelfManager,
	journal interfaces.Journal,
	logger logger.Logger,
	couriers int,
	minDelay, maxDelay time.Duration,
	seed int64,
) *Service {
	if couriers < 1 {
		couriers = 1
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{
		manager:  manager,
		journal:  journal,
		logger:   logger,
		minDelay: minDelay,
		maxDelay: maxDelay,
		slots:    make(chan struct{}, couriers),
		rnd:      rand.New(rand.NewSource(seed)),
	}
}

// Dispatch schedules a pickup and returns immediately. Cancelling ctx
// abandons pickups that have not started; deliveries already under way
// complete.
func (s *Service) Dispatch(ctx context.Context, o *domain.Order) {
	delay := s.pickupDelay()
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.deliverAfter(ctx, o, delay)
	}()
}

// Wait blocks until every dispatched pickup has finished or been abandoned
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) deliverAfter(ctx context.Context, o *domain.Order, delay time.Duration) {
	s.logger.Debug("courier_dispatched",
		fmt.Sprintf("Courier for order %s arrives in %s", o.Name, delay),
		o.ID.String(), map[string]interface{}{"delay_ms": delay.Milliseconds()})

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.abandon(o)
		return
	case <-timer.C:
	}

	select {
	case <-ctx.Done():
		s.abandon(o)
		return
	case s.slots <- struct{}{}:
	}
	defer func() { <-s.slots }()

	d := s.manager.DeliverOrder(o)
	s.journal.RecordDelivery(context.WithoutCancel(ctx), d)
}

func (s *Service) abandon(o *domain.Order) {
	s.logger.Debug("courier_cancelled", fmt.Sprintf("Pickup of order %s abandoned", o.Name), o.ID.String(), nil)
}

func (s *Service) pickupDelay() time.Duration {
	span := s.maxDelay - s.minDelay
	if span <= 0 {
		return s.minDelay
	}

	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.minDelay + time.Duration(s.rnd.Int63n(int64(span)+1))
}

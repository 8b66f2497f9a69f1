package cleanup

import (
	"context"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
)

// Service sweeps expired orders off the shelves on a fixed schedule
type Service struct {
	manager      interfaces.ShelfManager
	journal      interfaces.Journal
	logger       logger.Logger
	initialDelay time.Duration
	interval     time.Duration
}

func NewService(manager interfaces.ShelfManager, journal interfaces.Journal, logger logger.Logger, initialDelay, interval time.Duration) *Service {
	return &Service{
		manager:      manager,
		journal:      journal,
		logger:       logger,
		initialDelay: initialDelay,
		interval:     interval,
	}
}

// Run sweeps once after the initial delay and then every interval until ctx
// is cancelled.
func (s *Service) Run(ctx context.Context) error {
	delay := time.NewTimer(s.initialDelay)
	defer delay.Stop()

	select {
	case <-ctx.Done():
		return nil
	case <-delay.C:
	}
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	sweeps := s.manager.SweepExpired()

	removed := 0
	for _, sw := range sweeps {
		removed += len(sw.Orders)
	}
	if removed > 0 {
		s.journal.RecordSweeps(ctx, sweeps)
	}
	s.logger.Debug("cleanup_completed", "Expired orders swept", "", map[string]interface{}{"removed": removed})
}

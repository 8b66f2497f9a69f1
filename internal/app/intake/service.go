package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
)

// Service feeds orders from a source to the kitchen at a fixed pace
type Service struct {
	source   interfaces.OrderSource
	kitchen  interfaces.KitchenService
	logger   logger.Logger
	interval time.Duration
}

func NewService(source interfaces.OrderSource, kitchen interfaces.KitchenService, logger logger.Logger, interval time.Duration) *Service {
	return &Service{
		source:   source,
		kitchen:  kitchen,
		logger:   logger,
		interval: interval,
	}
}

// Run submits one order immediately and one per interval after that. The
// kitchen is closed when the source runs dry or ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	defer s.kitchen.Close()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	submitted := 0
	for {
		o, err := s.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			s.logger.Info("intake_completed", fmt.Sprintf("All %d orders submitted", submitted), "", nil)
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read next order: %w", err)
		}

		if err := s.kitchen.Submit(ctx, o); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to submit order %s: %w", o.ID, err)
		}
		submitted++

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

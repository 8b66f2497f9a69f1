package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
)

// Service publishes order definitions to the broker at a fixed pace, for a
// kitchen running in message mode to pick up.
type Service struct {
	source    interfaces.OrderSource
	publisher interfaces.OrderPublisher
	logger    logger.Logger
	interval  time.Duration
}

func NewService(source interfaces.OrderSource, publisher interfaces.OrderPublisher, logger logger.Logger, interval time.Duration) *Service {
	return &Service{
		source:    source,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
	}
}

// PublishAll returns the number of orders published once the source is
// exhausted or ctx is cancelled.
func (s *Service) PublishAll(ctx context.Context) (int, error) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	published := 0
	for {
		o, err := s.source.Next(ctx)
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return published, nil
		}
		if err != nil {
			return published, fmt.Errorf("failed to read next order: %w", err)
		}

		msg := interfaces.NewOrderMessage(o)
		if err := s.publisher.PublishOrder(ctx, msg); err != nil {
			s.logger.Error("rabbitmq_publish_failed", "Failed to publish order", msg.ID, nil, err)
			return published, err
		}
		published++
		s.logger.Debug("order_published", fmt.Sprintf("Order %s published", o.Name), msg.ID,
			map[string]interface{}{"temperature": o.Temp})

		select {
		case <-ctx.Done():
			return published, nil
		case <-ticker.C:
		}
	}
}

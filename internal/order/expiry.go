package order

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
	"github.com/junedipasaribu/ecommerce-sub000/internal/metric"
)

const expiryBatchSize = 100

// ExpirySweeper moves orders that sat unpaid past their deadline to
// EXPIRED, which releases their reserved stock.
type ExpirySweeper struct {
	svc  *OrderService
	tick time.Duration
	now  func() time.Time
}

func NewExpirySweeper(svc *OrderService) *ExpirySweeper {
	return &ExpirySweeper{
		svc:  svc,
		tick: time.Minute,
		now:  time.Now,
	}
}

func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	expired, err := s.svc.repo.ListExpiredPending(ctx, s.now(), expiryBatchSize)
	if err != nil {
		log.Printf("failed to list expired pending orders: %v", err)
		return
	}

	for _, order := range expired {
		_, err := s.svc.RequestTransition(ctx, order.ID, domain.StatusExpired, domain.ActorSystem)
		if errors.Is(err, domain.ErrInvalidTransition) {
			// The order was paid or cancelled between the listing and
			// the update. Nothing to do.
			continue
		}
		if err != nil {
			log.Printf("failed to expire order %s: %v", order.ID, err)
			continue
		}
		metric.OrdersExpiredTotal.Inc()
		log.Printf("order %s expired after payment deadline", order.Code)
	}
}

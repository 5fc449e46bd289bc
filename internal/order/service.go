package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/junedipasaribu/ecommerce-sub000/internal/catalog"
	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
	"github.com/junedipasaribu/ecommerce-sub000/internal/metric"
)

// OrderService is the only writer of order status. Every transition goes
// through the table check, the actor check and a compare-and-set update,
// so concurrent writers cannot double-apply side effects.
type OrderService struct {
	repo    OrderRepository
	catalog catalog.Catalog
	now     func() time.Time
}

func NewOrderService(repo OrderRepository, cat catalog.Catalog) *OrderService {
	return &OrderService{
		repo:    repo,
		catalog: cat,
		now:     time.Now,
	}
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

// GetOrderForCustomer hides foreign orders behind not-found so order IDs
// stay unguessable.
func (s *OrderService) GetOrderForCustomer(ctx context.Context, customerID string, id uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListOrdersByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	return s.repo.ListOrdersByCustomer(ctx, customerID)
}

func (s *OrderService) ListOrders(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	return s.repo.ListOrders(ctx, status)
}

// RequestTransition validates the move against the transition table and
// the acting role, then applies it with a compare-and-set. Losing the
// race surfaces as ErrInvalidTransition, same as asking for an illegal
// move outright.
func (s *OrderService) RequestTransition(ctx context.Context, id uuid.UUID, target domain.OrderStatus, actor domain.Actor) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.ActorAllowed(actor, target) {
		return nil, domain.ErrInvalidTransition
	}
	if !domain.CanTransition(order.Status, target) {
		return nil, domain.ErrInvalidTransition
	}

	event, err := transitionEvent(order, order.Status, target, actor, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, order.Status, target, event); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return nil, domain.ErrInvalidTransition
		}
		return nil, err
	}

	metric.OrderTransitionsTotal.WithLabelValues(string(target)).Inc()

	// Only the CAS winner reaches this point, so stock is restored and
	// the attempt counter dropped exactly once per order.
	if target.ReleasesStock() {
		s.releaseOrderStock(ctx, order)
		if err := s.repo.DeletePaymentAttempt(ctx, id); err != nil {
			log.Printf("failed to delete payment attempt for order %s: %v", id, err)
		}
	}

	order.Status = target
	order.UpdatedAt = s.now()
	return order, nil
}

func (s *OrderService) releaseOrderStock(ctx context.Context, order *domain.Order) {
	adjustments := make([]catalog.StockAdjustment, 0, len(order.Items))
	for _, item := range order.Items {
		adjustments = append(adjustments, catalog.StockAdjustment{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if err := s.catalog.RestoreStock(ctx, adjustments); err != nil {
		log.Printf("failed to restore stock for order %s: %v", order.ID, err)
	}
}

func transitionEvent(order *domain.Order, from, to domain.OrderStatus, actor domain.Actor, at time.Time) (*OutboxEvent, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"order_id":    order.ID,
		"order_code":  order.Code,
		"customer_id": order.CustomerID,
		"from":        from,
		"to":          to,
		"actor":       actor,
		"occurred_at": at,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal transition payload: %w", err)
	}

	return &OutboxEvent{
		AggregateID: order.ID.String(),
		EventType:   "ORDER_" + string(to),
		Payload:     payload,
	}, nil
}

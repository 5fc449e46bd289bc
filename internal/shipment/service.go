package shipment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
	"github.com/junedipasaribu/ecommerce-sub000/internal/order"
)

type orderStore interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	AttachShipment(ctx context.Context, shipment *domain.Shipment) error
	UpsertShipment(ctx context.Context, shipment *domain.Shipment) error
	GetShipment(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error)
}

type transitioner interface {
	RequestTransition(ctx context.Context, id uuid.UUID, target domain.OrderStatus, actor domain.Actor) (*domain.Order, error)
}

// ShipmentService attaches courier tracking to paid orders and walks
// them through delivery.
type ShipmentService struct {
	store       orderStore
	transitions transitioner
	now         func() time.Time
}

func NewShipmentService(store orderStore, transitions transitioner) *ShipmentService {
	return &ShipmentService{
		store:       store,
		transitions: transitions,
		now:         time.Now,
	}
}

// AttachTracking records the courier's tracking number. Only settled
// orders that have not left the warehouse can take one.
func (s *ShipmentService) AttachTracking(ctx context.Context, orderID uuid.UUID, courierName, trackingNumber string) (*domain.Shipment, error) {
	o, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.Status != domain.StatusPaid && o.Status != domain.StatusProcessing {
		return nil, domain.ErrInvalidTransition
	}

	shipment := &domain.Shipment{
		OrderID:        orderID,
		CourierName:    courierName,
		TrackingNumber: trackingNumber,
		Status:         domain.ShippingStatusOnDelivery,
		ShippedAt:      s.now(),
	}

	// The store re-verifies the status inside the write, so a cancel
	// landing after the check above cannot end up with tracking attached.
	if err := s.store.AttachShipment(ctx, shipment); err != nil {
		if errors.Is(err, order.ErrStatusConflict) {
			return nil, domain.ErrInvalidTransition
		}
		return nil, err
	}

	return shipment, nil
}

// AdvanceToShipping hands the order to the courier. Tracking must be
// attached first.
func (s *ShipmentService) AdvanceToShipping(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	if _, err := s.store.GetShipment(ctx, orderID); err != nil {
		return nil, err
	}

	return s.transitions.RequestTransition(ctx, orderID, domain.StatusShipping, domain.ActorAdmin)
}

// AdvanceToCompleted confirms delivery: the order completes and the
// shipment is stamped as delivered.
func (s *ShipmentService) AdvanceToCompleted(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	shipment, err := s.store.GetShipment(ctx, orderID)
	if err != nil {
		return nil, err
	}

	o, err := s.transitions.RequestTransition(ctx, orderID, domain.StatusCompleted, domain.ActorAdmin)
	if err != nil {
		return nil, err
	}

	deliveredAt := s.now()
	shipment.Status = domain.ShippingStatusDelivered
	shipment.DeliveredAt = &deliveredAt
	if err := s.store.UpsertShipment(ctx, shipment); err != nil {
		return nil, err
	}

	return o, nil
}

// Track returns the shipment for a customer's own order.
func (s *ShipmentService) Track(ctx context.Context, customerID string, orderID uuid.UUID) (*domain.Shipment, error) {
	o, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, order.ErrOrderNotFound
	}

	return s.store.GetShipment(ctx, orderID)
}

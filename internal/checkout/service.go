package checkout

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
	"github.com/junedipasaribu/ecommerce-sub000/internal/order"
	"github.com/junedipasaribu/ecommerce-sub000/internal/pricing"
)

const (
	taxRatePercent  = 11
	paymentDeadline = 60 * time.Minute
	codeRetryLimit  = 3
	defaultMethod   = "KFA_PAY"
	currencyCode    = "IDR"
)

// courierRates maps supported couriers to their flat shipping cost.
var courierRates = map[string]int64{
	"JNE":     20000,
	"TIKI":    22000,
	"SICEPAT": 18000,
}

var paymentMethods = map[string]bool{
	"KFA_PAY":       true,
	"BANK_TRANSFER": true,
}

type cartStore interface {
	GetCart(ctx context.Context, customerID string) (*domain.Cart, error)
	Clear(ctx context.Context, customerID string) error
}

type addressResolver interface {
	Resolve(ctx context.Context, customerID string, id int64) (*domain.Address, error)
}

type orderCreator interface {
	CreateOrder(ctx context.Context, o *domain.Order, event *order.OutboxEvent) error
}

// CheckoutRequest carries the customer's choices for settlement.
type CheckoutRequest struct {
	CustomerID    string
	AddressID     int64
	Courier       string
	PaymentMethod string
}

// CheckoutService turns a cart into a pending order. Stock is taken
// before the order is written and handed back when the write fails, so
// a failed checkout leaves no trace.
type CheckoutService struct {
	carts     cartStore
	addresses addressResolver
	catalog   catalog.Catalog
	orders    orderCreator
	now       func() time.Time
}

func NewCheckoutService(carts cartStore, addresses addressResolver, cat catalog.Catalog, orders orderCreator) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		addresses: addresses,
		catalog:   cat,
		orders:    orders,
		now:       time.Now,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	start := s.now()

	o, err := s.checkout(ctx, req)
	if err != nil {
		metric.CheckoutsTotal.WithLabelValues(checkoutResult(err)).Inc()
		return nil, err
	}

	metric.CheckoutsTotal.WithLabelValues("success").Inc()
	metric.CheckoutDuration.Observe(s.now().Sub(start).Seconds())
	return o, nil
}

func (s *CheckoutService) checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	cart, err := s.carts.GetCart(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	// Early stock check so a sold-out line surfaces before the customer is
	// told about address or courier problems. The authoritative check is
	// still the atomic decrement below.
	for _, line := range cart.Lines {
		available, err := s.catalog.GetStock(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to check stock for product %d: %w", line.ProductID, err)
		}
		if line.Quantity > available {
			return nil, &domain.StockError{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: available,
			}
		}
	}

	addr, err := s.addresses.Resolve(ctx, req.CustomerID, req.AddressID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidAddress, err)
	}

	shippingCost, ok := courierRates[req.Courier]
	if !ok {
		return nil, domain.ErrInvalidCourier
	}

	method := req.PaymentMethod
	if method == "" {
		method = defaultMethod
	}
	if !paymentMethods[method] {
		return nil, domain.ErrInvalidPaymentMethod
	}

	totals := pricing.ComputeTotals(cart.Lines, shippingCost, taxRatePercent)

	adjustments := make([]catalog.StockAdjustment, 0, len(cart.Lines))
	items := make([]domain.OrderItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		adjustments = append(adjustments, catalog.StockAdjustment{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
		items = append(items, domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    pricing.LineSubtotal(line),
		})
	}

	// All-or-nothing reservation. A StockError here means some product
	// sold out since it was added to the cart.
	if err := s.catalog.DecrementStock(ctx, adjustments); err != nil {
		return nil, err
	}

	o, err := s.createOrderWithRetry(ctx, req.CustomerID, items, addr.Snapshot(), req.Courier, method, totals)
	if err != nil {
		// Hand the reservation back so the failure leaves no trace.
		if restoreErr := s.catalog.RestoreStock(ctx, adjustments); restoreErr != nil {
			log.Printf("failed to restore stock after checkout failure for customer %s: %v", req.CustomerID, restoreErr)
		}
		return nil, err
	}

	// The order exists either way; a stale cart only means the customer
	// clears it by hand.
	if err := s.carts.Clear(ctx, req.CustomerID); err != nil {
		log.Printf("failed to clear cart for customer %s after checkout: %v", req.CustomerID, err)
	}

	return o, nil
}

func (s *CheckoutService) createOrderWithRetry(ctx context.Context, customerID string, items []domain.OrderItem, addr domain.AddressSnapshot, courier, method string, totals pricing.Totals) (*domain.Order, error) {
	var lastErr error
	for i := 0; i < codeRetryLimit; i++ {
		now := s.now()
		o := &domain.Order{
			ID:              uuid.New(),
			Code:            "ORD-" + uuid.New().String(),
			CustomerID:      customerID,
			Items:           items,
			ShippingAddress: addr,
			Courier:         courier,
			ShippingCost:    totals.ShippingCost,
			Subtotal:        totals.Subtotal,
			Tax:             totals.Tax,
			TotalAmount:     totals.Total,
			Currency:        currencyCode,
			PaymentMethod:   method,
			Status:          domain.StatusPendingPayment,
			CreatedAt:       now,
			UpdatedAt:       now,
			ExpiresAt:       now.Add(paymentDeadline),
		}

		event, err := creationEvent(o)
		if err != nil {
			return nil, err
		}

		err = s.orders.CreateOrder(ctx, o, event)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, order.ErrDuplicateOrderCode) {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to create order after %d attempts: %w", codeRetryLimit, lastErr)
}

func creationEvent(o *domain.Order) (*order.OutboxEvent, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"order_id":     o.ID,
		"order_code":   o.Code,
		"customer_id":  o.CustomerID,
		"total_amount": o.TotalAmount,
		"currency":     o.Currency,
		"status":       o.Status,
		"expires_at":   o.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order created payload: %w", err)
	}

	return &order.OutboxEvent{
		AggregateID: o.ID.String(),
		EventType:   "ORDER_CREATED",
		Payload:     payload,
	}, nil
}

func checkoutResult(err error) string {
	var stockErr *domain.StockError
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.As(err, &stockErr):
		return "out_of_stock"
	case errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrInvalidCourier),
		errors.Is(err, domain.ErrInvalidPaymentMethod):
		return "invalid_request"
	default:
		return "error"
	}
}

package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrShipmentNotFound   = errors.New("shipment not found")
	ErrDuplicateOrderCode = errors.New("order with this code already exists")
	// ErrStatusConflict means the row's status changed between read and
	// update. Exactly one writer wins a contended transition.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// PaymentAttempt tracks failed PIN entries for one order. LockedUntil is
// set after the attempt limit is reached.
type PaymentAttempt struct {
	OrderID      uuid.UUID
	AttemptCount int
	LockedUntil  *time.Time
}

// OutboxEvent rows are written in the same transaction as the state
// change they describe and published to the broker by the poller.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type OrderRepository interface {
	// CreateOrder inserts the order and its creation event in one
	// transaction.
	CreateOrder(ctx context.Context, order *domain.Order, event *OutboxEvent) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error)
	ListOrders(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
	// UpdateStatus performs a compare-and-set on the status column and
	// records the transition event in the same transaction. Returns
	// ErrStatusConflict when the row is no longer in the expected status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, event *OutboxEvent) error
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*domain.Order, error)

	GetPaymentAttempt(ctx context.Context, orderID uuid.UUID) (*PaymentAttempt, error)
	// IncrementPaymentAttempt bumps the counter in a single statement and
	// arms the lock once the new count reaches the threshold. Concurrent
	// failures serialize on the row, so no increment is ever lost.
	IncrementPaymentAttempt(ctx context.Context, orderID uuid.UUID, lockThreshold int, lockedUntil time.Time) (*PaymentAttempt, error)
	DeletePaymentAttempt(ctx context.Context, orderID uuid.UUID) error

	// AttachShipment writes the shipment only while the order can still
	// take tracking; returns ErrStatusConflict otherwise.
	AttachShipment(ctx context.Context, shipment *domain.Shipment) error
	UpsertShipment(ctx context.Context, shipment *domain.Shipment) error
	GetShipment(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error)

	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, eventID int64) error

	RunMigrations(*Credentials) error
	Close() error
}

package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
	"github.com/junedipasaribu/ecommerce-sub000/internal/metric"
	"github.com/junedipasaribu/ecommerce-sub000/internal/order"
)

const (
	maxAttempts  = 3
	lockDuration = 30 * time.Minute
)

var ErrNoCredential = errors.New("no payment credential registered for customer")

type orderStore interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetPaymentAttempt(ctx context.Context, orderID uuid.UUID) (*order.PaymentAttempt, error)
	IncrementPaymentAttempt(ctx context.Context, orderID uuid.UUID, lockThreshold int, lockedUntil time.Time) (*order.PaymentAttempt, error)
	DeletePaymentAttempt(ctx context.Context, orderID uuid.UUID) error
}

type transitioner interface {
	RequestTransition(ctx context.Context, id uuid.UUID, target domain.OrderStatus, actor domain.Actor) (*domain.Order, error)
}

// CredentialStore resolves a customer's PIN hash.
type CredentialStore interface {
	PINHash(ctx context.Context, customerID string) (string, error)
}

// Receipt is returned for a successful authorization.
type Receipt struct {
	Reference string    `json:"reference"`
	OrderCode string    `json:"order_code"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	PaidAt    time.Time `json:"paid_at"`
}

// Authorizer settles pending orders against the customer's PIN. Three
// wrong entries lock the order for thirty minutes; the counter survives
// restarts because attempts live next to the order rows.
type Authorizer struct {
	store       orderStore
	transitions transitioner
	credentials CredentialStore
	now         func() time.Time
}

func NewAuthorizer(store orderStore, transitions transitioner, credentials CredentialStore) *Authorizer {
	return &Authorizer{
		store:       store,
		transitions: transitions,
		credentials: credentials,
		now:         time.Now,
	}
}

func (a *Authorizer) Authorize(ctx context.Context, customerID string, orderID uuid.UUID, pin string) (*Receipt, error) {
	o, err := a.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, order.ErrOrderNotFound
	}
	if o.Status != domain.StatusPendingPayment {
		return nil, domain.ErrOrderNotPayable
	}

	attempt, err := a.store.GetPaymentAttempt(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := a.now()
	if attempt.LockedUntil != nil {
		if now.Before(*attempt.LockedUntil) {
			metric.PaymentAttemptsTotal.WithLabelValues("locked").Inc()
			return nil, domain.ErrPaymentLocked
		}
		// The lock has run out, the counter starts over. Dropping the row
		// is idempotent, so racing requests all land on a fresh count.
		if err := a.store.DeletePaymentAttempt(ctx, orderID); err != nil {
			return nil, fmt.Errorf("failed to reset payment attempts: %w", err)
		}
	}

	hash, err := a.credentials.PINHash(ctx, customerID)
	if err != nil {
		return nil, err
	}

	match, err := VerifyPIN(pin, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify pin: %w", err)
	}

	if !match {
		// The counter moves in the store, not in memory: concurrent wrong
		// entries each get their own slot and the third one locks, no
		// matter how the requests interleave.
		recorded, err := a.store.IncrementPaymentAttempt(ctx, orderID, maxAttempts, now.Add(lockDuration))
		if err != nil {
			return nil, fmt.Errorf("failed to record attempt: %w", err)
		}

		if recorded.AttemptCount >= maxAttempts {
			metric.PaymentAttemptsTotal.WithLabelValues("locked").Inc()
			return nil, domain.ErrPaymentLocked
		}
		metric.PaymentAttemptsTotal.WithLabelValues("mismatch").Inc()
		return nil, &domain.PinMismatchError{AttemptsLeft: maxAttempts - recorded.AttemptCount}
	}

	// Only the winner of the compare-and-set reaches PAID; losing means
	// the order expired or was cancelled while the PIN was being typed.
	updated, err := a.transitions.RequestTransition(ctx, orderID, domain.StatusPaid, domain.ActorSystem)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, domain.ErrOrderNotPayable
		}
		return nil, err
	}

	if err := a.store.DeletePaymentAttempt(ctx, orderID); err != nil {
		log.Printf("failed to drop payment attempts for order %s: %v", orderID, err)
	}

	metric.PaymentAttemptsTotal.WithLabelValues("success").Inc()
	return &Receipt{
		Reference: "PAY-" + uuid.New().String(),
		OrderCode: updated.Code,
		Amount:    updated.TotalAmount,
		Currency:  updated.Currency,
		PaidAt:    now,
	}, nil
}

// MemoryCredentialStore keeps PIN hashes in memory, keyed by customer.
type MemoryCredentialStore struct {
	mu     sync.RWMutex
	hashes map[string]string
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{hashes: make(map[string]string)}
}

func (m *MemoryCredentialStore) SetPIN(customerID, pin string) error {
	hash, err := HashPIN(pin)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hashes[customerID] = hash
	return nil
}

func (m *MemoryCredentialStore) PINHash(_ context.Context, customerID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hash, ok := m.hashes[customerID]
	if !ok {
		return "", ErrNoCredential
	}
	return hash, nil
}

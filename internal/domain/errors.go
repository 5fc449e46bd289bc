package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrInvalidAddress       = errors.New("address does not exist or does not belong to the customer")
	ErrInvalidCourier       = errors.New("unknown courier option")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrUnknownStatus        = errors.New("unknown order status")

	// ErrInvalidTransition is deliberately vague: internal state names are
	// not exposed to untrusted callers.
	ErrInvalidTransition = errors.New("operation not allowed in current state")

	ErrOrderNotPayable = errors.New("order is not available for payment")
	ErrPaymentLocked   = errors.New("payment is locked after too many failed attempts")
)

// StockError carries the offending product and what is actually available
// so the UI can prompt a cart adjustment.
type StockError struct {
	ProductID int64
	Requested int32
	Available int32
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// PinMismatchError tells the caller how many attempts remain before
// lockout. It never carries the PIN or its hash.
type PinMismatchError struct {
	AttemptsLeft int
}

func (e *PinMismatchError) Error() string {
	return fmt.Sprintf("invalid PIN, %d attempt(s) left", e.AttemptsLeft)
}

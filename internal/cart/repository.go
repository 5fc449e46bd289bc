package cart

import (
	"context"
	"errors"

	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrLineNotFound = errors.New("line not found in cart")
)

// CartRepository is the persistence contract for carts. Carts are created
// lazily on first add and destroyed on clear/checkout.
type CartRepository interface {
	GetCart(ctx context.Context, customerID string) (*domain.Cart, error)
	// AddOrIncrement creates the cart and/or line when missing; when the
	// line exists it increments quantity and keeps the original price
	// snapshot.
	AddOrIncrement(ctx context.Context, customerID string, line domain.CartLine) error
	UpdateLineQuantity(ctx context.Context, customerID string, productID int64, quantity int32) error
	RemoveLine(ctx context.Context, customerID string, productID int64) error
	DeleteCart(ctx context.Context, customerID string) error
}

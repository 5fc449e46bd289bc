package cart

import (
	"context"
	"errors"

	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
)

var ErrCacheMiss = errors.New("cart not in cache")

type CartCache interface {
	Get(ctx context.Context, customerID string) (*domain.Cart, error)
	Set(ctx context.Context, customerID string, cart *domain.Cart) error
	Delete(ctx context.Context, customerID string) error
}

package address

import (
	"context"
	"errors"

	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
)

var (
	ErrAddressNotFound      = errors.New("address not found")
	ErrPrimaryAddressDelete = errors.New("primary address cannot be deleted")
)

type AddressRepository interface {
	Create(ctx context.Context, addr *domain.Address) (*domain.Address, error)
	GetByID(ctx context.Context, id int64) (*domain.Address, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Address, error)
	CountByCustomer(ctx context.Context, customerID string) (int, error)
	Update(ctx context.Context, addr *domain.Address) error
	Delete(ctx context.Context, id int64) error
	// SetPrimary atomically moves the primary flag to the given address
	// within a single transaction.
	SetPrimary(ctx context.Context, customerID string, id int64) error
}

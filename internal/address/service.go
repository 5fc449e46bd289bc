package address

import (
	"context"
	"fmt"

	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
)

// AddressService owns the address book rules: the first address becomes
// primary automatically, the primary flag only moves via SetPrimary, and
// the primary address cannot be deleted.
type AddressService struct {
	repo AddressRepository
}

func NewAddressService(repo AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

func (s *AddressService) Create(ctx context.Context, addr *domain.Address) (*domain.Address, error) {
	count, err := s.repo.CountByCustomer(ctx, addr.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count addresses: %w", err)
	}

	addr.IsPrimary = count == 0
	return s.repo.Create(ctx, addr)
}

func (s *AddressService) List(ctx context.Context, customerID string) ([]*domain.Address, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// Resolve returns the address only when it belongs to the customer.
// Foreign addresses answer not-found, so address IDs stay unguessable.
func (s *AddressService) Resolve(ctx context.Context, customerID string, id int64) (*domain.Address, error) {
	addr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if addr.CustomerID != customerID {
		return nil, ErrAddressNotFound
	}
	return addr, nil
}

// Update replaces the address fields. The primary flag is never touched
// here, SetPrimary is the only way to move it.
func (s *AddressService) Update(ctx context.Context, customerID string, addr *domain.Address) error {
	if _, err := s.Resolve(ctx, customerID, addr.ID); err != nil {
		return err
	}
	addr.CustomerID = customerID
	return s.repo.Update(ctx, addr)
}

func (s *AddressService) Delete(ctx context.Context, customerID string, id int64) error {
	addr, err := s.Resolve(ctx, customerID, id)
	if err != nil {
		return err
	}
	if addr.IsPrimary {
		return ErrPrimaryAddressDelete
	}
	return s.repo.Delete(ctx, id)
}

func (s *AddressService) SetPrimary(ctx context.Context, customerID string, id int64) error {
	if _, err := s.Resolve(ctx, customerID, id); err != nil {
		return err
	}
	return s.repo.SetPrimary(ctx, customerID, id)
}

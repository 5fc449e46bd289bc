package address

import (
	"context"
	"testing"

	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAddressRepository struct {
	addresses map[int64]*domain.Address
	nextID    int64
}

func newMockAddressRepository() *mockAddressRepository {
	return &mockAddressRepository{addresses: make(map[int64]*domain.Address), nextID: 1}
}

func (m *mockAddressRepository) Create(_ context.Context, addr *domain.Address) (*domain.Address, error) {
	copied := *addr
	copied.ID = m.nextID
	m.nextID++
	m.addresses[copied.ID] = &copied
	return &copied, nil
}

func (m *mockAddressRepository) GetByID(_ context.Context, id int64) (*domain.Address, error) {
	addr, ok := m.addresses[id]
	if !ok {
		return nil, ErrAddressNotFound
	}
	copied := *addr
	return &copied, nil
}

func (m *mockAddressRepository) ListByCustomer(_ context.Context, customerID string) ([]*domain.Address, error) {
	var out []*domain.Address
	for _, addr := range m.addresses {
		if addr.CustomerID == customerID {
			copied := *addr
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockAddressRepository) CountByCustomer(_ context.Context, customerID string) (int, error) {
	count := 0
	for _, addr := range m.addresses {
		if addr.CustomerID == customerID {
			count++
		}
	}
	return count, nil
}

func (m *mockAddressRepository) Update(_ context.Context, addr *domain.Address) error {
	existing, ok := m.addresses[addr.ID]
	if !ok || existing.CustomerID != addr.CustomerID {
		return ErrAddressNotFound
	}
	primary := existing.IsPrimary
	copied := *addr
	copied.IsPrimary = primary
	m.addresses[addr.ID] = &copied
	return nil
}

func (m *mockAddressRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.addresses[id]; !ok {
		return ErrAddressNotFound
	}
	delete(m.addresses, id)
	return nil
}

func (m *mockAddressRepository) SetPrimary(_ context.Context, customerID string, id int64) error {
	target, ok := m.addresses[id]
	if !ok || target.CustomerID != customerID {
		return ErrAddressNotFound
	}
	for _, addr := range m.addresses {
		if addr.CustomerID == customerID {
			addr.IsPrimary = false
		}
	}
	target.IsPrimary = true
	return nil
}

func testAddress(customerID string) *domain.Address {
	return &domain.Address{
		CustomerID:  customerID,
		Label:       "Home",
		Receiver:    "Budi Santoso",
		Phone:       "081234567890",
		FullAddress: "Jl. Sudirman No. 10",
		City:        "Jakarta Selatan",
		Province:    "DKI Jakarta",
		PostalCode:  "12190",
	}
}

func TestCreateFirstAddressBecomesPrimary(t *testing.T) {
	svc := NewAddressService(newMockAddressRepository())

	created, err := svc.Create(context.Background(), testAddress("cust-1"))

	require.NoError(t, err)
	assert.True(t, created.IsPrimary)
}

func TestCreateSecondAddressIsNotPrimary(t *testing.T) {
	svc := NewAddressService(newMockAddressRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, testAddress("cust-1"))
	require.NoError(t, err)

	second, err := svc.Create(ctx, testAddress("cust-1"))

	require.NoError(t, err)
	assert.False(t, second.IsPrimary)
}

func TestResolveForeignAddressHidden(t *testing.T) {
	svc := NewAddressService(newMockAddressRepository())
	ctx := context.Background()

	created, err := svc.Create(ctx, testAddress("cust-1"))
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, "cust-2", created.ID)

	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestUpdateDoesNotTouchPrimaryFlag(t *testing.T) {
	repo := newMockAddressRepository()
	svc := NewAddressService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, testAddress("cust-1"))
	require.NoError(t, err)
	require.True(t, created.IsPrimary)

	updated := *created
	updated.Label = "Office"
	updated.IsPrimary = false
	require.NoError(t, svc.Update(ctx, "cust-1", &updated))

	stored, err := svc.Resolve(ctx, "cust-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Office", stored.Label)
	assert.True(t, stored.IsPrimary)
}

func TestDeletePrimaryAddressRejected(t *testing.T) {
	svc := NewAddressService(newMockAddressRepository())
	ctx := context.Background()

	created, err := svc.Create(ctx, testAddress("cust-1"))
	require.NoError(t, err)

	err = svc.Delete(ctx, "cust-1", created.ID)

	assert.ErrorIs(t, err, ErrPrimaryAddressDelete)
}

func TestDeleteNonPrimaryAddress(t *testing.T) {
	svc := NewAddressService(newMockAddressRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, testAddress("cust-1"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, testAddress("cust-1"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "cust-1", second.ID))

	_, err = svc.Resolve(ctx, "cust-1", second.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestSetPrimaryMovesFlag(t *testing.T) {
	svc := NewAddressService(newMockAddressRepository())
	ctx := context.Background()

	first, err := svc.Create(ctx, testAddress("cust-1"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, testAddress("cust-1"))
	require.NoError(t, err)

	require.NoError(t, svc.SetPrimary(ctx, "cust-1", second.ID))

	oldPrimary, err := svc.Resolve(ctx, "cust-1", first.ID)
	require.NoError(t, err)
	newPrimary, err := svc.Resolve(ctx, "cust-1", second.ID)
	require.NoError(t, err)
	assert.False(t, oldPrimary.IsPrimary)
	assert.True(t, newPrimary.IsPrimary)
}

func TestSetPrimaryForeignAddressRejected(t *testing.T) {
	svc := NewAddressService(newMockAddressRepository())
	ctx := context.Background()

	created, err := svc.Create(ctx, testAddress("cust-1"))
	require.NoError(t, err)

	err = svc.SetPrimary(ctx, "cust-2", created.ID)

	assert.ErrorIs(t, err, ErrAddressNotFound)
}

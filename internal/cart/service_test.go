package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/junedipasaribu/ecommerce-sub000/internal/catalog"
	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	carts map[string]*domain.Cart

	getErr error
	addErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{carts: make(map[string]*domain.Cart)}
}

func (m *mockRepository) GetCart(_ context.Context, customerID string) (*domain.Cart, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	cart, ok := m.carts[customerID]
	if !ok {
		return nil, ErrCartNotFound
	}
	copied := *cart
	copied.Lines = append([]domain.CartLine(nil), cart.Lines...)
	return &copied, nil
}

func (m *mockRepository) AddOrIncrement(_ context.Context, customerID string, line domain.CartLine) error {
	if m.addErr != nil {
		return m.addErr
	}
	cart, ok := m.carts[customerID]
	if !ok {
		cart = &domain.Cart{CustomerID: customerID}
		m.carts[customerID] = cart
	}
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == line.ProductID {
			cart.Lines[i].Quantity += line.Quantity
			return nil
		}
	}
	cart.Lines = append(cart.Lines, line)
	return nil
}

func (m *mockRepository) UpdateLineQuantity(_ context.Context, customerID string, productID int64, quantity int32) error {
	cart, ok := m.carts[customerID]
	if !ok {
		return ErrLineNotFound
	}
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			cart.Lines[i].Quantity = quantity
			return nil
		}
	}
	return ErrLineNotFound
}

func (m *mockRepository) RemoveLine(_ context.Context, customerID string, productID int64) error {
	cart, ok := m.carts[customerID]
	if !ok {
		return ErrCartNotFound
	}
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockRepository) DeleteCart(_ context.Context, customerID string) error {
	if _, ok := m.carts[customerID]; !ok {
		return ErrCartNotFound
	}
	delete(m.carts, customerID)
	return nil
}

type mockCache struct {
	entries map[string]*domain.Cart
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]*domain.Cart)}
}

func (m *mockCache) Get(_ context.Context, customerID string) (*domain.Cart, error) {
	cart, ok := m.entries[customerID]
	if !ok {
		return nil, ErrCacheMiss
	}
	return cart, nil
}

func (m *mockCache) Set(_ context.Context, customerID string, cart *domain.Cart) error {
	m.entries[customerID] = cart
	return nil
}

func (m *mockCache) Delete(_ context.Context, customerID string) error {
	m.deletes++
	delete(m.entries, customerID)
	return nil
}

func seededCatalog(t *testing.T) *catalog.MemoryStore {
	t.Helper()
	store := catalog.NewMemoryStore()
	store.SetProduct(catalog.Product{ID: 1, Name: "Paracetamol 500mg", Price: 12000, Stock: 10})
	store.SetProduct(catalog.Product{ID: 2, Name: "Vitamin C 1000mg", Price: 35000, Stock: 3})
	return store
}

func TestGetCartReturnsEmptyCartWhenMissing(t *testing.T) {
	svc := NewCartService(newMockRepository(), newMockCache(), seededCatalog(t))

	cart, err := svc.GetCart(context.Background(), "cust-1")

	require.NoError(t, err)
	assert.Equal(t, "cust-1", cart.CustomerID)
	assert.True(t, cart.IsEmpty())
}

func TestGetCartPrefersCache(t *testing.T) {
	repo := newMockRepository()
	repo.getErr = errors.New("repository should not be hit")
	cache := newMockCache()
	cache.entries["cust-1"] = &domain.Cart{
		CustomerID: "cust-1",
		Lines:      []domain.CartLine{{ProductID: 1, Quantity: 2}},
	}

	svc := NewCartService(repo, cache, seededCatalog(t))

	cart, err := svc.GetCart(context.Background(), "cust-1")

	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int32(2), cart.Lines[0].Quantity)
}

func TestAddItemSnapshotsPrice(t *testing.T) {
	svc := NewCartService(newMockRepository(), newMockCache(), seededCatalog(t))

	cart, err := svc.AddItem(context.Background(), "cust-1", 1, 2)

	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "Paracetamol 500mg", cart.Lines[0].ProductName)
	assert.Equal(t, int64(12000), cart.Lines[0].UnitPrice)
	assert.Equal(t, int32(2), cart.Lines[0].Quantity)
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	svc := NewCartService(newMockRepository(), newMockCache(), seededCatalog(t))

	_, err := svc.AddItem(context.Background(), "cust-1", 1, 2)
	require.NoError(t, err)

	cart, err := svc.AddItem(context.Background(), "cust-1", 1, 3)

	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int32(5), cart.Lines[0].Quantity)
}

func TestAddItemStockCheckCoversCartContents(t *testing.T) {
	svc := NewCartService(newMockRepository(), newMockCache(), seededCatalog(t))

	_, err := svc.AddItem(context.Background(), "cust-1", 2, 2)
	require.NoError(t, err)

	// Two more would exceed the three in stock.
	_, err = svc.AddItem(context.Background(), "cust-1", 2, 2)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(2), stockErr.ProductID)
	assert.Equal(t, int32(4), stockErr.Requested)
	assert.Equal(t, int32(3), stockErr.Available)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc := NewCartService(newMockRepository(), newMockCache(), seededCatalog(t))

	_, err := svc.AddItem(context.Background(), "cust-1", 999, 1)

	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	svc := NewCartService(newMockRepository(), newMockCache(), seededCatalog(t))

	_, err := svc.AddItem(context.Background(), "cust-1", 1, 0)

	assert.Error(t, err)
}

func TestSetQuantityBelowOneRemovesLine(t *testing.T) {
	svc := NewCartService(newMockRepository(), newMockCache(), seededCatalog(t))

	_, err := svc.AddItem(context.Background(), "cust-1", 1, 2)
	require.NoError(t, err)

	cart, err := svc.SetQuantity(context.Background(), "cust-1", 1, 0)

	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestSetQuantityEnforcesStock(t *testing.T) {
	svc := NewCartService(newMockRepository(), newMockCache(), seededCatalog(t))

	_, err := svc.AddItem(context.Background(), "cust-1", 2, 1)
	require.NoError(t, err)

	_, err = svc.SetQuantity(context.Background(), "cust-1", 2, 5)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int32(5), stockErr.Requested)
}

func TestRemoveItemAbsentProductIsNoOp(t *testing.T) {
	svc := NewCartService(newMockRepository(), newMockCache(), seededCatalog(t))

	_, err := svc.AddItem(context.Background(), "cust-1", 1, 1)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(context.Background(), "cust-1", 999)

	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
}

func TestClearAbsentCartSucceeds(t *testing.T) {
	svc := NewCartService(newMockRepository(), newMockCache(), seededCatalog(t))

	err := svc.Clear(context.Background(), "cust-without-cart")

	assert.NoError(t, err)
}

func TestMutationsInvalidateCache(t *testing.T) {
	cache := newMockCache()
	svc := NewCartService(newMockRepository(), cache, seededCatalog(t))

	_, err := svc.AddItem(context.Background(), "cust-1", 1, 1)
	require.NoError(t, err)
	_, err = svc.SetQuantity(context.Background(), "cust-1", 1, 2)
	require.NoError(t, err)
	_, err = svc.RemoveItem(context.Background(), "cust-1", 1)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(context.Background(), "cust-1"))

	assert.GreaterOrEqual(t, cache.deletes, 4)
}

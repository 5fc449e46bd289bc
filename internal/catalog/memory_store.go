package catalog

import (
	"context"
	"sync"

	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
)

// MemoryStore implements Catalog with in-memory storage. A single mutex
// guards both passes of a batch decrement, which is what makes the batch a
// compare-and-decrement: validation and application cannot interleave with
// another checkout.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]*Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]*Product),
	}
}

// SetProduct seeds or replaces a product entry.
func (s *MemoryStore) SetProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.products[p.ID] = &cp
}

func (s *MemoryStore) GetProduct(_ context.Context, productID int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.products[productID]
	if !exists {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) GetStock(_ context.Context, productID int64) (int32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.products[productID]
	if !exists {
		return 0, ErrProductNotFound
	}
	return p.Stock, nil
}

// DecrementStock applies the whole batch or nothing.
func (s *MemoryStore) DecrementStock(_ context.Context, items []StockAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: validate every item against current stock.
	for _, item := range items {
		p, exists := s.products[item.ProductID]
		if !exists {
			return ErrProductNotFound
		}
		if p.Stock < item.Quantity {
			return &domain.StockError{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: p.Stock,
			}
		}
	}

	// Second pass: apply.
	for _, item := range items {
		s.products[item.ProductID].Stock -= item.Quantity
	}
	return nil
}

func (s *MemoryStore) RestoreStock(_ context.Context, items []StockAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		p, exists := s.products[item.ProductID]
		if !exists {
			return ErrProductNotFound
		}
		p.Stock += item.Quantity
	}
	return nil
}

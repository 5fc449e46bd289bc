package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/junedipasaribu/ecommerce-sub000/internal/catalog"
	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
	"github.com/junedipasaribu/ecommerce-sub000/internal/metric"
	"golang.org/x/sync/singleflight"
)

// CartService coordinates the cart repository, the read-through cache and
// the catalog. Prices are snapshotted from the catalog at add time and
// never refreshed afterwards.
type CartService struct {
	repo    CartRepository
	cache   CartCache
	catalog catalog.Catalog
	sfg     singleflight.Group
}

func NewCartService(repo CartRepository, cache CartCache, cat catalog.Catalog) *CartService {
	return &CartService{
		repo:    repo,
		cache:   cache,
		catalog: cat,
	}
}

// GetCart returns the customer's cart, serving an empty cart when none
// exists yet. Concurrent misses for the same customer are collapsed into
// a single repository read.
func (s *CartService) GetCart(ctx context.Context, customerID string) (*domain.Cart, error) {
	cached, err := s.cache.Get(ctx, customerID)
	if err == nil {
		metric.CartCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		// Degrade to the repository when the cache is unhealthy.
		log.Printf("cart cache get failed for customer %s: %v", customerID, err)
	}
	metric.CartCacheLookups.WithLabelValues("miss").Inc()

	result, err, _ := s.sfg.Do(customerID, func() (interface{}, error) {
		cart, err := s.repo.GetCart(ctx, customerID)
		if errors.Is(err, ErrCartNotFound) {
			cart = &domain.Cart{
				CustomerID: customerID,
				Lines:      []domain.CartLine{},
			}
		} else if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, customerID, cart); err != nil {
			log.Printf("cart cache set failed for customer %s: %v", customerID, err)
		}
		return cart, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	return result.(*domain.Cart), nil
}

// AddItem snapshots the product's current name and price, then adds the
// line or increments an existing one. The stock check covers the quantity
// already in the cart, so repeated adds cannot walk past available stock.
func (s *CartService) AddItem(ctx context.Context, customerID string, productID int64, quantity int32) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.GetCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	var inCart int32
	for _, l := range cart.Lines {
		if l.ProductID == productID {
			inCart = l.Quantity
			break
		}
	}

	if inCart+quantity > product.Stock {
		return nil, &domain.StockError{
			ProductID: productID,
			Requested: inCart + quantity,
			Available: product.Stock,
		}
	}

	line := domain.CartLine{
		ProductID:   productID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
		AddedAt:     time.Now(),
	}

	if err := s.repo.AddOrIncrement(ctx, customerID, line); err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}

	s.invalidateCache(ctx, customerID)
	return s.GetCart(ctx, customerID)
}

// SetQuantity replaces a line's quantity. A value below 1 removes the
// line.
func (s *CartService) SetQuantity(ctx context.Context, customerID string, productID int64, quantity int32) (*domain.Cart, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, customerID, productID)
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if quantity > product.Stock {
		return nil, &domain.StockError{
			ProductID: productID,
			Requested: quantity,
			Available: product.Stock,
		}
	}

	if err := s.repo.UpdateLineQuantity(ctx, customerID, productID, quantity); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, customerID)
	return s.GetCart(ctx, customerID)
}

// RemoveItem drops a line from the cart. Removing a product that is not
// in the cart is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, customerID string, productID int64) (*domain.Cart, error) {
	err := s.repo.RemoveLine(ctx, customerID, productID)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		return nil, err
	}

	s.invalidateCache(ctx, customerID)
	return s.GetCart(ctx, customerID)
}

// Clear destroys the cart. Clearing an absent cart succeeds.
func (s *CartService) Clear(ctx context.Context, customerID string) error {
	err := s.repo.DeleteCart(ctx, customerID)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		return err
	}

	s.invalidateCache(ctx, customerID)
	return nil
}

func (s *CartService) invalidateCache(ctx context.Context, customerID string) {
	if err := s.cache.Delete(ctx, customerID); err != nil {
		log.Printf("cart cache invalidation failed for customer %s: %v", customerID, err)
	}
}

// Package catalog is the engine's view of the product catalog. The engine
// only needs prices and atomically adjustable stock counters; product
// management itself lives elsewhere.
package catalog

import (
	"context"
	"errors"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int32  `json:"stock"`
}

// StockAdjustment is one product/quantity pair in a batch decrement or
// restore.
type StockAdjustment struct {
	ProductID int64
	Quantity  int32
}

// Catalog is the collaborator interface consumed by the cart, checkout and
// order components. DecrementStock must be atomic across the whole batch:
// either every line is applied or none is, and concurrent calls for the
// same product can never drive stock negative.
type Catalog interface {
	GetProduct(ctx context.Context, productID int64) (*Product, error)
	GetStock(ctx context.Context, productID int64) (int32, error)
	DecrementStock(ctx context.Context, items []StockAdjustment) error
	RestoreStock(ctx context.Context, items []StockAdjustment) error
}

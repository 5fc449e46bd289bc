package pricing

import (
	"testing"

	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := ComputeTotals(nil, 0, 11)
	assert.Equal(t, int64(0), totals.Subtotal)
	assert.Equal(t, int64(0), totals.Tax)
	assert.Equal(t, int64(0), totals.Total)
}

func TestComputeTotals_SingleLine(t *testing.T) {
	lines := []domain.CartLine{
		{ProductID: 1, Quantity: 3, UnitPrice: 1500},
	}
	totals := ComputeTotals(lines, 0, 0)
	assert.Equal(t, int64(4500), totals.Subtotal)
	assert.Equal(t, int64(0), totals.Tax)
	assert.Equal(t, int64(4500), totals.Total)
}

// The reference scenario: 2 x 10000 with 11% tax and 5000 shipping.
func TestComputeTotals_ReferenceScenario(t *testing.T) {
	lines := []domain.CartLine{
		{ProductID: 1, Quantity: 2, UnitPrice: 10000},
	}
	totals := ComputeTotals(lines, 5000, 11)
	assert.Equal(t, int64(20000), totals.Subtotal)
	assert.Equal(t, int64(2200), totals.Tax)
	assert.Equal(t, int64(5000), totals.ShippingCost)
	assert.Equal(t, int64(27200), totals.Total)
}

func TestComputeTotals_TaxRoundsHalfUp(t *testing.T) {
	// 45 * 11% = 4.95 -> 5, 41 * 11% = 4.51 -> 5, 40 * 11% = 4.4 -> 4
	cases := []struct {
		subtotal int64
		wantTax  int64
	}{
		{45, 5},
		{41, 5},
		{40, 4},
		{50, 6}, // 5.5 rounds up
	}
	for _, tc := range cases {
		lines := []domain.CartLine{{ProductID: 1, Quantity: 1, UnitPrice: tc.subtotal}}
		totals := ComputeTotals(lines, 0, 11)
		assert.Equal(t, tc.wantTax, totals.Tax, "subtotal %d", tc.subtotal)
	}
}

func TestComputeTotals_TotalIdentity(t *testing.T) {
	lines := []domain.CartLine{
		{ProductID: 1, Quantity: 2, UnitPrice: 10000},
		{ProductID: 2, Quantity: 1, UnitPrice: 33333},
		{ProductID: 3, Quantity: 7, UnitPrice: 199},
	}
	totals := ComputeTotals(lines, 20000, 11)
	assert.Equal(t, totals.Subtotal+totals.Tax+totals.ShippingCost, totals.Total)
}

func TestComputeTotals_Deterministic(t *testing.T) {
	lines := []domain.CartLine{
		{ProductID: 1, Quantity: 2, UnitPrice: 10000},
		{ProductID: 2, Quantity: 5, UnitPrice: 777},
	}
	first := ComputeTotals(lines, 18000, 11)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, ComputeTotals(lines, 18000, 11))
	}
}

func TestLineSubtotal(t *testing.T) {
	line := domain.CartLine{ProductID: 9, Quantity: 4, UnitPrice: 2500}
	assert.Equal(t, int64(10000), LineSubtotal(line))
}

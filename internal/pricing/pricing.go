// Package pricing computes checkout totals. It is pure: no I/O, no locking,
// deterministic for identical inputs. The checkout orchestrator relies on
// that determinism so the amount shown to the customer and the amount
// settled can never diverge.
package pricing

import "github.com/junedipasaribu/ecommerce-sub000/internal/domain"

type Totals struct {
	Subtotal     int64 `json:"subtotal"`
	Tax          int64 `json:"tax"`
	ShippingCost int64 `json:"shipping_cost"`
	Total        int64 `json:"total"`
}

// ComputeTotals sums cart lines in integer minor units and applies the tax
// rate with round-half-up. taxRatePercent is a whole percentage (11 means
// 11% PPN).
func ComputeTotals(lines []domain.CartLine, courierCost, taxRatePercent int64) Totals {
	var subtotal int64
	for _, line := range lines {
		subtotal += int64(line.Quantity) * line.UnitPrice
	}

	tax := roundHalfUpPercent(subtotal, taxRatePercent)

	return Totals{
		Subtotal:     subtotal,
		Tax:          tax,
		ShippingCost: courierCost,
		Total:        subtotal + tax + courierCost,
	}
}

// LineSubtotal is the per-line amount snapshotted into order items.
func LineSubtotal(line domain.CartLine) int64 {
	return int64(line.Quantity) * line.UnitPrice
}

// roundHalfUpPercent computes amount*percent/100 rounded half up, in pure
// integer math. Amounts are never negative here.
func roundHalfUpPercent(amount, percent int64) int64 {
	return (amount*percent + 50) / 100
}

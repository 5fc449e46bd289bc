package domain

import (
	"time"

	"github.com/google/uuid"
)

// All money amounts are int64 minor currency units (rupiah has no minor
// unit, so 20000 means Rp20.000). Floats never touch totals.

type OrderItem struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Subtotal    int64  `json:"subtotal"`
}

// AddressSnapshot is copied by value from the customer's address at
// checkout time. Later address edits must not alter historical orders.
type AddressSnapshot struct {
	Receiver    string `json:"receiver"`
	Phone       string `json:"phone"`
	FullAddress string `json:"full_address"`
	City        string `json:"city"`
	Province    string `json:"province"`
	PostalCode  string `json:"postal_code"`
}

// Order is created once at checkout and immutable afterwards except for
// Status and UpdatedAt, which only the state machine touches.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	CustomerID      string          `json:"customer_id"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress AddressSnapshot `json:"shipping_address"`
	Courier         string          `json:"courier"`
	ShippingCost    int64           `json:"shipping_cost"`
	Subtotal        int64           `json:"subtotal"`
	Tax             int64           `json:"tax"`
	TotalAmount     int64           `json:"total_amount"`
	Currency        string          `json:"currency"`
	PaymentMethod   string          `json:"payment_method"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ExpiresAt       time.Time       `json:"expires_at"`
}

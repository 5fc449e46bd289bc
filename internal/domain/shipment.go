package domain

import (
	"time"

	"github.com/google/uuid"
)

type ShippingStatus string

const (
	ShippingStatusOnDelivery ShippingStatus = "ON_DELIVERY"
	ShippingStatusDelivered  ShippingStatus = "DELIVERED"
)

// Shipment is one-to-one with a paid order. It never exists before payment
// succeeds.
type Shipment struct {
	OrderID        uuid.UUID      `json:"order_id"`
	CourierName    string         `json:"courier_name"`
	TrackingNumber string         `json:"tracking_number"`
	Status         ShippingStatus `json:"status"`
	ShippedAt      time.Time      `json:"shipped_at"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty"`
}

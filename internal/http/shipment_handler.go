package http

import (
	"net/http"

	"github.com/junedipasaribu/ecommerce-sub000/internal/shipment"
)

type ShipmentHandler struct {
	shipments *shipment.ShipmentService
}

func NewShipmentHandler(shipments *shipment.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{shipments: shipments}
}

func (h *ShipmentHandler) Track(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	orderID, ok := orderIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	s, err := h.shipments.Track(r.Context(), customerID, orderID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, s)
}

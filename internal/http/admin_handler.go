package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
	"github.com/junedipasaribu/ecommerce-sub000/internal/order"
	"github.com/junedipasaribu/ecommerce-sub000/internal/shipment"
)

// AdminHandler is the back office surface: listing orders, moving them
// through fulfillment and attaching courier tracking.
type AdminHandler struct {
	orders    *order.OrderService
	shipments *shipment.ShipmentService
	validate  *validator.Validate
}

func NewAdminHandler(orders *order.OrderService, shipments *shipment.ShipmentService) *AdminHandler {
	return &AdminHandler{
		orders:    orders,
		shipments: shipments,
		validate:  validator.New(),
	}
}

type StatusUpdateRequestDTO struct {
	Status string `json:"status" validate:"required"`
}

type AttachTrackingRequestDTO struct {
	CourierName    string `json:"courier_name" validate:"required,max=100"`
	TrackingNumber string `json:"tracking_number" validate:"required,max=100"`
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var status domain.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := domain.ParseStatus(raw)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		status = parsed
	}

	orders, err := h.orders.ListOrders(r.Context(), status)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	var req StatusUpdateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	o, err := h.orders.RequestTransition(r.Context(), orderID, target, domain.ActorAdmin)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

func (h *AdminHandler) AttachTracking(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	var req AttachTrackingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s, err := h.shipments.AttachTracking(r.Context(), orderID, req.CourierName, req.TrackingNumber)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, s)
}

func (h *AdminHandler) Ship(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	o, err := h.shipments.AdvanceToShipping(r.Context(), orderID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

func (h *AdminHandler) Complete(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	o, err := h.shipments.AdvanceToCompleted(r.Context(), orderID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

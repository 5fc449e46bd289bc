package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
	"github.com/junedipasaribu/ecommerce-sub000/internal/order"
	"github.com/junedipasaribu/ecommerce-sub000/internal/payment"
)

type OrderHandler struct {
	orders     *order.OrderService
	authorizer *payment.Authorizer
	validate   *validator.Validate
}

func NewOrderHandler(orders *order.OrderService, authorizer *payment.Authorizer) *OrderHandler {
	return &OrderHandler{
		orders:     orders,
		authorizer: authorizer,
		validate:   validator.New(),
	}
}

type PayRequestDTO struct {
	PIN string `json:"pin" validate:"required,len=6,numeric"`
}

func orderIDFromURL(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	orders, err := h.orders.ListOrdersByCustomer(r.Context(), customerID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	orderID, ok := orderIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	o, err := h.orders.GetOrderForCustomer(r.Context(), customerID, orderID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	orderID, ok := orderIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	var req PayRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "pin must be 6 digits")
		return
	}

	receipt, err := h.authorizer.Authorize(r.Context(), customerID, orderID, req.PIN)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, receipt)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	orderID, ok := orderIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	// Ownership first so foreign orders stay invisible.
	if _, err := h.orders.GetOrderForCustomer(r.Context(), customerID, orderID); err != nil {
		handleDomainError(w, err)
		return
	}

	o, err := h.orders.RequestTransition(r.Context(), orderID, domain.StatusCancelledByUser, domain.ActorCustomer)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

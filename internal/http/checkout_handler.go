package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/junedipasaribu/ecommerce-sub000/internal/checkout"
)

type CheckoutHandler struct {
	checkouts *checkout.CheckoutService
	validate  *validator.Validate
}

func NewCheckoutHandler(checkouts *checkout.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkouts: checkouts,
		validate:  validator.New(),
	}
}

type CheckoutRequestDTO struct {
	AddressID     int64  `json:"address_id" validate:"required,gt=0"`
	Courier       string `json:"courier" validate:"required"`
	PaymentMethod string `json:"payment_method"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.checkouts.Checkout(r.Context(), checkout.CheckoutRequest{
		CustomerID:    customerID,
		AddressID:     req.AddressID,
		Courier:       req.Courier,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

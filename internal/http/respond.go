package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/junedipasaribu/ecommerce-sub000/internal/address"
	"github.com/junedipasaribu/ecommerce-sub000/internal/cart"
	"github.com/junedipasaribu/ecommerce-sub000/internal/catalog"
	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
	"github.com/junedipasaribu/ecommerce-sub000/internal/order"
	"github.com/junedipasaribu/ecommerce-sub000/internal/payment"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleDomainError maps service errors onto HTTP statuses.
func handleDomainError(w http.ResponseWriter, err error) {
	var stockErr *domain.StockError
	var pinErr *domain.PinMismatchError

	switch {
	case errors.As(err, &stockErr):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:   stockErr.Error(),
			Code:    "insufficient_stock",
			Details: "product " + strconv.FormatInt(stockErr.ProductID, 10) + " has " + strconv.Itoa(int(stockErr.Available)) + " left",
		})
	case errors.As(err, &pinErr):
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   pinErr.Error(),
			Code:    "pin_mismatch",
			Details: strconv.Itoa(pinErr.AttemptsLeft) + " attempts left",
		})
	case errors.Is(err, domain.ErrPaymentLocked):
		respondError(w, http.StatusLocked, "payment_locked", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOrderNotPayable):
		respondError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrInvalidCourier),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrUnknownStatus):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, address.ErrPrimaryAddressDelete):
		respondError(w, http.StatusConflict, "primary_address", err.Error())
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrShipmentNotFound),
		errors.Is(err, address.ErrAddressNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, payment.ErrNoCredential):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

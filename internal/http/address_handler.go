package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/junedipasaribu/ecommerce-sub000/internal/address"
	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
)

type AddressHandler struct {
	addresses *address.AddressService
	validate  *validator.Validate
}

func NewAddressHandler(addresses *address.AddressService) *AddressHandler {
	return &AddressHandler{
		addresses: addresses,
		validate:  validator.New(),
	}
}

type AddressRequestDTO struct {
	Label       string `json:"label" validate:"required,max=50"`
	Receiver    string `json:"receiver" validate:"required,max=100"`
	Phone       string `json:"phone" validate:"required,max=20"`
	FullAddress string `json:"full_address" validate:"required"`
	City        string `json:"city" validate:"required,max=100"`
	Province    string `json:"province" validate:"required,max=100"`
	PostalCode  string `json:"postal_code" validate:"required,max=10"`
}

func addressIDFromURL(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "address_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *AddressHandler) decodeAddress(w http.ResponseWriter, r *http.Request) (*AddressRequestDTO, bool) {
	var req AddressRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return nil, false
	}
	return &req, true
}

func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	req, ok := h.decodeAddress(w, r)
	if !ok {
		return
	}

	created, err := h.addresses.Create(r.Context(), &domain.Address{
		CustomerID:  customerID,
		Label:       req.Label,
		Receiver:    req.Receiver,
		Phone:       req.Phone,
		FullAddress: req.FullAddress,
		City:        req.City,
		Province:    req.Province,
		PostalCode:  req.PostalCode,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	addresses, err := h.addresses.List(r.Context(), customerID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, addresses)
}

func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	id, ok := addressIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_address_id", "address_id must be a positive integer")
		return
	}

	req, ok := h.decodeAddress(w, r)
	if !ok {
		return
	}

	updated := &domain.Address{
		ID:          id,
		CustomerID:  customerID,
		Label:       req.Label,
		Receiver:    req.Receiver,
		Phone:       req.Phone,
		FullAddress: req.FullAddress,
		City:        req.City,
		Province:    req.Province,
		PostalCode:  req.PostalCode,
	}
	if err := h.addresses.Update(r.Context(), customerID, updated); err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	id, ok := addressIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_address_id", "address_id must be a positive integer")
		return
	}

	if err := h.addresses.Delete(r.Context(), customerID, id); err != nil {
		handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AddressHandler) SetPrimary(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	id, ok := addressIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_address_id", "address_id must be a positive integer")
		return
	}

	if err := h.addresses.SetPrimary(r.Context(), customerID, id); err != nil {
		handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

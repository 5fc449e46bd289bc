package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	AdminToken     string
}

type Handlers struct {
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Order    *OrderHandler
	Address  *AddressHandler
	Shipment *ShipmentHandler
	Admin    *AdminHandler
}

// NewRouter wires every handler under /api/v1 with the shared middleware
// stack. Admin routes carry their own token gate on top of it.
func NewRouter(cfg RouterConfig, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(CustomerAuthMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Delete("/", h.Cart.ClearCart)
				r.Post("/items", h.Cart.AddItem)
				r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
				r.Delete("/items/{product_id}", h.Cart.RemoveItem)
			})

			r.Post("/checkout", h.Checkout.Checkout)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.Order.ListOrders)
				r.Get("/{order_id}", h.Order.GetOrder)
				r.Post("/{order_id}/pay", h.Order.Pay)
				r.Post("/{order_id}/cancel", h.Order.Cancel)
				r.Get("/{order_id}/shipment", h.Shipment.Track)
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", h.Address.List)
				r.Post("/", h.Address.Create)
				r.Put("/{address_id}", h.Address.Update)
				r.Delete("/{address_id}", h.Address.Delete)
				r.Post("/{address_id}/primary", h.Address.SetPrimary)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminToken))

			r.Get("/orders", h.Admin.ListOrders)
			r.Post("/orders/{order_id}/status", h.Admin.UpdateStatus)
			r.Post("/orders/{order_id}/shipment", h.Admin.AttachTracking)
			r.Post("/orders/{order_id}/ship", h.Admin.Ship)
			r.Post("/orders/{order_id}/complete", h.Admin.Complete)
		})
	})

	return r
}

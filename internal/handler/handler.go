// Package handler exposes the HTTP JSON API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brmartins/delivery-orders/internal/domain/catalog"
	"github.com/brmartins/delivery-orders/internal/domain/order"
)

// Handler serves the API routes, delegating business logic to the order
// service and catalog repository.
type Handler struct {
	catalog catalog.Repository
	orders  *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(catalog catalog.Repository, orders *order.Service) *Handler {
	return &Handler{
		catalog: catalog,
		orders:  orders,
	}
}

// Routes mounts all API routes. Every route under /orders and /products
// requires an authenticated caller via the given auth middleware.
func (h *Handler) Routes(authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Get("/products", h.ListProducts)
		r.Get("/products/{productID}", h.GetProduct)

		r.Post("/orders", h.CreateOrder)
		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{orderID}", h.GetOrder)
	})

	return r
}

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Best effort: the status code is already written.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

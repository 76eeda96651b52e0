package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/brmartins/delivery-orders/internal/domain/auth"
	"github.com/brmartins/delivery-orders/internal/domain/order"
	"github.com/brmartins/delivery-orders/internal/domain/payment"
)

// CreateOrder places a new order for the authenticated caller.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	method, err := payment.ParseMethod(req.PaymentMethod)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.CreateOrder(r.Context(), req.toDomain(caller.ID, method))
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapOrder(o))
}

// ListOrders returns the caller's orders, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), caller.ID)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = mapOrder(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetOrder returns one of the caller's orders by ID.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	o, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "orderID"), caller.ID)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrder(o))
}

// writeOrderError maps domain errors to HTTP responses. Validation problems
// with the request shape are 400, cart contents that cannot be fulfilled and
// rejected payments are 422, missing orders are 404, and anything else is a
// 500 with the detail kept out of the response.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		iqErr  *order.InvalidQuantityError
		pnfErr *order.ProductNotFoundError
		puErr  *order.ProductUnavailableError
		ipErr  *payment.InvalidPayloadError
		rejErr *payment.RejectedError
	)

	switch {
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, payment.ErrUnsupportedMethod),
		errors.As(err, &ipErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &iqErr),
		errors.As(err, &pnfErr),
		errors.As(err, &puErr),
		errors.As(err, &rejErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	default:
		zctx.From(r.Context()).Error("order request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pantrysense/v2/internal/domain/cart"
	"github.com/pantrysense/v2/internal/infrastructure/http/response"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"go.uber.org/zap"
)

// CartHandlers maps cart routes onto reducer events
type CartHandlers struct {
	shopping inbound.ShoppingService
	logger   *zap.Logger
}

// NewCartHandlers creates a new cart handlers instance
func NewCartHandlers(shopping inbound.ShoppingService, logger *zap.Logger) *CartHandlers {
	return &CartHandlers{shopping: shopping, logger: logger.Named("cart-handlers")}
}

type cartOp func(ctx context.Context, session, itemID string) (*inbound.CartView, error)

func (h *CartHandlers) run(op cartOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionKey(r)
		if err != nil {
			response.Error(w, r, h.logger, err)
			return
		}

		view, err := op(r.Context(), session, chi.URLParam(r, "id"))
		if err != nil {
			response.Error(w, r, h.logger, err)
			return
		}
		response.OK(w, http.StatusOK, view, "")
	}
}

// Get handles GET /api/v1/cart
func (h *CartHandlers) Get(w http.ResponseWriter, r *http.Request) {
	h.run(func(ctx context.Context, session, _ string) (*inbound.CartView, error) {
		return h.shopping.Cart(ctx, session)
	})(w, r)
}

// Increment handles POST /api/v1/cart/items/{id}/increment
func (h *CartHandlers) Increment(w http.ResponseWriter, r *http.Request) {
	h.run(h.shopping.Increment)(w, r)
}

// Decrement handles POST /api/v1/cart/items/{id}/decrement
func (h *CartHandlers) Decrement(w http.ResponseWriter, r *http.Request) {
	h.run(h.shopping.Decrement)(w, r)
}

// Add handles POST /api/v1/cart/items/{id}
func (h *CartHandlers) Add(w http.ResponseWriter, r *http.Request) {
	h.run(h.shopping.Add)(w, r)
}

// Remove handles DELETE /api/v1/cart/items/{id}
func (h *CartHandlers) Remove(w http.ResponseWriter, r *http.Request) {
	h.run(h.shopping.Remove)(w, r)
}

// Checkout handles GET /api/v1/cart/checkout/{partner} by redirecting to the
// partner's app
func (h *CartHandlers) Checkout(w http.ResponseWriter, r *http.Request) {
	session, err := sessionKey(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	partner, err := h.shopping.Checkout(r.Context(), session, chi.URLParam(r, "partner"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, partner.URL, http.StatusFound)
}

// Partners handles GET /api/v1/delivery/partners
func (h *CartHandlers) Partners(w http.ResponseWriter, r *http.Request) {
	response.OK(w, http.StatusOK, cart.Partners(), "")
}

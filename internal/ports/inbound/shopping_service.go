package inbound

import (
	"context"

	"github.com/pantrysense/v2/internal/domain/cart"
	"github.com/pantrysense/v2/internal/domain/inventory"
)

// ShoppingService drives the per-session cart
type ShoppingService interface {
	Cart(ctx context.Context, session string) (*CartView, error)
	Increment(ctx context.Context, session, itemID string) (*CartView, error)
	Decrement(ctx context.Context, session, itemID string) (*CartView, error)
	Add(ctx context.Context, session, itemID string) (*CartView, error)
	Remove(ctx context.Context, session, itemID string) (*CartView, error)
	Checkout(ctx context.Context, session, partner string) (*cart.Partner, error)
}

// CartView is the cart as rendered to the client
type CartView struct {
	LowStock   []inventory.Item `json:"lowStock"`
	Selections map[string]int   `json:"selections"`
	Entries    []cart.Entry     `json:"entries"`
	Total      string           `json:"total"`
	Partners   []cart.Partner   `json:"partners"`
}

// Package shopping keeps one cart per session and hands off to delivery partners
package shopping

import (
	"context"
	"sync"

	"github.com/pantrysense/v2/internal/domain/cart"
	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/domain/shared"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/pantrysense/v2/pkg/errors"
	"go.uber.org/zap"
)

// Stock is the part of the inventory service the cart reads
type Stock interface {
	Item(id string) (inventory.Item, error)
	LowStock() ([]inventory.Item, error)
}

type session struct {
	mu     sync.Mutex
	state  cart.State
	seeded bool
}

// Service implements inbound.ShoppingService
type Service struct {
	stock  Stock
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService creates a new shopping service
func NewService(stock Stock, logger *zap.Logger) *Service {
	return &Service{
		stock:    stock,
		logger:   logger.Named("shopping-service"),
		sessions: make(map[string]*session),
	}
}

// HandleLowStockChanged reseeds the selectors of every open cart
func (s *Service) HandleLowStockChanged(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(inventory.LowStockChangedEvent)
	if !ok {
		return nil
	}

	s.mu.Lock()
	open := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	for _, sess := range open {
		sess.mu.Lock()
		sess.state = cart.Reduce(sess.state, cart.Seed{Items: changed.Items})
		sess.seeded = true
		sess.mu.Unlock()
	}

	s.logger.Debug("Reseeded carts after low-stock change",
		zap.Int("carts", len(open)),
		zap.Int("low_stock", len(changed.Items)),
	)
	return nil
}

// Cart returns the session's cart, seeding it on first access
func (s *Service) Cart(ctx context.Context, sessionID string) (*inbound.CartView, error) {
	return s.update(sessionID, "", nil)
}

// Increment raises the quantity selector of an item
func (s *Service) Increment(ctx context.Context, sessionID, itemID string) (*inbound.CartView, error) {
	return s.update(sessionID, itemID, func(item inventory.Item) cart.Event {
		return cart.Increment{ItemID: item.ID}
	})
}

// Decrement lowers the quantity selector of an item, never below one
func (s *Service) Decrement(ctx context.Context, sessionID, itemID string) (*inbound.CartView, error) {
	return s.update(sessionID, itemID, func(item inventory.Item) cart.Event {
		return cart.Decrement{ItemID: item.ID}
	})
}

// Add puts the selected quantity of an item into the cart
func (s *Service) Add(ctx context.Context, sessionID, itemID string) (*inbound.CartView, error) {
	return s.update(sessionID, itemID, func(item inventory.Item) cart.Event {
		return cart.Add{Item: item}
	})
}

// Remove drops an item from the cart
func (s *Service) Remove(ctx context.Context, sessionID, itemID string) (*inbound.CartView, error) {
	return s.update(sessionID, "", func(inventory.Item) cart.Event {
		return cart.Remove{ItemID: itemID}
	})
}

// Checkout resolves the deep link of a delivery partner. The cart is left as is.
func (s *Service) Checkout(ctx context.Context, sessionID, partner string) (*cart.Partner, error) {
	p, err := cart.LookupPartner(partner)
	if err != nil {
		s.logger.Warn("Unknown delivery partner", zap.String("partner", partner))
		return nil, errors.NewNotFoundError(errors.CodeUnknownPartner, "Unknown delivery partner", partner).WithCause(err)
	}

	s.logger.Info("Checkout handed off",
		zap.String("session", sessionID),
		zap.String("partner", p.Key),
	)
	return &p, nil
}

// update runs one reducer step under the session lock. itemID, when set, must
// exist in the current snapshot.
func (s *Service) update(sessionID, itemID string, event func(inventory.Item) cart.Event) (*inbound.CartView, error) {
	var item inventory.Item
	if itemID != "" {
		found, err := s.stock.Item(itemID)
		if err != nil {
			return nil, err
		}
		item = found
	}

	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	low, err := s.stock.LowStock()
	if err != nil {
		low = nil
	}
	if !sess.seeded {
		sess.state = cart.Reduce(sess.state, cart.Seed{Items: low})
		sess.seeded = true
	}
	if event != nil {
		sess.state = cart.Reduce(sess.state, event(item))
	}

	return view(sess.state, low), nil
}

func (s *Service) session(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{state: cart.Empty()}
		s.sessions[id] = sess
	}
	return sess
}

func view(state cart.State, low []inventory.Item) *inbound.CartView {
	if low == nil {
		low = []inventory.Item{}
	}
	return &inbound.CartView{
		LowStock:   low,
		Selections: state.Selections(),
		Entries:    state.Entries(),
		Total:      cart.FormatTotal(state.EstimateTotal()),
		Partners:   cart.Partners(),
	}
}

var _ inbound.ShoppingService = (*Service)(nil)

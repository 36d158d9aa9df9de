package handlers

import (
	"context"
	"io"

	"github.com/pantrysense/v2/internal/domain/capture"
	"github.com/pantrysense/v2/internal/domain/cart"
	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/domain/recipe"
	"github.com/pantrysense/v2/internal/domain/user"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/stretchr/testify/mock"
)

type mockInventory struct {
	mock.Mock
	states chan inbound.InventoryState
}

func (m *mockInventory) Query(filter inventory.Filter) (*inbound.InventoryView, error) {
	args := m.Called(filter)
	view, _ := args.Get(0).(*inbound.InventoryView)
	return view, args.Error(1)
}

func (m *mockInventory) Item(id string) (inventory.Item, error) {
	args := m.Called(id)
	return args.Get(0).(inventory.Item), args.Error(1)
}

func (m *mockInventory) LowStock() ([]inventory.Item, error) {
	args := m.Called()
	items, _ := args.Get(0).([]inventory.Item)
	return items, args.Error(1)
}

func (m *mockInventory) Categories() ([]string, error) {
	args := m.Called()
	categories, _ := args.Get(0).([]string)
	return categories, args.Error(1)
}

func (m *mockInventory) ValidateThreshold(id, input string) (*inbound.ThresholdCheck, error) {
	args := m.Called(id, input)
	check, _ := args.Get(0).(*inbound.ThresholdCheck)
	return check, args.Error(1)
}

func (m *mockInventory) Watch(ctx context.Context) <-chan inbound.InventoryState {
	return m.states
}

type mockUsage struct{ mock.Mock }

func (m *mockUsage) Estimate(ctx context.Context, itemID string) (*inbound.UsageReport, error) {
	args := m.Called(ctx, itemID)
	report, _ := args.Get(0).(*inbound.UsageReport)
	return report, args.Error(1)
}

type mockShopping struct{ mock.Mock }

func (m *mockShopping) view(args mock.Arguments) (*inbound.CartView, error) {
	v, _ := args.Get(0).(*inbound.CartView)
	return v, args.Error(1)
}

func (m *mockShopping) Cart(ctx context.Context, session string) (*inbound.CartView, error) {
	return m.view(m.Called(ctx, session))
}

func (m *mockShopping) Increment(ctx context.Context, session, itemID string) (*inbound.CartView, error) {
	return m.view(m.Called(ctx, session, itemID))
}

func (m *mockShopping) Decrement(ctx context.Context, session, itemID string) (*inbound.CartView, error) {
	return m.view(m.Called(ctx, session, itemID))
}

func (m *mockShopping) Add(ctx context.Context, session, itemID string) (*inbound.CartView, error) {
	return m.view(m.Called(ctx, session, itemID))
}

func (m *mockShopping) Remove(ctx context.Context, session, itemID string) (*inbound.CartView, error) {
	return m.view(m.Called(ctx, session, itemID))
}

func (m *mockShopping) Checkout(ctx context.Context, session, partner string) (*cart.Partner, error) {
	args := m.Called(ctx, session, partner)
	p, _ := args.Get(0).(*cart.Partner)
	return p, args.Error(1)
}

type mockRecipes struct{ mock.Mock }

func (m *mockRecipes) Generate(ctx context.Context, session string, cmd inbound.GenerateRecipesCommand) (*recipe.Batch, error) {
	args := m.Called(ctx, session, cmd)
	b, _ := args.Get(0).(*recipe.Batch)
	return b, args.Error(1)
}

func (m *mockRecipes) List(ctx context.Context, session string, query inbound.RecipeQuery) (*inbound.RecipeList, error) {
	args := m.Called(ctx, session, query)
	l, _ := args.Get(0).(*inbound.RecipeList)
	return l, args.Error(1)
}

func (m *mockRecipes) Get(ctx context.Context, session, id string) (*recipe.Recipe, error) {
	args := m.Called(ctx, session, id)
	r, _ := args.Get(0).(*recipe.Recipe)
	return r, args.Error(1)
}

func (m *mockRecipes) Suggest(ctx context.Context, cmd inbound.SuggestCommand) (*inbound.Suggestion, error) {
	args := m.Called(ctx, cmd)
	s, _ := args.Get(0).(*inbound.Suggestion)
	return s, args.Error(1)
}

type mockAuth struct{ mock.Mock }

func (m *mockAuth) session(args mock.Arguments) (*inbound.Session, error) {
	s, _ := args.Get(0).(*inbound.Session)
	return s, args.Error(1)
}

func (m *mockAuth) SignUp(ctx context.Context, creds user.Credentials) (*inbound.Session, error) {
	return m.session(m.Called(ctx, creds))
}

func (m *mockAuth) SignIn(ctx context.Context, creds user.Credentials) (*inbound.Session, error) {
	return m.session(m.Called(ctx, creds))
}

func (m *mockAuth) SignOut(ctx context.Context, claims *inbound.SessionClaims) error {
	return m.Called(ctx, claims).Error(0)
}

func (m *mockAuth) Verify(ctx context.Context, token string) (*inbound.SessionClaims, error) {
	args := m.Called(ctx, token)
	c, _ := args.Get(0).(*inbound.SessionClaims)
	return c, args.Error(1)
}

type mockPreferences struct{ mock.Mock }

func (m *mockPreferences) Get(ctx context.Context, uid string) (*user.Preferences, error) {
	args := m.Called(ctx, uid)
	p, _ := args.Get(0).(*user.Preferences)
	return p, args.Error(1)
}

func (m *mockPreferences) Update(ctx context.Context, uid string, prefs user.Preferences) (*user.Preferences, error) {
	args := m.Called(ctx, uid, prefs)
	p, _ := args.Get(0).(*user.Preferences)
	return p, args.Error(1)
}

type mockCaptures struct{ mock.Mock }

func (m *mockCaptures) Upload(ctx context.Context, filename string, size int64, body io.ReadSeeker) (*capture.Capture, error) {
	args := m.Called(ctx, filename, size, body)
	c, _ := args.Get(0).(*capture.Capture)
	return c, args.Error(1)
}

func (m *mockCaptures) List(ctx context.Context, limit int) ([]*capture.Capture, error) {
	args := m.Called(ctx, limit)
	c, _ := args.Get(0).([]*capture.Capture)
	return c, args.Error(1)
}

func (m *mockCaptures) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

package testutils

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/pantrysense/v2/internal/domain/ai"
	"github.com/pantrysense/v2/internal/domain/capture"
	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/domain/recipe"
	"github.com/pantrysense/v2/internal/domain/shared"
	"github.com/pantrysense/v2/internal/domain/user"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockAIService provides a mock implementation of outbound.AIService
type MockAIService struct {
	mock.Mock
	Name string
}

// GenerateRecipes returns the configured batch
func (m *MockAIService) GenerateRecipes(ctx context.Context, req ai.RecipeRequest) ([]recipe.Recipe, error) {
	args := m.Called(ctx, req)
	recipes, _ := args.Get(0).([]recipe.Recipe)
	return recipes, args.Error(1)
}

// Suggest returns the configured suggestion
func (m *MockAIService) Suggest(ctx context.Context, req ai.SuggestionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// HealthCheck returns the configured error
func (m *MockAIService) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Provider returns Name, "mock" when unset
func (m *MockAIService) Provider() string {
	if m.Name == "" {
		return "mock"
	}
	return m.Name
}

// MockAuthProvider provides a mock implementation of outbound.AuthProvider
type MockAuthProvider struct {
	mock.Mock
}

// SignIn returns the configured identity
func (m *MockAuthProvider) SignIn(ctx context.Context, creds user.Credentials) (*user.Identity, error) {
	args := m.Called(ctx, creds)
	identity, _ := args.Get(0).(*user.Identity)
	return identity, args.Error(1)
}

// SignUp returns the configured identity
func (m *MockAuthProvider) SignUp(ctx context.Context, creds user.Credentials) (*user.Identity, error) {
	args := m.Called(ctx, creds)
	identity, _ := args.Get(0).(*user.Identity)
	return identity, args.Error(1)
}

// SignOut returns the configured error
func (m *MockAuthProvider) SignOut(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

// MockReadingRepository provides a mock implementation of outbound.ReadingRepository
type MockReadingRepository struct {
	mock.Mock
}

// Record records a reading
func (m *MockReadingRepository) Record(ctx context.Context, itemID string, reading inventory.SensorReading) error {
	return m.Called(ctx, itemID, reading).Error(0)
}

// Recent returns the configured history
func (m *MockReadingRepository) Recent(ctx context.Context, itemID string, limit int) ([]inventory.SensorReading, error) {
	args := m.Called(ctx, itemID, limit)
	readings, _ := args.Get(0).([]inventory.SensorReading)
	return readings, args.Error(1)
}

// MockCaptureRepository provides a mock implementation of outbound.CaptureRepository
type MockCaptureRepository struct {
	mock.Mock
}

// Save saves a capture
func (m *MockCaptureRepository) Save(ctx context.Context, c *capture.Capture) error {
	return m.Called(ctx, c).Error(0)
}

// FindByID finds a capture by ID
func (m *MockCaptureRepository) FindByID(ctx context.Context, id string) (*capture.Capture, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*capture.Capture)
	return c, args.Error(1)
}

// List lists captures
func (m *MockCaptureRepository) List(ctx context.Context, limit int) ([]*capture.Capture, error) {
	args := m.Called(ctx, limit)
	captures, _ := args.Get(0).([]*capture.Capture)
	return captures, args.Error(1)
}

// Delete deletes a capture
func (m *MockCaptureRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockObjectStore provides a mock implementation of outbound.ObjectStore
type MockObjectStore struct {
	mock.Mock
}

// Put stores an object
func (m *MockObjectStore) Put(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error) {
	args := m.Called(ctx, key, contentType, body)
	return args.String(0), args.Error(1)
}

// Delete removes an object
func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// MockCacheRepository provides a mock implementation of outbound.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

// Get gets a value from cache
func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// Set sets a value in cache
func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

// Delete deletes a value from cache
func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// Exists checks if a key exists in cache
func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// FakeFeed is an in-memory InventoryFeed whose subscriptions receive
// whatever the test pushes
type FakeFeed struct {
	mu   sync.Mutex
	subs []*FakeSubscription
	// SubscribeErr is returned by Subscribe when set
	SubscribeErr error
}

// Name implements outbound.InventoryFeed
func (f *FakeFeed) Name() string { return "fake" }

// Subscribe opens a subscription
func (f *FakeFeed) Subscribe(ctx context.Context, channel string) (outbound.Subscription, error) {
	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}
	sub := &FakeSubscription{Channel: channel, updates: make(chan outbound.FeedEvent, 16)}
	f.mu.Lock()
	f.subs = append(f.subs, sub)
	f.mu.Unlock()
	return sub, nil
}

// Push delivers ev to every open subscription
func (f *FakeFeed) Push(ev outbound.FeedEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		sub.send(ev)
	}
}

// Subscriptions returns the subscriptions opened so far
func (f *FakeFeed) Subscriptions() []*FakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeSubscription(nil), f.subs...)
}

// FakeSubscription is the subscription handed out by FakeFeed
type FakeSubscription struct {
	Channel string

	mu      sync.Mutex
	closed  bool
	updates chan outbound.FeedEvent
}

// Updates implements outbound.Subscription
func (s *FakeSubscription) Updates() <-chan outbound.FeedEvent { return s.updates }

// Close implements outbound.Subscription
func (s *FakeSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.updates)
	}
	return nil
}

// Closed reports whether Close was called
func (s *FakeSubscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *FakeSubscription) send(ev outbound.FeedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.updates <- ev
	}
}

// RecordingDispatcher collects dispatched events and calls registered handlers
type RecordingDispatcher struct {
	mu       sync.Mutex
	events   []shared.DomainEvent
	handlers map[string][]shared.EventHandler
}

// NewRecordingDispatcher creates an empty dispatcher
func NewRecordingDispatcher() *RecordingDispatcher {
	return &RecordingDispatcher{handlers: make(map[string][]shared.EventHandler)}
}

// Dispatch records event and runs its handlers
func (d *RecordingDispatcher) Dispatch(ctx context.Context, event shared.DomainEvent) {
	d.mu.Lock()
	d.events = append(d.events, event)
	handlers := append([]shared.EventHandler(nil), d.handlers[event.EventName()]...)
	d.mu.Unlock()

	for _, h := range handlers {
		_ = h(ctx, event)
	}
}

// Register adds a handler
func (d *RecordingDispatcher) Register(name string, handler shared.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], handler)
}

// Named returns the recorded events with the given name
func (d *RecordingDispatcher) Named(name string) []shared.DomainEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []shared.DomainEvent
	for _, ev := range d.events {
		if ev.EventName() == name {
			out = append(out, ev)
		}
	}
	return out
}

var (
	_ outbound.AIService         = (*MockAIService)(nil)
	_ outbound.AuthProvider      = (*MockAuthProvider)(nil)
	_ outbound.ReadingRepository = (*MockReadingRepository)(nil)
	_ outbound.CaptureRepository = (*MockCaptureRepository)(nil)
	_ outbound.ObjectStore       = (*MockObjectStore)(nil)
	_ outbound.CacheRepository   = (*MockCacheRepository)(nil)
	_ outbound.InventoryFeed     = (*FakeFeed)(nil)
	_ shared.EventDispatcher     = (*RecordingDispatcher)(nil)
)

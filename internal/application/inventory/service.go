// Package inventory keeps the live inventory snapshot fed by the push channel
package inventory

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/domain/shared"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/pantrysense/v2/pkg/errors"
	"go.uber.org/zap"
)

const (
	noDataMessage = "No data available"
	recordTimeout = 2 * time.Second
)

// state is one immutable view of the feed: a snapshot or the reason there is none
type state struct {
	snapshot  *inventory.Snapshot
	failure   string
	updatedAt time.Time
}

// Service implements inbound.InventoryService on top of an InventoryFeed
type Service struct {
	feed     outbound.InventoryFeed
	readings outbound.ReadingRepository
	events   shared.EventDispatcher
	catalog  []inventory.CatalogEntry
	channel  string
	liveID   string
	logger   *zap.Logger

	current atomic.Pointer[state]

	mu       sync.Mutex
	sub      outbound.Subscription
	done     chan struct{}
	watchers map[chan inbound.InventoryState]struct{}
}

// Config selects the channel and catalog the service serves
type Config struct {
	Channel string
	Catalog []inventory.CatalogEntry
}

// NewService creates a new inventory service. readings may be nil.
func NewService(
	cfg Config,
	feed outbound.InventoryFeed,
	readings outbound.ReadingRepository,
	events shared.EventDispatcher,
	logger *zap.Logger,
) *Service {
	if cfg.Channel == "" {
		cfg.Channel = inventory.DefaultChannel
	}
	if len(cfg.Catalog) == 0 {
		cfg.Catalog = inventory.DefaultCatalog()
	}
	liveID, _ := inventory.LiveItemID(cfg.Catalog)

	return &Service{
		feed:     feed,
		readings: readings,
		events:   events,
		catalog:  cfg.Catalog,
		channel:  cfg.Channel,
		liveID:   liveID,
		logger:   logger.Named("inventory-service"),
		watchers: make(map[chan inbound.InventoryState]struct{}),
	}
}

// Start subscribes to the push channel and consumes it in the background
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil {
		return nil
	}

	sub, err := s.feed.Subscribe(ctx, s.channel)
	if err != nil {
		return errors.NewFeedError("Failed to subscribe to inventory feed", err)
	}
	s.sub = sub
	s.done = make(chan struct{})

	s.logger.Info("Subscribed to inventory feed",
		zap.String("provider", s.feed.Name()),
		zap.String("channel", s.channel),
	)

	go s.consume(sub, s.done)
	return nil
}

// Stop closes the subscription and waits for the consumer to drain
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	sub, done := s.sub, s.done
	s.sub, s.done = nil, nil
	s.mu.Unlock()

	if sub == nil {
		return nil
	}
	if err := sub.Close(); err != nil {
		s.logger.Warn("Failed to close feed subscription", zap.Error(err))
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) consume(sub outbound.Subscription, done chan struct{}) {
	defer close(done)
	for ev := range sub.Updates() {
		s.Apply(context.Background(), ev)
	}
	s.logger.Info("Inventory feed closed", zap.String("channel", s.channel))
}

// Apply folds one feed event into the current state. It is exported so the
// static feed and tests can drive the service without a subscription.
func (s *Service) Apply(ctx context.Context, ev outbound.FeedEvent) {
	if ev.Err != nil {
		s.fail(ctx, ev.Err.Error())
		return
	}

	snapshot, err := inventory.BuildSnapshot(ev.Reading, s.catalog)
	if err != nil {
		if stderrors.Is(err, inventory.ErrNoData) {
			s.fail(ctx, noDataMessage)
			return
		}
		s.fail(ctx, err.Error())
		return
	}

	var previousLow []string
	if prev := s.current.Load(); prev != nil && prev.snapshot != nil {
		previousLow = prev.snapshot.LowStockIDs()
	}

	next := &state{snapshot: snapshot, updatedAt: snapshot.BuiltAt()}
	s.current.Store(next)
	s.broadcast(next)

	s.logger.Debug("Inventory snapshot replaced",
		zap.Float64("weight", ev.Reading.Weight),
		zap.Int64("timestamp", ev.Reading.Timestamp),
	)

	if s.events != nil {
		s.events.Dispatch(ctx, inventory.NewSnapshotReplacedEvent(snapshot))
		if !inventory.SameIDs(previousLow, snapshot.LowStockIDs()) {
			s.events.Dispatch(ctx, inventory.NewLowStockChangedEvent(inventory.LowStock(snapshot.Items())))
		}
	}

	s.record(ctx, *ev.Reading)
}

func (s *Service) fail(ctx context.Context, reason string) {
	next := &state{failure: reason, updatedAt: time.Now()}
	s.current.Store(next)
	s.broadcast(next)

	s.logger.Warn("Inventory feed reported a failure", zap.String("reason", reason))
	if s.events != nil {
		s.events.Dispatch(ctx, inventory.NewFeedFailedEvent(reason))
	}
}

func (s *Service) record(ctx context.Context, reading inventory.SensorReading) {
	if s.readings == nil || s.liveID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	if err := s.readings.Record(ctx, s.liveID, reading); err != nil {
		s.logger.Warn("Failed to record sensor reading",
			zap.String("item_id", s.liveID),
			zap.Error(err),
		)
	}
}

// Current returns the latest snapshot, or the feed failure as an AppError
func (s *Service) Current() (*inventory.Snapshot, error) {
	st := s.current.Load()
	switch {
	case st == nil:
		return nil, errors.NewFeedError("Loading inventory", inventory.ErrNoSnapshot)
	case st.snapshot == nil:
		return nil, errors.NewFeedError(st.failure, nil)
	default:
		return st.snapshot, nil
	}
}

// Names returns the item names of the current snapshot, or nil when there is none
func (s *Service) Names() []string {
	snapshot, err := s.Current()
	if err != nil {
		return nil
	}
	return inventory.Names(snapshot.Items())
}

// Query applies the search and category filters to the current snapshot
func (s *Service) Query(filter inventory.Filter) (*inbound.InventoryView, error) {
	snapshot, err := s.Current()
	if err != nil {
		return nil, err
	}

	items := filter.Apply(snapshot.Items())
	return &inbound.InventoryView{
		Items:     items,
		Groups:    inventory.GroupByCategory(items),
		Counts:    inventory.Count(items),
		UpdatedAt: snapshot.BuiltAt(),
	}, nil
}

// Item returns one item of the current snapshot
func (s *Service) Item(id string) (inventory.Item, error) {
	snapshot, err := s.Current()
	if err != nil {
		return inventory.Item{}, err
	}

	item, err := snapshot.Item(id)
	if err != nil {
		return inventory.Item{}, errors.NewNotFoundError(errors.CodeItemNotFound, "Item not found", id).WithCause(err)
	}
	return item, nil
}

// LowStock returns the items below their threshold
func (s *Service) LowStock() ([]inventory.Item, error) {
	snapshot, err := s.Current()
	if err != nil {
		return nil, err
	}
	return inventory.LowStock(snapshot.Items()), nil
}

// Categories returns the categories in order of first appearance
func (s *Service) Categories() ([]string, error) {
	snapshot, err := s.Current()
	if err != nil {
		return nil, err
	}
	return inventory.Categories(snapshot.Items()), nil
}

// ValidateThreshold checks a threshold edit for an item. The value is never applied.
func (s *Service) ValidateThreshold(id, input string) (*inbound.ThresholdCheck, error) {
	if _, err := s.Item(id); err != nil {
		return nil, err
	}

	value, err := inventory.ValidateThreshold(input)
	if err != nil {
		return nil, errors.NewValidationErrors([]errors.ValidationError{{
			Field:   "threshold",
			Value:   input,
			Tag:     "min",
			Message: err.Error(),
		}})
	}

	s.logger.Info("Threshold edit validated",
		zap.String("item_id", id),
		zap.Int("threshold", value),
	)
	return &inbound.ThresholdCheck{ItemID: id, Threshold: value, Applied: false}, nil
}

// Watch streams the current state and every later change until ctx ends.
// Slow watchers only ever see the newest state.
func (s *Service) Watch(ctx context.Context) <-chan inbound.InventoryState {
	ch := make(chan inbound.InventoryState, 1)

	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	if st := s.current.Load(); st != nil {
		ch <- toState(st)
	}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, ch)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

func (s *Service) broadcast(st *state) {
	msg := toState(st)

	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- msg
	}
}

func toState(st *state) inbound.InventoryState {
	if st.snapshot == nil {
		return inbound.InventoryState{Error: st.failure, UpdatedAt: st.updatedAt}
	}
	return inbound.InventoryState{Items: st.snapshot.Items(), UpdatedAt: st.updatedAt}
}

var _ inbound.InventoryService = (*Service)(nil)

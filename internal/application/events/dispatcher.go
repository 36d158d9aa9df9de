// Package events dispatches domain events to in-process handlers
package events

import (
	"context"
	"sync"

	"github.com/pantrysense/v2/internal/domain/shared"
	"go.uber.org/zap"
)

// Dispatcher fans domain events out to registered handlers synchronously.
// A failing handler is logged and does not stop the others.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	log      *zap.Logger
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]shared.EventHandler),
		log:      log.Named("events"),
	}
}

// Dispatch dispatches an event to registered handlers
func (d *Dispatcher) Dispatch(ctx context.Context, event shared.DomainEvent) {
	d.mu.RLock()
	handlers := append([]shared.EventHandler(nil), d.handlers[event.EventName()]...)
	d.mu.RUnlock()

	if len(handlers) == 0 {
		d.log.Debug("No handlers registered for event", zap.String("event", event.EventName()))
		return
	}

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.log.Error("Failed to handle event",
				zap.String("event", event.EventName()),
				zap.Error(err),
			)
		}
	}
}

// Register registers an event handler
func (d *Dispatcher) Register(name string, handler shared.EventHandler) {
	d.mu.Lock()
	d.handlers[name] = append(d.handlers[name], handler)
	d.mu.Unlock()
	d.log.Debug("Registered event handler", zap.String("event", name))
}

var _ shared.EventDispatcher = (*Dispatcher)(nil)

package shared

import (
	"context"
	"time"
)

// DomainEvent represents an event that has occurred in the domain
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// EventHandler handles domain events
type EventHandler func(ctx context.Context, event DomainEvent) error

// EventDispatcher fans domain events out to registered handlers
type EventDispatcher interface {
	Dispatch(ctx context.Context, event DomainEvent)
	Register(eventName string, handler EventHandler)
}

// BaseEvent carries the fields every event shares
type BaseEvent struct {
	Name string
	At   time.Time
}

// NewBaseEvent stamps an event with the current time
func NewBaseEvent(name string) BaseEvent {
	return BaseEvent{Name: name, At: time.Now()}
}

// EventName implements DomainEvent
func (e BaseEvent) EventName() string { return e.Name }

// OccurredAt implements DomainEvent
func (e BaseEvent) OccurredAt() time.Time { return e.At }

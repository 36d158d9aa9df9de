// Package static is an in-process push channel for development and tests
package static

import (
	"context"
	"sync"

	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/infrastructure/feed"
	"github.com/pantrysense/v2/internal/ports/outbound"
)

// Feed keeps the last value of every channel and replays it to new subscribers
type Feed struct {
	mu     sync.Mutex
	values map[string]outbound.FeedEvent
	subs   map[string]map[*feed.Pipe]struct{}
}

// NewFeed creates a static feed. initial, when set, is stored on
// inventory.DefaultChannel.
func NewFeed(initial *inventory.SensorReading) *Feed {
	f := &Feed{
		values: make(map[string]outbound.FeedEvent),
		subs:   make(map[string]map[*feed.Pipe]struct{}),
	}
	if initial != nil {
		r := *initial
		f.values[inventory.DefaultChannel] = outbound.FeedEvent{Reading: &r}
	}
	return f
}

// Name implements outbound.InventoryFeed
func (f *Feed) Name() string {
	return "static"
}

// Subscribe implements outbound.InventoryFeed
func (f *Feed) Subscribe(ctx context.Context, channel string) (outbound.Subscription, error) {
	var pipe *feed.Pipe
	pipe = feed.NewPipe(8, func() error {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[channel][pipe]; ok {
			delete(f.subs[channel], pipe)
			pipe.Finish()
		}
		return nil
	})

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.subs[channel] == nil {
		f.subs[channel] = make(map[*feed.Pipe]struct{})
	}
	f.subs[channel][pipe] = struct{}{}
	pipe.Send(f.value(channel))
	return pipe, nil
}

// Publish stores reading as the channel's value; nil clears it
func (f *Feed) Publish(channel string, reading *inventory.SensorReading) {
	ev := outbound.FeedEvent{}
	if reading != nil {
		r := *reading
		ev.Reading = &r
	}
	f.deliver(channel, ev, true)
}

// Fail reports a transport failure to the channel's subscribers
func (f *Feed) Fail(channel string, err error) {
	f.deliver(channel, outbound.FeedEvent{Err: err}, false)
}

func (f *Feed) deliver(channel string, ev outbound.FeedEvent, store bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if store {
		f.values[channel] = ev
	}
	for pipe := range f.subs[channel] {
		pipe.Send(ev)
	}
}

func (f *Feed) value(channel string) outbound.FeedEvent {
	return f.values[channel]
}

var _ outbound.InventoryFeed = (*Feed)(nil)

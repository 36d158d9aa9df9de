// Package feed holds what the push-channel adapters share: payload decoding
// and the subscription pipe they hand to the inventory service.
package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/ports/outbound"
)

// Decode turns one channel payload into a feed event. An empty or null
// payload means the channel holds no data.
func Decode(payload []byte) outbound.FeedEvent {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return outbound.FeedEvent{}
	}

	var reading inventory.SensorReading
	if err := json.Unmarshal(payload, &reading); err != nil {
		return outbound.FeedEvent{Err: fmt.Errorf("decode sensor reading: %w", err)}
	}
	return outbound.FeedEvent{Reading: &reading}
}

// Pipe is a Subscription fed by one producer goroutine. The producer sends
// with Send and calls Finish when it exits; Close asks it to stop.
type Pipe struct {
	updates chan outbound.FeedEvent
	done    chan struct{}
	stop    func() error

	once sync.Once
	err  error
}

// NewPipe creates a pipe. stop, when set, runs once on Close.
func NewPipe(buffer int, stop func() error) *Pipe {
	return &Pipe{
		updates: make(chan outbound.FeedEvent, buffer),
		done:    make(chan struct{}),
		stop:    stop,
	}
}

// Updates implements outbound.Subscription
func (p *Pipe) Updates() <-chan outbound.FeedEvent {
	return p.updates
}

// Send delivers ev unless the pipe was closed first
func (p *Pipe) Send(ev outbound.FeedEvent) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.updates <- ev:
		return true
	case <-p.done:
		return false
	}
}

// Done is closed once Close has been called
func (p *Pipe) Done() <-chan struct{} {
	return p.done
}

// Finish closes Updates. Only the producer calls it, exactly once.
func (p *Pipe) Finish() {
	close(p.updates)
}

// Close implements outbound.Subscription
func (p *Pipe) Close() error {
	p.once.Do(func() {
		close(p.done)
		if p.stop != nil {
			p.err = p.stop()
		}
	})
	return p.err
}

var _ outbound.Subscription = (*Pipe)(nil)

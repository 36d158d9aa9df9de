// Package redis implements the inventory push channel on Redis. The publisher
// keeps the latest payload under the channel name and publishes every update
// on the pub/sub channel of the same name.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/infrastructure/feed"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Feed implements outbound.InventoryFeed on top of Redis pub/sub
type Feed struct {
	client redis.UniversalClient
	prefix string
	logger *zap.Logger
}

// NewFeed creates a Redis feed. keyPrefix namespaces both the value key and
// the pub/sub channel.
func NewFeed(client redis.UniversalClient, keyPrefix string, logger *zap.Logger) *Feed {
	return &Feed{
		client: client,
		prefix: keyPrefix,
		logger: logger.Named("redis-feed"),
	}
}

// Name implements outbound.InventoryFeed
func (f *Feed) Name() string {
	return "redis"
}

// Subscribe replays the stored value, then forwards every published payload
func (f *Feed) Subscribe(ctx context.Context, channel string) (outbound.Subscription, error) {
	key := f.prefix + channel

	ps := f.client.Subscribe(ctx, key)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", key, err)
	}

	initial, err := f.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		initial = nil
	case err != nil:
		_ = ps.Close()
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	pipe := feed.NewPipe(1, ps.Close)
	messages := ps.Channel()

	go func() {
		defer pipe.Finish()

		if !pipe.Send(f.decode(key, initial)) {
			return
		}
		for {
			select {
			case <-pipe.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				if !pipe.Send(f.decode(key, []byte(msg.Payload))) {
					return
				}
			}
		}
	}()

	return pipe, nil
}

// decode reports a malformed payload to the subscriber as a feed error
func (f *Feed) decode(key string, payload []byte) outbound.FeedEvent {
	ev := feed.Decode(payload)
	if ev.Err != nil {
		f.logger.Warn("Malformed payload, reporting feed error", zap.String("channel", key), zap.Error(ev.Err))
	}
	return ev
}

// Publish stores payload as the latest value of key and notifies subscribers.
// A nil payload publishes absence.
func Publish(ctx context.Context, client redis.UniversalClient, key string, payload []byte) error {
	if payload == nil {
		payload = []byte("null")
	}
	_, err := client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, key, payload, 0)
		p.Publish(ctx, key, payload)
		return nil
	})
	return err
}

// Publisher writes readings onto the feed; cmd/sensorsim uses it
type Publisher struct {
	client redis.UniversalClient
	prefix string
}

// NewPublisher creates a publisher with the same key prefix as the feed
func NewPublisher(client redis.UniversalClient, keyPrefix string) *Publisher {
	return &Publisher{client: client, prefix: keyPrefix}
}

// Publish encodes reading and publishes it on channel
func (p *Publisher) Publish(ctx context.Context, channel string, reading *inventory.SensorReading) error {
	var payload []byte
	if reading != nil {
		var err error
		if payload, err = json.Marshal(reading); err != nil {
			return err
		}
	}
	return Publish(ctx, p.client, p.prefix+channel, payload)
}

var _ outbound.InventoryFeed = (*Feed)(nil)

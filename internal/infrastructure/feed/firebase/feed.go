// Package firebase streams the inventory channel from the Firebase Realtime
// Database REST API using Server-Sent Events.
package firebase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pantrysense/v2/internal/infrastructure/feed"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/r3labs/sse/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"gopkg.in/cenkalti/backoff.v1"
)

// Config holds the database location and credentials
type Config struct {
	DatabaseURL    string
	AuthToken      string
	ReconnectDelay time.Duration
}

// Feed implements outbound.InventoryFeed against the Realtime Database
type Feed struct {
	baseURL   string
	authToken string
	reconnect time.Duration
	client    *http.Client
	logger    *zap.Logger
}

// NewFeed creates a Firebase feed
func NewFeed(cfg Config, logger *zap.Logger) *Feed {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	return &Feed{
		baseURL:   strings.TrimRight(cfg.DatabaseURL, "/"),
		authToken: cfg.AuthToken,
		reconnect: cfg.ReconnectDelay,
		// No client timeout: the stream stays open for the life of the subscription
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger: logger.Named("firebase-feed"),
	}
}

// Name implements outbound.InventoryFeed
func (f *Feed) Name() string {
	return "firebase"
}

// Subscribe opens the event stream and keeps it open, reconnecting after a
// transport failure until the subscription is closed
func (f *Feed) Subscribe(ctx context.Context, channel string) (outbound.Subscription, error) {
	endpoint, err := f.endpoint(channel)
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	pipe := feed.NewPipe(1, func() error {
		cancel()
		return nil
	})

	go func() {
		defer pipe.Finish()
		for {
			err := f.stream(streamCtx, endpoint, pipe)
			if streamCtx.Err() != nil {
				return
			}
			if err != nil {
				f.logger.Warn("Inventory stream failed", zap.String("channel", channel), zap.Error(err))
				if !pipe.Send(outbound.FeedEvent{Err: err}) {
					return
				}
			}

			select {
			case <-streamCtx.Done():
				return
			case <-time.After(f.reconnect):
			}
		}
	}()

	return pipe, nil
}

func (f *Feed) endpoint(channel string) (string, error) {
	u, err := url.Parse(f.baseURL + "/" + strings.Trim(channel, "/") + ".json")
	if err != nil {
		return "", fmt.Errorf("invalid database url: %w", err)
	}
	if f.authToken != "" {
		q := u.Query()
		q.Set("auth", f.authToken)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// stream runs one connection until it ends. It returns nil when the server
// closed the stream cleanly. Reconnecting is left to the caller so that every
// failure reaches the subscriber.
func (f *Feed) stream(ctx context.Context, endpoint string, pipe *feed.Pipe) error {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := sse.NewClient(endpoint)
	client.Connection = f.client
	client.ReconnectStrategy = &backoff.StopBackOff{}
	client.ResponseValidator = checkStatus

	tree := &document{}
	var failure error
	err := client.SubscribeRawWithContext(connCtx, func(msg *sse.Event) {
		if failure != nil {
			return
		}
		if failure = f.handle(tree, msg, pipe); failure != nil {
			cancel()
		}
	})
	if failure != nil {
		return failure
	}
	return err
}

// handle applies one server event. An error ends the connection.
func (f *Feed) handle(tree *document, msg *sse.Event, pipe *feed.Pipe) error {
	switch name := string(msg.Event); name {
	case "put", "patch":
		if err := tree.apply(name, string(msg.Data)); err != nil {
			return err
		}
		if !pipe.Send(feed.Decode(tree.bytes())) {
			return context.Canceled
		}
	case "cancel":
		return fmt.Errorf("stream cancelled by server: %s", msg.Data)
	case "auth_revoked":
		return fmt.Errorf("stream credential revoked")
	}
	return nil
}

func checkStatus(_ *sse.Client, resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("stream returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// document mirrors the value at the streamed location
type document struct {
	value interface{}
}

type change struct {
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}

func (d *document) apply(kind, raw string) error {
	var c change
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return fmt.Errorf("decode %s event: %w", kind, err)
	}
	var data interface{}
	if len(c.Data) > 0 {
		if err := json.Unmarshal(c.Data, &data); err != nil {
			return fmt.Errorf("decode %s data: %w", kind, err)
		}
	}

	segments := splitPath(c.Path)
	if kind == "patch" {
		fields, ok := data.(map[string]interface{})
		if !ok {
			return fmt.Errorf("patch data is not an object")
		}
		for k, v := range fields {
			d.value = set(d.value, append(segments, splitPath(k)...), v)
		}
		return nil
	}
	d.value = set(d.value, segments, data)
	return nil
}

func (d *document) bytes() []byte {
	b, err := json.Marshal(d.value)
	if err != nil {
		return nil
	}
	return b
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// set replaces the node at path; a nil value deletes it
func set(node interface{}, path []string, value interface{}) interface{} {
	if len(path) == 0 {
		return value
	}
	obj, ok := node.(map[string]interface{})
	if !ok {
		obj = make(map[string]interface{})
	}
	child := set(obj[path[0]], path[1:], value)
	if child == nil {
		delete(obj, path[0])
	} else {
		obj[path[0]] = child
	}
	if len(obj) == 0 {
		return nil
	}
	return obj
}

var _ outbound.InventoryFeed = (*Feed)(nil)

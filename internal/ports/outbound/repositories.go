// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/pantrysense/v2/internal/domain/capture"
	"github.com/pantrysense/v2/internal/domain/inventory"
)

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ReadingRepository keeps the history of live sensor readings
type ReadingRepository interface {
	Record(ctx context.Context, itemID string, reading inventory.SensorReading) error
	// Recent returns up to limit readings for itemID, oldest first
	Recent(ctx context.Context, itemID string, limit int) ([]inventory.SensorReading, error)
}

// CaptureRepository stores camera capture metadata
type CaptureRepository interface {
	Save(ctx context.Context, c *capture.Capture) error
	FindByID(ctx context.Context, id string) (*capture.Capture, error)
	// List returns captures newest first
	List(ctx context.Context, limit int) ([]*capture.Capture, error)
	Delete(ctx context.Context, id string) error
}

// ObjectStore stores binary objects and returns their public URL
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error)
	Delete(ctx context.Context, key string) error
}

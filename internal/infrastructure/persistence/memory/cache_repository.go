// Package memory provides in-memory adapters for development and tests
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pantrysense/v2/internal/ports/outbound"
)

// CacheItem represents a cached item. A zero ExpiresAt never expires.
type CacheItem struct {
	Value     []byte
	ExpiresAt time.Time
}

func (i CacheItem) expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// CacheRepository implements outbound.CacheRepository in process memory
type CacheRepository struct {
	data  map[string]CacheItem
	mutex sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

// NewCacheRepository creates a new in-memory cache repository and starts
// its cleanup loop; call Close to stop it
func NewCacheRepository(cleanupInterval time.Duration) *CacheRepository {
	repo := &CacheRepository{
		data: make(map[string]CacheItem),
		stop: make(chan struct{}),
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	go repo.cleanup(cleanupInterval)
	return repo
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mutex.RLock()
	item, exists := r.data[key]
	r.mutex.RUnlock()

	if !exists || item.expired(time.Now()) {
		return nil, outbound.ErrCacheMiss
	}

	out := make([]byte, len(item.Value))
	copy(out, item.Value)
	return out, nil
}

// Set stores a value in cache with TTL; ttl <= 0 keeps it until deleted
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	item := CacheItem{Value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.ExpiresAt = time.Now().Add(ttl)
	}

	r.mutex.Lock()
	r.data[key] = item
	r.mutex.Unlock()
	return nil
}

// Delete removes a key from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	r.mutex.Lock()
	delete(r.data, key)
	r.mutex.Unlock()
	return nil
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	r.mutex.RLock()
	item, exists := r.data[key]
	r.mutex.RUnlock()

	return exists && !item.expired(time.Now()), nil
}

// Close stops the cleanup loop
func (r *CacheRepository) Close() error {
	r.once.Do(func() { close(r.stop) })
	return nil
}

func (r *CacheRepository) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.mutex.Lock()
			for key, item := range r.data {
				if item.expired(now) {
					delete(r.data, key)
				}
			}
			r.mutex.Unlock()
		}
	}
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

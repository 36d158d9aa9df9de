package memory

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pantrysense/v2/internal/ports/outbound"
)

// Object is one stored blob
type Object struct {
	ContentType string
	Data        []byte
}

// ObjectStore keeps uploads in memory when no bucket is configured
type ObjectStore struct {
	baseURL string
	mu      sync.RWMutex
	objects map[string]Object
}

// NewObjectStore creates an object store whose URLs are baseURL + "/" + key
func NewObjectStore(baseURL string) *ObjectStore {
	if baseURL == "" {
		baseURL = "memory://objects"
	}
	return &ObjectStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]Object),
	}
}

// Put stores body under key
func (s *ObjectStore) Put(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read object body: %w", err)
	}

	s.mu.Lock()
	s.objects[key] = Object{ContentType: contentType, Data: data}
	s.mu.Unlock()

	return s.baseURL + "/" + key, nil
}

// Delete removes key; deleting a missing key is not an error
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Get returns a stored object
func (s *ObjectStore) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

var _ outbound.ObjectStore = (*ObjectStore)(nil)

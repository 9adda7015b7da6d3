package blobstore

import (
	"context"
	"time"

	"campusqa/infrastructure/persistence/abstractions"
)

// StorageObserver receives one call per blob store operation
type StorageObserver interface {
	ObserveStorage(backend, operation string, duration time.Duration, err error)
}

// InstrumentedStore reports every call on next to an observer
type InstrumentedStore struct {
	next     abstractions.BlobStore
	backend  string
	observer StorageObserver
}

// NewInstrumentedStore wraps next
func NewInstrumentedStore(next abstractions.BlobStore, backend string, observer StorageObserver) *InstrumentedStore {
	return &InstrumentedStore{next: next, backend: backend, observer: observer}
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, found, err := s.next.Get(ctx, key)
	s.observer.ObserveStorage(s.backend, "get", time.Since(start), err)
	return value, found, err
}

func (s *InstrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.observer.ObserveStorage(s.backend, "set", time.Since(start), err)
	return err
}

// Close closes the wrapped store when it holds resources
func (s *InstrumentedStore) Close() error {
	if c, ok := s.next.(abstractions.BlobStoreCloser); ok {
		return c.Close()
	}
	return nil
}

package blobstore

import (
	"context"
	"errors"
	"time"

	"campusqa/infrastructure/persistence/abstractions"
	pkgerrors "campusqa/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds configuration for the storage circuit breaker
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a default configuration for name
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// BreakerStore guards a remote blob store with a circuit breaker.
// While open, calls fail fast with an UNAVAILABLE error instead of waiting on the backend.
type BreakerStore struct {
	next   abstractions.BlobStore
	cb     *gobreaker.CircuitBreaker
	name   string
	logger *zap.Logger
}

// NewBreakerStore wraps next
func NewBreakerStore(next abstractions.BlobStore, cfg BreakerConfig, logger *zap.Logger) *BreakerStore {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Storage circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &BreakerStore{
		next:   next,
		cb:     cb,
		name:   cfg.Name,
		logger: logger,
	}
}

// Get reads through the breaker
func (s *BreakerStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	type getResult struct {
		value []byte
		found bool
	}

	res, err := s.cb.Execute(func() (interface{}, error) {
		value, found, err := s.next.Get(ctx, key)
		return getResult{value: value, found: found}, err
	})
	if err != nil {
		return nil, false, s.translate(err)
	}
	r := res.(getResult)
	return r.value, r.found, nil
}

// Set writes through the breaker
func (s *BreakerStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.Set(ctx, key, value)
	})
	if err != nil {
		return s.translate(err)
	}
	return nil
}

// State reports the breaker state
func (s *BreakerStore) State() gobreaker.State {
	return s.cb.State()
}

// Close closes the wrapped store when it holds resources
func (s *BreakerStore) Close() error {
	if c, ok := s.next.(abstractions.BlobStoreCloser); ok {
		return c.Close()
	}
	return nil
}

func (s *BreakerStore) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.NewUnavailableError(s.name).WithCause(err)
	}
	return err
}

package cacheinfra

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc cache adapter.
type Config struct {
	// Capacity is the maximum number of entries the cache can store.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	NumShards int

	// TTL is the time-to-live applied to every entry. The core treats the
	// cache TTL as a per-instance constant, never per call.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict when
	// the cache reaches capacity. Must be between 1 and 100.
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero uses sturdyc's default interval.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	err := validation.Errors{
		"capacity":            validation.Validate(c.Capacity, validation.Required, validation.Min(1)),
		"num_shards":          validation.Validate(c.NumShards, validation.Required, validation.Min(1)),
		"ttl":                 validation.Validate(c.TTL, validation.Required, validation.Min(time.Duration(1))),
		"eviction_percentage": validation.Validate(c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
	}.Filter()
	if err != nil {
		return fmt.Errorf("cache config: %w", err)
	}
	return nil
}

func (c Config) toSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option
	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return options
}

// sturdycService adapts a sturdyc client to the cache.CacheService capability.
type sturdycService struct {
	client    *sturdyc.Client[any]
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewSturdycService creates a new sturdyc cache service adapter. The TTL,
// capacity, shard count and eviction percentage are fixed for the lifetime of
// the client.
func NewSturdycService(cfg Config) (*sturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.toSturdycOptions()...,
	)

	return &sturdycService{client: client}, nil
}

// TryGet reports whether the key holds a live entry. A closed service always
// misses.
func (s *sturdycService) TryGet(ctx context.Context, key string) (any, bool) {
	if s.closed.Load() {
		return nil, false
	}
	return s.client.Get(key)
}

// Set stores the value under key with the client-wide TTL.
func (s *sturdycService) Set(ctx context.Context, key string, value any) {
	if s.closed.Load() {
		return
	}
	s.client.Set(key, value)
}

// Delete removes a single entry so subsequent reads fetch fresh data.
func (s *sturdycService) Delete(ctx context.Context, key string) error {
	if s.closed.Load() {
		return nil
	}
	s.client.Delete(key)
	return nil
}

// Close drops every entry and marks the service unusable. Safe to call more
// than once; only the first call does work.
func (s *sturdycService) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		for _, key := range s.client.ScanKeys() {
			s.client.Delete(key)
		}
	})
	return nil
}

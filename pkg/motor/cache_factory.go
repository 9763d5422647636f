package motor

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/nsurely/motor-go/internal/constants"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory represents in-memory cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS represents NATS KV cache.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone represents no caching.
	CacheTypeNone CacheType = "none"
)

// CacheConfig configures a cache backend.
type CacheConfig struct {
	Type CacheType `mapstructure:"type" yaml:"type"`

	// MaxSize bounds the memory cache.
	MaxSize int `mapstructure:"max_size" yaml:"max_size,omitempty"`

	// NATS KV settings, required for CacheTypeNATS.
	NATS *NATSKVConfig `mapstructure:"-" yaml:"-"`
}

// DefaultCacheConfig returns an in-memory cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type:    CacheTypeMemory,
		MaxSize: constants.DefaultCacheSize,
	}
}

// NewCacheFromConfig creates a cache backend from configuration.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory, "":
		return NewMemoryCache(config.MaxSize), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVCache(config.NATS)

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// NoOpCache is a cache that does nothing (no caching).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns an error (nothing cached).
func (c *NoOpCache) Get(context.Context, string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

func (c *NoOpCache) Set(context.Context, string, *CacheEntry) error { return nil }
func (c *NoOpCache) Delete(context.Context, string) error            { return nil }
func (c *NoOpCache) Clear(context.Context) error                     { return nil }
func (c *NoOpCache) Has(context.Context, string) bool                { return false }

// CacheChain layers caches, typically memory in front of NATS KV.
type CacheChain struct {
	caches []Cache
}

// NewCacheChain creates a new cache chain.
func NewCacheChain(caches ...Cache) *CacheChain {
	return &CacheChain{
		caches: caches,
	}
}

// Get returns the first hit and back-fills the layers in front of it.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for i, cache := range c.caches {
		entry, err := cache.Get(ctx, key)
		if err == nil {
			for j := range i {
				_ = c.caches[j].Set(ctx, key, entry)
			}

			return entry, nil
		}
	}

	return nil, ErrCacheMiss
}

// Set stores an item in every layer.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	var result *multierror.Error

	for _, cache := range c.caches {
		if err := cache.Set(ctx, key, entry); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// Delete removes an item from every layer.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	var result *multierror.Error

	for _, cache := range c.caches {
		if err := cache.Delete(ctx, key); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// Clear empties every layer.
func (c *CacheChain) Clear(ctx context.Context) error {
	var result *multierror.Error

	for _, cache := range c.caches {
		if err := cache.Clear(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// Has checks if a key exists in any layer.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, cache := range c.caches {
		if cache.Has(ctx, key) {
			return true
		}
	}

	return false
}

package motor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nsurely/motor-go/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrCacheMiss            = errors.New("cache miss")
	ErrCacheDisabled        = errors.New("cache disabled")
	ErrNATSConfigRequired   = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType = errors.New("unsupported cache type")
)

// Cache stores serialized snapshots such as organization settings.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheEntry is one cached value.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	StoredAt  time.Time `json:"storedAt"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// NewCacheEntry wraps data with a ttl. A zero ttl never expires.
func NewCacheEntry(data []byte, ttl time.Duration) *CacheEntry {
	now := time.Now()
	entry := &CacheEntry{Data: data, StoredAt: now}

	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}

	return entry
}

// Expired reports whether the entry is past its expiry at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// MemoryCache is a process local Cache bounded to MaxSize entries.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
	maxSize int
	now     func() time.Time
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}

	if entry.Expired(c.now()) {
		delete(c.entries, key)

		return nil, ErrCacheMiss
	}

	return entry, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}

	c.entries[key] = entry

	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)

	return nil
}

func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// evictLocked drops expired entries, or the oldest one if none have expired.
func (c *MemoryCache) evictLocked() {
	now := c.now()

	var (
		oldestKey string
		oldest    time.Time
	)

	for key, entry := range c.entries {
		if entry.Expired(now) {
			delete(c.entries, key)

			continue
		}

		if oldestKey == "" || entry.StoredAt.Before(oldest) {
			oldestKey, oldest = key, entry.StoredAt
		}
	}

	if len(c.entries) >= c.maxSize && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// NATSKVConfig configures a NATS JetStream key-value cache.
type NATSKVConfig struct {
	// URL of the NATS server. Defaults to nats.DefaultURL.
	URL string
	// Bucket name. Created when missing.
	Bucket string
	// TTL applied by the bucket to every key.
	TTL time.Duration
	// Conn reuses an existing connection instead of dialing URL.
	Conn *nats.Conn
	// Options are passed to nats.Connect.
	Options []nats.Option
}

// NATSKVCache shares cache entries between processes through a JetStream KV bucket.
type NATSKVCache struct {
	conn     *nats.Conn
	ownsConn bool
	kv       nats.KeyValue
}

// NewNATSKVCache connects to NATS and binds (or creates) the bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil || config.Bucket == "" {
		return nil, ErrNATSConfigRequired
	}

	conn := config.Conn
	ownsConn := false

	if conn == nil {
		url := config.URL
		if url == "" {
			url = nats.DefaultURL
		}

		var err error

		conn, err = nats.Connect(url, config.Options...)
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		ownsConn = true
	}

	kv, err := bindBucket(conn, config)
	if err != nil {
		if ownsConn {
			conn.Close()
		}

		return nil, err
	}

	return &NATSKVCache{conn: conn, ownsConn: ownsConn, kv: kv}, nil
}

func bindBucket(conn *nats.Conn, config *NATSKVConfig) (nats.KeyValue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      config.Bucket,
			Description: "motor client cache",
			TTL:         config.TTL,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("binding KV bucket %s: %w", config.Bucket, err)
	}

	return kv, nil
}

var invalidKVKeyChars = regexp.MustCompile(`[^-/_=.a-zA-Z0-9]`)

func natsKey(key string) string {
	return invalidKVKeyChars.ReplaceAllString(key, "_")
}

func (c *NATSKVCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	kvEntry, err := c.kv.Get(natsKey(key))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrCacheMiss
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s from KV: %w", key, err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(kvEntry.Value(), &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}

	if entry.Expired(time.Now()) {
		return nil, ErrCacheMiss
	}

	return &entry, nil
}

func (c *NATSKVCache) Set(_ context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}

	if _, err := c.kv.Put(natsKey(key), data); err != nil {
		return fmt.Errorf("writing %s to KV: %w", key, err)
	}

	return nil
}

func (c *NATSKVCache) Delete(_ context.Context, key string) error {
	err := c.kv.Delete(natsKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting %s from KV: %w", key, err)
	}

	return nil
}

func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys(nats.Context(ctx))
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("listing KV keys: %w", err)
	}

	for _, key := range keys {
		if err := c.kv.Delete(key); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
			return fmt.Errorf("deleting %s from KV: %w", key, err)
		}
	}

	return nil
}

func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close drains the connection if the cache dialed it.
func (c *NATSKVCache) Close() error {
	if !c.ownsConn {
		return nil
	}

	if err := c.conn.Drain(); err != nil {
		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}

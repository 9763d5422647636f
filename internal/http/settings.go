package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nsurely/motor-go/internal/constants"
	"github.com/nsurely/motor-go/pkg/motor"
)

type settingsState int

const (
	settingsUnloaded settingsState = iota
	settingsLoading
	settingsLoaded
)

// settingsLoad is one in-flight load. done is closed once settings and err
// are final.
type settingsLoad struct {
	done     chan struct{}
	settings *motor.OrgSettings
	err      error
}

// settingsLoader owns the organization settings snapshot. At most one load
// runs at a time: request-path triggers skip while a load is in flight,
// explicit callers wait for it.
type settingsLoader struct {
	mu       sync.Mutex
	state    settingsState
	settings *motor.OrgSettings
	inflight *settingsLoad

	fetch    func(ctx context.Context) (*motor.OrgSettings, []byte, error)
	cache    motor.Cache
	cacheKey string
	ttl      time.Duration
	logger   motor.Logger
}

func newSettingsLoader(fetch func(ctx context.Context) (*motor.OrgSettings, []byte, error)) *settingsLoader {
	return &settingsLoader{
		fetch:  fetch,
		logger: motor.NopLogger{},
	}
}

// trigger starts a background load if settings were never loaded and no load
// is running. It never blocks.
func (l *settingsLoader) trigger(c *Client) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != settingsUnloaded || c.closed.Load() {
		return
	}

	load := l.startLocked()

	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(c.ctx, constants.ShortHTTPTimeout)
		defer cancel()

		l.run(ctx, load, true)

		if load.err != nil {
			l.logger.Warn("Loading organization settings failed", map[string]any{"error": load.err.Error()})
		}
	}()
}

// get returns the loaded settings, waiting for an in-flight load or running
// one when none has happened yet.
func (l *settingsLoader) get(ctx context.Context) (*motor.OrgSettings, error) {
	l.mu.Lock()

	switch l.state {
	case settingsLoaded:
		settings := l.settings
		l.mu.Unlock()

		return settings, nil
	case settingsLoading:
		load := l.inflight
		l.mu.Unlock()

		return l.wait(ctx, load)
	default:
		load := l.startLocked()
		l.mu.Unlock()

		l.run(ctx, load, true)

		return load.settings, load.err
	}
}

// refresh reloads the settings from the API, bypassing the cache. A load
// already in flight is awaited instead of starting a second one.
func (l *settingsLoader) refresh(ctx context.Context) (*motor.OrgSettings, error) {
	l.mu.Lock()

	if l.state == settingsLoading {
		load := l.inflight
		l.mu.Unlock()

		return l.wait(ctx, load)
	}

	load := l.startLocked()
	l.mu.Unlock()

	l.run(ctx, load, false)

	return load.settings, load.err
}

// cached returns the current snapshot without loading.
func (l *settingsLoader) cached() *motor.OrgSettings {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.settings
}

func (l *settingsLoader) startLocked() *settingsLoad {
	load := &settingsLoad{done: make(chan struct{})}
	l.state = settingsLoading
	l.inflight = load

	return load
}

func (l *settingsLoader) wait(ctx context.Context, load *settingsLoad) (*motor.OrgSettings, error) {
	select {
	case <-load.done:
		return load.settings, load.err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for organization settings: %w", ctx.Err())
	}
}

// run performs load and publishes the result. A failed load keeps a previous
// snapshot; without one the loader returns to unloaded so a later call retries.
func (l *settingsLoader) run(ctx context.Context, load *settingsLoad, useCache bool) {
	settings, err := l.load(ctx, useCache)

	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case err == nil:
		l.settings = settings
		l.state = settingsLoaded
	case l.settings != nil:
		l.state = settingsLoaded
	default:
		l.state = settingsUnloaded
	}

	l.inflight = nil
	load.settings = settings
	load.err = err
	close(load.done)
}

func (l *settingsLoader) load(ctx context.Context, useCache bool) (*motor.OrgSettings, error) {
	if useCache && l.cache != nil {
		if settings, ok := l.fromCache(ctx); ok {
			return settings, nil
		}
	}

	settings, raw, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, l.cacheKey, motor.NewCacheEntry(raw, l.ttl)); err != nil {
			l.logger.Warn("Caching organization settings failed", map[string]any{"error": err.Error()})
		}
	}

	return settings, nil
}

func (l *settingsLoader) fromCache(ctx context.Context) (*motor.OrgSettings, bool) {
	entry, err := l.cache.Get(ctx, l.cacheKey)
	if err != nil {
		if !errors.Is(err, motor.ErrCacheMiss) {
			l.logger.Debug("Reading cached organization settings failed", map[string]any{"error": err.Error()})
		}

		return nil, false
	}

	var settings motor.OrgSettings
	if err := json.Unmarshal(entry.Data, &settings); err != nil {
		_ = l.cache.Delete(ctx, l.cacheKey)

		return nil, false
	}

	return &settings, true
}

// fetchOrgSettings GETs the public settings endpoint through Do. The nested
// trigger inside Do sees the loading state and does nothing.
func (c *Client) fetchOrgSettings(ctx context.Context) (*motor.OrgSettings, []byte, error) {
	resp, err := c.Do(ctx, &motor.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/public/" + c.orgID,
		Public: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("fetching organization settings: %w", err)
	}

	var settings motor.OrgSettings
	if err := json.Unmarshal(resp.Body, &settings); err != nil {
		return nil, nil, fmt.Errorf("parsing organization settings: %w", err)
	}

	return &settings, resp.Body, nil
}

// OrgSettings returns the organization settings, loading them if needed.
func (c *Client) OrgSettings(ctx context.Context) (*motor.OrgSettings, error) {
	if c.closed.Load() {
		return nil, motor.ErrClientClosed
	}

	return c.settings.get(ctx)
}

// RefreshOrgSettings reloads the organization settings.
func (c *Client) RefreshOrgSettings(ctx context.Context) (*motor.OrgSettings, error) {
	if c.closed.Load() {
		return nil, motor.ErrClientClosed
	}

	return c.settings.refresh(ctx)
}

// CachedOrgSettings returns the settings snapshot if one is loaded.
func (c *Client) CachedOrgSettings() *motor.OrgSettings {
	return c.settings.cached()
}

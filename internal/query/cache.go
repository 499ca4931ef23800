// Package query is the client's keyed read cache. Reads are de-duplicated per
// key, results stay fresh until a mutation invalidates their key, and live
// subscribers are refetched automatically after invalidation.
package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrTypeMismatch is returned when a key is read with a different type than
// the one its fetcher produced.
var ErrTypeMismatch = errors.New("cached value has unexpected type")

type fetchFunc func(context.Context) (any, error)

type listener interface {
	deliver(snapshot)
}

type snapshot struct {
	value     any
	hasValue  bool
	err       error
	loading   bool
	updatedAt time.Time
}

type entry struct {
	value     any
	hasValue  bool
	err       error
	fresh     bool
	inflight  int
	updatedAt time.Time
	gen       uint64
	fetch     fetchFunc
	listeners map[uint64]listener
}

func (e *entry) snapshot() snapshot {
	return snapshot{value: e.value, hasValue: e.hasValue, err: e.err, loading: e.inflight > 0, updatedAt: e.updatedAt}
}

// Cache holds the last observed server state per Key.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	flights singleflight.Group
	logger  *slog.Logger
	now     func() time.Time
	nextID  uint64
	bg      sync.WaitGroup
}

type Option func(*Cache)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithClock overrides the time source used for UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[Key]*entry),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c *Cache) entryLocked(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{listeners: make(map[uint64]listener)}
		c.entries[key] = e
	}
	return e
}

func (c *Cache) notifyLocked(e *entry) {
	if len(e.listeners) == 0 {
		return
	}
	snap := e.snapshot()
	for _, l := range e.listeners {
		l.deliver(snap)
	}
}

// load returns the fresh value for key or runs (joins) the fetch for the
// key's current generation. The fetch itself is detached from ctx: a caller
// that gives up stops waiting, but the result is still stored.
func (c *Cache) load(ctx context.Context, key Key, fn fetchFunc) (any, error) {
	if key.IsZero() {
		return nil, errors.New("query key is required")
	}
	c.mu.Lock()
	e := c.entryLocked(key)
	if fn != nil {
		e.fetch = fn
	} else {
		fn = e.fetch
	}
	if e.fresh {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	if fn == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("no fetcher registered for %s", key)
	}
	gen := e.gen
	c.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	flight := key.String() + "#" + strconv.FormatUint(gen, 10)
	ch := c.flights.DoChan(flight, func() (any, error) {
		return c.run(detached, key, gen, fn)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// run performs the fetch of one flight. A flight of the same generation may
// have settled between the freshness check in load and DoChan; its value is
// reused instead of fetching again.
func (c *Cache) run(ctx context.Context, key Key, gen uint64, fn fetchFunc) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.fresh && e.gen == gen {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()
	c.begin(key)
	v, err := fn(ctx)
	c.settle(key, gen, v, err)
	return v, err
}

func (c *Cache) begin(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(key)
	e.inflight++
	if e.inflight == 1 {
		c.notifyLocked(e)
	}
	c.logger.Debug("query fetch started", slog.String("key", key.String()))
}

// settle stores a fetch result unless the key was invalidated while the
// fetch was in flight; such a result still reaches its own waiters.
func (c *Cache) settle(key Key, gen uint64, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(key)
	if e.inflight > 0 {
		e.inflight--
	}
	if gen != e.gen {
		c.logger.Debug("query result superseded by invalidation", slog.String("key", key.String()))
		if e.inflight == 0 {
			c.notifyLocked(e)
		}
		return
	}
	if err != nil {
		e.err = err
		c.logger.Debug("query fetch failed", slog.String("key", key.String()), slog.String("error", err.Error()))
	} else {
		e.value = v
		e.hasValue = true
		e.err = nil
		e.fresh = true
		e.updatedAt = c.now()
	}
	c.notifyLocked(e)
}

// Invalidate marks keys stale. Keys with live subscribers are refetched in
// the background; others refetch on their next read.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	var refetch []Key
	for _, key := range keys {
		if e, ok := c.entries[key]; ok && c.invalidateLocked(key, e) {
			refetch = append(refetch, key)
		}
	}
	c.mu.Unlock()
	for _, key := range refetch {
		c.refetch(key)
	}
}

// InvalidateResource marks every key of the resource stale, whatever its parameters.
func (c *Cache) InvalidateResource(resource Resource) {
	c.mu.Lock()
	var refetch []Key
	for key, e := range c.entries {
		if key.resource == resource && c.invalidateLocked(key, e) {
			refetch = append(refetch, key)
		}
	}
	c.mu.Unlock()
	for _, key := range refetch {
		c.refetch(key)
	}
}

func (c *Cache) invalidateLocked(key Key, e *entry) bool {
	e.fresh = false
	e.gen++
	c.logger.Debug("query invalidated", slog.String("key", key.String()), slog.Uint64("generation", e.gen))
	return len(e.listeners) > 0 && e.fetch != nil
}

func (c *Cache) refetch(key Key) {
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		if _, err := c.load(context.Background(), key, nil); err != nil {
			c.logger.Warn("background refetch failed", slog.String("key", key.String()), slog.String("error", err.Error()))
		}
	}()
}

// Wait blocks until background refetches started so far have finished.
func (c *Cache) Wait() {
	c.bg.Wait()
}

func (c *Cache) subscribe(key Key, fn fetchFunc, l listener) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(key)
	e.fetch = fn
	c.nextID++
	id := c.nextID
	e.listeners[id] = l
	if e.hasValue || e.err != nil {
		l.deliver(e.snapshot())
	}
	return id, !e.fresh
}

func (c *Cache) unsubscribe(key Key, id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		delete(e.listeners, id)
	}
}

// Fetch returns the cached value for key, fetching it with fn when the key
// is stale or unknown. Concurrent callers for the same key share one fetch.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.load(ctx, key, func(ctx context.Context) (any, error) { return fn(ctx) })
	if err != nil {
		return zero, err
	}
	return cast[T](key, v)
}

// Peek returns whatever value is cached for key, fresh or stale, without fetching.
func Peek[T any](c *Cache, key Key) (T, bool) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.hasValue {
		return zero, false
	}
	v, ok := e.value.(T)
	return v, ok
}

// Mutate performs a write and, only if it succeeds, invalidates keys. Writes
// are never retried and never touch cached values directly.
func Mutate[R any](ctx context.Context, c *Cache, fn func(context.Context) (R, error), invalidate ...Key) (R, error) {
	res, err := fn(ctx)
	if err != nil {
		return res, err
	}
	c.Invalidate(invalidate...)
	return res, nil
}

func cast[T any](key Key, v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", ErrTypeMismatch, key, v)
	}
	return typed, nil
}

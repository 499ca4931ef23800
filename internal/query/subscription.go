package query

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is the live-monitor refresh period.
const DefaultPollInterval = 10 * time.Second

// State is what a subscriber observes for its key.
type State[T any] struct {
	Data      T
	HasData   bool
	Err       error
	Loading   bool
	UpdatedAt time.Time
}

// Subscription delivers the latest State of one key. Slow readers only ever
// see the most recent state; intermediate states are dropped.
type Subscription[T any] struct {
	cache *Cache
	key   Key
	id    uint64

	mu     sync.Mutex
	ch     chan State[T]
	done   chan struct{}
	closed bool
	once   sync.Once
}

// Subscribe observes key, fetching it with fn now if it is not fresh and again
// after every invalidation. The subscription ends when ctx is done or Close is called.
func Subscribe[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) *Subscription[T] {
	sub := &Subscription[T]{
		cache: c,
		key:   key,
		ch:    make(chan State[T], 1),
		done:  make(chan struct{}),
	}
	id, stale := c.subscribe(key, func(ctx context.Context) (any, error) { return fn(ctx) }, sub)
	sub.id = id
	if stale {
		c.refetch(key)
	}
	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()
	return sub
}

// Poll is Subscribe plus a timer that invalidates key every interval, for
// views that must track server state changed by other clients.
func Poll[T any](ctx context.Context, c *Cache, key Key, interval time.Duration, fn func(context.Context) (T, error)) *Subscription[T] {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	sub := Subscribe(ctx, c, key, fn)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.done:
				return
			case <-ticker.C:
				c.Invalidate(key)
			}
		}
	}()
	return sub
}

func (s *Subscription[T]) Key() Key { return s.key }

// Updates yields states in arrival order. It is closed by Close.
func (s *Subscription[T]) Updates() <-chan State[T] { return s.ch }

// Done is closed once the subscription has ended.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Close detaches from the cache. Fetches already in flight still complete
// and are stored.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.cache.unsubscribe(s.key, s.id)
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		close(s.done)
		s.mu.Unlock()
	})
}

func (s *Subscription[T]) deliver(snap snapshot) {
	state := State[T]{Err: snap.err, Loading: snap.loading, UpdatedAt: snap.updatedAt}
	if snap.hasValue {
		data, err := cast[T](s.key, snap.value)
		if err != nil {
			state.Err = err
		} else {
			state.Data = data
			state.HasData = true
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- state
}

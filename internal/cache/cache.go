package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/crewdeck/crewctl/internal/log"
)

// DefaultFreshFor is the default freshness window before an entry goes stale.
const DefaultFreshFor = time.Minute

// FetchFunc produces a fresh value for a key.
type FetchFunc func(ctx context.Context) (any, error)

// EventType classifies a cache notification.
type EventType int

const (
	// EventUpdated fires when a key receives a new value
	EventUpdated EventType = iota
	// EventInvalidated fires when a key or scope is marked stale
	EventInvalidated
	// EventCleared fires when every entry is dropped
	EventCleared
)

// Event notifies subscribers of a cache change. Key is zero for EventCleared.
type Event struct {
	Type EventType
	Key  Key
}

// entry is one cached value with its fetch timestamp and staleness flag.
type entry struct {
	value     any
	fetchedAt time.Time
	stale     bool
}

// Cache is a key-addressed store of fetched values with a staleness policy
// and mutation-triggered invalidation.
//
// Reads are stale-while-revalidate: an expired entry is still returned
// immediately, and a background refresh is triggered. Concurrent writes to
// one key resolve last-write-wins by completion order; ordering by issue
// time is deliberately not enforced.
type Cache struct {
	mu          sync.Mutex
	entries     map[Key]*entry
	refreshing  map[Key]bool
	subscribers map[int]chan Event
	nextSubID   int

	freshFor time.Duration
	logger   *log.Logger
	now      func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithFreshFor overrides the default freshness window.
func WithFreshFor(freshFor time.Duration) Option {
	return func(c *Cache) {
		if freshFor > 0 {
			c.freshFor = freshFor
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates an empty cache. One instance is constructed at the application
// root and shared by every resource accessor.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:     make(map[Key]*entry),
		refreshing:  make(map[Key]bool),
		subscribers: make(map[int]chan Event),
		freshFor:    DefaultFreshFor,
		logger:      log.DefaultLogger(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key. fresh is false when the entry has
// been invalidated or its freshness window has expired; the value is still
// servable either way.
func (c *Cache) Get(key Key) (value any, ok bool, fresh bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists {
		return nil, false, false
	}
	return e.value, true, c.isFresh(e)
}

// Put stores a value under key, unconditionally overwriting whatever is
// there. Completion order decides; a slower response issued earlier will
// overwrite a faster one issued later.
func (c *Cache) Put(key Key, value any) {
	c.mu.Lock()
	c.entries[key] = &entry{value: value, fetchedAt: c.now()}
	c.mu.Unlock()

	c.notify(Event{Type: EventUpdated, Key: key})
}

// GetOrFetch returns the cached value when one exists, refreshing stale
// entries in the background. On a miss it fetches inline.
func (c *Cache) GetOrFetch(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	c.mu.Lock()
	e, exists := c.entries[key]
	if exists {
		value := e.value
		needsRefresh := !c.isFresh(e) && !c.refreshing[key]
		if needsRefresh {
			c.refreshing[key] = true
		}
		c.mu.Unlock()

		if needsRefresh {
			go c.refresh(context.WithoutCancel(ctx), key, fetch)
		}
		return value, nil
	}
	c.mu.Unlock()

	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.Put(key, value)
	return value, nil
}

// refresh re-fetches a stale key in the background. Transient failures are
// retried a couple of times with exponential backoff; a refresh that still
// fails leaves the stale entry in place for the next read to retry.
func (c *Cache) refresh(ctx context.Context, key Key, fetch FetchFunc) {
	defer func() {
		c.mu.Lock()
		delete(c.refreshing, key)
		c.mu.Unlock()
	}()

	var value any
	operation := func() error {
		v, err := fetch(ctx)
		if err != nil {
			return err
		}
		value = v
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		c.logger.WithError(err).Debug("background refresh failed", "key", key.String())
		return
	}

	c.Put(key, value)
}

// InvalidateList marks every list-scope entry of a resource stale in one
// operation, forcing a refetch on the next read of any filter combination.
func (c *Cache) InvalidateList(resource string) {
	c.invalidateScope(resource, ScopeList)
}

// InvalidateDetail marks the detail entry for one entity stale.
func (c *Cache) InvalidateDetail(resource, id string) {
	key := DetailKey(resource, id)

	c.mu.Lock()
	e, exists := c.entries[key]
	if exists {
		e.stale = true
	}
	c.mu.Unlock()

	if exists {
		c.notify(Event{Type: EventInvalidated, Key: key})
	}
}

func (c *Cache) invalidateScope(resource string, scope Scope) {
	var invalidated []Key

	c.mu.Lock()
	for key, e := range c.entries {
		if key.Resource == resource && key.Scope == scope && !e.stale {
			e.stale = true
			invalidated = append(invalidated, key)
		}
	}
	c.mu.Unlock()

	for _, key := range invalidated {
		c.notify(Event{Type: EventInvalidated, Key: key})
	}
}

// Clear drops every entry unconditionally. Called on logout so no cached data
// survives into a different or absent identity.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[Key]*entry)
	c.mu.Unlock()

	c.notify(Event{Type: EventCleared})
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Subscribe registers for cache events. The returned cancel func must be
// called when the subscriber is torn down. Events are delivered best-effort:
// a subscriber that stops draining its channel misses events rather than
// blocking cache writes.
func (c *Cache) Subscribe() (<-chan Event, func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	ch := make(chan Event, 16)
	c.subscribers[id] = ch
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if existing, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(existing)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Cache) notify(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ch := range c.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (c *Cache) isFresh(e *entry) bool {
	return !e.stale && c.now().Sub(e.fetchedAt) < c.freshFor
}

package tokencache

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/devilmonastery/novel/internal/pkg/metrics"
)

// Cache holds the current bearer token in memory and mirrors it to an optional
// persistent Store. A non-empty in-memory token always wins over the store; the
// store is only consulted while the in-memory slot is empty.
type Cache struct {
	mu    sync.Mutex
	token string
	store Store
	key   string
	log   *slog.Logger
}

// Option configures a Cache
type Option func(*Cache)

// WithKey overrides the store key (default DefaultKey)
func WithKey(key string) Option {
	return func(c *Cache) {
		if key != "" {
			c.key = key
		}
	}
}

// WithLogger sets the logger used for store failures
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.log = logger
		}
	}
}

// New creates a token cache. store may be nil, in which case the cache is
// purely in-memory.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		key:   DefaultKey,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(slog.String("component", "token-cache"))
	return c
}

// SetToken stores token in memory and, if the store is available, writes it
// under the fixed key. Persisting is best effort.
func (c *Cache) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	if !c.storeAvailable() {
		return
	}
	err := c.store.Set(c.key, token)
	c.record("set", err)
	if err != nil {
		c.log.Debug("failed to persist token", slog.String("error", err.Error()))
	}
}

// ClearToken empties the in-memory slot and removes the key from the store.
// Clearing an empty cache is a no-op.
func (c *Cache) ClearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	if !c.storeAvailable() {
		return
	}
	err := c.store.Remove(c.key)
	c.record("remove", err)
	if err != nil {
		c.log.Debug("failed to remove persisted token", slog.String("error", err.Error()))
	}
}

// Token returns the current token. An empty in-memory slot is refilled from
// the store on every call, so a missing token costs one store read per call.
func (c *Cache) Token() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		metrics.TokenCacheLookups.WithLabelValues("memory").Inc()
		return c.token, true
	}

	if !c.storeAvailable() {
		metrics.TokenCacheLookups.WithLabelValues("none").Inc()
		return "", false
	}

	c.token = c.read()
	if c.token == "" {
		metrics.TokenCacheLookups.WithLabelValues("none").Inc()
		return "", false
	}
	metrics.TokenCacheLookups.WithLabelValues("store").Inc()
	return c.token, true
}

// Prime loads a persisted token into memory up front so the first caller
// does not pay for a store read.
func (c *Cache) Prime() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" || !c.storeAvailable() {
		return
	}
	if saved := c.read(); saved != "" {
		c.token = saved
		c.log.Debug("primed token from store", slog.String("store", c.storeName()))
	}
}

// read fetches the key from the store; absence and failures both read as "".
// Callers hold c.mu.
func (c *Cache) read() string {
	value, err := c.store.Get(c.key)
	if errors.Is(err, ErrNotFound) {
		c.record("get", nil)
		return ""
	}
	c.record("get", err)
	if err != nil {
		c.log.Debug("failed to read persisted token", slog.String("error", err.Error()))
		return ""
	}
	return value
}

func (c *Cache) storeAvailable() bool {
	return c.store != nil && c.store.Available()
}

func (c *Cache) record(operation string, err error) {
	metrics.RecordTokenStoreOp(c.storeName(), operation, err)
}

func (c *Cache) storeName() string {
	if named, ok := c.store.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", c.store)
}

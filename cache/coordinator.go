package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Observer receives cache outcomes. All hooks are optional and must be fast;
// they are invoked inline on the request path.
type Observer struct {
	OnHit          func(key string)
	OnMiss         func(key string)
	OnBypass       func(key string)
	OnEviction     func(key string)
	OnEvictFailure func(key string, err error)
}

// Coordinator wraps entity reads and mutations so that every mutation evicts
// the corresponding cache entries after the authoritative write commits, and
// every read goes through the cache first. It holds no mutable state of its
// own and is safe for concurrent use.
type Coordinator struct {
	store    *Store
	ttl      time.Duration
	observer Observer
}

// NewCoordinator creates a Coordinator storing snapshots with the given TTL.
func NewCoordinator(store *Store, ttl time.Duration, observer Observer) *Coordinator {
	return &Coordinator{
		store:    store,
		ttl:      ttl,
		observer: observer,
	}
}

// TTL reports the configured snapshot lifetime.
func (c *Coordinator) TTL() time.Duration {
	return c.ttl
}

// ReadThrough returns the cached value for key if present and unexpired;
// otherwise it invokes loader, stores the result with the configured TTL,
// and returns it.
//
// A cache backend failure degrades gracefully: the loader result is returned
// and caching is skipped, so an unavailable cache never fails a read. A
// loader failure is returned as-is and nothing is cached.
func (c *Coordinator) ReadThrough(ctx context.Context, key string, loader func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		if c.observer.OnHit != nil {
			c.observer.OnHit(key)
		}
		return data, nil
	case errors.Is(err, redis.Nil):
		if c.observer.OnMiss != nil {
			c.observer.OnMiss(key)
		}
	default:
		if c.observer.OnBypass != nil {
			c.observer.OnBypass(key)
		}
		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		return loaded, nil
	}

	loaded, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	if setErr := c.store.Set(ctx, key, loaded, c.ttl); setErr != nil {
		// Populating the cache is best-effort; the next read misses again.
		log.Print("authcache: cache populate failed")
	}

	return loaded, nil
}

// Mutate invokes mutator against authoritative storage and, only after it
// returns success, evicts keys from the cache. Eviction is removal, never
// replacement: concurrent writers must not race to install divergent
// snapshots.
//
// If eviction fails after a successful write, the mutation is still reported
// as successful; the inconsistency is observed and logged, and staleness is
// bounded by TTL expiry. A mutator failure evicts nothing.
func (c *Coordinator) Mutate(ctx context.Context, mutator func(ctx context.Context) error, keys ...string) error {
	if err := mutator(ctx); err != nil {
		return err
	}

	if err := c.store.Del(ctx, keys...); err != nil {
		log.Print("authcache: cache eviction failed after committed write")
		if c.observer.OnEvictFailure != nil {
			for _, key := range keys {
				c.observer.OnEvictFailure(key, err)
			}
		}
		return nil
	}

	if c.observer.OnEviction != nil {
		for _, key := range keys {
			c.observer.OnEviction(key)
		}
	}

	return nil
}

// Invalidate evicts keys without performing a mutation. Exposed for callers
// whose writes commit outside this coordinator.
func (c *Coordinator) Invalidate(ctx context.Context, keys ...string) error {
	err := c.store.Del(ctx, keys...)
	if err == nil && c.observer.OnEviction != nil {
		for _, key := range keys {
			c.observer.OnEviction(key)
		}
	}
	return err
}

// ReadThroughJSON is a typed ReadThrough: snapshots are stored as JSON and
// decoded into T. A snapshot that no longer decodes (schema drift) is
// treated as a miss and reloaded.
func ReadThroughJSON[T any](ctx context.Context, c *Coordinator, key string, loader func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	data, err := c.ReadThrough(ctx, key, func(ctx context.Context) ([]byte, error) {
		value, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		return json.Marshal(value)
	})
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		_ = c.store.Del(ctx, key)
		value, loadErr := loader(ctx)
		if loadErr != nil {
			return zero, loadErr
		}
		return value, nil
	}
	return out, nil
}

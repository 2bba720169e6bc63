package scope

import (
	"context"
	"sync"
)

// Provider is an unscoped computation producing one instance. The resolver
// it may need is already captured in the closure by the caller.
type Provider func(ctx context.Context) (any, error)

type cached struct {
	value any
}

type lockChainKey struct{}

// chainLocks returns the registry mutexes already held by the current
// resolution chain, carried on the context the same way the resolution
// path is.
func chainLocks(ctx context.Context) []*sync.Mutex {
	locks, _ := ctx.Value(lockChainKey{}).([]*sync.Mutex)
	return locks
}

func lockHeld(ctx context.Context, mu *sync.Mutex) bool {
	for _, held := range chainLocks(ctx) {
		if held == mu {
			return true
		}
	}
	return false
}

func withLock(ctx context.Context, mu *sync.Mutex) context.Context {
	locks := chainLocks(ctx)
	next := make([]*sync.Mutex, len(locks), len(locks)+1)
	copy(next, locks)
	return context.WithValue(ctx, lockChainKey{}, append(next, mu))
}

// LazyRegistry implements the lazy-singleton policy: compute once, cache
// forever, with a single lock shared by every binding in the registry.
// Cache hits never take the lock, the lock is reentrant along a single
// resolution chain, and failed constructions are not cached, so a later
// call retries.
type LazyRegistry struct {
	mu      sync.Mutex
	values  sync.Map // key -> *cached
	wrapped sync.Map // key -> Provider
}

func NewLazyRegistry() *LazyRegistry {
	return &LazyRegistry{}
}

// Wrap returns the caching provider for key. Wrapping the same key twice
// returns the provider created first, so re-wrapping is a no-op rather
// than a second caching layer.
func (r *LazyRegistry) Wrap(key string, provider Provider) Provider {
	if w, ok := r.wrapped.Load(key); ok {
		return w.(Provider)
	}

	w := Provider(func(ctx context.Context) (any, error) {
		if e, ok := r.values.Load(key); ok {
			return e.(*cached).value, nil
		}

		// The lock is reentrant along one resolution chain: a provider
		// resolving another binding in this registry runs under the lock
		// its chain already holds and must not re-acquire it.
		if !lockHeld(ctx, &r.mu) {
			r.mu.Lock()
			defer r.mu.Unlock()
			ctx = withLock(ctx, &r.mu)
		}

		if e, ok := r.values.Load(key); ok {
			return e.(*cached).value, nil
		}

		value, err := provider(ctx)
		if err != nil {
			return nil, err
		}

		r.values.Store(key, &cached{value: value})
		return value, nil
	})

	actual, _ := r.wrapped.LoadOrStore(key, w)
	return actual.(Provider)
}

// Cached reports whether key has a constructed value.
func (r *LazyRegistry) Cached(key string) bool {
	_, ok := r.values.Load(key)
	return ok
}

// FineGrainedRegistry implements the same compute-once contract as
// LazyRegistry, but with one lock per binding key so unrelated keys
// construct concurrently. Lock allocation on first use is atomic: two
// racing callers always end up serialized on the same mutex.
type FineGrainedRegistry struct {
	locks   sync.Map // key -> *sync.Mutex
	values  sync.Map // key -> *cached
	wrapped sync.Map // key -> Provider
}

func NewFineGrainedRegistry() *FineGrainedRegistry {
	return &FineGrainedRegistry{}
}

func (r *FineGrainedRegistry) Wrap(key string, provider Provider) Provider {
	if w, ok := r.wrapped.Load(key); ok {
		return w.(Provider)
	}

	w := Provider(func(ctx context.Context) (any, error) {
		if e, ok := r.values.Load(key); ok {
			return e.(*cached).value, nil
		}

		lock, _ := r.locks.LoadOrStore(key, &sync.Mutex{})
		mu := lock.(*sync.Mutex)

		// Reentrant along one resolution chain, like the coarse lock.
		if !lockHeld(ctx, mu) {
			mu.Lock()
			defer mu.Unlock()
			ctx = withLock(ctx, mu)
		}

		if e, ok := r.values.Load(key); ok {
			return e.(*cached).value, nil
		}

		value, err := provider(ctx)
		if err != nil {
			return nil, err
		}

		r.values.Store(key, &cached{value: value})
		return value, nil
	})

	actual, _ := r.wrapped.LoadOrStore(key, w)
	return actual.(Provider)
}

func (r *FineGrainedRegistry) Cached(key string) bool {
	_, ok := r.values.Load(key)
	return ok
}

var (
	processLazy = NewLazyRegistry()
	processFine = NewFineGrainedRegistry()
)

// Lazy returns the process-wide lazy-singleton registry shared by every
// graph that does not supply its own.
func Lazy() *LazyRegistry {
	return processLazy
}

// FineGrained returns the process-wide fine-grained registry.
func FineGrained() *FineGrainedRegistry {
	return processFine
}

package inject

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/psobolev/girder/internal/order"
	"github.com/psobolev/girder/internal/scope"
)

// ProviderFunc is a deferred computation yielding one instance for a
// binding key. Providers resolve their own dependencies through the
// Resolver they are given.
type ProviderFunc func(ctx context.Context, r Resolver) (any, error)

type Resolver interface {
	Resolve(ctx context.Context, key string) (any, error)
	Has(key string) bool
}

// Listener observes every instance this container constructs. Aliased
// bindings do not fire: their construction belongs to the source
// container.
type Listener func(key string, instance any)

type binding struct {
	key          string
	provider     ProviderFunc
	kind         scope.Kind
	raw          reflect.Type
	dependencies []string
	alias        bool
}

// Info is a read-only snapshot of one binding.
type Info struct {
	Key          string
	Scope        scope.Kind
	Raw          reflect.Type
	Dependencies []string
	Alias        bool
}

// Container is the binding engine: a registry of (key, provider, scope)
// triples able to produce instances on demand. At most one binding may
// exist per key.
type Container struct {
	mu       sync.RWMutex
	bindings map[string]*binding
	keys     []string
	deps     *order.Graph
	logger   *slog.Logger

	singletons *scope.LazyRegistry
	lazy       *scope.LazyRegistry
	fine       *scope.FineGrainedRegistry

	listenerMu sync.RWMutex
	listeners  []Listener
}

type Config struct {
	Logger *slog.Logger

	// Lazy and FineGrained are the custom scope registries this container
	// delegates to. They are shared process-wide by convention; tests may
	// pass isolated registries.
	Lazy        *scope.LazyRegistry
	FineGrained *scope.FineGrainedRegistry
}

func New(cfg *Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	lazy := cfg.Lazy
	if lazy == nil {
		lazy = scope.Lazy()
	}

	fine := cfg.FineGrained
	if fine == nil {
		fine = scope.FineGrained()
	}

	return &Container{
		bindings:   make(map[string]*binding),
		deps:       order.New(),
		logger:     logger,
		singletons: scope.NewLazyRegistry(),
		lazy:       lazy,
		fine:       fine,
	}
}

// Options carries the per-binding registration metadata.
type Options struct {
	Scope        scope.Kind
	Raw          reflect.Type
	Dependencies []string
}

func (c *Container) Register(key string, provider ProviderFunc, opts Options) error {
	return c.register(key, provider, opts, false)
}

// RegisterValue binds an already constructed instance. Values count as
// constructed, so listeners never fire for them.
func (c *Container) RegisterValue(key string, value any, raw reflect.Type) error {
	provider := func(ctx context.Context, r Resolver) (any, error) {
		return value, nil
	}
	return c.register(key, provider, Options{Scope: scope.Singleton, Raw: raw}, true)
}

// RegisterAlias re-declares a key owned by another container. Resolution
// delegates to the source's live binding, so scope semantics and cached
// instances carry over instead of being rebuilt.
func (c *Container) RegisterAlias(key string, raw reflect.Type, source Resolver) error {
	provider := func(ctx context.Context, r Resolver) (any, error) {
		return source.Resolve(ctx, key)
	}
	return c.register(key, provider, Options{Scope: scope.Unscoped, Raw: raw}, true)
}

func (c *Container) register(key string, provider ProviderFunc, opts Options, alias bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.bindings[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, key)
	}

	c.bindings[key] = &binding{
		key:          key,
		provider:     provider,
		kind:         opts.Scope,
		raw:          opts.Raw,
		dependencies: opts.Dependencies,
		alias:        alias,
	}
	c.keys = append(c.keys, key)
	c.deps.Add(key, opts.Dependencies)

	if len(opts.Dependencies) > 0 && c.deps.HasCycle() {
		path := c.deps.CyclePath(key)
		delete(c.bindings, key)
		c.keys = c.keys[:len(c.keys)-1]
		c.deps.Remove(key)
		return fmt.Errorf("%w: %v", ErrCycle, path)
	}

	return nil
}

// Replace swaps the binding for key, keeping its position in the
// registration order. Replacing an absent key is an error.
func (c *Container) Replace(key string, provider ProviderFunc, opts Options) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.bindings[key]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	c.bindings[key] = &binding{
		key:          key,
		provider:     provider,
		kind:         opts.Scope,
		raw:          opts.Raw,
		dependencies: opts.Dependencies,
	}
	c.deps.Add(key, opts.Dependencies)

	if len(opts.Dependencies) > 0 && c.deps.HasCycle() {
		path := c.deps.CyclePath(key)
		return fmt.Errorf("%w: %v", ErrCycle, path)
	}

	return nil
}

func (c *Container) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.bindings[key]
	return ok
}

// Keys returns every binding key in registration order.
func (c *Container) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return keys
}

func (c *Container) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.keys)
}

// Bindings returns snapshots of every binding in registration order.
func (c *Container) Bindings() []Info {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]Info, 0, len(c.keys))
	for _, key := range c.keys {
		infos = append(infos, c.infoLocked(key))
	}
	return infos
}

func (c *Container) Binding(key string) (Info, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.bindings[key]; !ok {
		return Info{}, false
	}
	return c.infoLocked(key), true
}

func (c *Container) infoLocked(key string) Info {
	b := c.bindings[key]
	deps := make([]string, len(b.dependencies))
	copy(deps, b.dependencies)
	return Info{
		Key:          key,
		Scope:        b.kind,
		Raw:          b.raw,
		Dependencies: deps,
		Alias:        b.alias,
	}
}

// Constructed reports whether a cached instance exists for key in any of
// the caching scopes. Unscoped and aliased bindings always report false.
func (c *Container) Constructed(key string) bool {
	return c.singletons.Cached(key) || c.lazy.Cached(key) || c.fine.Cached(key)
}

// Validate checks the declared dependency edges for missing bindings and
// cycles without constructing anything.
func (c *Container) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if missing := c.deps.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: missing dependencies %v", ErrNotFound, missing)
	}

	if c.deps.HasCycle() {
		for _, key := range c.keys {
			if path := c.deps.CyclePath(key); path != nil {
				return fmt.Errorf("%w: %v", ErrCycle, path)
			}
		}
		return ErrCycle
	}

	return nil
}

func (c *Container) AddListener(l Listener) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()

	c.listeners = append(c.listeners, l)
}

func (c *Container) notify(key string, instance any) {
	c.listenerMu.RLock()
	listeners := c.listeners
	c.listenerMu.RUnlock()

	for _, l := range listeners {
		l(key, instance)
	}
}

// Dependencies returns the declared dependencies of key.
func (c *Container) Dependencies(key string) []string {
	return c.deps.Dependencies(key)
}

// Dependents returns the keys that declared key as a dependency.
func (c *Container) Dependents(key string) []string {
	return c.deps.Dependents(key)
}

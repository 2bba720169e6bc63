package inject

import (
	"context"
	"errors"
	"fmt"

	"github.com/psobolev/girder/internal/scope"
)

var (
	ErrNotFound  = errors.New("no binding for key")
	ErrDuplicate = errors.New("binding already declared")
	ErrCycle     = errors.New("circular dependency")
)

type pathKey struct{}

// pathEntry scopes a visited key to the container that resolved it, so
// an aliased binding delegating the same key to its source container is
// not mistaken for a cycle.
type pathEntry struct {
	c   *Container
	key string
}

// resolutionPath is carried on the context so recursive resolution can
// detect cycles without tripping over concurrent resolves of the same
// key from other goroutines.
func resolutionPath(ctx context.Context) []pathEntry {
	path, _ := ctx.Value(pathKey{}).([]pathEntry)
	return path
}

func withPathEntry(ctx context.Context, c *Container, key string) context.Context {
	path := resolutionPath(ctx)
	next := make([]pathEntry, len(path), len(path)+1)
	copy(next, path)
	return context.WithValue(ctx, pathKey{}, append(next, pathEntry{c: c, key: key}))
}

func pathKeys(path []pathEntry, key string) []string {
	keys := make([]string, 0, len(path)+1)
	for _, e := range path {
		keys = append(keys, e.key)
	}
	return append(keys, key)
}

func (c *Container) Resolve(ctx context.Context, key string) (any, error) {
	for _, seen := range resolutionPath(ctx) {
		if seen.c == c && seen.key == key {
			return nil, fmt.Errorf("%w: %v", ErrCycle, pathKeys(resolutionPath(ctx), key))
		}
	}

	c.mu.RLock()
	b, ok := c.bindings[key]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	ctx = withPathEntry(ctx, c, key)

	switch b.kind {
	case scope.LazySingleton:
		return c.lazy.Wrap(key, c.construction(key, b))(ctx)
	case scope.FineGrainedLazySingleton:
		return c.fine.Wrap(key, c.construction(key, b))(ctx)
	case scope.Singleton:
		return c.singletons.Wrap(key, c.construction(key, b))(ctx)
	default:
		return c.construction(key, b)(ctx)
	}
}

// construction returns the unscoped provisioning step for a binding:
// resolve declared dependencies, invoke the provider, fire listeners.
// Scoped resolution wraps this with the matching registry so each cached
// instance is constructed and observed exactly once.
func (c *Container) construction(key string, b *binding) scope.Provider {
	return func(ctx context.Context) (any, error) {
		for _, dep := range b.dependencies {
			if _, err := c.Resolve(ctx, dep); err != nil {
				return nil, fmt.Errorf("resolving dependency %s of %s: %w", dep, key, err)
			}
		}

		instance, err := b.provider(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("provider for %s: %w", key, err)
		}

		if !b.alias {
			c.logger.Debug("constructed instance", "key", key, "scope", b.kind.String())
			c.notify(key, instance)
		}

		return instance, nil
	}
}

// ConstructEager provisions every singleton-scoped binding, dependencies
// first. Lazy and fine-grained bindings stay lazy.
func (c *Container) ConstructEager(ctx context.Context) error {
	sorted, err := c.deps.Topological()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCycle, err)
	}

	position := make(map[string]int, len(sorted))
	for i, key := range sorted {
		position[key] = i
	}

	// Registration order, refined so declared dependencies come first.
	keys := c.Keys()
	eager := make([]string, 0, len(keys))
	for _, key := range keys {
		if b, ok := c.Binding(key); ok && b.Scope == scope.Singleton {
			eager = append(eager, key)
		}
	}
	for i := 1; i < len(eager); i++ {
		for j := i; j > 0 && position[eager[j]] < position[eager[j-1]]; j-- {
			eager[j], eager[j-1] = eager[j-1], eager[j]
		}
	}

	for _, key := range eager {
		if _, err := c.Resolve(ctx, key); err != nil {
			return err
		}
	}

	return nil
}

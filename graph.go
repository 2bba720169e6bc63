package girder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/psobolev/girder/internal/inject"
	"github.com/psobolev/girder/internal/reflect"
	"github.com/psobolev/girder/internal/scope"
)

// Graph is the handle to a fully resolved set of bindings, able to
// produce instances on demand. The final graph returned by Bootstrap is
// the only graph application code should use.
type Graph struct {
	c      *inject.Container
	logger *slog.Logger
	lazy   *scope.LazyRegistry
	fine   *scope.FineGrainedRegistry
}

func newGraph(c *inject.Container, logger *slog.Logger, lazy *scope.LazyRegistry, fine *scope.FineGrainedRegistry) *Graph {
	return &Graph{c: c, logger: logger, lazy: lazy, fine: fine}
}

// GetInstance resolves a binding key. Prefer the generic Instance
// helpers, which derive the key from the requested type.
func (g *Graph) GetInstance(ctx context.Context, key string) (any, error) {
	instance, err := g.c.Resolve(ctx, key)
	if err != nil {
		return nil, mapResolveErr(key, err)
	}
	return instance, nil
}

func (g *Graph) Has(key string) bool {
	return g.c.Has(key)
}

// Keys returns every binding key in declaration order.
func (g *Graph) Keys() []string {
	return g.c.Keys()
}

func (g *Graph) Size() int {
	return g.c.Size()
}

// CreateChildGraph builds a graph that aliases every binding of g and
// adds the given modules.
//
// Deprecated: kept for compatibility with the pre-two-phase API. The
// final graph already contains every module contribution; new code
// should not need children.
func (g *Graph) CreateChildGraph(modules ...Module) (*Graph, error) {
	child := inject.New(&inject.Config{
		Logger:      g.logger,
		Lazy:        g.lazy,
		FineGrained: g.fine,
	})

	for _, info := range g.c.Bindings() {
		if err := child.RegisterAlias(info.Key, info.Raw, g.c); err != nil {
			return nil, errDuplicateBinding(info.Key, err)
		}
	}

	for _, m := range modules {
		if err := installModule(child, m); err != nil {
			return nil, err
		}
	}

	if err := child.Validate(); err != nil {
		return nil, validationError(err)
	}

	return newGraph(child, g.logger, g.lazy, g.fine), nil
}

// Instance resolves the binding for T.
func Instance[T any](g *Graph) (T, error) {
	return InstanceCtx[T](context.Background(), g)
}

func InstanceCtx[T any](ctx context.Context, g *Graph) (T, error) {
	return instanceForKey[T](ctx, g, reflect.TypeKey[T]())
}

// InstanceNamed resolves the name-qualified binding for T.
func InstanceNamed[T any](g *Graph, name string) (T, error) {
	return InstanceNamedCtx[T](context.Background(), g, name)
}

func InstanceNamedCtx[T any](ctx context.Context, g *Graph, name string) (T, error) {
	return instanceForKey[T](ctx, g, reflect.TypeKeyNamed[T](name))
}

func instanceForKey[T any](ctx context.Context, g *Graph, key string) (T, error) {
	var zero T

	instance, err := g.c.Resolve(ctx, key)
	if err != nil {
		return zero, mapResolveErr(key, err)
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, errProvisionFailed(key,
			fmt.Errorf("bound instance %T does not satisfy %s", instance, reflect.TypeName[T]()))
	}

	return typed, nil
}

// MustInstance resolves the binding for T and panics on failure.
func MustInstance[T any](g *Graph) T {
	v, err := Instance[T](g)
	if err != nil {
		panic(err)
	}
	return v
}

func MustInstanceCtx[T any](ctx context.Context, g *Graph) T {
	v, err := InstanceCtx[T](ctx, g)
	if err != nil {
		panic(err)
	}
	return v
}

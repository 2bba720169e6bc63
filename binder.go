package girder

import (
	"context"
	"errors"
	stdreflect "reflect"

	"github.com/psobolev/girder/internal/inject"
	"github.com/psobolev/girder/internal/reflect"
	"github.com/psobolev/girder/internal/scope"
)

// ScopeKind selects the object-lifetime policy for a binding.
type ScopeKind = scope.Kind

const (
	// Unscoped invokes the provider on every resolution.
	Unscoped = scope.Unscoped
	// Singleton caches per graph and is constructed eagerly under
	// StageProduction.
	Singleton = scope.Singleton
	// LazySingleton computes once under the registry-wide lock and caches
	// forever.
	LazySingleton = scope.LazySingleton
	// FineGrainedLazySingleton computes once per key under a per-key lock.
	FineGrainedLazySingleton = scope.FineGrainedLazySingleton
)

// Provider is a deferred computation yielding an instance of T.
type Provider[T any] func(ctx context.Context, r Resolver) (T, error)

// Resolver resolves binding keys against the graph that is constructing
// the current instance.
type Resolver interface {
	Resolve(ctx context.Context, key string) (any, error)
	Has(key string) bool
}

// Key returns the binding key used for T, optionally qualified by name.
func Key[T any](name ...string) string {
	if len(name) > 0 && name[0] != "" {
		return reflect.TypeKeyNamed[T](name[0])
	}
	return reflect.TypeKey[T]()
}

type BindOption func(*bindConfig)

type bindConfig struct {
	name         string
	kind         scope.Kind
	dependencies []string
}

func WithName(name string) BindOption {
	return func(cfg *bindConfig) {
		cfg.name = name
	}
}

func InScope(kind ScopeKind) BindOption {
	return func(cfg *bindConfig) {
		cfg.kind = kind
	}
}

// WithBindingDependencies declares the keys a provider will resolve, so
// cycles and missing bindings are caught at registration and validation
// instead of first use.
func WithBindingDependencies(keys ...string) BindOption {
	return func(cfg *bindConfig) {
		cfg.dependencies = keys
	}
}

// Binder is the registration surface handed to modules. It scopes what a
// module can do to declaring bindings on the graph being built.
type Binder struct {
	c *inject.Container
}

func (b *Binder) Has(key string) bool {
	return b.c.Has(key)
}

func mapRegisterErr(key string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, inject.ErrDuplicate):
		return errDuplicateBinding(key, err)
	case errors.Is(err, inject.ErrCycle):
		return errCircularDependency(key, err)
	case errors.Is(err, inject.ErrNotFound):
		return errMissingBinding(key, err)
	default:
		return errProvisionFailed(key, err)
	}
}

// BindProvider declares a provider binding for T. The default scope is
// Singleton, matching the graph-wide at-most-one-instance expectation.
func BindProvider[T any](b *Binder, provider Provider[T], opts ...BindOption) error {
	cfg := &bindConfig{kind: scope.Singleton}
	for _, opt := range opts {
		opt(cfg)
	}

	key := reflect.TypeKey[T]()
	if cfg.name != "" {
		key = reflect.TypeKeyNamed[T](cfg.name)
	}

	wrapped := func(ctx context.Context, r inject.Resolver) (any, error) {
		return provider(ctx, r)
	}

	err := b.c.Register(key, wrapped, inject.Options{
		Scope:        cfg.kind,
		Raw:          reflect.RawType[T](),
		Dependencies: cfg.dependencies,
	})
	return mapRegisterErr(key, err)
}

// BindValue declares an already constructed instance for T.
func BindValue[T any](b *Binder, value T, opts ...BindOption) error {
	cfg := &bindConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	key := reflect.TypeKey[T]()
	if cfg.name != "" {
		key = reflect.TypeKeyNamed[T](cfg.name)
	}

	return mapRegisterErr(key, b.c.RegisterValue(key, value, reflect.RawType[T]()))
}

// BindType declares interface I as satisfied by the binding for T.
// Resolution delegates to T's binding, so both keys share one instance
// under the caching scopes.
func BindType[I, T any](b *Binder, opts ...BindOption) error {
	cfg := &bindConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	interfaceKey := reflect.TypeKey[I]()
	if cfg.name != "" {
		interfaceKey = reflect.TypeKeyNamed[I](cfg.name)
	}
	implKey := reflect.TypeKey[T]()

	wrapped := func(ctx context.Context, r inject.Resolver) (any, error) {
		return r.Resolve(ctx, implKey)
	}

	err := b.c.Register(interfaceKey, wrapped, inject.Options{
		Scope:        scope.Unscoped,
		Raw:          reflect.RawType[I](),
		Dependencies: []string{implKey},
	})
	return mapRegisterErr(interfaceKey, err)
}

// keyOf returns the binding key for a runtime value.
func keyOf(value any) string {
	return reflect.TypeKeyOf(value)
}

// bindValueOf registers a value under the key derived from its runtime
// type. Used where the type is only known at runtime (marker values).
func bindValueOf(b *Binder, value any) error {
	key := reflect.TypeKeyOf(value)
	return mapRegisterErr(key, b.c.RegisterValue(key, value, stdreflect.TypeOf(value)))
}

// bindRuntimeProvider registers a provider under an explicit key, for
// bindings whose type is only described by a scanned type descriptor.
func bindRuntimeProvider(b *Binder, key string, raw stdreflect.Type, kind scope.Kind, provider Provider[any], deps ...string) error {
	wrapped := func(ctx context.Context, r inject.Resolver) (any, error) {
		return provider(ctx, r)
	}

	err := b.c.Register(key, wrapped, inject.Options{
		Scope:        kind,
		Raw:          raw,
		Dependencies: deps,
	})
	return mapRegisterErr(key, err)
}

// ReplaceProvider overrides an existing binding for T. Replacing an
// absent binding is an error: overrides must be deliberate.
func ReplaceProvider[T any](b *Binder, provider Provider[T], opts ...BindOption) error {
	cfg := &bindConfig{kind: scope.Singleton}
	for _, opt := range opts {
		opt(cfg)
	}

	key := reflect.TypeKey[T]()
	if cfg.name != "" {
		key = reflect.TypeKeyNamed[T](cfg.name)
	}

	wrapped := func(ctx context.Context, r inject.Resolver) (any, error) {
		return provider(ctx, r)
	}

	err := b.c.Replace(key, wrapped, inject.Options{
		Scope:        cfg.kind,
		Raw:          reflect.RawType[T](),
		Dependencies: cfg.dependencies,
	})
	return mapRegisterErr(key, err)
}

// ReplaceValue overrides an existing binding for T with a fixed value.
func ReplaceValue[T any](b *Binder, value T, opts ...BindOption) error {
	cfg := &bindConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	key := reflect.TypeKey[T]()
	if cfg.name != "" {
		key = reflect.TypeKeyNamed[T](cfg.name)
	}

	wrapped := func(ctx context.Context, r inject.Resolver) (any, error) {
		return value, nil
	}

	err := b.c.Replace(key, wrapped, inject.Options{
		Scope: scope.Singleton,
		Raw:   reflect.RawType[T](),
	})
	return mapRegisterErr(key, err)
}

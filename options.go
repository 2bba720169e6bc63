package girder

import (
	"log/slog"
	stdreflect "reflect"

	"github.com/psobolev/girder/internal/scope"
)

// Option configures the Builder before the two-phase build starts.
// Options apply in order; Suites run after all options.
type Option func(*Builder)

func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.SetLogger(logger)
	}
}

func WithStage(stage Stage) Option {
	return func(b *Builder) {
		b.SetStage(stage)
	}
}

// WithBasePackages sets the package roots handed to the scanner.
func WithBasePackages(pkgs ...string) Option {
	return func(b *Builder) {
		b.AddBasePackages(pkgs...)
	}
}

// WithBootstrapModules appends bootstrap modules. They install after any
// marker-derived bootstrap modules, in the given order.
func WithBootstrapModules(modules ...BootstrapModule) Option {
	return func(b *Builder) {
		b.AddBootstrapModules(modules...)
	}
}

// WithModules appends module instances to the final graph's module list.
func WithModules(modules ...Module) Option {
	return func(b *Builder) {
		b.AddModules(modules...)
	}
}

// WithModuleCtors appends deferred modules, materialized against the
// bootstrap graph.
func WithModuleCtors(ctors ...ModuleCtor) Option {
	return func(b *Builder) {
		b.AddModuleCtors(ctors...)
	}
}

// WithModuleTransformers appends transformers applied to the collected
// module list, in order.
func WithModuleTransformers(transformers ...ModuleTransformer) Option {
	return func(b *Builder) {
		b.AddModuleTransformers(transformers...)
	}
}

// WithPostBuildActions appends actions invoked against the final graph.
func WithPostBuildActions(actions ...PostBuildAction) Option {
	return func(b *Builder) {
		b.AddPostBuildActions(actions...)
	}
}

// WithIgnoreKeys excludes binding keys from auto-binding.
func WithIgnoreKeys(keys ...string) Option {
	return func(b *Builder) {
		b.IgnoreKeys(keys...)
	}
}

// WithDisableAutoBind turns scanning off entirely.
func WithDisableAutoBind() Option {
	return func(b *Builder) {
		b.SetDisableAutoBind(true)
	}
}

// WithScanner overrides the scanner used for discovery.
func WithScanner(scanner Scanner) Option {
	return func(b *Builder) {
		b.SetScanner(scanner)
	}
}

// WithLifecycleManager overrides the lifecycle manager bound into both
// graphs.
func WithLifecycleManager(manager LifecycleManager) Option {
	return func(b *Builder) {
		b.SetLifecycleManager(manager)
	}
}

// WithReplayExclusions replaces the replay exclusion set. See
// DefaultReplayExclusions for the default.
func WithReplayExclusions(types ...stdreflect.Type) Option {
	return func(b *Builder) {
		b.SetReplayExclusions(types...)
	}
}

// WithScopeRegistries substitutes the process-wide scope registries.
// Intended for tests needing isolated lazy-singleton caches.
func WithScopeRegistries(lazy *scope.LazyRegistry, fine *scope.FineGrainedRegistry) Option {
	return func(b *Builder) {
		if lazy != nil {
			b.lazy = lazy
		}
		if fine != nil {
			b.fine = fine
		}
	}
}

// WithProvisionObserver registers a callback observing every instance the
// final graph constructs.
func WithProvisionObserver(observer ProvisionObserver) Option {
	return func(b *Builder) {
		b.observers = append(b.observers, observer)
	}
}

// NewLazyRegistry and NewFineGrainedRegistry re-export isolated registry
// construction for callers that pass WithScopeRegistries.
func NewLazyRegistry() *scope.LazyRegistry {
	return scope.NewLazyRegistry()
}

func NewFineGrainedRegistry() *scope.FineGrainedRegistry {
	return scope.NewFineGrainedRegistry()
}

package girder

import (
	"log/slog"
	stdreflect "reflect"

	"github.com/psobolev/girder/internal/scope"
)

// Stage controls how the final graph is constructed.
type Stage int

const (
	// StageDevelopment validates the graph and defers construction to
	// first use.
	StageDevelopment Stage = iota

	// StageProduction validates and then eagerly constructs every
	// singleton binding.
	StageProduction
)

func (s Stage) String() string {
	switch s {
	case StageDevelopment:
		return "development"
	case StageProduction:
		return "production"
	default:
		return "unknown"
	}
}

// ProvisionObserver is notified for every instance the final graph
// constructs, after the lifecycle manager.
type ProvisionObserver func(key string, instance any)

// Builder accumulates build configuration. It is created from functional
// options and handed to Suites, which may mutate any of it before the
// module contributions are finalized.
type Builder struct {
	logger           *slog.Logger
	stage            Stage
	basePackages     []string
	bootstrapModules []BootstrapModule
	modules          []Module
	moduleCtors      []ModuleCtor
	transformers     []ModuleTransformer
	actions          []PostBuildAction
	ignore           map[string]struct{}
	disableAutoBind  bool
	scanner          Scanner
	manager          LifecycleManager
	exclusions       []stdreflect.Type
	lazy             *scope.LazyRegistry
	fine             *scope.FineGrainedRegistry
	observers        []ProvisionObserver

	// err holds the first option failure (settings file parse errors);
	// surfaced when the build starts.
	err error
}

func newBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger:     slog.Default(),
		stage:      StageDevelopment,
		ignore:     make(map[string]struct{}),
		exclusions: DefaultReplayExclusions(),
		lazy:       scope.Lazy(),
		fine:       scope.FineGrained(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

func (b *Builder) Logger() *slog.Logger {
	return b.logger
}

func (b *Builder) Stage() Stage {
	return b.stage
}

func (b *Builder) SetStage(stage Stage) {
	b.stage = stage
}

func (b *Builder) SetLogger(logger *slog.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

func (b *Builder) AddBasePackages(pkgs ...string) {
	b.basePackages = append(b.basePackages, pkgs...)
}

func (b *Builder) AddBootstrapModules(modules ...BootstrapModule) {
	b.bootstrapModules = append(b.bootstrapModules, modules...)
}

func (b *Builder) AddModules(modules ...Module) {
	b.modules = append(b.modules, modules...)
}

func (b *Builder) AddModuleCtors(ctors ...ModuleCtor) {
	b.moduleCtors = append(b.moduleCtors, ctors...)
}

func (b *Builder) AddModuleTransformers(transformers ...ModuleTransformer) {
	b.transformers = append(b.transformers, transformers...)
}

func (b *Builder) AddPostBuildActions(actions ...PostBuildAction) {
	b.actions = append(b.actions, actions...)
}

// IgnoreKeys excludes binding keys from auto-binding entirely: ignored
// types are neither bound nor collected.
func (b *Builder) IgnoreKeys(keys ...string) {
	for _, key := range keys {
		b.ignore[key] = struct{}{}
	}
}

func (b *Builder) SetDisableAutoBind(disable bool) {
	b.disableAutoBind = disable
}

func (b *Builder) SetScanner(scanner Scanner) {
	b.scanner = scanner
}

func (b *Builder) SetLifecycleManager(manager LifecycleManager) {
	b.manager = manager
}

// SetReplayExclusions replaces the binding replay exclusion set. The set
// is load-bearing for correctness: anything excluded here is dropped when
// bootstrap bindings are re-declared in the final graph.
func (b *Builder) SetReplayExclusions(types ...stdreflect.Type) {
	b.exclusions = types
}

// effectiveScanner picks the scanner for this build: an explicit override
// wins, auto-bind disabled means the empty scanner, otherwise the
// process-wide registry scanner.
func (b *Builder) effectiveScanner() Scanner {
	if b.scanner != nil {
		return b.scanner
	}
	if b.disableAutoBind {
		return EmptyScanner{}
	}
	return StandardScanner()
}

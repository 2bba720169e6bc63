package girder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/psobolev/girder/internal/inject"
)

type buildState int

const (
	stateUnconfigured buildState = iota
	stateMarkersResolved
	stateBootstrapGraphBuilt
	stateModulesCollected
	stateFinalGraphBuilt
	stateActionsRun
)

func (s buildState) String() string {
	switch s {
	case stateUnconfigured:
		return "unconfigured"
	case stateMarkersResolved:
		return "markers-resolved"
	case stateBootstrapGraphBuilt:
		return "bootstrap-graph-built"
	case stateModulesCollected:
		return "modules-collected"
	case stateFinalGraphBuilt:
		return "final-graph-built"
	case stateActionsRun:
		return "actions-run"
	default:
		return "unknown"
	}
}

// Injector owns the result of a completed two-phase build: the final
// graph, the lifecycle manager and the scanner that fed discovery. The
// bootstrap graph is internal and discarded once the build finishes.
type Injector struct {
	graph   *Graph
	manager LifecycleManager
	scanner Scanner
	logger  *slog.Logger
	state   buildState
}

func (i *Injector) advance(from, to buildState) error {
	if i.state != from {
		return errStateInvalid(fmt.Sprintf("build is %s, expected %s", i.state, from))
	}
	i.state = to
	return nil
}

// Bootstrap runs the whole two-phase build for an entry point: resolve
// its markers, run the auto-bind scan, build the bootstrap graph,
// materialize the module list, replay into the final graph and run the
// post-build actions. The entry point may be nil when everything is
// supplied through options.
func Bootstrap(entry any, opts ...Option) (*Injector, error) {
	return BootstrapCtx(context.Background(), entry, opts...)
}

func BootstrapCtx(ctx context.Context, entry any, opts ...Option) (*Injector, error) {
	b := newBuilder(opts...)
	if b.err != nil {
		return nil, b.err
	}

	inj := &Injector{logger: b.logger, state: stateUnconfigured}

	// Phase 1: markers. Suites run first, with full builder access, so
	// their mutations are visible to every later step.
	findings, err := resolveMarkers(entry)
	if err != nil {
		return nil, err
	}
	for _, suite := range findings.suites {
		if err := suite(b); err != nil {
			return nil, errModuleFailed("suite", err)
		}
	}
	if err := inj.advance(stateUnconfigured, stateMarkersResolved); err != nil {
		return nil, err
	}

	// Auto-bind discovery runs before the bootstrap graph is built:
	// scanned configuration modules join the module list that feeds
	// graph construction.
	scanner := b.effectiveScanner()
	inj.scanner = scanner

	auto, err := collectAutoBind(scanner, b.basePackages, b.ignore, b.logger)
	if err != nil {
		return nil, err
	}

	manager := b.manager
	if manager == nil {
		manager = NewLifecycleManager(b.logger, nil)
	}
	inj.manager = manager
	resolver := NewLifecycleMethodsResolver()

	// Phase 2: the bootstrap graph. Marker-derived bootstrap modules
	// precede caller-supplied ones.
	bootstrapModules := make([]BootstrapModule, 0, len(findings.bootstrapModules)+len(b.bootstrapModules))
	bootstrapModules = append(bootstrapModules, findings.bootstrapModules...)
	bootstrapModules = append(bootstrapModules, b.bootstrapModules...)

	boot, err := buildBootstrapGraph(b, scanner, manager, resolver, bootstrapModules)
	if err != nil {
		return nil, err
	}
	if err := inj.advance(stateMarkersResolved, stateBootstrapGraphBuilt); err != nil {
		return nil, err
	}

	// Phase 3: the module list, materialized against the bootstrap graph.
	modules, err := buildModuleList(ctx, b, boot, findings.moduleCtors, auto.moduleCtors, entry)
	if err != nil {
		return nil, err
	}
	if err := inj.advance(stateBootstrapGraphBuilt, stateModulesCollected); err != nil {
		return nil, err
	}

	// Phase 4: replay into the final graph.
	final, err := buildFinalGraph(ctx, b, boot, manager, resolver, modules, auto.components)
	if err != nil {
		return nil, err
	}
	inj.graph = newGraph(final, b.logger, b.lazy, b.fine)
	if err := inj.advance(stateModulesCollected, stateFinalGraphBuilt); err != nil {
		return nil, err
	}

	// Phase 5: post-build actions.
	if err := runPostBuildActions(b.actions, inj.graph); err != nil {
		return nil, err
	}
	if err := inj.advance(stateFinalGraphBuilt, stateActionsRun); err != nil {
		return nil, err
	}

	b.logger.Info("object graph built",
		"bindings", final.Size(), "modules", len(modules), "stage", b.stage.String())

	return inj, nil
}

// Graph returns the final graph.
func (i *Injector) Graph() *Graph {
	return i.graph
}

// LifecycleManager returns the manager tracking the final graph's
// constructed instances. Application code drives Start, Validate and
// Stop on it after the build.
func (i *Injector) LifecycleManager() LifecycleManager {
	return i.manager
}

// Scanner returns the scanner used for discovery.
func (i *Injector) Scanner() Scanner {
	return i.scanner
}

// CreateChildGraph builds a child of the final graph.
//
// Deprecated: see Graph.CreateChildGraph.
func (i *Injector) CreateChildGraph(modules ...Module) (*Graph, error) {
	return i.graph.CreateChildGraph(modules...)
}

var _ Resolver = (*inject.Container)(nil)

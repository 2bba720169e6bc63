// Package girder builds application object graphs in two phases for Go 1.25+.
//
// Girder separates the machinery that configures a graph from the graph the
// application actually uses. A small bootstrap graph is built first, holding
// the scanner, the lifecycle manager and any bootstrap-module bindings; module
// constructors are materialized against it; then the final graph is built from
// the full module list, with the surviving bootstrap bindings replayed in.
// Application code only ever sees the final graph.
//
// # Quick Start
//
// Bootstrap an injector from modules:
//
//	inj, err := girder.Bootstrap(nil,
//	    girder.WithModules(girder.ModuleFunc(func(b *girder.Binder) error {
//	        return girder.BindProvider(b, func(ctx context.Context, r girder.Resolver) (*Server, error) {
//	            return &Server{}, nil
//	        })
//	    })),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv, err := girder.Instance[*Server](inj.Graph())
//
// # Modules
//
// Modules contribute bindings to the final graph through a Binder:
//
//	girder.BindProvider[T](b, provider)   // provider binding, Singleton by default
//	girder.BindValue[T](b, value)         // already constructed instance
//	girder.BindType[I, T](b)              // interface I served by T's binding
//	girder.ReplaceProvider[T](b, prov)    // deliberate override of an existing binding
//
// Bindings may be name-qualified with WithName and scoped with InScope.
//
// # Markers
//
// An entry point may declare markers, each carrying at most one role:
//
//	type App struct{}
//
//	func (App) Markers() []girder.Marker {
//	    return []girder.Marker{
//	        {Name: "suite", Suite: configureBuilder},
//	        {Name: "db", Value: &DBConfig{DSN: dsn}, Module: newDBModule},
//	    }
//	}
//
// Suites mutate the Builder before anything else runs. Bootstrap markers
// contribute bootstrap modules. Module markers contribute module ctors,
// materialized against the bootstrap graph. Every marker value becomes
// injectable by its type in the bootstrap graph, so module ctors can resolve
// the configuration their markers carry.
//
// # Auto-Binding
//
// Packages register discoverable types with the process-wide scanner,
// typically from init:
//
//	func init() {
//	    girder.RegisterScanned(girder.Component("example.com/app/cache", NewCache))
//	}
//
// Builds that list the package under WithBasePackages pick the component up as
// an implicit singleton. Explicit bindings always win over auto-bound ones,
// WithIgnoreKeys drops specific keys, and WithDisableAutoBind turns scanning
// off entirely.
//
// # Scopes
//
// Four lifetime policies are available:
//
//	girder.Unscoped                  // new instance per resolution
//	girder.Singleton                 // per graph, eager under StageProduction
//	girder.LazySingleton             // process-wide, one shared lock
//	girder.FineGrainedLazySingleton  // process-wide, one lock per key
//
// The lazy scopes cache in process-wide registries shared by every graph;
// tests pass WithScopeRegistries to isolate them.
//
// # Stages
//
// StageDevelopment (the default) validates the graph and constructs on first
// use. StageProduction validates and then eagerly constructs every singleton,
// so construction failures surface at build time:
//
//	inj, err := girder.Bootstrap(app, girder.WithStage(girder.StageProduction))
//
// # Lifecycle
//
// Instances implementing Starter, Stopper or Validator are tracked as the
// graph constructs them. The application drives the transitions:
//
//	manager := inj.LifecycleManager()
//	manager.Start(ctx)     // construction order, fail-fast
//	manager.Validate(ctx)  // all hooks, failures joined
//	manager.Stop(ctx)      // reverse order, failures joined
//
// # Introspection
//
// The final graph can describe and render itself:
//
//	inj.Graph().PrintBindings()       // ASCII to stdout
//	dot := inj.Graph().SprintDOT()    // Graphviz DOT
//	infos := inj.Graph().Describe()   // structured snapshots
package girder

package girder

import (
	"context"
	"fmt"

	"github.com/psobolev/girder/internal/inject"
)

// Module contributes bindings to the final graph. Modules are installed
// in a deterministic order; a later module may override an earlier
// binding explicitly via the Replace helpers.
type Module interface {
	Configure(b *Binder) error
}

// ModuleFunc adapts a plain function to Module.
type ModuleFunc func(b *Binder) error

func (f ModuleFunc) Configure(b *Binder) error {
	return f(b)
}

// BootstrapModule contributes bindings to the bootstrap graph only.
type BootstrapModule interface {
	ConfigureBootstrap(b *Binder) error
}

// BootstrapModuleFunc adapts a plain function to BootstrapModule.
type BootstrapModuleFunc func(b *Binder) error

func (f BootstrapModuleFunc) ConfigureBootstrap(b *Binder) error {
	return f(b)
}

// ModuleCtor is a deferred module: it is materialized against the
// bootstrap graph, so it can resolve bootstrap-provided dependencies,
// including marker values declared on the entry point.
type ModuleCtor func(ctx context.Context, r Resolver) (Module, error)

// Suite has full mutation access to the Builder and runs before any
// other module contribution is finalized.
type Suite func(b *Builder) error

// ModuleTransformer rewrites the ordered module list after collection
// and before the final graph is built. Transformers run in registration
// order, each seeing the previous transformer's output.
type ModuleTransformer func(modules []Module) ([]Module, error)

// PostBuildAction runs once against the final graph, after construction.
type PostBuildAction func(g *Graph) error

func moduleName(m any) string {
	type named interface{ Name() string }
	if n, ok := m.(named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", m)
}

func installModule(c *inject.Container, m Module) error {
	if err := m.Configure(&Binder{c: c}); err != nil {
		return errModuleFailed(moduleName(m), err)
	}
	return nil
}

func installBootstrapModule(c *inject.Container, m BootstrapModule) error {
	if err := m.ConfigureBootstrap(&Binder{c: c}); err != nil {
		return errModuleFailed(moduleName(m), err)
	}
	return nil
}

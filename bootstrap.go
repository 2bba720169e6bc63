package girder

import (
	"github.com/psobolev/girder/internal/inject"
)

// buildBootstrapGraph constructs the ephemeral first-phase graph: the
// scanner, the lifecycle manager and methods resolver, the stage, and
// every bootstrap module in order. It exists to run discovery and to
// materialize module ctors; it is never handed to application code.
func buildBootstrapGraph(
	b *Builder,
	scanner Scanner,
	manager LifecycleManager,
	resolver *LifecycleMethodsResolver,
	bootstrapModules []BootstrapModule,
) (*inject.Container, error) {
	c := inject.New(&inject.Config{
		Logger:      b.logger,
		Lazy:        b.lazy,
		FineGrained: b.fine,
	})

	binder := &Binder{c: c}

	if err := BindValue(binder, b.stage); err != nil {
		return nil, err
	}
	if err := BindValue(binder, b.logger); err != nil {
		return nil, err
	}
	if err := BindValue[Scanner](binder, scanner); err != nil {
		return nil, err
	}
	if err := BindValue[LifecycleManager](binder, manager); err != nil {
		return nil, err
	}
	if err := BindValue(binder, resolver); err != nil {
		return nil, err
	}

	for _, bm := range bootstrapModules {
		if err := installBootstrapModule(c, bm); err != nil {
			return nil, err
		}
	}

	return c, nil
}

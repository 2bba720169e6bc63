package girder

import (
	"context"
	"errors"
	"log"
	"log/slog"
	stdreflect "reflect"

	"github.com/psobolev/girder/internal/inject"
)

// DefaultReplayExclusions is the set of raw types whose bootstrap
// bindings are NOT replayed into the final graph: module types belong to
// the build machinery, graph handles and the stage would leak the wrong
// graph's identity, and loggers (both facade families) are re-bound by
// the final graph's own configuration.
//
// The set is load-bearing: removing an entry replays build machinery
// into the application graph, adding one silently drops application
// bindings. Override with WithReplayExclusions only deliberately.
func DefaultReplayExclusions() []stdreflect.Type {
	return []stdreflect.Type{
		stdreflect.TypeOf((*Module)(nil)).Elem(),
		stdreflect.TypeOf((*BootstrapModule)(nil)).Elem(),
		stdreflect.TypeOf((*Graph)(nil)),
		stdreflect.TypeOf(Stage(0)),
		stdreflect.TypeOf((*slog.Logger)(nil)),
		stdreflect.TypeOf((*log.Logger)(nil)),
	}
}

// replayExcluded reports whether a binding's raw type matches the
// exclusion set. Interface exclusions match implementations; concrete
// exclusions match assignable types. Bindings without raw type metadata
// are never excluded.
func replayExcluded(raw stdreflect.Type, exclusions []stdreflect.Type) bool {
	if raw == nil {
		return false
	}
	for _, ex := range exclusions {
		if ex == nil {
			continue
		}
		if ex.Kind() == stdreflect.Interface {
			if raw == ex || raw.Implements(ex) {
				return true
			}
			continue
		}
		if raw.AssignableTo(ex) {
			return true
		}
	}
	return false
}

// buildFinalGraph runs the second phase: install scopes, replay the
// bootstrap bindings minus the exclusion set, wire the lifecycle
// manager, install the module list and the auto-bind components, then
// construct under the requested stage. Everything was discovered in the
// earlier phases; nothing here re-scans or re-reads markers.
func buildFinalGraph(
	ctx context.Context,
	b *Builder,
	boot *inject.Container,
	manager LifecycleManager,
	resolver *LifecycleMethodsResolver,
	modules []Module,
	components []ScannedType,
) (*inject.Container, error) {
	// Step 1: the custom scopes are installed by construction; the final
	// container shares the same registry instances as the bootstrap one.
	final := inject.New(&inject.Config{
		Logger:      b.logger,
		Lazy:        b.lazy,
		FineGrained: b.fine,
	})

	// Step 2: replay. Aliasing, not instance copying: the final binding
	// delegates to the bootstrap graph's live binding, so cached
	// singletons are shared and still-lazy bindings stay lazy.
	for _, info := range boot.Bindings() {
		if replayExcluded(info.Raw, b.exclusions) {
			b.logger.Debug("binding excluded from replay", "key", info.Key)
			continue
		}
		if err := final.RegisterAlias(info.Key, info.Raw, boot); err != nil {
			return nil, errDuplicateBinding(info.Key, err)
		}
	}

	// Step 3: lifecycle wiring.
	installLifecycle(final, manager, resolver, b.observers)

	// Step 4: modules, in list order.
	for _, m := range modules {
		if err := installModule(final, m); err != nil {
			return nil, err
		}
	}

	// Step 5: auto-bind components; explicit bindings win.
	if err := installAutoBindings(final, components, b.ignore, b.logger); err != nil {
		return nil, err
	}

	// Step 6: construct under the stage.
	if err := final.Validate(); err != nil {
		return nil, validationError(err)
	}
	if b.stage == StageProduction {
		if err := final.ConstructEager(ctx); err != nil {
			return nil, validationError(err)
		}
	}

	return final, nil
}

// installLifecycle binds the bootstrap-owned lifecycle services into the
// final graph if replay did not already carry them over, and registers
// the provision listener that hands every constructed instance to the
// manager.
func installLifecycle(final *inject.Container, manager LifecycleManager, resolver *LifecycleMethodsResolver, observers []ProvisionObserver) {
	binder := &Binder{c: final}

	if !binder.Has(Key[LifecycleManager]()) {
		_ = BindValue[LifecycleManager](binder, manager)
	}
	if !binder.Has(Key[*LifecycleMethodsResolver]()) {
		_ = BindValue(binder, resolver)
	}

	final.AddListener(manager.Notify)
	for _, observer := range observers {
		final.AddListener(inject.Listener(observer))
	}
}

func validationError(err error) error {
	switch {
	case errors.Is(err, inject.ErrNotFound):
		return newError(ErrCodeMissingBinding, "graph validation failed", err)
	case errors.Is(err, inject.ErrCycle):
		return newError(ErrCodeCircularDependency, "graph validation failed", err)
	default:
		return newError(ErrCodeProvisionFailed, "graph construction failed", err)
	}
}

func mapResolveErr(key string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, inject.ErrNotFound):
		return errMissingBinding(key, err)
	case errors.Is(err, inject.ErrCycle):
		return errCircularDependency(key, err)
	default:
		return errProvisionFailed(key, err)
	}
}

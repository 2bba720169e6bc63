package girder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/psobolev/girder/internal/inject"
	"github.com/psobolev/girder/internal/scope"
)

type autoBindings struct {
	moduleCtors []ModuleCtor
	components  []ScannedType
}

// collectAutoBind runs the auto-bind scan before the bootstrap graph is
// built: discovered configuration modules must join the module list that
// feeds graph construction, while plain components are deferred to the
// final graph. A key discovered twice is an error, never a silent pick.
func collectAutoBind(scanner Scanner, basePackages []string, ignore map[string]struct{}, logger *slog.Logger) (*autoBindings, error) {
	scanned, err := scanner.Scan(basePackages, []string{AutoBindMarker})
	if err != nil {
		return nil, errAutoBindInvalid("scan", err.Error())
	}

	out := &autoBindings{}
	seen := make(map[string]struct{}, len(scanned))
	for _, s := range scanned {
		if _, skip := ignore[s.Key]; skip {
			continue
		}

		if _, dup := seen[s.Key]; dup {
			return nil, errDuplicateBinding(s.Key, errors.New("auto-discovered more than once"))
		}
		seen[s.Key] = struct{}{}

		if s.Module != nil {
			if s.Ctor != nil {
				return nil, errAutoBindInvalid(s.Key, "a configuration module cannot also be a component")
			}
			if s.BoundTo != "" || s.Base != "" || s.Multiple {
				return nil, errAutoBindInvalid(s.Key, "binding qualifiers cannot be set on a configuration module")
			}
			logger.Info("found auto-bind configuration module", "key", s.Key)
			out.moduleCtors = append(out.moduleCtors, s.Module)
			continue
		}

		if s.Ctor == nil {
			return nil, errAutoBindInvalid(s.Key, "scanned type has neither a component ctor nor a module")
		}

		logger.Info("found auto-bind component", "key", s.Key)
		out.components = append(out.components, s)
	}

	return out, nil
}

// installAutoBindings declares the scanned components as implicit
// singleton bindings in the final graph. Explicit bindings win: a key
// already present is skipped, and ignored keys are never bound.
func installAutoBindings(c *inject.Container, components []ScannedType, ignore map[string]struct{}, logger *slog.Logger) error {
	b := &Binder{c: c}

	for _, comp := range components {
		if _, skip := ignore[comp.Key]; skip {
			continue
		}

		if !c.Has(comp.Key) {
			if err := bindRuntimeProvider(b, comp.Key, comp.Raw, scope.Singleton, comp.Ctor); err != nil {
				return err
			}
		} else {
			logger.Debug("auto-bind skipped, explicit binding present", "key", comp.Key)
		}

		for _, target := range []string{comp.BoundTo, comp.Base} {
			if target == "" {
				continue
			}
			if err := installAutoBindTarget(b, c, comp, target); err != nil {
				return err
			}
		}
	}

	return nil
}

// installAutoBindTarget exposes a component under an additional key. With
// the multiple qualifier the target key is name-qualified by the
// component so several components can share one base type.
func installAutoBindTarget(b *Binder, c *inject.Container, comp ScannedType, target string) error {
	key := target
	if comp.Multiple {
		key = target + "#" + comp.Key
	} else if c.Has(key) {
		return nil
	}

	source := comp.Key
	provider := func(ctx context.Context, r Resolver) (any, error) {
		return r.Resolve(ctx, source)
	}
	return bindRuntimeProvider(b, key, comp.Raw, scope.Unscoped, provider, source)
}

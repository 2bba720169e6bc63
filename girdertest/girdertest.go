// Package girdertest provides helpers for testing code built on girder:
// isolated scope registries, a scripted scanner, and fail-fast wrappers
// around the bootstrap and resolution surfaces.
package girdertest

import (
	"context"

	"github.com/psobolev/girder"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

// TestInjector wraps an Injector with fail-fast accessors. Stop runs
// automatically on test cleanup.
type TestInjector struct {
	*girder.Injector
	tb TB
}

// Bootstrap builds an injector for a test. Isolated scope registries are
// installed before the caller's options, so lazy-singleton caches never
// leak between tests; a test can still override them explicitly.
func Bootstrap(tb TB, entry any, opts ...girder.Option) *TestInjector {
	tb.Helper()

	all := make([]girder.Option, 0, len(opts)+1)
	all = append(all, girder.WithScopeRegistries(girder.NewLazyRegistry(), girder.NewFineGrainedRegistry()))
	all = append(all, opts...)

	inj, err := girder.Bootstrap(entry, all...)
	if err != nil {
		tb.Fatalf("bootstrap failed: %v", err)
	}

	ti := &TestInjector{Injector: inj, tb: tb}
	tb.Cleanup(func() {
		_ = inj.LifecycleManager().Stop(context.Background())
	})

	return ti
}

func (ti *TestInjector) RequireStart(ctx context.Context) {
	ti.tb.Helper()

	if err := ti.LifecycleManager().Start(ctx); err != nil {
		ti.tb.Fatalf("failed to start managed instances: %v", err)
	}
}

func (ti *TestInjector) RequireStop(ctx context.Context) {
	ti.tb.Helper()

	if err := ti.LifecycleManager().Stop(ctx); err != nil {
		ti.tb.Fatalf("failed to stop managed instances: %v", err)
	}
}

func (ti *TestInjector) RequireValidate(ctx context.Context) {
	ti.tb.Helper()

	if err := ti.LifecycleManager().Validate(ctx); err != nil {
		ti.tb.Fatalf("validation failed: %v", err)
	}
}

func AssertHas[T any](ti *TestInjector) {
	ti.tb.Helper()

	if !ti.Graph().Has(girder.Key[T]()) {
		ti.tb.Fatalf("expected graph to have %s", girder.Key[T]())
	}
}

func AssertNotHas[T any](ti *TestInjector) {
	ti.tb.Helper()

	if ti.Graph().Has(girder.Key[T]()) {
		ti.tb.Fatalf("expected graph to not have %s", girder.Key[T]())
	}
}

func MustInstance[T any](ti *TestInjector) T {
	ti.tb.Helper()

	v, err := girder.Instance[T](ti.Graph())
	if err != nil {
		ti.tb.Fatalf("failed to resolve %s: %v", girder.Key[T](), err)
	}
	return v
}

func MustInstanceNamed[T any](ti *TestInjector, name string) T {
	ti.tb.Helper()

	v, err := girder.InstanceNamed[T](ti.Graph(), name)
	if err != nil {
		ti.tb.Fatalf("failed to resolve %s: %v", girder.Key[T](name), err)
	}
	return v
}

// Scanner is a scripted girder.Scanner for tests: it returns the given
// entries regardless of base packages and records every Scan call.
type Scanner struct {
	Entries []girder.ScannedType
	Calls   int
}

func NewScanner(entries ...girder.ScannedType) *Scanner {
	return &Scanner{Entries: entries}
}

func (s *Scanner) Scan(basePackages []string, markers []string) ([]girder.ScannedType, error) {
	s.Calls++
	return s.Entries, nil
}

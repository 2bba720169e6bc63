package girder

import (
	"context"
	"errors"
	"log/slog"
	stdreflect "reflect"
	"sync"
)

// Starter, Stopper and Validator are the lifecycle hooks the manager
// looks for on constructed instances.
type Starter interface {
	Start(ctx context.Context) error
}

type Stopper interface {
	Stop(ctx context.Context) error
}

type Validator interface {
	Validate(ctx context.Context) error
}

// LifecycleManager tracks the instances a graph constructs and drives
// their lifecycle transitions. The graph calls Notify; application code
// calls Start, Validate and Stop after the build, never the core.
type LifecycleManager interface {
	Notify(key string, instance any)
	Start(ctx context.Context) error
	Validate(ctx context.Context) error
	Stop(ctx context.Context) error
}

// LifecycleMethods records which hooks an instance's type exposes.
type LifecycleMethods struct {
	Start    bool
	Stop     bool
	Validate bool
}

// LifecycleMethodsResolver resolves the lifecycle hooks of an instance,
// cached per concrete type.
type LifecycleMethodsResolver struct {
	cache sync.Map // reflect.Type -> LifecycleMethods
}

func NewLifecycleMethodsResolver() *LifecycleMethodsResolver {
	return &LifecycleMethodsResolver{}
}

func (r *LifecycleMethodsResolver) Resolve(instance any) LifecycleMethods {
	if instance == nil {
		return LifecycleMethods{}
	}

	t := stdreflect.TypeOf(instance)
	if cached, ok := r.cache.Load(t); ok {
		return cached.(LifecycleMethods)
	}

	_, hasStart := instance.(Starter)
	_, hasStop := instance.(Stopper)
	_, hasValidate := instance.(Validator)

	methods := LifecycleMethods{
		Start:    hasStart,
		Stop:     hasStop,
		Validate: hasValidate,
	}
	r.cache.Store(t, methods)
	return methods
}

type managedInstance struct {
	key      string
	instance any
	methods  LifecycleMethods
}

// StandardLifecycleManager is the default LifecycleManager. Instances
// start in notification order, which follows construction order and so
// puts dependencies before their dependents, and stop in reverse.
type StandardLifecycleManager struct {
	mu       sync.Mutex
	resolver *LifecycleMethodsResolver
	logger   *slog.Logger
	entries  []managedInstance
	seen     map[any]struct{}
	started  int
}

func NewLifecycleManager(logger *slog.Logger, resolver *LifecycleMethodsResolver) *StandardLifecycleManager {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = NewLifecycleMethodsResolver()
	}
	return &StandardLifecycleManager{
		resolver: resolver,
		logger:   logger,
		seen:     make(map[any]struct{}),
	}
}

func (m *StandardLifecycleManager) Notify(key string, instance any) {
	if instance == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Dedupe comparable instances: the same object reached through an
	// interface binding and its concrete binding is managed once.
	if stdreflect.TypeOf(instance).Comparable() {
		if _, dup := m.seen[instance]; dup {
			return
		}
		m.seen[instance] = struct{}{}
	}

	methods := m.resolver.Resolve(instance)
	m.entries = append(m.entries, managedInstance{
		key:      key,
		instance: instance,
		methods:  methods,
	})
	m.logger.Debug("managing instance", "key", key,
		"start", methods.Start, "stop", methods.Stop, "validate", methods.Validate)
}

// Managed returns the keys of tracked instances in notification order.
func (m *StandardLifecycleManager) Managed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		keys = append(keys, e.key)
	}
	return keys
}

// Start runs the Start hook of every tracked instance not yet started,
// failing fast on the first error.
func (m *StandardLifecycleManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := m.started; i < len(m.entries); i++ {
		e := m.entries[i]
		m.started = i + 1

		if !e.methods.Start {
			continue
		}

		m.logger.Debug("starting", "key", e.key)
		if err := e.instance.(Starter).Start(ctx); err != nil {
			return errLifecycleFailed(e.key, err)
		}
	}

	return nil
}

// Validate runs every Validate hook, collecting all failures.
func (m *StandardLifecycleManager) Validate(ctx context.Context) error {
	m.mu.Lock()
	entries := make([]managedInstance, len(m.entries))
	copy(entries, m.entries)
	m.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if !e.methods.Validate {
			continue
		}
		if err := e.instance.(Validator).Validate(ctx); err != nil {
			errs = append(errs, errLifecycleFailed(e.key, err))
		}
	}

	return errors.Join(errs...)
}

// Stop runs the Stop hooks of started instances in reverse order,
// collecting all failures rather than failing fast: teardown should get
// as far as it can.
func (m *StandardLifecycleManager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for i := m.started - 1; i >= 0; i-- {
		e := m.entries[i]
		if !e.methods.Stop {
			continue
		}

		m.logger.Debug("stopping", "key", e.key)
		if err := e.instance.(Stopper).Stop(ctx); err != nil {
			errs = append(errs, errLifecycleFailed(e.key, err))
		}
	}
	m.started = 0

	return errors.Join(errs...)
}

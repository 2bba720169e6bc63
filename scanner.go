package girder

import (
	"context"
	stdreflect "reflect"
	"strings"
	"sync"

	"github.com/psobolev/girder/internal/reflect"
)

// AutoBindMarker is the marker identity scanned for auto-bind singleton
// discovery.
const AutoBindMarker = "girder.AutoBindSingleton"

// ScannedType describes one marker-annotated type found by a Scanner.
// Either Ctor (a plain component, auto-bound as a singleton) or Module (a
// configuration module, deferred into the module list) is set.
type ScannedType struct {
	// Key is the binding key of the described type.
	Key string

	// Package is the import path the type belongs to; scanning filters on
	// it against the configured base packages.
	Package string

	// Marker is the marker identity the type carries. Registration
	// defaults it to AutoBindMarker.
	Marker string

	// Raw optionally carries the described type for diagnostics.
	Raw stdreflect.Type

	// Ctor constructs the component. Unset for configuration modules.
	Ctor Provider[any]

	// Module, when set, marks the type as a configuration module to be
	// materialized against the bootstrap graph.
	Module ModuleCtor

	// BoundTo, Base and Multiple mirror the marker's binding qualifiers:
	// an additional key the component should satisfy, a base type to
	// expose it under, and whether several components may share that
	// target key. None of them may be set on a Module.
	BoundTo  string
	Base     string
	Multiple bool
}

// Scanner is the external discovery collaborator: given base packages and
// marker identities, it returns the matching types. Implementations must
// be pure with respect to any graph and callable before one exists.
type Scanner interface {
	Scan(basePackages []string, markers []string) ([]ScannedType, error)
}

// RegistryScanner is the in-process Scanner: packages register their
// marker-annotated types explicitly, typically from init functions, and
// Scan filters by base package and marker identity in registration order.
type RegistryScanner struct {
	mu      sync.RWMutex
	entries []ScannedType
}

func NewRegistryScanner() *RegistryScanner {
	return &RegistryScanner{}
}

// Register adds scanned type entries. An empty Marker field defaults to
// AutoBindMarker.
func (s *RegistryScanner) Register(entries ...ScannedType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if e.Marker == "" {
			e.Marker = AutoBindMarker
		}
		s.entries = append(s.entries, e)
	}
}

func (s *RegistryScanner) Scan(basePackages []string, markers []string) ([]ScannedType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(markers))
	for _, m := range markers {
		wanted[m] = true
	}

	var out []ScannedType
	for _, e := range s.entries {
		if !wanted[e.Marker] {
			continue
		}
		if !inBasePackages(e.Package, basePackages) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func inBasePackages(pkg string, basePackages []string) bool {
	for _, base := range basePackages {
		if pkg == base || strings.HasPrefix(pkg, base+"/") {
			return true
		}
	}
	return false
}

// EmptyScanner finds nothing. It is what a graph gets when auto-binding
// is disabled.
type EmptyScanner struct{}

func (EmptyScanner) Scan([]string, []string) ([]ScannedType, error) {
	return nil, nil
}

var standardScanner = NewRegistryScanner()

// RegisterScanned adds entries to the process-wide registry returned by
// StandardScanner. Packages call it from init to make their types
// discoverable.
func RegisterScanned(entries ...ScannedType) {
	standardScanner.Register(entries...)
}

// StandardScanner returns the process-wide registry scanner used when no
// scanner override is configured.
func StandardScanner() Scanner {
	return standardScanner
}

// Component is a convenience for describing a plain auto-bind component.
func Component[T any](pkg string, ctor Provider[T]) ScannedType {
	return ScannedType{
		Key:     Key[T](),
		Package: pkg,
		Marker:  AutoBindMarker,
		Raw:     reflect.RawType[T](),
		Ctor: func(ctx context.Context, r Resolver) (any, error) {
			return ctor(ctx, r)
		},
	}
}

// ConfigModule is a convenience for describing an auto-bind configuration
// module.
func ConfigModule(pkg, key string, ctor ModuleCtor) ScannedType {
	return ScannedType{
		Key:     key,
		Package: pkg,
		Marker:  AutoBindMarker,
		Module:  ctor,
	}
}

package girder

import "fmt"

// Marker is a declarative tag on the application entry point. Value is
// the concrete marker instance; it becomes injectable by its runtime type
// in the bootstrap graph, so bootstrap modules and module ctors can
// depend on the configuration the marker carries.
//
// At most one of Suite, Bootstrap and Module may be set. A marker with
// none of them set is informational: only its value binding is installed.
type Marker struct {
	Name      string
	Value     any
	Suite     Suite
	Bootstrap BootstrapModule
	Module    ModuleCtor
}

// Marked is implemented by entry points carrying marker declarations.
// Marker order is declaration order and is preserved end to end.
type Marked interface {
	Markers() []Marker
}

type markerFindings struct {
	suites           []Suite
	bootstrapModules []BootstrapModule
	moduleCtors      []ModuleCtor
}

// resolveMarkers converts the entry point's markers into their closed
// role variants. Role conflicts fail here, before any graph exists.
func resolveMarkers(entry any) (*markerFindings, error) {
	findings := &markerFindings{}

	marked, ok := entry.(Marked)
	if !ok {
		return findings, nil
	}

	for i, m := range marked.Markers() {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("marker[%d]", i)
		}

		roles := 0
		for _, set := range []bool{m.Suite != nil, m.Bootstrap != nil, m.Module != nil} {
			if set {
				roles++
			}
		}
		if roles > 1 {
			return nil, errMarkerConflict(name, describeRoles(m))
		}

		switch {
		case m.Suite != nil:
			findings.suites = append(findings.suites, m.Suite)
		case m.Bootstrap != nil:
			findings.bootstrapModules = append(findings.bootstrapModules, m.Bootstrap)
		case m.Module != nil:
			findings.moduleCtors = append(findings.moduleCtors, m.Module)
		}

		// The marker value is injectable regardless of role.
		if m.Value != nil {
			findings.bootstrapModules = append(findings.bootstrapModules, markerValueModule(m))
		}
	}

	return findings, nil
}

func describeRoles(m Marker) string {
	var roles []string
	if m.Suite != nil {
		roles = append(roles, "suite")
	}
	if m.Bootstrap != nil {
		roles = append(roles, "bootstrap-module")
	}
	if m.Module != nil {
		roles = append(roles, "module")
	}
	return fmt.Sprintf("%v", roles)
}

// markerValueModule makes the marker's runtime value injectable by its
// type. Declaring the same marker type twice keeps the first value.
func markerValueModule(m Marker) BootstrapModule {
	value := m.Value
	return BootstrapModuleFunc(func(b *Binder) error {
		if b.Has(keyOf(value)) {
			return nil
		}
		return bindValueOf(b, value)
	})
}

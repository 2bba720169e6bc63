package girder

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// BindingDescription is the introspection view of one binding in a graph.
type BindingDescription struct {
	Key          string
	Scope        string
	Alias        bool
	Constructed  bool
	Dependencies []string
	Dependents   []string
}

// Describe returns every binding of the graph, sorted by key.
func (g *Graph) Describe() []BindingDescription {
	keys := g.c.Keys()
	sort.Strings(keys)

	descriptions := make([]BindingDescription, 0, len(keys))
	for _, key := range keys {
		info, ok := g.c.Binding(key)
		if !ok {
			continue
		}
		descriptions = append(descriptions, BindingDescription{
			Key:          key,
			Scope:        info.Scope.String(),
			Alias:        info.Alias,
			Constructed:  g.c.Constructed(key),
			Dependencies: g.c.Dependencies(key),
			Dependents:   g.c.Dependents(key),
		})
	}

	return descriptions
}

func (g *Graph) PrintBindings() {
	g.FprintBindings(os.Stdout)
}

func (g *Graph) FprintBindings(w io.Writer) {
	descriptions := g.Describe()

	if len(descriptions) == 0 {
		_, _ = fmt.Fprintln(w, "(empty graph)")
		return
	}

	for _, d := range descriptions {
		status := "○"
		if d.Constructed {
			status = "●"
		}

		suffix := ""
		if d.Alias {
			suffix = " (replayed)"
		}

		if len(d.Dependencies) == 0 {
			_, _ = fmt.Fprintf(w, "%s %s [%s]%s\n", status, d.Key, d.Scope, suffix)
		} else {
			_, _ = fmt.Fprintf(w, "%s %s [%s]%s ← %s\n", status, d.Key, d.Scope, suffix, strings.Join(d.Dependencies, ", "))
		}
	}
}

func (g *Graph) SprintBindings() string {
	var sb strings.Builder
	g.FprintBindings(&sb)
	return sb.String()
}

func (g *Graph) PrintDOT() {
	g.FprintDOT(os.Stdout)
}

func (g *Graph) FprintDOT(w io.Writer) {
	descriptions := g.Describe()

	_, _ = fmt.Fprintln(w, "digraph bindings {")
	_, _ = fmt.Fprintln(w, "  rankdir=LR;")
	_, _ = fmt.Fprintln(w, "  node [shape=box];")

	for _, d := range descriptions {
		label := escapeLabel(d.Key)
		style := ""
		if d.Constructed {
			style = ", style=filled, fillcolor=lightblue"
		}
		_, _ = fmt.Fprintf(w, "  %q [label=%q%s];\n", d.Key, label, style)
	}

	_, _ = fmt.Fprintln(w)

	for _, d := range descriptions {
		for _, dep := range d.Dependencies {
			_, _ = fmt.Fprintf(w, "  %q -> %q;\n", d.Key, dep)
		}
	}

	_, _ = fmt.Fprintln(w, "}")
}

func (g *Graph) SprintDOT() string {
	var sb strings.Builder
	g.FprintDOT(&sb)
	return sb.String()
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "*", "")
	if idx := strings.LastIndex(s, "/"); idx != -1 {
		s = s[idx+1:]
	}
	return s
}

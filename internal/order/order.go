package order

import "sync"

// Graph tracks the declared dependency edges between binding keys. It is
// bookkeeping only; providers still resolve their dependencies through
// the container at construction time.
type Graph struct {
	mu         sync.RWMutex
	nodes      map[string][]string
	cycleValid bool
	hasCycle   bool
}

func New() *Graph {
	return &Graph{
		nodes: make(map[string][]string),
	}
}

func (g *Graph) Add(key string, dependencies []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	deps := make([]string, len(dependencies))
	copy(deps, dependencies)
	g.nodes[key] = deps
	g.cycleValid = false
}

func (g *Graph) Remove(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.nodes, key)
	g.cycleValid = false
}

func (g *Graph) Has(key string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.nodes[key]
	return ok
}

func (g *Graph) Dependencies(key string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	deps, ok := g.nodes[key]
	if !ok {
		return nil
	}

	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

func (g *Graph) Dependents(key string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var dependents []string
	for node, deps := range g.nodes {
		for _, dep := range deps {
			if dep == key {
				dependents = append(dependents, node)
				break
			}
		}
	}
	return dependents
}

func (g *Graph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes)
}

// Missing returns every declared dependency that has no node of its own.
func (g *Graph) Missing() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var missing []string
	seen := make(map[string]bool)

	for _, deps := range g.nodes {
		for _, dep := range deps {
			if _, ok := g.nodes[dep]; !ok && !seen[dep] {
				missing = append(missing, dep)
				seen[dep] = true
			}
		}
	}

	return missing
}

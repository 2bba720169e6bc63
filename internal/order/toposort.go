package order

import "errors"

var ErrCycle = errors.New("cycle detected in dependency graph")

// Topological returns the keys ordered so that every dependency precedes
// its dependents. Declared dependencies without a node are skipped.
func (g *Graph) Topological() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	dependents := make(map[string][]string, len(g.nodes))
	inDegree := make(map[string]int, len(g.nodes))

	for key := range g.nodes {
		inDegree[key] = 0
	}

	for key, deps := range g.nodes {
		for _, dep := range deps {
			if _, ok := g.nodes[dep]; ok {
				dependents[dep] = append(dependents[dep], key)
				inDegree[key]++
			}
		}
	}

	var queue []string
	for key, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, key)
		}
	}

	var sorted []string
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		sorted = append(sorted, key)

		for _, dependent := range dependents[key] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(sorted) != len(g.nodes) {
		return nil, ErrCycle
	}

	return sorted, nil
}

package order

// HasCycle reports whether any dependency cycle exists. The result is
// cached until the next mutation.
func (g *Graph) HasCycle() bool {
	g.mu.RLock()
	if g.cycleValid {
		result := g.hasCycle
		g.mu.RUnlock()
		return result
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cycleValid {
		return g.hasCycle
	}

	g.hasCycle = g.hasCycleLocked()
	g.cycleValid = true
	return g.hasCycle
}

func (g *Graph) hasCycleLocked() bool {
	white := make(map[string]bool, len(g.nodes))
	gray := make(map[string]bool, len(g.nodes))

	for key := range g.nodes {
		white[key] = true
	}

	var dfs func(key string) bool
	dfs = func(key string) bool {
		white[key] = false
		gray[key] = true

		for _, dep := range g.nodes[key] {
			if _, ok := g.nodes[dep]; !ok {
				continue
			}
			if gray[dep] {
				return true
			}
			if white[dep] && dfs(dep) {
				return true
			}
		}

		gray[key] = false
		return false
	}

	for key := range g.nodes {
		if white[key] && dfs(key) {
			return true
		}
	}

	return false
}

// CyclePath returns the dependency path forming a cycle reachable from
// start, ending with the repeated key, or nil when start reaches no cycle.
func (g *Graph) CyclePath(start string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[string]bool)
	inPath := make(map[string]bool)
	path := make([]string, 0)

	var dfs func(key string) []string
	dfs = func(key string) []string {
		if inPath[key] {
			cycle := make([]string, 0)
			found := false
			for _, p := range path {
				if p == key {
					found = true
				}
				if found {
					cycle = append(cycle, p)
				}
			}
			return append(cycle, key)
		}

		if visited[key] {
			return nil
		}

		visited[key] = true
		path = append(path, key)
		inPath[key] = true

		for _, dep := range g.nodes[key] {
			if _, ok := g.nodes[dep]; !ok {
				continue
			}
			if cycle := dfs(dep); cycle != nil {
				return cycle
			}
		}

		path = path[:len(path)-1]
		inPath[key] = false
		return nil
	}

	return dfs(start)
}

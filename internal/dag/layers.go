package dag

import "fmt"

// Layers computes a Kahn-style layered topological ordering. Layer k holds
// every node whose longest chain of unresolved dependencies has length k,
// so all dependencies of a node live in strictly earlier layers. The order
// of IDs within a layer is unspecified; callers impose their own tiebreak.
// An error is returned when the graph contains a cycle, since no complete
// ordering exists then.
func (g *Graph) Layers() ([][]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	indegree := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		indegree[id] = len(n.deps)
	}

	var frontier []string
	for id, deg := range indegree {
		if deg == 0 {
			frontier = append(frontier, id)
		}
	}

	var layers [][]string
	discharged := 0
	for len(frontier) > 0 {
		layers = append(layers, frontier)
		discharged += len(frontier)

		var next []string
		for _, id := range frontier {
			for depID := range g.nodes[id].dependents {
				indegree[depID]--
				if indegree[depID] == 0 {
					next = append(next, depID)
				}
			}
		}
		frontier = next
	}

	if discharged != len(g.nodes) {
		return nil, fmt.Errorf("cannot order graph: %d of %d nodes are part of a cycle",
			len(g.nodes)-discharged, len(g.nodes))
	}
	return layers, nil
}

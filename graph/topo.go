package graph

import "fmt"

// CycleError reports that the graph contains a cycle, naming one node that
// participates in it. The full cycle is not enumerated; one entry point is
// enough for diagnostics.
type CycleError struct {
	NodeID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected at node '%s'", e.NodeID)
}

// TopoSort returns the node IDs in a topological order consistent with every
// edge. The order is deterministic: ties are broken by document node order,
// which also guarantees the trigger (no incoming edges) comes first. Returns
// a CycleError when no such order exists.
func TopoSort(g *Graph) ([]string, error) {
	indegree := make(map[string]int, g.Len())
	for _, id := range g.order {
		indegree[id] = 0
	}
	for _, id := range g.order {
		for _, s := range g.succ[id] {
			indegree[s.ID]++
		}
	}

	// Kahn's algorithm with a FIFO queue seeded in document order.
	queue := make([]string, 0, g.Len())
	for _, id := range g.order {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make([]string, 0, g.Len())
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)
		for _, s := range g.succ[id] {
			indegree[s.ID]--
			if indegree[s.ID] == 0 {
				queue = append(queue, s.ID)
			}
		}
	}

	if len(sorted) != g.Len() {
		// Any node with remaining indegree sits on or behind a cycle; walking
		// successor edges through such nodes must eventually revisit one.
		return nil, &CycleError{NodeID: findCycleNode(g, indegree)}
	}
	return sorted, nil
}

// findCycleNode returns a node that is part of a cycle, preferring one the
// walk actually revisits over one that merely feeds into the cycle.
func findCycleNode(g *Graph, indegree map[string]int) string {
	var start string
	for _, id := range g.order {
		if indegree[id] > 0 {
			start = id
			break
		}
	}

	// Walk forward through unsorted nodes until one repeats.
	seen := make(map[string]struct{})
	cur := start
	for {
		if _, ok := seen[cur]; ok {
			return cur
		}
		seen[cur] = struct{}{}
		advanced := false
		for _, s := range g.succ[cur] {
			if indegree[s.ID] > 0 {
				cur = s.ID
				advanced = true
				break
			}
		}
		if !advanced {
			return cur
		}
	}
}

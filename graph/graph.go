package graph

import (
	"fmt"

	"github.com/BaSui01/flowc/types"
)

// EdgeLabel carries the optional handle names of an edge. The source handle
// distinguishes the true/false arms of an if node.
type EdgeLabel struct {
	SourceHandle string
	TargetHandle string
}

// Successor is one outgoing edge endpoint with its label.
type Successor struct {
	ID    string
	Label EdgeLabel
}

// Graph is the adjacency structure built from a Document. It answers the
// successor, predecessor, and reachability queries the structurer needs.
type Graph struct {
	nodes map[string]*Node
	// order preserves document node order for deterministic iteration.
	order []string
	succ  map[string][]Successor
	pred  map[string][]string
}

// Build constructs a Graph from a document. Edges naming unknown endpoints
// produce parse diagnostics and an empty result.
func Build(doc *Document) (*Graph, types.Diagnostics) {
	g := &Graph{
		nodes: make(map[string]*Node, len(doc.Nodes)),
		order: make([]string, 0, len(doc.Nodes)),
		succ:  make(map[string][]Successor),
		pred:  make(map[string][]string),
	}
	var diags types.Diagnostics

	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}

	for _, e := range doc.Edges {
		_, srcOK := g.nodes[e.Source]
		_, dstOK := g.nodes[e.Target]
		if !srcOK {
			diags = append(diags, types.Parse("P002",
				fmt.Sprintf("edge '%s' references unknown source node '%s'", e.ID, e.Source)))
		}
		if !dstOK {
			diags = append(diags, types.Parse("P002",
				fmt.Sprintf("edge '%s' references unknown target node '%s'", e.ID, e.Target)))
		}
		if !srcOK || !dstOK {
			continue
		}
		g.succ[e.Source] = append(g.succ[e.Source], Successor{
			ID:    e.Target,
			Label: EdgeLabel{SourceHandle: e.SourceHandle, TargetHandle: e.TargetHandle},
		})
		g.pred[e.Target] = append(g.pred[e.Target], e.Source)
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return g, nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns all node IDs in document order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Successors returns the outgoing edges of a node with their labels.
func (g *Graph) Successors(id string) []Successor { return g.succ[id] }

// Predecessors returns the IDs of nodes with an edge into the given node.
func (g *Graph) Predecessors(id string) []string { return g.pred[id] }

// IncomingCount returns the number of incoming edges.
func (g *Graph) IncomingCount(id string) int { return len(g.pred[id]) }

// OutgoingCount returns the number of outgoing edges.
func (g *Graph) OutgoingCount(id string) int { return len(g.succ[id]) }

// ReachableFrom returns the set of node IDs reachable from start, including
// start itself. Computed fresh on every call; the structurer relies on that
// because the consumed set changes between calls.
func (g *Graph) ReachableFrom(start string) map[string]struct{} {
	reachable := make(map[string]struct{})
	if start == "" {
		return reachable
	}
	stack := []string{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := reachable[id]; seen {
			continue
		}
		reachable[id] = struct{}{}
		for _, s := range g.succ[id] {
			stack = append(stack, s.ID)
		}
	}
	return reachable
}

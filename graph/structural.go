package graph

import (
	"fmt"

	"github.com/BaSui01/flowc/types"
)

// ValidateStructural runs all graph-level validation rules against a
// document and its adjacency structure. Every rule runs regardless of
// earlier failures; all diagnostics are returned together.
func ValidateStructural(doc *Document, g *Graph) types.Diagnostics {
	var diags types.Diagnostics

	diags = append(diags, checkExactlyOneTrigger(doc)...)
	diags = append(diags, checkNoDuplicateEdges(doc)...)
	diags = append(diags, checkNoCycles(g)...)
	diags = append(diags, checkAllReachableFromTrigger(doc, g)...)
	diags = append(diags, checkTriggerNoIncoming(doc, g)...)
	diags = append(diags, checkIfHasTwoOutgoing(doc, g)...)
	diags = append(diags, checkMergeHasMultipleIncoming(doc, g)...)
	diags = append(diags, checkNoSelfLoops(doc)...)

	return diags
}

func checkExactlyOneTrigger(doc *Document) types.Diagnostics {
	count := 0
	for i := range doc.Nodes {
		if doc.Nodes[i].IsTrigger() {
			count++
		}
	}
	if count != 1 {
		return types.Diagnostics{types.Validate("V001",
			fmt.Sprintf("workflow must have exactly 1 trigger node, found %d", count), "")}
	}
	return nil
}

func checkNoDuplicateEdges(doc *Document) types.Diagnostics {
	var diags types.Diagnostics
	type edgeKey struct {
		source, target, sourceHandle, targetHandle string
	}
	seen := make(map[edgeKey]struct{}, len(doc.Edges))
	for _, e := range doc.Edges {
		key := edgeKey{e.Source, e.Target, e.SourceHandle, e.TargetHandle}
		if _, dup := seen[key]; dup {
			diags = append(diags, types.Validate("V003",
				fmt.Sprintf("duplicate edge from '%s' to '%s'", e.Source, e.Target), ""))
			continue
		}
		seen[key] = struct{}{}
	}
	return diags
}

func checkNoCycles(g *Graph) types.Diagnostics {
	if _, err := TopoSort(g); err != nil {
		return types.Diagnostics{types.Validate("V004", "workflow graph contains a cycle", "")}
	}
	return nil
}

func checkAllReachableFromTrigger(doc *Document, g *Graph) types.Diagnostics {
	trigger, ok := doc.Trigger()
	if !ok {
		return nil
	}
	reachable := g.ReachableFrom(trigger.ID)

	var diags types.Diagnostics
	for i := range doc.Nodes {
		id := doc.Nodes[i].ID
		if _, ok := reachable[id]; !ok {
			diags = append(diags, types.Validate("V005",
				fmt.Sprintf("node '%s' is not reachable from the trigger", id), id))
		}
	}
	return diags
}

func checkTriggerNoIncoming(doc *Document, g *Graph) types.Diagnostics {
	var diags types.Diagnostics
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		if n.IsTrigger() && g.IncomingCount(n.ID) > 0 {
			diags = append(diags, types.Validate("V006",
				fmt.Sprintf("trigger node '%s' must not have incoming edges", n.ID), n.ID))
		}
	}
	return diags
}

func checkIfHasTwoOutgoing(doc *Document, g *Graph) types.Diagnostics {
	var diags types.Diagnostics
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		if n.Kind != KindIf {
			continue
		}
		succs := g.Successors(n.ID)
		if len(succs) != 2 {
			diags = append(diags, types.Validate("V008",
				fmt.Sprintf("if node '%s' must have exactly 2 outgoing edges (true/false), found %d",
					n.ID, len(succs)), n.ID))
			continue
		}
		var hasTrue, hasFalse bool
		for _, s := range succs {
			switch s.Label.SourceHandle {
			case "true":
				hasTrue = true
			case "false":
				hasFalse = true
			}
		}
		if !hasTrue || !hasFalse {
			diags = append(diags, types.Validate("V008",
				fmt.Sprintf("if node '%s' outgoing edges must have sourceHandle 'true' and 'false'", n.ID),
				n.ID))
		}
	}
	return diags
}

func checkMergeHasMultipleIncoming(doc *Document, g *Graph) types.Diagnostics {
	var diags types.Diagnostics
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		if n.Kind != KindMerge {
			continue
		}
		if count := g.IncomingCount(n.ID); count < 2 {
			diags = append(diags, types.Validate("V009",
				fmt.Sprintf("merge node '%s' must have at least 2 incoming edges, found %d", n.ID, count),
				n.ID))
		}
	}
	return diags
}

func checkNoSelfLoops(doc *Document) types.Diagnostics {
	var diags types.Diagnostics
	for _, e := range doc.Edges {
		if e.Source == e.Target {
			diags = append(diags, types.Validate("V010",
				fmt.Sprintf("self-loop detected on node '%s'", e.Source), e.Source))
		}
	}
	return diags
}

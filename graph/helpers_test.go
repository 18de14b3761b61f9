package graph

import "testing"

// testNode builds a node of the given kind with an empty config.
func testNode(id string, kind NodeKind) Node {
	return Node{
		ID:   id,
		Kind: kind,
		Data: NodeData{Label: id},
	}
}

// testEdge builds an unlabeled edge.
func testEdge(source, target string) Edge {
	return Edge{ID: source + "->" + target, Source: source, Target: target}
}

// branchEdge builds an edge with a source handle, as emitted for if arms.
func branchEdge(source, target, handle string) Edge {
	return Edge{ID: source + "->" + target, Source: source, Target: target, SourceHandle: handle}
}

// testDoc assembles a minimal document around the given nodes and edges.
func testDoc(nodes []Node, edges []Edge) *Document {
	return &Document{
		ID:      "doc-1",
		Name:    "test workflow",
		Version: "1.0",
		Nodes:   nodes,
		Edges:   edges,
	}
}

// mustBuild builds the graph and fails the test on diagnostics.
func mustBuild(t *testing.T, doc *Document) *Graph {
	t.Helper()
	g, diags := Build(doc)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics building graph: %v", diags)
	}
	return g
}

// linearDoc is trigger -> a -> b -> ret.
func linearDoc() *Document {
	return testDoc(
		[]Node{
			testNode("trigger", KindCronTrigger),
			testNode("a", KindHTTPRequest),
			testNode("b", KindCode),
			testNode("ret", KindReturn),
		},
		[]Edge{
			testEdge("trigger", "a"),
			testEdge("a", "b"),
			testEdge("b", "ret"),
		},
	)
}

// diamondDoc is trigger -> branch -> (a | b) -> merge -> ret.
func diamondDoc() *Document {
	return testDoc(
		[]Node{
			testNode("trigger", KindCronTrigger),
			testNode("branch", KindIf),
			testNode("a", KindHTTPRequest),
			testNode("b", KindCode),
			testNode("merge", KindMerge),
			testNode("ret", KindReturn),
		},
		[]Edge{
			testEdge("trigger", "branch"),
			branchEdge("branch", "a", "true"),
			branchEdge("branch", "b", "false"),
			testEdge("a", "merge"),
			testEdge("b", "merge"),
			testEdge("merge", "ret"),
		},
	)
}

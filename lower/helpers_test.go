package lower

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BaSui01/flowc/graph"
	"github.com/BaSui01/flowc/ir"
)

func node(id string, kind graph.NodeKind) graph.Node {
	return graph.Node{
		ID:   id,
		Kind: kind,
		Data: graph.NodeData{Label: "Node " + id},
	}
}

func edge(source, target string) graph.Edge {
	return graph.Edge{
		ID:     fmt.Sprintf("e-%s-%s", source, target),
		Source: source,
		Target: target,
	}
}

func branchEdge(source, target, handle string) graph.Edge {
	e := edge(source, target)
	e.SourceHandle = handle
	return e
}

func doc(nodes []graph.Node, edges []graph.Edge) *graph.Document {
	return &graph.Document{
		ID:      "wf-test",
		Name:    "test workflow",
		Version: "1.0.0",
		Nodes:   nodes,
		Edges:   edges,
	}
}

func cronNode(id string) graph.Node {
	n := node(id, graph.KindCronTrigger)
	n.Data.Config.Schedule = "0 */5 * * * *"
	return n
}

func httpNode(id string) graph.Node {
	n := node(id, graph.KindHTTPRequest)
	n.Data.Config.Method = "GET"
	n.Data.Config.URL = "https://api.example.com/price"
	return n
}

func returnNode(id, expr string) graph.Node {
	n := node(id, graph.KindReturn)
	n.Data.Config.ReturnExpression = expr
	return n
}

func ifNode(id string) graph.Node {
	n := node(id, graph.KindIf)
	n.Data.Config.Conditions = []graph.ConditionDef{
		{Field: "{{config.threshold}}", Operator: "gt", Value: "100"},
	}
	return n
}

// lowerDoc builds the graph and lowers it, failing the test on diagnostics.
func lowerDoc(t *testing.T, d *graph.Document) *ir.WorkflowIR {
	t.Helper()
	g, diags := graph.Build(d)
	require.False(t, diags.HasErrors(), "graph build: %v", diags)
	result, diags := Lower(d, g, Options{})
	require.False(t, diags.HasErrors(), "lowering: %v", diags)
	require.NotNil(t, result)
	return result
}

// stepIDs flattens a block's top-level step IDs.
func stepIDs(block ir.Block) []string {
	ids := make([]string, 0, len(block.Steps))
	for _, s := range block.Steps {
		ids = append(ids, s.ID)
	}
	return ids
}

// findStep returns the step with the given ID from a block, top level only.
func findStep(t *testing.T, block ir.Block, id string) ir.Step {
	t.Helper()
	for _, s := range block.Steps {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("step %q not found in block %v", id, stepIDs(block))
	return ir.Step{}
}

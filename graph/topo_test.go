package graph

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopoSortLinear(t *testing.T) {
	g := mustBuild(t, linearDoc())
	order, err := TopoSort(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"trigger", "a", "b", "ret"}, order)
}

func TestTopoSortDiamond(t *testing.T) {
	g := mustBuild(t, diamondDoc())
	order, err := TopoSort(g)
	require.NoError(t, err)

	require.Len(t, order, 6)
	assert.Equal(t, "trigger", order[0])
	assertBefore(t, order, "branch", "a")
	assertBefore(t, order, "branch", "b")
	assertBefore(t, order, "a", "merge")
	assertBefore(t, order, "b", "merge")
	assertBefore(t, order, "merge", "ret")
}

func TestTopoSortDeterministic(t *testing.T) {
	g := mustBuild(t, diamondDoc())
	first, err := TopoSort(g)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := TopoSort(g)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestTopoSortCycle(t *testing.T) {
	doc := testDoc(
		[]Node{
			testNode("trigger", KindCronTrigger),
			testNode("a", KindCode),
			testNode("b", KindCode),
		},
		[]Edge{
			testEdge("trigger", "a"),
			testEdge("a", "b"),
			testEdge("b", "a"),
		},
	)
	g := mustBuild(t, doc)

	_, err := TopoSort(g)
	require.Error(t, err)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Contains(t, []string{"a", "b"}, cycleErr.NodeID)
	assert.Contains(t, err.Error(), cycleErr.NodeID)
}

func TestTopoSortSelfLoop(t *testing.T) {
	doc := testDoc(
		[]Node{testNode("a", KindCode)},
		[]Edge{testEdge("a", "a")},
	)
	g := mustBuild(t, doc)

	_, err := TopoSort(g)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, "a", cycleErr.NodeID)
}

func assertBefore(t *testing.T, order []string, earlier, later string) {
	t.Helper()
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos[earlier], pos[later], "%s should come before %s", earlier, later)
}

func TestProperty_TopoSortEdgesPointForward(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("topo order places every edge source before its target", prop.ForAll(
		func(n int, seed int64) bool {
			doc := randomDAG(n, seed)
			g, diags := Build(doc)
			if diags.HasErrors() {
				t.Logf("Build failed: %v", diags)
				return false
			}
			order, err := TopoSort(g)
			if err != nil {
				t.Logf("TopoSort failed: %v", err)
				return false
			}
			if len(order) != len(doc.Nodes) {
				t.Logf("order has %d entries, want %d", len(order), len(doc.Nodes))
				return false
			}
			pos := make(map[string]int, len(order))
			for i, id := range order {
				pos[id] = i
			}
			for _, e := range doc.Edges {
				if pos[e.Source] >= pos[e.Target] {
					t.Logf("edge %s -> %s points backward", e.Source, e.Target)
					return false
				}
			}
			return true
		},
		gen.IntRange(2, 12),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// randomDAG builds a document with n nodes and seed-determined edges that
// only ever point from a lower index to a higher one, so it is acyclic by
// construction.
func randomDAG(n int, seed int64) *Document {
	rng := rand.New(rand.NewSource(seed))
	nodes := make([]Node, n)
	for i := 0; i < n; i++ {
		nodes[i] = testNode(fmt.Sprintf("n%d", i), KindCode)
	}
	var edges []Edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Intn(3) == 0 {
				edges = append(edges, testEdge(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", j)))
			}
		}
	}
	return testDoc(nodes, edges)
}

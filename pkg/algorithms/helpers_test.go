package algorithms

import (
	"strconv"
	"testing"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// buildGraph creates a graph from label pairs
func buildGraph(t *testing.T, edges ...[2]string) *graph.Graph {
	t.Helper()

	g := graph.New()
	for _, e := range edges {
		if _, err := g.AddEdgeByLabel(e[0], e[1]); err != nil {
			t.Fatalf("Failed to add edge %s-%s: %v", e[0], e[1], err)
		}
	}
	return g
}

// completeGraph creates K_n with labels n0..n(n-1)
func completeGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()

	g := graph.New()
	for i := 0; i < n; i++ {
		g.EnsureNode("n" + strconv.Itoa(i))
	}
	for i := int64(0); i < int64(n); i++ {
		for j := i + 1; j < int64(n); j++ {
			if _, err := g.AddEdge(i, j); err != nil {
				t.Fatalf("Failed to add edge: %v", err)
			}
		}
	}
	return g
}

// barbell creates two triangles a-b-c and d-e-f joined by the bridge c-d
func barbell(t *testing.T) *graph.Graph {
	t.Helper()
	return buildGraph(t,
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "c"},
		[2]string{"c", "d"},
		[2]string{"d", "e"}, [2]string{"e", "f"}, [2]string{"d", "f"},
	)
}

func nodeID(t *testing.T, g *graph.Graph, label string) int64 {
	t.Helper()
	node, ok := g.Node(label)
	if !ok {
		t.Fatalf("Node %q not found", label)
	}
	return node.ID
}

func edgeKey(t *testing.T, g *graph.Graph, u, v string) graph.EdgeKey {
	t.Helper()
	return graph.NewEdgeKey(nodeID(t, g, u), nodeID(t, g, v))
}

func approxEqual(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}

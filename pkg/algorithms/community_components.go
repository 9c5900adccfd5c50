package algorithms

import (
	"cmp"
	"slices"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// ConnectedComponents returns the connected components of g. Each component
// lists node IDs ascending; components are ordered by their smallest ID.
func ConnectedComponents(g *graph.Graph) [][]int64 {
	raw := topo.ConnectedComponents(g.Topology())

	components := make([][]int64, 0, len(raw))
	for _, nodes := range raw {
		ids := make([]int64, len(nodes))
		for i, n := range nodes {
			ids[i] = n.ID()
		}
		slices.Sort(ids)
		components = append(components, ids)
	}
	slices.SortFunc(components, func(a, b []int64) int {
		return cmp.Compare(a[0], b[0])
	})
	return components
}

// CountComponents returns the number of connected components
func CountComponents(g *graph.Graph) int {
	return len(topo.ConnectedComponents(g.Topology()))
}

// buildCommunities turns a component list into a detection result. Density
// and modularity are measured against reference, which is normally the graph
// before any edge was removed.
func buildCommunities(g, reference *graph.Graph, components [][]int64) *CommunityDetectionResult {
	result := &CommunityDetectionResult{
		Communities:   make([]*Community, 0, len(components)),
		NodeCommunity: make(map[int64]int, g.NodeCount()),
	}

	for i, ids := range components {
		c := &Community{
			ID:     i,
			Nodes:  ids,
			Labels: make([]string, len(ids)),
			Size:   len(ids),
		}
		for j, id := range ids {
			c.Labels[j] = g.Label(id)
			result.NodeCommunity[id] = i
		}
		c.Density = density(reference, ids)
		result.Communities = append(result.Communities, c)
	}

	result.Modularity = modularity(reference, components)
	return result
}

// density is the fraction of possible edges among ids present in g
func density(g *graph.Graph, ids []int64) float64 {
	n := len(ids)
	if n < 2 {
		return 0.0
	}

	internal := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if g.HasEdge(ids[i], ids[j]) {
				internal++
			}
		}
	}
	possible := n * (n - 1) / 2
	return float64(internal) / float64(possible)
}

// modularity scores a partition of g with resolution 1. A graph without
// edges scores 0.
func modularity(g *graph.Graph, components [][]int64) float64 {
	if g.EdgeCount() == 0 {
		return 0.0
	}

	topology := g.Topology()
	communities := make([][]gonum.Node, len(components))
	for i, ids := range components {
		nodes := make([]gonum.Node, len(ids))
		for j, id := range ids {
			nodes[j] = topology.Node(id)
		}
		communities[i] = nodes
	}
	return community.Q(topology, communities, 1)
}

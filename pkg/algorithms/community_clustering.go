package algorithms

import "github.com/dd0wney/graph-analysis/pkg/graph"

// AttrClustering is the node attribute that receives the local clustering coefficient
const AttrClustering = "cc"

// ClusteringCoefficient computes local clustering coefficient for all nodes
// Measures how close a node's neighbors are to being a complete graph
func ClusteringCoefficient(g *graph.Graph) map[int64]float64 {
	nodeIDs := g.NodeIDs()

	// Pre-build neighbor sets so each pair check is an O(1) lookup
	neighborSets := make(map[int64]map[int64]bool, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		neighborSets[nodeID] = g.NeighborSet(nodeID)
	}

	coefficients := make(map[int64]float64, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		neighbors := g.Neighbors(nodeID)

		k := len(neighbors)
		if k < 2 {
			coefficients[nodeID] = 0.0
			continue
		}

		triangles := 0
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				if neighborSets[neighbors[i]][neighbors[j]] {
					triangles++
				}
			}
		}

		possibleTriangles := k * (k - 1) / 2
		coefficients[nodeID] = float64(triangles) / float64(possibleTriangles)
	}

	return coefficients
}

// AverageClusteringCoefficient computes the average clustering coefficient
func AverageClusteringCoefficient(g *graph.Graph) float64 {
	coefficients := ClusteringCoefficient(g)
	if len(coefficients) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, coef := range coefficients {
		sum += coef
	}
	return sum / float64(len(coefficients))
}

// AnnotateClustering stores each node's clustering coefficient under AttrClustering
func AnnotateClustering(g *graph.Graph) map[int64]float64 {
	coefficients := ClusteringCoefficient(g)
	for _, node := range g.Nodes() {
		node.Attrs.Set(AttrClustering, graph.FloatValue(coefficients[node.ID]))
	}
	return coefficients
}

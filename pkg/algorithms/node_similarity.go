package algorithms

import "github.com/dd0wney/graph-analysis/pkg/graph"

// AttrOverlap is the edge attribute that receives the neighborhood overlap
const AttrOverlap = "no"

// computeJaccard calculates |A∩B| / |A∪B| between two neighbor sets.
func computeJaccard(setA, setB map[int64]bool) float64 {
	if len(setA) == 0 && len(setB) == 0 {
		return 0.0
	}

	// Iterate over the smaller set for efficiency
	small, big := setA, setB
	if len(setA) > len(setB) {
		small, big = setB, setA
	}
	intersection := 0
	for id := range small {
		if big[id] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// neighborsExcluding returns the neighbor set of id without the given node.
func neighborsExcluding(g *graph.Graph, id, exclude int64) map[int64]bool {
	set := g.NeighborSet(id)
	delete(set, exclude)
	return set
}

// NeighborhoodOverlap computes, for every edge (u, v), the fraction of the
// union of their neighborhoods (u and v themselves excluded) that they share.
// An edge whose endpoints have no other neighbors scores 0.
func NeighborhoodOverlap(g *graph.Graph) map[graph.EdgeKey]float64 {
	overlap := make(map[graph.EdgeKey]float64, g.EdgeCount())
	for _, edge := range g.Edges() {
		setU := neighborsExcluding(g, edge.U, edge.V)
		setV := neighborsExcluding(g, edge.V, edge.U)
		overlap[edge.Key()] = computeJaccard(setU, setV)
	}
	return overlap
}

// AnnotateOverlap stores each edge's neighborhood overlap under AttrOverlap
func AnnotateOverlap(g *graph.Graph) map[graph.EdgeKey]float64 {
	overlap := NeighborhoodOverlap(g)
	for _, edge := range g.Edges() {
		edge.Attrs.Set(AttrOverlap, graph.FloatValue(overlap[edge.Key()]))
	}
	return overlap
}

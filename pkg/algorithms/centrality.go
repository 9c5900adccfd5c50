package algorithms

import (
	"container/heap"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/network"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// Relative tolerance used when comparing betweenness scores for equality.
const scoreTolerance = 1e-9

// BetweennessCentrality computes unnormalized node betweenness for every
// node, counting each unordered pair of endpoints once. Nodes that lie on no
// shortest path score 0.
func BetweennessCentrality(g *graph.Graph) map[int64]float64 {
	raw := network.Betweenness(g.Topology())

	// gonum sums over ordered pairs, which visits every undirected pair twice
	centrality := make(map[int64]float64, g.NodeCount())
	for _, id := range g.NodeIDs() {
		centrality[id] = raw[id] / 2
	}
	return centrality
}

// EdgeBetweenness computes unnormalized betweenness for every edge, keyed by
// its normalized edge key and counting each unordered pair of endpoints once.
// Edges that lie on no shortest path score 0.
func EdgeBetweenness(g *graph.Graph) map[graph.EdgeKey]float64 {
	raw := network.EdgeBetweenness(g.Topology())

	// gonum keeps undirected edges under the low-high key but sums over
	// ordered pairs, so each score is twice the undirected value
	scores := make(map[graph.EdgeKey]float64, g.EdgeCount())
	for _, edge := range g.Edges() {
		key := edge.Key()
		scores[key] = raw[[2]int64{key.U, key.V}] / 2
	}
	return scores
}

// TopEdges returns the n edges with the highest scores, best first.
// Equal scores are ordered by endpoint labels.
func TopEdges(g *graph.Graph, scores map[graph.EdgeKey]float64, n int) []RankedEdge {
	if n <= 0 {
		return nil
	}

	h := &rankedEdgeHeap{}
	heap.Init(h)
	for _, edge := range g.Edges() {
		item := newRankedEdge(g, edge.Key(), scores[edge.Key()])
		if h.Len() < n {
			heap.Push(h, item)
		} else if edgeLess((*h)[0], item) {
			(*h)[0] = item
			heap.Fix(h, 0)
		}
	}

	result := make([]RankedEdge, h.Len())
	copy(result, *h)
	sort.Slice(result, func(i, j int) bool {
		return edgeLess(result[j], result[i])
	})
	return result
}

func newRankedEdge(g *graph.Graph, key graph.EdgeKey, score float64) RankedEdge {
	u, v := g.Label(key.U), g.Label(key.V)
	if v < u {
		key.U, key.V = key.V, key.U
		u, v = v, u
	}
	return RankedEdge{U: key.U, V: key.V, ULabel: u, VLabel: v, Score: score}
}

// edgeLess reports whether a ranks below b: lower score, or on a tie the
// edge whose labels sort later.
func edgeLess(a, b RankedEdge) bool {
	if !scoresEqual(a.Score, b.Score) {
		return a.Score < b.Score
	}
	if a.ULabel != b.ULabel {
		return a.ULabel > b.ULabel
	}
	return a.VLabel > b.VLabel
}

func scoresEqual(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= scoreTolerance*scale
}

// rankedEdgeHeap is a min-heap of RankedEdge by score
type rankedEdgeHeap []RankedEdge

func (h rankedEdgeHeap) Len() int           { return len(h) }
func (h rankedEdgeHeap) Less(i, j int) bool { return edgeLess(h[i], h[j]) }
func (h rankedEdgeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *rankedEdgeHeap) Push(x any) {
	*h = append(*h, x.(RankedEdge))
}

func (h *rankedEdgeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

package algorithms

import (
	"slices"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// ConnectivityStats summarizes how well connected a graph is
type ConnectivityStats struct {
	Nodes              int      `json:"nodes"`
	Edges              int      `json:"edges"`
	Components         int      `json:"components"`
	ComponentSizes     []int    `json:"component_sizes"` // Largest first
	LargestComponent   int      `json:"largest_component"`
	AvgShortestPath    *float64 `json:"avg_shortest_path,omitempty"` // Over the largest component; nil when it has no edges
	MeanBetweenness    float64  `json:"mean_betweenness"`
	MaxEdgeBetweenness float64  `json:"max_edge_betweenness"`
}

// LargestFraction returns the share of nodes in the largest component
func (s ConnectivityStats) LargestFraction() float64 {
	if s.Nodes == 0 {
		return 0
	}
	return float64(s.LargestComponent) / float64(s.Nodes)
}

// ComputeStats measures connectivity, path length and betweenness of g
func ComputeStats(g *graph.Graph) ConnectivityStats {
	stats := ConnectivityStats{
		Nodes: g.NodeCount(),
		Edges: g.EdgeCount(),
	}

	components := ConnectedComponents(g)
	stats.Components = len(components)

	var largest []int64
	for _, c := range components {
		stats.ComponentSizes = append(stats.ComponentSizes, len(c))
		if len(c) > len(largest) {
			largest = c
		}
	}
	slices.SortFunc(stats.ComponentSizes, func(a, b int) int { return b - a })
	stats.LargestComponent = len(largest)

	if aspl, ok := AverageShortestPathLength(g, largest); ok {
		stats.AvgShortestPath = &aspl
	}

	if stats.Nodes > 0 {
		sum := 0.0
		for _, score := range BetweennessCentrality(g) {
			sum += score
		}
		stats.MeanBetweenness = sum / float64(stats.Nodes)
	}

	for _, score := range EdgeBetweenness(g) {
		stats.MaxEdgeBetweenness = max(stats.MaxEdgeBetweenness, score)
	}
	return stats
}

// StatsDelta is the change from one ConnectivityStats to another
type StatsDelta struct {
	Components         int      `json:"components"`
	LargestComponent   int      `json:"largest_component"`
	AvgShortestPath    *float64 `json:"avg_shortest_path,omitempty"` // nil unless both sides have a value
	MeanBetweenness    float64  `json:"mean_betweenness"`
	MaxEdgeBetweenness float64  `json:"max_edge_betweenness"`
}

// Diff returns after minus before
func Diff(before, after ConnectivityStats) StatsDelta {
	delta := StatsDelta{
		Components:         after.Components - before.Components,
		LargestComponent:   after.LargestComponent - before.LargestComponent,
		MeanBetweenness:    after.MeanBetweenness - before.MeanBetweenness,
		MaxEdgeBetweenness: after.MaxEdgeBetweenness - before.MaxEdgeBetweenness,
	}
	if before.AvgShortestPath != nil && after.AvgShortestPath != nil {
		d := *after.AvgShortestPath - *before.AvgShortestPath
		delta.AvgShortestPath = &d
	}
	return delta
}

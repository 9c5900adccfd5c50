package visualization

import (
	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig configures layout parameters
type LayoutConfig struct {
	Width      float64 // Canvas width
	Height     float64 // Canvas height
	Iterations int     // Number of iterations for iterative algorithms
	Padding    float64 // Padding from edges
	Seed       int64   // Seed for initial positions
}

// Layout interface for different layout algorithms
type Layout interface {
	ComputeLayout(g *graph.Graph, nodeIDs []int64) (map[int64]Position, error)
}

// Graphs above this many nodes fall back to the circular layout
const maxForceDirectedNodes = 1500

// NewLayout picks force-directed layout, or circular layout for graphs too
// large to simulate.
func NewLayout(config *LayoutConfig, nodeCount int) Layout {
	if nodeCount > maxForceDirectedNodes {
		return NewCircularLayout(config)
	}
	return NewForceDirectedLayout(config)
}

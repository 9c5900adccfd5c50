package visualization

import (
	"math"
	"testing"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// pathGraph creates Alice-Bob-Charlie
func pathGraph(t *testing.T) *graph.Graph {
	t.Helper()

	g := graph.New()
	if _, err := g.AddEdgeByLabel("Alice", "Bob"); err != nil {
		t.Fatalf("Failed to add edge: %v", err)
	}
	if _, err := g.AddEdgeByLabel("Bob", "Charlie"); err != nil {
		t.Fatalf("Failed to add edge: %v", err)
	}
	return g
}

// TestForceDirectedLayout tests the force-directed layout algorithm
func TestForceDirectedLayout(t *testing.T) {
	g := pathGraph(t)

	layout := NewForceDirectedLayout(&LayoutConfig{
		Width:      800,
		Height:     600,
		Iterations: 50,
	})

	positions, err := layout.ComputeLayout(g, g.NodeIDs())
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}

	// Verify all nodes have positions
	if len(positions) != 3 {
		t.Errorf("Expected 3 positions, got %d", len(positions))
	}

	// Verify positions are within bounds
	for nodeID, pos := range positions {
		if pos.X < 0 || pos.X > 800 {
			t.Errorf("Node %d X position %f out of bounds", nodeID, pos.X)
		}
		if pos.Y < 0 || pos.Y > 600 {
			t.Errorf("Node %d Y position %f out of bounds", nodeID, pos.Y)
		}
	}
}

// TestForceDirectedLayout_Deterministic tests that a seed fixes the layout
func TestForceDirectedLayout_Deterministic(t *testing.T) {
	g := pathGraph(t)

	first, _ := NewForceDirectedLayout(&LayoutConfig{Width: 400, Height: 300, Seed: 7}).ComputeLayout(g, g.NodeIDs())
	second, _ := NewForceDirectedLayout(&LayoutConfig{Width: 400, Height: 300, Seed: 7}).ComputeLayout(g, g.NodeIDs())

	for id, pos := range first {
		if second[id] != pos {
			t.Errorf("Node %d: %v vs %v", id, pos, second[id])
		}
	}
}

// TestForceDirectedLayout_EdgeCases tests empty and single-node input
func TestForceDirectedLayout_EdgeCases(t *testing.T) {
	layout := NewForceDirectedLayout(&LayoutConfig{Width: 800, Height: 600})

	positions, err := layout.ComputeLayout(graph.New(), nil)
	if err != nil || len(positions) != 0 {
		t.Errorf("Expected empty layout, got %v (%v)", positions, err)
	}

	g := graph.New()
	solo := g.EnsureNode("solo")
	positions, err = layout.ComputeLayout(g, g.NodeIDs())
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}
	if pos := positions[solo.ID]; pos.X != 400 || pos.Y != 300 {
		t.Errorf("Expected single node centred, got %v", pos)
	}
}

// TestCircularLayout tests nodes are placed on a circle
func TestCircularLayout(t *testing.T) {
	g := graph.New()
	for _, label := range []string{"a", "b", "c", "d"} {
		g.EnsureNode(label)
	}

	layout := NewCircularLayout(&LayoutConfig{Width: 800, Height: 600})
	positions, err := layout.ComputeLayout(g, g.NodeIDs())
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}

	radius := 300.0 - 50.0
	for id, pos := range positions {
		dist := math.Hypot(pos.X-400, pos.Y-300)
		if math.Abs(dist-radius) > 1e-9 {
			t.Errorf("Node %d at distance %f, expected %f", id, dist, radius)
		}
	}
}

// TestNewLayout tests the fallback for large graphs
func TestNewLayout(t *testing.T) {
	config := &LayoutConfig{Width: 800, Height: 600}

	if _, ok := NewLayout(config, 10).(*ForceDirectedLayout); !ok {
		t.Error("Expected force-directed layout for a small graph")
	}
	if _, ok := NewLayout(config, maxForceDirectedNodes+1).(*CircularLayout); !ok {
		t.Error("Expected circular layout for a large graph")
	}
}

// TestNormalizePositions tests scaling into the padded canvas
func TestNormalizePositions(t *testing.T) {
	positions := map[int64]Position{
		1: {X: -10, Y: 5},
		2: {X: 10, Y: 5},
	}

	normalized := normalizePositions(positions, 100, 80, 10)

	if normalized[1].X != 10 || normalized[2].X != 90 {
		t.Errorf("Expected X scaled to [10, 90], got %f and %f", normalized[1].X, normalized[2].X)
	}
	// Flat axis is centred
	if normalized[1].Y != 40 || normalized[2].Y != 40 {
		t.Errorf("Expected Y centred at 40, got %f and %f", normalized[1].Y, normalized[2].Y)
	}
}

package algorithms

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// TestComputeStats_Path tests stats on a three-node path
func TestComputeStats_Path(t *testing.T) {
	g := buildGraph(t, [2]string{"a", "b"}, [2]string{"b", "c"})

	stats := ComputeStats(g)

	if stats.Components != 1 || stats.LargestComponent != 3 {
		t.Errorf("Expected 1 component of 3 nodes, got %d of %d", stats.Components, stats.LargestComponent)
	}
	if stats.AvgShortestPath == nil || !approxEqual(*stats.AvgShortestPath, 4.0/3.0) {
		t.Errorf("Expected average shortest path 4/3, got %v", stats.AvgShortestPath)
	}
	if !approxEqual(stats.MeanBetweenness, 1.0/3.0) || !approxEqual(stats.MaxEdgeBetweenness, 2) {
		t.Errorf("Expected mean betweenness 1/3 and max edge betweenness 2, got %f and %f",
			stats.MeanBetweenness, stats.MaxEdgeBetweenness)
	}
}

// TestComputeStats_Disconnected tests component sizes and the edgeless case
func TestComputeStats_Disconnected(t *testing.T) {
	g := buildGraph(t, [2]string{"a", "b"})
	g.EnsureNode("lonely")

	stats := ComputeStats(g)
	if stats.Components != 2 {
		t.Fatalf("Expected 2 components, got %d", stats.Components)
	}
	if stats.ComponentSizes[0] != 2 || stats.ComponentSizes[1] != 1 {
		t.Errorf("Expected sizes [2 1], got %v", stats.ComponentSizes)
	}
	if !approxEqual(stats.LargestFraction(), 2.0/3.0) {
		t.Errorf("Expected largest fraction 2/3, got %f", stats.LargestFraction())
	}

	empty := ComputeStats(graph.New())
	if empty.Components != 0 || empty.AvgShortestPath != nil {
		t.Errorf("Expected empty stats, got %+v", empty)
	}
}

// TestShortestPath tests BFS path reconstruction
func TestShortestPath(t *testing.T) {
	g := barbell(t)
	g.EnsureNode("z")

	path := ShortestPath(g, nodeID(t, g, "a"), nodeID(t, g, "f"))
	if len(path) != 4 {
		t.Fatalf("Expected path of 4 nodes, got %v", path)
	}
	if g.Label(path[1]) != "c" || g.Label(path[2]) != "d" {
		t.Errorf("Expected path through the bridge, got %v", path)
	}

	if path := ShortestPath(g, nodeID(t, g, "a"), nodeID(t, g, "z")); path != nil {
		t.Errorf("Expected nil path to isolated node, got %v", path)
	}
}

// TestSimulateFailures_ZeroLeavesGraphUnchanged tests K=0
func TestSimulateFailures_ZeroLeavesGraphUnchanged(t *testing.T) {
	g := barbell(t)
	before := g.Clone()

	result, err := SimulateFailures(g, 0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("SimulateFailures failed: %v", err)
	}

	if len(result.Removed) != 0 {
		t.Errorf("Expected no removals, got %d", len(result.Removed))
	}
	if !graph.Equivalent(g, before) {
		t.Error("Graph changed with K=0")
	}
	if result.Delta.Components != 0 {
		t.Errorf("Expected zero component delta, got %d", result.Delta.Components)
	}
}

// TestSimulateFailures_RemovesK tests that exactly K edges disappear
func TestSimulateFailures_RemovesK(t *testing.T) {
	g := completeGraph(t, 5)

	result, err := SimulateFailures(g, 4, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("SimulateFailures failed: %v", err)
	}

	if len(result.Removed) != 4 || g.EdgeCount() != 6 {
		t.Errorf("Expected 4 removed and 6 left, got %d and %d", len(result.Removed), g.EdgeCount())
	}
	for _, e := range result.Removed {
		if g.HasEdge(e.U, e.V) {
			t.Errorf("Edge %s-%s still present", e.ULabel, e.VLabel)
		}
	}
	if result.Before.Edges != 10 || result.After.Edges != 6 {
		t.Errorf("Expected 10 -> 6 edges, got %d -> %d", result.Before.Edges, result.After.Edges)
	}
}

// TestSimulateFailures_Detours tests the remaining path reported for each
// failed edge
func TestSimulateFailures_Detours(t *testing.T) {
	square := buildGraph(t,
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"}, [2]string{"d", "a"},
	)

	result, err := SimulateFailures(square, 1, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("SimulateFailures failed: %v", err)
	}
	if len(result.Detours) != 1 {
		t.Fatalf("Expected 1 detour, got %v", result.Detours)
	}

	removed, detour := result.Removed[0], result.Detours[0]
	if len(detour) != 4 || detour[0] != removed.ULabel || detour[3] != removed.VLabel {
		t.Errorf("Expected a 3-hop detour from %s to %s, got %v", removed.ULabel, removed.VLabel, detour)
	}
	for i := 1; i < len(detour); i++ {
		if !square.HasEdge(nodeID(t, square, detour[i-1]), nodeID(t, square, detour[i])) {
			t.Errorf("Detour step %s-%s is not an edge", detour[i-1], detour[i])
		}
	}

	bridge := buildGraph(t, [2]string{"a", "b"})
	result, err = SimulateFailures(bridge, 1, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("SimulateFailures failed: %v", err)
	}
	if len(result.Detours) != 1 || result.Detours[0] != nil {
		t.Errorf("Expected no detour across a cut edge, got %v", result.Detours)
	}
}

// TestSimulateFailures_Clamp tests K above the edge count
func TestSimulateFailures_Clamp(t *testing.T) {
	g := barbell(t)

	result, err := SimulateFailures(g, 100, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("SimulateFailures failed: %v", err)
	}
	if !result.Clamped || g.EdgeCount() != 0 || result.After.Components != 6 {
		t.Errorf("Expected every edge removed, got clamped=%v edges=%d components=%d",
			result.Clamped, g.EdgeCount(), result.After.Components)
	}
}

// TestSimulateFailures_Negative tests rejection of K<0
func TestSimulateFailures_Negative(t *testing.T) {
	_, err := SimulateFailures(barbell(t), -1, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrNegativeFailures) {
		t.Errorf("Expected ErrNegativeFailures, got %v", err)
	}
}

// TestSimulateFailures_Reproducible tests that a fixed seed removes the same edges
func TestSimulateFailures_Reproducible(t *testing.T) {
	first, err := SimulateFailures(completeGraph(t, 6), 5, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("SimulateFailures failed: %v", err)
	}
	second, err := SimulateFailures(completeGraph(t, 6), 5, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("SimulateFailures failed: %v", err)
	}

	for i := range first.Removed {
		if first.Removed[i] != second.Removed[i] {
			t.Errorf("Removal %d differs: %+v vs %+v", i, first.Removed[i], second.Removed[i])
		}
	}
}

// TestRobustness tests aggregation without touching the input graph
func TestRobustness(t *testing.T) {
	g := barbell(t)

	result, err := Robustness(g, 1, 50, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("Robustness failed: %v", err)
	}

	if g.EdgeCount() != 7 {
		t.Errorf("Input graph modified: %d edges", g.EdgeCount())
	}
	if result.Trials != 50 || result.Failures != 1 {
		t.Errorf("Expected 50 trials of 1 failure, got %d of %d", result.Trials, result.Failures)
	}
	// Only removing the bridge disconnects the barbell
	if result.MinComponents != 1 || result.MaxComponents > 2 {
		t.Errorf("Expected components in [1,2], got [%d,%d]", result.MinComponents, result.MaxComponents)
	}
	if result.MeanComponents < 1 || result.MeanComponents > 2 {
		t.Errorf("Mean components out of range: %f", result.MeanComponents)
	}
	if math.IsNaN(result.MeanAvgShortest) {
		t.Error("Expected a mean average shortest path")
	}
	if result.MeanLargestFrac <= 0.5 || result.MeanLargestFrac > 1 {
		t.Errorf("Mean largest fraction out of range: %f", result.MeanLargestFrac)
	}

	again, err := Robustness(g, 1, 50, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("Robustness failed: %v", err)
	}
	if again.MeanComponents != result.MeanComponents || again.DisconnectedTrials != result.DisconnectedTrials {
		t.Error("Expected identical results for the same seed")
	}
}

// TestRobustness_Errors tests argument validation
func TestRobustness_Errors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	if _, err := Robustness(barbell(t), 1, 0, rng); !errors.Is(err, ErrInvalidTrials) {
		t.Errorf("Expected ErrInvalidTrials, got %v", err)
	}
	if _, err := Robustness(barbell(t), -2, 5, rng); !errors.Is(err, ErrNegativeFailures) {
		t.Errorf("Expected ErrNegativeFailures, got %v", err)
	}
}

// TestFailureResults_JSONKeys tests that nested stats marshal under snake_case keys
func TestFailureResults_JSONKeys(t *testing.T) {
	keys := func(v any) map[string]json.RawMessage {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		return fields
	}

	failure, err := SimulateFailures(barbell(t), 1, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("SimulateFailures failed: %v", err)
	}
	fields := keys(failure)
	for _, key := range []string{"before", "after", "delta", "detours"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("Expected key %q in failure result, got %v", key, fields)
		}
	}

	robustness, err := Robustness(barbell(t), 1, 5, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Robustness failed: %v", err)
	}
	if _, ok := keys(robustness)["baseline"]; !ok {
		t.Error("Expected key \"baseline\" in robustness result")
	}
}

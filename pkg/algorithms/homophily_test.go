package algorithms

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// twoCliques builds two K4s coloured red and blue, plus the given cross edges
func twoCliques(t *testing.T, cross ...[2]string) *graph.Graph {
	t.Helper()

	g := graph.New()
	for _, color := range []string{"red", "blue"} {
		for i := 0; i < 4; i++ {
			node := g.EnsureNode(color + strconv.Itoa(i))
			node.Attrs.Set("color", graph.StringValue(color))
		}
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				if _, err := g.AddEdgeByLabel(color+strconv.Itoa(i), color+strconv.Itoa(j)); err != nil {
					t.Fatalf("Failed to add edge: %v", err)
				}
			}
		}
	}
	for _, e := range cross {
		if _, err := g.AddEdgeByLabel(e[0], e[1]); err != nil {
			t.Fatalf("Failed to add edge: %v", err)
		}
	}
	return g
}

// TestVerifyHomophily_PerfectSeparation tests zero-variance groups
func TestVerifyHomophily_PerfectSeparation(t *testing.T) {
	g := twoCliques(t)

	result, err := VerifyHomophily(g, "color", 0.05)
	if err != nil {
		t.Fatalf("VerifyHomophily failed: %v", err)
	}

	if result.Connected.N != 12 || result.Unconnected.N != 16 {
		t.Errorf("Expected 12 connected and 16 unconnected pairs, got %d and %d",
			result.Connected.N, result.Unconnected.N)
	}
	if !math.IsInf(result.T, 1) || result.PValue != 0 {
		t.Errorf("Expected t=+Inf p=0, got t=%f p=%f", result.T, result.PValue)
	}
	if !result.Homophilous {
		t.Error("Expected homophily")
	}
}

// TestVerifyHomophily_WithNoise tests the Welch statistic against hand values
func TestVerifyHomophily_WithNoise(t *testing.T) {
	g := twoCliques(t, [2]string{"red0", "blue0"})

	result, err := VerifyHomophily(g, "color", 0.05)
	if err != nil {
		t.Fatalf("VerifyHomophily failed: %v", err)
	}

	// Connected: 12 ones and 1 zero. Unconnected: 15 zeros.
	if !approxEqual(result.Connected.Mean, 12.0/13.0) || result.Unconnected.Mean != 0 {
		t.Errorf("Unexpected means %f and %f", result.Connected.Mean, result.Unconnected.Mean)
	}
	if !approxEqual(result.T, 12.0) {
		t.Errorf("Expected t=12, got %f", result.T)
	}
	if !approxEqual(result.DF, 12.0) {
		t.Errorf("Expected df=12, got %f", result.DF)
	}
	if result.PValue >= 1e-6 {
		t.Errorf("Expected tiny p-value, got %g", result.PValue)
	}
	if !result.Homophilous || result.CohensD <= 0 {
		t.Errorf("Expected homophily with positive effect, got %+v", result)
	}
}

// TestVerifyHomophily_Heterophily tests that only-cross edges are not homophilous
func TestVerifyHomophily_Heterophily(t *testing.T) {
	g := graph.New()
	for i := 0; i < 3; i++ {
		for _, color := range []string{"red", "blue"} {
			g.EnsureNode(color + strconv.Itoa(i)).Attrs.Set("color", graph.StringValue(color))
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if _, err := g.AddEdgeByLabel("red"+strconv.Itoa(i), "blue"+strconv.Itoa(j)); err != nil {
				t.Fatalf("Failed to add edge: %v", err)
			}
		}
	}

	result, err := VerifyHomophily(g, "color", 0.05)
	if err != nil {
		t.Fatalf("VerifyHomophily failed: %v", err)
	}
	if result.Homophilous {
		t.Error("Expected no homophily for a bipartite colouring")
	}
	if result.T >= 0 {
		t.Errorf("Expected negative t, got %f", result.T)
	}
}

// TestVerifyHomophily_SkipsUnattributed tests nodes without the attribute
func TestVerifyHomophily_SkipsUnattributed(t *testing.T) {
	g := twoCliques(t)
	g.EnsureNode("ghost")

	result, err := VerifyHomophily(g, "color", 0.05)
	if err != nil {
		t.Fatalf("VerifyHomophily failed: %v", err)
	}
	if result.SkippedNodes != 1 {
		t.Errorf("Expected 1 skipped node, got %d", result.SkippedNodes)
	}
}

// TestVerifyHomophily_InsufficientData tests tiny graphs
func TestVerifyHomophily_InsufficientData(t *testing.T) {
	g := buildGraph(t, [2]string{"a", "b"})
	for _, node := range g.Nodes() {
		node.Attrs.Set("color", graph.StringValue("red"))
	}

	if _, err := VerifyHomophily(g, "color", 0.05); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

// TestWelchTTest tests the statistic and degrees of freedom on known samples
func TestWelchTTest(t *testing.T) {
	a := summarize([]float64{1, 2, 3, 4, 5})
	b := summarize([]float64{2, 4, 6, 8, 10})

	tStat, df, p := welchTTest(a, b)

	if !approxEqual(tStat, -3/math.Sqrt(2.5)) {
		t.Errorf("Expected t=%f, got %f", -3/math.Sqrt(2.5), tStat)
	}
	if !approxEqual(df, 6.25/1.0625) {
		t.Errorf("Expected df=%f, got %f", 6.25/1.0625, df)
	}
	if p <= 0.05 || p >= 0.2 {
		t.Errorf("Expected p between 0.05 and 0.2, got %f", p)
	}

	same := summarize([]float64{1, 1, 1})
	if tStat, _, p := welchTTest(same, same); tStat != 0 || p != 1 {
		t.Errorf("Expected t=0 p=1 for identical constants, got t=%f p=%f", tStat, p)
	}
}

package algorithms

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

var (
	// ErrNegativeFailures is returned when a negative number of edge failures is requested
	ErrNegativeFailures = errors.New("failure count must not be negative")
	// ErrInvalidTrials is returned when robustness is asked for fewer than one trial
	ErrInvalidTrials = errors.New("trial count must be at least 1")
)

// FailureResult describes one round of random edge removal
type FailureResult struct {
	Requested int               `json:"requested"`
	Removed   []RankedEdge      `json:"removed"` // Score is unused
	Clamped   bool              `json:"clamped"` // Requested exceeded the edge count
	Detours   [][]string        `json:"detours"` // Per removed edge, the shortest remaining path between its endpoints; nil when they were cut apart
	Before    ConnectivityStats `json:"before"`
	After     ConnectivityStats `json:"after"`
	Delta     StatsDelta        `json:"delta"`
}

// SimulateFailures removes k uniformly random edges from g in place and
// reports connectivity before and after. k is clamped to the edge count.
func SimulateFailures(g *graph.Graph, k int, rng *rand.Rand) (*FailureResult, error) {
	result := &FailureResult{Requested: k, Before: ComputeStats(g)}
	if err := removeRandomEdges(g, k, rng, result); err != nil {
		return nil, err
	}
	result.After = ComputeStats(g)
	result.Delta = Diff(result.Before, result.After)

	result.Detours = make([][]string, len(result.Removed))
	for i, e := range result.Removed {
		if path := ShortestPath(g, e.U, e.V); path != nil {
			result.Detours[i] = labels(g, path)
		}
	}
	return result, nil
}

func labels(g *graph.Graph, ids []int64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.Label(id)
	}
	return out
}

func removeRandomEdges(g *graph.Graph, k int, rng *rand.Rand, result *FailureResult) error {
	if k < 0 {
		return fmt.Errorf("simulate %d failures: %w", k, ErrNegativeFailures)
	}

	edges := g.Edges()
	if k > len(edges) {
		k = len(edges)
		result.Clamped = true
	}
	if k == 0 {
		return nil
	}

	for _, i := range rng.Perm(len(edges))[:k] {
		edge := edges[i]
		if err := g.RemoveEdge(edge.U, edge.V); err != nil {
			return fmt.Errorf("simulate failures: %w", err)
		}
		result.Removed = append(result.Removed, RankedEdge{
			U: edge.U, V: edge.V,
			ULabel: g.Label(edge.U), VLabel: g.Label(edge.V),
		})
	}
	return nil
}

// RobustnessResult aggregates repeated failure simulations
type RobustnessResult struct {
	Failures           int               `json:"failures"` // Edges removed per trial after clamping
	Trials             int               `json:"trials"`
	MeanComponents     float64           `json:"mean_components"`
	MinComponents      int               `json:"min_components"`
	MaxComponents      int               `json:"max_components"`
	MeanLargestFrac    float64           `json:"mean_largest_fraction"`
	MeanAvgShortest    float64           `json:"mean_avg_shortest_path"` // Over trials whose largest component kept an edge; NaN when none did
	DisconnectedTrials int               `json:"disconnected_trials"`    // Trials that left more components than the baseline
	Baseline           ConnectivityStats `json:"baseline"`
}

// Robustness runs trials independent failure simulations of k edges on
// clones of g. g itself is not modified.
func Robustness(g *graph.Graph, k, trials int, rng *rand.Rand) (*RobustnessResult, error) {
	if k < 0 {
		return nil, fmt.Errorf("robustness with %d failures: %w", k, ErrNegativeFailures)
	}
	if trials < 1 {
		return nil, fmt.Errorf("robustness with %d trials: %w", trials, ErrInvalidTrials)
	}

	result := &RobustnessResult{
		Failures:      min(k, g.EdgeCount()),
		Trials:        trials,
		Baseline:      ComputeStats(g),
		MinComponents: math.MaxInt,
	}

	componentSum, fracSum, asplSum, asplCount := 0, 0.0, 0.0, 0
	for trial := 0; trial < trials; trial++ {
		clone := g.Clone()
		if err := removeRandomEdges(clone, k, rng, &FailureResult{}); err != nil {
			return nil, err
		}

		components := ConnectedComponents(clone)
		var largest []int64
		for _, c := range components {
			if len(c) > len(largest) {
				largest = c
			}
		}

		n := len(components)
		componentSum += n
		result.MinComponents = min(result.MinComponents, n)
		result.MaxComponents = max(result.MaxComponents, n)
		if n > result.Baseline.Components {
			result.DisconnectedTrials++
		}
		if clone.NodeCount() > 0 {
			fracSum += float64(len(largest)) / float64(clone.NodeCount())
		}
		if aspl, ok := AverageShortestPathLength(clone, largest); ok {
			asplSum += aspl
			asplCount++
		}
	}

	result.MeanComponents = float64(componentSum) / float64(trials)
	result.MeanLargestFrac = fracSum / float64(trials)
	result.MeanAvgShortest = math.NaN()
	if asplCount > 0 {
		result.MeanAvgShortest = asplSum / float64(asplCount)
	}
	return result, nil
}

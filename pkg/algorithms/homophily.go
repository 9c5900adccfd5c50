package algorithms

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// ErrInsufficientData is returned when a sample group is too small to test
var ErrInsufficientData = errors.New("insufficient data for t-test")

// Sample summarizes one group of pair similarities
type Sample struct {
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
}

// HomophilyResult reports a Welch two-sample t-test comparing attribute
// similarity of connected pairs against unconnected pairs.
type HomophilyResult struct {
	Attribute    string  `json:"attribute"`
	Connected    Sample  `json:"connected"`
	Unconnected  Sample  `json:"unconnected"`
	T            float64 `json:"t"`
	DF           float64 `json:"df"`
	PValue       float64 `json:"p_value"`
	CohensD      float64 `json:"cohens_d"`
	Alpha        float64 `json:"alpha"`
	Homophilous  bool    `json:"homophilous"`
	SkippedNodes int     `json:"skipped_nodes"` // Nodes without the attribute
}

// VerifyHomophily tests whether nodes sharing the value of attr are more
// likely to be connected. Every pair of nodes that both carry attr is scored
// 1 when the values match and 0 otherwise.
func VerifyHomophily(g *graph.Graph, attr string, alpha float64) (*HomophilyResult, error) {
	type tagged struct {
		id    int64
		value graph.Value
	}

	var nodes []tagged
	skipped := 0
	for _, node := range g.Nodes() {
		v, ok := node.GetAttr(attr)
		if !ok {
			skipped++
			continue
		}
		nodes = append(nodes, tagged{id: node.ID, value: v})
	}

	var connected, unconnected []float64
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			similarity := 0.0
			if nodes[i].value.Equal(nodes[j].value) {
				similarity = 1.0
			}
			if g.HasEdge(nodes[i].id, nodes[j].id) {
				connected = append(connected, similarity)
			} else {
				unconnected = append(unconnected, similarity)
			}
		}
	}

	if len(connected) < 2 || len(unconnected) < 2 {
		return nil, fmt.Errorf("homophily on %q: %d connected and %d unconnected pairs: %w",
			attr, len(connected), len(unconnected), ErrInsufficientData)
	}

	result := &HomophilyResult{
		Attribute:    attr,
		Connected:    summarize(connected),
		Unconnected:  summarize(unconnected),
		Alpha:        alpha,
		SkippedNodes: skipped,
	}
	result.T, result.DF, result.PValue = welchTTest(result.Connected, result.Unconnected)
	result.CohensD = cohensD(result.Connected, result.Unconnected)
	result.Homophilous = result.PValue < alpha && result.Connected.Mean > result.Unconnected.Mean
	return result, nil
}

func summarize(xs []float64) Sample {
	mean, variance := stat.MeanVariance(xs, nil)
	return Sample{N: len(xs), Mean: mean, Variance: variance}
}

// welchTTest returns the t statistic, Welch-Satterthwaite degrees of freedom
// and two-sided p-value. When both samples have zero variance the test
// degenerates: equal means give t=0, p=1 and different means give t=±Inf, p=0.
func welchTTest(a, b Sample) (t, df, p float64) {
	va := a.Variance / float64(a.N)
	vb := b.Variance / float64(b.N)
	se := va + vb
	diff := a.Mean - b.Mean

	if se == 0 {
		df = float64(a.N + b.N - 2)
		if diff == 0 {
			return 0, df, 1
		}
		return math.Copysign(math.Inf(1), diff), df, 0
	}

	t = diff / math.Sqrt(se)

	// A group with zero variance contributes nothing to the denominator
	denom := 0.0
	if va > 0 {
		denom += va * va / float64(a.N-1)
	}
	if vb > 0 {
		denom += vb * vb / float64(b.N-1)
	}
	df = se * se / denom

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.CDF(-math.Abs(t))
	return t, df, math.Min(p, 1)
}

// cohensD is the mean difference over the pooled standard deviation
func cohensD(a, b Sample) float64 {
	pooled := ((float64(a.N-1) * a.Variance) + (float64(b.N-1) * b.Variance)) / float64(a.N+b.N-2)
	return (a.Mean - b.Mean) / math.Max(math.Sqrt(pooled), 1e-9)
}

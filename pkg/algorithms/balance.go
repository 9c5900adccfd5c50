package algorithms

import (
	"fmt"
	"strings"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// Triad is a triangle of nodes with the signs of its three edges
type Triad struct {
	Nodes  [3]int64  `json:"nodes"`
	Labels [3]string `json:"labels"`
	Signs  [3]int    `json:"signs"` // Signs of edges (a,b), (b,c), (a,c)
}

// BalanceResult reports structural balance of a signed graph
type BalanceResult struct {
	Attribute     string     `json:"attribute"`
	Triads        int        `json:"triads"`
	Violations    []Triad    `json:"violations"`
	NegativeEdges int        `json:"negative_edges"`
	Balanced      bool       `json:"balanced"` // Nodes split into two factions with negative edges only between them
	Factions      [2][]int64 `json:"factions,omitempty"`
}

// TriadsBalanced reports whether every triangle has a positive sign product
func (r *BalanceResult) TriadsBalanced() bool {
	return len(r.Violations) == 0
}

// EdgeSign reads the sign of an edge from attr. Numbers below zero and the
// strings "-", "neg" and "negative" are negative; other numbers and "+",
// "pos" and "positive" are positive. A missing attribute counts as positive.
func EdgeSign(edge *graph.Edge, attr string) (int, error) {
	v, ok := edge.GetAttr(attr)
	if !ok {
		return 1, nil
	}

	if v.Type == graph.TypeString {
		s, _ := v.AsString()
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "-", "neg", "negative":
			return -1, nil
		case "+", "pos", "positive":
			return 1, nil
		}
	}

	n, err := v.AsNumber()
	if err != nil {
		return 0, fmt.Errorf("edge sign %q = %s: not a sign", attr, v)
	}
	if n < 0 {
		return -1, nil
	}
	return 1, nil
}

// VerifyBalance checks every triangle of g for structural balance using the
// edge signs stored under attr, then tries to split the whole graph into two
// factions joined only by negative edges.
func VerifyBalance(g *graph.Graph, attr string) (*BalanceResult, error) {
	signs := make(map[graph.EdgeKey]int, g.EdgeCount())
	result := &BalanceResult{Attribute: attr}
	for _, edge := range g.Edges() {
		sign, err := EdgeSign(edge, attr)
		if err != nil {
			return nil, fmt.Errorf("verify balance %s-%s: %w", g.Label(edge.U), g.Label(edge.V), err)
		}
		signs[edge.Key()] = sign
		if sign < 0 {
			result.NegativeEdges++
		}
	}

	// Enumerate each triangle once with a < b < c
	for _, a := range g.NodeIDs() {
		for _, b := range g.Neighbors(a) {
			if b <= a {
				continue
			}
			for _, c := range g.Neighbors(b) {
				if c <= b || !g.HasEdge(a, c) {
					continue
				}
				triad := Triad{
					Nodes:  [3]int64{a, b, c},
					Labels: [3]string{g.Label(a), g.Label(b), g.Label(c)},
					Signs: [3]int{
						signs[graph.NewEdgeKey(a, b)],
						signs[graph.NewEdgeKey(b, c)],
						signs[graph.NewEdgeKey(a, c)],
					},
				}
				result.Triads++
				if triad.Signs[0]*triad.Signs[1]*triad.Signs[2] < 0 {
					result.Violations = append(result.Violations, triad)
				}
			}
		}
	}

	result.Factions, result.Balanced = splitFactions(g, signs)
	return result, nil
}

// splitFactions two-colours g by BFS: positive edges keep a side, negative
// edges switch it. It fails when some edge contradicts the colouring.
func splitFactions(g *graph.Graph, signs map[graph.EdgeKey]int) ([2][]int64, bool) {
	var factions [2][]int64
	side := make(map[int64]int, g.NodeCount())

	for _, start := range g.NodeIDs() {
		if _, seen := side[start]; seen {
			continue
		}
		side[start] = 0
		queue := []int64{start}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, neighbor := range g.Neighbors(current) {
				want := side[current]
				if signs[graph.NewEdgeKey(current, neighbor)] < 0 {
					want = 1 - want
				}
				got, seen := side[neighbor]
				if !seen {
					side[neighbor] = want
					queue = append(queue, neighbor)
					continue
				}
				if got != want {
					return [2][]int64{}, false
				}
			}
		}
	}

	for _, id := range g.NodeIDs() {
		factions[side[id]] = append(factions[side[id]], id)
	}
	return factions, true
}

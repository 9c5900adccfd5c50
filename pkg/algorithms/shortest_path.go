package algorithms

import "github.com/dd0wney/graph-analysis/pkg/graph"

// bfsDistances returns hop counts from source to every reachable node
func bfsDistances(g *graph.Graph, source int64) map[int64]int {
	dist := map[int64]int{source: 0}
	queue := []int64{source}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range g.Neighbors(current) {
			if _, seen := dist[neighbor]; !seen {
				dist[neighbor] = dist[current] + 1
				queue = append(queue, neighbor)
			}
		}
	}
	return dist
}

// ShortestPath finds the shortest path between two nodes using BFS.
// Returns nil when the nodes are not connected.
func ShortestPath(g *graph.Graph, from, to int64) []int64 {
	if _, ok := g.NodeByID(from); !ok {
		return nil
	}
	if from == to {
		return []int64{from}
	}

	parent := map[int64]int64{from: from}
	queue := []int64{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range g.Neighbors(current) {
			if _, seen := parent[neighbor]; seen {
				continue
			}
			parent[neighbor] = current
			if neighbor == to {
				return reconstructPath(parent, from, to)
			}
			queue = append(queue, neighbor)
		}
	}
	return nil
}

func reconstructPath(parent map[int64]int64, from, to int64) []int64 {
	path := []int64{to}
	for current := to; current != from; {
		current = parent[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// AverageShortestPathLength averages hop counts over every ordered pair of
// distinct nodes in ids. The nodes must form one connected component.
// Returns false when there are fewer than two nodes.
func AverageShortestPathLength(g *graph.Graph, ids []int64) (float64, bool) {
	n := len(ids)
	if n < 2 {
		return 0, false
	}

	total := 0
	for _, source := range ids {
		for _, d := range bfsDistances(g, source) {
			total += d
		}
	}
	return float64(total) / float64(n*(n-1)), true
}

package graph

import (
	"cmp"
	"slices"
	"strconv"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph is an attributed, undirected simple graph. Topology lives in a gonum
// simple.UndirectedGraph so gonum algorithms can run on it directly; labels
// and attributes are kept beside it.
type Graph struct {
	// Attrs holds graph-level attributes other than the node and edge lists
	Attrs Attrs

	topo   *simple.UndirectedGraph
	nodes  map[int64]*Node
	labels map[string]int64
	order  []int64
	edges  map[EdgeKey]*Edge
	nextID int64
}

// New creates an empty graph
func New() *Graph {
	return &Graph{
		topo:   simple.NewUndirectedGraph(),
		nodes:  make(map[int64]*Node),
		labels: make(map[string]int64),
		edges:  make(map[EdgeKey]*Edge),
	}
}

// Topology exposes the underlying gonum graph. Callers must not mutate it.
func (g *Graph) Topology() gonum.Undirected {
	return g.topo
}

// AddNode creates a node with the given label
func (g *Graph) AddNode(label string) (*Node, error) {
	if _, exists := g.labels[label]; exists {
		return nil, NewError("AddNode").Node(label).Cause(ErrDuplicateNode).Err()
	}

	id := g.nextID
	g.nextID++

	node := &Node{ID: id, Label: label}
	g.topo.AddNode(simple.Node(id))
	g.nodes[id] = node
	g.labels[label] = id
	g.order = append(g.order, id)
	return node, nil
}

// EnsureNode returns the node with the given label, creating it if needed
func (g *Graph) EnsureNode(label string) *Node {
	if id, ok := g.labels[label]; ok {
		return g.nodes[id]
	}
	node, _ := g.AddNode(label)
	return node
}

// Node looks up a node by label
func (g *Graph) Node(label string) (*Node, bool) {
	id, ok := g.labels[label]
	if !ok {
		return nil, false
	}
	return g.nodes[id], true
}

// NodeByID looks up a node by its internal ID
func (g *Graph) NodeByID(id int64) (*Node, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// Label returns the label of the node with the given ID, or its numeric ID
// when the node is unknown.
func (g *Graph) Label(id int64) string {
	if node, ok := g.nodes[id]; ok {
		return node.Label
	}
	return strconv.FormatInt(id, 10)
}

// Nodes returns all nodes in insertion order
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order
func (g *Graph) NodeIDs() []int64 {
	return slices.Clone(g.order)
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// AddEdge connects u and v. Adding an existing edge returns it unchanged.
func (g *Graph) AddEdge(u, v int64) (*Edge, error) {
	nu, okU := g.nodes[u]
	nv, okV := g.nodes[v]
	if !okU {
		return nil, NewError("AddEdge").Node(g.Label(u)).Cause(ErrNodeNotFound).Err()
	}
	if !okV {
		return nil, NewError("AddEdge").Node(g.Label(v)).Cause(ErrNodeNotFound).Err()
	}
	if u == v {
		return nil, NewError("AddEdge").Edge(nu.Label, nv.Label).Cause(ErrSelfLoop).Err()
	}

	key := NewEdgeKey(u, v)
	if edge, exists := g.edges[key]; exists {
		return edge, nil
	}

	g.topo.SetEdge(simple.Edge{F: simple.Node(key.U), T: simple.Node(key.V)})
	edge := &Edge{U: key.U, V: key.V}
	g.edges[key] = edge
	return edge, nil
}

// AddEdgeByLabel connects two nodes by label, creating missing nodes
func (g *Graph) AddEdgeByLabel(u, v string) (*Edge, error) {
	nu := g.EnsureNode(u)
	nv := g.EnsureNode(v)
	return g.AddEdge(nu.ID, nv.ID)
}

// RemoveEdge disconnects u and v
func (g *Graph) RemoveEdge(u, v int64) error {
	key := NewEdgeKey(u, v)
	if _, exists := g.edges[key]; !exists {
		return NewError("RemoveEdge").Edge(g.Label(u), g.Label(v)).Cause(ErrEdgeNotFound).Err()
	}
	g.topo.RemoveEdge(key.U, key.V)
	delete(g.edges, key)
	return nil
}

// HasEdge reports whether u and v are adjacent
func (g *Graph) HasEdge(u, v int64) bool {
	_, ok := g.edges[NewEdgeKey(u, v)]
	return ok
}

// Edge returns the edge between u and v
func (g *Graph) Edge(u, v int64) (*Edge, bool) {
	edge, ok := g.edges[NewEdgeKey(u, v)]
	return edge, ok
}

// Edges returns all edges ordered by (U, V)
func (g *Graph) Edges() []*Edge {
	edges := make([]*Edge, 0, len(g.edges))
	for _, edge := range g.edges {
		edges = append(edges, edge)
	}
	slices.SortFunc(edges, func(a, b *Edge) int {
		if a.U != b.U {
			return cmp.Compare(a.U, b.U)
		}
		return cmp.Compare(a.V, b.V)
	})
	return edges
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Neighbors returns the IDs adjacent to id in ascending order
func (g *Graph) Neighbors(id int64) []int64 {
	if _, ok := g.nodes[id]; !ok {
		return nil
	}
	it := g.topo.From(id)
	neighbors := make([]int64, 0, it.Len())
	for it.Next() {
		neighbors = append(neighbors, it.Node().ID())
	}
	slices.Sort(neighbors)
	return neighbors
}

// NeighborSet returns the neighbors of id as a set
func (g *Graph) NeighborSet(id int64) map[int64]bool {
	if _, ok := g.nodes[id]; !ok {
		return map[int64]bool{}
	}
	it := g.topo.From(id)
	set := make(map[int64]bool, it.Len())
	for it.Next() {
		set[it.Node().ID()] = true
	}
	return set
}

// Degree returns the number of neighbors of id
func (g *Graph) Degree(id int64) int {
	if _, ok := g.nodes[id]; !ok {
		return 0
	}
	return g.topo.From(id).Len()
}

// Clone creates a deep copy of the graph. IDs are preserved.
func (g *Graph) Clone() *Graph {
	clone := New()
	clone.Attrs = g.Attrs.Clone()
	clone.nextID = g.nextID
	for _, id := range g.order {
		node := g.nodes[id].Clone()
		clone.topo.AddNode(simple.Node(id))
		clone.nodes[id] = node
		clone.labels[node.Label] = id
		clone.order = append(clone.order, id)
	}
	for key, edge := range g.edges {
		clone.topo.SetEdge(simple.Edge{F: simple.Node(key.U), T: simple.Node(key.V)})
		clone.edges[key] = edge.Clone()
	}
	return clone
}

// Equivalent reports whether a and b have the same labelled nodes and the
// same edges between those labels. Attributes are not compared.
func Equivalent(a, b *Graph) bool {
	if a.NodeCount() != b.NodeCount() || a.EdgeCount() != b.EdgeCount() {
		return false
	}
	for label := range a.labels {
		if _, ok := b.labels[label]; !ok {
			return false
		}
	}
	for key := range a.edges {
		u, _ := b.Node(a.Label(key.U))
		v, _ := b.Node(a.Label(key.V))
		if !b.HasEdge(u.ID, v.ID) {
			return false
		}
	}
	return true
}

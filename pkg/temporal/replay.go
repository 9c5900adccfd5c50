package temporal

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// AttrAddedAt is the edge attribute holding the unix time an edge was added
const AttrAddedAt = "added_at"

// FrameFunc is called after each event has been applied. step counts from 0
// and changed reports whether the event altered the graph. Returning an error
// stops the replay.
type FrameFunc func(step int, ev Event, changed bool, g *graph.Graph) error

// ReplayResult counts what a replay did
type ReplayResult struct {
	Events  int `json:"events"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Skipped int `json:"skipped"` // Removes of absent edges and self-loops
	First   Event
	Last    Event
}

// Applied returns the number of events that changed the graph
func (r ReplayResult) Applied() int {
	return r.Added + r.Removed
}

// PrepareNodes adds every endpoint of an add event to g so that a single
// layout can cover every frame. It returns the number of nodes created.
func PrepareNodes(g *graph.Graph, events []Event) int {
	created := 0
	for _, ev := range events {
		if ev.Op != OpAdd || ev.Source == ev.Target {
			continue
		}
		for _, label := range []string{ev.Source, ev.Target} {
			if _, ok := g.Node(label); !ok {
				g.EnsureNode(label)
				created++
			}
		}
	}
	return created
}

// Replay applies events to g in ascending time order. An add creates missing
// endpoints and stamps the edge with AttrAddedAt; re-adding an existing edge
// refreshes the stamp. A remove of an absent edge is skipped. fn, if not nil,
// runs after every event including skipped ones.
func Replay(g *graph.Graph, events []Event, fn FrameFunc) (ReplayResult, error) {
	ordered := slices.Clone(events)
	SortEvents(ordered)

	result := ReplayResult{Events: len(ordered)}
	if len(ordered) > 0 {
		result.First = ordered[0]
		result.Last = ordered[len(ordered)-1]
	}

	for step, ev := range ordered {
		changed, err := Apply(g, ev)
		if err != nil {
			return result, fmt.Errorf("replay %s: %w", ev, err)
		}
		switch {
		case !changed:
			result.Skipped++
		case ev.Op == OpAdd:
			result.Added++
		default:
			result.Removed++
		}

		if fn != nil {
			if err := fn(step, ev, changed, g); err != nil {
				return result, fmt.Errorf("replay frame %d: %w", step, err)
			}
		}
	}
	return result, nil
}

// Apply performs a single event and reports whether the graph changed
func Apply(g *graph.Graph, ev Event) (bool, error) {
	if ev.Source == ev.Target {
		return false, nil
	}

	switch ev.Op {
	case OpAdd:
		edge, err := g.AddEdgeByLabel(ev.Source, ev.Target)
		if err != nil {
			return false, err
		}
		edge.Attrs.Set(AttrAddedAt, graph.IntValue(ev.Time.Unix()))
		return true, nil

	case OpRemove:
		u, okU := g.Node(ev.Source)
		v, okV := g.Node(ev.Target)
		if !okU || !okV {
			return false, nil
		}
		if err := g.RemoveEdge(u.ID, v.ID); err != nil {
			if errors.Is(err, graph.ErrEdgeNotFound) {
				return false, nil
			}
			return false, err
		}
		return true, nil

	default:
		return false, fmt.Errorf("unknown op %d", ev.Op)
	}
}

package gml

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// Keys written from graph structure, never from attributes
var (
	graphKeys = map[string]bool{"node": true, "edge": true, "directed": true, "multigraph": true}
	nodeKeys  = map[string]bool{"id": true, "label": true}
	edgeKeys  = map[string]bool{"source": true, "target": true}
)

type encoder struct {
	w   *bufio.Writer
	err error
}

func (e *encoder) printf(depth int, format string, args ...any) {
	if e.err != nil {
		return
	}
	if _, err := e.w.WriteString(strings.Repeat("  ", depth)); err != nil {
		e.err = err
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// Encode writes g as GML. Node ids are their position in insertion order.
func Encode(w io.Writer, g *graph.Graph) error {
	e := &encoder{w: bufio.NewWriter(w)}

	e.printf(0, "graph [\n")
	if err := e.attrs(1, g.Attrs, graphKeys); err != nil {
		return err
	}

	index := make(map[int64]int, g.NodeCount())
	for i, node := range g.Nodes() {
		index[node.ID] = i
		e.printf(1, "node [\n")
		e.printf(2, "id %d\n", i)
		e.printf(2, "label %s\n", quote(node.Label))
		if err := e.attrs(2, node.Attrs, nodeKeys); err != nil {
			return err
		}
		e.printf(1, "]\n")
	}

	for _, edge := range g.Edges() {
		e.printf(1, "edge [\n")
		e.printf(2, "source %d\n", index[edge.U])
		e.printf(2, "target %d\n", index[edge.V])
		if err := e.attrs(2, edge.Attrs, edgeKeys); err != nil {
			return err
		}
		e.printf(1, "]\n")
	}
	e.printf(0, "]\n")

	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

func (e *encoder) attrs(depth int, attrs graph.Attrs, skip map[string]bool) error {
	for _, a := range attrs {
		if skip[a.Key] {
			continue
		}
		if !validKey(a.Key) {
			return fmt.Errorf("attribute key %q is not a valid GML key", a.Key)
		}
		if a.Value.Type == graph.TypeList {
			list, _ := a.Value.AsList()
			e.printf(depth, "%s [\n", a.Key)
			if err := e.attrs(depth+1, list, nil); err != nil {
				return err
			}
			e.printf(depth, "]\n")
			continue
		}
		e.printf(depth, "%s %s\n", a.Key, formatScalar(a.Value))
	}
	return e.err
}

func formatScalar(v graph.Value) string {
	switch v.Type {
	case graph.TypeInt:
		n, _ := v.AsInt()
		return strconv.FormatInt(n, 10)
	case graph.TypeFloat:
		f, _ := v.AsFloat()
		return formatReal(f)
	default:
		s, _ := v.AsString()
		return quote(s)
	}
}

// formatReal always emits a decimal point or exponent so the value reads
// back as a real rather than an integer.
func formatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '&':
			sb.WriteString("&amp;")
		case r == '"':
			sb.WriteString("&quot;")
		case r > 126 || (r < 32 && r != '\t'):
			fmt.Fprintf(&sb, "&#%d;", r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func validKey(key string) bool {
	if key == "" || (!isLetter(key[0]) && key[0] != '_') {
		return false
	}
	for i := 1; i < len(key); i++ {
		if !isLetter(key[i]) && !isDigit(key[i]) && key[i] != '_' {
			return false
		}
	}
	return true
}

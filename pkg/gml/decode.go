package gml

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// DecodeInfo describes how the input was folded into an undirected simple graph.
type DecodeInfo struct {
	Directed      bool
	Multigraph    bool
	SelfLoops     int // dropped self-loop edges
	ParallelEdges int // edges merged into an existing edge
}

// item is one key/value pair of the parsed GML tree.
type item struct {
	key   string
	line  int
	value graph.Value
	list  []item
	isSub bool
}

// toValue converts a parsed item into an attribute value
func (it item) toValue() graph.Value {
	if !it.isSub {
		return it.value
	}
	attrs := make(graph.Attrs, 0, len(it.list))
	for _, child := range it.list {
		attrs = append(attrs, graph.Attr{Key: child.key, Value: child.toValue()})
	}
	return graph.ListValue(attrs)
}

type parser struct {
	lex  *lexer
	name string
	peek *token
}

func (p *parser) errorf(line int, format string, args ...any) error {
	return &graph.ParseError{Path: p.name, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) next() (token, error) {
	if p.peek != nil {
		tok := *p.peek
		p.peek = nil
		return tok, nil
	}
	tok, err := p.lex.next()
	if err != nil {
		var le *lexError
		if errors.As(err, &le) {
			return token{}, p.errorf(le.line, "%s", le.msg)
		}
		return token{}, &graph.FileError{Op: "read", Path: p.name, Err: err}
	}
	return tok, nil
}

// parseList reads key/value pairs until ']' (nested) or EOF (top level).
func (p *parser) parseList(nested bool, openLine int) ([]item, error) {
	var items []item
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}

		switch tok.kind {
		case tokEOF:
			if nested {
				return nil, p.errorf(openLine, "unclosed '[' opened here")
			}
			return items, nil
		case tokClose:
			if !nested {
				return nil, p.errorf(tok.line, "unexpected ']'")
			}
			return items, nil
		case tokKey:
		default:
			return nil, p.errorf(tok.line, "expected key, found %s %q", tok.kind, tok.text)
		}

		it, err := p.parseValue(tok)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
}

func (p *parser) parseValue(key token) (item, error) {
	tok, err := p.next()
	if err != nil {
		return item{}, err
	}

	it := item{key: key.text, line: key.line}
	switch tok.kind {
	case tokOpen:
		list, err := p.parseList(true, tok.line)
		if err != nil {
			return item{}, err
		}
		it.isSub = true
		it.list = list
	case tokString:
		it.value = graph.StringValue(tok.text)
	case tokInt:
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return item{}, p.errorf(tok.line, "integer %s out of range", tok.text)
		}
		it.value = graph.IntValue(n)
	case tokReal:
		f, err := parseReal(tok.text)
		if err != nil {
			return item{}, p.errorf(tok.line, "malformed real %q", tok.text)
		}
		it.value = graph.FloatValue(f)
	case tokKey:
		// Unsigned INF/NAN lex as keys
		if tok.text == "INF" || tok.text == "NAN" {
			f, _ := parseReal(tok.text)
			it.value = graph.FloatValue(f)
			break
		}
		fallthrough
	default:
		return item{}, p.errorf(tok.line, "missing value for key %q", key.text)
	}
	return it, nil
}

func parseReal(text string) (float64, error) {
	switch strings.TrimLeft(text, "+") {
	case "INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	case "NAN", "-NAN":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(text, 64)
}

// Decode parses a GML document into an undirected simple graph. Nodes are
// identified by their label (or by their id when no label is present).
func Decode(r io.Reader, name string) (*graph.Graph, DecodeInfo, error) {
	var info DecodeInfo
	p := &parser{lex: newLexer(r), name: name}

	top, err := p.parseList(false, 0)
	if err != nil {
		return nil, info, err
	}

	var body *item
	for i := range top {
		if top[i].key != "graph" {
			continue
		}
		if !top[i].isSub {
			return nil, info, p.errorf(top[i].line, "graph must be a list")
		}
		if body != nil {
			return nil, info, p.errorf(top[i].line, "multiple graph blocks")
		}
		body = &top[i]
	}
	if body == nil {
		return nil, info, p.errorf(0, "no graph block found")
	}

	g := graph.New()
	idToNode := make(map[int64]int64)

	var edges []item
	for _, it := range body.list {
		switch it.key {
		case "node":
			if err := p.decodeNode(g, it, idToNode); err != nil {
				return nil, info, err
			}
		case "edge":
			edges = append(edges, it)
		case "directed":
			info.Directed = isTrue(it.value)
		case "multigraph":
			info.Multigraph = isTrue(it.value)
		default:
			g.Attrs = append(g.Attrs, graph.Attr{Key: it.key, Value: it.toValue()})
		}
	}

	// Edges may precede the nodes they reference, so they go second
	for _, it := range edges {
		if err := p.decodeEdge(g, it, idToNode, &info); err != nil {
			return nil, info, err
		}
	}

	return g, info, nil
}

func (p *parser) decodeNode(g *graph.Graph, it item, idToNode map[int64]int64) error {
	if !it.isSub {
		return p.errorf(it.line, "node must be a list")
	}

	var (
		id       int64
		hasID    bool
		label    string
		hasLabel bool
		attrs    graph.Attrs
	)
	for _, field := range it.list {
		switch field.key {
		case "id":
			n, err := field.value.AsInt()
			if err != nil || field.isSub {
				return p.errorf(field.line, "node id must be an integer")
			}
			id, hasID = n, true
		case "label":
			if field.isSub {
				return p.errorf(field.line, "node label must be a scalar")
			}
			label, hasLabel = field.value.String(), true
		default:
			attrs = append(attrs, graph.Attr{Key: field.key, Value: field.toValue()})
		}
	}

	if !hasID {
		return p.errorf(it.line, "node has no id")
	}
	if _, dup := idToNode[id]; dup {
		return p.errorf(it.line, "duplicate node id %d", id)
	}
	if !hasLabel {
		label = strconv.FormatInt(id, 10)
	}

	node, err := g.AddNode(label)
	if err != nil {
		return p.errorf(it.line, "duplicate node label %q", label)
	}
	node.Attrs = attrs
	idToNode[id] = node.ID
	return nil
}

func (p *parser) decodeEdge(g *graph.Graph, it item, idToNode map[int64]int64, info *DecodeInfo) error {
	if !it.isSub {
		return p.errorf(it.line, "edge must be a list")
	}

	var (
		source, target       int64
		hasSource, hasTarget bool
		attrs                graph.Attrs
	)
	for _, field := range it.list {
		switch field.key {
		case "source", "target":
			n, err := field.value.AsInt()
			if err != nil || field.isSub {
				return p.errorf(field.line, "edge %s must be an integer node id", field.key)
			}
			if field.key == "source" {
				source, hasSource = n, true
			} else {
				target, hasTarget = n, true
			}
		default:
			attrs = append(attrs, graph.Attr{Key: field.key, Value: field.toValue()})
		}
	}

	if !hasSource || !hasTarget {
		return p.errorf(it.line, "edge needs both source and target")
	}
	u, ok := idToNode[source]
	if !ok {
		return p.errorf(it.line, "edge source %d is not a node id", source)
	}
	v, ok := idToNode[target]
	if !ok {
		return p.errorf(it.line, "edge target %d is not a node id", target)
	}

	if u == v {
		info.SelfLoops++
		return nil
	}
	if g.HasEdge(u, v) {
		info.ParallelEdges++
	}

	edge, err := g.AddEdge(u, v)
	if err != nil {
		return p.errorf(it.line, "%v", err)
	}
	for _, a := range attrs {
		edge.Attrs.Set(a.Key, a.Value)
	}
	return nil
}

func isTrue(v graph.Value) bool {
	n, err := v.AsNumber()
	return err == nil && n != 0
}

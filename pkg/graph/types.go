package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType represents the type of an attribute value
type ValueType uint8

const (
	TypeString ValueType = iota
	TypeInt
	TypeFloat
	TypeList
)

// String returns the GML-ish name of the type
func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeList:
		return "list"
	default:
		return "unknown"
	}
}

// Value represents a typed attribute value
type Value struct {
	Type ValueType
	str  string
	num  int64
	real float64
	list Attrs
}

// Helper functions to create typed values
func StringValue(s string) Value {
	return Value{Type: TypeString, str: s}
}

func IntValue(i int64) Value {
	return Value{Type: TypeInt, num: i}
}

func FloatValue(f float64) Value {
	return Value{Type: TypeFloat, real: f}
}

func ListValue(attrs Attrs) Value {
	return Value{Type: TypeList, list: attrs.Clone()}
}

// Decode methods
func (v Value) AsString() (string, error) {
	if v.Type != TypeString {
		return "", fmt.Errorf("value is not a string")
	}
	return v.str, nil
}

func (v Value) AsInt() (int64, error) {
	if v.Type != TypeInt {
		return 0, fmt.Errorf("value is not an int")
	}
	return v.num, nil
}

func (v Value) AsFloat() (float64, error) {
	if v.Type != TypeFloat {
		return 0, fmt.Errorf("value is not a float")
	}
	return v.real, nil
}

func (v Value) AsList() (Attrs, error) {
	if v.Type != TypeList {
		return nil, fmt.Errorf("value is not a list")
	}
	return v.list, nil
}

// AsNumber returns int and float values as float64. Numeric strings are
// accepted as well since hand-written GML files often quote numbers.
func (v Value) AsNumber() (float64, error) {
	switch v.Type {
	case TypeInt:
		return float64(v.num), nil
	case TypeFloat:
		return v.real, nil
	case TypeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", v.str)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value is not numeric")
	}
}

// Equal reports whether two values have the same type and content
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeString:
		return v.str == o.str
	case TypeInt:
		return v.num == o.num
	case TypeFloat:
		return v.real == o.real || (v.real != v.real && o.real != o.real)
	case TypeList:
		return v.list.Equal(o.list)
	}
	return false
}

// String renders the value for reports and logs
func (v Value) String() string {
	switch v.Type {
	case TypeString:
		return v.str
	case TypeInt:
		return strconv.FormatInt(v.num, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.real, 'g', -1, 64)
	case TypeList:
		parts := make([]string, 0, len(v.list))
		for _, a := range v.list {
			parts = append(parts, a.Key+"="+a.Value.String())
		}
		return "[" + strings.Join(parts, " ") + "]"
	}
	return ""
}

// Attr is a single key/value pair
type Attr struct {
	Key   string
	Value Value
}

// Attrs is an ordered attribute list. Order is preserved so that files are
// written back the way they were read.
type Attrs []Attr

// Get returns the value stored under key
func (a Attrs) Get(key string) (Value, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the value under key or appends it
func (a *Attrs) Set(key string, v Value) {
	for i := range *a {
		if (*a)[i].Key == key {
			(*a)[i].Value = v
			return
		}
	}
	*a = append(*a, Attr{Key: key, Value: v})
}

// Delete removes key if present
func (a *Attrs) Delete(key string) {
	for i := range *a {
		if (*a)[i].Key == key {
			*a = append((*a)[:i], (*a)[i+1:]...)
			return
		}
	}
}

// Keys returns the keys in stored order
func (a Attrs) Keys() []string {
	keys := make([]string, len(a))
	for i, attr := range a {
		keys[i] = attr.Key
	}
	return keys
}

// Clone creates a deep copy
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	clone := make(Attrs, len(a))
	for i, attr := range a {
		clone[i] = Attr{Key: attr.Key, Value: attr.Value}
		if attr.Value.Type == TypeList {
			clone[i].Value.list = attr.Value.list.Clone()
		}
	}
	return clone
}

// Equal compares two attribute lists ignoring order
func (a Attrs) Equal(o Attrs) bool {
	if len(a) != len(o) {
		return false
	}
	for _, attr := range a {
		v, ok := o.Get(attr.Key)
		if !ok || !v.Equal(attr.Value) {
			return false
		}
	}
	return true
}

// Node represents a vertex in the graph
type Node struct {
	ID    int64
	Label string
	Attrs Attrs
}

// Clone creates a deep copy of a node
func (n *Node) Clone() *Node {
	return &Node{
		ID:    n.ID,
		Label: n.Label,
		Attrs: n.Attrs.Clone(),
	}
}

// GetAttr gets an attribute value
func (n *Node) GetAttr(key string) (Value, bool) {
	return n.Attrs.Get(key)
}

// EdgeKey identifies an undirected edge. U is always the smaller node ID.
type EdgeKey struct {
	U int64
	V int64
}

// NewEdgeKey normalises the endpoint order
func NewEdgeKey(u, v int64) EdgeKey {
	if u > v {
		u, v = v, u
	}
	return EdgeKey{U: u, V: v}
}

// Edge represents an undirected relationship between two nodes
type Edge struct {
	U     int64
	V     int64
	Attrs Attrs
}

// Key returns the normalised edge key
func (e *Edge) Key() EdgeKey {
	return NewEdgeKey(e.U, e.V)
}

// Clone creates a deep copy of an edge
func (e *Edge) Clone() *Edge {
	return &Edge{
		U:     e.U,
		V:     e.V,
		Attrs: e.Attrs.Clone(),
	}
}

// GetAttr gets an attribute value
func (e *Edge) GetAttr(key string) (Value, bool) {
	return e.Attrs.Get(key)
}

package graph

import (
	"errors"
	"fmt"
	"io/fs"
)

// Common sentinel errors
var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrEdgeNotFound  = errors.New("edge not found")
	ErrDuplicateNode = errors.New("duplicate node")
	ErrSelfLoop      = errors.New("self-loops are not allowed in a simple graph")
)

// Error provides structured error information for graph operations.
type Error struct {
	Op     string // Operation that failed (e.g., "AddEdge", "RemoveEdge")
	Entity string // Entity type (e.g., "node", "edge")
	Key    string // Node label or "u--v" edge description
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.Key, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building Errors.
type ErrorBuilder struct {
	err Error
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: Error{Op: op}}
}

// Node sets the entity to "node" with the given label.
func (b *ErrorBuilder) Node(label string) *ErrorBuilder {
	b.err.Entity = "node"
	b.err.Key = label
	return b
}

// Edge sets the entity to "edge" with the given endpoint labels.
func (b *ErrorBuilder) Edge(u, v string) *ErrorBuilder {
	b.err.Entity = "edge"
	b.err.Key = u + "--" + v
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// FileError reports a file that could not be opened, read or written.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	err := e.Err
	// os errors already name the operation and path
	if pathErr, ok := err.(*fs.PathError); ok && pathErr.Path == e.Path {
		err = pathErr.Err
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ParseError reports a malformed record in an input file.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

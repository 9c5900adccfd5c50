package gml

import (
	"io"
	"os"

	"golang.org/x/exp/mmap"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// ReadFile memory-maps path and decodes it.
func ReadFile(path string) (*graph.Graph, DecodeInfo, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, DecodeInfo{}, &graph.FileError{Op: "open", Path: path, Err: err}
	}
	defer r.Close()

	return Decode(io.NewSectionReader(r, 0, int64(r.Len())), path)
}

// WriteFile encodes g into path, replacing any existing file.
func WriteFile(path string, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return &graph.FileError{Op: "create", Path: path, Err: err}
	}

	if err := Encode(f, g); err != nil {
		f.Close()
		return &graph.FileError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &graph.FileError{Op: "close", Path: path, Err: err}
	}
	return nil
}

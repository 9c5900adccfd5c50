// Package temporal reads edge changelogs and replays them onto a graph.
package temporal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/exp/mmap"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// Op is the kind of change an event applies
type Op int

const (
	OpAdd Op = iota
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// ParseOp accepts add/added/+ and remove/removed/delete/del/- in any case
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add", "added", "+":
		return OpAdd, nil
	case "remove", "removed", "delete", "del", "-":
		return OpRemove, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// Event is one edge change from a changelog
type Event struct {
	Time   time.Time
	Source string
	Target string
	Op     Op
	Line   int // Line in the changelog file, 0 when built in code
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s %s-%s", e.Time.Format(time.RFC3339), e.Op, e.Source, e.Target)
}

// Column names, matched case-insensitively
const (
	colTimestamp = "timestamp"
	colSource    = "source"
	colTarget    = "target"
	colAction    = "action"
	colOperation = "operation"
)

// ReadChangelog memory-maps path and parses it as a CSV changelog
func ReadChangelog(path string) ([]Event, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, &graph.FileError{Op: "open", Path: path, Err: err}
	}
	defer r.Close()

	return ParseChangelog(io.NewSectionReader(r, 0, int64(r.Len())), path)
}

// ParseChangelog reads a CSV changelog whose header names the timestamp,
// source, target and action (or operation) columns in any order. Events are
// returned in ascending time; events with equal times keep file order.
func ParseChangelog(r io.Reader, name string) ([]Event, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &graph.ParseError{Path: name, Msg: "empty changelog"}
	}
	if err != nil {
		return nil, csvError(name, err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		line, _ := cr.FieldPos(0)
		return nil, &graph.ParseError{Path: name, Line: line, Msg: err.Error()}
	}

	var events []Event
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(name, err)
		}

		line, _ := cr.FieldPos(0)
		ev, err := parseRecord(record, cols)
		if err != nil {
			return nil, &graph.ParseError{Path: name, Line: line, Msg: err.Error()}
		}
		ev.Line = line
		events = append(events, ev)
	}

	SortEvents(events)
	return events, nil
}

// SortEvents orders events by time, keeping the relative order of ties
func SortEvents(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		return a.Time.Compare(b.Time)
	})
}

type columns struct {
	timestamp, source, target, action int
}

func mapColumns(header []string) (columns, error) {
	cols := columns{-1, -1, -1, -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case colTimestamp:
			cols.timestamp = i
		case colSource:
			cols.source = i
		case colTarget:
			cols.target = i
		case colAction, colOperation:
			cols.action = i
		}
	}

	var missing []string
	if cols.timestamp < 0 {
		missing = append(missing, colTimestamp)
	}
	if cols.source < 0 {
		missing = append(missing, colSource)
	}
	if cols.target < 0 {
		missing = append(missing, colTarget)
	}
	if cols.action < 0 {
		missing = append(missing, colAction)
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("header missing column(s): %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRecord(record []string, cols columns) (Event, error) {
	width := max(cols.timestamp, cols.source, cols.target, cols.action) + 1
	if len(record) < width {
		return Event{}, fmt.Errorf("expected at least %d fields, got %d", width, len(record))
	}

	ts, err := ParseTimestamp(record[cols.timestamp])
	if err != nil {
		return Event{}, err
	}
	op, err := ParseOp(record[cols.action])
	if err != nil {
		return Event{}, err
	}

	ev := Event{
		Time:   ts,
		Source: strings.TrimSpace(record[cols.source]),
		Target: strings.TrimSpace(record[cols.target]),
		Op:     op,
	}
	if ev.Source == "" || ev.Target == "" {
		return Event{}, errors.New("source and target must not be empty")
	}
	return ev, nil
}

// ParseTimestamp accepts unix seconds (integer or fractional) and any layout
// dateparse recognizes. Times without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}

	// Short integers are seconds; dateparse would read them as dates
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && len(strings.TrimLeft(s, "-")) <= 10 {
		return time.Unix(n, 0).UTC(), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && strings.Contains(s, ".") {
		sec := int64(f)
		return time.Unix(sec, int64((f-float64(sec))*1e9)).UTC(), nil
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t.UTC(), nil
}

func csvError(name string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &graph.ParseError{Path: name, Line: perr.Line, Msg: perr.Err.Error()}
	}
	return &graph.FileError{Op: "read", Path: name, Err: err}
}

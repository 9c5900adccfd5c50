package visualization

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/dd0wney/graph-analysis/pkg/algorithms"
	"github.com/dd0wney/graph-analysis/pkg/graph"
	"github.com/dd0wney/graph-analysis/pkg/temporal"
)

// Mode selects what a plot encodes
type Mode string

const (
	ModeClustering Mode = "C" // Node size by clustering coefficient, colour by degree
	ModeOverlap    Mode = "N" // Edge width by neighborhood overlap
	ModePolarity   Mode = "P" // Node colour attribute, edges green or red by sign
	ModeTemporal   Mode = "T" // Edge colour by time added
)

// ParseMode accepts a mode letter in either case
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(s))); m {
	case ModeClustering, ModeOverlap, ModePolarity, ModeTemporal:
		return m, nil
	default:
		return "", fmt.Errorf("unknown plot mode %q (want C, N, P or T)", s)
	}
}

// PlotOptions controls rendering
type PlotOptions struct {
	Width     vg.Length
	Height    vg.Length
	Title     string
	ColorAttr string // Node attribute read in ModePolarity
	SignAttr  string // Edge attribute read in ModePolarity
	MaxLabels int    // Node labels are drawn only for graphs up to this size
	Canvas    LayoutConfig
	TimeRange *TimeRange // added_at colour range in ModeTemporal; scanned from the plotted edges when nil
}

// TimeRange bounds the added_at stamps coloured by a temporal plot
type TimeRange struct {
	First, Last int64
	found       bool
}

// Include widens the range to cover stamp
func (r *TimeRange) Include(stamp int64) {
	if !r.found || stamp < r.First {
		r.First = stamp
	}
	if !r.found || stamp > r.Last {
		r.Last = stamp
	}
	r.found = true
}

// IncludeEdges widens the range to cover every stamped edge of g
func (r *TimeRange) IncludeEdges(g *graph.Graph) {
	for _, edge := range g.Edges() {
		if stamp, ok := addedAt(edge); ok {
			r.Include(stamp)
		}
	}
}

// DefaultPlotOptions returns 8x6 inch plots over an 800x600 layout canvas
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		Width:     8 * vg.Inch,
		Height:    6 * vg.Inch,
		ColorAttr: "color",
		SignAttr:  "sign",
		MaxLabels: 60,
		Canvas:    LayoutConfig{Width: 800, Height: 600},
	}
}

var (
	defaultNodeColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	defaultEdgeColor = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	positiveColor    = color.RGBA{G: 150, A: 255}
	negativeColor    = color.RGBA{R: 200, A: 255}
)

// BuildPlot draws g at the given positions
func BuildPlot(g *graph.Graph, mode Mode, positions map[int64]Position, opts PlotOptions) (*plot.Plot, error) {
	p := plot.New()
	p.HideAxes()
	p.Title.Text = opts.Title

	styler, err := newStyler(g, mode, opts)
	if err != nil {
		return nil, err
	}

	for _, edge := range g.Edges() {
		from, okFrom := positions[edge.U]
		to, okTo := positions[edge.V]
		if !okFrom || !okTo {
			continue
		}
		line, err := plotter.NewLine(plotter.XYs{{X: from.X, Y: from.Y}, {X: to.X, Y: to.Y}})
		if err != nil {
			return nil, fmt.Errorf("edge %s-%s: %w", g.Label(edge.U), g.Label(edge.V), err)
		}
		line.LineStyle.Color, line.LineStyle.Width = styler.edge(edge)
		p.Add(line)
	}

	var nodes []*graph.Node
	var xys plotter.XYs
	for _, node := range g.Nodes() {
		pos, ok := positions[node.ID]
		if !ok {
			continue
		}
		nodes = append(nodes, node)
		xys = append(xys, plotter.XY{X: pos.X, Y: pos.Y})
	}

	if len(xys) > 0 {
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("nodes: %w", err)
		}
		scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			c, r := styler.node(nodes[i])
			return draw.GlyphStyle{Color: c, Radius: r, Shape: draw.CircleGlyph{}}
		}
		p.Add(scatter)

		if len(nodes) <= opts.MaxLabels {
			labels := make([]string, len(nodes))
			for i, node := range nodes {
				labels[i] = node.Label
			}
			names, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
			if err != nil {
				return nil, fmt.Errorf("labels: %w", err)
			}
			names.Offset = vg.Point{X: vg.Points(6), Y: vg.Points(4)}
			p.Add(names)
		}
	}

	// Fixed ranges keep every frame of an animation aligned
	p.X.Min, p.X.Max = 0, opts.Canvas.Width
	p.Y.Min, p.Y.Max = 0, opts.Canvas.Height
	return p, nil
}

// RenderPlot draws g and saves it to path; the extension picks the format
func RenderPlot(g *graph.Graph, mode Mode, positions map[int64]Position, opts PlotOptions, path string) error {
	p, err := BuildPlot(g, mode, positions, opts)
	if err != nil {
		return fmt.Errorf("plot %s: %w", mode, err)
	}
	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return &graph.FileError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// RenderImage draws g into an in-memory raster image
func RenderImage(g *graph.Graph, mode Mode, positions map[int64]Position, opts PlotOptions) (image.Image, error) {
	p, err := BuildPlot(g, mode, positions, opts)
	if err != nil {
		return nil, fmt.Errorf("plot %s: %w", mode, err)
	}
	c := vgimg.New(opts.Width, opts.Height)
	p.Draw(draw.New(c))
	return c.Image(), nil
}

// styler maps nodes and edges to visual properties for one mode
type styler struct {
	mode       Mode
	opts       PlotOptions
	degreeMap  palette.ColorMap
	timeMap    palette.ColorMap
	categories map[string]int
	degree     func(id int64) int
}

func newStyler(g *graph.Graph, mode Mode, opts PlotOptions) (*styler, error) {
	s := &styler{mode: mode, opts: opts, degree: g.Degree}

	switch mode {
	case ModeClustering:
		minDeg, maxDeg := 0, 0
		for i, id := range g.NodeIDs() {
			d := g.Degree(id)
			if i == 0 || d < minDeg {
				minDeg = d
			}
			maxDeg = max(maxDeg, d)
		}
		s.degreeMap = newColorMap(float64(minDeg), float64(maxDeg))

	case ModeTemporal:
		r := opts.TimeRange
		if r == nil {
			r = &TimeRange{}
			r.IncludeEdges(g)
		}
		s.timeMap = newColorMap(float64(r.First), float64(r.Last))

	case ModePolarity:
		s.categories = make(map[string]int)

	case ModeOverlap:

	default:
		return nil, fmt.Errorf("unknown plot mode %q", mode)
	}
	return s, nil
}

func (s *styler) node(node *graph.Node) (color.Color, vg.Length) {
	radius := vg.Points(5)

	switch s.mode {
	case ModeClustering:
		cc := 0.0
		if v, ok := node.GetAttr(algorithms.AttrClustering); ok {
			cc, _ = v.AsNumber()
		}
		return colorAt(s.degreeMap, float64(s.degree(node.ID))), vg.Points(3 + 9*cc)

	case ModePolarity:
		v, ok := node.GetAttr(s.opts.ColorAttr)
		if !ok {
			return color.Gray{Y: 128}, radius
		}
		return s.categoryColor(v.String()), radius
	}
	return defaultNodeColor, radius
}

func (s *styler) edge(edge *graph.Edge) (color.Color, vg.Length) {
	width := vg.Points(1)

	switch s.mode {
	case ModeOverlap:
		overlap := 0.0
		if v, ok := edge.GetAttr(algorithms.AttrOverlap); ok {
			overlap, _ = v.AsNumber()
		}
		return defaultEdgeColor, vg.Points(0.5 + 4*overlap)

	case ModePolarity:
		sign, err := algorithms.EdgeSign(edge, s.opts.SignAttr)
		switch {
		case err != nil:
			return defaultEdgeColor, width
		case sign < 0:
			return negativeColor, width
		default:
			return positiveColor, width
		}

	case ModeTemporal:
		if stamp, ok := addedAt(edge); ok {
			return colorAt(s.timeMap, float64(stamp)), vg.Points(1.5)
		}
	}
	return defaultEdgeColor, width
}

// categoryColor resolves colour names and #rrggbb values, and gives any other
// value a palette colour in order of first appearance.
func (s *styler) categoryColor(value string) color.Color {
	if c, ok := parseColor(value); ok {
		return c
	}
	idx, ok := s.categories[value]
	if !ok {
		idx = len(s.categories)
		s.categories[value] = idx
	}
	return plotutil.Color(idx)
}

var namedColors = map[string]color.RGBA{
	"black":  {A: 255},
	"white":  {R: 255, G: 255, B: 255, A: 255},
	"gray":   {R: 128, G: 128, B: 128, A: 255},
	"grey":   {R: 128, G: 128, B: 128, A: 255},
	"red":    {R: 220, G: 40, B: 40, A: 255},
	"green":  {R: 40, G: 160, B: 60, A: 255},
	"blue":   {R: 40, G: 80, B: 220, A: 255},
	"yellow": {R: 230, G: 200, B: 20, A: 255},
	"orange": {R: 240, G: 140, B: 20, A: 255},
	"purple": {R: 130, G: 50, B: 170, A: 255},
	"pink":   {R: 240, G: 120, B: 180, A: 255},
	"brown":  {R: 140, G: 90, B: 40, A: 255},
	"cyan":   {G: 190, B: 210, A: 255},
}

func parseColor(s string) (color.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if len(s) == 7 && s[0] == '#' {
		var r, g, b uint8
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err == nil {
			return color.RGBA{R: r, G: g, B: b, A: 255}, true
		}
	}
	return nil, false
}

func addedAt(edge *graph.Edge) (int64, bool) {
	v, ok := edge.GetAttr(temporal.AttrAddedAt)
	if !ok {
		return 0, false
	}
	n, err := v.AsNumber()
	if err != nil {
		return 0, false
	}
	return int64(n), true
}

func newColorMap(lo, hi float64) palette.ColorMap {
	cm := moreland.SmoothBlueRed()
	if hi <= lo {
		hi = lo + 1
	}
	cm.SetMax(hi)
	cm.SetMin(lo)
	return cm
}

func colorAt(cm palette.ColorMap, v float64) color.Color {
	v = min(max(v, cm.Min()), cm.Max())
	c, err := cm.At(v)
	if err != nil {
		return defaultNodeColor
	}
	return c
}

// Package report renders the results of an analysis run for the terminal.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dd0wney/graph-analysis/pkg/algorithms"
	"github.com/dd0wney/graph-analysis/pkg/graph"
	"github.com/dd0wney/graph-analysis/pkg/temporal"
)

// maxListed caps the rows printed for long lists such as removed edges
const maxListed = 10

// Report collects the results of the steps that ran. Nil sections are omitted.
type Report struct {
	RunID string
	Input string
	Seed  int64

	Loaded            algorithms.ConnectivityStats
	AverageClustering float64

	Partition  *algorithms.CommunityDetectionResult
	Homophily  *algorithms.HomophilyResult
	Balance    *algorithms.BalanceResult
	Robustness *algorithms.RobustnessResult
	Failures   *algorithms.FailureResult
	Temporal   *temporal.ReplayResult

	Outputs  []string // Files written
	Warnings []string

	label func(id int64) string
}

// New starts a report for g, which resolves node ids to labels
func New(runID, input string, seed int64, g *graph.Graph) *Report {
	return &Report{RunID: runID, Input: input, Seed: seed, label: g.Label}
}

// AddOutput records a file written by the run
func (r *Report) AddOutput(kind, path string) {
	r.Outputs = append(r.Outputs, kind+": "+path)
}

// Warn records a non-fatal problem to show at the end of the report
func (r *Report) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	key     lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	dim     lipgloss.Style
	section lipgloss.Style
}

func newStyles(re *lipgloss.Renderer) styles {
	return styles{
		title: re.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")),
		header: re.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")),
		key: re.NewStyle().
			Width(24),
		good: re.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true),
		bad: re.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true),
		dim: re.NewStyle().
			Foreground(lipgloss.Color("#888888")),
		section: re.NewStyle().
			MarginLeft(2),
	}
}

// Render writes the report to w. Colours are dropped when w is not a terminal.
func (r *Report) Render(w io.Writer) error {
	st := newStyles(lipgloss.NewRenderer(w))
	sb := &sectionBuilder{st: st}

	var s strings.Builder
	s.WriteString(st.title.Render("Graph analysis: "+r.Input) + "\n")
	s.WriteString(st.dim.Render(fmt.Sprintf("run %s, seed %d", r.RunID, r.Seed)) + "\n")

	s.WriteString(r.graphSection(sb))
	if r.Partition != nil {
		s.WriteString(r.partitionSection(sb))
	}
	if r.Homophily != nil {
		s.WriteString(r.homophilySection(sb))
	}
	if r.Balance != nil {
		s.WriteString(r.balanceSection(sb))
	}
	if r.Robustness != nil {
		s.WriteString(r.robustnessSection(sb))
	}
	if r.Failures != nil {
		s.WriteString(r.failuresSection(sb))
	}
	if r.Temporal != nil {
		s.WriteString(r.temporalSection(sb))
	}
	if len(r.Outputs) > 0 {
		sb.start("Outputs")
		for _, out := range r.Outputs {
			sb.line(out)
		}
		s.WriteString(sb.end())
	}
	if len(r.Warnings) > 0 {
		sb.start("Warnings")
		for _, warning := range r.Warnings {
			sb.line(st.bad.Render("! ") + warning)
		}
		s.WriteString(sb.end())
	}

	_, err := io.WriteString(w, s.String())
	return err
}

// sectionBuilder accumulates one titled block of key/value lines
type sectionBuilder struct {
	st   styles
	body strings.Builder
	name string
}

func (b *sectionBuilder) start(name string) {
	b.name = name
	b.body.Reset()
}

func (b *sectionBuilder) kv(key string, value any) {
	b.line(b.st.key.Render(key) + formatValue(value))
}

func (b *sectionBuilder) line(text string) {
	b.body.WriteString(text)
	b.body.WriteString("\n")
}

func (b *sectionBuilder) end() string {
	return "\n" + b.st.header.Render(b.name) + "\n" + b.st.section.Render(strings.TrimRight(b.body.String(), "\n")) + "\n"
}

func (b *sectionBuilder) verdict(ok bool, yes, no string) string {
	if ok {
		return b.st.good.Render(yes)
	}
	return b.st.bad.Render(no)
}

func (r *Report) graphSection(sb *sectionBuilder) string {
	sb.start("Graph")
	sb.kv("Nodes", r.Loaded.Nodes)
	sb.kv("Edges", r.Loaded.Edges)
	sb.kv("Components", r.Loaded.Components)
	sb.kv("Largest component", fmt.Sprintf("%d (%.1f%%)", r.Loaded.LargestComponent, 100*r.Loaded.LargestFraction()))
	sb.kv("Avg clustering", r.AverageClustering)
	sb.kv("Avg shortest path", r.Loaded.AvgShortestPath)
	sb.kv("Mean betweenness", r.Loaded.MeanBetweenness)
	return sb.end()
}

func (r *Report) partitionSection(sb *sectionBuilder) string {
	p := r.Partition
	sb.start("Components")
	sb.kv("Communities", len(p.Communities))
	sb.kv("Modularity", p.Modularity)
	sb.kv("Edges removed", len(p.Removed))

	rows := make([][]string, 0, len(p.Communities))
	for _, c := range p.Communities {
		rows = append(rows, []string{
			strconv.Itoa(c.ID),
			strconv.Itoa(c.Size),
			formatFloat(c.Density),
			truncateList(c.Labels, maxListed),
		})
	}
	sb.line(table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "Size", "Density", "Members").
		Rows(rows...).
		String())

	for i, e := range p.Removed {
		if i == maxListed {
			sb.line(sb.st.dim.Render(fmt.Sprintf("... %d more removed edges", len(p.Removed)-maxListed)))
			break
		}
		sb.line(fmt.Sprintf("removed %s -- %s (betweenness %s)", e.ULabel, e.VLabel, formatFloat(e.Score)))
	}
	return sb.end()
}

func (r *Report) homophilySection(sb *sectionBuilder) string {
	h := r.Homophily
	sb.start("Homophily")
	sb.kv("Attribute", h.Attribute)
	sb.kv("Connected pairs", fmt.Sprintf("n=%d mean=%s", h.Connected.N, formatFloat(h.Connected.Mean)))
	sb.kv("Unconnected pairs", fmt.Sprintf("n=%d mean=%s", h.Unconnected.N, formatFloat(h.Unconnected.Mean)))
	sb.kv("Welch t", fmt.Sprintf("%s (df %s)", formatFloat(h.T), formatFloat(h.DF)))
	sb.kv("p-value", h.PValue)
	sb.kv("Cohen's d", h.CohensD)
	if h.SkippedNodes > 0 {
		sb.kv("Nodes without attribute", h.SkippedNodes)
	}
	sb.kv("Result", sb.verdict(h.Homophilous,
		fmt.Sprintf("homophilous (p < %s)", formatFloat(h.Alpha)),
		fmt.Sprintf("no evidence of homophily at alpha %s", formatFloat(h.Alpha))))
	return sb.end()
}

func (r *Report) balanceSection(sb *sectionBuilder) string {
	b := r.Balance
	sb.start("Structural balance")
	sb.kv("Sign attribute", b.Attribute)
	sb.kv("Negative edges", b.NegativeEdges)
	sb.kv("Triangles", b.Triads)
	sb.kv("Unbalanced triads", len(b.Violations))
	sb.kv("Triads", sb.verdict(b.TriadsBalanced(), "all balanced", "not all balanced"))
	sb.kv("Factions", sb.verdict(b.Balanced, "balanced", "not balanced"))

	if b.Balanced {
		for i, faction := range b.Factions {
			sb.kv(fmt.Sprintf("Faction %d", i+1), truncateList(r.labels(faction), maxListed))
		}
	}
	for i, triad := range b.Violations {
		if i == maxListed {
			sb.line(sb.st.dim.Render(fmt.Sprintf("... %d more unbalanced triads", len(b.Violations)-maxListed)))
			break
		}
		sb.line(fmt.Sprintf("unbalanced %s %s %s signs %+d %+d %+d",
			triad.Labels[0], triad.Labels[1], triad.Labels[2],
			triad.Signs[0], triad.Signs[1], triad.Signs[2]))
	}
	return sb.end()
}

func (r *Report) robustnessSection(sb *sectionBuilder) string {
	rb := r.Robustness
	sb.start("Robustness")
	sb.kv("Failures per trial", rb.Failures)
	sb.kv("Trials", rb.Trials)
	sb.kv("Components", fmt.Sprintf("mean %s, min %d, max %d (baseline %d)",
		formatFloat(rb.MeanComponents), rb.MinComponents, rb.MaxComponents, rb.Baseline.Components))
	sb.kv("Largest component share", rb.MeanLargestFrac)
	sb.kv("Avg shortest path", rb.MeanAvgShortest)
	sb.kv("Trials disconnected", fmt.Sprintf("%d of %d", rb.DisconnectedTrials, rb.Trials))
	return sb.end()
}

func (r *Report) failuresSection(sb *sectionBuilder) string {
	f := r.Failures
	sb.start("Simulated failures")
	removed := fmt.Sprintf("%d", len(f.Removed))
	if f.Clamped {
		removed += fmt.Sprintf(" (requested %d)", f.Requested)
	}
	sb.kv("Edges removed", removed)
	sb.kv("Components", fmt.Sprintf("%d -> %d (%+d)", f.Before.Components, f.After.Components, f.Delta.Components))
	sb.kv("Largest component", fmt.Sprintf("%d -> %d (%+d)", f.Before.LargestComponent, f.After.LargestComponent, f.Delta.LargestComponent))
	sb.kv("Avg shortest path", fmt.Sprintf("%s -> %s", formatValue(f.Before.AvgShortestPath), formatValue(f.After.AvgShortestPath)))
	sb.kv("Max edge betweenness", fmt.Sprintf("%s -> %s", formatFloat(f.Before.MaxEdgeBetweenness), formatFloat(f.After.MaxEdgeBetweenness)))

	for i, e := range f.Removed {
		if i == maxListed {
			sb.line(sb.st.dim.Render(fmt.Sprintf("... %d more", len(f.Removed)-maxListed)))
			break
		}
		line := fmt.Sprintf("failed %s -- %s", e.ULabel, e.VLabel)
		if i < len(f.Detours) {
			if detour := f.Detours[i]; detour != nil {
				line += ", detour " + strings.Join(detour, " -> ")
			} else {
				line += ", endpoints disconnected"
			}
		}
		sb.line(line)
	}
	return sb.end()
}

func (r *Report) temporalSection(sb *sectionBuilder) string {
	t := r.Temporal
	sb.start("Temporal replay")
	sb.kv("Events", t.Events)
	sb.kv("Added", t.Added)
	sb.kv("Removed", t.Removed)
	sb.kv("Skipped", t.Skipped)
	if t.Events > 0 {
		sb.kv("From", t.First.Time.UTC().Format("2006-01-02 15:04:05"))
		sb.kv("To", t.Last.Time.UTC().Format("2006-01-02 15:04:05"))
	}
	return sb.end()
}

func (r *Report) labels(ids []int64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if r.label != nil {
			out[i] = r.label(id)
		} else {
			out[i] = strconv.FormatInt(id, 10)
		}
	}
	return out
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return formatFloat(x)
	case *float64:
		if x == nil {
			return "n/a"
		}
		return formatFloat(*x)
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func truncateList(items []string, n int) string {
	if len(items) <= n {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:n], ", ") + fmt.Sprintf(", ... (+%d)", len(items)-n)
}

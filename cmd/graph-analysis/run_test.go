package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/gif"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/graph-analysis/pkg/algorithms"
	"github.com/dd0wney/graph-analysis/pkg/gml"
	"github.com/dd0wney/graph-analysis/pkg/graph"
)

const (
	cliquesGML   = "testdata/two_cliques.gml"
	changelogCSV = "testdata/changelog.csv"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// logLines decodes the JSON log written to stderr
func logLines(t *testing.T, stderr string) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		lines = append(lines, entry)
	}
	return lines
}

func TestRun_Report(t *testing.T) {
	stdout, stderr, err := execute(t, cliquesGML, "--seed", "1")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Graph analysis: "+cliquesGML)
	assert.Regexp(t, `Nodes\s+6`, stdout)
	assert.Regexp(t, `Edges\s+7`, stdout)
	assert.Regexp(t, `Mean betweenness\s+2\.0000`, stdout)

	lines := logLines(t, stderr)
	require.NotEmpty(t, lines)
	fields, ok := lines[0]["fields"].(map[string]any)
	require.True(t, ok, "log entry has fields: %v", lines[0])
	assert.NotEmpty(t, fields["run_id"])
}

func TestRun_OutputRoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.gml")
	_, _, err := execute(t, cliquesGML, "--seed", "1", "--output", out)
	require.NoError(t, err)

	original, _, err := gml.ReadFile(cliquesGML)
	require.NoError(t, err)
	written, _, err := gml.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, graph.Equivalent(original, written))

	// Annotations are written out
	a, ok := written.Node("a")
	require.True(t, ok)
	_, ok = a.GetAttr(algorithms.AttrClustering)
	assert.True(t, ok)
}

func TestRun_Components(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.gml")
	stdout, _, err := execute(t, cliquesGML, "--seed", "1", "--components", "2", "--output", out)
	require.NoError(t, err)

	assert.Regexp(t, `Communities\s+2`, stdout)
	assert.Contains(t, stdout, "removed c -- d (betweenness 9.0000)")

	written, _, err := gml.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, algorithms.CountComponents(written))

	a, _ := written.Node("a")
	f, _ := written.Node("f")
	ca, ok := a.GetAttr(algorithms.AttrCommunity)
	require.True(t, ok)
	cf, ok := f.GetAttr(algorithms.AttrCommunity)
	require.True(t, ok)
	assert.False(t, ca.Equal(cf))
}

func TestRun_HomophilyAndBalance(t *testing.T) {
	stdout, _, err := execute(t, cliquesGML, "--seed", "1", "--verify_homophily", "--verify_balanced_graph")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Homophily")
	assert.Contains(t, stdout, "homophilous (p < 0.0500)")
	assert.Contains(t, stdout, "Structural balance")
	assert.Regexp(t, `Triads\s+all balanced`, stdout)
	assert.Regexp(t, `Factions\s+balanced`, stdout)
	assert.Regexp(t, `Negative edges\s+1`, stdout)
	assert.Contains(t, stdout, "a, b, c")
}

func TestRun_HomophilyAlphaFlag(t *testing.T) {
	stdout, _, err := execute(t, cliquesGML, "--seed", "1", "--verify_homophily", "--homophily_alpha", "0.0125")
	require.NoError(t, err)
	assert.Regexp(t, `(p < |alpha )0\.0125`, stdout)
}

func TestRun_HomophilyMissingAttribute(t *testing.T) {
	stdout, _, err := execute(t, cliquesGML, "--seed", "1", "--verify_homophily", "--homophily_attr", "club")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Warnings")
	assert.Contains(t, stdout, "homophily:")
}

func TestRun_FailuresReproducible(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.gml")
	second := filepath.Join(dir, "second.gml")

	stdout, _, err := execute(t, cliquesGML, "--seed", "42", "--simulate_failures", "3", "--output", first)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Simulated failures")

	_, _, err = execute(t, cliquesGML, "--seed", "42", "--simulate_failures", "3", "--output", second)
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	written, _, err := gml.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, 4, written.EdgeCount())
}

func TestRun_ZeroFailuresLeaveGraph(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.gml")
	stdout, _, err := execute(t, cliquesGML, "--seed", "1", "--simulate_failures", "0", "--output", out)
	require.NoError(t, err)
	assert.Regexp(t, `Edges removed\s+0`, stdout)

	written, _, err := gml.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 7, written.EdgeCount())
}

func TestRun_Robustness(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "analysis.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("robustness:\n  trials: 4\n"), 0o644))

	stdout, _, err := execute(t, cliquesGML, "--seed", "9", "--config", cfg, "--robustness_check", "1")
	require.NoError(t, err)
	assert.Regexp(t, `Trials\s+4`, stdout)

	// Flags override the config file
	stdout, _, err = execute(t, cliquesGML, "--seed", "9", "--config", cfg, "--robustness_check", "1", "--robustness_trials", "6")
	require.NoError(t, err)
	assert.Regexp(t, `Trials\s+6`, stdout)
}

func TestRun_TemporalPlotAndMetrics(t *testing.T) {
	dir := t.TempDir()
	anim := filepath.Join(dir, "replay.gif")
	plotPath := filepath.Join(dir, "temporal.png")
	metricsPath := filepath.Join(dir, "run.prom")

	stdout, _, err := execute(t, cliquesGML,
		"--seed", "3",
		"--temporal_simulation", changelogCSV,
		"--temporal_gif", anim,
		"--plot", "T",
		"--plot_out", plotPath,
		"--metrics_out", metricsPath,
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Temporal replay")
	assert.Regexp(t, `Added\s+2`, stdout)
	assert.Regexp(t, `Skipped\s+1`, stdout)
	assert.Contains(t, stdout, "animation: "+anim)
	assert.Contains(t, stdout, "plot: "+plotPath)

	f, err := os.Open(anim)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, decoded.Image, 4)

	info, err := os.Stat(plotPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `graph_analysis_temporal_events_total{op="add",result="applied"} 2`)
	assert.Contains(t, string(data), `graph_analysis_frames_rendered_total 4`)
	assert.Contains(t, string(data), `graph_analysis_steps_total{status="ok",step="temporal"} 1`)
}

func TestRun_DefaultPlotPath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	input := filepath.Join(wd, cliquesGML)

	t.Chdir(dir)

	stdout, _, err := execute(t, input, "--seed", "1", "--plot", "c")
	require.NoError(t, err)
	assert.Contains(t, stdout, "plot: plot_C.png")

	_, err = os.Stat(filepath.Join(dir, "plot_C.png"))
	assert.NoError(t, err)
}

func TestRun_RandomSeedIsLogged(t *testing.T) {
	orig := now
	now = func() time.Time { return time.Unix(0, 12345) }
	t.Cleanup(func() { now = orig })

	stdout, stderr, err := execute(t, cliquesGML)
	require.NoError(t, err)
	assert.Contains(t, stdout, "seed 12345")
	assert.Contains(t, stderr, "picked random seed")
}

func TestRun_LogLevel(t *testing.T) {
	_, stderr, err := execute(t, cliquesGML, "--seed", "1", "--log-level", "error")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(stderr))
}

func TestRun_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.gml")
	_, stderr, err := execute(t, missing)
	require.Error(t, err)

	var ferr *graph.FileError
	require.True(t, errors.As(err, &ferr), "got %T: %v", err, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, 1, strings.Count(err.Error(), missing), "path named once in %q", err.Error())
	assert.Contains(t, stderr, "analysis failed")
}

func TestRun_MalformedGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gml")
	require.NoError(t, os.WriteFile(path, []byte("graph [\n node [ id 0 label \"a\" \n"), 0o644))

	_, _, err := execute(t, path)
	var perr *graph.ParseError
	require.True(t, errors.As(err, &perr), "got %T: %v", err, err)
	assert.Equal(t, path, perr.Path)
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"no graph", nil, "exactly one graph file"},
		{"two graphs", []string{cliquesGML, cliquesGML}, "exactly one graph file"},
		{"unknown flag", []string{cliquesGML, "--frobnicate"}, "frobnicate"},
		{"non-numeric components", []string{cliquesGML, "--components", "two"}, "components"},
		{"too many components", []string{cliquesGML, "--components", "7"}, "exceeds node count"},
		{"negative failures", []string{cliquesGML, "--simulate_failures", "-1"}, "--simulate_failures"},
		{"negative robustness", []string{cliquesGML, "--robustness_check", "-2"}, "--robustness_check"},
		{"unknown plot mode", []string{cliquesGML, "--plot", "X"}, "unknown plot mode"},
		{"temporal plot without changelog", []string{cliquesGML, "--plot", "T"}, "--plot T: requires --temporal_simulation"},
		{"gif without changelog", []string{cliquesGML, "--temporal_gif", "x.gif"}, "--temporal_gif: requires --temporal_simulation"},
		{"gif extension", []string{cliquesGML, "--temporal_simulation", changelogCSV, "--temporal_gif", "x.png"}, "must end in .gif"},
		{"plot_out without plot", []string{cliquesGML, "--plot_out", "x.png"}, "--plot_out: requires --plot"},
		{"plot_out format", []string{cliquesGML, "--plot", "C", "--plot_out", "x.bmp"}, "unsupported image format"},
		{"empty graph path", []string{""}, "graph: required value is empty"},
		{"zero trials", []string{cliquesGML, "--robustness_trials", "0"}, "--robustness_trials: value 0 must be positive"},
		{"alpha out of range", []string{cliquesGML, "--homophily_alpha", "1.5"}, "--homophily_alpha: value 1.5 must be strictly between 0 and 1"},
		{"empty homophily attribute", []string{cliquesGML, "--homophily_attr", ""}, "--homophily_attr: required value is empty"},
		{"empty sign attribute", []string{cliquesGML, "--sign_attr", ""}, "--sign_attr: required value is empty"},
		{"bad sign attribute", []string{cliquesGML, "--sign_attr", "my sign"}, "balance.sign_attribute"},
		{"bad log level", []string{cliquesGML, "--log-level", "loud"}, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)

			var usage *usageError
			require.True(t, errors.As(err, &usage), "want usage error, got %T: %v", err, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/plot/vg"

	"github.com/dd0wney/graph-analysis/pkg/algorithms"
	"github.com/dd0wney/graph-analysis/pkg/config"
	"github.com/dd0wney/graph-analysis/pkg/gml"
	"github.com/dd0wney/graph-analysis/pkg/graph"
	"github.com/dd0wney/graph-analysis/pkg/logging"
	"github.com/dd0wney/graph-analysis/pkg/metrics"
	"github.com/dd0wney/graph-analysis/pkg/report"
	"github.com/dd0wney/graph-analysis/pkg/temporal"
	"github.com/dd0wney/graph-analysis/pkg/visualization"
)

// Replaced in tests
var (
	lookupEnv = os.Getenv
	newRunID  = func() string { return uuid.NewString() }
	now       = time.Now
)

// app runs one analysis pipeline
type app struct {
	opts    *options
	cfg     *config.Config
	stdout  io.Writer
	logger  logging.Logger
	metrics *metrics.Registry
	runID   string
	rng     *rand.Rand

	g         *graph.Graph
	report    *report.Report
	positions map[int64]visualization.Position
	timeRange *visualization.TimeRange
}

func newApp(opts *options, cfg *config.Config, stdout, stderr io.Writer) *app {
	runID := newRunID()
	level, _ := logging.ParseLevel(cfg.LogLevel)

	return &app{
		opts:    opts,
		cfg:     cfg,
		stdout:  stdout,
		logger:  logging.NewJSONLogger(stderr, level).With(logging.RunID(runID)),
		metrics: metrics.NewRegistry(),
		runID:   runID,
	}
}

// run executes the selected steps in order. Failures are logged here; a
// usageError is passed back unchanged so main can print usage.
func (a *app) run() error {
	err := a.pipeline()
	if err != nil {
		a.logger.Error("analysis failed", logging.Error(err))
	}

	if a.opts.metricsOut != "" {
		if merr := a.metrics.WriteTextfile(a.opts.metricsOut); merr != nil {
			a.logger.Error("failed to write metrics", logging.Path(a.opts.metricsOut), logging.Error(merr))
			if err == nil {
				err = merr
			}
		}
	}
	return err
}

func (a *app) pipeline() error {
	seed := a.cfg.Seed
	if seed == 0 {
		seed = now().UnixNano()
		a.logger.Info("picked random seed", logging.Seed(seed))
	}
	a.cfg.Seed = seed
	a.rng = rand.New(rand.NewSource(seed))

	a.logger.Info("starting analysis",
		logging.Path(a.opts.graphPath),
		logging.Seed(seed),
	)

	steps := []struct {
		name    string
		enabled bool
		fn      func() error
	}{
		{"load", true, a.load},
		{"annotate", true, a.annotate},
		{"components", a.opts.components > 0, a.partition},
		{"homophily", a.opts.verifyHomophily, a.homophily},
		{"balance", a.opts.verifyBalance, a.balance},
		{"robustness", a.opts.robustnessCheck > 0, a.robustness},
		{"failures", a.opts.failuresSet, a.failures},
		{"temporal", a.opts.temporalSimulation != "", a.replay},
		{"plot", a.opts.plot != "", a.plot},
		{"output", a.opts.output != "", a.output},
	}

	for _, s := range steps {
		if !s.enabled {
			continue
		}
		if err := a.step(s.name, s.fn); err != nil {
			return err
		}
	}

	return a.report.Render(a.stdout)
}

// step times fn, logs it and records it in the metrics registry
func (a *app) step(name string, fn func() error) error {
	timer := logging.StartTimer(a.logger, name, logging.Step(name))
	err := fn()

	var elapsed time.Duration
	if err != nil {
		elapsed = timer.EndError(err)
	} else {
		elapsed = timer.End()
	}
	a.metrics.RecordStep(name, err, elapsed)

	if err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			return err
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (a *app) load() error {
	g, info, err := gml.ReadFile(a.opts.graphPath)
	if err != nil {
		return err
	}
	a.g = g
	a.report = report.New(a.runID, a.opts.graphPath, a.cfg.Seed, g)

	if info.Directed {
		a.warn("directed graph treated as undirected")
	}
	if info.SelfLoops > 0 {
		a.warn("dropped %d self-loop edges", info.SelfLoops)
	}
	if info.ParallelEdges > 0 {
		a.warn("merged %d parallel edges", info.ParallelEdges)
	}
	if g.NodeCount() == 0 {
		a.warn("empty graph")
	}

	a.logger.Info("graph loaded", logging.Nodes(g.NodeCount()), logging.Edges(g.EdgeCount()))
	return nil
}

func (a *app) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.logger.Warn(msg)
	a.report.Warn("%s", msg)
}

func (a *app) annotate() error {
	algorithms.AnnotateClustering(a.g)
	algorithms.AnnotateOverlap(a.g)

	stats := algorithms.ComputeStats(a.g)
	a.report.Loaded = stats
	a.report.AverageClustering = algorithms.AverageClusteringCoefficient(a.g)

	a.metrics.RecordGraph("loaded", stats.Nodes, stats.Edges, stats.Components)
	a.metrics.AverageClustering.Set(a.report.AverageClustering)
	return nil
}

func (a *app) partition() error {
	result, err := algorithms.PartitionComponents(a.g, a.opts.components)
	switch {
	case errors.Is(err, algorithms.ErrTooManyComponents), errors.Is(err, algorithms.ErrAlreadySplit):
		return &usageError{err: fmt.Errorf("--components %d: %w", a.opts.components, err)}
	case err != nil:
		return err
	}
	a.report.Partition = result

	for _, e := range result.Removed {
		a.logger.Debug("removed edge", logging.Edge(e.ULabel, e.VLabel), logging.Float64("betweenness", e.Score))
	}
	a.metrics.RecordEdgesRemoved("partition", len(result.Removed))
	a.metrics.Modularity.Set(result.Modularity)
	a.metrics.RecordGraph("partitioned", a.g.NodeCount(), a.g.EdgeCount(), len(result.Communities))

	a.logger.Info("graph partitioned",
		logging.Count(len(result.Communities)),
		logging.Int("edges_removed", len(result.Removed)),
		logging.Float64("modularity", result.Modularity),
	)
	return nil
}

func (a *app) homophily() error {
	result, err := algorithms.VerifyHomophily(a.g, a.cfg.Homophily.Attribute, a.cfg.Homophily.Alpha)
	if errors.Is(err, algorithms.ErrInsufficientData) {
		a.warn("homophily: %v", err)
		return nil
	}
	if err != nil {
		return err
	}
	a.report.Homophily = result
	a.metrics.HomophilyPValue.Set(result.PValue)
	return nil
}

func (a *app) balance() error {
	result, err := algorithms.VerifyBalance(a.g, a.cfg.Balance.SignAttribute)
	if err != nil {
		return err
	}
	a.report.Balance = result
	a.metrics.BalanceViolations.Set(float64(len(result.Violations)))
	return nil
}

func (a *app) robustness() error {
	result, err := algorithms.Robustness(a.g, a.opts.robustnessCheck, a.cfg.Robustness.Trials, a.rng)
	if err != nil {
		return err
	}
	a.report.Robustness = result
	a.metrics.RecordRobustness(result.Trials, result.MeanComponents, result.MeanLargestFrac)
	return nil
}

func (a *app) failures() error {
	result, err := algorithms.SimulateFailures(a.g, a.opts.simulateFailures, a.rng)
	if err != nil {
		return err
	}
	a.report.Failures = result
	if result.Clamped {
		a.warn("requested %d failures but the graph has only %d edges", result.Requested, len(result.Removed))
	}

	a.metrics.RecordEdgesRemoved("failure", len(result.Removed))
	a.metrics.RecordGraph("failed", result.After.Nodes, result.After.Edges, result.After.Components)
	return nil
}

func (a *app) replay() error {
	events, err := temporal.ReadChangelog(a.opts.temporalSimulation)
	if err != nil {
		return err
	}
	created := temporal.PrepareNodes(a.g, events)
	a.logger.Info("changelog loaded", logging.Path(a.opts.temporalSimulation), logging.Count(len(events)), logging.Int("new_nodes", created))

	// every frame and the final plot share one colour scale
	a.timeRange = &visualization.TimeRange{}
	a.timeRange.IncludeEdges(a.g)
	for _, ev := range events {
		a.timeRange.Include(ev.Time.Unix())
	}

	var anim *visualization.Animator
	if a.opts.temporalGIF != "" {
		positions, err := a.layout()
		if err != nil {
			return err
		}
		anim = visualization.NewAnimator(positions, visualization.ModeTemporal, a.plotOptions(), a.cfg.Temporal.FrameDelay)
	}

	result, err := temporal.Replay(a.g, events, func(step int, ev temporal.Event, changed bool, g *graph.Graph) error {
		a.metrics.RecordTemporalEvent(ev.Op.String(), changed)
		if anim == nil {
			return nil
		}
		if err := anim.AddFrame(g, fmt.Sprintf("step %d: %s", step+1, ev)); err != nil {
			return err
		}
		a.metrics.FramesRendered.Inc()
		return nil
	})
	if err != nil {
		return err
	}
	a.report.Temporal = &result
	a.metrics.RecordGraph("replayed", a.g.NodeCount(), a.g.EdgeCount(), algorithms.CountComponents(a.g))

	if anim != nil {
		if anim.Frames() == 0 {
			a.warn("changelog has no events, no animation written")
			return nil
		}
		if err := anim.Save(a.opts.temporalGIF); err != nil {
			return err
		}
		a.report.AddOutput("animation", a.opts.temporalGIF)
		a.logger.Info("animation saved", logging.Path(a.opts.temporalGIF), logging.Count(anim.Frames()))
	}
	return nil
}

func (a *app) plot() error {
	positions, err := a.layout()
	if err != nil {
		return err
	}
	opts := a.plotOptions()
	opts.Title = fmt.Sprintf("%s (%s)", a.opts.graphPath, a.opts.mode)

	if err := visualization.RenderPlot(a.g, a.opts.mode, positions, opts, a.opts.plotOut); err != nil {
		return err
	}
	a.report.AddOutput("plot", a.opts.plotOut)
	return nil
}

func (a *app) output() error {
	if err := gml.WriteFile(a.opts.output, a.g); err != nil {
		return err
	}
	a.report.AddOutput("graph", a.opts.output)
	return nil
}

func (a *app) plotOptions() visualization.PlotOptions {
	opts := visualization.DefaultPlotOptions()
	opts.Width = vg.Length(a.cfg.Plot.Width) * vg.Inch
	opts.Height = vg.Length(a.cfg.Plot.Height) * vg.Inch
	opts.MaxLabels = a.cfg.Plot.MaxLabels
	opts.ColorAttr = a.cfg.Plot.ColorAttribute
	opts.SignAttr = a.cfg.Balance.SignAttribute
	opts.Canvas.Iterations = a.cfg.Plot.LayoutIters
	opts.Canvas.Seed = a.cfg.Seed
	opts.TimeRange = a.timeRange
	return opts
}

// layout places every node once so the plot and all animation frames share it
func (a *app) layout() (map[int64]visualization.Position, error) {
	if a.positions != nil {
		return a.positions, nil
	}

	canvas := a.plotOptions().Canvas
	positions, err := visualization.NewLayout(&canvas, a.g.NodeCount()).ComputeLayout(a.g, a.g.NodeIDs())
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	a.positions = positions
	return positions, nil
}

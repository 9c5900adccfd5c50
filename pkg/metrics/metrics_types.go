package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for one analysis run
type Registry struct {
	// Pipeline Metrics
	StepsTotal   *prometheus.CounterVec
	StepDuration *prometheus.HistogramVec

	// Graph Metrics
	GraphNodes      *prometheus.GaugeVec
	GraphEdges      *prometheus.GaugeVec
	GraphComponents *prometheus.GaugeVec

	// Analysis Metrics
	EdgesRemovedTotal      *prometheus.CounterVec
	Modularity             prometheus.Gauge
	AverageClustering      prometheus.Gauge
	HomophilyPValue        prometheus.Gauge
	BalanceViolations      prometheus.Gauge
	RobustnessTrialsTotal  prometheus.Counter
	RobustnessComponents   prometheus.Histogram
	RobustnessLargestShare prometheus.Histogram

	// Temporal Metrics
	TemporalEventsTotal *prometheus.CounterVec
	FramesRendered      prometheus.Counter

	// System Metrics
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge
	GoRoutines       prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.Mutex
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initPipelineMetrics()
	r.initGraphMetrics()
	r.initAnalysisMetrics()
	r.initTemporalMetrics()
	r.initSystemMetrics()

	return r
}

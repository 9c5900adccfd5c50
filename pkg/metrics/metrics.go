package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Step outcome labels
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RecordStep records a pipeline step with its duration
func (r *Registry) RecordStep(step string, err error, duration time.Duration) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	r.StepsTotal.WithLabelValues(step, status).Inc()
	r.StepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordGraph records graph size at a pipeline stage
func (r *Registry) RecordGraph(stage string, nodes, edges, components int) {
	r.GraphNodes.WithLabelValues(stage).Set(float64(nodes))
	r.GraphEdges.WithLabelValues(stage).Set(float64(edges))
	r.GraphComponents.WithLabelValues(stage).Set(float64(components))
}

// RecordEdgesRemoved counts edges removed for a reason such as "partition"
func (r *Registry) RecordEdgesRemoved(reason string, n int) {
	r.EdgesRemovedTotal.WithLabelValues(reason).Add(float64(n))
}

// RecordRobustness records a completed robustness check
func (r *Registry) RecordRobustness(trials int, meanComponents, meanLargestShare float64) {
	r.RobustnessTrialsTotal.Add(float64(trials))
	r.RobustnessComponents.Observe(meanComponents)
	r.RobustnessLargestShare.Observe(meanLargestShare)
}

// RecordTemporalEvent counts one replayed changelog event
func (r *Registry) RecordTemporalEvent(op string, applied bool) {
	result := "applied"
	if !applied {
		result = "skipped"
	}
	r.TemporalEventsTotal.WithLabelValues(op, result).Inc()
}

// UpdateSystemMetrics samples memory and goroutine counts
func (r *Registry) UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
}

// WriteTextfile writes every metric to path in the Prometheus text format,
// for collection by node_exporter's textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.UpdateSystemMetrics()
	return prometheus.WriteToTextfile(path, r.registry)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTemporalMetrics() {
	r.TemporalEventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graph_analysis_temporal_events_total",
			Help: "Changelog events replayed, by operation and result",
		},
		[]string{"op", "result"},
	)

	r.FramesRendered = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "graph_analysis_frames_rendered_total",
			Help: "Animation frames rendered",
		},
	)
}

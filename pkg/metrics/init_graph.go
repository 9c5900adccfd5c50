package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graph_analysis_graph_nodes",
			Help: "Number of nodes at each pipeline stage",
		},
		[]string{"stage"},
	)

	r.GraphEdges = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graph_analysis_graph_edges",
			Help: "Number of edges at each pipeline stage",
		},
		[]string{"stage"},
	)

	r.GraphComponents = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graph_analysis_graph_components",
			Help: "Number of connected components at each pipeline stage",
		},
		[]string{"stage"},
	)
}

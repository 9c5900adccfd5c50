package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.EdgesRemovedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graph_analysis_edges_removed_total",
			Help: "Edges removed from the graph, by reason",
		},
		[]string{"reason"},
	)

	r.Modularity = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graph_analysis_partition_modularity",
			Help: "Modularity of the last component partition",
		},
	)

	r.AverageClustering = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graph_analysis_average_clustering",
			Help: "Average local clustering coefficient",
		},
	)

	r.HomophilyPValue = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graph_analysis_homophily_p_value",
			Help: "Two-sided p-value of the homophily t-test",
		},
	)

	r.BalanceViolations = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graph_analysis_balance_violations",
			Help: "Number of unbalanced triads",
		},
	)

	r.RobustnessTrialsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "graph_analysis_robustness_trials_total",
			Help: "Failure simulation trials run for robustness",
		},
	)

	r.RobustnessComponents = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graph_analysis_robustness_mean_components",
			Help:    "Mean component count after random failures",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100},
		},
	)

	r.RobustnessLargestShare = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graph_analysis_robustness_largest_component_share",
			Help:    "Mean share of nodes in the largest component after random failures",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)
}

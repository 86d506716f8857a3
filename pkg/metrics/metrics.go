package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Define global variables for metrics.
// We use 'promauto' which automatically registers metrics without complex initialization.

var (
	// 1. HTTP Requests Total (Counter)
	// Counts how many requests arrive, labeled by method, path, and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphviz_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// 2. HTTP Request Duration (Histogram)
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphviz_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "path"},
	)

	// 3. Graph Size (Gauges)
	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphviz_graph_nodes",
		Help: "Number of nodes in the in-memory graph",
	})
	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphviz_graph_edges",
		Help: "Number of edges in the in-memory graph",
	})

	// 4. Mutations (Counter)
	// Labeled by operation and result ("ok", "unchanged" or "error").
	GraphMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphviz_graph_mutations_total",
			Help: "Total number of graph mutation requests",
		},
		[]string{"op", "result"},
	)

	// 5. Persistence (Counter)
	// Labeled by operation (save, load, reset) and result.
	PersistenceOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphviz_persistence_operations_total",
			Help: "Total number of record reads and writes",
		},
		[]string{"op", "result"},
	)
)

// Result converts an error into the label value used by the counters above.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

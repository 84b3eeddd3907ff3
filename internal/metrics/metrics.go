package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Solves counts solve outcomes by algorithm and status
	Solves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solves_total", Help: "Route solves by algorithm and status."},
		[]string{"algorithm", "status"},
	)
	// SolveDuration tracks end-to-end solve latency in seconds by algorithm
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "solve_duration_seconds", Help: "Solve duration in seconds.", Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}},
		[]string{"algorithm"},
	)
	// UnassignedLocations observes how many stops each solve left unserved
	UnassignedLocations = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "solve_unassigned_locations", Help: "Unassigned locations per solve.", Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100}},
		[]string{"algorithm"},
	)
	// Reoptimizations counts timing patches applied to stored solutions
	Reoptimizations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "reoptimizations_total", Help: "Timing reoptimizations applied."},
	)
	// TrafficLookups counts external travel-time lookups by outcome
	TrafficLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "traffic_lookups_total", Help: "Traffic provider lookups by outcome."},
		[]string{"outcome"},
	)
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Solves)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(UnassignedLocations)
		Registry.MustRegister(Reoptimizations)
		Registry.MustRegister(TrafficLookups)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once

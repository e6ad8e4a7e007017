package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus instruments for the fulfillment engine.
type Collector struct {
	recommendationsBuilt *prometheus.CounterVec
	recommendLatency     prometheus.Histogram
	assignmentsExecuted  *prometheus.CounterVec
	assignmentFailures   prometheus.Counter
	approvalsResolved    *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewCollector creates and registers all engine metrics on a private registry.
func NewCollector() *Collector {
	c := &Collector{
		recommendationsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fulfillment_recommendations_built_total",
			Help: "Recommendation sets computed, by kind (order, breakdown).",
		}, []string{"kind"}),
		recommendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fulfillment_recommendation_build_seconds",
			Help:    "Latency of building one recommendation set.",
			Buckets: prometheus.DefBuckets,
		}),
		assignmentsExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fulfillment_assignments_executed_total",
			Help: "Assignments committed by the executor, by source type.",
		}, []string{"source_type"}),
		assignmentFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fulfillment_assignment_failures_total",
			Help: "Assignment attempts aborted by a precondition or conflict.",
		}),
		approvalsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fulfillment_approvals_resolved_total",
			Help: "Workflow requests resolved, by workflow and outcome.",
		}, []string{"workflow", "outcome"}),
		registry: prometheus.NewRegistry(),
	}
	c.registry.MustRegister(
		c.recommendationsBuilt,
		c.recommendLatency,
		c.assignmentsExecuted,
		c.assignmentFailures,
		c.approvalsResolved,
	)
	return c
}

func (c *Collector) RecommendationBuilt(kind string) {
	c.recommendationsBuilt.WithLabelValues(kind).Inc()
}

func (c *Collector) ObserveRecommendLatency(s float64) { c.recommendLatency.Observe(s) }

func (c *Collector) AssignmentExecuted(srcType string) {
	c.assignmentsExecuted.WithLabelValues(srcType).Inc()
}

func (c *Collector) AssignmentFailed() { c.assignmentFailures.Inc() }

func (c *Collector) ApprovalResolved(workflow, outcome string) {
	c.approvalsResolved.WithLabelValues(workflow, outcome).Inc()
}

// Handler exposes the registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Package metrics holds the Prometheus instruments for schedule generation,
// coverage analysis, validation and the HTTP API.
package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry is the custom prometheus registry for the application
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// GenerationsTotal counts schedule generation runs.
var GenerationsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "shapeshifter",
	Name:      "generations_total",
	Help:      "Number of schedules generated",
})

// GenerationDurationSeconds tracks time to generate one week.
var GenerationDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "shapeshifter",
	Name:      "generation_duration_seconds",
	Help:      "Time taken to generate a weekly schedule",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// AgentsPerGeneration tracks the size of the agent pool per run.
var AgentsPerGeneration = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "shapeshifter",
	Name:      "agents_per_generation",
	Help:      "Number of agents considered per generation run",
	Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
})

// UnassignedSlots is the number of empty slots left by the last run.
var UnassignedSlots = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "shapeshifter",
	Name:      "unassigned_slots",
	Help:      "Slots left unassigned by the most recent generation",
})

// FairnessScore is the fairness of the last generated schedule.
var FairnessScore = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "shapeshifter",
	Name:      "fairness_score",
	Help:      "Fairness score (0-100) of the most recent generation",
})

// CoverageSlots breaks the last coverage analysis down by status.
var CoverageSlots = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "shapeshifter",
	Name:      "coverage_slots",
	Help:      "Slots per coverage status in the most recent analysis",
}, []string{"status"})

// ValidationRejectionsTotal counts rejected assignments by reason.
var ValidationRejectionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "shapeshifter",
	Name:      "validation_rejections_total",
	Help:      "Assignments rejected by the validator, by reason",
}, []string{"reason"})

// ImportRepairsTotal counts what imports had to fix.
var ImportRepairsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "shapeshifter",
	Name:      "import_repairs_total",
	Help:      "Items dropped or defaulted while normalizing imports",
}, []string{"kind"})

// HTTPRequestsTotal counts API requests by route and status class.
var HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by method, route and status",
}, []string{"method", "route", "status"})

// HTTPRequestDurationSeconds tracks request latency by route.
var HTTPRequestDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})

// ObserveGeneration records one generation run.
func ObserveGeneration(agents, unassigned int, fairness float64, took time.Duration) {
	GenerationsTotal.Inc()
	GenerationDurationSeconds.Observe(took.Seconds())
	AgentsPerGeneration.Observe(float64(agents))
	UnassignedSlots.Set(float64(unassigned))
	FairnessScore.Set(fairness)
}

// ObserveCoverage records the slot counts of one coverage analysis.
func ObserveCoverage(covered, tight, gap int) {
	CoverageSlots.WithLabelValues("covered").Set(float64(covered))
	CoverageSlots.WithLabelValues("tight").Set(float64(tight))
	CoverageSlots.WithLabelValues("gap").Set(float64(gap))
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, statusClass(c.Writer.Status())).Inc()
		HTTPRequestDurationSeconds.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	}
	return "2xx"
}

// Push sends the registry to a Pushgateway under the given job name.
func Push(url, job string) error {
	return push.New(url, job).Gatherer(Registry).Push()
}

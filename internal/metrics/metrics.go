// Package metrics exposes Prometheus metrics for the regraph pipeline.
//
// All Record methods are safe to call on a nil *Collector, which records
// nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "regraph"

// Collector owns a registry and the pipeline metrics registered in it.
type Collector struct {
	registry *prometheus.Registry

	builds         *prometheus.CounterVec   // result: valid, invalid_pattern, invalid_expression
	layoutDuration prometheus.Histogram     // seconds per measure+arrange
	diagramNodes   prometheus.Histogram     // nodes per diagram
	testcases      *prometheus.CounterVec   // outcome: pass, fail, error
	marks          prometheus.Histogram     // marks per highlight
	requests       *prometheus.CounterVec   // route, code
	requestLatency *prometheus.HistogramVec // route
}

// NewCollector registers every metric in registry. A nil registry gets a
// fresh one with the Go and process collectors.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c := &Collector{
		registry: registry,
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Pipeline runs by result.",
		}, []string{"result"}),
		layoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Time spent measuring and arranging one diagram.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		diagramNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "diagram_nodes",
			Help:      "Number of nodes in a laid out diagram.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		testcases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "testcases_total",
			Help:      "Test case evaluations by outcome.",
		}, []string{"outcome"}),
		marks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "highlight_marks",
			Help:      "Marks produced by one highlight rebuild.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by route and status code.",
		}, []string{"route", "code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP API latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	registry.MustRegister(
		c.builds,
		c.layoutDuration,
		c.diagramNodes,
		c.testcases,
		c.marks,
		c.requests,
		c.requestLatency,
	)
	return c
}

// Build results.
const (
	ResultValid             = "valid"
	ResultInvalidPattern    = "invalid_pattern"
	ResultInvalidExpression = "invalid_expression"
)

// RecordBuild records one pipeline run. Layout metrics are only recorded for
// valid results.
func (c *Collector) RecordBuild(result string, nodes int, layout time.Duration) {
	if c == nil {
		return
	}
	c.builds.WithLabelValues(result).Inc()
	if result == ResultValid {
		c.diagramNodes.Observe(float64(nodes))
		c.layoutDuration.Observe(layout.Seconds())
	}
}

// RecordTestcase records one test case evaluation.
func (c *Collector) RecordTestcase(passed bool, err error) {
	if c == nil {
		return
	}
	outcome := "fail"
	switch {
	case err != nil:
		outcome = "error"
	case passed:
		outcome = "pass"
	}
	c.testcases.WithLabelValues(outcome).Inc()
}

// RecordHighlight records the size of one highlight rebuild.
func (c *Collector) RecordHighlight(marks int) {
	if c == nil {
		return
	}
	c.marks.Observe(float64(marks))
}

// Gatherer returns the registry backing the collector.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Middleware counts requests and their latency under route.
func (c *Collector) Middleware(route string, next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		c.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		c.requestLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

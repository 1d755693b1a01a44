package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCollector() *Collector {
	return NewCollector(prometheus.NewRegistry())
}

func TestRecordBuild(t *testing.T) {
	c := newCollector()
	c.RecordBuild(ResultValid, 12, 2*time.Millisecond)
	c.RecordBuild(ResultValid, 3, time.Millisecond)
	c.RecordBuild(ResultInvalidPattern, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.builds.WithLabelValues(ResultValid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.builds.WithLabelValues(ResultInvalidPattern)))
	assert.Equal(t, 2, testutil.CollectAndCount(c.builds))

	expected := `
# HELP regraph_diagram_nodes Number of nodes in a laid out diagram.
# TYPE regraph_diagram_nodes histogram
regraph_diagram_nodes_bucket{le="1"} 0
regraph_diagram_nodes_bucket{le="2"} 0
regraph_diagram_nodes_bucket{le="4"} 1
regraph_diagram_nodes_bucket{le="8"} 1
regraph_diagram_nodes_bucket{le="16"} 2
regraph_diagram_nodes_bucket{le="32"} 2
regraph_diagram_nodes_bucket{le="64"} 2
regraph_diagram_nodes_bucket{le="128"} 2
regraph_diagram_nodes_bucket{le="256"} 2
regraph_diagram_nodes_bucket{le="512"} 2
regraph_diagram_nodes_bucket{le="+Inf"} 2
regraph_diagram_nodes_sum 15
regraph_diagram_nodes_count 2
`
	require.NoError(t, testutil.CollectAndCompare(c.diagramNodes, strings.NewReader(expected)))
}

func TestRecordTestcase(t *testing.T) {
	c := newCollector()
	c.RecordTestcase(true, nil)
	c.RecordTestcase(false, nil)
	c.RecordTestcase(false, nil)
	c.RecordTestcase(false, errors.New("timeout"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.testcases.WithLabelValues("pass")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.testcases.WithLabelValues("fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.testcases.WithLabelValues("error")))
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordBuild(ResultValid, 1, time.Millisecond)
		c.RecordTestcase(true, nil)
		c.RecordHighlight(3)
	})
	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	assert.NotNil(t, c.Middleware("x", h))
}

func TestMiddlewareAndHandler(t *testing.T) {
	c := newCollector()
	c.RecordHighlight(5)

	h := c.Middleware("/api/render", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/render", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("/api/render", "418")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "regraph_http_requests_total")
	assert.Contains(t, string(body), "regraph_highlight_marks_count 1")
}

func TestDefaultRegistry(t *testing.T) {
	c := NewCollector(nil)
	n, err := testutil.GatherAndCount(c.registry, "go_goroutines")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

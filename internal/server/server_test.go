package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KromDaniel/regraph/internal/config"
	"github.com/KromDaniel/regraph/internal/metrics"
)

func newTestServer(t *testing.T) (*Server, *metrics.Collector) {
	t.Helper()
	c := metrics.NewCollector(prometheus.NewRegistry())
	cfg := config.Default().Server
	return New(Options{Config: cfg, Metrics: c, MatchTimeout: time.Second}), c
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, c := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "ok"}, decodeBody[map[string]string](t, rec))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	count, err := testutil.GatherAndCount(c.Gatherer(), "regraph_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRequestIDPropagated(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRender(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/render", `{"pattern":"a","flags":"g"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		ValidExpression bool `json:"validExpression"`
		Diagram         struct {
			Width  float64 `json:"width"`
			Height float64 `json:"height"`
		} `json:"diagram"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.ValidExpression)
	assert.Equal(t, 120.0, got.Diagram.Width)
	assert.Equal(t, 34.0, got.Diagram.Height)
}

func TestRenderInvalidPattern(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/api/render", `{"pattern":"(a"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[map[string]any](t, rec)
	assert.Equal(t, false, got["validPattern"])
	assert.Equal(t, false, got["validExpression"])
	assert.NotEmpty(t, got["patternError"])
}

func TestBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"malformed json", "/api/render", `{"pattern":`, http.StatusBadRequest},
		{"unknown field", "/api/render", `{"pattern":"a","colour":"red"}`, http.StatusBadRequest},
		{"invalid analyze", "/api/analyze", `{"pattern":"(a"}`, http.StatusUnprocessableEntity},
		{"invalid test flags", "/api/test", `{"pattern":"a","flags":"gg"}`, http.StatusUnprocessableEntity},
		{"overlapping changes", "/api/highlight", `{"doc":"abc","changes":[{"from":0,"to":2},{"from":1,"to":3}]}`, http.StatusBadRequest},
		{"change beyond doc", "/api/highlight", `{"doc":"abc","changes":[{"from":5,"to":6}]}`, http.StatusBadRequest},
	}

	s, _ := newTestServer(t)
	h := s.Handler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)

			body := decodeBody[errorBody](t, rec)
			assert.NotEmpty(t, body.Error.Message)
			assert.NotEmpty(t, body.Error.Code)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	cfg := config.Default().Server
	cfg.MaxBodyBytes = 16
	s := New(Options{Config: cfg})

	rec := do(t, s.Handler(), http.MethodPost, "/api/render", `{"pattern":"aaaaaaaaaaaaaaaaaaaa"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/api/render", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnalyze(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/api/analyze", `{"pattern":"(a)|b"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		FeatureLabels []string `json:"feature_labels"`
		Nodes         int      `json:"nodes"`
		Depth         int      `json:"depth"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 7, got.Nodes)
	assert.Equal(t, 5, got.Depth)
	assert.Contains(t, got.FeatureLabels, "Alternation")
	assert.Contains(t, got.FeatureLabels, "Captures")
}

func TestTestcases(t *testing.T) {
	s, c := newTestServer(t)
	body := `{"pattern":"\\d","testcases":[{"id":"a","input":"abc"},{"id":"b","input":"a1"}]}`
	rec := do(t, s.Handler(), http.MethodPost, "/api/test", body)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[testResponse](t, rec)
	assert.False(t, got.Passed)
	require.Len(t, got.Testcases, 2)
	assert.Equal(t, "a", got.Testcases[0].ID)
	assert.True(t, got.Testcases[0].Failed())
	assert.False(t, got.Testcases[1].Failed())

	count, err := testutil.GatherAndCount(c.Gatherer(), "regraph_testcases_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantDoc string
		want    string
	}{
		{
			name:    "search",
			body:    `{"pattern":"at","flags":"g","doc":"cat hat"}`,
			wantDoc: "cat hat",
			want:    `[{"from":1,"to":3},{"from":5,"to":7}]`,
		},
		{
			name:    "search without global flag marks every match",
			body:    `{"pattern":"at","doc":"cat hat"}`,
			wantDoc: "cat hat",
			want:    `[{"from":1,"to":3},{"from":5,"to":7}]`,
		},
		{
			name:    "marks follow insertion",
			body:    `{"doc":"abc","marks":[{"from":1,"to":2}],"changes":[{"from":0,"to":0,"insert":"xx"}]}`,
			wantDoc: "xxabc",
			want:    `[{"from":3,"to":4}]`,
		},
		{
			name:    "deleted marks are dropped",
			body:    `{"doc":"abc","marks":[{"from":1,"to":2}],"changes":[{"from":0,"to":3}]}`,
			wantDoc: "",
			want:    `[]`,
		},
		{
			name:    "search after edit",
			body:    `{"pattern":"a","flags":"g","doc":"abc","marks":[{"from":0,"to":1}],"changes":[{"from":3,"to":3,"insert":"a"}]}`,
			wantDoc: "abca",
			want:    `[{"from":0,"to":1},{"from":3,"to":4}]`,
		},
	}

	s, _ := newTestServer(t)
	h := s.Handler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/highlight", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var got struct {
				Doc   string          `json:"doc"`
				Marks json.RawMessage `json:"marks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantDoc, got.Doc)
			assert.JSONEq(t, tt.want, string(got.Marks))
		})
	}
}

func TestSession(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	yamlBody := "pattern: a\nflags: g\nsource: banana\ntestcases:\n  - id: one\n    input: xyz\n"
	req := httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader(yamlBody))
	req.Header.Set("Content-Type", "application/yaml")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Result struct {
			ValidExpression bool `json:"validExpression"`
		} `json:"result"`
		Marks     json.RawMessage `json:"marks"`
		Testcases []struct {
			ID     string `json:"id"`
			Passed *bool  `json:"passed"`
		} `json:"testcases"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Result.ValidExpression)
	assert.JSONEq(t, `[{"from":1,"to":2},{"from":3,"to":4},{"from":5,"to":6}]`, string(got.Marks))
	require.Len(t, got.Testcases, 1)
	require.NotNil(t, got.Testcases[0].Passed)
	assert.False(t, *got.Testcases[0].Passed)
	assert.Empty(t, got.Error)

	rec = do(t, h, http.MethodPost, "/api/session", `{"pattern":"b","source":"abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"marks":[{"from":1,"to":2}]`)

	req = httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader("bogus: 1\n"))
	req.Header.Set("Content-Type", "text/yaml; charset=utf-8")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReference(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/reference", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cats []struct {
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.NotEmpty(t, cats)
	assert.Equal(t, "allTokens", cats[0].Key)

	rec = do(t, h, http.MethodGet, "/api/reference/"+cats[1].Key, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/reference/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, codeNotFound, decodeBody[errorBody](t, rec).Error.Code)

	rec = do(t, h, http.MethodGet, "/api/reference?q=digit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, strings.ToLower(rec.Body.String()), "digit")

	rec = do(t, h, http.MethodGet, "/api/reference?q=zzzzqqq", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/reference?q=a&category=nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTokens(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/tokens?prefix=%5Cd", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var items []struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.NotEmpty(t, items)
	for _, it := range items {
		assert.True(t, strings.HasPrefix(it.Token, `\d`), it.Token)
	}

	rec = do(t, h, http.MethodGet, "/api/tokens", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tokens []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokens))
	assert.Contains(t, tokens, `\d`)
}

func TestFlags(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/api/flags", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]map[string]struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Global", got["flags"]["g"].Title)
	assert.Equal(t, "Or", got["tokens"]["|"].Title)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	do(t, h, http.MethodPost, "/api/render", `{"pattern":"a"}`)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `regraph_builds_total{result="valid"} 1`)
	assert.Contains(t, rec.Body.String(), `route="POST /api/render"`)
}

func TestNoMetricsWithoutCollector(t *testing.T) {
	s := New(Options{Config: config.Default().Server})
	rec := do(t, s.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecovery(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := do(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, codeInternal, decodeBody[errorBody](t, rec).Error.Code)
}

func TestServeAndShutdown(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, ln.Addr().String(), s.Addr().String())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	assert.Error(t, s.Serve(context.Background(), ln), "second Serve must fail")
}

func TestShutdownBeforeStart(t *testing.T) {
	s, _ := newTestServer(t)
	assert.NoError(t, s.Shutdown(context.Background()))
	assert.Nil(t, s.Addr())
}

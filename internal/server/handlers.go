package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/KromDaniel/regraph/expr"
	"github.com/KromDaniel/regraph/highlight"
	"github.com/KromDaniel/regraph/internal/parser"
	"github.com/KromDaniel/regraph/matcher"
	"github.com/KromDaniel/regraph/pkg/regraph"
	"github.com/KromDaniel/regraph/reference"
	"github.com/KromDaniel/regraph/testcase"
)

const defaultMaxBodyBytes = 1 << 20

// Error codes returned in the error body.
const (
	codeInvalidRequest    = "invalid_request"
	codeInvalidExpression = "invalid_expression"
	codeNotFound          = "not_found"
	codeMatchFailed       = "match_failed"
	codeInternal          = "internal_error"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Message: message, Code: code}})
}

// decode reads a size limited JSON body into v. Unknown fields are rejected.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	limit := s.config.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, codeInvalidRequest,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

type expressionRequest struct {
	Pattern string `json:"pattern"`
	Flags   string `json:"flags"`
}

func (s *Server) buildOptions(req expressionRequest) regraph.Options {
	opts := s.build
	opts.Pattern, opts.Flags = req.Pattern, req.Flags
	return opts
}

// compile validates the literal and compiles it for matching.
func (s *Server) compile(req expressionRequest) (*matcher.Matcher, error) {
	if err := parser.ValidateLiteral(req.Pattern, req.Flags); err != nil {
		return nil, err
	}
	e, err := expr.New(req.Pattern, req.Flags)
	if err != nil {
		return nil, err
	}
	return matcher.Compile(e, s.matchOptions()...)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req expressionRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := regraph.Build(s.buildOptions(req))
	if err != nil {
		s.logger.Error("build failed", "error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req expressionRequest
	if !s.decode(w, r, &req) {
		return
	}
	analysis, err := regraph.Analyze(req.Pattern, req.Flags)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeInvalidExpression, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

type testRequest struct {
	expressionRequest
	Testcases []testcase.Testcase `json:"testcases"`
}

type testResponse struct {
	Testcases []testcase.Testcase `json:"testcases"`
	Passed    bool                `json:"passed"`
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if !s.decode(w, r, &req) {
		return
	}
	m, err := s.compile(req.expressionRequest)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeInvalidExpression, err.Error())
		return
	}

	suite := testcase.NewSuite(req.Testcases...)
	suite.SetMatcher(m)
	runErr := suite.RunAll()
	resp := testResponse{Testcases: suite.Cases(), Passed: len(suite.Failed()) == 0}
	for _, tc := range resp.Testcases {
		s.metrics.RecordTestcase(!tc.Failed(), nil)
	}
	if runErr != nil {
		writeError(w, http.StatusUnprocessableEntity, codeMatchFailed, runErr.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type highlightRequest struct {
	expressionRequest
	Doc     string             `json:"doc"`
	Marks   []highlight.Range  `json:"marks"`
	Changes []highlight.Change `json:"changes"`
}

type highlightResponse struct {
	Doc   string            `json:"doc"`
	Marks []highlight.Range `json:"marks"`
}

// handleHighlight applies Changes to Doc and moves Marks along with them.
// When a pattern is given the marks are then rebuilt from its matches.
func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req highlightRequest
	if !s.decode(w, r, &req) {
		return
	}
	cs, err := highlight.NewChangeSet(req.Changes...)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	doc, err := cs.Apply(req.Doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	marks := highlight.NewMarkSet(req.Marks...).Map(cs)

	if req.Pattern != "" {
		m, err := s.compile(req.expressionRequest)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, codeInvalidExpression, err.Error())
			return
		}
		h := highlight.New(s.logger)
		marks, err = h.Update(highlight.Transaction{
			Doc:     doc,
			Effects: []highlight.Effect{highlight.SearchEffect{Matcher: m}},
		})
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, codeMatchFailed, err.Error())
			return
		}
	}
	s.metrics.RecordHighlight(marks.Len())

	resp := highlightResponse{Doc: doc, Marks: marks.Ranges()}
	if resp.Marks == nil {
		resp.Marks = []highlight.Range{}
	}
	writeJSON(w, http.StatusOK, resp)
}

type sessionResponse struct {
	*regraph.Report
	Error string `json:"error,omitempty"`
}

// handleSession runs a whole session. The body is JSON, or YAML when the
// content type says so.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	var session *regraph.Session
	if isYAML(r.Header.Get("Content-Type")) {
		limit := s.config.MaxBodyBytes
		if limit <= 0 {
			limit = defaultMaxBodyBytes
		}
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, codeInvalidRequest, err.Error())
			return
		}
		session, err = regraph.ParseSession(data)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
			return
		}
	} else {
		session = &regraph.Session{}
		if !s.decode(w, r, session) {
			return
		}
	}

	report, err := session.Run(s.build, s.matchOptions()...)
	if report == nil {
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
		return
	}
	resp := sessionResponse{Report: report}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func isYAML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/yaml" || mt == "application/x-yaml" || mt == "text/yaml"
}

// handleReference lists every category, or searches one when q is set.
func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("q") {
		writeJSON(w, http.StatusOK, reference.Categories())
		return
	}
	key := q.Get("category")
	if key != "" {
		if _, ok := reference.Get(key); !ok {
			writeError(w, http.StatusNotFound, codeNotFound, fmt.Sprintf("unknown category %q", key))
			return
		}
	}
	items := reference.Search(key, q.Get("q"))
	if items == nil {
		items = []reference.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleReferenceCategory(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	c, ok := reference.Get(key)
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, fmt.Sprintf("unknown category %q", key))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleTokens completes a token prefix. Without a prefix it lists every
// token.
func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if strings.TrimSpace(prefix) == "" {
		writeJSON(w, http.StatusOK, reference.Tokens())
		return
	}
	items := reference.Prefix(prefix)
	if items == nil {
		items = []reference.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleFlags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]map[string]expr.Metadata{
		"flags":  expr.FlagMetadata,
		"tokens": expr.TokenMetadata,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package regraph

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/KromDaniel/regraph/expr"
	"github.com/KromDaniel/regraph/highlight"
	"github.com/KromDaniel/regraph/matcher"
	"github.com/KromDaniel/regraph/testcase"
)

// Session is everything a user works on at once: one expression, a source
// text to highlight and a list of test cases.
type Session struct {
	Pattern   string              `yaml:"pattern" json:"pattern"`
	Flags     string              `yaml:"flags" json:"flags"`
	Source    string              `yaml:"source" json:"source"`
	Testcases []testcase.Testcase `yaml:"testcases" json:"testcases"`
}

// DefaultSession is the session a new workspace starts with.
func DefaultSession() *Session {
	return &Session{
		Pattern:   `[A-Z]\w+`,
		Flags:     "g",
		Source:    "Regraph draws Regular Expressions as Railroad Diagrams.\n",
		Testcases: testcase.DefaultSuite().Cases(),
	}
}

// LoadSession reads a session file.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	s, err := ParseSession(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseSession decodes a YAML session. Unknown fields are rejected.
func ParseSession(data []byte) (*Session, error) {
	var s Session
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	for i, tc := range s.Testcases {
		if tc.Mode != "" && !tc.Mode.Valid() {
			return nil, fmt.Errorf("parse session: testcase %d: invalid mode %q", i, tc.Mode)
		}
	}
	return &s, nil
}

// Marshal encodes the session as YAML.
func (s *Session) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Report is the outcome of running a session.
type Report struct {
	Result    *Result             `json:"result" yaml:"result"`
	Marks     []highlight.Range   `json:"marks" yaml:"marks"`
	Testcases []testcase.Testcase `json:"testcases" yaml:"testcases"`

	// MatchError is set when a valid expression could not be compiled for
	// matching.
	MatchError string `json:"matchError,omitempty" yaml:"matchError,omitempty"`
}

// Passed reports whether every test case passed.
func (r *Report) Passed() bool {
	for _, tc := range r.Testcases {
		if tc.Failed() {
			return false
		}
	}
	return true
}

// Run builds the diagram, highlights every match in Source and runs the test
// cases. The Pattern and Flags of opts are replaced by the session's. The
// returned error is set for invalid options, or joins match failures such as
// timeouts; in the latter case the report is still returned.
func (s *Session) Run(opts Options, matchOpts ...matcher.Option) (*Report, error) {
	opts.Pattern, opts.Flags = s.Pattern, s.Flags
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	res, err := Build(opts)
	if err != nil {
		return nil, err
	}
	report := &Report{Result: res, Marks: []highlight.Range{}}

	var m *matcher.Matcher
	if res.ValidExpression {
		m, err = matcher.Compile(res.Expression, matchOpts...)
		if err != nil {
			report.MatchError = err.Error()
			logger.Warn("expression not supported by matcher", "literal", res.Literal(), "error", err)
			m = nil
		}
	}

	var errs []error
	h := highlight.New(logger)
	marks, err := h.Update(highlight.Transaction{
		Doc:     s.Source,
		Effects: []highlight.Effect{highlight.SearchEffect{Matcher: m}},
	})
	if err != nil {
		errs = append(errs, err)
	}
	report.Marks = append(report.Marks, marks.Ranges()...)
	opts.Metrics.RecordHighlight(marks.Len())

	suite := testcase.NewSuite(s.Testcases...)
	suite.SetMatcher(m)
	for _, tc := range suite.Cases() {
		got, err := suite.Run(tc.ID)
		opts.Metrics.RecordTestcase(!got.Failed(), err)
		if err != nil {
			errs = append(errs, err)
		}
	}
	report.Testcases = suite.Cases()

	logger.Debug("session run",
		"literal", res.Literal(),
		"marks", len(report.Marks),
		"testcases", len(report.Testcases),
		"passed", report.Passed())
	return report, errors.Join(errs...)
}

// Expression returns the session's expression, or an error for invalid flags.
func (s *Session) Expression() (expr.Expression, error) {
	return expr.New(s.Pattern, s.Flags)
}

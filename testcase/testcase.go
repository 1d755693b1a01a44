// Package testcase keeps a list of sample inputs and records whether the
// current expression matches each of them.
package testcase

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/KromDaniel/regraph/matcher"
)

// Mode is how a test case is presented.
type Mode string

const (
	ModeView    Mode = "view"
	ModeEdit    Mode = "edit"
	ModeExecute Mode = "execute"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeView, ModeEdit, ModeExecute:
		return true
	}
	return false
}

// ErrNotFound is returned for an unknown test case ID.
var ErrNotFound = errors.New("test case not found")

// Testcase is one sample input. Passed is nil until the case has been run.
type Testcase struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Input  string `json:"input" yaml:"input"`
	Mode   Mode   `json:"mode" yaml:"mode"`
	Passed *bool  `json:"passed,omitempty" yaml:"passed,omitempty"`
}

// Failed reports whether the case has not passed, including never run.
func (tc Testcase) Failed() bool {
	return tc.Passed == nil || !*tc.Passed
}

// Suite is an ordered list of test cases run against one matcher.
type Suite struct {
	cases   []Testcase
	matcher *matcher.Matcher
	newID   func() string
}

// NewSuite returns a suite holding cases. Cases without an ID get one.
func NewSuite(cases ...Testcase) *Suite {
	s := &Suite{newID: uuid.NewString}
	for _, tc := range cases {
		if tc.ID == "" {
			tc.ID = s.newID()
		}
		if !tc.Mode.Valid() {
			tc.Mode = ModeEdit
		}
		s.cases = append(s.cases, tc)
	}
	return s
}

// DefaultSuite returns the suite a new session starts with.
func DefaultSuite() *Suite {
	return NewSuite(Testcase{
		ID:    "1",
		Title: "Example 1",
		Input: "This is a test document.\n2\n",
		Mode:  ModeEdit,
	})
}

// Cases returns a copy of the test cases in order.
func (s *Suite) Cases() []Testcase {
	return slices.Clone(s.cases)
}

// Get returns the case with the given ID.
func (s *Suite) Get(id string) (Testcase, error) {
	i := s.index(id)
	if i < 0 {
		return Testcase{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.cases[i], nil
}

// Add appends an empty editable case and returns it.
func (s *Suite) Add() Testcase {
	tc := Testcase{ID: s.newID(), Mode: ModeEdit}
	s.cases = append(s.cases, tc)
	return tc
}

// Remove deletes the case with the given ID. Unknown IDs are ignored.
func (s *Suite) Remove(id string) {
	if i := s.index(id); i >= 0 {
		s.cases = slices.Delete(s.cases, i, i+1)
	}
}

// Update replaces the case with tc.ID and runs it.
func (s *Suite) Update(tc Testcase) (Testcase, error) {
	i := s.index(tc.ID)
	if i < 0 {
		return Testcase{}, fmt.Errorf("%w: %s", ErrNotFound, tc.ID)
	}
	if !tc.Mode.Valid() {
		return Testcase{}, fmt.Errorf("test case %s: invalid mode %q", tc.ID, tc.Mode)
	}
	s.cases[i] = tc
	return s.Run(tc.ID)
}

// SetMatcher replaces the matcher and clears every result. A nil matcher
// means the current expression is invalid and nothing can pass.
func (s *Suite) SetMatcher(m *matcher.Matcher) {
	s.matcher = m
	for i := range s.cases {
		s.cases[i].Passed = nil
	}
}

// Run evaluates one case. With the global flag a case passes when there is
// at least one match; otherwise the first match attempt has to succeed.
func (s *Suite) Run(id string) (Testcase, error) {
	i := s.index(id)
	if i < 0 {
		return Testcase{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	passed := false
	if s.matcher != nil {
		ok, err := s.matcher.Test(s.cases[i].Input)
		if err != nil {
			s.cases[i].Passed = &passed
			return s.cases[i], fmt.Errorf("test case %s: %w", id, err)
		}
		passed = ok
	}
	s.cases[i].Passed = &passed
	return s.cases[i], nil
}

// RunAll evaluates every case in order. Errors from individual cases are
// joined.
func (s *Suite) RunAll() error {
	var errs []error
	for _, tc := range s.cases {
		if _, err := s.Run(tc.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Failed returns the cases that have not passed.
func (s *Suite) Failed() []Testcase {
	var out []Testcase
	for _, tc := range s.cases {
		if tc.Failed() {
			out = append(out, tc)
		}
	}
	return out
}

// Editable returns the IDs of the cases in edit mode.
func (s *Suite) Editable() []string {
	var ids []string
	for _, tc := range s.cases {
		if tc.Mode == ModeEdit {
			ids = append(ids, tc.ID)
		}
	}
	return ids
}

func (s *Suite) index(id string) int {
	return slices.IndexFunc(s.cases, func(tc Testcase) bool { return tc.ID == id })
}

// Package expr defines the immutable (pattern, flags) tuple that every stage of
// the visualizer pipeline consumes.
package expr

import (
	"fmt"
	"strings"
)

// Flag is a single ECMAScript regular expression flag.
type Flag byte

// Supported flags, in canonical order.
const (
	FlagHasIndices  Flag = 'd'
	FlagGlobal      Flag = 'g'
	FlagIgnoreCase  Flag = 'i'
	FlagMultiline   Flag = 'm'
	FlagDotAll      Flag = 's'
	FlagUnicode     Flag = 'u'
	FlagUnicodeSets Flag = 'v'
	FlagSticky      Flag = 'y'
)

// canonicalOrder is the order flags are rendered in by Flags.String.
const canonicalOrder = "dgimsuvy"

// Flags is a set of regular expression flags.
type Flags struct {
	set uint8
}

func bit(f Flag) uint8 {
	i := strings.IndexByte(canonicalOrder, byte(f))
	if i < 0 {
		return 0
	}
	return 1 << uint(i)
}

// FlagError reports an invalid flag string.
type FlagError struct {
	Flags string
	Pos   int
	Msg   string
}

func (e *FlagError) Error() string {
	return fmt.Sprintf("invalid regular expression flags %q: %s", e.Flags, e.Msg)
}

// ParseFlags parses a flag string such as "gi". Unknown flags, duplicate
// flags and the combination of u and v are rejected.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for i := 0; i < len(s); i++ {
		b := bit(Flag(s[i]))
		if b == 0 {
			return Flags{}, &FlagError{Flags: s, Pos: i, Msg: fmt.Sprintf("unknown flag %q", s[i])}
		}
		if f.set&b != 0 {
			return Flags{}, &FlagError{Flags: s, Pos: i, Msg: fmt.Sprintf("duplicate flag %q", s[i])}
		}
		f.set |= b
	}
	if f.Has(FlagUnicode) && f.Has(FlagUnicodeSets) {
		return Flags{}, &FlagError{Flags: s, Pos: len(s), Msg: "flags u and v are mutually exclusive"}
	}
	return f, nil
}

// MustParseFlags is like ParseFlags but panics on error. Intended for tests
// and package-level tables.
func MustParseFlags(s string) Flags {
	f, err := ParseFlags(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Has reports whether flag is set.
func (f Flags) Has(flag Flag) bool {
	b := bit(flag)
	return b != 0 && f.set&b != 0
}

// With returns a copy of f with flag set.
func (f Flags) With(flag Flag) Flags {
	f.set |= bit(flag)
	return f
}

// Global reports whether the g flag is set.
func (f Flags) Global() bool { return f.Has(FlagGlobal) }

// UnicodeMode reports whether the pattern is parsed with unicode grammar (u or v).
func (f Flags) UnicodeMode() bool {
	return f.Has(FlagUnicode) || f.Has(FlagUnicodeSets)
}

// String renders the flags in canonical order.
func (f Flags) String() string {
	var sb strings.Builder
	for i := 0; i < len(canonicalOrder); i++ {
		if f.set&(1<<uint(i)) != 0 {
			sb.WriteByte(canonicalOrder[i])
		}
	}
	return sb.String()
}

// Expression is a pattern together with its flags.
type Expression struct {
	Source string
	Flags  Flags
}

// New returns an Expression after validating flags. The pattern itself is not
// validated here; see the parser for that.
func New(source, flags string) (Expression, error) {
	f, err := ParseFlags(flags)
	if err != nil {
		return Expression{}, err
	}
	return Expression{Source: source, Flags: f}, nil
}

// Literal renders the expression as a /source/flags literal.
func (e Expression) Literal() string {
	return "/" + e.Source + "/" + e.Flags.String()
}

func (e Expression) String() string { return e.Literal() }

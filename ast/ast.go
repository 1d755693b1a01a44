// Package ast defines the syntax tree produced by parsing an ECMAScript
// regular expression pattern.
//
// The set of node kinds is closed: Node can only be implemented inside this
// package. Consumers switch over the concrete types; every switch in this
// module lists all kinds so that adding one is caught by the kind coverage
// tests of the classifier and the layout engine.
package ast

import "fmt"

// Kind identifies the concrete type of a Node.
type Kind int

const (
	KindPattern Kind = iota
	KindAlternative
	KindGroup
	KindCapturingGroup
	KindAssertion
	KindCharacterClass
	KindCharacterClassRange
	KindCharacter
	KindBackreference

	kindCount
)

// Kinds returns every node kind, in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

var kindNames = [...]string{
	KindPattern:             "Pattern",
	KindAlternative:         "Alternative",
	KindGroup:               "Group",
	KindCapturingGroup:      "CapturingGroup",
	KindAssertion:           "Assertion",
	KindCharacterClass:      "CharacterClass",
	KindCharacterClassRange: "CharacterClassRange",
	KindCharacter:           "Character",
	KindBackreference:       "Backreference",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler so kinds render by name in
// JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Unbounded is the Quantifier.Max value for quantifiers without an upper bound.
const Unbounded = -1

// Quantifier is a repetition specifier attached to an element.
type Quantifier struct {
	Min    int
	Max    int // Unbounded for {n,}, * and +
	Greedy bool
	Raw    string
}

// IsUnbounded reports whether the quantifier has no upper bound.
func (q *Quantifier) IsUnbounded() bool { return q.Max == Unbounded }

// Node is implemented by every syntax tree node.
type Node interface {
	Kind() Kind
	// Span returns the byte offsets of the node in the pattern source.
	Span() (start, end int)
	// Text returns the node's source text.
	Text() string

	node()
}

// Element is a node that can appear inside an Alternative and therefore
// carries an optional quantifier.
type Element interface {
	Node
	Quant() *Quantifier
	setQuant(q *Quantifier)
}

// Position holds the source location fields shared by all nodes.
type Position struct {
	Start int
	End   int
	Raw   string
}

func (b *Position) Span() (int, int) { return b.Start, b.End }
func (b *Position) Text() string     { return b.Raw }
func (*Position) node()              {}

// Quantified is embedded by every Element.
type Quantified struct {
	Quantifier *Quantifier
}

func (q *Quantified) Quant() *Quantifier      { return q.Quantifier }
func (q *Quantified) setQuant(qq *Quantifier) { q.Quantifier = qq }

// Pattern is the root of a parsed pattern: an ordered list of alternatives
// separated by '|'.
type Pattern struct {
	Position
	Alternatives []*Alternative
}

// Alternative is one branch of a choice: an ordered sequence of elements.
type Alternative struct {
	Position
	Elements []Element
}

// Group is a non-capturing group (?:...).
type Group struct {
	Position
	Quantified
	Alternatives []*Alternative
}

// CapturingGroup is a numbered, optionally named, capturing group.
type CapturingGroup struct {
	Position
	Quantified
	Index        int
	Name         string
	Alternatives []*Alternative
}

// AssertionKind is the kind of an Assertion.
type AssertionKind string

const (
	AssertBeginning  AssertionKind = "beginning"
	AssertEnd        AssertionKind = "end"
	AssertLookahead  AssertionKind = "lookahead"
	AssertLookbehind AssertionKind = "lookbehind"
	AssertWord       AssertionKind = "word"
)

// Assertion is a zero-width assertion. Lookaround assertions own alternatives;
// the others are leaves.
type Assertion struct {
	Position
	Quantified
	AssertKind   AssertionKind
	Negate       bool
	Alternatives []*Alternative
}

// IsLookaround reports whether the assertion is a lookahead or lookbehind.
func (a *Assertion) IsLookaround() bool {
	return a.AssertKind == AssertLookahead || a.AssertKind == AssertLookbehind
}

// CharacterClass is a set of characters. Either it is a symbol class such as
// ".", "\d" or "\p{L}" (Elements is nil) or a bracketed set whose elements
// are Characters, CharacterClassRanges and nested symbol classes.
type CharacterClass struct {
	Position
	Quantified
	Negate   bool
	Bracket  bool
	Elements []Element
}

// Endpoint is one end of a character class range.
type Endpoint struct {
	Value rune
	Raw   string
}

// CharacterClassRange is a range such as a-z inside a bracketed class.
type CharacterClassRange struct {
	Position
	Quantified
	Min Endpoint
	Max Endpoint
}

// Character is a single literal code point or escape.
type Character struct {
	Position
	Quantified
	Value rune
}

// Backreference refers to a capturing group by number or by name.
type Backreference struct {
	Position
	Quantified
	Index int
	Name  string
}

// Ref returns the reference as written: the group name or its number.
func (b *Backreference) Ref() string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprint(b.Index)
}

func (*Pattern) Kind() Kind             { return KindPattern }
func (*Alternative) Kind() Kind         { return KindAlternative }
func (*Group) Kind() Kind               { return KindGroup }
func (*CapturingGroup) Kind() Kind      { return KindCapturingGroup }
func (*Assertion) Kind() Kind           { return KindAssertion }
func (*CharacterClass) Kind() Kind      { return KindCharacterClass }
func (*CharacterClassRange) Kind() Kind { return KindCharacterClassRange }
func (*Character) Kind() Kind           { return KindCharacter }
func (*Backreference) Kind() Kind       { return KindBackreference }

// SetQuantifier attaches q to e.
func SetQuantifier(e Element, q *Quantifier) { e.setQuant(q) }

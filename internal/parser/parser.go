// Package parser implements a recursive-descent parser for ECMAScript regular
// expression patterns.
//
// The grammar follows ECMA-262 including the Annex B extensions that apply
// when neither the u nor the v flag is set. The parser only builds structure;
// it never executes a match.
package parser

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/KromDaniel/regraph/ast"
	"github.com/KromDaniel/regraph/expr"
)

// Parse parses pattern under the given flags.
func Parse(pattern string, flags expr.Flags) (*ast.Pattern, error) {
	p := newParser(pattern, flags)
	return p.parse()
}

// ValidatePattern checks pattern syntax alone, with no flags in effect.
func ValidatePattern(pattern string) error {
	_, err := Parse(pattern, expr.Flags{})
	return err
}

// ValidateLiteral checks the regular expression literal /pattern/flags. Flag
// errors are reported as *expr.FlagError, everything else as *SyntaxError.
func ValidateLiteral(pattern, flags string) error {
	f, err := expr.ParseFlags(flags)
	if err != nil {
		return err
	}
	if err := checkLiteralBody(pattern, flags); err != nil {
		return err
	}
	_, err = Parse(pattern, f)
	return err
}

// checkLiteralBody applies the lexical rules of a literal body: it must be
// non-empty, contain no line terminators and no '/' outside a class unless
// escaped.
func checkLiteralBody(body, flags string) error {
	fail := func(pos int, msg string) error {
		return &SyntaxError{Pattern: body, Flags: flags, Pos: pos, Msg: msg}
	}
	if body == "" {
		return fail(0, msgEmptyLiteral)
	}
	inClass := false
	for i := 0; i < len(body); {
		r, size := utf8.DecodeRuneInString(body[i:])
		switch {
		case isLineTerminator(r):
			return fail(i, msgLineTerminator)
		case r == '\\':
			// The escaped rune never opens or closes a class or ends the literal.
			next, n := utf8.DecodeRuneInString(body[i+size:])
			if n > 0 && isLineTerminator(next) {
				return fail(i+size, msgLineTerminator)
			}
			size += n
		case r == '[':
			inClass = true
		case r == ']':
			inClass = false
		case r == '/' && !inClass:
			return fail(i, msgUnescapedSlash)
		}
		i += size
	}
	return nil
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

type parser struct {
	src     string
	flags   string
	pos     int
	unicode bool // u or v
	sets    bool // v

	groupCount int             // total capturing groups, from prescan
	names      map[string]bool // group names, from prescan
	capIndex   int
	seenNames  map[string]bool
	backrefs   []*ast.Backreference
}

func newParser(src string, flags expr.Flags) *parser {
	return &parser{
		src:       src,
		flags:     flags.String(),
		unicode:   flags.UnicodeMode(),
		sets:      flags.Has(expr.FlagUnicodeSets),
		names:     make(map[string]bool),
		seenNames: make(map[string]bool),
	}
}

func (p *parser) parse() (*ast.Pattern, error) {
	p.prescan()

	alts, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		// parseDisjunction only stops early on ')'.
		return nil, p.errorf(p.pos, msgUnmatchedParen)
	}

	for _, br := range p.backrefs {
		if br.Name != "" && !p.names[br.Name] {
			return nil, p.errorf(br.Start, msgInvalidNamedRef)
		}
	}

	return &ast.Pattern{
		Position:     ast.Position{Start: 0, End: len(p.src), Raw: p.src},
		Alternatives: alts,
	}, nil
}

// prescan counts capturing groups and collects group names ahead of parsing,
// since a backreference may refer to a group that appears later.
func (p *parser) prescan() {
	depth := 0
	for i := 0; i < len(p.src); i++ {
		switch p.src[i] {
		case '\\':
			i++
		case '[':
			if depth == 0 || p.sets {
				depth++
			}
		case ']':
			if depth > 0 {
				depth--
			}
		case '(':
			if depth > 0 {
				continue
			}
			rest := p.src[i+1:]
			if !strings.HasPrefix(rest, "?") {
				p.groupCount++
				continue
			}
			if strings.HasPrefix(rest, "?<") && !strings.HasPrefix(rest, "?<=") && !strings.HasPrefix(rest, "?<!") {
				p.groupCount++
				if end := strings.IndexByte(rest, '>'); end > 2 {
					p.names[rest[2:end]] = true
				}
			}
		}
	}
}

func (p *parser) errorf(pos int, msg string) error {
	return &SyntaxError{Pattern: p.src, Flags: p.flags, Pos: pos, Msg: msg}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

// peek returns the rune at the current position, or -1 at end of input.
func (p *parser) peek() rune {
	if p.eof() {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

// peekAt returns the rune n bytes ahead of the current position.
func (p *parser) peekAt(n int) rune {
	if p.pos+n >= len(p.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos+n:])
	return r
}

func (p *parser) next() rune {
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return r
}

func (p *parser) eat(r rune) bool {
	if p.peek() == r {
		p.next()
		return true
	}
	return false
}

func (p *parser) eatString(s string) bool {
	if strings.HasPrefix(p.src[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *parser) position(start int) ast.Position {
	return ast.Position{Start: start, End: p.pos, Raw: p.src[start:p.pos]}
}

func (p *parser) parseDisjunction() ([]*ast.Alternative, error) {
	var alts []*ast.Alternative
	for {
		alt, err := p.parseAlternative()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
		if !p.eat('|') {
			return alts, nil
		}
	}
}

func (p *parser) parseAlternative() (*ast.Alternative, error) {
	start := p.pos
	alt := &ast.Alternative{}
	for !p.eof() && p.peek() != '|' && p.peek() != ')' {
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		alt.Elements = append(alt.Elements, term)
	}
	alt.Position = p.position(start)
	return alt, nil
}

func (p *parser) parseTerm() (ast.Element, error) {
	if a, ok, err := p.parseAssertion(); ok || err != nil {
		if err != nil {
			return nil, err
		}
		quantifiable := a.AssertKind == ast.AssertLookahead && !p.unicode
		if !quantifiable {
			if p.atQuantifier() {
				return nil, p.errorf(p.pos, msgNothingToRepeat)
			}
			return a, nil
		}
		return p.parseQuantified(a)
	}

	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	return p.parseQuantified(atom)
}

// parseQuantified attaches a following quantifier, if any, to e. The
// element's own span does not include the quantifier; Quantifier.Raw does.
func (p *parser) parseQuantified(e ast.Element) (ast.Element, error) {
	q, err := p.parseQuantifier()
	if err != nil {
		return nil, err
	}
	if q != nil {
		ast.SetQuantifier(e, q)
	}
	return e, nil
}

func setPosition(e ast.Element, pos ast.Position) {
	switch n := e.(type) {
	case *ast.Group:
		n.Position = pos
	case *ast.CapturingGroup:
		n.Position = pos
	case *ast.Assertion:
		n.Position = pos
	case *ast.CharacterClass:
		n.Position = pos
	case *ast.CharacterClassRange:
		n.Position = pos
	case *ast.Character:
		n.Position = pos
	case *ast.Backreference:
		n.Position = pos
	}
}

// parseAssertion parses ^, $, \b, \B and lookaround groups.
func (p *parser) parseAssertion() (*ast.Assertion, bool, error) {
	start := p.pos
	a := &ast.Assertion{}
	switch {
	case p.eat('^'):
		a.AssertKind = ast.AssertBeginning
	case p.eat('$'):
		a.AssertKind = ast.AssertEnd
	case p.eatString(`\b`):
		a.AssertKind = ast.AssertWord
	case p.eatString(`\B`):
		a.AssertKind = ast.AssertWord
		a.Negate = true
	case p.eatString("(?="), p.eatString("(?!"):
		a.AssertKind = ast.AssertLookahead
		a.Negate = p.src[p.pos-1] == '!'
	case p.eatString("(?<="), p.eatString("(?<!"):
		a.AssertKind = ast.AssertLookbehind
		a.Negate = p.src[p.pos-1] == '!'
	default:
		return nil, false, nil
	}
	if a.IsLookaround() {
		alts, err := p.parseDisjunction()
		if err != nil {
			return nil, true, err
		}
		if !p.eat(')') {
			return nil, true, p.errorf(p.pos, msgUnterminatedGroup)
		}
		a.Alternatives = alts
	}
	a.Position = p.position(start)
	return a, true, nil
}

func (p *parser) parseAtom() (ast.Element, error) {
	start := p.pos
	switch c := p.peek(); c {
	case '.':
		p.next()
		return &ast.CharacterClass{Position: p.position(start)}, nil
	case '(':
		return p.parseGroup()
	case '[':
		return p.parseClass()
	case '\\':
		return p.parseAtomEscape()
	case '*', '+', '?':
		return nil, p.errorf(start, msgNothingToRepeat)
	case '{':
		if _, _, ok := p.scanBraces(); ok {
			return nil, p.errorf(start, msgNothingToRepeat)
		}
		if p.unicode {
			return nil, p.errorf(start, msgLoneBrackets)
		}
	case '}', ']':
		if p.unicode {
			return nil, p.errorf(start, msgLoneBrackets)
		}
	}
	r := p.next()
	return &ast.Character{Position: p.position(start), Value: r}, nil
}

func (p *parser) parseGroup() (ast.Element, error) {
	start := p.pos
	p.next() // (

	var node ast.Element
	var alts *[]*ast.Alternative
	switch {
	case p.eatString("?:"):
		g := &ast.Group{}
		node, alts = g, &g.Alternatives
	case p.eatString("?<"):
		name, err := p.parseGroupName()
		if err != nil {
			return nil, err
		}
		if p.seenNames[name] {
			return nil, p.errorf(start, msgDuplicateName)
		}
		p.seenNames[name] = true
		p.capIndex++
		g := &ast.CapturingGroup{Index: p.capIndex, Name: name}
		node, alts = g, &g.Alternatives
	case p.peek() == '?':
		return nil, p.errorf(p.pos, msgInvalidGroup)
	default:
		p.capIndex++
		g := &ast.CapturingGroup{Index: p.capIndex}
		node, alts = g, &g.Alternatives
	}

	parsed, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	if !p.eat(')') {
		return nil, p.errorf(p.pos, msgUnterminatedGroup)
	}
	*alts = parsed
	setPosition(node, p.position(start))
	return node, nil
}

// parseGroupName parses "name>" after "(?<" or "\k<".
func (p *parser) parseGroupName() (string, error) {
	start := p.pos
	for !p.eof() && p.peek() != '>' {
		r := p.next()
		first := p.pos-utf8.RuneLen(r) == start
		if first && !isIDStart(r) || !first && !isIDContinue(r) {
			return "", p.errorf(start, msgInvalidGroupName)
		}
	}
	name := p.src[start:p.pos]
	if name == "" || !p.eat('>') {
		return "", p.errorf(start, msgInvalidGroupName)
	}
	return name, nil
}

func isIDStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r) || unicode.Is(unicode.Nl, r)
}

func isIDContinue(r rune) bool {
	return isIDStart(r) || unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc) ||
		r == '\u200c' || r == '\u200d'
}

// atQuantifier reports whether a quantifier starts at the current position.
func (p *parser) atQuantifier() bool {
	switch p.peek() {
	case '*', '+', '?':
		return true
	case '{':
		_, _, ok := p.scanBraces()
		return ok
	}
	return false
}

// scanBraces looks for {n}, {n,} or {n,m} at the current position without
// consuming input. It returns the bounds and whether the form is valid.
func (p *parser) scanBraces() (min, max int, ok bool) {
	rest := p.src[p.pos:]
	if !strings.HasPrefix(rest, "{") {
		return 0, 0, false
	}
	end := strings.IndexByte(rest, '}')
	if end < 0 {
		return 0, 0, false
	}
	body := rest[1:end]
	lo, hi, hasComma := strings.Cut(body, ",")
	if !isDigits(lo) || hasComma && hi != "" && !isDigits(hi) {
		return 0, 0, false
	}
	min = atoiClamped(lo)
	switch {
	case !hasComma:
		max = min
	case hi == "":
		max = ast.Unbounded
	default:
		max = atoiClamped(hi)
	}
	return min, max, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// atoiClamped parses a run of digits, saturating at MaxInt32 like engines do
// for oversized repetition counts.
func atoiClamped(s string) int {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 1<<31 - 1
	}
	return int(n)
}

func (p *parser) parseQuantifier() (*ast.Quantifier, error) {
	start := p.pos
	q := &ast.Quantifier{Greedy: true}
	switch p.peek() {
	case '*':
		p.next()
		q.Min, q.Max = 0, ast.Unbounded
	case '+':
		p.next()
		q.Min, q.Max = 1, ast.Unbounded
	case '?':
		p.next()
		q.Min, q.Max = 0, 1
	case '{':
		min, max, ok := p.scanBraces()
		if !ok {
			return nil, nil
		}
		if max != ast.Unbounded && min > max {
			return nil, p.errorf(start, msgOutOfOrder)
		}
		p.pos += strings.IndexByte(p.src[p.pos:], '}') + 1
		q.Min, q.Max = min, max
	default:
		return nil, nil
	}
	if p.eat('?') {
		q.Greedy = false
	}
	q.Raw = p.src[start:p.pos]
	return q, nil
}

package parser

import (
	"strconv"
	"strings"

	"github.com/KromDaniel/regraph/ast"
)

// syntaxCharacters may always be escaped, in every mode.
const syntaxCharacters = `^$\.*+?()[]{}|/`

func isClassEscapeLetter(r rune) bool {
	return strings.ContainsRune("dDsSwW", r)
}

func isHex(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
}

func isASCIILetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// parseAtomEscape parses an escape outside a character class. The current
// position is at the backslash.
func (p *parser) parseAtomEscape() (ast.Element, error) {
	start := p.pos
	p.next() // \
	if p.eof() {
		return nil, p.errorf(start, msgTrailingBackslash)
	}

	c := p.peek()
	switch {
	case c >= '1' && c <= '9':
		save := p.pos
		digits := p.scanDigits()
		if n := atoiClamped(digits); n <= p.groupCount {
			br := &ast.Backreference{Index: n}
			br.Position = p.position(start)
			p.backrefs = append(p.backrefs, br)
			return br, nil
		}
		if p.unicode {
			return nil, p.errorf(start, msgInvalidEscape)
		}
		p.pos = save
		return p.character(start, p.legacyOctalOrIdentity()), nil

	case c == '0':
		p.next()
		if d := p.peek(); d >= '0' && d <= '9' {
			if p.unicode {
				return nil, p.errorf(start, msgInvalidDecimal)
			}
			p.pos--
			return p.character(start, p.legacyOctalOrIdentity()), nil
		}
		return p.character(start, 0), nil

	case isClassEscapeLetter(c):
		p.next()
		return &ast.CharacterClass{Position: p.position(start), Negate: c >= 'A' && c <= 'Z'}, nil

	case (c == 'p' || c == 'P') && p.unicode:
		return p.parsePropertyEscape(start)

	case c == 'k' && (p.unicode || len(p.names) > 0):
		p.next()
		if !p.eat('<') {
			return nil, p.errorf(start, msgInvalidNamedRefTok)
		}
		name, err := p.parseGroupName()
		if err != nil {
			return nil, p.errorf(start, msgInvalidNamedRefTok)
		}
		br := &ast.Backreference{Name: name}
		br.Position = p.position(start)
		p.backrefs = append(p.backrefs, br)
		return br, nil
	}

	r, err := p.parseCharacterEscape(start, false)
	if err != nil {
		return nil, err
	}
	return p.character(start, r), nil
}

func (p *parser) character(start int, r rune) *ast.Character {
	return &ast.Character{Position: p.position(start), Value: r}
}

func (p *parser) scanDigits() string {
	start := p.pos
	for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	return p.src[start:p.pos]
}

// legacyOctalOrIdentity implements the Annex B fallback for a decimal escape
// that is not a backreference: up to three octal digits (value at most 0377),
// or the digit itself for 8 and 9.
func (p *parser) legacyOctalOrIdentity() rune {
	c := p.peek()
	if c == '8' || c == '9' {
		p.next()
		return c
	}
	var v rune
	for i := 0; i < 3; i++ {
		d := p.peek()
		if d < '0' || d > '7' {
			break
		}
		nv := v*8 + (d - '0')
		if nv > 0377 {
			break
		}
		v = nv
		p.next()
	}
	return v
}

// parsePropertyEscape parses \p{...} or \P{...} in unicode mode.
func (p *parser) parsePropertyEscape(start int) (ast.Element, error) {
	negate := p.next() == 'P'
	if !p.eat('{') {
		return nil, p.errorf(start, msgInvalidProperty)
	}
	nameStart := p.pos
	for !p.eof() && p.peek() != '}' {
		r := p.next()
		if !(isASCIILetter(r) || r >= '0' && r <= '9' || r == '_' || r == '=') {
			return nil, p.errorf(start, msgInvalidProperty)
		}
	}
	if p.pos == nameStart || !p.eat('}') {
		return nil, p.errorf(start, msgInvalidProperty)
	}
	return &ast.CharacterClass{Position: p.position(start), Negate: negate}, nil
}

// parseCharacterEscape parses a CharacterEscape after the backslash, which
// starts at start.
func (p *parser) parseCharacterEscape(start int, inClass bool) (rune, error) {
	c := p.next()
	switch c {
	case 'f':
		return '\f', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'v':
		return '\v', nil
	case 'c':
		if l := p.peek(); isASCIILetter(l) {
			p.next()
			return l % 32, nil
		}
		if l := p.peek(); inClass && !p.unicode && (l >= '0' && l <= '9' || l == '_') {
			p.next()
			return l % 32, nil
		}
		if p.unicode {
			return 0, p.errorf(start, msgInvalidUnicode)
		}
		// Annex B: the backslash stands for itself and c is read again.
		p.pos--
		return '\\', nil
	case 'x':
		if isHex(p.peek()) && isHex(p.peekAt(1)) {
			v, _ := strconv.ParseUint(p.src[p.pos:p.pos+2], 16, 32)
			p.pos += 2
			return rune(v), nil
		}
		if p.unicode {
			return 0, p.errorf(start, msgInvalidEscape)
		}
		return 'x', nil
	case 'u':
		if r, ok := p.parseUnicodeEscape(); ok {
			return r, nil
		}
		if p.unicode {
			return 0, p.errorf(start, msgInvalidUnicode)
		}
		return 'u', nil
	}

	if p.unicode {
		if strings.ContainsRune(syntaxCharacters, c) || inClass && c == '-' {
			return c, nil
		}
		return 0, p.errorf(start, msgInvalidEscape)
	}
	return c, nil
}

// parseUnicodeEscape parses the part after \u: four hex digits, a surrogate
// pair of such escapes in unicode mode, or \u{...} in unicode mode.
func (p *parser) parseUnicodeEscape() (rune, bool) {
	if p.unicode && p.peek() == '{' {
		end := strings.IndexByte(p.src[p.pos:], '}')
		if end < 2 {
			return 0, false
		}
		digits := p.src[p.pos+1 : p.pos+end]
		v, err := strconv.ParseUint(digits, 16, 32)
		if err != nil || v > 0x10FFFF {
			return 0, false
		}
		p.pos += end + 1
		return rune(v), true
	}

	lead, ok := p.hex4(p.pos)
	if !ok {
		return 0, false
	}
	p.pos += 4
	if p.unicode && lead >= 0xD800 && lead <= 0xDBFF && strings.HasPrefix(p.src[p.pos:], `\u`) {
		if trail, ok := p.hex4(p.pos + 2); ok && trail >= 0xDC00 && trail <= 0xDFFF {
			p.pos += 6
			return (lead-0xD800)<<10 + (trail - 0xDC00) + 0x10000, true
		}
	}
	return lead, true
}

func (p *parser) hex4(at int) (rune, bool) {
	if at+4 > len(p.src) {
		return 0, false
	}
	s := p.src[at : at+4]
	for _, r := range s {
		if !isHex(r) {
			return 0, false
		}
	}
	v, _ := strconv.ParseUint(s, 16, 32)
	return rune(v), true
}

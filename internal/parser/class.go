package parser

import (
	"github.com/KromDaniel/regraph/ast"
)

// classAtom is a single class member before range detection.
type classAtom struct {
	elem   ast.Element
	isChar bool
	value  rune
	raw    string
}

// parseClass parses a bracketed character class. The current position is at
// the opening bracket.
func (p *parser) parseClass() (*ast.CharacterClass, error) {
	start := p.pos
	p.next() // [
	class := &ast.CharacterClass{Bracket: true, Negate: p.eat('^')}

	for {
		if p.eof() {
			return nil, p.errorf(start, msgUnterminatedClass)
		}
		if p.eat(']') {
			break
		}
		if p.sets {
			if p.peek() == '[' {
				nested, err := p.parseClass()
				if err != nil {
					return nil, err
				}
				class.Elements = append(class.Elements, nested)
				continue
			}
			if p.eatString("&&") || p.eatString("--") {
				return nil, p.errorf(p.pos-2, msgSetOperation)
			}
		}

		atomStart := p.pos
		a, err := p.parseClassAtom()
		if err != nil {
			return nil, err
		}

		if p.peek() != '-' || p.peekAt(1) == ']' || p.peekAt(1) == -1 {
			class.Elements = append(class.Elements, a.elem)
			continue
		}

		dash := p.pos
		p.next() // -
		b, err := p.parseClassAtom()
		if err != nil {
			return nil, err
		}
		if !a.isChar || !b.isChar {
			if p.unicode {
				return nil, p.errorf(atomStart, msgInvalidClass)
			}
			// Annex B: a range with a class escape endpoint is three members.
			minus := &ast.Character{Position: ast.Position{Start: dash, End: dash + 1, Raw: "-"}, Value: '-'}
			class.Elements = append(class.Elements, a.elem, minus, b.elem)
			continue
		}
		if a.value > b.value {
			return nil, p.errorf(atomStart, msgRangeOutOfOrder)
		}
		class.Elements = append(class.Elements, &ast.CharacterClassRange{
			Position: p.position(atomStart),
			Min:      ast.Endpoint{Value: a.value, Raw: a.raw},
			Max:      ast.Endpoint{Value: b.value, Raw: b.raw},
		})
	}

	class.Position = p.position(start)
	return class, nil
}

func (p *parser) parseClassAtom() (classAtom, error) {
	start := p.pos
	if p.peek() != '\\' {
		r := p.next()
		return p.classChar(start, r), nil
	}

	p.next() // \
	if p.eof() {
		return classAtom{}, p.errorf(start, msgTrailingBackslash)
	}

	c := p.peek()
	switch {
	case c == 'b':
		p.next()
		return p.classChar(start, '\b'), nil

	case c == '-' && p.unicode:
		p.next()
		return p.classChar(start, '-'), nil

	case isClassEscapeLetter(c):
		p.next()
		cc := &ast.CharacterClass{Position: p.position(start), Negate: c >= 'A' && c <= 'Z'}
		return classAtom{elem: cc, raw: cc.Raw}, nil

	case (c == 'p' || c == 'P') && p.unicode:
		e, err := p.parsePropertyEscape(start)
		if err != nil {
			return classAtom{}, err
		}
		return classAtom{elem: e, raw: e.Text()}, nil

	case c >= '0' && c <= '9':
		if p.unicode {
			if c == '0' && !(p.peekAt(1) >= '0' && p.peekAt(1) <= '9') {
				p.next()
				return p.classChar(start, 0), nil
			}
			return classAtom{}, p.errorf(start, msgInvalidClassEscape)
		}
		return p.classChar(start, p.legacyOctalOrIdentity()), nil

	case c == 'k' && (p.unicode || len(p.names) > 0):
		return classAtom{}, p.errorf(start, msgInvalidEscape)
	}

	r, err := p.parseCharacterEscape(start, true)
	if err != nil {
		return classAtom{}, err
	}
	return p.classChar(start, r), nil
}

func (p *parser) classChar(start int, r rune) classAtom {
	ch := p.character(start, r)
	return classAtom{elem: ch, isChar: true, value: r, raw: ch.Raw}
}

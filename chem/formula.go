package chem

import (
	"fmt"
)

// FormulaError reports a malformed chemical formula with the byte position
// of the offending character.
type FormulaError struct {
	Formula  string
	Position int
	Message  string
}

// Error implements the error interface.
func (e *FormulaError) Error() string {
	return fmt.Sprintf("chem: invalid formula %q at position %d: %s", e.Formula, e.Position, e.Message)
}

// ParseFormula parses a chemical formula such as "Fe2O3", "Ca(OH)2" or
// "FeO1.5" into a Composition. Element symbols are an uppercase letter
// followed by optional lowercase letters; subscripts may be fractional;
// parenthesized groups nest.
func ParseFormula(formula string) (Composition, error) {
	p := &formulaParser{source: formula}
	comp, err := p.parseGroup(0)
	if err != nil {
		return nil, err
	}
	if !p.isAtEnd() {
		return nil, p.errorf("unexpected character %q", p.peek())
	}
	if len(comp) == 0 {
		return nil, p.errorf("empty formula")
	}
	return comp, nil
}

// formulaParser is a single-pass cursor over the formula string.
//
// Thread Safety: parser instances are not shared; ParseFormula creates one
// per call.
type formulaParser struct {
	source  string
	current int
}

// parseGroup parses a run of element/group terms until the closing
// delimiter of the enclosing group (or end of input at depth zero).
func (p *formulaParser) parseGroup(depth int) (Composition, error) {
	comp := Composition{}
	for !p.isAtEnd() {
		c := p.peek()
		switch {
		case c == '(':
			p.advance()
			inner, err := p.parseGroup(depth + 1)
			if err != nil {
				return nil, err
			}
			if p.isAtEnd() || p.peek() != ')' {
				return nil, p.errorf("unclosed parenthesis")
			}
			p.advance()
			mult := p.number(1)
			comp = comp.Add(inner, mult)
		case c == ')':
			if depth == 0 {
				return nil, p.errorf("unmatched closing parenthesis")
			}
			return comp, nil
		case c == ' ':
			p.advance()
		case isUpper(c):
			el := p.symbol()
			count := p.number(1)
			comp[el] += count
		default:
			return nil, p.errorf("unexpected character %q", c)
		}
	}
	if depth > 0 {
		return nil, p.errorf("unclosed parenthesis")
	}
	return comp, nil
}

// symbol consumes an element symbol: one uppercase letter plus any
// lowercase letters.
func (p *formulaParser) symbol() string {
	start := p.current
	p.advance()
	for !p.isAtEnd() && isLower(p.peek()) {
		p.advance()
	}
	return p.source[start:p.current]
}

// number consumes an optional decimal subscript, returning def when no
// digits follow.
func (p *formulaParser) number(def float64) float64 {
	start := p.current
	for !p.isAtEnd() && isDigit(p.peek()) {
		p.advance()
	}
	if !p.isAtEnd() && p.peek() == '.' && p.current+1 < len(p.source) && isDigit(p.source[p.current+1]) {
		p.advance()
		for !p.isAtEnd() && isDigit(p.peek()) {
			p.advance()
		}
	}
	if p.current == start {
		return def
	}
	var n float64
	fmt.Sscanf(p.source[start:p.current], "%g", &n)
	return n
}

func (p *formulaParser) errorf(format string, args ...any) error {
	return &FormulaError{
		Formula:  p.source,
		Position: p.current,
		Message:  fmt.Sprintf(format, args...),
	}
}

func (p *formulaParser) peek() byte { return p.source[p.current] }

func (p *formulaParser) advance() { p.current++ }

func (p *formulaParser) isAtEnd() bool { return p.current >= len(p.source) }

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// evalExpr evaluates a plain arithmetic/comparison expression left behind
// after reference and function substitution. It understands numbers,
// + - * / %, parentheses, comparisons and && / ||. Anything else is an
// error and the caller falls back to returning the raw string.
func evalExpr(input string) (any, error) {
	p := &exprParser{src: input}
	v, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected %q at offset %d", p.src[p.pos:], p.pos)
	}
	return v, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *exprParser) peek(tok string) bool {
	p.skipSpaces()
	return strings.HasPrefix(p.src[p.pos:], tok)
}

func (p *exprParser) accept(tok string) bool {
	if p.peek(tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *exprParser) parseOr() (any, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept("||") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = truthy(left) || truthy(right)
	}
	return left, nil
}

func (p *exprParser) parseAnd() (any, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.accept("&&") {
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = truthy(left) && truthy(right)
	}
	return left, nil
}

func (p *exprParser) parseComparison() (any, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch {
		case p.accept("=="):
			op = "=="
		case p.accept("!="):
			op = "!="
		case p.accept(">="):
			op = ">="
		case p.accept("<="):
			op = "<="
		case p.accept(">"):
			op = ">"
		case p.accept("<"):
			op = "<"
		default:
			return left, nil
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		a, b := numOr(left, 0), numOr(right, 0)
		switch op {
		case "==":
			left = a == b
		case "!=":
			left = a != b
		case ">":
			left = a > b
		case "<":
			left = a < b
		case ">=":
			left = a >= b
		case "<=":
			left = a <= b
		}
	}
}

func (p *exprParser) parseAdditive() (any, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("+"):
			right, err := p.parseMultiplicative()
			if err != nil {
				return nil, err
			}
			left = numOr(left, 0) + numOr(right, 0)
		case p.accept("-"):
			right, err := p.parseMultiplicative()
			if err != nil {
				return nil, err
			}
			left = numOr(left, 0) - numOr(right, 0)
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseMultiplicative() (any, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("*"):
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = numOr(left, 0) * numOr(right, 0)
		case p.accept("/"):
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			// Division by zero yields zero, same as the function table.
			if numOr(right, 0) == 0 {
				left = 0.0
			} else {
				left = numOr(left, 0) / numOr(right, 0)
			}
		case p.accept("%"):
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			if numOr(right, 0) == 0 {
				left = 0.0
			} else {
				left = float64(int64(numOr(left, 0)) % int64(numOr(right, 0)))
			}
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseUnary() (any, error) {
	if p.accept("-") {
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return -numOr(v, 0), nil
	}
	if p.accept("!") {
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return !truthy(v), nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (any, error) {
	p.skipSpaces()
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	if p.accept("(") {
		v, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.accept(")") {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		return v, nil
	}
	if p.src[p.pos] == '"' || p.src[p.pos] == '\'' {
		quote := p.src[p.pos]
		end := strings.IndexByte(p.src[p.pos+1:], quote)
		if end < 0 {
			return nil, fmt.Errorf("unterminated string literal")
		}
		s := p.src[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
		return s, nil
	}
	start := p.pos
	for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	if p.pos == start {
		return nil, fmt.Errorf("unexpected character %q", p.src[p.pos])
	}
	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

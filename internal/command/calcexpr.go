package command

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxCalcDepth bounds parenthesis nesting so a pathological input cannot
// blow the goroutine stack.
const maxCalcDepth = 64

// EvalExpr evaluates a basic arithmetic expression. Characters outside the
// arithmetic alphabet are stripped before parsing, so "2+2*3; import os"
// reduces to "2+2*3" and evaluates to 8. Supported: + - * / ( ), decimal
// numbers, unary minus. Division by zero and malformed input return errors.
func EvalExpr(input string) (float64, error) {
	var b strings.Builder
	for _, r := range input {
		switch {
		case r >= '0' && r <= '9', r == '+', r == '-', r == '*', r == '/',
			r == '(', r == ')', r == '.', r == ' ', r == '\t':
			b.WriteRune(r)
		}
	}
	p := &exprParser{src: b.String()}
	v, err := p.parseSum(0)
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return 0, fmt.Errorf("unexpected %q at offset %d", p.src[p.pos], p.pos)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("result out of range")
	}
	return v, nil
}

// FormatCalc renders a result without a trailing ".000000" for integral
// values.
func FormatCalc(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek() (byte, bool) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *exprParser) parseSum(depth int) (float64, error) {
	left, err := p.parseProduct(depth)
	if err != nil {
		return 0, err
	}
	for {
		c, ok := p.peek()
		if !ok || (c != '+' && c != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.parseProduct(depth)
		if err != nil {
			return 0, err
		}
		if c == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *exprParser) parseProduct(depth int) (float64, error) {
	left, err := p.parseUnary(depth)
	if err != nil {
		return 0, err
	}
	for {
		c, ok := p.peek()
		if !ok || (c != '*' && c != '/') {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary(depth)
		if err != nil {
			return 0, err
		}
		if c == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		}
	}
}

func (p *exprParser) parseUnary(depth int) (float64, error) {
	c, ok := p.peek()
	if ok && c == '-' {
		p.pos++
		v, err := p.parseUnary(depth)
		return -v, err
	}
	if ok && c == '+' {
		p.pos++
		return p.parseUnary(depth)
	}
	return p.parseAtom(depth)
}

func (p *exprParser) parseAtom(depth int) (float64, error) {
	c, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("unexpected end of expression")
	}
	if c == '(' {
		if depth >= maxCalcDepth {
			return 0, fmt.Errorf("expression nested too deeply")
		}
		p.pos++
		v, err := p.parseSum(depth + 1)
		if err != nil {
			return 0, err
		}
		c, ok = p.peek()
		if !ok || c != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("unexpected %q at offset %d", c, p.pos)
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", p.src[start:p.pos])
	}
	return v, nil
}

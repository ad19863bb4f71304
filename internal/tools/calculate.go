package tools

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/firebase/genkit/go/ai"
)

// CalculateInput is the calculator tool's parameters.
type CalculateInput struct {
	Expression string `json:"expression" jsonschema:"description=The mathematical expression to evaluate (e.g. \"2 + 2\")"`
}

// CalculateOutput is the calculator tool's result.
type CalculateOutput struct {
	Expression string  `json:"expression,omitempty"`
	Result     float64 `json:"result,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Calculate evaluates an arithmetic expression over + - * / ( ) and numeric
// literals using a small recursive-descent parser. Nothing outside that
// grammar is accepted; there is no identifier lookup and no host-language
// evaluation.
func (k *Kit) Calculate(_ *ai.ToolContext, input CalculateInput) (CalculateOutput, error) {
	result, err := evalExpression(input.Expression)
	if err != nil {
		k.logger.Debug("calculate failed", "expression", input.Expression, "error", err)
		return CalculateOutput{Error: "Invalid expression"}, nil
	}
	return CalculateOutput{Expression: input.Expression, Result: result}, nil
}

// Grammar:
//
//	expr   = term   { ("+" | "-") term }
//	term   = factor { ("*" | "/") factor }
//	factor = number | "(" expr ")" | "-" factor
func evalExpression(input string) (float64, error) {
	p := &exprParser{input: input}
	p.skipSpace()
	if p.pos == len(p.input) {
		return 0, errors.New("empty expression")
	}

	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}

	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return value, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parseExpr() (float64, error) {
	value, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpace()
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			value += rhs
		case '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			value -= rhs
		default:
			return value, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	value, err := p.parseFactor()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpace()
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			value *= rhs
		case '/':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, errors.New("division by zero")
			}
			value /= rhs
		default:
			return value, nil
		}
	}
}

func (p *exprParser) parseFactor() (float64, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return 0, errors.New("missing closing parenthesis")
		}
		p.pos++
		return value, nil
	case c == '-':
		p.pos++
		value, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -value, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	default:
		return 0, fmt.Errorf("unexpected character %q at position %d", c, p.pos)
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		p.pos++
	}

	literal := p.input[start:p.pos]
	if literal == "" || literal == "." || strings.Count(literal, ".") > 1 {
		return 0, fmt.Errorf("invalid number %q", literal)
	}
	return strconv.ParseFloat(literal, 64)
}

// peek returns the current byte, or 0 at end of input.
func (p *exprParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

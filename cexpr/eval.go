package cexpr

import (
	"errors"
	"fmt"
)

// Lookup resolves an identifier to its integer value.
type Lookup func(name string) (int64, bool)

var (
	// ErrNotInteger is returned when an expression contains a float literal.
	ErrNotInteger = errors.New("not an integer expression")
	// ErrUnknownIdent is returned when lookup cannot resolve an identifier.
	ErrUnknownIdent = errors.New("unknown identifier")
)

// Eval evaluates an integer C constant expression. It understands literals,
// identifiers resolved through lookup, parentheses, unary + - ~ and the
// binary operators * / % + - << >> & ^ | with C precedence.
func Eval(expr string, lookup Lookup) (int64, error) {
	var toks []tok
	for _, t := range scan(expr) {
		if t.kind != tokSpace {
			toks = append(toks, t)
		}
	}
	if len(toks) == 0 {
		return 0, fmt.Errorf("empty expression")
	}
	e := &evaluator{toks: toks, lookup: lookup}
	v, err := e.binary(0)
	if err != nil {
		return 0, err
	}
	if e.pos < len(e.toks) {
		return 0, fmt.Errorf("unexpected %q in %q", e.toks[e.pos].text, expr)
	}
	return v, nil
}

type evaluator struct {
	lookup Lookup
	toks   []tok
	pos    int
}

func precedence(op string) int {
	switch op {
	case "|":
		return 1
	case "^":
		return 2
	case "&":
		return 3
	case "<<", ">>":
		return 4
	case "+", "-":
		return 5
	case "*", "/", "%":
		return 6
	}
	return 0
}

func (e *evaluator) peek() *tok {
	if e.pos < len(e.toks) {
		return &e.toks[e.pos]
	}
	return nil
}

func (e *evaluator) binary(minPrec int) (int64, error) {
	lhs, err := e.unary()
	if err != nil {
		return 0, err
	}
	for {
		t := e.peek()
		if t == nil || t.kind != tokOp {
			return lhs, nil
		}
		prec := precedence(t.text)
		if prec == 0 || prec <= minPrec {
			return lhs, nil
		}
		op := t.text
		e.pos++
		rhs, err := e.binary(prec)
		if err != nil {
			return 0, err
		}
		lhs, err = apply(op, lhs, rhs)
		if err != nil {
			return 0, err
		}
	}
}

func apply(op string, a, b int64) (int64, error) {
	switch op {
	case "|":
		return a | b, nil
	case "^":
		return a ^ b, nil
	case "&":
		return a & b, nil
	case "<<":
		if b < 0 || b > 63 {
			return 0, fmt.Errorf("shift count %d out of range", b)
		}
		return a << uint(b), nil
	case ">>":
		if b < 0 || b > 63 {
			return 0, fmt.Errorf("shift count %d out of range", b)
		}
		return a >> uint(b), nil
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/", "%":
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		if op == "/" {
			return a / b, nil
		}
		return a % b, nil
	}
	return 0, fmt.Errorf("unknown operator %q", op)
}

func (e *evaluator) unary() (int64, error) {
	t := e.peek()
	if t == nil {
		return 0, fmt.Errorf("unexpected end of expression")
	}
	e.pos++
	switch t.kind {
	case tokNumber:
		if IsFloatLiteral(t.text) {
			return 0, fmt.Errorf("%w: %s", ErrNotInteger, t.text)
		}
		return ParseInt(t.text)
	case tokIdent:
		if e.lookup != nil {
			if v, ok := e.lookup(t.text); ok {
				return v, nil
			}
		}
		return 0, fmt.Errorf("%w: %s", ErrUnknownIdent, t.text)
	}

	switch t.text {
	case "(":
		v, err := e.binary(0)
		if err != nil {
			return 0, err
		}
		if c := e.peek(); c == nil || c.text != ")" {
			return 0, fmt.Errorf("missing ')'")
		}
		e.pos++
		return v, nil
	case "-":
		v, err := e.unary()
		return -v, err
	case "+":
		return e.unary()
	case "~":
		v, err := e.unary()
		return ^v, err
	}
	return 0, fmt.Errorf("unexpected %q", t.text)
}

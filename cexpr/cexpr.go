// Package cexpr handles C constant expressions as opaque text.
//
// Expressions read from headers are never evaluated by the declaration
// model. This package offers the three things the generator still needs:
// a token-level rewrite of a C expression into the equivalent Go constant
// expression, a best-effort integer evaluator used where Go requires a
// number (array lengths, range checks, enumerator values), and decoding of
// C string literal bodies.
package cexpr

import (
	"fmt"
	"strconv"
	"strings"
)

type tokKind int

const (
	tokNumber tokKind = iota
	tokIdent
	tokOp
	tokSpace
)

type tok struct {
	text string
	kind tokKind
}

func scan(expr string) []tok {
	var toks []tok
	for i := 0; i < len(expr); {
		c := expr[i]
		start := i
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			for i < len(expr) && (expr[i] == ' ' || expr[i] == '\t' || expr[i] == '\n' || expr[i] == '\r') {
				i++
			}
			toks = append(toks, tok{expr[start:i], tokSpace})
		case isDigit(c) || (c == '.' && i+1 < len(expr) && isDigit(expr[i+1])):
			for i < len(expr) {
				d := expr[i]
				if isAlnum(d) || d == '.' {
					i++
					continue
				}
				// exponent sign: 1e-5, but not 0x1e-5
				if (d == '-' || d == '+') && i > start && (expr[i-1] == 'e' || expr[i-1] == 'E') && !isHex(expr[start:i]) {
					i++
					continue
				}
				break
			}
			toks = append(toks, tok{expr[start:i], tokNumber})
		case isIdentStart(c):
			for i < len(expr) && isAlnum(expr[i]) {
				i++
			}
			toks = append(toks, tok{expr[start:i], tokIdent})
		case (c == '<' || c == '>') && i+1 < len(expr) && expr[i+1] == c:
			i += 2
			toks = append(toks, tok{expr[start:i], tokOp})
		default:
			i++
			toks = append(toks, tok{expr[start:i], tokOp})
		}
	}
	return toks
}

// ToGo rewrites a C constant expression into Go syntax. Integer and float
// suffixes are dropped and bitwise complement becomes '^'; everything else,
// including spacing, is kept verbatim.
func ToGo(expr string) string {
	var b strings.Builder
	for _, t := range scan(strings.TrimSpace(expr)) {
		switch {
		case t.kind == tokNumber:
			b.WriteString(goNumber(t.text))
		case t.kind == tokOp && t.text == "~":
			b.WriteByte('^')
		default:
			b.WriteString(t.text)
		}
	}
	return b.String()
}

func goNumber(lit string) string {
	if isHex(lit) {
		return strings.TrimRight(lit, "uUlL")
	}
	if IsFloatLiteral(lit) {
		return strings.TrimRight(lit, "fFlL")
	}
	return strings.TrimRight(lit, "uUlL")
}

// IsFloatLiteral reports whether lit is a decimal floating point literal,
// with or without a C suffix.
func IsFloatLiteral(lit string) bool {
	lit = strings.TrimPrefix(strings.TrimPrefix(lit, "-"), "+")
	if lit == "" || isHex(lit) || (!isDigit(lit[0]) && lit[0] != '.') {
		return false
	}
	return strings.ContainsAny(lit, ".eE") || strings.HasSuffix(lit, "f") || strings.HasSuffix(lit, "F")
}

// Identifiers returns the identifiers referenced by expr in order of appearance.
func Identifiers(expr string) []string {
	var ids []string
	for _, t := range scan(expr) {
		if t.kind == tokIdent {
			ids = append(ids, t.text)
		}
	}
	return ids
}

// ParseInt parses a C integer literal, accepting hex, octal and decimal
// forms with u/l suffixes. Values above MaxInt64 wrap as their uint64 bits.
func ParseInt(lit string) (int64, error) {
	s := strings.TrimRight(lit, "uUlL")
	if s == "" {
		return 0, fmt.Errorf("invalid integer literal %q", lit)
	}
	u, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer literal %q", lit)
	}
	return int64(u), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isHex(lit string) bool {
	return len(lit) > 1 && lit[0] == '0' && (lit[1] == 'x' || lit[1] == 'X')
}

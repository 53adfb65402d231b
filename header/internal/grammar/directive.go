package grammar

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/fmodgen/header/internal/token"
)

type valueKind int

const (
	valueNone valueKind = iota
	valueLiteral
	valueCalculation
	valueBrace
	valueIdent
	valueOther
)

func (k valueKind) flagValue() bool {
	return k == valueLiteral || k == valueCalculation || k == valueIdent
}

// directiveLine is a preprocessor line split into its parts. For defines,
// name is the macro name; params and funcLike describe function-like
// macros; value is the remaining text.
type directiveLine struct {
	keyword  string
	name     string
	params   string
	value    string
	funcLike bool
}

func parseDirective(text string) directiveLine {
	rest := strings.TrimSpace(strings.TrimPrefix(text, "#"))
	var d directiveLine
	d.keyword, rest = splitIdent(rest)
	if d.keyword != "define" {
		d.value = strings.TrimSpace(rest)
		return d
	}
	d.name, rest = splitIdent(strings.TrimLeft(rest, " \t"))
	if strings.HasPrefix(rest, "(") {
		d.funcLike = true
		if end := strings.IndexByte(rest, ')'); end >= 0 {
			d.params = strings.TrimSpace(rest[1:end])
			rest = rest[end+1:]
		} else {
			d.params, rest = strings.TrimSpace(rest[1:]), ""
		}
	}
	d.value = strings.TrimSpace(rest)
	return d
}

func (d directiveLine) isDefine() bool {
	return d.keyword == "define" && d.name != ""
}

func (d directiveLine) valueKind() valueKind {
	v := d.value
	switch {
	case v == "":
		return valueNone
	case strings.HasPrefix(v, "{") && strings.HasSuffix(v, "}"):
		return valueBrace
	case strings.HasPrefix(v, "(") && balanced(v):
		return valueCalculation
	case isLiteral(v):
		return valueLiteral
	case isIdentifier(v):
		return valueIdent
	}
	return valueOther
}

func splitIdent(s string) (string, string) {
	i := 0
	for i < len(s) && isIdentByte(s[i], i == 0) {
		i++
	}
	return s[:i], s[i:]
}

func isIdentByte(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

func isIdentifier(s string) bool {
	name, rest := splitIdent(s)
	return name != "" && rest == ""
}

// isLiteral accepts a signed numeric literal or a string literal.
func isLiteral(s string) bool {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return true
	}
	s = strings.TrimLeft(s, "+-")
	if s == "" || !((s[0] >= '0' && s[0] <= '9') || (s[0] == '.' && len(s) > 1)) {
		return false
	}
	toks := token.Tokenize(s)
	return len(toks) == 1 && toks[0].Type == token.Number
}

func balanced(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// defineProduction matches one #define directive accepted by ok.
func defineProduction(rule Rule, what string, ok func(c *cursor, d directiveLine) bool, build func(n *Node, d directiveLine, t token.Token)) Production {
	return Production{
		Rule: rule,
		match: func(c *cursor) (*Node, bool) {
			t, found := c.directive()
			if !found {
				return nil, false
			}
			d := parseDirective(t.Value)
			if !d.isDefine() || !ok(c, d) {
				c.pos--
				c.fail(what)
				return nil, false
			}
			n := &Node{Rule: rule, Line: t.Line, Column: t.Column}
			build(n, d, t)
			return n, true
		},
	}
}

// preset: #define NAME { v1, v2, ... }
var presetProduction = defineProduction(RulePreset, "preset define",
	func(c *cursor, d directiveLine) bool {
		return !d.funcLike && !c.excluded[d.name] && d.valueKind() == valueBrace
	},
	func(n *Node, d directiveLine, t token.Token) {
		n.add(RuleName, d.name, t.Line, t.Column)
		body := strings.TrimSpace(d.value[1 : len(d.value)-1])
		if body == "" {
			return
		}
		for _, v := range strings.Split(body, ",") {
			if v = strings.TrimSpace(v); v != "" {
				n.add(RuleValue, v, t.Line, t.Column)
			}
		}
	})

// constant: #define NAME literal|calculation
var constantProduction = defineProduction(RuleConstant, "constant define",
	func(c *cursor, d directiveLine) bool {
		if d.funcLike || c.excluded[d.name] {
			return false
		}
		k := d.valueKind()
		return k == valueLiteral || k == valueCalculation
	},
	func(n *Node, d directiveLine, t token.Token) {
		n.add(RuleName, d.name, t.Line, t.Column)
		n.add(RuleValue, d.value, t.Line, t.Column)
	})

// macros: #define NAME( ... to the end of the logical line
var macrosProduction = defineProduction(RuleMacros, "macro define",
	func(c *cursor, d directiveLine) bool { return d.funcLike },
	func(n *Node, d directiveLine, t token.Token) {
		n.add(RuleName, d.name, t.Line, t.Column)
		n.add(RuleParams, d.params, t.Line, t.Column)
		n.add(RuleBody, d.value, t.Line, t.Column)
	})

var skippedKeywords = map[string]bool{
	"if":      true,
	"ifdef":   true,
	"ifndef":  true,
	"elif":    true,
	"else":    true,
	"endif":   true,
	"include": true,
	"pragma":  true,
	"undef":   true,
}

// directive: recognised preprocessor lines that carry no declaration.
// Defines qualify when valueless, when their value is a helper expansion
// such as a calling convention, or when the dialect excludes their name.
func directive(c *cursor) (*Node, bool) {
	t, ok := c.directive()
	if !ok {
		return nil, false
	}
	d := parseDirective(t.Value)
	if skippedKeywords[d.keyword] {
		return &Node{Rule: RuleDirective, Text: t.Value, Line: t.Line, Column: t.Column}, true
	}
	if d.isDefine() && !d.funcLike {
		var reason string
		switch k := d.valueKind(); {
		case c.excluded[d.name]:
			reason = "excluded by dialect"
		case k == valueIdent:
			reason = "helper expansion"
		case k == valueOther:
			reason = "value is not a literal or parenthesized expression"
		case k != valueNone:
			c.pos--
			c.fail("supported directive")
			return nil, false
		}
		if reason != "" {
			Logger().Debug("skipped define",
				zap.String("file", c.file),
				zap.Int("line", t.Line),
				zap.String("name", d.name),
				zap.String("value", d.value),
				zap.String("reason", reason),
			)
		}
		return &Node{Rule: RuleDirective, Text: t.Value, Line: t.Line, Column: t.Column}, true
	}
	c.pos--
	c.fail("supported directive")
	return nil, false
}

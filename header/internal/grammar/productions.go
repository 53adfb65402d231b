package grammar

import (
	"strings"

	"github.com/wippyai/fmodgen/header/internal/token"
)

var fundamentalWords = map[string]bool{
	"unsigned": true,
	"signed":   true,
	"char":     true,
	"short":    true,
	"int":      true,
	"long":     true,
	"float":    true,
	"void":     true,
}

// typeName matches a fundamental keyword run or a user type identifier.
func (c *cursor) typeName(n *Node) bool {
	t, ok := c.peek()
	if !ok || t.Type != token.Ident {
		c.fail("type")
		return false
	}
	if !fundamentalWords[t.Value] {
		if _, ok := c.ident(); !ok {
			return false
		}
		n.add(RuleType, t.Value, t.Line, t.Column)
		return true
	}
	var words []string
	for {
		w, ok := c.peek()
		if !ok || w.Type != token.Ident || !fundamentalWords[w.Value] {
			break
		}
		words = append(words, w.Value)
		c.pos++
	}
	n.add(RuleType, strings.Join(words, " "), t.Line, t.Column)
	return true
}

// fundamental matches a keyword run only.
func (c *cursor) fundamental(n *Node) bool {
	t, ok := c.peek()
	if !ok || !fundamentalWords[t.Value] || t.Type != token.Ident {
		c.fail("fundamental type")
		return false
	}
	return c.typeName(n)
}

// pointer matches '*', '**' or '* const *'. No stars is not a failure.
func (c *cursor) pointer(n *Node) {
	start := c.pos
	var parts []string
	for {
		if c.accept("*") {
			parts = append(parts, "*")
			continue
		}
		if len(parts) > 0 && c.is("const") {
			if next, ok := c.peekAt(1); ok && next.Is("*") {
				c.pos++
				parts = append(parts, "const")
				continue
			}
		}
		break
	}
	if len(parts) > 0 {
		t := c.tokens[start]
		n.add(RulePointer, strings.Join(parts, " "), t.Line, t.Column)
	}
}

// qualifiedType matches [const] TYPE [pointer].
func (c *cursor) qualifiedType(n *Node) bool {
	if t, ok := c.peek(); ok && c.accept("const") {
		n.add(RuleConst, "const", t.Line, t.Column)
	}
	if !c.typeName(n) {
		return false
	}
	c.pointer(n)
	return true
}

func (c *cursor) name(n *Node, rule Rule) bool {
	t, ok := c.ident()
	if !ok {
		return false
	}
	n.add(rule, t.Value, t.Line, t.Column)
	return true
}

func (c *cursor) startNode(rule Rule) *Node {
	t, _ := c.peek()
	return &Node{Rule: rule, Line: t.Line, Column: t.Column}
}

// opaqueType: typedef struct TAG ALIAS ;
func opaqueType(c *cursor) (*Node, bool) {
	n := c.startNode(RuleOpaqueType)
	ok := c.expect("typedef") && c.expect("struct") &&
		c.name(n, RuleTag) && c.name(n, RuleAlias) && c.expect(";")
	return n, ok
}

// structure: typedef struct [TAG] { Field+ [union { Field+ } ;] } ALIAS ;
func structure(c *cursor) (*Node, bool) {
	n := c.startNode(RuleStructure)
	if !c.expect("typedef") || !c.expect("struct") {
		return nil, false
	}
	if t, ok := c.peek(); ok && t.Type == token.Ident {
		c.name(n, RuleTag)
	}
	if !c.expect("{") {
		return nil, false
	}
	if !c.fields(n) {
		return nil, false
	}
	if c.is("union") {
		u := c.startNode(RuleUnion)
		c.pos++
		if !c.expect("{") || !c.fields(u) || !c.expect("}") || !c.expect(";") {
			return nil, false
		}
		n.Children = append(n.Children, u)
	}
	ok := c.expect("}") && c.name(n, RuleAlias) && c.expect(";")
	return n, ok
}

// fields matches one or more fields, stopping before '}' or 'union'.
func (c *cursor) fields(parent *Node) bool {
	count := 0
	for !c.done() && !c.is("}") && !c.is("union") {
		f := c.startNode(RuleField)
		if !c.qualifiedType(f) || !c.name(f, RuleName) {
			return false
		}
		if c.accept("[") {
			t, ok := c.peek()
			if !ok || (t.Type != token.Ident && t.Type != token.Number) {
				c.fail("array length")
				return false
			}
			c.pos++
			f.add(RuleArray, t.Value, t.Line, t.Column)
			if !c.expect("]") {
				return false
			}
		}
		if !c.expect(";") {
			return false
		}
		parent.Children = append(parent.Children, f)
		count++
	}
	if count == 0 {
		c.fail("field")
		return false
	}
	return true
}

// enumeration: typedef enum [TAG] { NAME [= expr] (, NAME [= expr])* [,] } NAME ;
func enumeration(c *cursor) (*Node, bool) {
	n := c.startNode(RuleEnumeration)
	if !c.expect("typedef") || !c.expect("enum") {
		return nil, false
	}
	if t, ok := c.peek(); ok && t.Type == token.Ident {
		c.name(n, RuleTag)
	}
	if !c.expect("{") {
		return nil, false
	}
	for {
		e := c.startNode(RuleEnumerator)
		if !c.name(e, RuleName) {
			return nil, false
		}
		if c.accept("=") {
			if !c.expression(e, ",", "}") {
				return nil, false
			}
		}
		n.Children = append(n.Children, e)
		if !c.accept(",") {
			break
		}
		if c.is("}") {
			break
		}
	}
	ok := c.expect("}") && c.name(n, RuleName) && c.expect(";")
	return n, ok
}

// expression captures verbatim source up to a stop token at depth zero.
func (c *cursor) expression(n *Node, stops ...string) bool {
	start, depth := c.pos, 0
	for !c.done() {
		t, _ := c.peek()
		if depth == 0 {
			stop := false
			for _, s := range stops {
				if t.Is(s) {
					stop = true
				}
			}
			if stop {
				break
			}
		}
		switch {
		case t.Type == token.Directive || t.Type == token.Invalid || t.Is(";"):
			c.fail("expression")
			return false
		case t.Is("("):
			depth++
		case t.Is(")"):
			if depth == 0 {
				c.fail("expression")
				return false
			}
			depth--
		}
		c.pos++
	}
	if c.pos == start {
		c.fail("expression")
		return false
	}
	first := c.tokens[start]
	n.add(RuleValue, c.slice(start, c.pos-1), first.Line, first.Column)
	return true
}

// typeAlias: typedef FUNDAMENTAL NAME ;
func typeAlias(c *cursor) (*Node, bool) {
	n := c.startNode(RuleTypeAlias)
	ok := c.expect("typedef") && c.fundamental(n) && c.name(n, RuleName) && c.expect(";")
	return n, ok
}

// flags: typedef FUNDAMENTAL NAME ; followed by one or more value defines.
func flags(c *cursor) (*Node, bool) {
	n, ok := typeAlias(c)
	if !ok {
		return nil, false
	}
	n.Rule = RuleFlags
	for !c.done() {
		t, _ := c.peek()
		if t.Type != token.Directive {
			break
		}
		d := parseDirective(t.Value)
		if !d.isDefine() || d.funcLike || c.excluded[d.name] || !d.valueKind().flagValue() {
			break
		}
		c.pos++
		f := n.add(RuleFlag, "", t.Line, t.Column)
		f.add(RuleName, d.name, t.Line, t.Column)
		f.add(RuleValue, d.value, t.Line, t.Column)
	}
	if len(n.All(RuleFlag)) == 0 {
		c.fail("flag define")
		return nil, false
	}
	return n, true
}

// callback: typedef [const] RET [ptr] ( [CALLCONV] * NAME ) ( args ) ;
func callback(c *cursor) (*Node, bool) {
	n := c.startNode(RuleCallback)
	if !c.expect("typedef") || !c.qualifiedType(n) || !c.expect("(") {
		return nil, false
	}
	if t, ok := c.peek(); ok && t.Type == token.Ident {
		c.pos++
		n.add(RuleCallConv, t.Value, t.Line, t.Column)
	}
	ok := c.expect("*") && c.name(n, RuleName) && c.expect(")") &&
		c.arguments(n) && c.expect(";")
	return n, ok
}

// function: [const] RET [ptr] CALLCONV NAME ( args ) ;
func function(c *cursor) (*Node, bool) {
	n := c.startNode(RuleFunction)
	ok := c.qualifiedType(n) && c.name(n, RuleCallConv) && c.name(n, RuleName) &&
		c.arguments(n) && c.expect(";")
	return n, ok
}

// arguments: ( ) | ( void ) | ( Argument (, Argument)* [, ...] )
func (c *cursor) arguments(n *Node) bool {
	if !c.expect("(") {
		return false
	}
	if c.accept(")") {
		return true
	}
	if t, ok := c.peekAt(1); ok && c.is("void") && t.Is(")") {
		c.pos += 2
		return true
	}
	for {
		if t, ok := c.peek(); ok && c.accept("...") {
			n.add(RuleVariadic, "...", t.Line, t.Column)
			break
		}
		a := c.startNode(RuleArgument)
		if !c.qualifiedType(a) || !c.name(a, RuleName) {
			return false
		}
		n.Children = append(n.Children, a)
		if !c.accept(",") {
			break
		}
	}
	return c.expect(")")
}

// linkage: extern "C" { and the closing } of an open block
func linkage(c *cursor) (*Node, bool) {
	n := c.startNode(RuleLinkage)
	if c.is("}") {
		if c.linkage == 0 {
			c.fail(`open extern "C" block`)
			return nil, false
		}
		c.pos++
		c.linkage--
		return n, true
	}
	if !c.expect("extern") {
		return nil, false
	}
	t, ok := c.peek()
	if !ok || t.Type != token.String || t.Value != "C" {
		c.fail(`"C"`)
		return nil, false
	}
	c.pos++
	if !c.expect("{") {
		return nil, false
	}
	c.linkage++
	return n, true
}

package grammar

import (
	"github.com/wippyai/fmodgen/header/internal/token"
)

// errorSignature: static const char * NAME ( Argument )
func (c *cursor) errorSignature(n *Node) bool {
	if !c.expect("static") || !c.expect("const") || !c.expect("char") || !c.expect("*") {
		return false
	}
	if !c.name(n, RuleName) || !c.expect("(") {
		return false
	}
	a := c.startNode(RuleArgument)
	if !c.qualifiedType(a) || !c.name(a, RuleName) || !c.expect(")") {
		return false
	}
	n.Children = append(n.Children, a)
	return true
}

// errorPrototype: static const char *NAME(TYPE ARG) __attribute__((unused));
func errorPrototype(c *cursor) (*Node, bool) {
	n := c.startNode(RuleErrorPrototype)
	if !c.errorSignature(n) {
		return nil, false
	}
	if !c.expect("__attribute__") || !c.expect("(") {
		return nil, false
	}
	for depth := 1; depth > 0; {
		t, ok := c.peek()
		if !ok || t.Type == token.Directive || t.Type == token.Invalid {
			c.fail("')'")
			return nil, false
		}
		c.pos++
		switch {
		case t.Is("("):
			depth++
		case t.Is(")"):
			depth--
		}
	}
	return n, c.expect(";")
}

// errorMapping:
//
//	static const char *NAME(TYPE ARG)
//	{
//	    switch (ARG)
//	    {
//	        case CODE: return "message";
//	        default: return "message";
//	    };
//	}
func errorMapping(c *cursor) (*Node, bool) {
	n := c.startNode(RuleErrorMapping)
	if !c.errorSignature(n) {
		return nil, false
	}
	if !c.expect("{") || !c.expect("switch") || !c.expect("(") {
		return nil, false
	}
	if _, ok := c.ident(); !ok {
		return nil, false
	}
	if !c.expect(")") || !c.expect("{") {
		return nil, false
	}
	for c.is("case") {
		k := c.startNode(RuleCase)
		c.pos++
		if !c.name(k, RuleCode) || !c.expect(":") || !c.returnString(k) {
			return nil, false
		}
		n.Children = append(n.Children, k)
	}
	if c.is("default") {
		k := c.startNode(RuleDefault)
		c.pos++
		if !c.expect(":") || !c.returnString(k) {
			return nil, false
		}
		n.Children = append(n.Children, k)
	}
	if !c.expect("}") {
		return nil, false
	}
	c.accept(";")
	return n, c.expect("}")
}

// returnString: return "message" ;
func (c *cursor) returnString(n *Node) bool {
	if !c.expect("return") {
		return false
	}
	t, ok := c.peek()
	if !ok || t.Type != token.String {
		c.fail("string")
		return false
	}
	c.pos++
	n.add(RuleMessage, t.Value, t.Line, t.Column)
	return c.expect(";")
}

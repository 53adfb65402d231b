package grammar

// Rule names a raw node kind. Top-level rules are productions; the rest
// are the parts a production captures.
type Rule string

const (
	RuleOpaqueType     Rule = "OpaqueType"
	RuleStructure      Rule = "Structure"
	RuleEnumeration    Rule = "Enumeration"
	RuleFlags          Rule = "Flags"
	RuleTypeAlias      Rule = "TypeAlias"
	RuleCallback       Rule = "Callback"
	RuleFunction       Rule = "Function"
	RulePreset         Rule = "Preset"
	RuleConstant       Rule = "Constant"
	RuleMacros         Rule = "Macros"
	RuleDirective      Rule = "Directive"
	RuleLinkage        Rule = "Linkage"
	RuleErrorPrototype Rule = "ErrorPrototype"
	RuleErrorMapping   Rule = "ErrorMapping"

	RuleField      Rule = "Field"
	RuleUnion      Rule = "Union"
	RuleEnumerator Rule = "Enumerator"
	RuleFlag       Rule = "Flag"
	RuleArgument   Rule = "Argument"
	RuleVariadic   Rule = "Variadic"
	RuleCase       Rule = "Case"
	RuleDefault    Rule = "Default"

	RuleConst    Rule = "Const"
	RuleType     Rule = "Type"
	RulePointer  Rule = "Pointer"
	RuleArray    Rule = "Array"
	RuleName     Rule = "Name"
	RuleTag      Rule = "Tag"
	RuleAlias    Rule = "Alias"
	RuleValue    Rule = "Value"
	RuleCallConv Rule = "CallConv"
	RuleParams   Rule = "Params"
	RuleBody     Rule = "Body"
	RuleCode     Rule = "Code"
	RuleMessage  Rule = "Message"
)

// Node is a raw parse node. Text holds the verbatim source of leaf nodes.
type Node struct {
	Rule     Rule
	Text     string
	Children []*Node
	Line     int
	Column   int
}

// Child returns the first child with the given rule, or nil.
func (n *Node) Child(rule Rule) *Node {
	for _, c := range n.Children {
		if c.Rule == rule {
			return c
		}
	}
	return nil
}

// ChildText returns the text of the first child with the given rule.
func (n *Node) ChildText(rule Rule) string {
	if c := n.Child(rule); c != nil {
		return c.Text
	}
	return ""
}

// All returns every child with the given rule in order.
func (n *Node) All(rule Rule) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Rule == rule {
			out = append(out, c)
		}
	}
	return out
}

func (n *Node) add(rule Rule, text string, line, col int) *Node {
	c := &Node{Rule: rule, Text: text, Line: line, Column: col}
	n.Children = append(n.Children, c)
	return c
}

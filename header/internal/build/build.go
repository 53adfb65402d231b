// Package build turns raw grammar nodes into declarations.
//
// The work is purely local: keyword text becomes a Fundamental, pointer
// text becomes a Pointer arity, array suffixes stay literal text. Type
// names are not resolved here.
package build

import (
	"strings"

	"github.com/wippyai/fmodgen/decl"
	"github.com/wippyai/fmodgen/errors"
	"github.com/wippyai/fmodgen/header/internal/grammar"
)

// Build converts the nodes of one file into its declaration sequence.
func Build(path string, dialect decl.Dialect, nodes []*grammar.Node) (*decl.File, error) {
	b := &builder{path: path, dialect: dialect}
	f := &decl.File{Path: path, Dialect: dialect, Decls: make([]decl.Declaration, 0, len(nodes))}
	for _, n := range nodes {
		d, err := b.declaration(n)
		if err != nil {
			return nil, err
		}
		f.Decls = append(f.Decls, d)
	}
	return f, nil
}

type builder struct {
	path    string
	dialect decl.Dialect
}

func (b *builder) loc(n *grammar.Node) errors.Location {
	return errors.Location{File: b.path, Line: n.Line, Column: n.Column}
}

func (b *builder) origin(n *grammar.Node) decl.Origin {
	return decl.Origin{Dialect: b.dialect, Pos: b.loc(n)}
}

func (b *builder) fail(n *grammar.Node, path []string, detail string, args ...any) error {
	return errors.New(errors.PhaseBuild, errors.KindInvalidData).
		Path(path...).
		Construct(string(n.Rule)).
		At(b.loc(n)).
		Detail(detail, args...).
		Build()
}

func (b *builder) declaration(n *grammar.Node) (decl.Declaration, error) {
	switch n.Rule {
	case grammar.RuleOpaqueType:
		return &decl.OpaqueType{
			Origin: b.origin(n),
			Alias:  n.ChildText(grammar.RuleAlias),
			Tag:    n.ChildText(grammar.RuleTag),
		}, nil
	case grammar.RuleConstant:
		return &decl.Constant{
			Origin: b.origin(n),
			Name:   n.ChildText(grammar.RuleName),
			Value:  decl.RawExpr(n.ChildText(grammar.RuleValue)),
		}, nil
	case grammar.RuleFlags:
		return b.flags(n)
	case grammar.RuleTypeAlias:
		return b.typeAlias(n)
	case grammar.RuleEnumeration:
		return b.enumeration(n), nil
	case grammar.RuleStructure:
		return b.structure(n)
	case grammar.RuleCallback:
		return b.callback(n)
	case grammar.RuleFunction:
		return b.function(n)
	case grammar.RulePreset:
		p := &decl.Preset{Origin: b.origin(n), Name: n.ChildText(grammar.RuleName)}
		for _, v := range n.All(grammar.RuleValue) {
			p.Values = append(p.Values, decl.RawExpr(v.Text))
		}
		return p, nil
	case grammar.RuleMacros:
		return &decl.Macro{
			Origin: b.origin(n),
			Name:   n.ChildText(grammar.RuleName),
			Params: n.ChildText(grammar.RuleParams),
			Body:   n.ChildText(grammar.RuleBody),
		}, nil
	case grammar.RuleErrorMapping:
		return b.errorMapping(n)
	}
	return nil, b.fail(n, nil, "unexpected node %s", n.Rule)
}

// typeOf classifies type text as a fundamental or a user reference.
func (b *builder) typeOf(n *grammar.Node, path []string) (decl.Type, error) {
	t := n.Child(grammar.RuleType)
	if t == nil {
		return decl.Type{}, b.fail(n, path, "missing type")
	}
	if f, ok := decl.ParseFundamental(t.Text); ok {
		return decl.Fund(f), nil
	}
	if strings.ContainsAny(t.Text, " \t") || fundamentalWord(t.Text) {
		return decl.Type{}, b.fail(t, path, "unknown fundamental type %q", t.Text)
	}
	return decl.UserRef(t.Text), nil
}

func fundamentalWord(s string) bool {
	switch s {
	case "unsigned", "signed", "char", "short", "int", "long", "float", "void":
		return true
	}
	return false
}

func (b *builder) pointerOf(n *grammar.Node, path []string) (decl.Pointer, error) {
	p, ok := decl.ParsePointer(n.ChildText(grammar.RulePointer))
	if !ok {
		return decl.None, b.fail(n, path, "unsupported pointer %q", n.ChildText(grammar.RulePointer))
	}
	return p, nil
}

func (b *builder) fundamentalOf(n *grammar.Node, name string) (decl.Fundamental, error) {
	text := n.ChildText(grammar.RuleType)
	f, ok := decl.ParseFundamental(text)
	if !ok {
		return decl.NotFundamental, b.fail(n, []string{name}, "unknown fundamental type %q", text)
	}
	return f, nil
}

func (b *builder) flags(n *grammar.Node) (decl.Declaration, error) {
	name := n.ChildText(grammar.RuleName)
	under, err := b.fundamentalOf(n, name)
	if err != nil {
		return nil, err
	}
	d := &decl.Flags{Origin: b.origin(n), Name: name, Underlying: under}
	for _, f := range n.All(grammar.RuleFlag) {
		d.Entries = append(d.Entries, decl.Flag{
			Name:  f.ChildText(grammar.RuleName),
			Value: decl.RawExpr(f.ChildText(grammar.RuleValue)),
			Pos:   b.loc(f),
		})
	}
	return d, nil
}

func (b *builder) typeAlias(n *grammar.Node) (decl.Declaration, error) {
	name := n.ChildText(grammar.RuleName)
	f, err := b.fundamentalOf(n, name)
	if err != nil {
		return nil, err
	}
	return &decl.TypeAlias{Origin: b.origin(n), Name: name, Base: decl.Fund(f)}, nil
}

func (b *builder) enumeration(n *grammar.Node) decl.Declaration {
	d := &decl.Enumeration{
		Origin: b.origin(n),
		Name:   n.ChildText(grammar.RuleName),
		Tag:    n.ChildText(grammar.RuleTag),
	}
	for _, e := range n.All(grammar.RuleEnumerator) {
		d.Entries = append(d.Entries, decl.Enumerator{
			Name:  e.ChildText(grammar.RuleName),
			Value: decl.RawExpr(e.ChildText(grammar.RuleValue)),
			Pos:   b.loc(e),
		})
	}
	return d
}

func (b *builder) structure(n *grammar.Node) (decl.Declaration, error) {
	tag := n.ChildText(grammar.RuleTag)
	alias := n.ChildText(grammar.RuleAlias)
	d := &decl.Structure{Origin: b.origin(n), Name: alias, Tag: tag}
	if tag != "" {
		d.Name = tag
		if alias != tag {
			d.TrailingAlias = alias
		}
	}

	fields, err := b.fields(n, d.Name)
	if err != nil {
		return nil, err
	}
	d.Fields = fields

	if u := n.Child(grammar.RuleUnion); u != nil {
		members, err := b.fields(u, d.Name)
		if err != nil {
			return nil, err
		}
		d.Union = members
		if d.Union == nil {
			d.Union = []decl.Field{}
		}
	}
	return d, nil
}

func (b *builder) fields(n *grammar.Node, owner string) ([]decl.Field, error) {
	var out []decl.Field
	for _, f := range n.All(grammar.RuleField) {
		path := []string{owner, f.ChildText(grammar.RuleName)}
		typ, err := b.typeOf(f, path)
		if err != nil {
			return nil, err
		}
		ptr, err := b.pointerOf(f, path)
		if err != nil {
			return nil, err
		}
		out = append(out, decl.Field{
			Const:    f.Child(grammar.RuleConst) != nil,
			Type:     typ,
			Pointer:  ptr,
			Name:     f.ChildText(grammar.RuleName),
			ArrayLen: decl.RawExpr(f.ChildText(grammar.RuleArray)),
			Pos:      b.loc(f),
		})
	}
	return out, nil
}

func (b *builder) arguments(n *grammar.Node, owner string) ([]decl.Argument, error) {
	var out []decl.Argument
	for _, a := range n.All(grammar.RuleArgument) {
		arg, err := b.argument(a, owner)
		if err != nil {
			return nil, err
		}
		out = append(out, arg)
	}
	return out, nil
}

func (b *builder) argument(a *grammar.Node, owner string) (decl.Argument, error) {
	path := []string{owner, a.ChildText(grammar.RuleName)}
	typ, err := b.typeOf(a, path)
	if err != nil {
		return decl.Argument{}, err
	}
	ptr, err := b.pointerOf(a, path)
	if err != nil {
		return decl.Argument{}, err
	}
	return decl.Argument{
		Const:   a.Child(grammar.RuleConst) != nil,
		Type:    typ,
		Pointer: ptr,
		Name:    a.ChildText(grammar.RuleName),
		Pos:     b.loc(a),
	}, nil
}

func (b *builder) callback(n *grammar.Node) (decl.Declaration, error) {
	name := n.ChildText(grammar.RuleName)
	ret, err := b.typeOf(n, []string{name})
	if err != nil {
		return nil, err
	}
	ptr, err := b.pointerOf(n, []string{name})
	if err != nil {
		return nil, err
	}
	args, err := b.arguments(n, name)
	if err != nil {
		return nil, err
	}
	return &decl.Callback{
		Origin:        b.origin(n),
		Name:          name,
		CallConv:      n.ChildText(grammar.RuleCallConv),
		Return:        ret,
		ReturnConst:   n.Child(grammar.RuleConst) != nil,
		ReturnPointer: ptr,
		Args:          args,
		Variadic:      n.Child(grammar.RuleVariadic) != nil,
	}, nil
}

func (b *builder) function(n *grammar.Node) (decl.Declaration, error) {
	name := n.ChildText(grammar.RuleName)
	if v := n.Child(grammar.RuleVariadic); v != nil {
		return nil, errors.New(errors.PhaseBuild, errors.KindUnsupported).
			Path(name).
			Construct("...").
			At(b.loc(v)).
			Detail("variadic functions are not supported").
			Build()
	}
	ret, err := b.typeOf(n, []string{name})
	if err != nil {
		return nil, err
	}
	ptr, err := b.pointerOf(n, []string{name})
	if err != nil {
		return nil, err
	}
	args, err := b.arguments(n, name)
	if err != nil {
		return nil, err
	}
	return &decl.Function{
		Origin:        b.origin(n),
		Name:          name,
		CallConv:      n.ChildText(grammar.RuleCallConv),
		Return:        ret,
		ReturnConst:   n.Child(grammar.RuleConst) != nil,
		ReturnPointer: ptr,
		Args:          args,
	}, nil
}

func (b *builder) errorMapping(n *grammar.Node) (decl.Declaration, error) {
	name := n.ChildText(grammar.RuleName)
	a := n.Child(grammar.RuleArgument)
	if a == nil {
		return nil, b.fail(n, []string{name}, "missing parameter")
	}
	param, err := b.argument(a, name)
	if err != nil {
		return nil, err
	}
	d := &decl.ErrorMapping{Origin: b.origin(n), Name: name, Param: param}
	for _, c := range n.All(grammar.RuleCase) {
		d.Entries = append(d.Entries, decl.ErrorCase{
			Code:    c.ChildText(grammar.RuleCode),
			Message: c.ChildText(grammar.RuleMessage),
		})
	}
	return d, nil
}

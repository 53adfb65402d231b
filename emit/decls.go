package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/fmodgen/cexpr"
	"github.com/wippyai/fmodgen/decl"
	"github.com/wippyai/fmodgen/errors"
)

func (w *writer) opaque(d *decl.OpaqueType) {
	// a tolerated re-declaration is emitted once
	if first, _ := w.model.Type(d.Alias); first != decl.Declaration(d) {
		return
	}
	w.buf.line("type %s struct{ _ [0]byte }", d.Tag)
	if d.Alias != d.Tag {
		w.buf.line("type %s = %s", d.Alias, d.Tag)
	}
	w.buf.blank()
}

// value renders a raw value expression as Go. Identifiers must name values
// of the model. When typ is set and the expression references a value
// outside own, it is converted to typ.
func (w *writer) value(owner string, raw decl.RawExpr, typ string, own map[string]bool) (string, error) {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) && len(text) >= 2 {
		return strconv.Quote(cexpr.DecodeString(text[1 : len(text)-1])), nil
	}
	foreign := false
	for _, id := range cexpr.Identifiers(text) {
		if own[id] {
			continue
		}
		if _, ok := w.model.Value(id); !ok {
			return "", errors.Unsupported(owner, "value references undeclared %s", id)
		}
		foreign = true
	}
	expr := cexpr.ToGo(text)
	if foreign && typ != "" {
		return typ + "(" + expr + ")", nil
	}
	return expr, nil
}

func (w *writer) flags(d *decl.Flags) error {
	s := scalars[d.Underlying]
	if s.goType == "" || d.Underlying == decl.Float {
		return errors.Unsupported(d.Name, "flags over %s", d.Underlying)
	}
	own := make(map[string]bool, len(d.Entries))
	for _, e := range d.Entries {
		own[e.Name] = true
	}

	w.buf.line("type %s %s", d.Name, s.goType)
	w.buf.blank()
	w.buf.line("const (")
	for _, e := range d.Entries {
		owner := d.Name + "." + e.Name
		if v, ok := w.model.IntValue(e.Name); ok && !s.fits(v) {
			return errors.Unsupported(owner, "value %d overflows %s", v, s.goType)
		}
		expr, err := w.value(owner, e.Value, d.Name, own)
		if err != nil {
			return err
		}
		w.buf.line("\t%s %s = %s", e.Name, d.Name, expr)
	}
	w.buf.line(")")
	w.buf.blank()
	return nil
}

func (w *writer) enumeration(d *decl.Enumeration) error {
	s := scalars[decl.Int]
	own := make(map[string]bool, len(d.Entries))
	for _, e := range d.Entries {
		own[e.Name] = true
	}

	w.buf.line("type %s %s", d.Name, s.goType)
	w.buf.blank()
	w.buf.line("const (")
	for _, v := range w.model.EnumValues(d) {
		owner := d.Name + "." + v.Name
		if v.Known && !s.fits(v.Value) {
			return errors.Unsupported(owner, "value %d overflows %s", v.Value, s.goType)
		}
		expr := v.Expr
		if v.Explicit {
			var err error
			if expr, err = w.value(owner, v.Raw, d.Name, own); err != nil {
				return err
			}
		}
		w.buf.line("\t%s %s = %s", v.Name, d.Name, expr)
	}
	w.buf.line(")")
	w.buf.blank()
	return nil
}

func (w *writer) constant(d *decl.Constant) error {
	expr, err := w.value(d.Name, d.Value, "", nil)
	if err != nil {
		return err
	}
	w.buf.line("const %s = %s", d.Name, expr)
	w.buf.blank()
	return nil
}

// preset emits a literal array. Elements are float32 when any value is a
// float literal, int32 otherwise.
func (w *writer) preset(d *decl.Preset) error {
	elem := "int32"
	for _, v := range d.Values {
		if cexpr.IsFloatLiteral(strings.TrimSpace(string(v))) {
			elem = "float32"
			break
		}
	}
	values := make([]string, len(d.Values))
	for i, v := range d.Values {
		expr, err := w.value(d.Name, v, "", nil)
		if err != nil {
			return err
		}
		values[i] = expr
	}
	w.buf.line("var %s = [%d]%s{%s}", d.Name, len(values), elem, strings.Join(values, ", "))
	w.buf.blank()
	return nil
}

func (w *writer) typeAlias(d *decl.TypeAlias) error {
	t := w.goType(d.Base, decl.None)
	if t == "" {
		return errors.Unsupported(d.Name, "alias of void")
	}
	w.buf.line("type %s = %s", d.Name, t)
	w.buf.blank()
	return nil
}

func (w *writer) macro(d *decl.Macro) {
	if w.cfg.Macros == MacroOmit {
		return
	}
	w.buf.line("// #define %s(%s) %s", d.Name, d.Params, d.Body)
	w.buf.blank()
}

// member renders the Go type of a structure or union member.
func (w *writer) member(owner string, f decl.Field) (string, error) {
	t := w.goType(f.Type, f.Pointer)
	if f.Pointer == decl.None {
		switch c, _ := w.classify(f.Type); c {
		case classVoid:
			return "", errors.Unsupported(owner, "member of type void")
		case classOpaque:
			return "", errors.Unsupported(owner, "%s is incomplete", f.Type)
		}
	}
	if f.ArrayLen == "" {
		return t, nil
	}
	n, err := w.value(owner, f.ArrayLen, "", nil)
	if err != nil {
		return "", err
	}
	return "[" + n + "]" + t, nil
}

func (w *writer) structure(d *decl.Structure) error {
	type field struct{ name, typ string }
	var fields []field
	seen := make(map[string]bool)
	for _, f := range d.Fields {
		owner := d.Name + "." + f.Name
		t, err := w.member(owner, f)
		if err != nil {
			return err
		}
		name := fieldName(f.Name)
		if seen[name] {
			return errors.Unsupported(owner, "field name %s is not unique in Go", name)
		}
		seen[name] = true
		fields = append(fields, field{name, t})
	}

	union := d.Name + "_UNION"
	if d.HasUnion() {
		if _, taken := w.model.Lookup(union); taken {
			return errors.Unsupported(d.Name, "union type name %s is already declared", union)
		}
		if seen["Union"] {
			return errors.Unsupported(d.Name, "field name Union is not unique in Go")
		}
		fields = append(fields, field{"Union", union})
	}

	w.buf.line("type %s struct {", d.Name)
	for _, f := range fields {
		w.buf.line("\t%s %s", f.name, f.typ)
	}
	w.buf.line("}")
	w.buf.blank()
	if d.TrailingAlias != "" {
		w.buf.line("type %s = %s", d.TrailingAlias, d.Name)
		w.buf.blank()
	}

	if d.HasUnion() {
		if err := w.union(d, union); err != nil {
			return err
		}
	}

	if w.byValue[d.Name] {
		elems, err := w.descriptor(d)
		if err != nil {
			return err
		}
		w.buf.line("var %s = ffi.NewType(%s)", descriptorName(d.Name), strings.Join(elems, ", "))
		w.buf.blank()
	}
	return nil
}

// union lowers a trailing anonymous union to an overlay type: zero-length
// arrays give it the strictest member alignment and the byte array the
// largest member size. Members are reached through typed accessors.
func (w *writer) union(d *decl.Structure, name string) error {
	w.buf.use("unsafe")
	type member struct{ name, typ string }
	var members []member
	seen := make(map[string]bool)
	for _, f := range d.Union {
		owner := d.Name + "." + f.Name
		t, err := w.member(owner, f)
		if err != nil {
			return err
		}
		m := fieldName(f.Name)
		if seen[m] {
			return errors.Unsupported(owner, "union member name %s is not unique in Go", m)
		}
		seen[m] = true
		members = append(members, member{m, t})
	}

	if len(members) == 0 {
		return errors.Unsupported(d.Name, "empty union")
	}
	sizes := make([]string, len(members))
	for i, m := range members {
		sizes[i] = fmt.Sprintf("unsafe.Sizeof([1]%s{})", m.typ)
	}
	size := sizes[0]
	if len(sizes) > 1 {
		size = "max(" + strings.Join(sizes, ", ") + ")"
	}

	w.buf.line("// %s overlays the members of the anonymous union of %s.", name, d.Name)
	w.buf.line("type %s struct {", name)
	for _, m := range members {
		w.buf.line("\t_ [0]%s", m.typ)
	}
	w.buf.line("\tdata [%s]byte", size)
	w.buf.line("}")
	w.buf.blank()
	for _, m := range members {
		w.buf.line("func (u *%s) %s() *%s { return (*%s)(unsafe.Pointer(&u.data)) }", name, m.name, m.typ, m.typ)
	}
	w.buf.blank()
	return nil
}

// cArgs renders a C parameter list for documentation.
func cArgs(args []decl.Argument, variadic bool) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range args {
		parts = append(parts, cDecl(a.Const, a.Type, a.Pointer, a.Name))
	}
	if variadic {
		parts = append(parts, "...")
	}
	if len(parts) == 0 {
		return "void"
	}
	return strings.Join(parts, ", ")
}

func cDecl(isConst bool, t decl.Type, p decl.Pointer, name string) string {
	var b strings.Builder
	if isConst {
		b.WriteString("const ")
	}
	b.WriteString(t.String())
	b.WriteByte(' ')
	b.WriteString(p.String())
	b.WriteString(name)
	return b.String()
}

// cSignature renders a C prototype for documentation.
func cSignature(retConst bool, ret decl.Type, retPtr decl.Pointer, callConv, name string, args []decl.Argument, variadic bool) string {
	sig := strings.TrimSpace(cDecl(retConst, ret, retPtr, ""))
	if callConv != "" {
		sig += " " + callConv
	}
	return sig + " " + name + "(" + cArgs(args, variadic) + ")"
}

func (w *writer) callback(d *decl.Callback) error {
	if d.Variadic && w.cfg.Variadic == VariadicReject {
		return errors.Unsupported(d.Name, "variadic callback")
	}
	w.buf.line("// %s is a pointer to a native function:", d.Name)
	w.buf.line("//")
	w.buf.line("//\t%s", cSignature(d.ReturnConst, d.Return, d.ReturnPointer, d.CallConv, d.Name, d.Args, d.Variadic))
	w.buf.line("//")
	w.buf.line("// with Go arguments:")
	w.buf.line("//")
	w.buf.line("//\t%s", goSignature(d))
	w.buf.line("type %s uintptr", d.Name)
	w.buf.blank()
	return nil
}

// goSignature renders a callback as a Go func type. The variadic tail of
// a C callback has no Go form and is left out.
func goSignature(d *decl.Callback) string {
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = goTypeName(a.Type, a.Pointer)
		if a.Name != "" {
			args[i] = paramName(a.Name) + " " + args[i]
		}
	}
	sig := "func(" + strings.Join(args, ", ") + ")"
	if ret := goTypeName(d.Return, d.ReturnPointer); ret != "" {
		sig += " " + ret
	}
	return sig
}

func (w *writer) errorMapping(d *decl.ErrorMapping) error {
	param := paramName(d.Param.Name)
	seen := make(map[string]bool, len(d.Entries))
	for _, c := range d.Entries {
		if _, ok := w.model.Value(c.Code); !ok {
			return errors.Unsupported(d.Name, "error code %s is not declared", c.Code)
		}
		if seen[c.Code] {
			return errors.Unsupported(d.Name, "error code %s is mapped twice", c.Code)
		}
		seen[c.Code] = true
	}

	w.buf.line("// %s returns the message of an error code.", d.Name)
	w.buf.line("func %s(%s %s) string {", d.Name, param, w.goType(d.Param.Type, d.Param.Pointer))
	w.buf.line("\tswitch %s {", param)
	for _, c := range d.Entries {
		w.buf.line("\tcase %s:", c.Code)
		w.buf.line("\t\treturn %s", strconv.Quote(cexpr.DecodeString(c.Message)))
	}
	w.buf.line("\tdefault:")
	w.buf.line("\t\treturn %q", "Unknown error.")
	w.buf.line("\t}")
	w.buf.line("}")
	w.buf.blank()
	return nil
}

package linker

import (
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/fmodgen/cexpr"
	"github.com/wippyai/fmodgen/decl"
	"github.com/wippyai/fmodgen/errors"
)

// Reference is one use of a type name. Path names the using site, such as
// FMOD_DSP_DESCRIPTION.read or FMOD_System_Create.system.
type Reference struct {
	Referrer decl.Declaration
	Path     []string
	At       errors.Location
}

// Model is a linked corpus. It is immutable once Link returns and safe for
// concurrent readers.
type Model struct {
	files    []*decl.File
	types    *namespace[decl.Declaration]
	funcs    *namespace[*decl.Function]
	values   *namespace[Value]
	errorMap *decl.ErrorMapping
	refs     map[string][]Reference
	ints     map[string]intValue
	enums    map[*decl.Enumeration][]decl.EnumValue
}

type intValue struct {
	n  int64
	ok bool
}

// Link registers and resolves the declarations of files. The returned error
// combines every duplicate and unresolved reference found, in file order;
// use multierr.Errors or errors.As to inspect them.
func Link(files []*decl.File) (*Model, error) {
	l := &linking{
		m: &Model{
			files:  files,
			types:  newNamespace[decl.Declaration](),
			funcs:  newNamespace[*decl.Function](),
			values: newNamespace[Value](),
			refs:   make(map[string][]Reference),
			ints:   make(map[string]intValue),
			enums:  make(map[*decl.Enumeration][]decl.EnumValue),
		},
		scope:      newNamespace[decl.Declaration](),
		evaluating: make(map[string]bool),
	}

	for _, f := range files {
		for _, d := range f.Decls {
			l.register(d)
		}
	}
	for _, f := range files {
		for _, d := range f.Decls {
			l.resolve(d)
		}
	}
	if err := multierr.Combine(l.errs...); err != nil {
		Logger().Debug("link failed", zap.Int("files", len(files)), zap.Int("errors", len(l.errs)))
		return nil, err
	}

	l.evaluate()
	Logger().Debug("linked corpus",
		zap.Int("files", len(files)),
		zap.Int("types", l.m.types.len()),
		zap.Int("functions", l.m.funcs.len()),
		zap.Int("values", l.m.values.len()),
	)
	return l.m, nil
}

// linking is the mutable state of one Link call.
type linking struct {
	m          *Model
	scope      *namespace[decl.Declaration]
	evaluating map[string]bool
	errs       []error
}

// claim reserves a package-scope identifier.
func (l *linking) claim(name string, d decl.Declaration, at errors.Location) bool {
	prev, ok := l.scope.define(name, d, at)
	if ok {
		return true
	}
	if sameOpaque(prev.item, d) {
		return false
	}
	l.errs = append(l.errs, &errors.DuplicateDeclarationError{Name: name, First: prev.at, Second: at})
	return false
}

func (l *linking) defineType(name string, d decl.Declaration) {
	at := d.Source().Pos
	if l.claim(name, d, at) {
		l.m.types.define(name, d, at)
	}
}

func (l *linking) defineValue(v Value) {
	if l.claim(v.Name, v.Owner, v.At) {
		l.m.values.define(v.Name, v, v.At)
	}
}

func (l *linking) register(d decl.Declaration) {
	at := d.Source().Pos
	switch d := d.(type) {
	case *decl.OpaqueType:
		l.defineType(d.Alias, d)
		if d.Tag != d.Alias {
			l.defineType(d.Tag, d)
		}
	case *decl.Structure:
		l.defineType(d.Name, d)
		if d.TrailingAlias != "" {
			l.defineType(d.TrailingAlias, d)
		}
	case *decl.Flags:
		l.defineType(d.Name, d)
		for _, e := range d.Entries {
			l.defineValue(Value{Owner: d, Name: e.Name, Expr: e.Value, At: e.Pos})
		}
	case *decl.Enumeration:
		l.defineType(d.Name, d)
		for _, e := range d.Entries {
			l.defineValue(Value{Owner: d, Name: e.Name, Expr: e.Value, At: e.Pos})
		}
	case *decl.Callback:
		l.defineType(d.Name, d)
	case *decl.TypeAlias:
		l.defineType(d.Name, d)
	case *decl.Function:
		if l.claim(d.Name, d, at) {
			l.m.funcs.define(d.Name, d, at)
		}
	case *decl.Constant:
		l.defineValue(Value{Owner: d, Name: d.Name, Expr: d.Value, At: at})
	case *decl.Preset:
		l.defineValue(Value{Owner: d, Name: d.Name, At: at})
	case *decl.ErrorMapping:
		if l.m.errorMap != nil {
			l.errs = append(l.errs, &errors.DuplicateDeclarationError{
				Name: d.Name, First: l.m.errorMap.Pos, Second: at,
			})
			return
		}
		if l.claim(d.Name, d, at) {
			l.m.errorMap = d
		}
	}
}

// use resolves one type reference and records it.
func (l *linking) use(t decl.Type, from decl.Declaration, at errors.Location, path ...string) {
	if !t.IsUser() {
		return
	}
	if _, ok := l.m.types.lookup(t.User); !ok {
		l.errs = append(l.errs, &errors.UnresolvedTypeError{
			Referrer: strings.Join(path, "."),
			Missing:  t.User,
			At:       at,
		})
		return
	}
	l.m.refs[t.User] = append(l.m.refs[t.User], Reference{Referrer: from, Path: path, At: at})
}

func (l *linking) resolve(d decl.Declaration) {
	at := d.Source().Pos
	switch d := d.(type) {
	case *decl.Structure:
		for _, f := range d.Fields {
			l.use(f.Type, d, f.Pos, d.Name, f.Name)
		}
		for _, f := range d.Union {
			l.use(f.Type, d, f.Pos, d.Name, f.Name)
		}
	case *decl.Callback:
		l.use(d.Return, d, at, d.Name)
		for _, a := range d.Args {
			l.use(a.Type, d, a.Pos, d.Name, a.Name)
		}
	case *decl.Function:
		l.use(d.Return, d, at, d.Name)
		for _, a := range d.Args {
			l.use(a.Type, d, a.Pos, d.Name, a.Name)
		}
	case *decl.TypeAlias:
		l.use(d.Base, d, at, d.Name)
	case *decl.ErrorMapping:
		l.use(d.Param.Type, d, d.Param.Pos, d.Name, d.Param.Name)
	}
}

// evaluate computes the integer value of every value that has one.
func (l *linking) evaluate() {
	for _, name := range l.m.values.order {
		l.intOf(name)
	}
	for _, f := range l.m.files {
		for _, d := range f.Decls {
			if e, ok := d.(*decl.Enumeration); ok {
				l.m.enums[e] = e.Values(l.intOf)
			}
		}
	}
}

func (l *linking) intOf(name string) (int64, bool) {
	if v, ok := l.m.ints[name]; ok {
		return v.n, v.ok
	}
	v, ok := l.m.values.lookup(name)
	if !ok || l.evaluating[name] {
		return 0, false
	}
	l.evaluating[name] = true
	defer delete(l.evaluating, name)

	var r intValue
	switch owner := v.Owner.(type) {
	case *decl.Enumeration:
		for _, ev := range owner.Values(l.intOf) {
			if ev.Name == name {
				r = intValue{n: ev.Value, ok: ev.Known}
				break
			}
		}
	case *decl.Preset:
	default:
		if n, err := cexpr.Eval(string(v.Expr), l.intOf); err == nil {
			r = intValue{n: n, ok: true}
		}
	}
	l.m.ints[name] = r
	return r.n, r.ok
}

// Files returns the linked files in input order.
func (m *Model) Files() []*decl.File { return m.files }

// Lookup finds a declaration by name: first among types, then functions,
// then the error mapping.
func (m *Model) Lookup(name string) (decl.Declaration, bool) {
	if d, ok := m.types.lookup(name); ok {
		return d, true
	}
	if f, ok := m.funcs.lookup(name); ok {
		return f, true
	}
	if m.errorMap != nil && m.errorMap.Name == name {
		return m.errorMap, true
	}
	return nil, false
}

// Type finds a declaration of the type namespace.
func (m *Model) Type(name string) (decl.Declaration, bool) {
	return m.types.lookup(name)
}

// Value finds a constant, preset, flag entry or enumerator.
func (m *Model) Value(name string) (Value, bool) {
	return m.values.lookup(name)
}

// IntValue returns the integer value of a constant, flag entry or
// enumerator when it can be evaluated.
func (m *Model) IntValue(name string) (int64, bool) {
	v := m.ints[name]
	return v.n, v.ok
}

// EnumValues returns the effective values of an enumeration of the model.
func (m *Model) EnumValues(e *decl.Enumeration) []decl.EnumValue {
	return m.enums[e]
}

// ErrorMapping returns the corpus error mapping, or nil when the corpus has
// none.
func (m *Model) ErrorMapping() *decl.ErrorMapping { return m.errorMap }

// References returns every use of a type name in resolution order.
func (m *Model) References(name string) []Reference { return m.refs[name] }

// Walk visits every declaration, files in input order and declarations in
// source order. It stops at the first error fn returns.
func (m *Model) Walk(fn func(f *decl.File, d decl.Declaration) error) error {
	for _, f := range m.files {
		for _, d := range f.Decls {
			if err := fn(f, d); err != nil {
				return err
			}
		}
	}
	return nil
}

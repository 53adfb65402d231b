package emit

import (
	"strings"

	"github.com/wippyai/fmodgen/cexpr"
	"github.com/wippyai/fmodgen/decl"
	"github.com/wippyai/fmodgen/errors"
)

// class is how a type by value crosses the native boundary.
type class int

const (
	classVoid class = iota
	classInt
	classFloat
	classPointer
	classStruct
	classOpaque
)

type scalar struct {
	goType  string
	ffiType string
	bits    int
	signed  bool
}

// Sizes assume an LP64 target.
var scalars = map[decl.Fundamental]scalar{
	decl.Char:             {"byte", "ffi.TypeSint8", 8, false},
	decl.SignedChar:       {"int8", "ffi.TypeSint8", 8, true},
	decl.UnsignedChar:     {"uint8", "ffi.TypeUint8", 8, false},
	decl.Short:            {"int16", "ffi.TypeSint16", 16, true},
	decl.UnsignedShort:    {"uint16", "ffi.TypeUint16", 16, false},
	decl.Int:              {"int32", "ffi.TypeSint32", 32, true},
	decl.UnsignedInt:      {"uint32", "ffi.TypeUint32", 32, false},
	decl.Long:             {"int64", "ffi.TypeSint64", 64, true},
	decl.UnsignedLong:     {"uint64", "ffi.TypeUint64", 64, false},
	decl.LongLong:         {"int64", "ffi.TypeSint64", 64, true},
	decl.UnsignedLongLong: {"uint64", "ffi.TypeUint64", 64, false},
	decl.Float:            {"float32", "ffi.TypeFloat", 32, true},
	decl.Void:             {"", "ffi.TypeVoid", 0, false},
}

// fits reports whether v is representable. 64-bit unsigned values are not
// checked because the evaluator carries them as their int64 bits.
func (s scalar) fits(v int64) bool {
	switch {
	case s.bits == 64:
		return true
	case s.signed:
		return v >= -(1<<(s.bits-1)) && v < 1<<(s.bits-1)
	}
	return v >= 0 && v < 1<<s.bits
}

// classify follows type aliases and flags down to how t is passed by value.
func (e *Emitter) classify(t decl.Type) (class, decl.Fundamental) {
	for depth := 0; t.IsUser() && depth < 8; depth++ {
		d, ok := e.model.Type(t.User)
		if !ok {
			return classOpaque, decl.NotFundamental
		}
		switch d := d.(type) {
		case *decl.Structure:
			return classStruct, decl.NotFundamental
		case *decl.Enumeration:
			return classInt, decl.Int
		case *decl.Callback:
			return classPointer, decl.NotFundamental
		case *decl.Flags:
			t = decl.Fund(d.Underlying)
		case *decl.TypeAlias:
			t = d.Base
		default:
			return classOpaque, decl.NotFundamental
		}
	}
	switch {
	case t.IsUser():
		return classOpaque, decl.NotFundamental
	case t.Fundamental == decl.Void:
		return classVoid, decl.Void
	case t.Fundamental == decl.Float:
		return classFloat, decl.Float
	}
	return classInt, t.Fundamental
}

// structOf returns the structure a user type names, if any.
func (e *Emitter) structOf(t decl.Type) (*decl.Structure, bool) {
	if !t.IsUser() {
		return nil, false
	}
	d, _ := e.model.Type(t.User)
	s, ok := d.(*decl.Structure)
	return s, ok
}

// goType renders a type with pointer arity as Go. void renders as the
// empty string, void* as unsafe.Pointer.
func (w *writer) goType(t decl.Type, p decl.Pointer) string {
	if t.IsVoid() && p != decl.None {
		w.buf.use("unsafe")
	}
	return goTypeName(t, p)
}

// goTypeName is goType without recording imports, for use in comments.
func goTypeName(t decl.Type, p decl.Pointer) string {
	if t.IsVoid() {
		if p == decl.None {
			return ""
		}
		return strings.Repeat("*", int(p)-1) + "unsafe.Pointer"
	}
	base := t.User
	if !t.IsUser() {
		base = scalars[t.Fundamental].goType
	}
	return strings.Repeat("*", int(p)) + base
}

// ffiType renders the libffi type descriptor of a value crossing the
// native boundary.
func (w *writer) ffiType(owner string, t decl.Type, p decl.Pointer) (string, error) {
	w.buf.use(importFFI)
	if p != decl.None {
		return "&ffi.TypePointer", nil
	}
	c, f := w.classify(t)
	switch c {
	case classPointer:
		return "&ffi.TypePointer", nil
	case classStruct:
		s, _ := w.structOf(t)
		return "&" + descriptorName(s.Name), nil
	case classOpaque:
		return "", errors.Unsupported(owner, "%s cannot be passed by value", t)
	}
	return "&" + scalars[f].ffiType, nil
}

func descriptorName(structure string) string {
	return "ffiType" + structure
}

// descriptor lists the libffi element types of a structure, expanding
// arrays to their element count.
func (w *writer) descriptor(s *decl.Structure) ([]string, error) {
	if s.HasUnion() {
		return nil, errors.Unsupported(s.Name, "a structure with a union cannot be passed by value")
	}
	var elems []string
	for _, f := range s.Fields {
		owner := s.Name + "." + f.Name
		elem, err := w.ffiType(owner, f.Type, f.Pointer)
		if err != nil {
			return nil, err
		}
		n := int64(1)
		if f.ArrayLen != "" {
			v, err := cexpr.Eval(string(f.ArrayLen), w.model.IntValue)
			if err != nil || v < 0 {
				return nil, errors.Unsupported(owner, "array length %s cannot be evaluated", f.ArrayLen)
			}
			n = v
		}
		for i := int64(0); i < n; i++ {
			elems = append(elems, elem)
		}
	}
	return elems, nil
}

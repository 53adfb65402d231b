package emit

import (
	"strconv"
	"strings"

	"github.com/wippyai/fmodgen/decl"
	"github.com/wippyai/fmodgen/errors"
)

// function emits a typed wrapper around the ffi.Fun handle of d. The
// handle itself is declared and prepared by the group load function.
func (w *writer) function(d *decl.Function) error {
	handle := w.handles[d.Name]
	retType := w.goType(d.Return, d.ReturnPointer)

	var retVar, retExpr string
	if d.ReturnPointer == decl.None {
		switch c, _ := w.classify(d.Return); c {
		case classVoid:
		case classInt:
			retVar, retExpr = "ffi.Arg", retType+"(ret)"
		case classOpaque:
			return errors.Unsupported(d.Name, "returns incomplete type %s by value", d.Return)
		default:
			retVar, retExpr = retType, "ret"
		}
	} else {
		retVar, retExpr = retType, "ret"
	}

	params := make([]string, len(d.Args))
	call := []string{"nil"}
	if retVar != "" {
		call[0] = "unsafe.Pointer(&ret)"
	}
	for i, a := range d.Args {
		owner := d.Name + "." + a.Name
		if a.Pointer == decl.None {
			switch c, _ := w.classify(a.Type); c {
			case classVoid:
				return errors.Unsupported(owner, "parameter of type void")
			case classOpaque:
				return errors.Unsupported(owner, "%s is incomplete", a.Type)
			}
		}
		name := paramName(a.Name)
		params[i] = name + " " + w.goType(a.Type, a.Pointer)
		call = append(call, "unsafe.Pointer(&"+name+")")
	}

	w.buf.use("unsafe")
	w.buf.use(importFFI)
	w.buf.line("// %s calls the native function:", d.Name)
	w.buf.line("//")
	w.buf.line("//\t%s", cSignature(d.ReturnConst, d.Return, d.ReturnPointer, d.CallConv, d.Name, d.Args, false))
	if retType == "" {
		w.buf.line("func %s(%s) {", d.Name, strings.Join(params, ", "))
	} else {
		w.buf.line("func %s(%s) %s {", d.Name, strings.Join(params, ", "), retType)
	}
	if retVar != "" {
		w.buf.line("\tvar ret %s", retVar)
	}
	w.buf.line("\t%s.Call(%s)", handle, strings.Join(call, ", "))
	if retExpr != "" {
		w.buf.line("\treturn %s", retExpr)
	}
	w.buf.line("}")
	w.buf.blank()

	w.functions = append(w.functions, d)
	return nil
}

// loadFunction emits the handle variables of the group and the function
// that opens the group library and prepares them.
func (w *writer) loadFunction() {
	if len(w.functions) == 0 {
		return
	}
	if w.group.Library == "" {
		w.fail(errors.InvalidInput(errors.PhaseEmit, "group "+w.group.Name+" declares functions but names no library"))
		return
	}

	w.buf.line("var (")
	for _, fn := range w.functions {
		w.buf.line("\t%s ffi.Fun", w.handles[fn.Name])
	}
	w.buf.line(")")
	w.buf.blank()

	w.buf.use("fmt")
	w.buf.line("func %s(dir string) error {", loaderName(w.group.Name))
	w.buf.line("\tlib, err := openLibrary(dir, %s)", strconv.Quote(w.group.Library))
	w.buf.line("\tif err != nil {")
	w.buf.line("\t\treturn err")
	w.buf.line("\t}")
	for _, fn := range w.functions {
		types := make([]string, 0, len(fn.Args)+1)
		ret := "&ffi.TypeVoid"
		if !fn.Return.IsVoid() || fn.ReturnPointer != decl.None {
			t, err := w.ffiType(fn.Name, fn.Return, fn.ReturnPointer)
			if err != nil {
				w.fail(err)
				continue
			}
			ret = t
		}
		types = append(types, ret)
		failed := false
		for _, a := range fn.Args {
			t, err := w.ffiType(fn.Name+"."+a.Name, a.Type, a.Pointer)
			if err != nil {
				w.fail(err)
				failed = true
				break
			}
			types = append(types, t)
		}
		if failed {
			continue
		}
		w.buf.line("\tif %s, err = lib.Prep(%s, %s); err != nil {", w.handles[fn.Name], strconv.Quote(fn.Name), strings.Join(types, ", "))
		w.buf.line("\t\treturn fmt.Errorf(%s, err)", strconv.Quote(fn.Name+": %w"))
		w.buf.line("\t}")
	}
	w.buf.line("\treturn nil")
	w.buf.line("}")
}

// loader renders loader.go: the exported Load entry point calling each
// group load function, and the platform library lookup.
func (e *Emitter) loader(groups []Group) []byte {
	b := newBuffer()
	b.use("fmt")
	b.use("path/filepath")
	b.use("runtime")
	b.use(importFFI)

	b.line("// Load opens the native libraries found in dir and prepares every")
	b.line("// function. It must succeed before any function is called.")
	b.line("func Load(dir string) error {")
	for _, g := range groups {
		b.line("\tif err := %s(dir); err != nil {", loaderName(g.Name))
		b.line("\t\treturn err")
		b.line("\t}")
	}
	b.line("\treturn nil")
	b.line("}")
	b.blank()
	b.line("func openLibrary(dir, name string) (ffi.Lib, error) {")
	b.line("\tlib, err := ffi.Load(filepath.Join(dir, libraryFile(name)))")
	b.line("\tif err != nil {")
	b.raw("\t\treturn ffi.Lib{}, fmt.Errorf(\"load %s: %w\", name, err)")
	b.line("\t}")
	b.line("\treturn lib, nil")
	b.line("}")
	b.blank()
	b.line("// libraryFile returns the platform file name of a native library.")
	b.line("func libraryFile(name string) string {")
	b.line("\tswitch runtime.GOOS {")
	b.line("\tcase \"darwin\":")
	b.line("\t\treturn \"lib\" + name + \".dylib\"")
	b.line("\tcase \"windows\":")
	b.line("\t\treturn name + \".dll\"")
	b.line("\t}")
	b.line("\treturn \"lib\" + name + \".so\"")
	b.line("}")

	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return b.source("// Code generated by "+e.cfg.Generator+" for groups "+strings.Join(names, ", ")+". DO NOT EDIT.", e.cfg.Package)
}

// Package emit renders a linked model as Go source that binds the native
// libraries through github.com/jupiterrider/ffi.
//
// Each group becomes one Go file. Inside a file the declarations of every
// header are emitted in sections:
//
//  1. opaque handles
//  2. flags, enumerations, constants, presets, type aliases and macros
//  3. structures
//  4. callbacks and functions
//  5. the error lookup
//
// Source order is kept within a section. A loader.go that opens the native
// libraries is added when any group declares functions. Output depends only
// on the model, the groups and the configuration.
package emit

import (
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/tools/imports"

	"github.com/wippyai/fmodgen/decl"
	"github.com/wippyai/fmodgen/errors"
	"github.com/wippyai/fmodgen/linker"
)

// Emitter generates Go source from a linked model.
type Emitter struct {
	model   *linker.Model
	handles map[string]string
	byValue map[string]bool
	cfg     Config
}

// New prepares an emitter for model.
func New(model *linker.Model, cfg Config) *Emitter {
	e := &Emitter{
		model:   model,
		cfg:     cfg,
		byValue: make(map[string]bool),
	}
	var functions []string
	_ = model.Walk(func(_ *decl.File, d decl.Declaration) error {
		if fn, ok := d.(*decl.Function); ok {
			functions = append(functions, fn.Name)
			e.demand(fn.Return, fn.ReturnPointer)
			for _, a := range fn.Args {
				e.demand(a.Type, a.Pointer)
			}
		}
		return nil
	})
	e.handles = handleNames(functions)
	return e
}

// demand marks a structure passed by value, and the structures nested in
// it by value, as needing a libffi descriptor.
func (e *Emitter) demand(t decl.Type, p decl.Pointer) {
	if p != decl.None {
		return
	}
	s, ok := e.structOf(t)
	if !ok || e.byValue[s.Name] {
		return
	}
	e.byValue[s.Name] = true
	for _, f := range s.Fields {
		e.demand(f.Type, f.Pointer)
	}
}

// Emit renders every group, in order, then the loader. Every unsupported
// construct found is reported in the combined error.
func (e *Emitter) Emit(groups []Group) ([]Output, error) {
	files := make(map[string]*decl.File, len(e.model.Files()))
	for _, f := range e.model.Files() {
		files[f.Path] = f
	}

	var (
		outs   []Output
		loaded []Group
		errs   error
	)
	for _, g := range groups {
		if g.Name == "" || g.Name == "loader" {
			errs = multierr.Append(errs, errors.InvalidInput(errors.PhaseEmit, "invalid group name "+g.Name))
			continue
		}
		w := &writer{Emitter: e, buf: newBuffer(), group: g}
		for _, path := range g.Files {
			f, ok := files[path]
			if !ok {
				w.fail(errors.NotFound(errors.PhaseEmit, "header", path))
				continue
			}
			w.file(f)
		}
		w.loadFunction()
		if len(w.functions) > 0 {
			loaded = append(loaded, g)
		}
		if w.errs != nil {
			errs = multierr.Append(errs, w.errs)
			continue
		}

		name := g.Name + ".go"
		src, err := e.format(name, w.buf.source(e.header(g.Files), e.cfg.Package))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		Logger().Debug("emitted group",
			zap.String("group", g.Name),
			zap.Int("headers", len(g.Files)),
			zap.Int("functions", len(w.functions)),
			zap.Int("bytes", len(src)),
		)
		outs = append(outs, Output{Name: name, Source: src})
	}
	if errs != nil {
		return nil, errs
	}

	if len(loaded) > 0 {
		src, err := e.format("loader.go", e.loader(loaded))
		if err != nil {
			return nil, err
		}
		outs = append(outs, Output{Name: "loader.go", Source: src})
	}
	return outs, nil
}

func (e *Emitter) header(files []string) string {
	return "// Code generated by " + e.cfg.Generator + " from " + strings.Join(files, ", ") + ". DO NOT EDIT."
}

// format runs the generated source through the goimports formatter without
// touching the import set.
func (e *Emitter) format(name string, src []byte) ([]byte, error) {
	out, err := imports.Process(name, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, errors.New(errors.PhaseEmit, errors.KindInvalidData).
			Path(name).
			Detail("generated source does not parse").
			Cause(err).
			Build()
	}
	return out, nil
}

// writer emits the declarations of one group.
type writer struct {
	*Emitter
	buf       *buffer
	errs      error
	functions []*decl.Function
	group     Group
}

func (w *writer) fail(err error) {
	w.errs = multierr.Append(w.errs, err)
}

const sections = 5

func section(d decl.Declaration) int {
	switch d.(type) {
	case *decl.OpaqueType:
		return 0
	case *decl.Structure:
		return 2
	case *decl.Callback, *decl.Function:
		return 3
	case *decl.ErrorMapping:
		return 4
	}
	return 1
}

func (w *writer) file(f *decl.File) {
	for s := 0; s < sections; s++ {
		for _, d := range f.Decls {
			if section(d) == s {
				w.declaration(d)
			}
		}
	}
}

func (w *writer) declaration(d decl.Declaration) {
	var err error
	switch d := d.(type) {
	case *decl.OpaqueType:
		w.opaque(d)
	case *decl.Flags:
		err = w.flags(d)
	case *decl.Enumeration:
		err = w.enumeration(d)
	case *decl.Constant:
		err = w.constant(d)
	case *decl.Preset:
		err = w.preset(d)
	case *decl.TypeAlias:
		err = w.typeAlias(d)
	case *decl.Macro:
		w.macro(d)
	case *decl.Structure:
		err = w.structure(d)
	case *decl.Callback:
		err = w.callback(d)
	case *decl.Function:
		err = w.function(d)
	case *decl.ErrorMapping:
		err = w.errorMapping(d)
	}
	if err != nil {
		w.fail(err)
	}
}

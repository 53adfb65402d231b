package fmodgen

import (
	"io/fs"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/fmodgen/decl"
	"github.com/wippyai/fmodgen/emit"
	"github.com/wippyai/fmodgen/errors"
	"github.com/wippyai/fmodgen/header"
	"github.com/wippyai/fmodgen/linker"
	"github.com/wippyai/fmodgen/manifest"
)

// Source is the text of one header and the dialect it is written in.
type Source struct {
	Path    string
	Dialect decl.Dialect
	Text    string
}

// LoadFunc returns the text of the header at path.
type LoadFunc func(path string) (string, error)

// FSLoader loads headers from fsys. Paths are slash-separated and relative
// to its root.
func FSLoader(fsys fs.FS) LoadFunc {
	return func(path string) (string, error) {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// Translate translates one header. See header.Translate.
func Translate(dialect decl.Dialect, path, text string) (*decl.File, error) {
	return header.Translate(dialect, path, text)
}

// TranslateAll translates every source concurrently, at most GOMAXPROCS at
// a time. Files are returned in input order. When any source fails, every
// failure is returned, combined in input order.
func TranslateAll(sources []Source) ([]*decl.File, error) {
	start := time.Now()
	files := make([]*decl.File, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range sources {
		g.Go(func() error {
			files[i], errs[i] = header.Translate(s.Dialect, s.Path, s.Text)
			return nil
		})
	}
	_ = g.Wait()

	if err := multierr.Combine(errs...); err != nil {
		Logger().Debug("translation failed",
			zap.Int("headers", len(sources)),
			zap.Int("errors", len(multierr.Errors(err))),
		)
		return nil, err
	}

	decls := 0
	for _, f := range files {
		decls += len(f.Decls)
	}
	Logger().Debug("translated headers",
		zap.Int("headers", len(sources)),
		zap.Int("declarations", decls),
		zap.Duration("elapsed", time.Since(start)),
	)
	return files, nil
}

// LinkAndEmit links files into one model and emits groups from it. The
// model is returned whenever linking succeeded, even if emission failed.
func LinkAndEmit(files []*decl.File, groups []emit.Group, cfg emit.Config) ([]emit.Output, *linker.Model, error) {
	model, err := linker.Link(files)
	if err != nil {
		return nil, nil, err
	}
	outs, err := emit.New(model, cfg).Emit(groups)
	if err != nil {
		return nil, model, err
	}
	return outs, model, nil
}

// Load reads every header of m through load. Failures are combined in
// manifest order.
func Load(m *manifest.Manifest, load LoadFunc) ([]Source, error) {
	headers := m.Headers()
	sources := make([]Source, 0, len(headers))
	var errs error
	for _, h := range headers {
		text, err := load(h.Path)
		if err != nil {
			errs = multierr.Append(errs, errors.Load(h.Path, err))
			continue
		}
		sources = append(sources, Source{Path: h.Path, Dialect: h.Dialect, Text: text})
	}
	if errs != nil {
		return nil, errs
	}
	return sources, nil
}

// Generate runs the whole pipeline for a manifest: load, translate, link
// and emit. The model is returned whenever linking succeeded.
func Generate(m *manifest.Manifest, load LoadFunc) ([]emit.Output, *linker.Model, error) {
	cfg, err := m.Config()
	if err != nil {
		return nil, nil, err
	}
	sources, err := Load(m, load)
	if err != nil {
		return nil, nil, err
	}
	files, err := TranslateAll(sources)
	if err != nil {
		return nil, nil, err
	}
	outs, model, err := LinkAndEmit(files, m.EmitGroups(), cfg)
	if err != nil {
		return nil, model, err
	}
	Logger().Info("generated bindings",
		zap.String("package", cfg.Package),
		zap.Int("groups", len(m.Groups)),
		zap.Int("files", len(outs)),
	)
	return outs, model, nil
}

// Package fmodgen generates Go bindings for the FMOD audio engine from the C
// headers of its SDK.
//
// Headers are written in a small set of dialects, one per header family. Each
// header is translated on its own, the translated files are linked into one
// model, and the model is emitted as a Go package that calls the native
// libraries through github.com/jupiterrider/ffi.
//
// # Architecture Overview
//
//	fmodgen/             Pipeline: Translate, TranslateAll, LinkAndEmit, Generate
//	├── header/          One header to its declaration sequence
//	│   └── internal/
//	│       ├── token/   Header tokenizer
//	│       ├── grammar/ Per-dialect productions and the extractor
//	│       └── build/   Raw nodes to typed declarations
//	├── decl/            Declaration model shared by every stage
//	├── cexpr/           C constant expressions: evaluation and Go rendering
//	├── linker/          Cross-file name resolution and value evaluation
//	├── emit/            Go source generation
//	├── manifest/        YAML corpus manifest and the built-in FMOD layout
//	├── errors/          Structured error types
//	└── cmd/fmodgen/     Command line tool
//
// # Quick Start
//
// Generate bindings for an SDK unpacked in dir:
//
//	outs, _, err := fmodgen.Generate(manifest.Default(), fmodgen.FSLoader(os.DirFS(dir)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, o := range outs {
//	    os.WriteFile(filepath.Join("fmod", o.Name), o.Source, 0o644)
//	}
//
// # Errors
//
// Every stage reports all problems it finds. Errors of one stage are
// combined with go.uber.org/multierr and match *errors.Error by phase and
// kind:
//
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseLink, Kind: errors.KindUnresolvedType}) {
//	    // a header references a type no header declares
//	}
//
// # Logging
//
// The pipeline packages log through zap and are silent by default. Install
// a logger with SetLogger and the SetLogger function of the header, linker
// and emit packages.
package fmodgen

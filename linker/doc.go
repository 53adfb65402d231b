// Package linker joins per-file declaration sequences into one resolved
// corpus.
//
// # Namespaces
//
// Every name that becomes a Go identifier lives in one package scope, so
// the linker checks uniqueness across all of them:
//
//   - types: opaque handles (alias and tag), structures (name and trailing
//     alias), flags, enumerations, callbacks and type aliases
//   - functions: exported functions and the error lookup function
//   - values: constants, presets, flag entries and enumerators
//
// Re-declaring an opaque handle with the same alias and tag is tolerated.
// Any other clash is a *errors.DuplicateDeclarationError. A second error
// mapping in a corpus is a duplicate as well.
//
// # Resolution
//
// Every user type reference in fields, union members, arguments, returns,
// type alias bases and the error mapping parameter must name a declaration
// of the type namespace. Lookup is whole-graph: forward references and
// references into other files are legal. A missing name is an
// *errors.UnresolvedTypeError. Reference cycles through pointers are
// legal and not detected.
//
// All errors of a run are collected in file order and returned combined.
//
// # Example
//
//	model, err := linker.Link(files)
//	if err != nil {
//		for _, e := range multierr.Errors(err) {
//			fmt.Println(e)
//		}
//	}
//	refs := model.References("FMOD_VECTOR")
package linker

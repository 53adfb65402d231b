// Package errors provides structured error types for the binding generator.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries a declaration path, the C construct involved and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseBuild, errors.KindInvalidData).
//		Path("FMOD_VECTOR", "x").
//		Construct("float").
//		Detail("unexpected node %s", "Union").
//		Build()
//
// The four pipeline failures have dedicated types, each matching its
// Phase and Kind through errors.Is:
//
//	ParseError                 [parse] syntax
//	UnresolvedTypeError        [link] unresolved_type
//	DuplicateDeclarationError  [link] duplicate_declaration
//	UnsupportedConstructError  [emit] unsupported
//
// All errors implement the standard error interface and support errors.Is/As.
package errors

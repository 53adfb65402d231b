package emit

// MacroMode selects how function-like macros are emitted.
type MacroMode int

const (
	// MacroComment keeps the macro as a comment next to the values.
	MacroComment MacroMode = iota
	// MacroOmit drops macros from the output.
	MacroOmit
)

// VariadicMode selects how variadic callbacks are handled.
type VariadicMode int

const (
	// VariadicMarker emits the callback and marks the signature with "...".
	VariadicMarker VariadicMode = iota
	// VariadicReject fails with an UnsupportedConstructError.
	VariadicReject
)

// Config configures the emitter.
type Config struct {
	// Package is the Go package name of every emitted file.
	Package string
	// Generator names the tool in the generated-code header.
	Generator string
	Macros    MacroMode
	Variadic  VariadicMode
}

// DefaultConfig returns the configuration used by the command line tool.
func DefaultConfig() Config {
	return Config{
		Package:   "fmod",
		Generator: "fmodgen",
		Macros:    MacroComment,
		Variadic:  VariadicMarker,
	}
}

// Group is one emitted Go file. Files are header paths, matched against
// decl.File.Path, in emission order. Library is the native library base
// name the group's functions are loaded from.
type Group struct {
	Name    string
	Library string
	Files   []string
}

// Output is one generated Go source file.
type Output struct {
	Name   string
	Source []byte
}

// Package decl is the typed declaration model produced from header files.
//
// Declarations are created by the header builder and are immutable
// afterwards. Type references between declarations are by name; the linker
// resolves them against the whole corpus.
package decl

import (
	"github.com/wippyai/fmodgen/errors"
)

// Kind names a declaration variant.
type Kind string

const (
	KindOpaque       Kind = "opaque"
	KindConstant     Kind = "constant"
	KindFlags        Kind = "flags"
	KindEnumeration  Kind = "enumeration"
	KindStructure    Kind = "structure"
	KindCallback     Kind = "callback"
	KindFunction     Kind = "function"
	KindPreset       Kind = "preset"
	KindErrorMapping Kind = "error_mapping"
	KindMacro        Kind = "macro"
	KindTypeAlias    Kind = "type_alias"
)

// Origin records where a declaration came from.
type Origin struct {
	Dialect Dialect
	Pos     errors.Location
}

// Source returns the declaration origin.
func (o Origin) Source() Origin { return o }

// Declaration is the closed set of declaration variants.
type Declaration interface {
	DeclName() string
	Kind() Kind
	Source() Origin
	declaration()
}

// File is the ordered declaration sequence of one header.
type File struct {
	Path    string
	Dialect Dialect
	Decls   []Declaration
}

// OpaqueType is a forward-declared handle: typedef struct TAG ALIAS;
type OpaqueType struct {
	Origin
	Alias string
	Tag   string
}

// Constant is a #define with a literal or parenthesised value.
type Constant struct {
	Origin
	Name  string
	Value RawExpr
}

// Flag is one bit-mask define following a flags typedef.
type Flag struct {
	Name  string
	Value RawExpr
	Pos   errors.Location
}

// Flags is an integer typedef followed by its bit-mask defines.
type Flags struct {
	Origin
	Name       string
	Entries    []Flag
	Underlying Fundamental
}

// Enumerator is one enumeration entry. Value is empty when implicit.
type Enumerator struct {
	Name  string
	Value RawExpr
	Pos   errors.Location
}

type Enumeration struct {
	Origin
	Name    string
	Tag     string
	Entries []Enumerator
}

// Field is a structure member. ArrayLen is the literal length text, empty
// when the field is not an array.
type Field struct {
	Type     Type
	Name     string
	ArrayLen RawExpr
	Pos      errors.Location
	Pointer  Pointer
	Const    bool
}

// Structure is a typedef'd struct body. Name is the tag when present,
// otherwise the typedef name; TrailingAlias is the typedef name when it
// differs from Name. Union holds the members of a trailing anonymous union.
type Structure struct {
	Origin
	Name          string
	Tag           string
	TrailingAlias string
	Fields        []Field
	Union         []Field
}

// HasUnion reports whether the structure ends in an anonymous union.
func (s *Structure) HasUnion() bool { return s.Union != nil }

// Argument is a parameter of a callback, function or error mapping.
type Argument struct {
	Type    Type
	Name    string
	Pos     errors.Location
	Pointer Pointer
	Const   bool
}

type Callback struct {
	Origin
	Name          string
	CallConv      string
	Return        Type
	Args          []Argument
	ReturnPointer Pointer
	ReturnConst   bool
	Variadic      bool
}

type Function struct {
	Origin
	Name          string
	CallConv      string
	Return        Type
	Args          []Argument
	ReturnPointer Pointer
	ReturnConst   bool
}

// Preset is a named literal array: #define NAME { v1, v2 }
type Preset struct {
	Origin
	Name   string
	Values []RawExpr
}

// ErrorCase maps an error code to its message. Message is the C string
// literal body with escapes intact.
type ErrorCase struct {
	Code    string
	Message string
}

// ErrorMapping is the error code to message switch function.
type ErrorMapping struct {
	Origin
	Name    string
	Param   Argument
	Entries []ErrorCase
}

// Macro is a function-like macro kept as opaque text.
type Macro struct {
	Origin
	Name   string
	Params string
	Body   string
}

// TypeAlias is a typedef of a fundamental type with no flag defines.
type TypeAlias struct {
	Origin
	Name string
	Base Type
}

func (d *OpaqueType) DeclName() string   { return d.Alias }
func (d *Constant) DeclName() string     { return d.Name }
func (d *Flags) DeclName() string        { return d.Name }
func (d *Enumeration) DeclName() string  { return d.Name }
func (d *Structure) DeclName() string    { return d.Name }
func (d *Callback) DeclName() string     { return d.Name }
func (d *Function) DeclName() string     { return d.Name }
func (d *Preset) DeclName() string       { return d.Name }
func (d *ErrorMapping) DeclName() string { return d.Name }
func (d *Macro) DeclName() string        { return d.Name }
func (d *TypeAlias) DeclName() string    { return d.Name }

func (*OpaqueType) Kind() Kind   { return KindOpaque }
func (*Constant) Kind() Kind     { return KindConstant }
func (*Flags) Kind() Kind        { return KindFlags }
func (*Enumeration) Kind() Kind  { return KindEnumeration }
func (*Structure) Kind() Kind    { return KindStructure }
func (*Callback) Kind() Kind     { return KindCallback }
func (*Function) Kind() Kind     { return KindFunction }
func (*Preset) Kind() Kind       { return KindPreset }
func (*ErrorMapping) Kind() Kind { return KindErrorMapping }
func (*Macro) Kind() Kind        { return KindMacro }
func (*TypeAlias) Kind() Kind    { return KindTypeAlias }

func (*OpaqueType) declaration()   {}
func (*Constant) declaration()     {}
func (*Flags) declaration()        {}
func (*Enumeration) declaration()  {}
func (*Structure) declaration()    {}
func (*Callback) declaration()     {}
func (*Function) declaration()     {}
func (*Preset) declaration()       {}
func (*ErrorMapping) declaration() {}
func (*Macro) declaration()        {}
func (*TypeAlias) declaration()    {}

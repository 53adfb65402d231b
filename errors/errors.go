package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConfig Phase = "config" // manifest and options
	PhaseLoad   Phase = "load"   // reading header text
	PhaseParse  Phase = "parse"  // dialect grammars
	PhaseBuild  Phase = "build"  // raw nodes to declarations
	PhaseLink   Phase = "link"   // cross-file resolution
	PhaseEmit   Phase = "emit"   // Go source generation
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax         Kind = "syntax"
	KindUnresolvedType Kind = "unresolved_type"
	KindDuplicate      Kind = "duplicate_declaration"
	KindUnsupported    Kind = "unsupported"
	KindInvalidData    Kind = "invalid_data"
	KindInvalidInput   Kind = "invalid_input"
	KindNotFound       Kind = "not_found"
)

// Location is a position inside a header file. Line and Column are 1-based.
type Location struct {
	File   string
	Line   int
	Column int
}

// String renders the location as file:line:column, omitting unknown parts.
func (l Location) String() string {
	switch {
	case l.File == "" && l.Line == 0:
		return "<unknown>"
	case l.Line == 0:
		return l.File
	case l.File == "":
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// IsZero reports whether the location is unset.
func (l Location) IsZero() bool {
	return l.File == "" && l.Line == 0 && l.Column == 0
}

// Error is the structured error type used throughout the generator
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	Construct string
	Detail    string
	Path      []string
	At        Location
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if !e.At.IsZero() {
		b.WriteString(" (")
		b.WriteString(e.At.String())
		b.WriteByte(')')
	}

	if e.Construct != "" {
		b.WriteString(": C construct ")
		b.WriteString(e.Construct)
	}

	if e.Value != nil {
		fmt.Fprintf(&b, " (value %q)", fmt.Sprint(e.Value))
	}

	if e.Detail != "" {
		if e.Construct != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the declaration path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Construct sets the C construct involved
func (b *Builder) Construct(c string) *Builder {
	b.err.Construct = c
	return b
}

// At sets the source location
func (b *Builder) At(loc Location) *Builder {
	b.err.At = loc
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// ParseError is returned when a dialect grammar cannot match the remaining input.
type ParseError struct {
	File     string
	Found    string
	Expected []string
	Line     int
	Column   int
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("[parse] syntax at ")
	b.WriteString(e.Location().String())
	if len(e.Expected) > 0 {
		b.WriteString(": expected ")
		b.WriteString(joinAlternatives(e.Expected))
	}
	if e.Found != "" {
		fmt.Fprintf(&b, ", found %q", e.Found)
	} else {
		b.WriteString(", found end of input")
	}
	return b.String()
}

// Location returns the position of the failure
func (e *ParseError) Location() Location {
	return Location{File: e.File, Line: e.Line, Column: e.Column}
}

// Is reports whether target matches this error type
func (e *ParseError) Is(target error) bool {
	switch t := target.(type) {
	case *ParseError:
		return true
	case *Error:
		return t.Phase == PhaseParse && t.Kind == KindSyntax
	}
	return false
}

// UnresolvedTypeError is returned by the linker when a type reference names
// no declaration of the shared type namespace.
type UnresolvedTypeError struct {
	Referrer string
	Missing  string
	At       Location
}

func (e *UnresolvedTypeError) Error() string {
	var b strings.Builder
	b.WriteString("[link] unresolved_type at ")
	b.WriteString(e.Referrer)
	if !e.At.IsZero() {
		b.WriteString(" (")
		b.WriteString(e.At.String())
		b.WriteByte(')')
	}
	fmt.Fprintf(&b, ": type %q is not declared", e.Missing)
	return b.String()
}

// Is reports whether target matches this error type
func (e *UnresolvedTypeError) Is(target error) bool {
	switch t := target.(type) {
	case *UnresolvedTypeError:
		return true
	case *Error:
		return t.Phase == PhaseLink && t.Kind == KindUnresolvedType
	}
	return false
}

// DuplicateDeclarationError is returned by the linker when a name is
// declared twice in one namespace.
type DuplicateDeclarationError struct {
	Name   string
	First  Location
	Second Location
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("[link] duplicate_declaration: %q declared at %s and again at %s",
		e.Name, e.First, e.Second)
}

// Is reports whether target matches this error type
func (e *DuplicateDeclarationError) Is(target error) bool {
	switch t := target.(type) {
	case *DuplicateDeclarationError:
		return true
	case *Error:
		return t.Phase == PhaseLink && t.Kind == KindDuplicate
	}
	return false
}

// UnsupportedConstructError is returned by the emitter when Go cannot
// represent a declaration with the same layout or calling semantics.
type UnsupportedConstructError struct {
	Declaration string
	Reason      string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("[emit] unsupported at %s: %s", e.Declaration, e.Reason)
}

// Is reports whether target matches this error type
func (e *UnsupportedConstructError) Is(target error) bool {
	switch t := target.(type) {
	case *UnsupportedConstructError:
		return true
	case *Error:
		return t.Phase == PhaseEmit && t.Kind == KindUnsupported
	}
	return false
}

func joinAlternatives(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " or " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}

// Convenience constructors for common error patterns

// Unsupported creates an unsupported construct error for a declaration
func Unsupported(declaration, reason string, args ...any) *UnsupportedConstructError {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &UnsupportedConstructError{Declaration: declaration, Reason: reason}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Load creates a header loading error
func Load(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("load %s", path),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

package decl

import (
	"fmt"
	"strings"
)

// Dialect selects the grammar a header is parsed with. It is supplied by
// the caller and never inferred from content.
type Dialect string

const (
	CoreCommon     Dialect = "core-common"
	Core           Dialect = "core"
	CoreOutput     Dialect = "core-output"
	CoreCodec      Dialect = "core-codec"
	CoreDSP        Dialect = "core-dsp"
	CoreDSPEffects Dialect = "core-dsp-effects"
	Studio         Dialect = "studio"
	StudioCommon   Dialect = "studio-common"
	ErrorTable     Dialect = "error-table"
)

var dialects = []Dialect{
	CoreCommon, Core, CoreOutput, CoreCodec, CoreDSP, CoreDSPEffects,
	Studio, StudioCommon, ErrorTable,
}

// Dialects returns every known dialect.
func Dialects() []Dialect {
	return append([]Dialect(nil), dialects...)
}

// ParseDialect resolves a dialect name.
func ParseDialect(s string) (Dialect, error) {
	for _, d := range dialects {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dialect %q", s)
}

// Fundamental is a C builtin type.
type Fundamental int

const (
	NotFundamental Fundamental = iota
	Char
	UnsignedChar
	SignedChar
	Int
	UnsignedInt
	Short
	UnsignedShort
	LongLong
	Long
	UnsignedLongLong
	UnsignedLong
	Void
	Float
)

var fundamentalNames = [...]string{
	NotFundamental:   "",
	Char:             "char",
	UnsignedChar:     "unsigned char",
	SignedChar:       "signed char",
	Int:              "int",
	UnsignedInt:      "unsigned int",
	Short:            "short",
	UnsignedShort:    "unsigned short",
	LongLong:         "long long",
	Long:             "long",
	UnsignedLongLong: "unsigned long long",
	UnsignedLong:     "unsigned long",
	Void:             "void",
	Float:            "float",
}

func (f Fundamental) String() string {
	if f < 0 || int(f) >= len(fundamentalNames) {
		return fmt.Sprintf("Fundamental(%d)", int(f))
	}
	return fundamentalNames[f]
}

// ParseFundamental classifies keyword text such as "unsigned  int".
// Runs of whitespace are insignificant.
func ParseFundamental(text string) (Fundamental, bool) {
	norm := strings.Join(strings.Fields(text), " ")
	for f := Char; f <= Float; f++ {
		if fundamentalNames[f] == norm {
			return f, true
		}
	}
	return NotFundamental, false
}

// Pointer is the pointer arity of a field, argument or return type.
type Pointer int

const (
	None Pointer = iota
	Single
	Double
)

func (p Pointer) String() string {
	return strings.Repeat("*", int(p))
}

// ParsePointer classifies pointer suffix text. "**" and "* const *" are
// both Double.
func ParsePointer(text string) (Pointer, bool) {
	switch strings.Join(strings.Fields(text), "") {
	case "":
		return None, true
	case "*":
		return Single, true
	case "**", "*const*":
		return Double, true
	}
	return None, false
}

// Type is either a fundamental type or a reference to a user type by name.
type Type struct {
	User        string
	Fundamental Fundamental
}

// Fund returns a fundamental type.
func Fund(f Fundamental) Type { return Type{Fundamental: f} }

// UserRef returns a reference to a user-declared type.
func UserRef(name string) Type { return Type{User: name} }

// IsUser reports whether t references a user type.
func (t Type) IsUser() bool { return t.User != "" }

// IsVoid reports whether t is the void fundamental.
func (t Type) IsVoid() bool { return t.User == "" && t.Fundamental == Void }

func (t Type) String() string {
	if t.User != "" {
		return t.User
	}
	return t.Fundamental.String()
}

// RawExpr is expression text kept verbatim from the header.
type RawExpr string

func (e RawExpr) String() string { return string(e) }

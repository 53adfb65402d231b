package emit

import (
	"go/token"
	"strconv"

	"github.com/huandu/xstrings"
)

// identifiers used inside generated wrapper bodies
var wrapperLocals = map[string]bool{
	"ret":    true,
	"ffi":    true,
	"unsafe": true,
}

// fieldName exports a C member name.
func fieldName(name string) string {
	if name[0] == '_' {
		return "X" + name
	}
	return xstrings.FirstRuneToUpper(name)
}

// paramName makes a C parameter name safe as a Go parameter.
func paramName(name string) string {
	if token.IsKeyword(name) || wrapperLocals[name] {
		return name + "_"
	}
	return name
}

// handleNames assigns an unexported ffi.Fun variable name per function,
// numbering camel-case collisions in declaration order.
func handleNames(functions []string) map[string]string {
	names := make(map[string]string, len(functions))
	taken := make(map[string]bool, len(functions))
	for _, fn := range functions {
		base := xstrings.ToCamelCase(fn)
		if base == "" || !token.IsIdentifier(base) || token.IsKeyword(base) {
			base = "fn"
		}
		name := base
		for i := 2; taken[name]; i++ {
			name = base + strconv.Itoa(i)
		}
		taken[name] = true
		names[fn] = name
	}
	return names
}

// loaderName names the per-group function that prepares handles.
func loaderName(group string) string {
	return "load" + xstrings.ToPascalCase(group)
}

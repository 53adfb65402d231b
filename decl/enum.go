package decl

import (
	"strconv"

	"github.com/wippyai/fmodgen/cexpr"
)

// EnumValue is the effective value of one enumerator. Raw and Explicit
// preserve the source form. Value is meaningful only when Known. Expr is
// the value as an expression: the raw text when explicit, a decimal literal
// when computed, or "PREV + 1" when the previous value is not evaluable.
type EnumValue struct {
	Name     string
	Raw      RawExpr
	Expr     string
	Value    int64
	Explicit bool
	Known    bool
}

// Values computes effective enumerator values. The first entry is its
// explicit value or 0; each next entry is its explicit value or the
// previous value plus one. Identifiers in explicit values resolve first
// against earlier enumerators of e, then through lookup (which may be nil).
func (e *Enumeration) Values(lookup cexpr.Lookup) []EnumValue {
	out := make([]EnumValue, len(e.Entries))
	local := make(map[string]int64, len(e.Entries))
	resolve := func(name string) (int64, bool) {
		if v, ok := local[name]; ok {
			return v, true
		}
		if lookup != nil {
			return lookup(name)
		}
		return 0, false
	}

	for i, entry := range e.Entries {
		v := EnumValue{Name: entry.Name, Raw: entry.Value}
		switch {
		case entry.Value != "":
			v.Explicit = true
			v.Expr = string(entry.Value)
			if n, err := cexpr.Eval(string(entry.Value), resolve); err == nil {
				v.Value, v.Known = n, true
			}
		case i == 0:
			v.Value, v.Known = 0, true
			v.Expr = "0"
		case out[i-1].Known:
			v.Value, v.Known = out[i-1].Value+1, true
			v.Expr = strconv.FormatInt(v.Value, 10)
		default:
			v.Expr = out[i-1].Name + " + 1"
		}
		if v.Known {
			local[entry.Name] = v.Value
		}
		out[i] = v
	}
	return out
}

package linker

import (
	"github.com/wippyai/fmodgen/decl"
	"github.com/wippyai/fmodgen/errors"
)

// Value is a named compile-time value: a constant, a preset, a flag entry
// or an enumerator. Owner is the declaration that introduces it. Expr is
// empty for presets and implicit enumerators.
type Value struct {
	Owner decl.Declaration
	Name  string
	Expr  decl.RawExpr
	At    errors.Location
}

// binding is one name in a namespace.
type binding[T any] struct {
	item T
	at   errors.Location
}

// namespace is a flat name table that remembers definition order.
type namespace[T any] struct {
	entries map[string]binding[T]
	order   []string
}

func newNamespace[T any]() *namespace[T] {
	return &namespace[T]{entries: make(map[string]binding[T])}
}

// define binds name unless it is already bound; the earlier binding is
// returned on a clash.
func (ns *namespace[T]) define(name string, item T, at errors.Location) (binding[T], bool) {
	if prev, ok := ns.entries[name]; ok {
		return prev, false
	}
	ns.entries[name] = binding[T]{item: item, at: at}
	ns.order = append(ns.order, name)
	return binding[T]{}, true
}

func (ns *namespace[T]) lookup(name string) (T, bool) {
	b, ok := ns.entries[name]
	return b.item, ok
}

func (ns *namespace[T]) len() int { return len(ns.order) }

// sameOpaque reports whether two scope entries are the same opaque handle
// declared twice.
func sameOpaque(a, b decl.Declaration) bool {
	x, ok := a.(*decl.OpaqueType)
	if !ok {
		return false
	}
	y, ok := b.(*decl.OpaqueType)
	return ok && x.Alias == y.Alias && x.Tag == y.Tag
}

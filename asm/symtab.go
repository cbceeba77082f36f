// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"strings"
)

type binding struct {
	value    Value
	expr     Expr
	resolved bool
}

// Symtab maps qualified names to resolved values or pending expressions.
// Local labels are stored under their owning global as "global.local",
// one flat key per symbol.
type Symtab struct {
	bindings map[string]*binding
	order    []string // definition order, for diagnostics
}

func NewSymtab() *Symtab {
	return &Symtab{
		bindings: make(map[string]*binding, 64),
	}
}

// Define binds name to a resolved value. The first definition wins; any
// existing binding under the same qualified name is an error.
func (st *Symtab) Define(name string, value Value) error {
	if _, ok := st.bindings[name]; ok {
		return ErrDuplicateSymbol(name)
	}
	st.bindings[name] = &binding{value: value, resolved: true}
	st.order = append(st.order, name)
	return nil
}

// DefineExpr binds name to a pending expression, resolved later by the
// resolver sweeps.
func (st *Symtab) DefineExpr(name string, e Expr) error {
	if _, ok := st.bindings[name]; ok {
		return ErrDuplicateSymbol(name)
	}
	st.bindings[name] = &binding{expr: e}
	st.order = append(st.order, name)
	return nil
}

// Value returns the resolved value of name. A name bound to a pending
// expression is not resolved.
func (st *Symtab) Value(name string) (value Value, resolved bool) {
	b, ok := st.bindings[name]
	if !ok || !b.resolved {
		return 0, false
	}
	return b.value, true
}

// Pending returns the expression a name is bound to while unresolved, so
// callers can decide to defer themselves.
func (st *Symtab) Pending(name string) (e Expr, pending bool) {
	b, ok := st.bindings[name]
	if !ok || b.resolved {
		return nil, false
	}
	return b.expr, true
}

// pendingNames returns the names still bound to expressions, in
// definition order.
func (st *Symtab) pendingNames() (names []string) {
	for _, name := range st.order {
		if !st.bindings[name].resolved {
			names = append(names, name)
		}
	}
	return
}

func (st *Symtab) resolve(name string, value Value) {
	b := st.bindings[name]
	b.value = value
	b.expr = nil
	b.resolved = true
}

// Resolved returns a snapshot of every resolved symbol.
func (st *Symtab) Resolved() map[string]Value {
	resolved := make(map[string]Value, len(st.bindings))
	for name, b := range st.bindings {
		if b.resolved {
			resolved[name] = b.value
		}
	}
	return resolved
}

// Clone returns an independent copy of the table.
func (st *Symtab) Clone() *Symtab {
	clone := &Symtab{
		bindings: make(map[string]*binding, len(st.bindings)),
		order:    append([]string(nil), st.order...),
	}
	for name, b := range st.bindings {
		dup := *b
		clone.bindings[name] = &dup
	}
	return clone
}

// qualify resolves name against the open global scope. Global and direct
// names pass through; bare locals attach to the scope.
func qualify(scope, name string) (string, error) {
	switch strings.Count(name, ".") {
	case 0:
		return name, nil
	case 1:
		if !strings.HasPrefix(name, ".") {
			// Direct reference, global.local
			return name, nil
		}
		if scope == "" {
			return "", ErrNoScope(name)
		}
		return scope + name, nil
	default:
		return "", ErrMalformedLabel(name)
	}
}

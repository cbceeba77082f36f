// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"math"
	"strings"
)

// Op identifies an expression operator.
type Op int

const (
	// Binary operators
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl  // << arithmetic shift left
	OpShr  // >> arithmetic shift right
	OpShlL // <: logical shift left
	OpShrL // :> logical shift right
	OpAnd
	OpOr
	OpXor
	OpLogAnd
	OpLogOr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Unary operators
	OpNeg
	OpInvert
	OpNot
)

// Expr is an immutable expression tree. Evaluation either produces a
// Value, defers on symbols that are not yet resolved, or fails hard on
// division by zero.
type Expr interface {
	eval(env *evalEnv) (Value, bool)
}

// Num is a literal value leaf.
type Num Value

// Ref is a symbol reference leaf. The name may be a bare local (".x")
// until the expression is bound to a scope.
type Ref string

// Here is the location counter leaf. Expressions consumed by a Session
// have Here frozen to the counter at their point of declaration.
type Here struct{}

// Unary applies OpNeg, OpInvert, or OpNot to X.
type Unary struct {
	Op Op
	X  Expr
}

// Binary combines A and B with a binary operator.
type Binary struct {
	Op   Op
	A, B Expr
}

// Ternary selects Then or Else on the truth of Cond. Only the selected
// branch needs to be resolvable.
type Ternary struct {
	Cond, Then, Else Expr
}

type evalEnv struct {
	symtab  *Symtab
	here    Value
	missing []string
	err     error
}

func (env *evalEnv) deferName(name string) {
	for _, have := range env.missing {
		if have == name {
			return
		}
	}
	env.missing = append(env.missing, name)
}

// Eval evaluates an expression against a symbol table, with here as the
// value of the location counter. When ok is false and err is nil, the
// expression is deferred and unresolved holds the names that blocked it.
func Eval(e Expr, symtab *Symtab, here Value) (value Value, unresolved []string, err error) {
	env := &evalEnv{symtab: symtab, here: here}
	value, ok := e.eval(env)
	if env.err != nil {
		return 0, nil, env.err
	}
	if !ok {
		return 0, env.missing, nil
	}
	return value, nil, nil
}

func (n Num) eval(env *evalEnv) (Value, bool) {
	return Value(n), true
}

func (r Ref) eval(env *evalEnv) (Value, bool) {
	value, resolved := env.symtab.Value(string(r))
	if !resolved {
		env.deferName(string(r))
		return 0, false
	}
	return value, true
}

func (Here) eval(env *evalEnv) (Value, bool) {
	return env.here, true
}

func (u *Unary) eval(env *evalEnv) (Value, bool) {
	value, ok := u.X.eval(env)
	if !ok {
		return 0, false
	}
	switch u.Op {
	case OpNeg:
		return -value, true
	case OpInvert:
		return ^value, true
	case OpNot:
		return boolValue(!value.Bool()), true
	}
	return 0, false
}

func (b *Binary) eval(env *evalEnv) (Value, bool) {
	lhs, ok := b.A.eval(env)
	rhs, rok := b.B.eval(env)
	if !ok || !rok {
		return 0, false
	}

	switch b.Op {
	case OpAdd:
		return lhs + rhs, true
	case OpSub:
		return lhs - rhs, true
	case OpMul:
		return lhs * rhs, true
	case OpDiv:
		if rhs == 0 {
			env.err = ErrDivisionByZero
			return 0, false
		}
		// Wraps like every other operation.
		if lhs == math.MinInt32 && rhs == -1 {
			return math.MinInt32, true
		}
		return lhs / rhs, true
	case OpMod:
		if rhs == 0 {
			env.err = ErrDivisionByZero
			return 0, false
		}
		if lhs == math.MinInt32 && rhs == -1 {
			return 0, true
		}
		return lhs % rhs, true
	case OpShl:
		return lhs << (uint32(rhs) & 31), true
	case OpShr:
		return lhs >> (uint32(rhs) & 31), true
	case OpShlL:
		return Value(uint32(lhs) << (uint32(rhs) & 31)), true
	case OpShrL:
		return Value(uint32(lhs) >> (uint32(rhs) & 31)), true
	case OpAnd:
		return lhs & rhs, true
	case OpOr:
		return lhs | rhs, true
	case OpXor:
		return lhs ^ rhs, true
	case OpLogAnd:
		return boolValue(lhs.Bool() && rhs.Bool()), true
	case OpLogOr:
		return boolValue(lhs.Bool() || rhs.Bool()), true
	case OpEq:
		return boolValue(lhs == rhs), true
	case OpNe:
		return boolValue(lhs != rhs), true
	case OpLt:
		return boolValue(lhs < rhs), true
	case OpLe:
		return boolValue(lhs <= rhs), true
	case OpGt:
		return boolValue(lhs > rhs), true
	case OpGe:
		return boolValue(lhs >= rhs), true
	}
	return 0, false
}

func (t *Ternary) eval(env *evalEnv) (Value, bool) {
	cond, ok := t.Cond.eval(env)
	if !ok {
		return 0, false
	}
	if cond.Bool() {
		return t.Then.eval(env)
	}
	return t.Else.eval(env)
}

// bind returns e with bare local references qualified against scope and
// Here leaves frozen to the given counter value. Expressions are bound
// when their declaration is consumed, so deferred re-evaluation sees the
// declaration-time counter and scope.
func bind(e Expr, scope string, here Value) (Expr, error) {
	switch node := e.(type) {
	case Num:
		return node, nil

	case Here:
		return Num(here), nil

	case Ref:
		if !strings.HasPrefix(string(node), ".") {
			return node, nil
		}
		if scope == "" {
			return nil, ErrNoScope(node)
		}
		return Ref(scope + string(node)), nil

	case *Unary:
		x, err := bind(node.X, scope, here)
		if err != nil {
			return nil, err
		}
		return &Unary{Op: node.Op, X: x}, nil

	case *Binary:
		a, err := bind(node.A, scope, here)
		if err != nil {
			return nil, err
		}
		b, err := bind(node.B, scope, here)
		if err != nil {
			return nil, err
		}
		return &Binary{Op: node.Op, A: a, B: b}, nil

	case *Ternary:
		cond, err := bind(node.Cond, scope, here)
		if err != nil {
			return nil, err
		}
		then, err := bind(node.Then, scope, here)
		if err != nil {
			return nil, err
		}
		els, err := bind(node.Else, scope, here)
		if err != nil {
			return nil, err
		}
		return &Ternary{Cond: cond, Then: then, Else: els}, nil
	}

	return e, nil
}

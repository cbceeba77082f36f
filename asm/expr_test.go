// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExprArithmetic(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		expr  Expr
		value Value
	}){
		{&Binary{OpAdd, Num(2), Num(3)}, 5},
		{&Binary{OpSub, Num(2), Num(3)}, -1},
		{&Binary{OpMul, Num(-4), Num(3)}, -12},
		{&Binary{OpDiv, Num(7), Num(2)}, 3},
		{&Binary{OpDiv, Num(-7), Num(2)}, -3},
		{&Binary{OpMod, Num(7), Num(2)}, 1},
		{&Binary{OpMod, Num(-7), Num(2)}, -1},
		// Wraparound, not saturation.
		{&Binary{OpAdd, Num(0x7fffffff), Num(1)}, -0x80000000},
		{&Binary{OpSub, Num(-0x80000000), Num(1)}, 0x7fffffff},
		{&Binary{OpMul, Num(0x10000), Num(0x10000)}, 0},
		// The one non-representable quotient wraps too.
		{&Binary{OpDiv, Num(-0x80000000), Num(-1)}, -0x80000000},
		{&Binary{OpMod, Num(-0x80000000), Num(-1)}, 0},
		{&Unary{OpNeg, Num(5)}, -5},
		{&Unary{OpNeg, Num(-0x80000000)}, -0x80000000},
		{&Unary{OpInvert, Num(0)}, -1},
		{&Unary{OpNot, Num(7)}, 0},
		{&Unary{OpNot, Num(0)}, 1},
	}

	st := NewSymtab()
	for n, entry := range table {
		value, unresolved, err := Eval(entry.expr, st, 0)
		assert.NoError(err, "entry %v", n)
		assert.Empty(unresolved, "entry %v", n)
		assert.Equal(entry.value, value, "entry %v", n)
	}
}

func TestExprShifts(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op    Op
		a, b  Value
		value Value
	}){
		{OpShl, 1, 4, 16},
		{OpShr, 16, 4, 1},
		// Arithmetic right shift keeps the sign.
		{OpShr, -1, 1, -1},
		{OpShr, -16, 2, -4},
		// Logical right shift feeds zeros.
		{OpShrL, -1, 1, 0x7fffffff},
		{OpShrL, -16, 2, 0x3ffffffc},
		{OpShlL, 1, 4, 16},
		{OpShl, 1, 31, -0x80000000},
		// Shift counts are taken modulo 32.
		{OpShl, 1, 32, 1},
		{OpShl, 1, 33, 2},
		{OpShr, -1, 32, -1},
		{OpShrL, -1, 33, 0x7fffffff},
	}

	st := NewSymtab()
	for n, entry := range table {
		e := &Binary{entry.op, Num(entry.a), Num(entry.b)}
		value, unresolved, err := Eval(e, st, 0)
		assert.NoError(err, "entry %v", n)
		assert.Empty(unresolved, "entry %v", n)
		assert.Equal(entry.value, value, "entry %v", n)
	}
}

func TestExprCompareLogic(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op    Op
		a, b  Value
		value Value
	}){
		{OpEq, 3, 3, 1},
		{OpEq, 3, 4, 0},
		{OpNe, 3, 4, 1},
		{OpLt, -1, 0, 1},
		{OpLe, 0, 0, 1},
		{OpGt, 1, 2, 0},
		{OpGe, 2, 2, 1},
		{OpAnd, 0b1100, 0b1010, 0b1000},
		{OpOr, 0b1100, 0b1010, 0b1110},
		{OpXor, 0b1100, 0b1010, 0b0110},
		{OpLogAnd, 7, 3, 1},
		{OpLogAnd, 7, 0, 0},
		{OpLogOr, 0, 0, 0},
		{OpLogOr, 0, 5, 1},
	}

	st := NewSymtab()
	for n, entry := range table {
		e := &Binary{entry.op, Num(entry.a), Num(entry.b)}
		value, _, err := Eval(e, st, 0)
		assert.NoError(err, "entry %v", n)
		assert.Equal(entry.value, value, "entry %v", n)
	}
}

func TestExprDivisionByZero(t *testing.T) {
	assert := assert.New(t)

	st := NewSymtab()
	for _, op := range []Op{OpDiv, OpMod} {
		_, _, err := Eval(&Binary{op, Num(1), Num(0)}, st, 0)
		assert.ErrorIs(err, ErrDivisionByZero)
	}
}

func TestExprTernary(t *testing.T) {
	assert := assert.New(t)

	st := NewSymtab()
	st.Define("yes", 1)

	// Only the selected branch is evaluated, so the dead branch may
	// reference an unresolved symbol or divide by zero.
	e := &Ternary{
		Cond: Ref("yes"),
		Then: Num(10),
		Else: &Binary{OpDiv, Num(1), Num(0)},
	}
	value, unresolved, err := Eval(e, st, 0)
	assert.NoError(err)
	assert.Empty(unresolved)
	assert.Equal(Value(10), value)

	e = &Ternary{Cond: Num(0), Then: Ref("missing"), Else: Num(20)}
	value, unresolved, err = Eval(e, st, 0)
	assert.NoError(err)
	assert.Empty(unresolved)
	assert.Equal(Value(20), value)
}

func TestExprDeferral(t *testing.T) {
	assert := assert.New(t)

	st := NewSymtab()
	st.Define("known", 7)

	// Both sides of a binary are walked so every blocking name is
	// reported, not just the first.
	e := &Binary{OpAdd, Ref("alpha"), &Binary{OpMul, Ref("beta"), Ref("alpha")}}
	_, unresolved, err := Eval(e, st, 0)
	assert.NoError(err)
	assert.Equal([]string{"alpha", "beta"}, unresolved)

	// An unresolved ternary condition defers the whole expression.
	e2 := &Ternary{Cond: Ref("gamma"), Then: Num(1), Else: Num(2)}
	_, unresolved, err = Eval(e2, st, 0)
	assert.NoError(err)
	assert.Equal([]string{"gamma"}, unresolved)

	value, unresolved, err := Eval(Ref("known"), st, 0)
	assert.NoError(err)
	assert.Empty(unresolved)
	assert.Equal(Value(7), value)
}

func TestExprHere(t *testing.T) {
	assert := assert.New(t)

	st := NewSymtab()
	value, unresolved, err := Eval(&Binary{OpAdd, Here{}, Num(2)}, st, 0x100)
	assert.NoError(err)
	assert.Empty(unresolved)
	assert.Equal(Value(0x102), value)
}

func TestExprBind(t *testing.T) {
	assert := assert.New(t)

	// Locals are qualified against the scope and @here is frozen, so a
	// deferred re-evaluation sees declaration-time values.
	e := &Binary{OpAdd, Ref(".loop"), Here{}}
	bound, err := bind(e, "main", 0x40)
	assert.NoError(err)

	st := NewSymtab()
	st.Define("main.loop", 2)
	value, unresolved, err := Eval(bound, st, 0x999)
	assert.NoError(err)
	assert.Empty(unresolved)
	assert.Equal(Value(0x42), value)

	// A local with no enclosing global scope has no meaning.
	_, err = bind(Ref(".orphan"), "", 0)
	assert.ErrorIs(err, ErrNoScope(""))
}

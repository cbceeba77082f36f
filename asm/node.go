// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

// Node is one parsed item of the source stream consumed by a Session.
type Node interface {
	node()
}

// LabelDef defines a label at the current location counter. Global
// labels open a new local scope; local names attach to the nearest
// preceding global.
type LabelDef struct {
	Name  string
	Local bool
}

// DirectiveKind selects the directive a Directive node invokes.
type DirectiveKind int

const (
	DirOrg DirectiveKind = iota
	DirDef
	DirDb
	DirDw
	DirDs
	DirEcho
	DirAssert
	DirDie
)

// Arg is one directive argument: either an expression or a decoded
// string.
type Arg struct {
	Expr  Expr
	Str   string
	IsStr bool
}

// ExprArg wraps an expression argument.
func ExprArg(e Expr) Arg {
	return Arg{Expr: e}
}

// StrArg wraps a string argument.
func StrArg(s string) Arg {
	return Arg{Str: s, IsStr: true}
}

// Directive invokes an assembler directive. Name is used by @def only.
type Directive struct {
	Kind DirectiveKind
	Name string
	Args []Arg
}

// Instruction is an opaque mnemonic forwarded to the session's Encoder.
type Instruction struct {
	Name     string
	Operands []string
}

// Field is one struct field: a name and a size expression.
type Field struct {
	Name string
	Size Expr
}

// StructBlock declares offset symbols for an ordered field list plus a
// total-size symbol under the struct name.
type StructBlock struct {
	Name   string
	Fields []Field
}

// EnumBlock declares ordinal symbols for an ordered variant list plus a
// variant-count symbol under the enum name.
type EnumBlock struct {
	Name     string
	Variants []string
}

func (*LabelDef) node()    {}
func (*Directive) node()   {}
func (*Instruction) node() {}
func (*StructBlock) node() {}
func (*EnumBlock) node()   {}

// Encoder maps instruction nodes to machine bytes. The instruction set
// itself is outside the assembler core; sessions without an Encoder
// reject instruction nodes.
type Encoder interface {
	Encode(op *Instruction, here Value) ([]byte, error)
}

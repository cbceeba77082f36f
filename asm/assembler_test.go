// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	result, err := asm.Assemble("test", strings.NewReader(""))
	assert.NoError(err)
	assert.Empty(result.Bytes)
}

func assemble(t *testing.T, lines ...string) (*Result, error) {
	t.Helper()

	asm := &Assembler{}
	return asm.Assemble("test", strings.NewReader(strings.Join(lines, "\n")))
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)

	result, err := assemble(t,
		`@db 1, 2, $ff`,
		`@db "Hi\0"`,
		`@dw $1234, -2`,
		`@ds 2, $aa`,
	)
	assert.NoError(err)
	assert.Equal([]byte{
		0x01, 0x02, 0xff,
		'H', 'i', 0x00,
		0x34, 0x12, 0xfe, 0xff,
		0xaa, 0xaa,
	}, result.Bytes)
}

func TestAssemblerExpressions(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		expr  string
		value Value
	}){
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 - 2 - 3", 5},
		{"7 % 2", 1},
		{"1 << 4 | 1", 17},
		{"6 & 3 ^ 1", 3},
		{"-1 >> 1", -1},
		{"-1 :> 1", 0x7fffffff},
		{"1 <: 4", 16},
		{"$7fffffff + 1", -0x80000000},
		{"~0", -1},
		{"!5", 0},
		{"- - 3", 3},
		{"1 < 2 && 2 < 3", 1},
		{"0 || 2 == 2", 1},
		{"5 > 3 ? 'y' : 'n'", 'y'},
		{"0 ? 1 : 2 ? 3 : 4", 3},
		{"%1010 + $10", 26},
	}

	for n, entry := range table {
		result, err := assemble(t, "@def v, "+entry.expr)
		assert.NoError(err, "entry %v: %v", n, entry.expr)
		if err == nil {
			assert.Equal(entry.value, result.Symbols["v"], "entry %v: %v", n, entry.expr)
		}
	}
}

func TestAssemblerForwardReference(t *testing.T) {
	assert := assert.New(t)

	result, err := assemble(t,
		`@dw table`,
		`@db table - 2`,
		`table:`,
		`@db 1`,
	)
	assert.NoError(err)
	assert.Equal([]byte{0x03, 0x00, 0x01, 0x01}, result.Bytes)
	assert.Equal(Value(3), result.Symbols["table"])
}

func TestAssemblerScopes(t *testing.T) {
	assert := assert.New(t)

	result, err := assemble(t,
		`g1:`,
		`@db 1`,
		`.loop:`,
		`@db 2`,
		`g2:`,
		`.loop:`,
		`@db g1.loop`,
	)
	assert.NoError(err)
	assert.Equal(Value(1), result.Symbols["g1.loop"])
	assert.Equal(Value(2), result.Symbols["g2.loop"])
	assert.Equal([]byte{1, 2, 1}, result.Bytes)
}

func TestAssemblerOrg(t *testing.T) {
	assert := assert.New(t)

	result, err := assemble(t,
		`@org $8000`,
		`reset:`,
		`@db reset :> 8, reset & $ff`,
		`@org reset + $100`,
		`irq:`,
	)
	assert.NoError(err)
	assert.Equal([]byte{0x80, 0x00}, result.Bytes)
	assert.Equal(Value(0x8000), result.Symbols["reset"])
	assert.Equal(Value(0x8100), result.Symbols["irq"])
}

func TestAssemblerHere(t *testing.T) {
	assert := assert.New(t)

	result, err := assemble(t,
		`@org $100`,
		`@db 0`,
		`@def mark, @here`,
		`@db @here & $ff`,
	)
	assert.NoError(err)
	assert.Equal(Value(0x101), result.Symbols["mark"])
	assert.Equal(byte(0x01), result.Bytes[1])
}

func TestAssemblerStructEnum(t *testing.T) {
	assert := assert.New(t)

	result, err := assemble(t,
		`@struct entry`,
		`tag 1`,
		`name 16`,
		`name_len 1`,
		`@end`,
		``,
		`@enum state`,
		`idle`,
		`run`,
		`halt`,
		`dead`,
		`@end`,
		``,
		`@ds entry * 2`,
	)
	assert.NoError(err)
	assert.Equal(Value(0), result.Symbols["entry.tag"])
	assert.Equal(Value(1), result.Symbols["entry.name"])
	assert.Equal(Value(17), result.Symbols["entry.name_len"])
	assert.Equal(Value(18), result.Symbols["entry"])
	assert.Equal(Value(0), result.Symbols["state.idle"])
	assert.Equal(Value(3), result.Symbols["state.dead"])
	assert.Equal(Value(4), result.Symbols["state"])
	assert.Equal(36, len(result.Bytes))
}

func TestAssemblerEchoAssert(t *testing.T) {
	assert := assert.New(t)

	result, err := assemble(t,
		`@echo "assembling"`,
		`@assert end <= $100, "program too large"`,
		`@echo end`,
		`@db 1, 2, 3`,
		`end:`,
	)
	assert.NoError(err)
	assert.Equal([]string{"assembling", "3"}, result.Diagnostics)

	_, err = assemble(t,
		`@assert end == 0, "not empty"`,
		`@db 1`,
		`end:`,
	)
	assert.ErrorIs(err, ErrAssert(""))
}

func TestAssemblerDie(t *testing.T) {
	assert := assert.New(t)

	_, err := assemble(t, `@die "wrong target"`)
	assert.ErrorIs(err, ErrAbort(""))
	assert.ErrorContains(err, "wrong target")
}

func TestAssemblerCircular(t *testing.T) {
	assert := assert.New(t)

	_, err := assemble(t,
		`a:`,
		`@def .x, b.x + 1`,
		`b:`,
		`@def .x, a.x + 1`,
	)
	assert.ErrorIs(err, &ErrUnresolved{})

	var unresolved *ErrUnresolved
	assert.ErrorAs(err, &unresolved)
	assert.Contains(unresolved.Names, "a.x")
	assert.Contains(unresolved.Names, "b.x")
}

func TestAssemblerHostEscape(t *testing.T) {
	assert := assert.New(t)

	result, err := assemble(t,
		`@def base, $10`,
		`@def v, $(base * 2)`,
		`@db v`,
	)
	assert.NoError(err)
	assert.Equal(Value(32), result.Symbols["v"])
	assert.Equal([]byte{32}, result.Bytes)

	_, err = assemble(t, `@db $("aaa")`)
	assert.ErrorIs(err, ErrHostExpr(""))

	_, err = assemble(t, `@db $(1 << 64)`)
	assert.ErrorIs(err, ErrHostExpr(""))
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("DEBUG", 1)

	result, err := asm.Assemble("test", strings.NewReader("@db DEBUG ? $ff : 0\n"))
	assert.NoError(err)
	assert.Equal([]byte{0xff}, result.Bytes)
}

func TestAssemblerInstruction(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{Encoder: wordEncoder{}}
	result, err := asm.Assemble("test", strings.NewReader("mov a, here\n"))
	assert.NoError(err)
	assert.Equal([]byte{3, 1, 4}, result.Bytes)

	asm = &Assembler{}
	_, err = asm.Assemble("test", strings.NewReader("mov a\n"))
	assert.ErrorIs(err, ErrNoEncoder)
}

func TestAssemblerInclude(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{
		FS: fstest.MapFS{
			"main.kr8": &fstest.MapFile{Data: []byte(
				"@include \"defs.kr8\"\n@db answer\n")},
			"lib/defs.kr8": &fstest.MapFile{Data: []byte(
				"@def answer, 42\n")},
		},
		SearchPaths: []string{"lib"},
	}

	result, err := asm.AssembleFile("main.kr8")
	assert.NoError(err)
	assert.Equal([]byte{42}, result.Bytes)

	asm.SearchPaths = nil
	_, err = asm.AssembleFile("main.kr8")
	assert.ErrorIs(err, ErrIncludeMissing(""))
}

func TestAssemblerIncludeDepth(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{
		FS: fstest.MapFS{
			"self.kr8": &fstest.MapFile{Data: []byte(
				"@include \"self.kr8\"\n")},
		},
	}

	_, err := asm.AssembleFile("self.kr8")
	assert.ErrorIs(err, ErrIncludeDepth)
}

func TestAssemblerErrLine(t *testing.T) {
	assert := assert.New(t)

	// Consume-time errors carry the source file and line.
	table := [](struct {
		prog string
		line int
	}){
		{"DUP:\nDUP:\n", 2},
		{"@db 1\n@db\n", 2},
		{"@def\n", 1},
		{"@def a 1\n", 1},
		{"@db (1\n", 1},
		{"@db 1 ? 2\n", 1},
		{"@end\n", 1},
		{"@struct s\n@end\n", 2},
		{"@struct s\nfield 1\n", 2},
		{"@dw \"str\"\n", 1},
		{".orphan:\n", 1},
		{"@db a.b.c\n", 1},
		{"@db 256\n", 1},
		{"@assert 0\n", 1},
		{"@db 1\n@org xyz\n", 2},
		{"@include \"nope\"\n", 1},
		{"@db 'A' 'B'\n", 1},
	}

	for n, entry := range table {
		asm := &Assembler{FS: fstest.MapFS{}}
		_, err := asm.Assemble("test", strings.NewReader(entry.prog))
		assert.Error(err, "entry %v: %q", n, entry.prog)

		var source *ErrSource
		if assert.ErrorAs(err, &source, "entry %v: %q", n, entry.prog) {
			assert.Equal("test", source.File, "entry %v", n)
			assert.Equal(entry.line, source.Line, "entry %v", n)
		}
	}
}

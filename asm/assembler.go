// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"io"
	"io/fs"
	"os"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Assembler assembles KR8 source into an output stream. The zero value
// is usable; set FS and SearchPaths to control where @include looks,
// and Encoder to accept instruction mnemonics.
type Assembler struct {
	Verbose     bool     // If set, verbosely logs resolver sweeps and includes.
	Encoder     Encoder  // Instruction encoder; nil rejects mnemonics.
	FS          fs.FS    // Source for @include; nil means the host filesystem.
	SearchPaths []string // Directories tried, in order, after the literal name.

	predefine map[string]Value
}

// Predefine binds a symbol before assembly begins, as if an @def
// preceded the first source line.
func (asm *Assembler) Predefine(name string, value Value) {
	if asm.predefine == nil {
		asm.predefine = map[string]Value{}
	}
	asm.predefine[name] = value
}

func (asm *Assembler) fsys() fs.FS {
	if asm.FS != nil {
		return asm.FS
	}
	return os.DirFS(".")
}

func (asm *Assembler) session() (*Session, error) {
	session := NewSession()
	session.Verbose = asm.Verbose
	session.Encoder = asm.Encoder
	for name, value := range asm.predefine {
		if err := session.Predefine(name, value); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// Assemble assembles one named source stream.
func (asm *Assembler) Assemble(name string, r io.Reader) (*Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return asm.assemble(name, string(src))
}

// AssembleFile assembles the named file from the assembler's
// filesystem.
func (asm *Assembler) AssembleFile(name string) (*Result, error) {
	var src []byte
	var err error
	if asm.FS != nil {
		src, err = fs.ReadFile(asm.FS, name)
	} else {
		src, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}
	return asm.assemble(name, string(src))
}

func (asm *Assembler) assemble(name, src string) (*Result, error) {
	session, err := asm.session()
	if err != nil {
		return nil, err
	}

	p := &parser{asm: asm, session: session}
	p.lexer = newLexer(name, src, p.hostEval)
	if err := p.run(); err != nil {
		return nil, err
	}
	return session.Finish()
}

// hostEval does compile-time $(...) evaluations. All symbols resolved
// so far are bound as integers; names with scope separators are not
// legal host identifiers and are skipped.
func (asm *Assembler) hostEval(session *Session, expr string) (Value, error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for name, value := range session.Symtab().Resolved() {
		if strings.Contains(name, ".") {
			continue
		}
		pred[name] = starlark.MakeInt(int(value))
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return 0, ErrHostExpr(expr)
	}
	rc, ok := dict["rc"]
	if !ok {
		return 0, ErrHostExpr(expr)
	}
	rcInt, ok := rc.(starlark.Int)
	if !ok {
		return 0, ErrHostExpr(expr)
	}
	rc64, ok := rcInt.Int64()
	if !ok || rc64 < -0x80000000 || rc64 > 0xffffffff {
		return 0, ErrHostExpr(expr)
	}
	return Value(uint32(rc64)), nil
}

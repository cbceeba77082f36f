// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"fmt"
	"strings"
)

// Session is one assembly invocation: a symbol table, a location counter
// with its output stream, and the pending deferred work. Sessions start
// from empty state and are never shared.
type Session struct {
	Verbose bool    // If set, verbosely logs resolver sweeps.
	Encoder Encoder // Instruction encoder; nil rejects instruction nodes.

	symtab  *Symtab
	section *Section
	fixups  []*fixup
	diags   []diagnostic
	scope   string
}

type diagnostic struct {
	text string
	done bool
}

// Result is the terminal output of a successful session.
type Result struct {
	Bytes       []byte           // assembled output stream
	Symbols     map[string]Value // final resolved symbol table
	Diagnostics []string         // @echo output, in declaration order
}

func NewSession() *Session {
	return &Session{
		symtab:  NewSymtab(),
		section: &Section{},
	}
}

// Symtab exposes the session's symbol table.
func (s *Session) Symtab() *Symtab {
	return s.symtab
}

// Here returns the current location counter.
func (s *Session) Here() Value {
	return s.section.Here()
}

// Predefine binds a symbol before any source is consumed.
func (s *Session) Predefine(name string, value Value) error {
	return s.symtab.Define(name, value)
}

// Run consumes a node stream and finishes the session.
func (s *Session) Run(nodes []Node) (*Result, error) {
	for _, node := range nodes {
		if err := s.Consume(node); err != nil {
			return nil, err
		}
	}
	return s.Finish()
}

// Finish drives the resolver to a fixed point and returns the final
// output. Deferred assertions and echoes are settled here, so they may
// legally precede the symbols they reference.
func (s *Session) Finish() (*Result, error) {
	if err := s.resolve(); err != nil {
		return nil, err
	}

	diags := make([]string, 0, len(s.diags))
	for _, d := range s.diags {
		diags = append(diags, d.text)
	}

	return &Result{
		Bytes:       s.section.Bytes(),
		Symbols:     s.symtab.Resolved(),
		Diagnostics: diags,
	}, nil
}

// Consume processes one parsed node.
func (s *Session) Consume(node Node) error {
	switch n := node.(type) {
	case *LabelDef:
		return s.labelDef(n)
	case *Directive:
		return s.directive(n)
	case *Instruction:
		return s.instruction(n)
	case *StructBlock:
		return s.structBlock(n)
	case *EnumBlock:
		return s.enumBlock(n)
	}
	return nil
}

func (s *Session) labelDef(n *LabelDef) error {
	name := n.Name
	if n.Local && !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	qualified, err := qualify(s.scope, name)
	if err != nil {
		return err
	}
	if err := s.symtab.Define(qualified, s.section.Here()); err != nil {
		return err
	}

	// A plain global label opens a new local scope.
	if qualified == name && !strings.Contains(name, ".") {
		s.scope = name
	}
	return nil
}

func (s *Session) instruction(n *Instruction) error {
	if s.Encoder == nil {
		return ErrNoEncoder
	}
	bytes, err := s.Encoder.Encode(n, s.section.Here())
	if err != nil {
		return err
	}
	s.section.Emit(bytes...)
	return nil
}

// bindArg binds an expression argument to the current scope and counter.
func (s *Session) bindArg(arg Arg) (Expr, error) {
	if arg.IsStr {
		return nil, ErrTypeMismatch
	}
	if arg.Expr == nil {
		return nil, ErrArgMissing
	}
	return bind(arg.Expr, s.scope, s.section.Here())
}

func (s *Session) directive(n *Directive) error {
	switch n.Kind {
	case DirOrg:
		return s.org(n.Args)
	case DirDef:
		return s.def(n.Name, n.Args)
	case DirDb:
		return s.db(n.Args)
	case DirDw:
		return s.dw(n.Args)
	case DirDs:
		return s.ds(n.Args)
	case DirEcho:
		return s.echo(n.Args)
	case DirAssert:
		return s.assert(n.Args)
	case DirDie:
		return s.die(n.Args)
	}
	return nil
}

// org must be immediately solvable: the counter cannot move by an
// unknown amount.
func (s *Session) org(args []Arg) error {
	if len(args) < 1 {
		return ErrArgMissing
	}
	if len(args) > 1 {
		return ErrArgExtra
	}
	expr, err := s.bindArg(args[0])
	if err != nil {
		return err
	}
	value, unresolved, err := Eval(expr, s.symtab, s.section.Here())
	if err != nil {
		return err
	}
	if unresolved != nil {
		return &ErrUnresolved{Names: unresolved}
	}
	s.section.Org(value)
	return nil
}

func (s *Session) def(name string, args []Arg) error {
	if name == "" {
		return ErrArgMissing
	}
	if len(args) < 1 {
		return ErrArgMissing
	}
	if len(args) > 1 {
		return ErrArgExtra
	}

	qualified, err := qualify(s.scope, name)
	if err != nil {
		return err
	}
	expr, err := s.bindArg(args[0])
	if err != nil {
		return err
	}
	return s.defineComputed(qualified, expr)
}

// defineComputed binds a name to an expression, resolved now when
// possible and left pending for the resolver otherwise.
func (s *Session) defineComputed(name string, e Expr) error {
	value, unresolved, err := Eval(e, s.symtab, s.section.Here())
	if err != nil {
		return err
	}
	if unresolved != nil {
		return s.symtab.DefineExpr(name, e)
	}
	return s.symtab.Define(name, value)
}

func (s *Session) db(args []Arg) error {
	if len(args) == 0 {
		return ErrArgMissing
	}
	for _, arg := range args {
		if arg.IsStr {
			s.section.Emit([]byte(arg.Str)...)
			continue
		}

		expr, err := s.bindArg(arg)
		if err != nil {
			return err
		}
		value, unresolved, err := Eval(expr, s.symtab, s.section.Here())
		if err != nil {
			return err
		}
		if unresolved != nil {
			offset := s.section.Reserve(1)
			s.fixups = append(s.fixups, &fixup{kind: fixByte, expr: expr, offset: offset})
			continue
		}
		if !value.FitsByte() {
			return &ErrRange{Value: value, Bits: 8}
		}
		s.section.Emit(value.Byte())
	}
	return nil
}

func (s *Session) dw(args []Arg) error {
	if len(args) == 0 {
		return ErrArgMissing
	}
	for _, arg := range args {
		expr, err := s.bindArg(arg)
		if err != nil {
			return err
		}
		value, unresolved, err := Eval(expr, s.symtab, s.section.Here())
		if err != nil {
			return err
		}
		if unresolved != nil {
			offset := s.section.Reserve(2)
			s.fixups = append(s.fixups, &fixup{kind: fixWord, expr: expr, offset: offset})
			continue
		}
		if !value.FitsWord() {
			return &ErrRange{Value: value, Bits: 16}
		}
		word := value.Word()
		s.section.Emit(word[0], word[1])
	}
	return nil
}

// ds reserves size bytes of fill. The size must be solvable when the
// directive is processed: the output stream is append-only, so a range
// of unknown length cannot be reserved. The fill value may defer.
func (s *Session) ds(args []Arg) error {
	if len(args) < 1 {
		return ErrArgMissing
	}
	if len(args) > 2 {
		return ErrArgExtra
	}

	sizeExpr, err := s.bindArg(args[0])
	if err != nil {
		return err
	}
	size, unresolved, err := Eval(sizeExpr, s.symtab, s.section.Here())
	if err != nil {
		return err
	}
	if unresolved != nil {
		return &ErrUnresolved{Names: unresolved}
	}
	if size < 0 || size > 0xffff {
		return &ErrRange{Value: size, Bits: 16}
	}

	if len(args) == 1 {
		s.section.Reserve(int(size))
		return nil
	}

	fillExpr, err := s.bindArg(args[1])
	if err != nil {
		return err
	}
	fill, unresolved, err := Eval(fillExpr, s.symtab, s.section.Here())
	if err != nil {
		return err
	}
	if unresolved != nil {
		offset := s.section.Reserve(int(size))
		s.fixups = append(s.fixups, &fixup{
			kind:   fixFill,
			expr:   fillExpr,
			offset: offset,
			count:  int(size),
		})
		return nil
	}
	if !fill.FitsByte() {
		return &ErrRange{Value: fill, Bits: 8}
	}

	bytes := make([]byte, size)
	for i := range bytes {
		bytes[i] = fill.Byte()
	}
	s.section.Emit(bytes...)
	return nil
}

func (s *Session) echo(args []Arg) error {
	if len(args) < 1 {
		return ErrArgMissing
	}
	if len(args) > 1 {
		return ErrArgExtra
	}

	if args[0].IsStr {
		s.diags = append(s.diags, diagnostic{text: args[0].Str, done: true})
		return nil
	}

	expr, err := s.bindArg(args[0])
	if err != nil {
		return err
	}
	value, unresolved, err := Eval(expr, s.symtab, s.section.Here())
	if err != nil {
		return err
	}
	if unresolved != nil {
		// Reserve the declaration-order slot now; the resolver fills
		// it in, keeping diagnostic output ordered.
		slot := len(s.diags)
		s.diags = append(s.diags, diagnostic{})
		s.fixups = append(s.fixups, &fixup{kind: fixEcho, expr: expr, slot: slot})
		return nil
	}
	s.diags = append(s.diags, diagnostic{text: fmt.Sprintf("%v", value), done: true})
	return nil
}

func (s *Session) assert(args []Arg) error {
	if len(args) < 1 {
		return ErrArgMissing
	}
	if len(args) > 2 {
		return ErrArgExtra
	}

	msg := ""
	if len(args) == 2 {
		if !args[1].IsStr {
			return ErrTypeMismatch
		}
		msg = args[1].Str
	}

	expr, err := s.bindArg(args[0])
	if err != nil {
		return err
	}
	value, unresolved, err := Eval(expr, s.symtab, s.section.Here())
	if err != nil {
		return err
	}
	if unresolved != nil {
		s.fixups = append(s.fixups, &fixup{kind: fixAssert, expr: expr, msg: msg})
		return nil
	}
	if !value.Bool() {
		return ErrAssert(msg)
	}
	return nil
}

// die aborts unconditionally and immediately, never deferred.
func (s *Session) die(args []Arg) error {
	if len(args) > 1 {
		return ErrArgExtra
	}
	if len(args) == 0 {
		return ErrAbort(f("died"))
	}
	if args[0].IsStr {
		return ErrAbort(args[0].Str)
	}

	expr, err := s.bindArg(args[0])
	if err != nil {
		return err
	}
	value, unresolved, err := Eval(expr, s.symtab, s.section.Here())
	if err != nil {
		return err
	}
	if unresolved != nil {
		return &ErrUnresolved{Names: unresolved}
	}
	return ErrAbort(fmt.Sprintf("%v", value))
}

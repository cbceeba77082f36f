// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"io/fs"
	"log"
	"path"
	"strconv"
	"strings"
)

// Includes deeper than this are assumed to be cyclic.
const includeDepthMax = 16

// parser turns source text into nodes and feeds them to a Session as it
// goes, so $() escapes and @org expressions see every symbol defined so
// far. Statements end at newlines. A global label definition requires a
// trailing ":"; local labels (leading ".") may omit it. Any other
// statement-initial identifier is an instruction mnemonic handed to the
// session's Encoder.
type parser struct {
	asm     *Assembler
	session *Session
	lexers  []*lexer
	lexer   *lexer
	stash   *token
	file    string
	line    int
}

func (p *parser) hostEval(expr string) (Value, error) {
	return p.asm.hostEval(p.session, expr)
}

func (p *parser) wrap(err error) error {
	if err == nil {
		return nil
	}
	return &ErrSource{File: p.file, Line: p.line, Err: err}
}

func (p *parser) peek() (*token, error) {
	for {
		if p.stash != nil {
			return p.stash, nil
		}
		if p.lexer == nil {
			if len(p.lexers) == 0 {
				return nil, nil
			}
			p.lexer = p.lexers[len(p.lexers)-1]
			p.lexers = p.lexers[:len(p.lexers)-1]
		}

		tok, err := p.lexer.next()
		if err != nil {
			p.file = p.lexer.file
			p.line = p.lexer.line
			return nil, err
		}
		if tok == nil {
			p.lexer = nil
			continue
		}
		p.stash = tok
		p.file = tok.file
		p.line = tok.line
		return tok, nil
	}
}

func (p *parser) next() (*token, error) {
	tok, err := p.peek()
	p.stash = nil
	return tok, err
}

// peekSym reports whether the next token is the given symbol.
func (p *parser) peekSym(sym symbolName) (bool, error) {
	tok, err := p.peek()
	if err != nil {
		return false, err
	}
	return tok != nil && tok.kind == tokSymbol && tok.sym == sym, nil
}

// atEnd reports whether the statement is over (newline or end of input).
func (p *parser) atEnd() (bool, error) {
	tok, err := p.peek()
	if err != nil {
		return false, err
	}
	return tok == nil || tok.kind == tokNewline, nil
}

func (p *parser) run() error {
	for {
		tok, err := p.peek()
		if err != nil {
			return p.wrap(err)
		}
		if tok == nil {
			return nil
		}

		switch tok.kind {
		case tokNewline:
			p.next()

		case tokIdent:
			if err := p.statement(tok.text); err != nil {
				return p.wrap(err)
			}

		case tokDirective:
			if err := p.directive(tok.dir); err != nil {
				return p.wrap(err)
			}

		default:
			return p.wrap(ErrUnexpected(tok.text))
		}
	}
}

func (p *parser) statement(name string) error {
	p.next()

	colon, err := p.peekSym(symColon)
	if err != nil {
		return err
	}
	if colon {
		p.next()
		return p.session.Consume(&LabelDef{
			Name:  name,
			Local: strings.HasPrefix(name, "."),
		})
	}
	if strings.Contains(name, ".") {
		// Locals and direct names cannot be mnemonics; the colon is
		// optional for them.
		return p.session.Consume(&LabelDef{
			Name:  name,
			Local: strings.HasPrefix(name, "."),
		})
	}

	return p.instruction(name)
}

func (p *parser) instruction(name string) error {
	var operands []string
	var current []string
	depth := 0

	for {
		done, err := p.atEnd()
		if err != nil {
			return err
		}
		if done {
			break
		}
		tok, err := p.next()
		if err != nil {
			return err
		}

		if tok.kind == tokSymbol {
			switch tok.sym {
			case symParenOpen:
				depth++
			case symParenClose:
				depth--
			case symComma:
				if depth == 0 {
					operands = append(operands, strings.Join(current, " "))
					current = nil
					continue
				}
			}
		}
		current = append(current, operandText(tok))
	}
	if len(current) > 0 {
		operands = append(operands, strings.Join(current, " "))
	}

	return p.session.Consume(&Instruction{Name: name, Operands: operands})
}

func operandText(tok *token) string {
	switch tok.kind {
	case tokNumber:
		return strconv.FormatInt(int64(tok.num), 10)
	case tokString:
		return strconv.Quote(tok.text)
	default:
		return tok.text
	}
}

var directiveKinds = map[directiveName]DirectiveKind{
	dirOrg:    DirOrg,
	dirDb:     DirDb,
	dirDw:     DirDw,
	dirDs:     DirDs,
	dirEcho:   DirEcho,
	dirAssert: DirAssert,
	dirDie:    DirDie,
}

func (p *parser) directive(dir directiveName) error {
	p.next()

	switch dir {
	case dirDef:
		return p.def()
	case dirStruct:
		return p.structBlock()
	case dirEnum:
		return p.enumBlock()
	case dirInclude:
		return p.include()
	case dirEnd:
		return ErrUnexpected("@end")
	case dirHere:
		return ErrUnexpected("@here")
	}

	args, err := p.argList()
	if err != nil {
		return err
	}
	return p.session.Consume(&Directive{Kind: directiveKinds[dir], Args: args})
}

// argList parses the comma-separated string/expression arguments up to
// the end of the statement.
func (p *parser) argList() (args []Arg, err error) {
	for {
		done, err := p.atEnd()
		if err != nil {
			return nil, err
		}
		if done && len(args) == 0 {
			return nil, nil
		}

		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok != nil && tok.kind == tokString {
			p.next()
			args = append(args, StrArg(tok.text))
		} else {
			expr, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, ExprArg(expr))
		}

		comma, err := p.peekSym(symComma)
		if err != nil {
			return nil, err
		}
		if !comma {
			return args, nil
		}
		p.next()
	}
}

func (p *parser) name() (string, error) {
	tok, err := p.peek()
	if err != nil {
		return "", err
	}
	if tok == nil || tok.kind != tokIdent {
		return "", ErrExpectedName
	}
	p.next()
	return tok.text, nil
}

func (p *parser) def() error {
	name, err := p.name()
	if err != nil {
		return err
	}
	comma, err := p.peekSym(symComma)
	if err != nil {
		return err
	}
	if !comma {
		return ErrArgMissing
	}
	p.next()

	expr, err := p.expr()
	if err != nil {
		return err
	}
	return p.session.Consume(&Directive{
		Kind: DirDef,
		Name: name,
		Args: []Arg{ExprArg(expr)},
	})
}

// newline consumes the end of the current statement.
func (p *parser) newline() error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if tok.kind != tokNewline {
		return ErrUnexpected(tok.text)
	}
	return nil
}

func (p *parser) structBlock() error {
	name, err := p.name()
	if err != nil {
		return err
	}
	if err := p.newline(); err != nil {
		return err
	}

	var fields []Field
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		if tok == nil {
			return ErrExpectedEnd
		}

		switch {
		case tok.kind == tokNewline:
			p.next()

		case tok.kind == tokDirective && tok.dir == dirEnd:
			p.next()
			return p.session.Consume(&StructBlock{Name: name, Fields: fields})

		case tok.kind == tokIdent:
			p.next()
			size, err := p.expr()
			if err != nil {
				return err
			}
			fields = append(fields, Field{Name: tok.text, Size: size})
			if err := p.newline(); err != nil {
				return err
			}

		default:
			return ErrUnexpected(tok.text)
		}
	}
}

func (p *parser) enumBlock() error {
	name, err := p.name()
	if err != nil {
		return err
	}
	if err := p.newline(); err != nil {
		return err
	}

	var variants []string
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		if tok == nil {
			return ErrExpectedEnd
		}

		switch {
		case tok.kind == tokNewline:
			p.next()

		case tok.kind == tokDirective && tok.dir == dirEnd:
			p.next()
			return p.session.Consume(&EnumBlock{Name: name, Variants: variants})

		case tok.kind == tokIdent:
			p.next()
			variants = append(variants, tok.text)
			if err := p.newline(); err != nil {
				return err
			}

		default:
			return ErrUnexpected(tok.text)
		}
	}
}

func (p *parser) include() error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok == nil || tok.kind != tokString {
		return ErrTypeMismatch
	}
	name := tok.text

	if len(p.lexers) >= includeDepthMax {
		return ErrIncludeDepth
	}

	fsys := p.asm.fsys()
	candidates := []string{name}
	for _, search := range p.asm.SearchPaths {
		candidates = append(candidates, path.Join(search, name))
	}

	for _, candidate := range candidates {
		src, err := fs.ReadFile(fsys, candidate)
		if err != nil {
			continue
		}
		if p.asm.Verbose {
			log.Printf("include: %v", candidate)
		}
		if p.lexer != nil {
			p.lexers = append(p.lexers, p.lexer)
		}
		p.lexer = newLexer(candidate, string(src), p.hostEval)
		return nil
	}

	return ErrIncludeMissing(name)
}

// binaryOps lists the binary operator tiers from loosest to tightest
// binding. The ternary sits below all of them.
var binaryOps = []map[symbolName]Op{
	{symPipePipe: OpLogOr},
	{symAmpAmp: OpLogAnd},
	{symPipe: OpOr},
	{symCaret: OpXor},
	{symAmp: OpAnd},
	{symEq: OpEq, symNe: OpNe},
	{symLt: OpLt, symLe: OpLe, symGt: OpGt, symGe: OpGe},
	{symShl: OpShl, symShr: OpShr, symShlL: OpShlL, symShrL: OpShrL},
	{symPlus: OpAdd, symMinus: OpSub},
	{symStar: OpMul, symSlash: OpDiv, symPercent: OpMod},
}

func (p *parser) expr() (Expr, error) {
	cond, err := p.binary(0)
	if err != nil {
		return nil, err
	}

	question, err := p.peekSym(symQuestion)
	if err != nil || !question {
		return cond, err
	}
	p.next()

	then, err := p.expr()
	if err != nil {
		return nil, err
	}
	colon, err := p.peekSym(symColon)
	if err != nil {
		return nil, err
	}
	if !colon {
		return nil, ErrExpectedColon
	}
	p.next()
	els, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &Ternary{Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) binary(tier int) (Expr, error) {
	if tier >= len(binaryOps) {
		return p.unary()
	}

	a, err := p.binary(tier + 1)
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok == nil || tok.kind != tokSymbol {
			return a, nil
		}
		op, ok := binaryOps[tier][tok.sym]
		if !ok {
			return a, nil
		}
		p.next()

		b, err := p.binary(tier + 1)
		if err != nil {
			return nil, err
		}
		a = &Binary{Op: op, A: a, B: b}
	}
}

var unaryOps = map[symbolName]Op{
	symMinus: OpNeg,
	symTilde: OpInvert,
	symBang:  OpNot,
}

func (p *parser) unary() (Expr, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok != nil && tok.kind == tokSymbol {
		if op, ok := unaryOps[tok.sym]; ok {
			p.next()
			x, err := p.unary()
			if err != nil {
				return nil, err
			}
			return &Unary{Op: op, X: x}, nil
		}
	}
	return p.primary()
}

func (p *parser) primary() (Expr, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, ErrExpectedExpr
	}

	switch tok.kind {
	case tokNumber:
		return Num(tok.num), nil

	case tokIdent:
		return Ref(tok.text), nil

	case tokDirective:
		if tok.dir == dirHere {
			return Here{}, nil
		}

	case tokSymbol:
		if tok.sym == symParenOpen {
			inner, err := p.expr()
			if err != nil {
				return nil, err
			}
			closed, err := p.peekSym(symParenClose)
			if err != nil {
				return nil, err
			}
			if !closed {
				return nil, ErrExpectedParen
			}
			p.next()
			return inner, nil
		}
	}
	return nil, ErrExpectedExpr
}

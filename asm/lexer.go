// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokNewline tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokDirective
	tokSymbol
)

type directiveName int

const (
	dirOrg directiveName = iota
	dirDef
	dirDb
	dirDw
	dirDs
	dirEcho
	dirAssert
	dirDie
	dirStruct
	dirEnum
	dirEnd
	dirInclude
	dirHere
)

var directiveNames = map[string]directiveName{
	"@org":     dirOrg,
	"@def":     dirDef,
	"@db":      dirDb,
	"@dw":      dirDw,
	"@ds":      dirDs,
	"@echo":    dirEcho,
	"@assert":  dirAssert,
	"@die":     dirDie,
	"@struct":  dirStruct,
	"@enum":    dirEnum,
	"@end":     dirEnd,
	"@include": dirInclude,
	"@here":    dirHere,
}

type symbolName int

const (
	symPlus symbolName = iota
	symMinus
	symStar
	symSlash
	symPercent
	symParenOpen
	symParenClose
	symTilde
	symBang
	symCaret
	symAmp
	symAmpAmp
	symPipe
	symPipePipe
	symEq
	symNe
	symLt
	symLe
	symGt
	symGe
	symShl
	symShr
	symShlL
	symShrL
	symQuestion
	symColon
	symComma
)

type token struct {
	kind tokenKind
	file string
	line int
	text string        // lexeme; decoded text for tokString
	num  Value         // tokNumber
	dir  directiveName // tokDirective
	sym  symbolName    // tokSymbol
}

// lexer tokenizes one source file. $() escapes are evaluated through the
// hostEval callback and splice their result in as a number token.
type lexer struct {
	file     string
	src      string
	pos      int
	line     int
	hostEval func(expr string) (Value, error)

	// The previous token ended a value; used to tell the modulo
	// operator from a % binary literal.
	afterValue bool
}

func newLexer(file, src string, hostEval func(string) (Value, error)) *lexer {
	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	return &lexer{file: file, src: src, line: 1, hostEval: hostEval}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (lx *lexer) token(kind tokenKind) *token {
	return &token{kind: kind, file: lx.file, line: lx.line}
}

// next returns the next token, or nil at end of input.
func (lx *lexer) next() (*token, error) {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]

		switch {
		case c == ' ' || c == '\t' || c == '\r':
			lx.pos++

		case c == ';':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}

		case c == '\n':
			tok := lx.token(tokNewline)
			tok.text = "\n"
			lx.pos++
			lx.line++
			lx.afterValue = false
			return tok, nil

		case c == '"':
			return lx.string()

		case c == '\'':
			return lx.char()

		case c == '@':
			return lx.directive()

		case c == '$':
			if lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '(' {
				return lx.host()
			}
			return lx.hex()

		case c == '%' && !lx.afterValue:
			return lx.binary()

		case c >= '0' && c <= '9':
			return lx.number()

		case isIdentStart(c):
			return lx.ident()

		default:
			return lx.symbol()
		}
	}

	return nil, nil
}

func (lx *lexer) string() (*token, error) {
	tok := lx.token(tokString)
	lx.pos++ // opening quote

	var out []byte
	for {
		if lx.pos >= len(lx.src) || lx.src[lx.pos] == '\n' {
			return nil, ErrUnterminatedString
		}
		c := lx.src[lx.pos]
		lx.pos++

		switch c {
		case '"':
			tok.text = string(out)
			lx.afterValue = false
			return tok, nil

		case '\\':
			if lx.pos >= len(lx.src) {
				return nil, ErrUnterminatedString
			}
			esc := lx.src[lx.pos]
			lx.pos++
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case '0':
				out = append(out, 0)
			case '\\', '"', '\'':
				out = append(out, esc)
			case 'x':
				if lx.pos+1 >= len(lx.src) ||
					!isHexDigit(lx.src[lx.pos]) || !isHexDigit(lx.src[lx.pos+1]) {
					return nil, ErrUnterminatedString
				}
				v, _ := strconv.ParseUint(lx.src[lx.pos:lx.pos+2], 16, 8)
				out = append(out, byte(v))
				lx.pos += 2
			default:
				return nil, ErrUnexpected("\\" + string(esc))
			}

		default:
			out = append(out, c)
		}
	}
}

func (lx *lexer) char() (*token, error) {
	tok := lx.token(tokNumber)
	start := lx.pos
	lx.pos++ // opening quote

	if lx.pos >= len(lx.src) {
		return nil, ErrUnterminatedString
	}
	c := lx.src[lx.pos]
	lx.pos++
	if c == '\\' {
		if lx.pos >= len(lx.src) {
			return nil, ErrUnterminatedString
		}
		esc := lx.src[lx.pos]
		lx.pos++
		switch esc {
		case 'n':
			c = '\n'
		case 'r':
			c = '\r'
		case 't':
			c = '\t'
		case '0':
			c = 0
		case '\\', '\'', '"':
			c = esc
		default:
			return nil, ErrUnexpected("\\" + string(esc))
		}
	}
	if lx.pos >= len(lx.src) || lx.src[lx.pos] != '\'' {
		return nil, ErrParseNumber(lx.src[start:min(lx.pos, len(lx.src))])
	}
	lx.pos++ // closing quote

	tok.num = Value(c)
	tok.text = lx.src[start:lx.pos]
	lx.afterValue = true
	return tok, nil
}

func (lx *lexer) directive() (*token, error) {
	tok := lx.token(tokDirective)
	start := lx.pos
	lx.pos++ // '@'
	for lx.pos < len(lx.src) && isIdent(lx.src[lx.pos]) {
		lx.pos++
	}
	tok.text = lx.src[start:lx.pos]

	dir, ok := directiveNames[strings.ToLower(tok.text)]
	if !ok {
		return nil, ErrUnexpected(tok.text)
	}
	tok.dir = dir
	lx.afterValue = dir == dirHere
	return tok, nil
}

// host evaluates a $( ... ) escape and splices the result in as a
// number.
func (lx *lexer) host() (*token, error) {
	tok := lx.token(tokNumber)
	lx.pos += 2 // "$("
	start := lx.pos

	depth := 1
	for depth > 0 {
		if lx.pos >= len(lx.src) || lx.src[lx.pos] == '\n' {
			return nil, ErrHostExpr(lx.src[start:lx.pos])
		}
		switch lx.src[lx.pos] {
		case '(':
			depth++
		case ')':
			depth--
		}
		lx.pos++
	}

	expr := lx.src[start : lx.pos-1]
	value, err := lx.hostEval(expr)
	if err != nil {
		return nil, err
	}
	tok.num = value
	tok.text = expr
	lx.afterValue = true
	return tok, nil
}

func (lx *lexer) hex() (*token, error) {
	tok := lx.token(tokNumber)
	start := lx.pos
	lx.pos++ // '$'
	for lx.pos < len(lx.src) && isHexDigit(lx.src[lx.pos]) {
		lx.pos++
	}
	tok.text = lx.src[start:lx.pos]
	if lx.pos == start+1 {
		return nil, ErrParseNumber(tok.text)
	}

	v, err := strconv.ParseUint(lx.src[start+1:lx.pos], 16, 32)
	if err != nil {
		return nil, ErrParseNumber(tok.text)
	}
	tok.num = Value(uint32(v))
	lx.afterValue = true
	return tok, nil
}

func (lx *lexer) binary() (*token, error) {
	tok := lx.token(tokNumber)
	start := lx.pos
	lx.pos++ // '%'
	for lx.pos < len(lx.src) && (lx.src[lx.pos] == '0' || lx.src[lx.pos] == '1') {
		lx.pos++
	}
	tok.text = lx.src[start:lx.pos]
	if lx.pos == start+1 {
		return nil, ErrParseNumber(tok.text)
	}

	v, err := strconv.ParseUint(lx.src[start+1:lx.pos], 2, 32)
	if err != nil {
		return nil, ErrParseNumber(tok.text)
	}
	tok.num = Value(uint32(v))
	lx.afterValue = true
	return tok, nil
}

func (lx *lexer) number() (*token, error) {
	tok := lx.token(tokNumber)
	start := lx.pos
	for lx.pos < len(lx.src) && (isIdent(lx.src[lx.pos]) && lx.src[lx.pos] != '.') {
		lx.pos++
	}
	tok.text = lx.src[start:lx.pos]

	// Base prefixes 0x and 0b come through ParseUint base 0.
	v, err := strconv.ParseUint(tok.text, 0, 33)
	if err != nil || v > 0xffffffff {
		return nil, ErrParseNumber(tok.text)
	}
	tok.num = Value(uint32(v))
	lx.afterValue = true
	return tok, nil
}

func (lx *lexer) ident() (*token, error) {
	tok := lx.token(tokIdent)
	start := lx.pos
	for lx.pos < len(lx.src) && isIdent(lx.src[lx.pos]) {
		lx.pos++
	}
	tok.text = lx.src[start:lx.pos]

	if strings.Count(tok.text, ".") > 1 {
		return nil, ErrMalformedLabel(tok.text)
	}
	lx.afterValue = true
	return tok, nil
}

var symbolLexemes = []struct {
	lexeme string
	sym    symbolName
}{
	// Longest match first.
	{"<<", symShl},
	{"<:", symShlL},
	{"<=", symLe},
	{">>", symShr},
	{">=", symGe},
	{":>", symShrL},
	{"&&", symAmpAmp},
	{"||", symPipePipe},
	{"==", symEq},
	{"!=", symNe},
	{"+", symPlus},
	{"-", symMinus},
	{"*", symStar},
	{"/", symSlash},
	{"%", symPercent},
	{"(", symParenOpen},
	{")", symParenClose},
	{"~", symTilde},
	{"!", symBang},
	{"^", symCaret},
	{"&", symAmp},
	{"|", symPipe},
	{"=", symEq},
	{"<", symLt},
	{">", symGt},
	{"?", symQuestion},
	{":", symColon},
	{",", symComma},
}

func (lx *lexer) symbol() (*token, error) {
	tok := lx.token(tokSymbol)
	rest := lx.src[lx.pos:]
	for _, entry := range symbolLexemes {
		if strings.HasPrefix(rest, entry.lexeme) {
			tok.text = entry.lexeme
			tok.sym = entry.sym
			lx.pos += len(entry.lexeme)
			lx.afterValue = entry.sym == symParenClose
			return tok, nil
		}
	}
	return nil, ErrUnexpected(string(lx.src[lx.pos]))
}

// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"errors"
	"strings"

	"github.com/kr8cpu/krasm/translate"
)

var f = translate.From

var (
	// Evaluation errors
	ErrDivisionByZero = errors.New(f("division by zero"))
	ErrTypeMismatch   = errors.New(f("type mismatch"))

	// Directive errors
	ErrArgMissing = errors.New(f("argument missing"))
	ErrArgExtra   = errors.New(f("excessive arguments"))
	ErrNoEncoder  = errors.New(f("no instruction encoder"))

	// Front end errors
	ErrUnterminatedString = errors.New(f("unterminated string"))
	ErrExpectedExpr       = errors.New(f("expression expected"))
	ErrExpectedParen      = errors.New(f("\")\" expected"))
	ErrExpectedColon      = errors.New(f("\":\" expected in ternary expression"))
	ErrExpectedName       = errors.New(f("name expected"))
	ErrExpectedEnd        = errors.New(f("@end expected"))
	ErrIncludeDepth       = errors.New(f("includes nested too deeply"))
)

// ErrDuplicateSymbol reports a second definition of a qualified name.
type ErrDuplicateSymbol string

func (err ErrDuplicateSymbol) Error() string {
	return f("symbol %q already defined", string(err))
}

func (err ErrDuplicateSymbol) Is(other error) (ok bool) {
	_, ok = other.(ErrDuplicateSymbol)
	return
}

// ErrUnresolved reports the symbols still pending after the resolver
// reached a fixed point, including genuine circular definitions.
type ErrUnresolved struct {
	Names []string
}

func (err *ErrUnresolved) Error() string {
	return f("unresolved symbols: %v", strings.Join(err.Names, ", "))
}

func (err *ErrUnresolved) Is(other error) (ok bool) {
	_, ok = other.(*ErrUnresolved)
	return
}

// ErrNoScope reports a local name used before any global label opened a
// scope to own it.
type ErrNoScope string

func (err ErrNoScope) Error() string {
	return f("local %q has no owning global label", string(err))
}

func (err ErrNoScope) Is(other error) (ok bool) {
	_, ok = other.(ErrNoScope)
	return
}

// ErrMalformedLabel reports a name with more than one scope separator.
type ErrMalformedLabel string

func (err ErrMalformedLabel) Error() string {
	return f("malformed label %q", string(err))
}

func (err ErrMalformedLabel) Is(other error) (ok bool) {
	_, ok = other.(ErrMalformedLabel)
	return
}

// ErrMalformedStruct reports a struct with no fields or a field with no
// size expression.
type ErrMalformedStruct string

func (err ErrMalformedStruct) Error() string {
	return f("malformed struct %q", string(err))
}

func (err ErrMalformedStruct) Is(other error) (ok bool) {
	_, ok = other.(ErrMalformedStruct)
	return
}

// ErrMalformedEnum reports an enum with no variants.
type ErrMalformedEnum string

func (err ErrMalformedEnum) Error() string {
	return f("malformed enum %q", string(err))
}

func (err ErrMalformedEnum) Is(other error) (ok bool) {
	_, ok = other.(ErrMalformedEnum)
	return
}

// ErrAssert reports an @assert whose expression resolved to zero.
type ErrAssert string

func (err ErrAssert) Error() string {
	if err == "" {
		return f("assertion failed")
	}
	return f("assertion failed: %v", string(err))
}

func (err ErrAssert) Is(other error) (ok bool) {
	_, ok = other.(ErrAssert)
	return
}

// ErrAbort reports an explicit @die.
type ErrAbort string

func (err ErrAbort) Error() string {
	return string(err)
}

func (err ErrAbort) Is(other error) (ok bool) {
	_, ok = other.(ErrAbort)
	return
}

// ErrRange reports a resolved value that does not fit its emission width.
type ErrRange struct {
	Value Value
	Bits  int
}

func (err *ErrRange) Error() string {
	return f("value %v will not fit in %v bits", err.Value, err.Bits)
}

func (err *ErrRange) Is(other error) (ok bool) {
	_, ok = other.(*ErrRange)
	return
}

// ErrParseNumber reports an unparseable numeric literal.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

func (err ErrParseNumber) Is(other error) (ok bool) {
	_, ok = other.(ErrParseNumber)
	return
}

// ErrHostExpr reports a $() escape that did not evaluate to an integer.
type ErrHostExpr string

func (err ErrHostExpr) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

func (err ErrHostExpr) Is(other error) (ok bool) {
	_, ok = other.(ErrHostExpr)
	return
}

// ErrUnexpected reports an unexpected token in the source.
type ErrUnexpected string

func (err ErrUnexpected) Error() string {
	return f("unexpected %q", string(err))
}

func (err ErrUnexpected) Is(other error) (ok bool) {
	_, ok = other.(ErrUnexpected)
	return
}

// ErrIncludeMissing reports an @include file not found on any search path.
type ErrIncludeMissing string

func (err ErrIncludeMissing) Error() string {
	return f("include %q not found", string(err))
}

func (err ErrIncludeMissing) Is(other error) (ok bool) {
	_, ok = other.(ErrIncludeMissing)
	return
}

// ErrSource locates an error in the source text.
type ErrSource struct {
	File string
	Line int
	Err  error
}

func (err *ErrSource) Error() string {
	return f("%v:%d: %v", err.File, err.Line, err.Err)
}

func (err *ErrSource) Unwrap() error {
	return err.Err
}

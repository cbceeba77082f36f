// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"fmt"
	"log"

	"github.com/kr8cpu/krasm/internal"
)

type fixupKind int

const (
	fixByte fixupKind = iota
	fixWord
	fixFill
	fixAssert
	fixEcho
)

// fixup is a deferred thunk: an expression plus what to do with its
// value once every symbol it references has resolved.
type fixup struct {
	kind   fixupKind
	expr   Expr
	offset int    // reserved stream offset (fixByte, fixWord, fixFill)
	count  int    // fill length (fixFill)
	msg    string // assertion message (fixAssert)
	slot   int    // diagnostics slot (fixEcho)
}

// resolve drives the pending worklist to a fixed point. Each sweep
// re-attempts every pending symbol binding and fixup in declaration
// order; a sweep that makes no progress while work remains reports the
// outstanding names. There is no iteration cap: forward-reference chains
// of arbitrary depth converge one link per sweep.
func (s *Session) resolve() error {
	for sweep := 0; ; sweep++ {
		progress := false
		var blocked []string

		for _, name := range s.symtab.pendingNames() {
			expr, _ := s.symtab.Pending(name)
			value, unresolved, err := Eval(expr, s.symtab, 0)
			if err != nil {
				return err
			}
			if unresolved != nil {
				blocked = append(blocked, name)
				blocked = append(blocked, unresolved...)
				continue
			}
			s.symtab.resolve(name, value)
			progress = true
		}

		pending := s.fixups[:0]
		for _, fix := range s.fixups {
			value, unresolved, err := Eval(fix.expr, s.symtab, 0)
			if err != nil {
				return err
			}
			if unresolved != nil {
				blocked = append(blocked, unresolved...)
				pending = append(pending, fix)
				continue
			}
			if err := s.apply(fix, value); err != nil {
				return err
			}
			progress = true
		}
		s.fixups = pending

		if s.Verbose {
			log.Printf("resolver: sweep %v: %v fixups and %v symbols pending",
				sweep, len(s.fixups), len(s.symtab.pendingNames()))
		}

		if len(s.fixups) == 0 && len(s.symtab.pendingNames()) == 0 {
			return nil
		}
		if !progress {
			return &ErrUnresolved{Names: internal.Dedupe(blocked)}
		}
	}
}

func (s *Session) apply(fix *fixup, value Value) error {
	switch fix.kind {
	case fixByte:
		if !value.FitsByte() {
			return &ErrRange{Value: value, Bits: 8}
		}
		s.section.PatchByte(fix.offset, value)

	case fixWord:
		if !value.FitsWord() {
			return &ErrRange{Value: value, Bits: 16}
		}
		s.section.PatchWord(fix.offset, value)

	case fixFill:
		if !value.FitsByte() {
			return &ErrRange{Value: value, Bits: 8}
		}
		s.section.Fill(fix.offset, fix.count, value.Byte())

	case fixAssert:
		if !value.Bool() {
			return ErrAssert(fix.msg)
		}

	case fixEcho:
		s.diags[fix.slot].text = fmt.Sprintf("%v", value)
		s.diags[fix.slot].done = true
	}

	return nil
}

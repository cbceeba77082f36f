// Package asm implements the macro assembler core for the KR8, an 8-bit CPU.
//
// The assembler is a single linear scan over the source: labels, @def
// symbols, and struct/enum definitions are recorded as they appear, and
// every expression that cannot be evaluated yet (because it references a
// symbol defined later in the file) is held as a pending fixup. Once the
// scan completes, the resolver sweeps the pending work to a fixed point,
// patching reserved output bytes and checking deferred assertions. Forward
// references of arbitrary depth are legal; only a sweep that makes no
// progress reports the remaining names as unresolved.
//
// Numeric values are signed 32-bit integers with wraparound arithmetic and
// C operator precedence, including distinct arithmetic (<<, >>) and
// logical (<:, :>) shift operators.
package asm

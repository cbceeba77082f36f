// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

// Value is the assembler's numeric type: a signed 32-bit integer.
// Addition, subtraction, and multiplication wrap modulo 2^32.
type Value int32

// Bool reports the truth of the value. Any non-zero Value is true.
func (v Value) Bool() bool {
	return v != 0
}

func boolValue(b bool) Value {
	if b {
		return 1
	}
	return 0
}

// Byte returns the low 8 bits of the value.
func (v Value) Byte() byte {
	return byte(uint32(v))
}

// Word returns the low 16 bits of the value, little-endian.
func (v Value) Word() [2]byte {
	return [2]byte{byte(uint32(v)), byte(uint32(v) >> 8)}
}

// FitsByte reports whether the value can be emitted as a single byte.
// Negative values down to -128 are accepted as their two's complement
// byte.
func (v Value) FitsByte() bool {
	return v >= -0x80 && v <= 0xff
}

// FitsWord reports whether the value can be emitted as a 16-bit word.
func (v Value) FitsWord() bool {
	return v >= -0x8000 && v <= 0xffff
}

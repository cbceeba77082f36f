// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

// Section tracks the location counter and accumulates assembled output.
// The output stream is append-only: @org moves the counter without
// emitting or truncating, so label values and stream offsets are
// decoupled. Deferred content reserves its stream offset up front and is
// patched once resolved.
type Section struct {
	data []byte
	here Value
}

// Here returns the location counter, usable inside any expression.
func (s *Section) Here() Value {
	return s.here
}

// Org jumps the counter without emitting bytes. It does not validate
// forward or backward movement and never truncates the stream.
func (s *Section) Org(here Value) {
	s.here = here
}

// Emit appends bytes at the current stream position and advances the
// counter by their length.
func (s *Section) Emit(bytes ...byte) {
	s.data = append(s.data, bytes...)
	s.here += Value(len(bytes))
}

// Reserve appends n placeholder bytes for content pending deferred
// resolution and advances the counter. It returns the reserved stream
// offset.
func (s *Section) Reserve(n int) (offset int) {
	offset = len(s.data)
	s.data = append(s.data, make([]byte, n)...)
	s.here += Value(n)
	return
}

// PatchByte writes the low byte of a resolved value at a reserved offset.
func (s *Section) PatchByte(offset int, value Value) {
	s.data[offset] = value.Byte()
}

// PatchWord writes the low word of a resolved value at a reserved
// offset, little-endian.
func (s *Section) PatchWord(offset int, value Value) {
	word := value.Word()
	s.data[offset] = word[0]
	s.data[offset+1] = word[1]
}

// Fill overwrites n reserved bytes with a resolved fill byte.
func (s *Section) Fill(offset, n int, fill byte) {
	for i := 0; i < n; i++ {
		s.data[offset+i] = fill
	}
}

// Bytes returns the assembled output stream.
func (s *Section) Bytes() []byte {
	return s.data
}

// Len returns the length of the output stream.
func (s *Section) Len() int {
	return len(s.data)
}

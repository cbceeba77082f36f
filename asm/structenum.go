// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

// structBlock defines one offset symbol per field and a total-size
// symbol under the struct name. The offset of field i is the sum of the
// sizes of fields 0..i-1; a size that cannot be evaluated yet leaves
// every dependent offset (and the total) pending for the resolver.
func (s *Session) structBlock(n *StructBlock) error {
	if n.Name == "" || len(n.Fields) == 0 {
		return ErrMalformedStruct(n.Name)
	}

	var offset Expr = Num(0)
	for _, field := range n.Fields {
		if field.Name == "" || field.Size == nil {
			return ErrMalformedStruct(n.Name)
		}
		size, err := bind(field.Size, s.scope, s.section.Here())
		if err != nil {
			return err
		}
		if err := s.defineComputed(n.Name+"."+field.Name, offset); err != nil {
			return err
		}
		offset = &Binary{Op: OpAdd, A: offset, B: size}
	}

	return s.defineComputed(n.Name, offset)
}

// enumBlock defines one ordinal symbol per variant and a variant-count
// symbol under the enum name. Ordinals need no size computation and are
// always immediately resolvable.
func (s *Session) enumBlock(n *EnumBlock) error {
	if n.Name == "" || len(n.Variants) == 0 {
		return ErrMalformedEnum(n.Name)
	}

	for i, variant := range n.Variants {
		if variant == "" {
			return ErrMalformedEnum(n.Name)
		}
		if err := s.symtab.Define(n.Name+"."+variant, Value(i)); err != nil {
			return err
		}
	}

	return s.symtab.Define(n.Name, Value(len(n.Variants)))
}

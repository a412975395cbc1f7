// Package kazert is the small runtime support library the simulator
// emitter's generated Go source imports. Go has no built-in 128-bit integer
// type, unlike the native u32/u64/u128 the original compiler's host
// language provided directly; U128 and its methods exist only to give the
// widest native carrier width a representation in generated Go code.
// Bool/U32/U64 signals lower to plain bool/uint32/uint64 and use Go's own
// operators, which already wrap on overflow and zero-fill on shift the way
// hardware semantics require — only U128 needs help.
package kazert

import "math/bits"

// U128 is an unsigned 128-bit integer, stored as two 64-bit words.
type U128 struct {
	Hi, Lo uint64
}

// U128FromU32 widens a 32-bit value.
func U128FromU32(v uint32) U128 { return U128{Lo: uint64(v)} }

// U128FromU64 widens a 64-bit value.
func U128FromU64(v uint64) U128 { return U128{Lo: v} }

// ToU32 narrows to the low 32 bits.
func (u U128) ToU32() uint32 { return uint32(u.Lo) }

// ToU64 narrows to the low 64 bits.
func (u U128) ToU64() uint64 { return u.Lo }

// IsZero reports whether u is the zero value.
func (u U128) IsZero() bool { return u.Hi == 0 && u.Lo == 0 }

// And returns the bitwise AND of u and v.
func (u U128) And(v U128) U128 { return U128{u.Hi & v.Hi, u.Lo & v.Lo} }

// Or returns the bitwise OR of u and v.
func (u U128) Or(v U128) U128 { return U128{u.Hi | v.Hi, u.Lo | v.Lo} }

// Xor returns the bitwise XOR of u and v.
func (u U128) Xor(v U128) U128 { return U128{u.Hi ^ v.Hi, u.Lo ^ v.Lo} }

// Not returns the bitwise complement of u.
func (u U128) Not() U128 { return U128{^u.Hi, ^u.Lo} }

// Mask clears all bits at or above bit index w (0 <= w <= 128).
func (u U128) Mask(w uint32) U128 {
	switch {
	case w == 0:
		return U128{}
	case w >= 128:
		return u
	case w >= 64:
		hiBits := w - 64
		return U128{Hi: u.Hi & ((uint64(1) << hiBits) - 1), Lo: u.Lo}
	default:
		return U128{Lo: u.Lo & ((uint64(1) << w) - 1)}
	}
}

// Shl performs a logical left shift, zero-filling when n >= 128 (matching
// the hardware "shift by >= width yields all-zero" semantics).
func (u U128) Shl(n uint32) U128 {
	switch {
	case n == 0:
		return u
	case n >= 128:
		return U128{}
	case n >= 64:
		return U128{Hi: u.Lo << (n - 64), Lo: 0}
	default:
		return U128{Hi: (u.Hi << n) | (u.Lo >> (64 - n)), Lo: u.Lo << n}
	}
}

// Shr performs a logical right shift, zero-filling when n >= 128.
func (u U128) Shr(n uint32) U128 {
	switch {
	case n == 0:
		return u
	case n >= 128:
		return U128{}
	case n >= 64:
		return U128{Hi: 0, Lo: u.Hi >> (n - 64)}
	default:
		return U128{Hi: u.Hi >> n, Lo: (u.Lo >> n) | (u.Hi << (64 - n))}
	}
}

// ShrArithmetic performs a sign-propagating right shift, treating u as a
// two's-complement 128-bit value: for n >= 128 the result is all-ones when
// the sign bit is set, else all-zero.
func (u U128) ShrArithmetic(n uint32) U128 {
	signed := int64(u.Hi) < 0
	if n >= 128 {
		if signed {
			return U128{^uint64(0), ^uint64(0)}
		}
		return U128{}
	}
	if n == 0 {
		return u
	}
	shifted := u.Shr(n)
	if !signed {
		return shifted
	}
	// Fill the vacated high bits with ones.
	fillFrom := uint32(128) - n
	return shifted.Or(onesFrom(fillFrom))
}

// onesFrom returns a U128 with all bits at index >= from set.
func onesFrom(from uint32) U128 {
	if from >= 128 {
		return U128{}
	}
	return U128{^uint64(0), ^uint64(0)}.Mask(128).andNotMask(from)
}

func (u U128) andNotMask(from uint32) U128 {
	return u.Xor(u.Mask(from))
}

// Min returns the unsigned smaller of u and v.
func (u U128) Min(v U128) U128 {
	if u.Lt(v) {
		return u
	}
	return v
}

// WrappingAdd computes (u + v) mod 2^128.
func (u U128) WrappingAdd(v U128) U128 {
	lo, carry := bits.Add64(u.Lo, v.Lo, 0)
	hi, _ := bits.Add64(u.Hi, v.Hi, carry)
	return U128{hi, lo}
}

// WrappingSub computes (u - v) mod 2^128.
func (u U128) WrappingSub(v U128) U128 {
	lo, borrow := bits.Sub64(u.Lo, v.Lo, 0)
	hi, _ := bits.Sub64(u.Hi, v.Hi, borrow)
	return U128{hi, lo}
}

// WrappingMul computes (u * v) mod 2^128. The low 128 bits of a product are
// identical for signed and unsigned two's-complement operands, so this also
// serves the signed multiply lowering.
func (u U128) WrappingMul(v U128) U128 {
	hi, lo := bits.Mul64(u.Lo, v.Lo)
	hi += u.Lo*v.Hi + u.Hi*v.Lo
	return U128{hi, lo}
}

// CheckedShl performs Shl, but returns zero when n >= 128 — already Shl's
// behavior; the alias keeps generated code explicit about wanting the
// zero-on-overflow form.
func (u U128) CheckedShl(n uint32) U128 { return u.Shl(n) }

// CheckedShr is the logical-shift analogue of CheckedShl.
func (u U128) CheckedShr(n uint32) U128 { return u.Shr(n) }

// LtS reports signed u < v, treating both as two's-complement 128-bit values.
func (u U128) LtS(v U128) bool {
	us, vs := int64(u.Hi), int64(v.Hi)
	if us != vs {
		return us < vs
	}
	return u.Lo < v.Lo
}

// LeS reports signed u <= v.
func (u U128) LeS(v U128) bool { return u.Eq(v) || u.LtS(v) }

// GtS reports signed u > v.
func (u U128) GtS(v U128) bool { return v.LtS(u) }

// GeS reports signed u >= v.
func (u U128) GeS(v U128) bool { return v.LeS(u) }

// Eq reports unsigned equality.
func (u U128) Eq(v U128) bool { return u == v }

// Ne reports unsigned inequality.
func (u U128) Ne(v U128) bool { return u != v }

// Lt reports unsigned u < v.
func (u U128) Lt(v U128) bool {
	if u.Hi != v.Hi {
		return u.Hi < v.Hi
	}
	return u.Lo < v.Lo
}

// Le reports unsigned u <= v.
func (u U128) Le(v U128) bool { return u.Eq(v) || u.Lt(v) }

// Gt reports unsigned u > v.
func (u U128) Gt(v U128) bool { return v.Lt(u) }

// Ge reports unsigned u >= v.
func (u U128) Ge(v U128) bool { return v.Le(u) }

package kir

import (
	"fmt"

	"github.com/ar90n/kaze/kazert"
)

// Builder accumulates the ordered assignment stream a compilation run
// produces and hands out fresh temporary names. It is constructed fresh per
// generation call; the temp counter is never package-level state, so
// concurrent compilations of different modules cannot interleave names.
type Builder struct {
	Assignments []Assignment
	localCount  uint32
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// NewTemp binds expr to a freshly named local temporary, appends the
// defining Assignment, and returns a Ref to it. This is the only way
// compound expressions enter the assignment stream; every multi-operand
// Expr (InfixBinOp, UnaryMemberCall, BinaryFunctionCall, Ternary) must be
// bound through NewTemp before it can be used as an operand elsewhere,
// since Expr trees built by the signal compiler are expected to nest at
// most one level deep.
func (b *Builder) NewTemp(expr *Expr) *Expr {
	name := fmt.Sprintf("__temp_%d", b.localCount)
	b.localCount++
	b.Assignments = append(b.Assignments, Assignment{
		TargetScope: RefLocal,
		TargetName:  name,
		Expr:        expr,
	})
	return Ref(name, RefLocal, expr.Type)
}

// Define appends an Assignment to a named member (a port, a register-next
// wire, or a memory-port wire) without allocating a temp name.
func (b *Builder) Define(name string, expr *Expr) {
	b.Assignments = append(b.Assignments, Assignment{
		TargetScope: RefMember,
		TargetName:  name,
		Expr:        expr,
	})
}

// Mask restores the upper-bit-clean invariant: if bitWidth
// already equals the native type's width, expr is returned unchanged;
// otherwise a masking AND with ((1<<bitWidth)-1) is bound to a new temp.
func (b *Builder) Mask(expr *Expr, bitWidth uint32, t ValueType) *Expr {
	if bitWidth == t.BitWidth() {
		return expr
	}
	var maskExpr *Expr
	if t == U128 {
		allOnes := kazert.U128{Hi: ^uint64(0), Lo: ^uint64(0)}
		maskExpr = ConstantU128(allOnes.Mask(bitWidth))
	} else {
		maskExpr = Constant(maskConstant64(bitWidth), t)
	}
	return b.NewTemp(infix(InfixBitAnd, expr, maskExpr, t))
}

// maskConstant64 computes (1<<w)-1 for a native width of at most 64 bits
// (Bool, U32, U64) without overflowing uint64 when w==64.
func maskConstant64(w uint32) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << w) - 1
}

// ShiftLeft emits `expr << k`, skipping the shift entirely when k == 0.
func (b *Builder) ShiftLeft(expr *Expr, k uint32) *Expr {
	if k == 0 {
		return expr
	}
	return b.NewTemp(infix(InfixShl, expr, Constant(uint64(k), U32), expr.Type))
}

// ShiftRight emits `expr >> k`, skipping the shift entirely when k == 0.
func (b *Builder) ShiftRight(expr *Expr, k uint32) *Expr {
	if k == 0 {
		return expr
	}
	return b.NewTemp(infix(InfixShr, expr, Constant(uint64(k), U32), expr.Type))
}

// Cast converts expr from src to dst. Identity if equal; if dst is Bool,
// masks to 1 bit and compares not-equal to zero; otherwise emits a Cast
// node for the emitter to render as its target's integer conversion.
func (b *Builder) Cast(expr *Expr, src, dst ValueType) *Expr {
	if src == dst {
		return expr
	}
	if dst == Bool {
		masked := b.Mask(expr, 1, src)
		return b.NewTemp(infix(InfixNe, masked, Constant(0, src), Bool))
	}
	return b.NewTemp(cast(expr, dst))
}

// SignExtendShifts performs the shift-left-then-arithmetic-shift-right pair
// used to align a w-bit logical value's sign bit with tSigned's sign bit,
// used when lowering signed comparisons and arithmetic right shifts.
func (b *Builder) SignExtendShifts(expr *Expr, w uint32, tSigned ValueType) *Expr {
	shift := tSigned.BitWidth() - w
	expr = b.ShiftLeft(expr, shift)
	return b.ShiftRight(expr, shift)
}

// UnaryMemberCall emits `target.name(arg)` bound to a new temp — used for
// the wrapping/checked-arithmetic operations the additive and shift
// lowerings require on the U128 carrier.
func (b *Builder) UnaryMemberCall(target *Expr, name string, arg *Expr, t ValueType) *Expr {
	return b.NewTemp(unaryMemberCall(target, name, arg, t))
}

// BinaryFunctionCall emits `name(lhs, rhs)` bound to a new temp — used for
// the min() clamp on wide shift amounts.
func (b *Builder) BinaryFunctionCall(name string, lhs, rhs *Expr, t ValueType) *Expr {
	return b.NewTemp(binaryFunctionCall(name, lhs, rhs, t))
}

// InfixBinOp emits `lhs op rhs` bound to a new temp.
func (b *Builder) InfixBinOp(op InfixOp, lhs, rhs *Expr, t ValueType) *Expr {
	return b.NewTemp(infix(op, lhs, rhs, t))
}

// UnOp emits `op source` bound to a new temp.
func (b *Builder) UnOp(op UnaryOp, source *Expr, t ValueType) *Expr {
	return b.NewTemp(unOp(op, source, t))
}

// Ternary emits `cond ? whenTrue : whenFalse` bound to a new temp.
func (b *Builder) Ternary(cond, whenTrue, whenFalse *Expr, t ValueType) *Expr {
	return b.NewTemp(ternary(cond, whenTrue, whenFalse, t))
}

package kir

import (
	"fmt"

	"github.com/ar90n/kaze/kazert"
)

// ExprOp tags the variant of an Expr. Go has no union type, so Expr is one
// flattened struct whose fields are interpreted according to Op.
type ExprOp byte

const (
	opInvalid ExprOp = iota
	OpConstant
	OpRef
	OpUnOp
	OpInfixBinOp
	OpUnaryMemberCall
	OpBinaryFunctionCall
	OpCast
	OpTernary
)

// RefScope distinguishes a local temporary from a named member (a module
// port, a register's value/next storage, or a memory port wire).
type RefScope byte

const (
	RefLocal RefScope = iota
	RefMember
)

// UnaryOp enumerates the unary operators an Expr may apply.
type UnaryOp byte

const (
	UnOpNot UnaryOp = iota
)

// InfixOp is the set of infix operators an Assignment's RHS may use.
type InfixOp byte

const (
	InfixBitAnd InfixOp = iota
	InfixBitOr
	InfixBitXor
	InfixShl
	InfixShr
	InfixAdd
	InfixSub
	InfixMul
	InfixEq
	InfixNe
	InfixLt
	InfixLe
	InfixGt
	InfixGe
)

// Expr is a node in the compiled expression tree. Exactly one group of
// fields is meaningful, selected by Op:
//
//   - OpConstant:           Type, ConstValue
//   - OpRef:                Type, RefScopeVal, Name
//   - OpUnOp:                Type, UnaryOpVal, Source
//   - OpInfixBinOp:         Type, InfixOpVal, LHS, RHS
//   - OpUnaryMemberCall:    Type, Name (method name), Target, Arg
//   - OpBinaryFunctionCall: Type, Name (function name), LHS, RHS
//   - OpCast:               Type (target), Source
//   - OpTernary:            Type, Cond, LHS (when_true), RHS (when_false)
type Expr struct {
	Op   ExprOp
	Type ValueType

	// ConstValue holds bits [63:0] of the constant's bit pattern; ConstValueHi
	// holds bits [127:64], meaningful only when Type is U128 — a plain uint64
	// cannot carry a 128-bit literal, so constants typed U128 with a logical
	// width over 64 bits (e.g. a mask produced by Builder.Mask) need the
	// second word. Bool/U32/U64 constants always leave ConstValueHi zero.
	ConstValue   uint64
	ConstValueHi uint64

	RefScopeVal RefScope
	Name        string

	UnaryOpVal UnaryOp
	InfixOpVal InfixOp

	Source *Expr
	Cond   *Expr
	Target *Expr
	LHS    *Expr
	RHS    *Expr
	Arg    *Expr
}

// Ref builds a reference expression to a named local or member.
func Ref(name string, scope RefScope, t ValueType) *Expr {
	return &Expr{Op: OpRef, Type: t, Name: name, RefScopeVal: scope}
}

// Constant builds a constant expression. value is truncated implicitly by
// the caller to Type's bit width; the IR does not re-validate it.
func Constant(value uint64, t ValueType) *Expr {
	return &Expr{Op: OpConstant, Type: t, ConstValue: value}
}

// ConstantU128 builds a U128 constant from a full 128-bit value.
func ConstantU128(v kazert.U128) *Expr {
	return &Expr{Op: OpConstant, Type: U128, ConstValue: v.Lo, ConstValueHi: v.Hi}
}

// ConstantBool builds a Bool constant.
func ConstantBool(value bool) *Expr {
	var v uint64
	if value {
		v = 1
	}
	return &Expr{Op: OpConstant, Type: Bool, ConstValue: v}
}

func unOp(op UnaryOp, source *Expr, t ValueType) *Expr {
	return &Expr{Op: OpUnOp, Type: t, UnaryOpVal: op, Source: source}
}

func infix(op InfixOp, lhs, rhs *Expr, t ValueType) *Expr {
	return &Expr{Op: OpInfixBinOp, Type: t, InfixOpVal: op, LHS: lhs, RHS: rhs}
}

func unaryMemberCall(target *Expr, name string, arg *Expr, t ValueType) *Expr {
	return &Expr{Op: OpUnaryMemberCall, Type: t, Target: target, Name: name, Arg: arg}
}

func binaryFunctionCall(name string, lhs, rhs *Expr, t ValueType) *Expr {
	return &Expr{Op: OpBinaryFunctionCall, Type: t, Name: name, LHS: lhs, RHS: rhs}
}

func cast(source *Expr, target ValueType) *Expr {
	return &Expr{Op: OpCast, Type: target, Source: source}
}

func ternary(cond, whenTrue, whenFalse *Expr, t ValueType) *Expr {
	return &Expr{Op: OpTernary, Type: t, Cond: cond, LHS: whenTrue, RHS: whenFalse}
}

// TargetScope mirrors RefScope but names the thing an Assignment defines.
type TargetScope = RefScope

// Assignment is a single definition: a local temporary (single-definition,
// single-or-many-use) or a named member (a port, a register-next wire, or a
// memory-port wire).
type Assignment struct {
	TargetScope TargetScope
	TargetName  string
	Expr        *Expr
}

func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Op {
	case OpConstant:
		if e.Type == U128 && e.ConstValueHi != 0 {
			return fmt.Sprintf("%s(0x%x%016x)", e.Type, e.ConstValueHi, e.ConstValue)
		}
		return fmt.Sprintf("%s(0x%x)", e.Type, e.ConstValue)
	case OpRef:
		return e.Name
	case OpUnOp:
		return fmt.Sprintf("!%s", e.Source)
	case OpInfixBinOp:
		return fmt.Sprintf("(%s %s %s)", e.LHS, infixSymbol(e.InfixOpVal), e.RHS)
	case OpUnaryMemberCall:
		return fmt.Sprintf("%s.%s(%s)", e.Target, e.Name, e.Arg)
	case OpBinaryFunctionCall:
		return fmt.Sprintf("%s(%s, %s)", e.Name, e.LHS, e.RHS)
	case OpCast:
		return fmt.Sprintf("(%s)(%s)", e.Type, e.Source)
	case OpTernary:
		return fmt.Sprintf("(%s ? %s : %s)", e.Cond, e.LHS, e.RHS)
	default:
		panic("kir: invalid Expr")
	}
}

func infixSymbol(op InfixOp) string {
	switch op {
	case InfixBitAnd:
		return "&"
	case InfixBitOr:
		return "|"
	case InfixBitXor:
		return "^"
	case InfixShl:
		return "<<"
	case InfixShr:
		return ">>"
	case InfixAdd:
		return "+"
	case InfixSub:
		return "-"
	case InfixMul:
		return "*"
	case InfixEq:
		return "=="
	case InfixNe:
		return "!="
	case InfixLt:
		return "<"
	case InfixLe:
		return "<="
	case InfixGt:
		return ">"
	case InfixGe:
		return ">="
	default:
		panic("kir: invalid InfixOp")
	}
}

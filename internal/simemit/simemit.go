// Package simemit renders a CompiledUnit as a self-contained Go source file:
// a struct carrying the module's registers and memory contents, and a Step
// method that evaluates one clock cycle. Bool/U32/U64 signals lower to
// plain bool/uint32/uint64 and lean on Go's native wrapping-add and
// zero-filling-shift operators; only U128 needs the kazert runtime package,
// since Go has no native 128-bit integer.
package simemit

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ar90n/kaze/internal/compiler"
	"github.com/ar90n/kaze/internal/kir"
)

// Emit renders unit as Go source defining a <ModuleName>Sim type. The
// returned string is a complete file, including its package clause and
// imports; pkg names the package it belongs to.
func Emit(unit *compiler.CompiledUnit, pkg string) string {
	var b strings.Builder
	typeName := exported(unit.ModuleName) + "Sim"

	fmt.Fprintf(&b, "// Code generated by kazegen. DO NOT EDIT.\n\npackage %s\n\n", pkg)
	fmt.Fprintf(&b, "import \"github.com/ar90n/kaze/kazert\"\n\n")

	emitRuntimeHelpers(&b)
	emitInputsStruct(&b, unit, typeName)
	emitOutputsStruct(&b, unit, typeName)
	emitSimStruct(&b, unit, typeName)
	emitConstructor(&b, unit, typeName)
	emitStep(&b, unit, typeName)

	return b.String()
}

func emitRuntimeHelpers(b *strings.Builder) {
	b.WriteString(`func iif[T any](cond bool, whenTrue, whenFalse T) T {
	if cond {
		return whenTrue
	}
	return whenFalse
}

func b2u32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

func b2u64(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func b2u128(v bool) kazert.U128 {
	if v {
		return kazert.U128{Lo: 1}
	}
	return kazert.U128{}
}

`)
}

func emitInputsStruct(b *strings.Builder, unit *compiler.CompiledUnit, typeName string) {
	fmt.Fprintf(b, "type %sInputs struct {\n", typeName)
	for _, p := range unit.Ports {
		if p.Direction != compiler.DirInput {
			continue
		}
		fmt.Fprintf(b, "\t%s %s\n", exported(p.Name), goType(p.Type))
	}
	b.WriteString("}\n\n")
}

func emitOutputsStruct(b *strings.Builder, unit *compiler.CompiledUnit, typeName string) {
	fmt.Fprintf(b, "type %sOutputs struct {\n", typeName)
	for _, p := range unit.Ports {
		if p.Direction != compiler.DirOutput {
			continue
		}
		fmt.Fprintf(b, "\t%s %s\n", exported(p.Name), goType(p.Type))
	}
	b.WriteString("}\n\n")
}

func emitSimStruct(b *strings.Builder, unit *compiler.CompiledUnit, typeName string) {
	fmt.Fprintf(b, "type %s struct {\n", typeName)
	for _, r := range unit.Registers {
		fmt.Fprintf(b, "\t%s %s\n", regField(r.ValueName), goType(r.Type))
	}
	for _, m := range unit.Memories {
		for _, rp := range m.ReadPorts {
			fmt.Fprintf(b, "\t%s %s\n", regField(rp.ValueName), goType(kir.FromBitWidth(m.ElementBitWidth)))
		}
		fmt.Fprintf(b, "\t%s []%s\n", memField(m.Name), goType(kir.FromBitWidth(m.ElementBitWidth)))
	}
	b.WriteString("}\n\n")
}

func emitConstructor(b *strings.Builder, unit *compiler.CompiledUnit, typeName string) {
	fmt.Fprintf(b, "func New%s() *%s {\n", typeName, typeName)
	fmt.Fprintf(b, "\ts := &%s{}\n", typeName)
	for _, r := range unit.Registers {
		if r.InitialValue != nil {
			fmt.Fprintf(b, "\ts.%s = %s\n", regField(r.ValueName), constLiteral(*r.InitialValue, r.Type))
		}
	}
	for _, m := range unit.Memories {
		size := uint64(1) << m.AddressBitWidth
		elemT := kir.FromBitWidth(m.ElementBitWidth)
		fmt.Fprintf(b, "\ts.%s = make([]%s, %d)\n", memField(m.Name), goType(elemT), size)
		for i, v := range m.InitialContents {
			fmt.Fprintf(b, "\ts.%s[%d] = %s\n", memField(m.Name), i, constLiteral(v, elemT))
		}
	}
	b.WriteString("\treturn s\n}\n\n")
}

func emitStep(b *strings.Builder, unit *compiler.CompiledUnit, typeName string) {
	fmt.Fprintf(b, "func (s *%s) Step(in %sInputs) %sOutputs {\n", typeName, typeName, typeName)

	// An input no assignment reads must not become a local binding: Go
	// rejects unused variables in generated code just as in hand-written.
	used := referencedNames(unit)
	for _, p := range unit.Ports {
		if p.Direction != compiler.DirInput || !used[p.Name] {
			continue
		}
		fmt.Fprintf(b, "\t%s := in.%s\n", p.Name, exported(p.Name))
	}
	for _, r := range unit.Registers {
		if !used[r.ValueName] {
			continue
		}
		fmt.Fprintf(b, "\t%s := s.%s\n", r.ValueName, regField(r.ValueName))
	}
	for _, m := range unit.Memories {
		for _, rp := range m.ReadPorts {
			fmt.Fprintf(b, "\t%s := s.%s\n", rp.ValueName, regField(rp.ValueName))
		}
	}
	b.WriteString("\n")

	for _, a := range unit.Assignments {
		fmt.Fprintf(b, "\t%s := %s\n", a.TargetName, renderExpr(a.Expr))
	}
	b.WriteString("\n")

	for _, m := range unit.Memories {
		for _, rp := range m.ReadPorts {
			next := rp.ValueName + "_latch_next"
			fmt.Fprintf(b, "\t%s := %s\n", next, rp.ValueName)
			fmt.Fprintf(b, "\tif %s {\n\t\t%s = s.%s[%s]\n\t}\n", rp.EnableName, next, memField(m.Name), rp.AddressName)
			fmt.Fprintf(b, "\ts.%s = %s\n", regField(rp.ValueName), next)
		}
		if m.WritePort != nil {
			wp := m.WritePort
			fmt.Fprintf(b, "\tif %s {\n\t\ts.%s[%s] = %s\n\t}\n", wp.EnableName, memField(m.Name), wp.AddressName, wp.ValueName)
		}
	}
	for _, r := range unit.Registers {
		fmt.Fprintf(b, "\ts.%s = %s\n", regField(r.ValueName), r.NextName)
	}

	fmt.Fprintf(b, "\n\treturn %sOutputs{\n", typeName)
	for _, p := range unit.Ports {
		if p.Direction != compiler.DirOutput {
			continue
		}
		fmt.Fprintf(b, "\t\t%s: %s,\n", exported(p.Name), p.Name)
	}
	b.WriteString("\t}\n}\n")
}

func referencedNames(unit *compiler.CompiledUnit) map[string]bool {
	used := make(map[string]bool)
	var walk func(e *kir.Expr)
	walk = func(e *kir.Expr) {
		if e == nil {
			return
		}
		if e.Op == kir.OpRef {
			used[e.Name] = true
		}
		for _, child := range []*kir.Expr{e.Source, e.Cond, e.Target, e.LHS, e.RHS, e.Arg} {
			walk(child)
		}
	}
	for _, a := range unit.Assignments {
		walk(a.Expr)
	}
	return used
}

func regField(name string) string { return "reg_" + strings.TrimPrefix(name, "__") }
func memField(name string) string { return "mem_" + name }
func exported(name string) string {
	if name == "" {
		return name
	}
	var sb strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		r := []rune(part)
		r[0] = unicode.ToUpper(r[0])
		sb.WriteString(string(r))
	}
	return sb.String()
}

func goType(t kir.ValueType) string {
	switch t {
	case kir.Bool:
		return "bool"
	case kir.U32:
		return "uint32"
	case kir.U64:
		return "uint64"
	case kir.U128, kir.I128:
		return "kazert.U128"
	case kir.I32:
		return "int32"
	case kir.I64:
		return "int64"
	default:
		panic(fmt.Sprintf("simemit: unhandled ValueType %v", t))
	}
}

func constLiteral(v uint64, t kir.ValueType) string {
	switch t {
	case kir.Bool:
		if v != 0 {
			return "true"
		}
		return "false"
	case kir.U32:
		return fmt.Sprintf("uint32(0x%x)", v)
	case kir.U64:
		return fmt.Sprintf("uint64(0x%x)", v)
	case kir.U128:
		return fmt.Sprintf("kazert.U128{Lo: 0x%x}", v)
	default:
		panic(fmt.Sprintf("simemit: unhandled constant ValueType %v", t))
	}
}

func renderExpr(e *kir.Expr) string {
	switch e.Op {
	case kir.OpConstant:
		if e.Type == kir.U128 {
			return fmt.Sprintf("kazert.U128{Hi: 0x%x, Lo: 0x%x}", e.ConstValueHi, e.ConstValue)
		}
		return constLiteral(e.ConstValue, e.Type)

	case kir.OpRef:
		return e.Name

	case kir.OpUnOp:
		switch e.Type {
		case kir.Bool:
			return fmt.Sprintf("(!%s)", renderExpr(e.Source))
		case kir.U128:
			return fmt.Sprintf("(%s).Not()", renderExpr(e.Source))
		default:
			return fmt.Sprintf("(^%s)", renderExpr(e.Source))
		}

	case kir.OpInfixBinOp:
		return renderInfix(e)

	case kir.OpUnaryMemberCall:
		return fmt.Sprintf("(%s).%s(%s)", renderExpr(e.Target), e.Name, renderExpr(e.Arg))

	case kir.OpBinaryFunctionCall:
		return fmt.Sprintf("%s(%s, %s)", e.Name, renderExpr(e.LHS), renderExpr(e.RHS))

	case kir.OpCast:
		return renderCast(e)

	case kir.OpTernary:
		return fmt.Sprintf("iif(%s, %s, %s)", renderExpr(e.Cond), renderExpr(e.LHS), renderExpr(e.RHS))

	default:
		panic(fmt.Sprintf("simemit: unhandled Expr op %v", e.Op))
	}
}

// renderInfix special-cases every operand typed U128 or I128: Go has no
// operators on the kazert.U128 struct, so these always render as a method
// call. I128's InfixShr specifically means "arithmetic right shift" (it is
// only ever produced by SignExtendShifts sign-extending a signed operand),
// so it maps to ShrArithmetic rather than the logical Shr a bare Type
// comparison would suggest.
func renderInfix(e *kir.Expr) string {
	if e.Type == kir.U128 || e.Type == kir.I128 {
		if method, ok := u128MethodFor(e); ok {
			return fmt.Sprintf("(%s).%s(%s)", renderExpr(e.LHS), method, renderExpr(e.RHS))
		}
	}
	if e.LHS.Type == kir.U128 && isComparisonOp(e.InfixOpVal) {
		return fmt.Sprintf("(%s).%s(%s)", renderExpr(e.LHS), comparisonMethod(e.InfixOpVal), renderExpr(e.RHS))
	}
	return fmt.Sprintf("(%s %s %s)", renderExpr(e.LHS), goInfixSymbol(e.InfixOpVal), renderExpr(e.RHS))
}

func u128MethodFor(e *kir.Expr) (string, bool) {
	switch e.InfixOpVal {
	case kir.InfixBitAnd:
		return "And", true
	case kir.InfixBitOr:
		return "Or", true
	case kir.InfixBitXor:
		return "Xor", true
	case kir.InfixAdd:
		return "WrappingAdd", true
	case kir.InfixSub:
		return "WrappingSub", true
	case kir.InfixMul:
		return "WrappingMul", true
	case kir.InfixShl:
		return "Shl", true
	case kir.InfixShr:
		if e.Type == kir.I128 {
			return "ShrArithmetic", true
		}
		return "Shr", true
	default:
		return "", false
	}
}

func isComparisonOp(op kir.InfixOp) bool {
	switch op {
	case kir.InfixEq, kir.InfixNe, kir.InfixLt, kir.InfixLe, kir.InfixGt, kir.InfixGe:
		return true
	}
	return false
}

func comparisonMethod(op kir.InfixOp) string {
	switch op {
	case kir.InfixEq:
		return "Eq"
	case kir.InfixNe:
		return "Ne"
	case kir.InfixLt:
		return "Lt"
	case kir.InfixLe:
		return "Le"
	case kir.InfixGt:
		return "Gt"
	case kir.InfixGe:
		return "Ge"
	default:
		panic("simemit: not a comparison op")
	}
}

func goInfixSymbol(op kir.InfixOp) string {
	switch op {
	case kir.InfixBitAnd:
		return "&"
	case kir.InfixBitOr:
		return "|"
	case kir.InfixBitXor:
		return "^"
	case kir.InfixShl:
		return "<<"
	case kir.InfixShr:
		return ">>"
	case kir.InfixAdd:
		return "+"
	case kir.InfixSub:
		return "-"
	case kir.InfixMul:
		return "*"
	case kir.InfixEq:
		return "=="
	case kir.InfixNe:
		return "!="
	case kir.InfixLt:
		return "<"
	case kir.InfixLe:
		return "<="
	case kir.InfixGt:
		return ">"
	case kir.InfixGe:
		return ">="
	default:
		panic("simemit: unhandled InfixOp")
	}
}

func renderCast(e *kir.Expr) string {
	src := e.Source.Type
	dst := e.Type
	s := renderExpr(e.Source)

	switch {
	case src == kir.Bool && dst == kir.U32:
		return fmt.Sprintf("b2u32(%s)", s)
	case src == kir.Bool && dst == kir.U64:
		return fmt.Sprintf("b2u64(%s)", s)
	case src == kir.Bool && dst == kir.U128:
		return fmt.Sprintf("b2u128(%s)", s)

	case src == kir.U32 && dst == kir.U64:
		return fmt.Sprintf("uint64(%s)", s)
	case src == kir.U64 && dst == kir.U32:
		return fmt.Sprintf("uint32(%s)", s)
	case src == kir.U32 && dst == kir.U128:
		return fmt.Sprintf("kazert.U128FromU32(%s)", s)
	case src == kir.U64 && dst == kir.U128:
		return fmt.Sprintf("kazert.U128FromU64(%s)", s)
	case src == kir.U128 && dst == kir.U32:
		return fmt.Sprintf("(%s).ToU32()", s)
	case src == kir.U128 && dst == kir.U64:
		return fmt.Sprintf("(%s).ToU64()", s)

	case src == kir.U32 && dst == kir.I32:
		return fmt.Sprintf("int32(%s)", s)
	case src == kir.I32 && dst == kir.U32:
		return fmt.Sprintf("uint32(%s)", s)
	case src == kir.U64 && dst == kir.I64:
		return fmt.Sprintf("int64(%s)", s)
	case src == kir.I64 && dst == kir.U64:
		return fmt.Sprintf("uint64(%s)", s)
	case src == kir.U128 && dst == kir.I128:
		return s
	case src == kir.I128 && dst == kir.U128:
		return s

	default:
		panic(fmt.Sprintf("simemit: unhandled cast %s -> %s", src, dst))
	}
}

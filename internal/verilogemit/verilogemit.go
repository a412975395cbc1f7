// Package verilogemit renders a CompiledUnit as synthesizable Verilog.
// Unlike the Go simulator emitter, it never needs a
// U128 runtime shim: Verilog's wire/reg widths already express arbitrary
// bit widths natively, so every OpUnaryMemberCall the signal compiler
// emitted for U128 arithmetic (WrappingAdd, CheckedShl, Eq, ...) collapses
// back to a plain operator here, the same one used for the native-width
// carriers.
//
// Every intermediate wire is declared at its kir.ValueType's full native
// width (32/64/128 bits) rather than the signal's exact logical width,
// since kir.Expr only carries the native carrier type, not the original
// graph bit width; the upper-bit-clean invariant guarantees the padding
// bits are zero, so this never changes behavior, only wire tightness.
package verilogemit

import (
	"fmt"
	"strings"

	"github.com/ar90n/kaze/internal/compiler"
	"github.com/ar90n/kaze/internal/kir"
)

// Emit renders unit as one Verilog module definition.
func Emit(unit *compiler.CompiledUnit) string {
	var b strings.Builder

	emitHeader(&b, unit)
	emitRegDecls(&b, unit)
	emitWireDecls(&b, unit)
	emitMemDecls(&b, unit)
	emitMemoryUpdates(&b, unit)
	emitRegisterUpdates(&b, unit)
	emitAssignments(&b, unit)

	b.WriteString("\nendmodule\n")
	return b.String()
}

func emitHeader(b *strings.Builder, unit *compiler.CompiledUnit) {
	fmt.Fprintf(b, "module %s (\n\tinput wire clk,\n\tinput wire reset_n", unit.ModuleName)
	for _, p := range unit.Ports {
		if p.Direction != compiler.DirInput {
			continue
		}
		fmt.Fprintf(b, ",\n\tinput wire %s %s", wireWidth(p.BitWidth), p.Name)
	}
	for _, p := range unit.Ports {
		if p.Direction != compiler.DirOutput {
			continue
		}
		fmt.Fprintf(b, ",\n\toutput wire %s %s", wireWidth(p.BitWidth), p.Name)
	}
	b.WriteString("\n);\n\n")
}

func emitWireDecls(b *strings.Builder, unit *compiler.CompiledUnit) {
	outputs := make(map[string]bool)
	for _, p := range unit.Ports {
		if p.Direction == compiler.DirOutput {
			outputs[p.Name] = true
		}
	}
	for _, a := range unit.Assignments {
		if outputs[a.TargetName] {
			continue // already an output port; no extra wire needed
		}
		if isMemPortWire(unit, a.TargetName) {
			continue // declared alongside its memory below
		}
		fmt.Fprintf(b, "\twire %s %s;\n", wireWidth(a.Expr.Type.BitWidth()), a.TargetName)
	}
	b.WriteString("\n")
}

func isMemPortWire(unit *compiler.CompiledUnit, name string) bool {
	for _, m := range unit.Memories {
		for _, rp := range m.ReadPorts {
			if rp.AddressName == name || rp.EnableName == name {
				return true
			}
		}
		if m.WritePort != nil {
			wp := m.WritePort
			if wp.AddressName == name || wp.ValueName == name || wp.EnableName == name {
				return true
			}
		}
	}
	return false
}

func emitRegDecls(b *strings.Builder, unit *compiler.CompiledUnit) {
	for _, r := range unit.Registers {
		fmt.Fprintf(b, "\treg %s %s;\n", wireWidth(r.Type.BitWidth()), r.ValueName)
	}
	b.WriteString("\n")
}

func emitMemDecls(b *strings.Builder, unit *compiler.CompiledUnit) {
	for _, m := range unit.Memories {
		depth := uint64(1) << m.AddressBitWidth
		fmt.Fprintf(b, "\treg %s %s [0:%d];\n", wireWidth(m.ElementBitWidth), m.Name, depth-1)
		for _, rp := range m.ReadPorts {
			fmt.Fprintf(b, "\twire %s %s;\n", wireWidth(m.AddressBitWidth), rp.AddressName)
			fmt.Fprintf(b, "\twire %s;\n", rp.EnableName)
			fmt.Fprintf(b, "\treg %s %s;\n", wireWidth(m.ElementBitWidth), rp.ValueName)
		}
		if m.WritePort != nil {
			wp := m.WritePort
			fmt.Fprintf(b, "\twire %s %s;\n", wireWidth(m.AddressBitWidth), wp.AddressName)
			fmt.Fprintf(b, "\twire %s %s;\n", wireWidth(m.ElementBitWidth), wp.ValueName)
			fmt.Fprintf(b, "\twire %s;\n", wp.EnableName)
		}
		if len(m.InitialContents) > 0 {
			b.WriteString("\tinitial begin\n")
			for i, v := range m.InitialContents {
				fmt.Fprintf(b, "\t\t%s[%d] = %d'h%x;\n", m.Name, i, m.ElementBitWidth, v)
			}
			b.WriteString("\tend\n")
		}
	}
	b.WriteString("\n")
}

func emitAssignments(b *strings.Builder, unit *compiler.CompiledUnit) {
	for _, a := range unit.Assignments {
		fmt.Fprintf(b, "\tassign %s = %s;\n", a.TargetName, renderExpr(a.Expr))
	}
	b.WriteString("\n")
}

func emitRegisterUpdates(b *strings.Builder, unit *compiler.CompiledUnit) {
	for _, r := range unit.Registers {
		if r.InitialValue != nil {
			fmt.Fprintf(b, "\talways @(posedge clk, negedge reset_n) begin\n")
			fmt.Fprintf(b, "\t\tif (~reset_n) %s <= %d'h%x;\n", r.ValueName, r.BitWidth, *r.InitialValue)
			fmt.Fprintf(b, "\t\telse %s <= %s;\n", r.ValueName, r.NextName)
			b.WriteString("\tend\n")
		} else {
			fmt.Fprintf(b, "\talways @(posedge clk) begin\n\t\t%s <= %s;\n\tend\n", r.ValueName, r.NextName)
		}
	}
	b.WriteString("\n")
}

func emitMemoryUpdates(b *strings.Builder, unit *compiler.CompiledUnit) {
	for _, m := range unit.Memories {
		for _, rp := range m.ReadPorts {
			fmt.Fprintf(b, "\talways @(posedge clk) begin\n\t\tif (%s) %s <= %s[%s];\n\tend\n", rp.EnableName, rp.ValueName, m.Name, rp.AddressName)
		}
		if m.WritePort != nil {
			wp := m.WritePort
			fmt.Fprintf(b, "\talways @(posedge clk) begin\n\t\tif (%s) %s[%s] <= %s;\n\tend\n", wp.EnableName, m.Name, wp.AddressName, wp.ValueName)
		}
	}
}

func wireWidth(w uint32) string {
	if w == 1 {
		return ""
	}
	return fmt.Sprintf("[%d:0]", w-1)
}

func renderExpr(e *kir.Expr) string {
	switch e.Op {
	case kir.OpConstant:
		w := e.Type.BitWidth()
		if e.Type == kir.U128 {
			return fmt.Sprintf("%d'h%x%016x", w, e.ConstValueHi, e.ConstValue)
		}
		return fmt.Sprintf("%d'h%x", w, e.ConstValue)

	case kir.OpRef:
		return e.Name

	case kir.OpUnOp:
		if e.Type == kir.Bool {
			return fmt.Sprintf("(!%s)", renderExpr(e.Source))
		}
		return fmt.Sprintf("(~%s)", renderExpr(e.Source))

	case kir.OpInfixBinOp:
		return renderInfix(e)

	case kir.OpUnaryMemberCall:
		return renderMemberCall(e)

	case kir.OpBinaryFunctionCall:
		if e.Name == "min" {
			return fmt.Sprintf("((%s < %s) ? %s : %s)", renderExpr(e.LHS), renderExpr(e.RHS), renderExpr(e.LHS), renderExpr(e.RHS))
		}
		return fmt.Sprintf("%s(%s, %s)", e.Name, renderExpr(e.LHS), renderExpr(e.RHS))

	case kir.OpCast:
		// Verilog coerces width automatically at the point of use; casts
		// between native carriers need no explicit conversion.
		return renderExpr(e.Source)

	case kir.OpTernary:
		return fmt.Sprintf("(%s ? %s : %s)", renderExpr(e.Cond), renderExpr(e.LHS), renderExpr(e.RHS))

	default:
		panic(fmt.Sprintf("verilogemit: unhandled Expr op %v", e.Op))
	}
}

// renderInfix renders an InfixBinOp, reaching for Verilog's signed operators
// ($signed(...), >>>) whenever the operand type is one of the transient
// signed siblings (I32/I64/I128) — a plain ">>" or "<" on an (unsigned by
// default) Verilog net would otherwise silently do the wrong thing for a
// negative operand, defeating the sign-extend trick the arithmetic-shift
// and signed-comparison lowerings rely on.
func renderInfix(e *kir.Expr) string {
	lhs, rhs := renderExpr(e.LHS), renderExpr(e.RHS)
	if isSignedNative(e.LHS.Type) {
		switch e.InfixOpVal {
		case kir.InfixShr:
			return fmt.Sprintf("($signed(%s) >>> %s)", lhs, rhs)
		case kir.InfixLt:
			return fmt.Sprintf("($signed(%s) < $signed(%s))", lhs, rhs)
		case kir.InfixLe:
			return fmt.Sprintf("($signed(%s) <= $signed(%s))", lhs, rhs)
		case kir.InfixGt:
			return fmt.Sprintf("($signed(%s) > $signed(%s))", lhs, rhs)
		case kir.InfixGe:
			return fmt.Sprintf("($signed(%s) >= $signed(%s))", lhs, rhs)
		}
	}
	return fmt.Sprintf("(%s %s %s)", lhs, verilogInfixSymbol(e.InfixOpVal), rhs)
}

func isSignedNative(t kir.ValueType) bool {
	return t == kir.I32 || t == kir.I64 || t == kir.I128
}

func renderMemberCall(e *kir.Expr) string {
	target := renderExpr(e.Target)
	arg := renderExpr(e.Arg)
	switch e.Name {
	case "WrappingAdd":
		return fmt.Sprintf("(%s + %s)", target, arg)
	case "WrappingSub":
		return fmt.Sprintf("(%s - %s)", target, arg)
	case "WrappingMul":
		return fmt.Sprintf("(%s * %s)", target, arg)
	case "CheckedShl":
		return fmt.Sprintf("(%s << %s)", target, arg)
	case "CheckedShr":
		return fmt.Sprintf("(%s >> %s)", target, arg)
	case "ShrArithmetic":
		return fmt.Sprintf("($signed(%s) >>> %s)", target, arg)
	case "Not":
		return fmt.Sprintf("(~%s)", target)
	case "Eq":
		return fmt.Sprintf("(%s == %s)", target, arg)
	case "Ne":
		return fmt.Sprintf("(%s != %s)", target, arg)
	case "Lt":
		return fmt.Sprintf("(%s < %s)", target, arg)
	case "Le":
		return fmt.Sprintf("(%s <= %s)", target, arg)
	case "Gt":
		return fmt.Sprintf("(%s > %s)", target, arg)
	case "Ge":
		return fmt.Sprintf("(%s >= %s)", target, arg)
	case "LtS":
		return fmt.Sprintf("($signed(%s) < $signed(%s))", target, arg)
	case "LeS":
		return fmt.Sprintf("($signed(%s) <= $signed(%s))", target, arg)
	case "GtS":
		return fmt.Sprintf("($signed(%s) > $signed(%s))", target, arg)
	case "GeS":
		return fmt.Sprintf("($signed(%s) >= $signed(%s))", target, arg)
	case "Min":
		return fmt.Sprintf("((%s < %s) ? %s : %s)", target, arg, target, arg)
	case "And":
		return fmt.Sprintf("(%s & %s)", target, arg)
	case "Or":
		return fmt.Sprintf("(%s | %s)", target, arg)
	case "Xor":
		return fmt.Sprintf("(%s ^ %s)", target, arg)
	default:
		panic(fmt.Sprintf("verilogemit: unhandled member call %q", e.Name))
	}
}

func verilogInfixSymbol(op kir.InfixOp) string {
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
		panic("verilogemit: unhandled InfixOp")
	}
}

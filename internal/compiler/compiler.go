package compiler

import (
	"fmt"

	"github.com/ar90n/kaze/internal/discovery"
	"github.com/ar90n/kaze/internal/graph"
	"github.com/ar90n/kaze/internal/kerr"
	"github.com/ar90n/kaze/internal/kir"
	"github.com/ar90n/kaze/internal/modctx"
	"github.com/ar90n/kaze/kazert"
)

// sigKey memoizes a compiled Expr by (instance path, signal identity) —
// the same signal reached via two different instance paths must compile to
// two distinct Exprs, but the same (context, signal) pair must never be
// lowered twice.
type sigKey struct {
	context *modctx.Context
	signal  *graph.Signal
}

type state struct {
	arena   *modctx.Arena
	table   *discovery.Table
	builder *kir.Builder
	cache   map[sigKey]*kir.Expr
}

// Compile lowers root and every module reachable from it into one
// CompiledUnit. It panics with a *kerr error when it notices the graph
// violates a contract the external validator is assumed to have already
// checked.
func Compile(root *graph.Module) *CompiledUnit {
	arena := modctx.NewArena()
	rootCtx := arena.Root()
	table := discovery.NewTable(arena)

	for _, name := range root.OutputOrder {
		table.Walk(root.Outputs[name], rootCtx, root.Name)
	}

	st := &state{arena: arena, table: table, builder: kir.NewBuilder(), cache: make(map[sigKey]*kir.Expr)}

	for _, name := range root.OutputOrder {
		expr := st.compile(root.Outputs[name], rootCtx)
		st.builder.Define(name, expr)
	}

	for _, key := range table.RegOrder() {
		entry := table.Regs[key]
		next := st.compile(entry.Data.Next, key.Context)
		st.builder.Define(entry.NextName, next)
	}

	for _, key := range table.MemOrder() {
		entry := table.Mems[key]
		for i, p := range entry.Mem.ReadPorts {
			addr := st.compile(p.Address, key.Context)
			st.builder.Define(entry.ReadAddressNames[i], addr)
			enable := st.compile(p.Enable, key.Context)
			st.builder.Define(entry.ReadEnableNames[i], enable)
		}
		if entry.Mem.WritePort != nil {
			wp := entry.Mem.WritePort
			st.builder.Define(entry.WriteAddressName, st.compile(wp.Address, key.Context))
			st.builder.Define(entry.WriteValueName, st.compile(wp.Value, key.Context))
			st.builder.Define(entry.WriteEnableName, st.compile(wp.Enable, key.Context))
		}
	}

	return &CompiledUnit{
		ModuleName:  root.Name,
		Ports:       portsOf(root),
		Registers:   compiledRegisters(table),
		Memories:    compiledMemories(table),
		Assignments: st.builder.Assignments,
		Instances:   instanceDecls(arena, root),
	}
}

func compiledRegisters(table *discovery.Table) []CompiledRegister {
	var out []CompiledRegister
	for _, key := range table.RegOrder() {
		e := table.Regs[key]
		out = append(out, CompiledRegister{
			ValueName:    e.ValueName,
			NextName:     e.NextName,
			Type:         kir.FromBitWidth(e.Data.BitWidth),
			BitWidth:     e.Data.BitWidth,
			InitialValue: e.Data.InitialValue,
		})
	}
	return out
}

func compiledMemories(table *discovery.Table) []CompiledMemory {
	var out []CompiledMemory
	for _, key := range table.MemOrder() {
		e := table.Mems[key]
		cm := CompiledMemory{
			// Suffixed like the port wires so the same Mem reached along two
			// instance paths gets two distinct backing declarations.
			Name:            fmt.Sprintf("%s_%s", e.Mem.Name, e.InstanceSuffix),
			AddressBitWidth: e.Mem.AddressBitWidth,
			ElementBitWidth: e.Mem.ElementBitWidth,
			InitialContents: e.Mem.InitialContents,
		}
		for i := range e.Mem.ReadPorts {
			cm.ReadPorts = append(cm.ReadPorts, CompiledReadPort{
				AddressName: e.ReadAddressNames[i],
				EnableName:  e.ReadEnableNames[i],
				ValueName:   e.ReadValueNames[i],
			})
		}
		if e.Mem.WritePort != nil {
			cm.WritePort = &CompiledWritePort{
				AddressName: e.WriteAddressName,
				ValueName:   e.WriteValueName,
				EnableName:  e.WriteEnableName,
			}
		}
		out = append(out, cm)
	}
	return out
}

// instanceDecls walks the instance tree declared under root and records
// every instantiation path in it, whether or not any output reaches it,
// purely as annotation metadata for the emitters.
func instanceDecls(arena *modctx.Arena, root *graph.Module) []InstanceDecl {
	var out []InstanceDecl
	var walk func(m *graph.Module, path string)
	walk = func(m *graph.Module, path string) {
		for _, inst := range m.Instances {
			p := path + "." + inst.Name
			out = append(out, InstanceDecl{Path: p, ModuleName: inst.InstantiatedModule.Name})
			walk(inst.InstantiatedModule, p)
		}
	}
	walk(root, root.Name)
	return out
}

func (s *state) compile(signal *graph.Signal, ctx *modctx.Context) *kir.Expr {
	key := sigKey{context: ctx, signal: signal}
	if e, ok := s.cache[key]; ok {
		return e
	}
	e := s.compileUncached(signal, ctx)
	s.cache[key] = e
	return e
}

func (s *state) compileUncached(signal *graph.Signal, ctx *modctx.Context) *kir.Expr {
	t := kir.FromBitWidth(signal.BitWidth)
	b := s.builder

	switch signal.Kind {
	case graph.KindLit:
		return s.compileLit(signal, t)

	case graph.KindInput:
		if ctx.IsRoot() {
			// Inbound values come from the caller and may carry garbage above
			// the port's logical width; mask here so the upper-bit-clean
			// invariant holds for everything downstream.
			return b.Mask(kir.Ref(signal.Name, kir.RefMember, t), signal.BitWidth, t)
		}
		instance, parent := ctx.InstanceAndParent()
		driver, ok := instance.DrivenInputs[signal.Name]
		if !ok {
			panic(&kerr.UndrivenInstanceInputError{
				Module:       instance.ParentModule.Name,
				InstanceName: instance.Name,
				Input:        signal.Name,
			})
		}
		return s.compile(driver, parent)

	case graph.KindReg:
		key := discovery.RegKey{Context: ctx, Signal: signal}
		entry, ok := s.table.Regs[key]
		if !ok {
			panic(&kerr.InvariantViolation{Detail: "register read before discovery: " + signal.Reg.Name})
		}
		return kir.Ref(entry.ValueName, kir.RefMember, t)

	case graph.KindUnOp:
		source := s.compile(signal.Source, ctx)
		if t == kir.Bool {
			return b.UnOp(kir.UnOpNot, source, kir.Bool)
		}
		raw := b.UnOp(kir.UnOpNot, source, t)
		return b.Mask(raw, signal.BitWidth, t)

	case graph.KindSimpleBinOp:
		lhs := s.compile(signal.LHS, ctx)
		rhs := s.compile(signal.RHS, ctx)
		return b.InfixBinOp(simpleInfixOp(signal.SimpleOpVal), lhs, rhs, t)

	case graph.KindAdditiveBinOp:
		return s.compileAdditive(signal, ctx, t)

	case graph.KindMulBinOp:
		return s.compileMul(signal, ctx, t)

	case graph.KindComparisonBinOp:
		return s.compileComparison(signal, ctx)

	case graph.KindShiftBinOp:
		return s.compileShift(signal, ctx, t)

	case graph.KindBits:
		source := s.compile(signal.Source, ctx)
		sourceT := kir.FromBitWidth(signal.Source.BitWidth)
		shifted := b.ShiftRight(source, signal.RangeLow)
		masked := b.Mask(shifted, signal.RangeHigh-signal.RangeLow+1, sourceT)
		return b.Cast(masked, sourceT, t)

	case graph.KindRepeat:
		return s.compileRepeat(signal, ctx, t)

	case graph.KindConcat:
		lhs := s.compile(signal.LHS, ctx)
		rhs := s.compile(signal.RHS, ctx)
		lhsT := kir.FromBitWidth(signal.LHS.BitWidth)
		rhsT := kir.FromBitWidth(signal.RHS.BitWidth)
		lhsWide := b.Cast(lhs, lhsT, t)
		rhsWide := b.Cast(rhs, rhsT, t)
		shiftedLHS := b.ShiftLeft(lhsWide, signal.RHS.BitWidth)
		return b.InfixBinOp(kir.InfixBitOr, shiftedLHS, rhsWide, t)

	case graph.KindMux:
		cond := s.compile(signal.Cond, ctx)
		whenTrue := s.compile(signal.WhenTrue, ctx)
		whenFalse := s.compile(signal.WhenFalse, ctx)
		return b.Ternary(cond, whenTrue, whenFalse, t)

	case graph.KindInstanceOutput:
		out, ok := signal.Instance.InstantiatedModule.Outputs[signal.OutputName]
		if !ok {
			panic(&kerr.InvariantViolation{Detail: fmt.Sprintf("instance of %q has no output %q", signal.Instance.InstantiatedModule.Name, signal.OutputName)})
		}
		child := s.arena.Child(ctx, signal.Instance)
		return s.compile(out, child)

	case graph.KindMemReadPort:
		memKey := discovery.MemKey{Context: ctx, Mem: signal.MemRef}
		entry, ok := s.table.Mems[memKey]
		if !ok {
			panic(&kerr.InvariantViolation{Detail: "memory read before discovery: " + signal.MemRef.Name})
		}
		return kir.Ref(entry.ReadValueNames[signal.PortIndex], kir.RefMember, t)

	default:
		panic(&kerr.InvariantViolation{Detail: fmt.Sprintf("unhandled signal kind %d", signal.Kind)})
	}
}

func (s *state) compileLit(signal *graph.Signal, t kir.ValueType) *kir.Expr {
	if t == kir.U128 {
		v := kazert.U128{Hi: signal.LitValueHi, Lo: signal.LitValue}.Mask(signal.BitWidth)
		return kir.ConstantU128(v)
	}
	mask := uint64(1)<<signal.BitWidth - 1
	if signal.BitWidth >= 64 {
		mask = ^uint64(0)
	}
	return kir.Constant(signal.LitValue&mask, t)
}

func simpleInfixOp(op graph.SimpleBinOp) kir.InfixOp {
	switch op {
	case graph.BitAnd:
		return kir.InfixBitAnd
	case graph.BitOr:
		return kir.InfixBitOr
	case graph.BitXor:
		return kir.InfixBitXor
	default:
		panic(&kerr.InvariantViolation{Detail: "unhandled SimpleBinOp"})
	}
}

func (s *state) compileAdditive(signal *graph.Signal, ctx *modctx.Context, t kir.ValueType) *kir.Expr {
	b := s.builder
	lhs := s.compile(signal.LHS, ctx)
	rhs := s.compile(signal.RHS, ctx)

	native := t
	if t == kir.Bool {
		native = kir.U32
	}
	lhsN := b.Cast(lhs, t, native)
	rhsN := b.Cast(rhs, t, native)

	var raw *kir.Expr
	if native == kir.U128 {
		method := "WrappingAdd"
		if signal.AdditiveOpVal == graph.Sub {
			method = "WrappingSub"
		}
		raw = b.UnaryMemberCall(lhsN, method, rhsN, kir.U128)
	} else {
		op := kir.InfixAdd
		if signal.AdditiveOpVal == graph.Sub {
			op = kir.InfixSub
		}
		raw = b.InfixBinOp(op, lhsN, rhsN, native)
	}
	masked := b.Mask(raw, signal.BitWidth, native)
	return b.Cast(masked, native, t)
}

// compileMul lowers a widening multiply. The result width is the sum of the
// operand widths, so the unsigned product can never exceed the result's
// native carrier; the signed variant sign-extends each operand from its own
// logical width first, and relies on the low bits of a two's-complement
// product being independent of signedness.
func (s *state) compileMul(signal *graph.Signal, ctx *modctx.Context, t kir.ValueType) *kir.Expr {
	b := s.builder
	lhs := s.compile(signal.LHS, ctx)
	rhs := s.compile(signal.RHS, ctx)
	lhsT := kir.FromBitWidth(signal.LHS.BitWidth)
	rhsT := kir.FromBitWidth(signal.RHS.BitWidth)

	if signal.MulOpVal == graph.MulSigned {
		signedT := t.ToSigned()
		lhsS := b.SignExtendShifts(b.Cast(b.Cast(lhs, lhsT, t), t, signedT), signal.LHS.BitWidth, signedT)
		rhsS := b.SignExtendShifts(b.Cast(b.Cast(rhs, rhsT, t), t, signedT), signal.RHS.BitWidth, signedT)
		var raw *kir.Expr
		if signedT == kir.I128 {
			raw = b.UnaryMemberCall(lhsS, "WrappingMul", rhsS, kir.I128)
		} else {
			raw = b.InfixBinOp(kir.InfixMul, lhsS, rhsS, signedT)
		}
		back := b.Cast(raw, signedT, t)
		return b.Mask(back, signal.BitWidth, t)
	}

	lhsW := b.Cast(lhs, lhsT, t)
	rhsW := b.Cast(rhs, rhsT, t)
	var raw *kir.Expr
	if t == kir.U128 {
		raw = b.UnaryMemberCall(lhsW, "WrappingMul", rhsW, kir.U128)
	} else {
		raw = b.InfixBinOp(kir.InfixMul, lhsW, rhsW, t)
	}
	return b.Mask(raw, signal.BitWidth, t)
}

func comparisonMethodName(op graph.ComparisonBinOp) string {
	switch op {
	case graph.Eq:
		return "Eq"
	case graph.Ne:
		return "Ne"
	case graph.Lt, graph.LtS:
		return "Lt"
	case graph.Le, graph.LeS:
		return "Le"
	case graph.Gt, graph.GtS:
		return "Gt"
	case graph.Ge, graph.GeS:
		return "Ge"
	default:
		panic(&kerr.InvariantViolation{Detail: "unhandled ComparisonBinOp"})
	}
}

func signedComparisonMethodName(op graph.ComparisonBinOp) string {
	switch op {
	case graph.LtS:
		return "LtS"
	case graph.LeS:
		return "LeS"
	case graph.GtS:
		return "GtS"
	case graph.GeS:
		return "GeS"
	default:
		panic(&kerr.InvariantViolation{Detail: "unhandled signed ComparisonBinOp"})
	}
}

func comparisonInfixOp(op graph.ComparisonBinOp) kir.InfixOp {
	switch op {
	case graph.Eq:
		return kir.InfixEq
	case graph.Ne:
		return kir.InfixNe
	case graph.Lt, graph.LtS:
		return kir.InfixLt
	case graph.Le, graph.LeS:
		return kir.InfixLe
	case graph.Gt, graph.GtS:
		return kir.InfixGt
	case graph.Ge, graph.GeS:
		return kir.InfixGe
	default:
		panic(&kerr.InvariantViolation{Detail: "unhandled ComparisonBinOp"})
	}
}

func (s *state) compileComparison(signal *graph.Signal, ctx *modctx.Context) *kir.Expr {
	b := s.builder
	lhs := s.compile(signal.LHS, ctx)
	rhs := s.compile(signal.RHS, ctx)
	sourceT := kir.FromBitWidth(signal.LHS.BitWidth)

	// Ordered and signed comparisons have no native form on a 1-bit boolean
	// carrier; widen both sides to U32 first. Eq/Ne stay on Bool directly.
	op := signal.ComparisonOpVal
	if sourceT == kir.Bool && op != graph.Eq && op != graph.Ne {
		lhs = b.Cast(lhs, kir.Bool, kir.U32)
		rhs = b.Cast(rhs, kir.Bool, kir.U32)
		sourceT = kir.U32
	}

	if !signal.ComparisonOpVal.IsSigned() {
		if sourceT == kir.U128 {
			return b.UnaryMemberCall(lhs, comparisonMethodName(signal.ComparisonOpVal), rhs, kir.Bool)
		}
		return b.InfixBinOp(comparisonInfixOp(signal.ComparisonOpVal), lhs, rhs, kir.Bool)
	}

	signedT := sourceT.ToSigned()
	lhsSigned := b.SignExtendShifts(b.Cast(lhs, sourceT, signedT), signal.LHS.BitWidth, signedT)
	rhsSigned := b.SignExtendShifts(b.Cast(rhs, sourceT, signedT), signal.RHS.BitWidth, signedT)
	if signedT == kir.I128 {
		return b.UnaryMemberCall(lhsSigned, signedComparisonMethodName(signal.ComparisonOpVal), rhsSigned, kir.Bool)
	}
	return b.InfixBinOp(comparisonInfixOp(signal.ComparisonOpVal), lhsSigned, rhsSigned, kir.Bool)
}

func (s *state) compileShift(signal *graph.Signal, ctx *modctx.Context, t kir.ValueType) *kir.Expr {
	b := s.builder
	source := s.compile(signal.LHS, ctx)
	amount := s.compile(signal.RHS, ctx)
	amountT := kir.FromBitWidth(signal.RHS.BitWidth)
	clampedAmount := clampShiftAmount(b, amount, amountT)
	amount32 := b.Cast(clampedAmount, amountT, kir.U32)

	// There is no native shift on a 1-bit boolean carrier; widen to U32 and
	// narrow back after the shift.
	native := t
	if t == kir.Bool {
		native = kir.U32
		source = b.Cast(source, t, native)
	}

	switch signal.ShiftOpVal {
	case graph.Shl:
		var raw *kir.Expr
		if native == kir.U128 {
			raw = b.UnaryMemberCall(source, "CheckedShl", amount32, kir.U128)
		} else {
			raw = b.InfixBinOp(kir.InfixShl, source, amount32, native)
		}
		return b.Cast(b.Mask(raw, signal.BitWidth, native), native, t)

	case graph.Shr:
		var raw *kir.Expr
		if native == kir.U128 {
			raw = b.UnaryMemberCall(source, "CheckedShr", amount32, kir.U128)
		} else {
			raw = b.InfixBinOp(kir.InfixShr, source, amount32, native)
		}
		return b.Cast(raw, native, t)

	case graph.ShrA:
		signedT := native.ToSigned()
		extended := b.SignExtendShifts(b.Cast(source, native, signedT), signal.BitWidth, signedT)
		var shifted *kir.Expr
		if signedT == kir.I128 {
			shifted = b.UnaryMemberCall(extended, "ShrArithmetic", amount32, kir.I128)
		} else {
			shifted = b.InfixBinOp(kir.InfixShr, extended, amount32, signedT)
		}
		back := b.Cast(shifted, signedT, native)
		return b.Cast(b.Mask(back, signal.BitWidth, native), native, t)

	default:
		panic(&kerr.InvariantViolation{Detail: "unhandled ShiftBinOp"})
	}
}

// clampShiftAmount narrows an arbitrary-width shift amount to a U32 shift
// count. Amounts wider than 32 bits are clamped (not truncated) to U32's
// maximum first, so an oversized amount still lands in the zero-fill (or
// sign-fill) path instead of aliasing a small count.
func clampShiftAmount(b *kir.Builder, amount *kir.Expr, amountT kir.ValueType) *kir.Expr {
	switch amountT {
	case kir.Bool, kir.U32:
		return amount
	case kir.U64:
		return b.BinaryFunctionCall("min", amount, kir.Constant(0xffff_ffff, kir.U64), kir.U64)
	case kir.U128:
		return b.UnaryMemberCall(amount, "Min", kir.ConstantU128(kazert.U128{Lo: 0xffff_ffff}), kir.U128)
	default:
		panic(&kerr.InvariantViolation{Detail: "shift amount has no unsigned native carrier"})
	}
}

func (s *state) compileRepeat(signal *graph.Signal, ctx *modctx.Context, t kir.ValueType) *kir.Expr {
	b := s.builder
	source := s.compile(signal.Source, ctx)
	sourceT := kir.FromBitWidth(signal.Source.BitWidth)
	sourceWidth := signal.Source.BitWidth

	acc := b.Cast(source, sourceT, t)
	for i := uint32(1); i < signal.Count; i++ {
		widened := b.Cast(source, sourceT, t)
		shifted := b.ShiftLeft(widened, sourceWidth*i)
		acc = b.InfixBinOp(kir.InfixBitOr, acc, shifted, t)
	}
	return acc
}

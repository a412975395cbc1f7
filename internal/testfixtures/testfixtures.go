// Package testfixtures builds the worked-example graph.Module values the
// compiler and emitter tests exercise. There is no fluent builder DSL in
// this library, so every fixture here is assembled directly from the
// internal/graph constructors.
package testfixtures

import (
	"fmt"

	"github.com/ar90n/kaze/internal/graph"
)

// RegTestModule has one input driving one register's next value, and one
// output reading the register's current value — the minimal module that
// exercises register discovery and the value/next storage split.
func RegTestModule() *graph.Module {
	m := graph.NewModule("reg_test_module")
	in := m.AddInput("i", 32)
	data := &graph.RegisterData{Name: "r", BitWidth: 32}
	reg := m.AddRegister(data)
	data.Next = in
	m.AddOutput("o", reg)
	return m
}

// TwoRegisterTestModule has two 32-bit registers fed by the same input, r1
// reset to zero and r2 with no reset value, exposed through two outputs so
// discovery must assign two distinct storage pairs for registers that share
// both width and driver.
func TwoRegisterTestModule() *graph.Module {
	m := graph.NewModule("two_register_test_module")
	in := m.AddInput("i", 32)

	initial := uint64(0)
	data1 := &graph.RegisterData{Name: "r1", BitWidth: 32, InitialValue: &initial}
	reg1 := m.AddRegister(data1)
	data1.Next = in

	data2 := &graph.RegisterData{Name: "r2", BitWidth: 32}
	reg2 := m.AddRegister(data2)
	data2.Next = in

	m.AddOutput("o1", reg1)
	m.AddOutput("o2", reg2)
	return m
}

// SimpleRegDelay cascades three 100-bit registers, all reset to zero: a
// value fed to i appears on o three cycles later. Exercises the reset-aware
// register update block at the U128 carrier width.
func SimpleRegDelay() *graph.Module {
	m := graph.NewModule("simple_reg_delay")
	in := m.AddInput("i", 100)

	next := in
	var reg *graph.Signal
	for _, name := range []string{"r0", "r1", "r2"} {
		initial := uint64(0)
		data := &graph.RegisterData{Name: name, BitWidth: 100, InitialValue: &initial}
		reg = m.AddRegister(data)
		data.Next = next
		next = reg
	}
	m.AddOutput("o", reg)
	return m
}

// CombChildModule is a tiny combinational module with two inputs and one
// output, used as the child of InstantiationTestModuleComb.
func CombChildModule() *graph.Module {
	m := graph.NewModule("comb_child_module")
	a := m.AddInput("a", 16)
	b := m.AddInput("b", 16)
	m.AddOutput("sum", graph.NewAdditiveBinOp(graph.Add, a, b))
	return m
}

// InstantiationTestModuleComb instantiates CombChildModule twice along
// different instance paths feeding the same inputs through a shared-in
// adder, exercising the instance-path-distinct memoization the ModuleContext
// arena exists for.
func InstantiationTestModuleComb() *graph.Module {
	child := CombChildModule()
	top := graph.NewModule("instantiation_test_module_comb")
	x := top.AddInput("x", 16)
	y := top.AddInput("y", 16)

	inst1 := graph.NewInstance("child1", top, child)
	inst1.Drive("a", x)
	inst1.Drive("b", y)
	top.AddInstance(inst1)

	inst2 := graph.NewInstance("child2", top, child)
	inst2.Drive("a", y)
	inst2.Drive("b", x)
	top.AddInstance(inst2)

	out1 := graph.InstanceOutput(inst1, "sum")
	out2 := graph.InstanceOutput(inst2, "sum")
	top.AddOutput("total", graph.NewAdditiveBinOp(graph.Add, out1, out2))
	return top
}

// MemTestModule1 declares a single-read-port, single-write-port memory with
// initial contents, its address/enable/value wires all driven directly by
// module inputs — exercising memory discovery and the read-port value/next
// split (see internal/graph/signal.go). Reading address 2 after reset must
// produce 0xabadcafe on the following cycle.
func MemTestModule1() *graph.Module {
	m := graph.NewModule("mem_test_module1")
	readAddr := m.AddInput("read_addr", 2)
	readEnable := m.AddInput("read_enable", 1)
	writeAddr := m.AddInput("write_addr", 2)
	writeValue := m.AddInput("write_value", 32)
	writeEnable := m.AddInput("write_enable", 1)

	mem := graph.NewMem("m", 2, 32)
	mem.InitialContents = []uint64{0xfadebabe, 0xdeadbeef, 0xabadcafe, 0xabad1dea}
	value := mem.ReadPort(readAddr, readEnable)
	mem.SetWritePort(writeAddr, writeValue, writeEnable)
	m.AddMem(mem)

	m.AddOutput("read_value", value)
	return m
}

// MuxTestModule exercises the 2-way multiplexer.
func MuxTestModule() *graph.Module {
	m := graph.NewModule("mux_test_module")
	cond := m.AddInput("cond", 1)
	whenTrue := m.AddInput("when_true", 32)
	whenFalse := m.AddInput("when_false", 32)
	m.AddOutput("o", graph.Mux(cond, whenTrue, whenFalse))
	return m
}

// additiveModule builds a module with two same-width inputs combined by op.
func additiveModule(name string, op graph.AdditiveBinOp, bitWidth uint32) *graph.Module {
	m := graph.NewModule(name)
	a := m.AddInput("a", bitWidth)
	b := m.AddInput("b", bitWidth)
	m.AddOutput("o", graph.NewAdditiveBinOp(op, a, b))
	return m
}

// AddTestModule exercises modular addition at a width narrower than any
// native carrier's full width, so the post-add Mask is load-bearing.
func AddTestModule() *graph.Module { return additiveModule("add_test_module", graph.Add, 10) }

// SubTestModule exercises modular subtraction (wraps on underflow).
func SubTestModule() *graph.Module { return additiveModule("sub_test_module", graph.Sub, 10) }

// AddTestModuleWide exercises the U128 WrappingAdd path.
func AddTestModuleWide() *graph.Module { return additiveModule("add_test_module_wide", graph.Add, 100) }

// mulModule builds a module with one widening-multiply output per operand
// width pair, covering every native-carrier crossing a product can make:
// bool*bool, mixed narrow widths, a bool operand against each carrier, and
// full-width products landing exactly on 64 and 128 bits.
func mulModule(name string, op graph.MulBinOp) *graph.Module {
	m := graph.NewModule(name)
	pairs := []struct{ lhsW, rhsW uint32 }{
		{1, 1}, {3, 4}, {32, 1}, {32, 32}, {64, 1}, {64, 64}, {127, 1},
	}
	for k, p := range pairs {
		lhs := m.AddInput(fmt.Sprintf("i%d", 2*k+1), p.lhsW)
		rhs := m.AddInput(fmt.Sprintf("i%d", 2*k+2), p.rhsW)
		m.AddOutput(fmt.Sprintf("o%d", k+1), graph.NewMulBinOp(op, lhs, rhs))
	}
	return m
}

// MulTestModule exercises the unsigned widening multiply.
func MulTestModule() *graph.Module { return mulModule("mul_test_module", graph.Mul) }

// MulSignedTestModule exercises the two's-complement widening multiply.
func MulSignedTestModule() *graph.Module {
	return mulModule("mul_signed_test_module", graph.MulSigned)
}

func shiftModule(name string, op graph.ShiftBinOp, bitWidth, amountWidth uint32) *graph.Module {
	m := graph.NewModule(name)
	a := m.AddInput("a", bitWidth)
	amount := m.AddInput("amount", amountWidth)
	m.AddOutput("o", graph.NewShiftBinOp(op, a, amount))
	return m
}

// ShlTestModule exercises left shift, including the out-of-range (shift
// amount >= bit width) zero-fill case.
func ShlTestModule() *graph.Module { return shiftModule("shl_test_module", graph.Shl, 10, 8) }

// ShrTestModule exercises logical right shift.
func ShrTestModule() *graph.Module { return shiftModule("shr_test_module", graph.Shr, 10, 8) }

// ShrArithmeticTestModule exercises the sign-propagating right shift.
func ShrArithmeticTestModule() *graph.Module {
	return shiftModule("shr_arithmetic_test_module", graph.ShrA, 10, 8)
}

// ShrArithmeticTestModuleWide is ShrArithmeticTestModule's U128 sibling,
// exercising kazert.U128.ShrArithmetic directly.
func ShrArithmeticTestModuleWide() *graph.Module {
	return shiftModule("shr_arithmetic_test_module_wide", graph.ShrA, 100, 8)
}

func comparisonModule(name string, op graph.ComparisonBinOp, bitWidth uint32) *graph.Module {
	m := graph.NewModule(name)
	a := m.AddInput("a", bitWidth)
	b := m.AddInput("b", bitWidth)
	m.AddOutput("o", graph.NewComparisonBinOp(op, a, b))
	return m
}

// EqTestModule, NeTestModule, ... cover every comparison operator's lowering.
func EqTestModule() *graph.Module { return comparisonModule("eq_test_module", graph.Eq, 10) }
func NeTestModule() *graph.Module { return comparisonModule("ne_test_module", graph.Ne, 10) }
func LtTestModule() *graph.Module { return comparisonModule("lt_test_module", graph.Lt, 10) }
func LeTestModule() *graph.Module { return comparisonModule("le_test_module", graph.Le, 10) }
func GtTestModule() *graph.Module { return comparisonModule("gt_test_module", graph.Gt, 10) }
func GeTestModule() *graph.Module { return comparisonModule("ge_test_module", graph.Ge, 10) }

// LtSTestModule, ... cover the signed comparisons, which need the
// sign-extend-then-compare lowering.
func LtSTestModule() *graph.Module { return comparisonModule("lt_s_test_module", graph.LtS, 10) }
func LeSTestModule() *graph.Module { return comparisonModule("le_s_test_module", graph.LeS, 10) }
func GtSTestModule() *graph.Module { return comparisonModule("gt_s_test_module", graph.GtS, 10) }
func GeSTestModule() *graph.Module { return comparisonModule("ge_s_test_module", graph.GeS, 10) }

// LtSTestModuleWide is LtSTestModule's U128 sibling, exercising the I128
// signed-comparison path (kazert.U128.LtS).
func LtSTestModuleWide() *graph.Module { return comparisonModule("lt_s_test_module_wide", graph.LtS, 100) }

// BitsTestModule1 exercises a mid-word slice extraction.
func BitsTestModule1() *graph.Module {
	m := graph.NewModule("bits_test_module1")
	in := m.AddInput("i", 32)
	m.AddOutput("o", graph.Bits(in, 23, 8))
	return m
}

// RepeatTestModule exercises signal replication.
func RepeatTestModule() *graph.Module {
	m := graph.NewModule("repeat_test_module")
	in := m.AddInput("i", 8)
	m.AddOutput("o", graph.Repeat(in, 4))
	return m
}

// ConcatTestModule exercises signal concatenation.
func ConcatTestModule() *graph.Module {
	m := graph.NewModule("concat_test_module")
	hi := m.AddInput("hi", 8)
	lo := m.AddInput("lo", 24)
	m.AddOutput("o", graph.Concat(hi, lo))
	return m
}

package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ar90n/kaze/internal/compiler"
	"github.com/ar90n/kaze/internal/kir"
	"github.com/ar90n/kaze/internal/testfixtures"
)

func TestCompilePortsMatchModule(t *testing.T) {
	unit := compiler.Compile(testfixtures.AddTestModule())

	var inputs, outputs []string
	for _, p := range unit.Ports {
		if p.Direction == compiler.DirInput {
			inputs = append(inputs, p.Name)
		} else {
			outputs = append(outputs, p.Name)
		}
	}
	assert.ElementsMatch(t, []string{"a", "b"}, inputs)
	assert.ElementsMatch(t, []string{"o"}, outputs)
}

func TestCompileAddProducesMaskedAssignment(t *testing.T) {
	unit := compiler.Compile(testfixtures.AddTestModule())
	require.NotEmpty(t, unit.Assignments)

	last := unit.Assignments[len(unit.Assignments)-1]
	assert.Equal(t, "o", last.TargetName)

	// o is defined from the temp that masks the sum back to 10 bits.
	masked := unit.Assignments[len(unit.Assignments)-2]
	assert.Equal(t, masked.TargetName, last.Expr.Name)
	assert.Equal(t, kir.OpInfixBinOp, masked.Expr.Op)
	assert.Equal(t, kir.InfixBitAnd, masked.Expr.InfixOpVal)
	assert.Equal(t, uint64(0x3ff), masked.Expr.RHS.ConstValue)
}

func TestCompileRegDelayDiscoversAllThreeRegisters(t *testing.T) {
	unit := compiler.Compile(testfixtures.SimpleRegDelay())
	require.Len(t, unit.Registers, 3)
	for _, reg := range unit.Registers {
		assert.Equal(t, kir.U128, reg.Type)
		require.NotNil(t, reg.InitialValue)
		assert.Equal(t, uint64(0), *reg.InitialValue)
	}
}

func TestCompileTwoRegistersSharingADriverGetDistinctStorage(t *testing.T) {
	unit := compiler.Compile(testfixtures.TwoRegisterTestModule())
	require.Len(t, unit.Registers, 2)

	byValueName := make(map[string]compiler.CompiledRegister)
	for _, r := range unit.Registers {
		byValueName[r.ValueName] = r
	}
	require.Len(t, byValueName, 2, "both registers must get distinct storage names")

	var withInitial, withoutInitial int
	for _, r := range unit.Registers {
		if r.InitialValue != nil {
			withInitial++
			assert.Equal(t, uint64(0), *r.InitialValue)
		} else {
			withoutInitial++
		}
	}
	assert.Equal(t, 1, withInitial)
	assert.Equal(t, 1, withoutInitial)
}

func TestCompileInstantiationInlinesBothPaths(t *testing.T) {
	unit := compiler.Compile(testfixtures.InstantiationTestModuleComb())
	// Each instance's adder lowers to its own assignment; inlining under two
	// distinct instance paths must not collapse them into one.
	assert.GreaterOrEqual(t, len(unit.Assignments), 2)
}

func TestCompileMemoryDiscoversPorts(t *testing.T) {
	unit := compiler.Compile(testfixtures.MemTestModule1())
	require.Len(t, unit.Memories, 1)
	mem := unit.Memories[0]
	require.Len(t, mem.ReadPorts, 1)
	require.NotNil(t, mem.WritePort)
}

func TestCompileShrArithmeticWide(t *testing.T) {
	unit := compiler.Compile(testfixtures.ShrArithmeticTestModuleWide())
	require.NotEmpty(t, unit.Assignments)
	found := false
	for _, a := range unit.Assignments {
		if containsMemberCall(a.Expr, "ShrArithmetic") {
			found = true
		}
	}
	assert.True(t, found, "expected a ShrArithmetic member call somewhere in the lowering")
}

func containsMemberCall(e *kir.Expr, name string) bool {
	if e == nil {
		return false
	}
	if e.Op == kir.OpUnaryMemberCall && e.Name == name {
		return true
	}
	for _, child := range []*kir.Expr{e.Source, e.Cond, e.Target, e.LHS, e.RHS, e.Arg} {
		if containsMemberCall(child, name) {
			return true
		}
	}
	return false
}

package simemit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ar90n/kaze/internal/compiler"
	"github.com/ar90n/kaze/internal/simemit"
	"github.com/ar90n/kaze/internal/testfixtures"
)

func TestEmitRegTestModuleShape(t *testing.T) {
	unit := compiler.Compile(testfixtures.RegTestModule())
	src := simemit.Emit(unit, "sim")

	assert.Contains(t, src, "package sim")
	assert.Contains(t, src, "type RegTestModuleSim struct")
	assert.Contains(t, src, "func NewRegTestModuleSim() *RegTestModuleSim")
	assert.Contains(t, src, "func (s *RegTestModuleSim) Step(in RegTestModuleSimInputs) RegTestModuleSimOutputs")
}

func TestEmitWideAdditionUsesKazert(t *testing.T) {
	unit := compiler.Compile(testfixtures.AddTestModuleWide())
	src := simemit.Emit(unit, "sim")

	assert.Contains(t, src, "kazert.U128")
	assert.Contains(t, src, "WrappingAdd")
}

func TestEmitMemoryDeclaresBackingSlice(t *testing.T) {
	unit := compiler.Compile(testfixtures.MemTestModule1())
	src := simemit.Emit(unit, "sim")

	assert.Contains(t, src, "mem_m_0 []uint32")
	assert.True(t, strings.Contains(src, "make([]uint32"))
}

func TestEmitShrArithmeticWideCallsKazertMethod(t *testing.T) {
	unit := compiler.Compile(testfixtures.ShrArithmeticTestModuleWide())
	src := simemit.Emit(unit, "sim")
	assert.Contains(t, src, "ShrArithmetic")
}

package discovery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ar90n/kaze/internal/discovery"
	"github.com/ar90n/kaze/internal/graph"
	"github.com/ar90n/kaze/internal/kerr"
	"github.com/ar90n/kaze/internal/modctx"
	"github.com/ar90n/kaze/internal/testfixtures"
)

func TestWalkDiscoversRegister(t *testing.T) {
	m := testfixtures.RegTestModule()
	arena := modctx.NewArena()
	table := discovery.NewTable(arena)

	table.Walk(m.Outputs["o"], arena.Root(), m.Name)

	regs := table.RegOrder()
	require.Len(t, regs, 1)
	entry := table.Regs[regs[0]]
	assert.Equal(t, "__reg_r_0", entry.ValueName)
	assert.Equal(t, "__reg_r_0_next", entry.NextName)
}

func TestWalkIsIdempotent(t *testing.T) {
	m := testfixtures.RegTestModule()
	arena := modctx.NewArena()
	table := discovery.NewTable(arena)

	table.Walk(m.Outputs["o"], arena.Root(), m.Name)
	table.Walk(m.Outputs["o"], arena.Root(), m.Name)

	assert.Len(t, table.RegOrder(), 1)
}

func TestWalkDescendsThroughRegisterlessInstancePaths(t *testing.T) {
	m := testfixtures.InstantiationTestModuleComb()
	arena := modctx.NewArena()
	table := discovery.NewTable(arena)

	table.Walk(m.Outputs["total"], arena.Root(), m.Name)

	// CombChildModule has no registers, so nothing should be discovered,
	// but the walk must not panic descending through both instance paths.
	assert.Empty(t, table.RegOrder())
}

func TestWalkUndrivenRegisterNamesOwningModule(t *testing.T) {
	m := graph.NewModule("cpu")
	data := &graph.RegisterData{Name: "pc", BitWidth: 16} // Next deliberately nil
	reg := m.AddRegister(data)
	m.AddOutput("o", reg)

	arena := modctx.NewArena()
	table := discovery.NewTable(arena)

	defer func() {
		err, ok := recover().(*kerr.UndrivenRegisterError)
		require.True(t, ok, "expected an UndrivenRegisterError panic")
		assert.Equal(t, "cpu", err.Module)
		assert.Equal(t, "pc", err.Register)
	}()
	table.Walk(m.Outputs["o"], arena.Root(), m.Name)
}

func TestWalkUndrivenInstanceInputNamesContainingModule(t *testing.T) {
	child := graph.NewModule("adder")
	a := child.AddInput("a", 8)
	child.AddOutput("o", a)

	parent := graph.NewModule("top")
	inst := graph.NewInstance("a0", parent, child)
	// input "a" deliberately left undriven
	parent.AddInstance(inst)
	parent.AddOutput("o", graph.InstanceOutput(inst, "o"))

	arena := modctx.NewArena()
	table := discovery.NewTable(arena)

	defer func() {
		err, ok := recover().(*kerr.UndrivenInstanceInputError)
		require.True(t, ok, "expected an UndrivenInstanceInputError panic")
		assert.Equal(t, "top", err.Module, "the error names the module containing the instance")
		assert.Equal(t, "a0", err.InstanceName)
		assert.Equal(t, "a", err.Input)
	}()
	table.Walk(parent.Outputs["o"], arena.Root(), parent.Name)
}

func TestWalkMemWithoutInitialOrWritePortNamesOwningModule(t *testing.T) {
	m := graph.NewModule("top")
	addr := m.AddInput("addr", 2)
	en := m.AddInput("en", 1)
	mem := graph.NewMem("scratch", 2, 8) // neither initial contents nor a write port
	value := mem.ReadPort(addr, en)
	m.AddMem(mem)
	m.AddOutput("o", value)

	arena := modctx.NewArena()
	table := discovery.NewTable(arena)

	defer func() {
		err, ok := recover().(*kerr.MemWithoutInitialOrWritePortError)
		require.True(t, ok, "expected a MemWithoutInitialOrWritePortError panic")
		assert.Equal(t, "top", err.Module)
		assert.Equal(t, "scratch", err.Mem)
	}()
	table.Walk(m.Outputs["o"], arena.Root(), m.Name)
}

func TestWalkDiscoversMemory(t *testing.T) {
	m := testfixtures.MemTestModule1()
	arena := modctx.NewArena()
	table := discovery.NewTable(arena)

	table.Walk(m.Outputs["read_value"], arena.Root(), m.Name)

	mems := table.MemOrder()
	require.Len(t, mems, 1)
	entry := table.Mems[mems[0]]
	require.Len(t, entry.ReadAddressNames, 1)
	assert.NotEmpty(t, entry.WriteAddressName)
}

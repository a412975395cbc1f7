// Package discovery implements the register/memory discovery pre-pass: a
// DFS over signals reachable from a module's root signals that enumerates
// every stateful element — register or memory read port — under
// instance-path qualification, assigning each a globally unique storage
// name before any expression lowering begins.
package discovery

import (
	"fmt"

	"github.com/ar90n/kaze/internal/graph"
	"github.com/ar90n/kaze/internal/kerr"
	"github.com/ar90n/kaze/internal/modctx"
)

// RegKey is the memoization key for one register under one instance path.
type RegKey struct {
	Context *modctx.Context
	Signal  *graph.Signal
}

// RegEntry is the storage a discovered register is assigned.
type RegEntry struct {
	Data      *graph.RegisterData
	ValueName string
	NextName  string
}

// MemKey is the memoization key for one memory under one instance path.
type MemKey struct {
	Context *modctx.Context
	Mem     *graph.Mem
}

// MemEntry is the storage a discovered memory's ports are assigned.
type MemEntry struct {
	Mem              *graph.Mem
	InstanceSuffix   string // disambiguates this mem's names across instance paths
	ReadValueNames   []string
	ReadAddressNames []string
	ReadEnableNames  []string
	WriteAddressName string
	WriteValueName   string
	WriteEnableName  string
}

// Table holds every register and memory discovered so far in one
// compilation run, plus the arena used to resolve instance contexts.
type Table struct {
	arena *modctx.Arena

	Regs     map[RegKey]*RegEntry
	regOrder []RegKey

	Mems     map[MemKey]*MemEntry
	memOrder []MemKey
}

// NewTable returns an empty discovery Table.
func NewTable(arena *modctx.Arena) *Table {
	return &Table{
		arena: arena,
		Regs:  make(map[RegKey]*RegEntry),
		Mems:  make(map[MemKey]*MemEntry),
	}
}

// RegOrder returns discovered registers in allocation order, which is
// deterministic given a deterministic traversal.
func (t *Table) RegOrder() []RegKey { return append([]RegKey(nil), t.regOrder...) }

// MemOrder returns discovered memories in allocation order.
func (t *Table) MemOrder() []MemKey { return append([]MemKey(nil), t.memOrder...) }

// Walk performs the discovery DFS over signal under context. moduleName is
// the name of the module that owns signal, so violations can be reported
// against the module that actually contains the offending node; it changes
// whenever the walk crosses an instance boundary.
func (t *Table) Walk(signal *graph.Signal, context *modctx.Context, moduleName string) {
	switch signal.Kind {
	case graph.KindLit:
		// no-op

	case graph.KindInput:
		if !context.IsRoot() {
			instance, parent := context.InstanceAndParent()
			driver, ok := instance.DrivenInputs[signal.Name]
			if !ok {
				panic(&kerr.UndrivenInstanceInputError{
					Module:       instance.ParentModule.Name,
					InstanceName: instance.Name,
					Input:        signal.Name,
				})
			}
			t.Walk(driver, parent, instance.ParentModule.Name)
		}

	case graph.KindReg:
		key := RegKey{Context: context, Signal: signal}
		if _, ok := t.Regs[key]; ok {
			return
		}
		n := len(t.Regs)
		data := signal.Reg
		valueName := fmt.Sprintf("__reg_%s_%d", data.Name, n)
		nextName := valueName + "_next"
		t.Regs[key] = &RegEntry{Data: data, ValueName: valueName, NextName: nextName}
		t.regOrder = append(t.regOrder, key)
		if data.Next == nil {
			panic(&kerr.UndrivenRegisterError{Module: moduleName, Register: data.Name})
		}
		t.Walk(data.Next, context, moduleName)

	case graph.KindUnOp, graph.KindBits, graph.KindRepeat:
		t.Walk(signal.Source, context, moduleName)

	case graph.KindSimpleBinOp, graph.KindAdditiveBinOp, graph.KindMulBinOp,
		graph.KindComparisonBinOp, graph.KindShiftBinOp, graph.KindConcat:
		t.Walk(signal.LHS, context, moduleName)
		t.Walk(signal.RHS, context, moduleName)

	case graph.KindMux:
		t.Walk(signal.Cond, context, moduleName)
		t.Walk(signal.WhenTrue, context, moduleName)
		t.Walk(signal.WhenFalse, context, moduleName)

	case graph.KindInstanceOutput:
		out, ok := signal.Instance.InstantiatedModule.Outputs[signal.OutputName]
		if !ok {
			panic(&kerr.InvariantViolation{Detail: fmt.Sprintf("instance of %q has no output %q", signal.Instance.InstantiatedModule.Name, signal.OutputName)})
		}
		child := t.arena.Child(context, signal.Instance)
		t.Walk(out, child, signal.Instance.InstantiatedModule.Name)

	case graph.KindMemReadPort:
		t.discoverMem(signal.MemRef, context, moduleName)

	default:
		panic(&kerr.InvariantViolation{Detail: fmt.Sprintf("discovery: unhandled signal kind %d", signal.Kind)})
	}
}

// discoverMem allocates (once per (context, mem)) the storage names for
// every port of mem and recurses into each port's address/enable/value
// signals — these are additional roots, since a mem's ports are declared on
// the Mem, not reachable through the read-port value Signal's own fields.
func (t *Table) discoverMem(mem *graph.Mem, context *modctx.Context, moduleName string) {
	key := MemKey{Context: context, Mem: mem}
	if _, ok := t.Mems[key]; ok {
		return
	}
	if len(mem.ReadPorts) == 0 {
		panic(&kerr.MemWithoutReadPortsError{Module: moduleName, Mem: mem.Name})
	}
	if mem.InitialContents == nil && mem.WritePort == nil {
		panic(&kerr.MemWithoutInitialOrWritePortError{Module: moduleName, Mem: mem.Name})
	}

	suffix := fmt.Sprintf("%d", len(t.Mems))
	entry := &MemEntry{Mem: mem, InstanceSuffix: suffix}

	for i := range mem.ReadPorts {
		prefix := fmt.Sprintf("__mem_%s_%s_read_port_%d_", mem.Name, suffix, i)
		entry.ReadAddressNames = append(entry.ReadAddressNames, prefix+"address")
		entry.ReadEnableNames = append(entry.ReadEnableNames, prefix+"enable")
		entry.ReadValueNames = append(entry.ReadValueNames, prefix+"value")
	}
	if mem.WritePort != nil {
		prefix := fmt.Sprintf("__mem_%s_%s_write_port_", mem.Name, suffix)
		entry.WriteAddressName = prefix + "address"
		entry.WriteValueName = prefix + "value"
		entry.WriteEnableName = prefix + "enable"
	}

	t.Mems[key] = entry
	t.memOrder = append(t.memOrder, key)

	for _, p := range mem.ReadPorts {
		t.Walk(p.Address, context, moduleName)
		t.Walk(p.Enable, context, moduleName)
	}
	if mem.WritePort != nil {
		t.Walk(mem.WritePort.Address, context, moduleName)
		t.Walk(mem.WritePort.Value, context, moduleName)
		t.Walk(mem.WritePort.Enable, context, moduleName)
	}
}

// Package compiler implements the memoized recursive signal compiler:
// given a module's graph and the storage names the discovery pre-pass
// assigned, it lowers every reachable signal into the kir.Expr/Assignment
// IR and assembles the result into one CompiledUnit consumed uniformly by
// the Verilog and simulator emitters.
package compiler

import (
	"github.com/ar90n/kaze/internal/graph"
	"github.com/ar90n/kaze/internal/kir"
)

// Direction distinguishes an input port from an output port.
type Direction byte

const (
	DirInput Direction = iota
	DirOutput
)

// Port describes one port of the compiled module.
type Port struct {
	Name      string
	Direction Direction
	Type      kir.ValueType
	BitWidth  uint32
}

// CompiledRegister is one discovered register, with the storage names
// assigned to its current value and its next-cycle driver.
type CompiledRegister struct {
	ValueName    string
	NextName     string
	Type         kir.ValueType
	BitWidth     uint32
	InitialValue *uint64
}

// CompiledReadPort is one discovered memory read port.
type CompiledReadPort struct {
	AddressName string
	EnableName  string
	ValueName   string
}

// CompiledWritePort is a memory's one discovered write port.
type CompiledWritePort struct {
	AddressName string
	ValueName   string
	EnableName  string
}

// CompiledMemory is one discovered memory, with the storage names assigned
// to each of its ports.
type CompiledMemory struct {
	Name            string
	AddressBitWidth uint32
	ElementBitWidth uint32
	ReadPorts       []CompiledReadPort
	WritePort       *CompiledWritePort
	InitialContents []uint64
}

// InstanceDecl records one instantiation path declared under the root module —
// informational metadata an emitter may use to annotate generated code with
// the hierarchy it flattened; it does not gate compilation in any way.
type InstanceDecl struct {
	Path       string
	ModuleName string
}

// CompiledUnit is the fully elaborated, flattened compilation result for one
// top-level module: every register, memory, and assignment reachable from
// its outputs, with all instance hierarchy inlined under instance-path
// qualified storage names.
type CompiledUnit struct {
	ModuleName  string
	Ports       []Port
	Registers   []CompiledRegister
	Memories    []CompiledMemory
	Assignments []kir.Assignment
	Instances   []InstanceDecl
}

func portsOf(m *graph.Module) []Port {
	var ports []Port
	for _, name := range m.InputOrder {
		s := m.Inputs[name]
		ports = append(ports, Port{Name: name, Direction: DirInput, Type: kir.FromBitWidth(s.BitWidth), BitWidth: s.BitWidth})
	}
	for _, name := range m.OutputOrder {
		s := m.Outputs[name]
		ports = append(ports, Port{Name: name, Direction: DirOutput, Type: kir.FromBitWidth(s.BitWidth), BitWidth: s.BitWidth})
	}
	return ports
}

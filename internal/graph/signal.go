// Package graph holds the data model the signal compiler consumes: the
// frozen, externally-owned DAG of Signal/Module/Instance/Mem nodes. A
// fluent builder DSL would normally construct this graph; here callers —
// chiefly tests and internal/testfixtures — construct these values
// directly.
//
// Signal is one flattened struct with a Kind discriminator rather than an
// interface per variant, so the compiler dispatches via a single switch
// instead of virtual calls.
package graph

import "fmt"

// Kind discriminates a Signal's variant.
type Kind byte

const (
	KindInvalid Kind = iota
	KindLit
	KindInput
	KindReg
	KindUnOp
	KindSimpleBinOp
	KindAdditiveBinOp
	KindMulBinOp
	KindComparisonBinOp
	KindShiftBinOp
	KindBits
	KindRepeat
	KindConcat
	KindMux
	KindInstanceOutput
	KindMemReadPort
)

// UnOp enumerates the unary signal operators.
type UnOp byte

const (
	UnOpNot UnOp = iota
)

// SimpleBinOp enumerates the bitwise binary operators.
type SimpleBinOp byte

const (
	BitAnd SimpleBinOp = iota
	BitOr
	BitXor
)

// AdditiveBinOp enumerates the modular arithmetic operators.
type AdditiveBinOp byte

const (
	Add AdditiveBinOp = iota
	Sub
)

// MulBinOp enumerates the widening multiplication operators. Unlike the
// additive operators, a product's width is the sum of its operand widths,
// so multiplication never wraps; the signed variant treats both operands as
// two's-complement values of their declared widths.
type MulBinOp byte

const (
	Mul MulBinOp = iota
	MulSigned
)

// ComparisonBinOp enumerates the 1-bit-result comparison operators.
type ComparisonBinOp byte

const (
	Eq ComparisonBinOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
	LtS
	LeS
	GtS
	GeS
)

// IsSigned reports whether op is one of the four signed comparisons.
func (op ComparisonBinOp) IsSigned() bool {
	return op == LtS || op == LeS || op == GtS || op == GeS
}

// ShiftBinOp enumerates the shift operators.
type ShiftBinOp byte

const (
	Shl ShiftBinOp = iota
	Shr
	ShrA
)

// RegisterData is the persistent state a Reg signal refers to. Next is
// filled in by the external graph builder before compilation begins; the
// compiler only ever reads it once sealed.
type RegisterData struct {
	Name         string
	BitWidth     uint32
	InitialValue *uint64 // nil if the register has no reset value
	Next         *Signal // must be non-nil by the time compilation starts
}

// Mem is a memory element: a bank of ElementBitWidth-wide words addressed by
// AddressBitWidth bits, with one or more read ports and at most one write
// port. Each read port's captured value is a synchronously-updated,
// Reg-like storage cell exposed as its own Signal via ReadPort.
type Mem struct {
	Name            string
	AddressBitWidth uint32
	ElementBitWidth uint32
	ReadPorts       []MemReadPort
	WritePort       *MemWritePort // nil if the memory has no write port
	InitialContents []uint64      // nil if the memory has no initial contents
}

// NewMem constructs an empty memory declaration.
func NewMem(name string, addressBitWidth, elementBitWidth uint32) *Mem {
	return &Mem{Name: name, AddressBitWidth: addressBitWidth, ElementBitWidth: elementBitWidth}
}

// ReadPort declares a read port and returns the Signal representing its
// captured value (KindMemReadPort): on each clock edge where enable is
// high, the port's storage latches mem[address], mirroring a register's
// value/next pair.
func (m *Mem) ReadPort(address, enable *Signal) *Signal {
	idx := len(m.ReadPorts)
	value := &Signal{Kind: KindMemReadPort, BitWidth: m.ElementBitWidth, MemRef: m, PortIndex: idx}
	m.ReadPorts = append(m.ReadPorts, MemReadPort{Address: address, Enable: enable, Value: value})
	return value
}

// SetWritePort declares the memory's one write port.
func (m *Mem) SetWritePort(address, value, enable *Signal) {
	m.WritePort = &MemWritePort{Address: address, Value: value, Enable: enable}
}

// MemReadPort is one (address, enable) pair driving a read, together with
// the Signal its captured value is exposed as.
type MemReadPort struct {
	Address *Signal
	Enable  *Signal
	Value   *Signal
}

// MemWritePort is the (address, value, enable) triple driving the one
// allowed write.
type MemWritePort struct {
	Address *Signal
	Value   *Signal
	Enable  *Signal
}

// Signal is an immutable node in the hardware dataflow graph. Exactly one
// group of fields is meaningful, selected by Kind; see each constructor for
// the fields it populates.
type Signal struct {
	Kind     Kind
	BitWidth uint32

	// KindLit. LitValueHi holds bits [127:64] of the literal; it is only
	// meaningful when BitWidth > 64, since a plain uint64 cannot carry a
	// literal wider than 64 bits (mirrors kir.Expr's ConstValue/ConstValueHi
	// split for the same reason).
	LitValue   uint64
	LitValueHi uint64

	// KindInput
	Name string

	// KindReg
	Reg *RegisterData

	// KindUnOp, KindBits, KindRepeat
	Source *Signal

	// KindSimpleBinOp, KindAdditiveBinOp, KindMulBinOp,
	// KindComparisonBinOp, KindShiftBinOp, KindConcat
	LHS, RHS *Signal

	UnOpVal         UnOp
	SimpleOpVal     SimpleBinOp
	AdditiveOpVal   AdditiveBinOp
	MulOpVal        MulBinOp
	ComparisonOpVal ComparisonBinOp
	ShiftOpVal      ShiftBinOp

	// KindBits
	RangeHigh, RangeLow uint32

	// KindRepeat
	Count uint32

	// KindMux
	Cond, WhenTrue, WhenFalse *Signal

	// KindInstanceOutput
	Instance   *Instance
	OutputName string

	// KindMemReadPort
	MemRef    *Mem
	PortIndex int
}

// Lit constructs a literal signal from a value that fits in 64 bits.
func Lit(value uint64, bitWidth uint32) *Signal {
	return &Signal{Kind: KindLit, BitWidth: bitWidth, LitValue: value}
}

// Lit128 constructs a literal signal from a full 128-bit value, for literals
// wider than 64 bits.
func Lit128(hi, lo uint64, bitWidth uint32) *Signal {
	return &Signal{Kind: KindLit, BitWidth: bitWidth, LitValue: lo, LitValueHi: hi}
}

// Input constructs an input-port reference.
func Input(name string, bitWidth uint32) *Signal {
	return &Signal{Kind: KindInput, BitWidth: bitWidth, Name: name}
}

// Reg constructs the current-cycle value of a register.
func Reg(data *RegisterData) *Signal {
	return &Signal{Kind: KindReg, BitWidth: data.BitWidth, Reg: data}
}

// Not constructs a bitwise-NOT signal.
func Not(source *Signal) *Signal {
	return &Signal{Kind: KindUnOp, BitWidth: source.BitWidth, Source: source, UnOpVal: UnOpNot}
}

// NewSimpleBinOp constructs a bitwise AND/OR/XOR signal. lhs and rhs must
// share a width; the external validator checks this.
func NewSimpleBinOp(op SimpleBinOp, lhs, rhs *Signal) *Signal {
	return &Signal{Kind: KindSimpleBinOp, BitWidth: lhs.BitWidth, LHS: lhs, RHS: rhs, SimpleOpVal: op}
}

// NewAdditiveBinOp constructs a modular Add/Sub signal.
func NewAdditiveBinOp(op AdditiveBinOp, lhs, rhs *Signal) *Signal {
	return &Signal{Kind: KindAdditiveBinOp, BitWidth: lhs.BitWidth, LHS: lhs, RHS: rhs, AdditiveOpVal: op}
}

// NewMulBinOp constructs a widening Mul/MulSigned signal; the result width
// is the sum of the operand widths (which must not exceed 128, a contract
// the external validator checks).
func NewMulBinOp(op MulBinOp, lhs, rhs *Signal) *Signal {
	return &Signal{Kind: KindMulBinOp, BitWidth: lhs.BitWidth + rhs.BitWidth, LHS: lhs, RHS: rhs, MulOpVal: op}
}

// NewComparisonBinOp constructs a 1-bit comparison signal.
func NewComparisonBinOp(op ComparisonBinOp, lhs, rhs *Signal) *Signal {
	return &Signal{Kind: KindComparisonBinOp, BitWidth: 1, LHS: lhs, RHS: rhs, ComparisonOpVal: op}
}

// NewShiftBinOp constructs a shift signal; the result width equals lhs's
// width, independent of rhs's width.
func NewShiftBinOp(op ShiftBinOp, lhs, rhs *Signal) *Signal {
	return &Signal{Kind: KindShiftBinOp, BitWidth: lhs.BitWidth, LHS: lhs, RHS: rhs, ShiftOpVal: op}
}

// Bits constructs a contiguous slice [low, high] (inclusive) of source.
func Bits(source *Signal, high, low uint32) *Signal {
	if low > high || high >= source.BitWidth {
		panic(fmt.Sprintf("graph: Bits range [%d:%d] invalid for %d-bit source", high, low, source.BitWidth))
	}
	return &Signal{Kind: KindBits, BitWidth: high - low + 1, Source: source, RangeHigh: high, RangeLow: low}
}

// Repeat constructs count back-to-back copies of source.
func Repeat(source *Signal, count uint32) *Signal {
	if count == 0 {
		panic("graph: Repeat count must be >= 1")
	}
	return &Signal{Kind: KindRepeat, BitWidth: source.BitWidth * count, Source: source, Count: count}
}

// Concat constructs lhs:rhs, with lhs occupying the high bits.
func Concat(lhs, rhs *Signal) *Signal {
	return &Signal{Kind: KindConcat, BitWidth: lhs.BitWidth + rhs.BitWidth, LHS: lhs, RHS: rhs}
}

// Mux constructs a 2-way multiplexer. cond must be 1 bit; whenTrue and
// whenFalse must share a width.
func Mux(cond, whenTrue, whenFalse *Signal) *Signal {
	return &Signal{Kind: KindMux, BitWidth: whenTrue.BitWidth, Cond: cond, WhenTrue: whenTrue, WhenFalse: whenFalse}
}

// InstanceOutput constructs a reference to one output of a sub-module
// instance.
func InstanceOutput(instance *Instance, outputName string) *Signal {
	out, ok := instance.InstantiatedModule.Outputs[outputName]
	if !ok {
		panic(fmt.Sprintf("graph: instance of %q has no output %q", instance.InstantiatedModule.Name, outputName))
	}
	return &Signal{Kind: KindInstanceOutput, BitWidth: out.BitWidth, Instance: instance, OutputName: outputName}
}

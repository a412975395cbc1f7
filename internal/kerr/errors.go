// Package kerr defines the typed violations the compiler can name when a
// contract the external validator is supposed to enforce turns out, at
// compile time, not to hold. The compiler does not search for these
// conditions — it only has occasion to notice them while it is already
// walking the graph for discovery or lowering — so it panics with one of
// these rather than returning an error value: a violation here is a
// programming error in the caller, not a recoverable condition.
package kerr

import "fmt"

// UndrivenRegisterError names a register with no next-value driver.
type UndrivenRegisterError struct {
	Module   string
	Register string
}

func (e *UndrivenRegisterError) Error() string {
	return fmt.Sprintf("module %q contains a register called %q which is not driven", e.Module, e.Register)
}

// UndrivenInstanceInputError names an instance input with no driver.
type UndrivenInstanceInputError struct {
	Module       string
	InstanceName string
	Input        string
}

func (e *UndrivenInstanceInputError) Error() string {
	return fmt.Sprintf("module %q contains an instance called %q whose input %q is not driven", e.Module, e.InstanceName, e.Input)
}

// MemWithoutReadPortsError names a memory with zero read ports.
type MemWithoutReadPortsError struct {
	Module string
	Mem    string
}

func (e *MemWithoutReadPortsError) Error() string {
	return fmt.Sprintf("module %q contains a memory called %q which doesn't have any read ports", e.Module, e.Mem)
}

// MemWithoutInitialOrWritePortError names a memory with neither initial
// contents nor a write port.
type MemWithoutInitialOrWritePortError struct {
	Module string
	Mem    string
}

func (e *MemWithoutInitialOrWritePortError) Error() string {
	return fmt.Sprintf(
		"module %q contains a memory called %q which doesn't have initial contents or a write port specified; at least one of the two is required",
		e.Module, e.Mem,
	)
}

// CombinationalLoopError names an output signal that recursively depends on
// itself with no intervening register.
type CombinationalLoopError struct {
	Module string
	Output string
}

func (e *CombinationalLoopError) Error() string {
	return fmt.Sprintf("module %q contains an output called %q which forms a combinational loop with itself", e.Module, e.Output)
}

// InvariantViolation wraps a contract the compiler itself depends on (a
// register or memory read port compiled before discovery saw it, an
// instance output that does not exist, an unhandled signal kind or
// operator) that the validator is assumed to have already rejected. Seeing one here means the caller built
// an inconsistent graph without running validation first.
type InvariantViolation struct {
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("kaze: compiler invariant violated: %s", e.Detail)
}

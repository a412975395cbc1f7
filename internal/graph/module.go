package graph

// Module is a reusable block of logic: named input/output ports, the
// registers and memories it declares, and the instances of other modules it
// places within itself.
type Module struct {
	Name      string
	Inputs    map[string]*Signal
	Outputs   map[string]*Signal
	Registers []*Signal // each of Kind == KindReg
	Mems      []*Mem
	Instances []*Instance

	// InputOrder and OutputOrder record declaration order so the emitters
	// can produce deterministic output without depending on Go map
	// iteration order.
	InputOrder  []string
	OutputOrder []string
}

// NewModule constructs an empty Module.
func NewModule(name string) *Module {
	return &Module{
		Name:    name,
		Inputs:  make(map[string]*Signal),
		Outputs: make(map[string]*Signal),
	}
}

// AddInput declares an input port.
func (m *Module) AddInput(name string, bitWidth uint32) *Signal {
	s := Input(name, bitWidth)
	m.Inputs[name] = s
	m.InputOrder = append(m.InputOrder, name)
	return s
}

// AddOutput declares an output port driven by source.
func (m *Module) AddOutput(name string, source *Signal) {
	m.Outputs[name] = source
	m.OutputOrder = append(m.OutputOrder, name)
}

// AddRegister declares a register and returns its current-value Signal. The
// caller must set data.Next before compilation.
func (m *Module) AddRegister(data *RegisterData) *Signal {
	s := Reg(data)
	m.Registers = append(m.Registers, s)
	return s
}

// AddMem declares a memory.
func (m *Module) AddMem(mem *Mem) {
	m.Mems = append(m.Mems, mem)
}

// AddInstance declares an instance of another module within m.
func (m *Module) AddInstance(inst *Instance) {
	m.Instances = append(m.Instances, inst)
}

// Instance is the placement of one module within a parent, together with
// the signals driving each of its inputs.
type Instance struct {
	Name               string
	ParentModule       *Module
	InstantiatedModule *Module
	DrivenInputs       map[string]*Signal
}

// NewInstance constructs an instance of instantiated within parent, with no
// inputs yet driven.
func NewInstance(name string, parent, instantiated *Module) *Instance {
	return &Instance{
		Name:               name,
		ParentModule:       parent,
		InstantiatedModule: instantiated,
		DrivenInputs:       make(map[string]*Signal),
	}
}

// Drive drives one of the instance's inputs. inputName must name an input
// port of InstantiatedModule; the external validator checks this.
func (i *Instance) Drive(inputName string, source *Signal) {
	i.DrivenInputs[inputName] = source
}

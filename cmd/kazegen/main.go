// Command kazegen is a thin example driver over the discover → compile →
// emit pipeline. It carries no flag parsing and no subcommands — it is not
// CLI packaging in the product sense, only a fixed example used by this
// package's own tests to exercise internal/compiler, internal/verilogemit
// and internal/simemit end to end the way a real caller would wire them
// together.
package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/ar90n/kaze/internal/compiler"
	"github.com/ar90n/kaze/internal/graph"
	"github.com/ar90n/kaze/internal/simemit"
	"github.com/ar90n/kaze/internal/verilogemit"
)

// counterModule is a free-running up-counter: a single register whose next
// value is itself plus one, exposed as an output. It is small enough to
// read in full in generated form, but exercises a register, an additive
// lowering, and the reset-aware update block all at once.
func counterModule() *graph.Module {
	m := graph.NewModule("counter")
	initial := uint64(0)
	data := &graph.RegisterData{Name: "count", BitWidth: 8, InitialValue: &initial}
	reg := m.AddRegister(data)
	data.Next = graph.NewAdditiveBinOp(graph.Add, reg, graph.Lit(1, 8))
	m.AddOutput("count", reg)
	return m
}

// generate compiles mod and renders both emitter outputs.
func generate(mod *graph.Module, simPkg string) (verilogSrc, simSrc string) {
	unit := compiler.Compile(mod)
	return verilogemit.Emit(unit), simemit.Emit(unit, simPkg)
}

func main() {
	outDir := "."
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}

	verilogSrc, simSrc := generate(counterModule(), "countersim")

	verilogPath := filepath.Join(outDir, "counter.v")
	simPath := filepath.Join(outDir, "counter_sim.go")

	if err := os.WriteFile(verilogPath, []byte(verilogSrc), 0o644); err != nil {
		log.Fatalf("kazegen: writing %s: %v", verilogPath, err)
	}
	if err := os.WriteFile(simPath, []byte(simSrc), 0o644); err != nil {
		log.Fatalf("kazegen: writing %s: %v", simPath, err)
	}
	log.Printf("kazegen: wrote %s and %s", verilogPath, simPath)
}

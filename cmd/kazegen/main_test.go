package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCounterProducesBothOutputs(t *testing.T) {
	verilogSrc, simSrc := generate(counterModule(), "countersim")

	assert.Contains(t, verilogSrc, "module counter (")
	assert.Contains(t, verilogSrc, "always @(posedge clk, negedge reset_n)")

	assert.Contains(t, simSrc, "package countersim")
	assert.Contains(t, simSrc, "type CounterSim struct")
}

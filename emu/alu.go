// Package emu provides functional RV32I emulation.
package emu

import "github.com/Ameykolhe/RV32ISimulator/insts"

// ALU implements the RV32I arithmetic and logic operations. All
// arithmetic wraps modulo 2^32.
type ALU struct{}

// NewALU creates a new ALU.
func NewALU() *ALU {
	return &ALU{}
}

// Execute applies the ALU function selected by op to the two operands.
// Loads and stores use the add function for address generation.
func (a *ALU) Execute(op insts.Op, op1, op2 uint32) uint32 {
	switch op {
	case insts.OpADD, insts.OpADDI, insts.OpLW, insts.OpSW:
		return op1 + op2
	case insts.OpSUB:
		return op1 - op2
	case insts.OpAND, insts.OpANDI:
		return op1 & op2
	case insts.OpOR, insts.OpORI:
		return op1 | op2
	case insts.OpXOR, insts.OpXORI:
		return op1 ^ op2
	}
	return 0
}

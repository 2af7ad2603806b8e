// Package emu provides functional RV32I emulation.
package emu

import (
	"github.com/Ameykolhe/RV32ISimulator/insts"
)

// SingleCycleCore executes one full instruction per cycle: fetch,
// decode, execute, memory access, and writeback all happen in a single
// Step. It serves as the architectural reference for the pipelined core.
type SingleCycleCore struct {
	imem    *InstructionMem
	dmem    *DataMem
	regFile *RegFile
	decoder *insts.Decoder
	alu     *ALU

	pc     uint32
	nop    bool
	halted bool

	cycleCount       uint64
	instructionCount uint64
}

// NewSingleCycleCore creates a single-cycle core over the given
// instruction and data memories. The core owns its register file and
// data memory; the instruction memory may be shared with other cores.
func NewSingleCycleCore(imem *InstructionMem, dmem *DataMem) *SingleCycleCore {
	return &SingleCycleCore{
		imem:    imem,
		dmem:    dmem,
		regFile: &RegFile{},
		decoder: insts.NewDecoder(),
		alu:     NewALU(),
	}
}

// RegFile returns the core's register file.
func (c *SingleCycleCore) RegFile() *RegFile {
	return c.regFile
}

// DataMem returns the core's data memory.
func (c *SingleCycleCore) DataMem() *DataMem {
	return c.dmem
}

// PC returns the address of the next instruction to fetch.
func (c *SingleCycleCore) PC() uint32 {
	return c.pc
}

// NOP reports whether the halt sentinel has been fetched.
func (c *SingleCycleCore) NOP() bool {
	return c.nop
}

// Halted reports whether the core has finished executing.
func (c *SingleCycleCore) Halted() bool {
	return c.halted
}

// Stats returns core performance statistics.
type Stats struct {
	Cycles       uint64
	Instructions uint64
	CPI          float64 // Cycles per instruction
	IPC          float64 // Instructions per cycle
}

// Stats returns the core's performance statistics.
func (c *SingleCycleCore) Stats() Stats {
	s := Stats{
		Cycles:       c.cycleCount,
		Instructions: c.instructionCount,
	}
	if s.Instructions > 0 {
		s.CPI = float64(s.Cycles) / float64(s.Instructions)
	}
	if s.Cycles > 0 {
		s.IPC = float64(s.Instructions) / float64(s.Cycles)
	}
	return s
}

// Step executes one cycle: a full instruction, or the halt sentinel.
// Decode failures are treated as nops with the PC still advancing by 4.
func (c *SingleCycleCore) Step() error {
	if c.halted {
		return nil
	}
	c.cycleCount++

	word, err := c.imem.ReadWord(c.pc)
	if err != nil {
		return err
	}
	if word == insts.HaltWord {
		c.nop = true
		c.halted = true
		return nil
	}

	inst := c.decoder.Decode(word)
	nextPC := c.pc + 4

	switch inst.Format {
	case insts.FormatInvalid:
		// Undecodable slot, PC still advances.
		c.pc = nextPC
		return nil
	case insts.FormatB:
		if c.branchTaken(inst) {
			nextPC = c.pc + uint32(inst.Imm)
		}
	case insts.FormatJ:
		c.regFile.Write(inst.Rd, c.pc+4)
		nextPC = c.pc + uint32(inst.Imm)
	case insts.FormatILoad:
		addr := c.alu.Execute(inst.Op, c.regFile.Read(inst.Rs1), uint32(inst.Imm))
		value, err := c.dmem.ReadWord(addr)
		if err != nil {
			return err
		}
		c.regFile.Write(inst.Rd, value)
	case insts.FormatS:
		addr := c.alu.Execute(inst.Op, c.regFile.Read(inst.Rs1), uint32(inst.Imm))
		c.dmem.WriteWord(addr, c.regFile.Read(inst.Rs2))
	case insts.FormatIArith:
		result := c.alu.Execute(inst.Op, c.regFile.Read(inst.Rs1), uint32(inst.Imm))
		c.regFile.Write(inst.Rd, result)
	case insts.FormatR:
		result := c.alu.Execute(inst.Op, c.regFile.Read(inst.Rs1), c.regFile.Read(inst.Rs2))
		c.regFile.Write(inst.Rd, result)
	}

	c.instructionCount++
	c.pc = nextPC
	return nil
}

// branchTaken evaluates a branch predicate against the register file.
func (c *SingleCycleCore) branchTaken(inst *insts.Instruction) bool {
	v1 := c.regFile.Read(inst.Rs1)
	v2 := c.regFile.Read(inst.Rs2)
	if inst.Op == insts.OpBEQ {
		return v1 == v2
	}
	return v1 != v2
}

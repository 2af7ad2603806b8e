// Package pipeline provides the 5-stage pipelined RV32I core.
//
// The pipeline implements the classic 5-stage design:
//   - Fetch (IF): Read instruction from memory
//   - Decode (ID): Decode instruction, read registers, resolve branches
//   - Execute (EX): ALU operations, address calculation
//   - Memory (MEM): Load/Store memory access
//   - Writeback (WB): Write results to the register file
//
// Features:
//   - Pipeline latches between stages (IF/ID, ID/EX, EX/MEM, MEM/WB)
//   - Data forwarding from the EX/MEM and MEM/WB latches
//   - Stalling for load-use hazards
//   - One-slot squash on taken branches and jumps, resolved at ID
//   - Halt sentinel propagation until the pipeline drains
package pipeline

import (
	"github.com/Ameykolhe/RV32ISimulator/emu"
	"github.com/Ameykolhe/RV32ISimulator/insts"
)

// Pipeline is the 5-stage pipelined RV32I core.
type Pipeline struct {
	imem    *emu.InstructionMem
	dmem    *emu.DataMem
	regFile *emu.RegFile
	decoder *insts.Decoder
	alu     *emu.ALU

	// Hazard detection unit.
	hazardUnit *HazardUnit

	// Current-cycle latches and the latches being built for the next
	// cycle. Stages read state and write next; the swap at the end of
	// Tick models the synchronous latch update.
	state State
	next  State

	// Statistics.
	cycleCount       uint64
	instructionCount uint64
	stallCount       uint64
	branchCount      uint64
	flushCount       uint64

	halted bool
}

// NewPipeline creates a new 5-stage core over the given instruction and
// data memories. The core owns its register file and data memory; the
// instruction memory may be shared with other cores.
func NewPipeline(imem *emu.InstructionMem, dmem *emu.DataMem) *Pipeline {
	return &Pipeline{
		imem:       imem,
		dmem:       dmem,
		regFile:    &emu.RegFile{},
		decoder:    insts.NewDecoder(),
		alu:        emu.NewALU(),
		hazardUnit: NewHazardUnit(),
		state:      NewState(),
	}
}

// RegFile returns the core's register file.
func (p *Pipeline) RegFile() *emu.RegFile {
	return p.regFile
}

// DataMem returns the core's data memory.
func (p *Pipeline) DataMem() *emu.DataMem {
	return p.dmem
}

// State returns the pipeline latches as of the end of the last cycle.
func (p *Pipeline) State() State {
	return p.state
}

// Halted reports whether the pipeline has drained after the halt
// sentinel: all five stages carry bubbles.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// Stats returns pipeline statistics.
type Stats struct {
	Cycles       uint64
	Instructions uint64
	Stalls       uint64
	Branches     uint64
	Flushes      uint64
	CPI          float64 // Cycles per instruction
	IPC          float64 // Instructions per cycle
}

// Stats returns pipeline performance statistics.
func (p *Pipeline) Stats() Stats {
	s := Stats{
		Cycles:       p.cycleCount,
		Instructions: p.instructionCount,
		Stalls:       p.stallCount,
		Branches:     p.branchCount,
		Flushes:      p.flushCount,
	}
	if s.Instructions > 0 {
		s.CPI = float64(s.Cycles) / float64(s.Instructions)
	}
	if s.Cycles > 0 {
		s.IPC = float64(s.Instructions) / float64(s.Cycles)
	}
	return s
}

// Tick advances the pipeline by one cycle.
//
// Stages run in reverse order so that every stage reads the latches as
// they stood at the start of the cycle while building the latches for
// the next one. The final swap commits all five at once.
func (p *Pipeline) Tick() error {
	if p.halted {
		return nil
	}
	p.cycleCount++
	p.next = State{}

	// 1. Writeback stage (WB).
	p.doWriteback()

	// 2. Memory stage (MEM).
	if err := p.doMemory(); err != nil {
		return err
	}

	// 3. Execute stage (EX).
	p.doExecute()

	// 4. Decode stage (ID). Branches and jumps resolve here.
	loadUseHazard, redirect, target := p.doDecode()

	stallResult := p.hazardUnit.ComputeStalls(loadUseHazard, redirect)

	// 5. Fetch stage (IF).
	if err := p.doFetch(stallResult, target); err != nil {
		return err
	}

	if stallResult.InsertBubbleEX {
		p.next.EX.Clear(false)
	}
	if stallResult.StallIF {
		p.stallCount++
	}
	if stallResult.FlushIF {
		p.branchCount++
		p.flushCount++
	}

	// The core has halted once the sentinel's bubbles have drained
	// past every stage.
	if p.state.AllNOP() {
		p.halted = true
	}

	p.state = p.next
	return nil
}

// doWriteback commits the WB latch to the register file. A non-bubble
// slot leaving WB is a retired instruction.
func (p *Pipeline) doWriteback() {
	wb := &p.state.WB
	if wb.NOP {
		return
	}
	if wb.WriteBackEnable {
		p.regFile.Write(wb.WriteRegisterAddr, wb.StoreData)
	}
	p.instructionCount++
}

// doMemory performs the load or store carried by the MEM latch and
// constructs the WB latch for the next cycle.
func (p *Pipeline) doMemory() error {
	mem := &p.state.MEM
	if mem.NOP {
		p.next.WB.Clear(mem.Halt)
		return nil
	}

	storeData := mem.StoreData
	switch {
	case mem.ReadDataMem:
		value, err := p.dmem.ReadWord(mem.DataAddress)
		if err != nil {
			return err
		}
		storeData = value
	case mem.WriteDataMem:
		p.dmem.WriteWord(mem.DataAddress, mem.StoreData)
	}

	p.next.WB = WBRegister{
		StoreData:         storeData,
		WriteRegisterAddr: mem.WriteRegisterAddr,
		WriteBackEnable:   mem.WriteBackEnable,
		Halt:              mem.Halt,
	}
	return nil
}

// doExecute resolves forwarded operands, applies the ALU function and
// constructs the MEM latch for the next cycle.
func (p *Pipeline) doExecute() {
	ex := &p.state.EX
	if ex.NOP {
		p.next.MEM.Clear(ex.Halt)
		return
	}

	fwd := p.hazardUnit.DetectForwarding(ex, &p.state.MEM, &p.state.WB)
	operand1 := p.forwardedValue(fwd.ForwardRs1, ex.Operand1)

	mem := MEMRegister{
		WriteRegisterAddr: ex.DestinationRegister,
		ReadDataMem:       ex.ReadDataMem,
		WriteDataMem:      ex.WriteDataMem,
		WriteBackEnable:   ex.WriteBackEnable,
		Halt:              ex.Halt,
	}

	switch {
	case ex.ReadDataMem:
		mem.DataAddress = p.alu.Execute(ex.Op, operand1, uint32(ex.Imm))
	case ex.WriteDataMem:
		mem.DataAddress = p.alu.Execute(ex.Op, operand1, uint32(ex.Imm))
		mem.StoreData = p.forwardedValue(fwd.ForwardRs2, ex.StoreData)
	case ex.Op == insts.OpBEQ, ex.Op == insts.OpBNE, ex.Op == insts.OpJAL:
		// Resolved at ID; the slot flows through to retirement with
		// no further effects.
	case ex.WriteBackEnable:
		operand2 := ex.Operand2
		switch ex.Op {
		case insts.OpADDI, insts.OpANDI, insts.OpORI, insts.OpXORI:
			operand2 = uint32(ex.Imm)
		default:
			operand2 = p.forwardedValue(fwd.ForwardRs2, ex.Operand2)
		}
		mem.StoreData = p.alu.Execute(ex.Op, operand1, operand2)
	}

	p.next.MEM = mem
}

// forwardedValue selects the operand value for the chosen forwarding
// source. The MEM stage has already run this cycle, so the MEM-path
// value is read from the WB latch it just built; for loads that is the
// word fetched from data memory, for arithmetic slots the ALU result.
func (p *Pipeline) forwardedValue(source ForwardingSource, original uint32) uint32 {
	switch source {
	case ForwardFromMEM:
		return p.next.WB.StoreData
	case ForwardFromWB:
		return p.state.WB.StoreData
	}
	return original
}

// doDecode decodes the ID latch, reads the register file, resolves
// branches and jumps, and constructs the EX latch for the next cycle.
// It reports a load-use hazard and, for taken branches and jumps, the
// redirect target.
func (p *Pipeline) doDecode() (loadUseHazard bool, redirect bool, target uint32) {
	id := &p.state.ID
	if id.NOP {
		p.next.EX.Clear(id.Halt)
		return false, false, 0
	}

	inst := p.decoder.Decode(id.InstructionWord)
	if inst.Format == insts.FormatInvalid {
		// Undecodable slot, absorbed as a bubble.
		p.next.EX.Clear(false)
		return false, false, 0
	}

	if p.hazardUnit.DetectLoadUseHazard(&p.state.EX, inst.Rs1, inst.Rs2, inst.ReadsRs1(), inst.ReadsRs2()) {
		// The frozen ID latch and the EX bubble are applied by Tick.
		return true, false, 0
	}

	ex := EXRegister{
		Op:  inst.Op,
		Imm: inst.Imm,
	}

	switch inst.Format {
	case insts.FormatB:
		// Branches read their operands through the same forwarding
		// network, one stage early.
		operand1 := p.resolveIDOperand(inst.Rs1)
		operand2 := p.resolveIDOperand(inst.Rs2)
		ex.Operand1 = operand1
		ex.Operand2 = operand2
		taken := operand1 != operand2
		if inst.Op == insts.OpBEQ {
			taken = operand1 == operand2
		}
		if taken {
			redirect = true
			target = id.PC + uint32(inst.Imm)
		}
	case insts.FormatJ:
		// The link register commits at ID so no extra latch fields
		// are needed downstream.
		p.regFile.Write(inst.Rd, id.PC+4)
		redirect = true
		target = id.PC + uint32(inst.Imm)
	case insts.FormatR:
		ex.Rs1 = inst.Rs1
		ex.Rs2 = inst.Rs2
		ex.Operand1 = p.regFile.Read(inst.Rs1)
		ex.Operand2 = p.regFile.Read(inst.Rs2)
		ex.DestinationRegister = inst.Rd
		ex.WriteBackEnable = true
	case insts.FormatIArith:
		ex.Rs1 = inst.Rs1
		ex.Operand1 = p.regFile.Read(inst.Rs1)
		ex.DestinationRegister = inst.Rd
		ex.WriteBackEnable = true
	case insts.FormatILoad:
		ex.Rs1 = inst.Rs1
		ex.Operand1 = p.regFile.Read(inst.Rs1)
		ex.DestinationRegister = inst.Rd
		ex.ReadDataMem = true
		ex.WriteBackEnable = true
	case insts.FormatS:
		ex.Rs1 = inst.Rs1
		ex.Rs2 = inst.Rs2
		ex.Operand1 = p.regFile.Read(inst.Rs1)
		ex.StoreData = p.regFile.Read(inst.Rs2)
		ex.DestinationRegister = inst.Rs2
		ex.WriteDataMem = true
	}

	p.next.EX = ex
	return false, redirect, target
}

// resolveIDOperand reads a branch operand with forwarding. The EX and
// MEM stages have already run this cycle, so their freshly built output
// latches carry the most recent values; the register file itself is
// current up to this cycle's writeback, which ran first.
func (p *Pipeline) resolveIDOperand(rs uint8) uint32 {
	if rs == 0 {
		return 0
	}
	if mem := &p.next.MEM; !mem.NOP && mem.WriteBackEnable && mem.WriteRegisterAddr == rs {
		return mem.StoreData
	}
	if wb := &p.next.WB; !wb.NOP && wb.WriteBackEnable && wb.WriteRegisterAddr == rs {
		return wb.StoreData
	}
	return p.regFile.Read(rs)
}

// doFetch reads the next instruction word and constructs the ID latch
// for the next cycle. A resolved branch or jump squashes the slot and
// overwrites the PC; a load-use stall freezes both the PC and the ID
// latch; the halt sentinel stops fetching for good.
func (p *Pipeline) doFetch(stall StallResult, target uint32) error {
	if stall.FlushIF {
		p.next.ID.Clear(false)
		p.next.IF = IFRegister{PC: target}
		return nil
	}
	if stall.StallIF {
		p.next.IF = p.state.IF
		p.next.ID = p.state.ID
		return nil
	}
	if p.state.IF.NOP {
		p.next.IF = p.state.IF
		p.next.ID.Clear(true)
		return nil
	}

	word, err := p.imem.ReadWord(p.state.IF.PC)
	if err != nil {
		return err
	}
	if word == insts.HaltWord {
		p.next.IF = IFRegister{PC: p.state.IF.PC, NOP: true}
		p.next.ID.Clear(true)
		return nil
	}

	p.next.ID = IDRegister{PC: p.state.IF.PC, InstructionWord: word}
	p.next.IF = IFRegister{PC: p.state.IF.PC + 4}
	return nil
}

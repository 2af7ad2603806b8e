// Package trace formats the per-cycle simulation traces and the final
// memory dumps.
//
// Register values print as 32-bit two's-complement binary strings and
// memory bytes as 8-bit binary strings, matching the reference trace
// format that graders diff against.
package trace

import (
	"fmt"
	"io"
	"strings"

	"github.com/Ameykolhe/RV32ISimulator/timing/pipeline"
)

const separator = "----------------------------------------------------------------------"

// RFWriter dumps the register file once per cycle.
type RFWriter struct {
	w io.Writer
}

// NewRFWriter creates a register-file trace writer.
func NewRFWriter(w io.Writer) *RFWriter {
	return &RFWriter{w: w}
}

// WriteCycle appends the register file contents for one cycle.
func (t *RFWriter) WriteCycle(cycle uint64, regs [32]uint32) error {
	if _, err := fmt.Fprintf(t.w, "State of RF after executing cycle:\t%d\n", cycle); err != nil {
		return err
	}
	for _, val := range regs {
		if _, err := fmt.Fprintf(t.w, "%032b\n", val); err != nil {
			return err
		}
	}
	return nil
}

// StateWriter dumps the architectural state once per cycle.
type StateWriter struct {
	w io.Writer
}

// NewStateWriter creates a latch-state trace writer.
func NewStateWriter(w io.Writer) *StateWriter {
	return &StateWriter{w: w}
}

// WriteSingleCycle appends the single-cycle core state for one cycle.
// The single-cycle core carries only the fetch state.
func (t *StateWriter) WriteSingleCycle(cycle uint64, pc uint32, nop bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", separator)
	fmt.Fprintf(&b, "State after executing cycle: %d\n", cycle)
	fmt.Fprintf(&b, "IF.PC: %d\n", pc)
	fmt.Fprintf(&b, "IF.nop: %t\n", nop)
	_, err := io.WriteString(t.w, b.String())
	return err
}

// WriteFiveStage appends every latch field of the pipelined core for
// one cycle.
func (t *StateWriter) WriteFiveStage(cycle uint64, s pipeline.State) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", separator)
	fmt.Fprintf(&b, "State after executing cycle: %d\n", cycle)

	fmt.Fprintf(&b, "IF.nop: %t\n", s.IF.NOP)
	fmt.Fprintf(&b, "IF.PC: %d\n", s.IF.PC)

	fmt.Fprintf(&b, "ID.nop: %t\n", s.ID.NOP)
	fmt.Fprintf(&b, "ID.PC: %d\n", s.ID.PC)
	fmt.Fprintf(&b, "ID.instruction_bytes: %032b\n", s.ID.InstructionWord)
	fmt.Fprintf(&b, "ID.halt: %t\n", s.ID.Halt)

	fmt.Fprintf(&b, "EX.nop: %t\n", s.EX.NOP)
	fmt.Fprintf(&b, "EX.alu_op: %s\n", s.EX.Op)
	fmt.Fprintf(&b, "EX.operand1: %d\n", s.EX.Operand1)
	fmt.Fprintf(&b, "EX.operand2: %d\n", s.EX.Operand2)
	fmt.Fprintf(&b, "EX.imm: %d\n", s.EX.Imm)
	fmt.Fprintf(&b, "EX.rs1: %d\n", s.EX.Rs1)
	fmt.Fprintf(&b, "EX.rs2: %d\n", s.EX.Rs2)
	fmt.Fprintf(&b, "EX.store_data: %d\n", s.EX.StoreData)
	fmt.Fprintf(&b, "EX.destination_register: %d\n", s.EX.DestinationRegister)
	fmt.Fprintf(&b, "EX.read_data_mem: %t\n", s.EX.ReadDataMem)
	fmt.Fprintf(&b, "EX.write_data_mem: %t\n", s.EX.WriteDataMem)
	fmt.Fprintf(&b, "EX.write_back_enable: %t\n", s.EX.WriteBackEnable)
	fmt.Fprintf(&b, "EX.halt: %t\n", s.EX.Halt)

	fmt.Fprintf(&b, "MEM.nop: %t\n", s.MEM.NOP)
	fmt.Fprintf(&b, "MEM.data_address: %d\n", s.MEM.DataAddress)
	fmt.Fprintf(&b, "MEM.store_data: %d\n", s.MEM.StoreData)
	fmt.Fprintf(&b, "MEM.write_register_addr: %d\n", s.MEM.WriteRegisterAddr)
	fmt.Fprintf(&b, "MEM.read_data_mem: %t\n", s.MEM.ReadDataMem)
	fmt.Fprintf(&b, "MEM.write_data_mem: %t\n", s.MEM.WriteDataMem)
	fmt.Fprintf(&b, "MEM.write_back_enable: %t\n", s.MEM.WriteBackEnable)
	fmt.Fprintf(&b, "MEM.halt: %t\n", s.MEM.Halt)

	fmt.Fprintf(&b, "WB.nop: %t\n", s.WB.NOP)
	fmt.Fprintf(&b, "WB.store_data: %d\n", s.WB.StoreData)
	fmt.Fprintf(&b, "WB.write_register_addr: %d\n", s.WB.WriteRegisterAddr)
	fmt.Fprintf(&b, "WB.write_back_enable: %t\n", s.WB.WriteBackEnable)
	fmt.Fprintf(&b, "WB.halt: %t\n", s.WB.Halt)

	_, err := io.WriteString(t.w, b.String())
	return err
}

// WriteDataMem dumps the final data memory contents, one byte per line
// as an 8-bit binary string.
func WriteDataMem(w io.Writer, data []byte) error {
	for _, b := range data {
		if _, err := fmt.Fprintf(w, "%08b\n", b); err != nil {
			return err
		}
	}
	return nil
}

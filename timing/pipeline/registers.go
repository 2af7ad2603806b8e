// Package pipeline provides the 5-stage pipelined RV32I core.
package pipeline

import (
	"github.com/Ameykolhe/RV32ISimulator/insts"
)

// IFRegister holds the fetch stage state.
type IFRegister struct {
	// PC is the address of the next instruction to fetch.
	PC uint32

	// NOP is set once the halt sentinel has been fetched; fetching
	// stops and bubbles drain through the pipeline behind it.
	NOP bool
}

// IDRegister holds state between the Fetch and Decode stages.
type IDRegister struct {
	// NOP marks this slot as a bubble.
	NOP bool

	// PC of the fetched instruction.
	PC uint32

	// InstructionWord fetched from instruction memory.
	InstructionWord uint32

	// Halt marks a slot drained behind the halt sentinel.
	Halt bool
}

// EXRegister holds state between the Decode and Execute stages.
type EXRegister struct {
	// NOP marks this slot as a bubble.
	NOP bool

	// Op selects the ALU function.
	Op insts.Op

	// Operand1 is the rs1 value read during decode.
	Operand1 uint32

	// Operand2 is the rs2 value for R-type and branch slots.
	Operand2 uint32

	// Imm is the sign-extended immediate.
	Imm int32

	// StoreData is the rs2 value carried by store slots.
	StoreData uint32

	// Rs1 and Rs2 are the source register numbers, kept for the
	// forwarding match.
	Rs1 uint8
	Rs2 uint8

	// DestinationRegister is rd, or rs2 for stores.
	DestinationRegister uint8

	// Control signals.
	ReadDataMem     bool // LW
	WriteDataMem    bool // SW
	WriteBackEnable bool // Result is written to the register file
	Halt            bool
}

// MEMRegister holds state between the Execute and Memory stages.
type MEMRegister struct {
	// NOP marks this slot as a bubble.
	NOP bool

	// DataAddress is the effective address for loads and stores.
	DataAddress uint32

	// StoreData is the ALU result for arithmetic slots or the value
	// to store for SW.
	StoreData uint32

	// WriteRegisterAddr is the register written at WB.
	WriteRegisterAddr uint8

	// Control signals.
	ReadDataMem     bool
	WriteDataMem    bool
	WriteBackEnable bool
	Halt            bool
}

// WBRegister holds state between the Memory and Writeback stages.
type WBRegister struct {
	// NOP marks this slot as a bubble.
	NOP bool

	// StoreData is the final value to write back.
	StoreData uint32

	// WriteRegisterAddr is the register written at WB.
	WriteRegisterAddr uint8

	// Control signals.
	WriteBackEnable bool
	Halt            bool
}

// State carries all five pipeline latches of one cycle.
type State struct {
	IF  IFRegister
	ID  IDRegister
	EX  EXRegister
	MEM MEMRegister
	WB  WBRegister
}

// NewState returns the reset state: fetching is live from reset and
// bubbles fill the pipeline before the first instruction reaches them.
func NewState() State {
	return State{
		ID:  IDRegister{NOP: true},
		EX:  EXRegister{NOP: true},
		MEM: MEMRegister{NOP: true},
		WB:  WBRegister{NOP: true},
	}
}

// AllNOP reports whether every stage carries a bubble.
func (s *State) AllNOP() bool {
	return s.IF.NOP && s.ID.NOP && s.EX.NOP && s.MEM.NOP && s.WB.NOP
}

// Clear resets the ID register to a bubble, keeping the halt marker.
func (r *IDRegister) Clear(halt bool) {
	*r = IDRegister{NOP: true, Halt: halt}
}

// Clear resets the EX register to a bubble, keeping the halt marker.
func (r *EXRegister) Clear(halt bool) {
	*r = EXRegister{NOP: true, Halt: halt}
}

// Clear resets the MEM register to a bubble, keeping the halt marker.
func (r *MEMRegister) Clear(halt bool) {
	*r = MEMRegister{NOP: true, Halt: halt}
}

// Clear resets the WB register to a bubble, keeping the halt marker.
func (r *WBRegister) Clear(halt bool) {
	*r = WBRegister{NOP: true, Halt: halt}
}

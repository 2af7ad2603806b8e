// Package pipeline provides the 5-stage pipelined RV32I core.
package pipeline

// HazardUnit detects data hazards and controls forwarding and stalling.
type HazardUnit struct{}

// NewHazardUnit creates a new hazard detection unit.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{}
}

// ForwardingSource indicates where to forward an operand from.
type ForwardingSource uint8

const (
	// ForwardNone means no forwarding, use the value read at decode.
	ForwardNone ForwardingSource = iota
	// ForwardFromMEM means forward the result of the instruction
	// currently in the MEM stage.
	ForwardFromMEM
	// ForwardFromWB means forward the result of the instruction
	// currently in the WB stage.
	ForwardFromWB
)

// ForwardingResult contains forwarding decisions for both source operands.
type ForwardingResult struct {
	ForwardRs1 ForwardingSource
	ForwardRs2 ForwardingSource
}

// DetectForwarding determines the forwarding sources for the instruction
// in the EX stage. The MEM latch has priority over the WB latch because
// it carries the more recent result. Register 0 never matches: writes to
// it are architecturally discarded.
func (h *HazardUnit) DetectForwarding(ex *EXRegister, mem *MEMRegister, wb *WBRegister) ForwardingResult {
	result := ForwardingResult{}
	if ex.NOP {
		return result
	}
	result.ForwardRs1 = h.detectOperand(ex.Rs1, mem, wb)
	result.ForwardRs2 = h.detectOperand(ex.Rs2, mem, wb)
	return result
}

func (h *HazardUnit) detectOperand(rs uint8, mem *MEMRegister, wb *WBRegister) ForwardingSource {
	if rs == 0 {
		return ForwardNone
	}
	if !mem.NOP && mem.WriteBackEnable && mem.WriteRegisterAddr == rs {
		return ForwardFromMEM
	}
	if !wb.NOP && wb.WriteBackEnable && wb.WriteRegisterAddr == rs {
		return ForwardFromWB
	}
	return ForwardNone
}

// DetectLoadUseHazard checks whether the instruction decoded this cycle
// depends on a load currently in the EX stage. Forwarding cannot resolve
// this: the loaded word is not available until the load passes the MEM
// stage, so the consumer must stall for one cycle.
func (h *HazardUnit) DetectLoadUseHazard(ex *EXRegister, rs1, rs2 uint8, usesRs1, usesRs2 bool) bool {
	if ex.NOP || !ex.ReadDataMem {
		return false
	}
	loadRd := ex.DestinationRegister
	if loadRd == 0 {
		return false
	}
	if usesRs1 && rs1 == loadRd {
		return true
	}
	if usesRs2 && rs2 == loadRd {
		return true
	}
	return false
}

// StallResult indicates what pipeline actions are needed this cycle.
type StallResult struct {
	// StallIF freezes the PC; the same instruction is fetched again.
	StallIF bool
	// StallID freezes the IF/ID latch.
	StallID bool
	// InsertBubbleEX turns the ID/EX latch produced this cycle into a
	// bubble.
	InsertBubbleEX bool
	// FlushIF squashes the wrong-path fetch after a taken branch or a
	// jump.
	FlushIF bool
}

// ComputeStalls determines the stalling and flushing actions for the
// cycle. A taken branch and a load-use stall cannot both apply to the
// same slot: branches carry no write-back enable, so a branch is either
// stalled (operand not ready) or resolved, never both.
func (h *HazardUnit) ComputeStalls(loadUseHazard, branchTaken bool) StallResult {
	result := StallResult{}
	if loadUseHazard {
		result.StallIF = true
		result.StallID = true
		result.InsertBubbleEX = true
	}
	if branchTaken {
		result.FlushIF = true
	}
	return result
}

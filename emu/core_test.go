package emu_test

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Ameykolhe/RV32ISimulator/emu"
	"github.com/Ameykolhe/RV32ISimulator/insts"
)

// program builds an instruction memory from instruction words.
func program(words ...uint32) *emu.InstructionMem {
	image := make([]byte, 0, len(words)*4)
	for _, word := range words {
		image = binary.BigEndian.AppendUint32(image, word)
	}
	return emu.NewInstructionMem(image)
}

// dataWords builds a data memory image from 32-bit words.
func dataWords(words ...uint32) []byte {
	image := make([]byte, 0, len(words)*4)
	for _, word := range words {
		image = binary.BigEndian.AppendUint32(image, word)
	}
	return image
}

// runCore steps a single-cycle core until it halts.
func runCore(core *emu.SingleCycleCore) {
	for !core.Halted() {
		Expect(core.Step()).To(Succeed())
	}
}

var _ = Describe("SingleCycleCore", func() {
	It("should execute dependent ADDIs", func() {
		core := emu.NewSingleCycleCore(program(
			insts.EncodeI(insts.OpADDI, 1, 0, 5),
			insts.EncodeI(insts.OpADDI, 2, 1, 7),
			insts.HaltWord,
		), emu.NewDataMem(nil))

		runCore(core)

		Expect(core.RegFile().Read(1)).To(Equal(uint32(5)))
		Expect(core.RegFile().Read(2)).To(Equal(uint32(12)))
		Expect(core.Stats().Cycles).To(Equal(uint64(3)))
		Expect(core.Stats().Instructions).To(Equal(uint64(2)))
	})

	It("should execute a load, a dependent add and a store", func() {
		core := emu.NewSingleCycleCore(program(
			insts.EncodeLW(1, 0, 0),
			insts.EncodeR(insts.OpADD, 2, 1, 1),
			insts.EncodeSW(0, 2, 4),
			insts.HaltWord,
		), emu.NewDataMem(dataWords(0x00000003)))

		runCore(core)

		Expect(core.RegFile().Read(1)).To(Equal(uint32(3)))
		Expect(core.RegFile().Read(2)).To(Equal(uint32(6)))
		stored, err := core.DataMem().ReadWord(4)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(Equal(uint32(6)))
	})

	It("should fall through a not-taken branch", func() {
		core := emu.NewSingleCycleCore(program(
			insts.EncodeI(insts.OpADDI, 1, 0, 1),
			insts.EncodeB(insts.OpBEQ, 1, 0, 8),
			insts.EncodeI(insts.OpADDI, 2, 0, 99),
			insts.EncodeI(insts.OpADDI, 3, 0, 7),
			insts.HaltWord,
		), emu.NewDataMem(nil))

		runCore(core)

		Expect(core.RegFile().Read(2)).To(Equal(uint32(99)))
		Expect(core.RegFile().Read(3)).To(Equal(uint32(7)))
	})

	It("should skip the fall-through path of a taken branch", func() {
		core := emu.NewSingleCycleCore(program(
			insts.EncodeI(insts.OpADDI, 1, 0, 0),
			insts.EncodeB(insts.OpBEQ, 1, 0, 8),
			insts.EncodeI(insts.OpADDI, 2, 0, 99),
			insts.EncodeI(insts.OpADDI, 3, 0, 7),
			insts.HaltWord,
		), emu.NewDataMem(nil))

		runCore(core)

		Expect(core.RegFile().Read(2)).To(Equal(uint32(0)))
		Expect(core.RegFile().Read(3)).To(Equal(uint32(7)))
	})

	It("should take BNE when the operands differ", func() {
		core := emu.NewSingleCycleCore(program(
			insts.EncodeI(insts.OpADDI, 1, 0, 1),
			insts.EncodeB(insts.OpBNE, 1, 0, 8),
			insts.EncodeI(insts.OpADDI, 2, 0, 99),
			insts.EncodeI(insts.OpADDI, 3, 0, 7),
			insts.HaltWord,
		), emu.NewDataMem(nil))

		runCore(core)

		Expect(core.RegFile().Read(2)).To(Equal(uint32(0)))
		Expect(core.RegFile().Read(3)).To(Equal(uint32(7)))
	})

	It("should link and jump for JAL", func() {
		core := emu.NewSingleCycleCore(program(
			insts.EncodeJ(1, 8),
			insts.EncodeI(insts.OpADDI, 2, 0, 99),
			insts.EncodeI(insts.OpADDI, 3, 0, 7),
			insts.HaltWord,
		), emu.NewDataMem(nil))

		runCore(core)

		Expect(core.RegFile().Read(1)).To(Equal(uint32(4)))
		Expect(core.RegFile().Read(2)).To(Equal(uint32(0)))
		Expect(core.RegFile().Read(3)).To(Equal(uint32(7)))
	})

	It("should wrap subtraction below zero", func() {
		core := emu.NewSingleCycleCore(program(
			insts.EncodeR(insts.OpSUB, 1, 0, 2),
			insts.HaltWord,
		), emu.NewDataMem(nil))
		core.RegFile().Write(2, 3)

		runCore(core)

		Expect(core.RegFile().Read(1)).To(Equal(uint32(0xFFFFFFFD)))
	})

	It("should discard writebacks to register 0", func() {
		core := emu.NewSingleCycleCore(program(
			insts.EncodeI(insts.OpADDI, 0, 0, 5),
			insts.HaltWord,
		), emu.NewDataMem(nil))

		runCore(core)

		Expect(core.RegFile().Read(0)).To(Equal(uint32(0)))
	})

	It("should treat an undecodable word as a nop and advance the PC", func() {
		core := emu.NewSingleCycleCore(program(
			0x00000037, // LUI, not supported
			insts.EncodeI(insts.OpADDI, 1, 0, 5),
			insts.HaltWord,
		), emu.NewDataMem(nil))

		runCore(core)

		Expect(core.RegFile().Read(1)).To(Equal(uint32(5)))
		Expect(core.Stats().Cycles).To(Equal(uint64(3)))
		Expect(core.Stats().Instructions).To(Equal(uint64(1)))
	})

	It("should freeze the PC on the halt cycle", func() {
		core := emu.NewSingleCycleCore(program(
			insts.EncodeI(insts.OpADDI, 1, 0, 5),
			insts.HaltWord,
		), emu.NewDataMem(nil))

		runCore(core)

		Expect(core.PC()).To(Equal(uint32(4)))
		Expect(core.NOP()).To(BeTrue())
		Expect(core.Halted()).To(BeTrue())
	})

	It("should fail fatally when fetching past the image", func() {
		core := emu.NewSingleCycleCore(program(
			insts.EncodeI(insts.OpADDI, 1, 0, 5),
		), emu.NewDataMem(nil))

		Expect(core.Step()).To(Succeed())
		Expect(core.Step()).To(MatchError(ContainSubstring("out of bound access")))
	})

	It("should fail fatally on a load past the data memory", func() {
		core := emu.NewSingleCycleCore(program(
			insts.EncodeLW(1, 0, 0x7FC),
		), emu.NewDataMem(nil))
		core.RegFile().Write(1, 0)

		err := core.Step()

		Expect(err).To(MatchError(ContainSubstring("out of bound access")))
	})
})

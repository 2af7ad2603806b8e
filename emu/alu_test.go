package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Ameykolhe/RV32ISimulator/emu"
	"github.com/Ameykolhe/RV32ISimulator/insts"
)

var _ = Describe("ALU", func() {
	var alu *emu.ALU

	BeforeEach(func() {
		alu = emu.NewALU()
	})

	It("should add with wraparound", func() {
		Expect(alu.Execute(insts.OpADD, 3, 4)).To(Equal(uint32(7)))
		Expect(alu.Execute(insts.OpADD, 0xFFFFFFFF, 1)).To(Equal(uint32(0)))
	})

	It("should subtract with wraparound", func() {
		Expect(alu.Execute(insts.OpSUB, 10, 4)).To(Equal(uint32(6)))
		// 0 - 3 wraps to 2^32 - 3, i.e. -3 in two's complement.
		Expect(alu.Execute(insts.OpSUB, 0, 3)).To(Equal(uint32(0xFFFFFFFD)))
	})

	It("should apply the bitwise operations", func() {
		Expect(alu.Execute(insts.OpAND, 0b1100, 0b1010)).To(Equal(uint32(0b1000)))
		Expect(alu.Execute(insts.OpOR, 0b1100, 0b1010)).To(Equal(uint32(0b1110)))
		Expect(alu.Execute(insts.OpXOR, 0b1100, 0b1010)).To(Equal(uint32(0b0110)))
	})

	It("should use the add function for the immediate variants", func() {
		Expect(alu.Execute(insts.OpADDI, 5, 7)).To(Equal(uint32(12)))
		Expect(alu.Execute(insts.OpLW, 100, 4)).To(Equal(uint32(104)))
		Expect(alu.Execute(insts.OpSW, 100, 4)).To(Equal(uint32(104)))
	})

	It("should apply the bitwise immediate variants", func() {
		Expect(alu.Execute(insts.OpANDI, 0b1100, 0b1010)).To(Equal(uint32(0b1000)))
		Expect(alu.Execute(insts.OpORI, 0b1100, 0b1010)).To(Equal(uint32(0b1110)))
		Expect(alu.Execute(insts.OpXORI, 0b1100, 0b1010)).To(Equal(uint32(0b0110)))
	})
})

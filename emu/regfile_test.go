package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Ameykolhe/RV32ISimulator/emu"
)

var _ = Describe("RegFile", func() {
	var regFile *emu.RegFile

	BeforeEach(func() {
		regFile = &emu.RegFile{}
	})

	It("should read back written values", func() {
		regFile.Write(5, 0xDEADBEEF)

		Expect(regFile.Read(5)).To(Equal(uint32(0xDEADBEEF)))
	})

	It("should start with all registers zero", func() {
		for reg := uint8(0); reg < 32; reg++ {
			Expect(regFile.Read(reg)).To(Equal(uint32(0)))
		}
	})

	It("should discard writes to register 0", func() {
		regFile.Write(0, 42)

		Expect(regFile.Read(0)).To(Equal(uint32(0)))
	})

	It("should snapshot all 32 registers", func() {
		regFile.Write(1, 10)
		regFile.Write(31, 20)

		snapshot := regFile.Snapshot()

		Expect(snapshot[0]).To(Equal(uint32(0)))
		Expect(snapshot[1]).To(Equal(uint32(10)))
		Expect(snapshot[31]).To(Equal(uint32(20)))
	})
})

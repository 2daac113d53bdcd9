package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

func add(addr uint32, dest, src1, src2 insts.Reg) insts.Instruction {
	return insts.NewRType(addr, "add", insts.RType{Dest: dest, Src1: src1, Src2: src2})
}

func lw(addr uint32, reg insts.Reg, dataAddr uint32) insts.Instruction {
	return insts.NewLoad(addr, insts.Mem{DataAddr: dataAddr, Reg: reg, Base: insts.NoReg})
}

var _ = Describe("ForwardingUnit", func() {
	var fu *pipeline.ForwardingUnit

	BeforeEach(func() {
		fu = pipeline.NewForwardingUnit()
	})

	Describe("Detect", func() {
		Context("when no forwarding is needed", func() {
			It("should return ForwardNone for both operands", func() {
				result := fu.Detect(add(0x400008, 4, 5, 6), add(0x400004, 1, 2, 3), insts.Instruction{})

				Expect(result.Operands).To(Equal([2]pipeline.ForwardSource{
					pipeline.ForwardNone, pipeline.ForwardNone,
				}))
				Expect(result.Count()).To(BeZero())
			})
		})

		It("should forward from ALU", func() {
			result := fu.Detect(add(0x400008, 4, 1, 6), add(0x400004, 1, 2, 3), insts.Instruction{})
			Expect(result.Operands[0]).To(Equal(pipeline.ForwardFromALU))
			Expect(result.Operands[1]).To(Equal(pipeline.ForwardNone))
		})

		It("should forward from MEM", func() {
			result := fu.Detect(add(0x400008, 4, 6, 1), insts.Instruction{}, add(0x400000, 1, 2, 3))
			Expect(result.Operands[1]).To(Equal(pipeline.ForwardFromMEM))
		})

		It("should prefer ALU over MEM for the same register", func() {
			result := fu.Detect(
				add(0x400008, 4, 1, 1),
				add(0x400004, 1, 2, 3),
				add(0x400000, 1, 7, 8),
			)
			Expect(result.Operands).To(Equal([2]pipeline.ForwardSource{
				pipeline.ForwardFromALU, pipeline.ForwardFromALU,
			}))
			Expect(result.Count()).To(Equal(uint64(2)))
		})

		It("should forward a loaded value", func() {
			result := fu.Detect(add(0x400008, 4, 1, 6), lw(0x400004, 1, 0x10000000), insts.Instruction{})
			Expect(result.Operands[0]).To(Equal(pipeline.ForwardFromALU))
		})

		It("should match $0 like any other register", func() {
			result := fu.Detect(add(0x400008, 4, 0, 0), add(0x400004, 0, 2, 3), insts.Instruction{})
			Expect(result.Operands).To(Equal([2]pipeline.ForwardSource{
				pipeline.ForwardFromALU, pipeline.ForwardFromALU,
			}))
		})

		It("should never match a missing operand", func() {
			lui := insts.NewRType(0x400004, "lui", insts.RType{Dest: 1, Src1: insts.NoReg, Src2: insts.NoReg})
			result := fu.Detect(lui, add(0x400000, insts.NoReg, 2, 3), insts.Instruction{})
			Expect(result.Count()).To(BeZero())
		})

		It("should not forward from a store", func() {
			store := insts.NewStore(0x400004, insts.Mem{DataAddr: 0x10000000, Reg: 1, Base: insts.NoReg})
			result := fu.Detect(add(0x400008, 4, 1, 6), store, insts.Instruction{})
			Expect(result.Count()).To(BeZero())
		})

		It("should ignore consumers that are not register-format", func() {
			result := fu.Detect(lw(0x400008, 4, 0x10000000), add(0x400004, 4, 2, 3), insts.Instruction{})
			Expect(result.Count()).To(BeZero())
		})
	})

	Describe("Apply", func() {
		It("should count forwarded operands", func() {
			alu := add(0x400004, 1, 2, 3)
			mem := add(0x400000, 6, 7, 8)

			fu.Apply(add(0x400008, 4, 1, 6), &alu, &mem)
			fu.Apply(add(0x40000c, 5, 1, 9), &alu, &mem)

			Expect(fu.Forwards()).To(Equal(uint64(3)))
		})

		It("should keep producer destinations that match", func() {
			alu := add(0x400004, 1, 2, 3)
			mem := lw(0x400000, 6, 0x10000000)

			fu.Apply(add(0x400008, 4, 1, 6), &alu, &mem)

			d, ok := alu.Dest()
			Expect(ok).To(BeTrue())
			Expect(d).To(Equal(insts.Reg(1)))
			d, ok = mem.Dest()
			Expect(ok).To(BeTrue())
			Expect(d).To(Equal(insts.Reg(6)))
		})

		It("should reset the count", func() {
			alu := add(0x400004, 1, 2, 3)
			mem := insts.Instruction{}
			fu.Apply(add(0x400008, 4, 1, 6), &alu, &mem)

			fu.Reset()

			Expect(fu.Forwards()).To(BeZero())
		})
	})
})

package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/insts"
)

var _ = Describe("Instruction", func() {
	It("should treat the zero value as an empty NOP slot", func() {
		var i insts.Instruction
		Expect(i.Kind).To(Equal(insts.KindNop))
		Expect(i.IsEmpty()).To(BeTrue())
	})

	It("should not be empty when a NOP carries an address", func() {
		Expect(insts.NewNop(0x400000).IsEmpty()).To(BeFalse())
	})

	It("should only expose the payload owned by the kind", func() {
		load := insts.NewLoad(0x400000, insts.Mem{DataAddr: 0x1000, Reg: 8, Base: insts.NoReg})

		_, ok := load.RType()
		Expect(ok).To(BeFalse())
		_, ok = load.Branch()
		Expect(ok).To(BeFalse())

		m, ok := load.Mem()
		Expect(ok).To(BeTrue())
		Expect(m.DataAddr).To(Equal(uint32(0x1000)))
	})

	It("should hide the payload once the kind is rewritten", func() {
		load := insts.NewLoad(0x400000, insts.Mem{DataAddr: 0x1000, Reg: 8})
		load.Kind = insts.KindNop

		_, ok := load.DataAddr()
		Expect(ok).To(BeFalse())
	})

	It("should report destinations for RTYPE and loads only", func() {
		r := insts.NewRType(0x4, "add", insts.RType{Dest: 3, Src1: 1, Src2: 2})
		d, ok := r.Dest()
		Expect(ok).To(BeTrue())
		Expect(d).To(Equal(insts.Reg(3)))

		st := insts.NewStore(0x8, insts.Mem{DataAddr: 0x10, Reg: 4})
		_, ok = st.Dest()
		Expect(ok).To(BeFalse())

		Expect(r.Sources()).To(Equal([]insts.Reg{1, 2}))
		Expect(st.Sources()).To(BeNil())
	})

	It("should rewrite destination bookkeeping", func() {
		r := insts.NewRType(0x4, "add", insts.RType{Dest: 3, Src1: 1, Src2: 2})
		d, _ := r.WithDest(9).Dest()
		Expect(d).To(Equal(insts.Reg(9)))

		j := insts.NewJump(0x8, "jr")
		Expect(j.WithDest(9)).To(Equal(j))
	})

	It("should name kinds with the dump codes", func() {
		Expect(insts.KindSyscall.String()).To(Equal("SYSCALL"))
		Expect(int(insts.KindSyscall)).To(Equal(7))
		Expect(int(insts.KindStore)).To(Equal(3))
	})
})

package pipeline_test

import (
	"github.com/go-logr/logr/funcr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/cache"
	"github.com/sarchlab/pipesim/timing/latency"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// fakeCache answers probes from a fixed set of resident addresses.
type fakeCache struct {
	resident map[uint32]bool
	probes   []uint32
	accesses int
}

func (c *fakeCache) Probe(addr uint32) bool {
	c.probes = append(c.probes, addr)
	return c.resident[addr]
}

func (c *fakeCache) CountAccess() {
	c.accesses++
}

var _ = Describe("Pipeline", func() {
	var (
		dcache *fakeCache
		pipe   *pipeline.Pipeline
	)

	BeforeEach(func() {
		dcache = &fakeCache{resident: map[uint32]bool{}}
		pipe = pipeline.NewPipeline(dcache)
	})

	Describe("NewPipeline", func() {
		It("should start empty with zero statistics", func() {
			Expect(pipe.Empty()).To(BeTrue())
			Expect(pipe.Stats()).To(Equal(pipeline.Statistics{}))
			Expect(pipe.Predictor().Mode()).To(Equal(pipeline.PredictNotTaken))
		})

		It("should accept a prediction mode", func() {
			pipe = pipeline.NewPipeline(dcache, pipeline.WithPredictMode(pipeline.PredictTaken))
			Expect(pipe.Predictor().Mode()).To(Equal(pipeline.PredictTaken))
		})
	})

	Describe("Insert", func() {
		It("should advance one cycle and fill FETCH", func() {
			pipe.Insert(insts.NewNop(0x400000))

			Expect(pipe.Stats().Cycles).To(Equal(uint64(1)))
			Expect(pipe.Slot(pipeline.StageFetch).Addr).To(Equal(uint32(0x400000)))
		})

		It("should move earlier instructions one stage forward", func() {
			pipe.Insert(insts.NewNop(0x400000))
			pipe.Insert(add(0x400004, 1, 2, 3))

			Expect(pipe.Slot(pipeline.StageDecode).Addr).To(Equal(uint32(0x400000)))
			Expect(pipe.Slot(pipeline.StageFetch).Kind).To(Equal(insts.KindRType))
		})

		It("should count data accesses when loads and stores enter", func() {
			pipe.Insert(lw(0x400000, 1, 0x10000000))
			pipe.Insert(insts.NewStore(0x400004, insts.Mem{DataAddr: 0x10000004, Reg: 2, Base: insts.NoReg}))
			pipe.Insert(add(0x400008, 3, 4, 5))

			Expect(dcache.accesses).To(Equal(2))
			Expect(dcache.probes).To(BeEmpty())
		})

		It("should count branches when they enter", func() {
			pipe.Insert(insts.NewBranch(0x400000, insts.Branch{Src1: insts.NoReg, Src2: insts.NoReg}))
			Expect(pipe.Stats().Branches).To(Equal(uint64(1)))
		})
	})

	Describe("Drain", func() {
		It("should retire a single instruction after five more cycles", func() {
			pipe.Insert(insts.NewNop(0x400000))
			pipe.Drain()

			stats := pipe.Stats()
			Expect(stats.Cycles).To(Equal(uint64(6)))
			Expect(stats.Instructions).To(Equal(uint64(1)))
			Expect(pipe.Empty()).To(BeTrue())
		})

		It("should do nothing on an empty pipeline", func() {
			pipe.Drain()
			Expect(pipe.Stats().Cycles).To(BeZero())
		})

		It("should not retire bubbles", func() {
			pipe.Insert(insts.NewNop(0x400000))
			pipe.Stall(3)
			pipe.Insert(insts.NewNop(0x400004))
			pipe.Drain()

			Expect(pipe.Stats().Instructions).To(Equal(uint64(2)))
			Expect(pipe.Stats().Cycles).To(Equal(uint64(10)))
		})
	})

	Describe("Stall", func() {
		It("should add one cycle per stall cycle", func() {
			pipe.Stall(9)
			Expect(pipe.Stats().Cycles).To(Equal(uint64(9)))
			Expect(pipe.Empty()).To(BeTrue())
		})
	})

	Describe("Data cache", func() {
		It("should charge the miss penalty when a load reaches MEM", func() {
			pipe.Insert(lw(0x400000, 1, 0x10000000))
			pipe.Drain()

			stats := pipe.Stats()
			Expect(dcache.probes).To(Equal([]uint32{0x10000000}))
			Expect(stats.DataMisses).To(Equal(uint64(1)))
			Expect(stats.MemStalls).To(Equal(uint64(9)))
			Expect(stats.Cycles).To(Equal(uint64(15)))
		})

		It("should add nothing on a hit", func() {
			dcache.resident[0x10000000] = true

			pipe.Insert(lw(0x400000, 1, 0x10000000))
			pipe.Drain()

			Expect(pipe.Stats().DataHits).To(Equal(uint64(1)))
			Expect(pipe.Stats().Cycles).To(Equal(uint64(6)))
		})

		It("should follow a custom miss delay", func() {
			config := latency.DefaultTimingConfig()
			config.CacheMissDelay = 4
			pipe = pipeline.NewPipeline(dcache,
				pipeline.WithLatencyTable(latency.NewTableWithConfig(config)))

			pipe.Insert(insts.NewStore(0x400000, insts.Mem{DataAddr: 0x10000000, Reg: 1, Base: insts.NoReg}))
			pipe.Drain()

			Expect(pipe.Stats().Cycles).To(Equal(uint64(9)))
		})

		It("should work against the real cache model", func() {
			c, err := cache.New(cache.Config{IndexBits: 1, BlockWords: 1, Associativity: 1})
			Expect(err).NotTo(HaveOccurred())
			pipe = pipeline.NewPipeline(c)

			pipe.Insert(lw(0x400000, 1, 0x10000000))
			pipe.Insert(lw(0x400004, 2, 0x10000000))
			pipe.Drain()

			Expect(c.Stats()).To(Equal(cache.Statistics{Accesses: 2, Hits: 1, Misses: 1}))
			Expect(pipe.Stats().Cycles).To(Equal(uint64(16)))
		})
	})

	Describe("Branches", func() {
		beq := func(addr uint32) insts.Instruction {
			return insts.NewBranch(addr, insts.Branch{Src1: insts.NoReg, Src2: insts.NoReg})
		}

		It("should not penalize a correctly predicted fall-through", func() {
			pipe.Insert(beq(0x400000))
			pipe.Insert(add(0x400004, 1, 2, 3))
			pipe.Drain()

			stats := pipe.Stats()
			Expect(stats.CorrectPredictions).To(Equal(uint64(1)))
			Expect(stats.Mispredictions).To(BeZero())
			Expect(stats.Cycles).To(Equal(uint64(7)))
			Expect(stats.Instructions).To(Equal(uint64(2)))
		})

		It("should squash and charge the penalty on a misprediction", func() {
			pipe.Insert(beq(0x400000))
			pipe.Insert(add(0x400100, 1, 2, 3))
			pipe.Drain()

			stats := pipe.Stats()
			Expect(stats.Mispredictions).To(Equal(uint64(1)))
			Expect(stats.Flushes).To(Equal(uint64(1)))
			Expect(stats.Cycles).To(Equal(uint64(8)))
			Expect(stats.Instructions).To(Equal(uint64(2)))
		})

		It("should predict a taken branch in taken mode", func() {
			pipe = pipeline.NewPipeline(dcache, pipeline.WithPredictMode(pipeline.PredictTaken))

			pipe.Insert(beq(0x400000))
			pipe.Insert(add(0x400100, 1, 2, 3))
			pipe.Drain()

			Expect(pipe.Stats().CorrectPredictions).To(Equal(uint64(1)))
			Expect(pipe.Stats().Cycles).To(Equal(uint64(7)))
		})

		It("should treat an empty FETCH behind a branch as taken", func() {
			pipe.Insert(beq(0x400000))
			pipe.Drain()

			Expect(pipe.Stats().Mispredictions).To(Equal(uint64(1)))
		})

		It("should never resolve more branches than entered", func() {
			for i := uint32(0); i < 20; i++ {
				if i%3 == 0 {
					pipe.Insert(beq(0x400000 + 4*i))
				} else {
					pipe.Insert(add(0x400000+4*i, 1, 2, 3))
				}
			}
			pipe.Drain()

			stats := pipe.Stats()
			Expect(stats.CorrectPredictions + stats.Mispredictions).To(Equal(stats.Branches))
			Expect(stats.CorrectPredictions).To(BeNumerically("<=", stats.Branches))
		})
	})

	Describe("Forwarding", func() {
		It("should forward from the producer directly ahead", func() {
			pipe.Insert(add(0x400000, 1, 2, 3))
			pipe.Insert(add(0x400004, 4, 1, 5))
			pipe.Drain()

			Expect(pipe.Stats().Forwards).To(Equal(uint64(1)))
		})

		It("should forward a load two instructions back", func() {
			dcache.resident[0x10000000] = true

			pipe.Insert(lw(0x400000, 1, 0x10000000))
			pipe.Insert(insts.NewNop(0x400004))
			pipe.Insert(add(0x400008, 4, 1, 1))
			pipe.Drain()

			Expect(pipe.Stats().Forwards).To(Equal(uint64(2)))
		})
	})

	Describe("Statistics", func() {
		It("should report CPI of at least one", func() {
			for i := uint32(0); i < 10; i++ {
				pipe.Insert(add(0x400000+4*i, 1, 2, 3))
			}
			pipe.Drain()

			cpi, ok := pipe.Stats().CPI()
			Expect(ok).To(BeTrue())
			Expect(cpi).To(BeNumerically(">=", 1.0))
			Expect(pipe.Stats().Instructions).To(Equal(uint64(10)))
		})

		It("should leave CPI undefined without instructions", func() {
			_, ok := pipeline.Statistics{Cycles: 4}.CPI()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Snapshot", func() {
		It("should format every stage", func() {
			pipe.Insert(lw(0x400000, 1, 0x10000000))

			Expect(pipe.Snapshot().String()).To(Equal(
				"(cyc: 1) FETCH:\t 2: 0x400000 \tDECODE:\t 0: 0x0 \tALU:\t 0: 0x0 \tMEM:\t 0: 0x0 \tWB:\t 0: 0x0"))
		})

		It("should be a copy", func() {
			pipe.Insert(insts.NewNop(0x400000))
			snap := pipe.Snapshot()
			pipe.Insert(insts.NewNop(0x400004))

			Expect(snap.Slot(pipeline.StageFetch).Addr).To(Equal(uint32(0x400000)))
			Expect(snap.Cycle).To(Equal(uint64(1)))
		})
	})

	Describe("Logging", func() {
		It("should log retirements at V(1)", func() {
			var lines []string
			log := funcr.New(func(prefix, args string) {
				lines = append(lines, args)
			}, funcr.Options{Verbosity: 1})

			pipe = pipeline.NewPipeline(dcache, pipeline.WithLogger(log))
			pipe.Insert(lw(0x400000, 1, 0x10000000))
			pipe.Drain()

			Expect(lines).To(ContainElement(ContainSubstring(`"msg"="data miss"`)))
			Expect(lines).To(ContainElement(ContainSubstring(`"msg"="retired"`)))
		})
	})

	Describe("Reset", func() {
		It("should empty slots and clear statistics", func() {
			pipe.Insert(add(0x400000, 1, 2, 3))
			pipe.Insert(add(0x400004, 4, 1, 5))

			pipe.Reset()

			Expect(pipe.Empty()).To(BeTrue())
			Expect(pipe.Stats()).To(Equal(pipeline.Statistics{}))
		})
	})
})

package pipeline

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/latency"
)

// DataCache is the cache probed by the MEM stage.
type DataCache interface {
	// Probe returns whether addr hits and updates the replacement state.
	Probe(addr uint32) bool
	// CountAccess records one access.
	CountAccess()
}

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated, penalties included.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Branches is the number of branches inserted.
	Branches uint64
	// CorrectPredictions is the number of branches resolved as predicted.
	CorrectPredictions uint64
	// Mispredictions is the number of branches resolved against the
	// prediction.
	Mispredictions uint64
	// DataHits and DataMisses count MEM-stage cache outcomes.
	DataHits   uint64
	DataMisses uint64
	// MemStalls is the number of cycles added by data cache misses.
	MemStalls uint64
	// Flushes is the number of cycles added by misprediction squashes.
	Flushes uint64
	// Forwards is the number of operands resolved by forwarding.
	Forwards uint64
}

// CPI returns the cycles per instruction. The second result is false when no
// instruction has retired.
func (s Statistics) CPI() (float64, bool) {
	if s.Instructions == 0 {
		return 0, false
	}
	return float64(s.Cycles) / float64(s.Instructions), true
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithPredictMode sets the static branch prediction direction.
func WithPredictMode(mode PredictMode) PipelineOption {
	return func(p *Pipeline) {
		p.predictor = NewStaticPredictor(mode)
	}
}

// WithLatencyTable sets the stall penalties.
func WithLatencyTable(table *latency.Table) PipelineOption {
	return func(p *Pipeline) {
		p.latencyTable = table
	}
}

// WithLogger sets the logger used for per-cycle debug output (V(1)).
func WithLogger(log logr.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = log
	}
}

// Pipeline implements an in-order 5-stage pipeline.
// Stages: Fetch -> Decode -> ALU -> Memory -> Writeback
//
// The pipeline advances only when asked to. Each call to AdvanceCycle is one
// cycle; multi-cycle stalls are repeated calls.
type Pipeline struct {
	slots [NumStages]insts.Instruction

	dcache       DataCache
	predictor    *StaticPredictor
	forwarding   *ForwardingUnit
	latencyTable *latency.Table

	log logr.Logger

	stats Statistics
}

// NewPipeline creates a pipeline whose MEM stage probes dcache.
func NewPipeline(dcache DataCache, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		dcache:       dcache,
		predictor:    NewStaticPredictor(PredictNotTaken),
		forwarding:   NewForwardingUnit(),
		latencyTable: latency.NewTable(),
		log:          logr.Discard(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// AdvanceCycle simulates one cycle:
//  1. retire the instruction in WRITEBACK,
//  2. resolve a branch in DECODE against the instruction in FETCH,
//  3. probe the data cache for a load or store in MEM,
//  4. charge the base cycle,
//  5. shift every slot one stage forward,
//  6. forward operands into DECODE,
//  7. empty FETCH.
func (p *Pipeline) AdvanceCycle() {
	p.retire()
	p.resolveBranch()
	p.accessMemory()

	p.stats.Cycles++

	p.shift()
	p.forward()

	p.slots[StageFetch] = insts.Instruction{}
}

// Insert advances one cycle and places inst in the freshly emptied FETCH
// slot. Loads and stores count their data access here, although the probe
// happens when they reach MEM.
func (p *Pipeline) Insert(inst insts.Instruction) {
	p.AdvanceCycle()

	p.slots[StageFetch] = inst

	switch inst.Kind {
	case insts.KindLoad, insts.KindStore:
		p.dcache.CountAccess()
	case insts.KindBranch:
		p.stats.Branches++
	}
}

// Stall advances n cycles without inserting anything.
func (p *Pipeline) Stall(n uint64) {
	for i := uint64(0); i < n; i++ {
		p.AdvanceCycle()
	}
}

// Drain advances until every slot is empty.
func (p *Pipeline) Drain() {
	for !p.Empty() {
		p.AdvanceCycle()
	}
}

// Empty reports whether no slot holds an instruction.
func (p *Pipeline) Empty() bool {
	for _, inst := range p.slots {
		if !inst.IsEmpty() {
			return false
		}
	}
	return true
}

// Slot returns the instruction held by stage s.
func (p *Pipeline) Slot(s Stage) insts.Instruction {
	return p.slots[s]
}

// Snapshot returns a copy of all slots and the current cycle count.
func (p *Pipeline) Snapshot() Snapshot {
	return Snapshot{Cycle: p.stats.Cycles, Slots: p.slots}
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	stats := p.stats
	stats.Forwards = p.forwarding.Forwards()
	return stats
}

// Predictor returns the branch predictor.
func (p *Pipeline) Predictor() *StaticPredictor {
	return p.predictor
}

// Reset empties every slot and clears statistics.
func (p *Pipeline) Reset() {
	p.slots = [NumStages]insts.Instruction{}
	p.stats = Statistics{}
	p.predictor.Reset()
	p.forwarding.Reset()
}

func (p *Pipeline) retire() {
	wb := p.slots[StageWriteback]
	if wb.Addr == 0 {
		return
	}

	p.stats.Instructions++
	p.log.V(1).Info("retired",
		"addr", hex(wb.Addr), "kind", wb.Kind.String(), "cycle", p.stats.Cycles)
}

// resolveBranch compares the instruction fetched after a branch with the
// fall-through address. Anything other than the next sequential address
// means the branch was taken.
func (p *Pipeline) resolveBranch() {
	decode := p.slots[StageDecode]
	if decode.Kind != insts.KindBranch {
		return
	}

	taken := p.slots[StageFetch].Addr != decode.Addr+4

	if p.predictor.Resolve(taken) {
		p.stats.CorrectPredictions++
		return
	}

	p.stats.Mispredictions++

	penalty := p.latencyTable.MispredictPenalty()
	p.stats.Cycles += penalty
	p.stats.Flushes += penalty

	p.log.V(1).Info("branch mispredicted",
		"addr", hex(decode.Addr), "taken", taken, "cycle", p.stats.Cycles)

	p.squashAndShift()
}

// squashAndShift moves DECODE through WRITEBACK one stage forward ahead of
// the regular shift and leaves a bubble in DECODE. An instruction pushed
// into WRITEBACK this way retires immediately.
func (p *Pipeline) squashAndShift() {
	p.slots[StageWriteback] = p.slots[StageMem]
	p.slots[StageMem] = p.slots[StageALU]
	p.slots[StageALU] = p.slots[StageDecode]
	p.slots[StageDecode] = insts.Instruction{}

	p.retire()
}

func (p *Pipeline) accessMemory() {
	mem := p.slots[StageMem]

	addr, ok := mem.DataAddr()
	if !ok {
		return
	}

	if p.dcache.Probe(addr) {
		p.stats.DataHits++
		p.log.V(1).Info("data hit", "addr", hex(addr))
		return
	}

	penalty := p.latencyTable.DataMissPenalty()
	p.stats.DataMisses++
	p.stats.Cycles += penalty
	p.stats.MemStalls += penalty
	p.log.V(1).Info("data miss", "addr", hex(addr))
}

func (p *Pipeline) shift() {
	for s := StageWriteback; s > StageFetch; s-- {
		p.slots[s] = p.slots[s-1]
	}
}

func (p *Pipeline) forward() {
	p.forwarding.Apply(
		p.slots[StageDecode],
		&p.slots[StageALU],
		&p.slots[StageMem],
	)
}

func hex(v uint32) string {
	return fmt.Sprintf("0x%x", v)
}

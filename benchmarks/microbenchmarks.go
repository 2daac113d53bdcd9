package benchmarks

import "github.com/sarchlab/pipesim/insts"

const (
	codeBase = 0x400000
	dataBase = 0x10000000
)

// GetMicrobenchmarks returns the standard set of microbenchmarks.
// Each benchmark targets one characteristic of the timing model.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		loadUse(),
		memorySequential(),
		memoryStrided(),
		branchFallThrough(),
		loopSimulation(),
		functionCalls(),
	}
}

// GetCoreBenchmarks returns a minimal set of 3 core benchmarks for quick validation.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		loopSimulation(),
		memorySequential(),
		dependencyChain(),
	}
}

// 1. Arithmetic Sequential - independent register-format operations
func arithmeticSequential() Benchmark {
	b := NewTraceBuilder(codeBase)
	for i := 0; i < 20; i++ {
		r := insts.Reg(1 + i%5)
		b.Add(r, r+10, r+15)
	}

	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "20 independent adds - no forwarding, only fetch misses",
		Trace:       b.Syscall().Build(),
	}
}

// 2. Dependency Chain - every add reads the previous result
func dependencyChain() Benchmark {
	b := NewTraceBuilder(codeBase)
	for i := 0; i < 20; i++ {
		b.Add(2, 2, 3)
	}

	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent adds ($2 = $2 + $3) - measures forwarding",
		Trace:       b.Syscall().Build(),
	}
}

// 3. Load Use - each load feeds the next add
func loadUse() Benchmark {
	b := NewTraceBuilder(codeBase)
	for i := uint32(0); i < 10; i++ {
		b.Load(8, dataBase+4*i)
		b.Add(9, 8, 8)
	}

	return Benchmark{
		Name:        "load_use",
		Description: "10 load/add pairs - forwarding from loads",
		Trace:       b.Syscall().Build(),
	}
}

// 4. Memory Sequential - consecutive words, cache friendly
func memorySequential() Benchmark {
	b := NewTraceBuilder(codeBase)
	for i := uint32(0); i < 32; i++ {
		b.Load(insts.Reg(8+i%8), dataBase+4*i)
	}

	return Benchmark{
		Name:        "memory_sequential",
		Description: "32 loads of consecutive words - spatial locality",
		Trace:       b.Syscall().Build(),
	}
}

// 5. Memory Strided - every load maps to the same set with a new tag
func memoryStrided() Benchmark {
	b := NewTraceBuilder(codeBase)
	for i := uint32(0); i < 32; i++ {
		b.Load(insts.Reg(8+i%8), dataBase+0x1000*i)
	}

	return Benchmark{
		Name:        "memory_strided",
		Description: "32 loads with a 4KB stride - conflict misses",
		Trace:       b.Syscall().Build(),
	}
}

// 6. Branch Fall-Through - conditional branches that are never taken
func branchFallThrough() Benchmark {
	b := NewTraceBuilder(codeBase)
	for i := 0; i < 10; i++ {
		b.Add(1, 2, 3)
		b.Branch(false, 0)
	}

	return Benchmark{
		Name:        "branch_fall_through",
		Description: "10 untaken branches - static prediction accuracy",
		Trace:       b.Syscall().Build(),
	}
}

// 7. Loop Simulation - a four-instruction body executed ten times
func loopSimulation() Benchmark {
	b := NewTraceBuilder(codeBase)
	for i := uint32(0); i < 10; i++ {
		b.Add(1, 1, 2)
		b.Add(3, 1, 4)
		b.Load(5, dataBase)
		b.Branch(i < 9, codeBase)
	}

	return Benchmark{
		Name:        "loop_simulation",
		Description: "10 iterations of a 4-instruction loop - taken back edges",
		Trace:       b.Syscall().Build(),
	}
}

// 8. Function Calls - jump to a short routine and back
func functionCalls() Benchmark {
	const routine = codeBase + 0x100

	b := NewTraceBuilder(codeBase)
	for i := 0; i < 5; i++ {
		ret := b.PC() + 4
		b.Jump("jal", routine)
		b.Add(4, 4, 5)
		b.Store(4, dataBase+0x40)
		b.Jump("jr", ret)
		b.Add(7, 4, 2)
	}

	return Benchmark{
		Name:        "function_calls",
		Description: "5 calls to a 2-instruction routine - jumps break fetch locality",
		Trace:       b.Syscall().Build(),
	}
}

// TraceBuilder builds an instruction trace in fetch order, tracking the
// address of the next instruction.
type TraceBuilder struct {
	pc    uint32
	trace []insts.Instruction
}

// NewTraceBuilder starts a trace at address start.
func NewTraceBuilder(start uint32) *TraceBuilder {
	return &TraceBuilder{pc: start}
}

// PC returns the address of the next instruction.
func (b *TraceBuilder) PC() uint32 {
	return b.pc
}

func (b *TraceBuilder) emit(inst insts.Instruction, next uint32) *TraceBuilder {
	b.trace = append(b.trace, inst)
	b.pc = next
	return b
}

// Add appends a register-format add.
func (b *TraceBuilder) Add(dest, src1, src2 insts.Reg) *TraceBuilder {
	return b.emit(insts.NewRType(b.pc, "add",
		insts.RType{Dest: dest, Src1: src1, Src2: src2}), b.pc+4)
}

// Load appends a load of dataAddr into reg.
func (b *TraceBuilder) Load(reg insts.Reg, dataAddr uint32) *TraceBuilder {
	return b.emit(insts.NewLoad(b.pc,
		insts.Mem{DataAddr: dataAddr, Reg: reg, Base: insts.NoReg}), b.pc+4)
}

// Store appends a store of reg to dataAddr.
func (b *TraceBuilder) Store(reg insts.Reg, dataAddr uint32) *TraceBuilder {
	return b.emit(insts.NewStore(b.pc,
		insts.Mem{DataAddr: dataAddr, Reg: reg, Base: insts.NoReg}), b.pc+4)
}

// Branch appends a conditional branch. A taken branch continues the trace
// at target.
func (b *TraceBuilder) Branch(taken bool, target uint32) *TraceBuilder {
	next := b.pc + 4
	if taken {
		next = target
	}
	return b.emit(insts.NewBranch(b.pc,
		insts.Branch{Src1: insts.NoReg, Src2: insts.NoReg}), next)
}

// Jump appends an unconditional jump to target.
func (b *TraceBuilder) Jump(mnemonic string, target uint32) *TraceBuilder {
	return b.emit(insts.NewJump(b.pc, mnemonic), target)
}

// Nop appends a nop.
func (b *TraceBuilder) Nop() *TraceBuilder {
	return b.emit(insts.NewNop(b.pc), b.pc+4)
}

// Syscall appends a syscall.
func (b *TraceBuilder) Syscall() *TraceBuilder {
	return b.emit(insts.NewSyscall(b.pc), b.pc+4)
}

// Build returns the trace.
func (b *TraceBuilder) Build() []insts.Instruction {
	return b.trace
}

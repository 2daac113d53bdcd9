package pipeline

import "github.com/sarchlab/pipesim/insts"

// ForwardSource indicates where a forwarded value should come from.
type ForwardSource int

const (
	// ForwardNone means no forwarding needed - use register file value.
	ForwardNone ForwardSource = iota
	// ForwardFromALU means forward from the instruction in the ALU stage.
	ForwardFromALU
	// ForwardFromMEM means forward from the instruction in the MEM stage.
	ForwardFromMEM
)

// ForwardingResult contains forwarding decisions for the two operands of the
// instruction in DECODE.
type ForwardingResult struct {
	// Operands holds the source of operand 1 and operand 2 (or constant).
	Operands [2]ForwardSource
}

// Count returns how many operands are forwarded.
func (r ForwardingResult) Count() uint64 {
	var n uint64
	for _, src := range r.Operands {
		if src != ForwardNone {
			n++
		}
	}
	return n
}

// ForwardingUnit resolves read-after-write dependencies between DECODE and
// the producers in ALU and MEM through bypass paths, without stalling.
type ForwardingUnit struct {
	forwards uint64
}

// NewForwardingUnit creates a new forwarding unit.
func NewForwardingUnit() *ForwardingUnit {
	return &ForwardingUnit{}
}

// Detect determines the forwarding source of each DECODE operand. The ALU
// stage holds the more recent value and takes precedence over MEM.
func (f *ForwardingUnit) Detect(decode, alu, mem insts.Instruction) ForwardingResult {
	result := ForwardingResult{}

	for i, src := range decode.Sources() {
		result.Operands[i] = f.detectForwardForReg(src, alu, mem)
	}

	return result
}

// detectForwardForReg checks if a specific register needs forwarding.
func (f *ForwardingUnit) detectForwardForReg(
	reg insts.Reg,
	alu, mem insts.Instruction,
) ForwardSource {
	// NoReg never matches; $0 matches like any other register.
	if reg < 0 {
		return ForwardNone
	}

	if d, ok := alu.Dest(); ok && d == reg {
		return ForwardFromALU
	}

	if d, ok := mem.Dest(); ok && d == reg {
		return ForwardFromMEM
	}

	return ForwardNone
}

// Apply forwards DECODE's operands. Every producer in ALU or MEM whose
// destination matches an operand has its destination bookkeeping rewritten
// to the operand, marking the value as taken from the bypass path.
func (f *ForwardingUnit) Apply(decode insts.Instruction, alu, mem *insts.Instruction) ForwardingResult {
	result := f.Detect(decode, *alu, *mem)

	for _, src := range decode.Sources() {
		if d, ok := alu.Dest(); ok && d == src {
			*alu = alu.WithDest(src)
		}
		if d, ok := mem.Dest(); ok && d == src {
			*mem = mem.WithDest(src)
		}
	}

	f.forwards += result.Count()

	return result
}

// Forwards returns the number of operands forwarded so far.
func (f *ForwardingUnit) Forwards() uint64 {
	return f.forwards
}

// Reset clears the forward count.
func (f *ForwardingUnit) Reset() {
	f.forwards = 0
}

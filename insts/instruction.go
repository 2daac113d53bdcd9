package insts

// Kind identifies the instruction class of a pipeline slot.
//
// The numeric values are the codes printed in pipeline dumps. Value 6 is
// reserved for a separate JAL class that the timing model folds into KindJump.
type Kind uint8

// Instruction kinds.
const (
	KindNop     Kind = 0
	KindRType   Kind = 1
	KindLoad    Kind = 2
	KindStore   Kind = 3
	KindBranch  Kind = 4
	KindJump    Kind = 5
	KindSyscall Kind = 7
)

// String returns the mnemonic class name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNop:
		return "NOP"
	case KindRType:
		return "RTYPE"
	case KindLoad:
		return "LW"
	case KindStore:
		return "SW"
	case KindBranch:
		return "BRANCH"
	case KindJump:
		return "JUMP"
	case KindSyscall:
		return "SYSCALL"
	default:
		return "UNKNOWN"
	}
}

// Reg is a register number. Negative values mean the register is unknown.
type Reg int

// NoReg marks an operand the trace does not provide, such as the base
// register of a load or the operands of a branch.
const NoReg Reg = -1

// Valid reports whether r names a real register.
func (r Reg) Valid() bool {
	return r >= 0
}

// RType is the payload of register-format instructions.
type RType struct {
	Dest Reg
	Src1 Reg
	// Src2 holds either a register number or the immediate constant.
	Src2 Reg
}

// Mem is the payload of loads and stores. Reg is the destination of a load
// and the source of a store.
type Mem struct {
	DataAddr uint32
	Reg      Reg
	Base     Reg
}

// Branch is the payload of conditional branches.
type Branch struct {
	Src1 Reg
	Src2 Reg
}

// Jump is the payload of the jump family.
type Jump struct {
	Mnemonic string
}

type payload interface {
	isPayload()
}

func (RType) isPayload()  {}
func (Mem) isPayload()    {}
func (Branch) isPayload() {}
func (Jump) isPayload()   {}

// Instruction is one decoded trace record.
//
// The payload is private; the accessors only return it when Kind owns it, so
// a NOP or a mismatched kind never exposes stale operand data.
type Instruction struct {
	Kind     Kind
	Addr     uint32
	Mnemonic string

	payload payload
}

// NewNop creates a no-op at addr. Address 0 denotes an empty slot.
func NewNop(addr uint32) Instruction {
	return Instruction{Kind: KindNop, Addr: addr, Mnemonic: "nop"}
}

// NewRType creates a register-format instruction.
func NewRType(addr uint32, mnemonic string, r RType) Instruction {
	return Instruction{Kind: KindRType, Addr: addr, Mnemonic: mnemonic, payload: r}
}

// NewLoad creates a load word instruction.
func NewLoad(addr uint32, m Mem) Instruction {
	return Instruction{Kind: KindLoad, Addr: addr, Mnemonic: "lw", payload: m}
}

// NewStore creates a store word instruction.
func NewStore(addr uint32, m Mem) Instruction {
	return Instruction{Kind: KindStore, Addr: addr, Mnemonic: "sw", payload: m}
}

// NewBranch creates a conditional branch.
func NewBranch(addr uint32, b Branch) Instruction {
	return Instruction{Kind: KindBranch, Addr: addr, Mnemonic: "beq", payload: b}
}

// NewJump creates a jump of the given mnemonic (j, jr, jal).
func NewJump(addr uint32, mnemonic string) Instruction {
	return Instruction{
		Kind:     KindJump,
		Addr:     addr,
		Mnemonic: mnemonic,
		payload:  Jump{Mnemonic: mnemonic},
	}
}

// NewSyscall creates a syscall instruction.
func NewSyscall(addr uint32) Instruction {
	return Instruction{Kind: KindSyscall, Addr: addr, Mnemonic: "syscall"}
}

// RType returns the register-format payload.
func (i Instruction) RType() (RType, bool) {
	if i.Kind != KindRType {
		return RType{}, false
	}
	r, ok := i.payload.(RType)
	return r, ok
}

// Mem returns the load/store payload.
func (i Instruction) Mem() (Mem, bool) {
	if !i.IsMemory() {
		return Mem{}, false
	}
	m, ok := i.payload.(Mem)
	return m, ok
}

// Branch returns the branch payload.
func (i Instruction) Branch() (Branch, bool) {
	if i.Kind != KindBranch {
		return Branch{}, false
	}
	b, ok := i.payload.(Branch)
	return b, ok
}

// Jump returns the jump payload.
func (i Instruction) Jump() (Jump, bool) {
	if i.Kind != KindJump {
		return Jump{}, false
	}
	j, ok := i.payload.(Jump)
	return j, ok
}

// IsMemory reports whether the instruction accesses the data cache.
func (i Instruction) IsMemory() bool {
	return i.Kind == KindLoad || i.Kind == KindStore
}

// IsEmpty reports whether the slot holds nothing at all.
func (i Instruction) IsEmpty() bool {
	return i.Kind == KindNop && i.Addr == 0
}

// DataAddr returns the data address of a load or store.
func (i Instruction) DataAddr() (uint32, bool) {
	m, ok := i.Mem()
	if !ok {
		return 0, false
	}
	return m.DataAddr, true
}

// Dest returns the register written by the instruction, if any. Only
// register-format instructions and loads produce a value.
func (i Instruction) Dest() (Reg, bool) {
	switch i.Kind {
	case KindRType:
		r, ok := i.RType()
		return r.Dest, ok && r.Dest.Valid()
	case KindLoad:
		m, ok := i.Mem()
		return m.Reg, ok && m.Reg.Valid()
	default:
		return NoReg, false
	}
}

// Sources returns the operand registers read by a register-format
// instruction, in operand order.
func (i Instruction) Sources() []Reg {
	r, ok := i.RType()
	if !ok {
		return nil
	}
	return []Reg{r.Src1, r.Src2}
}

// WithDest returns a copy whose destination register is replaced. It is a
// no-op for kinds without a destination.
func (i Instruction) WithDest(reg Reg) Instruction {
	switch p := i.payload.(type) {
	case RType:
		if i.Kind == KindRType {
			p.Dest = reg
			i.payload = p
		}
	case Mem:
		if i.Kind == KindLoad {
			p.Reg = reg
			i.payload = p
		}
	}
	return i
}

package insts

import (
	"fmt"
	"strconv"
	"strings"
)

// MalformedInputError reports a trace line that cannot be decoded.
type MalformedInputError struct {
	// Line is the 1-based line number when known, 0 otherwise.
	Line     int
	Text     string
	Addr     uint32
	Mnemonic string
	Reason   string
}

func (e *MalformedInputError) Error() string {
	var b strings.Builder

	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}

	switch {
	case e.Mnemonic != "":
		fmt.Fprintf(&b, "malformed instruction (%s) at address 0x%x: %s",
			e.Mnemonic, e.Addr, e.Reason)
	default:
		fmt.Fprintf(&b, "malformed instruction %q: %s", e.Text, e.Reason)
	}

	return b.String()
}

// Decoder turns trace lines into Instructions.
type Decoder struct{}

// NewDecoder creates a new trace decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode parses a single trace line.
//
// Mnemonics are matched by prefix in a fixed order, so "addi" decodes as a
// register-format instruction and any mnemonic starting with "j" decodes as a
// jump. Extra trailing fields are ignored.
func (d *Decoder) Decode(line string) (Instruction, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Instruction{}, &MalformedInputError{
			Text:   line,
			Reason: fmt.Sprintf("expected address and mnemonic, got %d fields", len(fields)),
		}
	}

	addr, err := parseHex(fields[0])
	if err != nil {
		return Instruction{}, &MalformedInputError{
			Text:   line,
			Reason: fmt.Sprintf("bad instruction address %q", fields[0]),
		}
	}

	mnemonic := fields[1]
	malformed := func(reason string) error {
		return &MalformedInputError{
			Text:     line,
			Addr:     addr,
			Mnemonic: mnemonic,
			Reason:   reason,
		}
	}
	need := func(n int) error {
		if len(fields) < n {
			return malformed(fmt.Sprintf("expected %d fields, got %d", n, len(fields)))
		}
		return nil
	}

	switch {
	case hasAnyPrefix(mnemonic, "add", "sll", "ori"):
		if err := need(5); err != nil {
			return Instruction{}, err
		}
		return NewRType(addr, mnemonic, RType{
			Dest: ParseReg(fields[2]),
			Src1: ParseReg(fields[3]),
			Src2: ParseReg(fields[4]),
		}), nil

	case strings.HasPrefix(mnemonic, "lui"):
		if err := need(4); err != nil {
			return Instruction{}, err
		}
		return NewRType(addr, mnemonic, RType{
			Dest: ParseReg(fields[2]),
			Src1: NoReg,
			Src2: NoReg,
		}), nil

	case hasAnyPrefix(mnemonic, "lw", "sw"):
		if err := need(5); err != nil {
			return Instruction{}, err
		}
		dataAddr, err := parseHex(fields[4])
		if err != nil {
			return Instruction{}, malformed(fmt.Sprintf("bad data address %q", fields[4]))
		}
		m := Mem{DataAddr: dataAddr, Reg: ParseReg(fields[2]), Base: NoReg}
		if strings.HasPrefix(mnemonic, "lw") {
			return NewLoad(addr, m), nil
		}
		return NewStore(addr, m), nil

	case strings.HasPrefix(mnemonic, "beq"):
		return NewBranch(addr, Branch{Src1: NoReg, Src2: NoReg}), nil

	case strings.HasPrefix(mnemonic, "j"):
		return NewJump(addr, mnemonic), nil

	case strings.HasPrefix(mnemonic, "syscall"):
		return NewSyscall(addr), nil

	case strings.HasPrefix(mnemonic, "nop"):
		return NewNop(addr), nil
	}

	return Instruction{}, malformed("unknown mnemonic")
}

// ParseReg parses a register operand such as "$8," or a decimal constant.
// Text that is not a number yields 0.
func ParseReg(s string) Reg {
	s = strings.TrimSuffix(s, ",")
	s = strings.TrimPrefix(s, "$")
	return Reg(atoi(s))
}

// atoi parses the leading decimal digits of s, ignoring the rest.
func atoi(s string) int {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return v
}

func parseHex(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

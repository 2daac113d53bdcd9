// Package insts provides the instruction records consumed by the timing model
// and the decoder that produces them from trace lines.
//
// A trace line has the form
//
//	<hex address> <mnemonic> [operands]
//
// and is decoded into an Instruction whose Kind selects which payload is
// present. Only the operands that matter for timing are kept: destination and
// source registers for hazard detection, and the explicit data address of
// loads and stores.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode("400104 lw $8, 0($29) 7fffeff8")
//	addr, _ := inst.DataAddr() // 0x7fffeff8
package insts

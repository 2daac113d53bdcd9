// Package pipeline provides the 5-stage pipeline implementation for timing simulation.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/sarchlab/pipesim/insts"
)

// Stage names one of the pipeline slots.
type Stage int

// Pipeline stages, in program order.
const (
	StageFetch Stage = iota
	StageDecode
	StageALU
	StageMem
	StageWriteback
)

// NumStages is the pipeline depth.
const NumStages = 5

// String returns the stage label used in pipeline dumps.
func (s Stage) String() string {
	switch s {
	case StageFetch:
		return "FETCH"
	case StageDecode:
		return "DECODE"
	case StageALU:
		return "ALU"
	case StageMem:
		return "MEM"
	case StageWriteback:
		return "WB"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Snapshot is a copy of the pipeline slots at a point in time.
type Snapshot struct {
	// Cycle is the pipeline cycle count when the snapshot was taken.
	Cycle uint64
	Slots [NumStages]insts.Instruction
}

// Slot returns the instruction held by stage s.
func (s Snapshot) Slot(stage Stage) insts.Instruction {
	return s.Slots[stage]
}

// String formats the snapshot as a one-line pipeline dump:
//
//	(cyc: 12) FETCH:	 2: 0x400004 	DECODE:	 1: 0x400000 	...	WB:	 0: 0x0
func (s Snapshot) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "(cyc: %d) ", s.Cycle)
	for i, inst := range s.Slots {
		if i > 0 {
			b.WriteString(" \t")
		}
		fmt.Fprintf(&b, "%s:\t %d: 0x%x", Stage(i), int(inst.Kind), inst.Addr)
	}

	return b.String()
}

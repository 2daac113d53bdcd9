// Package latency provides the stall accounting of the timing model.
//
// Every simulated cycle is charged one base cycle by the pipeline. A stall
// of a full CacheMissDelay therefore only adds CacheMissDelay-1 cycles on
// top of the cycle that performs the access.
package latency

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Table turns a TimingConfig into the penalties applied by the pipeline.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// missPenalty is CacheMissDelay less the base cycle of the access itself.
func (t *Table) missPenalty() uint64 {
	if t.config.CacheMissDelay == 0 {
		return 0
	}
	return t.config.CacheMissDelay - 1
}

// FetchMissStall returns how many empty cycles to advance before inserting
// an instruction whose fetch missed. Insertion advances once more.
func (t *Table) FetchMissStall() uint64 {
	return t.missPenalty()
}

// DataMissPenalty returns the cycles added when the MEM stage misses.
func (t *Table) DataMissPenalty() uint64 {
	return t.missPenalty()
}

// MispredictPenalty returns the cycles added by a branch misprediction.
func (t *Table) MispredictPenalty() uint64 {
	return t.config.BranchMispredictPenalty
}

// Freq returns the simulated clock.
func (t *Table) Freq() sim.Freq {
	return sim.Freq(t.config.ClockFrequencyMHz) * sim.MHz
}

// Duration converts a cycle count to simulated time.
func (t *Table) Duration(cycles uint64) sim.VTimeInSec {
	if t.config.ClockFrequencyMHz <= 0 {
		return 0
	}
	return t.Freq().Period() * sim.VTimeInSec(cycles)
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}

package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
)

// Stats holds performance statistics for a run.
type Stats struct {
	CacheAccesses uint64
	CacheHits     uint64
	CacheMisses   uint64
	Evictions     uint64

	Cycles             uint64
	Instructions       uint64
	Branches           uint64
	CorrectPredictions uint64
	Mispredictions     uint64

	// FetchStalls is the number of cycles spent waiting on instruction
	// fetch misses.
	FetchStalls uint64
	// MemStalls is the number of extra cycles charged for data misses.
	MemStalls uint64
	// Flushes is the number of cycles charged for mispredictions.
	Flushes  uint64
	Forwards uint64
}

// Report is the result of a finished run.
type Report struct {
	Config Config
	Stats  Stats
	// SimulatedTime is Cycles at the configured clock.
	SimulatedTime sim.VTimeInSec
}

// MissRate returns misses per access. The second result is false when there
// was no access.
func (r Report) MissRate() (float64, bool) {
	if r.Stats.CacheAccesses == 0 {
		return 0, false
	}
	return float64(r.Stats.CacheMisses) / float64(r.Stats.CacheAccesses), true
}

// CPI returns cycles per retired instruction. The second result is false
// when nothing retired.
func (r Report) CPI() (float64, bool) {
	if r.Stats.Instructions == 0 {
		return 0, false
	}
	return float64(r.Stats.Cycles) / float64(r.Stats.Instructions), true
}

// WriteTo writes the end-of-run summary. Undefined ratios print as n/a.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	fmt.Fprintf(&b, " Cache Performance \n")
	fmt.Fprintf(&b, "\t Number of Cache Accesses is %d \n", r.Stats.CacheAccesses)
	fmt.Fprintf(&b, "\t Number of Cache Misses is %d \n", r.Stats.CacheMisses)
	fmt.Fprintf(&b, "\t Number of Cache Hits is %d \n", r.Stats.CacheHits)
	fmt.Fprintf(&b, "\t Cache Miss Rate is %s \n\n", ratio(r.MissRate()))

	fmt.Fprintf(&b, "Pipeline Performance \n")
	fmt.Fprintf(&b, "\t Total Cycles is %d \n", r.Stats.Cycles)
	fmt.Fprintf(&b, "\t Total Instructions is %d \n", r.Stats.Instructions)
	fmt.Fprintf(&b, "\t Total Branch Instructions is %d \n", r.Stats.Branches)
	fmt.Fprintf(&b, "\t Total Correct Branch Predictions is %d \n", r.Stats.CorrectPredictions)
	fmt.Fprintf(&b, "\t CPI is %s \n", ratio(r.CPI()))
	fmt.Fprintf(&b, "\t Simulated Time is %.9f s \n\n", float64(r.SimulatedTime))

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func ratio(v float64, ok bool) string {
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%f", v)
}

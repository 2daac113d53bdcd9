package core

import "github.com/sarchlab/pipesim/timing/pipeline"

// FetchEvent describes one instruction fetch probe.
type FetchEvent struct {
	Addr  uint32
	Tag   uint32
	Index uint32
	Hit   bool
}

// Observer receives simulation events.
type Observer interface {
	// OnFetch is called after the instruction address is probed and before
	// any miss stall.
	OnFetch(e FetchEvent)
	// OnCycle is called after each instruction is inserted.
	OnCycle(snap pipeline.Snapshot)
}

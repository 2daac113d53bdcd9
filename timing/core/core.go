// Package core provides the per-run simulation context.
// It owns one cache, one timing table and one pipeline, and drives the
// pipeline the way the fetch stage sees the trace: every instruction address
// is probed first, and a miss stalls the pipeline before the instruction is
// inserted.
package core

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/loader"
	"github.com/sarchlab/pipesim/timing/cache"
	"github.com/sarchlab/pipesim/timing/latency"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// Config is the configuration of one simulation run.
type Config struct {
	Cache   cache.Config
	Predict pipeline.PredictMode
	Timing  *latency.TimingConfig
}

// DefaultConfig returns the smallest cache (one set bit, one-word blocks,
// direct mapped), not-taken prediction and default timing.
func DefaultConfig() Config {
	return Config{
		Cache: cache.Config{
			IndexBits:     1,
			BlockWords:    1,
			Associativity: 1,
		},
		Predict: pipeline.PredictNotTaken,
		Timing:  latency.DefaultTimingConfig(),
	}
}

// RecordSource yields decoded trace records until io.EOF.
type RecordSource interface {
	Next() (loader.Record, error)
}

// SimulatorOption is a functional option for configuring the Simulator.
type SimulatorOption func(*Simulator)

// WithObserver registers an observer. Observers are called synchronously in
// registration order.
func WithObserver(o Observer) SimulatorOption {
	return func(s *Simulator) {
		s.observers = append(s.observers, o)
	}
}

// WithLogger sets the debug logger. It is passed on to the pipeline.
func WithLogger(log logr.Logger) SimulatorOption {
	return func(s *Simulator) {
		s.log = log
	}
}

// Simulator is one simulation run. Independent simulators share no state.
type Simulator struct {
	config Config

	cache        *cache.Cache
	latencyTable *latency.Table
	pipe         *pipeline.Pipeline

	observers []Observer
	log       logr.Logger

	fetchStalls uint64
}

// NewSimulator validates config and builds the cache and pipeline. A cache
// over the capacity ceiling is reported as a *cache.ConfigurationError.
func NewSimulator(config Config, opts ...SimulatorOption) (*Simulator, error) {
	if config.Timing == nil {
		config.Timing = latency.DefaultTimingConfig()
	}

	if err := config.Timing.Validate(); err != nil {
		return nil, fmt.Errorf("timing config: %w", err)
	}

	c, err := cache.New(config.Cache)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		config:       config,
		cache:        c,
		latencyTable: latency.NewTableWithConfig(config.Timing),
		log:          logr.Discard(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.pipe = pipeline.NewPipeline(c,
		pipeline.WithPredictMode(config.Predict),
		pipeline.WithLatencyTable(s.latencyTable),
		pipeline.WithLogger(s.log),
	)

	return s, nil
}

// Config returns the run configuration.
func (s *Simulator) Config() Config {
	return s.config
}

// Cache returns the cache shared by instruction fetch and data accesses.
func (s *Simulator) Cache() *cache.Cache {
	return s.cache
}

// Pipeline returns the pipeline.
func (s *Simulator) Pipeline() *pipeline.Pipeline {
	return s.pipe
}

// Issue fetches inst. The instruction address is probed and counted as one
// access; on a miss the pipeline advances FetchMissStall cycles before inst
// is inserted.
func (s *Simulator) Issue(inst insts.Instruction) {
	index, tag := s.cache.Decompose(inst.Addr)

	s.cache.CountAccess()
	hit := s.cache.Probe(inst.Addr)

	s.notifyFetch(FetchEvent{Addr: inst.Addr, Tag: tag, Index: index, Hit: hit})

	if !hit {
		stall := s.latencyTable.FetchMissStall()
		s.fetchStalls += stall
		s.pipe.Stall(stall)
	}

	s.pipe.Insert(inst)

	s.notifyCycle(s.pipe.Snapshot())
}

// Run issues every record of src in order. It stops at the first error,
// leaving the pipeline as it was after the last issued instruction.
func (s *Simulator) Run(src RecordSource) error {
	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		s.log.V(1).Info("issue", "line", rec.Line, "text", rec.Text)
		s.Issue(rec.Inst)
	}
}

// Finalize drains the pipeline and reports the run.
func (s *Simulator) Finalize() Report {
	s.pipe.Drain()

	stats := s.Stats()

	return Report{
		Config:        s.config,
		Stats:         stats,
		SimulatedTime: s.latencyTable.Duration(stats.Cycles),
	}
}

// Stats aggregates cache and pipeline statistics.
func (s *Simulator) Stats() Stats {
	cs := s.cache.Stats()
	ps := s.pipe.Stats()

	return Stats{
		CacheAccesses:      cs.Accesses,
		CacheHits:          cs.Hits,
		CacheMisses:        cs.Misses,
		Evictions:          cs.Evictions,
		Cycles:             ps.Cycles,
		Instructions:       ps.Instructions,
		Branches:           ps.Branches,
		CorrectPredictions: ps.CorrectPredictions,
		Mispredictions:     ps.Mispredictions,
		FetchStalls:        s.fetchStalls,
		MemStalls:          ps.MemStalls,
		Flushes:            ps.Flushes,
		Forwards:           ps.Forwards,
	}
}

// Reset returns the simulator to its freshly built state.
func (s *Simulator) Reset() {
	s.cache.Reset()
	s.pipe.Reset()
	s.fetchStalls = 0
}

func (s *Simulator) notifyFetch(e FetchEvent) {
	for _, o := range s.observers {
		o.OnFetch(e)
	}
}

func (s *Simulator) notifyCycle(snap pipeline.Snapshot) {
	for _, o := range s.observers {
		o.OnCycle(snap)
	}
}

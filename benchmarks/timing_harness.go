// Package benchmarks provides synthetic trace benchmarks for exercising the
// timing model.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/cache"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/latency"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing simulator
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// FetchStalls is cycles spent waiting on instruction fetch misses
	FetchStalls uint64 `json:"fetch_stalls"`

	// MemStalls is stalls due to data misses
	MemStalls uint64 `json:"mem_stalls"`

	// Forwards is the number of operands resolved by forwarding
	Forwards uint64 `json:"forwards"`

	// PipelineFlushes is the number of cycles lost to mispredictions
	PipelineFlushes uint64 `json:"pipeline_flushes"`

	CacheAccesses uint64  `json:"cache_accesses"`
	CacheHits     uint64  `json:"cache_hits"`
	CacheMisses   uint64  `json:"cache_misses"`
	MissRate      float64 `json:"miss_rate"`

	// Branch predictor stats
	Branches              uint64  `json:"branches,omitempty"`
	BranchCorrect         uint64  `json:"branch_correct,omitempty"`
	BranchMispredictions  uint64  `json:"branch_mispredictions,omitempty"`
	BranchAccuracyPercent float64 `json:"branch_accuracy_percent,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark trace.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Trace is the instruction stream in fetch order
	Trace []insts.Instruction
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Cache is the cache geometry every benchmark runs with
	Cache cache.Config

	// Predict is the static branch prediction direction
	Predict pipeline.PredictMode

	// Timing overrides the default timing when set
	Timing *latency.TimingConfig

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration: 16 sets of 4-word
// blocks, 2-way associative.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Cache: cache.Config{
			IndexBits:     4,
			BlockWords:    4,
			Associativity: 2,
		},
		Predict: pipeline.PredictNotTaken,
		Output:  os.Stdout,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results. Every benchmark runs
// on a fresh simulator.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result, err := h.runBenchmark(bench)
		if err != nil {
			return results, fmt.Errorf("benchmark %s: %w", bench.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

func (h *Harness) runBenchmark(bench Benchmark) (BenchmarkResult, error) {
	config := core.DefaultConfig()
	config.Cache = h.config.Cache
	config.Predict = h.config.Predict
	if h.config.Timing != nil {
		config.Timing = h.config.Timing
	}

	sim, err := core.NewSimulator(config)
	if err != nil {
		return BenchmarkResult{}, err
	}

	start := time.Now()
	for _, inst := range bench.Trace {
		sim.Issue(inst)
	}
	report := sim.Finalize()
	wallTime := time.Since(start)

	stats := report.Stats
	result := BenchmarkResult{
		Name:                 bench.Name,
		Description:          bench.Description,
		SimulatedCycles:      stats.Cycles,
		InstructionsRetired:  stats.Instructions,
		FetchStalls:          stats.FetchStalls,
		MemStalls:            stats.MemStalls,
		Forwards:             stats.Forwards,
		PipelineFlushes:      stats.Flushes,
		CacheAccesses:        stats.CacheAccesses,
		CacheHits:            stats.CacheHits,
		CacheMisses:          stats.CacheMisses,
		Branches:             stats.Branches,
		BranchCorrect:        stats.CorrectPredictions,
		BranchMispredictions: stats.Mispredictions,
		WallTime:             wallTime,
	}

	result.CPI, _ = report.CPI()
	result.MissRate, _ = report.MissRate()

	resolved := stats.CorrectPredictions + stats.Mispredictions
	if resolved > 0 {
		result.BranchAccuracyPercent = float64(stats.CorrectPredictions) / float64(resolved) * 100
	}

	return result, nil
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== pipesim Benchmark Results ===")
	_, _ = fmt.Fprintf(h.config.Output, "Cache: index=%d block=%d assoc=%d policy=%s, prediction: %s\n",
		h.config.Cache.IndexBits, h.config.Cache.BlockWords, h.config.Cache.Associativity,
		h.config.Cache.Policy, h.config.Predict)
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Fetch Stalls:         %d\n", r.FetchStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Mem Stalls:           %d\n", r.MemStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Forwards:             %d\n", r.Forwards)
		_, _ = fmt.Fprintf(h.config.Output, "  Pipeline Flushes:     %d\n", r.PipelineFlushes)

		_, _ = fmt.Fprintln(h.config.Output, "  --- Cache ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Accesses:  %d\n", r.CacheAccesses)
		_, _ = fmt.Fprintf(h.config.Output, "  Hits:      %d\n", r.CacheHits)
		_, _ = fmt.Fprintf(h.config.Output, "  Misses:    %d\n", r.CacheMisses)
		_, _ = fmt.Fprintf(h.config.Output, "  Miss Rate: %.3f\n", r.MissRate)

		if r.Branches > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Branch Predictor ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Branches:        %d\n", r.Branches)
			_, _ = fmt.Fprintf(h.config.Output, "  Correct:         %d\n", r.BranchCorrect)
			_, _ = fmt.Fprintf(h.config.Output, "  Mispredictions:  %d\n", r.BranchMispredictions)
			_, _ = fmt.Fprintf(h.config.Output, "  Accuracy:        %.1f%%\n", r.BranchAccuracyPercent)
		}

		if h.config.Verbose {
			_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		}
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,fetch_stalls,mem_stalls,forwards,flushes,accesses,hits,misses,branches,correct")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.FetchStalls,
			r.MemStalls,
			r.Forwards,
			r.PipelineFlushes,
			r.CacheAccesses,
			r.CacheHits,
			r.CacheMisses,
			r.Branches,
			r.BranchCorrect,
		)
	}
}

// PrintJSON outputs benchmark results as an indented JSON array.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

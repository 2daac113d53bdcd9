package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pipesim/loader"
	"github.com/sarchlab/pipesim/recorder"
	"github.com/sarchlab/pipesim/timing/core"
)

type runOptions struct {
	*options

	dump        bool
	quiet       bool
	dbPath      string
	interactive bool
	cpuProfile  string
}

func newRunCmd(opts *options) *cobra.Command {
	ro := &runOptions{options: opts}

	cmd := &cobra.Command{
		Use:   "run [trace]",
		Short: "Simulate a trace and print the performance summary.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ro.run(args)
		},
	}

	cmd.Flags().BoolVar(&ro.dump, "dump", true, "Print the pipeline after every instruction")
	cmd.Flags().BoolVarP(&ro.quiet, "quiet", "q", false, "Print only the summary")
	cmd.Flags().StringVar(&ro.dbPath, "db", "", "Record the run summary in this SQLite database")
	cmd.Flags().BoolVarP(&ro.interactive, "interactive", "i", false,
		"Prompt for the trace, cache geometry and branch prediction")
	cmd.Flags().StringVar(&ro.cpuProfile, "cpuprofile", "", "Write a CPU profile of the simulation to this file")

	return cmd
}

func (ro *runOptions) run(args []string) error {
	var tracePath string

	switch {
	case ro.interactive:
		var err error
		if tracePath, err = ro.prompt(); err != nil {
			return err
		}
	case len(args) == 1:
		tracePath = args[0]
	default:
		return fmt.Errorf("a trace file is required (or use --interactive)")
	}

	config, err := ro.simConfig()
	if err != nil {
		return err
	}

	simOpts := []core.SimulatorOption{core.WithLogger(ro.logger())}
	if !ro.quiet {
		simOpts = append(simOpts, core.WithObserver(&printer{out: ro.out, dump: ro.dump}))
	}

	sim, err := core.NewSimulator(config, simOpts...)
	if err != nil {
		return err
	}

	if !ro.quiet {
		writeBanner(ro.out, sim.Config().Cache)
	}

	trace, err := loader.Open(tracePath)
	if err != nil {
		return err
	}
	defer func() { _ = trace.Close() }()

	stopProfile, err := ro.startProfile()
	if err != nil {
		return err
	}

	err = sim.Run(trace)
	stopProfile()
	if err != nil {
		return err
	}

	report := sim.Finalize()
	if _, err := report.WriteTo(ro.out); err != nil {
		return err
	}

	if ro.dbPath == "" {
		return nil
	}

	return ro.record(tracePath, report)
}

func (ro *runOptions) record(tracePath string, report core.Report) error {
	rec, err := recorder.New(ro.dbPath)
	if err != nil {
		return err
	}

	id, err := rec.Record(tracePath, report)
	if err != nil {
		_ = rec.Close()
		return err
	}

	if err := rec.Close(); err != nil {
		return err
	}

	fmt.Fprintf(ro.out, "Recorded run %s in %s\n", id, ro.dbPath)

	return nil
}

// startProfile starts CPU profiling if requested. The returned function
// stops it.
func (ro *runOptions) startProfile() (func(), error) {
	if ro.cpuProfile == "" {
		return func() {}, nil
	}

	f, err := os.Create(ro.cpuProfile)
	if err != nil {
		return nil, fmt.Errorf("creating CPU profile: %w", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("starting CPU profile: %w", err)
	}

	return func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	}, nil
}

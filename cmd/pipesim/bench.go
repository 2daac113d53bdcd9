package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pipesim/benchmarks"
)

func newBenchCmd(opts *options) *cobra.Command {
	var (
		format string
		quick  bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the built-in microbenchmark traces.",
		Long: `bench runs synthetic traces that each stress one part of the ` +
			`timing model (forwarding, data locality, branch prediction, ` +
			`fetch locality) with the configured cache and prediction mode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.bench(format, quick)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text|csv|json")
	cmd.Flags().BoolVar(&quick, "quick", false, "Run only the core benchmarks")

	return cmd
}

func (o *options) bench(format string, quick bool) error {
	simConfig, err := o.simConfig()
	if err != nil {
		return err
	}

	config := benchmarks.HarnessConfig{
		Cache:   simConfig.Cache,
		Predict: simConfig.Predict,
		Timing:  simConfig.Timing,
		Output:  o.out,
		Verbose: o.verbose,
	}

	harness := benchmarks.NewHarness(config)
	if quick {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	results, err := harness.RunAll()
	if err != nil {
		return err
	}

	switch format {
	case "text":
		harness.PrintResults(results)
	case "csv":
		harness.PrintCSV(results)
	case "json":
		return harness.PrintJSON(results)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	return nil
}

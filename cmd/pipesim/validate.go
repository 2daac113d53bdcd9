package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/loader"
)

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <trace>",
		Short: "Check the cache configuration and decode a trace without simulating it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate(args[0])
		},
	}
}

func (o *options) validate(tracePath string) error {
	config, err := o.simConfig()
	if err != nil {
		return err
	}

	if err := config.Cache.Validate(); err != nil {
		return err
	}

	trace, err := loader.Open(tracePath)
	if err != nil {
		return err
	}
	defer func() { _ = trace.Close() }()

	counts := make(map[insts.Kind]int)
	total := 0

	for {
		rec, err := trace.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		counts[rec.Inst.Kind]++
		total++
	}

	fmt.Fprintf(o.out, "%s: %d instructions, cache size %d bits\n",
		tracePath, total, config.Cache.SizeBits())

	kinds := []insts.Kind{
		insts.KindRType, insts.KindLoad, insts.KindStore, insts.KindBranch,
		insts.KindJump, insts.KindSyscall, insts.KindNop,
	}
	for _, k := range kinds {
		if counts[k] > 0 {
			fmt.Fprintf(o.out, "  %-8s %d\n", k, counts[k])
		}
	}

	return nil
}

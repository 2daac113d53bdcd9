package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pipesim/recorder"
	"github.com/sarchlab/pipesim/timing/core"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs recorded with run --db.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.history(dbPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "pipesim.db", "SQLite database written by run --db")

	return cmd
}

func (o *options) history(dbPath string) error {
	// Listing must not leave an empty database behind.
	if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(o.out, "No runs recorded in %s.\n", dbPath)
		return nil
	}

	rec, err := recorder.New(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = rec.Close() }()

	runs, err := rec.Runs()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(o.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTRACE\tCACHE\tPREDICT\tCYCLES\tINSTS\tCPI")

	for _, e := range runs {
		report := core.Report{Stats: e.Stats}
		cpi := "n/a"
		if v, ok := report.CPI(); ok {
			cpi = fmt.Sprintf("%.3f", v)
		}

		fmt.Fprintf(w, "%s\t%s\t%d/%d/%d %s\t%s\t%d\t%d\t%s\n",
			e.ID, e.Trace,
			e.Cache.IndexBits, e.Cache.BlockWords, e.Cache.Associativity, e.Cache.Policy,
			e.Predict, e.Stats.Cycles, e.Stats.Instructions, cpi)
	}

	return w.Flush()
}

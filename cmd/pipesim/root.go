package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sarchlab/pipesim/timing/cache"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/latency"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// options holds the values of the persistent flags.
type options struct {
	indexBits     int
	blockWords    int
	associativity int
	predict       string
	policy        string
	configPath    string
	envFile       string
	verbose       bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// envDefaults maps flags to the environment variables that supply their
// defaults.
var envDefaults = []struct {
	flag string
	env  string
}{
	{"index", "PIPESIM_INDEX"},
	{"block", "PIPESIM_BLOCK"},
	{"assoc", "PIPESIM_ASSOC"},
	{"predict", "PIPESIM_PREDICT"},
	{"policy", "PIPESIM_POLICY"},
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &options{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "pipesim",
		Short: "Cycle estimator for a five-stage in-order pipeline.",
		Long: `pipesim replays an instruction trace through a five-stage ` +
			`in-order pipeline with a unified set-associative cache and ` +
			`reports cache and pipeline performance.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.loadEnv(cmd)
		},
	}

	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.IntVar(&opts.indexBits, "index", 1, "Number of cache index bits")
	flags.IntVar(&opts.blockWords, "block", 1, "Cache block size in words")
	flags.IntVar(&opts.associativity, "assoc", 1, "Cache associativity")
	flags.StringVar(&opts.predict, "predict", "not-taken",
		"Static branch prediction: taken|not-taken (or 1|0)")
	flags.StringVar(&opts.policy, "policy", "legacy",
		"Cache replacement policy: legacy|lru")
	flags.StringVar(&opts.configPath, "config", "",
		"Path to timing configuration file (YAML or JSON)")
	flags.StringVar(&opts.envFile, "env-file", ".env",
		"File with PIPESIM_* environment defaults")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging to stderr")

	root.AddCommand(
		newRunCmd(opts),
		newValidateCmd(opts),
		newHistoryCmd(opts),
		newBenchCmd(opts),
	)

	return root
}

// loadEnv reads the env file, if present, and applies PIPESIM_* variables
// to flags that were not given on the command line.
func (o *options) loadEnv(cmd *cobra.Command) error {
	if o.envFile != "" {
		err := godotenv.Load(o.envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", o.envFile, err)
		}
	}

	for _, d := range envDefaults {
		flag := cmd.Flags().Lookup(d.flag)
		if flag == nil || flag.Changed {
			continue
		}

		v, ok := os.LookupEnv(d.env)
		if !ok {
			continue
		}

		if err := flag.Value.Set(v); err != nil {
			return fmt.Errorf("%s=%q: %w", d.env, v, err)
		}
	}

	return nil
}

func (o *options) cacheConfig() (cache.Config, error) {
	policy, err := cache.ParsePolicy(o.policy)
	if err != nil {
		return cache.Config{}, err
	}

	return cache.Config{
		IndexBits:     o.indexBits,
		BlockWords:    o.blockWords,
		Associativity: o.associativity,
		Policy:        policy,
	}, nil
}

func (o *options) simConfig() (core.Config, error) {
	config := core.DefaultConfig()

	c, err := o.cacheConfig()
	if err != nil {
		return config, err
	}
	config.Cache = c

	config.Predict, err = pipeline.ParsePredictMode(o.predict)
	if err != nil {
		return config, err
	}

	if o.configPath != "" {
		config.Timing, err = latency.LoadConfig(o.configPath)
		if err != nil {
			return config, fmt.Errorf("loading timing config: %w", err)
		}
	}

	return config, nil
}

func (o *options) logger() logr.Logger {
	if !o.verbose {
		return logr.Discard()
	}

	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(o.errOut, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(o.errOut, args)
	}, funcr.Options{Verbosity: 1})
}

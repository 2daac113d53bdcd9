// Package main provides the entry point for pipesim.
// pipesim estimates the cycle count of an instruction trace on a five-stage
// in-order pipeline with a set-associative cache.
package main

import (
	"os"

	"github.com/tebeka/atexit"
)

func main() {
	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)

	if err := root.Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

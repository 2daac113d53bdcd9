// Package main provides the entry point for pipesim.
// pipesim is a cycle estimator for a five-stage in-order pipeline with a
// unified set-associative cache.
//
// For the full CLI, use: go run ./cmd/pipesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("pipesim - five-stage pipeline and cache cycle estimator")
	fmt.Println("")
	fmt.Println("Usage: pipesim <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run <trace>       Simulate a trace and print the summary")
	fmt.Println("  validate <trace>  Decode a trace and check the cache configuration")
	fmt.Println("  bench             Run the built-in microbenchmarks")
	fmt.Println("  history           List runs recorded with run --db")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  --index     Cache index bits")
	fmt.Println("  --block     Block size in words")
	fmt.Println("  --assoc     Associativity")
	fmt.Println("  --predict   Static branch prediction (taken|not-taken)")
	fmt.Println("  --policy    Replacement policy (legacy|lru)")
	fmt.Println("  --config    Path to timing configuration file")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/pipesim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/pipesim' instead.")
	}
}

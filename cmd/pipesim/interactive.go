package main

import (
	"bufio"
	"fmt"
	"strconv"
)

// prompt asks for the trace file, the cache geometry and the prediction
// mode on the command's input, overriding the flag values.
func (o *options) prompt() (string, error) {
	scanner := bufio.NewScanner(o.in)
	scanner.Split(bufio.ScanWords)

	next := func(what string) (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("missing %s", what)
		}
		return scanner.Text(), nil
	}

	nextInt := func(what string) (int, error) {
		s, err := next(what)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("bad %s %q", what, s)
		}
		return v, nil
	}

	fmt.Fprint(o.out, "Please enter the tracefile: ")
	tracePath, err := next("trace file")
	if err != nil {
		return "", err
	}

	fmt.Fprint(o.out, "Enter Cache Size (index), Blocksize and Level of Assoc \n")
	if o.indexBits, err = nextInt("index"); err != nil {
		return "", err
	}
	if o.blockWords, err = nextInt("block size"); err != nil {
		return "", err
	}
	if o.associativity, err = nextInt("associativity"); err != nil {
		return "", err
	}

	fmt.Fprint(o.out, "Enter Branch Prediction: 0 (NOT taken), 1 (TAKEN): ")
	if o.predict, err = next("branch prediction"); err != nil {
		return "", err
	}
	fmt.Fprintln(o.out)

	return tracePath, nil
}

package main

import (
	"fmt"
	"io"

	"github.com/sarchlab/pipesim/timing/cache"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// printer writes the per-fetch trace and the per-cycle pipeline dump.
type printer struct {
	out  io.Writer
	dump bool
}

func (p *printer) OnFetch(e core.FetchEvent) {
	fmt.Fprintf(p.out, "Address %x: Tag= %x, Index= %x\n", e.Addr, e.Tag, e.Index)

	if e.Hit {
		fmt.Fprintf(p.out, "INST HIT:\t Address 0x%x \n", e.Addr)
		return
	}
	fmt.Fprintf(p.out, "INST MISS:\t Address 0x%x \n", e.Addr)
}

func (p *printer) OnCycle(snap pipeline.Snapshot) {
	if !p.dump {
		return
	}
	fmt.Fprintf(p.out, "%s \n", snap)
}

func writeBanner(w io.Writer, c cache.Config) {
	fmt.Fprintf(w, "Cache Configuration \n")
	fmt.Fprintf(w, "   Index: %d bits or %d lines \n", c.IndexBits, c.NumSets())
	fmt.Fprintf(w, "   BlockSize: %d \n", c.BlockWords)
	fmt.Fprintf(w, "   Associativity: %d \n", c.Associativity)
	fmt.Fprintf(w, "   BlockOffSetBits: %d \n", c.OffsetBits())
	fmt.Fprintf(w, "   CacheSize: %d \n", c.SizeBits())
	fmt.Fprintf(w, "   Replacement: %s \n", c.Policy)
}

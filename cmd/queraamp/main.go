package main

import (
	"flag"
	"fmt"
	"log"
	"math/big"
	"runtime"
	"time"

	"queraharvard/amplitude"
	"queraharvard/harvard"
	"queraharvard/outersum"
	"queraharvard/prof"
	"queraharvard/runid"
	"queraharvard/slice"
	"queraharvard/symmetry"
)

var dedupeTracker = symmetry.NewTracker()

func main() {
	k := flag.Int("k", -1, "hypercube dimension (0 <= k <= 5), required")
	s := flag.Uint64("s", 0, "target output bitstring")
	workers := flag.Int("workers", runtime.NumCPU(), "worker goroutines; 1 forces the serial driver")
	dedupe := flag.Bool("dedupe", false, "route s through the symmetry dedup helper before computing")
	fingerprint := flag.Bool("fingerprint", false, "print a SHAKE-256 fingerprint of this run")
	flag.Parse()

	if *k < 0 {
		log.Fatal("queraamp: -k is required")
	}
	if *k > harvard.MaxK {
		log.Fatalf("queraamp: k=%d exceeds the kernel's limit (k <= %d, i.e. n <= 64)", *k, harvard.MaxK)
	}
	if *workers < 1 {
		log.Fatal("queraamp: -workers must be >= 1")
	}

	if *dedupe {
		if orbit := dedupeTracker.Observe(*s); orbit == 0 {
			fmt.Printf("s=%d: already seen (same orbit as an earlier query)\n", *s)
		} else {
			fmt.Printf("s=%d: new query, orbit size %d\n", *s, orbit)
		}
	}

	buildStart := time.Now()
	poly, layout, err := harvard.Build(*k)
	if err != nil {
		log.Fatalf("queraamp: building circuit: %v", err)
	}
	prof.Track(buildStart, "build")

	sliceStart := time.Now()
	tables, sR, err := slice.Build(poly, layout, *s)
	if err != nil {
		log.Fatalf("queraamp: slicing circuit: %v", err)
	}
	prof.Track(sliceStart, "slice")

	sumStart := time.Now()
	sum := outersum.Parallel(tables, sR, layout.NumNodes, *workers)
	prof.Track(sumStart, "outer-sum")

	rat := sum.Rat()
	sign, p, ok := amplitude.Normalize(rat)

	fmt.Printf("Qubits=%d\n", layout.NumQubit)
	fmt.Printf("output string s=%d\n", *s)
	if !ok {
		f := new(big.Float).SetPrec(200).SetRat(rat)
		fmt.Printf("output amplitude=%s = %s\n", rat.RatString(), f.Text('g', 20))
	} else if sign == 0 {
		fmt.Printf("output amplitude=0\n")
	} else {
		f := new(big.Float).SetPrec(200).SetRat(rat)
		fmt.Printf("output amplitude=%s = %s\n", ratFormString(sign, p), f.Text('g', 20))
	}

	if *fingerprint {
		fmt.Printf("fingerprint=%s\n", runid.Fingerprint(*k, *s, tables.P1, tables.P2))
	}

	for _, e := range prof.SnapshotAndReset() {
		fmt.Printf("Time measured (%s): %.6f seconds.\n", e.Label, e.Dur.Seconds())
	}
}

func ratFormString(sign, p int) string {
	if sign < 0 {
		return fmt.Sprintf("-1/2^%d", p)
	}
	return fmt.Sprintf("1/2^%d", p)
}

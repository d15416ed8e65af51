package main

import (
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"queraharvard/harvard"
	"queraharvard/outersum"
	"queraharvard/runid"
	"queraharvard/slice"
)

func main() {
	k := flag.Int("k", -1, "hypercube dimension (0 <= k <= 5), required")
	sList := flag.String("s-list", "", "comma-separated list of target bitstrings to sweep")
	sCount := flag.Int("s-count", 0, "sweep s = 0..s-count-1 instead of -s-list")
	workers := flag.Int("workers", 4, "worker goroutines per amplitude; 1 forces the serial driver")
	outPath := flag.String("out", "ampsweep.html", "output HTML report path")
	flag.Parse()

	if *k < 0 || *k > harvard.MaxK {
		log.Fatalf("ampsweep: -k must be in [0, %d]", harvard.MaxK)
	}

	targets, err := parseTargets(*sList, *sCount)
	if err != nil {
		log.Fatalf("ampsweep: %v", err)
	}
	if len(targets) == 0 {
		log.Fatal("ampsweep: no targets: pass -s-list or -s-count")
	}

	poly, layout, err := harvard.Build(*k)
	if err != nil {
		log.Fatalf("ampsweep: building circuit: %v", err)
	}

	type point struct {
		s      uint64
		approx float64
		exact  string
		tag    string
	}
	points := make([]point, 0, len(targets))
	for _, s := range targets {
		tables, sR, err := slice.Build(poly, layout, s)
		if err != nil {
			log.Fatalf("ampsweep: slicing for s=%d: %v", s, err)
		}
		sum := outersum.Parallel(tables, sR, layout.NumNodes, *workers)
		rat := sum.Rat()
		f := new(big.Float).SetPrec(53).SetRat(rat)
		approx, _ := f.Float64()
		points = append(points, point{
			s:      s,
			approx: approx,
			exact:  rat.RatString(),
			tag:    runid.Fingerprint(*k, s, tables.P1, tables.P2),
		})
	}

	page := components.NewPage().SetPageTitle("QuEra-Harvard amplitude sweep")

	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Amplitude vs. output string",
			Subtitle: fmt.Sprintf("k=%d, %d qubits", *k, layout.NumQubit),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "s", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "amplitude", Type: "value"}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside"},
			opts.DataZoom{Type: "slider"},
		),
	)

	items := make([]opts.ScatterData, 0, len(points))
	for _, p := range points {
		items = append(items, opts.ScatterData{
			Value: []interface{}{p.s, p.approx},
			Name:  fmt.Sprintf("s=%d exact=%s id=%s", p.s, p.exact, p.tag),
		})
	}
	sc.AddSeries("amplitude", items)
	page.AddCharts(sc)

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("ampsweep: creating %s: %v", *outPath, err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("ampsweep: rendering report: %v", err)
	}
	fmt.Printf("wrote %s (%d points)\n", *outPath, len(points))
}

func parseTargets(sList string, sCount int) ([]uint64, error) {
	if sList != "" {
		parts := strings.Split(sList, ",")
		out := make([]uint64, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid -s-list entry %q: %w", part, err)
			}
			out = append(out, v)
		}
		return out, nil
	}
	if sCount <= 0 {
		return nil, nil
	}
	out := make([]uint64, sCount)
	for i := range out {
		out[i] = uint64(i)
	}
	return out, nil
}

// Command genmock writes a synthetic NOAA CPC SOI report for local runs and
// fixtures. Output is deterministic for a given seed, so the generated file
// can be committed and diffed. It uses the ETL domain formatter to ensure the
// rows match what the pipeline parses.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out raw_input_data/enso.txt \
//	  -from 1951 -to 2024 -seed 42 -trailing-missing 3
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/couchcryptid/climate-index-etl/internal/domain"
)

const monthHeader = "YEAR   JAN   FEB   MAR   APR   MAY   JUN   JUL   AUG   SEP   OCT   NOV   DEC"

type options struct {
	out             string
	from            int
	to              int
	seed            uint64
	trailingMissing int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var opts options
	flag.StringVar(&opts.out, "out", "", "output path for the generated report")
	flag.IntVar(&opts.from, "from", 1951, "first year (the extractor requires 1951)")
	flag.IntVar(&opts.to, "to", 2024, "last year")
	flag.Uint64Var(&opts.seed, "seed", 42, "random seed")
	flag.IntVar(&opts.trailingMissing, "trailing-missing", 3, "months at the end of the last year written as -999.9")
	flag.Parse()

	if opts.out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if opts.to < opts.from {
		return fmt.Errorf("-to %d is before -from %d", opts.to, opts.from)
	}
	if opts.trailingMissing < 0 || opts.trailingMissing > 12 {
		return fmt.Errorf("-trailing-missing must be between 0 and 12")
	}

	anomaly := generate(opts)

	if err := os.MkdirAll(filepath.Dir(opts.out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(opts.out)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	writeSection(w, []string{
		" SOUTHERN OSCILLATION INDEX",
		" (STAND TAHITI - STAND DARWIN) SEA LEVEL PRESS",
		" ANOMALY",
		"",
		monthHeader,
	}, anomaly, opts.from, 1)
	writeSection(w, []string{
		"",
		" " + domain.EndMarker + "    DATA",
		" (STAND TAHITI - STAND DARWIN) SEA LEVEL PRESS",
		monthHeader,
	}, anomaly, opts.from, 0.6)
	if err := w.Flush(); err != nil {
		return err
	}

	log.Printf("wrote %d years (%d-%d) to %s", len(anomaly), opts.from, opts.to, opts.out)
	return nil
}

// generate produces one row of monthly values per year as a bounded random
// walk in tenths, mimicking the persistence of the real index.
func generate(opts options) [][12]*float64 {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x5ca1ab1e))
	years := opts.to - opts.from + 1
	rows := make([][12]*float64, years)

	tenths := 0
	for y := range rows {
		for m := range 12 {
			if y == years-1 && m >= 12-opts.trailingMissing {
				continue
			}
			tenths += rng.IntN(9) - 4
			tenths = max(-35, min(35, tenths))
			v := float64(tenths) / 10
			rows[y][m] = &v
		}
	}
	return rows
}

func writeSection(w *bufio.Writer, header []string, rows [][12]*float64, from int, scale float64) {
	for _, line := range header {
		fmt.Fprintln(w, line)
	}
	for i, row := range rows {
		var scaled [12]*float64
		for m, v := range row {
			if v == nil {
				continue
			}
			s := math.Round(*v*scale*10) / 10
			if s == 0 {
				s = 0 // avoid writing -0.0
			}
			scaled[m] = &s
		}
		fmt.Fprintln(w, domain.FormatReportRow(from+i, scaled))
	}
}

// Command genmock writes a deterministic mock mobility CSV for local runs of
// the service and CLI. Location codes are deliberately written in mixed forms
// ("FIPS:6001", "6001", "06001") so the output exercises normalization, and the
// generated weeks skip one Monday per location to leave gaps in the series.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/mobility_weekly.csv \
//	  -start 2024-01-01 -weeks 12
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/flu-mobility-etl/internal/domain"
)

// countiesPerState is how many synthetic counties (001, 003, ...) each target state gets.
const countiesPerState = 3

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the mock mobility CSV")
	start := flag.String("start", "2024-01-01", "first week (a Monday, YYYY-MM-DD)")
	weeks := flag.Int("weeks", 12, "number of weekly buckets")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	first, err := time.Parse(time.DateOnly, *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}
	if first.Weekday() != time.Monday {
		return fmt.Errorf("-start %s is a %s, want a Monday", *start, first.Weekday())
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := generate(f, first, *weeks, rand.New(rand.NewPCG(*seed, *seed)))
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	log.Printf("wrote %d mobility records to %s", n, *out)
	return nil
}

func generate(w io.Writer, first time.Time, weeks int, rng *rand.Rand) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{domain.ColOriginFIPS, domain.ColDestFIPS, domain.ColWeek, domain.ColVisits}); err != nil {
		return 0, err
	}

	rows := 0
	for _, abbr := range domain.TargetStates() {
		stateFIPS, err := domain.AbbrToFIPS(abbr)
		if err != nil {
			return rows, err
		}
		counties := make([]int, countiesPerState)
		for i := range counties {
			counties[i] = stateFIPS*1000 + 2*i + 1
		}

		for _, dest := range counties {
			gap := rng.IntN(weeks)
			for wk := range weeks {
				if wk == gap {
					continue
				}
				week := first.AddDate(0, 0, 7*wk).Format(time.DateOnly)
				for _, origin := range counties {
					visits := 50 + rng.IntN(950)
					if origin == dest {
						visits *= 4
					}
					rec := []string{messyCode(origin, rng), messyCode(dest, rng), week, strconv.Itoa(visits)}
					if err := cw.Write(rec); err != nil {
						return rows, err
					}
					rows++
				}
			}
		}
	}

	cw.Flush()
	return rows, cw.Error()
}

// messyCode renders a county code in one of the textual forms seen in raw feeds.
func messyCode(code int, rng *rand.Rand) string {
	switch rng.IntN(3) {
	case 0:
		return fmt.Sprintf("FIPS:%d", code)
	case 1:
		return strconv.Itoa(code)
	default:
		return fmt.Sprintf("%05d", code)
	}
}

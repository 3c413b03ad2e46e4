// Command inflows prints one location's weekly mobility inflow series as CSV.
// It materializes the state FIPS map cache first, the same way the service
// does, so notebooks and scripts can rely on it afterwards.
//
// Usage:
//
//	go run ./cmd/inflows \
//	  -cache-root cache \
//	  -mobility "mobility df/weekly_od.csv" \
//	  -fips 06037
//
// Pass -all to print the aggregated (week, dest_fips) table instead of a
// single series.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/flu-mobility-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/flu-mobility-etl/internal/domain"
)

func main() {
	cacheRoot := flag.String("cache-root", "cache", "directory holding config/state_fips_map.csv")
	mobility := flag.String("mobility", "", "path to the mobility CSV (origin_fips, dest_fips, week, visits)")
	fips := flag.String("fips", "", "destination location code, any form containing its digits")
	all := flag.Bool("all", false, "print every (week, dest_fips) inflow row instead of one series")
	flag.Parse()

	if *mobility == "" || (*fips == "" && !*all) {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(os.Stdout, logger, *cacheRoot, *mobility, *fips, *all); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, logger *slog.Logger, cacheRoot, mobilityPath, fips string, all bool) error {
	if _, err := csvfile.EnsureStateFIPSMap(cacheRoot, logger); err != nil {
		return err
	}

	table, err := csvfile.LoadMobility(mobilityPath)
	if err != nil {
		return err
	}
	rows, err := domain.InflowsByWeek(table)
	if err != nil {
		return err
	}
	if all {
		return csvfile.WriteInflows(out, rows)
	}

	code, ok := domain.NormalizeFIPS(fips)
	if !ok {
		return fmt.Errorf("location code %q has no digits", fips)
	}
	series, err := domain.SeriesForLocation(rows, code)
	if err != nil {
		return err
	}
	summary := domain.Summarize(series)
	logger.Info("inflow series", "dest_fips", code, "weeks", summary.Weeks, "observed", summary.Observed, "mean", summary.Mean)
	return csvfile.WriteSeries(out, series)
}

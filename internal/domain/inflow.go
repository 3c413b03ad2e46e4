package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrSchema is returned when a mobility table lacks a column an operation needs.
var ErrSchema = errors.New("schema validation failed")

// weekLayouts are the accepted textual forms of a weekly bucket, tried in order.
var weekLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// InflowsByWeek sums visits per (week, dest_fips), counting every origin
// including the destination itself. Records with a missing week or destination
// are not grouped; records with missing visits add nothing to their group.
// Rows are ordered by week, then destination.
func InflowsByWeek(t MobilityTable) ([]InflowRow, error) {
	if !t.HasColumn(ColWeek) {
		return nil, fmt.Errorf("%w: mobility table must include a 'week' column (weekly date)", ErrSchema)
	}
	for _, col := range []string{ColDestFIPS, ColVisits} {
		if !t.HasColumn(col) {
			return nil, fmt.Errorf("%w: mobility table must include a '%s' column", ErrSchema, col)
		}
	}

	type groupKey struct{ week, dest string }
	totals := make(map[groupKey]float64)
	for _, rec := range t.Records {
		week := strings.TrimSpace(rec.Week)
		if week == "" || rec.DestFIPS == "" {
			continue
		}
		k := groupKey{week: week, dest: rec.DestFIPS}
		sum := totals[k]
		if rec.HasVisits {
			sum += rec.Visits
		}
		totals[k] = sum
	}

	rows := make([]InflowRow, 0, len(totals))
	for k, total := range totals {
		rows = append(rows, InflowRow{Week: k.week, DestFIPS: k.dest, TotalInflow: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Week != rows[j].Week {
			return rows[i].Week < rows[j].Week
		}
		return rows[i].DestFIPS < rows[j].DestFIPS
	})
	return rows, nil
}

// SeriesForLocation extracts one destination's inflows as a weekly series on a
// Monday grid spanning the first Monday on or after its earliest week through
// its latest week. Weeks without an observation are left nil, and observations
// that do not fall on a Monday have no slot. A destination with no rows yields
// an empty series.
func SeriesForLocation(inflows []InflowRow, fips string) (WeeklySeries, error) {
	series := WeeklySeries{DestFIPS: fips, Points: []SeriesPoint{}}

	byWeek := make(map[time.Time]float64)
	var first, last time.Time
	for _, row := range inflows {
		if row.DestFIPS != fips {
			continue
		}
		week, err := ParseWeek(row.Week)
		if err != nil {
			return WeeklySeries{}, err
		}
		if _, dup := byWeek[week]; dup {
			return WeeklySeries{}, fmt.Errorf("series for %s: duplicate week %s", fips, week.Format(time.DateOnly))
		}
		byWeek[week] = row.TotalInflow
		if first.IsZero() || week.Before(first) {
			first = week
		}
		if week.After(last) {
			last = week
		}
	}
	if len(byWeek) == 0 {
		return series, nil
	}

	for week := onOrAfterMonday(first); !week.After(last); week = week.AddDate(0, 0, 7) {
		point := SeriesPoint{Week: week}
		if v, ok := byWeek[week]; ok {
			point.Inflow = &v
		}
		series.Points = append(series.Points, point)
	}
	return series, nil
}

// ParseWeek parses a weekly bucket value and truncates it to its UTC calendar date.
func ParseWeek(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range weekLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse week %q: unrecognized date format", s)
}

func onOrAfterMonday(t time.Time) time.Time {
	offset := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, offset)
}

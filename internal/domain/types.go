package domain

import (
	"slices"
	"time"
)

// Column names recognized in mobility tables.
const (
	ColOriginFIPS = "origin_fips"
	ColDestFIPS   = "dest_fips"
	ColWeek       = "week"
	ColVisits     = "visits"
)

// MobilityRecord is one origin/destination visit count for a weekly bucket.
// An empty OriginFIPS or DestFIPS means the code is missing, either because the
// column is absent or because the raw value had no digits.
type MobilityRecord struct {
	OriginFIPS string
	DestFIPS   string
	Week       string
	Visits     float64
	HasVisits  bool

	// Extra holds any columns beyond the four recognized ones, keyed by header.
	Extra map[string]string
}

// MobilityTable is a parsed mobility dataset. Columns lists the headers present
// in the source in their original order.
type MobilityTable struct {
	Columns []string
	Records []MobilityRecord
}

// HasColumn reports whether the source table carried the named column.
func (t MobilityTable) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// InflowRow is the total inbound visit count for one destination and week.
type InflowRow struct {
	Week        string  `json:"week"`
	DestFIPS    string  `json:"dest_fips"`
	TotalInflow float64 `json:"total_inflow"`
}

// SeriesPoint is one slot of a weekly series. A nil Inflow marks a week with no
// observation.
type SeriesPoint struct {
	Week   time.Time `json:"week"`
	Inflow *float64  `json:"total_inflow"`
}

// WeeklySeries is a destination's inflow laid onto a Monday-anchored weekly grid.
type WeeklySeries struct {
	DestFIPS string        `json:"dest_fips"`
	Points   []SeriesPoint `json:"points"`
}

// Len returns the number of grid slots, observed or not.
func (s WeeklySeries) Len() int { return len(s.Points) }

// Observed returns the number of slots carrying a value.
func (s WeeklySeries) Observed() int {
	n := 0
	for _, p := range s.Points {
		if p.Inflow != nil {
			n++
		}
	}
	return n
}

// InflowSnapshot is the result of one aggregation run.
type InflowSnapshot struct {
	RunID       string      `json:"run_id"`
	Source      string      `json:"source"`
	GeneratedAt time.Time   `json:"generated_at"`
	Rows        []InflowRow `json:"rows"`
}

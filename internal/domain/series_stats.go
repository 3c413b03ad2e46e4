package domain

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SeriesSummary describes the observed values of a weekly series.
type SeriesSummary struct {
	Weeks    int     `json:"weeks"`
	Observed int     `json:"observed"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Summarize computes summary statistics over the non-missing points of s.
// Statistics are zero when fewer observations exist than they need.
func Summarize(s WeeklySeries) SeriesSummary {
	values := make([]float64, 0, len(s.Points))
	for _, p := range s.Points {
		if p.Inflow != nil {
			values = append(values, *p.Inflow)
		}
	}

	summary := SeriesSummary{Weeks: len(s.Points), Observed: len(values)}
	if len(values) == 0 {
		return summary
	}
	summary.Min = floats.Min(values)
	summary.Max = floats.Max(values)
	if len(values) == 1 {
		summary.Mean = values[0]
		return summary
	}
	summary.Mean, summary.StdDev = stat.MeanStdDev(values, nil)
	return summary
}

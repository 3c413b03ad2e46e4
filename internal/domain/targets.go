package domain

import (
	"fmt"
	"slices"
)

// Forecast run configuration shared by downstream stages.
var (
	seasons = []int{2019, 2020, 2021, 2022, 2023, 2024, 2025}

	targetStates = []string{
		"PA", "TX", "CA", "NY", "FL", "IL", "GA", "NC", "OH", "MI",
		"VA", "WA", "MA", "AZ", "NJ", "CO", "TN", "MN", "MO", "IN",
	}

	defaultTrendsTerms = []string{
		"flu", "influenza", "flu symptoms", "fever", "cough",
		"tamiflu", "oseltamivir", "sore throat", "body aches",
		"flu shot", "flu vaccine", "flu clinic",
	}
)

// Seasons returns the flu season start years covered by forecast runs.
func Seasons() []int { return slices.Clone(seasons) }

// TargetStates returns the abbreviations of the states forecasts are run for.
func TargetStates() []string { return slices.Clone(targetStates) }

// DefaultTrendsTerms returns the search terms used as ARGOX predictors.
func DefaultTrendsTerms() []string { return slices.Clone(defaultTrendsTerms) }

// TrendsGeo returns the Google Trends geo code for a target state, e.g.
// "US-PA". States outside TargetStates have no geo code.
func TrendsGeo(abbr string) (string, error) {
	fips, err := AbbrToFIPS(abbr)
	if err != nil {
		return "", err
	}
	canonical := fipsToAbbr[fips]
	if !slices.Contains(targetStates, canonical) {
		return "", fmt.Errorf("%w: %s is not a target state", ErrUnknownLocation, canonical)
	}
	return "US-" + canonical, nil
}

package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownLocation is returned when an abbreviation or FIPS code is not one
// of the 51 known state codes.
var ErrUnknownLocation = errors.New("unknown location")

// State pairs a canonical abbreviation with its FIPS code.
type State struct {
	FIPS int    `json:"state_fips"`
	Abbr string `json:"state_abbr"`
}

var (
	abbrToFIPS = map[string]int{
		"AL": 1, "AK": 2, "AZ": 4, "AR": 5, "CA": 6, "CO": 8, "CT": 9, "DE": 10, "DC": 11,
		"FL": 12, "GA": 13, "HI": 15, "ID": 16, "IL": 17, "IN": 18, "IA": 19, "KS": 20, "KY": 21,
		"LA": 22, "ME": 23, "MD": 24, "MA": 25, "MI": 26, "MN": 27, "MS": 28, "MO": 29, "MT": 30,
		"NE": 31, "NV": 32, "NH": 33, "NJ": 34, "NM": 35, "NY": 36, "NC": 37, "ND": 38, "OH": 39,
		"OK": 40, "OR": 41, "PA": 42, "RI": 44, "SC": 45, "SD": 46, "TN": 47, "TX": 48, "UT": 49,
		"VT": 50, "VA": 51, "WA": 53, "WV": 54, "WI": 55, "WY": 56,
	}

	fipsToAbbr = invert(abbrToFIPS)

	// states is the canonical table sorted by FIPS ascending.
	states = sortedStates(fipsToAbbr)
)

func invert(m map[string]int) map[int]string {
	out := make(map[int]string, len(m))
	for abbr, fips := range m {
		if prev, dup := out[fips]; dup {
			panic(fmt.Sprintf("domain: FIPS %d assigned to both %s and %s", fips, prev, abbr))
		}
		out[fips] = abbr
	}
	return out
}

func sortedStates(m map[int]string) []State {
	out := make([]State, 0, len(m))
	for fips, abbr := range m {
		out = append(out, State{FIPS: fips, Abbr: abbr})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FIPS < out[j].FIPS })
	return out
}

// States returns a copy of the canonical state table, sorted by FIPS code.
func States() []State {
	out := make([]State, len(states))
	copy(out, states)
	return out
}

// AbbrToFIPS returns the integer FIPS code for a two-letter abbreviation.
// Matching is case-insensitive.
func AbbrToFIPS(abbr string) (int, error) {
	fips, ok := abbrToFIPS[strings.ToUpper(abbr)]
	if !ok {
		return 0, fmt.Errorf("%w: abbreviation %q", ErrUnknownLocation, abbr)
	}
	return fips, nil
}

// FIPSToAbbr returns the canonical upper-case abbreviation for a FIPS code.
func FIPSToAbbr(fips int) (string, error) {
	abbr, ok := fipsToAbbr[fips]
	if !ok {
		return "", fmt.Errorf("%w: fips %d", ErrUnknownLocation, fips)
	}
	return abbr, nil
}

// ParseStateFIPS coerces a textual FIPS code ("6", "06") to an integer and
// verifies it is a known state.
func ParseStateFIPS(s string) (int, error) {
	fips, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: fips %q", ErrUnknownLocation, s)
	}
	if _, err := FIPSToAbbr(fips); err != nil {
		return 0, err
	}
	return fips, nil
}

// ResolveState accepts either an abbreviation or a FIPS code and returns both
// representations.
func ResolveState(code string) (string, int, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", 0, fmt.Errorf("%w: empty code", ErrUnknownLocation)
	}
	if code[0] >= '0' && code[0] <= '9' {
		fips, err := ParseStateFIPS(code)
		if err != nil {
			return "", 0, err
		}
		return fipsToAbbr[fips], fips, nil
	}
	fips, err := AbbrToFIPS(code)
	if err != nil {
		return "", 0, err
	}
	return strings.ToUpper(code), fips, nil
}

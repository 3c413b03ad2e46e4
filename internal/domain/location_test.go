package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStates_CanonicalTable(t *testing.T) {
	table := States()
	require.Len(t, table, 51)

	for i := 1; i < len(table); i++ {
		assert.Less(t, table[i-1].FIPS, table[i].FIPS, "table must be sorted by FIPS")
	}
	assert.Equal(t, State{FIPS: 1, Abbr: "AL"}, table[0])
	assert.Equal(t, State{FIPS: 56, Abbr: "WY"}, table[len(table)-1])

	// Callers get a copy.
	table[0].Abbr = "XX"
	assert.Equal(t, "AL", States()[0].Abbr)
}

func TestAbbrToFIPS_RoundTrip(t *testing.T) {
	for _, s := range States() {
		for _, input := range []string{s.Abbr, strings.ToLower(s.Abbr)} {
			fips, err := AbbrToFIPS(input)
			require.NoError(t, err)
			abbr, err := FIPSToAbbr(fips)
			require.NoError(t, err)
			assert.Equal(t, strings.ToUpper(input), abbr)
		}
	}
}

func TestFIPSToAbbr_RoundTrip(t *testing.T) {
	for _, s := range States() {
		abbr, err := FIPSToAbbr(s.FIPS)
		require.NoError(t, err)
		fips, err := AbbrToFIPS(abbr)
		require.NoError(t, err)
		assert.Equal(t, s.FIPS, fips)
	}
}

func TestAbbrToFIPS(t *testing.T) {
	tests := []struct {
		name     string
		abbr     string
		expected int
	}{
		{"upper case", "PA", 42},
		{"lower case", "ca", 6},
		{"mixed case", "Tx", 48},
		{"district of columbia", "DC", 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fips, err := AbbrToFIPS(tt.abbr)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, fips)
		})
	}
}

func TestAbbrToFIPS_Unknown(t *testing.T) {
	for _, abbr := range []string{"", "PR", "GU", "XX", "PAA", " PA"} {
		_, err := AbbrToFIPS(abbr)
		require.Error(t, err, abbr)
		assert.ErrorIs(t, err, ErrUnknownLocation)
	}
}

func TestFIPSToAbbr_Unknown(t *testing.T) {
	for _, fips := range []int{0, 3, 7, 14, 43, 52, 57, 72, -1} {
		_, err := FIPSToAbbr(fips)
		require.Error(t, err, fips)
		assert.ErrorIs(t, err, ErrUnknownLocation)
	}
}

func TestParseStateFIPS(t *testing.T) {
	fips, err := ParseStateFIPS("06")
	require.NoError(t, err)
	assert.Equal(t, 6, fips)

	fips, err = ParseStateFIPS(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, fips)

	_, err = ParseStateFIPS("72")
	assert.ErrorIs(t, err, ErrUnknownLocation)

	_, err = ParseStateFIPS("six")
	assert.ErrorIs(t, err, ErrUnknownLocation)
}

func TestResolveState(t *testing.T) {
	tests := []struct {
		code string
		abbr string
		fips int
	}{
		{"pa", "PA", 42},
		{"42", "PA", 42},
		{"06", "CA", 6},
		{"dc", "DC", 11},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			abbr, fips, err := ResolveState(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.abbr, abbr)
			assert.Equal(t, tt.fips, fips)
		})
	}

	for _, code := range []string{"", "ZZ", "99"} {
		_, _, err := ResolveState(code)
		assert.ErrorIs(t, err, ErrUnknownLocation, code)
	}
}

func TestTargets(t *testing.T) {
	assert.Len(t, TargetStates(), 20)
	assert.Equal(t, []int{2019, 2020, 2021, 2022, 2023, 2024, 2025}, Seasons())
	assert.Contains(t, DefaultTrendsTerms(), "influenza")

	for _, abbr := range TargetStates() {
		_, err := AbbrToFIPS(abbr)
		require.NoError(t, err, "target state %s must be a known state", abbr)
	}

	geo, err := TrendsGeo("pa")
	require.NoError(t, err)
	assert.Equal(t, "US-PA", geo)

	_, err = TrendsGeo("PR")
	assert.ErrorIs(t, err, ErrUnknownLocation)

	// Valid state, but not one forecasts run for.
	_, err = TrendsGeo("AK")
	assert.ErrorIs(t, err, ErrUnknownLocation)

	for _, abbr := range TargetStates() {
		geo, err := TrendsGeo(abbr)
		require.NoError(t, err)
		assert.Equal(t, "US-"+abbr, geo)
	}
}

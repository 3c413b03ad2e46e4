// Package domain models location identity and human-mobility inflows for the
// ARGOX + SEIR–EAKF influenza forecasting pipeline.
//
// # Location Identity
//
// US states are identified two ways throughout the pipeline:
//
//	Abbreviation: two-letter USPS code, e.g. "PA". Input is case-insensitive;
//	              the canonical form is upper case.
//	FIPS code:    integer Federal Information Processing Standard state code,
//	              e.g. 42 for Pennsylvania.
//
// The mapping covers the 50 states plus the District of Columbia (51 entries)
// and is a bijection. It is built once at package initialization and never
// mutated. See [AbbrToFIPS] and [FIPSToAbbr].
//
// # Mobility Data Conventions
//
// Mobility tables are origin/destination visit counts per week:
//
//	origin_fips, dest_fips, week, visits
//	"FIPS:6037", "06037",   2024-01-01, 10
//
// Location columns arrive in varied textual forms ("6037", "FIPS:6037",
// "06037.0"). They are normalized by taking the first run of decimal digits
// and zero-padding it to five characters, the county GEOID width:
//
//	"FIPS:6037" → "06037"
//	"06037"     → "06037" (already canonical, unchanged)
//	"n/a"       → missing (no digits; the record keeps an empty code)
//
// # Inflows
//
// A destination's weekly inflow is the sum of visits over every origin,
// including the destination itself. Self-loops count because residents moving
// within their own area are still present there for transmission purposes.
//
// Weekly series are laid onto a Monday-anchored grid. Weeks with no
// observation stay missing; fill policy belongs to the consumer.
package domain

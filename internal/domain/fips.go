package domain

import "regexp"

// CountyFIPSWidth is the width of a normalized location code.
const CountyFIPSWidth = 5

// digitRunRe matches the first maximal run of decimal digits.
var digitRunRe = regexp.MustCompile(`[0-9]+`)

// NormalizeFIPS extracts the first run of digits from raw and left-pads it with
// zeros to CountyFIPSWidth. It reports false when raw contains no digits, in
// which case the code is missing. Runs longer than the width are returned as-is.
func NormalizeFIPS(raw string) (string, bool) {
	digits := digitRunRe.FindString(raw)
	if digits == "" {
		return "", false
	}
	return zfill(digits, CountyFIPSWidth), true
}

func zfill(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := make([]byte, width-len(s))
	for i := range pad {
		pad[i] = '0'
	}
	return string(pad) + s
}

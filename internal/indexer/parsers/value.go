package parsers

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedValue is a raw scalar split into its numeric parts.
// Number and Unit are nil unless Raw is <sign?><digits><.digits?><unit?>.
type ParsedValue struct {
	Raw    string
	Number *float64
	Unit   *string
}

// Known units. Anything else (hex colors, font stacks) stays raw.
var valuePattern = regexp.MustCompile(`^([+-]?\d+(?:\.\d+)?)(rem|px|em|%|vh|vw)?$`)

// ParseValue parses strings like "16px", "1.5rem" or "100%". It never fails:
// input that does not match simply yields Raw only.
func ParseValue(raw string) ParsedValue {
	pv := ParsedValue{Raw: raw}

	m := valuePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return pv
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return pv
	}
	pv.Number = &n
	if m[2] != "" {
		unit := m[2]
		pv.Unit = &unit
	}
	return pv
}

// formatNumber renders a float without trailing zeros (4, 0.25, 160).
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

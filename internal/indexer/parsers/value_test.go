package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for ParseValue:
// - Numbers with each known unit are split into number + unit
// - Unit-less numbers carry a number and no unit
// - Signed and decimal numbers parse
// - Hex colors, keywords and unknown units stay raw-only

func TestParseValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		number *float64
		unit   string
	}{
		{"16px", ptrFloat(16), "px"},
		{"1rem", ptrFloat(1), "rem"},
		{"0.25rem", ptrFloat(0.25), "rem"},
		{"1.5em", ptrFloat(1.5), "em"},
		{"50%", ptrFloat(50), "%"},
		{"100vh", ptrFloat(100), "vh"},
		{"-2px", ptrFloat(-2), "px"},
		{"400", ptrFloat(400), ""},
		{"#ff0000", nil, ""},
		{"#78be20", nil, ""},
		{"bold", nil, ""},
		{"12pt", nil, ""},
		{"", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseValue(tt.raw)
			assert.Equal(t, tt.raw, got.Raw)
			if tt.number == nil {
				assert.Nil(t, got.Number)
				assert.Nil(t, got.Unit)
				return
			}
			require.NotNil(t, got.Number)
			assert.InDelta(t, *tt.number, *got.Number, 1e-9)
			if tt.unit == "" {
				assert.Nil(t, got.Unit)
			} else {
				require.NotNil(t, got.Unit)
				assert.Equal(t, tt.unit, *got.Unit)
			}
		})
	}
}

func TestParseValue_ExactShape(t *testing.T) {
	t.Parallel()

	px := "px"
	sixteen := 16.0
	assert.Equal(t, ParsedValue{Raw: "16px", Number: &sixteen, Unit: &px}, ParseValue("16px"))
	assert.Equal(t, ParsedValue{Raw: "#ff0000"}, ParseValue("#ff0000"))
}

func ptrFloat(f float64) *float64 { return &f }

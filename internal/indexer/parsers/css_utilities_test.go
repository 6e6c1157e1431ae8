package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
)

// Test Plan for CSS utilities:
// - Six utilities, two layout and four utility
// - Margin and padding have 7 sides x 17 sizes = 119 unique classes
// - Flexy enumerates breakpoint variants for every fraction and modifier
// - Generation is idempotent
// - Every utility carries 1-3 examples

func utilityByName(t *testing.T, utils []extraction.CSSUtility, name string) extraction.CSSUtility {
	t.Helper()
	for _, u := range utils {
		if u.Name == name {
			return u
		}
	}
	require.Failf(t, "utility not found", "%s", name)
	return extraction.CSSUtility{}
}

func unique(classes []string) map[string]bool {
	set := make(map[string]bool, len(classes))
	for _, c := range classes {
		set[c] = true
	}
	return set
}

func TestExtractCSSUtilities_Catalog(t *testing.T) {
	t.Parallel()

	utils := ExtractCSSUtilities(DefaultUtilityTables())
	require.Len(t, utils, 6)

	layout := 0
	for _, u := range utils {
		if u.Category == extraction.UtilityLayout {
			layout++
		}
		assert.NotEmpty(t, u.Classes, u.Name)
		assert.GreaterOrEqual(t, len(u.Examples), 1, u.Name)
		assert.LessOrEqual(t, len(u.Examples), 3, u.Name)
		assert.Len(t, unique(u.Classes), len(u.Classes), u.Name)
	}
	assert.Equal(t, 2, layout)
}

func TestExtractCSSUtilities_Margin(t *testing.T) {
	t.Parallel()

	margin := utilityByName(t, ExtractCSSUtilities(DefaultUtilityTables()), "Margin")
	assert.Len(t, margin.Classes, 119)
	assert.Len(t, unique(margin.Classes), 119)

	set := unique(margin.Classes)
	assert.True(t, set["mu-m-100"])
	assert.True(t, set["mu-m-025"])
	assert.True(t, set["mu-m-1000"])
	assert.True(t, set["mu-m-t-100"])
	assert.True(t, set["mu-m-h-050"])
	assert.False(t, set["mu-m-all-100"])

	padding := utilityByName(t, ExtractCSSUtilities(DefaultUtilityTables()), "Padding")
	assert.Len(t, padding.Classes, 119)
	assert.Contains(t, padding.Classes, "mu-p-b-200")
}

func TestExtractCSSUtilities_Flexy(t *testing.T) {
	t.Parallel()

	tables := DefaultUtilityTables()
	flexy := utilityByName(t, ExtractCSSUtilities(tables), "Flexy")

	responsive := len(tables.GridModifiers) + len(tables.Fractions) + len(tables.ColumnModifiers)
	assert.Len(t, flexy.Classes, 2+responsive*(len(tables.Breakpoints)+1))
	assert.Contains(t, flexy.Classes, "ml-flexy__col--1of3@from-l")
	assert.Contains(t, flexy.Classes, "ml-flexy--gutter")
	assert.Equal(t, extraction.UtilityLayout, flexy.Category)
}

func TestExtractCSSUtilities_Idempotent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ExtractCSSUtilities(DefaultUtilityTables()), ExtractCSSUtilities(DefaultUtilityTables()))
}

func TestExtractCSSUtilities_CustomTables(t *testing.T) {
	t.Parallel()

	tables := DefaultUtilityTables()
	tables.Sizes = []string{"100", "200"}
	tables.Ratios = []string{"1x1"}

	utils := ExtractCSSUtilities(tables)
	assert.Len(t, utilityByName(t, utils, "Margin").Classes, 14)
	assert.Equal(t, []string{"mu-ratio-1x1"}, utilityByName(t, utils, "Ratio").Classes)
	assert.Equal(t, []string{"mu-scroll-y"}, utilityByName(t, utils, "Scroll").Classes)
}

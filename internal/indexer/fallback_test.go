package indexer

// Test Plan for the bundled dataset:
// - The embedded defaults decode without unknown keys
// - Tokens cover every non-spacing category plus the generated spacing scale
// - Components get slugs and inferred categories, sorted by name
// - Documentation goes through the regular page parser
// - Icons come from the bundled registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
	"github.com/mvp-joe/dsindex/internal/indexer/parsers"
)

func loadFallback(t *testing.T) *Fallback {
	t.Helper()
	f, err := LoadFallback(nil)
	require.NoError(t, err)
	return f
}

func TestFallback_Tokens(t *testing.T) {
	t.Parallel()

	tokens := loadFallback(t).Tokens()

	byCategory := make(map[string]int)
	paths := make(map[string]extraction.Token)
	for _, tok := range tokens {
		byCategory[tok.Category]++
		paths[tok.Path] = tok
	}
	for _, category := range extraction.TokenCategories {
		assert.Positive(t, byCategory[category], "category %s", category)
	}
	assert.Equal(t, len(parsers.SpacingMultipliers), byCategory[extraction.CategorySpacing])

	primary, ok := paths["color.primary-01.100"]
	require.True(t, ok)
	assert.Equal(t, "#78be20", primary.ValueRaw)
	assert.Equal(t, "Primary brand green", extraction.Deref(primary.Description))

	width, ok := paths["border.width.1"]
	require.True(t, ok)
	assert.Equal(t, "1px", width.ValueRaw)

	columns, ok := paths["grid.columns"]
	require.True(t, ok)
	assert.Equal(t, "12", columns.ValueRaw)

	raised, ok := paths["shadow.raised"]
	require.True(t, ok)
	assert.NotEmpty(t, raised.Properties)
}

func TestFallback_Components(t *testing.T) {
	t.Parallel()

	comps := loadFallback(t).Components()
	require.Len(t, comps, 3)

	assert.Equal(t, "Button", comps[0].Name)
	assert.Equal(t, "button", comps[0].Slug)
	assert.Equal(t, extraction.ComponentAction, comps[0].Category)
	assert.Equal(t, []string{"vue", "react"}, comps[0].Frameworks)
	require.Len(t, comps[0].Props, 3)
	assert.Equal(t, []string{"solid", "bordered", "bordered-neutral"}, comps[0].Props[0].Options)
	assert.Equal(t, "click", comps[0].Events[0].Name)

	assert.Equal(t, "Notification", comps[1].Name)
	assert.Equal(t, extraction.ComponentFeedback, comps[1].Category)
	require.Len(t, comps[1].Slots, 2)

	assert.Equal(t, "TextInput", comps[2].Name)
	assert.Equal(t, "text-input", comps[2].Slug)
	assert.Equal(t, extraction.ComponentForm, comps[2].Category)
}

func TestFallback_Documentation(t *testing.T) {
	t.Parallel()

	docs := loadFallback(t).Documentation()
	require.Len(t, docs, 2)

	assert.Equal(t, "Installation", docs[0].Title)
	assert.Equal(t, "/getting-started/installation", docs[0].Path)
	assert.NotContains(t, docs[0].Content, "title:")

	assert.Equal(t, "Spacing", docs[1].Title)
	assert.Equal(t, "/foundations/spacing", docs[1].Path)
	assert.Contains(t, docs[1].Keywords, "mu-m-100")
}

func TestFallback_Icons(t *testing.T) {
	t.Parallel()

	icons := loadFallback(t).Icons()
	require.Len(t, icons, 2)
	assert.Equal(t, "ArrowDown16", icons[0].Name)
	assert.Equal(t, "navigation", icons[0].Type)
	assert.Equal(t, "Check24", icons[1].Name)
}

package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
)

func sampleTokens() []extraction.Token {
	return []extraction.Token{
		{
			Category:     extraction.CategoryColor,
			Subcategory:  extraction.Ptr("primary"),
			Name:         "primary-01-100",
			Path:         "color.primary-01.100",
			CSSVariable:  extraction.Ptr("--color-primary-01-100"),
			SCSSVariable: extraction.Ptr("$color-primary-01-100"),
			ValueRaw:     "#78be20",
			Description:  extraction.Ptr("Brand green"),
			Platform:     extraction.DefaultPlatform,
		},
		{
			Category:      extraction.CategorySpacing,
			Name:          "mu100",
			Path:          "spacing.mu100",
			CSSVariable:   extraction.Ptr("--spacing-mu100"),
			SCSSVariable:  extraction.Ptr("$mu100"),
			ValueRaw:      "1rem",
			ValueNumber:   extraction.Ptr(1.0),
			ValueUnit:     extraction.Ptr("rem"),
			ValueComputed: extraction.Ptr("16px"),
		},
		{
			Category: extraction.CategoryShadow,
			Name:     "raised",
			Path:     "shadow.raised",
			ValueRaw: "0 2px 4px 0 rgba(0,0,0,0.2)",
			Platform: extraction.DefaultPlatform,
			Properties: []extraction.TokenProperty{
				{Property: "x", Value: "0", ValueNumber: extraction.Ptr(0.0)},
				{Property: "y", Value: "2px", ValueNumber: extraction.Ptr(2.0), ValueUnit: extraction.Ptr("px")},
			},
		},
	}
}

func sampleComponents() []extraction.Component {
	return []extraction.Component{
		{
			Name:        "Button",
			Slug:        "button",
			Category:    extraction.ComponentAction,
			Description: extraction.Ptr("Triggers an action"),
			Frameworks:  []string{extraction.FrameworkVue, extraction.FrameworkReact},
			Props: []extraction.Prop{
				{Name: "size", Type: extraction.Ptr("'s' | 'm' | 'l'"), Options: []string{"s", "m", "l"}},
				{Name: "label", Type: extraction.Ptr("string"), DefaultValue: extraction.Ptr("Go"), Required: true},
			},
			Slots:      []extraction.Slot{{Name: "default"}, {Name: "icon", Description: extraction.Ptr("Leading icon")}},
			Events:     []extraction.Event{{Name: "click", Payload: extraction.Ptr("$event")}},
			Examples:   []extraction.Example{{Framework: extraction.FrameworkVue, Title: extraction.Ptr("Small"), Code: `<MButton size="s" />`}},
			CSSClasses: []string{"mc-button", "mc-button--s"},
		},
		{
			Name:       "TextInput",
			Slug:       "text-input",
			Category:   extraction.ComponentForm,
			Frameworks: []string{extraction.FrameworkVue},
		},
	}
}

func sampleDocs() []extraction.Documentation {
	return []extraction.Documentation{
		{
			Title:    "Button",
			Path:     "/components/button",
			Content:  "Use the button for primary actions.",
			Category: extraction.Ptr("components"),
			Keywords: []string{"button", "mc-button"},
		},
		{
			Title:    "Colors",
			Path:     "/foundations/colors",
			Content:  "Palette of brand colors.",
			Category: extraction.Ptr("foundations"),
		},
	}
}

func sampleIcons() []extraction.Icon {
	return []extraction.Icon{
		{Name: "ArrowDown16", IconName: "ArrowDown", Type: "navigation", Size: 16, ViewBox: "0 0 16 16", Paths: `[{ d: "M0 0" }]`},
		{Name: "Check24", IconName: "Check", Type: "status", Size: 24, ViewBox: "0 0 24 24", Paths: `[{ d: "M1 1" }]`},
	}
}

// seed fills db with every sample dataset.
func seed(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx := context.Background()
	w := NewWriter(db)
	require.NoError(t, w.InsertTokens(ctx, sampleTokens()))
	require.NoError(t, w.InsertComponents(ctx, sampleComponents()))
	require.NoError(t, w.InsertDocumentation(ctx, sampleDocs()))
	require.NoError(t, w.InsertIcons(ctx, sampleIcons()))
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	n, err := countRows(context.Background(), db, table)
	require.NoError(t, err)
	return n
}

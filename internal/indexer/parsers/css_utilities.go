package parsers

import (
	"strings"

	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
)

// UtilityTables are the parameter tables the CSS utility catalog is
// generated from. The catalog is a pure function of these tables.
type UtilityTables struct {
	Breakpoints     []string // major breakpoints used with "@from-<bp>"
	Fractions       []string // column widths, "1of2"
	GridModifiers   []string // ml-flexy--<modifier>
	ColumnModifiers []string // ml-flexy__col--<modifier>
	Sides           []MarginSide
	Sizes           []string // magic-unit sizes, "025" ... "1000"
	Ratios          []string
}

// MarginSide is one row of the side table. An empty Code is the "all" side
// and yields the shorter class name (mu-m-100 rather than mu-m-t-100).
type MarginSide struct {
	Name string
	Code string
}

// DefaultUtilityTables returns the tables of the shipped catalog.
func DefaultUtilityTables() UtilityTables {
	sizes := make([]string, len(SpacingMultipliers))
	for i, m := range SpacingMultipliers {
		sizes[i] = strings.TrimPrefix(SpacingName(m), "mu")
	}
	return UtilityTables{
		Breakpoints:     []string{"m", "l", "xl"},
		Fractions:       []string{"1of1", "1of2", "1of3", "2of3", "1of4", "3of4", "1of6", "5of6"},
		GridModifiers:   []string{"gutter", "top", "middle", "bottom", "left", "center", "right", "space-between", "space-around", "reverse"},
		ColumnModifiers: []string{"fill", "full", "initial", "push", "pull"},
		Sides: []MarginSide{
			{Name: "all"},
			{Name: "top", Code: "t"},
			{Name: "right", Code: "r"},
			{Name: "bottom", Code: "b"},
			{Name: "left", Code: "l"},
			{Name: "vertical", Code: "v"},
			{Name: "horizontal", Code: "h"},
		},
		Sizes:  sizes,
		Ratios: []string{"1x1", "2x3", "3x2", "3x4", "4x3", "16x9", "9x16"},
	}
}

// ExtractCSSUtilities generates the six utility records from the tables:
// Flexy and Container (layout), Margin, Padding, Ratio and Scroll (utility).
func ExtractCSSUtilities(t UtilityTables) []extraction.CSSUtility {
	return []extraction.CSSUtility{
		flexyUtility(t),
		containerUtility(),
		spacingUtility("Margin", "m", t),
		spacingUtility("Padding", "p", t),
		ratioUtility(t),
		scrollUtility(),
	}
}

func withBreakpoints(classes []string, breakpoints []string) []string {
	out := make([]string, 0, len(classes)*(len(breakpoints)+1))
	for _, c := range classes {
		out = append(out, c)
		for _, bp := range breakpoints {
			out = append(out, c+"@from-"+bp)
		}
	}
	return out
}

func flexyUtility(t UtilityTables) extraction.CSSUtility {
	classes := []string{"ml-flexy", "ml-flexy__col"}

	var responsive []string
	for _, mod := range t.GridModifiers {
		responsive = append(responsive, "ml-flexy--"+mod)
	}
	for _, f := range t.Fractions {
		responsive = append(responsive, "ml-flexy__col--"+f)
	}
	for _, mod := range t.ColumnModifiers {
		responsive = append(responsive, "ml-flexy__col--"+mod)
	}
	classes = append(classes, withBreakpoints(responsive, t.Breakpoints)...)

	return extraction.CSSUtility{
		Name:        "Flexy",
		Slug:        "flexy",
		Category:    extraction.UtilityLayout,
		Description: "Flexbox grid: a ml-flexy row of ml-flexy__col columns sized by fractions, with alignment modifiers and @from-<breakpoint> responsive variants.",
		Classes:     classes,
		Examples: []extraction.UtilityExample{
			{
				Title: extraction.Ptr("Two equal columns"),
				Code: `<div class="ml-flexy ml-flexy--gutter">
  <div class="ml-flexy__col ml-flexy__col--1of2">...</div>
  <div class="ml-flexy__col ml-flexy__col--1of2">...</div>
</div>`,
			},
			{
				Title: extraction.Ptr("Responsive columns"),
				Code: `<div class="ml-flexy">
  <div class="ml-flexy__col ml-flexy__col--full ml-flexy__col--1of3@from-l">...</div>
  <div class="ml-flexy__col ml-flexy__col--full ml-flexy__col--2of3@from-l">...</div>
</div>`,
			},
		},
	}
}

func containerUtility() extraction.CSSUtility {
	return extraction.CSSUtility{
		Name:        "Container",
		Slug:        "container",
		Category:    extraction.UtilityLayout,
		Description: "Centered page container with responsive horizontal padding; the fluid variant spans the full width.",
		Classes:     []string{"ml-container", "ml-container--fluid"},
		Examples: []extraction.UtilityExample{
			{Code: `<div class="ml-container">...</div>`},
			{Title: extraction.Ptr("Fluid"), Code: `<div class="ml-container ml-container--fluid">...</div>`},
		},
	}
}

// spacingUtility enumerates sides x sizes: mu-m-100 for all sides,
// mu-m-t-100 for a single side.
func spacingUtility(name, code string, t UtilityTables) extraction.CSSUtility {
	var classes []string
	for _, side := range t.Sides {
		for _, size := range t.Sizes {
			if side.Code == "" {
				classes = append(classes, "mu-"+code+"-"+size)
			} else {
				classes = append(classes, "mu-"+code+"-"+side.Code+"-"+size)
			}
		}
	}

	lower := strings.ToLower(name)
	return extraction.CSSUtility{
		Name:        name,
		Slug:        lower,
		Category:    extraction.UtilityUtility,
		Description: name + " utilities on the magic-unit scale, for all sides or a single side (t, r, b, l) or axis (v, h).",
		Classes:     classes,
		Examples: []extraction.UtilityExample{
			{Title: extraction.Ptr("All sides"), Code: `<div class="mu-` + code + `-100">...</div>`},
			{Title: extraction.Ptr("Single side"), Code: `<div class="mu-` + code + `-b-200">...</div>`},
		},
	}
}

func ratioUtility(t UtilityTables) extraction.CSSUtility {
	classes := make([]string, len(t.Ratios))
	for i, r := range t.Ratios {
		classes[i] = "mu-ratio-" + r
	}
	return extraction.CSSUtility{
		Name:        "Ratio",
		Slug:        "ratio",
		Category:    extraction.UtilityUtility,
		Description: "Fixed aspect-ratio boxes for media.",
		Classes:     classes,
		Examples: []extraction.UtilityExample{
			{Code: `<div class="mu-ratio-16x9"><iframe src="..."></iframe></div>`},
		},
	}
}

func scrollUtility() extraction.CSSUtility {
	return extraction.CSSUtility{
		Name:        "Scroll",
		Slug:        "scroll",
		Category:    extraction.UtilityUtility,
		Description: "Vertical scrolling container with momentum scrolling.",
		Classes:     []string{"mu-scroll-y"},
		Examples: []extraction.UtilityExample{
			{Code: `<div class="mu-scroll-y" style="height: 200px">...</div>`},
		},
	}
}
